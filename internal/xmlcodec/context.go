package xmlcodec

import (
	"encoding/xml"
	"fmt"
	"io"
	"reflect"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
)

// Binding maps a root element name to the Go struct type it decodes into.
type Binding struct {
	Name xml.Name
	Type reflect.Type
}

// Bind returns the binding of element {space}local to T.
func Bind[T any](space, local string) Binding {
	return Binding{
		Name: xml.Name{Space: space, Local: local},
		Type: reflect.TypeFor[T](),
	}
}

// Context is an immutable set of bindings. It is safe for concurrent use.
type Context struct {
	bindings []Binding
	byName   map[xml.Name]reflect.Type
	byType   map[reflect.Type]xml.Name
}

// NewContext validates the bindings and builds a Context. Every bound
// type must be a struct that encoding/xml can marshal, and element names
// must be unique. A type bound to several elements encodes under the
// first of them.
func NewContext(bindings ...Binding) (*Context, error) {
	if len(bindings) == 0 {
		return nil, domain.ErrSchemaInit.WithDetails("no bindings")
	}

	c := &Context{
		bindings: make([]Binding, 0, len(bindings)),
		byName:   make(map[xml.Name]reflect.Type, len(bindings)),
		byType:   make(map[reflect.Type]xml.Name, len(bindings)),
	}

	for _, b := range bindings {
		if err := checkBinding(b); err != nil {
			return nil, err
		}
		if prev, dup := c.byName[b.Name]; dup {
			return nil, domain.ErrSchemaInit.WithDetails(fmt.Sprintf(
				"element %s bound to both %s and %s", formatName(b.Name), prev, b.Type))
		}
		c.byName[b.Name] = b.Type
		if _, ok := c.byType[b.Type]; !ok {
			c.byType[b.Type] = b.Name
		}
		c.bindings = append(c.bindings, b)
	}

	return c, nil
}

func checkBinding(b Binding) error {
	switch {
	case b.Name.Local == "":
		return domain.ErrSchemaInit.WithDetails("binding with empty element name")
	case b.Type == nil:
		return domain.ErrSchemaInit.WithDetails("element " + formatName(b.Name) + " has no type")
	case b.Type.Kind() != reflect.Struct:
		return domain.ErrSchemaInit.WithDetails(fmt.Sprintf(
			"element %s bound to non-struct type %s", formatName(b.Name), b.Type))
	}

	// encoding/xml reports malformed struct tags only when marshaling
	zero := reflect.New(b.Type).Interface()
	enc := xml.NewEncoder(io.Discard)
	if err := enc.EncodeElement(zero, xml.StartElement{Name: b.Name}); err != nil {
		return domain.ErrSchemaInit.WithDetails("type " + b.Type.String()).WithCause(err)
	}
	return nil
}

// Lookup returns the type bound to an element name.
func (c *Context) Lookup(name xml.Name) (reflect.Type, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// NameOf returns the element name a type encodes under.
func (c *Context) NameOf(t reflect.Type) (xml.Name, bool) {
	n, ok := c.byType[t]
	return n, ok
}

// Bindings returns a copy of the bindings in registration order.
func (c *Context) Bindings() []Binding {
	out := make([]Binding, len(c.bindings))
	copy(out, c.bindings)
	return out
}

// formatName renders a qualified name as {namespace}local.
func formatName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}
