package xmlcodec

import (
	"bytes"
	"reflect"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
)

// ToDOM encodes v into a DOM document. See Encode for accepted values.
func (c *Codec) ToDOM(v any) (*etree.Document, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, v); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(buf.Bytes()); err != nil {
		derr := domain.ErrEncode.WithDetails("dom build").WithCause(err)
		c.log.Warn("xml encode failed", "code", derr.Code, "error", derr)
		return nil, derr
	}
	return doc, nil
}

// FromDOM decodes the root element of doc into its bound type.
func (c *Codec) FromDOM(doc *etree.Document) (*Message, error) {
	return c.fromDOM(doc, nil)
}

// DecodeDOM decodes the root element of doc into T.
func DecodeDOM[T any](c *Codec, doc *etree.Document) (*T, error) {
	msg, err := c.fromDOM(doc, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return msg.Value.(*T), nil
}

func (c *Codec) fromDOM(doc *etree.Document, want reflect.Type) (*Message, error) {
	if doc == nil || doc.Root() == nil {
		return nil, c.decodeFailed(domain.ErrDecode.WithDetails("document has no root element"))
	}

	// The tree already holds UTF-8 text, so the source declaration and
	// its encoding label are not written again.
	out := etree.NewDocument()
	out.SetRoot(doc.Root().Copy())

	var buf bytes.Buffer
	if _, err := out.WriteTo(&buf); err != nil {
		return nil, c.decodeFailed(domain.ErrDecode.WithDetails("dom serialization").WithCause(err))
	}
	return c.decode(&buf, want)
}
