package xmlcodec

import (
	"bufio"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"reflect"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/pkg/prolog"
)

// Indent is the per-level indentation of encoded documents.
const Indent = "    "

// Message is a decoded document of any bound type.
type Message struct {
	// Name is the root element name.
	Name xml.Name
	// Type is the Go type bound to Name.
	Type reflect.Type
	// Value is a pointer to the decoded Type.
	Value any
}

// Codec decodes and encodes documents with a Context.
type Codec struct {
	ctx *Context
	log logger.Logger
}

// New returns a Codec over ctx. A nil log uses the default logger.
func New(ctx *Context, log logger.Logger) *Codec {
	if log == nil {
		log = logger.Default()
	}
	return &Codec{ctx: ctx, log: log}
}

// Context returns the Context the codec uses.
func (c *Codec) Context() *Context {
	return c.ctx
}

// Decode reads one document and returns it bound to the type registered
// for its root element. The stream must begin at the XML declaration or
// the root element.
func (c *Codec) Decode(r io.Reader) (*Message, error) {
	return c.decode(r, nil)
}

// decode binds the document rooted in r. A non-nil want restricts the
// root to elements bound to that type.
func (c *Codec) decode(r io.Reader, want reflect.Type) (*Message, error) {
	rec := &errRecorder{r: r}
	dec := xml.NewDecoder(rec)
	dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, c.decodeFailed(classify(err, rec, "no root element"))
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		typ, ok := c.ctx.Lookup(start.Name)
		if !ok {
			return nil, c.decodeFailed(domain.ErrDecode.WithDetails("unknown root element " + formatName(start.Name)))
		}
		if want != nil && typ != want {
			err := domain.NewTypeMismatchError(want.String(), typ.String(), formatName(start.Name))
			c.log.Warn("unexpected document type",
				"expected", err.Expected,
				"actual", err.Actual,
				"element", err.Element)
			return nil, err
		}

		v := reflect.New(typ)
		if err := dec.DecodeElement(v.Interface(), &start); err != nil {
			return nil, c.decodeFailed(classify(err, rec, "element "+formatName(start.Name)))
		}
		return &Message{Name: start.Name, Type: typ, Value: v.Interface()}, nil
	}
}

func (c *Codec) decodeFailed(err *domain.DomainError) error {
	c.log.Warn("xml decode failed", "code", err.Code, "error", err)
	return err
}

// classify separates failures of the underlying reader from malformed
// content.
func classify(err error, rec *errRecorder, details string) *domain.DomainError {
	if rec.err != nil {
		return domain.ErrIO.WithCause(rec.err)
	}
	return domain.ErrDecode.WithDetails(details).WithCause(err)
}

// errRecorder remembers the first non-EOF error of the wrapped reader.
type errRecorder struct {
	r   io.Reader
	err error
}

func (e *errRecorder) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && err != io.EOF && e.err == nil {
		e.err = err
	}
	return n, err
}

// DecodeStream decodes a document of type T from r. The stream must
// begin at the XML declaration or the root element.
func DecodeStream[T any](c *Codec, r io.Reader) (*T, error) {
	msg, err := c.decode(r, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return msg.Value.(*T), nil
}

// DecodeString decodes a document of type T from s.
func DecodeString[T any](c *Codec, s string) (*T, error) {
	return DecodeStream[T](c, strings.NewReader(s))
}

// DecodeFile decodes a document of type T from the file at path. The
// file is closed on every path.
func DecodeFile[T any](c *Codec, path string) (*T, error) {
	f, err := os.Open(path)
	if err != nil {
		derr := domain.ErrIO.WithDetails(path).WithCause(err)
		c.log.Warn("open document failed", "path", path, "error", err)
		return nil, derr
	}
	defer f.Close()

	return DecodeStream[T](c, bufio.NewReader(f))
}

// DecodeRequest skips any bytes ahead of the XML declaration in r and
// decodes a document of type T from the remainder.
func DecodeRequest[T any](c *Codec, r io.Reader) (*T, error) {
	pr, err := c.SeekProlog(r)
	if err != nil {
		return nil, err
	}
	return DecodeStream[T](c, pr)
}

// SeekProlog positions r at its XML declaration. The returned reader
// reports how many bytes were skipped.
func (c *Codec) SeekProlog(r io.Reader) (*prolog.Reader, error) {
	pr, err := prolog.Seek(r)
	if err == nil {
		if n := pr.Skipped(); n > 0 {
			c.log.Debug("skipped bytes ahead of xml declaration", "skipped", n)
		}
		return pr, nil
	}

	var derr *domain.DomainError
	switch {
	case errors.Is(err, prolog.ErrNoXMLStart):
		derr = domain.ErrNoXMLStart.WithCause(err)
	case errors.Is(err, prolog.ErrLookaheadExceeded):
		derr = domain.ErrDecode.WithCause(err)
	default:
		derr = domain.ErrIO.WithCause(err)
	}
	c.log.Warn("xml start not found", "code", derr.Code, "error", err)
	return nil, derr
}

// Encode writes v as an XML document with a declaration and indented
// content. v is a *Message, or a value or pointer of a bound type.
func (c *Codec) Encode(w io.Writer, v any) error {
	name, val, err := c.resolve(v)
	if err != nil {
		c.log.Warn("xml encode failed", "error", err)
		return err
	}

	rec := &errWriter{w: w}
	enc := xml.NewEncoder(rec)
	enc.Indent("", Indent)

	_, err = io.WriteString(rec, xml.Header)
	if err == nil {
		err = enc.EncodeElement(val, xml.StartElement{Name: name})
	}
	if err == nil {
		err = enc.Close()
	}
	if err == nil {
		_, err = io.WriteString(rec, "\n")
	}
	if err != nil {
		derr := domain.ErrEncode.WithDetails("element " + formatName(name)).WithCause(err)
		if rec.err != nil {
			derr = domain.ErrIO.WithCause(rec.err)
		}
		c.log.Warn("xml encode failed", "code", derr.Code, "error", derr)
		return derr
	}
	return nil
}

// EncodeToString returns v as an XML document. See Encode.
func (c *Codec) EncodeToString(v any) (string, error) {
	var sb strings.Builder
	if err := c.Encode(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (c *Codec) resolve(v any) (xml.Name, any, error) {
	switch m := v.(type) {
	case *Message:
		if m == nil || m.Value == nil {
			return xml.Name{}, nil, domain.ErrEncode.WithDetails("empty message")
		}
		return m.Name, m.Value, nil
	case Message:
		if m.Value == nil {
			return xml.Name{}, nil, domain.ErrEncode.WithDetails("empty message")
		}
		return m.Name, m.Value, nil
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return xml.Name{}, nil, domain.ErrEncode.WithDetails("nil value")
	}
	t := rv.Type()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name, ok := c.ctx.NameOf(t)
	if !ok {
		return xml.Name{}, nil, domain.ErrEncode.WithDetails("no element bound to type " + t.String())
	}
	return name, v, nil
}

// errWriter remembers the first error of the wrapped writer.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil && e.err == nil {
		e.err = err
	}
	return n, err
}
