package xmlcodec

import (
	"errors"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/net/html/charset"

	ddsv1 "github.com/esnet/nsi-dds-go/api/dds/v1"
	"github.com/esnet/nsi-dds-go/internal/core/domain"
)

func TestDOMRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	want := sampleList()

	doc, err := c.ToDOM(want)
	if err != nil {
		t.Fatalf("ToDOM() error = %v", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != ddsv1.ElementNotifications {
		t.Fatalf("root = %v", root)
	}
	if got := root.SelectAttrValue("providerId", ""); got != want.ProviderID {
		t.Errorf("providerId attr = %q", got)
	}
	if n := len(root.SelectElements("notification")); n != 2 {
		t.Errorf("notification elements = %d, want 2", n)
	}

	got, err := DecodeDOM[ddsv1.NotificationListType](c, doc)
	if err != nil {
		t.Fatalf("DecodeDOM() error = %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("dom round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromDOM_Edited(t *testing.T) {
	c := newTestCodec(t)

	doc, err := c.ToDOM(&ddsv1.ErrorType{ID: "1", Label: "x", Description: "d"})
	if err != nil {
		t.Fatal(err)
	}
	doc.Root().CreateAttr("resource", "/dds/notifications")

	msg, err := c.FromDOM(doc)
	if err != nil {
		t.Fatalf("FromDOM() error = %v", err)
	}
	e, ok := msg.Value.(*ddsv1.ErrorType)
	if !ok {
		t.Fatalf("Value is %T", msg.Value)
	}
	if e.Resource != "/dds/notifications" {
		t.Errorf("Resource = %q", e.Resource)
	}
}

func TestDecodeDOM_Latin1Source(t *testing.T) {
	c := newTestCodec(t)

	src := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<error xmlns=\"" + ddsv1.Namespace + "\" id=\"1\" label=\"caf\xe9\"><description>r\xe9seau</description></error>"

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromString(src); err != nil {
		t.Fatalf("ReadFromString() error = %v", err)
	}

	e, err := DecodeDOM[ddsv1.ErrorType](c, doc)
	if err != nil {
		t.Fatalf("DecodeDOM() error = %v", err)
	}
	if e.Label != "café" {
		t.Errorf("Label = %q, want %q", e.Label, "café")
	}
	if e.Description != "réseau" {
		t.Errorf("Description = %q, want %q", e.Description, "réseau")
	}
	if len(doc.Child) == 0 {
		t.Error("source document lost its children")
	}
}

func TestFromDOM_Errors(t *testing.T) {
	c := newTestCodec(t)

	if _, err := c.FromDOM(nil); !errors.Is(err, domain.ErrDecode) {
		t.Errorf("FromDOM(nil) error = %v, want ErrDecode", err)
	}
	if _, err := c.FromDOM(etree.NewDocument()); !errors.Is(err, domain.ErrDecode) {
		t.Errorf("FromDOM(empty) error = %v, want ErrDecode", err)
	}

	doc := etree.NewDocument()
	doc.CreateElement("unknown")
	if _, err := c.FromDOM(doc); !errors.Is(err, domain.ErrDecode) {
		t.Errorf("FromDOM(unknown) error = %v, want ErrDecode", err)
	}

	errDoc, err := c.ToDOM(&ddsv1.ErrorType{ID: "1"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = DecodeDOM[ddsv1.DocumentType](c, errDoc)
	if !errors.Is(err, domain.ErrTypeMismatch) {
		t.Errorf("DecodeDOM() error = %v, want ErrTypeMismatch", err)
	}

	if _, err := c.ToDOM(nil); !errors.Is(err, domain.ErrEncode) {
		t.Errorf("ToDOM(nil) error = %v, want ErrEncode", err)
	}
}
