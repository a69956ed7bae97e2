package xmlcodec

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	ddsv1 "github.com/esnet/nsi-dds-go/api/dds/v1"
	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
)

type testRoot struct {
	Value string `xml:"value,attr,omitempty"`
}

type badTags struct {
	A string `xml:"x"`
	B string `xml:"x"`
}

func TestNewContext(t *testing.T) {
	ctx, err := NewContext(
		Bind[testRoot]("", "root"),
		Bind[ddsv1.ErrorType](ddsv1.Namespace, "error"),
		Bind[ddsv1.ErrorType](ddsv1.Namespace, "fault"),
	)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	typ, ok := ctx.Lookup(ddsv1.Name("fault"))
	if !ok || typ != reflect.TypeFor[ddsv1.ErrorType]() {
		t.Errorf("Lookup(fault) = %v, %v", typ, ok)
	}
	if _, ok := ctx.Lookup(ddsv1.Name("root")); ok {
		t.Error("Lookup must match the namespace")
	}

	name, ok := ctx.NameOf(reflect.TypeFor[ddsv1.ErrorType]())
	if !ok || name.Local != "error" {
		t.Errorf("NameOf(ErrorType) = %v, %v; want first binding", name, ok)
	}

	bindings := ctx.Bindings()
	if len(bindings) != 3 {
		t.Fatalf("Bindings() len = %d, want 3", len(bindings))
	}
	bindings[0].Name.Local = "changed"
	if _, ok := ctx.Lookup(bindings[0].Name); ok {
		t.Error("Bindings() must return a copy")
	}
}

func TestNewContext_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		bindings []Binding
		details  string
	}{
		{"no bindings", nil, "no bindings"},
		{"empty name", []Binding{Bind[testRoot]("", "")}, "empty element name"},
		{"nil type", []Binding{{Name: ddsv1.Name("x")}}, "has no type"},
		{"non-struct", []Binding{Bind[int]("", "n")}, "non-struct"},
		{"malformed tags", []Binding{Bind[badTags]("", "bad")}, "badTags"},
		{"duplicate", []Binding{Bind[testRoot]("", "root"), Bind[ddsv1.ErrorType]("", "root")}, "bound to both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := NewContext(tt.bindings...)
			if ctx != nil {
				t.Error("NewContext() should return nil context on error")
			}
			if !errors.Is(err, domain.ErrSchemaInit) {
				t.Fatalf("NewContext() error = %v, want ErrSchemaInit", err)
			}
			if !strings.Contains(err.Error(), tt.details) {
				t.Errorf("error %q should mention %q", err, tt.details)
			}
		})
	}
}

func TestLazy_SingleInitialization(t *testing.T) {
	var builds atomic.Int32
	lazy := NewLazy(func() (*Context, error) {
		builds.Add(1)
		return NewContext(DDSBindings()...)
	}, logger.Nop())

	const n = 64
	results := make([]*Context, n)
	errs := make([]error, n)

	var start, wg sync.WaitGroup
	start.Add(1)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start.Wait()
			results[i], errs[i] = lazy.Get()
		}()
	}
	start.Done()
	wg.Wait()

	if got := builds.Load(); got != 1 {
		t.Fatalf("context built %d times, want 1", got)
	}
	for i := range n {
		if errs[i] != nil {
			t.Fatalf("Get() #%d error = %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("Get() #%d returned a different context", i)
		}
	}
}

func TestLazy_FailureIsCached(t *testing.T) {
	var builds atomic.Int32
	cause := errors.New("bindings unavailable")
	lazy := NewLazy(func() (*Context, error) {
		builds.Add(1)
		return nil, cause
	}, logger.Nop())

	for range 3 {
		ctx, err := lazy.Get()
		if ctx != nil {
			t.Error("Get() should return nil context after failure")
		}
		if !errors.Is(err, domain.ErrSchemaInit) || !errors.Is(err, cause) {
			t.Errorf("Get() error = %v, want ErrSchemaInit wrapping cause", err)
		}
	}
	if got := builds.Load(); got != 1 {
		t.Errorf("failed build attempted %d times, want 1", got)
	}
}

func TestLazy_Panic(t *testing.T) {
	lazy := NewLazy(func() (*Context, error) {
		panic("broken bindings")
	}, logger.Nop())

	_, err := lazy.Get()
	if !errors.Is(err, domain.ErrSchemaInit) {
		t.Fatalf("Get() error = %v, want ErrSchemaInit", err)
	}
	if !strings.Contains(err.Error(), "broken bindings") {
		t.Errorf("error %q should carry the panic value", err)
	}
}

func TestLazy_NilContext(t *testing.T) {
	lazy := NewLazy(func() (*Context, error) { return nil, nil }, logger.Nop())
	if _, err := lazy.Get(); !errors.Is(err, domain.ErrSchemaInit) {
		t.Errorf("Get() error = %v, want ErrSchemaInit", err)
	}
}

func TestDefault(t *testing.T) {
	a, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	b, _ := Default()
	if a != b {
		t.Error("Default() should return the same context")
	}

	typ, ok := a.Lookup(ddsv1.Name(ddsv1.ElementNotifications))
	if !ok || typ != reflect.TypeFor[ddsv1.NotificationListType]() {
		t.Errorf("Lookup(notifications) = %v, %v", typ, ok)
	}
	if len(a.Bindings()) != len(ddsv1.Elements()) {
		t.Errorf("Default() has %d bindings, want %d", len(a.Bindings()), len(ddsv1.Elements()))
	}
}
