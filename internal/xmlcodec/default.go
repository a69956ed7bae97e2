package xmlcodec

import (
	ddsv1 "github.com/esnet/nsi-dds-go/api/dds/v1"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
)

var defaultContext = NewLazy(func() (*Context, error) {
	return NewContext(DDSBindings()...)
}, nil)

// DDSBindings returns the bindings of the NSI-DDS message types.
func DDSBindings() []Binding {
	elems := ddsv1.Elements()
	out := make([]Binding, len(elems))
	for i, e := range elems {
		out[i] = Binding{Name: e.Name, Type: e.Type}
	}
	return out
}

// Default returns the process-wide NSI-DDS Context.
func Default() (*Context, error) {
	return defaultContext.Get()
}

// NewDefault returns a Codec over the process-wide NSI-DDS Context.
func NewDefault(log logger.Logger) (*Codec, error) {
	ctx, err := Default()
	if err != nil {
		return nil, err
	}
	return New(ctx, log), nil
}
