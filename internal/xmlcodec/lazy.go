package xmlcodec

import (
	"errors"
	"fmt"
	"sync"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
)

// Lazy builds a Context on first use, exactly once, even under
// concurrent first calls. A failed build is logged once and its error is
// returned by every later Get; it is never retried.
type Lazy struct {
	build func() (*Context, error)
	log   logger.Logger

	once sync.Once
	ctx  *Context
	err  error
}

// NewLazy returns a Lazy around build. A nil log uses the default logger
// at the time of the build.
func NewLazy(build func() (*Context, error), log logger.Logger) *Lazy {
	return &Lazy{build: build, log: log}
}

// Get returns the Context, building it on the first call.
func (l *Lazy) Get() (*Context, error) {
	l.once.Do(l.init)
	return l.ctx, l.err
}

func (l *Lazy) init() {
	ctx, err := l.safeBuild()
	if err == nil && ctx == nil {
		err = errors.New("builder returned no context")
	}
	if err != nil {
		if !errors.Is(err, domain.ErrSchemaInit) {
			err = domain.ErrSchemaInit.WithCause(err)
		}
		log := l.log
		if log == nil {
			log = logger.Default()
		}
		log.Error("schema context initialization failed", "error", err)
		l.err = err
		return
	}
	l.ctx = ctx
}

func (l *Lazy) safeBuild() (ctx *Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx, err = nil, fmt.Errorf("panic building schema context: %v", r)
		}
	}()
	return l.build()
}
