package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/internal/storage/memory"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
)

// Engine names.
const (
	EngineBadger = "badger"
	EngineMemory = "memory"
)

// List limits.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ErrClosed is returned by operations on a closed inbox.
var ErrClosed = domain.ErrStorage.WithDetails("inbox closed")

// Inbox stores notification records.
type Inbox interface {
	// Append stores a validated record and prunes beyond retention.
	Append(ctx context.Context, r *domain.Record) error

	// Get returns one record. Returns domain.ErrRecordNotFound if unknown.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*domain.Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Config selects and tunes an inbox engine.
type Config struct {
	// Engine is EngineBadger or EngineMemory.
	Engine string

	// Dir is the Badger data directory.
	Dir string

	// GCInterval is the period of Badger value-log GC. Zero disables it.
	GCInterval time.Duration

	// GCDiscardRatio is passed to RunValueLogGC.
	GCDiscardRatio float64

	// Retention is the number of records kept. Zero keeps everything.
	Retention int

	// SyncWrites fsyncs every Append.
	SyncWrites bool
}

// DefaultConfig returns a Badger configuration rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		Engine:         EngineBadger,
		Dir:            dir,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
		Retention:      1000,
	}
}

// Open opens the inbox engine named by cfg.Engine.
func Open(cfg Config, log logger.Logger) (Inbox, error) {
	switch cfg.Engine {
	case EngineBadger, "":
		return OpenBadger(cfg, log)
	case EngineMemory:
		return memory.New(memory.WithRetention(cfg.Retention)), nil
	default:
		return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
}

// NormalizeLimit clamps a requested list size to (0, MaxListLimit].
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
