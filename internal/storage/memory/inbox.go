package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/pkg/cmap"
)

var errClosed = domain.ErrStorage.WithDetails("inbox closed")

// Inbox is an in-memory inbox.
type Inbox struct {
	records *cmap.Map[*domain.Record]

	// mu guards ids, which holds record IDs in ascending order.
	mu     sync.Mutex
	ids    []string
	closed bool

	retention int
}

// Option configures the Inbox.
type Option func(*Inbox)

// WithRetention sets the number of records kept. Zero keeps everything.
func WithRetention(n int) Option {
	return func(in *Inbox) {
		in.retention = n
	}
}

// New creates an empty inbox.
func New(opts ...Option) *Inbox {
	in := &Inbox{records: cmap.New[*domain.Record](0)}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Append stores a clone of r and prunes the oldest records beyond
// retention.
func (in *Inbox) Append(ctx context.Context, r *domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return errClosed
	}

	if pos, found := slices.BinarySearch(in.ids, r.ID); !found {
		in.ids = slices.Insert(in.ids, pos, r.ID)
	}
	in.records.Set(r.ID, r.Clone())

	if in.retention > 0 && len(in.ids) > in.retention {
		excess := len(in.ids) - in.retention
		for _, id := range in.ids[:excess] {
			in.records.Delete(id)
		}
		in.ids = slices.Delete(in.ids, 0, excess)
	}
	return nil
}

// Get returns a clone of the record with the given ID.
func (in *Inbox) Get(_ context.Context, id string) (*domain.Record, error) {
	if in.isClosed() {
		return nil, errClosed
	}
	if err := domain.ValidateRecordID(id); err != nil {
		return nil, err
	}
	r, ok := in.records.Get(id)
	if !ok {
		return nil, domain.ErrRecordNotFound.WithDetails(id)
	}
	return r.Clone(), nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (in *Inbox) List(_ context.Context, limit int) ([]*domain.Record, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil, errClosed
	}

	n := len(in.ids)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*domain.Record, 0, n)
	for i := len(in.ids) - 1; i >= 0 && len(out) < n; i-- {
		if r, ok := in.records.Get(in.ids[i]); ok {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Count returns the number of stored records.
func (in *Inbox) Count(context.Context) (int, error) {
	if in.isClosed() {
		return 0, errClosed
	}
	return in.records.Count(), nil
}

// Close drops all records.
func (in *Inbox) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
	in.ids = nil
	in.records.Sweep(func(string, *domain.Record) bool { return true })
	return nil
}

func (in *Inbox) isClosed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.closed
}
