package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
)

var recordPrefix = []byte("rec/")

func recordKey(id string) []byte {
	return append(append([]byte{}, recordPrefix...), id...)
}

// BadgerInbox implements Inbox on Badger v3.
type BadgerInbox struct {
	db     *badger.DB
	cfg    Config
	logger logger.Logger

	// mu serializes Append so count and pruning stay consistent.
	mu     sync.Mutex
	count  atomic.Int64
	closed atomic.Bool

	lastGCTime atomic.Int64 // Unix milliseconds
	gcRuns     atomic.Uint64

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// OpenBadger opens or creates a Badger inbox in cfg.Dir.
func OpenBadger(cfg Config, log logger.Logger) (*BadgerInbox, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}
	if cfg.GCDiscardRatio <= 0 || cfg.GCDiscardRatio >= 1 {
		cfg.GCDiscardRatio = 0.5
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: log}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.ErrStorage.WithDetails("open " + cfg.Dir).WithCause(err)
	}

	b := &BadgerInbox{
		db:     db,
		cfg:    cfg,
		logger: log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	n, err := b.countKeys()
	if err != nil {
		db.Close()
		return nil, domain.ErrStorage.WithDetails("count records").WithCause(err)
	}
	b.count.Store(int64(n))

	go b.gcLoop()

	log.Info("badger inbox opened",
		"dir", cfg.Dir,
		"records", n,
		"retention", cfg.Retention,
		"gc_interval", cfg.GCInterval)

	return b, nil
}

func (b *BadgerInbox) countKeys() (int, error) {
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = recordPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Append stores r and prunes the oldest records beyond retention.
func (b *BadgerInbox) Append(ctx context.Context, r *domain.Record) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}

	value, err := json.Marshal(r)
	if err != nil {
		return domain.ErrStorage.WithDetails("encode record").WithCause(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := recordKey(r.ID)
	added := false
	err = b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			added = true
		} else if err != nil {
			return err
		}
		return txn.Set(key, value)
	})
	if err != nil {
		return domain.ErrStorage.WithDetails("append " + r.ID).WithCause(err)
	}
	if added {
		b.count.Add(1)
	}

	if b.cfg.Retention > 0 {
		if excess := int(b.count.Load()) - b.cfg.Retention; excess > 0 {
			pruned, err := b.pruneOldest(excess)
			b.count.Add(-int64(pruned))
			if err != nil {
				b.logger.Error("prune inbox failed", "excess", excess, "error", err)
			} else {
				b.logger.Debug("pruned inbox records", "deleted_count", pruned)
			}
		}
	}
	return nil
}

func (b *BadgerInbox) pruneOldest(n int) (int, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = recordPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && len(keys) < n; it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Get returns the record with the given ID.
func (b *BadgerInbox) Get(ctx context.Context, id string) (*domain.Record, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	if err := domain.ValidateRecordID(id); err != nil {
		return nil, err
	}

	var r domain.Record
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrRecordNotFound.WithDetails(id)
	}
	if err != nil {
		return nil, domain.ErrStorage.WithDetails("get " + id).WithCause(err)
	}
	return &r, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (b *BadgerInbox) List(ctx context.Context, limit int) ([]*domain.Record, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	var out []*domain.Record
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = recordPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the last key <= the seek key.
		seek := append(append([]byte{}, recordPrefix...), 0xff)
		for it.Seek(seek); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(out) >= limit {
				break
			}
			var r domain.Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, &r)
		}
		return nil
	})
	if err != nil {
		return nil, domain.ErrStorage.WithDetails("list").WithCause(err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (b *BadgerInbox) Count(context.Context) (int, error) {
	if b.closed.Load() {
		return 0, ErrClosed
	}
	return int(b.count.Load()), nil
}

// GC runs value-log GC until Badger finds nothing to rewrite. It returns
// the number of value-log files rewritten.
func (b *BadgerInbox) GC(ctx context.Context) (int, error) {
	start := time.Now()
	rewritten := 0
	for ctx.Err() == nil {
		err := b.db.RunValueLogGC(b.cfg.GCDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return rewritten, fmt.Errorf("gc: %w", err)
		}
		rewritten++
	}

	b.lastGCTime.Store(time.Now().UnixMilli())
	b.gcRuns.Add(1)

	b.logger.Debug("gc completed",
		"files_rewritten", rewritten,
		"elapsed", time.Since(start))

	return rewritten, nil
}

// Close stops GC and closes the database.
func (b *BadgerInbox) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		close(b.stopCh)
		<-b.doneCh

		b.mu.Lock()
		defer b.mu.Unlock()
		if cerr := b.db.Close(); cerr != nil {
			err = fmt.Errorf("close db: %w", cerr)
			return
		}
		b.logger.Info("badger inbox closed")
	})
	return err
}

// RegisterMetrics registers storage gauges with registry. Sizes are read
// at scrape time.
func (b *BadgerInbox) RegisterMetrics(registry *prometheus.Registry) error {
	size := func(lsm bool) func() float64 {
		return func() float64 {
			if b.closed.Load() {
				return 0
			}
			l, v := b.db.Size()
			if lsm {
				return float64(l)
			}
			return float64(v)
		}
	}

	return errors.Join(
		registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "dds",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes.",
		}, size(true))),
		registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "dds",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes.",
		}, size(false))),
		registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "dds",
			Subsystem: "badger",
			Name:      "last_gc_timestamp_seconds",
			Help:      "Unix timestamp of the last value-log GC run.",
		}, func() float64 { return float64(b.lastGCTime.Load()) / 1000 })),
		registry.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "dds",
			Subsystem: "badger",
			Name:      "gc_runs_total",
			Help:      "Value-log GC runs.",
		}, func() float64 { return float64(b.gcRuns.Load()) })),
	)
}

func (b *BadgerInbox) gcLoop() {
	defer close(b.doneCh)

	if b.cfg.GCInterval <= 0 {
		<-b.stopCh
		return
	}

	ticker := time.NewTicker(b.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := b.GC(ctx); err != nil {
				b.logger.Error("auto gc failed", "error", err)
			}
			cancel()

		case <-b.stopCh:
			return
		}
	}
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
// Badger's info output is startup noise, so it goes to debug.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
