package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
)

func newRecord(t *testing.T, listID string) *domain.Record {
	t.Helper()
	r, err := domain.NewRecord(listID, "urn:ogf:network:es.net:2013:nsa")
	if err != nil {
		t.Fatal(err)
	}
	r.Entries = []domain.Entry{{Event: "New", DocumentID: "doc-" + listID}}
	return r
}

func TestInbox_AppendGet(t *testing.T) {
	ctx := context.Background()
	in := New()

	r := newRecord(t, "list-1")
	if err := in.Append(ctx, r); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// mutating the caller's copy must not leak into the store
	r.Entries[0].Event = "Updated"

	got, err := in.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ListID != "list-1" || got.Entries[0].Event != "New" {
		t.Errorf("Get() = %+v", got)
	}

	got.ListID = "changed"
	again, _ := in.Get(ctx, r.ID)
	if again.ListID != "list-1" {
		t.Error("Get() returned shared state")
	}
}

func TestInbox_GetErrors(t *testing.T) {
	ctx := context.Background()
	in := New()

	if _, err := in.Get(ctx, "not-an-id"); !errors.Is(err, domain.ErrRecordValidation) {
		t.Errorf("Get(invalid) error = %v, want ErrRecordValidation", err)
	}

	id, _ := domain.GenerateRecordID()
	if _, err := in.Get(ctx, id); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrRecordNotFound", err)
	}
}

func TestInbox_AppendInvalid(t *testing.T) {
	in := New()
	r := newRecord(t, "x")
	r.ID = "bogus"
	if err := in.Append(context.Background(), r); !errors.Is(err, domain.ErrRecordValidation) {
		t.Errorf("Append() error = %v, want ErrRecordValidation", err)
	}
}

func TestInbox_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	in := New()

	for i := range 5 {
		if err := in.Append(ctx, newRecord(t, fmt.Sprintf("list-%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	all, err := in.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Fatalf("len(List(0)) = %d, want 5", len(all))
	}
	for i, r := range all {
		if want := fmt.Sprintf("list-%d", 4-i); r.ListID != want {
			t.Errorf("List()[%d] = %s, want %s", i, r.ListID, want)
		}
	}

	top, _ := in.List(ctx, 2)
	if len(top) != 2 || top[0].ListID != "list-4" {
		t.Errorf("List(2) = %v", top)
	}
}

func TestInbox_Retention(t *testing.T) {
	ctx := context.Background()
	in := New(WithRetention(3))

	var ids []string
	for i := range 5 {
		r := newRecord(t, fmt.Sprintf("list-%d", i))
		ids = append(ids, r.ID)
		if err := in.Append(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	if n, _ := in.Count(ctx); n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
	for _, id := range ids[:2] {
		if _, err := in.Get(ctx, id); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Errorf("oldest record %s should be pruned, got %v", id, err)
		}
	}
	if _, err := in.Get(ctx, ids[4]); err != nil {
		t.Errorf("newest record missing: %v", err)
	}
}

func TestInbox_AppendSameIDTwice(t *testing.T) {
	ctx := context.Background()
	in := New()
	r := newRecord(t, "once")
	_ = in.Append(ctx, r)
	_ = in.Append(ctx, r)

	if n, _ := in.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
	if all, _ := in.List(ctx, 0); len(all) != 1 {
		t.Errorf("len(List()) = %d, want 1", len(all))
	}
}

func TestInbox_Concurrent(t *testing.T) {
	ctx := context.Background()
	in := New(WithRetention(50))

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 20 {
				r, err := domain.NewRecord(fmt.Sprintf("g%d-%d", g, i), "nsa")
				if err != nil {
					t.Error(err)
					return
				}
				if err := in.Append(ctx, r); err != nil {
					t.Error(err)
				}
				_, _ = in.List(ctx, 5)
			}
		}()
	}
	wg.Wait()

	if n, _ := in.Count(ctx); n != 50 {
		t.Errorf("Count() = %d, want 50", n)
	}
}

func TestInbox_Close(t *testing.T) {
	ctx := context.Background()
	in := New()
	_ = in.Append(ctx, newRecord(t, "a"))

	if err := in.Close(); err != nil {
		t.Fatal(err)
	}
	if err := in.Append(ctx, newRecord(t, "b")); !errors.Is(err, domain.ErrStorage) {
		t.Errorf("Append() after Close error = %v", err)
	}
	if _, err := in.List(ctx, 0); !errors.Is(err, domain.ErrStorage) {
		t.Errorf("List() after Close error = %v", err)
	}
	if _, err := in.Count(ctx); !errors.Is(err, domain.ErrStorage) {
		t.Errorf("Count() after Close error = %v", err)
	}
}
