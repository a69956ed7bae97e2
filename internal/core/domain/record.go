package domain

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record constraints.
const (
	MaxRecordEntries = 10000
	MaxIDLength      = 1024

	// RecordIDPrefix is the prefix for inbox record IDs.
	RecordIDPrefix = "ddsn-"
)

// Record is the inbox summary of one received notification list.
// The referenced documents themselves are not kept.
type Record struct {
	// ID is the inbox identifier.
	// Format: ddsn-{ulid_lowercase}, so IDs sort by arrival time.
	ID string `json:"id"`

	// ListID is the id attribute of the notification list.
	ListID string `json:"list_id"`

	// Href is the subscription href the notification was sent for.
	Href string `json:"href,omitempty"`

	// ProviderID is the NSA identifier of the sending provider.
	ProviderID string `json:"provider_id"`

	// RequestID is the request ID assigned by the HTTP layer.
	RequestID string `json:"request_id,omitempty"`

	// RemoteAddr is the peer address the notification came from.
	RemoteAddr string `json:"remote_addr,omitempty"`

	// SkippedBytes is the number of bytes discarded before the XML start.
	SkippedBytes int64 `json:"skipped_bytes,omitempty"`

	// ReceivedAt is the arrival timestamp (Unix milliseconds).
	ReceivedAt int64 `json:"received_at"`

	// Entries summarizes each notification in the list.
	Entries []Entry `json:"entries"`
}

// Entry summarizes one notification.
type Entry struct {
	Event      string `json:"event"`
	DocumentID string `json:"document_id"`
	NSA        string `json:"nsa,omitempty"`
	Type       string `json:"type,omitempty"`
	Discovered int64  `json:"discovered,omitempty"`
}

// NewRecord creates a Record with a generated ID and arrival time.
func NewRecord(listID, providerID string) (*Record, error) {
	id, err := GenerateRecordID()
	if err != nil {
		return nil, err
	}

	return &Record{
		ID:         id,
		ListID:     listID,
		ProviderID: providerID,
		ReceivedAt: time.Now().UnixMilli(),
	}, nil
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// GenerateRecordID generates a new record ID using ULID. IDs from one
// process are strictly increasing.
func GenerateRecordID() (string, error) {
	entropyMu.Lock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return RecordIDPrefix + strings.ToLower(id.String()), nil
}

// ValidateRecordID checks the inbox ID format.
func ValidateRecordID(id string) error {
	if !strings.HasPrefix(id, RecordIDPrefix) {
		return ErrRecordValidation.WithDetails("record id must start with " + RecordIDPrefix)
	}
	if _, err := ulid.ParseStrict(strings.ToUpper(strings.TrimPrefix(id, RecordIDPrefix))); err != nil {
		return ErrRecordValidation.WithDetails("record id is not a valid ULID").WithCause(err)
	}
	return nil
}

// Validate checks the record before it is stored.
func (r *Record) Validate() error {
	if err := ValidateRecordID(r.ID); err != nil {
		return err
	}
	if len(r.ListID) > MaxIDLength {
		return ErrRecordValidation.WithDetails("list id too long")
	}
	if len(r.ProviderID) > MaxIDLength {
		return ErrRecordValidation.WithDetails("provider id too long")
	}
	if len(r.Entries) > MaxRecordEntries {
		return ErrRecordValidation.WithDetails("too many notifications in one list")
	}
	if r.ReceivedAt <= 0 {
		return ErrRecordValidation.WithDetails("received_at is required")
	}
	return nil
}

// ReceivedTime returns ReceivedAt as a time.Time.
func (r *Record) ReceivedTime() time.Time {
	return time.UnixMilli(r.ReceivedAt)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Entries != nil {
		c.Entries = make([]Entry, len(r.Entries))
		copy(c.Entries, r.Entries)
	}
	return &c
}

// EventCounts returns the number of entries per event type.
func (r *Record) EventCounts() map[string]int {
	counts := make(map[string]int, 3)
	for _, e := range r.Entries {
		counts[e.Event]++
	}
	return counts
}
