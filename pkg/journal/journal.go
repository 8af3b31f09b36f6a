// Package journal records one entry per transaction submission so callers
// can audit what was sent, by whom, and with which outcome. Entries can be
// kept in memory, in Redis, in MySQL, or published to RabbitMQ; Multi fans
// a single record out to several sinks.
package journal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status summarises the outcome of a submission.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFault    Status = "fault"
	StatusRejected Status = "rejected"
	StatusUnknown  Status = "unknown"
	StatusFailed   Status = "failed"
)

// Entry is one journal record.
type Entry struct {
	ID             string    `json:"id"`
	Digest         string    `json:"digest,omitempty"`
	Operation      string    `json:"operation"`
	Sender         string    `json:"sender"`
	Status         Status    `json:"status"`
	GasUsed        uint64    `json:"gas_used"`
	ErrorCode      string    `json:"error_code,omitempty"`
	Error          string    `json:"error,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	CreatedObjects []string  `json:"created_objects,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Sink receives journal entries.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
	Close() error
}

// Store is a Sink that can list what it recorded.
type Store interface {
	Sink
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// DefaultRecentLimit is used when Recent is called with a non-positive limit.
const DefaultRecentLimit = 20

// Prepare fills the id and timestamp of an entry when missing.
func Prepare(entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SubmittedAt.IsZero() {
		entry.SubmittedAt = time.Now().UTC()
	}
	return entry
}

// Multi forwards every entry to all sinks. Failures of individual sinks are
// joined; the remaining sinks still receive the entry.
type Multi struct {
	mu    sync.RWMutex
	sinks []Sink
}

// NewMulti creates a fan-out sink, skipping nil members.
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		m.Add(s)
	}
	return m
}

// Add registers another sink.
func (m *Multi) Add(s Sink) {
	if s == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
}

// Len reports the number of sinks.
func (m *Multi) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sinks)
}

// Record implements Sink.
func (m *Multi) Record(ctx context.Context, entry Entry) error {
	entry = Prepare(entry)
	m.mu.RLock()
	sinks := append([]Sink(nil), m.sinks...)
	m.mu.RUnlock()

	var errs []error
	for _, s := range sinks {
		if err := s.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recent returns entries from the first member that is a Store.
func (m *Multi) Recent(ctx context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sinks {
		if store, ok := s.(Store); ok {
			return store.Recent(ctx, limit)
		}
	}
	return nil, errors.New("journal 中没有可查询的存储")
}

// Close closes every sink.
func (m *Multi) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.sinks = nil
	return errors.Join(errs...)
}

var _ Store = (*Multi)(nil)
