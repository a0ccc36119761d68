// Package history keeps past analyses so they can be listed and fetched
// again by id.
package history

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/panotour/pkg/report"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("analysis not found")

// Record is one stored analysis.
type Record struct {
	ID           string         `json:"id"`
	DocumentHash string         `json:"documentHash"`
	Source       string         `json:"source,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	Report       *report.Report `json:"report"`
}

// NewRecord creates a record with a fresh random id.
func NewRecord(documentHash, source string, r *report.Report) *Record {
	return &Record{
		ID:           uuid.NewString(),
		DocumentHash: documentHash,
		Source:       source,
		CreatedAt:    time.Now().UTC(),
		Report:       r,
	}
}

// ValidID reports whether id has the shape of a record id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Store persists analysis records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Record, error)
	// List returns up to limit records, newest first. A limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Record, error)
	Close(ctx context.Context) error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Save stores rec, replacing any record with the same id.
func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec
	return nil
}

// Get returns the record with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// List returns records newest first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.order))
	for _, id := range slices.Backward(s.order) {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.records[id])
	}
	return out, nil
}

// Close does nothing.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
