package memory

import (
	"context"
	"sync"

	"staymarket/internal/app/middleware"
)

// IdempotencyStore keeps replayed command outcomes in process memory. Records
// live until restart; acceptable for the single-node memory storage mode.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{records: make(map[string]middleware.IdempotencyRecord)}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	rec, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return middleware.IdempotencyRecord{}, false, nil
	}
	// Copy the payload so callers cannot mutate the stored record.
	rec.Payload = append([]byte(nil), rec.Payload...)
	return rec, true, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	rec.Payload = append([]byte(nil), rec.Payload...)
	s.mu.Lock()
	s.records[rec.Key] = rec
	s.mu.Unlock()
	return nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
