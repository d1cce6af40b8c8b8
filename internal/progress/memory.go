package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is how long terminal records are retained for the client to
// observe before the sweep removes them.
const DefaultTTL = 10 * time.Minute

// MemoryStore is the in-memory Store implementation. Terminal records are
// evicted after a TTL so sustained load cannot grow the map without bound.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Key]Record
	ttl     time.Duration
	logger  *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewMemoryStore creates an in-memory progress store. A ttl of zero uses
// DefaultTTL.
func NewMemoryStore(ttl time.Duration, logger *slog.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		records: make(map[Key]Record),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the record for key.
func (s *MemoryStore) Get(key Key) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok
}

// Set upserts the record for key.
func (s *MemoryStore) Set(key Key, rec Record) error {
	rec.UpdatedAt = s.now()

	s.mu.Lock()
	s.records[key] = rec
	s.mu.Unlock()
	return nil
}

// Delete removes the record for key.
func (s *MemoryStore) Delete(key Key) {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
}

// Len returns the number of tracked records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Sweep removes terminal records older than the TTL and returns how many
// were evicted. Active (non-terminal) records are never swept.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, rec := range s.records {
		if rec.Status.Terminal() && now.Sub(rec.UpdatedAt) > s.ttl {
			delete(s.records, key)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs Sweep on the given interval until ctx is cancelled.
// Call in a goroutine.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.Sweep(); evicted > 0 {
				s.logger.Debug("swept terminal progress records", "evicted", evicted)
			}
		}
	}
}

// Verify interface
var _ Store = (*MemoryStore)(nil)
