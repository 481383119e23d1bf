package cost

import (
	"context"
	"sort"
	"sync"
	"time"
)

type ActivityRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Command      string    `json:"command"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	TokensInput  int       `json:"tokens_input"`
	TokensOutput int       `json:"tokens_output"`
	CostUSD      float64   `json:"cost_usd"`
	DurationMs   int64     `json:"duration_ms"`
	CacheHit     bool      `json:"cache_hit"`
	Hash         string    `json:"hash"`
}

// ActivityStore persists AI call records.
type ActivityStore interface {
	SaveActivity(ctx context.Context, record ActivityRecord) error
	// ListActivity returns records with a timestamp at or after since,
	// oldest first.
	ListActivity(ctx context.Context, since time.Time) ([]ActivityRecord, error)
}

const defaultMemoryRecords = 10_000

// MemoryActivityStore keeps the most recent records in memory.
type MemoryActivityStore struct {
	mu      sync.RWMutex
	records []ActivityRecord
	max     int
}

var _ ActivityStore = (*MemoryActivityStore)(nil)

func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{max: defaultMemoryRecords}
}

func (s *MemoryActivityStore) SaveActivity(_ context.Context, record ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	if len(s.records) > s.max {
		s.records = append([]ActivityRecord(nil), s.records[len(s.records)-s.max:]...)
	}
	return nil
}

func (s *MemoryActivityStore) ListActivity(_ context.Context, since time.Time) ([]ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ActivityRecord, 0, len(s.records))
	for _, r := range s.records {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
