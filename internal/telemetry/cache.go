package telemetry

import (
	"context"
	"strings"

	"github.com/thomas-vilte/mateticket/internal/cache"
)

// InstrumentedStore counts hits and misses of the wrapped store by key
// prefix ("triage", "sla_prediction", ...).
type InstrumentedStore struct {
	cache.Store
	metrics *Metrics
}

func InstrumentStore(store cache.Store, m *Metrics) *InstrumentedStore {
	return &InstrumentedStore{Store: store, metrics: m}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	found, err := s.Store.Get(ctx, key, dst)
	if err == nil {
		s.metrics.observeCache(keyPrefix(key), found)
	}
	return found, err
}

func keyPrefix(key string) string {
	prefix, _, _ := strings.Cut(key, ":")
	return prefix
}
