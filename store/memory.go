package store

import (
	"context"
	"sync"

	"github.com/querylens-org/querylens/dashboard"
	"github.com/querylens-org/querylens/engine"
)

// MemoryStore keeps configs and layouts in process memory. Used by tests and
// by CLI runs that have no database configured.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]engine.ChartConfig
	layouts map[string][]dashboard.LayoutItem
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs: make(map[string]engine.ChartConfig),
		layouts: make(map[string][]dashboard.LayoutItem),
	}
}

func (s *MemoryStore) SaveConfig(_ context.Context, chartID string, cfg engine.ChartConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[chartID] = cfg
	return nil
}

func (s *MemoryStore) LoadConfig(_ context.Context, chartID string) (engine.ChartConfig, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[chartID]
	return cfg, ok, nil
}

func (s *MemoryStore) DeleteConfig(_ context.Context, chartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, chartID)
	return nil
}

func (s *MemoryStore) ListConfigs(_ context.Context) (map[string]engine.ChartConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]engine.ChartConfig, len(s.configs))
	for id, cfg := range s.configs {
		out[id] = cfg
	}
	return out, nil
}

func (s *MemoryStore) SaveLayout(_ context.Context, dashboardID string, items []dashboard.LayoutItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[dashboardID] = append([]dashboard.LayoutItem(nil), items...)
	return nil
}

func (s *MemoryStore) LoadLayout(_ context.Context, dashboardID string) ([]dashboard.LayoutItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.layouts[dashboardID]
	if !ok {
		return nil, false, nil
	}
	return append([]dashboard.LayoutItem(nil), items...), true, nil
}
