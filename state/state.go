package state

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/querylens-org/querylens/dataset"
	"github.com/querylens-org/querylens/engine"
)

// ============================================================================
// CHART CONFIG STATE — Uninitialized → AutoDetected → UserConfigured
// ============================================================================
// One instance per chart identifier. Owns the mutable configuration, its
// persistence, and the auto-detect-vs-user-override policy. Config writes
// and derived-row recomputes happen under one lock, so a reader never sees
// a torn, partially-applied configuration.
// ============================================================================

// Phase names the position in the configuration lifecycle.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseAutoDetected
	PhaseUserConfigured
)

func (p Phase) String() string {
	switch p {
	case PhaseAutoDetected:
		return "auto-detected"
	case PhaseUserConfigured:
		return "user-configured"
	default:
		return "uninitialized"
	}
}

// Store persists chart configurations keyed by chart identifier. The config
// is an opaque blob to the store; it must round-trip exactly.
type Store interface {
	SaveConfig(ctx context.Context, chartID string, cfg engine.ChartConfig) error
	LoadConfig(ctx context.Context, chartID string) (engine.ChartConfig, bool, error)
	DeleteConfig(ctx context.Context, chartID string) error
}

// ChartState is the per-chart configuration state machine.
type ChartState struct {
	chartID string
	store   Store
	log     *zap.Logger

	mu      sync.Mutex
	phase   Phase
	config  engine.ChartConfig
	dataset *dataset.Dataset
	rows    []engine.TransformedRow
}

// New creates the state machine for a chart, loading any persisted
// configuration. A previously saved non-default config resumes in the
// user-configured phase; auto-detection will not touch it.
func New(ctx context.Context, chartID string, store Store, log *zap.Logger) (*ChartState, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ChartState{
		chartID: chartID,
		store:   store,
		log:     log.With(zap.String("chart_id", chartID)),
		phase:   PhaseUninitialized,
		config:  engine.DefaultConfig(),
	}
	if store != nil {
		cfg, found, err := store.LoadConfig(ctx, chartID)
		if err != nil {
			return nil, fmt.Errorf("load chart config: %w", err)
		}
		if found {
			s.config = cfg.Normalize()
			if !s.config.IsDefault() {
				s.phase = PhaseUserConfigured
			}
		}
	}
	return s, nil
}

// ChartID returns the chart identifier this state machine is keyed by.
func (s *ChartState) ChartID() string { return s.chartID }

// Phase returns the current lifecycle phase.
func (s *ChartState) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Config returns the current configuration.
func (s *ChartState) Config() engine.ChartConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Rows returns the current render-ready rows.
func (s *ChartState) Rows() []engine.TransformedRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

// ObserveDataset installs a fresh dataset and recomputes the derived rows.
// The first non-empty dataset observed while the config is still entirely
// at defaults triggers the one-time auto-detect merge; fields the user has
// already set are never overwritten.
func (s *ChartState) ObserveDataset(ctx context.Context, d *dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dataset = d

	if s.phase == PhaseUninitialized && !d.Empty() && s.config.IsDefault() {
		proposed := engine.AutoDetect(d)
		s.config = s.config.MergeDefaults(proposed)
		s.phase = PhaseAutoDetected
		s.log.Debug("auto-detected chart defaults",
			zap.String("x", s.config.XColumn),
			zap.Strings("y", s.config.YColumns),
			zap.String("chart_type", string(s.config.ChartType)))
		if err := s.persistLocked(ctx); err != nil {
			return err
		}
	}

	s.rows = engine.Transform(s.dataset, s.config)
	return nil
}

// ApplyConfig replaces the whole configuration (not a merge) as saved from
// the editor, persists it, and recomputes rows only when a shape-relevant
// field changed.
func (s *ChartState) ApplyConfig(ctx context.Context, cfg engine.ChartConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.config
	s.config = cfg.Normalize()
	s.phase = PhaseUserConfigured

	if err := s.persistLocked(ctx); err != nil {
		return err
	}
	if !prev.ShapeEquals(s.config) {
		s.rows = engine.Transform(s.dataset, s.config)
	}
	s.log.Debug("applied chart config", zap.String("chart_type", string(s.config.ChartType)))
	return nil
}

func (s *ChartState) persistLocked(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveConfig(ctx, s.chartID, s.config); err != nil {
		return fmt.Errorf("persist chart config: %w", err)
	}
	return nil
}
