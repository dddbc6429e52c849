package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens-org/querylens/dataset"
	"github.com/querylens-org/querylens/engine"
)

// ============================================================================
// CHART STATE TESTS
// ============================================================================

// fakeStore records saves so tests can observe persistence.
type fakeStore struct {
	configs map[string]engine.ChartConfig
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{configs: make(map[string]engine.ChartConfig)}
}

func (s *fakeStore) SaveConfig(_ context.Context, chartID string, cfg engine.ChartConfig) error {
	s.configs[chartID] = cfg
	s.saves++
	return nil
}

func (s *fakeStore) LoadConfig(_ context.Context, chartID string) (engine.ChartConfig, bool, error) {
	cfg, ok := s.configs[chartID]
	return cfg, ok, nil
}

func (s *fakeStore) DeleteConfig(_ context.Context, chartID string) error {
	delete(s.configs, chartID)
	return nil
}

func timeSeriesData() *dataset.Dataset {
	return dataset.New([]string{"day", "sales"}, []dataset.Row{
		{"day": "2024-03-01", "sales": 100.0},
		{"day": "2024-03-02", "sales": 140.0},
	})
}

func TestObserveDatasetAutoDetectsOnce(t *testing.T) {
	ctx := context.Background()
	st, err := New(ctx, "c1", newFakeStore(), nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseUninitialized, st.Phase())

	require.NoError(t, st.ObserveDataset(ctx, timeSeriesData()))

	assert.Equal(t, PhaseAutoDetected, st.Phase())
	cfg := st.Config()
	assert.Equal(t, "day", cfg.XColumn)
	assert.Equal(t, []string{"sales"}, cfg.YColumns)
	assert.Equal(t, engine.ChartLine, cfg.ChartType)
	assert.Len(t, st.Rows(), 2)

	// A second dataset with different columns must not re-detect.
	other := dataset.New([]string{"region", "count"}, []dataset.Row{
		{"region": "west", "count": 3.0},
	})
	require.NoError(t, st.ObserveDataset(ctx, other))
	assert.Equal(t, "day", st.Config().XColumn)
}

func TestObserveDatasetSkipsDetectionOnEmptyData(t *testing.T) {
	ctx := context.Background()
	st, err := New(ctx, "c1", newFakeStore(), nil)
	require.NoError(t, err)

	require.NoError(t, st.ObserveDataset(ctx, dataset.New(nil, nil)))
	assert.Equal(t, PhaseUninitialized, st.Phase())

	// Detection still fires for the first real dataset afterwards.
	require.NoError(t, st.ObserveDataset(ctx, timeSeriesData()))
	assert.Equal(t, PhaseAutoDetected, st.Phase())
}

func TestObserveDatasetRespectsUserConfig(t *testing.T) {
	ctx := context.Background()
	st, err := New(ctx, "c1", newFakeStore(), nil)
	require.NoError(t, err)

	userCfg := engine.DefaultConfig()
	userCfg.ChartType = engine.ChartBar
	userCfg.XColumn = "day"
	userCfg.YColumns = []string{"sales"}
	require.NoError(t, st.ApplyConfig(ctx, userCfg))

	require.NoError(t, st.ObserveDataset(ctx, timeSeriesData()))
	assert.Equal(t, PhaseUserConfigured, st.Phase())
	assert.Equal(t, engine.ChartBar, st.Config().ChartType, "auto-detect must not override user settings")
}

func TestApplyConfigIsFullReplacement(t *testing.T) {
	ctx := context.Background()
	st, err := New(ctx, "c1", newFakeStore(), nil)
	require.NoError(t, err)
	require.NoError(t, st.ObserveDataset(ctx, timeSeriesData()))
	require.Equal(t, "day", st.Config().XColumn)

	// Saving a config with an empty x-column clears it, not merges it.
	next := engine.DefaultConfig()
	next.ChartType = engine.ChartBar
	next.YColumns = []string{"sales"}
	require.NoError(t, st.ApplyConfig(ctx, next))

	assert.Equal(t, "", st.Config().XColumn)
	assert.Equal(t, PhaseUserConfigured, st.Phase())
}

func TestApplyConfigRecomputesOnlyOnShapeChange(t *testing.T) {
	ctx := context.Background()
	st, err := New(ctx, "c1", newFakeStore(), nil)
	require.NoError(t, err)
	require.NoError(t, st.ObserveDataset(ctx, timeSeriesData()))

	cfg := st.Config()
	cfg.DecimalPlaces = 4
	require.NoError(t, st.ApplyConfig(ctx, cfg))
	before := st.Rows()

	cfg.ChartType = engine.ChartKPI
	require.NoError(t, st.ApplyConfig(ctx, cfg))
	after := st.Rows()

	assert.NotEqual(t, len(before), len(after), "shape change should recompute rows")
}

func TestPersistedConfigResumesUserConfigured(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()

	first, err := New(ctx, "c1", fs, nil)
	require.NoError(t, err)
	cfg := engine.DefaultConfig()
	cfg.ChartType = engine.ChartPie
	cfg.XColumn = "region"
	require.NoError(t, first.ApplyConfig(ctx, cfg))

	second, err := New(ctx, "c1", fs, nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseUserConfigured, second.Phase())
	assert.Equal(t, engine.ChartPie, second.Config().ChartType)

	// Fresh data must not re-detect over the restored config.
	require.NoError(t, second.ObserveDataset(ctx, timeSeriesData()))
	assert.Equal(t, engine.ChartPie, second.Config().ChartType)
}

func TestChartStateWorksWithoutStore(t *testing.T) {
	ctx := context.Background()
	st, err := New(ctx, "c1", nil, nil)
	require.NoError(t, err)
	require.NoError(t, st.ObserveDataset(ctx, timeSeriesData()))
	assert.Equal(t, PhaseAutoDetected, st.Phase())
}

// ============================================================================
// FETCH GUARD TESTS
// ============================================================================

func TestFetchGuardLastWriteWins(t *testing.T) {
	g := NewFetchGuard()

	t1 := g.Begin("c1")
	t2 := g.Begin("c1")

	assert.False(t, g.Accept("c1", t1), "stale token must be rejected")
	assert.True(t, g.Accept("c1", t2))
}

func TestFetchGuardIsPerChart(t *testing.T) {
	g := NewFetchGuard()

	a := g.Begin("a")
	b := g.Begin("b")

	assert.True(t, g.Accept("a", a))
	assert.True(t, g.Accept("b", b))
}

func TestFetchGuardForget(t *testing.T) {
	g := NewFetchGuard()
	tok := g.Begin("c1")
	g.Forget("c1")
	assert.False(t, g.Accept("c1", tok))
}
