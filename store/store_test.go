package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens-org/querylens/dashboard"
	"github.com/querylens-org/querylens/engine"
)

// ============================================================================
// STORE TESTS — shared behavior across backends
// ============================================================================

// configStore is the common surface the tests exercise.
type configStore interface {
	SaveConfig(ctx context.Context, chartID string, cfg engine.ChartConfig) error
	LoadConfig(ctx context.Context, chartID string) (engine.ChartConfig, bool, error)
	DeleteConfig(ctx context.Context, chartID string) error
	ListConfigs(ctx context.Context) (map[string]engine.ChartConfig, error)
	SaveLayout(ctx context.Context, dashboardID string, items []dashboard.LayoutItem) error
	LoadLayout(ctx context.Context, dashboardID string) ([]dashboard.LayoutItem, bool, error)
}

func sampleConfig() engine.ChartConfig {
	return engine.ChartConfig{
		ChartType:             engine.ChartLine,
		XColumn:               "day",
		YColumns:              []string{"sales", "margin"},
		Aggregation:           engine.AggSum,
		GroupBy:               "region",
		DecimalPlaces:         2,
		UseThousandsSeparator: true,
		HighlightCategory:     "status",
		HighlightValue:        "alert",
	}
}

func runStoreTests(t *testing.T, s configStore) {
	ctx := context.Background()

	t.Run("missing config", func(t *testing.T) {
		_, found, err := s.LoadConfig(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("config round trip", func(t *testing.T) {
		want := sampleConfig()
		require.NoError(t, s.SaveConfig(ctx, "c1", want))

		got, found, err := s.LoadConfig(ctx, "c1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want, got)
	})

	t.Run("save overwrites", func(t *testing.T) {
		cfg := sampleConfig()
		require.NoError(t, s.SaveConfig(ctx, "c2", cfg))
		cfg.ChartType = engine.ChartBar
		require.NoError(t, s.SaveConfig(ctx, "c2", cfg))

		got, _, err := s.LoadConfig(ctx, "c2")
		require.NoError(t, err)
		assert.Equal(t, engine.ChartBar, got.ChartType)
	})

	t.Run("list", func(t *testing.T) {
		configs, err := s.ListConfigs(ctx)
		require.NoError(t, err)
		assert.Contains(t, configs, "c1")
		assert.Contains(t, configs, "c2")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteConfig(ctx, "c1"))
		_, found, err := s.LoadConfig(ctx, "c1")
		require.NoError(t, err)
		assert.False(t, found)

		// Deleting a missing config is not an error.
		require.NoError(t, s.DeleteConfig(ctx, "c1"))
	})

	t.Run("layout round trip", func(t *testing.T) {
		items := []dashboard.LayoutItem{
			{ChartID: "c1", X: 0, Y: 0, W: 12, H: 1, MinW: 12, MinH: 1},
			{ChartID: "c2", X: 0, Y: 1, W: 6, H: 2, MinW: 12, MinH: 1},
		}
		require.NoError(t, s.SaveLayout(ctx, "main", items))

		got, found, err := s.LoadLayout(ctx, "main")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, items, got)
	})

	t.Run("missing layout", func(t *testing.T) {
		_, found, err := s.LoadLayout(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "querylens.db"))
	require.NoError(t, err)
	defer s.Close()

	runStoreTests(t, s)
}

func TestSQLiteStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStore("")
	assert.Error(t, err)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "querylens.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveConfig(ctx, "c1", sampleConfig()))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	got, found, err := second.LoadConfig(ctx, "c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleConfig(), got)
}
