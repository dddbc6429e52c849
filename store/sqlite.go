package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/querylens-org/querylens/dashboard"
	"github.com/querylens-org/querylens/engine"
)

// ============================================================================
// SQLITE STORE — persistent chart configs and dashboard layouts
// ============================================================================
// Configs and layouts are stored as JSON blobs keyed by identifier. SQLite
// keeps the single-file deployment story; the blobs are opaque to SQL, all
// querying happens by key.
// ============================================================================

// SQLiteStore persists chart configurations and dashboard layouts.
// Thread-safe for concurrent access.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chart_configs (
		chart_id TEXT PRIMARY KEY,
		config TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dashboard_layouts (
		dashboard_id TEXT PRIMARY KEY,
		layout TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveConfig upserts the configuration for a chart.
func (s *SQLiteStore) SaveConfig(ctx context.Context, chartID string, cfg engine.ChartConfig) error {
	blob, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chart_configs (chart_id, config, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(chart_id) DO UPDATE SET
			config = excluded.config,
			updated_at = excluded.updated_at`,
		chartID, string(blob), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// LoadConfig returns the stored configuration for a chart, reporting whether
// one exists.
func (s *SQLiteStore) LoadConfig(ctx context.Context, chartID string) (engine.ChartConfig, bool, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT config FROM chart_configs WHERE chart_id = ?`, chartID).Scan(&blob)
	if err == sql.ErrNoRows {
		return engine.ChartConfig{}, false, nil
	}
	if err != nil {
		return engine.ChartConfig{}, false, fmt.Errorf("failed to load config: %w", err)
	}
	var cfg engine.ChartConfig
	if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
		return engine.ChartConfig{}, false, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, true, nil
}

// DeleteConfig removes the stored configuration for a chart, if any.
func (s *SQLiteStore) DeleteConfig(ctx context.Context, chartID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM chart_configs WHERE chart_id = ?`, chartID); err != nil {
		return fmt.Errorf("failed to delete config: %w", err)
	}
	return nil
}

// ListConfigs returns every stored chart configuration keyed by chart ID.
func (s *SQLiteStore) ListConfigs(ctx context.Context) (map[string]engine.ChartConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chart_id, config FROM chart_configs`)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]engine.ChartConfig)
	for rows.Next() {
		var id, blob string
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan config row: %w", err)
		}
		var cfg engine.ChartConfig
		if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", id, err)
		}
		out[id] = cfg
	}
	return out, rows.Err()
}

// SaveLayout upserts the grid layout for a dashboard.
func (s *SQLiteStore) SaveLayout(ctx context.Context, dashboardID string, items []dashboard.LayoutItem) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard_layouts (dashboard_id, layout, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(dashboard_id) DO UPDATE SET
			layout = excluded.layout,
			updated_at = excluded.updated_at`,
		dashboardID, string(blob), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

// LoadLayout returns the stored layout for a dashboard, reporting whether
// one exists.
func (s *SQLiteStore) LoadLayout(ctx context.Context, dashboardID string) ([]dashboard.LayoutItem, bool, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT layout FROM dashboard_layouts WHERE dashboard_id = ?`, dashboardID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load layout: %w", err)
	}
	var items []dashboard.LayoutItem
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal layout: %w", err)
	}
	return items, true, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
