package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/querylens-org/querylens/dataset"
	"github.com/querylens-org/querylens/engine"
	"github.com/querylens-org/querylens/helpers"
	"github.com/querylens-org/querylens/render"
	"github.com/querylens-org/querylens/state"
	"github.com/querylens-org/querylens/store"
)

// ============================================================================
// QUERYLENS CLI — chart configuration and transformation for tabular data
// ============================================================================

const version = "0.1.0"

var (
	flagEnvFile  string
	flagDBPath   string
	flagLogLevel string
	logger       *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "querylens",
		Short: "Turn query results into chart configurations and render-ready data",
		Long: `QueryLens

Classifies tabular data, proposes chart defaults, and transforms rows
into render-ready series. Reads CSV, JSON row arrays, and XLSX.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagEnvFile != "" {
				if err := godotenv.Load(flagEnvFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			} else {
				_ = godotenv.Load() // .env is optional
			}
			if flagDBPath == "" {
				flagDBPath = os.Getenv("QUERYLENS_DB")
			}
			if flagDBPath == "" {
				flagDBPath = "querylens.db"
			}
			return setupLogging(flagLogLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to SQLite database (default $QUERYLENS_DB or querylens.db)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newDetectCmd(),
		newTransformCmd(),
		newRenderCmd(),
		newPreviewCmd(),
		newExportCmd(),
		newConfigsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var cfg zap.Config
	if level == "debug" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	var err error
	logger, err = cfg.Build()
	return err
}

// loadDataset parses a data file by extension.
func loadDataset(path string) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return helpers.ParseCSV(data)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return helpers.ParseJSONRows(data)
	case ".xlsx":
		return helpers.ParseXLSX(path, "")
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .csv, .json, or .xlsx)", filepath.Ext(path))
	}
}

// loadConfig reads a chart config JSON file, or returns the default config
// when path is empty.
func loadConfig(path string) (engine.ChartConfig, error) {
	cfg := engine.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg.Normalize(), nil
}

// chartStateFor runs a dataset (and optional user config) through the
// configuration state machine the way the dashboard would.
func chartStateFor(ctx context.Context, d *dataset.Dataset, configPath string) (*state.ChartState, error) {
	st, err := state.New(ctx, "cli", nil, logger)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if err := st.ApplyConfig(ctx, cfg); err != nil {
			return nil, err
		}
	}
	if err := st.ObserveDataset(ctx, d); err != nil {
		return nil, err
	}
	return st, nil
}

func writeJSON(outPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if outPath == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(outPath, append(data, '\n'), 0o644)
}

func newDetectCmd() *cobra.Command {
	var file, out string
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Propose chart defaults for a data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDataset(file)
			if err != nil {
				return err
			}
			cfg := engine.DefaultConfig().MergeDefaults(engine.AutoDetect(d))
			logger.Debug("detected defaults",
				zap.String("x", cfg.XColumn), zap.Strings("y", cfg.YColumns))
			return writeJSON(out, cfg)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to data file (required)")
	cmd.Flags().StringVar(&out, "out", "", "Write output to file instead of stdout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTransformCmd() *cobra.Command {
	var file, configPath, out string
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform a data file into render-ready rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDataset(file)
			if err != nil {
				return err
			}
			st, err := chartStateFor(cmd.Context(), d, configPath)
			if err != nil {
				return err
			}
			return writeJSON(out, st.Rows())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to data file (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to chart config JSON (default: auto-detect)")
	cmd.Flags().StringVar(&out, "out", "", "Write output to file instead of stdout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var file, configPath, out, title string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a data file as an HTML chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDataset(file)
			if err != nil {
				return err
			}
			st, err := chartStateFor(cmd.Context(), d, configPath)
			if err != nil {
				return err
			}
			cfg := st.Config()
			if cfg.ChartType == engine.ChartKPI {
				return writeJSON(out, render.BuildKPI(cfg, st.Rows()))
			}
			chart, err := render.BuildChart(title, cfg, st.Rows())
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := render.WriteHTML(f, chart); err != nil {
				return err
			}
			logger.Info("wrote chart", zap.String("path", out))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to data file (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to chart config JSON (default: auto-detect)")
	cmd.Flags().StringVar(&out, "out", "chart.html", "Output HTML path")
	cmd.Flags().StringVar(&title, "title", "", "Chart title")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var file, configPath string
	var limit, height int
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print a table and terminal graph preview of a data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDataset(file)
			if err != nil {
				return err
			}
			st, err := chartStateFor(cmd.Context(), d, configPath)
			if err != nil {
				return err
			}
			cfg := st.Config()

			table := render.BuildPreview(d, cfg, limit)
			printTable(table)

			if cfg.ChartType != engine.ChartKPI {
				opts := render.DefaultAsciiOptions()
				opts.Height = height
				fmt.Println()
				fmt.Println(render.AsciiPreview(cfg, st.Rows(), opts))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to data file (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to chart config JSON (default: auto-detect)")
	cmd.Flags().IntVar(&limit, "rows", 10, "Max preview rows")
	cmd.Flags().IntVar(&height, "height", 10, "Graph height in lines")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printTable(t *render.TableData) {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col.Label)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	var header strings.Builder
	for i, col := range t.Columns {
		if i > 0 {
			header.WriteString("  ")
		}
		header.WriteString(fmt.Sprintf("%-*s", widths[i], col.Label))
	}
	fmt.Println(header.String())
	for _, row := range t.Rows {
		var line strings.Builder
		for i, cell := range row {
			if i > 0 {
				line.WriteString("  ")
			}
			if t.Columns[i].Align == "right" {
				line.WriteString(fmt.Sprintf("%*s", widths[i], cell))
			} else {
				line.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
			}
		}
		fmt.Println(line.String())
	}
	fmt.Println(t.Caption())
}

func newExportCmd() *cobra.Command {
	var file, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-export a data file as download-form CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDataset(file)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			return helpers.WriteCSV(f, d)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to data file (required)")
	cmd.Flags().StringVar(&out, "out", "data.csv", "Output CSV path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newConfigsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Manage persisted chart configurations",
	}

	openStore := func() (*store.SQLiteStore, error) {
		return store.NewSQLiteStore(flagDBPath)
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored chart configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			configs, err := s.ListConfigs(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON("", configs)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <chart-id>",
		Short: "Print one stored chart configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			cfg, found, err := s.LoadConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no config stored for chart %s", args[0])
			}
			return writeJSON("", cfg)
		},
	}

	var setFile string
	setCmd := &cobra.Command{
		Use:   "set <chart-id>",
		Short: "Store a chart configuration from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(setFile)
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.SaveConfig(cmd.Context(), args[0], cfg)
		},
	}
	setCmd.Flags().StringVar(&setFile, "config", "", "Path to chart config JSON (required)")
	_ = setCmd.MarkFlagRequired("config")

	deleteCmd := &cobra.Command{
		Use:   "delete <chart-id>",
		Short: "Delete a stored chart configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.DeleteConfig(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(listCmd, getCmd, setCmd, deleteCmd)
	return cmd
}
