// Package querylens provides the chart configuration and data
// transformation core of an AI data-analyst dashboard.
//
// Usage:
//
//	import "github.com/querylens-org/querylens/engine"
//
//	ds, _ := helpers.ParseCSV(raw)
//	proposed := engine.AutoDetect(ds)
//	cfg := engine.DefaultConfig().MergeDefaults(proposed)
//	rows := engine.Transform(ds, cfg)
//
// The engine takes raw tabular rows (supplied by an external query-execution
// collaborator) and a ChartConfig, and returns render-ready rows. Chart
// drawing, chat networking, and SQL generation are handled by external
// collaborators — the core never calls any remote service and all
// computation is local.
package querylens
