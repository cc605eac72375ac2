// Package export ships summary statistics to ClickHouse for analytics
package export

import (
	"context"
	"time"

	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/logger"
	"qsmerge/internal/platform/store"
)

// Table is the ClickHouse table the exporter writes
const Table = "qs_summary_stats"

const ddl = `
CREATE TABLE IF NOT EXISTS ` + Table + ` (
	run_id       String,
	exported_at  DateTime64(3, 'UTC'),
	experiment   LowCardinality(String),
	step         LowCardinality(String),
	time_window  LowCardinality(String),
	kind         LowCardinality(String),
	stat_column  LowCardinality(String),
	value        Nullable(Float64)
) ENGINE = ReplacingMergeTree(exported_at)
ORDER BY (experiment, step, time_window, kind, stat_column)
`

// ClickHouse implements domain.StatsExporter in long form: one row per stat cell
type ClickHouse struct {
	ch  store.Clickhouse
	now func() time.Time
}

// New returns an exporter over ch
func New(ch store.Clickhouse) *ClickHouse {
	return &ClickHouse{ch: ch, now: time.Now}
}

// EnsureTable creates the export table when missing
func (c *ClickHouse) EnsureTable(ctx context.Context) error {
	if err := c.ch.Exec(ctx, ddl); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "export: create "+Table)
	}
	return nil
}

// Export inserts the rows of s named by keys in one batch
func (c *ClickHouse) Export(ctx context.Context, runID string, s reconcile.Stats, keys []reconcile.StatKey) error {
	at := c.now().UTC()
	rows := make([][]any, 0, len(keys)*table.Width)
	for _, k := range keys {
		row, ok := s[k]
		if !ok {
			continue
		}
		for col, v := range row {
			var val *float64
			if !table.IsNull(v) {
				val = &v
			}
			rows = append(rows, []any{
				runID, at, k.Period.Experiment, k.Period.Step, k.Period.Window,
				string(k.Kind), table.Columns[col], val,
			})
		}
	}
	if err := c.ch.Insert(ctx, Table, rows); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "export: insert "+Table)
	}
	logger.C(ctx).Debug().Int("rows", len(rows)).Str("table", Table).Msg("export: stats shipped")
	return nil
}
