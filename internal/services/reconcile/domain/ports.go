package domain

import (
	"context"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, opts RunOptions) (RunSummary, error)
}

// TableStore persists and loads tables under opaque string keys.
// Save and Load round trip the schema and all values including nulls
type TableStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Load(ctx context.Context, key string) (*table.Table, error)
	LoadMany(ctx context.Context, keys []string) ([]*table.Table, error)
	Save(ctx context.Context, key string, t *table.Table) (location string, err error)
}

// PeriodIndex lists periods and the source ids that belong to each
type PeriodIndex interface {
	// Periods returns keys in processing order
	Periods(ctx context.Context) ([]period.Key, error)
	// Sources returns the source ids of k, unordered
	Sources(ctx context.Context, k period.Key) ([]string, error)
}

// StatsStore holds the multi period summary statistics report
type StatsStore interface {
	LoadStats(ctx context.Context) (reconcile.Stats, error)
	// SaveStats persists the rows of s named by keys
	SaveStats(ctx context.Context, s reconcile.Stats, keys []reconcile.StatKey) error
}

// StatsExporter ships the stats rows of a run to an analytics sink
type StatsExporter interface {
	Export(ctx context.Context, runID string, s reconcile.Stats, keys []reconcile.StatKey) error
}

// StorageRepo is the postgres repository bound to one Queryer
type StorageRepo interface {
	// StartPeriod marks the beginning of a period in the ledger
	StartPeriod(ctx context.Context, runID string, k period.Key) error

	// FinishPeriod records the outcome of a period
	FinishPeriod(ctx context.Context, runID string, k period.Key, fin PeriodFinish) error

	// ListPeriods returns ledger rows, newest first
	ListPeriods(ctx context.Context, f ListFilter) ([]PeriodRun, error)

	// TableExists reports whether a reconciled table is stored under name
	TableExists(ctx context.Context, name string) (bool, error)

	// LoadTable reads a reconciled table, perr.ErrorCodeNotFound when missing
	LoadTable(ctx context.Context, name string) (*table.Table, error)

	// SaveTable replaces the reconciled table stored under name
	SaveTable(ctx context.Context, name string, t *table.Table) error

	// LoadStats reads every stats row
	LoadStats(ctx context.Context) (reconcile.Stats, error)

	// PeriodStats reads the stats rows of one period
	PeriodStats(ctx context.Context, k period.Key) (reconcile.Stats, error)

	// UpsertStats writes the named rows of s
	UpsertStats(ctx context.Context, s reconcile.Stats, keys []reconcile.StatKey) error
}
