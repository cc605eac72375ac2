// Package repo provides postgres access for the reconcile ledger, tables and stats
package repo

import (
	"context"
	_ "embed"
	"time"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
	"qsmerge/internal/modkit/repokit"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/services/reconcile/domain"
)

//go:embed schema.sql
var schemaSQL string

// defaultListLimit caps ListPeriods when the filter has no limit
const defaultListLimit = 100

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// EnsureSchema creates the reconcile tables when missing
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return perr.FromPostgres(err, "reconcile: ensure schema")
	}
	return nil
}

// StartPeriod marks the start of a period (idempotent per run)
func (r *queries) StartPeriod(ctx context.Context, runID string, k period.Key) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO period_runs (run_id, period_key, started_at, status)
		VALUES ($1::uuid, $2, now(), 'running')
		ON CONFLICT (run_id, period_key) DO UPDATE
		SET started_at = now(), status = 'running', error = null, finished_at = null
	`, runID, k.String())
	return perr.FromPostgresf(err, "start period %s", k)
}

// FinishPeriod records the outcome of a period (idempotent)
func (r *queries) FinishPeriod(ctx context.Context, runID string, k period.Key, fin domain.PeriodFinish) error {
	warnings := fin.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	_, err := r.q.Exec(ctx, `
		UPDATE period_runs SET
			finished_at = now(),
			status = $3,
			origin = $4,
			sources = $5,
			rows_in = $6,
			rows_out = $7,
			overlap_rows = $8,
			diff_ratio = $9,
			nulled_rows = $10,
			outliers = $11,
			outlier_mass = $12,
			deleted = $13,
			trimmed = $14,
			trim_mass = $15,
			trim_ratio = $16,
			padded = $17,
			suspicious = $18,
			warnings = $19,
			load_ms = $20,
			reconcile_ms = $21,
			save_ms = $22,
			elapsed_ms = $23,
			error = NULLIF($24,'')
		WHERE run_id = $1::uuid AND period_key = $2
	`,
		runID, k.String(), string(fin.Status), fin.Origin, fin.Sources,
		fin.RowsIn, fin.RowsOut, fin.OverlapRows, fin.DiffRatio,
		fin.NulledRows, fin.Outliers, fin.OutlierMass, fin.Deleted,
		fin.Trimmed, fin.TrimMass, fin.TrimRatio, fin.Padded, fin.Suspicious,
		warnings, fin.LoadMS, fin.ReconcileMS, fin.SaveMS, fin.ElapsedMS, fin.ErrText,
	)
	return perr.FromPostgresf(err, "finish period %s", k)
}

// ListPeriods returns ledger rows, newest first
func (r *queries) ListPeriods(ctx context.Context, f domain.ListFilter) ([]domain.PeriodRun, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.q.Query(ctx, `
		SELECT run_id::text, period_key, started_at, finished_at, status, origin,
			sources, rows_in, rows_out, overlap_rows, diff_ratio, nulled_rows,
			outliers, outlier_mass, deleted, trimmed, trim_mass, trim_ratio,
			padded, suspicious, warnings, load_ms, reconcile_ms, save_ms,
			elapsed_ms, COALESCE(error, '')
		FROM period_runs
		WHERE ($1 = '' OR run_id::text = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY started_at DESC, period_key
		LIMIT $3
	`, f.RunID, string(f.Status), limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list periods")
	}
	defer rows.Close()

	var out []domain.PeriodRun
	for rows.Next() {
		var (
			pr     domain.PeriodRun
			key    string
			status string
			fin    *time.Time
		)
		if err := rows.Scan(
			&pr.RunID, &key, &pr.StartedAt, &fin, &status, &pr.Origin,
			&pr.Sources, &pr.RowsIn, &pr.RowsOut, &pr.OverlapRows, &pr.DiffRatio, &pr.NulledRows,
			&pr.Outliers, &pr.OutlierMass, &pr.Deleted, &pr.Trimmed, &pr.TrimMass, &pr.TrimRatio,
			&pr.Padded, &pr.Suspicious, &pr.Warnings, &pr.LoadMS, &pr.ReconcileMS, &pr.SaveMS,
			&pr.ElapsedMS, &pr.ErrText,
		); err != nil {
			return nil, perr.FromPostgres(err, "scan period run")
		}
		if pr.Key, err = period.ParseKey(key); err != nil {
			return nil, err
		}
		pr.Status = domain.Status(status)
		pr.FinishedAt = fin
		out = append(out, pr)
	}
	return out, perr.FromPostgres(rows.Err(), "list periods")
}

// TableExists reports whether a reconciled table is stored under name
func (r *queries) TableExists(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM period_tables WHERE name = $1)`, name).Scan(&ok)
	return ok, perr.FromPostgresf(err, "table exists %s", name)
}

// LoadTable reads a reconciled table
func (r *queries) LoadTable(ctx context.Context, name string) (*table.Table, error) {
	var (
		n, width int
		vals     []*float64
	)
	err := r.q.QueryRow(ctx, `SELECT n_rows, width, vals FROM period_tables WHERE name = $1`, name).
		Scan(&n, &width, &vals)
	if err != nil {
		if perr.IsNoRows(err) {
			return nil, perr.NotFoundf("table %s not found", name)
		}
		return nil, perr.FromPostgresf(err, "load table %s", name)
	}
	if width != table.Width || len(vals) != n*width {
		return nil, perr.Newf(perr.ErrorCodeDB, "table %s: stored shape %dx%d does not match %d values", name, n, width, len(vals))
	}
	rows := make([]table.Row, n)
	for i := range rows {
		rows[i] = fromNullable(vals[i*width : (i+1)*width])
	}
	return table.New(rows), nil
}

// SaveTable replaces the reconciled table stored under name
func (r *queries) SaveTable(ctx context.Context, name string, t *table.Table) error {
	vals := make([]*float64, 0, t.Len()*table.Width)
	for i := range t.Len() {
		vals = append(vals, toNullable(t.Rows[i])...)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO period_tables (name, n_rows, width, vals, saved_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET n_rows = EXCLUDED.n_rows, width = EXCLUDED.width, vals = EXCLUDED.vals, saved_at = now()
	`, name, t.Len(), table.Width, vals)
	return perr.FromPostgresf(err, "save table %s", name)
}

// LoadStats reads every stats row
func (r *queries) LoadStats(ctx context.Context) (reconcile.Stats, error) {
	return r.stats(ctx, `SELECT period_key, kind, vals FROM summary_stats`)
}

// PeriodStats reads the stats rows of one period
func (r *queries) PeriodStats(ctx context.Context, k period.Key) (reconcile.Stats, error) {
	return r.stats(ctx, `SELECT period_key, kind, vals FROM summary_stats WHERE period_key = $1`, k.String())
}

func (r *queries) stats(ctx context.Context, sql string, args ...any) (reconcile.Stats, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "load stats")
	}
	defer rows.Close()

	out := reconcile.Stats{}
	for rows.Next() {
		var (
			key, kind string
			vals      []*float64
		)
		if err := rows.Scan(&key, &kind, &vals); err != nil {
			return nil, perr.FromPostgres(err, "scan stats")
		}
		k, err := period.ParseKey(key)
		if err != nil {
			return nil, err
		}
		if len(vals) != table.Width {
			return nil, perr.Newf(perr.ErrorCodeDB, "stats %s/%s: %d values, want %d", key, kind, len(vals), table.Width)
		}
		out[reconcile.StatKey{Period: k, Kind: reconcile.StatKind(kind)}] = fromNullable(vals)
	}
	return out, perr.FromPostgres(rows.Err(), "load stats")
}

// UpsertStats writes the named rows of s
func (r *queries) UpsertStats(ctx context.Context, s reconcile.Stats, keys []reconcile.StatKey) error {
	const upsertSQL = `
		INSERT INTO summary_stats (period_key, kind, vals, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (period_key, kind) DO UPDATE
		SET vals = EXCLUDED.vals, updated_at = now()
	`
	for _, k := range keys {
		row, ok := s[k]
		if !ok {
			continue
		}
		if _, err := r.q.Exec(ctx, upsertSQL, k.Period.String(), string(k.Kind), toNullable(row)); err != nil {
			return perr.FromPostgresf(err, "upsert stats %s/%s", k.Period, k.Kind)
		}
	}
	return nil
}

// toNullable maps missing values to SQL NULL
func toNullable(r table.Row) []*float64 {
	out := make([]*float64, table.Width)
	for i, v := range r {
		if table.IsNull(v) {
			continue
		}
		out[i] = &v
	}
	return out
}

func fromNullable(vals []*float64) table.Row {
	var r table.Row
	for i, v := range vals {
		if v == nil {
			r[i] = table.Null
			continue
		}
		r[i] = *v
	}
	return r
}
