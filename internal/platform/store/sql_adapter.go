package store

import (
	"context"
	"errors"
	"time"

	"qsmerge/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is what the pool and a pgx.Tx have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced runs statements on db and reports each one to p's tracer
type traced struct {
	db pgxQuerier
	p  *pg.PG
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.db.Exec(ctx, sql, args...)
	t.p.Trace(ctx, sql, args, start, err)
	return ct, err
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.db.Query(ctx, sql, args...)
	t.p.Trace(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rows{rs}, nil
}

// QueryRow reports once Scan has run, so the trace carries the scan error
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	return row{r: t.db.QueryRow(ctx, sql, args...), done: func(err error) {
		t.p.Trace(ctx, sql, args, start, err)
	}}
}

// pgAdapter is the TxRunner the store hands out for Postgres
type pgAdapter struct{ traced }

func newPGAdapter(p *pg.PG) *pgAdapter { return &pgAdapter{traced{db: p.Pool, p: p}} }

// Ping runs SELECT 1 through the tracer
func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("pg: nil adapter")
	}
	var one int
	return a.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

// Tx commits when fn returns nil and rolls back otherwise
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	return pgx.BeginFunc(ctx, a.p.Pool, func(tx pgx.Tx) error {
		return fn(traced{db: tx, p: a.p})
	})
}

type row struct {
	r    pgx.Row
	done func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	x.done(err)
	return err
}

type rows struct{ pgx.Rows }

func (x rows) Columns() []string {
	fields := x.FieldDescriptions()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
