package store

import "context"

// The sql seam mirrors the subset of pgx the repos touch, so fakes stay small

type (
	Row interface{ Scan(dest ...any) error }

	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Columns() []string
		Err() error
		Close()
	}

	CommandTag interface {
		RowsAffected() int64
		String() string
	}

	// RowQuerier runs statements on the pool or inside an open transaction
	RowQuerier interface {
		Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
		Query(ctx context.Context, sql string, args ...any) (Rows, error)
		QueryRow(ctx context.Context, sql string, args ...any) Row
	}

	// TxRunner commits when fn returns nil and rolls back otherwise
	TxRunner interface {
		RowQuerier
		Tx(ctx context.Context, fn func(q RowQuerier) error) error
	}
)

// Clickhouse is the columnar side: the stats export table and its DDL
type Clickhouse interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, data any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is implemented by seams that can check their server answers
type Pinger interface{ Ping(context.Context) error }
