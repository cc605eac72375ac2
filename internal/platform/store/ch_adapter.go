package store

import (
	"context"
	"fmt"

	"qsmerge/internal/platform/store/ch"
)

// clickhouseAdapter is *ch.CH behind the Clickhouse seam. Exec, Ping and Close come straight from ch
type clickhouseAdapter struct{ *ch.CH }

var _ Clickhouse = clickhouseAdapter{}

func newCHAdapter(c *ch.CH) Clickhouse { return clickhouseAdapter{c} }

// Insert takes rows as [][]any in table column order
func (a clickhouseAdapter) Insert(ctx context.Context, table string, data any) error {
	rows, ok := data.([][]any)
	if !ok {
		return fmt.Errorf("store: clickhouse insert into %s wants [][]any, got %T", table, data)
	}
	return a.CH.Insert(ctx, table, rows)
}

func (a clickhouseAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.CH.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

// chRows drops the Close error store.Rows has no room for
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
