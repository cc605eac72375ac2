package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
	tt "qsmerge/internal/core/table/tabletest"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/store"
	"qsmerge/internal/platform/testkit"
)

type fakeCH struct {
	execs   []string
	table   string
	rows    [][]any
	failErr error
}

func (f *fakeCH) Insert(_ context.Context, tbl string, data any) error {
	f.table = tbl
	f.rows = data.([][]any)
	return f.failErr
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return f.failErr
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeCH) Close() error                                           { return nil }

func TestExport(t *testing.T) {
	t.Parallel()

	k := period.MustParseKey("2B/falling-87L/t20-t40")
	in := tt.Series(2, 3)
	in.Rows[0][table.ColD10] = table.Null
	in.Rows[1][table.ColD10] = table.Null
	s := reconcile.Summarize(k, in)

	ch := &fakeCH{}
	exp := New(ch)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	exp.now = func() time.Time { return at }

	keys := []reconcile.StatKey{{Period: k, Kind: reconcile.StatMean}, {Period: k, Kind: "absent"}}
	if err := exp.Export(context.Background(), "run-9", s, keys); err != nil {
		t.Fatalf("export: %v", err)
	}
	if ch.table != Table || len(ch.rows) != table.Width {
		t.Fatalf("table %q rows %d", ch.table, len(ch.rows))
	}
	first := ch.rows[table.ColBedloadAll]
	if first[0] != "run-9" || first[1] != at || first[2] != "2B" || first[4] != "t20-t40" ||
		first[5] != "av" || first[6] != "Bedload all" || *(first[7].(*float64)) != 3 {
		t.Fatalf("row = %v", first)
	}
	if v := ch.rows[table.ColD10][7].(*float64); v != nil {
		t.Fatalf("all null mean should export as NULL, got %v", *v)
	}
}

func TestEnsureTableAndErrors(t *testing.T) {
	t.Parallel()

	ch := &fakeCH{}
	if err := New(ch).EnsureTable(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	testkit.MustContain(t, ch.execs[0], "CREATE TABLE IF NOT EXISTS "+Table)
	testkit.MustContain(t, ch.execs[0], "ORDER BY (experiment, step, time_window, kind, stat_column)")
	for _, kw := range []string{"\twindow ", "\tcolumn "} {
		if strings.Contains(ch.execs[0], kw) {
			t.Fatalf("ddl uses reserved word %q as a column name", strings.TrimSpace(kw))
		}
	}

	ch.failErr = errors.New("down")
	err := New(ch).Export(context.Background(), "r", reconcile.Stats{}, nil)
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("err = %v", err)
	}
	if err := New(ch).EnsureTable(context.Background()); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("ensure err = %v", err)
	}
}
