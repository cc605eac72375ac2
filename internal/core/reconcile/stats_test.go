package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/table"
	tt "qsmerge/internal/core/table/tabletest"
	perr "qsmerge/internal/platform/errors"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	k := period.MustParseKey("1A/rising-62L/t00-t20")
	tb := tt.Series(4, 2)
	tb.Rows[3] = table.NullRow(3)
	tb.Rows[0][table.ColD10] = table.Null

	s := Summarize(k, tb)
	if len(s) != 3 {
		t.Fatalf("want three rows, got %d", len(s))
	}
	mean, sum, nulls := s[StatKey{k, StatMean}], s[StatKey{k, StatSum}], s[StatKey{k, StatNulls}]

	if mean[table.ColBedloadAll] != 2 || sum[table.ColBedloadAll] != 6 || nulls[table.ColBedloadAll] != 1 {
		t.Fatalf("bedload stats = %v %v %v", mean[table.ColBedloadAll], sum[table.ColBedloadAll], nulls[table.ColBedloadAll])
	}
	if mean[table.ColD10] != 2 || sum[table.ColD10] != 4 || nulls[table.ColD10] != 2 {
		t.Fatalf("D10 stats = %v %v %v", mean[table.ColD10], sum[table.ColD10], nulls[table.ColD10])
	}
	// timestamp is summarized like any other column
	if mean[table.ColTimestamp] != 1.5 || nulls[table.ColTimestamp] != 0 {
		t.Fatalf("timestamp stats = %v %v", mean[table.ColTimestamp], nulls[table.ColTimestamp])
	}

	allNull := Summarize(k, table.New([]table.Row{table.NullRow(0)}))
	if !table.IsNull(allNull[StatKey{k, StatMean}][table.ColVel]) || allNull[StatKey{k, StatSum}][table.ColVel] != 0 {
		t.Fatalf("all null column: mean should be null and sum zero")
	}
}

func TestStatsMergePreservesOthers(t *testing.T) {
	t.Parallel()

	a := period.MustParseKey("1A/rising-62L/t00-t20")
	b := period.MustParseKey("1A/rising-62L/t20-t40")

	store := Stats{}
	store.Merge(Summarize(a, tt.Series(2, 1)))
	store.Merge(Summarize(b, tt.Series(2, 1)))

	store.Merge(Summarize(a, tt.Series(2, 7)))
	if got := store[StatKey{a, StatMean}][table.ColBedloadAll]; got != 7 {
		t.Fatalf("recomputed period should be overwritten, got %v", got)
	}
	if got := store[StatKey{b, StatMean}][table.ColBedloadAll]; got != 1 {
		t.Fatalf("other period should be preserved, got %v", got)
	}

	keys := store.Keys()
	if len(keys) != 6 || keys[0] != (StatKey{a, StatMean}) || keys[5] != (StatKey{b, StatNulls}) {
		t.Fatalf("keys = %v", keys)
	}
	if ps := store.Periods(); len(ps) != 2 || ps[0] != a {
		t.Fatalf("periods = %v", ps)
	}
}

func TestSeverityOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want Severity
	}{
		{nil, None},
		{perr.New(perr.ErrorCodeConflictingSources, "x"), Warning},
		{perr.New(perr.ErrorCodeMismatchedData, "x"), Warning},
		{perr.New(perr.ErrorCodeHighTrim, "x"), Warning},
		{perr.New(perr.ErrorCodeNoData, "x"), Warning},
		{perr.New(perr.ErrorCodeExcessiveTrim, "x"), PeriodFatal},
		{perr.IOf("bad file"), PeriodFatal},
		{errors.New("plain"), PeriodFatal},
		{fmt.Errorf("load: %w", context.Canceled), RunFatal},
		{AbortRun(perr.New(perr.ErrorCodeDB, "stats")), RunFatal},
	}
	for _, c := range cases {
		if got := SeverityOf(c.err); got != c.want {
			t.Fatalf("SeverityOf(%v) = %v, want %v", c.err, got, c.want)
		}
	}
	if AbortRun(nil) != nil {
		t.Fatalf("AbortRun(nil) should be nil")
	}
	if !perr.IsCode(AbortRun(perr.New(perr.ErrorCodeDB, "x")), perr.ErrorCodeDB) {
		t.Fatalf("AbortRun should keep the wrapped code")
	}
}
