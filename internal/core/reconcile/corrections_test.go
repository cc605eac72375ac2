package reconcile

import (
	"testing"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/table"
	tt "qsmerge/internal/core/table/tabletest"
)

func assertContiguous(t *testing.T, tb *table.Table) {
	t.Helper()
	for i := 1; i < tb.Len(); i++ {
		if d := tb.Rows[i].Timestamp() - tb.Rows[i-1].Timestamp(); d != 1 {
			t.Fatalf("timestamps %d->%d step %v", i-1, i, d)
		}
	}
}

func TestCorrector_DeletesHighestFirst(t *testing.T) {
	t.Parallel()

	k := period.MustParseKey("1A/rising-62L/t40-t60")
	// configured low to high; must still be applied high to low
	c := NewCorrector(map[period.Key][]Range{
		k: {{First: 2, Last: 3}, {First: 10, Last: 14}},
	}, nil)

	tb := tt.Series(20, 1)
	for i := range tb.Rows {
		tb.Rows[i][table.ColBedloadAll] = float64(i)
	}

	out, rep := c.Apply(k, tb)
	if out.Len() != 13 || rep.Removed != 7 || len(rep.Applied) != 2 {
		t.Fatalf("len = %d report = %+v", out.Len(), rep)
	}
	if rep.Applied[0].First != 10 {
		t.Fatalf("first applied = %+v, want the high range", rep.Applied[0])
	}
	assertContiguous(t, out)
	if out.Rows[0].Timestamp() != 0 || out.Rows[12].Timestamp() != 12 {
		t.Fatalf("timestamps should start at 0 and stay contiguous")
	}

	// surviving data: 0,1,4..9,15..19
	want := []float64{0, 1, 4, 5, 6, 7, 8, 9, 15, 16, 17, 18, 19}
	for i, v := range want {
		if out.Rows[i][table.ColBedloadAll] != v {
			t.Fatalf("row %d = %v, want %v", i, out.Rows[i][table.ColBedloadAll], v)
		}
	}
}

func TestCorrector_OtherPeriodUntouched(t *testing.T) {
	t.Parallel()

	c := NewCorrector(map[period.Key][]Range{
		period.MustParseKey("3A/rising-75L/t00-t20"): {{First: 0, Last: 5}},
	}, []period.Key{period.MustParseKey("5A/rising-75/t00-t20")})

	tb := tt.Series(10, 1)
	out, rep := c.Apply(period.MustParseKey("3A/rising-75L/t20-t40"), tb)
	if out.Len() != 10 || rep.Removed != 0 || rep.Suspicious {
		t.Fatalf("unexpected edit: %+v", rep)
	}

	_, rep = c.Apply(period.MustParseKey("5A/rising-75/t00-t20"), tt.Series(3, 1))
	if !rep.Suspicious || rep.Removed != 0 {
		t.Fatalf("suspicious period should only be flagged: %+v", rep)
	}
}

func TestCorrector_ClampAndSkip(t *testing.T) {
	t.Parallel()

	k := period.MustParseKey("2A/rising-50L/t00-t60")
	c := NewCorrector(map[period.Key][]Range{
		k: {{First: 50, Last: 60}, {First: 7, Last: 30}},
	}, nil)

	out, rep := c.Apply(k, tt.Series(10, 1))
	if len(rep.Skipped) != 1 || rep.Skipped[0].First != 50 {
		t.Fatalf("skipped = %+v", rep.Skipped)
	}
	if len(rep.Applied) != 1 || rep.Applied[0] != (Range{First: 7, Last: 9}) || out.Len() != 7 {
		t.Fatalf("applied = %+v len = %d", rep.Applied, out.Len())
	}
	assertContiguous(t, out)
}

func TestCorrector_NilSafe(t *testing.T) {
	t.Parallel()

	var c *Corrector
	tb := tt.Series(3, 1)
	out, rep := c.Apply(period.MustParseKey("a/b/t00-t20"), tb)
	if out.Len() != 3 || rep.Removed != 0 {
		t.Fatalf("nil corrector should do nothing")
	}
}
