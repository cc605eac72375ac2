// Package tabletest builds tables for tests
package tabletest

import (
	"testing"

	"qsmerge/internal/core/table"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Filled returns a row where every field after the timestamp is v
func Filled(ts, v float64) table.Row {
	var r table.Row
	r[table.ColTimestamp] = ts
	for i := 1; i < table.Width; i++ {
		r[i] = v
	}
	return r
}

// Series returns n filled rows with timestamps 0..n-1
func Series(n int, v float64) *table.Table {
	rows := make([]table.Row, n)
	for i := range rows {
		rows[i] = Filled(float64(i), v)
	}
	return table.New(rows)
}

// Chunk returns an n row table with data v at rows [from, to) and nulls elsewhere
func Chunk(n, from, to int, v float64) *table.Table {
	rows := make([]table.Row, n)
	for i := range rows {
		if i >= from && i < to {
			rows[i] = Filled(float64(i), v)
			continue
		}
		rows[i] = table.NullRow(float64(i))
	}
	return table.New(rows)
}

// Equal fails the test with a diff when the tables differ
func Equal(t *testing.T, got, want *table.Table) {
	t.Helper()
	if d := cmp.Diff(want, got, cmpopts.EquateNaNs()); d != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", d)
	}
}
