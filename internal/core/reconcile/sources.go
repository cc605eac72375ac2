package reconcile

import (
	"qsmerge/internal/core/table"
	perr "qsmerge/internal/platform/errors"
)

// DefaultTolerance is the diff ratio below which a mismatch is considered acceptable
const DefaultTolerance = 0.02

// sampleRows caps how many differing row indexes a Comparison keeps
const sampleRows = 20

// Origin names the table chosen as canonical
type Origin string

// Origins
const (
	OriginCombined Origin = "combined"
	OriginFull     Origin = "full"
)

// Comparison quantifies disagreement between a full recording and the assembled chunks
type Comparison struct {
	DiffRows  int
	TotalRows int
	Ratio     float64
	Tolerance float64
	Tolerant  bool
	Sample    []int // first differing row indexes
	Columns   []int // columns that differ anywhere
}

// Decision is the SourceReconciler outcome
type Decision struct {
	Table    *table.Table
	Origin   Origin
	Compared *Comparison // nil unless both sources were present
	Warnings []error
}

// ReconcileSources picks the canonical table. The assembled chunks always win
// when present; a full recording is only used when there are no chunks. Both
// missing is ErrorCodeNoData. The chosen table is a copy so inputs stay untouched.
func ReconcileSources(full, combined *table.Table, tolerance float64) (Decision, error) {
	switch {
	case full == nil && combined == nil:
		return Decision{}, perr.New(perr.ErrorCodeNoData, "no full recording and no chunks")
	case combined == nil:
		return Decision{Table: full.Clone(), Origin: OriginFull}, nil
	case full == nil:
		return Decision{Table: combined.Clone(), Origin: OriginCombined}, nil
	}

	d := Decision{
		Table:  combined.Clone(),
		Origin: OriginCombined,
		Warnings: []error{
			perr.New(perr.ErrorCodeConflictingSources, "full recording and chunks both exist"),
		},
	}
	cmp := Compare(full, combined, tolerance)
	d.Compared = &cmp
	if cmp.DiffRows > 0 {
		within := "not within"
		if cmp.Tolerant {
			within = "within"
		}
		d.Warnings = append(d.Warnings, perr.Newf(perr.ErrorCodeMismatchedData,
			"difference ratio %.3f is %s tolerance %g (%d of %d rows)",
			cmp.Ratio, within, tolerance, cmp.DiffRows, cmp.TotalRows))
	}
	return d, nil
}

// Compare counts rows that differ between a and b. Meta fields are ignored;
// a null against a value differs; rows where both tables are null in any field
// are skipped; rows present in only one table differ.
func Compare(a, b *table.Table, tolerance float64) Comparison {
	na, nb := a.Len(), b.Len()
	total := max(na, nb)
	c := Comparison{TotalRows: total, Tolerance: tolerance}
	cols := make([]bool, table.Width)

	for i := 0; i < total; i++ {
		if i >= na || i >= nb {
			c.mark(i)
			continue
		}
		ra, rb := &a.Rows[i], &b.Rows[i]
		if bothNullAnywhere(ra, rb) {
			continue
		}
		differs := false
		for col := 0; col < table.Width; col++ {
			if table.IsMeta(col) {
				continue
			}
			// NaN compares unequal to everything, itself included
			if ra[col] != rb[col] {
				differs = true
				cols[col] = true
			}
		}
		if differs {
			c.mark(i)
		}
	}

	for col, d := range cols {
		if d {
			c.Columns = append(c.Columns, col)
		}
	}
	if total > 0 {
		c.Ratio = float64(c.DiffRows) / float64(total)
	}
	c.Tolerant = c.Ratio < tolerance
	return c
}

func (c *Comparison) mark(i int) {
	c.DiffRows++
	if len(c.Sample) < sampleRows {
		c.Sample = append(c.Sample, i)
	}
}

func bothNullAnywhere(a, b *table.Row) bool {
	for col := 0; col < table.Width; col++ {
		if table.IsNull(a[col]) && table.IsNull(b[col]) {
			return true
		}
	}
	return false
}
