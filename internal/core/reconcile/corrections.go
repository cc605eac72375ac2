package reconcile

import (
	"sort"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/table"
)

// Range is an inclusive span of row indexes
type Range struct {
	First int
	Last  int
}

// Len returns the number of rows covered
func (r Range) Len() int { return r.Last - r.First + 1 }

// Corrector applies curated per period row deletions
type Corrector struct {
	deletions  map[period.Key][]Range
	suspicious map[period.Key]bool
}

// NewCorrector copies deletions and sorts each period's ranges highest first
func NewCorrector(deletions map[period.Key][]Range, suspicious []period.Key) *Corrector {
	c := &Corrector{
		deletions:  make(map[period.Key][]Range, len(deletions)),
		suspicious: make(map[period.Key]bool, len(suspicious)),
	}
	for k, rs := range deletions {
		cp := append([]Range(nil), rs...)
		sort.SliceStable(cp, func(i, j int) bool { return cp[i].First > cp[j].First })
		c.deletions[k] = cp
	}
	for _, k := range suspicious {
		c.suspicious[k] = true
	}
	return c
}

// CorrectionReport lists what Apply did
type CorrectionReport struct {
	Applied    []Range // as deleted, after clamping
	Skipped    []Range // started past the end of the table
	Removed    int
	Suspicious bool
}

// Suspicious reports whether k is on the watch list
func (c *Corrector) Suspicious(k period.Key) bool { return c != nil && c.suspicious[k] }

// Ranges returns the deletions configured for k, highest first
func (c *Corrector) Ranges(k period.Key) []Range {
	if c == nil {
		return nil
	}
	return c.deletions[k]
}

// Apply deletes the configured ranges for k and shifts later timestamps down
// so they stay contiguous. Ranges past the end are skipped; ranges running
// over the end are clamped.
func (c *Corrector) Apply(k period.Key, t *table.Table) (*table.Table, CorrectionReport) {
	rep := CorrectionReport{Suspicious: c.Suspicious(k)}
	if t == nil {
		return t, rep
	}
	for _, r := range c.Ranges(k) {
		n := t.Len()
		first, last := max(r.First, 0), min(r.Last, n-1)
		if first >= n || first > last {
			rep.Skipped = append(rep.Skipped, r)
			continue
		}
		cut := Range{First: first, Last: last}
		t = deleteRows(t, cut)
		rep.Applied = append(rep.Applied, cut)
		rep.Removed += cut.Len()
	}
	return t, rep
}

func deleteRows(t *table.Table, r Range) *table.Table {
	shift := float64(r.Len())
	rows := append(t.Rows[:r.First:r.First], t.Rows[r.Last+1:]...)
	for i := r.First; i < len(rows); i++ {
		rows[i][table.ColTimestamp] -= shift
	}
	t.Rows = rows
	return t
}
