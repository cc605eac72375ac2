// Package table models the fixed-schema light table record and the
// per-second tables built from it
package table

import (
	"math"
)

// Width is the number of fields in every row
const Width = 44

// Column indexes in schema order
const (
	ColTimestamp = iota
	ColMissingRatio
	ColVel
	ColSdVel
	ColNumberVel
	ColBedloadAll
)

// ColCountAll is the total grain count field
const ColCountAll = ColBedloadAll + 1 + len(SizeClasses)

// ColD10 is the first percentile statistic field
const ColD10 = ColCountAll + 1 + len(SizeClasses)

// ColD50 is the median grain size field
const ColD50 = ColD10 + 3

// SizeClasses are the grain size classes in mm, in schema order
var SizeClasses = [...]string{
	"0.5", "0.71", "1", "1.4", "2", "2.8", "4", "5.6", "8", "11.2", "16", "22", "32", "45",
}

// Percentiles are the grain size statistic fields after the count block
var Percentiles = [...]string{"D10", "D16", "D25", "D50", "D75", "D84", "D90", "D95", "Dmax"}

// Columns holds the field names in schema order
var Columns = buildColumns()

func buildColumns() [Width]string {
	var c [Width]string
	c[ColTimestamp] = "timestamp"
	c[ColMissingRatio] = "missing ratio"
	c[ColVel] = "vel"
	c[ColSdVel] = "sd vel"
	c[ColNumberVel] = "number vel"
	c[ColBedloadAll] = "Bedload all"
	for i, s := range SizeClasses {
		c[ColBedloadAll+1+i] = "Bedload " + s
	}
	c[ColCountAll] = "Count all"
	for i, s := range SizeClasses {
		c[ColCountAll+1+i] = "Count " + s
	}
	for i, p := range Percentiles {
		c[ColD10+i] = p
	}
	return c
}

// ColumnIndex returns the index of a named field or -1
func ColumnIndex(name string) int {
	for i, c := range Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsMeta reports whether col is a signal quality or velocity field
func IsMeta(col int) bool { return col >= ColMissingRatio && col <= ColNumberVel }

// IsData reports whether col carries measured bedload, counts or percentiles
func IsData(col int) bool { return col >= ColBedloadAll && col < Width }

// Null is the missing value marker
var Null = math.NaN()

// IsNull reports whether v is the missing value marker
func IsNull(v float64) bool { return math.IsNaN(v) }

// Row is one second of instrument output
type Row [Width]float64

// NullRow returns a row with only the timestamp set
func NullRow(ts float64) Row {
	var r Row
	r[ColTimestamp] = ts
	r.Blank()
	return r
}

// Timestamp returns the row timestamp
func (r *Row) Timestamp() float64 { return r[ColTimestamp] }

// Blank nulls every field except the timestamp
func (r *Row) Blank() {
	for i := ColTimestamp + 1; i < Width; i++ {
		r[i] = Null
	}
}

// AnyNull reports whether any field, timestamp included, is null
func (r *Row) AnyNull() bool {
	for _, v := range r {
		if IsNull(v) {
			return true
		}
	}
	return false
}

// HasData reports whether every data field is non-null
func (r *Row) HasData() bool {
	for i := ColBedloadAll; i < Width; i++ {
		if IsNull(r[i]) {
			return false
		}
	}
	return true
}

// Zero reports whether every field after the timestamp is exactly zero
func (r *Row) Zero() bool {
	for i := ColTimestamp + 1; i < Width; i++ {
		if r[i] != 0 {
			return false
		}
	}
	return true
}

// Table is an ordered run of rows, one per second
type Table struct {
	Rows []Row
}

// New returns a table holding rows
func New(rows []Row) *Table { return &Table{Rows: rows} }

// Len returns the row count; a nil table has zero rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	return &Table{Rows: rows}
}

// Column returns a copy of one field across all rows
func (t *Table) Column(col int) []float64 {
	out := make([]float64, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Rows[i][col]
	}
	return out
}

// Sum adds a field across rows, skipping nulls
func (t *Table) Sum(col int) float64 {
	var s float64
	for i := range t.Rows {
		if v := t.Rows[i][col]; !IsNull(v) {
			s += v
		}
	}
	return s
}

// Equal compares two tables treating nulls as equal to each other
func Equal(a, b *Table) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Rows {
		for c := 0; c < Width; c++ {
			x, y := a.Rows[i][c], b.Rows[i][c]
			if IsNull(x) && IsNull(y) {
				continue
			}
			if x != y {
				return false
			}
		}
	}
	return true
}
