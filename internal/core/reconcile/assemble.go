package reconcile

import "qsmerge/internal/core/table"

// Assembly is the union of a period's chunks
type Assembly struct {
	Table   *table.Table
	Overlap []bool // rows where two or more chunks reported data
}

// OverlapRows counts overlap flagged rows
func (a Assembly) OverlapRows() int {
	n := 0
	for _, o := range a.Overlap {
		if o {
			n++
		}
	}
	return n
}

// OverlapTimestamps returns the timestamps of overlap flagged rows
func (a Assembly) OverlapTimestamps() []float64 {
	var out []float64
	for i, o := range a.Overlap {
		if o {
			out = append(out, a.Table.Rows[i].Timestamp())
		}
	}
	return out
}

// Assemble merges chunks in sequence order. Rows that already hold data when a
// later chunk also reports data are blanked and flagged; there is no tie break
// between duplicate readings. ok is false when there are no chunks.
func Assemble(chunks []*table.Table) (Assembly, bool) {
	if len(chunks) == 0 {
		return Assembly{}, false
	}

	first := chunks[0]
	rows := make([]table.Row, first.Len())
	for i := range rows {
		rows[i] = table.NullRow(first.Rows[i].Timestamp())
	}
	out := Assembly{Table: table.New(rows), Overlap: make([]bool, len(rows))}

	for _, ch := range chunks {
		for i := range ch.Rows {
			src := &ch.Rows[i]
			if i >= out.Table.Len() {
				out.Table.Rows = append(out.Table.Rows, table.NullRow(src.Timestamp()))
				out.Overlap = append(out.Overlap, false)
			}
			if !src.HasData() {
				continue
			}
			dst := &out.Table.Rows[i]
			if dst.HasData() {
				dst.Blank()
				out.Overlap[i] = true
				continue
			}
			ts := dst.Timestamp()
			*dst = *src
			dst[table.ColTimestamp] = ts
		}
	}
	return out, true
}
