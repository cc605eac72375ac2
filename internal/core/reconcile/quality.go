package reconcile

import (
	"sort"

	"qsmerge/internal/core/table"
)

// DefaultCutoff is the largest plausible total bedload rate in g/s
const DefaultCutoff = 800.0

// FilterReport describes what Filter nulled
type FilterReport struct {
	NulledRows  int       // partially missing rows made fully missing
	Outliers    int       // rows over the cutoff
	Cutoff      float64
	RemovedMass float64   // bedload mass of the outlier rows
	TotalMass   float64   // period bedload mass before outlier removal
	Ratio       float64   // RemovedMass / TotalMass, zero when TotalMass is zero
	Values      []float64 // removed bedload values, ascending
}

// Filter normalizes partially missing rows then nulls outliers, in place.
// Rows are never removed. Running it twice changes nothing the second time.
func Filter(t *table.Table, cutoff float64) FilterReport {
	rep := FilterReport{Cutoff: cutoff}
	if t == nil {
		return rep
	}

	for i := range t.Rows {
		r := &t.Rows[i]
		if !r.AnyNull() {
			continue
		}
		if hasValue(r) {
			rep.NulledRows++
		}
		r.Blank()
	}

	rep.TotalMass = t.Sum(table.ColBedloadAll)
	for i := range t.Rows {
		r := &t.Rows[i]
		v := r[table.ColBedloadAll]
		if !(v > cutoff) {
			continue
		}
		rep.Outliers++
		rep.RemovedMass += v
		rep.Values = append(rep.Values, v)
		r.Blank()
	}
	sort.Float64s(rep.Values)
	if rep.TotalMass != 0 {
		rep.Ratio = rep.RemovedMass / rep.TotalMass
	}
	return rep
}

func hasValue(r *table.Row) bool {
	for i := table.ColTimestamp + 1; i < table.Width; i++ {
		if !table.IsNull(r[i]) {
			return true
		}
	}
	return false
}
