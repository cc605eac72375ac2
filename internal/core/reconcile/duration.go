package reconcile

import (
	"math"

	"qsmerge/internal/core/table"
	perr "qsmerge/internal/platform/errors"
)

// Limits bounds how much real data Normalize may drop
type Limits struct {
	HighTrim     float64 // loss ratio above this is a warning
	MaxTrim      float64 // loss ratio above this aborts the period
	HeadFraction float64 // share of the excess dropped from the head
}

// DefaultLimits are the thresholds used unless configured otherwise
func DefaultLimits() Limits {
	return Limits{HighTrim: 0.04, MaxTrim: 0.05, HeadFraction: 0.25}
}

// NormalizeReport describes how the row count was fixed
type NormalizeReport struct {
	Target    int
	Before    int
	PadTail   int // padding rows dropped from the tail
	PadHead   int // padding rows dropped from the head
	HeadDrop  int // real rows dropped from the head
	TailDrop  int // real rows dropped from the tail
	HeadMass  float64
	TailMass  float64
	TotalMass float64
	LossRatio float64
	Padded    int
	Warning   error // ErrorCodeHighTrim when the loss ratio is high but tolerated
}

// Normalize trims or pads t to exactly target rows. Padding rows go first,
// tail before head; then real rows are cut from both ends. A loss ratio over
// lim.MaxTrim returns ErrorCodeExcessiveTrim and the table must not be kept.
func Normalize(t *table.Table, target int, lim Limits) (*table.Table, NormalizeReport, error) {
	if t == nil {
		t = table.New(nil)
	}
	rep := NormalizeReport{Target: target, Before: t.Len()}
	rows := t.Rows

	for len(rows) > target && extra(&rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
		rep.PadTail++
	}
	for len(rows) > target && extra(&rows[0]) {
		rows = rows[1:]
		rep.PadHead++
	}

	switch {
	case len(rows) > target:
		excess := len(rows) - target
		rep.HeadDrop = int(math.Floor(float64(excess) * lim.HeadFraction))
		rep.TailDrop = excess - rep.HeadDrop

		whole := table.New(rows)
		rep.TotalMass = whole.Sum(table.ColBedloadAll)
		rep.HeadMass = table.New(rows[:rep.HeadDrop]).Sum(table.ColBedloadAll)
		rep.TailMass = table.New(rows[len(rows)-rep.TailDrop:]).Sum(table.ColBedloadAll)
		if rep.TotalMass != 0 {
			rep.LossRatio = (rep.HeadMass + rep.TailMass) / rep.TotalMass
		}
		rows = rows[rep.HeadDrop : len(rows)-rep.TailDrop]

		switch {
		case rep.LossRatio > lim.MaxTrim:
			return nil, rep, perr.Newf(perr.ErrorCodeExcessiveTrim,
				"trimming %d rows drops %.2f%% of bedload mass, over %.2f%%",
				excess, rep.LossRatio*100, lim.MaxTrim*100)
		case rep.LossRatio > lim.HighTrim:
			rep.Warning = perr.Newf(perr.ErrorCodeHighTrim,
				"trimming %d rows drops %.2f%% of bedload mass", excess, rep.LossRatio*100)
		}

	case len(rows) < target:
		base := nextTimestamp(rows)
		rep.Padded = target - len(rows)
		out := make([]table.Row, len(rows), target)
		copy(out, rows)
		for j := 0; j < rep.Padded; j++ {
			out = append(out, table.NullRow(base+float64(j)))
		}
		rows = out
	}

	out := make([]table.Row, len(rows))
	copy(out, rows)
	return table.New(out), rep, nil
}

// extra reports whether r is padding: missing data, or zero mass and count
func extra(r *table.Row) bool {
	return r.AnyNull() || (r[table.ColBedloadAll] == 0 && r[table.ColCountAll] == 0)
}

// nextTimestamp continues from the last known timestamp; an empty table starts at zero
func nextTimestamp(rows []table.Row) float64 {
	for i := len(rows) - 1; i >= 0; i-- {
		if ts := rows[i].Timestamp(); !table.IsNull(ts) {
			return ts + float64(len(rows)-i)
		}
	}
	return float64(len(rows))
}
