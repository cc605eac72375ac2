package service

import (
	"qsmerge/internal/core/table"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/logger"
	"qsmerge/internal/services/reconcile/domain"
)

// describe copies the stage reports of rc into the ledger record
func describe(fin *domain.PeriodFinish, rc *domain.ReconciliationContext) {
	fin.Sources = rc.Loaded()
	fin.Origin = string(rc.Decision.Origin)
	if rc.Decision.Table != nil {
		fin.RowsIn = rc.Decision.Table.Len()
	}
	fin.RowsOut = rc.Output.Len()
	fin.OverlapRows = rc.Assembly.OverlapRows()
	if c := rc.Decision.Compared; c != nil {
		r := c.Ratio
		fin.DiffRatio = &r
	}
	fin.NulledRows = rc.Filter.NulledRows
	fin.Outliers = rc.Filter.Outliers
	fin.OutlierMass = rc.Filter.RemovedMass
	fin.Deleted = rc.Correction.Removed
	fin.Suspicious = rc.Correction.Suspicious

	n := rc.Normalize
	fin.Trimmed = n.PadTail + n.PadHead + n.HeadDrop + n.TailDrop
	fin.TrimMass = n.HeadMass + n.TailMass
	fin.TrimRatio = n.LossRatio
	fin.Padded = n.Padded

	fin.Warnings = fin.Warnings[:0]
	for _, w := range rc.Warnings {
		fin.Warnings = append(fin.Warnings, perr.CodeOf(w).String())
	}
}

// logStages reports what each stage found; every warning carries its code
func logStages(log *logger.Logger, rc *domain.ReconciliationContext) {
	for _, w := range rc.Warnings {
		evt := log.Warn().Str("code", perr.CodeOf(w).String())
		if c := rc.Decision.Compared; c != nil && perr.IsCode(w, perr.ErrorCodeMismatchedData) {
			evt = evt.Float64("diff_ratio", c.Ratio).
				Bool("within_tolerance", c.Tolerant).
				Ints("sample_rows", c.Sample).
				Strs("columns", columnNames(c.Columns))
		}
		evt.Err(w).Msg("reconcile: warning")
	}

	if ts := rc.Assembly.OverlapTimestamps(); len(ts) > 0 {
		log.Info().Int("rows", len(ts)).Floats64("timestamps", ts).Msg("reconcile: accumulated overlap")
	}
	if f := rc.Filter; f.NulledRows > 0 || f.Outliers > 0 {
		log.Info().
			Int("nulled_rows", f.NulledRows).
			Int("outliers", f.Outliers).
			Float64("cutoff", f.Cutoff).
			Float64("removed_mass", f.RemovedMass).
			Float64("period_mass", f.TotalMass).
			Float64("ratio", f.Ratio).
			Floats64("values", f.Values).
			Msg("reconcile: quality filter")
	}

	c := rc.Correction
	for _, r := range c.Applied {
		log.Info().Int("first", r.First).Int("last", r.Last).Msg("reconcile: rows deleted")
	}
	for _, r := range c.Skipped {
		log.Warn().Int("first", r.First).Int("last", r.Last).Msg("reconcile: deletion past end of table skipped")
	}
	if c.Suspicious {
		log.Warn().Msg("reconcile: period is on the suspicious list")
	}

	if n := rc.Normalize; n.Before != n.Target && rc.Output != nil {
		log.Info().
			Int("before", n.Before).
			Int("target", n.Target).
			Int("pad_tail", n.PadTail).
			Int("pad_head", n.PadHead).
			Int("head_drop", n.HeadDrop).
			Int("tail_drop", n.TailDrop).
			Int("padded", n.Padded).
			Float64("loss_ratio", n.LossRatio).
			Msg("reconcile: duration normalized")
	}
}

func columnNames(cols []int) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = table.Columns[c]
	}
	return out
}
