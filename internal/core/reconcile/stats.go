package reconcile

import (
	"sort"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/table"
)

// StatKind names one summary row
type StatKind string

// Summary rows per period
const (
	StatMean  StatKind = "av"
	StatSum   StatKind = "sum"
	StatNulls StatKind = "nans"
)

// StatKinds lists the kinds in report order
var StatKinds = []StatKind{StatMean, StatSum, StatNulls}

// StatKey identifies one summary row
type StatKey struct {
	Period period.Key
	Kind   StatKind
}

// Stats is the multi period summary report; values are per column
type Stats map[StatKey]table.Row

// Summarize computes the null skipping mean, sum and null count of every
// column of t. Mean of an all null column is null; its sum is zero.
func Summarize(k period.Key, t *table.Table) Stats {
	var mean, sum, nulls table.Row
	var count [table.Width]int
	for i := range t.Rows {
		for c, v := range t.Rows[i] {
			if table.IsNull(v) {
				nulls[c]++
				continue
			}
			sum[c] += v
			count[c]++
		}
	}
	for c := range mean {
		if count[c] == 0 {
			mean[c] = table.Null
			continue
		}
		mean[c] = sum[c] / float64(count[c])
	}
	return Stats{
		{k, StatMean}:  mean,
		{k, StatSum}:   sum,
		{k, StatNulls}: nulls,
	}
}

// Merge copies every row of next into s, replacing rows with the same key.
// Rows of s that next does not mention are kept.
func (s Stats) Merge(next Stats) {
	for k, v := range next {
		s[k] = v
	}
}

// Periods returns the distinct periods present
func (s Stats) Periods() []period.Key {
	seen := map[period.Key]bool{}
	var out []period.Key
	for k := range s {
		if !seen[k.Period] {
			seen[k.Period] = true
			out = append(out, k.Period)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Keys returns all keys ordered by period then kind
func (s Stats) Keys() []StatKey {
	var out []StatKey
	for _, p := range s.Periods() {
		for _, kind := range StatKinds {
			if _, ok := s[StatKey{p, kind}]; ok {
				out = append(out, StatKey{p, kind})
			}
		}
	}
	return out
}
