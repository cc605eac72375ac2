// Package domain holds the data structures and ports of the reconcile service
package domain

import (
	"time"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
)

// Status is the ledger outcome of one period
type Status string

// Ledger statuses
const (
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusNoData  Status = "nodata"
	StatusError   Status = "error"
)

// ReconciliationContext is threaded through the stages of one period.
// Each stage reads what earlier stages left and records its own outcome
type ReconciliationContext struct {
	RunID  string
	Key    period.Key
	Target int // nominal row count

	Sources period.Sources
	Full    *table.Table   // nil when the period has no full recording
	Chunks  []*table.Table // in sequence order

	Assembly reconcile.Assembly
	Decision reconcile.Decision
	Output   *table.Table

	Filter     reconcile.FilterReport
	Correction reconcile.CorrectionReport
	Normalize  reconcile.NormalizeReport

	Warnings []error
	Location string // where the output was saved
}

// NewContext starts a context for k
func NewContext(runID string, k period.Key) (*ReconciliationContext, error) {
	d, err := k.Duration()
	if err != nil {
		return nil, err
	}
	return &ReconciliationContext{RunID: runID, Key: k, Target: d}, nil
}

// Warn records a non fatal condition
func (rc *ReconciliationContext) Warn(err error) {
	if err != nil {
		rc.Warnings = append(rc.Warnings, err)
	}
}

// Loaded counts the raw tables read for the period
func (rc *ReconciliationContext) Loaded() int {
	n := len(rc.Chunks)
	if rc.Full != nil {
		n++
	}
	return n
}

// PeriodFinish is the ledger record written when a period ends
type PeriodFinish struct {
	Status      Status
	Origin      string
	Sources     int
	RowsIn      int
	RowsOut     int
	OverlapRows int
	DiffRatio   *float64 // set only when full and chunks were compared
	NulledRows  int
	Outliers    int
	OutlierMass float64
	Deleted     int
	Trimmed     int
	TrimMass    float64
	TrimRatio   float64
	Padded      int
	Suspicious  bool
	Warnings    []string // error codes, in the order raised
	LoadMS      int
	ReconcileMS int
	SaveMS      int
	ElapsedMS   int
	ErrText     string
}

// PeriodRun is one ledger row as read back
type PeriodRun struct {
	PeriodFinish
	RunID      string
	Key        period.Key
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RunOptions narrows or forces a run
type RunOptions struct {
	Only  *period.Key // process a single period
	Force bool        // recompute periods whose output exists
}

// RunSummary counts what a run did
type RunSummary struct {
	RunID    string
	Periods  int // periods considered
	Loaded   int // raw tables read
	Produced int
	Skipped  int
	NoData   int
	Failed   int
	Elapsed  time.Duration
}

// ListFilter narrows ledger listings
type ListFilter struct {
	RunID  string `query:"run_id" validate:"omitempty,uuid"`
	Status Status `query:"status" validate:"omitempty,oneof=running ok skipped nodata error"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
}
