// Package domain holds DTOs for the periods http and service contracts
package domain

import (
	"time"

	rdomain "qsmerge/internal/services/reconcile/domain"
)

// ListInput narrows the ledger listing; it binds from the query string
type ListInput = rdomain.ListFilter

// PeriodRow is one ledger row as served
type PeriodRow struct {
	RunID       string     `json:"run_id" example:"2f1c6a8e-5b7d-4a09-9a57-2b1f0c3d4e5f"`
	Period      string     `json:"period" example:"1A/rising-62L/t00-t20"`
	Status      string     `json:"status" example:"ok"`
	Origin      string     `json:"origin,omitempty" example:"chunks"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Sources     int        `json:"sources" example:"3"`
	RowsIn      int        `json:"rows_in" example:"1210"`
	RowsOut     int        `json:"rows_out" example:"1200"`
	OverlapRows int        `json:"overlap_rows" example:"10"`
	DiffRatio   *float64   `json:"diff_ratio,omitempty" example:"0.001"`
	NulledRows  int        `json:"nulled_rows"`
	Outliers    int        `json:"outliers"`
	OutlierMass float64    `json:"outlier_mass"`
	Deleted     int        `json:"deleted"`
	Trimmed     int        `json:"trimmed"`
	TrimMass    float64    `json:"trim_mass"`
	TrimRatio   float64    `json:"trim_ratio"`
	Padded      int        `json:"padded"`
	Suspicious  bool       `json:"suspicious"`
	Warnings    []string   `json:"warnings"`
	ElapsedMS   int        `json:"elapsed_ms"`
	Error       string     `json:"error,omitempty"`
}

// StatsInput selects the stats rows of one period
type StatsInput struct {
	Key string `query:"key" validate:"required,period_key" example:"1A/rising-62L/t00-t20"`
}

// StatsRow is one kind of summary for a period. Null values are omitted
type StatsRow struct {
	Period string              `json:"period" example:"1A/rising-62L/t00-t20"`
	Kind   string              `json:"kind" example:"av"`
	Values map[string]*float64 `json:"values"`
}
