// Package service contains the read side of the period ledger
package service

import (
	"context"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/table"
	"qsmerge/internal/modkit/repokit"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/services/api/periods/domain"
	rdomain "qsmerge/internal/services/reconcile/domain"
)

// Service defines the periods service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the periods service over the reconcile repository
type Svc struct {
	Repo rdomain.StorageRepo
}

// New constructs a periods service
func New(db repokit.TxRunner, binder repokit.Binder[rdomain.StorageRepo]) *Svc {
	if db == nil {
		panic("periods.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("periods.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: repokit.MustBind(binder, db)}
}

// List returns ledger rows, newest first
func (s *Svc) List(ctx context.Context, in domain.ListInput) ([]domain.PeriodRow, error) {
	runs, err := s.Repo.ListPeriods(ctx, in)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PeriodRow, 0, len(runs))
	for _, r := range runs {
		warn := r.Warnings
		if warn == nil {
			warn = []string{}
		}
		out = append(out, domain.PeriodRow{
			RunID:       r.RunID,
			Period:      r.Key.String(),
			Status:      string(r.Status),
			Origin:      r.Origin,
			StartedAt:   r.StartedAt,
			FinishedAt:  r.FinishedAt,
			Sources:     r.Sources,
			RowsIn:      r.RowsIn,
			RowsOut:     r.RowsOut,
			OverlapRows: r.OverlapRows,
			DiffRatio:   r.DiffRatio,
			NulledRows:  r.NulledRows,
			Outliers:    r.Outliers,
			OutlierMass: r.OutlierMass,
			Deleted:     r.Deleted,
			Trimmed:     r.Trimmed,
			TrimMass:    r.TrimMass,
			TrimRatio:   r.TrimRatio,
			Padded:      r.Padded,
			Suspicious:  r.Suspicious,
			Warnings:    warn,
			ElapsedMS:   r.ElapsedMS,
			Error:       r.ErrText,
		})
	}
	return out, nil
}

// Stats returns the summary rows of one period in report order
func (s *Svc) Stats(ctx context.Context, in domain.StatsInput) ([]domain.StatsRow, error) {
	k, err := period.ParseKey(in.Key)
	if err != nil {
		return nil, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "bad period key"), "key")
	}
	st, err := s.Repo.PeriodStats(ctx, k)
	if err != nil {
		return nil, err
	}
	if len(st) == 0 {
		return nil, perr.NotFoundf("no stats for period %s", k)
	}
	out := make([]domain.StatsRow, 0, len(st))
	for _, sk := range st.Keys() {
		row := st[sk]
		vals := make(map[string]*float64, table.Width)
		for c, v := range row {
			if table.IsNull(v) {
				continue
			}
			vals[table.Columns[c]] = &v
		}
		out = append(out, domain.StatsRow{Period: sk.Period.String(), Kind: string(sk.Kind), Values: vals})
	}
	return out, nil
}
