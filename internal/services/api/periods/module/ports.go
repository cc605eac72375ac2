package module

import (
	"context"

	"qsmerge/internal/services/api/periods/domain"
	periodssvc "qsmerge/internal/services/api/periods/service"
)

// Ports exposes the ledger reader to other modules
type Ports struct {
	Reader domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptPeriodsPort struct{ svc periodssvc.Service }

// List returns ledger rows, newest first
func (a adaptPeriodsPort) List(ctx context.Context, in domain.ListInput) ([]domain.PeriodRow, error) {
	return a.svc.List(ctx, in)
}

// Stats returns the summary rows of one period
func (a adaptPeriodsPort) Stats(ctx context.Context, in domain.StatsInput) ([]domain.StatsRow, error) {
	return a.svc.Stats(ctx, in)
}
