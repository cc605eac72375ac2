package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	List(ctx context.Context, in ListInput) ([]PeriodRow, error)
	Stats(ctx context.Context, in StatsInput) ([]StatsRow, error)
}
