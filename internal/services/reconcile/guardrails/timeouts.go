// Package guardrails holds time budget helpers for reconciliation runs
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for a single period.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Period is the overall budget for loading, reconciling and saving one period
	Period time.Duration

	// Load caps reading the raw source tables
	Load time.Duration

	// DB caps each ledger, table or stats write
	DB time.Duration
}

// WithPeriod returns a context limited by the period budget without extending any parent deadline
func WithPeriod(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Period)
}

// ForLoad returns a sub context for reading sources bounded by Load and any remaining parent budget
func ForLoad(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Load)
}

// ForDB returns a sub context for one store round trip bounded by DB and any remaining parent budget
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.DB)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout picks the tighter of d and the parent remainder; it never extends the parent.
// d <= 0 returns a cancelable child inheriting the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
