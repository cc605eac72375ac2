package reconcile

import (
	"context"
	"errors"

	perr "qsmerge/internal/platform/errors"
)

// Severity says how far an error reaches
type Severity uint8

const (
	// None is the severity of a nil error
	None Severity = iota
	// Warning is logged and the period continues
	Warning
	// PeriodFatal stops the current period only
	PeriodFatal
	// RunFatal stops the whole run
	RunFatal
)

func (s Severity) String() string {
	switch s {
	case None:
		return "none"
	case Warning:
		return "warning"
	case PeriodFatal:
		return "period_fatal"
	case RunFatal:
		return "run_fatal"
	}
	return "unknown"
}

type runFatal struct{ err error }

func (r *runFatal) Error() string { return r.err.Error() }
func (r *runFatal) Unwrap() error { return r.err }

// AbortRun marks err as fatal for the whole run
func AbortRun(err error) error {
	if err == nil {
		return nil
	}
	return &runFatal{err: err}
}

// SeverityOf classifies err. Cancellation and errors marked with AbortRun are
// run fatal, reconciliation warnings stay warnings, everything else ends the period
func SeverityOf(err error) Severity {
	if err == nil {
		return None
	}
	var rf *runFatal
	if errors.As(err, &rf) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return RunFatal
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeConflictingSources, perr.ErrorCodeNoData, perr.ErrorCodeMismatchedData, perr.ErrorCodeHighTrim:
		return Warning
	}
	return PeriodFatal
}
