package errors

import (
	"context"
	"database/sql"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type sqlState struct {
	code  ErrorCode
	retry bool
}

// sqlStates maps the SQLSTATEs the ledger and table writes can hit; anything else is ErrorCodeDB
var sqlStates = map[string]sqlState{
	"23505": {code: ErrorCodeDuplicateKey},
	"23503": {code: ErrorCodeInvalidArgument}, // fk: input pointed at a missing row
	"23502": {code: ErrorCodeValidation},
	"23514": {code: ErrorCodeValidation},
	"22001": {code: ErrorCodeInvalidArgument},
	"22P02": {code: ErrorCodeInvalidArgument},
	"40001": {code: ErrorCodeDB, retry: true}, // serialization failure
	"40P01": {code: ErrorCodeDB, retry: true}, // deadlock
	"55P03": {code: ErrorCodeDB, retry: true}, // lock not available
	"25006": {code: ErrorCodeUnavailable},     // read only replica
	"57P03": {code: ErrorCodeUnavailable},     // server starting up
}

// retryText covers driver messages that arrive without a SQLSTATE, mostly on commit
var retryText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"serialization failure",
	"canceling statement due to statement timeout",
	"canceling statement due to lock timeout",
	"could not obtain lock on row",
	"terminating connection due to administrator command",
}

// PgError finds a *pgconn.PgError anywhere in err's chain
func PgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	ok := stderrs.As(err, &pe)
	return pe, ok
}

// IsNoRows reports a single row query that matched nothing
func IsNoRows(err error) bool {
	return stderrs.Is(err, pgx.ErrNoRows) || stderrs.Is(err, sql.ErrNoRows)
}

// DBErrorCode classifies a Postgres error. ok is false when err carries no PgError
func DBErrorCode(err error) (code ErrorCode, ok bool) {
	pe, ok := PgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	if st, known := sqlStates[pe.Code]; known {
		return st.code, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a driver error under its mapped code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports Postgres contention worth another attempt.
// Local cancellation and deadlines are never retryable here; the caller owns that budget
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := PgError(err); ok {
		return sqlStates[pe.Code].retry
	}
	msg := strings.ToLower(Root(err).Error())
	for _, s := range retryText {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
