// Package errors is the structured error type shared by the reconcile job and the API.
// Import it as perr.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error. Values are persisted in the period ledger, so only append
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable // transient; a retry may succeed
	ErrorCodeConflict
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
	ErrorCodeIO // raw table read or parse

	// period outcomes

	ErrorCodeConflictingSources // full recording next to chunks
	ErrorCodeNoData             // neither chunks nor a full recording
	ErrorCodeMismatchedData     // full recording and chunks disagree
	ErrorCodeExcessiveTrim      // trimmed mass over tolerance, period aborted
	ErrorCodeHighTrim           // trimmed mass near tolerance
)

type codeInfo struct {
	name   string
	status int
}

var codes = map[ErrorCode]codeInfo{
	ErrorCodeUnknown:            {"unknown", http.StatusInternalServerError},
	ErrorCodePanic:              {"panic", http.StatusInternalServerError},
	ErrorCodeUnavailable:        {"unavailable", http.StatusServiceUnavailable},
	ErrorCodeConflict:           {"conflict", http.StatusConflict},
	ErrorCodeInvalidArgument:    {"invalid_argument", http.StatusUnprocessableEntity},
	ErrorCodeValidation:         {"validation", http.StatusBadRequest},
	ErrorCodeNotFound:           {"not_found", http.StatusNotFound},
	ErrorCodeDuplicateKey:       {"duplicate_key", http.StatusConflict},
	ErrorCodeDB:                 {"db", http.StatusInternalServerError},
	ErrorCodeIO:                 {"io", http.StatusInternalServerError},
	ErrorCodeConflictingSources: {"conflicting_sources", http.StatusInternalServerError},
	ErrorCodeNoData:             {"no_data", http.StatusNotFound},
	ErrorCodeMismatchedData:     {"mismatched_data", http.StatusInternalServerError},
	ErrorCodeExcessiveTrim:      {"excessive_trim", http.StatusInternalServerError},
	ErrorCodeHighTrim:           {"high_trim", http.StatusInternalServerError},
}

// String is the snake case label written to logs and the ledger
func (c ErrorCode) String() string {
	if ci, ok := codes[c]; ok {
		return ci.name
	}
	return fmt.Sprintf("code_%d", uint16(c))
}

// HTTPStatusCode maps c to a response status; unknown codes are 500
func HTTPStatusCode(c ErrorCode) int {
	if ci, ok := codes[c]; ok {
		return ci.status
	}
	return http.StatusInternalServerError
}

// Error carries a code, a message and optionally the offending field, an op label and a cause
type Error struct {
	code  ErrorCode
	msg   string
	field string
	op    string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause == nil:
		return e.msg
	default:
		return e.msg + ": " + e.cause.Error()
	}
}

func (e *Error) Unwrap() error    { return e.cause }
func (e *Error) Code() ErrorCode  { return e.code }
func (e *Error) Field() string    { return e.field }
func (e *Error) Op() string       { return e.op }

func (e *Error) with(f func(*Error)) *Error {
	c := *e
	f(&c)
	return &c
}

// Wire is what the API puts in an error envelope. Message leaves out the cause
type Wire struct {
	Code    ErrorCode `json:"code"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// WireFrom renders any error; foreign errors come out as unknown with their full text
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	e, ok := As(err)
	if !ok {
		return Wire{Code: ErrorCodeUnknown, Kind: ErrorCodeUnknown.String(), Message: err.Error()}
	}
	return Wire{Code: e.code, Kind: e.code.String(), Message: e.msg, Field: e.field}
}

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf is the code of the outermost *Error, or Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus maps any error to a response status
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// Root walks Unwrap to the innermost cause
func Root(err error) error {
	for err != nil {
		next := stderrs.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return err
}

// WithField returns a copy of err naming the offending field; foreign errors pass through
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		return e.with(func(c *Error) { c.field = field })
	}
	return err
}

// WithOp returns a copy of err tagged with the operation that failed; foreign errors pass through
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		return e.with(func(c *Error) { c.op = op })
	}
	return err
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap keeps cause reachable through errors.Is and errors.As
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return Wrap(cause, code, fmt.Sprintf(format, a...))
}

func NotFoundf(format string, a ...any) error    { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error  { return Newf(ErrorCodeInvalidArgument, format, a...) }
func Validationf(format string, a ...any) error  { return Newf(ErrorCodeValidation, format, a...) }
func Conflictf(format string, a ...any) error    { return Newf(ErrorCodeConflict, format, a...) }
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }
func IOf(format string, a ...any) error          { return Newf(ErrorCodeIO, format, a...) }
func PanicErrf(format string, a ...any) error    { return Newf(ErrorCodePanic, format, a...) }

// Internalf is an unclassified failure; it is never retried
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// Retryable reports transient failures: Postgres contention or an explicit Unavailable
func Retryable(err error) bool {
	return IsCode(err, ErrorCodeUnavailable) || IsRetryable(err)
}
