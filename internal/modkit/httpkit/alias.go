// Package httpkit is what API modules use to declare routes. Modules import it
// instead of internal/platform/net/http
package httpkit

import (
	"net/http"

	phttp "qsmerge/internal/platform/net/http"
	"qsmerge/internal/platform/net/http/bind"
)

type (
	Envelope = phttp.Envelope
	Page     = phttp.Page
	Response = phttp.Response
	Handler  = phttp.Handler
	Router   = phttp.Router
)

var (
	OK        = phttp.OK
	NoContent = phttp.NoContent
	Error     = phttp.Error
	List      = phttp.List
	Handle    = phttp.Handle
)

// Get mounts a handler that needs nothing beyond the request. A returned Response
// is written as is; any other value becomes the data of a 200
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// GetQuery binds and validates the query string into T before h runs
func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Get(path, Query(h))
}

func Call(h func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return result(h(r)) })
}

func Query[T any](h func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.Query[T](r)
		if err != nil {
			return Error(err)
		}
		return result(h(r, in))
	})
}

func result(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}
