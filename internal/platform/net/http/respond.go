// Package http is the platform HTTP layer: the router seam, the chi adapter,
// the server and the response envelope every handler writes through
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "qsmerge/internal/platform/errors"
	pnet "qsmerge/internal/platform/net"
)

// Envelope wraps every body. Errors fill code, kind, error and field; successes fill data
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Page describes a bounded list
type Page struct {
	Count int `json:"count"`
	Limit int `json:"limit,omitempty"`
}

// ListBody is the data of a List response
type ListBody struct {
	Items any  `json:"items"`
	Page  Page `json:"page"`
}

// Response is what return style handlers produce. Body may be an error
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }
func NoContent() Response  { return Response{Status: stdhttp.StatusNoContent} }

// Error defers the status to the error's code
func Error(err error) Response { return Response{Body: err} }

// List is a 200 with items and a page block
func List(items any, count, limit int) Response {
	return OK(ListBody{Items: items, Page: Page{Count: count, Limit: limit}})
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(*stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		resp := h(r)
		for k, vs := range resp.Header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		if resp.Status == stdhttp.StatusNoContent {
			w.WriteHeader(resp.Status)
			return
		}
		env := resp.envelope()
		env.RequestID = pnet.RequestID(r.Context())
		JSON(w, env.StatusCode, env)
	}
}

func (resp Response) envelope() Envelope {
	var env Envelope
	if err, ok := resp.Body.(error); ok && err != nil {
		wire := perr.WireFrom(err)
		env = Envelope{StatusCode: perr.HTTPStatus(err), Code: wire.Code, Kind: wire.Kind, Error: wire.Message, Field: wire.Field}
	} else {
		env = Envelope{StatusCode: resp.Status, Data: resp.Body}
		if env.StatusCode == 0 {
			env.StatusCode = stdhttp.StatusOK
		}
	}
	env.Status = stdhttp.StatusText(env.StatusCode)
	return env
}

// JSON writes v with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
