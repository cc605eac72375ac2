package middleware

import (
	"net/http"
	"runtime/debug"

	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/logger"
	pnet "qsmerge/internal/platform/net"
	phttp "qsmerge/internal/platform/net/http"
)

var panicked = phttp.Handle(func(*http.Request) phttp.Response {
	return phttp.Error(perr.PanicErrf("panic recovered"))
})

// RecoverJSON turns a handler panic into the standard 500 envelope and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can drop the connection
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().Interface("panic", v).Bytes("stack", debug.Stack()).Msg("panic recovered")
			if id := pnet.RequestID(r.Context()); id != "" {
				w.Header().Set("X-Request-ID", id)
			}
			panicked(w, r)
		}()
		next.ServeHTTP(w, r)
	})
}
