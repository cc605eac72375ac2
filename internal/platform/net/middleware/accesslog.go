// Package middleware holds the status API's request middlewares. Chi types stay in here
package middleware

import (
	"net/http"
	"time"

	"qsmerge/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// AccessLogOptions configures AccessLogZerolog
type AccessLogOptions struct {
	Slow   time.Duration  // at or above this a request logs at warn; zero disables
	Logger *logger.Logger // root logger when nil
}

// AccessLogZerolog writes one line per request. 5xx log at error, slow requests at warn
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			base := opt.Logger
			if base == nil {
				base = logger.Get()
			}
			log := logger.Enrich(r.Context(), *base)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			var evt *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				evt = log.Error()
			case opt.Slow > 0 && elapsed >= opt.Slow:
				evt = log.Warn().Bool("slow", true)
			default:
				evt = log.Info()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Msg("request done")
		})
	}
}
