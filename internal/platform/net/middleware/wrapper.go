package middleware

import (
	"net/http"
	"time"

	pnet "qsmerge/internal/platform/net"
	pstrings "qsmerge/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

func RequestID() func(http.Handler) http.Handler    { return chimw.RequestID }
func RealIP() func(http.Handler) http.Handler       { return chimw.RealIP }
func NoCache() func(http.Handler) http.Handler      { return chimw.NoCache }
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Timeout cancels the request context after d and answers 504 if the handler has not written
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// Compress gzips or deflates responses at level, see compress/flate
func Compress(level int) func(http.Handler) http.Handler {
	return chimw.NewCompressor(level).Handler
}

// LogContext puts chi's request id where logger.C finds it. Mount it after RequestID
func LogContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := pnet.RequestID(r.Context()); id != "" {
				w.Header().Set("X-Request-ID", id)
				r = r.WithContext(pnet.WithRequest(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSOptions is the part of go-chi/cors the status API exposes
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string // GET HEAD OPTIONS when empty
	AllowedHeaders []string
	MaxAge         int
}

// CORS only allows reads unless methods are given
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodHead, http.MethodOptions}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         o.MaxAge,
	})
}
