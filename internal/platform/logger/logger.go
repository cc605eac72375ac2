// Package logger wraps zerolog: one process wide root logger configured from LOG_*,
// plus request, run and period fields carried on the context
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"qsmerge/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is zerolog's logger; callers never import zerolog just for the type
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level       string // trace..panic, "warning" accepted; anything else is debug
	Format      string // console or json
	Service     string
	Component   string
	Writer      io.Writer // stdout when nil
	WithCaller  bool
	SampleEvery int // keep one event in N when N > 1
}

// FromEnv reads LOG_* through the raw view, which never logs itself
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:       env.Get("LEVEL", "debug"),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", ""),
		Component:   env.Get("COMPONENT", ""),
		WithCaller:  env.GetBool("CALLER", false),
		SampleEvery: env.GetInt("SAMPLE_EVERY", 0),
	}
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel {
		return zerolog.DebugLevel
	}
	return lvl
}

// New builds a logger from opt without touching the root
func New(opt Options) Logger {
	out := opt.Writer
	if out == nil {
		out = os.Stdout
	}
	if opt.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	b := zerolog.New(out).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		b = b.Str("go_version", bi.GoVersion)
	}
	if opt.Service != "" {
		b = b.Str("service", opt.Service)
	}
	if opt.Component != "" {
		b = b.Str("component", opt.Component)
	}
	if opt.WithCaller {
		b = b.Caller()
	}

	l := b.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

var (
	initOnce sync.Once
	root     atomic.Pointer[Logger]
)

// Init sets the root logger; only the first call has any effect
func Init(opt Options) {
	initOnce.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opt)
		root.Store(&l)
	})
}

// Get returns the root logger, initialising it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named is the root logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

// scope is what the context carries for log enrichment
type scope struct {
	requestID string
	runID     string
	period    string
}

type scopeKey struct{}

func scopeOf(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, v string, set func(*scope)) context.Context {
	if v == "" {
		return ctx
	}
	s := scopeOf(ctx)
	set(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithRequest tags ctx with the http request id
func WithRequest(ctx context.Context, id string) context.Context {
	return withScope(ctx, id, func(s *scope) { s.requestID = id })
}

// WithRun tags ctx with the reconciliation run id
func WithRun(ctx context.Context, id string) context.Context {
	return withScope(ctx, id, func(s *scope) { s.runID = id })
}

// WithPeriod tags ctx with the period key being processed
func WithPeriod(ctx context.Context, key string) context.Context {
	return withScope(ctx, key, func(s *scope) { s.period = key })
}

// Enrich adds request_id, run_id and period from ctx to l
func Enrich(ctx context.Context, l Logger) Logger {
	s := scopeOf(ctx)
	if s == (scope{}) {
		return l
	}
	b := l.With()
	for _, f := range [...]struct{ k, v string }{{"request_id", s.requestID}, {"run_id", s.runID}, {"period", s.period}} {
		if f.v != "" {
			b = b.Str(f.k, f.v)
		}
	}
	return b.Logger()
}

// C is the root logger enriched from ctx
func C(ctx context.Context) *Logger {
	l := Enrich(ctx, *Get())
	return &l
}
