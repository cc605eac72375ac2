// Package pg opens the Postgres pool behind the store and traces its queries
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int    // queries at or over this are traced as slow; <0 never
	AppName  string // application_name shown in pg_stat_activity
}

// PG is the pool plus the optional tracer every query is reported to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Option adjusts Open
type Option func(*openOpts)

type openOpts struct {
	tracer  QueryTracer
	poolMut func(*pgxpool.Config)
}

// WithTracer reports every query to t
func WithTracer(t QueryTracer) Option { return func(o *openOpts) { o.tracer = t } }

// WithPoolConfig lets the caller adjust the parsed pool config before the pool is built
func WithPoolConfig(fn func(*pgxpool.Config)) Option { return func(o *openOpts) { o.poolMut = fn } }

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and builds the pool. It does not ping
func Open(ctx context.Context, cfg Config, opts ...Option) (*PG, error) {
	var o openOpts
	for _, opt := range opts {
		opt(&o)
	}
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	if o.poolMut != nil {
		o.poolMut(pcfg)
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: o.tracer, SlowMs: cfg.SlowMs}, nil
}

// Trace reports one finished statement to the tracer, if any
func (p *PG) Trace(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if p == nil || p.Tracer == nil {
		return
	}
	elapsed := time.Since(start)
	p.Tracer.OnQuery(ctx, QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsed.Microseconds(),
		Err:       err,
		Slow:      p.SlowMs >= 0 && elapsed >= time.Duration(p.SlowMs)*time.Millisecond,
	})
}

// Close closes the pool; nil safe
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
