package store

import (
	"context"
	"fmt"
	"time"

	chx "qsmerge/internal/platform/store/ch"
	"qsmerge/internal/platform/store/pg"
)

const (
	pingBackoffStart = 150 * time.Millisecond
	pingBackoffMax   = 2 * time.Second
)

// openPG builds the pool and waits for the server to answer before handing out the adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var opts []pg.Option
	if cfg.PG.LogSQL {
		opts = append(opts, pg.WithTracer(pg.Tracer(s.Log)))
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, opts...)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	// the pool pings directly so boot retries stay out of the query trace
	if err := waitReady(ctx, attempts, timeout, p.Pool.Ping); err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return newPGAdapter(p), nil
}

// waitReady calls ping until it succeeds, ctx ends or attempts run out,
// doubling the pause between attempts up to pingBackoffMax
func waitReady(ctx context.Context, attempts int, timeout time.Duration, ping func(context.Context) error) error {
	var last error
	pause := pingBackoffStart
	for i := range attempts {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		last = ping(pctx)
		cancel()
		if last == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
		pause = min(pause*2, pingBackoffMax)
	}
	return fmt.Errorf("ping failed after %d attempts: %w", attempts, last)
}

func openCH(ctx context.Context, cfg Config, _ *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.CH.Role, Tag: cfg.AppName})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
