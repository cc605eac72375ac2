// Package store opens the ledger database (Postgres, required by both binaries) and the
// optional ClickHouse export target, and hands them out as small seams
package store

import (
	"context"
	"errors"
	"fmt"

	"qsmerge/internal/platform/logger"
)

// Store holds whichever backends Open enabled. A disabled backend is nil
type Store struct {
	Log logger.Logger // sql tracer and open retries log here
	PG  TxRunner
	CH  Clickhouse
}

// Option adjusts the Store before any backend opens
type Option func(*Store)

func WithLogger(l logger.Logger) Option { return func(s *Store) { s.Log = l } }

// Open connects Postgres first, then ClickHouse. When ClickHouse fails the
// Postgres pool is closed again so nothing leaks
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		o(s)
	}

	var err error
	if cfg.PG.Enabled {
		if s.PG, err = openPG(ctx, cfg, s); err != nil {
			return nil, err
		}
	}
	if cfg.CH.Enabled {
		if s.CH, err = openCH(ctx, cfg, s); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

type backend struct {
	name string
	seam any
}

func (s *Store) backends() []backend {
	all := []backend{{"pg", s.PG}, {"ch", s.CH}}
	out := all[:0]
	for _, b := range all {
		if b.seam != nil {
			out = append(out, b)
		}
	}
	return out
}

// Guard pings every backend that supports it and joins the failures, each prefixed with its name
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: not opened")
	}
	var errs []error
	for _, b := range s.backends() {
		p, ok := b.seam.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every backend and joins the failures
func (s *Store) Close(_ context.Context) error {
	var errs []error
	for _, b := range s.backends() {
		c, ok := b.seam.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}
