package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"qsmerge/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dsn = "postgres://qs:qs@db:5432/qsmerge?sslmode=disable"

func TestOpen_BadURL(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "://bad"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpen_AppliesConfig(t *testing.T) {
	testkit.Serial(t)

	var seen *pgxpool.Config
	testkit.Swap(t, &newPool, func(_ context.Context, c *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = c
		return &pgxpool.Pool{}, nil
	})

	tr := &recTracer{}
	p, err := Open(context.Background(),
		Config{URL: dsn, MaxConns: 4, SlowMs: 500, AppName: "qsmerge-reconcile"},
		WithTracer(tr),
		WithPoolConfig(func(c *pgxpool.Config) { c.MaxConnIdleTime = time.Minute }),
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if seen.MaxConns != 4 || seen.MaxConnIdleTime != time.Minute {
		t.Fatalf("pool config = %d %v", seen.MaxConns, seen.MaxConnIdleTime)
	}
	if got := seen.ConnConfig.RuntimeParams["application_name"]; got != "qsmerge-reconcile" {
		t.Fatalf("application_name = %q", got)
	}
	if p.Tracer != tr || p.SlowMs != 500 {
		t.Fatalf("pg = %+v", p)
	}
}

func TestOpen_PoolError(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("dial tcp db:5432: connection refused")
	})
	if _, err := Open(context.Background(), Config{URL: dsn}); err == nil {
		t.Fatalf("expected pool error")
	}
}

func TestTrace_SlowThreshold(t *testing.T) {
	t.Parallel()

	tr := &recTracer{}
	p := &PG{Tracer: tr, SlowMs: 0}
	p.Trace(context.Background(), "SELECT EXISTS (SELECT 1 FROM period_tables WHERE name = $1)",
		[]any{"Qs_1A_rising-62L_t00-t20"}, time.Now(), nil)

	p.SlowMs = -1
	p.Trace(context.Background(), "SELECT 1", nil, time.Now().Add(-time.Hour), nil)

	if len(tr.events) != 2 || !tr.events[0].Slow || tr.events[1].Slow {
		t.Fatalf("events = %+v", tr.events)
	}

	var nilPG *PG
	nilPG.Trace(context.Background(), "SELECT 1", nil, time.Now(), nil)
	(&PG{}).Trace(context.Background(), "SELECT 1", nil, time.Now(), nil)
}

func TestClose_NilSafe(t *testing.T) {
	t.Parallel()

	var p *PG
	p.Close()
	(&PG{}).Close()
}
