package ch

import (
	"context"
	"errors"
	"testing"
)

func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "://bad"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestZeroClient_NotConnected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cl := &CH{}

	if err := cl.Ping(ctx); !errors.Is(err, errNotConnected) {
		t.Fatalf("Ping err = %v", err)
	}
	if err := cl.Exec(ctx, "SELECT 1"); !errors.Is(err, errNotConnected) {
		t.Fatalf("Exec err = %v", err)
	}
	if _, err := cl.Query(ctx, "SELECT 1"); !errors.Is(err, errNotConnected) {
		t.Fatalf("Query err = %v", err)
	}
	if err := cl.Insert(ctx, "t", [][]any{{1}}); !errors.Is(err, errNotConnected) {
		t.Fatalf("Insert err = %v", err)
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close err = %v", err)
	}
}

func TestInsert_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	var cl *CH
	if err := cl.Insert(context.Background(), "t", nil); err != nil {
		t.Fatalf("empty insert should not touch the connection: %v", err)
	}
}

func TestBuildClientInfo(t *testing.T) {
	t.Parallel()

	info := BuildClientInfo("reconcile", " v1 ")
	if len(info.Products) != 5 {
		t.Fatalf("products = %+v", info.Products)
	}
	if p := info.Products[0]; p.Name != "qsmerge" || p.Version != "v1" {
		t.Fatalf("first product = %+v", p)
	}
	if p := info.Products[1]; p.Name != "role" || p.Version != "reconcile" {
		t.Fatalf("role product = %+v", p)
	}
	if got := safe("  "); got != "unknown" {
		t.Fatalf("safe blank = %q", got)
	}
}
