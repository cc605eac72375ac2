package service

import (
	"context"
	"testing"
	"time"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
	tt "qsmerge/internal/core/table/tabletest"
	"qsmerge/internal/modkit/repokit"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/store"
	"qsmerge/internal/platform/testkit"
	"qsmerge/internal/services/api/periods/domain"
	rdomain "qsmerge/internal/services/reconcile/domain"

	"github.com/google/go-cmp/cmp"
)

type nopTx struct{}

func (nopTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (nopTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (nopTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f nopTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error { return fn(f) }

// fakeRepo serves canned ledger rows; only the read side is used
type fakeRepo struct {
	rdomain.StorageRepo
	runs   []rdomain.PeriodRun
	stats  reconcile.Stats
	filter rdomain.ListFilter
}

func (f *fakeRepo) ListPeriods(_ context.Context, lf rdomain.ListFilter) ([]rdomain.PeriodRun, error) {
	f.filter = lf
	return f.runs, nil
}

func (f *fakeRepo) PeriodStats(_ context.Context, k period.Key) (reconcile.Stats, error) {
	out := reconcile.Stats{}
	for sk, row := range f.stats {
		if sk.Period == k {
			out[sk] = row
		}
	}
	return out, nil
}

func newSvc(r *fakeRepo) *Svc {
	return New(nopTx{}, repokit.BindFunc[rdomain.StorageRepo](func(repokit.Queryer) rdomain.StorageRepo { return r }))
}

func TestList(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ratio := 0.001
	r := &fakeRepo{runs: []rdomain.PeriodRun{{
		RunID:     "run-1",
		Key:       period.MustParseKey("1A/rising-62L/t00-t20"),
		StartedAt: started,
		PeriodFinish: rdomain.PeriodFinish{
			Status: rdomain.StatusOK, Origin: "combined", Sources: 3,
			RowsIn: 1210, RowsOut: 1200, DiffRatio: &ratio,
			Warnings: []string{"mismatched_data"},
		},
	}, {
		RunID: "run-1", Key: period.MustParseKey("1A/rising-62L/t20-t40"),
		StartedAt:    started,
		PeriodFinish: rdomain.PeriodFinish{Status: rdomain.StatusError, ErrText: "excessive trim"},
	}}}

	got, err := newSvc(r).List(context.Background(), domain.ListInput{Status: rdomain.StatusOK, Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if r.filter.Limit != 5 || r.filter.Status != rdomain.StatusOK {
		t.Fatalf("filter = %+v", r.filter)
	}
	want := []domain.PeriodRow{{
		RunID: "run-1", Period: "1A/rising-62L/t00-t20", Status: "ok", Origin: "combined",
		StartedAt: started, Sources: 3, RowsIn: 1210, RowsOut: 1200, DiffRatio: &ratio,
		Warnings: []string{"mismatched_data"},
	}, {
		RunID: "run-1", Period: "1A/rising-62L/t20-t40", Status: "error", StartedAt: started,
		Warnings: []string{}, Error: "excessive trim",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	k := period.MustParseKey("1A/rising-62L/t00-t20")
	in := tt.Series(4, 2)
	for i := range in.Rows {
		in.Rows[i][table.ColVel] = table.Null
	}
	r := &fakeRepo{stats: reconcile.Summarize(k, in)}
	s := newSvc(r)

	got, err := s.Stats(context.Background(), domain.StatsInput{Key: k.String()})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d", len(got))
	}
	for _, row := range got {
		if row.Period != k.String() {
			t.Fatalf("period = %q", row.Period)
		}
		switch row.Kind {
		case string(reconcile.StatSum):
			if v := row.Values["Bedload all"]; v == nil || *v != 8 {
				t.Fatalf("sum bedload = %v", v)
			}
		case string(reconcile.StatNulls):
			if v := row.Values["vel"]; v == nil || *v != 4 {
				t.Fatalf("null count vel = %v", v)
			}
		}
	}

	_, err = s.Stats(context.Background(), domain.StatsInput{Key: "1A/rising-62L/t40-t60"})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing stats err = %v", err)
	}
	_, err = s.Stats(context.Background(), domain.StatsInput{Key: "nope"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad key err = %v", err)
	}
}

func TestNew_PanicsOnMissingDeps(t *testing.T) {
	t.Parallel()

	testkit.MustPanic(t, func() { New(nil, nil) })
	testkit.MustPanic(t, func() { New(nopTx{}, nil) })
}
