package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "qsmerge/internal/platform/net/http"
	"qsmerge/internal/platform/store"

	"github.com/go-chi/chi/v5"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   store.Pinger = pingFunc(func(context.Context) error { return nil })
	down store.Pinger = pingFunc(func(context.Context) error { return errors.New("connection refused") })
	slow store.Pinger = pingFunc(func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() })
)

func ready(t *testing.T, deps ...Dependency) ReadyResponse {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, Deps{ServiceName: "qsmerge-api", StartedAt: time.Now(), ReadyTimeout: 50 * time.Millisecond, Dependencies: deps})

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/ready", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("ready code = %d", rec.Code)
	}
	var env struct {
		Data ReadyResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func TestReady_Status(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		deps []Dependency
		want string
	}{
		{"all up", []Dependency{{"pg", true, up}, {"ch", false, up}}, "ok"},
		{"clickhouse not configured", []Dependency{{"pg", true, up}, {"ch", false, nil}}, "ok"},
		{"clickhouse down", []Dependency{{"pg", true, up}, {"ch", false, down}}, "degraded"},
		{"postgres not configured", []Dependency{{"pg", true, nil}, {"ch", false, up}}, "degraded"},
		{"postgres down", []Dependency{{"pg", true, down}, {"ch", false, down}}, "fail"},
		{"postgres hangs", []Dependency{{"pg", true, slow}}, "fail"},
	}
	for _, tc := range cases {
		got := ready(t, tc.deps...)
		if got.Status != tc.want || len(got.Checks) != len(tc.deps) {
			t.Fatalf("%s: status = %q checks = %+v", tc.name, got.Status, got.Checks)
		}
	}
}

func TestReady_ReportsError(t *testing.T) {
	t.Parallel()

	got := ready(t, Dependency{"pg", true, down}, Dependency{"ch", false, nil})
	if got.Checks[0].Error != "connection refused" || got.Checks[1].Status != "skipped" {
		t.Fatalf("checks = %+v", got.Checks)
	}
}

func TestService_Uptime(t *testing.T) {
	t.Parallel()

	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, Deps{ServiceName: "qsmerge-api", StartedAt: time.Now().Add(-90 * time.Second)})

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/service", nil))
	var env struct {
		Data ServiceResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Name != "qsmerge-api" || env.Data.Uptime < 90 {
		t.Fatalf("service = %+v", env.Data)
	}
}
