package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func header(name string) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
			w.Header().Set(name, "1")
			next.ServeHTTP(w, req)
		})
	}
}

func body(s string) Handler {
	return func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = w.Write([]byte(s)) }
}

func TestAdaptChi_RootGroupRouteAndMux(t *testing.T) {
	t.Parallel()

	r := AdaptChi(chi.NewRouter())
	r.Use(header("X-Root"))
	r.Get("/root", body("root"))
	r.Handle("/std", stdhttp.HandlerFunc(body("std")))

	r.Group(func(gr Router) {
		gr.Use(header("X-Group"))
		if gr.Mux() == nil {
			t.Fatalf("group Mux() returned nil")
		}
		gr.Get("/g/ping", body("g"))
	})

	r.Route("/api", func(sr Router) {
		sr.Use(header("X-Route"))
		sr.Route("/v1", func(v1 Router) {
			v1.Get("/ping", body("pong"))
		})
	})

	cases := []struct {
		path, body string
		headers    []string
	}{
		{"/root", "root", []string{"X-Root"}},
		{"/std", "std", []string{"X-Root"}},
		{"/g/ping", "g", []string{"X-Root", "X-Group"}},
		{"/api/v1/ping", "pong", []string{"X-Root", "X-Route"}},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		r.Mux().ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, c.path, nil))
		if rr.Code != 200 || rr.Body.String() != c.body {
			t.Fatalf("GET %s => code=%d body=%q", c.path, rr.Code, rr.Body.String())
		}
		for _, h := range c.headers {
			if rr.Header().Get(h) != "1" {
				t.Fatalf("GET %s: header %s missing", c.path, h)
			}
		}
	}

	// group middleware must not leak to root routes
	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/root", nil))
	if rr.Header().Get("X-Group") != "" {
		t.Fatalf("group middleware leaked to root")
	}
}

func TestAdaptChi_OnlyGet(t *testing.T) {
	t.Parallel()

	r := AdaptChi(chi.NewRouter())
	r.Get("/x", body("x"))

	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodPost, "/x", nil))
	if rr.Code != stdhttp.StatusMethodNotAllowed {
		t.Fatalf("POST on a GET route => %d", rr.Code)
	}
}
