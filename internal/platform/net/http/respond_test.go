package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "qsmerge/internal/platform/errors"
	pnet "qsmerge/internal/platform/net"
	phttp "qsmerge/internal/platform/net/http"

	"github.com/google/go-cmp/cmp"
)

func serve(t *testing.T, resp phttp.Response) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/periods", nil)
	req = req.WithContext(pnet.WithRequest(req.Context(), "rid-1"))
	rec := httptest.NewRecorder()
	phttp.Handle(func(*http.Request) phttp.Response { return resp })(rec, req)

	var env phttp.Envelope
	if rec.Code != http.StatusNoContent {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal %q: %v", rec.Body.String(), err)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Fatalf("content-type = %q", ct)
		}
	}
	return rec, env
}

func TestHandle_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want phttp.Envelope
	}{
		{
			"missing stats", perr.NotFoundf("no stats for period 1A/rising-62L/t40-t60"),
			phttp.Envelope{StatusCode: 404, Status: "Not Found", Code: perr.ErrorCodeNotFound, Kind: "not_found", Error: "no stats for period 1A/rising-62L/t40-t60", RequestID: "rid-1"},
		},
		{
			"bad filter", perr.WithField(perr.Validationf("status must be one of running ok skipped nodata error"), "status"),
			phttp.Envelope{StatusCode: 400, Status: "Bad Request", Code: perr.ErrorCodeValidation, Kind: "validation", Error: "status must be one of running ok skipped nodata error", Field: "status", RequestID: "rid-1"},
		},
		{
			"foreign", errors.New("boom"),
			phttp.Envelope{StatusCode: 500, Status: "Internal Server Error", Kind: "unknown", Error: "boom", RequestID: "rid-1"},
		},
	}
	for _, tc := range cases {
		rec, env := serve(t, phttp.Error(tc.err))
		if rec.Code != tc.want.StatusCode {
			t.Fatalf("%s: code = %d", tc.name, rec.Code)
		}
		if d := cmp.Diff(tc.want, env); d != "" {
			t.Fatalf("%s: envelope (-want +got):\n%s", tc.name, d)
		}
	}
}

func TestHandle_ListAndHeaders(t *testing.T) {
	t.Parallel()

	resp := phttp.List([]string{"1A/rising-62L/t00-t20", "1A/rising-62L/t20-t40"}, 2, 50)
	resp.Header = http.Header{"X-Run-Id": {"r1"}}
	rec, env := serve(t, resp)

	if rec.Code != http.StatusOK || rec.Header().Get("X-Run-Id") != "r1" || env.RequestID != "rid-1" {
		t.Fatalf("code=%d headers=%v env=%+v", rec.Code, rec.Header(), env)
	}
	want := map[string]any{
		"items": []any{"1A/rising-62L/t00-t20", "1A/rising-62L/t20-t40"},
		"page":  map[string]any{"count": float64(2), "limit": float64(50)},
	}
	if d := cmp.Diff(want, env.Data); d != "" {
		t.Fatalf("data (-want +got):\n%s", d)
	}
}

func TestHandle_NoContentAndDefaultStatus(t *testing.T) {
	t.Parallel()

	if rec, _ := serve(t, phttp.NoContent()); rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("no content: %d %q", rec.Code, rec.Body.String())
	}
	if rec, env := serve(t, phttp.Response{Body: "ok"}); rec.Code != http.StatusOK || env.Data != "ok" {
		t.Fatalf("zero status: %d %+v", rec.Code, env)
	}
}
