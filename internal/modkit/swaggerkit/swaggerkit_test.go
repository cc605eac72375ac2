package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "qsmerge/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func serve(t *testing.T, opt Options, path string) *httptest.ResponseRecorder {
	t.Helper()
	m := chi.NewRouter()
	m.Route("/api/v1", func(sub chi.Router) {
		Mount(phttp.AdaptChi(sub.(*chi.Mux)), opt)
	})
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMount_Disabled(t *testing.T) {
	if rec := serve(t, Options{Base: "/api/v1"}, "/api/v1/swagger/doc.json"); rec.Code != http.StatusNotFound {
		t.Fatalf("disabled docs should 404, got %d", rec.Code)
	}
}

func TestMount_DocJSON(t *testing.T) {
	rec := serve(t, Options{Enabled: true, Base: "/api/v1/", TitleSuffix: "(staging)"}, "/api/v1/swagger/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d body = %s", rec.Code, rec.Body.String())
	}

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]map[string]struct {
			Responses map[string]any `json:"responses"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.OpenAPI != "3.0.3" || doc.Info.Title != "qsmerge API (staging)" {
		t.Fatalf("openapi = %q title = %q", doc.OpenAPI, doc.Info.Title)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "/api/v1" {
		t.Fatalf("servers = %+v", doc.Servers)
	}
	for _, p := range []string{"/meta/health", "/meta/ready", "/meta/version", "/meta/service", "/periods", "/periods/stats"} {
		op, ok := doc.Paths[p]["get"]
		if !ok {
			t.Fatalf("missing GET %s", p)
		}
		for _, code := range []string{"500", "503"} {
			if _, ok := op.Responses[code]; !ok {
				t.Fatalf("GET %s has no shared %s", p, code)
			}
		}
	}
	if _, ok := doc.Paths["/periods/stats"]["get"].Responses["422"]; !ok {
		t.Fatalf("stats should document the malformed key response")
	}
}

func TestMount_UIAndRedirect(t *testing.T) {
	rec := serve(t, Options{Enabled: true, Base: "/api/v1"}, "/api/v1/swagger")
	if rec.Code != http.StatusPermanentRedirect || rec.Header().Get("Location") != "/api/v1/swagger/index.html" {
		t.Fatalf("redirect = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if rec := serve(t, Options{Enabled: true, Base: "/api/v1"}, "/api/v1/swagger/index.html"); rec.Code != http.StatusOK {
		t.Fatalf("ui status = %d", rec.Code)
	}
}

func TestServeDocJSON_BadDocument(t *testing.T) {
	orig := docReader
	t.Cleanup(func() { docReader = orig })
	docReader = func() string { return "{" }

	rec := httptest.NewRecorder()
	serveDocJSON("/api/v1", "")(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}
