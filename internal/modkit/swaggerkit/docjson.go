package swaggerkit

import (
	"encoding/json"
	"iter"
	"net/http"
	"strconv"

	perr "qsmerge/internal/platform/errors"
	docs "qsmerge/internal/services/api/docs"
)

// docReader is swapped in tests to feed a broken document
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// sharedErrors are added to every operation that does not document them itself
var sharedErrors = []error{
	perr.PanicErrf("panic recovered"),
	perr.Unavailablef("postgres is unavailable"),
}

func serveDocJSON(base, titleSuffix string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(docReader()), &doc); err != nil {
			http.Error(w, "openapi document does not parse", http.StatusInternalServerError)
			return
		}

		// the UI renders 3.0.x; swag may emit a swagger 2 key next to openapi
		delete(doc, "swagger")
		doc["openapi"] = "3.0.3"
		if _, ok := doc["servers"]; !ok && base != "" {
			doc["servers"] = []any{map[string]any{"url": base}}
		}
		if info, ok := doc["info"].(map[string]any); ok && titleSuffix != "" {
			title, _ := info["title"].(string)
			info["title"] = title + " " + titleSuffix
		}
		for op := range operations(doc) {
			responses, _ := op["responses"].(map[string]any)
			if responses == nil {
				responses = map[string]any{}
				op["responses"] = responses
			}
			for _, err := range sharedErrors {
				status := perr.HTTPStatus(err)
				key := strconv.Itoa(status)
				if _, ok := responses[key]; !ok {
					responses[key] = errorResponse(status, err)
				}
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(doc)
	}
}

// operations yields every operation object under paths
func operations(doc map[string]any) iter.Seq[map[string]any] {
	return func(yield func(map[string]any) bool) {
		paths, _ := doc["paths"].(map[string]any)
		for _, item := range paths {
			methods, _ := item.(map[string]any)
			for _, op := range methods {
				if o, ok := op.(map[string]any); ok && !yield(o) {
					return
				}
			}
		}
	}
}

func errorResponse(status int, err error) map[string]any {
	wire := perr.WireFrom(err)
	return map[string]any{
		"description": http.StatusText(status),
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/http.Envelope"},
				"example": map[string]any{
					"status_code": status,
					"status":      http.StatusText(status),
					"code":        wire.Code,
					"kind":        wire.Kind,
					"error":       wire.Message,
					"request_id":  "579f33bf50b1/abc-000001",
				},
			},
		},
	}
}
