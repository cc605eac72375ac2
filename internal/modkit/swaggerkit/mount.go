// Package swaggerkit mounts the Swagger UI and the OpenAPI document of the status API
package swaggerkit

import (
	"net/http"
	"strings"

	phttp "qsmerge/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Options controls where the docs are served
type Options struct {
	Enabled     bool
	Base        string // public path of the router Mount is given, e.g. /api/v1
	TitleSuffix string // appended to info.title, e.g. the environment name
}

// Mount serves the UI under /swagger/ and the document at /swagger/doc.json
// on r. It does nothing unless enabled
func Mount(r phttp.Router, opt Options) {
	if !opt.Enabled {
		return
	}
	base := strings.TrimRight(opt.Base, "/")
	r.Get("/swagger", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, base+"/swagger/index.html", http.StatusPermanentRedirect)
	})
	r.Get("/swagger/doc.json", serveDocJSON(base, opt.TitleSuffix))
	r.Handle("/swagger/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL(base+"/swagger/doc.json"),
	))
}
