// Package module is the Module contract. It sits apart from modkit so a module's
// ports type can import it without a cycle
package module

import phttp "qsmerge/internal/platform/net/http"

// Module is anything the API can mount. Ports may be nil
type Module interface {
	Name() string
	MountRoutes(r phttp.Router)
	Ports() any
}
