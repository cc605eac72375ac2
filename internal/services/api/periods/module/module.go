// Package module wires the period ledger into the API using modkit
package module

import (
	"net/http"

	modkit "qsmerge/internal/modkit"
	"qsmerge/internal/modkit/httpkit"
	str "qsmerge/internal/platform/strings"
	periodshttp "qsmerge/internal/services/api/periods/http"
	periodssvc "qsmerge/internal/services/api/periods/service"
	"qsmerge/internal/services/reconcile/repo"
)

// Module implements the periods module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	svc periodssvc.Service
}

// New constructs the periods module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build("periods", "/periods", opts...)

	svc := periodssvc.New(deps.PG, repo.NewPG())

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Reader: adaptPeriodsPort{svc: svc}}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, func(rr httpkit.Router) {
		periodshttp.Register(rr, m.svc)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
