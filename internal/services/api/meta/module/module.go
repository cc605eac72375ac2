// Package module mounts the meta endpoints
package module

import (
	"net/http"
	"time"

	modkit "qsmerge/internal/modkit"
	"qsmerge/internal/modkit/httpkit"
	"qsmerge/internal/platform/store"
	str "qsmerge/internal/platform/strings"
	metahttp "qsmerge/internal/services/api/meta/http"
)

// Module serves /meta
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	deps   metahttp.Deps
}

// New pings postgres as required and clickhouse as optional.
// CORE_API_READY_TIMEOUT bounds the ready check
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build("meta", "/meta", opts...)
	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		deps: metahttp.Deps{
			ServiceName:  "qsmerge-api",
			StartedAt:    time.Now(),
			ReadyTimeout: deps.Cfg.MayDuration("READY_TIMEOUT", 2*time.Second),
			Dependencies: []metahttp.Dependency{
				{Name: "pg", Required: true, Pinger: pinger(deps.PG)},
				{Name: "ch", Pinger: pinger(deps.CH)},
			},
		},
	}
}

// pinger reports seams that cannot Ping as absent
func pinger(seam any) store.Pinger {
	if seam == nil {
		return nil
	}
	p, _ := seam.(store.Pinger)
	return p
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, func(rr httpkit.Router) {
		metahttp.Register(rr, m.deps)
	})
}

func (m *Module) Name() string                                   { return str.MustString(m.name, "meta") }
func (m *Module) Prefix() string                                 { return str.MustPrefix(m.prefix) }
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
func (m *Module) Ports() any                                     { return nil }
