// Package api provides the read only HTTP API over the period ledger
package api

import (
	"time"

	"qsmerge/internal/platform/config"
	"qsmerge/internal/platform/logger"
	phttp "qsmerge/internal/platform/net/http"
	"qsmerge/internal/platform/store"

	"qsmerge/internal/modkit"
	"qsmerge/internal/modkit/httpkit"
	"qsmerge/internal/modkit/module"
	"qsmerge/internal/modkit/swaggerkit"

	metamod "qsmerge/internal/services/api/meta/module"
	periodsmod "qsmerge/internal/services/api/periods/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableProfiler bool
	EnableSwagger  bool
}

// Mount mounts the API service onto the given router and returns the mounted modules
func Mount(r phttp.Router, opt Options) []module.Module {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	mods := []module.Module{
		metamod.New(deps),
		periodsmod.New(deps),
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		Origins: opt.Config.MayCSV("CORS_ORIGINS", nil),
		Slow:    opt.Config.MayDuration("SLOW", 500*time.Millisecond),
		Timeout: opt.Config.MayDuration("TIMEOUT", 30*time.Second),
	})

	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		swaggerkit.Mount(api, swaggerkit.Options{
			Enabled:     opt.EnableSwagger,
			Base:        "/api/v1",
			TitleSuffix: opt.Config.MayString("DOCS_TITLE_SUFFIX", ""),
		})
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
	return mods
}
