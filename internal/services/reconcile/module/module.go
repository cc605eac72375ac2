// Package module provides the reconcile module implementation
package module

import (
	"context"
	"fmt"
	"time"

	"qsmerge/internal/adapters/qstxt"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/modkit"
	"qsmerge/internal/modkit/repokit"
	perr "qsmerge/internal/platform/errors"
	phttp "qsmerge/internal/platform/net/http"

	"qsmerge/internal/services/reconcile/corrections"
	"qsmerge/internal/services/reconcile/domain"
	"qsmerge/internal/services/reconcile/export"
	"qsmerge/internal/services/reconcile/guardrails"
	"qsmerge/internal/services/reconcile/index"
	"qsmerge/internal/services/reconcile/repo"
	"qsmerge/internal/services/reconcile/service"
)

// Ports defines the reconcile module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the reconcile module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the reconcile module from deps.Cfg. It prepares the
// postgres schema, loads the manifest and corrections, and wires the stores.
// It does not mount any routes
func New(ctx context.Context, deps modkit.Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := opts.Validate(); err != nil {
		return nil, perr.WithOp(err, "reconcile: options")
	}
	db, err := deps.RequirePG("reconcile")
	if err != nil {
		return nil, err
	}
	if opts.StatsExport && deps.CH == nil {
		return nil, perr.WithField(perr.Validationf("reconcile: stats export needs clickhouse"), "stats_export")
	}

	if opts.StatementTimeout > 0 {
		db = repokit.WithBeginHooks(db, statementTimeout(opts.StatementTimeout))
	}
	if err := repo.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}

	idx, err := index.Load(opts.Manifest)
	if err != nil {
		return nil, err
	}
	corr, err := corrections.Load(opts.Corrections)
	if err != nil {
		return nil, err
	}

	binder := repo.NewPG()
	raw := qstxt.New(opts.DataRoot, qstxt.WithZeroPadAsNull(opts.ZeroPadAsNull))

	svc := service.New(
		db, binder,
		idx, raw, repo.NewTables(db, binder),
		repo.NewStats(db, binder),
		corr.Corrector(),
		service.Config{
			Tolerance: opts.Tolerance,
			Cutoff:    opts.Cutoff,
			Limits: reconcile.Limits{
				HighTrim:     opts.HighTrim,
				MaxTrim:      opts.MaxTrim,
				HeadFraction: reconcile.DefaultLimits().HeadFraction,
			},
			MaxRetries: opts.MaxRetries,
			RetryBase:  opts.RetryBase,
			Timeouts: guardrails.Timeouts{
				Period: opts.PeriodTimeout,
				Load:   opts.LoadTimeout,
				DB:     opts.DBTimeout,
			},
		},
	)

	if opts.TxtOut != "" {
		svc.Mirror = qstxt.New(opts.TxtOut)
		svc.StatsMirror = qstxt.NewStatsFile(opts.TxtOut)
	}
	if opts.StatsExport {
		ex := export.New(deps.CH)
		if err := ex.EnsureTable(ctx); err != nil {
			return nil, err
		}
		svc.Export = ex
	}

	deps.Log.Info().
		Int("periods", idx.Len()).
		Str("data_root", opts.DataRoot).
		Str("txt_out", opts.TxtOut).
		Bool("stats_export", opts.StatsExport).
		Msg("reconcile: module ready")

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// statementTimeout caps every statement of a transaction on the server side
func statementTimeout(d time.Duration) repokit.BeginHook {
	sql := fmt.Sprintf("SET LOCAL statement_timeout = %d", d.Milliseconds())
	return func(ctx context.Context, q repokit.Queryer) error {
		if _, err := q.Exec(ctx, sql); err != nil {
			return perr.FromPostgres(err, "reconcile: statement timeout")
		}
		return nil
	}
}

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }

// Name returns the module name
func (m *Module) Name() string { return "reconcile" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op as reconcile has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}
