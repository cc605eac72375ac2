package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/version"
	"qsmerge/internal/modkit"
	"qsmerge/internal/modkit/module"
	"qsmerge/internal/modkit/repokit"
	"qsmerge/internal/platform/config"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/logger"
	"qsmerge/internal/platform/store"

	"qsmerge/internal/services/reconcile/domain"
	"qsmerge/internal/services/reconcile/index"
	reconcilemod "qsmerge/internal/services/reconcile/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fManifest = flag.String("manifest", "", "period manifest yaml (overrides CORE_RECONCILE_MANIFEST)")
		fOnly     = flag.String("only", "", "reconcile a single period, e.g. 1A/rising-62L/t00-t20")
		fForce    = flag.Bool("force", false, "recompute periods whose output already exists")
		fTxt      = flag.String("txt", "", "also write text tables and stats here (overrides CORE_RECONCILE_TXT_OUT)")
		fScan     = flag.String("scan", "", "scan this directory for Qs*.txt files, merge into the manifest and exit")
	)
	flag.Parse()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mustSetEnv("CORE_RECONCILE_MANIFEST", *fManifest)
	mustSetEnv("CORE_RECONCILE_TXT_OUT", *fTxt)

	if *fScan != "" {
		out := root.Prefix("CORE_RECONCILE_").MustString("MANIFEST")
		if err := scan(ctx, *fScan, out); err != nil {
			l.Fatal().Err(err).Str("dir", *fScan).Msg("manifest scan failed")
		}
		return
	}

	var opts domain.RunOptions
	opts.Force = *fForce
	if *fOnly != "" {
		k, err := period.ParseKey(*fOnly)
		if err != nil {
			l.Fatal().Err(err).Str("only", *fOnly).Msg("bad -only")
		}
		opts.Only = &k
	}

	chOn := chCfg.MayBool("ENABLED", false)
	chURL := ""
	if chOn {
		chURL = chCfg.MustString("DBURL")
	}
	st, err := store.Open(ctx, store.Config{
		AppName: version.Info().Version,
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: chOn,
			URL:     chURL,
			Role:    "reconcile",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	rm, err := reconcilemod.New(ctx, deps)
	if err != nil {
		l.Fatal().Err(err).Msg("reconcile module")
	}

	runner := module.MustPortsOf[reconcilemod.Ports](rm).Runner
	sum, err := runner.Run(ctx, opts)
	ev := l.Info()
	if err != nil {
		ev = l.Error().Err(err)
	}
	ev.Str("run_id", sum.RunID).
		Int("periods", sum.Periods).
		Int("loaded", sum.Loaded).
		Int("produced", sum.Produced).
		Int("skipped", sum.Skipped).
		Int("nodata", sum.NoData).
		Int("failed", sum.Failed).
		Dur("elapsed", sum.Elapsed).
		Msg("reconcile finished")

	// failed periods are in the ledger; only a run level failure changes the exit code
	if err != nil && reconcile.SeverityOf(err) == reconcile.RunFatal {
		_ = st.Close(context.Background())
		stop()
		os.Exit(1)
	}
}

// scan builds a manifest from the files under dir and merges it into the one at out
func scan(ctx context.Context, dir, out string) error {
	found, err := index.Scan(ctx, dir)
	if err != nil {
		return err
	}
	m, err := index.Load(out)
	switch {
	case err == nil:
		m.Merge(found)
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		m = found
	default:
		return err
	}
	if err := m.Save(out); err != nil {
		return err
	}
	logger.C(ctx).Info().Int("periods", m.Len()).Str("manifest", out).Msg("manifest written")
	return nil
}
