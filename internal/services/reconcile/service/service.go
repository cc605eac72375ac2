// Package service runs the period reconciliation pipeline over every indexed period
package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
	"qsmerge/internal/modkit/repokit"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/logger"
	"qsmerge/internal/services/reconcile/domain"
	"qsmerge/internal/services/reconcile/guardrails"

	"github.com/google/uuid"
)

// Config holds the reconciliation thresholds and run pacing
type Config struct {
	Tolerance float64          // diff ratio accepted between full recording and chunks
	Cutoff    float64          // bedload outlier cutoff in g/s
	Limits    reconcile.Limits // trim thresholds

	// Period-level retry on transient store errors
	MaxRetries int           // attempts per period; <=0 -> 1
	RetryBase  time.Duration // base backoff; <=0 -> 500ms

	Timeouts guardrails.Timeouts
}

// DefaultConfig mirrors the thresholds of the instrument processing notes
func DefaultConfig() Config {
	return Config{
		Tolerance:  reconcile.DefaultTolerance,
		Cutoff:     reconcile.DefaultCutoff,
		Limits:     reconcile.DefaultLimits(),
		MaxRetries: 3,
		RetryBase:  500 * time.Millisecond,
	}
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo] // ledger writes

	Index domain.PeriodIndex
	Raw   domain.TableStore // raw instrument tables keyed by source id
	Out   domain.TableStore // reconciled tables keyed by period name
	Stats domain.StatsStore

	// Optional sinks
	Mirror      domain.TableStore
	StatsMirror domain.StatsStore
	Export      domain.StatsExporter

	Corrector *reconcile.Corrector
	Cfg       Config

	newRunID func() string
}

// New constructs the reconcile service; optional sinks are set on the returned value
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	idx domain.PeriodIndex,
	raw, out domain.TableStore,
	stats domain.StatsStore,
	corr *reconcile.Corrector,
	cfg Config,
) *Service {
	if db == nil {
		panic("reconcile.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("reconcile.Service requires a non nil Repo binder")
	}
	if idx == nil || raw == nil || out == nil || stats == nil {
		panic("reconcile.Service requires index, raw, out and stats stores")
	}
	return &Service{
		DB: db, Binder: binder,
		Index: idx, Raw: raw, Out: out, Stats: stats,
		Corrector: corr,
		Cfg:       cfg,
		newRunID:  uuid.NewString,
	}
}

// periodResult is what one period hands back to the run loop
type periodResult struct {
	status domain.Status
	loaded int
	stats  reconcile.Stats
}

// Run reconciles every indexed period, one at a time. A failing period is
// logged and counted; only cancellation and stats load or save failures stop the run
func (s *Service) Run(ctx context.Context, opts domain.RunOptions) (domain.RunSummary, error) {
	runID := s.newRunID()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)
	start := time.Now()
	sum := domain.RunSummary{RunID: runID}

	keys, err := s.Index.Periods(ctx)
	if err != nil {
		return sum, reconcile.AbortRun(perr.Wrap(err, perr.CodeOf(err), "reconcile: list periods"))
	}
	if opts.Only != nil {
		keys = only(keys, *opts.Only)
		if len(keys) == 0 {
			return sum, reconcile.AbortRun(perr.NotFoundf("reconcile: period %s is not in the index", *opts.Only))
		}
	}

	stats, err := s.Stats.LoadStats(ctx)
	if err != nil {
		return sum, reconcile.AbortRun(perr.Wrap(err, perr.CodeOf(err), "reconcile: load stats"))
	}
	if stats == nil {
		stats = reconcile.Stats{}
	}
	log.Info().Int("periods", len(keys)).Int("stats_rows", len(stats)).Bool("force", opts.Force).Msg("reconcile: run started")

	var fresh []reconcile.StatKey
	var runErr error
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		sum.Periods++
		res, err := s.runPeriodWithRetry(ctx, runID, k, opts.Force)
		sum.Loaded += res.loaded
		if err != nil {
			if reconcile.SeverityOf(err) == reconcile.RunFatal {
				runErr = err
				break
			}
			sum.Failed++
			logger.C(logger.WithPeriod(ctx, k.String())).Error().
				Str("code", perr.CodeOf(err).String()).
				Err(err).
				Msg("reconcile: period failed")
			continue
		}
		switch res.status {
		case domain.StatusSkipped:
			sum.Skipped++
		case domain.StatusNoData:
			sum.NoData++
		case domain.StatusOK:
			sum.Produced++
			stats.Merge(res.stats)
			for _, kind := range reconcile.StatKinds {
				fresh = append(fresh, reconcile.StatKey{Period: k, Kind: kind})
			}
		}
	}

	if err := s.flushStats(ctx, runID, stats, fresh); err != nil && runErr == nil {
		runErr = err
	}

	sum.Elapsed = time.Since(start)
	evt := log.Info()
	if runErr != nil {
		evt = log.Error().Err(runErr)
	}
	evt.Int("periods", sum.Periods).
		Int("loaded", sum.Loaded).
		Int("produced", sum.Produced).
		Int("skipped", sum.Skipped).
		Int("nodata", sum.NoData).
		Int("failed", sum.Failed).
		Dur("elapsed", sum.Elapsed).
		Msg("reconcile: run finished")
	return sum, runErr
}

// flushStats persists this run's stats rows once. It runs detached from ctx so
// periods produced before a cancellation still get their rows
func (s *Service) flushStats(ctx context.Context, runID string, stats reconcile.Stats, fresh []reconcile.StatKey) error {
	if len(fresh) == 0 {
		return nil
	}
	log := logger.C(ctx)
	dctx, cancel := guardrails.ForDB(context.WithoutCancel(ctx), s.Cfg.Timeouts)
	defer cancel()

	if err := s.Stats.SaveStats(dctx, stats, fresh); err != nil {
		return reconcile.AbortRun(perr.Wrap(err, perr.CodeOf(err), "reconcile: save stats"))
	}
	log.Info().Int("rows", len(fresh)).Msg("reconcile: stats saved")

	if s.StatsMirror != nil {
		if err := s.StatsMirror.SaveStats(dctx, stats, stats.Keys()); err != nil {
			log.Error().Err(err).Msg("reconcile: stats mirror failed")
		}
	}
	if s.Export != nil {
		if err := s.Export.Export(dctx, runID, stats, fresh); err != nil {
			log.Error().Err(err).Msg("reconcile: stats export failed")
		}
	}
	return nil
}

func (s *Service) runPeriodWithRetry(ctx context.Context, runID string, k period.Key, force bool) (periodResult, error) {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var res periodResult
	var last error
	for i := range attempts {
		r, err := s.runPeriod(ctx, runID, k, force)
		res = r
		if err == nil {
			return res, nil
		}
		last = err

		// only transient store errors are worth another pass
		if !perr.Retryable(err) {
			return res, last
		}
		if i == attempts-1 {
			break
		}

		// Exponential backoff with jitter, cap at 30s
		d := min(base<<i, 30*time.Second)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
		logger.C(ctx).Warn().Str("period", k.String()).Int("attempt", i+1).Dur("backoff", j).Err(err).
			Msg("reconcile: retrying period")
		if se := sleepCtx(ctx, j); se != nil {
			return res, se
		}
	}
	return res, last
}

// periodOnly turns a spent period or db budget into a period failure.
// Only the run context running out stops the run
func periodOnly(runCtx context.Context, err error) error {
	if err != nil && runCtx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return perr.Internalf("period budget exceeded: %v", err)
	}
	return err
}

func (s *Service) runPeriod(ctx context.Context, runID string, k period.Key, force bool) (res periodResult, retErr error) {
	tos := s.Cfg.Timeouts
	pctx, cancel := guardrails.WithPeriod(logger.WithPeriod(ctx, k.String()), tos)
	defer cancel()
	log := logger.C(pctx)
	name := k.Name()

	if !force {
		dbCtx, dbCancel := guardrails.ForDB(pctx, tos)
		exists, err := s.Out.Exists(dbCtx, name)
		dbCancel()
		if err != nil {
			return res, periodOnly(ctx, err)
		}
		if exists {
			log.Debug().Str("name", name).Msg("reconcile: output exists, skipping")
			res.status = domain.StatusSkipped
			s.ledger(pctx, tos, func(c context.Context, r domain.StorageRepo) error {
				if err := r.StartPeriod(c, runID, k); err != nil {
					return err
				}
				return r.FinishPeriod(c, runID, k, domain.PeriodFinish{Status: domain.StatusSkipped})
			})
			return res, nil
		}
	}

	startWall := time.Now()
	fin := domain.PeriodFinish{Status: domain.StatusOK}
	var rc *domain.ReconciliationContext

	s.ledger(pctx, tos, func(c context.Context, r domain.StorageRepo) error {
		return r.StartPeriod(c, runID, k)
	})

	// Ensure Finish even on error
	defer func() {
		retErr = periodOnly(ctx, retErr)
		if rc != nil {
			describe(&fin, rc)
		}
		fin.ElapsedMS = int(time.Since(startWall).Milliseconds())
		if retErr != nil {
			fin.Status = domain.StatusError
			fin.ErrText = retErr.Error()
		}
		s.ledger(context.WithoutCancel(pctx), tos, func(c context.Context, r domain.StorageRepo) error {
			return r.FinishPeriod(c, runID, k, fin)
		})
	}()

	var err error
	rc, err = domain.NewContext(runID, k)
	if err != nil {
		return res, err
	}

	// Load (timeoutable)
	t0 := time.Now()
	err = s.load(pctx, rc)
	fin.LoadMS = int(time.Since(t0).Milliseconds())
	res.loaded = rc.Loaded()
	if err != nil {
		return res, err
	}

	// Reconcile
	t1 := time.Now()
	err = s.reconcile(rc)
	fin.ReconcileMS = int(time.Since(t1).Milliseconds())
	logStages(log, rc)
	if perr.IsCode(err, perr.ErrorCodeNoData) {
		log.Warn().Str("code", perr.ErrorCodeNoData.String()).Err(err).Msg("reconcile: nothing to reconcile")
		fin.Status = domain.StatusNoData
		res.status = domain.StatusNoData
		return res, nil
	}
	if err != nil {
		return res, err
	}

	// Save
	t2 := time.Now()
	dbCtx, dbCancel := guardrails.ForDB(pctx, tos)
	rc.Location, err = s.Out.Save(dbCtx, name, rc.Output)
	dbCancel()
	fin.SaveMS = int(time.Since(t2).Milliseconds())
	if err != nil {
		return res, err
	}
	if s.Mirror != nil {
		if _, merr := s.Mirror.Save(pctx, name, rc.Output); merr != nil {
			log.Error().Err(merr).Msg("reconcile: text mirror failed")
		}
	}

	log.Info().
		Str("location", rc.Location).
		Str("origin", string(rc.Decision.Origin)).
		Int("rows", rc.Output.Len()).
		Int("warnings", len(rc.Warnings)).
		Msg("reconcile: period saved")

	res.status = domain.StatusOK
	res.stats = reconcile.Summarize(k, rc.Output)
	return res, nil
}

// load classifies the period's sources and reads them from the raw store
func (s *Service) load(ctx context.Context, rc *domain.ReconciliationContext) error {
	lctx, cancel := guardrails.ForLoad(ctx, s.Cfg.Timeouts)
	defer cancel()

	ids, err := s.Index.Sources(lctx, rc.Key)
	if err != nil {
		return err
	}
	if rc.Sources, err = period.Split(ids); err != nil {
		return err
	}
	if f := rc.Sources.Full; f != nil {
		if rc.Full, err = s.Raw.Load(lctx, f.ID); err != nil {
			return err
		}
	}
	if len(rc.Sources.Chunks) == 0 {
		return nil
	}
	cids := make([]string, len(rc.Sources.Chunks))
	for i, c := range rc.Sources.Chunks {
		cids[i] = c.ID
	}
	rc.Chunks, err = s.Raw.LoadMany(lctx, cids)
	return err
}

// reconcile runs the in memory stages in order and leaves the final table on rc.Output
func (s *Service) reconcile(rc *domain.ReconciliationContext) error {
	var combined *table.Table
	if asm, ok := reconcile.Assemble(rc.Chunks); ok {
		rc.Assembly = asm
		combined = asm.Table
	}

	d, err := reconcile.ReconcileSources(rc.Full, combined, s.Cfg.Tolerance)
	if err != nil {
		return err
	}
	rc.Decision = d
	for _, w := range d.Warnings {
		rc.Warn(w)
	}

	out := d.Table
	rc.Filter = reconcile.Filter(out, s.Cfg.Cutoff)
	out, rc.Correction = s.Corrector.Apply(rc.Key, out)

	out, rc.Normalize, err = reconcile.Normalize(out, rc.Target, s.Cfg.Limits)
	if err != nil {
		return err
	}
	rc.Warn(rc.Normalize.Warning)
	rc.Output = out
	return nil
}

// ledger runs fn against the bound repo in its own DB bounded transaction.
// Ledger writes are best effort and never fail a period
func (s *Service) ledger(ctx context.Context, tos guardrails.Timeouts, fn func(context.Context, domain.StorageRepo) error) {
	dbCtx, cancel := guardrails.ForDB(ctx, tos)
	defer cancel()
	err := repokit.InTx(dbCtx, s.DB, s.Binder, func(r domain.StorageRepo) error {
		return fn(dbCtx, r)
	})
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("reconcile: ledger write failed")
	}
}

func only(keys []period.Key, k period.Key) []period.Key {
	for _, x := range keys {
		if x == k {
			return []period.Key{x}
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
