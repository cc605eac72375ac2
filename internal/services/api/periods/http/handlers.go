// Package http provides http transport for the period ledger
package http

import (
	stdhttp "net/http"

	"qsmerge/internal/modkit/httpkit"
	"qsmerge/internal/services/api/periods/domain"
	svc "qsmerge/internal/services/api/periods/service"
)

// Register mounts period endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// ledger rows, newest first
	httpkit.GetQuery[domain.ListInput](r, "/", h.list)

	// summary stats of one period
	httpkit.GetQuery[domain.StatsInput](r, "/stats", h.stats)
}

type handlers struct{ svc svc.Service }

// list godoc
// @Summary Period ledger
// @Tags Periods
// @Produce json
// @Param run_id query string false "run id"
// @Param status query string false "running ok skipped nodata error"
// @Param limit query int false "max rows, default 100"
// @Success 200 {array} domain.PeriodRow "ok"
// @Failure 400 {object} httpkit.Envelope "bad filter"
// @Router /periods [get]
func (h *handlers) list(r *stdhttp.Request, in domain.ListInput) (any, error) {
	rows, err := h.svc.List(r.Context(), in)
	if err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit <= 0 {
		limit = 100
	}
	return httpkit.List(rows, len(rows), limit), nil
}

// stats godoc
// @Summary Summary stats of one period
// @Tags Periods
// @Produce json
// @Param key query string true "period key, e.g. 1A/rising-62L/t00-t20"
// @Success 200 {array} domain.StatsRow "ok"
// @Failure 400 {object} httpkit.Envelope "missing key"
// @Failure 404 {object} httpkit.Envelope "no stats for the period"
// @Failure 422 {object} httpkit.Envelope "malformed key"
// @Router /periods/stats [get]
func (h *handlers) stats(r *stdhttp.Request, in domain.StatsInput) (any, error) {
	return h.svc.Stats(r.Context(), in)
}
