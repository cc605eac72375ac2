// Package http serves liveness, readiness and build info for the status API
package http

import (
	"context"
	"net/http"
	"time"

	"qsmerge/internal/core/version"
	"qsmerge/internal/modkit/httpkit"
	"qsmerge/internal/platform/store"
)

// Dependency is one backend the ready endpoint pings. A nil Pinger is reported as skipped
type Dependency struct {
	Name     string
	Required bool
	Pinger   store.Pinger
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName  string
	StartedAt    time.Time
	ReadyTimeout time.Duration // 2s when zero
	Dependencies []Dependency
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	m := meta{d}
	httpkit.Get(r, "/health", m.health)
	httpkit.Get(r, "/ready", m.ready)
	httpkit.Get(r, "/version", m.version)
	httpkit.Get(r, "/service", m.service)
}

type meta struct{ Deps }

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"qsmerge-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Now     string `json:"now"     example:"2025-09-03T13:05:00Z"`
}

// ReadyCheck is the outcome of pinging one dependency: ok, fail or skipped
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse is ok when every required dependency answers, degraded when only
// optional ones fail or a required one is not configured, and fail otherwise
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse is the process name and uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name"    example:"qsmerge-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (m meta) health(_ *http.Request) (any, error) {
	return HealthResponse{OK: true, Service: m.ServiceName, Started: stamp(m.StartedAt), Now: stamp(time.Now())}, nil
}

// @Summary Readiness check over dependencies
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (m meta) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), m.ReadyTimeout)
	defer cancel()

	resp := ReadyResponse{Status: "ok", Checks: make([]ReadyCheck, 0, len(m.Dependencies))}
	for _, d := range m.Dependencies {
		c := ReadyCheck{Name: d.Name, Status: "ok"}
		if d.Pinger == nil {
			c.Status = "skipped"
		} else if err := d.Pinger.Ping(ctx); err != nil {
			c.Status, c.Error = "fail", err.Error()
		}
		resp.Checks = append(resp.Checks, c)

		switch {
		case c.Status == "fail" && d.Required:
			resp.Status = "fail"
		case c.Status != "ok" && resp.Status == "ok" && (d.Required || c.Status == "fail"):
			resp.Status = "degraded"
		}
	}
	resp.Now = stamp(time.Now())
	return resp, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (m meta) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (m meta) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:    m.ServiceName,
		Started: stamp(m.StartedAt),
		Uptime:  int64(time.Since(m.StartedAt).Seconds()),
	}, nil
}
