package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"qsmerge/internal/platform/config"
	"qsmerge/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server owns the chi root mux and the listener for the status API
type Server struct {
	mux   *chi.Mux
	srv   *stdhttp.Server
	grace time.Duration
}

// NewServer reads PORT (":4000"), READ_HEADER_TIMEOUT (10s) and SHUTDOWN_GRACE (10s) from cfg,
// which main hands over as the CORE_API_ view
func NewServer(cfg config.Conf) *Server {
	mux := chi.NewRouter()
	return &Server{
		mux:   mux,
		grace: cfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second),
		srv: &stdhttp.Server{
			Addr:              cfg.MayString("PORT", ":4000"),
			Handler:           mux,
			ReadHeaderTimeout: cfg.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		},
	}
}

// Router is the facade modules mount on
func (s *Server) Router() Router { return AdaptChi(s.mux) }

func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until the listener fails or ctx ends. On ctx end in flight requests
// get the shutdown grace to finish
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()
	log.Info().Str("addr", s.srv.Addr).Msg("http listening")

	select {
	case err := <-errc:
		return ignoreClosed(err)
	case <-ctx.Done():
	}

	log.Info().Dur("grace", s.grace).Msg("http shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.grace)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	return ignoreClosed(<-errc)
}

func ignoreClosed(err error) error {
	if errors.Is(err, stdhttp.ErrServerClosed) {
		return nil
	}
	return err
}
