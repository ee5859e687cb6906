// Package api serves the completion engine and read models over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/julianstephens/famquest/internal/completion"
	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/dashboard"
	"github.com/julianstephens/famquest/internal/logger"
	"github.com/julianstephens/famquest/internal/metrics"
	"github.com/julianstephens/famquest/internal/streaks"
)

type Config struct {
	Addr string
	// AdminSecret guards the admin routes. Empty disables them.
	AdminSecret     string
	ShutdownTimeout time.Duration
}

type Server struct {
	cfg          Config
	completions  *completion.Service
	dashboard    *dashboard.Service
	recalculator *streaks.Recalculator
	router       *mux.Router
}

func NewServer(cfg Config, completions *completion.Service, dash *dashboard.Service, recalc *streaks.Recalculator) *Server {
	if cfg.Addr == "" {
		cfg.Addr = constants.DefaultListenAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = constants.DefaultShutdownTimeoutS * time.Second
	}
	s := &Server{
		cfg:          cfg,
		completions:  completions,
		dashboard:    dash,
		recalculator: recalc,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/families/{familyID}/habits/{habitID}/complete", s.handleComplete).Methods(http.MethodPost)
	api.HandleFunc("/families/{familyID}/today", s.handleToday).Methods(http.MethodGet)
	api.HandleFunc("/families/{familyID}/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberID}/stats", s.handleMemberStats).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("/recalculate-streaks", s.handleRecalculateStreaks).Methods(http.MethodPost)

	return r
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.cfg.Addr, "admin", s.cfg.AdminSecret != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	logger.Info("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}
