// Package api exposes the simulation over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"FinSim/internal/logger"
	"FinSim/internal/report"
	"FinSim/internal/scheduler"
	"FinSim/internal/simulation"
	"FinSim/internal/store"
)

// Controller is the scheduler surface the handlers drive.
type Controller interface {
	Start(ctx context.Context) error
	Stop() context.Context
	Restart(ctx context.Context) error
	Status() scheduler.Status
	RunManual(ctx context.Context, date time.Time) (*simulation.RunResult, error)
	RunHistorical(ctx context.Context, start, end time.Time) (*scheduler.HistoricalResult, error)
	MonthlyReport(ctx context.Context, year int, month time.Month) (*report.Monthly, error)
}

// Config tunes the HTTP server.
type Config struct {
	Addr           string
	Mode           string
	RateLimit      float64
	RateBurst      int
	JWTSecret      string
	LogAllRequests bool
	Location       *time.Location
}

// Server is the HTTP front of the simulation.
type Server struct {
	cfg    Config
	ctrl   Controller
	store  store.Store
	now    func() time.Time
	engine http.Handler
	server *http.Server
}

// NewServer builds the router. Call Run to listen.
func NewServer(cfg Config, ctrl Controller, st store.Store) *Server {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	s := &Server{cfg: cfg, ctrl: ctrl, store: st}
	s.now = func() time.Time { return time.Now().In(s.cfg.Location) }

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(cfg.LogAllRequests))
	s.routes(r)
	s.engine = r
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	g := r.Group("/api/simulation")
	if s.cfg.RateLimit > 0 {
		g.Use(RateLimit(s.cfg.RateLimit, s.cfg.RateBurst))
	}
	if s.cfg.JWTSecret != "" {
		g.Use(JWTAuth(s.cfg.JWTSecret))
	}

	g.GET("/status", s.status)
	g.POST("/start", s.startManual)
	g.POST("/initialize", s.initialize)
	g.POST("/restart", s.restart)
	g.POST("/stop", s.stop)
	g.GET("/stats", s.stats)
	g.GET("/assets", s.assets)
	g.GET("/transactions", s.transactions)
	g.GET("/events", s.events)
	g.POST("/historical", s.historical)
	g.GET("/report/monthly", s.monthlyReport)
	g.GET("/dashboard", s.dashboard)
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("http server stopped")
	return nil
}
