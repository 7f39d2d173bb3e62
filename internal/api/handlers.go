package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"FinSim/internal/logger"
	"FinSim/internal/model"
	"FinSim/internal/report"
	"FinSim/internal/scheduler"
	"FinSim/internal/simulation"
	"FinSim/internal/store"
)

type lastSimulation struct {
	Date              string          `json:"date"`
	MarketPerformance float64         `json:"marketPerformance"`
	TotalBalance      decimal.Decimal `json:"totalBalance"`
}

type health struct {
	Database  string `json:"database"`
	Scheduler string `json:"scheduler"`
}

type statusResponse struct {
	Scheduler      scheduler.Status `json:"scheduler"`
	LastSimulation *lastSimulation  `json:"lastSimulation"`
	Health         health           `json:"health"`
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		fail(c, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	ok(c, "", gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (s *Server) status(c *gin.Context) {
	ctx := c.Request.Context()
	st := s.ctrl.Status()
	resp := statusResponse{Scheduler: st, Health: health{Database: "ok", Scheduler: "stopped"}}
	if st.IsInitialized {
		resp.Health.Scheduler = "running"
	}
	if err := s.store.Ping(ctx); err != nil {
		resp.Health.Database = "error"
	}

	latest, err := s.store.LatestDaily(ctx)
	switch {
	case err == nil:
		resp.LastSimulation = &lastSimulation{
			Date:              latest.Date.Format(model.DateLayout),
			MarketPerformance: latest.MarketPerformance,
			TotalBalance:      latest.TotalBalance,
		}
	case !errors.Is(err, store.ErrNotFound):
		logger.Warn("load latest simulation", zap.Error(err))
	}
	ok(c, "", resp)
}

type startRequest struct {
	Date string `json:"date"`
}

func (s *Server) startManual(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}
	date := s.now()
	if req.Date != "" {
		d, err := model.ParseDay(req.Date)
		if err != nil {
			fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
			return
		}
		date = d
	}

	if !s.ctrl.Status().IsInitialized {
		if err := s.ctrl.Start(context.Background()); err != nil {
			fail(c, http.StatusInternalServerError, "failed to initialize scheduler", err)
			return
		}
	}

	res, err := s.ctrl.RunManual(c.Request.Context(), date)
	switch {
	case errors.Is(err, simulation.ErrAlreadyRunning), errors.Is(err, simulation.ErrLockHeld):
		fail(c, http.StatusConflict, "a simulation is already running", err)
	case errors.Is(err, store.ErrDuplicateDate):
		fail(c, http.StatusConflict, "date already simulated", err)
	case err != nil:
		fail(c, http.StatusInternalServerError, "manual simulation failed", err)
	default:
		ok(c, "manual simulation completed", res)
	}
}

func (s *Server) initialize(c *gin.Context) {
	if err := s.ctrl.Start(context.Background()); err != nil {
		fail(c, http.StatusInternalServerError, "failed to initialize scheduler", err)
		return
	}
	ok(c, "scheduler initialized", s.ctrl.Status())
}

func (s *Server) restart(c *gin.Context) {
	if err := s.ctrl.Restart(context.Background()); err != nil {
		fail(c, http.StatusInternalServerError, "failed to restart scheduler", err)
		return
	}
	ok(c, "scheduler restarted", s.ctrl.Status())
}

func (s *Server) stop(c *gin.Context) {
	s.ctrl.Stop()
	ok(c, "scheduler stopped", s.ctrl.Status())
}

// dateQuery parses an optional YYYY-MM-DD query parameter.
func dateQuery(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	d, err := model.ParseDay(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Server) stats(c *gin.Context) {
	start, err := dateQuery(c, "startDate")
	if err != nil {
		fail(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD", err)
		return
	}
	end, err := dateQuery(c, "endDate")
	if err != nil {
		fail(c, http.StatusBadRequest, "endDate must be YYYY-MM-DD", err)
		return
	}
	rows, err := s.store.ListDaily(c.Request.Context(), store.DailyFilter{
		Start: start,
		End:   end,
		Limit: queryInt(c, "limit", 30),
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load simulation stats", err)
		return
	}
	ok(c, "", rows)
}

func (s *Server) assets(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		fail(c, http.StatusBadRequest, "symbol is required", nil)
		return
	}
	start := model.Day(s.now()).AddDate(0, 0, -queryInt(c, "days", 30))
	rows, err := s.store.ListMarket(c.Request.Context(), store.MarketFilter{Symbol: symbol, Start: &start})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load asset performance", err)
		return
	}
	ok(c, "", report.BuildAssetPerformance(symbol, rows))
}

func (s *Server) transactions(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		fail(c, http.StatusBadRequest, "userId is required", nil)
		return
	}
	start, err := dateQuery(c, "startDate")
	if err != nil {
		fail(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD", err)
		return
	}
	end, err := dateQuery(c, "endDate")
	if err != nil {
		fail(c, http.StatusBadRequest, "endDate must be YYYY-MM-DD", err)
		return
	}
	rows, err := s.store.ListTransactions(c.Request.Context(), store.TransactionFilter{
		UserID: userID,
		Type:   model.TransactionType(c.Query("type")),
		Start:  start,
		End:    end,
		Limit:  queryInt(c, "limit", 100),
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load transactions", err)
		return
	}
	ok(c, "", rows)
}

func (s *Server) events(c *gin.Context) {
	active := true
	if v := c.Query("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fail(c, http.StatusBadRequest, "active must be true or false", err)
			return
		}
		active = b
	}
	rows, err := s.store.ListEvents(c.Request.Context(), store.EventFilter{
		ActiveOnly: active,
		Limit:      queryInt(c, "limit", 50),
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load events", err)
		return
	}
	ok(c, "", rows)
}

type historicalRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (s *Server) historical(c *gin.Context) {
	var req historicalRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StartDate == "" || req.EndDate == "" {
		fail(c, http.StatusBadRequest, "startDate and endDate are required", err)
		return
	}
	start, err := model.ParseDay(req.StartDate)
	if err != nil {
		fail(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD", err)
		return
	}
	end, err := model.ParseDay(req.EndDate)
	if err != nil {
		fail(c, http.StatusBadRequest, "endDate must be YYYY-MM-DD", err)
		return
	}

	res, err := s.ctrl.RunHistorical(c.Request.Context(), start, end)
	switch {
	case errors.Is(err, scheduler.ErrInvalidRange):
		fail(c, http.StatusBadRequest, "startDate must not be after endDate", err)
	case err != nil:
		fail(c, http.StatusInternalServerError, "historical simulation failed", err)
	default:
		ok(c, "historical simulation completed", res)
	}
}

func (s *Server) monthlyReport(c *gin.Context) {
	now := s.now()
	year, month := now.Year(), now.Month()
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			fail(c, http.StatusBadRequest, "year must be a positive integer", err)
			return
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			fail(c, http.StatusBadRequest, "month must be between 1 and 12", err)
			return
		}
		month = time.Month(m)
	}

	r, err := s.ctrl.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to build monthly report", err)
		return
	}
	ok(c, "", r)
}

func (s *Server) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	end := model.Day(s.now())
	start := end.AddDate(0, 0, -queryInt(c, "days", 7))

	rows, err := s.store.ListDaily(ctx, store.DailyFilter{Start: &start, End: &end})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load dashboard", err)
		return
	}
	active, err := s.store.ListEvents(ctx, store.EventFilter{ActiveOnly: true})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load dashboard", err)
		return
	}
	ok(c, "", report.BuildDashboard(start, end, rows, len(active)))
}
