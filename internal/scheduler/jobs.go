package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"FinSim/internal/logger"
	"FinSim/internal/model"
	"FinSim/internal/notifier"
	"FinSim/internal/report"
	"FinSim/internal/simulation"
	"FinSim/internal/store"
)

// ErrInvalidRange is returned when a replay ends before it starts.
var ErrInvalidRange = errors.New("start date is after end date")

func (s *Scheduler) dailyJob(ctx context.Context) error {
	now := s.now()
	res, err := s.RunManual(ctx, now)
	if errors.Is(err, simulation.ErrAlreadyRunning) || errors.Is(err, simulation.ErrLockHeld) {
		logger.Warn("daily job skipped", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if n, err := s.store.ExpireEvents(ctx, now); err != nil {
		logger.Warn("expire events", zap.Error(err))
	} else if n > 0 {
		logger.Info("events expired", zap.Int64("count", n))
	}
	s.trySend(ctx, notifier.FormatDailyReport(&res.DailySummary))
	return nil
}

func (s *Scheduler) hourlyJob(ctx context.Context) error {
	_, err := s.engine.RunMarket(ctx, s.now())
	return err
}

func (s *Scheduler) weeklyJob(ctx context.Context) error {
	end := s.now()
	start := end.AddDate(0, 0, -s.cfg.BackfillDays)
	res, err := s.RunHistorical(ctx, start, end)
	if err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d days failed", len(res.Failed), res.Days)
	}
	return nil
}

func (s *Scheduler) monthlyJob(ctx context.Context) error {
	now := s.now()
	prev := now.AddDate(0, 0, -now.Day())
	r, err := s.MonthlyReport(ctx, prev.Year(), prev.Month())
	if err != nil {
		return err
	}
	if r.DaysSimulated == 0 {
		logger.Warn("no daily simulations for monthly report", zap.String("period", r.Period))
		return nil
	}
	logger.Info("monthly report",
		zap.String("period", r.Period),
		zap.Int("days", r.DaysSimulated),
		zap.Float64("averageMarketPerformance", r.AverageMarketPerformance),
		zap.Int("transactions", r.TotalTransactions),
		zap.Int("events", r.TotalEvents),
	)
	s.trySend(ctx, notifier.FormatMonthlyReport(r))
	return nil
}

func (s *Scheduler) cleanupJob(ctx context.Context) error {
	_, err := s.Cleanup(ctx, s.now())
	return err
}

// RunManual runs the full simulation for date outside the cadence.
func (s *Scheduler) RunManual(ctx context.Context, date time.Time) (*simulation.RunResult, error) {
	return s.engine.RunDaily(ctx, date)
}

// DayFailure is a replayed day that could not be simulated.
type DayFailure struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// HistoricalResult summarizes a replay.
type HistoricalResult struct {
	Start   string                  `json:"startDate"`
	End     string                  `json:"endDate"`
	Days    int                     `json:"days"`
	Skipped []string                `json:"skipped"`
	Failed  []DayFailure            `json:"failed"`
	Results []*simulation.RunResult `json:"results"`
}

// RunHistorical simulates every day from start to end inclusive. Days that
// already have a summary are skipped; a failing day is logged and the replay
// moves on. Only cancellation of ctx stops it early.
func (s *Scheduler) RunHistorical(ctx context.Context, start, end time.Time) (*HistoricalResult, error) {
	first, last := model.Day(start), model.Day(end)
	if first.After(last) {
		return nil, ErrInvalidRange
	}
	out := &HistoricalResult{
		Start:   first.Format(model.DateLayout),
		End:     last.Format(model.DateLayout),
		Skipped: []string{},
		Failed:  []DayFailure{},
		Results: []*simulation.RunResult{},
	}
	logger.Info("historical replay", zap.String("start", out.Start), zap.String("end", out.End))

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Days++
		date := day.Format(model.DateLayout)

		exists, err := s.store.DailyExists(ctx, day)
		if err != nil {
			logger.Error("check existing simulation", zap.String("date", date), zap.Error(err))
			out.Failed = append(out.Failed, DayFailure{Date: date, Error: err.Error()})
			continue
		}
		if exists {
			logger.Info("simulation already exists, skipping", zap.String("date", date))
			out.Skipped = append(out.Skipped, date)
			continue
		}

		res, err := s.engine.RunDaily(ctx, day)
		if err != nil {
			logger.Error("historical simulation failed", zap.String("date", date), zap.Error(err))
			out.Failed = append(out.Failed, DayFailure{Date: date, Error: err.Error()})
			continue
		}
		out.Results = append(out.Results, res)
	}

	logger.Info("historical replay completed",
		zap.Int("simulated", len(out.Results)),
		zap.Int("skipped", len(out.Skipped)),
		zap.Int("failed", len(out.Failed)),
	)
	return out, nil
}

// MonthlyReport aggregates the stored daily summaries of year/month.
func (s *Scheduler) MonthlyReport(ctx context.Context, year int, month time.Month) (*report.Monthly, error) {
	start, end := report.MonthBounds(year, month)
	rows, err := s.store.ListDaily(ctx, store.DailyFilter{Start: &start, End: &end})
	if err != nil {
		return nil, fmt.Errorf("load daily simulations: %w", err)
	}
	return report.BuildMonthly(year, month, rows), nil
}

// CleanupResult reports a retention pass.
type CleanupResult struct {
	store.CleanupResult
	Cutoff  string `json:"cutoff"`
	Expired int64  `json:"expiredEvents"`
}

// Cleanup deletes rows older than the retention window, keeping active
// events, then deactivates events whose duration has elapsed.
func (s *Scheduler) Cleanup(ctx context.Context, now time.Time) (*CleanupResult, error) {
	cutoff := model.Day(now).AddDate(0, 0, -s.cfg.RetentionDays)
	deleted, err := s.store.Cleanup(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("delete old rows: %w", err)
	}
	expired, err := s.store.ExpireEvents(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("expire events: %w", err)
	}
	logger.Info("data cleanup completed",
		zap.String("cutoff", cutoff.Format(model.DateLayout)),
		zap.Int64("marketSimulations", deleted.Markets),
		zap.Int64("transactions", deleted.Transactions),
		zap.Int64("events", deleted.Events),
		zap.Int64("dailySimulations", deleted.Daily),
		zap.Int64("expiredEvents", expired),
	)
	return &CleanupResult{CleanupResult: deleted, Cutoff: cutoff.Format(model.DateLayout), Expired: expired}, nil
}

// HandleCommand answers a chat command.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	var name string
	if fields := strings.Fields(command); len(fields) > 0 {
		name = strings.ToLower(fields[0])
	}
	switch name {
	case "/status":
		return s.statusText(ctx)
	case "/run":
		res, err := s.RunManual(ctx, s.now())
		if err != nil {
			return notifier.FormatFailure("manual simulation", err)
		}
		return notifier.FormatDailyReport(&res.DailySummary)
	case "/report":
		now := s.now()
		r, err := s.MonthlyReport(ctx, now.Year(), now.Month())
		if err != nil {
			return notifier.FormatFailure("monthly report", err)
		}
		return notifier.FormatMonthlyReport(r)
	default:
		return "Available commands:\n/status - scheduler and last simulated day\n/run - simulate today\n/report - current month report"
	}
}

func (s *Scheduler) statusText(ctx context.Context) string {
	st := s.Status()
	var lines []notifier.JobLine
	for _, j := range s.jobTable() {
		js, ok := st.JobDetails[j.Name]
		if !ok {
			continue
		}
		line := notifier.JobLine{Name: j.Name, State: string(js.State)}
		if js.NextRun != nil {
			line.NextRun = *js.NextRun
		}
		lines = append(lines, line)
	}
	latest, err := s.store.LatestDaily(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Warn("load latest simulation", zap.Error(err))
	}
	return notifier.FormatStatus(st.IsInitialized, lines, latest)
}
