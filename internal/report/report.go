// Package report aggregates stored simulation rows into monthly reports,
// dashboards and per-asset performance views.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"FinSim/internal/model"
)

// DayPoint is one day's line in a report.
type DayPoint struct {
	Date              time.Time       `json:"date"`
	MarketPerformance float64         `json:"marketPerformance"`
	TotalBalance      decimal.Decimal `json:"totalBalance"`
	TotalTransactions int             `json:"totalTransactions"`
}

// Monthly aggregates the daily summaries of one calendar month.
type Monthly struct {
	Period                   string          `json:"period"`
	Start                    time.Time       `json:"start"`
	End                      time.Time       `json:"end"`
	TotalBalance             decimal.Decimal `json:"totalBalance"`
	AverageMarketPerformance float64         `json:"averageMarketPerformance"`
	TotalTransactions        int             `json:"totalTransactions"`
	TotalEvents              int             `json:"totalEvents"`
	DaysSimulated            int             `json:"daysSimulated"`
	BestDay                  *DayPoint       `json:"bestDay"`
	WorstDay                 *DayPoint       `json:"worstDay"`
	Days                     []DayPoint      `json:"days"`
}

// MonthBounds returns the first and last day of the month.
func MonthBounds(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

// BuildMonthly aggregates rows belonging to year/month. TotalBalance is the
// sum of the daily totals over the month.
func BuildMonthly(year int, month time.Month, rows []model.DailySimulation) *Monthly {
	start, end := MonthBounds(year, month)
	r := &Monthly{
		Period:       start.Format(model.DateLayout) + " - " + end.Format(model.DateLayout),
		Start:        start,
		End:          end,
		TotalBalance: decimal.Zero,
		Days:         points(rows),
	}
	r.DaysSimulated = len(r.Days)
	if r.DaysSimulated == 0 {
		return r
	}

	perf := 0.0
	for _, d := range rows {
		r.TotalBalance = r.TotalBalance.Add(d.TotalBalance)
		r.TotalTransactions += d.TotalTransactions
		r.TotalEvents += d.TotalEvents
		perf += d.MarketPerformance
	}
	r.AverageMarketPerformance = perf / float64(len(rows))

	best, worst := r.Days[0], r.Days[0]
	for _, p := range r.Days[1:] {
		if p.MarketPerformance > best.MarketPerformance {
			best = p
		}
		if p.MarketPerformance < worst.MarketPerformance {
			worst = p
		}
	}
	r.BestDay, r.WorstDay = &best, &worst
	return r
}

// Dashboard summarizes the most recent days.
type Dashboard struct {
	Period                   string          `json:"period"`
	CurrentBalance           decimal.Decimal `json:"currentBalance"`
	AverageMarketPerformance float64         `json:"averageMarketPerformance"`
	TotalTransactions        int             `json:"totalTransactions"`
	TotalEvents              int             `json:"totalEvents"`
	DaysSimulated            int             `json:"daysSimulated"`
	ActiveEvents             int             `json:"activeEvents"`
	RecentPerformance        []DayPoint      `json:"recentPerformance"`
	Alerts                   []model.Alert   `json:"alerts"`
}

// BuildDashboard summarizes rows between start and end. Balance and alerts
// come from the latest day.
func BuildDashboard(start, end time.Time, rows []model.DailySimulation, activeEvents int) *Dashboard {
	d := &Dashboard{
		Period:            start.Format(model.DateLayout) + " - " + end.Format(model.DateLayout),
		CurrentBalance:    decimal.Zero,
		ActiveEvents:      activeEvents,
		RecentPerformance: points(rows),
		Alerts:            []model.Alert{},
		DaysSimulated:     len(rows),
	}
	if len(rows) == 0 {
		return d
	}

	latest := rows[0]
	perf := 0.0
	for _, r := range rows {
		if r.Date.After(latest.Date) {
			latest = r
		}
		perf += r.MarketPerformance
		d.TotalTransactions += r.TotalTransactions
		d.TotalEvents += r.TotalEvents
	}
	d.AverageMarketPerformance = perf / float64(len(rows))
	d.CurrentBalance = latest.TotalBalance
	if len(latest.Alerts) > 0 {
		d.Alerts = latest.Alerts
	}
	return d
}

// points converts rows to day points, oldest first.
func points(rows []model.DailySimulation) []DayPoint {
	out := make([]DayPoint, len(rows))
	for i, r := range rows {
		out[i] = DayPoint{
			Date:              r.Date,
			MarketPerformance: r.MarketPerformance,
			TotalBalance:      r.TotalBalance,
			TotalTransactions: r.TotalTransactions,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
