package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"FinSim/internal/model"
	"FinSim/internal/report"
)

// FormatDailyReport formats a daily summary for the chat.
func FormatDailyReport(s *model.DailySimulation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Daily simulation</b> | %s\n\n", s.Date.Format(model.DateLayout))
	fmt.Fprintf(&b, "Market: %+.2f%% (volatility %.2f)\n", s.MarketPerformance, s.MarketVolatility)
	fmt.Fprintf(&b, "Best: %s | Worst: %s\n", html.EscapeString(s.BestPerformingAsset), html.EscapeString(s.WorstPerformingAsset))
	fmt.Fprintf(&b, "Total balance: €%s (%+.2f%%)\n", s.TotalBalance.StringFixed(2), s.TotalBalanceChangePercent)
	fmt.Fprintf(&b, "Income €%s | Expenses €%s\n", s.TotalIncome.StringFixed(2), s.TotalExpenses.StringFixed(2))
	fmt.Fprintf(&b, "Transactions: %d | Events: %d\n", s.TotalTransactions, s.TotalEvents)
	if len(s.Alerts) > 0 {
		b.WriteString("\n⚠️ <b>Alerts</b>\n")
		for _, a := range s.Alerts {
			fmt.Fprintf(&b, "• [%s] %s\n", a.Severity, html.EscapeString(a.Message))
		}
	}
	return b.String()
}

// FormatMonthlyReport formats a monthly report.
func FormatMonthlyReport(r *report.Monthly) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 <b>Monthly report</b> | %s\n\n", r.Period)
	if r.DaysSimulated == 0 {
		b.WriteString("No simulated days in this period.")
		return b.String()
	}
	fmt.Fprintf(&b, "Days simulated: %d\n", r.DaysSimulated)
	fmt.Fprintf(&b, "Average market: %+.2f%%\n", r.AverageMarketPerformance)
	fmt.Fprintf(&b, "Transactions: %d | Events: %d\n", r.TotalTransactions, r.TotalEvents)
	if r.BestDay != nil && r.WorstDay != nil {
		fmt.Fprintf(&b, "Best day: %s (%+.2f%%)\n", r.BestDay.Date.Format(model.DateLayout), r.BestDay.MarketPerformance)
		fmt.Fprintf(&b, "Worst day: %s (%+.2f%%)\n", r.WorstDay.Date.Format(model.DateLayout), r.WorstDay.MarketPerformance)
	}
	return b.String()
}

// FormatFailure formats a job failure.
func FormatFailure(job string, err error) string {
	return fmt.Sprintf("❌ <b>%s failed</b>\n\n%s\n%s",
		html.EscapeString(job), html.EscapeString(err.Error()), time.Now().Format("2006-01-02 15:04:05"))
}

// JobLine is one job's row in a status message.
type JobLine struct {
	Name    string
	State   string
	NextRun time.Time
}

// FormatStatus formats the scheduler state and the latest simulated day.
func FormatStatus(initialized bool, jobs []JobLine, latest *model.DailySimulation) string {
	var b strings.Builder
	state := "stopped"
	if initialized {
		state = "running"
	}
	fmt.Fprintf(&b, "⚙️ <b>Scheduler</b>: %s\n\n", state)
	for _, j := range jobs {
		next := "-"
		if !j.NextRun.IsZero() {
			next = j.NextRun.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "• %s: %s (next %s)\n", j.Name, j.State, next)
	}
	if latest != nil {
		fmt.Fprintf(&b, "\nLast day: %s | market %+.2f%% | balance €%s\n",
			latest.Date.Format(model.DateLayout), latest.MarketPerformance, latest.TotalBalance.StringFixed(2))
	}
	return b.String()
}
