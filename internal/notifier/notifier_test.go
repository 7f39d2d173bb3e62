package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinSim/internal/model"
	"FinSim/internal/report"
)

type flakyNotifier struct {
	failures int
	calls    int
}

func (f *flakyNotifier) Send(context.Context, string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("telegram unavailable")
	}
	return nil
}

func fastRetries(t *testing.T) {
	t.Helper()
	prev := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = prev })
}

func TestSendWithRetry_RecoversAfterFailures(t *testing.T) {
	fastRetries(t)
	n := &flakyNotifier{failures: 2}
	require.NoError(t, SendWithRetry(context.Background(), n, "hello", 3))
	assert.Equal(t, 3, n.calls)
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	fastRetries(t)
	n := &flakyNotifier{failures: 10}
	err := SendWithRetry(context.Background(), n, "hello", 2)
	require.Error(t, err)
	assert.Equal(t, 3, n.calls)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
}

func TestSendWithRetry_StopsOnCancel(t *testing.T) {
	prev := retryBaseDelay
	retryBaseDelay = time.Hour
	t.Cleanup(func() { retryBaseDelay = prev })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := &flakyNotifier{failures: 10}
	err := SendWithRetry(ctx, n, "hello", 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n.calls)
}

func TestNewTelegramNotifier_BadChatID(t *testing.T) {
	_, err := NewTelegramNotifier("token", "not-a-number")
	assert.Error(t, err)
}

func TestFormatDailyReport(t *testing.T) {
	s := &model.DailySimulation{
		Date:                      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		MarketPerformance:         -1.234,
		MarketVolatility:          0.33,
		BestPerformingAsset:       "Bitcoin",
		WorstPerformingAsset:      "AT&T <Inc>",
		TotalBalance:              decimal.RequireFromString("364000.5"),
		TotalBalanceChangePercent: -0.27,
		TotalIncome:               decimal.NewFromInt(100),
		TotalExpenses:             decimal.NewFromInt(1100),
		TotalTransactions:         27,
		TotalEvents:               2,
		Alerts: []model.Alert{
			{Type: model.AlertAssetCrash, Severity: model.SeverityMedium, Message: "1 assets with a heavy loss (>20%)"},
		},
	}
	out := FormatDailyReport(s)
	assert.Contains(t, out, "2024-03-15")
	assert.Contains(t, out, "-1.23%")
	assert.Contains(t, out, "€364000.50")
	assert.Contains(t, out, "AT&amp;T &lt;Inc&gt;")
	assert.Contains(t, out, "(&gt;20%)")
	assert.Contains(t, out, "Transactions: 27 | Events: 2")
}

func TestFormatMonthlyReport(t *testing.T) {
	empty := report.BuildMonthly(2024, time.January, nil)
	assert.Contains(t, FormatMonthlyReport(empty), "No simulated days")

	r := report.BuildMonthly(2024, time.March, []model.DailySimulation{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), MarketPerformance: 2, TotalTransactions: 10},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), MarketPerformance: -3, TotalTransactions: 5},
	})
	out := FormatMonthlyReport(r)
	assert.Contains(t, out, "Days simulated: 2")
	assert.Contains(t, out, "Best day: 2024-03-01 (+2.00%)")
	assert.Contains(t, out, "Worst day: 2024-03-02 (-3.00%)")
}

func TestFormatStatus(t *testing.T) {
	next := time.Date(2024, 3, 16, 0, 1, 0, 0, time.UTC)
	out := FormatStatus(true, []JobLine{
		{Name: "dailySimulation", State: "scheduled", NextRun: next},
		{Name: "dataCleanup", State: "idle"},
	}, nil)
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "dailySimulation: scheduled (next 2024-03-16 00:01)")
	assert.Contains(t, out, "dataCleanup: idle (next -)")
	assert.NotContains(t, out, "Last day")

	out = FormatStatus(false, nil, &model.DailySimulation{
		Date:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		TotalBalance: decimal.NewFromInt(365000),
	})
	assert.Contains(t, out, "stopped")
	assert.Contains(t, out, "Last day: 2024-03-15")
}

func TestFormatFailure(t *testing.T) {
	out := FormatFailure("dailySimulation", errors.New("persist day: <locked>"))
	assert.Contains(t, out, "dailySimulation failed")
	assert.Contains(t, out, "&lt;locked&gt;")
}
