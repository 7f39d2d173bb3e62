package simulation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinSim/internal/catalog"
	"FinSim/internal/model"
)

func freshState() model.SimulationState {
	return model.SimulationState{Assets: catalog.Assets(), Users: catalog.Users()}
}

func TestSummarize_Baseline(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	s := Summarize(date, freshState(), nil, nil, nil)

	assert.True(t, s.TotalBalance.Equal(decimal.NewFromInt(365000)), "got %s", s.TotalBalance)
	assert.True(t, s.TotalBalanceChange.IsZero())
	assert.Equal(t, 0.0, s.TotalBalanceChangePercent)
	assert.Equal(t, 5, s.TotalUsers)
	assert.Equal(t, 5, s.TotalAccounts)
	assert.Equal(t, 18, s.TotalAssets)
	assert.Equal(t, 0.0, s.MarketPerformance)
	assert.Empty(t, s.BestPerformingAsset)
	assert.NotNil(t, s.Alerts)
	assert.Empty(t, s.Alerts)
	assert.Contains(t, s.Summary, "Simulation for 2024-03-15")
	assert.Contains(t, s.Summary, "0 transactions simulated for 5 users")
}

func TestSummarize_TotalsByType(t *testing.T) {
	st := freshState()
	st.Users[0].CurrentBalance = st.Users[0].CurrentBalance.Add(decimal.NewFromInt(1000))

	txs := []model.SimulatedTransaction{
		{UserID: "user-001", Type: model.TxIncome, Amount: decimal.NewFromInt(3000), BalanceAfter: decimal.NewFromInt(53000)},
		{UserID: "user-001", Type: model.TxExpense, Amount: decimal.NewFromInt(-1500), BalanceAfter: decimal.NewFromInt(51500)},
		{UserID: "user-001", Type: model.TxInvestment, Amount: decimal.NewFromInt(-600), BalanceAfter: decimal.NewFromInt(50900)},
		{UserID: "user-001", Type: model.TxDividend, Amount: decimal.NewFromInt(100), BalanceAfter: decimal.NewFromInt(51000)},
	}
	s := Summarize(time.Now(), st, nil, nil, txs)

	assert.True(t, s.TotalIncome.Equal(decimal.NewFromInt(3000)))
	assert.True(t, s.TotalExpenses.Equal(decimal.NewFromInt(1500)), "expenses are reported positive")
	assert.True(t, s.TotalInvestments.Equal(decimal.NewFromInt(600)))
	assert.True(t, s.TotalDividends.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.TotalFees.IsZero())
	assert.True(t, s.TotalBalanceChange.Equal(decimal.NewFromInt(1000)))
	assert.InDelta(t, 1000.0/365000*100, s.TotalBalanceChangePercent, 1e-9)
	assert.Equal(t, "Mario Rossi", s.BestPerformingUser)
	assert.Equal(t, 4, s.TotalTransactions)
}

func TestSummarize_CrashMakesWorstAsset(t *testing.T) {
	markets := []model.MarketSimulation{
		{Symbol: "AAPL", Asset: "Apple Inc.", Variation: 3},
		{Symbol: "TSLA", Asset: "Tesla Inc.", Variation: -25},
		{Symbol: "BTC", Asset: "Bitcoin", Variation: 12},
	}
	s := Summarize(time.Now(), freshState(), markets, nil, nil)

	assert.Equal(t, "Bitcoin", s.BestPerformingAsset)
	assert.Equal(t, "Tesla Inc.", s.WorstPerformingAsset)
	assert.InDelta(t, -10.0/3, s.MarketPerformance, 1e-9)
	require.Len(t, s.Alerts, 1)
	assert.Equal(t, model.AlertAssetCrash, s.Alerts[0].Type)
	assert.Equal(t, []string{"TSLA"}, s.Alerts[0].AffectedAssets)

	perf := s.Metadata.Data().AssetPerformance
	require.Len(t, perf, 3)
	assert.Equal(t, "TSLA", perf[1].Symbol)
}

func TestSummarize_TiesKeepFirst(t *testing.T) {
	markets := []model.MarketSimulation{
		{Asset: "First", Variation: 1},
		{Asset: "Second", Variation: 1},
	}
	best, worst := extremeAssets(markets)
	assert.Equal(t, "First", best)
	assert.Equal(t, "First", worst)
}

func TestEvaluateAlerts(t *testing.T) {
	markets := []model.MarketSimulation{
		{Symbol: "ADA", Variation: -20},
		{Symbol: "BTC", Variation: -20.5},
		{Symbol: "ETH", Variation: 20.1},
	}
	txs := []model.SimulatedTransaction{
		{UserID: "user-004", BalanceAfter: decimal.NewFromInt(-10)},
		{UserID: "user-004", BalanceAfter: decimal.NewFromInt(-50)},
		{UserID: "user-001", BalanceAfter: decimal.NewFromInt(10)},
	}

	alerts := EvaluateAlerts(markets, txs)
	require.Len(t, alerts, 3)

	assert.Equal(t, model.AlertNegativeBalance, alerts[0].Type)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, []string{"user-004"}, alerts[0].AffectedUsers)
	assert.Equal(t, "1 users with a negative balance", alerts[0].Message)

	assert.Equal(t, model.AlertAssetCrash, alerts[1].Type)
	assert.Equal(t, []string{"BTC"}, alerts[1].AffectedAssets, "threshold is strict")
	assert.Equal(t, model.SeverityMedium, alerts[1].Severity)

	assert.Equal(t, model.AlertAssetBoom, alerts[2].Type)
	assert.Equal(t, []string{"ETH"}, alerts[2].AffectedAssets)
	assert.Equal(t, model.SeverityLow, alerts[2].Severity)
}

func TestEvaluateAlerts_None(t *testing.T) {
	alerts := EvaluateAlerts([]model.MarketSimulation{{Symbol: "SPY", Variation: 5}}, nil)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
