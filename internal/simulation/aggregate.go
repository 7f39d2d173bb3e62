package simulation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"FinSim/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Summarize derives the daily summary row from one day's generated rows and
// the state after the day was applied.
func Summarize(date time.Time, state model.SimulationState, markets []model.MarketSimulation, events []model.SimulatedEvent, txs []model.SimulatedTransaction) model.DailySimulation {
	totalBalance := state.TotalBalance()
	baseline := state.InitialBalance()
	change := totalBalance.Sub(baseline)
	changePct := 0.0
	if baseline.IsPositive() {
		changePct = change.Div(baseline).Mul(hundred).InexactFloat64()
	}

	income, expenses, investments, dividends, fees := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case model.TxIncome:
			income = income.Add(t.Amount)
		case model.TxExpense:
			expenses = expenses.Add(t.Amount.Abs())
		case model.TxInvestment:
			investments = investments.Add(t.Amount.Abs())
		case model.TxDividend:
			dividends = dividends.Add(t.Amount)
		case model.TxFee:
			fees = fees.Add(t.Amount.Abs())
		}
	}

	activeEvents := make([]model.EventRef, len(events))
	for i, e := range events {
		activeEvents[i] = model.EventRef{ID: e.ID, Type: e.Type, Impact: e.Impact}
	}

	assetPerf := make([]model.AssetPerformance, len(markets))
	for i, m := range markets {
		assetPerf[i] = model.AssetPerformance{Symbol: m.Symbol, Variation: m.Variation, FinalValue: m.FinalValue}
	}
	userPerf := make([]model.UserPerformance, len(state.Users))
	for i, u := range state.Users {
		userPerf[i] = model.UserPerformance{ID: u.ID, Name: u.Name, BalanceChange: u.CurrentBalance.Sub(u.InitialBalance)}
	}

	best, worst := extremeAssets(markets)
	bestUser, worstUser := extremeUsers(userPerf)
	performance := meanVariation(markets)

	return model.DailySimulation{
		ID:                        uuid.NewString(),
		Date:                      date,
		TotalUsers:                len(state.Users),
		TotalAccounts:             len(state.Users),
		TotalAssets:               len(state.Assets),
		TotalTransactions:         len(txs),
		TotalEvents:               len(events),
		TotalBalance:              totalBalance,
		TotalBalanceChange:        change,
		TotalBalanceChangePercent: changePct,
		TotalIncome:               income,
		TotalExpenses:             expenses,
		TotalInvestments:          investments,
		TotalDividends:            dividends,
		TotalFees:                 fees,
		MarketPerformance:         performance,
		BestPerformingAsset:       best,
		WorstPerformingAsset:      worst,
		BestPerformingUser:        bestUser,
		WorstPerformingUser:       worstUser,
		MarketVolatility:          state.MeanVolatility(),
		ActiveEvents:              activeEvents,
		Alerts:                    EvaluateAlerts(markets, txs),
		Summary:                   summaryText(date, performance, len(events), len(txs), len(state.Users), income, expenses),
		Metadata: datatypes.NewJSONType(model.DailyMetadata{
			AssetPerformance: assetPerf,
			UserPerformance:  userPerf,
		}),
	}
}

func meanVariation(markets []model.MarketSimulation) float64 {
	if len(markets) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range markets {
		sum += m.Variation
	}
	return sum / float64(len(markets))
}

// extremeAssets returns the names of the best and worst movers. Ties keep the
// earlier asset in catalog order.
func extremeAssets(markets []model.MarketSimulation) (best, worst string) {
	if len(markets) == 0 {
		return "", ""
	}
	b, w := markets[0], markets[0]
	for _, m := range markets[1:] {
		if m.Variation > b.Variation {
			b = m
		}
		if m.Variation < w.Variation {
			w = m
		}
	}
	return b.Asset, w.Asset
}

func extremeUsers(perf []model.UserPerformance) (best, worst string) {
	if len(perf) == 0 {
		return "", ""
	}
	b, w := perf[0], perf[0]
	for _, p := range perf[1:] {
		if p.BalanceChange.GreaterThan(b.BalanceChange) {
			b = p
		}
		if p.BalanceChange.LessThan(w.BalanceChange) {
			w = p
		}
	}
	return b.Name, w.Name
}

func summaryText(date time.Time, performance float64, events, txs, users int, income, expenses decimal.Decimal) string {
	return fmt.Sprintf("Simulation for %s: market %+.2f%% average variation. "+
		"%d market events generated. %d transactions simulated for %d users. "+
		"Total income €%s, total expenses €%s.",
		date.Format(model.DateLayout), performance, events, txs, users,
		income.StringFixed(2), expenses.StringFixed(2))
}
