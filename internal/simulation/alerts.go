package simulation

import (
	"fmt"

	"FinSim/internal/model"
)

// Variation thresholds, in percent, past which an asset raises an alert.
const (
	CrashThreshold = -20.0
	BoomThreshold  = 20.0
)

// alertRule inspects one day's rows and reports whether its alert fires.
type alertRule func(markets []model.MarketSimulation, txs []model.SimulatedTransaction) (model.Alert, bool)

var alertRules = []alertRule{negativeBalance, assetCrash, assetBoom}

// EvaluateAlerts runs every rule in order and returns the alerts that fired.
func EvaluateAlerts(markets []model.MarketSimulation, txs []model.SimulatedTransaction) []model.Alert {
	alerts := []model.Alert{}
	for _, rule := range alertRules {
		if a, ok := rule(markets, txs); ok {
			alerts = append(alerts, a)
		}
	}
	return alerts
}

func negativeBalance(_ []model.MarketSimulation, txs []model.SimulatedTransaction) (model.Alert, bool) {
	var users []string
	seen := make(map[string]bool)
	for _, t := range txs {
		if t.BalanceAfter.IsNegative() && !seen[t.UserID] {
			seen[t.UserID] = true
			users = append(users, t.UserID)
		}
	}
	if len(users) == 0 {
		return model.Alert{}, false
	}
	return model.Alert{
		Type:          model.AlertNegativeBalance,
		Severity:      model.SeverityHigh,
		Message:       fmt.Sprintf("%d users with a negative balance", len(users)),
		AffectedUsers: users,
	}, true
}

func assetCrash(markets []model.MarketSimulation, _ []model.SimulatedTransaction) (model.Alert, bool) {
	symbols := symbolsWhere(markets, func(v float64) bool { return v < CrashThreshold })
	if len(symbols) == 0 {
		return model.Alert{}, false
	}
	return model.Alert{
		Type:           model.AlertAssetCrash,
		Severity:       model.SeverityMedium,
		Message:        fmt.Sprintf("%d assets with a heavy loss (>20%%)", len(symbols)),
		AffectedAssets: symbols,
	}, true
}

func assetBoom(markets []model.MarketSimulation, _ []model.SimulatedTransaction) (model.Alert, bool) {
	symbols := symbolsWhere(markets, func(v float64) bool { return v > BoomThreshold })
	if len(symbols) == 0 {
		return model.Alert{}, false
	}
	return model.Alert{
		Type:           model.AlertAssetBoom,
		Severity:       model.SeverityLow,
		Message:        fmt.Sprintf("%d assets with a strong gain (>20%%)", len(symbols)),
		AffectedAssets: symbols,
	}, true
}

func symbolsWhere(markets []model.MarketSimulation, match func(float64) bool) []string {
	var out []string
	for _, m := range markets {
		if match(m.Variation) {
			out = append(out, m.Symbol)
		}
	}
	return out
}
