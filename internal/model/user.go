package model

import "github.com/shopspring/decimal"

// RiskProfile is carried for display only; generation ignores it.
type RiskProfile string

const (
	RiskConservative RiskProfile = "CONSERVATIVE"
	RiskModerate     RiskProfile = "MODERATE"
	RiskAggressive   RiskProfile = "AGGRESSIVE"
)

// SimulatedUser owns a single account whose balance is never clamped.
type SimulatedUser struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	RiskProfile    RiskProfile     `json:"riskProfile"`
}

// AccountID is the single account a user transacts on.
func (u SimulatedUser) AccountID() string {
	return "account-" + u.ID
}
