package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of a simulated day.
const DateLayout = "2006-01-02"

// Day returns the calendar date of t as midnight UTC. Every stored date goes
// through Day so that range predicates compare like with like.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// SimulationState is the value carried from one simulated day to the next:
// asset prices and user balances.
type SimulationState struct {
	LastDay   time.Time       `json:"last_day"`
	Assets    []Asset         `json:"assets"`
	Users     []SimulatedUser `json:"users"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Clone returns a deep copy, so a run can work on its own state.
func (s SimulationState) Clone() SimulationState {
	out := s
	out.Assets = append([]Asset(nil), s.Assets...)
	out.Users = append([]SimulatedUser(nil), s.Users...)
	return out
}

// TotalBalance sums current balances.
func (s SimulationState) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, u := range s.Users {
		total = total.Add(u.CurrentBalance)
	}
	return total
}

// InitialBalance sums the balances users started with.
func (s SimulationState) InitialBalance() decimal.Decimal {
	total := decimal.Zero
	for _, u := range s.Users {
		total = total.Add(u.InitialBalance)
	}
	return total
}

// MeanVolatility averages the static volatility constants of the catalog.
func (s SimulationState) MeanVolatility() float64 {
	if len(s.Assets) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range s.Assets {
		sum += a.Volatility
	}
	return sum / float64(len(s.Assets))
}
