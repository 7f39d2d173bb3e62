// Package catalog holds the seed data of the simulated world: assets, users,
// event templates and the recurring expense book.
package catalog

import (
	"github.com/shopspring/decimal"

	"FinSim/internal/model"
)

// Assets returns the instruments simulated every day, in catalog order.
func Assets() []model.Asset {
	return []model.Asset{
		// US equities
		{Symbol: "AAPL", Name: "Apple Inc.", Type: model.AssetStock, CurrentValue: 150, Sector: "Technology", Country: "USA", Volatility: 0.25},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Type: model.AssetStock, CurrentValue: 300, Sector: "Technology", Country: "USA", Volatility: 0.22},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Type: model.AssetStock, CurrentValue: 120, Sector: "Technology", Country: "USA", Volatility: 0.28},
		{Symbol: "TSLA", Name: "Tesla Inc.", Type: model.AssetStock, CurrentValue: 200, Sector: "Automotive", Country: "USA", Volatility: 0.45},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Type: model.AssetStock, CurrentValue: 130, Sector: "E-commerce", Country: "USA", Volatility: 0.30},

		// European equities
		{Symbol: "ASML", Name: "ASML Holding", Type: model.AssetStock, CurrentValue: 600, Sector: "Technology", Country: "Netherlands", Volatility: 0.35},
		{Symbol: "NOVO", Name: "Novo Nordisk", Type: model.AssetStock, CurrentValue: 400, Sector: "Healthcare", Country: "Denmark", Volatility: 0.20},
		{Symbol: "NESN", Name: "Nestlé SA", Type: model.AssetStock, CurrentValue: 100, Sector: "Consumer Goods", Country: "Switzerland", Volatility: 0.15},

		{Symbol: "SPY", Name: "SPDR S&P 500 ETF", Type: model.AssetETF, CurrentValue: 400, Sector: "Index", Country: "USA", Volatility: 0.18},
		{Symbol: "QQQ", Name: "Invesco QQQ Trust", Type: model.AssetETF, CurrentValue: 350, Sector: "Technology Index", Country: "USA", Volatility: 0.25},
		{Symbol: "VTI", Name: "Vanguard Total Stock Market ETF", Type: model.AssetETF, CurrentValue: 200, Sector: "Total Market", Country: "USA", Volatility: 0.20},

		{Symbol: "BTC", Name: "Bitcoin", Type: model.AssetCrypto, CurrentValue: 45000, Sector: "Cryptocurrency", Country: "Global", Volatility: 0.80},
		{Symbol: "ETH", Name: "Ethereum", Type: model.AssetCrypto, CurrentValue: 2500, Sector: "Cryptocurrency", Country: "Global", Volatility: 0.75},
		{Symbol: "ADA", Name: "Cardano", Type: model.AssetCrypto, CurrentValue: 0.50, Sector: "Cryptocurrency", Country: "Global", Volatility: 0.90},

		{Symbol: "FIDELITY", Name: "Fidelity Growth Fund", Type: model.AssetFund, CurrentValue: 25, Sector: "Growth Fund", Country: "USA", Volatility: 0.22},
		{Symbol: "VANGUARD", Name: "Vanguard 500 Index Fund", Type: model.AssetFund, CurrentValue: 350, Sector: "Index Fund", Country: "USA", Volatility: 0.18},

		{Symbol: "BOND_US", Name: "US Treasury Bond", Type: model.AssetBond, CurrentValue: 100, Sector: "Government Bond", Country: "USA", Volatility: 0.08},
		{Symbol: "BOND_EU", Name: "European Government Bond", Type: model.AssetBond, CurrentValue: 100, Sector: "Government Bond", Country: "EU", Volatility: 0.10},
	}
}

// Users returns the simulated account holders with their opening balances.
func Users() []model.SimulatedUser {
	seed := []struct {
		id, name string
		balance  int64
		profile  model.RiskProfile
	}{
		{"user-001", "Mario Rossi", 50000, model.RiskConservative},
		{"user-002", "Giulia Bianchi", 75000, model.RiskModerate},
		{"user-003", "Luca Verdi", 120000, model.RiskAggressive},
		{"user-004", "Anna Neri", 30000, model.RiskConservative},
		{"user-005", "Marco Gialli", 90000, model.RiskModerate},
	}
	users := make([]model.SimulatedUser, len(seed))
	for i, s := range seed {
		b := decimal.NewFromInt(s.balance)
		users[i] = model.SimulatedUser{
			ID:             s.id,
			Name:           s.name,
			InitialBalance: b,
			CurrentBalance: b,
			RiskProfile:    s.profile,
		}
	}
	return users
}

// EventTemplate describes an event that may fire on any simulated day.
type EventTemplate struct {
	Type        model.EventType
	Title       string
	Description string
	Severity    model.Severity
	Scope       model.Scope
	Impact      float64
	Probability float64
}

// EventTemplates returns the templates drawn against once per day, in order.
func EventTemplates() []EventTemplate {
	return []EventTemplate{
		{model.EventMarketCrash, "Global Market Crisis", "Heavy selling across every financial market", model.SeverityCritical, model.ScopeGlobal, -15, 0.05},
		{model.EventMarketBoom, "Market Boom", "Strong growth across every financial market", model.SeverityHigh, model.ScopeGlobal, 12, 0.08},
		{model.EventSectorCrash, "Sector Crisis", "A crisis confined to one industrial sector", model.SeverityHigh, model.ScopeSectoral, -25, 0.15},
		{model.EventInterestRateChange, "Interest Rate Change", "Central bank rates have moved", model.SeverityMedium, model.ScopeGlobal, -5, 0.20},
		{model.EventTechnologyBreakthrough, "Technology Breakthrough", "An innovation that reshapes the market", model.SeverityHigh, model.ScopeSectoral, 20, 0.10},
		{model.EventBonusPayment, "Bonus Payment", "Company bonuses paid to employees", model.SeverityLow, model.ScopeIndividual, 8, 0.30},
		{model.EventTaxChange, "Tax Change", "A change in fiscal policy", model.SeverityMedium, model.ScopeNational, -3, 0.25},
	}
}

// EventSources are the institutions an event is attributed to.
var EventSources = []string{"BCE", "FED", "Governo Italiano", "Commissione Europea", "Banca d'Italia", "Wall Street"}

// Expense is a recurring outflow drawn every day with ExpenseProbability.
type Expense struct {
	Category    string
	Base        float64
	Description string
}

// ExpenseProbability is the chance each expense is incurred on a given day.
const ExpenseProbability = 0.8

// Expenses returns the expense book in draw order.
func Expenses() []Expense {
	return []Expense{
		{"Housing", -800, "Monthly rent"},
		{"Utilities", -150, "Electricity, gas and water bills"},
		{"Food", -400, "Groceries"},
		{"Transport", -200, "Public transport and fuel"},
		{"Entertainment", -100, "Entertainment and leisure"},
	}
}
