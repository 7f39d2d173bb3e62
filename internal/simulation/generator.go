package simulation

import (
	"time"

	"FinSim/internal/catalog"
	"FinSim/internal/model"
)

// Generator turns a state and a date into a day of synthetic data. It has no
// side effects; all randomness comes from Source.
type Generator struct {
	Source    Source
	Templates []catalog.EventTemplate
	Currency  string
}

// NewGenerator returns a generator over the default catalog templates.
func NewGenerator(src Source, currency string) Generator {
	if src == nil {
		src = DefaultSource()
	}
	if currency == "" {
		currency = "EUR"
	}
	return Generator{Source: src, Templates: catalog.EventTemplates(), Currency: currency}
}

// SimulateDay generates markets, then events, then each user's transactions,
// and summarizes them. It returns the batch to persist and the state that
// follows it; state itself is not modified.
func (g Generator) SimulateDay(date time.Time, state model.SimulationState) (*model.DayBatch, model.SimulationState) {
	day := model.Day(date)
	next := state.Clone()

	markets, assets := SimulateMarket(day, model.SessionDaily, next.Assets, g.Source)
	next.Assets = assets

	events := GenerateEvents(day, g.Templates, g.Source)

	var txs []model.SimulatedTransaction
	for i, u := range next.Users {
		userTxs := GenerateUserTransactions(u, day, g.Currency, g.Source)
		if n := len(userTxs); n > 0 {
			next.Users[i].CurrentBalance = userTxs[n-1].BalanceAfter
		}
		txs = append(txs, userTxs...)
	}
	next.LastDay = day

	return &model.DayBatch{
		Date:         day,
		Markets:      markets,
		Events:       events,
		Transactions: txs,
		Summary:      Summarize(day, next, markets, events, txs),
	}, next
}

// SimulateIntraday moves the market only. Rows are tagged INTRADAY and carry
// the calendar date of at.
func (g Generator) SimulateIntraday(at time.Time, state model.SimulationState) ([]model.MarketSimulation, []model.Asset) {
	return SimulateMarket(model.Day(at), model.SessionIntraday, state.Assets, g.Source)
}
