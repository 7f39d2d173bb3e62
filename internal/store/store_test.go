package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"FinSim/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func batchFor(date time.Time) *model.DayBatch {
	markets := []model.MarketSimulation{
		{ID: uuid.NewString(), Date: date, Session: model.SessionDaily, Asset: "Apple Inc.", AssetType: model.AssetStock, Symbol: "AAPL", InitialValue: 150, FinalValue: 153, Variation: 2, AbsoluteVariation: 3, Volatility: 0.25,
			Metadata: datatypes.NewJSONType(model.MarketMetadata{PreviousValue: 150, MarketSentiment: model.SentimentBullish})},
		{ID: uuid.NewString(), Date: date, Session: model.SessionDaily, Asset: "Bitcoin", AssetType: model.AssetCrypto, Symbol: "BTC", InitialValue: 45000, FinalValue: 44100, Variation: -2, AbsoluteVariation: -900, Volatility: 0.8,
			Metadata: datatypes.NewJSONType(model.MarketMetadata{PreviousValue: 45000, MarketSentiment: model.SentimentBearish})},
	}
	events := []model.SimulatedEvent{
		{ID: uuid.NewString(), Date: date, Type: model.EventTaxChange, Severity: model.SeverityMedium, Scope: model.ScopeNational, Impact: -2.5, AbsoluteImpact: 2.5, Title: "Tax Change", Source: "BCE", Probability: 0.25, Duration: 2, IsActive: true},
	}
	txs := []model.SimulatedTransaction{
		{ID: uuid.NewString(), Date: date, Seq: 0, UserID: "user-002", AccountID: "account-user-002", Type: model.TxExpense, Category: "Food", Amount: decimal.RequireFromString("-400.25"), BalanceBefore: decimal.NewFromInt(75000), BalanceAfter: decimal.RequireFromString("74599.75"), Currency: "EUR"},
		{ID: uuid.NewString(), Date: date, Seq: 0, UserID: "user-001", AccountID: "account-user-001", Type: model.TxExpense, Category: "Housing", Amount: decimal.NewFromInt(-700), BalanceBefore: decimal.NewFromInt(50000), BalanceAfter: decimal.NewFromInt(49300), Currency: "EUR"},
		{ID: uuid.NewString(), Date: date, Seq: 1, UserID: "user-001", AccountID: "account-user-001", Type: model.TxIncome, Category: "Bonus", Amount: decimal.NewFromInt(300), BalanceBefore: decimal.NewFromInt(49300), BalanceAfter: decimal.NewFromInt(49600), Currency: "EUR"},
	}
	summary := model.DailySimulation{
		ID:                uuid.NewString(),
		Date:              date,
		TotalUsers:        2,
		TotalTransactions: len(txs),
		TotalEvents:       len(events),
		TotalBalance:      decimal.RequireFromString("124199.75"),
		MarketPerformance: 0,
		Alerts:            []model.Alert{},
		ActiveEvents:      []model.EventRef{{ID: events[0].ID, Type: events[0].Type, Impact: events[0].Impact}},
	}
	return &model.DayBatch{Date: date, Markets: markets, Events: events, Transactions: txs, Summary: summary}
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		gs, err := Open(Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "finsim.db")})
		require.NoError(t, err)
		t.Cleanup(func() { gs.Close() })
		fn(t, gs)
	})
}

func TestSaveDay_RoundTrip(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		d := day(2024, 3, 15)
		require.NoError(t, s.SaveDay(ctx, batchFor(d)))

		exists, err := s.DailyExists(ctx, d.Add(13*time.Hour))
		require.NoError(t, err)
		assert.True(t, exists)

		latest, err := s.LatestDaily(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-15", latest.Date.Format(model.DateLayout))
		assert.True(t, latest.TotalBalance.Equal(decimal.RequireFromString("124199.75")))
		assert.Len(t, latest.ActiveEvents, 1)

		markets, err := s.ListMarket(ctx, MarketFilter{Symbol: "BTC"})
		require.NoError(t, err)
		require.Len(t, markets, 1)
		assert.Equal(t, 44100.0, markets[0].FinalValue)
		assert.Equal(t, model.SentimentBearish, markets[0].Metadata.Data().MarketSentiment)

		txs, err := s.ListTransactions(ctx, TransactionFilter{UserID: "user-001"})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, 0, txs[0].Seq)
		assert.Equal(t, 1, txs[1].Seq)
		assert.True(t, txs[1].BalanceAfter.Equal(decimal.NewFromInt(49600)))

		income, err := s.ListTransactions(ctx, TransactionFilter{Type: model.TxIncome})
		require.NoError(t, err)
		assert.Len(t, income, 1)
	})
}

func TestSaveDay_DuplicateWritesNothing(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		d := day(2024, 3, 15)
		require.NoError(t, s.SaveDay(ctx, batchFor(d)))

		err := s.SaveDay(ctx, batchFor(d))
		require.ErrorIs(t, err, ErrDuplicateDate)

		markets, err := s.ListMarket(ctx, MarketFilter{})
		require.NoError(t, err)
		assert.Len(t, markets, 2)
		txs, err := s.ListTransactions(ctx, TransactionFilter{})
		require.NoError(t, err)
		assert.Len(t, txs, 3)
		events, err := s.ListEvents(ctx, EventFilter{})
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestSaveDay_KeepsZeroValuedEventFields(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		b := batchFor(day(2024, 3, 15))
		b.Events[0].IsActive = false
		b.Events[0].Duration = 0
		require.NoError(t, s.SaveDay(ctx, b))

		events, err := s.ListEvents(ctx, EventFilter{})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].IsActive)
		assert.Equal(t, 0, events[0].Duration)

		active, err := s.ListEvents(ctx, EventFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Empty(t, active)
	})
}

func TestLatestDaily_Empty(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		_, err := s.LatestDaily(context.Background())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListDaily_RangeAndOrder(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 1; i <= 5; i++ {
			require.NoError(t, s.SaveDay(ctx, batchFor(day(2024, 3, i))))
		}

		start, end := day(2024, 3, 2), day(2024, 3, 4)
		rows, err := s.ListDaily(ctx, DailyFilter{Start: &start, End: &end})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "2024-03-04", rows[0].Date.Format(model.DateLayout), "newest first")
		assert.Equal(t, "2024-03-02", rows[2].Date.Format(model.DateLayout))

		rows, err = s.ListDaily(ctx, DailyFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2024-03-05", rows[0].Date.Format(model.DateLayout))

		markets, err := s.ListMarket(ctx, MarketFilter{Symbol: "AAPL", Start: &start})
		require.NoError(t, err)
		require.Len(t, markets, 4)
		assert.Equal(t, "2024-03-02", markets[0].Date.Format(model.DateLayout), "oldest first")

		txs, err := s.ListTransactions(ctx, TransactionFilter{Start: &end, End: &end})
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, "user-001", txs[0].UserID)
		assert.Equal(t, "user-002", txs[2].UserID)
	})
}

func TestSaveMarket_IntradayDoesNotCountAsDay(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		d := day(2024, 3, 6)
		rows := batchFor(d).Markets
		for i := range rows {
			rows[i].Session = model.SessionIntraday
		}
		require.NoError(t, s.SaveMarket(ctx, rows))

		exists, err := s.DailyExists(ctx, d)
		require.NoError(t, err)
		assert.False(t, exists)
		require.NoError(t, s.SaveDay(ctx, batchFor(d)), "daily run still allowed")

		markets, err := s.ListMarket(ctx, MarketFilter{Symbol: "AAPL"})
		require.NoError(t, err)
		assert.Len(t, markets, 2)
	})
}

func TestExpireEvents(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		d := day(2024, 3, 10)
		require.NoError(t, s.SaveDay(ctx, batchFor(d))) // duration 2

		n, err := s.ExpireEvents(ctx, day(2024, 3, 11))
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		n, err = s.ExpireEvents(ctx, day(2024, 3, 12))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		active, err := s.ListEvents(ctx, EventFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Empty(t, active)
		all, err := s.ListEvents(ctx, EventFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestCleanup_KeepsActiveEvents(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		now := day(2025, 6, 1)
		old := now.AddDate(0, 0, -400)

		oldBatch := batchFor(old)
		inactive := oldBatch.Events[0]
		inactive.ID = uuid.NewString()
		inactive.IsActive = false
		oldBatch.Events = append(oldBatch.Events, inactive)
		require.NoError(t, s.SaveDay(ctx, oldBatch))
		require.NoError(t, s.SaveDay(ctx, batchFor(now.AddDate(0, 0, -10))))

		res, err := s.Cleanup(ctx, now.AddDate(0, 0, -365))
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Markets)
		assert.Equal(t, int64(3), res.Transactions)
		assert.Equal(t, int64(1), res.Events)
		assert.Equal(t, int64(1), res.Daily)

		events, err := s.ListEvents(ctx, EventFilter{})
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "2024-04-27", events[1].Date.Format(model.DateLayout), "active event from 400 days ago survives")

		rows, err := s.ListDaily(ctx, DailyFilter{})
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}

func TestPing(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		assert.NoError(t, s.Ping(context.Background()))
	})
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}
