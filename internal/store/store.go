// Package store persists simulated rows: market moves, transactions, events
// and daily summaries.
package store

import (
	"context"
	"errors"
	"time"

	"FinSim/internal/model"
)

var (
	// ErrDuplicateDate is returned when a daily summary already exists for the batch date.
	ErrDuplicateDate = errors.New("daily simulation already exists for date")
	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("record not found")
)

// DailyFilter selects daily summaries, newest first.
type DailyFilter struct {
	Start *time.Time
	End   *time.Time
	Limit int
}

// MarketFilter selects market rows, oldest first.
type MarketFilter struct {
	Symbol string
	Start  *time.Time
	End    *time.Time
}

// TransactionFilter selects transactions, newest day first and in generation
// order within a day.
type TransactionFilter struct {
	UserID string
	Type   model.TransactionType
	Start  *time.Time
	End    *time.Time
	Limit  int
}

// EventFilter selects events, newest first.
type EventFilter struct {
	ActiveOnly bool
	Start      *time.Time
	End        *time.Time
	Limit      int
}

// CleanupResult counts rows removed by a retention pass.
type CleanupResult struct {
	Markets      int64 `json:"marketSimulations"`
	Transactions int64 `json:"transactions"`
	Events       int64 `json:"events"`
	Daily        int64 `json:"dailySimulations"`
}

// Store is the persistence gateway.
type Store interface {
	// SaveDay writes every row of a day in one transaction. It fails with
	// ErrDuplicateDate, writing nothing, when the date already has a summary.
	SaveDay(ctx context.Context, batch *model.DayBatch) error
	SaveMarket(ctx context.Context, rows []model.MarketSimulation) error

	DailyExists(ctx context.Context, date time.Time) (bool, error)
	LatestDaily(ctx context.Context) (*model.DailySimulation, error)
	ListDaily(ctx context.Context, f DailyFilter) ([]model.DailySimulation, error)
	ListMarket(ctx context.Context, f MarketFilter) ([]model.MarketSimulation, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]model.SimulatedTransaction, error)
	ListEvents(ctx context.Context, f EventFilter) ([]model.SimulatedEvent, error)

	// ExpireEvents deactivates active events whose duration has elapsed at asOf.
	ExpireEvents(ctx context.Context, asOf time.Time) (int64, error)
	// Cleanup deletes rows dated before cutoff. Events are only deleted when inactive.
	Cleanup(ctx context.Context, cutoff time.Time) (CleanupResult, error)

	Ping(ctx context.Context) error
	Close() error
}
