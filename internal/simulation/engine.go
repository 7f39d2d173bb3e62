// Package simulation generates the synthetic market, event and transaction
// data of one simulated day and persists it as a single batch.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"FinSim/internal/logger"
	"FinSim/internal/metrics"
	"FinSim/internal/model"
)

var (
	// ErrAlreadyRunning is returned when a daily run is requested while one is in flight.
	ErrAlreadyRunning = errors.New("simulation already running")
	// ErrLockHeld is returned when another instance holds the daily run lock.
	ErrLockHeld = errors.New("simulation lock held by another instance")
)

const runLockKey = "daily-run"

// Recorder persists generated rows.
type Recorder interface {
	SaveDay(ctx context.Context, batch *model.DayBatch) error
	SaveMarket(ctx context.Context, rows []model.MarketSimulation) error
}

// StateHolder owns the current simulation state. Update runs fn under the
// holder's lock and commits its result only when fn returns nil.
type StateHolder interface {
	Snapshot() model.SimulationState
	Update(fn func(cur model.SimulationState) (model.SimulationState, error)) error
}

// Locker guards the daily run across instances.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type nopLocker struct{}

func (nopLocker) TryLock(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (nopLocker) Unlock(context.Context, string) error                         { return nil }

// RunResult describes a completed daily run.
type RunResult struct {
	Date              time.Time             `json:"date"`
	MarketSimulations int                   `json:"marketSimulations"`
	MarketEvents      int                   `json:"marketEvents"`
	UserTransactions  int                   `json:"userTransactions"`
	DailySummary      model.DailySimulation `json:"dailySummary"`
}

// Engine runs simulated days against a state holder and a recorder. At most
// one daily run is in flight per engine.
type Engine struct {
	gen     Generator
	rec     Recorder
	state   StateHolder
	locker  Locker
	lockTTL time.Duration
	running atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker makes each daily run take key runLockKey on l for at most ttl.
func WithLocker(l Locker, ttl time.Duration) Option {
	return func(e *Engine) {
		if l != nil {
			e.locker = l
		}
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(gen Generator, rec Recorder, state StateHolder, opts ...Option) *Engine {
	e := &Engine{
		gen:     gen,
		rec:     rec,
		state:   state,
		locker:  nopLocker{},
		lockTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Running reports whether a daily run is in flight.
func (e *Engine) Running() bool { return e.running.Load() }

// State returns a copy of the current state.
func (e *Engine) State() model.SimulationState { return e.state.Snapshot() }

// RunDaily simulates date and persists the day atomically. State only advances
// once the batch is committed, so a failed run leaves no trace.
func (e *Engine) RunDaily(ctx context.Context, date time.Time) (*RunResult, error) {
	day := model.Day(date)
	if !e.running.CompareAndSwap(false, true) {
		logger.Warn("daily simulation already running", zap.String("date", day.Format(model.DateLayout)))
		return nil, ErrAlreadyRunning
	}
	defer e.running.Store(false)

	ok, err := e.locker.TryLock(ctx, runLockKey, e.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	defer func() {
		if err := e.locker.Unlock(context.WithoutCancel(ctx), runLockKey); err != nil {
			logger.Warn("release run lock", zap.Error(err))
		}
	}()

	logger.Info("starting daily simulation", zap.String("date", day.Format(model.DateLayout)))
	// Generation and persistence happen under the state lock so an intraday
	// run cannot move prices between the read and the commit.
	var batch *model.DayBatch
	var runErr error
	err = e.state.Update(func(cur model.SimulationState) (model.SimulationState, error) {
		b, next := e.gen.SimulateDay(day, cur)
		if err := e.rec.SaveDay(ctx, b); err != nil {
			runErr = fmt.Errorf("persist day %s: %w", day.Format(model.DateLayout), err)
			return cur, runErr
		}
		batch = b
		return next, nil
	})
	if runErr != nil {
		return nil, runErr
	}
	if err != nil {
		logger.Error("save simulation state", zap.Error(err))
	}

	metrics.ObserveDay(batch)
	logDailyReport(&batch.Summary)

	return &RunResult{
		Date:              day,
		MarketSimulations: len(batch.Markets),
		MarketEvents:      len(batch.Events),
		UserTransactions:  len(batch.Transactions),
		DailySummary:      batch.Summary,
	}, nil
}

// RunMarket moves asset prices only and records intraday rows.
func (e *Engine) RunMarket(ctx context.Context, at time.Time) ([]model.MarketSimulation, error) {
	var rows []model.MarketSimulation
	var runErr error
	err := e.state.Update(func(cur model.SimulationState) (model.SimulationState, error) {
		r, assets := e.gen.SimulateIntraday(at, cur)
		if err := e.rec.SaveMarket(ctx, r); err != nil {
			runErr = fmt.Errorf("persist market movements: %w", err)
			return cur, runErr
		}
		rows = r
		cur.Assets = assets
		return cur, nil
	})
	if runErr != nil {
		return nil, runErr
	}
	if err != nil {
		logger.Error("save simulation state", zap.Error(err))
	}
	metrics.ObserveMarket(len(rows))
	logger.Info("market movements simulated", zap.Int("assets", len(rows)))
	return rows, nil
}

func logDailyReport(s *model.DailySimulation) {
	logger.Info("daily simulation report",
		zap.String("date", s.Date.Format(model.DateLayout)),
		zap.Float64("marketPerformance", s.MarketPerformance),
		zap.Float64("balanceChangePercent", s.TotalBalanceChangePercent),
		zap.String("bestAsset", s.BestPerformingAsset),
		zap.String("worstAsset", s.WorstPerformingAsset),
		zap.Int("events", s.TotalEvents),
		zap.Int("transactions", s.TotalTransactions),
		zap.Int("alerts", len(s.Alerts)),
	)
}
