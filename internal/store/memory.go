package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"FinSim/internal/model"
)

// MemoryStore keeps rows in process memory. It backs tests and is the fallback
// when the database cannot be opened.
type MemoryStore struct {
	mu           sync.RWMutex
	markets      []model.MarketSimulation
	transactions []model.SimulatedTransaction
	events       []model.SimulatedEvent
	daily        []model.DailySimulation
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) SaveDay(_ context.Context, b *model.DayBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.daily {
		if d.Date.Equal(b.Date) {
			return ErrDuplicateDate
		}
	}
	now := time.Now()
	for _, r := range b.Markets {
		r.CreatedAt = now
		m.markets = append(m.markets, r)
	}
	for _, e := range b.Events {
		e.CreatedAt = now
		m.events = append(m.events, e)
	}
	for _, t := range b.Transactions {
		t.CreatedAt = now
		m.transactions = append(m.transactions, t)
	}
	s := b.Summary
	s.CreatedAt = now
	m.daily = append(m.daily, s)
	return nil
}

func (m *MemoryStore) SaveMarket(_ context.Context, rows []model.MarketSimulation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, r := range rows {
		r.CreatedAt = now
		m.markets = append(m.markets, r)
	}
	return nil
}

func (m *MemoryStore) DailyExists(_ context.Context, date time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	day := model.Day(date)
	for _, d := range m.daily {
		if d.Date.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) LatestDaily(_ context.Context) (*model.DailySimulation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.daily) == 0 {
		return nil, ErrNotFound
	}
	latest := m.daily[0]
	for _, d := range m.daily[1:] {
		if d.Date.After(latest.Date) {
			latest = d
		}
	}
	return &latest, nil
}

func (m *MemoryStore) ListDaily(_ context.Context, f DailyFilter) ([]model.DailySimulation, error) {
	m.mu.RLock()
	var out []model.DailySimulation
	for _, d := range m.daily {
		if inRange(d.Date, f.Start, f.End) {
			out = append(out, d)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return limit(out, f.Limit), nil
}

func (m *MemoryStore) ListMarket(_ context.Context, f MarketFilter) ([]model.MarketSimulation, error) {
	m.mu.RLock()
	var out []model.MarketSimulation
	for _, r := range m.markets {
		if (f.Symbol == "" || r.Symbol == f.Symbol) && inRange(r.Date, f.Start, f.End) {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) ListTransactions(_ context.Context, f TransactionFilter) ([]model.SimulatedTransaction, error) {
	m.mu.RLock()
	var out []model.SimulatedTransaction
	for _, t := range m.transactions {
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if inRange(t.Date, f.Start, f.End) {
			out = append(out, t)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return a.Seq < b.Seq
	})
	return limit(out, f.Limit), nil
}

func (m *MemoryStore) ListEvents(_ context.Context, f EventFilter) ([]model.SimulatedEvent, error) {
	m.mu.RLock()
	var out []model.SimulatedEvent
	for _, e := range m.events {
		if f.ActiveOnly && !e.IsActive {
			continue
		}
		if inRange(e.Date, f.Start, f.End) {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return limit(out, f.Limit), nil
}

func (m *MemoryStore) ExpireEvents(_ context.Context, asOf time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := model.Day(asOf)
	var n int64
	for i := range m.events {
		if m.events[i].IsActive && !day.Before(m.events[i].ExpiresAt()) {
			m.events[i].IsActive = false
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Cleanup(_ context.Context, cutoff time.Time) (CleanupResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := model.Day(cutoff)
	var out CleanupResult
	m.markets, out.Markets = retain(m.markets, func(r model.MarketSimulation) bool { return !r.Date.Before(day) })
	m.transactions, out.Transactions = retain(m.transactions, func(t model.SimulatedTransaction) bool { return !t.Date.Before(day) })
	m.events, out.Events = retain(m.events, func(e model.SimulatedEvent) bool { return e.IsActive || !e.Date.Before(day) })
	m.daily, out.Daily = retain(m.daily, func(d model.DailySimulation) bool { return !d.Date.Before(day) })
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
func (m *MemoryStore) Close() error               { return nil }

func inRange(date time.Time, start, end *time.Time) bool {
	if start != nil && date.Before(model.Day(*start)) {
		return false
	}
	if end != nil && date.After(model.Day(*end)) {
		return false
	}
	return true
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

func retain[T any](rows []T, keep func(T) bool) ([]T, int64) {
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, int64(len(rows) - len(out))
}
