package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinSim/internal/model"
	"FinSim/internal/simulation"
	"FinSim/internal/state"
	"FinSim/internal/store"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) Send(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, text)
	return nil
}

func testSpecs() Specs {
	return Specs{
		Daily:   "0 1 0 * * *",
		Hourly:  "0 0 9-17 * * 1-5",
		Weekly:  "0 0 23 * * 0",
		Monthly: "0 5 0 1 * *",
		Cleanup: "0 0 2 1 * *",
	}
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *store.MemoryStore, *recordingNotifier) {
	t.Helper()
	st := store.NewMemoryStore()
	sm, err := state.NewManager("")
	require.NoError(t, err)
	engine := simulation.NewEngine(simulation.NewGenerator(simulation.SeededSource(1), "EUR"), st, sm)
	n := &recordingNotifier{}
	s := New(Config{Specs: testSpecs(), RetentionDays: 365, BackfillDays: 7}, engine, st, n)
	s.now = func() time.Time { return now }
	return s, st, n
}

func TestStart_RegistersJobTable(t *testing.T) {
	s, _, _ := newTestScheduler(t, time.Now())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	st := s.Status()
	assert.True(t, st.IsInitialized)
	assert.Equal(t, 5, st.ActiveJobs)
	assert.False(t, st.SimulationRunning)
	for _, name := range []string{JobDaily, JobHourly, JobWeekly, JobMonthly, JobCleanup} {
		js, ok := st.JobDetails[name]
		require.True(t, ok, name)
		assert.True(t, js.Scheduled)
		assert.False(t, js.Running)
		assert.Equal(t, JobScheduled, js.State)
		assert.NotNil(t, js.NextRun, name)
	}
	assert.Equal(t, "0 1 0 * * *", st.JobDetails[JobDaily].Spec)

	require.NoError(t, s.Start(context.Background()), "second start is a no-op")
	assert.Equal(t, 5, s.Status().ActiveJobs)
}

func TestStop_ClearsRegistry(t *testing.T) {
	s, _, _ := newTestScheduler(t, time.Now())

	select {
	case <-s.Stop().Done():
	default:
		t.Fatal("stop before start should be done immediately")
	}

	require.NoError(t, s.Start(context.Background()))
	<-s.Stop().Done()

	st := s.Status()
	assert.False(t, st.IsInitialized)
	assert.Equal(t, 0, st.ActiveJobs)
	assert.Empty(t, st.JobDetails)

	require.NoError(t, s.Restart(context.Background()))
	assert.Equal(t, 5, s.Status().ActiveJobs)
	s.Stop()
}

func TestStart_InvalidSpec(t *testing.T) {
	s, _, _ := newTestScheduler(t, time.Now())
	s.cfg.Specs.Hourly = "not a cron"
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobHourly)
	assert.False(t, s.Status().IsInitialized)
}

func TestRunHistorical_SkipsExistingDays(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newTestScheduler(t, time.Now())
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	_, err := s.RunManual(ctx, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	res, err := s.RunHistorical(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Days)
	assert.Equal(t, []string{"2024-03-03"}, res.Skipped)
	assert.Len(t, res.Results, 4)
	assert.Empty(t, res.Failed)

	res, err = s.RunHistorical(ctx, start, end)
	require.NoError(t, err)
	assert.Len(t, res.Skipped, 5, "second replay is a no-op")
	assert.Empty(t, res.Results)

	rows, err := st.ListDaily(ctx, store.DailyFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestRunHistorical_InvalidRange(t *testing.T) {
	s, _, _ := newTestScheduler(t, time.Now())
	_, err := s.RunHistorical(context.Background(), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRunHistorical_StopsOnCancel(t *testing.T) {
	s, _, _ := newTestScheduler(t, time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.RunHistorical(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Days)
}

func TestMonthlyReport(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t, time.Now())
	_, err := s.RunHistorical(ctx, time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	r, err := s.MonthlyReport(ctx, 2024, time.February)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01 - 2024-02-29", r.Period)
	assert.Equal(t, 3, r.DaysSimulated, "27, 28 and 29 February")
	require.NotNil(t, r.BestDay)
	require.NotNil(t, r.WorstDay)
	assert.GreaterOrEqual(t, r.BestDay.MarketPerformance, r.WorstDay.MarketPerformance)

	r, err = s.MonthlyReport(ctx, 2023, time.January)
	require.NoError(t, err)
	assert.Equal(t, 0, r.DaysSimulated)
}

func TestCleanup_DeletesThenExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	s, st, _ := newTestScheduler(t, now)

	old := model.Day(now).AddDate(0, 0, -400)
	require.NoError(t, st.SaveDay(ctx, &model.DayBatch{
		Date: old,
		Events: []model.SimulatedEvent{
			{ID: "active", Date: old, Duration: 3, IsActive: true},
			{ID: "inactive", Date: old, Duration: 3, IsActive: false},
		},
		Summary: model.DailySimulation{ID: "d1", Date: old},
	}))

	res, err := s.Cleanup(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", res.Cutoff)
	assert.Equal(t, int64(1), res.Events, "only the inactive event is deleted")
	assert.Equal(t, int64(1), res.Daily)
	assert.Equal(t, int64(1), res.Expired, "the surviving event is then expired")

	events, err := st.ListEvents(ctx, store.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "active", events[0].ID)
	assert.False(t, events[0].IsActive)

	res, err = s.Cleanup(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Events, "deleted on the next pass")
}

func TestDailyJob_NotifiesReport(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 1, 0, 0, time.UTC)
	s, st, n := newTestScheduler(t, now)

	require.NoError(t, s.dailyJob(context.Background()))
	exists, err := st.DailyExists(context.Background(), now)
	require.NoError(t, err)
	assert.True(t, exists)
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "2024-03-15")

	err = s.dailyJob(context.Background())
	require.Error(t, err, "second run for the same day fails on the duplicate date")
	assert.True(t, errors.Is(err, store.ErrDuplicateDate))
}

func TestWeeklyJob_ReplaysBackfillWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	s, st, _ := newTestScheduler(t, now)

	require.NoError(t, s.weeklyJob(context.Background()))
	rows, err := st.ListDaily(context.Background(), store.DailyFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 8, "today and the seven days before")
}

func TestMonthlyJob_ReportsPreviousMonth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 0, 5, 0, 0, time.UTC)
	s, _, n := newTestScheduler(t, now)
	_, err := s.RunHistorical(ctx, time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, s.monthlyJob(ctx))
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "2024-03")
}

func TestMonthlyJob_ReadsClockOnce(t *testing.T) {
	ctx := context.Background()
	s, _, n := newTestScheduler(t, time.Now())
	_, err := s.RunHistorical(ctx, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	ticks := []time.Time{
		time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	calls := 0
	s.now = func() time.Time {
		tick := ticks[min(calls, len(ticks)-1)]
		calls++
		return tick
	}

	require.NoError(t, s.monthlyJob(ctx))
	assert.Equal(t, 1, calls)
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "2024-02-01 - 2024-02-29")
}

func TestDispatch_RecordsFailure(t *testing.T) {
	s, _, n := newTestScheduler(t, time.Now())
	e := &jobEntry{job: Job{Name: "broken", Run: func(context.Context) error { return errors.New("boom") }}}

	s.dispatch(e)
	assert.Equal(t, JobIdle, e.state)
	assert.Equal(t, 1, e.runs)
	assert.Equal(t, "boom", e.lastErr)
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "broken failed")
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	reply := s.HandleCommand(ctx, "/status")
	assert.Contains(t, reply, "running")
	assert.Contains(t, reply, JobDaily)

	reply = s.HandleCommand(ctx, "/run")
	assert.Contains(t, reply, "2024-03-15")

	reply = s.HandleCommand(ctx, "/status")
	assert.Contains(t, reply, "Last day: 2024-03-15")

	reply = s.HandleCommand(ctx, "/report")
	assert.Contains(t, reply, "2024-03")

	reply = s.HandleCommand(ctx, "/RUN extra")
	assert.Contains(t, reply, "failed", "same day again is rejected")

	reply = s.HandleCommand(ctx, "hello")
	assert.True(t, strings.HasPrefix(reply, "Available commands"))
	assert.Contains(t, s.HandleCommand(ctx, ""), "Available commands")
}
