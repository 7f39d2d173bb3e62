package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"FinSim/internal/logger"
	"FinSim/internal/metrics"
	"FinSim/internal/notifier"
	"FinSim/internal/simulation"
	"FinSim/internal/store"
)

// Job names, as reported by Status.
const (
	JobDaily   = "dailySimulation"
	JobHourly  = "hourlyMarketSimulation"
	JobWeekly  = "weeklySimulation"
	JobMonthly = "monthlySimulation"
	JobCleanup = "dataCleanup"
)

// JobState is where a registered job is in its cycle.
type JobState string

const (
	JobScheduled JobState = "scheduled"
	JobRunning   JobState = "running"
	JobIdle      JobState = "idle"
)

// Job is one row of the job table: a name, a six-field cron spec and the action.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Specs are the cron specs of the five jobs.
type Specs struct {
	Daily   string
	Hourly  string
	Weekly  string
	Monthly string
	Cleanup string
}

// Config tunes the scheduler.
type Config struct {
	Specs         Specs
	Location      *time.Location
	RetentionDays int
	BackfillDays  int
}

type jobEntry struct {
	job     Job
	id      cron.EntryID
	state   JobState
	runs    int
	lastRun time.Time
	lastErr string
}

// Scheduler runs the simulation on its cadences and exposes the manual,
// replay and reporting entry points.
type Scheduler struct {
	mu          sync.Mutex
	cron        *cron.Cron
	ctx         context.Context
	jobs        map[string]*jobEntry
	initialized bool

	cfg      Config
	engine   *simulation.Engine
	store    store.Store
	notifier notifier.Notifier
	now      func() time.Time
}

// New creates a scheduler. Nothing is scheduled until Start.
func New(cfg Config, engine *simulation.Engine, st store.Store, n notifier.Notifier) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	s := &Scheduler{
		cfg:      cfg,
		engine:   engine,
		store:    st,
		notifier: n,
		jobs:     make(map[string]*jobEntry),
		ctx:      context.Background(),
	}
	s.now = func() time.Time { return time.Now().In(s.cfg.Location) }
	return s
}

func (s *Scheduler) jobTable() []Job {
	return []Job{
		{Name: JobDaily, Spec: s.cfg.Specs.Daily, Run: s.dailyJob},
		{Name: JobHourly, Spec: s.cfg.Specs.Hourly, Run: s.hourlyJob},
		{Name: JobWeekly, Spec: s.cfg.Specs.Weekly, Run: s.weeklyJob},
		{Name: JobMonthly, Spec: s.cfg.Specs.Monthly, Run: s.monthlyJob},
		{Name: JobCleanup, Spec: s.cfg.Specs.Cleanup, Run: s.cleanupJob},
	}
}

// Start registers every job of the table and starts the cron loop. Starting
// an initialized scheduler is a no-op. Jobs keep running after ctx is
// cancelled; use Stop to end them.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		logger.Warn("scheduler already initialized")
		return nil
	}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(s.cfg.Location),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	jobs := make(map[string]*jobEntry)
	for _, j := range s.jobTable() {
		e := &jobEntry{job: j, state: JobScheduled}
		id, err := c.AddFunc(j.Spec, func() { s.dispatch(e) })
		if err != nil {
			return fmt.Errorf("register %s: %w", j.Name, err)
		}
		e.id = id
		jobs[j.Name] = e
		logger.Info("job scheduled", zap.String("job", j.Name), zap.String("spec", j.Spec))
	}

	s.cron = c
	s.jobs = jobs
	s.ctx = context.WithoutCancel(ctx)
	s.initialized = true
	c.Start()
	logger.Info("scheduler started", zap.Int("jobs", len(jobs)), zap.String("timezone", s.cfg.Location.String()))
	return nil
}

// Stop unschedules every job and clears the registry. The returned context is
// done once jobs already running have returned.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	done := s.cron.Stop()
	s.jobs = make(map[string]*jobEntry)
	s.initialized = false
	logger.Info("scheduler stopped")
	return done
}

// Restart stops and starts the scheduler without waiting for running jobs.
func (s *Scheduler) Restart(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

func (s *Scheduler) dispatch(e *jobEntry) {
	s.mu.Lock()
	e.state = JobRunning
	ctx := s.ctx
	s.mu.Unlock()

	start := time.Now()
	logger.Info("job started", zap.String("job", e.job.Name))
	err := e.job.Run(ctx)
	metrics.ObserveJob(e.job.Name, err, time.Since(start))

	s.mu.Lock()
	e.state = JobIdle
	e.runs++
	e.lastRun = start
	e.lastErr = ""
	if err != nil {
		e.lastErr = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		logger.Error("job failed", zap.String("job", e.job.Name), zap.Error(err))
		s.trySend(ctx, notifier.FormatFailure(e.job.Name, err))
		return
	}
	logger.Info("job completed", zap.String("job", e.job.Name), zap.Duration("elapsed", time.Since(start)))
}

// JobStatus describes one registered job.
type JobStatus struct {
	Spec      string     `json:"spec"`
	State     JobState   `json:"state"`
	Scheduled bool       `json:"scheduled"`
	Running   bool       `json:"running"`
	Runs      int        `json:"runs"`
	LastRun   *time.Time `json:"lastRun,omitempty"`
	LastError string     `json:"lastError,omitempty"`
	NextRun   *time.Time `json:"nextRun,omitempty"`
}

// Status is a snapshot of the scheduler.
type Status struct {
	IsInitialized     bool                 `json:"isInitialized"`
	ActiveJobs        int                  `json:"activeJobs"`
	SimulationRunning bool                 `json:"simulationRunning"`
	JobDetails        map[string]JobStatus `json:"jobDetails"`
}

// Status reports the registry and the state of each job.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		IsInitialized:     s.initialized,
		ActiveJobs:        len(s.jobs),
		SimulationRunning: s.engine.Running(),
		JobDetails:        make(map[string]JobStatus, len(s.jobs)),
	}
	for name, e := range s.jobs {
		js := JobStatus{
			Spec:      e.job.Spec,
			State:     e.state,
			Scheduled: true,
			Running:   e.state == JobRunning,
			Runs:      e.runs,
			LastError: e.lastErr,
		}
		if !e.lastRun.IsZero() {
			t := e.lastRun
			js.LastRun = &t
		}
		if next := s.cron.Entry(e.id).Next; !next.IsZero() {
			js.NextRun = &next
		}
		st.JobDetails[name] = js
	}
	return st
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := notifier.SendWithRetry(ctx, s.notifier, text, 3); err != nil {
		logger.Error("send notification", zap.Error(err))
	}
}
