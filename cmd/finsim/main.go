package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"FinSim/internal/api"
	"FinSim/internal/config"
	"FinSim/internal/lock"
	"FinSim/internal/logger"
	"FinSim/internal/notifier"
	"FinSim/internal/scheduler"
	"FinSim/internal/simulation"
	"FinSim/internal/state"
	"FinSim/internal/store"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Init("info", "")
		logger.Fatal("load config", zap.Error(err))
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Init("info", "")
		logger.Warn("init logger from config, using defaults", zap.Error(err))
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}
	logger.Info("FinSim starting", zap.String("config", cfgPath))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init store
	var st store.Store
	gs, err := store.Open(store.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		logger.Warn("open database failed, using in-memory store", zap.Error(err))
		st = store.NewMemoryStore()
	} else {
		st = gs
	}
	defer st.Close()

	// Init simulation state
	sm, err := state.NewManager(cfg.Simulation.StateFile)
	if err != nil {
		logger.Fatal("init simulation state", zap.Error(err))
	}

	// Init run lock
	lk, err := lock.New(ctx, lock.Config{
		Enabled: cfg.Lock.Enabled,
		Prefix:  cfg.Lock.Prefix,
		Redis: lock.RedisConfig{
			Addr:     cfg.Lock.Redis.Addr,
			Password: cfg.Lock.Redis.Password,
			DB:       cfg.Lock.Redis.DB,
			PoolSize: cfg.Lock.Redis.PoolSize,
		},
	})
	if err != nil {
		logger.Fatal("init run lock", zap.Error(err))
	}
	defer lk.Close()

	// Init engine
	src := simulation.DefaultSource()
	if cfg.Simulation.Seed != 0 {
		src = simulation.SeededSource(cfg.Simulation.Seed)
		logger.Info("seeded simulation", zap.Uint64("seed", cfg.Simulation.Seed))
	}
	engine := simulation.NewEngine(
		simulation.NewGenerator(src, cfg.Simulation.Currency),
		st, sm,
		simulation.WithLocker(lk, cfg.Lock.TTL),
	)

	// Init Telegram notifier
	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Warn("init telegram notifier failed, notifications disabled", zap.Error(err))
		} else {
			n = tn
		}
	}

	// Init scheduler
	sched := scheduler.New(scheduler.Config{
		Specs: scheduler.Specs{
			Daily:   cfg.Schedule.DailyCron,
			Hourly:  cfg.Schedule.HourlyCron,
			Weekly:  cfg.Schedule.WeeklyCron,
			Monthly: cfg.Schedule.MonthlyCron,
			Cleanup: cfg.Schedule.CleanupCron,
		},
		Location:      cfg.Location(),
		RetentionDays: cfg.Simulation.RetentionDays,
		BackfillDays:  cfg.Simulation.BackfillDays,
	}, engine, st, n)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("start scheduler", zap.Error(err))
	}

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	// Start HTTP server
	srv := api.NewServer(api.Config{
		Addr:           cfg.Server.Addr,
		Mode:           cfg.Server.Mode,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		JWTSecret:      cfg.Server.JWTSecret,
		LogAllRequests: cfg.Server.LogAllRequests,
		Location:       cfg.Location(),
	}, sched, st)
	srvDone := make(chan struct{})
	go func() {
		defer close(srvDone)
		if err := srv.Run(ctx); err != nil {
			logger.Error("http server", zap.Error(err))
		}
	}()

	// Optional: backfill, then run today, on start
	go func() {
		now := time.Now().In(cfg.Location())
		if os.Getenv("GENERATE_HISTORICAL_DATA") == "true" {
			logger.Info("GENERATE_HISTORICAL_DATA enabled, backfilling", zap.Int("days", cfg.Simulation.BackfillDays))
			if _, err := sched.RunHistorical(ctx, now.AddDate(0, 0, -cfg.Simulation.BackfillDays), now.AddDate(0, 0, -1)); err != nil {
				logger.Warn("historical backfill", zap.Error(err))
			}
		}
		if os.Getenv("RUN_ON_START") == "true" {
			logger.Info("RUN_ON_START enabled, simulating today")
			if _, err := sched.RunManual(ctx, now); err != nil {
				logger.Warn("startup simulation", zap.Error(err))
			}
		}
	}()

	logger.Info("FinSim is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	jobsDone := sched.Stop()
	cancel()
	select {
	case <-jobsDone.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("timed out waiting for running jobs")
	}
	<-srvDone
	logger.Info("FinSim stopped")
}
