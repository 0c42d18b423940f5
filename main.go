package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"adaptive-decision-core/config"
	"adaptive-decision-core/internal/adaptive"
	"adaptive-decision-core/internal/bandit"
	"adaptive-decision-core/internal/calibration"
	"adaptive-decision-core/internal/decision"
	"adaptive-decision-core/internal/events"
	"adaptive-decision-core/internal/logging"
	"adaptive-decision-core/internal/scheduler"
	"adaptive-decision-core/internal/store"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Default().Fatal("failed to load config", "error", err)
	}

	logger := logging.New(&logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     cfg.LoggingConfig.Output,
		Component:  "core",
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})
	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	recordStore, err := buildStore(cfg, zlog)
	if err != nil {
		logger.Fatal("failed to initialize record store", "error", err, "backend", cfg.StoreConfig.Backend)
	}
	defer recordStore.Close()

	bus := events.NewBus()
	params := adaptive.NewManager(logger)
	engine := calibration.NewEngine(calibration.Config{
		MinDataPoints: cfg.CalibrationConfig.MinDataPoints,
		WindowSize:    cfg.CalibrationConfig.WindowSize,
		MaxAge:        cfg.CalibrationConfig.MaxAge(),
	}, logger)
	arbitrator := bandit.NewArbitrator(bandit.Config{
		Epsilon0:         cfg.BanditConfig.Epsilon0,
		MinExploration:   cfg.BanditConfig.MinExploration,
		DecayRate:        cfg.BanditConfig.DecayRate,
		UpdateInterval:   cfg.BanditConfig.UpdateInterval(),
		ReturnWeight:     cfg.BanditConfig.ReturnWeight,
		AccuracyBaseline: cfg.BanditConfig.AccuracyBaseline,
	}, logger,
		bandit.SubStrategy{ID: "trend_following", Label: "Trend Following", Active: true},
		bandit.SubStrategy{ID: "mean_reversion", Label: "Mean Reversion", Active: true},
		bandit.SubStrategy{ID: "breakout", Label: "Breakout", Active: true},
	)

	persister := store.NewPersister(recordStore, engine, arbitrator, params, logger)
	ctx := context.Background()
	persister.LoadAll(ctx)

	provider := &decision.StaticProvider{}
	orchestrator := decision.NewOrchestrator(
		params, engine, arbitrator, provider, bus,
		calibration.Method(cfg.CalibrationConfig.Method), logger,
	)

	sched := scheduler.NewTickerScheduler(logger)
	stopRetrain := sched.Every("retrain",
		time.Duration(cfg.MaintenanceConfig.RetrainIntervalHours)*time.Hour,
		orchestrator.RunMaintenance)
	stopWeights := sched.Every("weights",
		time.Duration(cfg.MaintenanceConfig.WeightsIntervalMinutes)*time.Minute,
		orchestrator.RefreshWeights)
	stopSave := sched.Every("save",
		time.Duration(cfg.MaintenanceConfig.SaveIntervalMinutes)*time.Minute,
		persister.SaveAll)

	logger.Info("decision core started",
		"store", cfg.StoreConfig.Backend,
		"method", cfg.CalibrationConfig.Method)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	stopRetrain()
	stopWeights()
	stopSave()
	sched.Wait()

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	persister.SaveAll(saveCtx)
	logger.Info("shutdown complete")
}

func buildStore(cfg *config.Config, zlog zerolog.Logger) (store.RecordStore, error) {
	switch cfg.StoreConfig.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "file":
		return store.NewFileStore(cfg.StoreConfig.Dir)
	case "redis":
		return store.NewRedisStore(store.RedisConfig{
			Addr:     cfg.StoreConfig.Redis.Addr,
			Password: cfg.StoreConfig.Redis.Password,
			DB:       cfg.StoreConfig.Redis.DB,
			TTL:      time.Duration(cfg.StoreConfig.Redis.TTLHours) * time.Hour,
		}, zlog), nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return store.NewPostgresStore(ctx, store.PostgresConfig{
			Host:     cfg.StoreConfig.Postgres.Host,
			Port:     cfg.StoreConfig.Postgres.Port,
			User:     cfg.StoreConfig.Postgres.User,
			Password: cfg.StoreConfig.Postgres.Password,
			Database: cfg.StoreConfig.Postgres.Database,
			SSLMode:  cfg.StoreConfig.Postgres.SSLMode,
		}, zlog)
	default:
		return store.NewMemoryStore(), nil
	}
}
