package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Priyansh0418/Haski-sub005/internal/api"
	"github.com/Priyansh0418/Haski-sub005/internal/audit"
	"github.com/Priyansh0418/Haski-sub005/internal/config"
	"github.com/Priyansh0418/Haski-sub005/internal/database"
	"github.com/Priyansh0418/Haski-sub005/internal/domain"
	"github.com/Priyansh0418/Haski-sub005/internal/engine"
	"github.com/Priyansh0418/Haski-sub005/internal/feedback"
	"github.com/Priyansh0418/Haski-sub005/internal/repository"
	"github.com/Priyansh0418/Haski-sub005/internal/rules"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	ruleStore := rules.NewStore(logger)
	count, version, err := ruleStore.Reload(cfg.Rules.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load initial rule set")
	}
	logger.WithFields(logrus.Fields{
		"rules":   count,
		"version": version,
		"path":    cfg.Rules.Path,
	}).Info("Initial rule set loaded")

	if cfg.Rules.Watch {
		watcher, err := rules.NewWatcher(ruleStore, cfg.Rules.Path, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to start rule file watcher")
		}
		// Run closes the watcher when ctx is cancelled.
		go watcher.Run(ctx)
	}

	var db *database.DB
	if cfg.Storage.RecommendationStore == "postgres" || cfg.Storage.FeedbackStore == "postgres" {
		db, err = database.NewConnection(ctx, cfg.PoolConfig(), logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		runner, err := database.NewMigrationRunner(cfg.PoolConfig().URL(), cfg.Database.MigrationsPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create migration runner")
		}
		if err := runner.Up(); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
		runner.Close()
	}

	var bundles domain.RecommendationStore
	switch cfg.Storage.RecommendationStore {
	case "postgres":
		bundles = repository.NewRecommendationRepository(db.Pool, logger)
	default:
		bundles = repository.NewMemoryRecommendationStore()
	}

	var auditLog domain.AuditLog
	switch cfg.Storage.AuditStore {
	case "sqlite":
		sqliteLog, err := audit.NewSQLiteLog(cfg.Storage.AuditDBPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open audit database")
		}
		defer sqliteLog.Close()
		auditLog = sqliteLog
	default:
		auditLog = audit.NewMemoryLog()
	}

	var feedbackStore feedback.Store
	switch cfg.Storage.FeedbackStore {
	case "postgres":
		feedbackStore, err = feedback.NewPostgresStoreFromURL(cfg.PoolConfig().URL())
	default:
		feedbackStore, err = feedback.NewSQLiteStore(cfg.Storage.FeedbackDBPath)
	}
	if err != nil {
		logger.WithError(err).Fatal("Failed to open feedback store")
	}
	defer feedbackStore.Close()

	aggregator, err := feedback.NewAggregator(feedbackStore, bundles, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create feedback aggregator")
	}

	eng := engine.NewEngine(ruleStore, auditLog, bundles, logger)

	server := api.NewServer(cfg, logger, eng, bundles, aggregator, feedback.NewInsightEngine())

	logger.WithField("addr", cfg.Address()).Info("Starting recommendation service")
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
