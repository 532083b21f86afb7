package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sateihub/server/config"
	"sateihub/server/internal/api"
	"sateihub/server/internal/database"
	"sateihub/server/internal/processor"
	"sateihub/server/internal/queue"
	"sateihub/server/internal/region"
	"sateihub/server/internal/source"
	"sateihub/server/internal/valuation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	currentDir, err := os.Getwd()
	if err != nil {
		logger.WithError(err).Fatal("Failed to get current directory")
	}

	dbPath := filepath.Join(currentDir, "database", "sateihub.db")
	logger.Infof("Using database at: %s", dbPath)

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	snapshotQueue := queue.NewSnapshotQueue(cfg.BatchProcessing.QueueSize, logger)
	snapshotProcessor := processor.NewSnapshotProcessor(db, snapshotQueue, cfg, logger)
	snapshotProcessor.Start()
	snapshotQueue.Start()
	defer snapshotQueue.Close()
	defer snapshotProcessor.Stop()

	if cfg.Source.APIKey == "" {
		logger.Warn("No source API key configured, live fetches will fail and valuations will use synthetic data")
	}

	live := source.NewLiveSource(
		cfg.Source.BaseURL,
		cfg.Source.APIKey,
		time.Duration(cfg.Engine.FetchTimeout)*time.Second,
		logger,
	)

	engine := valuation.NewEngine(valuation.Options{
		Logger:          logger,
		Resolver:        region.NewResolver(logger, region.NewMapCache()),
		Live:            live,
		FetchWorkers:    cfg.Engine.FetchWorkers,
		FetchTimeout:    time.Duration(cfg.Engine.FetchTimeout) * time.Second,
		RequestDeadline: time.Duration(cfg.Engine.RequestDeadline) * time.Second,
		TopComparables:  cfg.Engine.TopComparables,
	})

	router := gin.Default()
	api.SetupRoutes(router, api.NewHandler(engine, db, snapshotQueue, logger))

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
