package main

import (
	"log"

	"quizforge/internal/config"
	"quizforge/internal/database"
	"quizforge/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := database.RunMigrations(cfg.GetDSN()); err != nil {
		logger.Get().Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Get().Info("Migrations completed successfully")
}
