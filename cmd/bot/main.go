package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shajidul-sobuj/cp-master-bot/internal/bot"
	"github.com/shajidul-sobuj/cp-master-bot/internal/config"
	"github.com/shajidul-sobuj/cp-master-bot/internal/database"
	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.New(cfg.LogLevel)

	db, err := database.New(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	bot, err := bot.New(cfg, db, logger)
	if err != nil {
		logger.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := bot.Start(ctx); err != nil {
			logger.Errorf("Bot error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
}
