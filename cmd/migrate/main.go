package main

import (
	"fmt"
	"log"

	"github.com/shajidul-sobuj/cp-master-bot/internal/config"
	"github.com/shajidul-sobuj/cp-master-bot/internal/database"
	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg.DatabaseURL, logger.New(cfg.LogLevel))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("🚀 Starting database migrations...")

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fmt.Println("✅ All migrations completed successfully!")
}
