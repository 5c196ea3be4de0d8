package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"foodgram-backend/internal/config"
	"foodgram-backend/internal/infrastructure/database"
	"foodgram-backend/migrations"
	"foodgram-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}
	logger.Init(getEnv("APP_ENV", "development"))

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load database config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger.Debug("applying embedded migrations")
	applied, err := migrations.Up(ctx, db.Pool)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	if len(applied) == 0 {
		log.Println("✅ Schema is up to date")
		return
	}
	log.Printf("✅ Applied %d migration(s): %v", len(applied), applied)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
