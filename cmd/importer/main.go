// Command importer loads ingredient and tag catalogues from CSV files.
//
//	importer -ingredients data/ingredients.csv -tags data/tags.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"foodgram-backend/internal/config"
	"foodgram-backend/internal/importer"
	"foodgram-backend/internal/infrastructure/database"
	pkgdb "foodgram-backend/pkg/database"
	"foodgram-backend/pkg/logger"
)

func main() {
	ingredientsPath := flag.String("ingredients", "", "CSV file with name,measurement_unit rows")
	tagsPath := flag.String("tags", "", "CSV file with name[,slug] rows")
	flag.Parse()

	if *ingredientsPath == "" && *tagsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}
	logger.Init(getEnv("APP_ENV", "development"))

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load database config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	jobs := []struct {
		name string
		path string
		fn   importFunc
	}{
		{"ingredients", *ingredientsPath, importer.ImportIngredients},
		{"tags", *tagsPath, importer.ImportTags},
	}

	for _, job := range jobs {
		if job.path == "" {
			continue
		}
		log.Printf("⏳ Importing %s from %s...", job.name, job.path)
		res, err := runJob(ctx, db, job.path, job.fn)
		if err != nil {
			log.Fatalf("❌ %s: %v", job.name, err)
		}
		log.Printf("✓ %s: %d parsed, %d inserted, %d skipped", job.name, res.Parsed, res.Inserted, res.Skipped)
	}
}

type importFunc func(context.Context, pkgdb.DBTX, io.Reader) (importer.Result, error)

func runJob(ctx context.Context, db *database.PostgresDB, path string, fn importFunc) (importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return fn(ctx, db.Pool, f)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
