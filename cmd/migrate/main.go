package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kilimo-tech/farmgate-pos/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/migrate/main.go <migration_file>")
	}

	migrationFile := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✓ Database connection established")

	// Find migration file, trying relative to the project root too
	var migrationPath string
	if _, err := os.Stat(migrationFile); err == nil {
		migrationPath = migrationFile
	} else {
		wd, _ := os.Getwd()
		possiblePaths := []string{
			filepath.Join(wd, migrationFile),
			filepath.Join(wd, "..", migrationFile),
			filepath.Join(wd, "..", "..", migrationFile),
		}
		found := false
		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				migrationPath = path
				found = true
				break
			}
		}
		if !found {
			log.Fatalf("Migration file not found: %s (tried: %v)", migrationFile, possiblePaths)
		}
	}

	log.Printf("Reading migration file: %s", migrationPath)
	sqlContent, err := os.ReadFile(migrationPath)
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	log.Println("Executing migration...")
	if _, err := dbpool.Exec(ctx, string(sqlContent)); err != nil {
		log.Fatalf("Failed to execute migration: %v", err)
	}

	log.Println("✓ Migration completed successfully")
}
