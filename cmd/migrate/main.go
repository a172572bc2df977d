package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"strings"

	_ "github.com/lib/pq"

	"github.com/ledgerdesk/ledgerdesk/infrastructure/adapter/postgres"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "migrations", "directory holding NNN_name.up.sql / .down.sql files")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	migrator := postgres.NewMigrator(db, *dir, logger.NewLogrus(logger.LoggerConfig{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: "text",
	}))

	ctx := context.Background()
	switch strings.ToLower(*mode) {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	default:
		log.Fatalf("unknown mode %q, use up or down", *mode)
	}
	if err != nil {
		log.Fatalf("migration %s failed: %v", *mode, err)
	}
}
