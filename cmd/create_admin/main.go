package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/application/usecase/user_management"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/adapter/postgres"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/config"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/password"
)

// create_admin is the only way to mint an admin account.
func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	pass := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (min 8 characters)")
	name := flag.String("name", getenv("ADMIN_NAME", "Administrator"), "admin full name")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "create-admin",
	})
	uc := user_management.NewCreateAdminUseCase(
		postgres.NewUserRepositoryAdapter(db),
		password.NewBcryptPasswordService(cfg.BcryptCost),
		structuredLogger,
	)

	admin, err := uc.Execute(ctx, inbound.CreateAdminRequest{
		Fullname: *name,
		Email:    *email,
		Password: *pass,
	})
	if err != nil {
		log.Fatalf("Failed to create admin user: %s", apperror.PublicMessage(err))
	}

	log.Printf("Admin user created: id=%d email=%s", admin.ID, admin.Email)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
