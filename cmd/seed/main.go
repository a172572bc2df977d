package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/adapter/postgres"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/password"
)

// seed inserts a regular demo user. Running it twice leaves the existing
// user untouched.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	fullname := getenvDefault("SEED_USER_NAME", "Demo User")
	email := getenvDefault("SEED_USER_EMAIL", "demo@example.com")
	userPassword := getenvDefault("SEED_USER_PASSWORD", "demo-password")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	ctx := context.Background()
	repo := postgres.NewUserRepositoryAdapter(db)

	if existing, err := repo.FindByEmail(ctx, email); err == nil {
		log.Printf("User already seeded: email=%s id=%d", existing.Email, existing.ID)
		return
	} else if !errors.Is(err, outbound.ErrUserNotFound) {
		log.Fatalf("failed to look up user: %v", err)
	}

	hash, err := password.NewBcryptPasswordService(10).HashPassword(userPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	user := entity.NewUser(fullname, email, hash, entity.RoleUser)
	if err := repo.Create(ctx, user); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	log.Printf("Seeded user: email=%s role=%s id=%d", user.Email, user.Role, user.ID)
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
