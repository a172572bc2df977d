package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
}

// openTestDB connects to TEST_DATABASE_URL and migrates it, or skips.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	require.NoError(t, NewMigrator(db, filepath.Join("..", "..", "..", "migrations"), log).Up(context.Background()))

	_, err = db.Exec(`TRUNCATE users RESTART IDENTITY`)
	require.NoError(t, err)
	return db
}

func TestUserRepositoryIntegration(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepositoryAdapter(db)
	ctx := context.Background()

	alice := entity.NewUser("Alice", "Alice@Example.com", "hash", entity.RoleUser)
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotZero(t, alice.ID)

	dup := entity.NewUser("Alice 2", "alice@example.com", "hash", entity.RoleUser)
	assert.ErrorIs(t, repo.Create(ctx, dup), outbound.ErrUserAlreadyExists)

	found, err := repo.FindByEmail(ctx, " ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	admin := entity.NewUser("Root", "root@example.com", "hash", entity.RoleAdmin)
	require.NoError(t, repo.Create(ctx, admin))

	found.Fullname = "Alice Cooper"
	require.NoError(t, repo.Update(ctx, found))
	byID, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", byID.Fullname)

	users, total, err := repo.FindAll(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 1)

	matches, total, err := repo.Search(ctx, "COOPER", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, matches, 1)
	assert.Equal(t, alice.ID, matches[0].ID)

	admins, err := repo.FindByRole(ctx, entity.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@example.com", admins[0].Email)

	count, err := repo.CountByRole(ctx, entity.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Delete(ctx, alice.ID))
	_, err = repo.FindByID(ctx, alice.ID)
	assert.ErrorIs(t, err, outbound.ErrUserNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), outbound.ErrUserNotFound)
}
