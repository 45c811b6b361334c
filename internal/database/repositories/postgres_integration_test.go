package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"notably/internal/database"
	"notably/internal/database/models"
)

// Exercises the Postgres repositories against a real database. Requires a
// container runtime; skipped with -short.
func TestPostgresRepositoriesIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("notably"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	notes := NewNoteRepository(db)
	users := NewUserRepository(db)

	t.Run("note lifecycle", func(t *testing.T) {
		created, err := notes.Create(ctx, models.InsertNote{
			Title:   "T",
			Content: "C",
			Tags:    []string{"a", "b"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, created.Tags)
		assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

		updated, err := notes.Update(ctx, created.ID, models.UpdateNote{Content: ptr("C2")})
		require.NoError(t, err)
		assert.Equal(t, "T", updated.Title)
		assert.Equal(t, "C2", updated.Content)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		results, err := notes.Search(ctx, "c2")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, created.ID, results[0].ID)

		results, err = notes.Search(ctx, "")
		require.NoError(t, err)
		assert.Len(t, results, 1)

		deleted, err := notes.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = notes.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = notes.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNoteNotFound)
	})

	t.Run("username uniqueness", func(t *testing.T) {
		_, err := users.Create(ctx, models.InsertUser{Username: "ada", Password: "x"})
		require.NoError(t, err)

		_, err = users.Create(ctx, models.InsertUser{Username: "ada", Password: "y"})
		assert.ErrorIs(t, err, ErrUsernameTaken)

		found, err := users.GetByUsername(ctx, "ada")
		require.NoError(t, err)
		assert.Equal(t, "ada", found.Username)
	})
}
