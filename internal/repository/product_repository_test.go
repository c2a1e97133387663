package repository

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts PostgreSQL, applies migrations and returns a pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{MaxConnections: 10, MinConnections: 1}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(pool, zerolog.Nop()))

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return pool
}

func TestPostgresRepository(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewPostgresRepository(pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("Empty table", func(t *testing.T) {
		products, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	t.Run("SaveAll then LoadAll", func(t *testing.T) {
		require.NoError(t, repo.SaveAll(ctx, model.SampleProducts()))

		products, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.SampleProducts(), products)
	})

	t.Run("Insert assigns next id and keeps createdAt", func(t *testing.T) {
		p := &model.Product{
			Name:      "Desk Lamp",
			Price:     15.5,
			Category:  "Home",
			CreatedAt: "2024-05-01T10:00:00.123Z",
		}
		require.NoError(t, repo.Insert(ctx, p))
		assert.Equal(t, 4, p.ID)

		products, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 4)
		assert.Equal(t, *p, products[3])
	})

	t.Run("SaveAll replaces previous rows", func(t *testing.T) {
		require.NoError(t, repo.SaveAll(ctx, []model.Product{{ID: 10, Name: "Only", Price: 1, Category: "C"}}))

		products, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, 10, products[0].ID)
	})

	t.Run("Invalid createdAt is rejected", func(t *testing.T) {
		err := repo.Insert(ctx, &model.Product{Name: "Bad", Price: 1, Category: "C", CreatedAt: "yesterday"})
		assert.Error(t, err)
	})

	t.Run("Concurrent inserts get distinct ids", func(t *testing.T) {
		require.NoError(t, repo.SaveAll(ctx, nil))

		const writers = 10
		var wg sync.WaitGroup
		ids := make([]int, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p := &model.Product{Name: "Concurrent", Price: 1, Category: "Test"}
				assert.NoError(t, repo.Insert(ctx, p))
				ids[i] = p.ID
			}(i)
		}
		wg.Wait()

		sort.Ints(ids)
		for i, id := range ids {
			assert.Equal(t, i+1, id)
		}
	})
}

func TestPostgresRepository_MissingTable(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	_, err := pool.Exec(ctx, `DROP TABLE products`)
	require.NoError(t, err)

	repo := NewPostgresRepository(pool, zerolog.Nop())
	_, err = repo.LoadAll(ctx)
	assert.Error(t, err)
}

func TestPostgresRepository_QueryFailureKeepsRows(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresRepository(pool, zerolog.Nop())

	require.NoError(t, repo.SaveAll(ctx, []model.Product{
		{ID: 1, Name: "Real", Price: 10, Category: "C"},
		{ID: 7, Name: "Also real", Price: 20, Category: "C"},
	}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := repo.LoadAll(cancelled)
	require.Error(t, err)

	products, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 7, products[1].ID)
}
