package integration

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/handler"
	"product-catalog/internal/metrics"
	"product-catalog/internal/repository"
	"product-catalog/internal/router"
	"product-catalog/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts PostgreSQL in a container and applies the migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(pool, logger); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes all products.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "DELETE FROM products"); err != nil {
		t.Fatalf("failed to clean products: %v", err)
	}
}

// newFileStore returns a file repository in a fresh temp dir and its path.
func newFileStore(t *testing.T) (repository.ProductRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "products.json")
	return repository.NewFileRepository(path, repository.LenientEmptyOnReadFailure, zerolog.Nop()), path
}

// newRedisStore returns a redis repository backed by miniredis.
func newRedisStore(t *testing.T) repository.ProductRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewRedisRepository(client, "catalog:products", repository.LenientEmptyOnReadFailure, zerolog.Nop())
}

// startApp performs the same startup sequence as the server binary:
// seed the store, then build the router.
func startApp(t *testing.T, repo repository.ProductRepository) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	m := metrics.New()

	svc := service.NewProductService(repo, logger, service.WithCreatedCounter(m.ProductsCreated))
	if _, err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	return router.New(handler.NewProductHandler(svc, logger), m, logger)
}
