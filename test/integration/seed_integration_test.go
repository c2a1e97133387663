package integration

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"product-catalog/internal/model"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyS3 holds one object and fails the first failGets reads.
type flakyS3 struct {
	mu       sync.Mutex
	data     []byte
	failGets int
}

func (f *flakyS3) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGets > 0 {
		f.failGets--
		return nil, &smithy.GenericAPIError{Code: "SlowDown", Message: "reduce your request rate"}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(f.data)),
		ETag: aws.String(`"v1"`),
	}, nil
}

func (f *flakyS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = data
	return &s3.PutObjectOutput{}, nil
}

var existingCatalog = []model.Product{
	{ID: 1, Name: "Real", Price: 10, Category: "C"},
	{ID: 7, Name: "Also real", Price: 20, Category: "C"},
}

// assertSeedKeepsCatalog runs a seed while the backend read is failing and
// checks the stored catalog afterwards.
func assertSeedKeepsCatalog(t *testing.T, repo repository.ProductRepository, restore func()) {
	t.Helper()
	ctx := context.Background()

	svc := service.NewProductService(repo, zerolog.Nop())
	seeded, err := svc.Seed(ctx)
	require.Error(t, err)
	assert.False(t, seeded)

	restore()

	products, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(existingCatalog))
	assert.Equal(t, "Real", products[0].Name)
	assert.Equal(t, 7, products[1].ID)
}

func TestSeed_BackendReadFailureKeepsCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	t.Run("s3", func(t *testing.T) {
		fake := &flakyS3{}
		repo := repository.NewS3Repository(fake, "catalog", "products.json", repository.LenientEmptyOnReadFailure, zerolog.Nop())
		require.NoError(t, repo.SaveAll(context.Background(), existingCatalog))
		fake.failGets = 1

		assertSeedKeepsCatalog(t, repo, func() {})
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		repo := repository.NewRedisRepository(client, "catalog:products", repository.LenientEmptyOnReadFailure, zerolog.Nop())
		require.NoError(t, repo.SaveAll(context.Background(), existingCatalog))
		mr.SetError("LOADING Redis is loading the dataset in memory")

		assertSeedKeepsCatalog(t, repo, func() { mr.SetError("") })
	})

	t.Run("postgres", func(t *testing.T) {
		testDB := SetupTestDB(t)
		ctx := context.Background()

		repo := repository.NewPostgresRepository(testDB.Pool, zerolog.Nop())
		require.NoError(t, repo.SaveAll(ctx, existingCatalog))
		_, err := testDB.Pool.Exec(ctx, `ALTER TABLE products RENAME TO products_offline`)
		require.NoError(t, err)

		assertSeedKeepsCatalog(t, repo, func() {
			_, err := testDB.Pool.Exec(ctx, `ALTER TABLE products_offline RENAME TO products`)
			require.NoError(t, err)
		})
	})
}
