package product_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/catalog_api/internal/infra"
	"github.com/shopfront/catalog_api/internal/product"
)

// newPostgresRepository connects to CATALOG_TEST_DATABASE_URL and applies the
// migrations. Owners are random per test so runs never see each other's rows.
func newPostgresRepository(t *testing.T) (*product.PostgresRepository, string, string) {
	t.Helper()
	url := os.Getenv("CATALOG_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CATALOG_TEST_DATABASE_URL not set - skipping postgres integration test")
	}
	ctx := context.Background()
	pool, err := infra.NewPostgresPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, infra.Migrate(ctx, pool))
	return product.NewPostgresRepository(pool), "owner-" + uuid.NewString(), "owner-" + uuid.NewString()
}

func TestPostgresUpdateCounts(t *testing.T) {
	repo, owner, other := newPostgresRepository(t)
	ctx := context.Background()

	p, err := repo.Create(ctx, product.Product{OwnerID: owner, Fields: map[string]any{"name": "Laptop", "price": "999"}})
	require.NoError(t, err)

	res, err := repo.Update(ctx, owner, p.ID, map[string]any{"price": "899"})
	require.NoError(t, err)
	assert.Equal(t, product.UpdateResult{Matched: 1, Modified: 1}, res)

	res, err = repo.Update(ctx, owner, p.ID, map[string]any{"price": "899"})
	require.NoError(t, err)
	assert.Equal(t, product.UpdateResult{Matched: 1, Modified: 0}, res)

	res, err = repo.Update(ctx, other, p.ID, map[string]any{"price": "1"})
	require.NoError(t, err)
	assert.Equal(t, product.UpdateResult{}, res)

	res, err = repo.Update(ctx, owner, "not-a-uuid", map[string]any{"price": "1"})
	require.NoError(t, err)
	assert.Equal(t, product.UpdateResult{}, res)

	got, err := repo.Get(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "899", got.Fields["price"])
	assert.Equal(t, "Laptop", got.Fields["name"])
}

func TestPostgresOwnerScoping(t *testing.T) {
	repo, owner, other := newPostgresRepository(t)
	ctx := context.Background()

	p, err := repo.Create(ctx, product.Product{OwnerID: owner, Fields: map[string]any{"name": "Pen"}})
	require.NoError(t, err)

	_, err = repo.Get(ctx, other, p.ID)
	assert.ErrorIs(t, err, product.ErrNotFound)
	_, err = repo.Get(ctx, owner, "not-a-uuid")
	assert.ErrorIs(t, err, product.ErrNotFound)

	list, err := repo.ListByOwner(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	del, err := repo.Delete(ctx, other, p.ID)
	require.NoError(t, err)
	assert.Equal(t, product.DeleteResult{}, del)

	del, err = repo.Delete(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, product.DeleteResult{Deleted: 1}, del)
}

func TestPostgresSearchIsLiteralOverStrings(t *testing.T) {
	repo, owner, _ := newPostgresRepository(t)
	ctx := context.Background()

	for _, fields := range []map[string]any{
		{"name": "100% cotton", "company": "Loom"},
		{"name": "Shirt", "company": "A_B Textiles"},
		{"name": 100, "category": true},
	} {
		_, err := repo.Create(ctx, product.Product{OwnerID: owner, Fields: fields})
		require.NoError(t, err)
	}

	cases := map[string]int{
		"%":      1,
		"_":      1,
		"COTTON": 1,
		"100":    1,
		"true":   0,
		"x":      1,
	}
	for key, want := range cases {
		found, err := repo.Search(ctx, owner, key)
		require.NoError(t, err, key)
		assert.Len(t, found, want, key)
	}
}
