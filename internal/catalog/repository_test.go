package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/quickbites/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *catalog.Repository {
	// Use in-memory database for tests
	repo, err := catalog.NewRepository(":memory:")
	require.NoError(t, err)

	require.NoError(t, repo.RunMigrations("./migrations"))
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestList_ReturnsSeedItemsSortedByName(t *testing.T) {
	repo := setupTestDB(t)

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	assert.Equal(t, []string{"Beef Burger", "Chicken Sandwich", "Fried Rice", "Jollof Rice"}, names)
	assert.True(t, items[0].BasePrice.Equal(decimal.NewFromInt(1000)))
}

func TestList_StableAcrossCalls(t *testing.T) {
	repo := setupTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, err := repo.List(ctx)
	require.NoError(t, err)
	second, err := repo.List(ctx)
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestGetByID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	items, err := repo.List(ctx)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, items[1].Name, got.Name)
	assert.True(t, items[1].BasePrice.Equal(got.BasePrice))
}

func TestGetByID_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	got, err := repo.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, catalog.ErrItemNotFound)
	assert.Nil(t, got)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := setupTestDB(t)

	assert.NoError(t, repo.RunMigrations("./migrations"))
}
