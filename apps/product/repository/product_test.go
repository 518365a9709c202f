package repository_test

import (
	"context"
	"testing"

	"order-feedback/apps/product/model"
	"order-feedback/apps/product/repository"
	"order-feedback/pkg/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*repository.ProductRepository, context.Context) {
	db := testutil.SetupTestDB(t, &model.Product{})
	return repository.NewProductRepository(db), context.Background()
}

func create(t *testing.T, repo *repository.ProductRepository, name string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: decimal.RequireFromString("9.99"), Stock: stock}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestProductRepository_GetByID(t *testing.T) {
	repo, ctx := setup(t)
	p := create(t, repo, "Lamp", 3)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Lamp", got.Name)
	assert.True(t, decimal.RequireFromString("9.99").Equal(got.Price))

	missing, err := repo.GetByID(ctx, p.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepository_ListOrderedByName(t *testing.T) {
	repo, ctx := setup(t)
	create(t, repo, "Zebra mug", 1)
	create(t, repo, "Apron", 1)
	create(t, repo, "Kettle", 1)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Apron", "Kettle", "Zebra mug"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestProductRepository_DecreaseStockGuard(t *testing.T) {
	repo, ctx := setup(t)
	p := create(t, repo, "Chair", 5)

	ok, err := repo.DecreaseStock(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecreaseStock(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestProductRepository_DecreaseStockRejectsNonPositive(t *testing.T) {
	repo, ctx := setup(t)
	p := create(t, repo, "Stool", 5)

	for _, qty := range []int{0, -2} {
		ok, err := repo.DecreaseStock(ctx, p.ID, qty)
		assert.Error(t, err)
		assert.False(t, ok)
	}

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestProductRepository_AdjustStock(t *testing.T) {
	repo, ctx := setup(t)
	p := create(t, repo, "Desk", 2)

	ok, err := repo.AdjustStock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AdjustStock(ctx, p.ID, -6)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.AdjustStock(ctx, p.ID, -5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AdjustStock(ctx, p.ID+50, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductRepository_Delete(t *testing.T) {
	repo, ctx := setup(t)
	p := create(t, repo, "Shelf", 1)

	deleted, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	ok, err := repo.DecreaseStock(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "deleted products are not sellable")
}
