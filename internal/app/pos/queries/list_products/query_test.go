package list_products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/testutil"
)

type captureReadModel struct {
	contracts.ReadModel
	filter *contracts.ProductFilter
}

func (c *captureReadModel) ListProducts(_ context.Context, filter *contracts.ProductFilter) (*contracts.ProductListResult, error) {
	c.filter = filter
	return &contracts.ProductListResult{}, nil
}

func TestListProducts_PageSizeBounds(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{0, defaultPageSize},
		{-1, defaultPageSize},
		{10, 10},
		{1000, maxPageSize},
	}

	for _, tt := range tests {
		rm := &captureReadModel{}
		_, err := NewQuery(rm).Execute(context.Background(), &Request{PageSize: tt.requested})
		require.NoError(t, err)
		assert.Equal(t, tt.want, rm.filter.PageSize)
	}
}

func TestListProducts_ShortSearchSkipsStorage(t *testing.T) {
	rm := &captureReadModel{}

	result, err := NewQuery(rm).Execute(context.Background(), &Request{Search: " s "})
	require.NoError(t, err)
	assert.Empty(t, result.Products)
	assert.Nil(t, rm.filter)

	_, err = NewQuery(rm).Execute(context.Background(), &Request{Search: "  so "})
	require.NoError(t, err)
	require.NotNil(t, rm.filter)
	assert.Equal(t, "so", rm.filter.Search)
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	testutil.SeedProducts(t, store,
		testutil.NewProductBuilder("soap").WithName("Bar Soap").WithStock(4),
		testutil.NewProductBuilder("liquid").WithName("Liquid Soap").WithStock(0),
		testutil.NewProductBuilder("bread").WithName("Bread").WithStock(7),
	)
	q := NewQuery(store.ReadModel())

	result, err := q.Execute(ctx, &Request{Search: "SOAP"})
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "soap", result.Products[0].ProductID)
	assert.Equal(t, "liquid", result.Products[1].ProductID)

	result, err = q.Execute(ctx, &Request{Search: "soap", InStockOnly: true})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "soap", result.Products[0].ProductID)

	result, err = q.Execute(ctx, &Request{CategoryID: testutil.CategoryID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.TotalCount)
	require.Len(t, result.Products, 3)
	assert.Equal(t, "soap", result.Products[0].ProductID)
	assert.Equal(t, "bread", result.Products[1].ProductID)
}
