package list_low_stock

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
	filter *contracts.LowStockFilter
}

func (c *captureReadModel) ListLowStock(_ context.Context, filter *contracts.LowStockFilter) (*contracts.LowStockResult, error) {
	c.filter = filter
	return &contracts.LowStockResult{}, nil
}

func TestListLowStock_PageSizeBounds(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{0, defaultPageSize},
		{-3, defaultPageSize},
		{20, 20},
		{5000, maxPageSize},
	}

	for _, tt := range tests {
		rm := &captureReadModel{}
		_, err := NewQuery(rm).Execute(context.Background(), &Request{PageSize: tt.requested})
		require.NoError(t, err)
		assert.Equal(t, tt.want, rm.filter.PageSize)
	}
}

func TestListLowStock(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	testutil.SeedProducts(t, store,
		testutil.NewProductBuilder("soap").WithStock(2),
		testutil.NewProductBuilder("bread").WithStock(5),
		testutil.NewProductBuilder("milk").WithStock(40),
	)

	result, err := NewQuery(store.ReadModel()).Execute(ctx, &Request{})
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "soap", result.Products[0].ProductID)
	assert.Equal(t, "bread", result.Products[1].ProductID)
	assert.Equal(t, int64(2), result.TotalCount)
	assert.Empty(t, result.NextPageToken)
}
