package list_low_stock

import (
	"context"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Request contains filtering and pagination parameters.
type Request struct {
	CategoryID string
	PageSize   int
	PageToken  string
}

// Query handles the list low stock query use case.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new list low stock query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute lists active products at or below their minimum stock level,
// lowest stock first.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.LowStockResult, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := &contracts.LowStockFilter{
		CategoryID: req.CategoryID,
		PageSize:   pageSize,
		PageToken:  req.PageToken,
	}

	return q.readModel.ListLowStock(ctx, filter)
}
