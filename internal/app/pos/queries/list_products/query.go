package list_products

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200

	// minSearchLen keeps a single keystroke from matching the whole catalog.
	minSearchLen = 2
)

// Request contains filtering and pagination parameters.
type Request struct {
	Search          string
	CategoryID      string
	InStockOnly     bool
	IncludeInactive bool
	PageSize        int
	PageToken       string
}

// Query handles the list products query use case.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new list products query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute lists catalog products ordered by name. A search term shorter than
// two characters returns an empty page without touching storage.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.ProductListResult, error) {
	search := strings.TrimSpace(req.Search)
	if search != "" && utf8.RuneCountInString(search) < minSearchLen {
		return &contracts.ProductListResult{}, nil
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := &contracts.ProductFilter{
		Search:          search,
		CategoryID:      req.CategoryID,
		InStockOnly:     req.InStockOnly,
		IncludeInactive: req.IncludeInactive,
		PageSize:        pageSize,
		PageToken:       req.PageToken,
	}

	return q.readModel.ListProducts(ctx, filter)
}
