package list_sales

import (
	"context"
	"errors"
	"time"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ErrInvalidDateRange is returned when DateFrom falls after DateTo.
var ErrInvalidDateRange = errors.New("date_from is after date_to")

// Request contains the date range and pagination parameters. DateFrom and
// DateTo name whole UTC days and are both inclusive; nil leaves that end open.
type Request struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	PageSize  int
	PageToken string
}

// Query handles the sales history query use case.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new list sales query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute lists sale headers, newest first.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.SaleListResult, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := &contracts.SaleFilter{
		PageSize:  pageSize,
		PageToken: req.PageToken,
	}
	if req.DateFrom != nil {
		filter.From = startOfDay(*req.DateFrom)
	}
	if req.DateTo != nil {
		filter.To = startOfDay(*req.DateTo).AddDate(0, 0, 1)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, ErrInvalidDateRange
	}

	return q.readModel.ListSales(ctx, filter)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
