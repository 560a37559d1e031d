package repo

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/models/m_outbox"
	"github.com/light-bringer/pos-service/internal/models/m_payment"
	"github.com/light-bringer/pos-service/internal/models/m_product"
	"github.com/light-bringer/pos-service/internal/models/m_sale"
	"github.com/light-bringer/pos-service/internal/models/m_sale_item"
	"github.com/light-bringer/pos-service/internal/pkg/query"
)

// ReadModelImpl implements ReadModel for Spanner.
type ReadModelImpl struct {
	client *spanner.Client
}

// NewReadModel creates a new ReadModel implementation.
func NewReadModel(client *spanner.Client) contracts.ReadModel {
	return &ReadModelImpl{
		client: client,
	}
}

// GetSale reads a sale, its items and its payments from one snapshot.
func (rm *ReadModelImpl) GetSale(ctx context.Context, saleID string) (*contracts.SaleDTO, error) {
	ro := rm.client.ReadOnlyTransaction()
	defer ro.Close()

	header, err := readSaleHeader(ctx, ro, saleID)
	if err != nil {
		return nil, err
	}

	items, err := readItems(ro.Read(ctx, m_sale_item.TableName, spanner.Key{saleID}.AsPrefix(), m_sale_item.Columns()))
	if err != nil {
		return nil, err
	}

	stmt := query.From(m_payment.TableName+"@{FORCE_INDEX="+m_payment.SaleIndex+"}").
		Select(m_payment.Columns()...).
		Where(query.Eq(m_payment.SaleID, saleID)).
		OrderBy(m_payment.CreatedAt, query.Asc).
		Build()
	payments, err := queryPayments(ro.Query(ctx, stmt))
	if err != nil {
		return nil, err
	}

	return SaleToDTO(header, items, payments), nil
}

// GetPaymentStatus joins a payment with its sale.
func (rm *ReadModelImpl) GetPaymentStatus(ctx context.Context, checkoutRequestID string) (*contracts.PaymentStatusDTO, error) {
	ro := rm.client.ReadOnlyTransaction()
	defer ro.Close()

	stmt := query.From(m_payment.TableName+"@{FORCE_INDEX="+m_payment.CheckoutIndex+"}").
		Select(m_payment.Columns()...).
		Where(query.Eq(m_payment.CheckoutRequestID, checkoutRequestID)).
		Limit(1).
		Build()
	payments, err := queryPayments(ro.Query(ctx, stmt))
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, domain.ErrPaymentNotFound
	}
	payment := payments[0]

	sale, err := readSaleHeader(ctx, ro, payment.SaleID)
	if err != nil {
		return nil, err
	}
	return PaymentStatusToDTO(payment, sale), nil
}

// ListLowStock pages through active products at or below their threshold.
func (rm *ReadModelImpl) ListLowStock(ctx context.Context, filter *contracts.LowStockFilter) (*contracts.LowStockResult, error) {
	offset, err := DecodePageToken(filter.PageToken)
	if err != nil {
		return nil, err
	}

	base := query.From(m_product.TableName).
		Where(query.Eq(m_product.IsActive, true)).
		Where(query.ColumnLte(m_product.StockQuantity, m_product.MinStockLevel))
	if filter.CategoryID != "" {
		base = base.Where(query.Eq(m_product.CategoryID, filter.CategoryID))
	}

	ro := rm.client.ReadOnlyTransaction()
	defer ro.Close()

	total, err := countRows(ctx, ro, base)
	if err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}

	stmt := base.Select(m_product.Columns()...).
		OrderBy(m_product.StockQuantity, query.Asc).
		OrderBy(m_product.ProductID, query.Asc).
		Limit(int64(filter.PageSize)).
		Offset(offset).
		Build()

	iter := ro.Query(ctx, stmt)
	defer iter.Stop()

	result := &contracts.LowStockResult{TotalCount: total}
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate products: %w", err)
		}
		var data m_product.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse product: %w", err)
		}
		result.Products = append(result.Products, ProductToDTO(&data))
	}

	next := offset + int64(len(result.Products))
	if next < total && len(result.Products) > 0 {
		result.NextPageToken = EncodePageToken(next)
	}
	return result, nil
}

// GetProduct reads one catalog row, active or not.
func (rm *ReadModelImpl) GetProduct(ctx context.Context, productID string) (*contracts.ProductDTO, error) {
	row, err := rm.client.Single().ReadRow(ctx, m_product.TableName, spanner.Key{productID}, m_product.Columns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}
	var data m_product.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}
	return ProductToDTO(&data), nil
}

// ListProducts pages through the catalog ordered by name.
func (rm *ReadModelImpl) ListProducts(ctx context.Context, filter *contracts.ProductFilter) (*contracts.ProductListResult, error) {
	offset, err := DecodePageToken(filter.PageToken)
	if err != nil {
		return nil, err
	}

	base := query.From(m_product.TableName)
	if !filter.IncludeInactive {
		base = base.Where(query.Eq(m_product.IsActive, true))
	}
	if filter.CategoryID != "" {
		base = base.Where(query.Eq(m_product.CategoryID, filter.CategoryID))
	}
	if filter.InStockOnly {
		base = base.Where(query.Gt(m_product.StockQuantity, int64(0)))
	}
	if filter.Search != "" {
		base = base.Where(query.ContainsFold(filter.Search, m_product.Name, m_product.SKU))
	}

	ro := rm.client.ReadOnlyTransaction()
	defer ro.Close()

	total, err := countRows(ctx, ro, base)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	stmt := base.Select(m_product.Columns()...).
		OrderBy(m_product.Name, query.Asc).
		OrderBy(m_product.ProductID, query.Asc).
		Limit(int64(filter.PageSize)).
		Offset(offset).
		Build()

	iter := ro.Query(ctx, stmt)
	defer iter.Stop()

	result := &contracts.ProductListResult{TotalCount: total}
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate products: %w", err)
		}
		var data m_product.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse product: %w", err)
		}
		result.Products = append(result.Products, ProductToDTO(&data))
	}

	next := offset + int64(len(result.Products))
	if next < total && len(result.Products) > 0 {
		result.NextPageToken = EncodePageToken(next)
	}
	return result, nil
}

// ListSales pages through sale headers, newest first.
func (rm *ReadModelImpl) ListSales(ctx context.Context, filter *contracts.SaleFilter) (*contracts.SaleListResult, error) {
	offset, err := DecodePageToken(filter.PageToken)
	if err != nil {
		return nil, err
	}

	base := query.From(m_sale.TableName)
	if !filter.From.IsZero() {
		base = base.Where(query.Gte(m_sale.CreatedAt, filter.From))
	}
	if !filter.To.IsZero() {
		base = base.Where(query.Lt(m_sale.CreatedAt, filter.To))
	}

	ro := rm.client.ReadOnlyTransaction()
	defer ro.Close()

	total, err := countRows(ctx, ro, base)
	if err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	stmt := base.Select(m_sale.Columns()...).
		OrderBy(m_sale.CreatedAt, query.Desc).
		OrderBy(m_sale.SaleNumber, query.Desc).
		Limit(int64(filter.PageSize)).
		Offset(offset).
		Build()

	iter := ro.Query(ctx, stmt)
	defer iter.Stop()

	result := &contracts.SaleListResult{TotalCount: total}
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate sales: %w", err)
		}
		var data m_sale.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse sale: %w", err)
		}
		result.Sales = append(result.Sales, SaleToDTO(&data, nil, nil))
	}

	next := offset + int64(len(result.Sales))
	if next < total && len(result.Sales) > 0 {
		result.NextPageToken = EncodePageToken(next)
	}
	return result, nil
}

// ListEvents retrieves events from the outbox, newest first.
func (rm *ReadModelImpl) ListEvents(ctx context.Context, filter *contracts.EventFilter) ([]*contracts.OutboxEvent, error) {
	q := query.From(m_outbox.TableName).Select(m_outbox.Columns()...)
	if filter.EventType != "" {
		q = q.Where(query.Eq(m_outbox.EventType, filter.EventType))
	}
	if filter.AggregateID != "" {
		q = q.Where(query.Eq(m_outbox.AggregateID, filter.AggregateID))
	}
	if filter.Status != "" {
		q = q.Where(query.Eq(m_outbox.Status, filter.Status))
	}
	stmt := q.OrderBy(m_outbox.CreatedAt, query.Desc).Limit(int64(filter.Limit)).Build()

	iter := rm.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var events []*contracts.OutboxEvent
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate events: %w", err)
		}
		var data m_outbox.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, OutboxFromData(&data))
	}
	return events, nil
}

// PaymentStatusToDTO combines a payment row with its sale header.
func PaymentStatusToDTO(p *m_payment.Data, sale *m_sale.Data) *contracts.PaymentStatusDTO {
	return &contracts.PaymentStatusDTO{
		CheckoutRequestID: p.CheckoutRequestID,
		Status:            p.Status,
		ReceiptNumber:     p.ReceiptNumber.StringVal,
		ResultDesc:        p.ResultDesc.StringVal,
		Amount:            domain.NewMoneyFromRat(&p.Amount),
		SaleID:            sale.SaleID,
		SaleNumber:        sale.SaleNumber,
		SaleStatus:        sale.Status,
	}
}

// EncodePageToken hides the row offset behind an opaque token.
func EncodePageToken(offset int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(offset, 10)))
}

// DecodePageToken reverses EncodePageToken. An empty token is the first page.
func DecodePageToken(token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, contracts.ErrInvalidPageToken
	}
	offset, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || offset < 0 {
		return 0, contracts.ErrInvalidPageToken
	}
	return offset, nil
}

func countRows(ctx context.Context, ro *spanner.ReadOnlyTransaction, base *query.Builder) (int64, error) {
	iter := ro.Query(ctx, base.Count().Build())
	defer iter.Stop()
	row, err := iter.Next()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := row.Columns(&total); err != nil {
		return 0, fmt.Errorf("failed to parse count: %w", err)
	}
	return total, nil
}

func readSaleHeader(ctx context.Context, ro *spanner.ReadOnlyTransaction, saleID string) (*m_sale.Data, error) {
	row, err := ro.ReadRow(ctx, m_sale.TableName, spanner.Key{saleID}, m_sale.Columns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to read sale: %w", err)
	}
	var header m_sale.Data
	if err := row.ToStruct(&header); err != nil {
		return nil, fmt.Errorf("failed to parse sale: %w", err)
	}
	return &header, nil
}

func queryPayments(iter *spanner.RowIterator) ([]*m_payment.Data, error) {
	defer iter.Stop()

	var payments []*m_payment.Data
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate payments: %w", err)
		}
		var data m_payment.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse payment: %w", err)
		}
		payments = append(payments, &data)
	}
	return payments, nil
}
