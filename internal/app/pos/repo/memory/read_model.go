package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/repo"
	"github.com/light-bringer/pos-service/internal/models/m_inventory_tx"
	"github.com/light-bringer/pos-service/internal/models/m_outbox"
	"github.com/light-bringer/pos-service/internal/models/m_payment"
	"github.com/light-bringer/pos-service/internal/models/m_price_history"
	"github.com/light-bringer/pos-service/internal/models/m_product"
	"github.com/light-bringer/pos-service/internal/models/m_sale"
)

// ReadModel returns the query side of the ledger.
func (s *Store) ReadModel() contracts.ReadModel {
	return &readModel{s: s}
}

type readModel struct {
	s *Store
}

func (rm *readModel) GetSale(_ context.Context, saleID string) (*contracts.SaleDTO, error) {
	var dto *contracts.SaleDTO
	rm.s.read(func(t *tables) {
		header, ok := t.sales[saleID]
		if !ok {
			return
		}
		dto = repo.SaleToDTO(&header, itemRows(t.saleItems[saleID]), paymentsForSale(t, saleID))
	})
	if dto == nil {
		return nil, domain.ErrSaleNotFound
	}
	return dto, nil
}

func (rm *readModel) GetPaymentStatus(_ context.Context, checkoutRequestID string) (*contracts.PaymentStatusDTO, error) {
	var (
		payment m_payment.Data
		sale    m_sale.Data
		found   bool
	)
	rm.s.read(func(t *tables) {
		id, ok := t.checkouts[checkoutRequestID]
		if !ok {
			return
		}
		payment = t.payments[id]
		sale, found = t.sales[payment.SaleID]
	})
	if !found {
		return nil, domain.ErrPaymentNotFound
	}
	return repo.PaymentStatusToDTO(&payment, &sale), nil
}

func (rm *readModel) ListLowStock(_ context.Context, filter *contracts.LowStockFilter) (*contracts.LowStockResult, error) {
	offset, err := repo.DecodePageToken(filter.PageToken)
	if err != nil {
		return nil, err
	}

	var rows []m_product.Data
	rm.s.read(func(t *tables) {
		for _, p := range t.products {
			if !p.IsActive || p.StockQuantity > p.MinStockLevel {
				continue
			}
			if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
				continue
			}
			rows = append(rows, p)
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StockQuantity != rows[j].StockQuantity {
			return rows[i].StockQuantity < rows[j].StockQuantity
		}
		return rows[i].ProductID < rows[j].ProductID
	})

	start, end, next := page(int64(len(rows)), offset, filter.PageSize)
	result := &contracts.LowStockResult{TotalCount: int64(len(rows)), NextPageToken: next}
	for i := start; i < end; i++ {
		result.Products = append(result.Products, repo.ProductToDTO(&rows[i]))
	}
	return result, nil
}

func (rm *readModel) GetProduct(_ context.Context, productID string) (*contracts.ProductDTO, error) {
	var (
		row   m_product.Data
		found bool
	)
	rm.s.read(func(t *tables) {
		row, found = t.products[productID]
	})
	if !found {
		return nil, domain.ErrProductNotFound
	}
	return repo.ProductToDTO(&row), nil
}

func (rm *readModel) ListProducts(_ context.Context, filter *contracts.ProductFilter) (*contracts.ProductListResult, error) {
	offset, err := repo.DecodePageToken(filter.PageToken)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(filter.Search)
	var rows []m_product.Data
	rm.s.read(func(t *tables) {
		for _, p := range t.products {
			if !filter.IncludeInactive && !p.IsActive {
				continue
			}
			if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
				continue
			}
			if filter.InStockOnly && p.StockQuantity <= 0 {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.SKU), search) {
				continue
			}
			rows = append(rows, p)
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ProductID < rows[j].ProductID
	})

	start, end, next := page(int64(len(rows)), offset, filter.PageSize)
	result := &contracts.ProductListResult{TotalCount: int64(len(rows)), NextPageToken: next}
	for i := start; i < end; i++ {
		result.Products = append(result.Products, repo.ProductToDTO(&rows[i]))
	}
	return result, nil
}

func (rm *readModel) ListSales(_ context.Context, filter *contracts.SaleFilter) (*contracts.SaleListResult, error) {
	offset, err := repo.DecodePageToken(filter.PageToken)
	if err != nil {
		return nil, err
	}

	var rows []m_sale.Data
	rm.s.read(func(t *tables) {
		for _, sale := range t.sales {
			if !filter.From.IsZero() && sale.CreatedAt.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && !sale.CreatedAt.Before(filter.To) {
				continue
			}
			rows = append(rows, sale)
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].SaleNumber > rows[j].SaleNumber
	})

	start, end, next := page(int64(len(rows)), offset, filter.PageSize)
	result := &contracts.SaleListResult{TotalCount: int64(len(rows)), NextPageToken: next}
	for i := start; i < end; i++ {
		result.Sales = append(result.Sales, repo.SaleToDTO(&rows[i], nil, nil))
	}
	return result, nil
}

// page bounds one page of total rows and the token for the page after it.
func page(total, offset int64, size int) (start, end int64, next string) {
	if offset >= total {
		return total, total, ""
	}
	end = total
	if size > 0 && offset+int64(size) < total {
		end = offset + int64(size)
	}
	if end < total {
		next = repo.EncodePageToken(end)
	}
	return offset, end, next
}

func (rm *readModel) ListEvents(_ context.Context, filter *contracts.EventFilter) ([]*contracts.OutboxEvent, error) {
	var rows []outboxRow
	rm.s.read(func(t *tables) {
		for id, e := range t.outbox {
			if filter.EventType != "" && e.EventType != filter.EventType {
				continue
			}
			if filter.AggregateID != "" && e.AggregateID != filter.AggregateID {
				continue
			}
			if filter.Status != "" && e.Status != filter.Status {
				continue
			}
			rows = append(rows, outboxRow{data: e, seq: t.outboxSeq[id]})
		}
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	return limitEvents(rows, filter.Limit), nil
}

// Outbox returns the outbox repository.
func (s *Store) Outbox() contracts.OutboxRepository {
	return &outboxRepo{s: s, model: m_outbox.NewModel()}
}

type outboxRepo struct {
	s     *Store
	model *m_outbox.Model
}

type outboxRow struct {
	data m_outbox.Data
	seq  int64
}

func (r *outboxRepo) EnrichEvent(event domain.DomainEvent, payload string) *contracts.OutboxEvent {
	return repo.EnrichEvent(event, payload, r.s.clock.Now())
}

func (r *outboxRepo) InsertMut(event *contracts.OutboxEvent) *spanner.Mutation {
	data := *repo.OutboxToData(event)
	return r.s.record(r.model.InsertMut(&data), func(t *tables) error {
		if _, ok := t.outbox[data.EventID]; ok {
			return status.Errorf(codes.AlreadyExists, "outbox_events: row %s already exists", data.EventID)
		}
		t.nextSeq++
		t.outbox[data.EventID] = data
		t.outboxSeq[data.EventID] = t.nextSeq
		return nil
	})
}

func (r *outboxRepo) ListPending(_ context.Context, maxRetries int64, limit int) ([]*contracts.OutboxEvent, error) {
	var rows []outboxRow
	r.s.read(func(t *tables) {
		for id, e := range t.outbox {
			if e.Status != m_outbox.StatusPending && e.Status != m_outbox.StatusFailed {
				continue
			}
			if e.RetryCount >= maxRetries {
				continue
			}
			rows = append(rows, outboxRow{data: e, seq: t.outboxSeq[id]})
		}
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	return limitEvents(rows, limit), nil
}

func (r *outboxRepo) MarkMut(event *contracts.OutboxEvent, publishErr error, now time.Time) *spanner.Mutation {
	state, retries, errMsg := repo.MarkOutcome(event, publishErr)
	id := event.EventID
	return r.s.record(r.model.MarkMut(id, state, now, retries, errMsg), func(t *tables) error {
		row, ok := t.outbox[id]
		if !ok {
			return status.Errorf(codes.NotFound, "outbox_events: row %s not found", id)
		}
		row.Status = state
		row.ProcessedAt = spanner.NullTime{Time: now, Valid: true}
		row.RetryCount = retries
		row.ErrorMessage = errMsg
		t.outbox[id] = row
		return nil
	})
}

func (r *outboxRepo) DeleteProcessedBefore(ctx context.Context, cutoff time.Time, maxRetries int64) (int64, error) {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, e := range r.s.t.outbox {
		if !e.ProcessedAt.Valid || !e.ProcessedAt.Time.Before(cutoff) {
			continue
		}
		done := e.Status == m_outbox.StatusCompleted
		exhausted := e.Status == m_outbox.StatusFailed && e.RetryCount >= maxRetries
		if done || exhausted {
			delete(r.s.t.outbox, id)
			delete(r.s.t.outboxSeq, id)
			deleted++
		}
	}
	return deleted, nil
}

func limitEvents(rows []outboxRow, limit int) []*contracts.OutboxEvent {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]*contracts.OutboxEvent, 0, len(rows))
	for i := range rows {
		out = append(out, repo.OutboxFromData(&rows[i].data))
	}
	return out
}

// InventoryFor lists a product's ledger rows in commit order.
func (s *Store) InventoryFor(productID string) []m_inventory_tx.Data {
	var out []m_inventory_tx.Data
	s.read(func(t *tables) {
		for _, row := range t.inventory {
			if row.ProductID == productID {
				out = append(out, row)
			}
		}
	})
	return out
}

// PriceHistoryFor lists a product's price changes in commit order.
func (s *Store) PriceHistoryFor(productID string) []m_price_history.Data {
	var out []m_price_history.Data
	s.read(func(t *tables) {
		for _, row := range t.priceHistory {
			if row.ProductID == productID {
				out = append(out, row)
			}
		}
	})
	return out
}
