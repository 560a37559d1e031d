package repo

import (
	"encoding/json"
	"fmt"
	"math/big"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/models/m_category"
	"github.com/light-bringer/pos-service/internal/models/m_customer"
	"github.com/light-bringer/pos-service/internal/models/m_discount"
	"github.com/light-bringer/pos-service/internal/models/m_inventory_tx"
	"github.com/light-bringer/pos-service/internal/models/m_outbox"
	"github.com/light-bringer/pos-service/internal/models/m_payment"
	"github.com/light-bringer/pos-service/internal/models/m_price_history"
	"github.com/light-bringer/pos-service/internal/models/m_product"
	"github.com/light-bringer/pos-service/internal/models/m_sale"
	"github.com/light-bringer/pos-service/internal/models/m_sale_item"
)

// Row codecs shared by the Spanner repositories and the in-memory ledger.

func ProductToData(p *domain.Product) *m_product.Data {
	return &m_product.Data{
		ProductID:     p.ID(),
		Name:          p.Name(),
		Description:   p.Description(),
		CategoryID:    p.CategoryID(),
		SKU:           p.SKU(),
		Price:         *p.Price().Rat(),
		CostPrice:     *p.CostPrice().Rat(),
		StockQuantity: p.StockQuantity(),
		MinStockLevel: p.MinStockLevel(),
		IsActive:      p.IsActive(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func ProductFromData(d *m_product.Data) *domain.Product {
	return domain.ReconstructProduct(
		d.ProductID,
		d.Name,
		d.Description,
		d.CategoryID,
		d.SKU,
		domain.NewMoneyFromRat(&d.Price),
		domain.NewMoneyFromRat(&d.CostPrice),
		d.StockQuantity,
		d.MinStockLevel,
		d.IsActive,
		d.CreatedAt,
		d.UpdatedAt,
	)
}

// ProductUpdates lists the columns changed on p. It is empty when p is clean.
func ProductUpdates(p *domain.Product) map[string]interface{} {
	changes := p.Changes()
	updates := make(map[string]interface{})
	if !changes.HasChanges() {
		return updates
	}
	if changes.Dirty(domain.FieldProductName) {
		updates[m_product.Name] = p.Name()
	}
	if changes.Dirty(domain.FieldProductPrice) {
		updates[m_product.Price] = p.Price().Rat()
	}
	if changes.Dirty(domain.FieldProductStock) {
		updates[m_product.StockQuantity] = p.StockQuantity()
	}
	if changes.Dirty(domain.FieldProductActive) {
		updates[m_product.IsActive] = p.IsActive()
	}
	if len(updates) > 0 {
		updates[m_product.UpdatedAt] = p.UpdatedAt()
	}
	return updates
}

func ProductToDTO(d *m_product.Data) *contracts.ProductDTO {
	price := domain.NewMoneyFromRat(&d.Price)
	cost := domain.NewMoneyFromRat(&d.CostPrice)
	return &contracts.ProductDTO{
		ProductID:     d.ProductID,
		Name:          d.Name,
		SKU:           d.SKU,
		CategoryID:    d.CategoryID,
		Price:         price,
		CostPrice:     cost,
		StockQuantity: d.StockQuantity,
		MinStockLevel: d.MinStockLevel,
		IsActive:      d.IsActive,
		ProfitMargin:  domain.ProfitMarginPercent(price, cost),
	}
}

func CategoryToData(c *domain.Category) *m_category.Data {
	return &m_category.Data{
		CategoryID:  c.ID(),
		Name:        c.Name(),
		Description: c.Description(),
		CreatedAt:   c.CreatedAt(),
	}
}

func CustomerToData(c *domain.Customer) *m_customer.Data {
	return &m_customer.Data{
		CustomerID:    c.ID(),
		Name:          c.Name(),
		Email:         c.Email(),
		Phone:         c.Phone(),
		Address:       c.Address(),
		LoyaltyTier:   string(c.Tier()),
		LoyaltyPoints: c.LoyaltyPoints(),
		TotalSpent:    *c.TotalSpent().Rat(),
		CreatedAt:     c.CreatedAt(),
	}
}

func CustomerFromData(d *m_customer.Data) *domain.Customer {
	return domain.ReconstructCustomer(
		d.CustomerID,
		d.Name,
		d.Email,
		d.Phone,
		d.Address,
		domain.LoyaltyTier(d.LoyaltyTier),
		d.LoyaltyPoints,
		domain.NewMoneyFromRat(&d.TotalSpent),
		d.CreatedAt,
	)
}

func DiscountToData(d *domain.Discount) *m_discount.Data {
	return &m_discount.Data{
		DiscountID:    d.ID(),
		Name:          d.Name(),
		Description:   d.Description(),
		Percentage:    *d.Percentage(),
		MinimumAmount: *d.MinimumAmount().Rat(),
		ValidFrom:     d.ValidFrom(),
		ValidTo:       d.ValidTo(),
		IsActive:      d.IsActive(),
		CreatedAt:     d.CreatedAt(),
	}
}

func DiscountFromData(d *m_discount.Data) *domain.Discount {
	return domain.ReconstructDiscount(
		d.DiscountID,
		d.Name,
		d.Description,
		new(big.Rat).Set(&d.Percentage),
		domain.NewMoneyFromRat(&d.MinimumAmount),
		d.ValidFrom,
		d.ValidTo,
		d.IsActive,
		d.CreatedAt,
	)
}

func SaleToData(s *domain.Sale) (*m_sale.Data, []*m_sale_item.Data) {
	header := &m_sale.Data{
		SaleID:         s.ID(),
		SaleNumber:     s.Number(),
		CustomerID:     nullString(s.CustomerID()),
		CashierID:      s.CashierID(),
		DiscountID:     nullString(s.DiscountID()),
		Subtotal:       *s.Subtotal().Rat(),
		DiscountAmount: *s.DiscountAmount().Rat(),
		TaxAmount:      *s.TaxAmount().Rat(),
		FinalAmount:    *s.FinalAmount().Rat(),
		PaymentMethod:  string(s.PaymentMethod()),
		AmountTendered: *s.AmountTendered().Rat(),
		ChangeDue:      *s.ChangeDue().Rat(),
		Status:         string(s.Status()),
		CreatedAt:      s.CreatedAt(),
		UpdatedAt:      s.UpdatedAt(),
	}

	items := make([]*m_sale_item.Data, 0, len(s.Items()))
	for _, item := range s.Items() {
		items = append(items, &m_sale_item.Data{
			SaleID:      s.ID(),
			ItemID:      item.ID(),
			ProductID:   item.ProductID(),
			ProductName: item.ProductName(),
			Quantity:    item.Quantity(),
			UnitPrice:   *item.UnitPrice().Rat(),
			LineTotal:   *item.LineTotal().Rat(),
		})
	}
	return header, items
}

func SaleFromData(d *m_sale.Data, items []*m_sale_item.Data) (*domain.Sale, error) {
	method, err := domain.ParsePaymentMethod(d.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", d.SaleID, err)
	}

	saleItems := make([]*domain.SaleItem, 0, len(items))
	for _, it := range items {
		item, err := domain.NewSaleItem(it.ItemID, it.SaleID, it.ProductID, it.ProductName, it.Quantity, domain.NewMoneyFromRat(&it.UnitPrice))
		if err != nil {
			return nil, fmt.Errorf("sale %s item %s: %w", d.SaleID, it.ItemID, err)
		}
		saleItems = append(saleItems, item)
	}

	return domain.ReconstructSale(domain.SaleParams{
		ID:             d.SaleID,
		Number:         d.SaleNumber,
		CustomerID:     d.CustomerID.StringVal,
		CashierID:      d.CashierID,
		DiscountID:     d.DiscountID.StringVal,
		Items:          saleItems,
		Subtotal:       domain.NewMoneyFromRat(&d.Subtotal),
		DiscountAmount: domain.NewMoneyFromRat(&d.DiscountAmount),
		TaxAmount:      domain.NewMoneyFromRat(&d.TaxAmount),
		FinalAmount:    domain.NewMoneyFromRat(&d.FinalAmount),
		PaymentMethod:  method,
		AmountTendered: domain.NewMoneyFromRat(&d.AmountTendered),
		ChangeDue:      domain.NewMoneyFromRat(&d.ChangeDue),
	}, domain.SaleStatus(d.Status), d.CreatedAt, d.UpdatedAt), nil
}

func SaleToDTO(d *m_sale.Data, items []*m_sale_item.Data, payments []*m_payment.Data) *contracts.SaleDTO {
	dto := &contracts.SaleDTO{
		SaleID:         d.SaleID,
		SaleNumber:     d.SaleNumber,
		Status:         d.Status,
		PaymentMethod:  d.PaymentMethod,
		CustomerID:     d.CustomerID.StringVal,
		CashierID:      d.CashierID,
		DiscountID:     d.DiscountID.StringVal,
		Subtotal:       domain.NewMoneyFromRat(&d.Subtotal),
		DiscountAmount: domain.NewMoneyFromRat(&d.DiscountAmount),
		TaxAmount:      domain.NewMoneyFromRat(&d.TaxAmount),
		FinalAmount:    domain.NewMoneyFromRat(&d.FinalAmount),
		AmountTendered: domain.NewMoneyFromRat(&d.AmountTendered),
		ChangeDue:      domain.NewMoneyFromRat(&d.ChangeDue),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Items:          make([]*contracts.SaleItemDTO, 0, len(items)),
		Payments:       make([]*contracts.PaymentDTO, 0, len(payments)),
	}
	for _, it := range items {
		dto.Items = append(dto.Items, &contracts.SaleItemDTO{
			ItemID:      it.ItemID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   domain.NewMoneyFromRat(&it.UnitPrice),
			LineTotal:   domain.NewMoneyFromRat(&it.LineTotal),
		})
	}
	for _, p := range payments {
		dto.Payments = append(dto.Payments, PaymentToDTO(p))
	}
	return dto
}

func PaymentToData(p *domain.Payment) *m_payment.Data {
	d := &m_payment.Data{
		PaymentID:         p.ID(),
		SaleID:            p.SaleID(),
		CheckoutRequestID: p.CheckoutRequestID(),
		MerchantRequestID: p.MerchantRequestID(),
		Status:            string(p.Status()),
		PhoneNumber:       p.PhoneNumber(),
		Amount:            *p.Amount().Rat(),
		ReceiptNumber:     nullString(p.ReceiptNumber()),
		ResultDesc:        nullString(p.ResultDesc()),
		RawPayload:        nullJSON(p.RawPayload()),
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
	if td := p.TransactionDate(); td != nil {
		d.TransactionDate = spanner.NullTime{Time: *td, Valid: true}
	}
	if code := p.ResultCode(); code != nil {
		d.ResultCode = spanner.NullInt64{Int64: *code, Valid: true}
	}
	return d
}

func PaymentFromData(d *m_payment.Data) *domain.Payment {
	s := domain.PaymentSnapshot{
		ID:                d.PaymentID,
		SaleID:            d.SaleID,
		CheckoutRequestID: d.CheckoutRequestID,
		MerchantRequestID: d.MerchantRequestID,
		Status:            domain.PaymentStatus(d.Status),
		PhoneNumber:       d.PhoneNumber,
		Amount:            domain.NewMoneyFromRat(&d.Amount),
		ReceiptNumber:     d.ReceiptNumber.StringVal,
		ResultDesc:        d.ResultDesc.StringVal,
		RawPayload:        jsonString(d.RawPayload),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.TransactionDate.Valid {
		td := d.TransactionDate.Time
		s.TransactionDate = &td
	}
	if d.ResultCode.Valid {
		code := d.ResultCode.Int64
		s.ResultCode = &code
	}
	return domain.ReconstructPayment(s)
}

func PaymentToDTO(d *m_payment.Data) *contracts.PaymentDTO {
	dto := &contracts.PaymentDTO{
		PaymentID:         d.PaymentID,
		CheckoutRequestID: d.CheckoutRequestID,
		Status:            d.Status,
		PhoneNumber:       d.PhoneNumber,
		Amount:            domain.NewMoneyFromRat(&d.Amount),
		ReceiptNumber:     d.ReceiptNumber.StringVal,
		ResultDesc:        d.ResultDesc.StringVal,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.ResultCode.Valid {
		code := d.ResultCode.Int64
		dto.ResultCode = &code
	}
	if d.TransactionDate.Valid {
		td := d.TransactionDate.Time
		dto.TransactionDate = &td
	}
	return dto
}

func InventoryToData(t *domain.InventoryTransaction) *m_inventory_tx.Data {
	return &m_inventory_tx.Data{
		TransactionID: t.ID,
		ProductID:     t.ProductID,
		Kind:          string(t.Kind),
		Quantity:      t.Quantity,
		Notes:         t.Notes,
		UserID:        t.UserID,
		CreatedAt:     t.CreatedAt,
	}
}

func PriceHistoryToData(r *contracts.PriceHistoryRecord) *m_price_history.Data {
	return &m_price_history.Data{
		HistoryID:     r.HistoryID,
		ProductID:     r.ProductID,
		OldPrice:      *r.OldPrice.Rat(),
		NewPrice:      *r.NewPrice.Rat(),
		ChangedBy:     r.ChangedBy,
		ChangedReason: nullString(r.ChangedReason),
		ChangedAt:     r.ChangedAt,
	}
}

func OutboxToData(e *contracts.OutboxEvent) *m_outbox.Data {
	d := &m_outbox.Data{
		EventID:      e.EventID,
		EventType:    e.EventType,
		AggregateID:  e.AggregateID,
		Payload:      nullJSON(e.Payload),
		Status:       e.Status,
		CreatedAt:    e.CreatedAt,
		RetryCount:   e.RetryCount,
		ErrorMessage: nullString(e.ErrorMessage),
	}
	if e.ProcessedAt != nil {
		d.ProcessedAt = spanner.NullTime{Time: *e.ProcessedAt, Valid: true}
	}
	return d
}

func OutboxFromData(d *m_outbox.Data) *contracts.OutboxEvent {
	e := &contracts.OutboxEvent{
		EventID:      d.EventID,
		EventType:    d.EventType,
		AggregateID:  d.AggregateID,
		Payload:      jsonString(d.Payload),
		Status:       d.Status,
		CreatedAt:    d.CreatedAt,
		RetryCount:   d.RetryCount,
		ErrorMessage: d.ErrorMessage.StringVal,
	}
	if d.ProcessedAt.Valid {
		processed := d.ProcessedAt.Time
		e.ProcessedAt = &processed
	}
	return e
}

// MarkOutcome derives the row state after a publish attempt.
func MarkOutcome(e *contracts.OutboxEvent, publishErr error) (status string, retries int64, errMsg spanner.NullString) {
	if publishErr == nil {
		return m_outbox.StatusCompleted, e.RetryCount, spanner.NullString{}
	}
	return m_outbox.StatusFailed, e.RetryCount + 1, spanner.NullString{StringVal: publishErr.Error(), Valid: true}
}

func nullString(s string) spanner.NullString {
	return spanner.NullString{StringVal: s, Valid: s != ""}
}

// nullJSON stores already-encoded JSON without encoding it a second time.
func nullJSON(raw string) spanner.NullJSON {
	if raw == "" {
		return spanner.NullJSON{}
	}
	return spanner.NullJSON{Value: json.RawMessage(raw), Valid: true}
}

// jsonString renders a JSON column back to text. Values read from Spanner are
// decoded into Go values; values written by this package are raw messages.
func jsonString(v spanner.NullJSON) string {
	if !v.Valid || v.Value == nil {
		return ""
	}
	if raw, ok := v.Value.(json.RawMessage); ok {
		return string(raw)
	}
	b, err := json.Marshal(v.Value)
	if err != nil {
		return ""
	}
	return string(b)
}
