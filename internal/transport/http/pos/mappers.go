package pos

import (
	"time"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/commit_sale"
)

// Wire format of the till API. Money is rendered as a JSON number with two
// decimals; timestamps as RFC 3339.

type cartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type commitSaleRequest struct {
	Items          []cartItem    `json:"items"`
	CustomerID     string        `json:"customer_id,omitempty"`
	PaymentMethod  string        `json:"payment_method"`
	AmountTendered *domain.Money `json:"amount_tendered,omitempty"`
	DiscountID     string        `json:"discount_id,omitempty"`
	PhoneNumber    string        `json:"phone_number,omitempty"`
}

type commitSaleResponse struct {
	Success           bool          `json:"success"`
	SaleID            string        `json:"sale_id"`
	SaleNumber        string        `json:"sale_number"`
	Status            string        `json:"status"`
	Subtotal          *domain.Money `json:"subtotal"`
	DiscountAmount    *domain.Money `json:"discount_amount"`
	TaxAmount         *domain.Money `json:"tax_amount"`
	Total             *domain.Money `json:"total"`
	AmountTendered    *domain.Money `json:"amount_tendered,omitempty"`
	Change            *domain.Money `json:"change,omitempty"`
	PointsEarned      int64         `json:"points_earned"`
	CheckoutRequestID string        `json:"checkout_request_id,omitempty"`
	CustomerMessage   string        `json:"customer_message,omitempty"`
}

type quoteRequest struct {
	Items      []cartItem `json:"items"`
	DiscountID string     `json:"discount_id,omitempty"`
}

type quoteLine struct {
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name"`
	Quantity    int64         `json:"quantity"`
	UnitPrice   *domain.Money `json:"unit_price"`
	LineTotal   *domain.Money `json:"line_total"`
}

type quoteResponse struct {
	Success         bool          `json:"success"`
	Lines           []quoteLine   `json:"lines"`
	Subtotal        *domain.Money `json:"subtotal"`
	DiscountAmount  *domain.Money `json:"discount_amount"`
	DiscountApplied bool          `json:"discount_applied"`
	TaxAmount       *domain.Money `json:"tax_amount"`
	Total           *domain.Money `json:"total"`
}

type saleItemResponse struct {
	ItemID      string        `json:"item_id"`
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name"`
	Quantity    int64         `json:"quantity"`
	UnitPrice   *domain.Money `json:"unit_price"`
	LineTotal   *domain.Money `json:"line_total"`
}

type paymentResponse struct {
	PaymentID         string        `json:"payment_id"`
	CheckoutRequestID string        `json:"checkout_request_id"`
	Status            string        `json:"status"`
	PhoneNumber       string        `json:"phone_number"`
	Amount            *domain.Money `json:"amount"`
	ReceiptNumber     string        `json:"receipt_number,omitempty"`
	ResultCode        *int64        `json:"result_code,omitempty"`
	ResultDesc        string        `json:"result_desc,omitempty"`
	TransactionDate   *string       `json:"transaction_date,omitempty"`
	CreatedAt         string        `json:"created_at"`
}

type saleResponse struct {
	Success        bool               `json:"success"`
	SaleID         string             `json:"sale_id"`
	SaleNumber     string             `json:"sale_number"`
	Status         string             `json:"status"`
	PaymentMethod  string             `json:"payment_method"`
	CustomerID     string             `json:"customer_id,omitempty"`
	CashierID      string             `json:"cashier_id"`
	DiscountID     string             `json:"discount_id,omitempty"`
	Subtotal       *domain.Money      `json:"subtotal"`
	DiscountAmount *domain.Money      `json:"discount_amount"`
	TaxAmount      *domain.Money      `json:"tax_amount"`
	Total          *domain.Money      `json:"total"`
	AmountTendered *domain.Money      `json:"amount_tendered,omitempty"`
	Change         *domain.Money      `json:"change,omitempty"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
	Items          []saleItemResponse `json:"items"`
	Payments       []paymentResponse  `json:"payments"`
}

type paymentStatusResponse struct {
	Success           bool          `json:"success"`
	CheckoutRequestID string        `json:"checkout_request_id"`
	Status            string        `json:"status"`
	ReceiptNumber     string        `json:"receipt_number,omitempty"`
	ResultDesc        string        `json:"result_desc,omitempty"`
	Amount            *domain.Money `json:"amount"`
	SaleID            string        `json:"sale_id"`
	SaleNumber        string        `json:"sale_number"`
	SaleStatus        string        `json:"sale_status"`
}

type productResponse struct {
	ProductID     string        `json:"product_id"`
	Name          string        `json:"name"`
	SKU           string        `json:"sku"`
	CategoryID    string        `json:"category_id"`
	Price         *domain.Money `json:"price"`
	CostPrice     *domain.Money `json:"cost_price"`
	StockQuantity int64         `json:"stock_quantity"`
	MinStockLevel int64         `json:"min_stock_level"`
	IsActive      bool          `json:"is_active"`
	ProfitMargin  float64       `json:"profit_margin"`
}

type lowStockResponse struct {
	Success       bool              `json:"success"`
	Products      []productResponse `json:"products"`
	NextPageToken string            `json:"next_page_token,omitempty"`
	TotalCount    int64             `json:"total_count"`
}

type productListResponse struct {
	Success       bool              `json:"success"`
	Products      []productResponse `json:"products"`
	NextPageToken string            `json:"next_page_token,omitempty"`
	TotalCount    int64             `json:"total_count"`
}

type getProductResponse struct {
	Success bool `json:"success"`
	productResponse
}

type saleSummaryResponse struct {
	SaleID        string        `json:"sale_id"`
	SaleNumber    string        `json:"sale_number"`
	Status        string        `json:"status"`
	PaymentMethod string        `json:"payment_method"`
	CustomerID    string        `json:"customer_id,omitempty"`
	CashierID     string        `json:"cashier_id"`
	Total         *domain.Money `json:"total"`
	CreatedAt     string        `json:"created_at"`
}

type listSalesResponse struct {
	Success       bool                  `json:"success"`
	Sales         []saleSummaryResponse `json:"sales"`
	NextPageToken string                `json:"next_page_token,omitempty"`
	TotalCount    int64                 `json:"total_count"`
}

type eventResponse struct {
	EventID      string  `json:"event_id"`
	EventType    string  `json:"event_type"`
	AggregateID  string  `json:"aggregate_id"`
	Payload      string  `json:"payload"`
	Status       string  `json:"status"`
	RetryCount   int64   `json:"retry_count"`
	ErrorMessage string  `json:"error_message,omitempty"`
	CreatedAt    string  `json:"created_at"`
	ProcessedAt  *string `json:"processed_at,omitempty"`
}

type listEventsResponse struct {
	Success    bool            `json:"success"`
	Events     []eventResponse `json:"events"`
	TotalCount int             `json:"total_count"`
}

type createdResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type okResponse struct {
	Success bool `json:"success"`
}

func toCommitSaleLines(items []cartItem) []commit_sale.Line {
	lines := make([]commit_sale.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, commit_sale.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

func toCommitSaleResponse(res *commit_sale.Result) commitSaleResponse {
	return commitSaleResponse{
		Success:           true,
		SaleID:            res.SaleID,
		SaleNumber:        res.SaleNumber,
		Status:            string(res.Status),
		Subtotal:          res.Subtotal,
		DiscountAmount:    res.DiscountAmount,
		TaxAmount:         res.TaxAmount,
		Total:             res.FinalAmount,
		AmountTendered:    res.AmountTendered,
		Change:            res.Change,
		PointsEarned:      res.PointsEarned,
		CheckoutRequestID: res.CheckoutRequestID,
		CustomerMessage:   res.CustomerMessage,
	}
}

func toQuoteResponse(totals *domain.Totals) quoteResponse {
	lines := make([]quoteLine, 0, len(totals.Lines))
	for _, l := range totals.Lines {
		lines = append(lines, quoteLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		})
	}
	return quoteResponse{
		Success:         true,
		Lines:           lines,
		Subtotal:        totals.Subtotal,
		DiscountAmount:  totals.DiscountAmount,
		DiscountApplied: totals.DiscountApplied,
		TaxAmount:       totals.TaxAmount,
		Total:           totals.FinalAmount,
	}
}

func toSaleResponse(dto *contracts.SaleDTO) saleResponse {
	items := make([]saleItemResponse, 0, len(dto.Items))
	for _, it := range dto.Items {
		items = append(items, saleItemResponse{
			ItemID:      it.ItemID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	payments := make([]paymentResponse, 0, len(dto.Payments))
	for _, p := range dto.Payments {
		payments = append(payments, paymentResponse{
			PaymentID:         p.PaymentID,
			CheckoutRequestID: p.CheckoutRequestID,
			Status:            p.Status,
			PhoneNumber:       p.PhoneNumber,
			Amount:            p.Amount,
			ReceiptNumber:     p.ReceiptNumber,
			ResultCode:        p.ResultCode,
			ResultDesc:        p.ResultDesc,
			TransactionDate:   formatTimePtr(p.TransactionDate),
			CreatedAt:         formatTime(p.CreatedAt),
		})
	}
	return saleResponse{
		Success:        true,
		SaleID:         dto.SaleID,
		SaleNumber:     dto.SaleNumber,
		Status:         dto.Status,
		PaymentMethod:  dto.PaymentMethod,
		CustomerID:     dto.CustomerID,
		CashierID:      dto.CashierID,
		DiscountID:     dto.DiscountID,
		Subtotal:       dto.Subtotal,
		DiscountAmount: dto.DiscountAmount,
		TaxAmount:      dto.TaxAmount,
		Total:          dto.FinalAmount,
		AmountTendered: dto.AmountTendered,
		Change:         dto.ChangeDue,
		CreatedAt:      formatTime(dto.CreatedAt),
		UpdatedAt:      formatTime(dto.UpdatedAt),
		Items:          items,
		Payments:       payments,
	}
}

func toPaymentStatusResponse(dto *contracts.PaymentStatusDTO) paymentStatusResponse {
	return paymentStatusResponse{
		Success:           true,
		CheckoutRequestID: dto.CheckoutRequestID,
		Status:            dto.Status,
		ReceiptNumber:     dto.ReceiptNumber,
		ResultDesc:        dto.ResultDesc,
		Amount:            dto.Amount,
		SaleID:            dto.SaleID,
		SaleNumber:        dto.SaleNumber,
		SaleStatus:        dto.SaleStatus,
	}
}

func toProductResponse(p *contracts.ProductDTO) productResponse {
	return productResponse{
		ProductID:     p.ProductID,
		Name:          p.Name,
		SKU:           p.SKU,
		CategoryID:    p.CategoryID,
		Price:         p.Price,
		CostPrice:     p.CostPrice,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		IsActive:      p.IsActive,
		ProfitMargin:  p.ProfitMargin,
	}
}

func toProductResponses(dtos []*contracts.ProductDTO) []productResponse {
	products := make([]productResponse, 0, len(dtos))
	for _, p := range dtos {
		products = append(products, toProductResponse(p))
	}
	return products
}

func toLowStockResponse(res *contracts.LowStockResult) lowStockResponse {
	return lowStockResponse{
		Success:       true,
		Products:      toProductResponses(res.Products),
		NextPageToken: res.NextPageToken,
		TotalCount:    res.TotalCount,
	}
}

func toProductListResponse(res *contracts.ProductListResult) productListResponse {
	return productListResponse{
		Success:       true,
		Products:      toProductResponses(res.Products),
		NextPageToken: res.NextPageToken,
		TotalCount:    res.TotalCount,
	}
}

func toListSalesResponse(res *contracts.SaleListResult) listSalesResponse {
	sales := make([]saleSummaryResponse, 0, len(res.Sales))
	for _, dto := range res.Sales {
		sales = append(sales, saleSummaryResponse{
			SaleID:        dto.SaleID,
			SaleNumber:    dto.SaleNumber,
			Status:        dto.Status,
			PaymentMethod: dto.PaymentMethod,
			CustomerID:    dto.CustomerID,
			CashierID:     dto.CashierID,
			Total:         dto.FinalAmount,
			CreatedAt:     formatTime(dto.CreatedAt),
		})
	}
	return listSalesResponse{
		Success:       true,
		Sales:         sales,
		NextPageToken: res.NextPageToken,
		TotalCount:    res.TotalCount,
	}
}

func toEventResponse(e *contracts.OutboxEvent) eventResponse {
	return eventResponse{
		EventID:      e.EventID,
		EventType:    e.EventType,
		AggregateID:  e.AggregateID,
		Payload:      e.Payload,
		Status:       e.Status,
		RetryCount:   e.RetryCount,
		ErrorMessage: e.ErrorMessage,
		CreatedAt:    formatTime(e.CreatedAt),
		ProcessedAt:  formatTimePtr(e.ProcessedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
