package pos

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/get_sale"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_sales"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/quote_sale"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/commit_sale"
)

// commitSale handles POST /api/v1/sales. Completed sales answer 201; sales
// waiting on a mobile-money callback answer 202 with the checkout id to poll.
func (h *Handler) commitSale(w http.ResponseWriter, r *http.Request) {
	var body commitSaleRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	method, err := domain.ParsePaymentMethod(body.PaymentMethod)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.cmd.CommitSale.Execute(r.Context(), &commit_sale.Request{
		Lines:          toCommitSaleLines(body.Items),
		CustomerID:     body.CustomerID,
		CashierID:      cashierFrom(r.Context()),
		PaymentMethod:  method,
		AmountTendered: body.AmountTendered,
		DiscountID:     body.DiscountID,
		PhoneNumber:    body.PhoneNumber,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	status := http.StatusCreated
	if res.Status == domain.SaleStatusPending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, toCommitSaleResponse(res))
}

// quoteSale handles POST /api/v1/sales/quote.
func (h *Handler) quoteSale(w http.ResponseWriter, r *http.Request) {
	var body quoteRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	lines := make([]quote_sale.Line, 0, len(body.Items))
	for _, item := range body.Items {
		lines = append(lines, quote_sale.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	totals, err := h.query.QuoteSale.Execute(r.Context(), &quote_sale.Request{
		Lines:      lines,
		DiscountID: body.DiscountID,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(totals))
}

// getSale handles GET /api/v1/sales/{saleID}.
func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	dto, err := h.query.GetSale.Execute(r.Context(), &get_sale.Request{SaleID: chi.URLParam(r, "saleID")})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(dto))
}

// listSales handles GET /api/v1/sales. date_from and date_to are inclusive
// YYYY-MM-DD days in UTC.
func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &list_sales.Request{PageToken: q.Get("page_token")}

	var err error
	if req.PageSize, err = parsePageSize(q.Get("page_size")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.DateFrom, err = parseDay("date_from", q.Get("date_from")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.DateTo, err = parseDay("date_to", q.Get("date_to")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.query.ListSales.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toListSalesResponse(res))
}

func parseDay(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", errBadRequest, name, raw)
	}
	return &day, nil
}
