package pos

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/get_product"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_low_stock"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_products"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/adjust_stock"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_category"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_customer"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_discount"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_product"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/deactivate_product"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/update_price"
)

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type createProductRequest struct {
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	CategoryID    string        `json:"category_id"`
	SKU           string        `json:"sku"`
	Price         *domain.Money `json:"price"`
	CostPrice     *domain.Money `json:"cost_price,omitempty"`
	StockQuantity int64         `json:"stock_quantity"`
	MinStockLevel *int64        `json:"min_stock_level,omitempty"`
}

type updatePriceRequest struct {
	Price  *domain.Money `json:"price"`
	Reason string        `json:"reason,omitempty"`
}

type adjustStockRequest struct {
	Kind     string `json:"kind"`
	Quantity int64  `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

type adjustStockResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Delta         int64  `json:"delta"`
	NewStock      int64  `json:"new_stock"`
}

type createCustomerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	LoyaltyTier string `json:"loyalty_tier,omitempty"`
}

type createDiscountRequest struct {
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Percentage    json.Number   `json:"percentage"`
	MinimumAmount *domain.Money `json:"minimum_amount,omitempty"`
	ValidFrom     time.Time     `json:"valid_from"`
	ValidTo       time.Time     `json:"valid_to"`
}

// createCategory handles POST /api/v1/categories.
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var body createCategoryRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, err := h.cmd.CreateCategory.Execute(r.Context(), &create_category.Request{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Success: true, ID: id})
}

// createProduct handles POST /api/v1/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var body createProductRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if body.Price == nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: price is required", errBadRequest))
		return
	}

	id, err := h.cmd.CreateProduct.Execute(r.Context(), &create_product.Request{
		Name:          body.Name,
		Description:   body.Description,
		CategoryID:    body.CategoryID,
		SKU:           body.SKU,
		Price:         body.Price,
		CostPrice:     body.CostPrice,
		StockQuantity: body.StockQuantity,
		MinStockLevel: body.MinStockLevel,
		CreatedBy:     cashierFrom(r.Context()),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Success: true, ID: id})
}

// updatePrice handles PUT /api/v1/products/{productID}/price.
func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	var body updatePriceRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if body.Price == nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: price is required", errBadRequest))
		return
	}

	err := h.cmd.UpdatePrice.Execute(r.Context(), &update_price.Request{
		ProductID:     chi.URLParam(r, "productID"),
		NewPrice:      body.Price,
		ChangedBy:     cashierFrom(r.Context()),
		ChangedReason: body.Reason,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

// deactivateProduct handles POST /api/v1/products/{productID}/deactivate.
func (h *Handler) deactivateProduct(w http.ResponseWriter, r *http.Request) {
	err := h.cmd.DeactivateProduct.Execute(r.Context(), &deactivate_product.Request{
		ProductID: chi.URLParam(r, "productID"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

// adjustStock handles POST /api/v1/products/{productID}/stock.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var body adjustStockRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	kind, err := domain.ParseInventoryKind(body.Kind)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.cmd.AdjustStock.Execute(r.Context(), &adjust_stock.Request{
		ProductID: chi.URLParam(r, "productID"),
		Kind:      kind,
		Quantity:  body.Quantity,
		Notes:     body.Notes,
		UserID:    cashierFrom(r.Context()),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, adjustStockResponse{
		Success:       true,
		TransactionID: res.TransactionID,
		Delta:         res.Delta,
		NewStock:      res.NewStock,
	})
}

// listLowStock handles GET /api/v1/products/low-stock.
func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &list_low_stock.Request{
		CategoryID: q.Get("category_id"),
		PageToken:  q.Get("page_token"),
	}
	size, err := parsePageSize(q.Get("page_size"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.PageSize = size

	res, err := h.query.ListLowStock.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toLowStockResponse(res))
}

// listProducts handles GET /api/v1/products. q searches name and SKU.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &list_products.Request{
		Search:     q.Get("q"),
		CategoryID: q.Get("category_id"),
		PageToken:  q.Get("page_token"),
	}

	var err error
	if req.PageSize, err = parsePageSize(q.Get("page_size")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.InStockOnly, err = parseFlag("in_stock", q.Get("in_stock")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.IncludeInactive, err = parseFlag("include_inactive", q.Get("include_inactive")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.query.ListProducts.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductListResponse(res))
}

// getProduct handles GET /api/v1/products/{productID}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	dto, err := h.query.GetProduct.Execute(r.Context(), &get_product.Request{ProductID: chi.URLParam(r, "productID")})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, getProductResponse{Success: true, productResponse: toProductResponse(dto)})
}

func parsePageSize(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: page_size %q", errBadRequest, raw)
	}
	return size, nil
}

func parseFlag(name, raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s %q", errBadRequest, name, raw)
	}
	return v, nil
}

// createCustomer handles POST /api/v1/customers.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var body createCustomerRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, err := h.cmd.CreateCustomer.Execute(r.Context(), &create_customer.Request{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Address: body.Address,
		Tier:    body.LoyaltyTier,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Success: true, ID: id})
}

// createDiscount handles POST /api/v1/discounts.
func (h *Handler) createDiscount(w http.ResponseWriter, r *http.Request) {
	var body createDiscountRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	pct, ok := new(big.Rat).SetString(body.Percentage.String())
	if !ok {
		writeError(w, r, h.logger, domain.ErrInvalidDiscountPercent)
		return
	}

	id, err := h.cmd.CreateDiscount.Execute(r.Context(), &create_discount.Request{
		Name:          body.Name,
		Description:   body.Description,
		Percentage:    pct,
		MinimumAmount: body.MinimumAmount,
		ValidFrom:     body.ValidFrom,
		ValidTo:       body.ValidTo,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Success: true, ID: id})
}
