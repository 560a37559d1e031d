package commit_sale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/domain/services"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// Line is one cart entry.
type Line struct {
	ProductID string
	Quantity  int64
}

// Request contains the data needed to commit a sale.
type Request struct {
	Lines         []Line
	CustomerID    string
	CashierID     string
	PaymentMethod domain.PaymentMethod
	// AmountTendered is the cash handed over. Nil means exact money.
	AmountTendered *domain.Money
	DiscountID     string
	// PhoneNumber is required for mobile money.
	PhoneNumber string
}

// Result describes the committed sale. Change is set for synchronous
// payments; CheckoutRequestID and CustomerMessage for mobile money.
type Result struct {
	SaleID            string
	SaleNumber        string
	Status            domain.SaleStatus
	Subtotal          *domain.Money
	DiscountAmount    *domain.Money
	TaxAmount         *domain.Money
	FinalAmount       *domain.Money
	AmountTendered    *domain.Money
	Change            *domain.Money
	PointsEarned      int64
	CheckoutRequestID string
	CustomerMessage   string
}

// Repositories groups the stores a sale touches.
type Repositories struct {
	Products  contracts.ProductRepository
	Customers contracts.CustomerRepository
	Discounts contracts.DiscountRepository
	Sales     contracts.SaleRepository
	Payments  contracts.PaymentRepository
	Inventory contracts.InventoryRepository
	Outbox    contracts.OutboxRepository
}

// Interactor handles the commit sale use case.
type Interactor struct {
	repos     Repositories
	tx        contracts.Transactor
	gateway   contracts.PaymentGateway
	pricing   *domain.PricingCalculator
	fulfiller *services.Fulfiller
	policy    domain.CashUnderpaymentPolicy
	clock     clock.Clock
	logger    *slog.Logger
}

// NewInteractor creates a new commit sale interactor. The gateway may be nil
// when mobile money is disabled; such sales are then refused.
func NewInteractor(
	repos Repositories,
	tx contracts.Transactor,
	gateway contracts.PaymentGateway,
	pricing *domain.PricingCalculator,
	policy domain.CashUnderpaymentPolicy,
	clock clock.Clock,
	logger *slog.Logger,
) *Interactor {
	return &Interactor{
		repos:     repos,
		tx:        tx,
		gateway:   gateway,
		pricing:   pricing,
		fulfiller: services.NewFulfiller(newID),
		policy:    policy,
		clock:     clock,
		logger:    logger,
	}
}

// Execute prices the cart and commits the sale in one read-write transaction.
// Cash, card and credit sales complete immediately: stock is deducted and
// loyalty accrued in the same commit. Mobile-money sales are stored pending
// after the STK push is accepted; stock and loyalty wait for the callback.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Result, error) {
	// 1. Validate request
	phone, err := i.validate(req)
	if err != nil {
		return nil, err
	}

	saleID := newID()

	// The push is memoized so a retried transaction never charges twice.
	// pushedNumber is the sale number the provider was given as reference.
	var push *contracts.PushResponse
	var pushedNumber string

	var result *Result
	err = i.tx.ReadWrite(ctx, func(ctx context.Context, tx committer.Txn) error {
		now := i.clock.Now()

		// 2. Load and check products
		products, order, err := i.loadProducts(ctx, tx, req.Lines)
		if err != nil {
			return err
		}

		// 3. Optional discount and customer
		discount, err := i.loadDiscount(ctx, tx, req.DiscountID)
		if err != nil {
			return err
		}
		var customer *domain.Customer
		if req.CustomerID != "" {
			customer, err = i.repos.Customers.GetByIDTx(ctx, tx, req.CustomerID)
			if err != nil {
				return err
			}
		}

		// 4. Price the cart
		lines := make([]domain.CartLine, 0, len(req.Lines))
		for _, l := range req.Lines {
			lines = append(lines, domain.CartLine{Product: products[l.ProductID], Quantity: l.Quantity})
		}
		totals, err := i.pricing.ComputeTotals(lines, discount, now)
		if err != nil {
			return err
		}
		settlement, err := domain.SettleTender(req.PaymentMethod, req.AmountTendered, totals.FinalAmount, i.policy)
		if err != nil {
			return err
		}

		// 5. Reserve the sale number
		number, counterMut, err := i.repos.Sales.NextNumberTx(ctx, tx, now)
		if err != nil {
			return fmt.Errorf("failed to reserve sale number: %w", err)
		}

		// 6. Build the sale
		items := make([]*domain.SaleItem, 0, len(totals.Lines))
		for _, pl := range totals.Lines {
			item, err := domain.NewSaleItem(newID(), saleID, pl.ProductID, pl.ProductName, pl.Quantity, pl.UnitPrice)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		discountID := ""
		if totals.DiscountApplied {
			discountID = discount.ID()
		}
		sale, err := domain.NewSale(domain.SaleParams{
			ID:             saleID,
			Number:         number,
			CustomerID:     req.CustomerID,
			CashierID:      req.CashierID,
			DiscountID:     discountID,
			Items:          items,
			Subtotal:       totals.Subtotal,
			DiscountAmount: totals.DiscountAmount,
			TaxAmount:      totals.TaxAmount,
			FinalAmount:    totals.FinalAmount,
			PaymentMethod:  req.PaymentMethod,
			AmountTendered: settlement.AmountTendered,
			ChangeDue:      settlement.ChangeDue,
		}, now)
		if err != nil {
			return err
		}

		// 7. Create commit plan
		plan := committer.NewPlan()
		plan.Add(counterMut)
		plan.AddMultiple(i.repos.Sales.InsertMuts(sale))
		emitters := []eventSource{sale}

		res := &Result{
			SaleID:         sale.ID(),
			SaleNumber:     sale.Number(),
			Status:         sale.Status(),
			Subtotal:       sale.Subtotal(),
			DiscountAmount: sale.DiscountAmount(),
			TaxAmount:      sale.TaxAmount(),
			FinalAmount:    sale.FinalAmount(),
			AmountTendered: sale.AmountTendered(),
			Change:         sale.ChangeDue(),
		}

		switch sale.Status() {
		case domain.SaleStatusCompleted:
			// 8a. Deduct stock and accrue loyalty now
			fulfilment, err := i.fulfiller.Fulfil(sale, products, customer, services.StockStrict, now)
			if err != nil {
				return err
			}
			for _, p := range fulfilment.Products {
				plan.Add(i.repos.Products.UpdateMut(p))
			}
			for _, txn := range fulfilment.Inventory {
				plan.Add(i.repos.Inventory.InsertMut(txn))
			}
			if customer != nil {
				plan.Add(i.repos.Customers.UpdateMut(customer))
				emitters = append(emitters, customer)
			}
			for _, id := range order {
				emitters = append(emitters, products[id])
			}
			res.PointsEarned = fulfilment.PointsEarned

		case domain.SaleStatusPending:
			// 8b. Push to the customer's phone and record the pending payment
			if push == nil {
				push, err = i.initiatePush(ctx, phone, sale)
				if err != nil {
					return err
				}
				pushedNumber = sale.Number()
			} else if pushedNumber != sale.Number() {
				// A retry can reserve a later number than the aborted attempt.
				// The payment is matched by checkout id, so only the provider's
				// statement shows the old reference.
				i.logger.Warn("sale number changed after stk push",
					"sale_id", saleID,
					"sale_number", sale.Number(),
					"pushed_reference", pushedNumber,
					"checkout_request_id", push.CheckoutRequestID,
				)
			}
			payment := domain.NewPayment(newID(), sale.ID(), push.CheckoutRequestID, push.MerchantRequestID, phone, sale.FinalAmount(), now)
			plan.Add(i.repos.Payments.InsertMut(payment))
			emitters = append(emitters, payment)
			res.CheckoutRequestID = push.CheckoutRequestID
			res.CustomerMessage = push.CustomerMessage
		}

		// 9. Add outbox events
		if err := i.addEvents(plan, emitters); err != nil {
			return err
		}

		// 10. Buffer on the transaction; it commits when fn returns
		if err := plan.BufferOn(tx); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if push != nil {
			i.logger.Error("stk push accepted but sale was not committed",
				"sale_id", saleID,
				"checkout_request_id", push.CheckoutRequestID,
				"error", err,
			)
		}
		return nil, err
	}

	i.logger.Info("sale committed",
		"sale_id", result.SaleID,
		"sale_number", result.SaleNumber,
		"status", result.Status,
		"final_amount", result.FinalAmount.String(),
		"payment_method", req.PaymentMethod,
	)
	return result, nil
}

// validate checks the request shape and returns the normalized phone number
// for mobile money.
func (i *Interactor) validate(req *Request) (string, error) {
	if len(req.Lines) == 0 {
		return "", domain.ErrEmptyCart
	}
	for _, l := range req.Lines {
		if l.ProductID == "" {
			return "", domain.ErrProductNotFound
		}
		if l.Quantity <= 0 {
			return "", domain.ErrInvalidQuantity
		}
	}
	if req.CashierID == "" {
		return "", domain.ErrMissingCashier
	}
	if _, err := domain.ParsePaymentMethod(string(req.PaymentMethod)); err != nil {
		return "", err
	}
	if req.AmountTendered != nil && req.AmountTendered.IsNegative() {
		return "", domain.ErrInvalidTender
	}
	if !req.PaymentMethod.IsAsynchronous() {
		return "", nil
	}
	if i.gateway == nil {
		return "", &domain.PaymentInitiationError{Err: errors.New("mobile money is not configured")}
	}
	return domain.NormalizePhoneNumber(req.PhoneNumber)
}

// loadProducts reads every distinct product once and checks that the summed
// quantity is available. It returns the products by id and in cart order.
func (i *Interactor) loadProducts(ctx context.Context, tx committer.Txn, lines []Line) (map[string]*domain.Product, []string, error) {
	wanted := make(map[string]int64)
	var order []string
	for _, l := range lines {
		if _, seen := wanted[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		wanted[l.ProductID] += l.Quantity
	}

	products := make(map[string]*domain.Product, len(order))
	for _, id := range order {
		p, err := i.repos.Products.GetByIDTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil, nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
			}
			return nil, nil, err
		}
		if err := p.CheckAvailable(wanted[id]); err != nil {
			return nil, nil, err
		}
		products[id] = p
	}
	return products, order, nil
}

// loadDiscount returns nil when the discount does not exist. An unknown
// discount never fails a sale; the pricing calculator skips invalid ones.
func (i *Interactor) loadDiscount(ctx context.Context, tx committer.Txn, discountID string) (*domain.Discount, error) {
	if discountID == "" {
		return nil, nil
	}
	d, err := i.repos.Discounts.GetByIDTx(ctx, tx, discountID)
	if errors.Is(err, domain.ErrDiscountNotFound) {
		i.logger.Warn("discount ignored", "discount_id", discountID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (i *Interactor) initiatePush(ctx context.Context, phone string, sale *domain.Sale) (*contracts.PushResponse, error) {
	resp, err := i.gateway.InitiatePush(ctx, &contracts.PushRequest{
		PhoneNumber: phone,
		Amount:      sale.FinalAmount(),
		Reference:   sale.Number(),
		Description: "Sale " + sale.Number(),
	})
	if err != nil {
		return nil, &domain.PaymentInitiationError{Err: err}
	}
	return resp, nil
}

type eventSource interface {
	DomainEvents() []domain.DomainEvent
	ClearEvents()
}

func (i *Interactor) addEvents(plan *committer.CommitPlan, sources []eventSource) error {
	for _, src := range sources {
		for _, event := range src.DomainEvents() {
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to serialize event: %w", err)
			}
			plan.Add(i.repos.Outbox.InsertMut(i.repos.Outbox.EnrichEvent(event, string(payload))))
		}
		src.ClearEvents()
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}
