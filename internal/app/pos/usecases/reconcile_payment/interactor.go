package reconcile_payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/domain/services"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// Outcome is what a delivered payment result did.
type Outcome string

const (
	// OutcomeApplied means the payment and its sale were finalized.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the payment was already finalized; nothing was written.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeUnknown means no payment matches the checkout id.
	OutcomeUnknown Outcome = "unknown"
)

// Request is a provider payment result, independent of the wire format.
type Request struct {
	CheckoutRequestID string
	MerchantRequestID string
	ResultCode        int64
	ResultDesc        string

	// Success metadata.
	Amount          *domain.Money
	ReceiptNumber   string
	PhoneNumber     string
	TransactionDate *time.Time

	RawPayload string
}

// Succeeded reports whether the customer approved the payment.
func (r *Request) Succeeded() bool { return r.ResultCode == 0 }

// Result reports the outcome and, when applied, the resulting states.
type Result struct {
	Outcome       Outcome
	PaymentStatus domain.PaymentStatus
	SaleID        string
	SaleStatus    domain.SaleStatus
	OversoldUnits int64
}

// Repositories groups the stores reconciliation touches.
type Repositories struct {
	Products  contracts.ProductRepository
	Customers contracts.CustomerRepository
	Sales     contracts.SaleRepository
	Payments  contracts.PaymentRepository
	Inventory contracts.InventoryRepository
	Outbox    contracts.OutboxRepository
}

// Interactor handles the reconcile payment use case.
type Interactor struct {
	repos     Repositories
	tx        contracts.Transactor
	fulfiller *services.Fulfiller
	clock     clock.Clock
	logger    *slog.Logger
}

// NewInteractor creates a new reconcile payment interactor.
func NewInteractor(repos Repositories, tx contracts.Transactor, clock clock.Clock, logger *slog.Logger) *Interactor {
	return &Interactor{
		repos: repos,
		tx:    tx,
		fulfiller: services.NewFulfiller(func() string {
			return uuid.New().String()
		}),
		clock:  clock,
		logger: logger,
	}
}

// Execute finalizes the payment named by the checkout id and its sale.
// The pending to terminal transition of the payment is checked inside the
// transaction before anything is written, so redelivered results are no-ops.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Result, error) {
	// 1. Validate request
	if req.CheckoutRequestID == "" {
		return nil, domain.ErrPaymentNotFound
	}

	var result *Result
	err := i.tx.ReadWrite(ctx, func(ctx context.Context, tx committer.Txn) error {
		now := i.clock.Now()

		// 2. Load payment and gate on its status
		payment, err := i.repos.Payments.GetByCheckoutIDTx(ctx, tx, req.CheckoutRequestID)
		if errors.Is(err, domain.ErrPaymentNotFound) {
			result = &Result{Outcome: OutcomeUnknown}
			return nil
		}
		if err != nil {
			return err
		}
		if payment.Status().IsTerminal() {
			result = &Result{
				Outcome:       OutcomeDuplicate,
				PaymentStatus: payment.Status(),
				SaleID:        payment.SaleID(),
			}
			return nil
		}

		// 3. Load the sale
		sale, err := i.repos.Sales.GetByIDTx(ctx, tx, payment.SaleID())
		if err != nil {
			return fmt.Errorf("failed to load sale %s: %w", payment.SaleID(), err)
		}

		plan := committer.NewPlan()
		emitters := []eventSource{payment, sale}
		res := &Result{Outcome: OutcomeApplied, SaleID: sale.ID()}

		if req.Succeeded() {
			// 4a. Record success and apply the deferred effects
			if req.Amount != nil && !req.Amount.Equals(payment.Amount()) {
				i.logger.Warn("payment amount differs from sale total",
					"checkout_request_id", req.CheckoutRequestID,
					"expected", payment.Amount().String(),
					"received", req.Amount.String(),
				)
			}
			err := payment.MarkSucceeded(domain.Confirmation{
				ReceiptNumber:   req.ReceiptNumber,
				PhoneNumber:     req.PhoneNumber,
				TransactionDate: req.TransactionDate,
				ResultDesc:      req.ResultDesc,
				RawPayload:      req.RawPayload,
			}, now)
			if err != nil {
				return err
			}
			if err := sale.Complete(now); err != nil {
				return err
			}

			fulfilment, customer, err := i.fulfil(ctx, tx, sale, now)
			if err != nil {
				return err
			}
			for _, p := range fulfilment.Products {
				plan.Add(i.repos.Products.UpdateMut(p))
				emitters = append(emitters, p)
			}
			for _, txn := range fulfilment.Inventory {
				plan.Add(i.repos.Inventory.InsertMut(txn))
			}
			if customer != nil {
				plan.Add(i.repos.Customers.UpdateMut(customer))
				emitters = append(emitters, customer)
			}
			res.OversoldUnits = fulfilment.OversoldUnits
		} else {
			// 4b. Record failure; stock was never taken
			if err := payment.MarkFailed(req.ResultCode, req.ResultDesc, req.RawPayload, now); err != nil {
				return err
			}
			if err := sale.Cancel(req.ResultDesc, now); err != nil {
				return err
			}
		}

		// 5. Create commit plan
		plan.Add(i.repos.Payments.UpdateMut(payment))
		plan.Add(i.repos.Sales.UpdateMut(sale))
		if err := i.addEvents(plan, emitters); err != nil {
			return err
		}
		if err := plan.BufferOn(tx); err != nil {
			return err
		}

		res.PaymentStatus = payment.Status()
		res.SaleStatus = sale.Status()
		result = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile payment %s: %w", req.CheckoutRequestID, err)
	}

	switch result.Outcome {
	case OutcomeUnknown:
		i.logger.Warn("payment result for unknown checkout",
			"checkout_request_id", req.CheckoutRequestID,
			"result_code", req.ResultCode,
		)
	case OutcomeDuplicate:
		i.logger.Info("duplicate payment result ignored",
			"checkout_request_id", req.CheckoutRequestID,
			"payment_status", result.PaymentStatus,
		)
	default:
		i.logger.Info("payment reconciled",
			"checkout_request_id", req.CheckoutRequestID,
			"sale_id", result.SaleID,
			"payment_status", result.PaymentStatus,
			"sale_status", result.SaleStatus,
		)
		if result.OversoldUnits > 0 {
			i.logger.Warn("paid sale oversold stock",
				"sale_id", result.SaleID,
				"shortfall", result.OversoldUnits,
			)
		}
	}
	return result, nil
}

// fulfil loads the sale's products and customer and applies stock and
// loyalty. The customer has already paid, so stock is clamped at zero.
func (i *Interactor) fulfil(ctx context.Context, tx committer.Txn, sale *domain.Sale, now time.Time) (*services.Fulfilment, *domain.Customer, error) {
	products := make(map[string]*domain.Product)
	for productID := range sale.QuantitiesByProduct() {
		p, err := i.repos.Products.GetByIDTx(ctx, tx, productID)
		if err != nil {
			return nil, nil, err
		}
		products[productID] = p
	}

	var customer *domain.Customer
	if sale.CustomerID() != "" {
		c, err := i.repos.Customers.GetByIDTx(ctx, tx, sale.CustomerID())
		switch {
		case errors.Is(err, domain.ErrCustomerNotFound):
			i.logger.Warn("customer missing, loyalty skipped", "sale_id", sale.ID(), "customer_id", sale.CustomerID())
		case err != nil:
			return nil, nil, err
		default:
			customer = c
		}
	}

	f, err := i.fulfiller.Fulfil(sale, products, customer, services.StockClamp, now)
	if err != nil {
		return nil, nil, err
	}
	return f, customer, nil
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
