package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/models/m_payment"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
	"github.com/light-bringer/pos-service/internal/pkg/query"
)

// PaymentRepo implements PaymentRepository for Spanner.
type PaymentRepo struct {
	model *m_payment.Model
}

func NewPaymentRepo() contracts.PaymentRepository {
	return &PaymentRepo{model: m_payment.NewModel()}
}

func (r *PaymentRepo) InsertMut(payment *domain.Payment) *spanner.Mutation {
	return r.model.InsertMut(PaymentToData(payment))
}

func (r *PaymentRepo) UpdateMut(payment *domain.Payment) *spanner.Mutation {
	if !payment.Changes().Dirty(domain.FieldPaymentOutcome) {
		return nil
	}
	return r.model.OutcomeMut(PaymentToData(payment))
}

// GetByCheckoutIDTx queries through the unique checkout index. The query runs
// in the read-write transaction so the row stays locked until commit.
func (r *PaymentRepo) GetByCheckoutIDTx(ctx context.Context, tx committer.Txn, checkoutRequestID string) (*domain.Payment, error) {
	rw, err := committer.ReadWriteTxn(tx)
	if err != nil {
		return nil, err
	}

	stmt := query.From(m_payment.TableName + "@{FORCE_INDEX=" + m_payment.CheckoutIndex + "}").
		Select(m_payment.Columns()...).
		Where(query.Eq(m_payment.CheckoutRequestID, checkoutRequestID)).
		Limit(1).
		Build()

	iter := rw.Query(ctx, stmt)
	defer iter.Stop()

	row, err := iter.Next()
	if err == iterator.Done {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}

	var data m_payment.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse payment: %w", err)
	}
	return PaymentFromData(&data), nil
}
