package repo

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/models/m_outbox"
	"github.com/light-bringer/pos-service/internal/models/m_product"
)

var codecNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestProductUpdates_OnlyDirtyColumns(t *testing.T) {
	p, err := domain.NewProduct("p-1", domain.ProductParams{
		Name:          "Milk 500ml",
		CategoryID:    "cat-1",
		SKU:           "milk-500",
		Price:         domain.FromUnits(60),
		StockQuantity: 20,
	}, codecNow)
	require.NoError(t, err)
	assert.Empty(t, ProductUpdates(p))

	require.NoError(t, p.DeductStock(3, codecNow.Add(time.Minute)))
	updates := ProductUpdates(p)
	assert.Equal(t, int64(17), updates[m_product.StockQuantity])
	assert.Equal(t, codecNow.Add(time.Minute), updates[m_product.UpdatedAt])
	assert.NotContains(t, updates, m_product.Price)
}

func TestPaymentCodec_KeepsOutcome(t *testing.T) {
	p := domain.NewPayment("pay-1", "sale-1", "ws_CO_1", "mr-1", "254712345678", domain.FromUnits(250), codecNow)
	txDate := codecNow.Add(time.Minute)
	require.NoError(t, p.MarkSucceeded(domain.Confirmation{
		ReceiptNumber:   "NLJ7RT61SV",
		TransactionDate: &txDate,
		ResultDesc:      "The service request is processed successfully.",
		RawPayload:      `{"Body":{}}`,
	}, codecNow.Add(2*time.Minute)))

	data := PaymentToData(p)
	assert.Equal(t, spanner.NullString{StringVal: "NLJ7RT61SV", Valid: true}, data.ReceiptNumber)
	assert.True(t, data.ResultCode.Valid)

	back := PaymentFromData(data)
	assert.Equal(t, domain.PaymentStatusSuccess, back.Status())
	require.NotNil(t, back.ResultCode())
	assert.Equal(t, int64(0), *back.ResultCode())
	assert.Equal(t, txDate, *back.TransactionDate())
	assert.JSONEq(t, `{"Body":{}}`, back.RawPayload())
}

func TestJSONString_DecodedSpannerValue(t *testing.T) {
	v := spanner.NullJSON{Value: map[string]interface{}{"sale_id": "s-1"}, Valid: true}
	assert.JSONEq(t, `{"sale_id":"s-1"}`, jsonString(v))
	assert.Equal(t, "", jsonString(spanner.NullJSON{}))
}

func TestMarkOutcome(t *testing.T) {
	event := &contracts.OutboxEvent{EventID: "e-1", RetryCount: 2}

	state, retries, msg := MarkOutcome(event, nil)
	assert.Equal(t, m_outbox.StatusCompleted, state)
	assert.Equal(t, int64(2), retries)
	assert.False(t, msg.Valid)

	state, retries, msg = MarkOutcome(event, errors.New("leader not available"))
	assert.Equal(t, m_outbox.StatusFailed, state)
	assert.Equal(t, int64(3), retries)
	assert.Equal(t, "leader not available", msg.StringVal)
}

func TestPageToken(t *testing.T) {
	offset, err := DecodePageToken("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)

	offset, err = DecodePageToken(EncodePageToken(40))
	require.NoError(t, err)
	assert.Equal(t, int64(40), offset)

	_, err = DecodePageToken(EncodePageToken(-1))
	assert.ErrorIs(t, err, contracts.ErrInvalidPageToken)
	_, err = DecodePageToken("not base64!")
	assert.ErrorIs(t, err, contracts.ErrInvalidPageToken)
}
