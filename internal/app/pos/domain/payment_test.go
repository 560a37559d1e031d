package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayment_MarkSucceeded(t *testing.T) {
	p := NewPayment("pay-1", "s-1", "ws_CO_1", "mr-1", "254712345678", FromUnits(100), pricingNow)
	require.Len(t, p.DomainEvents(), 1)
	p.ClearEvents()

	require.NoError(t, p.MarkSucceeded(Confirmation{
		ReceiptNumber: "NLJ7RT61SV",
		PhoneNumber:   "254700000001",
		ResultDesc:    "The service request is processed successfully.",
	}, pricingNow))

	assert.Equal(t, PaymentStatusSuccess, p.Status())
	assert.Equal(t, "NLJ7RT61SV", p.ReceiptNumber())
	assert.Equal(t, "254700000001", p.PhoneNumber())
	require.NotNil(t, p.ResultCode())
	assert.Equal(t, int64(0), *p.ResultCode())
	assert.Equal(t, "payment.succeeded", p.DomainEvents()[0].EventType())

	assert.ErrorIs(t, p.MarkSucceeded(Confirmation{}, pricingNow), ErrPaymentAlreadyFinalized)
	assert.ErrorIs(t, p.MarkFailed(1, "x", "", pricingNow), ErrPaymentAlreadyFinalized)
}

func TestPayment_MarkFailed(t *testing.T) {
	tests := []struct {
		name string
		code int64
		want PaymentStatus
	}{
		{"cancelled by user", ResultCodeCancelledByUser, PaymentStatusCancelled},
		{"insufficient funds", 1, PaymentStatusFailed},
		{"timeout", 1037, PaymentStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPayment("pay-1", "s-1", "ws_CO_1", "mr-1", "254712345678", FromUnits(100), pricingNow)
			require.NoError(t, p.MarkFailed(tt.code, tt.name, `{"raw":true}`, pricingNow))

			assert.Equal(t, tt.want, p.Status())
			assert.Equal(t, tt.code, *p.ResultCode())
			assert.Equal(t, `{"raw":true}`, p.RawPayload())
			assert.True(t, p.Status().IsTerminal())
		})
	}
}
