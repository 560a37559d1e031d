package pos

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/light-bringer/pos-service/internal/app/pos/queries/payment_status"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/reconcile_payment"
	"github.com/light-bringer/pos-service/internal/gateway/mpesa"
)

// mpesaCallback handles POST /api/v1/payments/mpesa/callback. Daraja retries
// until it sees an acceptance, so every delivery is acknowledged with 200.
// Malformed bodies, unknown checkout ids and store failures are only logged.
func (h *Handler) mpesaCallback(w http.ResponseWriter, r *http.Request) {
	defer writeJSON(w, http.StatusOK, mpesa.Accepted)

	logger := h.logger.With("request_id", chimw.GetReqID(r.Context()))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("mpesa callback unreadable", "error", err)
		return
	}

	cb, err := mpesa.ParseCallback(body)
	if err != nil {
		logger.Warn("mpesa callback rejected", "error", err, "body", string(body))
		return
	}
	if len(cb.Skipped) > 0 {
		logger.Warn("mpesa callback metadata ignored",
			"checkout_request_id", cb.CheckoutRequestID,
			"items", cb.Skipped,
		)
	}

	_, err = h.cmd.ReconcilePayment.Execute(r.Context(), &reconcile_payment.Request{
		CheckoutRequestID: cb.CheckoutRequestID,
		MerchantRequestID: cb.MerchantRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
		Amount:            cb.Amount,
		ReceiptNumber:     cb.ReceiptNumber,
		PhoneNumber:       cb.PhoneNumber,
		TransactionDate:   cb.TransactionDate,
		RawPayload:        cb.Raw,
	})
	if err != nil {
		logger.Error("mpesa callback not reconciled",
			"checkout_request_id", cb.CheckoutRequestID,
			"result_code", cb.ResultCode,
			"error", err,
		)
	}
}

// paymentStatus handles GET /api/v1/payments/{checkoutRequestID}/status.
func (h *Handler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	dto, err := h.query.PaymentStatus.Execute(r.Context(), &payment_status.Request{
		CheckoutRequestID: chi.URLParam(r, "checkoutRequestID"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentStatusResponse(dto))
}
