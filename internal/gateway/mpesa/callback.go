package mpesa

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
)

// ErrMalformedCallback is returned when a callback body is not an STK result.
var ErrMalformedCallback = errors.New("mpesa: malformed callback")

// Callback is a flattened STK push result.
type Callback struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int64
	ResultDesc        string

	// Metadata, present only on success.
	Amount          *domain.Money
	ReceiptNumber   string
	PhoneNumber     string
	TransactionDate *time.Time

	// Skipped names metadata items that were present but unreadable. They
	// are left unset so the result itself still reconciles.
	Skipped []string

	// Raw is the body as received.
	Raw string
}

// Succeeded reports whether the customer approved the payment.
func (c *Callback) Succeeded() bool { return c.ResultCode == 0 }

type callbackEnvelope struct {
	Body struct {
		STKCallback *struct {
			MerchantRequestID string          `json:"MerchantRequestID"`
			CheckoutRequestID string          `json:"CheckoutRequestID"`
			ResultCode        json.Number     `json:"ResultCode"`
			ResultDesc        string          `json:"ResultDesc"`
			CallbackMetadata  *callbackValues `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type callbackValues struct {
	Item []struct {
		Name  string          `json:"Name"`
		Value json.RawMessage `json:"Value"`
	} `json:"Item"`
}

// ParseCallback decodes the body Daraja posts to the callback URL.
func ParseCallback(body []byte) (*Callback, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var env callbackEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}
	stk := env.Body.STKCallback
	if stk == nil || stk.CheckoutRequestID == "" {
		return nil, fmt.Errorf("%w: missing Body.stkCallback.CheckoutRequestID", ErrMalformedCallback)
	}
	code, err := stk.ResultCode.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: ResultCode %q", ErrMalformedCallback, stk.ResultCode)
	}

	cb := &Callback{
		MerchantRequestID: stk.MerchantRequestID,
		CheckoutRequestID: stk.CheckoutRequestID,
		ResultCode:        code,
		ResultDesc:        stk.ResultDesc,
		Raw:               string(body),
	}
	if stk.CallbackMetadata == nil {
		return cb, nil
	}

	for _, item := range stk.CallbackMetadata.Item {
		value := scalar(item.Value)
		switch item.Name {
		case "Amount":
			if value == "" {
				continue
			}
			amount, err := domain.ParseMoney(value)
			if err != nil {
				cb.Skipped = append(cb.Skipped, fmt.Sprintf("Amount=%s", value))
				continue
			}
			cb.Amount = amount
		case "MpesaReceiptNumber":
			cb.ReceiptNumber = value
		case "PhoneNumber":
			cb.PhoneNumber = value
		case "TransactionDate":
			if value == "" {
				continue
			}
			ts, err := time.ParseInLocation(timestampLayout, value, nairobi)
			if err != nil {
				cb.Skipped = append(cb.Skipped, fmt.Sprintf("TransactionDate=%s", value))
				continue
			}
			ts = ts.UTC()
			cb.TransactionDate = &ts
		}
	}
	return cb, nil
}

// scalar renders a metadata value as text. Daraja sends numbers for Amount,
// TransactionDate and PhoneNumber and strings for the receipt.
func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
		return ""
	}
	// Large integers such as 254712345678 must not pass through float64.
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil && strings.ContainsAny(string(raw), "eE") {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(raw)
}

// Ack is the body Daraja expects in reply to every callback.
type Ack struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// Accepted is the acknowledgement returned whatever the outcome.
var Accepted = Ack{ResultCode: 0, ResultDesc: "Accepted"}
