package mpesa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
)

// 06:15:30 UTC is 09:15:30 in Nairobi.
var pushNow = time.Date(2026, 3, 14, 6, 15, 30, 0, time.UTC)

type fakeDaraja struct {
	t         *testing.T
	tokenHits int
	pushes    []pushRequest
	auth      []string
	pushReply func(w http.ResponseWriter)
}

func (f *fakeDaraja) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		f.tokenHits++
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(f.t, "client_credentials", r.URL.Query().Get("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123", "expires_in": "3599"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		var body pushRequest
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.pushes = append(f.pushes, body)
		if f.pushReply != nil {
			f.pushReply(w)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"MerchantRequestID":   "29115-34620561-1",
			"CheckoutRequestID":   "ws_CO_191220191020363925",
			"ResponseCode":        "0",
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage":     "Success. Request accepted for processing",
		})
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeDaraja) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:        srv.URL + "/",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		PassKey:        "passkey",
		CallbackURL:    "https://pos.example.com/api/v1/payments/mpesa/callback",
	}, clock.NewMockClock(pushNow), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestInitiatePush_Success(t *testing.T) {
	fake := &fakeDaraja{t: t}
	c := newTestClient(t, fake)

	resp, err := c.InitiatePush(context.Background(), &contracts.PushRequest{
		PhoneNumber: "0712 345 678",
		Amount:      domain.FromCents(24950),
		Reference:   "S202603140001",
		Description: "Payment for sale S202603140001",
	})
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", resp.MerchantRequestID)
	assert.Equal(t, "Success. Request accepted for processing", resp.CustomerMessage)

	require.Len(t, fake.pushes, 1)
	push := fake.pushes[0]
	assert.Equal(t, "Bearer tok-123", fake.auth[0])
	assert.Equal(t, "20260314091530", push.Timestamp)
	assert.Equal(t, Password("174379", "passkey", "20260314091530"), push.Password)
	assert.Equal(t, int64(250), push.Amount, "amount rounds half-up to whole units")
	assert.Equal(t, "254712345678", push.PartyA)
	assert.Equal(t, "254712345678", push.PhoneNumber)
	assert.Equal(t, "174379", push.PartyB)
	assert.Equal(t, "CustomerPayBillOnline", push.TransactionType)
	assert.Equal(t, "202603140001", push.AccountReference)
	assert.Equal(t, "Payment for s", push.TransactionDesc)
}

func TestInitiatePush_ReferenceIdentifiesSale(t *testing.T) {
	fake := &fakeDaraja{t: t}
	c := newTestClient(t, fake)

	for _, ref := range []string{"S202603140001", "S202603140007", "S202603140010"} {
		_, err := c.InitiatePush(context.Background(), &contracts.PushRequest{
			PhoneNumber: "0712345678",
			Amount:      domain.FromUnits(10),
			Reference:   ref,
		})
		require.NoError(t, err)
	}

	require.Len(t, fake.pushes, 3)
	assert.Equal(t, "202603140001", fake.pushes[0].AccountReference)
	assert.Equal(t, "202603140007", fake.pushes[1].AccountReference)
	assert.Equal(t, "202603140010", fake.pushes[2].AccountReference)
}

func TestAccountReference(t *testing.T) {
	assert.Equal(t, "S1", accountReference(" S1 "))
	assert.Equal(t, "ABCDEFGHIJKL", accountReference("ABCDEFGHIJKL"))
	assert.Equal(t, "BCDEFGHIJKLM", accountReference("ABCDEFGHIJKLM"))
}

func TestInitiatePush_TokenPerPush(t *testing.T) {
	fake := &fakeDaraja{t: t}
	c := newTestClient(t, fake)
	req := &contracts.PushRequest{PhoneNumber: "254712345678", Amount: domain.FromUnits(10), Reference: "S1"}

	_, err := c.InitiatePush(context.Background(), req)
	require.NoError(t, err)
	_, err = c.InitiatePush(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, fake.tokenHits)
}

func TestInitiatePush_ProviderRejects(t *testing.T) {
	t.Run("non-zero response code", func(t *testing.T) {
		fake := &fakeDaraja{t: t, pushReply: func(w http.ResponseWriter) {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"ResponseCode":        "1",
				"ResponseDescription": "The balance is insufficient for the transaction",
			})
		}}
		c := newTestClient(t, fake)

		_, err := c.InitiatePush(context.Background(), &contracts.PushRequest{PhoneNumber: "0712345678", Amount: domain.FromUnits(10)})
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "1", perr.Code)
		assert.Equal(t, "The balance is insufficient for the transaction", perr.Description)
	})

	t.Run("http error body", func(t *testing.T) {
		fake := &fakeDaraja{t: t, pushReply: func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"requestId":    "11728-2929992-1",
				"errorCode":    "400.002.02",
				"errorMessage": "Bad Request - Invalid PhoneNumber",
			})
		}}
		c := newTestClient(t, fake)

		_, err := c.InitiatePush(context.Background(), &contracts.PushRequest{PhoneNumber: "0712345678", Amount: domain.FromUnits(10)})
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
		assert.Equal(t, "400.002.02", perr.Code)
		assert.Equal(t, "Bad Request - Invalid PhoneNumber", perr.Description)
	})
}

func TestInitiatePush_ValidatesBeforeCalling(t *testing.T) {
	fake := &fakeDaraja{t: t}
	c := newTestClient(t, fake)

	_, err := c.InitiatePush(context.Background(), &contracts.PushRequest{PhoneNumber: "12345", Amount: domain.FromUnits(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneNumber)

	_, err = c.InitiatePush(context.Background(), &contracts.PushRequest{PhoneNumber: "0712345678", Amount: domain.FromCents(49)})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentAmount)

	assert.Zero(t, fake.tokenHits)
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://sandbox.safaricom.co.ke"}, clock.NewRealClock())
	assert.Error(t, err)
}
