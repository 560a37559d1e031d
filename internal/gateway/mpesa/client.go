// Package mpesa talks to the Safaricom Daraja API: it initiates STK push
// payment requests and parses the result callbacks Daraja posts back.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
)

const (
	tokenPath = "/oauth/v1/generate?grant_type=client_credentials"
	pushPath  = "/mpesa/stkpush/v1/processrequest"

	timestampLayout = "20060102150405"

	maxReferenceLen   = 12
	maxDescriptionLen = 13

	// DefaultTransactionType charges a paybill shortcode.
	DefaultTransactionType = "CustomerPayBillOnline"
)

// Kenya does not observe daylight saving, so a fixed zone avoids depending on
// the host's tz database.
var nairobi = time.FixedZone("EAT", 3*60*60)

// Config holds the Daraja credentials and endpoints.
type Config struct {
	BaseURL         string
	ConsumerKey     string
	ConsumerSecret  string
	ShortCode       string
	PassKey         string
	CallbackURL     string
	TransactionType string
	Timeout         time.Duration
}

// Client initiates STK pushes. It is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	clock  clock.Clock
	logger *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Tests point it at an
// httptest server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Daraja client.
func NewClient(cfg Config, clk clock.Clock, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" || cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" ||
		cfg.ShortCode == "" || cfg.PassKey == "" || cfg.CallbackURL == "" {
		return nil, errors.New("mpesa: base url, credentials, shortcode, passkey and callback url are required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TransactionType == "" {
		cfg.TransactionType = DefaultTransactionType
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		clock:  clk,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ contracts.PaymentGateway = (*Client)(nil)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type pushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type pushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// errorResponse is the body Daraja sends with 4xx and 5xx statuses.
type errorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// InitiatePush asks the customer's phone to approve a payment. A fresh token
// is fetched for every push.
func (c *Client) InitiatePush(ctx context.Context, req *contracts.PushRequest) (*contracts.PushResponse, error) {
	phone, err := domain.NormalizePhoneNumber(req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if req.Amount == nil {
		return nil, domain.ErrInvalidPaymentAmount
	}
	amount := req.Amount.RoundToUnits()
	if amount < 1 {
		return nil, fmt.Errorf("%w: %s rounds below 1", domain.ErrInvalidPaymentAmount, req.Amount)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.clock.Now().In(nairobi).Format(timestampLayout)
	body := pushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          Password(c.cfg.ShortCode, c.cfg.PassKey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   c.cfg.TransactionType,
		Amount:            amount,
		PartyA:            phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountReference(req.Reference),
		TransactionDesc:   truncate(req.Description, maxDescriptionLen),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("mpesa: failed to encode push: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+pushPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("mpesa: failed to build push request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	var out pushResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	if out.ResponseCode != "0" {
		return nil, &ProviderError{Code: out.ResponseCode, Description: out.ResponseDescription}
	}

	c.logger.Debug("stk push accepted",
		"checkout_request_id", out.CheckoutRequestID,
		"merchant_request_id", out.MerchantRequestID,
		"reference", body.AccountReference,
	)
	return &contracts.PushResponse{
		MerchantRequestID: out.MerchantRequestID,
		CheckoutRequestID: out.CheckoutRequestID,
		ResponseCode:      out.ResponseCode,
		ResponseDesc:      out.ResponseDescription,
		CustomerMessage:   out.CustomerMessage,
	}, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("mpesa: failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	var out tokenResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &ProviderError{Description: "empty access token"}
	}
	return out.AccessToken, nil
}

// do sends req and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mpesa: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("mpesa: failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		desc := e.ErrorMessage
		if desc == "" {
			desc = strings.TrimSpace(string(raw))
		}
		return &ProviderError{StatusCode: resp.StatusCode, Code: e.ErrorCode, Description: desc}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mpesa: failed to decode response: %w", err)
	}
	return nil
}

// Password is base64(shortcode + passkey + timestamp).
func Password(shortCode, passKey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passKey + timestamp))
}

// accountReference keeps the tail of long references. Sale numbers carry
// their per-day sequence at the end, so the tail is what tells sales apart.
func accountReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if len(ref) <= maxReferenceLen {
		return ref
	}
	return ref[len(ref)-maxReferenceLen:]
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
