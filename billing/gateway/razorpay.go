package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MinOrderAmount is the smallest order the provider accepts, in minor units.
const MinOrderAmount = 100

const defaultBaseURL = "https://api.razorpay.com"

// Config holds the gateway credentials.
type Config struct {
	KeyID     string `env:"RAZORPAY_KEY_ID,required"`
	KeySecret string `env:"RAZORPAY_KEY_SECRET,required"`
	BaseURL   string `env:"RAZORPAY_BASE_URL" envDefault:"https://api.razorpay.com"`
}

// RazorpayClient implements Gateway against the Razorpay Orders API.
type RazorpayClient struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// RazorpayOption configures optional RazorpayClient settings.
type RazorpayOption func(*RazorpayClient)

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(c *http.Client) RazorpayOption {
	return func(r *RazorpayClient) {
		if c != nil {
			r.client = c
		}
	}
}

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) RazorpayOption {
	return func(r *RazorpayClient) {
		if u != "" {
			r.baseURL = u
		}
	}
}

// NewRazorpayClient creates a gateway client from credentials.
func NewRazorpayClient(cfg Config, opts ...RazorpayOption) (*RazorpayClient, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("%w: key id and secret are required", ErrInvalidConfig)
	}

	c := &RazorpayClient{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   cfg.BaseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// KeyID returns the public key identifier.
func (c *RazorpayClient) KeyID() string { return c.keyID }

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers an order with the provider.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	if amount < MinOrderAmount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if currency == "" {
		currency = "INR"
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, errors.Join(ErrOrderCreationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Join(ErrOrderCreationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrOrderCreationFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Join(ErrOrderCreationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrOrderCreationFailed, apiErr.Error.Code, apiErr.Error.Description)
		}
		return nil, fmt.Errorf("%w: unexpected status %d", ErrOrderCreationFailed, resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, errors.Join(ErrOrderCreationFailed, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: response missing order id", ErrOrderCreationFailed)
	}
	return &order, nil
}

// VerifySignature checks the checkout callback signature: an HMAC-SHA256 of
// "<orderID>|<paymentID>" keyed with the secret, hex encoded. Comparison is
// constant time.
func (c *RazorpayClient) VerifySignature(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrSignatureMismatch
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
