package square

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotReady is returned when the readiness poll exhausts its attempts.
// Callers surface it as a fatal setup error with a retry action; it must
// never turn into an indefinite hang.
var ErrNotReady = errors.New("square: payments SDK failed to load")

const (
	defaultReadyAttempts = 20
	defaultReadyInterval = 250 * time.Millisecond
)

// Client charges cards through the Square Payments API. The caller hands it
// an opaque single-use token produced by the card widget; raw card data
// never reaches this process.
type Client struct {
	BaseURL     string
	AccessToken string
	LocationID  string

	ReadyAttempts int
	ReadyInterval time.Duration

	client *http.Client

	mu    sync.Mutex
	ready bool
}

func NewClient(baseURL, accessToken, locationID string) *Client {
	return &Client{
		BaseURL:       baseURL,
		AccessToken:   accessToken,
		LocationID:    locationID,
		ReadyAttempts: defaultReadyAttempts,
		ReadyInterval: defaultReadyInterval,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

// EnsureReady runs the bounded readiness poll once per client. The Square
// widget script is late-bound in the original design; here the analog is
// the provider endpoint answering at all.
func (c *Client) EnsureReady(ctx context.Context) error {
	c.mu.Lock()
	if c.ready {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.WaitReady(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	return nil
}

// WaitReady polls the provider until it responds, up to ReadyAttempts with
// a fixed interval between tries. Cancelling ctx stops the poll
// immediately; no further attempts run after cancellation.
func (c *Client) WaitReady(ctx context.Context) error {
	attempts := c.ReadyAttempts
	if attempts <= 0 {
		attempts = defaultReadyAttempts
	}
	interval := c.ReadyInterval
	if interval <= 0 {
		interval = defaultReadyInterval
	}

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.ping(ctx) == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return ErrNotReady
}

func (c *Client) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v2/locations/"+c.LocationID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("square: status %d", resp.StatusCode)
	}
	return nil
}

// Payment is the subset of Square's payment object the storefront uses.
type Payment struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	ReceiptURL string `json:"receipt_url"`
}

type createPaymentRequest struct {
	SourceID       string `json:"source_id"`
	IdempotencyKey string `json:"idempotency_key"`
	AmountMoney    struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"amount_money"`
	LocationID        string `json:"location_id,omitempty"`
	BuyerEmailAddress string `json:"buyer_email_address,omitempty"`
	Note              string `json:"note,omitempty"`
}

type createPaymentResponse struct {
	Payment *Payment `json:"payment"`
	Errors  []struct {
		Category string `json:"category"`
		Code     string `json:"code"`
		Detail   string `json:"detail"`
	} `json:"errors"`
}

// CreatePayment charges the tokenized card. A fresh idempotency key is
// generated per attempt, so a client retry after a network blip cannot
// double-charge.
func (c *Client) CreatePayment(
	ctx context.Context,
	sourceToken string,
	amountCents int64,
	currency string,
	buyerEmail string,
) (*Payment, error) {

	body := createPaymentRequest{
		SourceID:          sourceToken,
		IdempotencyKey:    uuid.NewString(),
		LocationID:        c.LocationID,
		BuyerEmailAddress: buyerEmail,
	}
	body.AmountMoney.Amount = amountCents
	body.AmountMoney.Currency = currency

	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/v2/payments",
		bytes.NewBuffer(b),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("square: decode response: %w", err)
	}

	if len(out.Errors) > 0 {
		return nil, errors.New(out.Errors[0].Detail)
	}
	if out.Payment == nil {
		return nil, fmt.Errorf("square: unexpected response (status %d)", resp.StatusCode)
	}
	return out.Payment, nil
}
