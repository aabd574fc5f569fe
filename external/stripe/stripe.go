package stripe

import (
	"context"
	"encoding/json"
	"fmt"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Client wraps the pieces of the Stripe SDK the storefront uses: hosted
// checkout sessions and webhook verification. The success redirect is never
// treated as proof of payment; only a verified webhook event is.
type Client struct {
	webhookSecret string
}

func NewClient(secretKey, webhookSecret string) *Client {
	stripego.Key = secretKey
	return &Client{webhookSecret: webhookSecret}
}

// LineItem is one priced line on the hosted checkout page. Amounts are
// minor units.
type LineItem struct {
	Name        string
	AmountCents int64
	Quantity    int64
}

type CheckoutSessionInput struct {
	LineItems     []LineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CreateCheckoutSession builds a hosted payment page and returns its id and
// redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (id, url string, err error) {
	params := &stripego.CheckoutSessionParams{
		Params:             stripego.Params{Context: ctx},
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		CustomerEmail:      stripego.String(in.CustomerEmail),
		SuccessURL:         stripego.String(in.SuccessURL),
		CancelURL:          stripego.String(in.CancelURL),
	}
	for _, li := range in.LineItems {
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionLineItemParams{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripego.String(string(stripego.CurrencyUSD)),
				UnitAmount: stripego.Int64(li.AmountCents),
				ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripego.String(li.Name),
				},
			},
			Quantity: stripego.Int64(li.Quantity),
		})
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return s.ID, s.URL, nil
}

// CompletedSession is the slice of a checkout.session.completed event the
// order flow needs.
type CompletedSession struct {
	ID               string
	CustomerEmail    string
	AmountTotalCents int64
	Metadata         map[string]string
}

// VerifyCompletedSession checks the webhook signature and extracts the
// completed session. It returns (nil, nil) for validly signed events of any
// other type, so callers can acknowledge and ignore them.
func (c *Client) VerifyCompletedSession(payload []byte, sigHeader string) (*CompletedSession, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe: invalid signature: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var s stripego.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("stripe: parse session: %w", err)
	}

	email := s.CustomerEmail
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		email = s.CustomerDetails.Email
	}

	return &CompletedSession{
		ID:               s.ID,
		CustomerEmail:    email,
		AmountTotalCents: s.AmountTotal,
		Metadata:         s.Metadata,
	}, nil
}
