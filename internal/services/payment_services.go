package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mkellijah10/Oillabz/external/square"
	"github.com/mkellijah10/Oillabz/external/stripe"
	"github.com/mkellijah10/Oillabz/internal/model"
)

// PaymentAdapter is the provider-independent charge contract. One variant
// is selected by configuration; the wizard only ever talks to this
// interface.
type PaymentAdapter interface {
	Name() string
	Charge(ctx context.Context, req model.ChargeRequest) (*model.ChargeResult, error)
}

// PaymentRecorder persists payment attempts. The Paid record doubles as the
// webhook replay guard.
type PaymentRecorder interface {
	CreatePending(ctx context.Context, provider, providerRef string, amountCents int64, payload []byte) (int64, error)
	GetByProviderRef(ctx context.Context, providerRef string) (*model.Payment, error)
	MarkPaid(ctx context.Context, providerRef string, payload []byte) error
	MarkFailed(ctx context.Context, providerRef string, payload []byte) error
}

// SessionVerifier checks a provider webhook signature and extracts the
// completed session, if the event is one.
type SessionVerifier interface {
	VerifyCompletedSession(payload []byte, sigHeader string) (*stripe.CompletedSession, error)
}

// ChargeOutcome is what the charge endpoint returns: either a completed
// order (inline provider) or a redirect URL (hosted provider).
type ChargeOutcome struct {
	Order        *model.Order        `json:"order,omitempty"`
	Confirmation *model.Confirmation `json:"confirmation,omitempty"`
	Step         model.CheckoutStep  `json:"step,omitempty"`
	RedirectURL  string              `json:"redirectUrl,omitempty"`
	FollowUp     string              `json:"followUp,omitempty"`
}

// PaymentService orchestrates the Paying -> Complete transition: charge
// through the adapter, then (and only then) order number, notification,
// cart clear and session destroy. A failed charge leaves every bit of
// state untouched so the buyer can correct and resubmit.
type PaymentService struct {
	Adapter  PaymentAdapter
	Verifier SessionVerifier
	Payments PaymentRecorder
	Cart     *CartService
	Checkout *CheckoutService
	Orders   *OrderService
}

func NewPaymentService(
	adapter PaymentAdapter,
	verifier SessionVerifier,
	payments PaymentRecorder,
	cart *CartService,
	checkout *CheckoutService,
	orders *OrderService,
) *PaymentService {
	return &PaymentService{
		Adapter:  adapter,
		Verifier: verifier,
		Payments: payments,
		Cart:     cart,
		Checkout: checkout,
		Orders:   orders,
	}
}

// ChargeInput is the client's charge request body.
type ChargeInput struct {
	SourceToken string         `json:"sourceToken"`
	AmountCents int64          `json:"amountMinorUnits"`
	Currency    string         `json:"currency"`
	Customer    model.Customer `json:"customer"`
}

// Charge runs the payment for the visitor's active checkout.
func (s *PaymentService) Charge(ctx context.Context, visitorID string, in ChargeInput) (*ChargeOutcome, error) {
	state, err := s.Checkout.Load(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if !state.Step.CanTransition(model.StepComplete) {
		return nil, ErrNotPaying
	}

	resolved := s.Checkout.Resolve(state.Items)
	pricing := ComputePricing(resolved, state.DeliveryMethod)

	// The amount still originates client-side, mirroring the original
	// contract. Recomputing from the cart is the trusted figure; a mismatch
	// is logged as a hardening signal.
	amount := in.AmountCents
	if amount <= 0 {
		amount = pricing.TotalCents
	} else if amount != pricing.TotalCents {
		log.Printf("payment: client amount %d differs from computed %d (visitor %s)", amount, pricing.TotalCents, visitorID)
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	req := model.ChargeRequest{
		SourceToken:    in.SourceToken,
		AmountCents:    amount,
		Currency:       currency,
		Customer:       mergeCustomer(state, in.Customer),
		LineItems:      orderItems(resolved, pricing),
		DeliveryMethod: state.DeliveryMethod,
		VisitorID:      visitorID,
	}
	if state.DeliveryMethod == model.DeliveryShipping {
		req.ShippingAddress = shippingAddress(state)
	}

	result, err := s.Adapter.Charge(ctx, req)
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case model.ChargeRedirect:
		if _, err := s.Payments.CreatePending(ctx, s.Adapter.Name(), result.RedirectRef, amount, nil); err != nil {
			log.Printf("payment: record pending %s: %v", result.RedirectRef, err)
		}
		return &ChargeOutcome{RedirectURL: result.RedirectURL}, nil

	case model.ChargeCompleted:
		payload, _ := json.Marshal(result.Confirmation)
		if _, err := s.Payments.CreatePending(ctx, s.Adapter.Name(), result.Confirmation.PaymentID, amount, nil); err != nil {
			log.Printf("payment: record %s: %v", result.Confirmation.PaymentID, err)
		} else if err := s.Payments.MarkPaid(ctx, result.Confirmation.PaymentID, payload); err != nil {
			log.Printf("payment: mark paid %s: %v", result.Confirmation.PaymentID, err)
		}

		order := s.completeOrder(ctx, visitorID, state, req, pricing)
		return &ChargeOutcome{
			Order:        order,
			Confirmation: result.Confirmation,
			Step:         state.Step,
			FollowUp:     followUp(order),
		}, nil

	default:
		return nil, fmt.Errorf("payment: unexpected charge status %q", result.Status)
	}
}

// completeOrder performs the Paying -> Complete side effects in order:
// order number, notification dispatch, cart clear, terminal transition. It
// runs only after a confirmed charge.
func (s *PaymentService) completeOrder(
	ctx context.Context,
	visitorID string,
	state *model.CheckoutState,
	req model.ChargeRequest,
	pricing model.Pricing,
) *model.Order {

	order := &model.Order{
		OrderNumber:     s.Orders.NewOrderNumber(),
		Customer:        req.Customer,
		Items:           req.LineItems,
		Total:           pricing.Total,
		DeliveryMethod:  state.DeliveryMethod,
		ShippingAddress: req.ShippingAddress,
	}

	s.Orders.NotifyAsync(order)

	if err := s.Cart.Clear(ctx, visitorID); err != nil {
		log.Printf("payment: clear cart for %s: %v", visitorID, err)
	}
	if err := s.Checkout.Complete(ctx, visitorID, state); err != nil {
		log.Printf("payment: complete checkout for %s: %v", visitorID, err)
	}
	return order
}

// HandleWebhook processes a signed provider callback. Replayed deliveries
// for an already-paid reference are acknowledged without side effects.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if s.Verifier == nil {
		return errors.New("no webhook verifier configured")
	}
	cs, err := s.Verifier.VerifyCompletedSession(payload, sigHeader)
	if err != nil {
		return err
	}
	if cs == nil {
		// validly signed, not a completion event
		return nil
	}
	return s.handleCompletedSession(ctx, cs, payload)
}

func (s *PaymentService) handleCompletedSession(ctx context.Context, cs *stripe.CompletedSession, payload []byte) error {
	existing, err := s.Payments.GetByProviderRef(ctx, cs.ID)
	if err != nil {
		return err
	}
	if existing != nil && existing.PaymentStatus == "Paid" {
		// already processed, safely ignore
		return nil
	}
	if existing == nil {
		if _, err := s.Payments.CreatePending(ctx, "stripe", cs.ID, cs.AmountTotalCents, payload); err != nil {
			return err
		}
	}
	if err := s.Payments.MarkPaid(ctx, cs.ID, payload); err != nil {
		return err
	}

	visitorID := cs.Metadata["visitor_id"]

	order := &model.Order{
		OrderNumber: s.Orders.NewOrderNumber(),
		Customer: model.Customer{
			Name:  cs.Metadata["customer_name"],
			Email: cs.CustomerEmail,
		},
		Total:          model.FromCents(cs.AmountTotalCents),
		DeliveryMethod: model.DeliveryMethod(cs.Metadata["delivery_method"]),
	}
	if order.DeliveryMethod == "" {
		order.DeliveryMethod = model.DeliveryShipping
	}
	if raw := cs.Metadata["shipping_address"]; raw != "" {
		var addr model.Address
		if err := json.Unmarshal([]byte(raw), &addr); err == nil {
			order.ShippingAddress = &addr
		}
	}

	// Recover line items from the wizard state while it still exists.
	var state *model.CheckoutState
	if visitorID != "" {
		if st, err := s.Checkout.Load(ctx, visitorID); err == nil {
			state = st
			resolved := s.Checkout.Resolve(st.Items)
			order.Items = orderItems(resolved, ComputePricing(resolved, order.DeliveryMethod))
		}
	}

	s.Orders.NotifyAsync(order)

	if visitorID != "" {
		if err := s.Cart.Clear(ctx, visitorID); err != nil {
			log.Printf("webhook: clear cart for %s: %v", visitorID, err)
		}
		if state != nil && state.Step.CanTransition(model.StepComplete) {
			if err := s.Checkout.Complete(ctx, visitorID, state); err != nil {
				log.Printf("webhook: complete checkout for %s: %v", visitorID, err)
			}
		} else if err := s.Checkout.Destroy(ctx, visitorID); err != nil {
			log.Printf("webhook: destroy checkout for %s: %v", visitorID, err)
		}
	}
	return nil
}

func mergeCustomer(state *model.CheckoutState, in model.Customer) model.Customer {
	c := model.Customer{
		Name:  state.Form.FullName,
		Email: state.Email,
		Phone: state.Form.PhoneNumber,
	}
	if c.Name == "" {
		c.Name = in.Name
	}
	if c.Email == "" {
		c.Email = in.Email
	}
	if c.Phone == "" {
		c.Phone = in.Phone
	}
	return c
}

func shippingAddress(state *model.CheckoutState) *model.Address {
	return &model.Address{
		Name:    state.Form.FullName,
		Address: state.Form.Address,
		City:    state.Form.City,
		State:   state.Form.State,
		ZipCode: state.Form.ZipCode,
		Country: state.Form.Country,
	}
}

func orderItems(resolved []model.ResolvedCartItem, pricing model.Pricing) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(resolved)+1)
	for _, it := range resolved {
		items = append(items, model.OrderItem{
			Name:     it.Product.Name,
			Price:    it.Product.Price,
			Quantity: it.Quantity,
		})
	}
	if pricing.ShippingCents > 0 {
		items = append(items, model.OrderItem{
			Name:     "Shipping",
			Price:    model.FromCents(pricing.ShippingCents),
			Quantity: 1,
		})
	}
	return items
}

func followUp(order *model.Order) string {
	if order.DeliveryMethod == model.DeliveryPickup {
		return "Your order will be available for pickup at our Hartford location within 24 hours. " +
			"Oillabz Hartford, 257 South Marshall Street, Hartford, CT 06105. Hours: Mon-Sat 10am-7pm, Sun 12pm-5pm."
	}
	return fmt.Sprintf("We've sent a confirmation email to %s with your order details.", order.Customer.Email)
}

// SquareAdapter charges inline through the Square payments client. The
// client must pass its bounded readiness poll before the first charge.
type SquareAdapter struct {
	Client *square.Client
}

func NewSquareAdapter(client *square.Client) *SquareAdapter {
	return &SquareAdapter{Client: client}
}

func (a *SquareAdapter) Name() string { return "square" }

func (a *SquareAdapter) Charge(ctx context.Context, req model.ChargeRequest) (*model.ChargeResult, error) {
	if req.AmountCents <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if req.SourceToken == "" {
		return nil, errors.New("missing payment token")
	}

	if err := a.Client.EnsureReady(ctx); err != nil {
		return nil, err
	}

	p, err := a.Client.CreatePayment(ctx, req.SourceToken, req.AmountCents, req.Currency, req.Customer.Email)
	if err != nil {
		return nil, err
	}

	return &model.ChargeResult{
		Status: model.ChargeCompleted,
		Confirmation: &model.Confirmation{
			PaymentID:  p.ID,
			Status:     p.Status,
			ReceiptURL: p.ReceiptURL,
		},
	}, nil
}

// StripeAdapter hands the buyer off to a hosted checkout page. Completion
// arrives later through the signed webhook, never through the redirect.
type StripeAdapter struct {
	Client  *stripe.Client
	BaseURL string
}

func NewStripeAdapter(client *stripe.Client, baseURL string) *StripeAdapter {
	return &StripeAdapter{Client: client, BaseURL: baseURL}
}

func (a *StripeAdapter) Name() string { return "stripe" }

func (a *StripeAdapter) Charge(ctx context.Context, req model.ChargeRequest) (*model.ChargeResult, error) {
	if req.AmountCents <= 0 {
		return nil, errors.New("amount must be positive")
	}

	in := stripe.CheckoutSessionInput{
		CustomerEmail: req.Customer.Email,
		SuccessURL:    a.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     a.BaseURL + "/checkout",
		Metadata: map[string]string{
			"visitor_id":      req.VisitorID,
			"customer_name":   req.Customer.Name,
			"delivery_method": string(req.DeliveryMethod),
		},
	}
	if req.ShippingAddress != nil {
		if b, err := json.Marshal(req.ShippingAddress); err == nil {
			in.Metadata["shipping_address"] = string(b)
		}
	}
	for _, it := range req.LineItems {
		in.LineItems = append(in.LineItems, stripe.LineItem{
			Name:        it.Name,
			AmountCents: model.ToCents(it.Price),
			Quantity:    int64(it.Quantity),
		})
	}

	id, url, err := a.Client.CreateCheckoutSession(ctx, in)
	if err != nil {
		return nil, err
	}

	return &model.ChargeResult{
		Status:      model.ChargeRedirect,
		RedirectURL: url,
		RedirectRef: id,
	}, nil
}
