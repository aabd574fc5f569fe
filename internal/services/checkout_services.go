package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkellijah10/Oillabz/internal/model"
	"github.com/mkellijah10/Oillabz/internal/storage"
)

// Pricing rules shared by the cart preview and the checkout summary.
const (
	FreeShippingThresholdCents = 5000 // free shipping strictly over $50.00
	ShippingFeeCents           = 599
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrEmailRequired    = errors.New("email is required")
	ErrNoActiveCheckout = errors.New("no active checkout")
	ErrNotPaying        = errors.New("checkout is not at the payment step")
)

// ValidationError points at the first form field that blocks the wizard
// from advancing.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CheckoutService owns the cart-to-checkout handoff and the two-step
// checkout wizard. Wizard state persists in durable storage so an
// abandoned checkout resumes; the handoff keys are destroyed only when an
// order completes.
type CheckoutService struct {
	Store   storage.KV
	Cart    *CartService
	Catalog *CatalogService
}

func NewCheckoutService(store storage.KV, cart *CartService, catalog *CatalogService) *CheckoutService {
	return &CheckoutService{Store: store, Cart: cart, Catalog: catalog}
}

// Begin starts the handoff from the cart page: it snapshots the cart and
// email under the checkout keys. Empty cart and missing email are distinct
// refusals.
func (s *CheckoutService) Begin(ctx context.Context, visitorID, email string) error {
	items, err := s.Cart.Items(ctx, visitorID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrEmptyCart
	}
	if email == "" {
		return ErrEmailRequired
	}

	snapshot, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := s.Store.Set(ctx, visitorID, storage.KeyCheckoutEmail, []byte(email)); err != nil {
		return err
	}
	return s.Store.Set(ctx, visitorID, storage.KeyCheckoutCart, snapshot)
}

// Load returns the wizard's working state, building it from the handoff
// keys on first read. Missing or corrupt handoff data means there is no
// active checkout; the caller sends the visitor back to the cart.
func (s *CheckoutService) Load(ctx context.Context, visitorID string) (*model.CheckoutState, error) {
	if raw, err := s.Store.Get(ctx, visitorID, storage.KeyCheckoutState); err == nil {
		var state model.CheckoutState
		if err := json.Unmarshal(raw, &state); err == nil {
			return &state, nil
		}
		// fall through and rebuild from the handoff
	}

	emailRaw, err := s.Store.Get(ctx, visitorID, storage.KeyCheckoutEmail)
	if err != nil {
		return nil, ErrNoActiveCheckout
	}
	cartRaw, err := s.Store.Get(ctx, visitorID, storage.KeyCheckoutCart)
	if err != nil {
		return nil, ErrNoActiveCheckout
	}

	var items []model.CartItem
	if err := json.Unmarshal(cartRaw, &items); err != nil || len(emailRaw) == 0 {
		return nil, ErrNoActiveCheckout
	}

	state := &model.CheckoutState{
		Step:           model.StepCollectingInfo,
		Email:          string(emailRaw),
		Items:          items,
		DeliveryMethod: model.DeliveryShipping,
	}
	if err := s.saveState(ctx, visitorID, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *CheckoutService) saveState(ctx context.Context, visitorID string, state *model.CheckoutState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, visitorID, storage.KeyCheckoutState, b)
}

// SubmitInfo validates the delivery details and advances the wizard to the
// payment step. Validation failures block the transition; nothing advances
// partially.
func (s *CheckoutService) SubmitInfo(
	ctx context.Context,
	visitorID string,
	method model.DeliveryMethod,
	form model.CheckoutForm,
) (*model.CheckoutState, error) {

	state, err := s.Load(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if !state.Step.CanTransition(model.StepPaying) {
		return nil, fmt.Errorf("cannot continue to payment from %s", state.Step)
	}

	if verr := ValidateCheckoutForm(method, form); verr != nil {
		return nil, verr
	}

	state.DeliveryMethod = method
	state.Form = form
	state.Step = model.StepPaying
	if err := s.saveState(ctx, visitorID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Back returns from the payment step to the details step, keeping the form
// intact.
func (s *CheckoutService) Back(ctx context.Context, visitorID string) (*model.CheckoutState, error) {
	state, err := s.Load(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if !state.Step.CanTransition(model.StepCollectingInfo) {
		return nil, fmt.Errorf("cannot go back from %s", state.Step)
	}
	state.Step = model.StepCollectingInfo
	if err := s.saveState(ctx, visitorID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ValidateCheckoutForm enforces the per-delivery-method required fields.
func ValidateCheckoutForm(method model.DeliveryMethod, form model.CheckoutForm) *ValidationError {
	switch method {
	case model.DeliveryShipping:
		for _, f := range []struct{ field, value string }{
			{"fullName", form.FullName},
			{"address", form.Address},
			{"city", form.City},
			{"state", form.State},
			{"zipCode", form.ZipCode},
		} {
			if f.value == "" {
				return &ValidationError{Field: f.field, Message: "required for shipping"}
			}
		}
	case model.DeliveryPickup:
		if form.FullName == "" {
			return &ValidationError{Field: "fullName", Message: "required for pickup"}
		}
		if form.PhoneNumber == "" {
			return &ValidationError{Field: "phoneNumber", Message: "required for pickup"}
		}
	default:
		return &ValidationError{Field: "deliveryMethod", Message: "must be shipping or pickup"}
	}
	return nil
}

// Resolve joins cart entries against the live catalog. A product that has
// vanished from the catalog since it was added is dropped from the order.
func (s *CheckoutService) Resolve(items []model.CartItem) []model.ResolvedCartItem {
	var out []model.ResolvedCartItem
	for _, it := range items {
		p, ok := s.Catalog.ByID(it.ProductID)
		if !ok {
			continue
		}
		out = append(out, model.ResolvedCartItem{
			Product:  p,
			Quantity: it.Quantity,
			Subtotal: model.FromCents(model.ToCents(p.Price) * int64(it.Quantity)),
		})
	}
	return out
}

// ComputePricing derives subtotal, shipping fee and total in integer cents.
// Shipping is free for pickup and for subtotals strictly over the
// free-shipping threshold.
func ComputePricing(items []model.ResolvedCartItem, method model.DeliveryMethod) model.Pricing {
	var subtotal int64
	for _, it := range items {
		subtotal += model.ToCents(it.Product.Price) * int64(it.Quantity)
	}

	var shipping int64
	if method != model.DeliveryPickup && subtotal <= FreeShippingThresholdCents {
		shipping = ShippingFeeCents
	}

	total := subtotal + shipping
	return model.Pricing{
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TotalCents:    total,
		Subtotal:      model.FromCents(subtotal),
		Shipping:      model.FromCents(shipping),
		Total:         model.FromCents(total),
	}
}

// Pricing computes the breakdown for the wizard's current state.
func (s *CheckoutService) Pricing(state *model.CheckoutState) model.Pricing {
	return ComputePricing(s.Resolve(state.Items), state.DeliveryMethod)
}

// Complete moves the wizard to its terminal step and tears the session
// down. The terminal state survives only in the caller's hands: a completed
// checkout has nothing left to resume, so nothing is persisted.
func (s *CheckoutService) Complete(ctx context.Context, visitorID string, state *model.CheckoutState) error {
	if !state.Step.CanTransition(model.StepComplete) {
		return fmt.Errorf("cannot complete from %s", state.Step)
	}
	state.Step = model.StepComplete
	return s.Destroy(ctx, visitorID)
}

// Destroy removes the handoff keys and wizard state. Called only on order
// completion, never on navigation away.
func (s *CheckoutService) Destroy(ctx context.Context, visitorID string) error {
	if err := s.Store.Delete(ctx, visitorID, storage.KeyCheckoutEmail); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, visitorID, storage.KeyCheckoutCart); err != nil {
		return err
	}
	return s.Store.Delete(ctx, visitorID, storage.KeyCheckoutState)
}
