package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellijah10/Oillabz/external/stripe"
	"github.com/mkellijah10/Oillabz/internal/model"
	"github.com/mkellijah10/Oillabz/internal/repository"
	"github.com/mkellijah10/Oillabz/internal/storage"
)

var orderNumberRe = regexp.MustCompile(`^OL-\d{6}-\d{4}$`)

type stubAdapter struct {
	result  *model.ChargeResult
	err     error
	calls   int
	lastReq model.ChargeRequest
}

func (a *stubAdapter) Name() string { return "stub" }

func (a *stubAdapter) Charge(_ context.Context, req model.ChargeRequest) (*model.ChargeResult, error) {
	a.calls++
	a.lastReq = req
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

type recordingMailer struct {
	mu    sync.Mutex
	sends []string
}

func (m *recordingMailer) Send(_ context.Context, to []string, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, to[0]+" "+subject)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}

type stubVerifier struct {
	session *stripe.CompletedSession
	err     error
}

func (v *stubVerifier) VerifyCompletedSession(_ []byte, _ string) (*stripe.CompletedSession, error) {
	return v.session, v.err
}

type paymentFixture struct {
	svc      *PaymentService
	adapter  *stubAdapter
	mailer   *recordingMailer
	payments *repository.MemoryPaymentRepository
	cart     *CartService
	checkout *CheckoutService
}

func newPaymentFixture(t *testing.T, adapter *stubAdapter, verifier SessionVerifier) *paymentFixture {
	t.Helper()
	store := storage.NewMemory()
	cart := NewCartService(store)
	checkout := NewCheckoutService(store, cart, NewCatalogServiceWith(testProducts))
	mailer := &recordingMailer{}
	orders := NewOrderService(mailer, "owner@example.com")
	payments := repository.NewMemoryPaymentRepository()
	return &paymentFixture{
		svc:      NewPaymentService(adapter, verifier, payments, cart, checkout, orders),
		adapter:  adapter,
		mailer:   mailer,
		payments: payments,
		cart:     cart,
		checkout: checkout,
	}
}

// drives the wizard to the payment step for the given visitor
func (f *paymentFixture) reachPaying(t *testing.T, visitorID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.cart.Add(ctx, visitorID, "p20", 2))
	require.NoError(t, f.checkout.Begin(ctx, visitorID, "jane@example.com"))
	_, err := f.checkout.SubmitInfo(ctx, visitorID, model.DeliveryShipping, validShippingForm())
	require.NoError(t, err)
}

func TestChargeRequiresPayingStep(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, &stubAdapter{}, nil)
	require.NoError(t, f.cart.Add(ctx, "v1", "p20", 1))
	require.NoError(t, f.checkout.Begin(ctx, "v1", "jane@example.com"))

	_, err := f.svc.Charge(ctx, "v1", ChargeInput{SourceToken: "tok"})
	assert.ErrorIs(t, err, ErrNotPaying)
	assert.Zero(t, f.adapter.calls)
}

func TestChargeWithoutCheckoutSession(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, &stubAdapter{}, nil)

	_, err := f.svc.Charge(ctx, "v1", ChargeInput{SourceToken: "tok"})
	assert.ErrorIs(t, err, ErrNoActiveCheckout)
}

func TestFailedChargeLeavesEverythingIntact(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, &stubAdapter{err: errors.New("card declined")}, nil)
	f.reachPaying(t, "v1")

	_, err := f.svc.Charge(ctx, "v1", ChargeInput{SourceToken: "tok"})
	require.Error(t, err)

	// cart untouched, wizard still at the payment step, no emails
	assert.Len(t, mustItems(t, f.cart, "v1"), 1)
	state, err := f.checkout.Load(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, model.StepPaying, state.Step)
	assert.Zero(t, f.mailer.count())
}

func TestCompletedChargeFinishesTheOrder(t *testing.T) {
	ctx := context.Background()
	adapter := &stubAdapter{result: &model.ChargeResult{
		Status: model.ChargeCompleted,
		Confirmation: &model.Confirmation{
			PaymentID:  "pay_123",
			Status:     "COMPLETED",
			ReceiptURL: "https://example.com/r/pay_123",
		},
	}}
	f := newPaymentFixture(t, adapter, nil)
	f.reachPaying(t, "v1")

	outcome, err := f.svc.Charge(ctx, "v1", ChargeInput{SourceToken: "tok"})
	require.NoError(t, err)

	require.NotNil(t, outcome.Order)
	assert.Regexp(t, orderNumberRe, outcome.Order.OrderNumber)
	assert.Equal(t, model.StepComplete, outcome.Step)
	assert.Equal(t, "pay_123", outcome.Confirmation.PaymentID)
	assert.Contains(t, outcome.FollowUp, "jane@example.com")

	// 2 x $20 plus the shipping line
	require.Len(t, outcome.Order.Items, 2)
	assert.Equal(t, "Shipping", outcome.Order.Items[1].Name)
	assert.InDelta(t, 45.99, outcome.Order.Total, 0.001)

	// cart and checkout session are gone
	assert.Empty(t, mustItems(t, f.cart, "v1"))
	_, err = f.checkout.Load(ctx, "v1")
	assert.ErrorIs(t, err, ErrNoActiveCheckout)

	// payment record landed as Paid
	rec, err := f.payments.GetByProviderRef(ctx, "pay_123")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Paid", rec.PaymentStatus)

	// merchant alert and customer receipt, delivered off the request path
	assert.Eventually(t, func() bool { return f.mailer.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestChargeAmountDefaultsToComputedTotal(t *testing.T) {
	ctx := context.Background()
	adapter := &stubAdapter{result: &model.ChargeResult{
		Status:       model.ChargeCompleted,
		Confirmation: &model.Confirmation{PaymentID: "pay_456", Status: "COMPLETED"},
	}}
	f := newPaymentFixture(t, adapter, nil)
	f.reachPaying(t, "v1")

	_, err := f.svc.Charge(ctx, "v1", ChargeInput{SourceToken: "tok", AmountCents: 0})
	require.NoError(t, err)

	// 2 x $20 + $5.99 shipping
	assert.Equal(t, int64(4599), f.adapter.lastReq.AmountCents)
	assert.Equal(t, "USD", f.adapter.lastReq.Currency)
	require.NotNil(t, f.adapter.lastReq.ShippingAddress)
	assert.Equal(t, "Hartford", f.adapter.lastReq.ShippingAddress.City)
}

func TestRedirectChargeRecordsPendingAndKeepsCart(t *testing.T) {
	ctx := context.Background()
	adapter := &stubAdapter{result: &model.ChargeResult{
		Status:      model.ChargeRedirect,
		RedirectURL: "https://pay.example.com/cs_test_1",
		RedirectRef: "cs_test_1",
	}}
	f := newPaymentFixture(t, adapter, nil)
	f.reachPaying(t, "v1")

	outcome, err := f.svc.Charge(ctx, "v1", ChargeInput{SourceToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_test_1", outcome.RedirectURL)
	assert.Nil(t, outcome.Order)

	// the order is not complete until the webhook lands
	assert.Len(t, mustItems(t, f.cart, "v1"), 1)
	state, err := f.checkout.Load(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, model.StepPaying, state.Step)

	rec, err := f.payments.GetByProviderRef(ctx, "cs_test_1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Pending", rec.PaymentStatus)
}

func TestWebhookCompletesTheOrder(t *testing.T) {
	ctx := context.Background()
	verifier := &stubVerifier{session: &stripe.CompletedSession{
		ID:               "cs_test_2",
		CustomerEmail:    "jane@example.com",
		AmountTotalCents: 4599,
		Metadata: map[string]string{
			"visitor_id":      "v1",
			"customer_name":   "Jane Buyer",
			"delivery_method": "shipping",
		},
	}}
	f := newPaymentFixture(t, &stubAdapter{}, verifier)
	f.reachPaying(t, "v1")

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))

	rec, err := f.payments.GetByProviderRef(ctx, "cs_test_2")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Paid", rec.PaymentStatus)

	assert.Empty(t, mustItems(t, f.cart, "v1"))
	_, err = f.checkout.Load(ctx, "v1")
	assert.ErrorIs(t, err, ErrNoActiveCheckout)

	assert.Eventually(t, func() bool { return f.mailer.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	verifier := &stubVerifier{session: &stripe.CompletedSession{
		ID:               "cs_test_3",
		CustomerEmail:    "jane@example.com",
		AmountTotalCents: 4599,
		Metadata:         map[string]string{"visitor_id": "v1"},
	}}
	f := newPaymentFixture(t, &stubAdapter{}, verifier)
	f.reachPaying(t, "v1")

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
	require.Eventually(t, func() bool { return f.mailer.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	// the provider redelivers the same event
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, f.mailer.count(), "replay must not resend notifications")
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(t, &stubAdapter{}, &stubVerifier{err: errors.New("bad signature")})
	err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.Error(t, err)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	f := newPaymentFixture(t, &stubAdapter{}, &stubVerifier{})
	err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)
	assert.Zero(t, f.mailer.count())
}

func TestPickupChargeHasNoShippingLine(t *testing.T) {
	ctx := context.Background()
	adapter := &stubAdapter{result: &model.ChargeResult{
		Status:       model.ChargeCompleted,
		Confirmation: &model.Confirmation{PaymentID: "pay_789", Status: "COMPLETED"},
	}}
	f := newPaymentFixture(t, adapter, nil)

	require.NoError(t, f.cart.Add(ctx, "v1", "p20", 2))
	require.NoError(t, f.checkout.Begin(ctx, "v1", "jane@example.com"))
	_, err := f.checkout.SubmitInfo(ctx, "v1", model.DeliveryPickup, model.CheckoutForm{
		FullName:    "Jane Buyer",
		PhoneNumber: "860-555-0100",
	})
	require.NoError(t, err)

	outcome, err := f.svc.Charge(ctx, "v1", ChargeInput{SourceToken: "tok"})
	require.NoError(t, err)

	require.Len(t, outcome.Order.Items, 1)
	assert.InDelta(t, 40.00, outcome.Order.Total, 0.001)
	assert.Nil(t, outcome.Order.ShippingAddress)
	assert.Contains(t, outcome.FollowUp, "257 South Marshall Street")
}
