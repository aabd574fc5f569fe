package model

import "time"

// ChargeRequest is the provider-independent payment contract. Amounts are
// always minor units (integer cents).
type ChargeRequest struct {
	SourceToken     string
	AmountCents     int64
	Currency        string
	Customer        Customer
	LineItems       []OrderItem
	DeliveryMethod  DeliveryMethod
	ShippingAddress *Address
	VisitorID       string
}

const (
	ChargeCompleted = "completed"
	ChargeRedirect  = "redirect"
)

// Confirmation is the provider's proof of a settled charge.
type Confirmation struct {
	PaymentID  string `json:"paymentId"`
	Status     string `json:"status"`
	ReceiptURL string `json:"receiptUrl,omitempty"`
}

// ChargeResult is what an adapter returns on success. Inline providers
// settle immediately (ChargeCompleted); hosted providers hand back a
// redirect URL and settle later through their webhook.
type ChargeResult struct {
	Status       string        `json:"status"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	RedirectURL  string        `json:"redirectUrl,omitempty"`
	// RedirectRef is the provider's session reference for a redirect
	// result; the webhook completes against it.
	RedirectRef string `json:"redirectRef,omitempty"`
}

type Payment struct {
	PaymentID       int64      `db:"paymentid" json:"payment_id"`
	Provider        string     `db:"provider" json:"provider"`
	ProviderRef     string     `db:"providerref" json:"provider_ref"`
	AmountCents     int64      `db:"amountcents" json:"amount_cents"`
	PaymentStatus   string     `db:"paymentstatus" json:"payment_status"`
	ProviderPayload []byte     `db:"providerpayload" json:"provider_payload"`
	CreatedAt       time.Time  `db:"createdat" json:"created_at"`
	PaidAt          *time.Time `db:"paidat" json:"paid_at"`
}
