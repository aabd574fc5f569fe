// Package storage is the durable client-storage substrate: a per-visitor
// namespaced key-value store standing in for the browser's localStorage in
// the original single-page design. All cart and checkout handoff state
// lives here; access is read-modify-write without transactions, which is
// acceptable for the single-visitor, single-writer scope of this system.
package storage

import (
	"context"
	"errors"
)

// Storage keys. Namespaced so unrelated state can never collide.
const (
	KeyCart          = "storefront:cart"
	KeyCheckoutEmail = "storefront:checkout_email"
	KeyCheckoutCart  = "storefront:checkout_cart"
	KeyCheckoutState = "storefront:checkout_state"

	// KeyReviews is reserved for the review subsystem, which lives outside
	// the checkout core.
	KeyReviews = "storefront:reviews"
)

var ErrNotFound = errors.New("storage: key not found")

type KV interface {
	Get(ctx context.Context, visitorID, key string) ([]byte, error)
	Set(ctx context.Context, visitorID, key string, value []byte) error
	Delete(ctx context.Context, visitorID, key string) error
}
