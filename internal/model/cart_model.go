package model

// CartItem is one line of the visitor's cart: productid plus desired
// quantity. The cart never holds two entries for the same product and
// quantity never drops below 1 (removal deletes the entry).
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ResolvedCartItem is a cart entry joined against the live catalog.
type ResolvedCartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

// CartResponse is returned when calling GET /store/cart
type CartResponse struct {
	Items         []ResolvedCartItem `json:"items"`
	Count         int                `json:"count"`
	Pricing       Pricing            `json:"pricing"`
	RecentlyAdded bool               `json:"recentlyAdded"`
}
