package model

// Customer identifies the buyer on a charge and an order.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// OrderItem is one purchased line as it appears in notification emails.
type OrderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is derived at payment confirmation. It is not a server-side ledger;
// the order number is random-suffixed and collisions are a documented
// limitation.
type Order struct {
	OrderNumber     string         `json:"orderNumber"`
	Customer        Customer       `json:"customer"`
	Items           []OrderItem    `json:"items"`
	Total           float64        `json:"total"`
	DeliveryMethod  DeliveryMethod `json:"deliveryMethod"`
	ShippingAddress *Address       `json:"shippingAddress,omitempty"`
}
