package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/mkellijah10/Oillabz/internal/model"
)

// OrderMailer sends one HTML email. external/resend implements it.
type OrderMailer interface {
	Send(ctx context.Context, to []string, subject, html string) error
}

const (
	pickupLocationHTML = `<p><strong>Oillabz Hartford</strong><br>
257 South Marshall Street, Hartford, CT 06105<br>
Hours: Mon-Sat 10am-7pm, Sun 12pm-5pm</p>`

	notifyTimeout = 15 * time.Second
)

// OrderService turns a confirmed payment into an order number and a pair of
// notification emails (merchant alert + customer receipt). Notification is
// best-effort: a successful charge always completes the order even when
// email delivery fails.
type OrderService struct {
	Mailer        OrderMailer
	MerchantEmail string

	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewOrderService(mailer OrderMailer, merchantEmail string) *OrderService {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "order-mailer",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &OrderService{
		Mailer:        mailer,
		MerchantEmail: merchantEmail,
		breaker:       cb,
	}
}

// NewOrderNumber builds an OL-YYMMDD-NNNN order number. The random suffix
// is not checked for collisions; that limitation is documented, not fixed.
func (s *OrderService) NewOrderNumber() string {
	return fmt.Sprintf("OL-%s-%04d", time.Now().Format("060102"), rand.Intn(10000))
}

// Notify sends the merchant alert and the customer receipt. Mailer calls go
// through a circuit breaker so a provider outage stops hammering the API.
func (s *OrderService) Notify(ctx context.Context, order *model.Order) error {
	if s.Mailer == nil {
		return nil
	}

	send := func(to []string, subject, html string) error {
		_, err := s.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, s.Mailer.Send(ctx, to, subject, html)
		})
		return err
	}

	if s.MerchantEmail != "" {
		if err := send(
			[]string{s.MerchantEmail},
			fmt.Sprintf("New Order Received - %s", order.OrderNumber),
			merchantAlertHTML(order),
		); err != nil {
			return fmt.Errorf("merchant alert: %w", err)
		}
	}

	if err := send(
		[]string{order.Customer.Email},
		fmt.Sprintf("Order Confirmation - %s", order.OrderNumber),
		customerReceiptHTML(order),
	); err != nil {
		return fmt.Errorf("customer receipt: %w", err)
	}
	return nil
}

// NotifyAsync dispatches Notify on a detached goroutine. Failures land in
// the log sink only; nothing propagates into the completion path.
func (s *OrderService) NotifyAsync(order *model.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.Notify(ctx, order); err != nil {
			log.Printf("order %s: notification failed: %v", order.OrderNumber, err)
		}
	}()
}

func itemRowsHTML(items []model.OrderItem) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b,
			`<tr><td>%s</td><td align="center">%d</td><td align="right">$%.2f</td><td align="right">$%.2f</td></tr>`,
			it.Name, it.Quantity, it.Price, it.Price*float64(it.Quantity),
		)
	}
	return b.String()
}

func shippingBlockHTML(addr *model.Address) string {
	if addr == nil {
		return ""
	}
	country := "United States"
	if addr.Country == "CA" {
		country = "Canada"
	}
	return fmt.Sprintf(`<p><strong>Ship to:</strong><br>%s<br>%s<br>%s, %s %s<br>%s</p>`,
		addr.Name, addr.Address, addr.City, addr.State, addr.ZipCode, country)
}

func merchantAlertHTML(order *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<h1>New Order Received!</h1><p>Order #%s</p>`, order.OrderNumber)
	fmt.Fprintf(&b, `<h2>Customer</h2><p>%s<br>%s</p>`, order.Customer.Name, order.Customer.Email)
	if order.Customer.Phone != "" {
		fmt.Fprintf(&b, `<p>Phone: %s</p>`, order.Customer.Phone)
	}
	b.WriteString(`<h2>Order Details</h2><table width="100%">`)
	b.WriteString(`<tr><th align="left">Product</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>`)
	b.WriteString(itemRowsHTML(order.Items))
	b.WriteString(`</table>`)
	fmt.Fprintf(&b, `<p align="right"><strong>Order Total: $%.2f</strong></p>`, order.Total)

	if order.DeliveryMethod == model.DeliveryPickup {
		b.WriteString(`<h2>Pickup Information</h2>`)
		b.WriteString(pickupLocationHTML)
		b.WriteString(`<p><strong>Action Required:</strong> contact customer when order is ready for pickup</p>`)
	} else {
		b.WriteString(`<h2>Shipping Information</h2>`)
		b.WriteString(shippingBlockHTML(order.ShippingAddress))
	}
	return b.String()
}

func customerReceiptHTML(order *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<h1>Thank You for Your Order!</h1><p>Order #%s</p>`, order.OrderNumber)
	fmt.Fprintf(&b, `<p>Hi %s,</p><p>We've received your payment and are preparing your items.</p>`, order.Customer.Name)
	b.WriteString(`<h2>Order Summary</h2><table width="100%">`)
	b.WriteString(`<tr><th align="left">Product</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>`)
	b.WriteString(itemRowsHTML(order.Items))
	b.WriteString(`</table>`)
	fmt.Fprintf(&b, `<p align="right"><strong>Total: $%.2f</strong></p>`, order.Total)

	if order.DeliveryMethod == model.DeliveryPickup {
		b.WriteString(`<h3>Pickup Information</h3>`)
		b.WriteString(pickupLocationHTML)
		b.WriteString(`<p><strong>We'll contact you when your order is ready for pickup!</strong></p>`)
	} else {
		b.WriteString(`<h3>Shipping Information</h3>`)
		b.WriteString(shippingBlockHTML(order.ShippingAddress))
		b.WriteString(`<p><strong>We'll send you tracking information once your order ships!</strong></p>`)
	}
	return b.String()
}
