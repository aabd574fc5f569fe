package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkellijah10/Oillabz/internal/model"
)

const defaultContactSubject = "New Contact Form Submission"

var ErrMailerNotConfigured = errors.New("email service not configured")

// ContactService forwards contact-form submissions to the merchant inbox.
// Unlike order notifications this is synchronous: the sender is waiting for
// a yes or no.
type ContactService struct {
	Mailer        OrderMailer
	MerchantEmail string
}

func NewContactService(mailer OrderMailer, merchantEmail string) *ContactService {
	return &ContactService{Mailer: mailer, MerchantEmail: merchantEmail}
}

// Submit validates and delivers one contact message.
func (s *ContactService) Submit(ctx context.Context, msg model.ContactMessage) error {
	if verr := ValidateContactMessage(msg); verr != nil {
		return verr
	}
	if s.Mailer == nil || s.MerchantEmail == "" {
		return ErrMailerNotConfigured
	}

	subject := msg.Subject
	if subject == "" {
		subject = defaultContactSubject
	}
	return s.Mailer.Send(
		ctx,
		[]string{s.MerchantEmail},
		fmt.Sprintf("Oillabz Contact Form: %s", subject),
		contactInquiryHTML(msg),
	)
}

// ValidateContactMessage enforces the required fields. Subject falls back
// to a default, so only name, email and message block submission.
func ValidateContactMessage(msg model.ContactMessage) *ValidationError {
	for _, f := range []struct{ field, value string }{
		{"name", msg.Name},
		{"email", msg.Email},
		{"message", msg.Message},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Message: "required"}
		}
	}
	return nil
}

func contactInquiryHTML(msg model.ContactMessage) string {
	var b strings.Builder
	b.WriteString(`<h1>New Contact Form Submission</h1>`)
	b.WriteString(`<h2>Customer Inquiry</h2>`)
	fmt.Fprintf(&b, `<p><strong>Name:</strong> %s<br><strong>Email:</strong> %s</p>`, msg.Name, msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&b, `<p><strong>Phone:</strong> %s</p>`, msg.Phone)
	}
	if msg.Subject != "" {
		fmt.Fprintf(&b, `<p><strong>Subject:</strong> %s</p>`, msg.Subject)
	}
	fmt.Fprintf(&b, `<p><strong>Message:</strong></p><p>%s</p>`,
		strings.ReplaceAll(msg.Message, "\n", "<br>"))
	return b.String()
}
