package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellijah10/Oillabz/internal/model"
)

func validContactMessage() model.ContactMessage {
	return model.ContactMessage{
		Name:    "Jane Buyer",
		Email:   "jane@example.com",
		Subject: "Wholesale pricing",
		Message: "Do you offer bulk discounts?\nLooking at 50+ units.",
	}
}

func TestContactSubmitDeliversToMerchant(t *testing.T) {
	mailer := &recordingMailer{}
	s := NewContactService(mailer, "owner@example.com")

	require.NoError(t, s.Submit(context.Background(), validContactMessage()))

	require.Len(t, mailer.sends, 1)
	assert.Contains(t, mailer.sends[0], "owner@example.com")
	assert.Contains(t, mailer.sends[0], "Oillabz Contact Form: Wholesale pricing")
}

func TestContactSubjectFallsBackToDefault(t *testing.T) {
	mailer := &recordingMailer{}
	s := NewContactService(mailer, "owner@example.com")

	msg := validContactMessage()
	msg.Subject = ""
	require.NoError(t, s.Submit(context.Background(), msg))

	require.Len(t, mailer.sends, 1)
	assert.Contains(t, mailer.sends[0], "Oillabz Contact Form: New Contact Form Submission")
}

func TestContactValidation(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*model.ContactMessage)
		wantField string
	}{
		{"missing name", func(m *model.ContactMessage) { m.Name = "" }, "name"},
		{"missing email", func(m *model.ContactMessage) { m.Email = " " }, "email"},
		{"missing message", func(m *model.ContactMessage) { m.Message = "" }, "message"},
		{"subject optional", func(m *model.ContactMessage) { m.Subject = "" }, ""},
		{"phone optional", func(m *model.ContactMessage) { m.Phone = "" }, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := validContactMessage()
			tc.mutate(&msg)
			verr := ValidateContactMessage(msg)
			if tc.wantField == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, tc.wantField, verr.Field)
		})
	}
}

func TestContactWithoutMailerRefuses(t *testing.T) {
	s := NewContactService(nil, "owner@example.com")
	err := s.Submit(context.Background(), validContactMessage())
	assert.ErrorIs(t, err, ErrMailerNotConfigured)

	s = NewContactService(&recordingMailer{}, "")
	err = s.Submit(context.Background(), validContactMessage())
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}

func TestContactInquiryHTMLEscapesNewlines(t *testing.T) {
	html := contactInquiryHTML(validContactMessage())
	assert.Contains(t, html, "Do you offer bulk discounts?<br>Looking at 50+ units.")
	assert.Contains(t, html, "jane@example.com")
	assert.NotContains(t, html, "Phone:")
}
