package model

// ContactMessage is one contact-form submission, forwarded to the merchant
// inbox. Replies go directly to the sender's email, outside this system.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}
