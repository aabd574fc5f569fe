package abstractapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// AbstractEmailValidator screens guest-checkout emails through AbstractAPI
// before the handoff to the checkout page. An undeliverable address means
// the buyer would never see their receipt.
type AbstractEmailValidator struct {
	apiKey string
	client *http.Client
}

func NewAbstractEmailValidator(apiKey string) (*AbstractEmailValidator, error) {
	if apiKey == "" {
		return nil, errors.New("abstractapi key not set")
	}

	return &AbstractEmailValidator{
		apiKey: apiKey,
		client: &http.Client{Timeout: 5 * time.Second},
	}, nil
}

type validationResponse struct {
	Deliverability string `json:"deliverability"` // DELIVERABLE, UNDELIVERABLE, UNKNOWN
	IsValidFormat  struct {
		Value bool `json:"value"`
	} `json:"is_valid_format"`
	IsDisposable struct {
		Value bool `json:"value"`
	} `json:"is_disposable_email"`
}

func (v *AbstractEmailValidator) Validate(
	ctx context.Context,
	email string,
) error {
	u, _ := url.Parse("https://emailvalidation.abstractapi.com/v1/")
	q := u.Query()
	q.Set("api_key", v.apiKey)
	q.Set("email", email)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email validation service error: %s", resp.Status)
	}

	var out validationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}

	if !out.IsValidFormat.Value {
		return errors.New("email address is not valid")
	}

	if out.IsDisposable.Value {
		return errors.New("disposable email is not allowed")
	}

	if out.Deliverability == "UNDELIVERABLE" {
		return errors.New("email address is not deliverable")
	}

	return nil
}
