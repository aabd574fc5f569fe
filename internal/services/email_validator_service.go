package services

import (
	"context"
	"errors"
	"strings"
)

type EmailValidator interface {
	Validate(ctx context.Context, email string) error
}

// LocalValidator is the no-network fallback: a shape check only.
type LocalValidator struct{}

func NewLocalValidator() *LocalValidator {
	return &LocalValidator{}
}

func (v *LocalValidator) Validate(_ context.Context, email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return errors.New("email address is not valid")
	}
	return nil
}
