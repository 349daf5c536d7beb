package domain

import (
	"context"
	"errors"
)

// Form is one form in the webhook provider's account listing. ExternalID
// is the provider's form id, the same value webhook deliveries carry.
type Form struct {
	ExternalID string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

const StatusEnabled = "ENABLED"

// Source lists the account's forms from the provider API.
type Source interface {
	ListForms(ctx context.Context) ([]Form, error)
}

var ErrUpstream = errors.New("form_provider_unavailable")
