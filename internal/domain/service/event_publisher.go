package service

import (
	"context"
)

// Account event types published on the account topic.
const (
	AccountEventSignedUp          = "account.signed_up"
	AccountEventPasswordReset     = "account.password_reset_requested"
	AccountEventEmailVerification = "account.email_verification_requested"
	AccountEventPasswordChanged   = "account.password_changed"
	AccountEventEmailVerified     = "account.email_verified"
)

// AccountEvent represents an account lifecycle event delivered to downstream
// consumers (mailers, audit sinks). Token values ride on the event rather
// than the API response, so the HTTP layer never leaks whether an email is
// registered.
type AccountEvent struct {
	RequestID string `json:"request_id,omitempty"` // For distributed tracing
	EventType string `json:"event_type"`
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Token     string `json:"token,omitempty"` // Verification token value, when the event carries one
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAccountEvent publishes an account lifecycle event for async processing
	PublishAccountEvent(ctx context.Context, event *AccountEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
