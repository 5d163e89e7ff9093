package provider

import (
	"context"
	"time"
)

// Provider defines the interface for sending email through a transport.
// Implementations must be safe for concurrent use: one instance is shared
// by every send of a batch.
type Provider interface {
	// Send delivers a message and returns a delivery result.
	Send(ctx context.Context, msg *Message) (*DeliveryResult, error)
	// GetName returns the provider's identifier (e.g., "smtp", "ses").
	GetName() string
	// HealthCheck verifies the provider is reachable and functional.
	HealthCheck(ctx context.Context) error
}

// Message represents an email message to be delivered.
type Message struct {
	ID       string
	From     string
	To       []string
	Subject  string
	Headers  map[string]string
	TextBody string
	HTMLBody string
}

// DeliveryResult contains the outcome of a delivery attempt.
type DeliveryResult struct {
	ProviderMessageID string
	Status            DeliveryStatus
	Timestamp         time.Time
	Metadata          map[string]string
}

// DeliveryStatus represents the outcome of a delivery.
type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)
