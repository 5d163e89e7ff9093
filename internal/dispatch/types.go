package dispatch

import (
	"context"

	"github.com/sungwon/newsmail/internal/provider"
)

// Recipient is the addressable target of a notification.
type Recipient struct {
	Email string `json:"email"`
}

// RecipientNotification pairs a recipient with the content generated for
// them. An empty NewsContent means no content was generated.
type RecipientNotification struct {
	Recipient   Recipient `json:"user"`
	NewsContent string    `json:"newsContent"`
}

// Report is the single aggregate outcome of a dispatch batch.
type Report struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StepRunner executes a named unit of work as one step of an external
// orchestration, e.g. a checkpointing workflow runner.
type StepRunner interface {
	Run(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// StepFunc adapts a function to the StepRunner interface.
type StepFunc func(ctx context.Context, name string, fn func(ctx context.Context) error) error

// Run calls f(ctx, name, fn).
func (f StepFunc) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return f(ctx, name, fn)
}

// Composer renders the news summary message for one recipient.
type Composer interface {
	NewsSummary(email, date, content string) (*provider.Message, error)
}
