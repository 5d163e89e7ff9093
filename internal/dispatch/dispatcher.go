// Package dispatch delivers a batch of news summaries concurrently and
// reduces the outcome to a single report.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sungwon/newsmail/internal/logger"
	"github.com/sungwon/newsmail/internal/metrics"
	"github.com/sungwon/newsmail/internal/provider"
)

// StepName names the unit of work when it runs through a StepRunner.
const StepName = "send-news-emails"

const (
	successMessage = "Daily news summary emails sent successfully"
	failurePrefix  = "Failed to send news summary emails: "
)

// ErrSendPanic is the fault recorded when a send panics.
var ErrSendPanic = errors.New("dispatch: send panicked")

// Dispatcher fans a batch out to the mail provider.
type Dispatcher struct {
	provider provider.Provider
	composer Composer
	logger   zerolog.Logger
}

// New creates a Dispatcher that composes with c and delivers through p.
func New(p provider.Provider, c Composer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		provider: p,
		composer: c,
		logger:   log.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch sends the news summary to every eligible recipient in batch,
// substituting token as the date. Sends run concurrently and Dispatch
// returns only after all of them have settled. When step is non-nil the
// whole fan-out runs as the single step StepName.
//
// Dispatch never returns an error: any fault becomes a failed Report.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []RecipientNotification, token string, step StepRunner) Report {
	ctx, correlationID := logger.EnsureCorrelationID(ctx)
	// Once launched a batch runs to completion.
	ctx = context.WithoutCancel(ctx)

	log := d.logger.With().
		Str("correlation_id", correlationID).
		Str("date", token).
		Logger()

	start := time.Now()
	sendAll := func(ctx context.Context) error {
		var g errgroup.Group
		for _, n := range batch {
			if !Eligible(n) {
				metrics.DispatchSkippedTotal.Inc()
				log.Debug().Str("email", n.Recipient.Email).Msg("skipping recipient without news content")
				continue
			}
			g.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						metrics.DispatchSendsTotal.WithLabelValues(string(provider.StatusFailed)).Inc()
						log.Error().Str("email", n.Recipient.Email).Interface("panic", r).Msg("news summary send panicked")
						err = fmt.Errorf("%w: %v", ErrSendPanic, r)
					}
				}()
				return d.send(ctx, log, n, token)
			})
		}
		return g.Wait()
	}

	err := runUnit(ctx, step, sendAll)
	elapsed := time.Since(start)
	metrics.DispatchDuration.Observe(elapsed.Seconds())

	eligible, skipped := Partition(batch)
	if err != nil {
		metrics.DispatchBatchesTotal.WithLabelValues("failure").Inc()
		log.Error().Err(err).
			Int("eligible", len(eligible)).
			Int("skipped", len(skipped)).
			Dur("duration", elapsed).
			Msg("news summary batch failed")
		return Report{Success: false, Message: failurePrefix + err.Error()}
	}

	metrics.DispatchBatchesTotal.WithLabelValues("success").Inc()
	log.Info().
		Int("eligible", len(eligible)).
		Int("skipped", len(skipped)).
		Dur("duration", elapsed).
		Msg("news summary batch completed")
	return Report{Success: true, Message: successMessage}
}

// runUnit executes fn directly or through step, converting a panic in the
// runner itself into an error.
func runUnit(ctx context.Context, step StepRunner, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSendPanic, r)
		}
	}()
	if step == nil {
		return fn(ctx)
	}
	return step.Run(ctx, StepName, fn)
}

func (d *Dispatcher) send(ctx context.Context, log zerolog.Logger, n RecipientNotification, token string) error {
	email := n.Recipient.Email

	msg, err := d.composer.NewsSummary(email, token, n.NewsContent)
	if err != nil {
		metrics.DispatchSendsTotal.WithLabelValues(string(provider.StatusFailed)).Inc()
		log.Error().Err(err).Str("email", email).Msg("failed to compose news summary")
		return err
	}

	result, err := d.provider.Send(ctx, msg)
	if err != nil {
		metrics.DispatchSendsTotal.WithLabelValues(string(provider.StatusFailed)).Inc()
		log.Error().Err(err).
			Str("email", email).
			Str("provider", d.provider.GetName()).
			Bool("permanent", provider.IsPermanent(err)).
			Msg("news summary send failed")
		return err
	}

	metrics.DispatchSendsTotal.WithLabelValues(string(provider.StatusSent)).Inc()
	ev := log.Debug().Str("email", email)
	if result != nil {
		ev = ev.Str("provider_message_id", result.ProviderMessageID)
	}
	ev.Msg("news summary sent")
	return nil
}
