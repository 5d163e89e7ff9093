package step

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sungwon/newsmail/internal/metrics"
)

// DefaultClaimTTL bounds how long a crashed execution blocks its step.
const DefaultClaimTTL = 30 * time.Minute

var (
	// ErrNoStore is returned by Run when the runner has no checkpoint store.
	ErrNoStore = errors.New("step: no checkpoint store")
	// ErrStepInProgress is returned by Run when another execution of the same
	// step in the same run has not finished yet.
	ErrStepInProgress = errors.New("step: already in progress")
)

// Runner executes named steps for a single run. A step that already has a
// checkpoint is skipped; otherwise it runs and is checkpointed on success,
// so a failed step runs again in full on the next attempt. Executions of the
// same step are serialized through a claim in the store.
type Runner struct {
	store    Store
	runID    string
	claimTTL time.Duration
	logger   zerolog.Logger
}

// NewRunner creates a Runner for runID.
func NewRunner(store Store, runID string, log zerolog.Logger) *Runner {
	return &Runner{
		store:    store,
		runID:    runID,
		claimTTL: DefaultClaimTTL,
		logger:   log.With().Str("component", "step").Str("run_id", runID).Logger(),
	}
}

// RunID returns the run this runner checkpoints under.
func (r *Runner) RunID() string { return r.runID }

// Run executes fn as the step name.
func (r *Runner) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if r.store == nil {
		return ErrNoStore
	}

	if done, err := r.replayed(ctx, name); err != nil || done {
		return err
	}

	owner := uuid.New().String()
	claimed, err := r.store.ClaimStep(ctx, r.runID, name, owner, r.claimTTL)
	if err != nil {
		metrics.StepRunsTotal.WithLabelValues(name, "failed").Inc()
		return fmt.Errorf("step %s: claim %q: %w", r.runID, name, err)
	}
	if !claimed {
		metrics.StepRunsTotal.WithLabelValues(name, "in_progress").Inc()
		r.logger.Warn().Str("step", name).Msg("step already running, not starting another")
		return fmt.Errorf("step %s: %q: %w", r.runID, name, ErrStepInProgress)
	}
	defer func() {
		if err := r.store.ReleaseStep(context.WithoutCancel(ctx), r.runID, name, owner); err != nil {
			r.logger.Warn().Err(err).Str("step", name).Msg("failed to release step claim")
		}
	}()

	// The holder of the previous claim may have finished between the first
	// lookup and our claim.
	if done, err := r.replayed(ctx, name); err != nil || done {
		return err
	}

	start := time.Now()
	if err := fn(ctx); err != nil {
		metrics.StepRunsTotal.WithLabelValues(name, "failed").Inc()
		r.logger.Warn().Err(err).Str("step", name).Dur("duration", time.Since(start)).Msg("step failed")
		return err
	}

	completedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if err := r.store.SaveCheckpoint(ctx, r.runID, name, []byte(completedAt)); err != nil {
		metrics.StepRunsTotal.WithLabelValues(name, "failed").Inc()
		return fmt.Errorf("step %s: save checkpoint %q: %w", r.runID, name, err)
	}

	metrics.StepRunsTotal.WithLabelValues(name, "executed").Inc()
	r.logger.Debug().Str("step", name).Dur("duration", time.Since(start)).Msg("step completed")
	return nil
}

// replayed reports whether name already has a checkpoint in this run.
func (r *Runner) replayed(ctx context.Context, name string) (bool, error) {
	data, err := r.store.GetCheckpoint(ctx, r.runID, name)
	if err != nil {
		metrics.StepRunsTotal.WithLabelValues(name, "failed").Inc()
		return false, fmt.Errorf("step %s: get checkpoint %q: %w", r.runID, name, err)
	}
	if data == nil {
		return false, nil
	}
	metrics.StepRunsTotal.WithLabelValues(name, "replayed").Inc()
	r.logger.Info().Str("step", name).Str("completed_at", string(data)).Msg("skipping checkpointed step")
	return true, nil
}
