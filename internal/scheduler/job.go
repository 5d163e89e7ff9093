// Package scheduler runs the daily news summary batch on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sungwon/newsmail/internal/dispatch"
	"github.com/sungwon/newsmail/internal/logger"
	"github.com/sungwon/newsmail/internal/metrics"
	"github.com/sungwon/newsmail/internal/step"
)

// DefaultDateLayout formats the date shown in the email, e.g. "Monday, January 1, 2024".
const DefaultDateLayout = "Monday, January 2, 2006"

// Source loads the recipients and generated content for a day.
type Source interface {
	ListNewsSummaries(ctx context.Context, day time.Time) ([]dispatch.RecipientNotification, error)
}

// Dispatcher delivers one batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, batch []dispatch.RecipientNotification, token string, step dispatch.StepRunner) dispatch.Report
}

// Config controls when and in which timezone the batch runs.
type Config struct {
	Spec       string
	Timezone   string
	DateLayout string
}

// RunID identifies the batch for day in the checkpoint store.
func RunID(day time.Time) string {
	return "news-summary:" + day.Format("2006-01-02")
}

// Job loads today's batch and dispatches it.
type Job struct {
	source     Source
	dispatcher Dispatcher
	store      step.Store
	loc        *time.Location
	layout     string
	now        func() time.Time
	logger     zerolog.Logger
}

// NewJob creates a Job. A nil store dispatches without checkpointing.
func NewJob(src Source, d Dispatcher, store step.Store, cfg Config, log zerolog.Logger) (*Job, error) {
	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	layout := cfg.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}
	return &Job{
		source:     src,
		dispatcher: d,
		store:      store,
		loc:        loc,
		layout:     layout,
		now:        time.Now,
		logger:     log.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Run dispatches the batch for the current day in the job's timezone.
func (j *Job) Run(ctx context.Context) dispatch.Report {
	ctx, correlationID := logger.EnsureCorrelationID(ctx)
	today := j.now().In(j.loc)
	runID := RunID(today)
	log := j.logger.With().Str("correlation_id", correlationID).Str("run_id", runID).Logger()

	batch, err := j.source.ListNewsSummaries(ctx, today)
	if err != nil {
		metrics.SchedulerRunsTotal.WithLabelValues("source_error").Inc()
		log.Error().Err(err).Msg("failed to load news summaries")
		return dispatch.Report{Success: false, Message: "Failed to load news summaries: " + err.Error()}
	}

	var runner dispatch.StepRunner
	if j.store != nil {
		runner = step.NewRunner(j.store, runID, log)
	}

	report := j.dispatcher.Dispatch(ctx, batch, today.Format(j.layout), runner)
	if report.Success {
		metrics.SchedulerRunsTotal.WithLabelValues("success").Inc()
	} else {
		metrics.SchedulerRunsTotal.WithLabelValues("failure").Inc()
	}
	log.Info().Bool("success", report.Success).Int("recipients", len(batch)).Msg("scheduled run finished")
	return report
}

func loadLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load timezone %q: %w", tz, err)
	}
	return loc, nil
}
