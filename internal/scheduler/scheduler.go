package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sungwon/newsmail/internal/dispatch"
)

// ErrInvalidSpec is returned for a cron expression that does not parse.
var ErrInvalidSpec = errors.New("scheduler: invalid cron spec")

// Scheduler triggers a Job on a cron schedule. Overlapping triggers are
// skipped while a run is still in progress.
type Scheduler struct {
	mu      sync.Mutex
	job     *Job
	spec    string
	loc     *time.Location
	parser  cron.Parser
	c       *cron.Cron
	entryID cron.EntryID
	logger  zerolog.Logger
}

// New validates cfg.Spec and returns a stopped Scheduler for job.
func New(job *Job, cfg Config, log zerolog.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cfg.Spec); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSpec, cfg.Spec, err)
	}
	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		job:    job,
		spec:   cfg.Spec,
		loc:    loc,
		parser: parser,
		logger: log.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Start begins triggering the job. Runs use ctx for their lifetime.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	cl := cronLogger{log: s.logger}
	c := cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(s.loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	id, err := c.AddFunc(s.spec, func() {
		s.job.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSpec, s.spec, err)
	}
	s.c = c
	s.entryID = id
	c.Start()

	s.logger.Info().Str("spec", s.spec).Str("tz", s.loc.String()).Time("next", c.Entry(id).Next).Msg("scheduler started")
	return nil
}

// Stop stops triggering new runs and waits for a running job to finish or
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		s.logger.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop: %w", ctx.Err())
	}
}

// RunNow runs the job immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) dispatch.Report {
	return s.job.Run(ctx)
}

// Next returns the next scheduled trigger, or the zero time when stopped.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return time.Time{}
	}
	return s.c.Entry(s.entryID).Next
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
