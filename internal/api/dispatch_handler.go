package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sungwon/newsmail/internal/dispatch"
	"github.com/sungwon/newsmail/internal/logger"
	"github.com/sungwon/newsmail/internal/step"
)

const maxBatchBodyBytes = 10 << 20

// Dispatcher delivers one news summary batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, batch []dispatch.RecipientNotification, token string, step dispatch.StepRunner) dispatch.Report
}

// dispatchRequest is the JSON body for POST /api/v1/news-summaries/dispatch.
type dispatchRequest struct {
	Date           string                           `json:"date"`
	Recipients     []dispatch.RecipientNotification `json:"recipients"`
	IdempotencyKey string                           `json:"idempotency_key"`
}

func (req dispatchRequest) validate() []string {
	var errs []string
	if req.Date == "" {
		errs = append(errs, "date is required")
	}
	for i, n := range req.Recipients {
		if n.Recipient.Email == "" {
			errs = append(errs, fmt.Sprintf("recipients[%d].user.email is required", i))
			continue
		}
		if err := ValidateEmailAddress(n.Recipient.Email); err != nil {
			errs = append(errs, fmt.Sprintf("recipients[%d].user.email is invalid: %v", i, err))
		}
	}
	return errs
}

// DispatchHandler handles POST /api/v1/news-summaries/dispatch.
// Returns 200 with the report when the batch succeeds and 502 with the
// report when it fails. A request carrying an idempotency_key runs as a
// checkpointed step, so repeating it after success sends nothing and
// repeating it while the first request is still sending returns 409.
func DispatchHandler(d Dispatcher, checkpoints step.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dispatchRequest
		if err := decodeJSON(w, r, maxBatchBodyBytes, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if errs := req.validate(); len(errs) > 0 {
			respondValidationErrors(w, errs)
			return
		}

		if req.IdempotencyKey == "" {
			respondReport(w, d.Dispatch(r.Context(), req.Recipients, req.Date, nil))
			return
		}
		if checkpoints == nil {
			respondError(w, http.StatusServiceUnavailable, "idempotency store unavailable")
			return
		}

		runLog := log.With().Str("correlation_id", logger.CorrelationIDFromContext(r.Context())).Logger()
		runner := &recordingRunner{next: step.NewRunner(checkpoints, "api:"+req.IdempotencyKey, runLog)}
		report := d.Dispatch(r.Context(), req.Recipients, req.Date, runner)
		if errors.Is(runner.err, step.ErrStepInProgress) {
			respondJSON(w, http.StatusConflict, report)
			return
		}
		respondReport(w, report)
	}
}

// recordingRunner keeps the error of the wrapped runner so the handler can
// tell a duplicate in-flight request from a failed send.
type recordingRunner struct {
	next dispatch.StepRunner
	err  error
}

func (r *recordingRunner) Run(ctx context.Context, name string, fn func(context.Context) error) error {
	r.err = r.next.Run(ctx, name, fn)
	return r.err
}
