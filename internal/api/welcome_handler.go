package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sungwon/newsmail/internal/logger"
	"github.com/sungwon/newsmail/internal/mailer"
	"github.com/sungwon/newsmail/internal/provider"
)

// WelcomeSender composes and delivers welcome emails.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, p provider.Provider, d mailer.WelcomeData) (*provider.DeliveryResult, error)
}

type welcomeResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// WelcomeHandler handles POST /api/v1/welcome.
func WelcomeHandler(sender WelcomeSender, p provider.Provider, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mailer.WelcomeData
		if err := decodeJSON(w, r, maxWelcomeBodyBytes, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var errs []string
		if err := ValidateEmailAddress(req.Email); err != nil {
			errs = append(errs, "email is invalid: "+err.Error())
		}
		if req.Name == "" {
			errs = append(errs, "name is required")
		}
		if len(errs) > 0 {
			respondValidationErrors(w, errs)
			return
		}

		result, err := sender.SendWelcome(r.Context(), p, req)
		if err != nil {
			log.Error().Err(err).
				Str("email", req.Email).
				Str("correlation_id", logger.CorrelationIDFromContext(r.Context())).
				Msg("failed to send welcome email")
			respondError(w, http.StatusBadGateway, "failed to send welcome email")
			return
		}

		respondJSON(w, http.StatusOK, welcomeResponse{
			MessageID: result.ProviderMessageID,
			Status:    string(result.Status),
		})
	}
}
