package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
)

func TestWelcomeHandler_Success(t *testing.T) {
	sender := &mockWelcomeSender{}
	h := WelcomeHandler(sender, &mockProvider{name: "mock"}, zerolog.Nop())

	rec := postJSON(h, "/", `{"email":"new@x.com","name":"Ada","intro":"Hi"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp welcomeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.MessageID != "msg-1" || resp.Status != "sent" {
		t.Errorf("unexpected response %+v", resp)
	}
	if sender.got.Name != "Ada" || sender.got.Intro != "Hi" {
		t.Errorf("unexpected welcome data %+v", sender.got)
	}
}

func TestWelcomeHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `nope`},
		{"missing email", `{"name":"Ada"}`},
		{"missing name", `{"email":"new@x.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(WelcomeHandler(&mockWelcomeSender{}, &mockProvider{}, zerolog.Nop()), "/", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestWelcomeHandler_SendFailure(t *testing.T) {
	sender := &mockWelcomeSender{err: errors.New("relay down")}

	rec := postJSON(WelcomeHandler(sender, &mockProvider{}, zerolog.Nop()), "/", `{"email":"new@x.com","name":"Ada"}`)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rec.Code)
	}
}
