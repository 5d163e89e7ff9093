package api

import (
	"context"
	"errors"
	"sync"

	"github.com/sungwon/newsmail/internal/dispatch"
	"github.com/sungwon/newsmail/internal/mailer"
	"github.com/sungwon/newsmail/internal/provider"
)

// mockDispatcher records calls and returns a canned report.
type mockDispatcher struct {
	mu     sync.Mutex
	calls  int
	batch  []dispatch.RecipientNotification
	token  string
	step   dispatch.StepRunner
	report dispatch.Report
}

func (m *mockDispatcher) Dispatch(_ context.Context, batch []dispatch.RecipientNotification, token string, s dispatch.StepRunner) dispatch.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.batch = batch
	m.token = token
	m.step = s
	return m.report
}

type mockWelcomeSender struct {
	got mailer.WelcomeData
	err error
}

func (m *mockWelcomeSender) SendWelcome(_ context.Context, _ provider.Provider, d mailer.WelcomeData) (*provider.DeliveryResult, error) {
	m.got = d
	if m.err != nil {
		return nil, m.err
	}
	return &provider.DeliveryResult{ProviderMessageID: "msg-1", Status: provider.StatusSent}, nil
}

// mockProvider counts sends and reports a configurable health.
type mockProvider struct {
	mu        sync.Mutex
	name      string
	sent      []*provider.Message
	healthErr error
}

func (m *mockProvider) Send(_ context.Context, msg *provider.Message) (*provider.DeliveryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return &provider.DeliveryResult{ProviderMessageID: "mock-1", Status: provider.StatusSent}, nil
}

func (m *mockProvider) GetName() string                    { return m.name }
func (m *mockProvider) HealthCheck(_ context.Context) error { return m.healthErr }

func (m *mockProvider) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

var errUnavailable = errors.New("connection refused")
