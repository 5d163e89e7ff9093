package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistered(t *testing.T) {
	// promauto registers with the default registry at init; a duplicate
	// name would have panicked before this test ran.
	tests := []struct {
		name   string
		metric prometheus.Collector
	}{
		{"DispatchBatchesTotal", DispatchBatchesTotal},
		{"DispatchSendsTotal", DispatchSendsTotal},
		{"DispatchSkippedTotal", DispatchSkippedTotal},
		{"DispatchDuration", DispatchDuration},
		{"StepRunsTotal", StepRunsTotal},
		{"SchedulerRunsTotal", SchedulerRunsTotal},
		{"APIRequestsTotal", APIRequestsTotal},
		{"APIRequestDuration", APIRequestDuration},
		{"APIAuthFailuresTotal", APIAuthFailuresTotal},
		{"DBConnectionsActive", DBConnectionsActive},
		{"DBConnectionsIdle", DBConnectionsIdle},
		{"DBQueryDuration", DBQueryDuration},
		{"DBErrorsTotal", DBErrorsTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s is nil", tt.name)
			}
		})
	}
}

func TestDispatchCounters(t *testing.T) {
	before := testutil.ToFloat64(DispatchSendsTotal.WithLabelValues("sent"))
	DispatchSendsTotal.WithLabelValues("sent").Inc()
	DispatchSendsTotal.WithLabelValues("failed").Inc()

	if got := testutil.ToFloat64(DispatchSendsTotal.WithLabelValues("sent")); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}

func TestDispatchDuration(t *testing.T) {
	DispatchDuration.Observe(0.25)
}

func TestStepRuns(t *testing.T) {
	StepRunsTotal.WithLabelValues("send-news-emails", "executed").Inc()
	StepRunsTotal.WithLabelValues("send-news-emails", "replayed").Inc()
}

func TestAPIRequestsCounter(t *testing.T) {
	APIRequestsTotal.WithLabelValues("POST", "/api/v1/news-summaries/dispatch", "200").Inc()
	APIRequestDuration.WithLabelValues("POST", "/api/v1/news-summaries/dispatch").Observe(0.05)
}

func TestDBMetrics(t *testing.T) {
	DBConnectionsActive.Set(10)
	DBConnectionsIdle.Set(5)
	DBQueryDuration.WithLabelValues("list_news_summaries").Observe(0.003)
	DBErrorsTotal.WithLabelValues("list_news_summaries").Inc()
}
