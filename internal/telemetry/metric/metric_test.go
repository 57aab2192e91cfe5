package metric

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistry_CountersAppearInOutput(t *testing.T) {
	r := NewRegistry()

	r.TokensIssued.Inc()
	r.TokensRevoked.Inc()
	r.Validations.WithLabelValues(OutcomeGranted).Inc()
	r.Validations.WithLabelValues(OutcomeDenied).Add(2)
	r.RequestsTotal.WithLabelValues("POST", "/v1/tokens", "200").Inc()
	r.RequestDuration.WithLabelValues("/v1/tokens").Observe(0.042)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"gatewarden_tokens_issued_total 1",
		"gatewarden_tokens_revoked_total 1",
		`gatewarden_tokens_validations_total{outcome="granted"} 1`,
		`gatewarden_tokens_validations_total{outcome="denied"} 2`,
		`gatewarden_http_requests_total{method="POST",route="/v1/tokens",status="200"} 1`,
		"gatewarden_http_request_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistry_PrometheusAccessor(t *testing.T) {
	r := NewRegistry()
	if r.Prometheus() == nil {
		t.Fatal("Prometheus() = nil")
	}
}
