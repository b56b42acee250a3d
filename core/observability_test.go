package core

import (
	"context"
	"sync"
	"testing"
)

type capturingMetricsRecorder struct {
	mu       sync.Mutex
	counters map[string]map[string]string
}

func (r *capturingMetricsRecorder) IncCounter(_ context.Context, name string, _ int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counters == nil {
		r.counters = map[string]map[string]string{}
	}
	r.counters[name] = cloneTags(tags)
}

func (r *capturingMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {
}

func TestService_ObserveOperation_RecordsMetrics(t *testing.T) {
	recorder := &capturingMetricsRecorder{}
	service, _ := newTestService(t, WithMetricsRecorder(recorder))
	owner := Actor{UserID: "user_1"}

	credential := createTestCredential(t, service, owner)
	if _, err := service.CreateConnection(context.Background(), CreateConnectionRequest{
		Actor:           owner,
		IntegrationType: IntegrationTypeSource,
		ShortName:       "slack",
		CredentialID:    credential.ID,
	}); err != nil {
		t.Fatalf("CreateConnection: %v", err)
	}

	tags, ok := recorder.counters["connections.connection.create.total"]
	if !ok {
		t.Fatalf("expected connection.create counter, got %v", recorder.counters)
	}
	if tags["status"] != "success" {
		t.Fatalf("expected success tag, got %v", tags)
	}
	if tags["integration_type"] != "source" || tags["short_name"] != "slack" {
		t.Fatalf("expected integration tags, got %v", tags)
	}

	if _, err := service.GetConnection(context.Background(), "conn_missing", owner); err == nil {
		t.Fatalf("expected missing connection to fail")
	}
	tags, ok = recorder.counters["connections.connection.get.total"]
	if !ok {
		t.Fatalf("expected connection.get counter, got %v", recorder.counters)
	}
	if tags["status"] != "failure" {
		t.Fatalf("expected failure tag, got %v", tags)
	}
}

func TestNormalizeOperation(t *testing.T) {
	if got := normalizeOperation(" Connection Create "); got != "connection_create" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := normalizeOperation("connection.get"); got != "connection.get" {
		t.Fatalf("expected dots preserved: %q", got)
	}
}
