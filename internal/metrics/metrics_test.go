package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.PublishSucceeded("default", 1, 1, time.Now())
	m.PublishFailed("default", PublishFailed)
	m.TimestampBumped()
	m.Read("default", ReadReady)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.PublishSucceeded("default", 3, 2, time.Unix(1_700_000_000, 0))
	m.PublishFailed("default", PublishFailed)
	m.Read("default", ReadMalformed)
	m.TimestampBumped()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`pawglance_publishes_total{channel="default",result="ok"} 1`,
		`pawglance_publishes_total{channel="default",result="failed"} 1`,
		`pawglance_reads_total{channel="default",outcome="malformed"} 1`,
		`pawglance_snapshot_tasks 3`,
		`pawglance_snapshot_pending 2`,
		`pawglance_timestamp_bumps_total 1`,
		`pawglance_last_publish_timestamp_seconds 1.7e+09`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistryGather(t *testing.T) {
	m := New()
	m.Read("default", ReadAbsent)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "pawglance_reads_total" {
			found = true
		}
	}
	if !found {
		t.Error("pawglance_reads_total not registered")
	}
}
