package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"i18nsync/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	if b, err := NewBackend("compare", ""); err == nil || b != nil {
		t.Fatalf("NewBackend without URL = %v, %v; want error", b, err)
	}

	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend error = %v", err)
	}
	if b.jobName != "i18nsync" {
		t.Fatalf("jobName = %q, want default", b.jobName)
	}
	if b.instance == "" {
		t.Fatalf("instance grouping key is empty")
	}

	other, _ := NewBackend("", "http://pushgateway:9091")
	if other.instance == b.instance {
		t.Fatalf("two runs share instance %q", b.instance)
	}
}

func TestBackend_Counters(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("compare", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend error = %v", err)
	}

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "scan_dump", "status": "success"})
	b.IncCounter(metrics.StepTotal, 2, metrics.Labels{"step": "scan_dump", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 7, metrics.Labels{"kind": "content_diffs"})
	b.IncCounter("unknown_metric", 1, nil)
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.5, metrics.Labels{"step": "scan_dump", "status": "success"})
	b.ObserveHistogram("unknown_metric", 1, nil)

	if got := readCounterValue(t, b.stepCounter.WithLabelValues("scan_dump", "success")); got != 3 {
		t.Fatalf("step counter = %v, want 3", got)
	}
	if got := readCounterValue(t, b.recordCounter.WithLabelValues("content_diffs")); got != 7 {
		t.Fatalf("record counter = %v, want 7", got)
	}
}

func TestBackend_FlushPushesToGateway(t *testing.T) {
	t.Parallel()

	type pushRequest struct {
		method string
		path   string
		body   string
	}
	reqCh := make(chan pushRequest, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushRequest{method: r.Method, path: r.URL.Path, body: string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("syncgen", server.URL)
	if err != nil {
		t.Fatalf("NewBackend error = %v", err)
	}
	b.IncCounter(metrics.RecordsTotal, 4, metrics.Labels{"kind": "sql_rows"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	var got pushRequest
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush did not reach the Pushgateway")
	}
	if got.method != http.MethodPut {
		t.Fatalf("method = %q, want PUT", got.method)
	}
	wantPath := "/metrics/job/syncgen/instance/" + b.instance
	if got.path != wantPath {
		t.Fatalf("path = %q, want %q", got.path, wantPath)
	}
	if got.body == "" {
		t.Fatalf("push body is empty")
	}
}

func TestBackend_FlushError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	b, err := NewBackend("compare", server.URL)
	if err != nil {
		t.Fatalf("NewBackend error = %v", err)
	}
	err = b.Flush()
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("Flush error = %v, want status 500", err)
	}
}
