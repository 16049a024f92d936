package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"nutriplan/pkg/domain"
)

func TestNoopLogger(t *testing.T) {
	logger := noopLogger{}
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("noop logger panicked: %v", r)
		}
	}()
	logger.Debug("debug", "k", "v")
	logger.Info("info", "k", "v")
	logger.Warn("warn", "k", "v")
	logger.Error("error", "k", "v")
}

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if !strings.HasPrefix(rec.Name(), "nutriplan_store_metrics_") {
		t.Fatalf("unexpected generated name %q", rec.Name())
	}
	rec.Observe(context.Background(), "add_food_entry", true, 2*time.Millisecond)
	rec.Observe(context.Background(), "add_food_entry", false, time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Second)

	snap := rec.Snapshot()
	st := snap["add_food_entry"]
	if st.Count != 2 || st.Errors != 1 || st.DurationMS != 3 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if len(rec.Operations()) != 1 {
		t.Fatalf("empty operation names must be ignored: %v", rec.Operations())
	}
	published := expvar.Get(rec.Name())
	if published == nil {
		t.Fatalf("recorder not published")
	}
	var decoded map[string]OperationStats
	if err := json.Unmarshal([]byte(published.String()), &decoded); err != nil {
		t.Fatalf("decode expvar: %v", err)
	}
	if decoded["add_food_entry"].Count != 2 {
		t.Fatalf("unexpected published stats: %+v", decoded)
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	s := newGrocery(t, newTestAdapter(), WithMetricsRecorder(rec))
	s.AddItem(ctx, domain.GroceryItem{Name: "Kale"})
	s.AddItem(ctx, domain.GroceryItem{Name: "Leeks"})
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	hist, total := rec.Collectors()
	if got := testutil.ToFloat64(total.WithLabelValues(opAddGroceryItem, "success")); got != 2 {
		t.Fatalf("expected 2 successful adds, got %v", got)
	}
	if got := testutil.CollectAndCount(hist, "nutriplan_store_operation_duration_seconds"); got < 2 {
		t.Fatalf("expected add and persist histograms, got %d series", got)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if _, err := NewPrometheusMetricsRecorder(nil); err != nil {
		t.Fatalf("unregistered recorder: %v", err)
	}
}

func TestMultiMetricsRecorder(t *testing.T) {
	a, b := &captureMetricsRecorder{}, &captureMetricsRecorder{}
	MultiMetricsRecorder{a, nil, b}.Observe(context.Background(), "clear_day", true, time.Millisecond)
	if !a.has("clear_day", true) || !b.has("clear_day", true) {
		t.Fatalf("observation not fanned out")
	}
}

func TestJSONTracerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	_, span := tracer.Start(context.Background(), "add_grocery_item")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "remove_food_entry")
	span.End(errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	var last JSONTraceEntry
	if err := json.Unmarshal([]byte(lines[1]), &last); err != nil {
		t.Fatalf("decode span: %v", err)
	}
	if last.Operation != "remove_food_entry" || last.Status != "error" || last.Error != "boom" {
		t.Fatalf("unexpected span: %+v", last)
	}
	if len(tracer.Entries()) != 2 {
		t.Fatalf("expected retained spans")
	}
}
