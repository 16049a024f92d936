package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testAdapter is a map-backed StateStore with failure injection.
type testAdapter struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes map[string][][]byte
	getErr error
	setErr error
}

func newTestAdapter() *testAdapter {
	return &testAdapter{data: make(map[string][]byte), writes: make(map[string][][]byte)}
}

func (a *testAdapter) Get(_ context.Context, key string) ([]byte, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.getErr != nil {
		return nil, false, a.getErr
	}
	v, ok := a.data[key]
	return append([]byte(nil), v...), ok, nil
}

func (a *testAdapter) Set(_ context.Context, key string, payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.setErr != nil {
		return a.setErr
	}
	a.data[key] = append([]byte(nil), payload...)
	a.writes[key] = append(a.writes[key], append([]byte(nil), payload...))
	return nil
}

func (a *testAdapter) Close() error { return nil }

func (a *testAdapter) put(key, doc string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[key] = []byte(doc)
}

func (a *testAdapter) raw(key string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return string(a.data[key])
}

func (a *testAdapter) failSets(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setErr = err
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock() Clock {
	return ClockFunc(func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) })
}

func newFoodLog(t *testing.T, adapter *testAdapter, opts ...Option) *FoodLogStore {
	t.Helper()
	opts = append([]Option{WithIDGenerator(sequentialIDs("entry")), WithClock(fixedClock())}, opts...)
	s, err := NewFoodLogStore(context.Background(), adapter, opts...)
	if err != nil {
		t.Fatalf("new food log store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func newGrocery(t *testing.T, adapter *testAdapter, opts ...Option) *GroceryStore {
	t.Helper()
	opts = append([]Option{WithIDGenerator(sequentialIDs("item"))}, opts...)
	s, err := NewGroceryStore(context.Background(), adapter, opts...)
	if err != nil {
		t.Fatalf("new grocery store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

type captureAuditRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) find(op string) (AuditEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.Operation == op {
			return e, true
		}
	}
	return AuditEntry{}, false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

func (l *captureLogger) Debug(string, ...any) {}
func (l *captureLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}
func (l *captureLogger) Warn(string, ...any) {}
func (l *captureLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *captureLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}
