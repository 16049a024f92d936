package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nutriplan/pkg/domain"
)

// Clock supplies the current time to stores and audit entries.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Logger is the structured logging surface used by the stores. Arguments
// after msg are alternating keys and values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// AuditStatus records whether an audited operation succeeded.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
	// AuditStatusNoop marks a mutation whose date, entry or item was absent.
	AuditStatusNoop AuditStatus = "noop"
)

// Action classifies an audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AuditEntry describes one completed store mutation.
type AuditEntry struct {
	Timestamp time.Time
	Operation string
	Entity    domain.EntityType
	Action    Action
	EntityID  string
	Status    AuditStatus
	Duration  time.Duration
	Error     string
}

// AuditRecorder receives an entry for every mutation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes the outcome and latency of store operations and
// background snapshot writes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts a span per store operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation's error, if any.
type TraceSpan interface {
	End(err error)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// Option configures a store.
type Option func(*serviceOptions)

type serviceOptions struct {
	clock          Clock
	logger         Logger
	audit          AuditRecorder
	metrics        MetricsRecorder
	tracer         Tracer
	newID          func() string
	sampleData     bool
	persistTimeout time.Duration
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:          ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:         noopLogger{},
		audit:          noopAuditRecorder{},
		metrics:        noopMetricsRecorder{},
		tracer:         noopTracer{},
		newID:          uuid.NewString,
		persistTimeout: 10 * time.Second,
	}
}

func buildOptions(opts []Option) serviceOptions {
	o := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger. A nil logger keeps the noop default.
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder sets the audit sink.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) Option {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithIDGenerator replaces the UUID generator used for entry and item ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *serviceOptions) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithSampleData seeds a store with bundled sample data when nothing has been
// persisted under its key yet.
func WithSampleData(enabled bool) Option {
	return func(o *serviceOptions) { o.sampleData = enabled }
}

// WithPersistTimeout bounds each background snapshot write.
func WithPersistTimeout(d time.Duration) Option {
	return func(o *serviceOptions) {
		if d > 0 {
			o.persistTimeout = d
		}
	}
}
