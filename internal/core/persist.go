package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"nutriplan/pkg/domain"
)

// Persistence keys, one per store.
const (
	FoodLogStorageKey = "food-log-storage"
	GroceryStorageKey = "grocery-storage"
)

// SchemaVersion is written into every persisted envelope.
const SchemaVersion = 1

// envelope is the persisted document. Documents without a version field are
// legacy (version 0) and hold the bare state.
type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

func encodeEnvelope(state any) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Version: SchemaVersion, State: raw})
}

// decodeEnvelope returns the schema version and raw state of a persisted document.
func decodeEnvelope(doc []byte) (int, json.RawMessage, error) {
	var probe struct {
		Version *int            `json:"version"`
		State   json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return 0, nil, err
	}
	if probe.Version == nil {
		return 0, json.RawMessage(doc), nil
	}
	if *probe.Version > SchemaVersion || *probe.Version < 1 {
		return 0, nil, fmt.Errorf("unsupported schema version %d", *probe.Version)
	}
	return *probe.Version, probe.State, nil
}

// loadDocument reads and unwraps the document stored under key. ok is false
// when nothing has been persisted yet.
func loadDocument(ctx context.Context, adapter domain.StateStore, key string) (version int, state json.RawMessage, ok bool, err error) {
	doc, ok, err := adapter.Get(ctx, key)
	if err != nil {
		return 0, nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(doc) == 0 {
		return 0, nil, false, nil
	}
	version, state, err = decodeEnvelope(doc)
	if err != nil {
		return 0, nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return version, state, true, nil
}

// ErrPersisterClosed is returned by Flush after Close.
var ErrPersisterClosed = errors.New("persister closed")

// persister writes store snapshots to the adapter from a single goroutine.
// Snapshots handed over while a write is in flight coalesce: only the latest
// pending one is written next. A crash loses at most the unwritten tail.
type persister struct {
	key     string
	adapter domain.StateStore
	opts    *serviceOptions

	mu      sync.Mutex
	pending []byte
	lastErr error
	closed  bool

	kick     chan struct{}
	flushReq chan chan struct{}
	stop     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

func newPersister(key string, adapter domain.StateStore, opts *serviceOptions) *persister {
	p := &persister{
		key:      key,
		adapter:  adapter,
		opts:     opts,
		kick:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.loop()
	return p
}

// enqueue hands over a serialized snapshot. It never blocks.
func (p *persister) enqueue(payload []byte) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.opts.logger.Warn("snapshot dropped after close", "key", p.key)
		return
	}
	p.pending = payload
	p.mu.Unlock()
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *persister) loop() {
	defer close(p.stopped)
	for {
		select {
		case <-p.kick:
			p.writePending()
		case done := <-p.flushReq:
			p.writePending()
			close(done)
		case <-p.stop:
			p.writePending()
			return
		}
	}
}

func (p *persister) writePending() {
	p.mu.Lock()
	payload := p.pending
	p.pending = nil
	p.mu.Unlock()
	if payload == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.persistTimeout)
	defer cancel()
	start := p.opts.clock.Now()
	err := p.adapter.Set(ctx, p.key, payload)
	p.opts.metrics.Observe(ctx, opPersistPrefix+p.key, err == nil, p.opts.clock.Now().Sub(start))
	if err != nil {
		p.opts.logger.Error("snapshot write failed", "key", p.key, "error", err)
	} else {
		p.opts.logger.Debug("snapshot written", "key", p.key, "bytes", len(payload))
	}
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

func (p *persister) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Flush waits until every snapshot enqueued before the call has been written
// and returns the outcome of the most recent write.
func (p *persister) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case p.flushReq <- done:
	case <-p.stopped:
		return ErrPersisterClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return p.err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending snapshot, stops the goroutine and returns the
// outcome of the last write. It is safe to call more than once.
func (p *persister) Close(ctx context.Context) error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.stop)
	})
	select {
	case <-p.stopped:
		return p.err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
