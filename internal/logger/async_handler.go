package logger

import (
	"cmp"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultAsyncBufferSize   = 1024
	defaultAsyncFlushTimeout = 5 * time.Second
)

// AsyncOptions configures the async log pipeline.
type AsyncOptions struct {
	BufferSize   int
	FlushTimeout time.Duration
}

type queuedRecord struct {
	ctx     context.Context
	record  slog.Record
	handler slog.Handler
}

// asyncQueue is shared by an AsyncHandler and every handler derived from it
// through WithAttrs/WithGroup. mu guards the transition to closed: senders
// hold it for reading so the channel is never closed under them.
type asyncQueue struct {
	mu           sync.RWMutex
	closed       bool
	records      chan queuedRecord
	flushTimeout time.Duration
	drained      chan struct{}
	dropped      atomic.Uint64
}

func newAsyncQueue(opts AsyncOptions) *asyncQueue {
	q := &asyncQueue{
		records:      make(chan queuedRecord, cmp.Or(max(opts.BufferSize, 0), defaultAsyncBufferSize)),
		flushTimeout: cmp.Or(max(opts.FlushTimeout, 0), defaultAsyncFlushTimeout),
		drained:      make(chan struct{}),
	}
	go q.drain()
	return q
}

func (q *asyncQueue) drain() {
	defer close(q.drained)
	for rec := range q.records {
		_ = rec.handler.Handle(rec.ctx, rec.record)
	}
}

// push never blocks; a full or closed queue counts the record as dropped.
func (q *asyncQueue) push(rec queuedRecord) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.dropped.Add(1)
		return
	}
	select {
	case q.records <- rec:
	default:
		q.dropped.Add(1)
	}
}

func (q *asyncQueue) close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.records)
	q.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.flushTimeout)
		defer cancel()
	}
	select {
	case <-q.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AsyncHandler hands records to a background goroutine so remote log
// shipping never blocks callback processing.
type AsyncHandler struct {
	queue   *asyncQueue
	handler slog.Handler
}

// NewAsyncHandler creates a new async handler with its own queue.
func NewAsyncHandler(handler slog.Handler, opts AsyncOptions) *AsyncHandler {
	return &AsyncHandler{
		queue:   newAsyncQueue(opts),
		handler: handler,
	}
}

// Enabled reports whether the underlying handler is enabled for the given level.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle enqueues the record. The context is detached so that request
// cancellation does not abort delivery.
func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.handler.Enabled(ctx, r.Level) {
		return nil
	}
	h.queue.push(queuedRecord{ctx: context.WithoutCancel(ctx), record: r.Clone(), handler: h.handler})
	return nil
}

// WithAttrs returns a handler sharing the same queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{queue: h.queue, handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a handler sharing the same queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{queue: h.queue, handler: h.handler.WithGroup(name)}
}

// Dropped returns how many records were discarded because the queue was full or closed.
func (h *AsyncHandler) Dropped() uint64 {
	if h == nil || h.queue == nil {
		return 0
	}
	return h.queue.dropped.Load()
}

// Shutdown flushes pending records, waiting at most until ctx is done
// or the flush timeout when ctx has no deadline.
func (h *AsyncHandler) Shutdown(ctx context.Context) error {
	if h == nil || h.queue == nil {
		return nil
	}
	return h.queue.close(ctx)
}
