package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// pendingFetch is the shared state for one in-flight request. The transport
// callback goroutine is the sole producer (append rows, close done); the
// caller waiting in Fetch is the sole consumer.
type pendingFetch struct {
	rows []Row
	done chan struct{}
	once sync.Once
}

// Synchronizer correlates fetch requests with their asynchronously delivered
// streams. It hands an increasing request id to the transport, accumulates
// rows per id, and releases the waiting caller when the stream-end signal for
// that id arrives. The pending map is the only state shared between the
// callback goroutine and callers, and the only state under the mutex.
type Synchronizer struct {
	transport Transport

	mu      sync.Mutex
	pending map[int64]*pendingFetch
	lastID  atomic.Int64
}

// NewSynchronizer creates a Synchronizer on top of transport. Wire the
// returned value into the transport as its StreamHandler.
func NewSynchronizer(transport Transport) *Synchronizer {
	s := &Synchronizer{
		transport: transport,
		pending:   make(map[int64]*pendingFetch),
	}
	// Ids start above the provider's reserved ranges and only ever increase,
	// so an id is never in flight twice.
	s.lastID.Store(1000)
	return s
}

// NextRequestID allocates a fresh request id.
func (s *Synchronizer) NextRequestID() int64 {
	return s.lastID.Add(1)
}

// Fetch issues one request and blocks until its stream completes, the timeout
// elapses, or ctx is cancelled. On success it returns the accumulated rows in
// arrival order. On timeout or cancellation it cancels the request on the
// transport (best effort) and discards the buffer, then fails with ErrTimeout
// or the context error.
func (s *Synchronizer) Fetch(ctx context.Context, req Request, timeout time.Duration) ([]Row, error) {
	if !s.transport.IsConnected() {
		return nil, ErrNotConnected
	}

	id := s.NextRequestID()
	p := &pendingFetch{done: make(chan struct{})}
	s.mu.Lock()
	s.pending[id] = p
	s.mu.Unlock()

	slog.Info("historical fetch issued",
		"req_id", id, "symbol", req.Symbol, "bar_size", req.BarSize,
		"duration", req.Duration, "what", req.WhatToShow)

	if err := s.transport.IssueFetch(id, req); err != nil {
		s.discard(id)
		return nil, fmt.Errorf("fetch: issue request %d: %w", id, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		s.mu.Lock()
		rows := p.rows
		delete(s.pending, id)
		s.mu.Unlock()
		slog.Debug("historical fetch complete", "req_id", id, "rows", len(rows))
		return rows, nil
	case <-timer.C:
		s.abort(id)
		return nil, fmt.Errorf("fetch: request %d after %s: %w", id, timeout, ErrTimeout)
	case <-ctx.Done():
		s.abort(id)
		return nil, fmt.Errorf("fetch: request %d: %w", id, ctx.Err())
	}
}

// abort cancels a request on the transport and discards its buffer so a
// partial stream can never be mistaken for a result later.
func (s *Synchronizer) abort(id int64) {
	if err := s.transport.CancelFetch(id); err != nil {
		slog.Warn("cancel fetch failed", "req_id", id, "error", err)
	}
	s.discard(id)
}

func (s *Synchronizer) discard(id int64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// PendingCount reports the number of in-flight requests.
func (s *Synchronizer) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close cancels every in-flight request and clears all buffers. Callers
// blocked in Fetch are not released; Close is for shutdown after the
// transport session is going away.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	s.pending = make(map[int64]*pendingFetch)
	s.mu.Unlock()
	for _, id := range ids {
		if err := s.transport.CancelFetch(id); err != nil {
			slog.Warn("cancel fetch failed", "req_id", id, "error", err)
		}
	}
	if len(ids) > 0 {
		slog.Debug("cleared pending fetches", "count", len(ids))
	}
}

// OnRow appends one delivered row to its request buffer. Rows for ids with no
// pending entry (cancelled or timed out) are dropped.
func (s *Synchronizer) OnRow(reqID int64, row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[reqID]
	if !ok {
		slog.Debug("row for unknown request dropped", "req_id", reqID)
		return
	}
	p.rows = append(p.rows, row)
}

// OnStreamEnd marks the request complete and releases its waiter. The
// completion transition happens at most once per id.
func (s *Synchronizer) OnStreamEnd(reqID int64, observedStart, observedEnd string) {
	s.mu.Lock()
	p, ok := s.pending[reqID]
	n := 0
	if ok {
		n = len(p.rows)
	}
	s.mu.Unlock()
	if !ok {
		slog.Debug("stream end for unknown request", "req_id", reqID)
		return
	}
	p.once.Do(func() { close(p.done) })
	slog.Info("historical stream complete",
		"req_id", reqID, "rows", n, "observed_start", observedStart, "observed_end", observedEnd)
}
