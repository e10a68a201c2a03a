package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport scripts the provider side. onIssue runs in the caller's
// goroutine, before Fetch starts waiting, so tests can deliver the whole
// stream up front or spawn their own goroutine for late delivery.
type fakeTransport struct {
	connected bool
	onIssue   func(reqID int64, req Request) error

	mu        sync.Mutex
	cancelled []int64
}

func (f *fakeTransport) IssueFetch(reqID int64, req Request) error {
	if f.onIssue != nil {
		return f.onIssue(reqID, req)
	}
	return nil
}

func (f *fakeTransport) CancelFetch(reqID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, reqID)
	return nil
}

func (f *fakeTransport) IsConnected() bool { return f.connected }

func (f *fakeTransport) cancelledIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.cancelled...)
}

func testRequest() Request {
	return Request{
		Symbol: "AAPL", SecType: "STK", Exchange: "SMART", Currency: "USD",
		Duration: "1 D", BarSize: "5 mins", WhatToShow: "TRADES", UseRTH: true,
	}
}

func TestFetchReturnsStreamedRows(t *testing.T) {
	tr := &fakeTransport{connected: true}
	s := NewSynchronizer(tr)
	tr.onIssue = func(reqID int64, _ Request) error {
		s.OnRow(reqID, Row{Date: "20240116 09:30:00", Close: 10})
		s.OnRow(reqID, Row{Date: "20240116 09:35:00", Close: 11})
		s.OnStreamEnd(reqID, "20240116 09:30:00", "20240116 09:35:00")
		return nil
	}

	rows, err := s.Fetch(context.Background(), testRequest(), time.Second)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 10.0, rows[0].Close)
	assert.Equal(t, 11.0, rows[1].Close)
	assert.Zero(t, s.PendingCount())
}

func TestFetchNotConnected(t *testing.T) {
	s := NewSynchronizer(&fakeTransport{connected: false})
	_, err := s.Fetch(context.Background(), testRequest(), time.Second)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Zero(t, s.PendingCount())
}

func TestFetchIssueErrorDiscardsPending(t *testing.T) {
	tr := &fakeTransport{connected: true}
	tr.onIssue = func(int64, Request) error { return errors.New("pacing violation") }
	s := NewSynchronizer(tr)

	_, err := s.Fetch(context.Background(), testRequest(), time.Second)
	require.Error(t, err)
	assert.Zero(t, s.PendingCount())
}

func TestFetchTimeoutCancelsRequest(t *testing.T) {
	tr := &fakeTransport{connected: true} // never answers
	s := NewSynchronizer(tr)

	_, err := s.Fetch(context.Background(), testRequest(), 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Zero(t, s.PendingCount())
	assert.Len(t, tr.cancelledIDs(), 1)
}

func TestFetchContextCancellation(t *testing.T) {
	tr := &fakeTransport{connected: true}
	s := NewSynchronizer(tr)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx, testRequest(), time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.PendingCount())
	assert.Len(t, tr.cancelledIDs(), 1)
}

func TestRowsAfterTimeoutAreDropped(t *testing.T) {
	tr := &fakeTransport{connected: true}
	s := NewSynchronizer(tr)

	var issued int64
	tr.onIssue = func(reqID int64, _ Request) error {
		issued = reqID
		return nil
	}
	_, err := s.Fetch(context.Background(), testRequest(), 20*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)

	// Late stream arrives after the waiter gave up; nothing must blow up and
	// no state must linger.
	s.OnRow(issued, Row{Date: "20240116 09:30:00"})
	s.OnStreamEnd(issued, "", "")
	assert.Zero(t, s.PendingCount())
}

func TestOnStreamEndIsIdempotent(t *testing.T) {
	tr := &fakeTransport{connected: true}
	s := NewSynchronizer(tr)
	tr.onIssue = func(reqID int64, _ Request) error {
		s.OnStreamEnd(reqID, "", "")
		s.OnStreamEnd(reqID, "", "") // duplicate end must not panic
		return nil
	}

	rows, err := s.Fetch(context.Background(), testRequest(), time.Second)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRequestIDsAreMonotonic(t *testing.T) {
	s := NewSynchronizer(&fakeTransport{connected: true})
	a := s.NextRequestID()
	b := s.NextRequestID()
	assert.Greater(t, a, int64(1000))
	assert.Greater(t, b, a)
}

func TestCloseCancelsAllPending(t *testing.T) {
	tr := &fakeTransport{connected: true}
	s := NewSynchronizer(tr)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Fetch(context.Background(), testRequest(), 200*time.Millisecond)
			assert.Error(t, err)
		}()
	}

	// Wait until all three are registered, then shut down.
	require.Eventually(t, func() bool { return s.PendingCount() == 3 },
		time.Second, 5*time.Millisecond)
	s.Close()
	assert.Zero(t, s.PendingCount())
	wg.Wait()
	// Close cancelled each request; the timed-out waiters may cancel again.
	assert.GreaterOrEqual(t, len(tr.cancelledIDs()), 3)
}
