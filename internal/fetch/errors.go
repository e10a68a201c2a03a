package fetch

import "errors"

var (
	// ErrNotConnected means the transport session was down when the fetch was
	// issued. The call fails immediately; no retry happens here.
	ErrNotConnected = errors.New("fetch: transport not connected")

	// ErrTimeout means no stream-end signal arrived within the configured
	// bound. The request was cancelled and its buffer discarded.
	ErrTimeout = errors.New("fetch: timed out waiting for stream end")
)
