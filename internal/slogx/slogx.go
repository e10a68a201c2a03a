package slogx

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
)

// ChanWriter buffers writes and forwards complete lines to a channel.
// Used with slog.TextHandler to fan in log lines from worker goroutines
// so they reach one writer without interleaving. When the channel is full
// the line is dropped rather than blocking the logging goroutine.
type ChanWriter struct {
	ch  chan<- string
	buf []byte
}

// NewChanWriter creates a writer forwarding complete lines to ch.
func NewChanWriter(ch chan<- string) *ChanWriter {
	return &ChanWriter{ch: ch}
}

func (w *ChanWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := string(w.buf[:i])
		w.buf = w.buf[i+1:]
		select {
		case w.ch <- line:
		default:
			// channel full, drop
		}
	}
	return len(p), nil
}

// NewChanLogger creates a slog.Logger writing text lines to ch at the given
// minimum level.
func NewChanLogger(ch chan<- string, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(NewChanWriter(ch), &slog.HandlerOptions{
		Level: level,
	}))
}

// ParseLevel converts a string (debug|info|warn|error) to slog.Level. Unknown → info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewDefault creates a logger writing to stderr at the given level string.
func NewDefault(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}
