package cache

import (
	"log/slog"
	"strings"
	"time"

	"twscache/internal/fetch"
	"twscache/internal/model"
)

// Normalize converts raw transport rows into bars with millisecond UTC
// timestamps. Rows whose date cannot be parsed are dropped with a warning; a
// fabricated timestamp would corrupt the series.
func Normalize(rows []fetch.Row, loc *time.Location) []model.Bar {
	bars := make([]model.Bar, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		ts, ok := parseBarDate(r.Date, loc)
		if !ok {
			dropped++
			continue
		}
		bars = append(bars, model.Bar{
			Timestamp: ts.UnixMilli(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
			WAP:       r.WAP,
			BarCount:  r.BarCount,
		})
	}
	if dropped > 0 {
		slog.Warn("dropped rows with unparseable dates", "dropped", dropped, "total", len(rows))
	}
	return bars
}

// parseBarDate parses the provider's bar date spellings: intraday
// "20060102 15:04:05" (optionally with a trailing zone name), daily
// "20060102", and RFC 3339. Dates without a zone are taken in loc.
func parseBarDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("20060102 15:04:05", s, loc); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("20060102", s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		if zone, err := time.LoadLocation(s[i+1:]); err == nil {
			if t, err := time.ParseInLocation("20060102 15:04:05", s[:i], zone); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
