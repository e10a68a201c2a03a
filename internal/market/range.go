package market

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// endTimeLayouts are the accepted end-time spellings, tried in order. The
// provider's own format ("20060102 15:04:05", optionally with a trailing zone
// name) is handled separately in ParseEndTime.
var endTimeLayouts = []string{
	"20060102 15:04:05",
	"20060102-15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDurationDays converts a provider duration string into a trading-day
// count: "N D" → N, "N W" → N*5, "N M" → N*22. The month factor is a
// session-counting approximation, no calendar lookup. ok is false for
// malformed or unknown input, in which case the count defaults to 1.
func ParseDurationDays(duration string) (days int, ok bool) {
	parts := strings.Fields(strings.ToUpper(strings.TrimSpace(duration)))
	if len(parts) != 2 {
		return 1, false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return 1, false
	}
	switch parts[1] {
	case "D":
		return n, true
	case "W":
		return n * 5, true
	case "M":
		return n * 22, true
	default:
		return 1, false
	}
}

// ParseEndTime resolves an end-time string to an instant in loc. Empty input
// means now. Malformed input also resolves to now: the request should still
// produce data rather than fail on a sloppy timestamp.
func ParseEndTime(endDateTime string, loc *time.Location, now time.Time) time.Time {
	if strings.TrimSpace(endDateTime) == "" {
		return now.In(loc)
	}
	if t, err := time.Parse(time.RFC3339, endDateTime); err == nil {
		return t.In(loc)
	}
	for _, layout := range endTimeLayouts {
		if t, err := time.ParseInLocation(layout, endDateTime, loc); err == nil {
			return t
		}
	}
	// Provider format with zone name: "20250710 09:30:00 America/New_York"
	if i := strings.LastIndexByte(endDateTime, ' '); i > 0 {
		if zone, err := time.LoadLocation(endDateTime[i+1:]); err == nil {
			if t, err := time.ParseInLocation("20060102 15:04:05", endDateTime[:i], zone); err == nil {
				return t.In(loc)
			}
		}
	}
	slog.Warn("unparseable end time, using current time", "end_date_time", endDateTime)
	return now.In(loc)
}

// ExpectedRange computes the session-space interval the provider is expected
// to cover for a request ending at endDateTime over duration. The result is in
// the exchange's market timezone. barSize is part of the request contract but
// does not currently alter the range. now anchors empty or malformed end times.
//
// The provider returns data aligned to trading sessions, not wall-clock spans,
// so the range is computed by walking sessions rather than subtracting the
// duration from the end instant.
func (c *Calendar) ExpectedRange(barSize, endDateTime, duration, exchange string, now time.Time) (start, end time.Time) {
	_ = barSize
	cfg := configFor(exchange)
	loc := c.locationOf(cfg)
	anchor := ParseEndTime(endDateTime, loc, now)

	days, ok := ParseDurationDays(duration)
	if !ok {
		slog.Debug("malformed duration, defaulting to one trading day", "duration", duration)
	}

	var sessionDate time.Time
	if c.IsSessionOpen(anchor, exchange) {
		// Session still accruing: data is expected up to the anchor itself.
		sessionDate = c.dateOf(anchor, cfg)
		end = anchor
	} else {
		sessionDate = c.lastCompletedSession(anchor, exchange, cfg)
		if w, ok := c.SessionWindow(sessionDate, exchange); ok {
			end = w.Close
		} else {
			end = c.clockOn(sessionDate, cfg.Close)
		}
	}

	startDate := sessionDate
	for back := days - 1; back > 0; back-- {
		startDate = c.PrevTradingDay(startDate, exchange)
	}
	if w, ok := c.SessionWindow(startDate, exchange); ok {
		start = w.Open
	} else {
		start = c.clockOn(startDate, cfg.Open)
	}

	slog.Debug("expected range", "exchange", exchange, "start", start, "end", end, "trading_days", days)
	return start, end
}

// lastCompletedSession returns the date of the most recent session whose close
// is at or before anchor. Weekend anchors roll back to Friday; a weekday
// anchor before that day's open rolls back to the previous trading day.
func (c *Calendar) lastCompletedSession(anchor time.Time, exchange string, cfg Config) time.Time {
	day := c.dateOf(anchor, cfg)
	switch anchor.In(c.locationOf(cfg)).Weekday() {
	case time.Saturday:
		day = day.AddDate(0, 0, -1)
	case time.Sunday:
		day = day.AddDate(0, 0, -2)
	default:
		local := anchor.In(c.locationOf(cfg))
		minute := local.Hour()*60 + local.Minute()
		if minute < clockMinutes(cfg.Close) {
			// Before this day's close and outside the session, so before the
			// open: the newest complete session is the previous trading day.
			day = c.PrevTradingDay(day, exchange)
		}
	}
	// A source may know the landed day is a holiday.
	for i := 0; i < maxCalendarWalk && !c.IsTradingDay(day, exchange); i++ {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
