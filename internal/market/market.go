package market

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Config describes one exchange: its timezone, nominal session hours and the
// calendar code used when an external calendar source is configured.
type Config struct {
	Timezone     string
	Open         string // "09:30"
	Close        string // "16:00"
	CalendarCode string
}

// configs maps provider exchange names to market configuration.
var configs = map[string]Config{
	"SMART":  {Timezone: "America/New_York", Open: "09:30", Close: "16:00", CalendarCode: "XNYS"},
	"NYSE":   {Timezone: "America/New_York", Open: "09:30", Close: "16:00", CalendarCode: "XNYS"},
	"NASDAQ": {Timezone: "America/New_York", Open: "09:30", Close: "16:00", CalendarCode: "XNAS"},
	"HKEX":   {Timezone: "Asia/Hong_Kong", Open: "09:30", Close: "16:00", CalendarCode: "XHKG"},
	"LSE":    {Timezone: "Europe/London", Open: "08:00", Close: "16:30", CalendarCode: "XLON"},
	"TSE":    {Timezone: "Asia/Tokyo", Open: "09:00", Close: "15:00", CalendarCode: "XTKS"},
	"SSE":    {Timezone: "Asia/Shanghai", Open: "09:30", Close: "15:00", CalendarCode: "XSHG"},
	"SGX":    {Timezone: "Asia/Singapore", Open: "09:00", Close: "17:00", CalendarCode: "XSES"},
}

// configFor returns the config for exchange, defaulting to SMART for unknown names.
func configFor(exchange string) Config {
	if c, ok := configs[strings.ToUpper(exchange)]; ok {
		return c
	}
	return configs["SMART"]
}

// SupportedExchanges lists the exchange names with a market configuration.
func SupportedExchanges() []string {
	out := make([]string, 0, len(configs))
	for name := range configs {
		out = append(out, name)
	}
	return out
}

// SessionWindow is one trading day's open and close instants for an exchange.
type SessionWindow struct {
	Date  time.Time
	Open  time.Time
	Close time.Time
}

// Source answers calendar questions for a named exchange calendar. It is
// typically backed by an external calendar service and may fail; the Calendar
// recovers from every Source error with its weekday heuristic.
type Source interface {
	SessionOpenAt(calendar string, t time.Time) (bool, error)
	IsSession(calendar string, date time.Time) (bool, error)
	SessionOpen(calendar string, date time.Time) (time.Time, error)
	SessionClose(calendar string, date time.Time) (time.Time, error)
}

// Calendar answers session questions per exchange. With a Source it is
// holiday-aware; without one (or when the source fails) it applies the
// deterministic weekday open–close rule, weekends closed, no holidays.
type Calendar struct {
	source Source
}

// NewCalendar creates a Calendar. source may be nil (heuristic only).
func NewCalendar(source Source) *Calendar {
	return &Calendar{source: source}
}

// Timezone returns the exchange's location, UTC if the zone cannot be loaded.
func (c *Calendar) Timezone(exchange string) *time.Location {
	loc, err := time.LoadLocation(configFor(exchange).Timezone)
	if err != nil {
		slog.Warn("unknown market timezone, using UTC", "exchange", exchange, "error", err)
		return time.UTC
	}
	return loc
}

// IsSessionOpen reports whether t falls inside a trading session of exchange.
func (c *Calendar) IsSessionOpen(t time.Time, exchange string) bool {
	cfg := configFor(exchange)
	if c.source != nil {
		open, err := c.source.SessionOpenAt(cfg.CalendarCode, t)
		if err == nil {
			return open
		}
		slog.Debug("calendar source failed, using weekday rule", "exchange", exchange, "error", err)
	}
	return c.isOpenBasic(t, cfg)
}

func (c *Calendar) isOpenBasic(t time.Time, cfg Config) bool {
	loc := c.locationOf(cfg)
	local := t.In(loc)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	minute := local.Hour()*60 + local.Minute()
	return minute >= clockMinutes(cfg.Open) && minute <= clockMinutes(cfg.Close)
}

// IsTradingDay reports whether the calendar date of `date` (taken in the
// exchange timezone) is a trading session.
func (c *Calendar) IsTradingDay(date time.Time, exchange string) bool {
	cfg := configFor(exchange)
	day := c.dateOf(date, cfg)
	if c.source != nil {
		ok, err := c.source.IsSession(cfg.CalendarCode, day)
		if err == nil {
			return ok
		}
		slog.Debug("calendar source failed, using weekday rule", "exchange", exchange, "error", err)
	}
	return day.Weekday() != time.Saturday && day.Weekday() != time.Sunday
}

// NextTradingDay returns the first trading day strictly after date.
func (c *Calendar) NextTradingDay(date time.Time, exchange string) time.Time {
	cfg := configFor(exchange)
	day := c.dateOf(date, cfg)
	for i := 0; i < maxCalendarWalk; i++ {
		day = day.AddDate(0, 0, 1)
		if c.IsTradingDay(day, exchange) {
			return day
		}
	}
	return day
}

// PrevTradingDay returns the last trading day strictly before date.
func (c *Calendar) PrevTradingDay(date time.Time, exchange string) time.Time {
	cfg := configFor(exchange)
	day := c.dateOf(date, cfg)
	for i := 0; i < maxCalendarWalk; i++ {
		day = day.AddDate(0, 0, -1)
		if c.IsTradingDay(day, exchange) {
			return day
		}
	}
	return day
}

// SessionWindow returns the expected trading window for the session on the
// calendar date of `date`. ok is false when that date is not a trading day.
func (c *Calendar) SessionWindow(date time.Time, exchange string) (SessionWindow, bool) {
	if !c.IsTradingDay(date, exchange) {
		return SessionWindow{}, false
	}
	cfg := configFor(exchange)
	day := c.dateOf(date, cfg)
	w := SessionWindow{
		Date:  day,
		Open:  c.clockOn(day, cfg.Open),
		Close: c.clockOn(day, cfg.Close),
	}
	if c.source != nil {
		open, errO := c.source.SessionOpen(cfg.CalendarCode, day)
		closeAt, errC := c.source.SessionClose(cfg.CalendarCode, day)
		if errO == nil && errC == nil {
			w.Open = open
			w.Close = closeAt
		} else {
			slog.Debug("calendar source failed, using nominal hours",
				"exchange", exchange, "open_err", errO, "close_err", errC)
		}
	}
	return w, true
}

// maxCalendarWalk bounds trading-day walks against a source that keeps
// answering "not a session".
const maxCalendarWalk = 366

func (c *Calendar) locationOf(cfg Config) *time.Location {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// dateOf truncates t to midnight of its calendar date in the exchange timezone.
func (c *Calendar) dateOf(t time.Time, cfg Config) time.Time {
	loc := c.locationOf(cfg)
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// clockOn places an "HH:MM" clock string on the given day (day must be a
// midnight instant in the exchange timezone).
func (c *Calendar) clockOn(day time.Time, clock string) time.Time {
	m := clockMinutes(clock)
	return day.Add(time.Duration(m) * time.Minute)
}

func clockMinutes(clock string) int {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 0
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return h*60 + m
}
