package app

import (
	"fmt"
	"time"

	"twscache/internal/market"
	"twscache/internal/store"
)

// calendarSourceTimeout bounds calendar-service lookups. Failures fall back
// to the weekday heuristic, so a short bound is enough.
const calendarSourceTimeout = 5 * time.Second

// ProvideConfig loads config from environment (for Wire).
func ProvideConfig() (*Config, error) {
	return LoadConfig()
}

// ProvideCodec creates the store codec from config (for Wire).
// Returns an error if SaveFormat is not supported.
func ProvideCodec(cfg *Config) (store.Codec, error) {
	c := store.NewCodec(cfg.SaveFormat)
	if c == nil {
		return nil, fmt.Errorf("unsupported SAVE_FORMAT %q (use: csv, parquet, json)", cfg.SaveFormat)
	}
	return c, nil
}

// ProvideStore creates the on-disk store rooted at the cache dir (for Wire).
func ProvideStore(cfg *Config, codec store.Codec) *store.Store {
	return store.New(cfg.CacheDir, codec)
}

// ProvideCalendarSource creates the external calendar client when a URL is
// configured; without one the calendar runs on its weekday heuristic.
func ProvideCalendarSource(cfg *Config) market.Source {
	if cfg.CalendarURL == "" {
		return nil
	}
	return market.NewHTTPSource(cfg.CalendarURL, calendarSourceTimeout)
}

// ProvideCalendar creates the market calendar (for Wire).
func ProvideCalendar(src market.Source) *market.Calendar {
	return market.NewCalendar(src)
}
