package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"twscache/internal/fetch"
	"twscache/internal/market"
	"twscache/internal/model"
	"twscache/internal/store"
)

// DefaultTimeout bounds a fetch when the caller does not set one.
const DefaultTimeout = 60 * time.Second

var validate = validator.New(validator.WithRequiredStructEnabled())

// Options control one GetData call.
type Options struct {
	EndDateTime string // empty means now
	Duration    string // provider duration string, e.g. "1 D"; empty means "1 D"
	SecType     string // provider security type, e.g. "STK", "FUT"; empty means "STK"
	UseCache    bool
	Timeout     time.Duration
}

// Handle serves repeated bar requests for one series, answering from the
// on-disk store whenever its coverage is known to satisfy the request and
// fetching through the synchronizer otherwise. A Handle is bound to its
// SeriesKey for life; a different series needs a new Handle.
type Handle struct {
	key    model.SeriesKey
	store  *store.Store
	cal    *market.Calendar
	sync   *fetch.Synchronizer
	useRTH bool
	now    func() time.Time
}

// NewHandle creates a Handle for key. The key is validated once here; it is
// immutable afterwards.
func NewHandle(key model.SeriesKey, st *store.Store, cal *market.Calendar, sync *fetch.Synchronizer) (*Handle, error) {
	if err := validate.Struct(key); err != nil {
		return nil, fmt.Errorf("cache: invalid series key %s: %w", key.String(), err)
	}
	return &Handle{
		key:    key,
		store:  st,
		cal:    cal,
		sync:   sync,
		useRTH: true,
		now:    time.Now,
	}, nil
}

// Key returns the series key the handle is bound to.
func (h *Handle) Key() model.SeriesKey { return h.key }

// SetNow overrides the clock used to anchor empty end times. For tests.
func (h *Handle) SetNow(now func() time.Time) { h.now = now }

// GetData returns bars for the request. With UseCache, the stored series is
// returned as-is when the coverage judge accepts its extent for the expected
// range; otherwise a fetch runs and the normalized result is merged into the
// store. Transport and store errors surface; a failed save still returns the
// fetched bars alongside the error so the data is not lost.
func (h *Handle) GetData(ctx context.Context, opts Options) ([]model.Bar, error) {
	if opts.Duration == "" {
		opts.Duration = "1 D"
	}
	if opts.SecType == "" {
		opts.SecType = "STK"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	loc := h.cal.Timezone(h.key.Exchange)

	if opts.UseCache {
		cached, err := h.store.Load(h.key)
		if err != nil {
			return nil, err
		}
		if cachedStart, cachedEnd, ok := model.Extent(cached, loc); ok {
			expStart, expEnd := h.cal.ExpectedRange(
				h.key.BarSize, opts.EndDateTime, opts.Duration, h.key.Exchange, h.now())
			if IsSufficient(cachedStart, cachedEnd, expStart, expEnd) {
				slog.Info("cache hit", "series", h.key.String(), "rows", len(cached),
					"cached_start", cachedStart, "cached_end", cachedEnd)
				return cached, nil
			}
			slog.Info("cache insufficient, fetching", "series", h.key.String(),
				"cached_start", cachedStart, "cached_end", cachedEnd,
				"expected_start", expStart, "expected_end", expEnd)
		}
	}

	rows, err := h.sync.Fetch(ctx, fetch.Request{
		Symbol:      h.key.Symbol,
		SecType:     opts.SecType,
		Exchange:    h.key.Exchange,
		Currency:    h.key.Currency,
		EndDateTime: opts.EndDateTime,
		Duration:    opts.Duration,
		BarSize:     h.key.BarSize,
		WhatToShow:  h.key.WhatToShow,
		UseRTH:      h.useRTH,
	}, opts.Timeout)
	if err != nil {
		return nil, err
	}

	bars := Normalize(rows, loc)
	if opts.UseCache && len(bars) > 0 {
		merged, err := h.store.Save(h.key, bars)
		if err != nil {
			// Persisting failed but the fetched data is still valid; hand it
			// back together with the error.
			return bars, err
		}
		return merged, nil
	}
	return bars, nil
}
