package model

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeriesKeyNormalizes(t *testing.T) {
	key := NewSeriesKey("aapl", "5 mins", "trades", "smart", "usd")
	assert.Equal(t, "AAPL", key.Symbol)
	assert.Equal(t, "5 mins", key.BarSize) // bar size keeps its spelling
	assert.Equal(t, "TRADES", key.WhatToShow)
	assert.Equal(t, "SMART", key.Exchange)
	assert.Equal(t, "USD", key.Currency)
	assert.Equal(t, "HISTORICAL", key.DataType)
}

func TestNewSeriesKeyDefaults(t *testing.T) {
	key := NewSeriesKey("MSFT", "1 day", "", "", "")
	assert.Equal(t, "TRADES", key.WhatToShow)
	assert.Equal(t, "SMART", key.Exchange)
	assert.Equal(t, "USD", key.Currency)
}

func TestSeriesKeyPath(t *testing.T) {
	key := NewSeriesKey("AAPL", "5 mins", "TRADES", "SMART", "USD")
	assert.Equal(t, "5_mins", key.Subdir())
	assert.Equal(t, "AAPL_SMART_TRADES_USD_HISTORICAL", key.Filename())
	assert.Equal(t,
		filepath.Join("base", "5_mins", "AAPL_SMART_TRADES_USD_HISTORICAL.parquet"),
		key.Path("base", "parquet"))
}

func TestSeriesKeySubdirSanitizesSlashes(t *testing.T) {
	key := NewSeriesKey("EURUSD", "1/2 min", "MIDPOINT", "IDEALPRO", "USD")
	assert.NotContains(t, key.Subdir(), "/")
}

func TestDistinctKeysGetDistinctPaths(t *testing.T) {
	a := NewSeriesKey("AAPL", "5 mins", "TRADES", "SMART", "USD")
	b := NewSeriesKey("AAPL", "5 mins", "MIDPOINT", "SMART", "USD")
	c := NewSeriesKey("AAPL", "1 day", "TRADES", "SMART", "USD")
	assert.NotEqual(t, a.Path("base", "parquet"), b.Path("base", "parquet"))
	assert.NotEqual(t, a.Path("base", "parquet"), c.Path("base", "parquet"))
}

func TestExtent(t *testing.T) {
	bars := []Bar{
		{Timestamp: 2000},
		{Timestamp: 500},
		{Timestamp: 1500},
	}
	start, end, ok := Extent(bars, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.UnixMilli(500).UTC(), start)
	assert.Equal(t, time.UnixMilli(2000).UTC(), end)

	_, _, ok = Extent(nil, time.UTC)
	assert.False(t, ok)
}

func TestBarTimeRendersInLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	b := Bar{Timestamp: time.Date(2024, 1, 16, 14, 30, 0, 0, time.UTC).UnixMilli()}
	got := b.Time(loc)
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 30, got.Minute())
}
