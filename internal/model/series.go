package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SeriesKey identifies one cached dataset. Fields are normalized at construction
// and must not change afterwards; a different request shape needs a new key.
type SeriesKey struct {
	Symbol     string `validate:"required"`
	BarSize    string `validate:"required"`
	WhatToShow string `validate:"required,uppercase"`
	Exchange   string `validate:"required,uppercase"`
	Currency   string `validate:"required,uppercase"`
	DataType   string `validate:"required,uppercase"`
}

// NewSeriesKey builds a normalized key. Symbol, exchange, whatToShow, currency
// and dataType are upper-cased; barSize keeps its spelling (it is a provider
// setting string like "5 mins"). Empty optional fields get the usual defaults.
func NewSeriesKey(symbol, barSize, whatToShow, exchange, currency string) SeriesKey {
	if whatToShow == "" {
		whatToShow = "TRADES"
	}
	if exchange == "" {
		exchange = "SMART"
	}
	if currency == "" {
		currency = "USD"
	}
	return SeriesKey{
		Symbol:     strings.ToUpper(symbol),
		BarSize:    barSize,
		WhatToShow: strings.ToUpper(whatToShow),
		Exchange:   strings.ToUpper(exchange),
		Currency:   strings.ToUpper(currency),
		DataType:   "HISTORICAL",
	}
}

// Subdir returns the bar-size path segment: lower-cased, spaces and slashes
// replaced so "5 mins" and "1 day" land in distinct flat directories.
func (k SeriesKey) Subdir() string {
	s := strings.ToLower(k.BarSize)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// Filename returns the base file name for the series, without extension.
func (k SeriesKey) Filename() string {
	return fmt.Sprintf("%s_%s_%s_%s_%s", k.Symbol, k.Exchange, k.WhatToShow, k.Currency, k.DataType)
}

// Path resolves the one on-disk location for this key under baseDir. The same
// key always maps to the same path and distinct keys never collide.
func (k SeriesKey) Path(baseDir, ext string) string {
	return filepath.Join(baseDir, k.Subdir(), k.Filename()+"."+ext)
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("%s/%s %s %s %s", k.Symbol, k.Exchange, k.BarSize, k.WhatToShow, k.Currency)
}
