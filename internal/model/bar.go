package model

import "time"

// Bar represents one aggregated sample of market activity (OHLCV + WAP).
// Shared by the store codecs, the fetch layer and the cache (json, parquet).
type Bar struct {
	Timestamp int64   `json:"t" parquet:"t"` // Unix timestamp in milliseconds, interval start
	Open      float64 `json:"o" parquet:"o"`
	High      float64 `json:"h" parquet:"h"`
	Low       float64 `json:"l" parquet:"l"`
	Close     float64 `json:"c" parquet:"c"`
	Volume    int64   `json:"v" parquet:"v"`
	WAP       float64 `json:"vw,omitempty" parquet:"vw,optional"` // Weighted average price
	BarCount  int64   `json:"n,omitempty" parquet:"n,optional"`   // Number of trades aggregated
}

// Time returns the bar timestamp rendered in loc. Timestamps are stored as UTC
// instants; the location only affects presentation.
func (b Bar) Time(loc *time.Location) time.Time {
	return time.UnixMilli(b.Timestamp).In(loc)
}

// Extent returns the min and max timestamps of bars as instants in loc.
// ok is false when bars is empty. Bars are not assumed sorted.
func Extent(bars []Bar, loc *time.Location) (start, end time.Time, ok bool) {
	if len(bars) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max := bars[0].Timestamp, bars[0].Timestamp
	for _, b := range bars[1:] {
		if b.Timestamp < min {
			min = b.Timestamp
		}
		if b.Timestamp > max {
			max = b.Timestamp
		}
	}
	return time.UnixMilli(min).In(loc), time.UnixMilli(max).In(loc), true
}
