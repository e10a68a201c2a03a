package fetch

// Request describes one historical-bars fetch against the provider session.
type Request struct {
	Symbol      string
	SecType     string
	Exchange    string
	Currency    string
	EndDateTime string
	Duration    string
	BarSize     string
	WhatToShow  string
	UseRTH      bool
}

// Row is one bar exactly as delivered by the transport callback. The date
// stays a string here; parsing into the market timezone happens one layer up.
type Row struct {
	Date     string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
	WAP      float64
	BarCount int64
}

// Transport is the provider-session capability the synchronizer depends on.
// IssueFetch is fire-and-forget: rows and the stream-end signal for the same
// request id arrive later on a StreamHandler, driven by the transport's own
// event goroutine.
type Transport interface {
	IssueFetch(reqID int64, req Request) error
	CancelFetch(reqID int64) error
	IsConnected() bool
}

// StreamHandler receives asynchronous stream events, correlated by request id.
// OnStreamEnd is terminal for its id; no OnRow follows it.
type StreamHandler interface {
	OnRow(reqID int64, row Row)
	OnStreamEnd(reqID int64, observedStart, observedEnd string)
}
