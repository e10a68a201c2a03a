//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"twscache/internal/app"
	"twscache/internal/market"
	"twscache/internal/store"
)

// App holds application dependencies built by Wire.
type App struct {
	Config   *app.Config
	Codec    store.Codec
	Store    *store.Store
	Calendar *market.Calendar
}

// InitializeApp builds App (Config + Codec + Store + Calendar) via Wire.
func InitializeApp() (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideCodec,
		app.ProvideStore,
		app.ProvideCalendarSource,
		app.ProvideCalendar,
		wire.Struct(new(App), "Config", "Codec", "Store", "Calendar"),
	)
	return nil, nil
}
