package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"twscache/internal/slogx"
)

func main() {
	// .env is optional; env vars win.
	_ = godotenv.Load()
	slog.SetDefault(slogx.NewDefault(os.Getenv("LOG_LEVEL")))

	a, err := InitializeApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slogx.NewDefault(a.Config.LogLevel))

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&checkCmd{app: a}, "cache")
	subcommands.Register(&infoCmd{app: a}, "cache")
	subcommands.Register(&convertCmd{app: a}, "cache")
	subcommands.Register(&compactCmd{app: a}, "cache")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
