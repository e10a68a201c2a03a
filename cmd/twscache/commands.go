package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"twscache/internal/cache"
	"twscache/internal/maint"
	"twscache/internal/model"
	"twscache/internal/store"
)

// checkCmd prints the cached extent, the expected range and the coverage
// verdict for one series request, without touching the network.
type checkCmd struct {
	app      *App
	symbol   string
	barSize  string
	exchange string
	currency string
	what     string
	end      string
	duration string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "print the coverage verdict for a series request" }
func (*checkCmd) Usage() string {
	return `check -symbol AAPL [-bar-size "5 mins"] [-exchange SMART] [-end "20250110 16:00:00"] [-duration "1 D"]:
  Show the cached extent, the expected range and whether the cache would answer.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "symbol (required)")
	f.StringVar(&c.barSize, "bar-size", "5 mins", "bar size setting")
	f.StringVar(&c.exchange, "exchange", "SMART", "exchange")
	f.StringVar(&c.currency, "currency", "USD", "currency")
	f.StringVar(&c.what, "what", "TRADES", "data kind (TRADES, MIDPOINT, ...)")
	f.StringVar(&c.end, "end", "", "end date time (empty = now)")
	f.StringVar(&c.duration, "duration", "1 D", `duration, e.g. "1 D", "2 W"`)
}

func (c *checkCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "check: -symbol is required")
		return subcommands.ExitUsageError
	}
	key := model.NewSeriesKey(c.symbol, c.barSize, c.what, c.exchange, c.currency)
	bars, err := c.app.Store.Load(key)
	if err != nil {
		slog.Error("load failed", "series", key.String(), "error", err)
		return subcommands.ExitFailure
	}
	loc := c.app.Calendar.Timezone(key.Exchange)
	expStart, expEnd := c.app.Calendar.ExpectedRange(key.BarSize, c.end, c.duration, key.Exchange, time.Now())

	fmt.Printf("series:   %s\n", key.String())
	fmt.Printf("path:     %s\n", c.app.Store.Path(key))
	fmt.Printf("expected: %s .. %s\n", expStart.Format(time.RFC3339), expEnd.Format(time.RFC3339))

	start, end, ok := model.Extent(bars, loc)
	if !ok {
		fmt.Println("cached:   (empty)")
		fmt.Println("verdict:  MISS")
		return subcommands.ExitSuccess
	}
	fmt.Printf("cached:   %s .. %s (%d rows)\n", start.Format(time.RFC3339), end.Format(time.RFC3339), len(bars))
	if cache.IsSufficient(start, end, expStart, expEnd) {
		fmt.Println("verdict:  HIT")
	} else {
		fmt.Println("verdict:  MISS")
	}
	return subcommands.ExitSuccess
}

// infoCmd lists every cached series file with its row count and extent.
type infoCmd struct {
	app *App
}

func (*infoCmd) Name() string     { return "info" }
func (*infoCmd) Synopsis() string { return "list cached series files with row counts and extents" }
func (*infoCmd) Usage() string {
	return `info:
  List every cached series file under the cache dir.
`
}
func (*infoCmd) SetFlags(*flag.FlagSet) {}

func (c *infoCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	jobs, err := maint.ScanSeriesFiles(c.app.Store.Dir(), c.app.Store.Extension())
	if err != nil {
		slog.Error("scan failed", "dir", c.app.Store.Dir(), "error", err)
		return subcommands.ExitFailure
	}
	if len(jobs) == 0 {
		fmt.Printf("no cached series under %s\n", c.app.Store.Dir())
		return subcommands.ExitSuccess
	}
	for _, j := range jobs {
		bars, err := c.app.Codec.Read(j.Path)
		if err != nil {
			fmt.Printf("%s\t(unreadable: %v)\n", j.Path, err)
			continue
		}
		start, end, ok := model.Extent(bars, time.UTC)
		if !ok {
			fmt.Printf("%s\t0 rows\n", j.Path)
			continue
		}
		fmt.Printf("%s\t%d rows\t%s .. %s\n",
			j.Path, len(bars), start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return subcommands.ExitSuccess
}

// convertCmd re-encodes every series file into another codec format.
type convertCmd struct {
	app *App
	to  string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "re-encode cached series files into another format" }
func (*convertCmd) Usage() string {
	return `convert -to csv|json|parquet:
  Rewrite every cached series file with the target codec and drop the original.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "to", "", "target format: csv, json or parquet (required)")
}

func (c *convertCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	target := store.NewCodec(c.to)
	if target == nil {
		fmt.Fprintf(os.Stderr, "convert: unsupported format %q (use: csv, parquet, json)\n", c.to)
		return subcommands.ExitUsageError
	}
	if target.Extension() == c.app.Store.Extension() {
		fmt.Fprintln(os.Stderr, "convert: cache already uses that format")
		return subcommands.ExitUsageError
	}
	jobs, err := maint.ScanSeriesFiles(c.app.Store.Dir(), c.app.Store.Extension())
	if err != nil {
		slog.Error("scan failed", "dir", c.app.Store.Dir(), "error", err)
		return subcommands.ExitFailure
	}
	converted := 0
	for _, j := range jobs {
		bars, err := c.app.Codec.Read(j.Path)
		if err != nil {
			slog.Error("convert read failed", "path", j.Path, "error", err)
			return subcommands.ExitFailure
		}
		out := strings.TrimSuffix(j.Path, "."+c.app.Store.Extension()) + "." + target.Extension()
		if err := target.Write(out, bars); err != nil {
			slog.Error("convert write failed", "path", out, "error", err)
			return subcommands.ExitFailure
		}
		if err := os.Remove(j.Path); err != nil {
			slog.Warn("could not remove original", "path", j.Path, "error", err)
		}
		converted++
	}
	fmt.Printf("converted %d series files to %s\n", converted, target.Extension())
	fmt.Println("set SAVE_FORMAT accordingly for future runs")
	return subcommands.ExitSuccess
}

// compactCmd rewrites every cached series file to re-establish the store
// invariants and reclaim space from incremental saves.
type compactCmd struct {
	app     *App
	workers int
}

func (*compactCmd) Name() string     { return "compact" }
func (*compactCmd) Synopsis() string { return "rewrite cached series files in parallel" }
func (*compactCmd) Usage() string {
	return `compact [-workers N]:
  Re-read and re-write every cached series file (dedupe, sort, compact).
`
}

func (c *compactCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.workers, "workers", 0, "worker count (default from COMPACT_WORKERS)")
}

func (c *compactCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	workers := c.workers
	if workers <= 0 {
		workers = c.app.Config.CompactWorkers
	}
	success, failed, err := maint.CompactAll(c.app.Store.Dir(), c.app.Codec, workers)
	if err != nil {
		slog.Error("compact failed", "error", err)
		return subcommands.ExitFailure
	}
	if failed > 0 {
		slog.Warn("compact finished with failures", "success", success, "failed", failed)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
