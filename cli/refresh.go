package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/andocmdo/eink-display-control-panel/models"
	"github.com/andocmdo/eink-display-control-panel/refresh"
)

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetches current stock prices and temperatures" }
func (*refreshCmd) Usage() string {
	return `dashctl refresh [stocks|weather|all]

Fetches current values for the tracked tickers and locations from the
configured providers and saves them. Without an argument both are refreshed.

Stock prices are fetched in one batch; a failed batch leaves all prices
unchanged. Each location is looked up on its own; a failed lookup keeps that
location's previous temperature.
`
}

func (*refreshCmd) SetFlags(f *flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	what := "all"
	switch f.NArg() {
	case 0:
	case 1:
		what = f.Arg(0)
	default:
		f.Usage()
		return subcommands.ExitUsageError
	}
	if what != "stocks" && what != "weather" && what != "all" {
		fmt.Fprintf(os.Stderr, "Error: unknown target %q\n", what)
		f.Usage()
		return subcommands.ExitUsageError
	}

	srv, err := openServer()
	if err != nil {
		return fail("%v", err)
	}
	defer srv.Close()
	r := srv.Refresher()

	status := subcommands.ExitSuccess
	if what == "stocks" || what == "all" {
		if err := refreshWith(ctx, r, r.RefreshStocks, printStocks); err != nil {
			status = fail("stock refresh failed: %v", err)
		}
	}
	if what == "weather" || what == "all" {
		if err := refreshWith(ctx, r, r.RefreshWeather, printWeather); err != nil {
			status = fail("weather refresh failed: %v", err)
		}
	}
	return status
}

// refreshWith runs one refresh on a freshly loaded snapshot
func refreshWith(ctx context.Context, r *refresh.Refresher,
	run func(context.Context, *models.Snapshot) (*refresh.Result, error),
	show func(*refresh.Result)) error {
	snap, err := r.Load(ctx)
	if err != nil {
		return err
	}
	res, err := run(ctx, snap)
	if err != nil {
		return err
	}
	show(res)
	return nil
}

func printStocks(res *refresh.Result) {
	fmt.Fprintf(stdout, "Updated %d stock prices\n", res.Updated)
	for _, e := range res.Stocks {
		fmt.Fprintf(stdout, "  %-8s %s\n", e.Ticker, models.Deref(e.Price, "--"))
	}
}

func printWeather(res *refresh.Result) {
	fmt.Fprintf(stdout, "Updated %d weather locations\n", res.Updated)
	for _, e := range res.Weather {
		fmt.Fprintf(stdout, "  %-20s %s\n", e.Location, models.Deref(e.Temperature, "--"))
	}
	for _, loc := range res.Failed {
		fmt.Fprintf(stdout, "  lookup failed: %s\n", loc)
	}
}
