package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/andocmdo/eink-display-control-panel/display"
)

type syncCmd struct{}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "pushes the dashboard to the display" }
func (*syncCmd) Usage() string {
	return `dashctl sync

Logs in to the display backend, renders the current dashboard and updates the
configured screen. On failure the stage that failed is reported.
`
}

func (*syncCmd) SetFlags(f *flag.FlagSet) {}

func (*syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	srv, err := openServer()
	if err != nil {
		return fail("%v", err)
	}
	defer srv.Close()

	return report(srv.Display().Sync(ctx))
}

type pushCmd struct{}

func (*pushCmd) Name() string     { return "push" }
func (*pushCmd) Synopsis() string { return "pushes an HTML file to the display" }
func (*pushCmd) Usage() string {
	return `dashctl push <file.html>

Sends the content of an HTML file to the configured screen instead of the
rendered dashboard. Useful to test screen layouts.
`
}

func (*pushCmd) SetFlags(f *flag.FlagSet) {}

func (*pushCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	content, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return fail("%v", err)
	}

	srv, err := openServer()
	if err != nil {
		return fail("%v", err)
	}
	defer srv.Close()

	return report(srv.Display().PushContent(ctx, string(content)))
}

// report prints the outcome of a device update
func report(outcome *display.Outcome, err error) subcommands.ExitStatus {
	if err != nil {
		var syncErr *display.SyncError
		if errors.As(err, &syncErr) {
			return fail("display update failed while %s: %v", syncErr.Stage, syncErr.Err)
		}
		return fail("display update failed: %v", err)
	}

	fmt.Fprintf(stdout, "Screen %s updated\n", outcome.ScreenID)
	if outcome.ServerResponse != nil {
		data, err := json.MarshalIndent(outcome.ServerResponse, "", "  ")
		if err == nil {
			fmt.Fprintf(stdout, "%s\n", data)
		}
	}
	return subcommands.ExitSuccess
}
