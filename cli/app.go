// Package cli implements dashctl, the command line companion of the dashboard
// server. Commands work on the same data file or database as the server and
// never start it.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/andocmdo/eink-display-control-panel/config"
	"github.com/andocmdo/eink-display-control-panel/log"
	"github.com/andocmdo/eink-display-control-panel/server"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&refreshCmd{}, "values")
	c.Register(&todosCmd{}, "dashboard")
	c.Register(&showCmd{}, "display")
	c.Register(&syncCmd{}, "display")
	c.Register(&pushCmd{}, "display")
}

// Completion describes the commands for shell completion
func Completion() *complete.Command {
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":  predict.Files("*.yaml"),
			"verbose": nil,
		},
		Sub: map[string]*complete.Command{
			"refresh": {Args: predict.Set{"stocks", "weather", "all"}},
			"todos":   {},
			"show":    {Flags: map[string]complete.Predictor{"markdown": nil, "width": predict.Set{"60", "80", "120"}}},
			"sync":    {},
			"push":    {Args: predict.Files("*.html")},
		},
	}
}

// as a short lived CLI, global flags are fine

var configFile = flag.String("config", "", "Path to a YAML config file (defaults to $CONFIG_FILE)")
var verbose = flag.Bool("verbose", false, "Log at info level instead of warnings only")

// stdout is where commands print their results
var stdout io.Writer = os.Stdout

// loadConfig reads the configuration the same way the server does
var loadConfig = func() (*config.Config, error) {
	if *configFile != "" {
		if err := os.Setenv("CONFIG_FILE", *configFile); err != nil {
			return nil, err
		}
	}
	return config.Load()
}

// openServer builds the server components without starting anything. The
// caller must Close it.
func openServer() (*server.Server, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	level := "warn"
	if *verbose {
		level = "info"
	}
	log.Setup(true, level)

	// the server owns watching, commands only write
	cfg.WatchDataFile = false
	cfg.RefreshInterval = 0
	cfg.SyncInterval = 0

	return server.New(server.NewConfig(cfg))
}

// fail prints an error message and returns the failure status
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
