// Command reporter finds the conflict copies Syncthing creates in a directory and reports them as
// unified diffs against their originals.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"znkr.io/conflicts/reporter/config"
	"znkr.io/conflicts/reporter/logging"
)

// errDiffer is returned by the diff command if the files are different. It's not an error, but
// it sets the exit code.
var errDiffer = errors.New("files differ")

// app holds the state shared by all commands, set up before any command runs.
type app struct {
	configPath string
	logLevel   string
	logFile    string

	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "reporter [command]",
		Short:             "Reports Syncthing conflict copies as unified diffs",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "configuration file (default "+config.DefaultFile+" if it exists)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, or disabled")
	pf.StringVar(&a.logFile, "log-file", "", "additionally log to this file")

	rootCmd.AddCommand(a.diffCmd())
	rootCmd.AddCommand(a.reportCmd())
	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(a.packCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	switch {
	case errors.Is(err, errDiffer):
		os.Exit(1)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if f.Changed("log-file") {
		cfg.Log.File = a.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("setting up logging: %v", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// dir returns the directory to search for conflicts, args override the configuration.
func (a *app) dir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Dir
}
