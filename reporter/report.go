package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"znkr.io/conflicts/reporter/config"
	"znkr.io/conflicts/reporter/logging"
	"znkr.io/conflicts/reporter/report"
)

// reportFlags overlay the report configuration.
type reportFlags struct {
	diff            diffFlags
	title           string
	ignoreCollapsed bool
	concurrency     int
}

func (r *reportFlags) register(cmd *cobra.Command) {
	r.diff.register(cmd)
	f := cmd.Flags()
	f.StringVar(&r.title, "title", "Sync Conflicts", "report title")
	f.BoolVar(&r.ignoreCollapsed, "ignore-collapsed", true, `ignore "collapsed:: true" block properties`)
	f.IntVar(&r.concurrency, "concurrency", 4, "number of conflicts compared at the same time")
}

func (r *reportFlags) apply(cmd *cobra.Command, c *config.Config) {
	r.diff.apply(cmd, &c.Diff)
	f := cmd.Flags()
	if f.Changed("title") {
		c.Report.Title = r.title
	}
	if f.Changed("ignore-collapsed") {
		c.Report.IgnoreCollapsed = r.ignoreCollapsed
	}
	if f.Changed("concurrency") {
		c.Report.Concurrency = r.concurrency
	}
}

func (a *app) build(ctx context.Context, dir string) (*report.Report, error) {
	start := time.Now()
	r, err := report.Build(ctx, os.DirFS(dir), report.Options{
		Title:           a.cfg.Report.Title,
		IgnoreCollapsed: a.cfg.Report.IgnoreCollapsed,
		Concurrency:     a.cfg.Report.Concurrency,
		DiffOptions:     a.cfg.Diff.DiffOptions(),
		Logger:          logging.Component(a.logger, "report"),
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info().Int("conflicts", len(r.Entries)).Dur("took", time.Since(start)).Str("dir", dir).Msg("Report built")
	return r, nil
}

func (a *app) reportCmd() *cobra.Command {
	var (
		flags  reportFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "report [DIR]",
		Short: "Compares all conflict copies in DIR with their originals and prints a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd, a.cfg)
			if cmd.Flags().Changed("format") {
				a.cfg.Report.Format = format
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			r, err := a.build(cmd.Context(), a.dir(args))
			if err != nil {
				return err
			}

			var b []byte
			switch a.cfg.Report.Format {
			case "patch":
				b = []byte(r.Patches())
			case "markdown":
				b = []byte(r.Markdown())
			case "html":
				b, err = r.HTML()
			case "atom":
				b, err = r.Feed(a.cfg.Report.BaseURL)
			}
			if err != nil {
				return fmt.Errorf("rendering report: %v", err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(b)
			} else {
				err = os.WriteFile(output, b, 0644)
			}
			if err != nil {
				return fmt.Errorf("writing report: %v", err)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: patch, markdown, html, or atom")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to this file instead of stdout")
	return cmd
}
