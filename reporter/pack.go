package main

import (
	"github.com/spf13/cobra"

	"znkr.io/conflicts/reporter/pack"
	"znkr.io/conflicts/reporter/report"
)

func (a *app) packCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "pack FILE [DIR]",
		Short: "Packs the conflict report for DIR into a .tar file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			r, err := a.build(cmd.Context(), a.dir(args[1:]))
			if err != nil {
				return err
			}
			s, err := report.NewSite(r, report.SiteOptions{BaseURL: a.cfg.Report.BaseURL})
			if err != nil {
				return err
			}
			if err := pack.PackFile(args[0], s, r.Updated()); err != nil {
				return err
			}
			a.logger.Info().Str("file", args[0]).Msg("Report packed")
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
