package main

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"znkr.io/conflicts/patch"
	"znkr.io/conflicts/reporter/config"
)

// diffFlags overlay the diff configuration. Only flags set on the command line override the
// configuration file.
type diffFlags struct {
	context            int
	ignoreCase         bool
	ignoreWhitespace   bool
	ignoreNewlineAtEOF bool
	stripTrailingCR    bool
	maxEditLength      int
	timeout            time.Duration
}

func (d *diffFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&d.context, "context", "U", 4, "number of context lines")
	f.BoolVar(&d.ignoreCase, "ignore-case", false, "ignore case differences")
	f.BoolVar(&d.ignoreWhitespace, "ignore-whitespace", false, "ignore leading and trailing whitespace")
	f.BoolVar(&d.ignoreNewlineAtEOF, "ignore-newline-at-eof", false, "ignore a missing newline at the end of file")
	f.BoolVar(&d.stripTrailingCR, "strip-trailing-cr", false, "treat CRLF line endings as LF")
	f.IntVar(&d.maxEditLength, "max-edit-length", 0, "give up if more lines than this differ (0: no limit)")
	f.DurationVar(&d.timeout, "timeout", 0, "give up if the comparison takes longer (0: no timeout)")
}

func (d *diffFlags) apply(cmd *cobra.Command, c *config.DiffConfig) {
	f := cmd.Flags()
	if f.Changed("context") {
		c.Context = d.context
	}
	if f.Changed("ignore-case") {
		c.IgnoreCase = d.ignoreCase
	}
	if f.Changed("ignore-whitespace") {
		c.IgnoreWhitespace = d.ignoreWhitespace
	}
	if f.Changed("ignore-newline-at-eof") {
		c.IgnoreNewlineAtEOF = d.ignoreNewlineAtEOF
	}
	if f.Changed("strip-trailing-cr") {
		c.StripTrailingCR = d.stripTrailingCR
	}
	if f.Changed("max-edit-length") {
		c.MaxEditLength = d.maxEditLength
	}
	if f.Changed("timeout") {
		c.Timeout = d.timeout
	}
}

func (a *app) diffCmd() *cobra.Command {
	var (
		flags              diffFlags
		labelOld, labelNew string
	)

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Prints the unified diff of two files, exits with 1 if they differ",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd, &a.cfg.Diff)
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			oldFile, err := readFile(args[0], labelOld)
			if err != nil {
				return err
			}
			newFile, err := readFile(args[1], labelNew)
			if err != nil {
				return err
			}

			p, err := patch.StructuredPatch(oldFile, newFile, a.cfg.Diff.DiffOptions()...)
			if err != nil {
				return fmt.Errorf("comparing %s and %s: %w", args[0], args[1], err)
			}
			if len(p.Hunks) == 0 {
				return nil
			}

			if _, err := fmt.Fprint(cmd.OutOrStdout(), p.Format()); err != nil {
				return fmt.Errorf("writing patch: %v", err)
			}
			st := p.Stat()
			a.logger.Debug().Int("added", st.Added).Int("removed", st.Removed).Int("hunks", st.Hunks).Msg("Files differ")
			return errDiffer
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&labelOld, "label-old", "", "name of the old file in the patch")
	cmd.Flags().StringVar(&labelNew, "label-new", "", "name of the new file in the patch")
	return cmd
}

// readFile reads one side of a two file patch, the header is the modification time like diff -u
// prints it.
func readFile(name, label string) (patch.File, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return patch.File{}, fmt.Errorf("reading file: %v", err)
	}
	info, err := os.Stat(name)
	if err != nil {
		return patch.File{}, fmt.Errorf("reading file: %v", err)
	}
	return patch.File{
		Name:   cmp.Or(label, name),
		Header: info.ModTime().Format("2006-01-02 15:04:05.000000000 -0700"),
		Text:   string(b),
	}, nil
}
