// Package report builds the sync conflict report: one unified patch per conflict copy, rendered
// as markdown, HTML, a plain patch, or an Atom feed.
package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"znkr.io/conflicts/diff"
	"znkr.io/conflicts/patch"
	"znkr.io/conflicts/reporter/conflicts"
)

// Options configure how a report is built.
type Options struct {
	Title           string
	IgnoreCollapsed bool
	Concurrency     int // Number of conflicts diffed at the same time, at least 1
	DiffOptions     []diff.Option
	Logger          zerolog.Logger
}

// Report is the result of comparing every conflict copy in a directory with its original.
type Report struct {
	Title   string
	Entries []Entry
	Built   time.Time

	diffOpts []diff.Option
}

// Entry is a single conflict of the report.
type Entry struct {
	Conflict conflicts.Conflict
	Patch    *patch.Patch // nil if Err is set
	Text     string       // Patch formatted as unified diff
	Err      error        // Reason the patch couldn't be computed

	original, conflicting string
}

// Lines returns the number of lines of the patch text as displayed in the report.
func (e *Entry) Lines() int {
	return strings.Count(e.Text, "\n") + 1
}

// Build finds all conflicts in fsys and diffs them with their originals. Conflicts for which the
// diff search is abandoned are kept in the report with Err set, any other error fails the build.
func Build(ctx context.Context, fsys fs.FS, opts Options) (*Report, error) {
	found, err := conflicts.Find(fsys)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Title:    opts.Title,
		Entries:  make([]Entry, len(found)),
		Built:    time.Now(),
		diffOpts: opts.DiffOptions,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))
	for i, c := range found {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := buildEntry(ctx, fsys, c, opts)
			if err != nil {
				return err
			}
			r.Entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}

	opts.Logger.Debug().Int("conflicts", len(r.Entries)).Dur("took", time.Since(r.Built)).Msg("Report built")
	return r, nil
}

func buildEntry(ctx context.Context, fsys fs.FS, c conflicts.Conflict, opts Options) (Entry, error) {
	original, conflicting, err := c.Read(fsys, conflicts.ReadOptions{IgnoreCollapsed: opts.IgnoreCollapsed})
	if err != nil {
		return Entry{}, fmt.Errorf("reading %s: %v", c.Copy, err)
	}

	e := Entry{
		Conflict:    c,
		original:    original,
		conflicting: conflicting,
	}
	p, err := patch.StructuredPatchContext(
		ctx,
		patch.File{Name: c.Original, Text: original},
		patch.File{Name: c.Copy, Text: conflicting},
		opts.DiffOptions...,
	)
	switch {
	case errors.Is(err, diff.ErrAbandoned):
		opts.Logger.Warn().Str("conflict", c.Copy).Err(err).Msg("Diff not computed")
		e.Err = err
	case err != nil:
		return Entry{}, fmt.Errorf("diffing %s: %w", c.Copy, err)
	default:
		e.Patch = p
		e.Text = p.Format()
	}
	return e, nil
}

// Patches returns all computed patches as a single unified diff.
func (r *Report) Patches() string {
	var ps []*patch.Patch
	for _, e := range r.Entries {
		if e.Patch != nil {
			ps = append(ps, e.Patch)
		}
	}
	return patch.FormatAll(ps)
}

// Updated returns the latest modification time of any conflict copy, or the build time if there
// are no conflicts.
func (r *Report) Updated() time.Time {
	var t time.Time
	for _, e := range r.Entries {
		if e.Conflict.Modified.After(t) {
			t = e.Conflict.Modified
		}
	}
	if t.IsZero() {
		return r.Built
	}
	return t
}
