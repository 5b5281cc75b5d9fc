// Package patch creates unified diffs between two texts.
//
// The output follows the format of the jsdiff library: an Index line if both file names are the
// same, a separator line, file names with optional headers, and hunks with 4 lines of context by
// default. Lines without a trailing newline are marked with "\ No newline at end of file".
package patch

import (
	"context"
	"errors"

	"znkr.io/conflicts/diff"
	"znkr.io/conflicts/internal/config"
	"znkr.io/conflicts/textdiff"
)

// ErrNewlineIsToken is returned if [diff.NewlineIsToken] is used to create a patch. Patches are
// always line based.
var ErrNewlineIsToken = errors.New("patch: NewlineIsToken can't be used to create patches")

// File is one side of a patch.
type File struct {
	Name   string
	Header string // Optional, printed after the name separated by a tab
	Text   string
}

// Patch is a structured unified diff between two files.
type Patch struct {
	OldFileName, NewFileName string
	OldHeader, NewHeader     string // Empty if absent
	Hunks                    []Hunk
}

// Hunk is a region of changes with surrounding context.
//
// Lines holds the hunk body: every line starts with ' ', '+', or '-', without the trailing
// newline, and a line that has no trailing newline in its file is followed by
// "\ No newline at end of file". OldStart and NewStart are 1-based, even if the hunk covers no
// lines on that side.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []string
}

// Stat summarizes a patch.
type Stat struct {
	Added   int // Number of added lines
	Removed int // Number of removed lines
	Hunks   int
}

// Stat counts the added and removed lines in p.
func (p *Patch) Stat() Stat {
	s := Stat{Hunks: len(p.Hunks)}
	for _, h := range p.Hunks {
		for _, line := range h.Lines {
			switch {
			case line == noNewlineMarker:
			case line[0] == '+':
				s.Added++
			case line[0] == '-':
				s.Removed++
			}
		}
	}
	return s
}

// StructuredPatch compares the texts of oldFile and newFile line by line and returns the hunks that
// transform the old text into the new one.
//
// It returns [diff.ErrAbandoned] if the search exceeded the [diff.MaxEditLength] or
// [diff.Timeout] options and [ErrNewlineIsToken] if [diff.NewlineIsToken] is set.
func StructuredPatch(oldFile, newFile File, opts ...diff.Option) (*Patch, error) {
	return StructuredPatchContext(context.Background(), oldFile, newFile, opts...)
}

// StructuredPatchContext is like [StructuredPatch], but gives up when ctx is done and returns
// ctx.Err() in that case.
func StructuredPatchContext(ctx context.Context, oldFile, newFile File, opts ...diff.Option) (*Patch, error) {
	cfg, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	comps, err := textdiff.LinesContext(ctx, oldFile.Text, newFile.Text, opts...)
	if err != nil {
		return nil, err
	}
	return newPatch(oldFile, newFile, comps, cfg.Context), nil
}

// StructuredPatchAsync is like [StructuredPatch], but runs the search one step at a time on the
// scheduler configured with [diff.WithScheduler]. done is called exactly once. Errors in the
// options are returned immediately and done isn't called.
func StructuredPatchAsync(oldFile, newFile File, done func(*Patch, error), opts ...diff.Option) error {
	cfg, err := resolve(opts)
	if err != nil {
		return err
	}
	return textdiff.LinesAsync(oldFile.Text, newFile.Text, func(comps []textdiff.Component, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		done(newPatch(oldFile, newFile, comps, cfg.Context), nil)
	}, opts...)
}

// CreateTwoFilesPatch returns the formatted unified diff between oldFile and newFile, see
// [StructuredPatch] and [Patch.Format].
func CreateTwoFilesPatch(oldFile, newFile File, opts ...diff.Option) (string, error) {
	p, err := StructuredPatch(oldFile, newFile, opts...)
	if err != nil {
		return "", err
	}
	return p.Format(), nil
}

// CreateTwoFilesPatchAsync is the asynchronous version of [CreateTwoFilesPatch], see
// [StructuredPatchAsync].
func CreateTwoFilesPatchAsync(oldFile, newFile File, done func(string, error), opts ...diff.Option) error {
	return StructuredPatchAsync(oldFile, newFile, func(p *Patch, err error) {
		if err != nil {
			done("", err)
			return
		}
		done(p.Format(), nil)
	}, opts...)
}

func resolve(opts []diff.Option) (config.Config, error) {
	cfg := config.FromOptions(opts)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.NewlineIsToken {
		return cfg, ErrNewlineIsToken
	}
	return cfg, nil
}

func newPatch(oldFile, newFile File, comps []textdiff.Component, context int) *Patch {
	return &Patch{
		OldFileName: oldFile.Name,
		NewFileName: newFile.Name,
		OldHeader:   oldFile.Header,
		NewHeader:   newFile.Header,
		Hunks:       buildHunks(comps, context),
	}
}
