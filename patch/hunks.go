package patch

import (
	"strings"

	"znkr.io/conflicts/diff"
	"znkr.io/conflicts/textdiff"
)

const noNewlineMarker = `\ No newline at end of file`

// buildHunks groups the line components into hunks with up to context lines of unchanged text
// around every change. Changes separated by at most 2*context unchanged lines share a hunk.
func buildHunks(comps []textdiff.Component, context int) []Hunk {
	type run struct {
		kind  diff.Kind
		lines []string
	}
	runs := make([]run, 0, len(comps)+1)
	for _, c := range comps {
		runs = append(runs, run{c.Kind, splitLines(c.Value)})
	}
	// A trailing empty run closes the last hunk.
	runs = append(runs, run{kind: diff.Unchanged})

	var (
		hunks            []Hunk
		cur              Hunk
		open             bool
		oldLine, newLine = 1, 1
	)
	for i, r := range runs {
		if r.kind != diff.Unchanged {
			if !open {
				open = true
				cur = Hunk{OldStart: oldLine, NewStart: newLine}
				if i > 0 && context > 0 {
					prev := runs[i-1].lines
					for _, line := range prev[max(0, len(prev)-context):] {
						cur.Lines = append(cur.Lines, " "+line)
					}
					cur.OldStart -= len(cur.Lines)
					cur.NewStart -= len(cur.Lines)
				}
			}
			prefix := "-"
			if r.kind == diff.Added {
				prefix = "+"
			}
			for _, line := range r.lines {
				cur.Lines = append(cur.Lines, prefix+line)
			}
			if r.kind == diff.Added {
				newLine += len(r.lines)
			} else {
				oldLine += len(r.lines)
			}
			continue
		}

		if open {
			if len(r.lines) <= 2*context && i < len(runs)-2 {
				// More changes follow closely, keep the hunk open.
				for _, line := range r.lines {
					cur.Lines = append(cur.Lines, " "+line)
				}
			} else {
				n := min(len(r.lines), context)
				for _, line := range r.lines[:n] {
					cur.Lines = append(cur.Lines, " "+line)
				}
				cur.OldLines = oldLine - cur.OldStart + n
				cur.NewLines = newLine - cur.NewStart + n
				hunks = append(hunks, cur)
				open = false
			}
		}
		oldLine += len(r.lines)
		newLine += len(r.lines)
	}

	for i := range hunks {
		hunks[i].Lines = markMissingNewlines(hunks[i].Lines)
	}
	return hunks
}

// splitLines splits s after every newline. The last line has no newline if s doesn't end with one.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// markMissingNewlines strips the newline from every line and inserts a marker after lines that
// didn't have one.
func markMissingNewlines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed, ok := strings.CutSuffix(line, "\n"); ok {
			out = append(out, trimmed)
			continue
		}
		out = append(out, line, noNewlineMarker)
	}
	return out
}
