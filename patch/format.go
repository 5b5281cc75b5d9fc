package patch

import (
	"fmt"
	"strings"
)

const separator = "==================================================================="

// Format renders p as a unified diff. The result always ends with a newline.
func (p *Patch) Format() string {
	var b strings.Builder
	p.format(&b)
	return b.String()
}

// FormatAll renders all patches and joins them with an empty line.
func FormatAll(patches []*Patch) string {
	var b strings.Builder
	for i, p := range patches {
		if i > 0 {
			b.WriteByte('\n')
		}
		p.format(&b)
	}
	return b.String()
}

func (p *Patch) format(b *strings.Builder) {
	if p.OldFileName == p.NewFileName {
		fmt.Fprintf(b, "Index: %s\n", p.OldFileName)
	}
	b.WriteString(separator)
	b.WriteByte('\n')
	fmt.Fprintf(b, "--- %s%s\n", p.OldFileName, header(p.OldHeader))
	fmt.Fprintf(b, "+++ %s%s\n", p.NewFileName, header(p.NewHeader))
	for _, h := range p.Hunks {
		// An empty range starts at the line before the change.
		oldStart, newStart := h.OldStart, h.NewStart
		if h.OldLines == 0 {
			oldStart--
		}
		if h.NewLines == 0 {
			newStart--
		}
		fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", oldStart, h.OldLines, newStart, h.NewLines)
		for _, line := range h.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
}

func header(h string) string {
	if h == "" {
		return ""
	}
	return "\t" + h
}
