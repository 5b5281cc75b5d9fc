package highlight

import (
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// LineType classifies a line of a unified patch.
type LineType int

const (
	FileHeader LineType = iota // Index, separator, and file name lines
	HunkHeader
	Context
	Added
	Removed
	NoNewline // The "\ No newline at end of file" marker
)

// PatchLine is a highlighted line of a unified patch. Line numbers are 1-based, 0 if the line
// doesn't exist on that side.
type PatchLine struct {
	Type      LineType
	OldLineNo int
	NewLineNo int
	Prefix    string // The diff prefix of hunk lines, e.g. "+"
	Content   template.HTML
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// ParsePatch highlights a unified patch, or several patches separated by empty lines. Unless a
// language was selected, the content of every file is highlighted using the lexer that matches
// the new file name.
func ParsePatch(in string, opts ...Option) ([]PatchLine, error) {
	hl := newHighlighter(opts)

	var ret []PatchLine
	inHunk := false
	oldNo, newNo := 0, 0
	for l := range strings.Lines(in) {
		l = strings.TrimSuffix(l, "\n")

		if m := hunkHeader.FindStringSubmatch(l); m != nil {
			oldNo, _ = strconv.Atoi(m[1])
			newNo, _ = strconv.Atoi(m[2])
			ret = append(ret, PatchLine{Type: HunkHeader, Content: escaped(l)})
			inHunk = true
			continue
		}

		if !inHunk || l == "" {
			inHunk = false
			if name, ok := strings.CutPrefix(l, "+++ "); ok && !hl.explicit {
				name, _, _ = strings.Cut(name, "\t")
				hl.setLexer(lexers.Match(name))
			}
			ret = append(ret, PatchLine{Type: FileHeader, Content: escaped(l)})
			continue
		}

		if l[0] == '\\' {
			ret = append(ret, PatchLine{Type: NoNewline, Content: escaped(l)})
			continue
		}

		tokens, err := hl.tokenise(l[1:])
		if err != nil {
			return nil, err
		}
		pl := PatchLine{Prefix: l[:1], Content: hl.render(tokens)}
		switch l[0] {
		case '+':
			pl.Type = Added
			pl.NewLineNo = newNo
			newNo++
		case '-':
			pl.Type = Removed
			pl.OldLineNo = oldNo
			oldNo++
		default:
			pl.Type = Context
			pl.OldLineNo = oldNo
			pl.NewLineNo = newNo
			oldNo++
			newNo++
		}
		ret = append(ret, pl)
	}
	return ret, nil
}

func escaped(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}
