// Package highlight renders source text and unified patches as syntax highlighted HTML.
package highlight

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"znkr.io/conflicts/diff"
	"znkr.io/conflicts/textdiff"
)

// CSS classes by token type. Types that aren't listed inherit the class of their sub category or
// category, an empty class disables highlighting.
var style = map[chroma.TokenType]string{
	chroma.Keyword:           "hl-b",
	chroma.KeywordPseudo:     "",
	chroma.KeywordType:       "",
	chroma.NameClass:         "hl-b",
	chroma.NameEntity:        "hl-b",
	chroma.NameException:     "hl-b",
	chroma.NameNamespace:     "hl-b",
	chroma.NameTag:           "hl-b",
	chroma.NameBuiltin:       "hl-bl",
	chroma.LiteralString:     "hl-i",
	chroma.OperatorWord:      "hl-b",
	chroma.Comment:           "hl-ii",
	chroma.CommentPreproc:    "",
	chroma.GenericEmph:       "hl-i",
	chroma.GenericHeading:    "hl-b",
	chroma.GenericPrompt:     "hl-b",
	chroma.GenericStrong:     "hl-b",
	chroma.GenericSubheading: "hl-b",
}

type Option func(*highlighter)

// Lang selects the lexer by language name.
func Lang(lang string) Option {
	return func(hl *highlighter) {
		hl.lexer = lexers.Get(lang)
	}
}

// LangFromFilename selects the lexer by file name.
func LangFromFilename(filename string) Option {
	return func(hl *highlighter) {
		hl.lexer = lexers.Match(filename)
	}
}

// DiffOptions sets the options used to compare texts in [Diff].
func DiffOptions(opts ...diff.Option) Option {
	return func(hl *highlighter) {
		hl.diffOpts = opts
	}
}

// Line is a highlighted line of source text.
type Line struct {
	LineNo  int
	Content template.HTML
}

// Highlight splits in into lines and highlights them. Every line keeps its newline.
func Highlight(in string, opts ...Option) ([]Line, error) {
	hl := newHighlighter(opts)
	tokens, err := hl.tokenise(in)
	if err != nil {
		return nil, err
	}

	lines := chroma.SplitTokensIntoLines(tokens)
	ret := make([]Line, len(lines))
	for i, line := range lines {
		ret[i] = Line{LineNo: i + 1, Content: hl.render(line)}
	}
	return ret, nil
}

// Edit is a single line of a highlighted diff. Line numbers are 1-based, -1 if the line doesn't
// exist on that side.
type Edit struct {
	Kind    diff.Kind
	XLineNo int
	YLineNo int
	Content template.HTML
}

func (ed *Edit) IsMatch() bool  { return ed.Kind == diff.Unchanged }
func (ed *Edit) IsDelete() bool { return ed.Kind == diff.Removed }
func (ed *Edit) IsInsert() bool { return ed.Kind == diff.Added }

// Diff compares a and b line by line and returns every line of both texts, highlighted.
func Diff(a, b string, opts ...Option) ([]Edit, error) {
	hl := newHighlighter(opts)

	comps, err := textdiff.Lines(a, b, hl.diffOpts...)
	if err != nil {
		return nil, fmt.Errorf("comparing texts: %w", err)
	}

	var ret []Edit
	x, y := 1, 1
	for _, c := range comps {
		for line := range strings.Lines(c.Value) {
			tokens, err := hl.tokenise(strings.TrimSuffix(line, "\n"))
			if err != nil {
				return nil, err
			}
			ed := Edit{Kind: c.Kind, XLineNo: -1, YLineNo: -1, Content: hl.render(tokens)}
			if c.Kind != diff.Added {
				ed.XLineNo = x
				x++
			}
			if c.Kind != diff.Removed {
				ed.YLineNo = y
				y++
			}
			ret = append(ret, ed)
		}
	}
	return ret, nil
}

type highlighter struct {
	lexer    chroma.Lexer
	explicit bool // The lexer was selected by an option
	diffOpts []diff.Option
}

func newHighlighter(opts []Option) *highlighter {
	hl := &highlighter{}
	for _, opt := range opts {
		if opt != nil {
			opt(hl)
		}
	}
	hl.explicit = hl.lexer != nil
	hl.setLexer(hl.lexer)
	return hl
}

// setLexer switches to l, or to the plain text lexer if l is nil.
func (hl *highlighter) setLexer(l chroma.Lexer) {
	if l == nil {
		l = lexers.Fallback
	}
	hl.lexer = chroma.Coalesce(l)
}

func (hl *highlighter) tokenise(in string) ([]chroma.Token, error) {
	it, err := hl.lexer.Tokenise(nil, in)
	if err != nil {
		return nil, fmt.Errorf("tokenising: %v", err)
	}
	tokens := it.Tokens()
	// Some lexers terminate their input with a newline.
	if n := len(tokens); n > 0 && !strings.HasSuffix(in, "\n") {
		tokens[n-1].Value = strings.TrimSuffix(tokens[n-1].Value, "\n")
	}
	return tokens, nil
}

func (hl *highlighter) render(tokens []chroma.Token) template.HTML {
	var sb strings.Builder
	for _, tok := range tokens {
		value := template.HTMLEscapeString(tok.Value)
		if c := class(tok.Type); c != "" {
			fmt.Fprintf(&sb, `<span class="%s">%s</span>`, c, value)
		} else {
			sb.WriteString(value)
		}
	}
	return template.HTML(sb.String())
}

func class(t chroma.TokenType) string {
	for _, t := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if c, ok := style[t]; ok {
			return c
		}
	}
	return ""
}
