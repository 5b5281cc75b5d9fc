package textdiff

import (
	"strings"
	"unicode"

	"znkr.io/conflicts/diff"
	"znkr.io/conflicts/internal/config"
)

// Tokenizer splits text into tokens and decides which tokens are equal.
type Tokenizer interface {
	// Tokenize splits s into non-empty tokens. Concatenating the tokens must yield s, unless
	// the tokenizer normalizes the text first.
	Tokenize(s string) []string
	// Equal reports whether the old token a and the new token b are considered equal.
	Equal(a, b string) bool
}

// LineTokenizer returns a Tokenizer that splits text into lines. It honors the
// [diff.StripTrailingCR], [diff.NewlineIsToken], [diff.IgnoreWhitespace],
// [diff.IgnoreNewlineAtEOF], [diff.IgnoreCase] and [diff.Comparator] options.
func LineTokenizer(opts ...diff.Option) Tokenizer {
	return &lineTokenizer{cfg: config.FromOptions(opts)}
}

type lineTokenizer struct {
	cfg config.Config
}

func (lt *lineTokenizer) Tokenize(s string) []string {
	if lt.cfg.StripTrailingCR {
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}

	var tokens []string
	emit := func(tok string) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			emit(s)
			break
		}
		// The terminator is either \n or \r\n.
		line, nl := s[:i], s[i:i+1]
		if strings.HasSuffix(line, "\r") {
			line, nl = line[:len(line)-1], s[i-1:i+1]
		}
		if lt.cfg.NewlineIsToken {
			emit(line)
			emit(nl)
		} else {
			emit(line + nl)
		}
		s = s[i+1:]
	}
	return tokens
}

func (lt *lineTokenizer) Equal(a, b string) bool {
	cfg := &lt.cfg
	switch {
	case cfg.IgnoreWhitespace:
		if !cfg.NewlineIsToken || !strings.Contains(a, "\n") {
			a = trimSpace(a)
		}
		if !cfg.NewlineIsToken || !strings.Contains(b, "\n") {
			b = trimSpace(b)
		}
	case cfg.IgnoreNewlineAtEOF && !cfg.NewlineIsToken:
		a = strings.TrimSuffix(a, "\n")
		b = strings.TrimSuffix(b, "\n")
	}
	if cfg.Comparator != nil {
		return cfg.Comparator(a, b)
	}
	return a == b || cfg.IgnoreCase && strings.ToLower(a) == strings.ToLower(b)
}

// trimSpace removes leading and trailing white space and line terminators as defined by
// ECMAScript: the byte order mark counts as white space, NEL doesn't.
func trimSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '\uFEFF' || r != '\u0085' && unicode.IsSpace(r)
	})
}
