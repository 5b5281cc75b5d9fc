// Package textdiff compares texts token by token, line by line by default.
package textdiff

import (
	"context"
	"strings"

	"znkr.io/conflicts/diff"
	"znkr.io/conflicts/internal/config"
)

// Component is a run of tokens with the same kind, joined back into text.
type Component struct {
	Kind  diff.Kind
	Count int    // Number of tokens
	Value string // The tokens, from the new text for unchanged runs
}

// Added reports whether the tokens are only present in the new text.
func (c Component) Added() bool { return c.Kind == diff.Added }

// Removed reports whether the tokens are only present in the old text.
func (c Component) Removed() bool { return c.Kind == diff.Removed }

// Lines compares oldText and newText line by line.
//
// It returns [diff.ErrAbandoned] if the search exceeded the [diff.MaxEditLength] or
// [diff.Timeout] options.
func Lines(oldText, newText string, opts ...diff.Option) ([]Component, error) {
	return LinesContext(context.Background(), oldText, newText, opts...)
}

// LinesContext is like [Lines], but gives up when ctx is done and returns ctx.Err() in that case.
func LinesContext(ctx context.Context, oldText, newText string, opts ...diff.Option) ([]Component, error) {
	return TokensContext(ctx, oldText, newText, LineTokenizer(opts...), opts...)
}

// Tokens compares oldText and newText using the given tokenizer.
func Tokens(oldText, newText string, tok Tokenizer, opts ...diff.Option) ([]Component, error) {
	return TokensContext(context.Background(), oldText, newText, tok, opts...)
}

// TokensContext is like [Tokens], but gives up when ctx is done and returns ctx.Err() in that
// case.
func TokensContext(ctx context.Context, oldText, newText string, tok Tokenizer, opts ...diff.Option) ([]Component, error) {
	t, err := newTask(oldText, newText, tok, opts)
	if err != nil {
		return nil, err
	}
	t.Run(ctx)
	comps, ok := t.Result()
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, diff.ErrAbandoned
	}
	return join(comps), nil
}

// LinesAsync is like [Lines], but runs the search one step at a time on the scheduler configured
// with [diff.WithScheduler]. done is called exactly once. Errors in the options are returned
// immediately and done isn't called.
func LinesAsync(oldText, newText string, done func([]Component, error), opts ...diff.Option) error {
	t, err := newTask(oldText, newText, LineTokenizer(opts...), opts)
	if err != nil {
		return err
	}
	diff.Async(t, func(comps []diff.Component[string], ok bool) {
		if !ok {
			done(nil, diff.ErrAbandoned)
			return
		}
		done(join(comps), nil)
	})
	return nil
}

// Stat counts the added and removed tokens.
func Stat(comps []Component) (added, removed int) {
	for _, c := range comps {
		switch c.Kind {
		case diff.Added:
			added += c.Count
		case diff.Removed:
			removed += c.Count
		}
	}
	return added, removed
}

func newTask(oldText, newText string, tok Tokenizer, opts []diff.Option) (*diff.Task[string], error) {
	cfg := config.FromOptions(opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return diff.NewTask(tok.Tokenize(oldText), tok.Tokenize(newText), tok.Equal, opts...)
}

func join(comps []diff.Component[string]) []Component {
	out := make([]Component, len(comps))
	for i, c := range comps {
		out[i] = Component{Kind: c.Kind, Count: c.Count, Value: strings.Join(c.Tokens, "")}
	}
	return out
}
