package textdiff

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"znkr.io/conflicts/diff"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []diff.Option
		want []string
	}{
		{
			name: "empty",
		},
		{
			name: "no-trailing-newline",
			in:   "a\nb\nc",
			want: []string{"a\n", "b\n", "c"},
		},
		{
			name: "trailing-newline",
			in:   "a\nb\n",
			want: []string{"a\n", "b\n"},
		},
		{
			name: "empty-lines",
			in:   "\n\n",
			want: []string{"\n", "\n"},
		},
		{
			name: "crlf",
			in:   "a\r\nb",
			want: []string{"a\r\n", "b"},
		},
		{
			name: "strip-trailing-cr",
			in:   "a\r\nb\r\n",
			opts: []diff.Option{diff.StripTrailingCR()},
			want: []string{"a\n", "b\n"},
		},
		{
			name: "newline-is-token",
			in:   "a\n\nb\n",
			opts: []diff.Option{diff.NewlineIsToken()},
			want: []string{"a", "\n", "\n", "b", "\n"},
		},
		{
			name: "newline-is-token-crlf",
			in:   "a\r\nb",
			opts: []diff.Option{diff.NewlineIsToken()},
			want: []string{"a", "\r\n", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTokenizer(tt.opts...).Tokenize(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) result is different (-want, +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	sameLength := func(a, b string) bool { return len(a) == len(b) }
	exact := func(a, b string) bool { return a == b }
	tests := []struct {
		name string
		a, b string
		opts []diff.Option
		want bool
	}{
		{"exact", "a\n", "a\n", nil, true},
		{"different", "a\n", "b\n", nil, false},
		{"newline-matters", "a\n", "a", nil, false},
		{"ignore-whitespace", "  a \n", "a", []diff.Option{diff.IgnoreWhitespace()}, true},
		{"ignore-whitespace-newline-token", "\n", " \n", []diff.Option{diff.IgnoreWhitespace(), diff.NewlineIsToken()}, false},
		{"ignore-newline-at-eof", "a\n", "a", []diff.Option{diff.IgnoreNewlineAtEOF()}, true},
		{"ignore-newline-at-eof-only-one", "a\n\n", "a", []diff.Option{diff.IgnoreNewlineAtEOF()}, false},
		{"ignore-newline-at-eof-newline-token", "a\n", "a", []diff.Option{diff.IgnoreNewlineAtEOF(), diff.NewlineIsToken()}, false},
		{"ignore-whitespace-bom", "\ufeffa\n", "a\n", []diff.Option{diff.IgnoreWhitespace()}, true},
		{"ignore-whitespace-nbsp", "\u00a0a\u2028\n", "a\n", []diff.Option{diff.IgnoreWhitespace()}, true},
		{"ignore-whitespace-nel", "\u0085a\n", "a\n", []diff.Option{diff.IgnoreWhitespace()}, false},
		{"ignore-case", "ABC\n", "abc\n", []diff.Option{diff.IgnoreCase()}, true},
		{"ignore-case-long-s", "\u017f\n", "s\n", []diff.Option{diff.IgnoreCase()}, false},
		{"ignore-case-kelvin", "\u212a\n", "k\n", []diff.Option{diff.IgnoreCase()}, true},
		{"comparator", "ab", "cd", []diff.Option{diff.Comparator(sameLength)}, true},
		{"comparator-wins-over-ignore-case", "a", "A", []diff.Option{diff.Comparator(exact), diff.IgnoreCase()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LineTokenizer(tt.opts...).Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		opts     []diff.Option
		want     []Component
	}{
		{
			name: "identical",
			old:  "a\nb\n",
			new:  "a\nb\n",
			want: []Component{{diff.Unchanged, 2, "a\nb\n"}},
		},
		{
			name: "both-empty",
			want: []Component{},
		},
		{
			name: "replace-line",
			old:  "a\nb\nc\n",
			new:  "a\nx\nc\n",
			want: []Component{
				{diff.Unchanged, 1, "a\n"},
				{diff.Removed, 1, "b\n"},
				{diff.Added, 1, "x\n"},
				{diff.Unchanged, 1, "c\n"},
			},
		},
		{
			name: "added-to-empty",
			new:  "a\nb\n",
			want: []Component{{diff.Added, 2, "a\nb\n"}},
		},
		{
			name: "missing-newline-at-eof",
			old:  "a\nb",
			new:  "a\nb\n",
			want: []Component{
				{diff.Unchanged, 1, "a\n"},
				{diff.Removed, 1, "b"},
				{diff.Added, 1, "b\n"},
			},
		},
		{
			name: "ignore-newline-at-eof",
			old:  "a\nb",
			new:  "a\nb\n",
			opts: []diff.Option{diff.IgnoreNewlineAtEOF()},
			want: []Component{{diff.Unchanged, 2, "a\nb\n"}},
		},
		{
			name: "ignore-case-keeps-new-text",
			old:  "Hello\nWorld\n",
			new:  "hello\nworld\n",
			opts: []diff.Option{diff.IgnoreCase()},
			want: []Component{{diff.Unchanged, 2, "hello\nworld\n"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lines(tt.old, tt.new, tt.opts...)
			if err != nil {
				t.Fatalf("Lines(...) failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lines result is different (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestLinesErrors(t *testing.T) {
	if _, err := Lines("a\n", "b\n", diff.MaxEditLength(0)); !errors.Is(err, diff.ErrAbandoned) {
		t.Errorf("Lines(...) with MaxEditLength(0) = %v, want %v", err, diff.ErrAbandoned)
	}
	if _, err := Lines("a\n", "b\n", diff.Timeout(0)); err == nil || errors.Is(err, diff.ErrAbandoned) {
		t.Errorf("Lines(...) with Timeout(0) = %v, want an option error", err)
	}
}

func TestLinesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LinesContext(ctx, "a\n", "b\n"); !errors.Is(err, context.Canceled) {
		t.Errorf("LinesContext(...) with cancelled context = %v, want %v", err, context.Canceled)
	}
	if _, err := LinesContext(ctx, "a\n", "b\n", diff.MaxEditLength(0)); !errors.Is(err, context.Canceled) {
		t.Errorf("LinesContext(...) with cancelled context and MaxEditLength(0) = %v, want %v", err, context.Canceled)
	}

	got, err := LinesContext(context.Background(), "a\n", "b\n")
	if err != nil {
		t.Fatalf("LinesContext(...) failed: %v", err)
	}
	want := []Component{
		{Kind: diff.Removed, Count: 1, Value: "a\n"},
		{Kind: diff.Added, Count: 1, Value: "b\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LinesContext(...) result is different (-want, +got):\n%s", diff)
	}
}

func TestLinesAsync(t *testing.T) {
	inline := diff.SchedulerFunc(func(fn func()) { fn() })

	t.Run("result", func(t *testing.T) {
		calls := 0
		var got []Component
		err := LinesAsync("a\nb\nc\n", "a\nx\nc\n", func(comps []Component, err error) {
			calls++
			if err != nil {
				t.Errorf("LinesAsync reported an error: %v", err)
			}
			got = comps
		}, diff.WithScheduler(inline))
		if err != nil {
			t.Fatalf("LinesAsync(...) failed: %v", err)
		}
		if calls != 1 {
			t.Errorf("done was called %d times, want 1", calls)
		}
		want, err := Lines("a\nb\nc\n", "a\nx\nc\n")
		if err != nil {
			t.Fatalf("Lines(...) failed: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("LinesAsync result is different from Lines (-want, +got):\n%s", diff)
		}
	})

	t.Run("abandoned", func(t *testing.T) {
		var got error
		err := LinesAsync("a\n", "b\n", func(_ []Component, err error) { got = err }, diff.WithScheduler(inline), diff.MaxEditLength(0))
		if err != nil {
			t.Fatalf("LinesAsync(...) failed: %v", err)
		}
		if !errors.Is(got, diff.ErrAbandoned) {
			t.Errorf("done received %v, want %v", got, diff.ErrAbandoned)
		}
	})

	t.Run("invalid-options", func(t *testing.T) {
		err := LinesAsync("a\n", "b\n", func([]Component, error) {
			t.Errorf("done called for invalid options")
		}, diff.Context(-1))
		if err == nil {
			t.Errorf("LinesAsync(...) succeeded, want error")
		}
	})
}

func TestStat(t *testing.T) {
	comps, err := Lines("a\nb\nc\nd\n", "a\nx\ny\nd\n")
	if err != nil {
		t.Fatalf("Lines(...) failed: %v", err)
	}
	added, removed := Stat(comps)
	if added != 2 || removed != 2 {
		t.Errorf("Stat(...) = %d, %d, want 2, 2", added, removed)
	}
}
