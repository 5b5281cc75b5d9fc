// Package diff computes a minimal edit script between two slices of an arbitrary type with an
// arbitrary equality operator.
//
// The search can run synchronously ([Diff], [DiffFunc], [Task.Run]) or cooperatively, one search
// radius at a time ([Task.Step], [Async]). It is bounded by an optional maximum edit length and an
// optional wall-clock timeout. If either bound is hit the search is abandoned and no result is
// produced; there are no partial or approximate results.
package diff

// Implementation note: The search is an implementation of Myers' greedy algorithm in the forward
// direction, without the linear space refinement. Like all implementations of this algorithm it
// looks like magic when read in code, the following links give a good explanation of how it works:
//
// https://blog.jcoglan.com/2017/02/12/the-myers-diff-algorithm-part-1/
// https://blog.jcoglan.com/2017/02/15/the-myers-diff-algorithm-part-2/
// https://blog.jcoglan.com/2017/02/17/the-myers-diff-algorithm-part-3/
//
// Instead of backtracking through a stored graph, every path carries the edit script that led to
// it. The scripts are stored as backwards linked chains in an arena (see task.go) so that paths can
// share a common prefix without copying it.

import (
	"context"
	"errors"
	"fmt"
)

// ErrAbandoned is returned when a search hits its maximum edit length, its timeout, or is
// cancelled before an edit script was found. It means that no diff was computed; it's different
// from a successful diff without changes.
var ErrAbandoned = errors.New("diff: search abandoned")

// Kind classifies a run of tokens in an edit script.
type Kind int

const (
	Unchanged Kind = iota // Tokens present in both sequences
	Added                 // Tokens only present in the new sequence
	Removed               // Tokens only present in the old sequence
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Component is a maximal run of tokens with the same kind.
//
//   - For Unchanged, Tokens holds the tokens of the new sequence. They may differ from the old
//     sequence's tokens if the equality operator considers them equal.
//   - For Added, Tokens holds the tokens of the new sequence.
//   - For Removed, Tokens holds the tokens of the old sequence.
//
// Tokens aliases the input slices and must not be modified.
type Component[T any] struct {
	Kind   Kind
	Count  int // Number of tokens in this run, always >= 1
	Tokens []T
}

// Diff compares x and y using == and returns the edit script to transform x into y.
func Diff[T comparable](x, y []T, opts ...Option) ([]Component[T], error) {
	return DiffFunc(x, y, func(a, b T) bool { return a == b }, opts...)
}

// DiffFunc compares x and y using eq and returns the edit script to transform x into y.
//
// It returns [ErrAbandoned] if the search exceeded the [MaxEditLength] or [Timeout] options. Any
// other error is an invalid option.
func DiffFunc[T any](x, y []T, eq func(a, b T) bool, opts ...Option) ([]Component[T], error) {
	t, err := NewTask(x, y, eq, opts...)
	if err != nil {
		return nil, err
	}
	t.Run(context.Background())
	comps, ok := t.Result()
	if !ok {
		return nil, ErrAbandoned
	}
	return comps, nil
}
