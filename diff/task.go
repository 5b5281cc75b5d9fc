package diff

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"znkr.io/conflicts/internal/config"
)

// Task is a resumable edit script search between two sequences.
//
// A Task is driven by calling [Task.Step] until it reports that it's done, either directly, via
// [Task.Run] or via [Async]. Step must not be called concurrently; [Task.Cancel] can be called
// from any goroutine.
type Task[T any] struct {
	x, y []T
	eq   func(a, b T) bool

	oneChangePerToken bool
	maxEditLength     int
	deadline          time.Time // zero means no deadline
	now               func() time.Time
	scheduler         Scheduler

	// Edit scripts are stored as backwards linked chains of nodes. Nodes are never modified after
	// they have been appended, so paths can share chain tails. Nodes that no path reaches anymore
	// are dropped by compact once the arena reaches compactAt nodes.
	nodes     []node
	compactAt int

	// Best path per diagonal k = oldPos - newPos, stored at paths[k+bias].
	paths []path
	bias  int

	editLength               int
	minDiagonal, maxDiagonal int

	state     state
	last      int // Chain of the winning path
	distance  int
	result    []Component[T]
	cancelled atomic.Bool
}

type node struct {
	kind  Kind
	count int
	prev  int // -1 terminates the chain
}

type path struct {
	oldPos int // Last consumed position in the old sequence
	last   int // Last node of the edit script, -1 for an empty script
	ok     bool
}

type state int

const (
	running state = iota
	found
	abandoned
)

// NewTask prepares a search for the edit script that transforms x into y, using eq to compare
// elements. The common prefix is consumed immediately, so the task may be done right away.
//
// Of the options, only [OneChangePerToken], [MaxEditLength], [Timeout] and [WithScheduler] are
// relevant here. The text options are interpreted by the textdiff package.
func NewTask[T any](x, y []T, eq func(a, b T) bool, opts ...Option) (*Task[T], error) {
	if eq == nil {
		return nil, errors.New("diff: equality function must not be nil")
	}
	cfg := config.FromOptions(opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newTask(x, y, eq, &cfg, time.Now), nil
}

func newTask[T any](x, y []T, eq func(a, b T) bool, cfg *config.Config, now func() time.Time) *Task[T] {
	t := &Task[T]{
		x:                 x,
		y:                 y,
		eq:                eq,
		oneChangePerToken: cfg.OneChangePerToken,
		maxEditLength:     len(x) + len(y),
		now:               now,
		scheduler:         cfg.Scheduler,
		editLength:        1,
		compactAt:         minCompact,
		minDiagonal:       math.MinInt,
		maxDiagonal:       math.MaxInt,
		last:              -1,
	}
	if cfg.MaxEditLength >= 0 {
		t.maxEditLength = min(t.maxEditLength, cfg.MaxEditLength)
	}
	if cfg.HasTimeout() {
		t.deadline = now().Add(cfg.Timeout)
	}

	t.grow(0)
	p := path{oldPos: -1, last: -1, ok: true}
	newPos := t.extractCommon(&p, 0)
	if t.atEnd(p.oldPos, newPos) {
		t.finish(p.last, 0)
		return t
	}
	t.setPath(0, p)
	return t
}

// Step extends the search by one edit. It returns true if the task is done, i.e., if an edit
// script was found or the search was abandoned.
func (t *Task[T]) Step() bool {
	if t.state != running {
		return true
	}
	if t.cancelled.Load() || t.editLength > t.maxEditLength || t.expired() {
		t.state = abandoned
		t.paths = nil
		t.nodes = nil
		return true
	}

	r := t.editLength
	t.grow(r)
	for d := max(t.minDiagonal, -r); d <= min(t.maxDiagonal, r); d += 2 {
		removePath, addPath := t.path(d-1), t.path(d+1)
		if removePath.ok {
			// No one else is going to attempt to use this value, clear it.
			t.setPath(d-1, path{})
		}

		canAdd := false
		if addPath.ok {
			newPos := addPath.oldPos - d
			canAdd = 0 <= newPos && newPos < len(t.y)
		}
		canRemove := removePath.ok && removePath.oldPos+1 < len(t.x)
		if !canAdd && !canRemove {
			// This path is a terminal then, prune.
			t.setPath(d, path{})
			continue
		}

		// Select the diagonal that went the farthest in the old sequence. On a tie, prefer the
		// insertion.
		var p path
		if !canRemove || (canAdd && removePath.oldPos < addPath.oldPos) {
			p = t.extend(addPath, Added, 0)
		} else {
			p = t.extend(removePath, Removed, 1)
		}

		newPos := t.extractCommon(&p, d)
		if t.atEnd(p.oldPos, newPos) {
			t.finish(p.last, r)
			return true
		}
		t.setPath(d, p)

		// Once one sequence is consumed, no diagonal beyond this one can lead anywhere.
		if p.oldPos+1 >= len(t.x) {
			t.maxDiagonal = min(t.maxDiagonal, d-1)
		}
		if newPos+1 >= len(t.y) {
			t.minDiagonal = max(t.minDiagonal, d+1)
		}
	}
	if len(t.nodes) >= t.compactAt {
		t.compact()
	}
	t.editLength++
	return false
}

// Run calls Step until the task is done. The search is abandoned if ctx is done before that.
func (t *Task[T]) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			t.Cancel()
		}
		if t.Step() {
			return
		}
	}
}

// Cancel abandons the search at the next step. It has no effect on a task that's already done.
func (t *Task[T]) Cancel() { t.cancelled.Store(true) }

// Result returns the edit script. It returns false if the task isn't done yet or if the search
// was abandoned.
func (t *Task[T]) Result() ([]Component[T], bool) {
	if t.state != found {
		return nil, false
	}
	if t.result == nil {
		t.result = t.components()
	}
	return t.result, true
}

// EditLength returns the number of insertions and deletions in the edit script once it was found.
// Before that, it returns the search radius the next call to Step is going to explore.
func (t *Task[T]) EditLength() int {
	if t.state == found {
		return t.distance
	}
	return t.editLength
}

func (t *Task[T]) expired() bool {
	return !t.deadline.IsZero() && t.now().After(t.deadline)
}

func (t *Task[T]) atEnd(oldPos, newPos int) bool {
	return oldPos+1 >= len(t.x) && newPos+1 >= len(t.y)
}

func (t *Task[T]) finish(last, distance int) {
	t.state = found
	t.last = last
	t.distance = distance
	t.paths = nil
}

// grow makes sure that the path table covers diagonals -(r+1) to r+1.
func (t *Task[T]) grow(r int) {
	if t.paths != nil && r+1 <= t.bias {
		return
	}
	bias := max(2*t.bias, r+1, 8)
	bias = max(min(bias, t.maxEditLength+1), r+1)
	paths := make([]path, 2*bias+1)
	if t.paths != nil {
		copy(paths[bias-t.bias:], t.paths)
	}
	t.paths, t.bias = paths, bias
}

func (t *Task[T]) path(d int) path {
	i := d + t.bias
	if i < 0 || i >= len(t.paths) {
		return path{}
	}
	return t.paths[i]
}

func (t *Task[T]) setPath(d int, p path) { t.paths[d+t.bias] = p }

func (t *Task[T]) push(n node) int {
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// Arenas smaller than this are never compacted.
const minCompact = 1024

// compact removes all nodes that are unreachable from the current paths and renumbers the rest.
// Relative node order is preserved, so prev always points to a smaller index.
func (t *Task[T]) compact() {
	keep := make([]bool, len(t.nodes))
	for _, p := range t.paths {
		if !p.ok {
			continue
		}
		for i := p.last; i >= 0 && !keep[i]; i = t.nodes[i].prev {
			keep[i] = true
		}
	}

	remap := make([]int, len(t.nodes))
	nodes := make([]node, 0, len(t.nodes)/2)
	for i, n := range t.nodes {
		if !keep[i] {
			continue
		}
		if n.prev >= 0 {
			n.prev = remap[n.prev]
		}
		remap[i] = len(nodes)
		nodes = append(nodes, n)
	}
	for i := range t.paths {
		if p := &t.paths[i]; p.ok && p.last >= 0 {
			p.last = remap[p.last]
		}
	}

	t.nodes = nodes
	t.compactAt = max(2*len(nodes), minCompact)
}

// extend returns a new path that is p plus one edit of the given kind.
func (t *Task[T]) extend(p path, kind Kind, oldPosInc int) path {
	next := path{oldPos: p.oldPos + oldPosInc, ok: true}
	if p.last >= 0 && !t.oneChangePerToken {
		if last := t.nodes[p.last]; last.kind == kind {
			next.last = t.push(node{kind: kind, count: last.count + 1, prev: last.prev})
			return next
		}
	}
	next.last = t.push(node{kind: kind, count: 1, prev: p.last})
	return next
}

// extractCommon follows the snake of equal elements starting after p on the given diagonal and
// returns the last consumed position in the new sequence.
func (t *Task[T]) extractCommon(p *path, diagonal int) int {
	oldPos, newPos := p.oldPos, p.oldPos-diagonal
	common := 0
	for newPos+1 < len(t.y) && oldPos+1 < len(t.x) && t.eq(t.x[oldPos+1], t.y[newPos+1]) {
		oldPos++
		newPos++
		common++
		if t.oneChangePerToken {
			p.last = t.push(node{kind: Unchanged, count: 1, prev: p.last})
		}
	}
	if common > 0 && !t.oneChangePerToken {
		p.last = t.push(node{kind: Unchanged, count: common, prev: p.last})
	}
	p.oldPos = oldPos
	return newPos
}

// components materializes the winning chain.
func (t *Task[T]) components() []Component[T] {
	var chain []node
	for i := t.last; i >= 0; i = t.nodes[i].prev {
		chain = append(chain, t.nodes[i])
	}
	slices.Reverse(chain)

	comps := make([]Component[T], 0, len(chain))
	s, u := 0, 0
	for _, n := range chain {
		c := Component[T]{Kind: n.kind, Count: n.count}
		switch n.kind {
		case Removed:
			c.Tokens = t.x[s : s+n.count : s+n.count]
			s += n.count
		case Added:
			c.Tokens = t.y[u : u+n.count : u+n.count]
			u += n.count
		default:
			c.Tokens = t.y[u : u+n.count : u+n.count]
			s += n.count
			u += n.count
		}
		comps = append(comps, c)
	}
	return comps
}
