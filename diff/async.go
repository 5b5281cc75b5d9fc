package diff

import "znkr.io/conflicts/internal/config"

// Scheduler runs a function at some later point. [Async] schedules the next step of a search only
// after the previous one returned, so a scheduler never runs two steps of the same task at once.
type Scheduler = config.Scheduler

// SchedulerFunc adapts an ordinary function to a [Scheduler].
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// goScheduler runs every step on a fresh goroutine.
var goScheduler = SchedulerFunc(func(fn func()) { go fn() })

// Async drives t to completion one step at a time using the scheduler configured via
// [WithScheduler], or a goroutine per step if there is none. done is called exactly once with the
// result of [Task.Result]. Use [Task.Cancel] to abandon the search early.
func Async[T any](t *Task[T], done func([]Component[T], bool)) {
	s := t.scheduler
	if s == nil {
		s = goScheduler
	}
	var tick func()
	tick = func() {
		if t.Step() {
			done(t.Result())
			return
		}
		s.Schedule(tick)
	}
	s.Schedule(tick)
}
