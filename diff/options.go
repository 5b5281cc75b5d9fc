package diff

import (
	"time"

	"znkr.io/conflicts/internal/config"
)

// Option configures a diff. The same options are accepted by the textdiff and patch packages;
// options that don't apply to an operation are ignored by it.
type Option = config.Option

// IgnoreWhitespace compares lines after trimming leading and trailing white space.
func IgnoreWhitespace() Option {
	return func(cfg *config.Config) { cfg.IgnoreWhitespace = true }
}

// IgnoreCase compares tokens case insensitively.
func IgnoreCase() Option {
	return func(cfg *config.Config) { cfg.IgnoreCase = true }
}

// IgnoreNewlineAtEOF compares lines without their trailing newline, so that a missing newline at
// the end of a file doesn't show up as a change. It has no effect together with IgnoreWhitespace,
// which already ignores the newline.
func IgnoreNewlineAtEOF() Option {
	return func(cfg *config.Config) { cfg.IgnoreNewlineAtEOF = true }
}

// NewlineIsToken treats line terminators as tokens of their own instead of as part of the line
// they terminate. It can't be used to create patches.
func NewlineIsToken() Option {
	return func(cfg *config.Config) { cfg.NewlineIsToken = true }
}

// StripTrailingCR replaces all \r\n line terminators with \n before comparing.
func StripTrailingCR() Option {
	return func(cfg *config.Config) { cfg.StripTrailingCR = true }
}

// OneChangePerToken emits one component per token instead of joining runs of the same kind.
func OneChangePerToken() Option {
	return func(cfg *config.Config) { cfg.OneChangePerToken = true }
}

// Comparator replaces the equality operator for text tokens. The comparator receives the old
// token first. IgnoreCase has no effect if a comparator is set.
func Comparator(fn func(a, b string) bool) Option {
	return func(cfg *config.Config) { cfg.SetComparator(fn) }
}

// MaxEditLength abandons the search once more than n edits would be necessary.
func MaxEditLength(n int) Option {
	return func(cfg *config.Config) { cfg.SetMaxEditLength(n) }
}

// Timeout abandons the search once it ran longer than d. The deadline is checked once per search
// radius.
func Timeout(d time.Duration) Option {
	return func(cfg *config.Config) { cfg.SetTimeout(d) }
}

// Context sets the number of unchanged lines around each change in a patch hunk. The default is
// 4.
func Context(n int) Option {
	return func(cfg *config.Config) { cfg.Context = n }
}

// WithScheduler sets the scheduler used by [Async] and the asynchronous functions in the textdiff
// and patch packages.
func WithScheduler(s Scheduler) Option {
	return func(cfg *config.Config) { cfg.Scheduler = s }
}
