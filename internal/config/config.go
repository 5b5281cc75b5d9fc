// Package config holds the option set shared by the diff, textdiff, and patch packages. The
// exported option constructors live in package diff, this package only stores and validates them.
package config

import (
	"errors"
	"fmt"
	"time"
)

// DefaultContext is the number of unchanged lines around each change in a patch hunk.
const DefaultContext = 4

// Scheduler runs a function at some later point, see diff.Scheduler.
type Scheduler interface {
	Schedule(fn func())
}

// Option modifies a Config.
type Option func(*Config)

// Config is the resolved set of options for a single diff or patch invocation.
type Config struct {
	IgnoreWhitespace   bool
	IgnoreCase         bool
	IgnoreNewlineAtEOF bool
	NewlineIsToken     bool
	StripTrailingCR    bool
	OneChangePerToken  bool

	Comparator    func(a, b string) bool
	comparatorSet bool

	MaxEditLength    int // < 0 means unbounded
	maxEditLengthSet bool
	Timeout          time.Duration
	timeoutSet       bool

	Context   int
	Scheduler Scheduler
}

// FromOptions applies opts on top of the defaults.
func FromOptions(opts []Option) Config {
	cfg := Config{
		MaxEditLength: -1,
		Context:       DefaultContext,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// SetComparator records fn as comparator. A nil fn is remembered so that Validate can reject it.
func (cfg *Config) SetComparator(fn func(a, b string) bool) {
	cfg.Comparator = fn
	cfg.comparatorSet = true
}

// SetMaxEditLength records n as the maximum edit length.
func (cfg *Config) SetMaxEditLength(n int) {
	cfg.MaxEditLength = n
	cfg.maxEditLengthSet = true
}

// SetTimeout records d as timeout.
func (cfg *Config) SetTimeout(d time.Duration) {
	cfg.Timeout = d
	cfg.timeoutSet = true
}

// HasTimeout reports whether a timeout was configured.
func (cfg *Config) HasTimeout() bool { return cfg.timeoutSet }

// Validate reports contract violations. It's called by every entry point before any work is done.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.comparatorSet && cfg.Comparator == nil {
		errs = append(errs, errors.New("comparator must not be nil"))
	}
	if cfg.maxEditLengthSet && cfg.MaxEditLength < 0 {
		errs = append(errs, fmt.Errorf("max edit length must not be negative, got %d", cfg.MaxEditLength))
	}
	if cfg.timeoutSet && cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %v", cfg.Timeout))
	}
	if cfg.Context < 0 {
		errs = append(errs, fmt.Errorf("context must not be negative, got %d", cfg.Context))
	}
	return errors.Join(errs...)
}
