package config

import (
	"testing"
	"time"
)

func TestFromOptions(t *testing.T) {
	cfg := FromOptions([]Option{
		nil,
		func(c *Config) { c.IgnoreCase = true },
		func(c *Config) { c.SetMaxEditLength(10) },
	})
	if !cfg.IgnoreCase {
		t.Errorf("IgnoreCase = false, want true")
	}
	if cfg.MaxEditLength != 10 {
		t.Errorf("MaxEditLength = %d, want 10", cfg.MaxEditLength)
	}
	if cfg.Context != DefaultContext {
		t.Errorf("Context = %d, want %d", cfg.Context, DefaultContext)
	}
	if cfg.HasTimeout() {
		t.Errorf("HasTimeout() = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	if got := FromOptions(nil).MaxEditLength; got >= 0 {
		t.Errorf("default MaxEditLength = %d, want unbounded", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil-comparator", func(c *Config) { c.SetComparator(nil) }},
		{"negative-max-edit-length", func(c *Config) { c.SetMaxEditLength(-1) }},
		{"zero-timeout", func(c *Config) { c.SetTimeout(0) }},
		{"negative-timeout", func(c *Config) { c.SetTimeout(-time.Second) }},
		{"negative-context", func(c *Config) { c.Context = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromOptions([]Option{tt.opt})
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}
