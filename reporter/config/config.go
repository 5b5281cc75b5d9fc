// Package config loads the reporter configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"znkr.io/conflicts/diff"
)

// DefaultFile is the configuration file looked up in the working directory if no file is given.
const DefaultFile = "reporter.yaml"

// Config is the complete reporter configuration.
type Config struct {
	Dir    string       `yaml:"dir" validate:"required"`
	Diff   DiffConfig   `yaml:"diff"`
	Report ReportConfig `yaml:"report"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// DiffConfig configures how conflicts are compared.
type DiffConfig struct {
	Context            int           `yaml:"context" validate:"gte=0"`
	IgnoreCase         bool          `yaml:"ignore_case"`
	IgnoreWhitespace   bool          `yaml:"ignore_whitespace"`
	IgnoreNewlineAtEOF bool          `yaml:"ignore_newline_at_eof"`
	StripTrailingCR    bool          `yaml:"strip_trailing_cr"`
	MaxEditLength      int           `yaml:"max_edit_length" validate:"gte=0"` // 0 disables the limit
	Timeout            time.Duration `yaml:"timeout" validate:"gte=0"`         // 0 disables the timeout
}

// ReportConfig configures the conflict report.
type ReportConfig struct {
	Title           string `yaml:"title" validate:"required"`
	Format          string `yaml:"format" validate:"oneof=patch markdown html atom"`
	IgnoreCollapsed bool   `yaml:"ignore_collapsed"`
	Concurrency     int    `yaml:"concurrency" validate:"gte=1"`
	BaseURL         string `yaml:"base_url" validate:"omitempty,url"`
}

// ServerConfig configures the report server.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"hostname_port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level" validate:"loglevel"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	NoColor    bool   `yaml:"no_color"`
}

// Default returns the configuration used for everything that's not set in a file.
func Default() *Config {
	return &Config{
		Dir: ".",
		Diff: DiffConfig{
			Context: 4,
		},
		Report: ReportConfig{
			Title:           "Sync Conflicts",
			Format:          "markdown",
			IgnoreCollapsed: true,
			Concurrency:     4,
		},
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads the configuration from path on top of the defaults. If path is empty, DefaultFile is
// used if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("reading config: %v", err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DiffOptions returns the diff options for the diff configuration.
func (c *DiffConfig) DiffOptions() []diff.Option {
	opts := []diff.Option{diff.Context(c.Context)}
	if c.IgnoreCase {
		opts = append(opts, diff.IgnoreCase())
	}
	if c.IgnoreWhitespace {
		opts = append(opts, diff.IgnoreWhitespace())
	}
	if c.IgnoreNewlineAtEOF {
		opts = append(opts, diff.IgnoreNewlineAtEOF())
	}
	if c.StripTrailingCR {
		opts = append(opts, diff.StripTrailingCR())
	}
	if c.MaxEditLength > 0 {
		opts = append(opts, diff.MaxEditLength(c.MaxEditLength))
	}
	if c.Timeout > 0 {
		opts = append(opts, diff.Timeout(c.Timeout))
	}
	return opts
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is a single failed validation rule.
type FieldError struct {
	Field string // Namespace of the field, e.g. "Diff.Context"
	Rule  string
	Value any
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: rule %q failed for %v", f.Field, f.Rule, f.Value))
	}
	return "invalid configuration:\n  " + strings.Join(msgs, "\n  ")
}

// Validate checks the configuration and returns a *ValidationError if it's invalid.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validating config: %v", err)
	}
	verr := &ValidationError{}
	for _, e := range errs {
		field, _ := strings.CutPrefix(e.Namespace(), "Config.")
		verr.Fields = append(verr.Fields, FieldError{Field: field, Rule: e.Tag(), Value: e.Value()})
	}
	return verr
}

var validate = mustValidator()

func mustValidator() *validator.Validate {
	v, err := newValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "trace", "debug", "info", "warn", "error", "disabled":
			return true
		default:
			return false
		}
	})
	if err != nil {
		return nil, fmt.Errorf("registering loglevel validation: %v", err)
	}
	return v, nil
}
