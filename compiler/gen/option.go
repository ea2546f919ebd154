package gen

import (
	"errors"
	"log/slog"
	"strings"
)

// Option configures code generation.
type Option func(*Config) error

// WithMarkers replaces the recognized marker names.
// Each name has the directive form "prefix:verb".
func WithMarkers(names ...string) Option {
	return func(c *Config) error {
		if len(names) == 0 {
			return NewConfigError("Markers", nil, "at least one marker name is required")
		}
		for _, n := range names {
			prefix, verb, ok := strings.Cut(n, ":")
			if !ok || prefix == "" || verb == "" || strings.ContainsAny(n, " \t") {
				return NewConfigError("Markers", n, `marker names have the form "prefix:verb"`)
			}
		}
		c.Markers = append([]string(nil), names...)
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithFileSuffix sets the suffix of generated file names.
func WithFileSuffix(suffix string) Option {
	return func(c *Config) error {
		if !strings.HasSuffix(suffix, ".go") || strings.HasSuffix(suffix, "_test.go") {
			return NewConfigError("FileSuffix", suffix, `suffix must end with ".go" and must not be a test file`)
		}
		c.FileSuffix = suffix
		return nil
	}
}

// WithWorkers sets the number of parallel render workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers cannot be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithDryRun renders outputs without writing them to disk.
func WithDryRun(dry bool) Option {
	return func(c *Config) error {
		c.DryRun = dry
		return nil
	}
}

// WithDir sets the directory package patterns are resolved in.
func WithDir(dir string) Option {
	return func(c *Config) error {
		c.Load.Dir = dir
		return nil
	}
}

// WithBuildFlags sets custom build flags for loading packages.
func WithBuildFlags(flags ...string) Option {
	return func(c *Config) error {
		c.Load.BuildFlags = append(c.Load.BuildFlags, flags...)
		return nil
	}
}

// WithLogger sets the logger receiving progress and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	c.defaults()
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
