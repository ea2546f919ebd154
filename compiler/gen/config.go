package gen

import (
	"log/slog"
	"runtime"
	"slices"

	"github.com/go-openapi/inflect"

	"github.com/syssam/entitysql/compiler/load"
)

// Defaults applied by NewConfig.
const (
	// DefaultHeader is the header comment of every generated file.
	DefaultHeader = "Code generated by entitysql. DO NOT EDIT."
	// DefaultFileSuffix is appended to the underscored target type name.
	DefaultFileSuffix = "_entitysql.go"
	// MarkerGenerate is the primary marker name.
	MarkerGenerate = "entitysql:generate"
	// MarkerCrud is an alternate marker name with the same meaning.
	MarkerCrud = "entitysql:crud"
)

// DefaultMarkers are the marker names recognized when none are configured.
var DefaultMarkers = []string{MarkerGenerate, MarkerCrud}

// Config holds the configuration of one generation pass.
type Config struct {
	// Markers lists the recognized marker names.
	Markers []string
	// Header is the comment written at the top of each generated file.
	Header string
	// FileSuffix is appended to the underscored target name to form the
	// generated file name.
	FileSuffix string
	// Workers bounds the number of requests rendered in parallel.
	Workers int
	// DryRun renders outputs without writing them.
	DryRun bool
	// Load configures package loading. Its generated suffix and logger
	// default to FileSuffix and Logger.
	Load load.Config
	// Logger receives progress and diagnostics. Nil discards logs.
	Logger *slog.Logger
}

// defaults fills the zero fields of the config.
func (c *Config) defaults() {
	if len(c.Markers) == 0 {
		c.Markers = slices.Clone(DefaultMarkers)
	}
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.FileSuffix == "" {
		c.FileSuffix = DefaultFileSuffix
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Load.GeneratedSuffix == "" {
		c.Load.GeneratedSuffix = c.FileSuffix
	}
	if c.Load.Logger == nil {
		c.Load.Logger = c.Logger
	}
}

// recognized reports if name is one of the configured marker names.
func (c *Config) recognized(name string) bool {
	markers := c.Markers
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return slices.Contains(markers, name)
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (c *Config) header() string {
	if c.Header != "" {
		return c.Header
	}
	return DefaultHeader
}

func (c *Config) fileSuffix() string {
	if c.FileSuffix != "" {
		return c.FileSuffix
	}
	return DefaultFileSuffix
}

// filename returns the name of the file generated for the target type.
func (c *Config) filename(target string) string {
	return inflect.Underscore(target) + c.fileSuffix()
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
