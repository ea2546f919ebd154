package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidMarker indicates a marker with wrong arguments or placement.
	ErrInvalidMarker = errors.New("entitysql: invalid marker")
	// ErrUnresolvedEntity indicates a marker referencing an unknown or non-struct type.
	ErrUnresolvedEntity = errors.New("entitysql: unresolved entity")
	// ErrEmptyEntity indicates an entity without exported fields.
	ErrEmptyEntity = errors.New("entitysql: entity has no fields")
	// ErrDuplicateOutput indicates two requests rendering into the same target.
	ErrDuplicateOutput = errors.New("entitysql: duplicate output")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("entitysql: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("entitysql: code generation failed")
)

// MarkerError represents a malformed marker on a target type.
type MarkerError struct {
	Target  string // Qualified target type name
	Marker  string // Marker name
	Pos     string
	Message string
}

// Error implements the error interface.
func (e *MarkerError) Error() string {
	var b strings.Builder
	if e.Pos != "" {
		b.WriteString(e.Pos)
		b.WriteString(": ")
	}
	b.WriteString("entitysql: marker error")
	if e.Marker != "" {
		b.WriteString(" in ")
		b.WriteString(e.Marker)
	}
	if e.Target != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Target)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for MarkerError.
func (e *MarkerError) Is(target error) bool {
	return target == ErrInvalidMarker
}

// NewMarkerError creates a new MarkerError.
func NewMarkerError(target, marker, pos, message string) *MarkerError {
	return &MarkerError{
		Target:  target,
		Marker:  marker,
		Pos:     pos,
		Message: message,
	}
}

// EntityError represents an entity that cannot be rendered.
type EntityError struct {
	Target  string // Qualified target type name
	Entity  string // Entity reference as written
	Pos     string
	Message string
	Cause   error
	kind    error
}

// Error implements the error interface.
func (e *EntityError) Error() string {
	var b strings.Builder
	if e.Pos != "" {
		b.WriteString(e.Pos)
		b.WriteString(": ")
	}
	b.WriteString("entitysql: entity error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Target != "" {
		b.WriteString(" for type ")
		b.WriteString(e.Target)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *EntityError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error of the entity
// error kind: ErrUnresolvedEntity or ErrEmptyEntity.
func (e *EntityError) Is(target error) bool {
	return target == e.kind
}

// NewUnresolvedEntityError creates an EntityError matching ErrUnresolvedEntity.
func NewUnresolvedEntityError(target, entity, pos string, cause error) *EntityError {
	return &EntityError{
		Target:  target,
		Entity:  entity,
		Pos:     pos,
		Message: "cannot resolve entity type",
		Cause:   cause,
		kind:    ErrUnresolvedEntity,
	}
}

// NewEmptyEntityError creates an EntityError matching ErrEmptyEntity.
func NewEmptyEntityError(target, entity, pos string) *EntityError {
	return &EntityError{
		Target:  target,
		Entity:  entity,
		Pos:     pos,
		Message: "entity has no exported fields",
		kind:    ErrEmptyEntity,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("entitysql: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("entitysql: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "render", "format", "write", "merge"
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("entitysql: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// NewDuplicateOutputError creates a GenerationError for a request whose
// output key was already produced by an earlier request.
func NewDuplicateOutputError(key, file string) *GenerationError {
	return &GenerationError{
		Phase:   "merge",
		File:    file,
		Message: fmt.Sprintf("output %s is already generated by an earlier marker", key),
		Cause:   ErrDuplicateOutput,
	}
}

// NewPathCollisionError creates a GenerationError for a request whose
// output file is already written by the output of another target.
func NewPathCollisionError(key, owner, file string) *GenerationError {
	return &GenerationError{
		Phase:   "merge",
		File:    file,
		Message: fmt.Sprintf("output %s collides with the file of %s, rename one of the targets", key, owner),
		Cause:   ErrDuplicateOutput,
	}
}

// IsMarkerError reports whether the error is a MarkerError.
func IsMarkerError(err error) bool {
	var markerErr *MarkerError
	return errors.As(err, &markerErr)
}

// IsEntityError reports whether the error is an EntityError.
func IsEntityError(err error) bool {
	var entityErr *EntityError
	return errors.As(err, &entityErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
