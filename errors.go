package linguaswap

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnsupportedLanguage is returned when a language has no loaded tree.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrNotInitialized is returned when a store is used before Initialize.
	ErrNotInitialized = errors.New("store not initialized")
	// ErrDuplicateUnit is returned when an update unit id is registered twice.
	ErrDuplicateUnit = errors.New("update unit already registered")
	// ErrClosed is returned by components after Close.
	ErrClosed = errors.New("closed")
	// ErrMissingPath is returned when a dotted path does not address a leaf.
	ErrMissingPath = errors.New("missing translation path")
)

// LoadError indicates a required language document could not be loaded.
// It is the only error class that aborts startup.
type LoadError struct {
	Language string
	Cause    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load language %q: %v", e.Language, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// UnitError indicates an update unit failed during a switch.
type UnitError struct {
	UnitID string
	From   string
	To     string
	At     time.Time
	Panic  bool // The unit panicked rather than returning an error
	Cause  error
}

func (e *UnitError) Error() string {
	kind := "failed"
	if e.Panic {
		kind = "panicked"
	}
	return fmt.Sprintf("unit %q %s switching %s -> %s: %v", e.UnitID, kind, e.From, e.To, e.Cause)
}

func (e *UnitError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Key     string
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	msg := "cache error: " + e.Message
	if e.Key != "" {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// CycleError indicates update units whose dependencies can never be satisfied.
type CycleError struct {
	Units []string // Units that could not be placed in a wave
	Path  []string // One concrete cycle among them, first id repeated at the end
}

func (e *CycleError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("dependency cycle among units: %s", strings.Join(e.Units, ", "))
}

// BindingError indicates an element binding was rejected.
type BindingError struct {
	Key       string
	Attribute string
	Reason    string
}

func (e *BindingError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("binding %q rejected for attribute %q: %s", e.Key, e.Attribute, e.Reason)
	}
	return fmt.Sprintf("binding %q rejected: %s", e.Key, e.Reason)
}

// ProviderError indicates an AI provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the AI returned a different number of translations than expected.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
