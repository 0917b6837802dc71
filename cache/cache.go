// Package cache provides the resolved-value memo backends and the bounded
// update cache used to memoize per-switch computations.
package cache

// TranslationCache is the interface for resolved-value memoization.
type TranslationCache interface {
	// Get retrieves a memoized value. Returns empty string and false if not found.
	Get(key string) (string, bool)

	// Set stores a value.
	Set(key string, value string) error

	// Clear removes every value held by this cache.
	Clear() error
}
