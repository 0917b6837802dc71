package cache

import "time"

// entry is one resident value. size is the length of the key plus the JSON
// encoding of the value.
type entry[V any] struct {
	key         string
	value       V
	size        int64
	insertedAt  time.Time
	expiresAt   time.Time // zero means never
	accessCount uint64
	lastAccess  time.Time
}

// expired reports whether the entry is strictly past its expiry at now.
func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
