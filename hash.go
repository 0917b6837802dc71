package linguaswap

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key from a text hash and target language.
func CacheKey(hash, targetLang string) string {
	return hash + ":" + targetLang
}

// MemoKey generates the resolved-value memo key for a language and dotted path.
// NUL cannot appear in a language code, so keys never collide.
func MemoKey(lang, path string) string {
	return lang + "\x00" + path
}

// Fingerprint returns a short, order-independent hash of a key set. It is used
// to address memoized snapshots of the same bound keys.
func Fingerprint(keys []string) string {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	h := sha256.New()
	for _, k := range sorted {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
