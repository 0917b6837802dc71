package cache

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"
)

// ExportVersion is the snapshot format version written by Exporter.
const ExportVersion = "2.0"

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry represents a single cache entry. Value holds the JSON encoding
// of the cached value.
type ExportEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// Exportable is implemented by caches that can enumerate their live entries.
type Exportable interface {
	ExportEntries() ([]ExportEntry, error)
}

// Importable is implemented by caches that can be warmed from a snapshot.
type Importable interface {
	ImportEntry(e ExportEntry) error
}

// Exporter provides cache export functionality.
type Exporter struct {
	cache Exportable
}

// NewExporter creates a new cache exporter.
func NewExporter(cache Exportable) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the cache contents to a writer in JSON format, sorted by key.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	entries, err := e.cache.ExportEntries()
	if err != nil {
		return fmt.Errorf("getting cache entries: %w", err)
	}
	slices.SortFunc(entries, func(a, b ExportEntry) int {
		return cmp.Compare(a.Key, b.Key)
	})

	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// ExportToFile exports the cache to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(f, metadata)
}

// Importer provides cache import functionality.
type Importer struct {
	cache Importable
	now   func() time.Time
}

// NewImporter creates a new cache importer.
func NewImporter(cache Importable) *Importer {
	return &Importer{cache: cache, now: time.Now}
}

// Import reads cache entries from a reader and loads them into the cache.
// Entries that expired since the export are skipped.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	now := i.now()
	for _, entry := range export.Entries {
		if entry.ExpiresAt != nil && !entry.ExpiresAt.After(now) {
			result.Skipped++
			continue
		}
		if err := i.cache.ImportEntry(entry); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Skipped  int
	Failed   int
}
