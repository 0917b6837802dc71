package linguaswap

import "slices"

// SnapshotDiff represents the difference between two language snapshots.
type SnapshotDiff struct {
	// Changed contains keys present in both snapshots whose values differ.
	Changed []string

	// Added contains keys only present in the new snapshot.
	Added []string

	// Removed contains keys only present in the old snapshot.
	Removed []string

	// Unchanged counts keys whose values are identical.
	Unchanged int
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Changed   int
	Added     int
	Removed   int
	Unchanged int
}

// Stats returns summary statistics for the diff.
func (d *SnapshotDiff) Stats() DiffStats {
	return DiffStats{
		Changed:   len(d.Changed),
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: d.Unchanged,
	}
}

// HasChanges returns true if any key needs republishing.
func (d *SnapshotDiff) HasChanges() bool {
	return len(d.Changed) > 0 || len(d.Added) > 0
}

// NeedsUpdate returns the sorted keys whose bound elements must be republished:
// changed keys and keys that had no previous value.
func (d *SnapshotDiff) NeedsUpdate() []string {
	result := make([]string, 0, len(d.Changed)+len(d.Added))
	result = append(result, d.Changed...)
	result = append(result, d.Added...)
	slices.Sort(result)
	return result
}

// DiffSnapshots compares the previous and the new snapshot and returns the
// minimal set of keys that changed. All key lists are sorted.
func DiffSnapshots(prev, next Snapshot) *SnapshotDiff {
	result := &SnapshotDiff{}

	for key, newVal := range next {
		oldVal, exists := prev[key]
		switch {
		case !exists:
			result.Added = append(result.Added, key)
		case !oldVal.Equal(newVal):
			result.Changed = append(result.Changed, key)
		default:
			result.Unchanged++
		}
	}

	for key := range prev {
		if _, exists := next[key]; !exists {
			result.Removed = append(result.Removed, key)
		}
	}

	slices.Sort(result.Changed)
	slices.Sort(result.Added)
	slices.Sort(result.Removed)
	return result
}
