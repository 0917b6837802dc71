package render

import "time"

// RenderReport describes one applied language switch.
type RenderReport struct {
	From              string        `json:"from"`
	To                string        `json:"to"`
	ChangedKeys       []string      `json:"changed_keys"`
	ElementsUpdated   int           `json:"elements_updated"`
	AttributesUpdated int           `json:"attributes_updated"`
	Rejected          []string      `json:"rejected,omitempty"` // "key@attribute" values that failed sanitising
	Batches           int           `json:"batches"`
	SnapshotCached    bool          `json:"snapshot_cached"`
	Announcement      string        `json:"announcement,omitempty"`
	Duration          time.Duration `json:"duration"`
}

// Status is a point-in-time view of the renderer.
type Status struct {
	Language      string `json:"language"`
	BoundElements int    `json:"bound_elements"`
	BoundKeys     int    `json:"bound_keys"`
}

// Stats are cumulative renderer counters.
type Stats struct {
	Renders           int64         `json:"renders"`
	ElementsUpdated   int64         `json:"elements_updated"`
	AttributesUpdated int64         `json:"attributes_updated"`
	RejectedValues    int64         `json:"rejected_values"`
	RejectedBindings  int64         `json:"rejected_bindings"`
	InsertUpdates     int64         `json:"insert_updates"`
	SnapshotHits      int64         `json:"snapshot_hits"`
	SnapshotMisses    int64         `json:"snapshot_misses"`
	Pruned            int64         `json:"pruned"`
	LastDuration      time.Duration `json:"last_duration"`
}
