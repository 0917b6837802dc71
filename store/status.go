package store

import (
	"maps"
	"time"

	"github.com/ZaguanLabs/linguaswap"
)

// Status is a read-only view of the store's configuration.
type Status struct {
	Initialized bool              `json:"initialized"`
	Languages   []string          `json:"languages"`
	Reference   string            `json:"reference"`
	LoadedAt    time.Time         `json:"loaded_at"`
	Reloads     int               `json:"reloads"`
	Supplements map[string]string `json:"supplements,omitempty"`
}

// Stats holds resolution counters.
type Stats struct {
	Lookups    uint64         `json:"lookups"`
	MemoHits   uint64         `json:"memo_hits"`
	TreeWalks  uint64         `json:"tree_walks"`
	Fallbacks  uint64         `json:"fallbacks"`
	MemoErrors uint64         `json:"memo_errors"`
	Paths      map[string]int `json:"paths"` // leaf count per language
}

// Status returns the store's current status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	langs := make([]string, len(s.languages))
	copy(langs, s.languages)
	return Status{
		Initialized: s.ready,
		Languages:   langs,
		Reference:   s.reference,
		LoadedAt:    s.loadedAt,
		Reloads:     s.reloadCount,
		Supplements: maps.Clone(s.supplied),
	}
}

// Statistics returns resolution counters.
func (s *Store) Statistics() Stats {
	st := Stats{
		Lookups:    s.lookups.Load(),
		MemoHits:   s.memoHits.Load(),
		TreeWalks:  s.treeWalks.Load(),
		Fallbacks:  s.fallbacks.Load(),
		MemoErrors: s.memoErrors.Load(),
		Paths:      make(map[string]int),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for lang, tree := range s.trees {
		st.Paths[lang] = len(linguaswap.Flatten(tree))
	}
	return st
}
