package linguaswap

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ParallelCacheLookup looks up the translation of every distinct source text
// concurrently. It returns the hits keyed by text hash, and the first
// suggestion of each missed text in input order.
func ParallelCacheLookup(cache TranslationCache, pending []Suggestion, targetLang string) (map[string]string, []Suggestion) {
	hits := make(map[string]string)
	if cache == nil || len(pending) == 0 {
		return hits, uniqueBySource(pending)
	}

	unique := uniqueBySource(pending)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, sg := range unique {
		wg.Add(1)
		go func(hash string) {
			defer wg.Done()
			if val, ok := cache.Get(CacheKey(hash, targetLang)); ok {
				mu.Lock()
				hits[hash] = val
				mu.Unlock()
			}
		}(HashText(sg.Source))
	}
	wg.Wait()

	var misses []Suggestion
	for _, sg := range unique {
		if _, ok := hits[HashText(sg.Source)]; !ok {
			misses = append(misses, sg)
		}
	}
	return hits, misses
}

// uniqueBySource keeps the first suggestion of each distinct source text.
func uniqueBySource(pending []Suggestion) []Suggestion {
	seen := make(map[string]bool, len(pending))
	var out []Suggestion
	for _, sg := range pending {
		hash := HashText(sg.Source)
		if seen[hash] {
			continue
		}
		seen[hash] = true
		out = append(out, sg)
	}
	return out
}

// suggestAll runs fn for every language with at most s.concurrency calls in
// flight. Results keep the order of work; the first error cancels the rest.
func (s *Suggester) suggestAll(ctx context.Context, work []LanguageCoverage, fn func(context.Context, LanguageCoverage) (*SuggestResult, error)) ([]*SuggestResult, error) {
	results := make([]*SuggestResult, len(work))

	if s.concurrency <= 1 {
		for i, coverage := range work {
			res, err := fn(ctx, coverage)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, coverage := range work {
		g.Go(func() error {
			res, err := fn(gctx, coverage)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
