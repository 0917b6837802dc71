package linguaswap

import (
	"context"
	"fmt"
)

// AIProvider is the interface for AI translation backends.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Texts         []string
	TargetLang    string
	SourceLang    string
	ExcludedTerms []string
	Context       string
	TextContexts  []string
	Glossary      map[string]string
	Style         TranslationStyle
}

// TranslationCache is the interface for suggestion caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// Suggestion is a proposed translation for a path missing from a language.
type Suggestion struct {
	Language string `json:"language"`
	Path     string `json:"path"`
	Source   string `json:"source"`
	Text     string `json:"text"`
	Cached   bool   `json:"cached,omitempty"`
}

// SuggestResult is the outcome of a suggestion run.
type SuggestResult struct {
	Suggestions     []Suggestion `json:"suggestions"`
	Skipped         []string     `json:"skipped,omitempty"` // "lang:path" entries that are not plain text
	TranslatedCount int          `json:"translated_count"`
	CachedCount     int          `json:"cached_count"`
}

// Apply merges the suggestions into copies of the given trees, keyed by language.
// Languages absent from trees start from an empty tree.
func (r *SuggestResult) Apply(trees map[string]Tree) (map[string]Tree, error) {
	out := make(map[string]Tree, len(trees))
	for lang, tree := range trees {
		out[lang] = tree
	}
	for _, sg := range r.Suggestions {
		updated, err := SetPath(out[sg.Language], sg.Path, TextValue(sg.Text))
		if err != nil {
			return nil, fmt.Errorf("apply %s:%s: %w", sg.Language, sg.Path, err)
		}
		out[sg.Language] = updated
	}
	return out, nil
}

// Suggester proposes translations for paths a completeness audit found missing.
type Suggester struct {
	sourceLang    string
	provider      AIProvider
	cache         TranslationCache
	excludedTerms []string
	context       string
	glossary      map[string]string
	style         TranslationStyle
	concurrency   int
}

// SuggesterOption is a functional option for configuring the Suggester.
type SuggesterOption func(*Suggester)

// WithSourceLang overrides the source language. By default the report's
// reference language is used.
func WithSourceLang(lang string) SuggesterOption {
	return func(s *Suggester) {
		s.sourceLang = lang
	}
}

// WithCache sets the suggestion cache.
func WithCache(cache TranslationCache) SuggesterOption {
	return func(s *Suggester) {
		s.cache = cache
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) SuggesterOption {
	return func(s *Suggester) {
		s.excludedTerms = terms
	}
}

// WithContext sets the global translation context.
func WithContext(ctx string) SuggesterOption {
	return func(s *Suggester) {
		s.context = ctx
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) SuggesterOption {
	return func(s *Suggester) {
		s.glossary = glossary
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) SuggesterOption {
	return func(s *Suggester) {
		s.style = style
	}
}

// WithConcurrency sets how many languages are suggested at once (default 1).
func WithConcurrency(n int) SuggesterOption {
	return func(s *Suggester) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewSuggester creates a Suggester backed by the given provider.
func NewSuggester(provider AIProvider, opts ...SuggesterOption) *Suggester {
	s := &Suggester{
		provider:    provider,
		style:       StyleNeutral,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest translates the reference text of every missing path, one provider
// call per language. Cached translations are reused; list leaves are skipped.
// Languages are processed concurrently when WithConcurrency allows it; the
// result is ordered as the report is.
func (s *Suggester) Suggest(ctx context.Context, report CompletenessReport, reference Resolver) (*SuggestResult, error) {
	sourceLang := s.sourceLang
	if sourceLang == "" {
		sourceLang = report.Reference
	}

	var work []LanguageCoverage
	for _, coverage := range report.Languages {
		if len(coverage.Missing) > 0 {
			work = append(work, coverage)
		}
	}

	parts, err := s.suggestAll(ctx, work, func(ctx context.Context, coverage LanguageCoverage) (*SuggestResult, error) {
		return s.suggestLanguage(ctx, report.Reference, sourceLang, coverage, reference)
	})
	if err != nil {
		return nil, err
	}

	result := &SuggestResult{}
	for _, part := range parts {
		result.Suggestions = append(result.Suggestions, part.Suggestions...)
		result.Skipped = append(result.Skipped, part.Skipped...)
		result.TranslatedCount += part.TranslatedCount
		result.CachedCount += part.CachedCount
	}
	return result, nil
}

// suggestLanguage produces the suggestions for one language.
func (s *Suggester) suggestLanguage(ctx context.Context, referenceLang, sourceLang string, coverage LanguageCoverage, reference Resolver) (*SuggestResult, error) {
	result := &SuggestResult{}

	var pending []Suggestion
	for _, path := range coverage.Missing {
		v := reference.Resolve(referenceLang, path)
		if v.Kind != KindText {
			result.Skipped = append(result.Skipped, coverage.Language+":"+path)
			continue
		}
		pending = append(pending, Suggestion{Language: coverage.Language, Path: path, Source: v.Text})
	}

	if BaseLanguage(coverage.Language) == BaseLanguage(sourceLang) {
		// Regional variant of the source: the source text is the suggestion.
		for _, sg := range pending {
			sg.Text = sg.Source
			result.Suggestions = append(result.Suggestions, sg)
		}
		return result, nil
	}

	translated, err := s.translateBatch(ctx, sourceLang, coverage.Language, pending, result)
	if err != nil {
		return nil, fmt.Errorf("suggest %s: %w", coverage.Language, err)
	}
	result.Suggestions = translated
	return result, nil
}

// translateBatch fills Text for each pending suggestion, using the cache where possible.
func (s *Suggester) translateBatch(ctx context.Context, sourceLang, targetLang string, pending []Suggestion, result *SuggestResult) ([]Suggestion, error) {
	byHash, misses := ParallelCacheLookup(s.cache, pending, targetLang)
	for i, sg := range pending {
		if _, ok := byHash[HashText(sg.Source)]; ok {
			pending[i].Cached = true
			result.CachedCount++
		}
	}

	if len(misses) > 0 {
		if s.provider == nil {
			return nil, &ProviderError{Message: "no provider configured"}
		}

		texts := make([]string, len(misses))
		contexts := make([]string, len(misses))
		for i, sg := range misses {
			texts[i] = sg.Source
			contexts[i] = "UI string at " + sg.Path
		}

		translations, err := s.provider.Translate(ctx, TranslateRequest{
			Texts:         texts,
			TargetLang:    targetLang,
			SourceLang:    sourceLang,
			ExcludedTerms: s.excludedTerms,
			Context:       s.context,
			TextContexts:  contexts,
			Glossary:      s.glossary,
			Style:         s.style,
		})
		if err != nil {
			return nil, err
		}
		if len(translations) != len(misses) {
			return nil, &CountMismatchError{Expected: len(misses), Got: len(translations)}
		}

		for i, sg := range misses {
			hash := HashText(sg.Source)
			byHash[hash] = translations[i]
			if s.cache != nil {
				_ = s.cache.Set(CacheKey(hash, targetLang), translations[i]) // Ignore cache set errors
			}
			result.TranslatedCount++
		}
	}

	out := make([]Suggestion, 0, len(pending))
	for _, sg := range pending {
		sg.Text = byHash[HashText(sg.Source)]
		out = append(out, sg)
	}
	return out, nil
}
