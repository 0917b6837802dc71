// Package store loads per-language translation trees and resolves dotted
// paths against them, memoizing every successful resolution.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaguanLabs/linguaswap"
	"github.com/ZaguanLabs/linguaswap/cache"
)

// supplement is a namespace loaded best-effort from its own source.
type supplement struct {
	namespace string
	src       Source
	fallback  Source
}

// Option configures a Store.
type Option func(*Store)

// WithLanguages sets the languages that must load for Initialize to succeed.
// By default every language the source lists is required.
func WithLanguages(langs ...string) Option {
	return func(s *Store) {
		s.required = s.required[:0]
		for _, l := range langs {
			if c := linguaswap.CanonicalLanguage(l); c != "" && !slices.Contains(s.required, c) {
				s.required = append(s.required, c)
			}
		}
	}
}

// WithReferenceLanguage sets the language other languages are audited
// against. Defaults to the first required language.
func WithReferenceLanguage(lang string) Option {
	return func(s *Store) {
		s.reference = linguaswap.CanonicalLanguage(lang)
	}
}

// WithMemo replaces the default in-memory resolved-value memo.
func WithMemo(memo cache.TranslationCache) Option {
	return func(s *Store) {
		if memo != nil {
			s.memo = memo
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSupplement mounts trees from src under namespace in every language.
// Supplements are best-effort: loads are retried, and on failure the tree
// from fallback is mounted instead with a warning.
func WithSupplement(namespace string, src, fallback Source) Option {
	return func(s *Store) {
		s.supplements = append(s.supplements, supplement{namespace: namespace, src: src, fallback: fallback})
	}
}

// Store holds translation trees for a set of languages.
type Store struct {
	src         Source
	required    []string
	reference   string
	memo        cache.TranslationCache
	logger      *slog.Logger
	supplements []supplement

	initMu sync.Mutex

	hookMu   sync.Mutex
	onReload []func()

	mu          sync.RWMutex
	trees       map[string]linguaswap.Tree
	languages   []string
	ready       bool
	loadedAt    time.Time
	supplied    map[string]string // namespace -> "source" | "fallback" | "missing"
	reloadCount int

	lookups    atomic.Uint64
	memoHits   atomic.Uint64
	treeWalks  atomic.Uint64
	fallbacks  atomic.Uint64
	memoErrors atomic.Uint64
}

// New creates a Store reading from src. Call Initialize before resolving.
func New(src Source, opts ...Option) *Store {
	s := &Store{
		src:    src,
		memo:   cache.NewInMemoryCache(0),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads every required language. If any fails it returns a
// *linguaswap.LoadError and the store stays uninitialized. Once it has
// succeeded, further calls do nothing.
func (s *Store) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()
	if ready {
		return nil
	}

	loaded, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.install(loaded)

	s.logger.Info("translations loaded",
		"languages", loaded.languages,
		"reference", loaded.reference,
		"duration", time.Since(loaded.started))
	return nil
}

// Reload re-reads every language and swaps the new trees in at once. The
// memo is cleared and every OnReload callback runs, so renderers holding
// snapshots of the old trees (Renderer.Invalidate) can drop them. On
// failure the current trees stay in place and no callback runs.
func (s *Store) Reload(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	loaded, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.install(loaded)

	s.logger.Info("translations reloaded", "languages", loaded.languages)

	s.hookMu.Lock()
	hooks := slices.Clone(s.onReload)
	s.hookMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return nil
}

// OnReload registers fn to run after every successful Reload.
func (s *Store) OnReload(fn func()) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.onReload = append(s.onReload, fn)
}

type loadResult struct {
	trees     map[string]linguaswap.Tree
	languages []string
	reference string
	supplied  map[string]string
	started   time.Time
}

func (s *Store) load(ctx context.Context) (*loadResult, error) {
	res := &loadResult{
		trees:    make(map[string]linguaswap.Tree),
		supplied: make(map[string]string),
		started:  time.Now(),
	}

	langs := slices.Clone(s.required)
	if len(langs) == 0 {
		listed, err := s.src.Languages(ctx)
		if err != nil {
			return nil, &linguaswap.LoadError{Language: "*", Cause: fmt.Errorf("list languages: %w", err)}
		}
		for _, l := range listed {
			if c := linguaswap.CanonicalLanguage(l); !slices.Contains(langs, c) {
				langs = append(langs, c)
			}
		}
	}
	if len(langs) == 0 {
		return nil, &linguaswap.LoadError{Language: "*", Cause: errors.New("no languages available")}
	}

	res.reference = s.reference
	if res.reference == "" {
		res.reference = langs[0]
	}
	if !slices.Contains(langs, res.reference) {
		return nil, &linguaswap.LoadError{Language: res.reference, Cause: linguaswap.ErrUnsupportedLanguage}
	}

	for _, lang := range langs {
		tree, err := s.src.Load(ctx, lang)
		if err != nil {
			return nil, &linguaswap.LoadError{Language: lang, Cause: err}
		}
		res.trees[lang] = tree
	}

	for _, sup := range s.supplements {
		res.supplied[sup.namespace] = s.mountSupplement(ctx, sup, res.trees)
	}

	res.languages = langs
	return res, nil
}

// mountSupplement loads sup for every language and mounts it. Keys already
// present in a language's own namespace object win over supplied ones.
func (s *Store) mountSupplement(ctx context.Context, sup supplement, trees map[string]linguaswap.Tree) string {
	origin := "source"
	for lang, tree := range trees {
		sub, err := linguaswap.WithRetry(ctx, linguaswap.LoadRetryConfig(), func() (linguaswap.Tree, error) {
			return sup.src.Load(ctx, lang)
		})
		if err != nil {
			s.logger.Warn("supplementary strings unavailable, using built-in fallback",
				"namespace", sup.namespace, "lang", lang, "error", err)
			if sup.fallback == nil {
				origin = "missing"
				continue
			}
			if origin == "source" {
				origin = "fallback"
			}
			if sub, err = sup.fallback.Load(ctx, lang); err != nil {
				s.logger.Warn("no fallback for supplementary strings",
					"namespace", sup.namespace, "lang", lang, "error", err)
				origin = "missing"
				continue
			}
		}

		merged := maps.Clone(sub)
		if own, ok := tree[sup.namespace].(linguaswap.Tree); ok {
			maps.Copy(merged, own)
		}
		mounted := maps.Clone(tree)
		mounted[sup.namespace] = merged
		trees[lang] = mounted
	}
	return origin
}

func (s *Store) install(res *loadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		s.reloadCount++
	}
	s.trees = res.trees
	s.languages = res.languages
	s.reference = res.reference
	s.supplied = res.supplied
	s.loadedAt = time.Now()
	s.ready = true

	if err := s.memo.Clear(); err != nil {
		s.logger.Warn("clearing translation memo failed", "error", err)
	}
}

// Resolve returns the leaf at path for lang. It never fails: on an unknown
// language, an uninitialized store or a path that does not address a leaf it
// logs a warning and returns the path itself as text.
func (s *Store) Resolve(lang, path string) linguaswap.Value {
	s.lookups.Add(1)
	lang = linguaswap.CanonicalLanguage(lang)
	key := linguaswap.MemoKey(lang, path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if raw, ok := s.memo.Get(key); ok {
		var v linguaswap.Value
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			s.memoHits.Add(1)
			return v
		}
	}

	if !s.ready {
		return s.fallback(lang, path, linguaswap.ErrNotInitialized)
	}
	tree, ok := s.trees[lang]
	if !ok {
		return s.fallback(lang, path, linguaswap.ErrUnsupportedLanguage)
	}

	s.treeWalks.Add(1)
	v, err := linguaswap.Lookup(tree, path)
	if err != nil {
		return s.fallback(lang, path, err)
	}

	if data, err := json.Marshal(v); err == nil {
		if err := s.memo.Set(key, string(data)); err != nil {
			s.memoErrors.Add(1)
			s.logger.Debug("memoizing translation failed", "key", path, "lang", lang, "error", err)
		}
	}
	return v
}

func (s *Store) fallback(lang, path string, cause error) linguaswap.Value {
	s.fallbacks.Add(1)
	s.logger.Warn("translation unavailable, showing path", "lang", lang, "path", path, "reason", cause)
	return linguaswap.TextValue(path)
}

// T resolves path for lang and renders it as a string.
func (s *Store) T(lang, path string) string {
	return s.Resolve(lang, path).String()
}

// ClearCache empties the resolved-value memo. Trees are untouched.
func (s *Store) ClearCache() error {
	return s.memo.Clear()
}

// Prepare checks that lang can be switched to. It implements linguaswap.Preparer.
func (s *Store) Prepare(ctx context.Context, lang string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return linguaswap.ErrNotInitialized
	}
	if _, ok := s.trees[linguaswap.CanonicalLanguage(lang)]; !ok {
		return fmt.Errorf("%w: %s", linguaswap.ErrUnsupportedLanguage, lang)
	}
	return nil
}

// Languages returns the loaded languages in load order.
func (s *Store) Languages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.languages)
}

// Reference returns the reference language.
func (s *Store) Reference() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reference
}

// Supports reports whether lang has a loaded tree.
func (s *Store) Supports(lang string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.trees[linguaswap.CanonicalLanguage(lang)]
	return ok
}

// Paths returns every leaf path of lang, sorted.
func (s *Store) Paths(lang string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return linguaswap.Flatten(s.trees[linguaswap.CanonicalLanguage(lang)])
}

// Tree returns the loaded tree for lang. The tree must not be modified.
func (s *Store) Tree(lang string) (linguaswap.Tree, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trees[linguaswap.CanonicalLanguage(lang)]
	return t, ok
}

var (
	_ linguaswap.Resolver = (*Store)(nil)
	_ linguaswap.Preparer = (*Store)(nil)
)
