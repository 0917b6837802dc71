package store

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/go-redis/redismock/v9"

	"github.com/ZaguanLabs/linguaswap"
	"github.com/ZaguanLabs/linguaswap/cache"
)

var quiet = slog.New(slog.DiscardHandler)

func greetingSource() MapSource {
	return MapSource{
		"zh": {"a": linguaswap.Tree{"b": "你好"}, "nav": linguaswap.Tree{"home": "首页"}},
		"en": {"a": linguaswap.Tree{"b": "Hello"}, "nav": linguaswap.Tree{"home": "Home", "about": "About"}},
	}
}

func newTestStore(t *testing.T, src Source, opts ...Option) *Store {
	t.Helper()
	s := New(src, append([]Option{WithLogger(quiet)}, opts...)...)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s
}

// countingSource counts Load calls.
type countingSource struct {
	Source
	loads atomic.Int32
}

func (c *countingSource) Load(ctx context.Context, lang string) (linguaswap.Tree, error) {
	c.loads.Add(1)
	return c.Source.Load(ctx, lang)
}

func TestStore_Resolve(t *testing.T) {
	s := newTestStore(t, greetingSource(), WithLanguages("zh", "en"))

	tests := []struct {
		lang, path, want string
	}{
		{"zh", "a.b", "你好"},
		{"en", "a.b", "Hello"},
		{"EN", "nav.home", "Home"},
		{"zh", "nav.about", "nav.about"},
		{"fr", "a.b", "a.b"},
		{"en", "nav", "nav"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+":"+tt.path, func(t *testing.T) {
			if got := s.T(tt.lang, tt.path); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.lang, tt.path, got, tt.want)
			}
		})
	}

	if got := s.Statistics().Fallbacks; got != 3 {
		t.Errorf("Fallbacks = %d, want 3", got)
	}
}

func TestStore_ResolveMemoized(t *testing.T) {
	s := newTestStore(t, greetingSource())

	first := s.Resolve("en", "a.b")
	second := s.Resolve("en", "a.b")
	if !first.Equal(second) {
		t.Fatalf("Resolve is not idempotent: %+v vs %+v", first, second)
	}

	stats := s.Statistics()
	if stats.TreeWalks != 1 || stats.MemoHits != 1 {
		t.Errorf("expected one walk and one memo hit, got %+v", stats)
	}

	if err := s.ClearCache(); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	s.Resolve("en", "a.b")
	if got := s.Statistics().TreeWalks; got != 2 {
		t.Errorf("TreeWalks after ClearCache = %d, want 2", got)
	}
}

func TestStore_ResolveList(t *testing.T) {
	src := MapSource{"en": {"tips": []string{"Lock your card", "Use a PIN"}}}
	s := newTestStore(t, src)

	v := s.Resolve("en", "tips")
	if v.Kind != linguaswap.KindList || len(v.List) != 2 {
		t.Fatalf("expected a two item list, got %+v", v)
	}
	// Served from the memo this time.
	if got := s.T("en", "tips"); got != "Lock your card, Use a PIN" {
		t.Errorf("T = %q", got)
	}
}

func TestStore_Uninitialized(t *testing.T) {
	s := New(greetingSource(), WithLogger(quiet))

	if got := s.T("en", "a.b"); got != "a.b" {
		t.Errorf("uninitialized store should return the path, got %q", got)
	}
	if err := s.Prepare(context.Background(), "en"); !errors.Is(err, linguaswap.ErrNotInitialized) {
		t.Errorf("Prepare error = %v, want ErrNotInitialized", err)
	}
}

func TestStore_InitializeFailure(t *testing.T) {
	s := New(greetingSource(), WithLogger(quiet), WithLanguages("en", "de"))

	err := s.Initialize(context.Background())
	var loadErr *linguaswap.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if loadErr.Language != "de" || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected LoadError: %v", loadErr)
	}
	if s.Status().Initialized {
		t.Error("store must stay uninitialized after a failed load")
	}
}

func TestStore_InitializeIdempotent(t *testing.T) {
	src := &countingSource{Source: greetingSource()}
	s := newTestStore(t, src)

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}
	if got := src.loads.Load(); got != 2 {
		t.Errorf("Load called %d times, want 2", got)
	}
}

func TestStore_ReferenceLanguage(t *testing.T) {
	s := New(greetingSource(), WithLogger(quiet), WithReferenceLanguage("ja"))
	if err := s.Initialize(context.Background()); !errors.Is(err, linguaswap.ErrUnsupportedLanguage) {
		t.Errorf("unknown reference language should fail, got %v", err)
	}

	s = newTestStore(t, greetingSource())
	if s.Reference() != "en" {
		t.Errorf("default reference = %q, want first listed language en", s.Reference())
	}
}

func TestStore_ValidateCompleteness(t *testing.T) {
	s := newTestStore(t, greetingSource(), WithLanguages("en", "zh"))

	report := s.ValidateCompleteness()
	if report.Reference != "en" || report.TotalPaths != 3 {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if len(report.Languages) != 1 {
		t.Fatalf("expected one audited language, got %d", len(report.Languages))
	}

	zh := report.Languages[0]
	if zh.Language != "zh" || !slices.Equal(zh.Missing, []string{"nav.about"}) {
		t.Errorf("unexpected coverage: %+v", zh)
	}
	if zh.Coverage != 66.7 {
		t.Errorf("Coverage = %v, want 66.7", zh.Coverage)
	}
	if report.Complete() {
		t.Error("report should not be complete")
	}
}

func TestStore_Reload(t *testing.T) {
	src := greetingSource()
	s := newTestStore(t, src, WithLanguages("en", "zh"))
	s.T("en", "a.b")

	src["en"] = linguaswap.Tree{"a": linguaswap.Tree{"b": "Hi"}}
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if got := s.T("en", "a.b"); got != "Hi" {
		t.Errorf("after Reload T = %q, want Hi", got)
	}
	if s.Status().Reloads != 1 {
		t.Errorf("Reloads = %d, want 1", s.Status().Reloads)
	}

	delete(src, "zh")
	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("Reload should fail when a language disappears")
	}
	if got := s.T("zh", "a.b"); got != "你好" {
		t.Errorf("failed Reload must keep the old trees, got %q", got)
	}
}

func TestStore_OnReload(t *testing.T) {
	src := greetingSource()
	s := newTestStore(t, src, WithLanguages("en", "zh"))

	calls := 0
	s.OnReload(func() { calls++ })

	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 reload callback, got %d", calls)
	}

	delete(src, "zh")
	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("Reload should fail when a language disappears")
	}
	if calls != 1 {
		t.Errorf("a failed Reload must not run callbacks, got %d calls", calls)
	}
}

func TestStore_Prepare(t *testing.T) {
	s := newTestStore(t, greetingSource())

	if err := s.Prepare(context.Background(), "zh"); err != nil {
		t.Errorf("Prepare(zh) failed: %v", err)
	}
	if err := s.Prepare(context.Background(), "ko"); !errors.Is(err, linguaswap.ErrUnsupportedLanguage) {
		t.Errorf("Prepare(ko) = %v, want ErrUnsupportedLanguage", err)
	}
	if !s.Supports("ZH") || s.Supports("ko") {
		t.Error("Supports should canonicalize language codes")
	}
	if got := s.Paths("en"); !slices.Equal(got, []string{"a.b", "nav.about", "nav.home"}) {
		t.Errorf("Paths(en) = %v", got)
	}
}

func TestStore_RedisMemo(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	memo := cache.NewRedisCacheFromClient(db, 0, "")

	mock.ExpectScan(0, cache.DefaultRedisPrefix+"*", 100).SetVal(nil, 0)
	mock.ExpectGet(cache.DefaultRedisPrefix + "en\x00a.b").RedisNil()
	mock.ExpectSet(cache.DefaultRedisPrefix+"en\x00a.b", `{"kind":0,"text":"Hello"}`, 0).SetVal("OK")
	mock.ExpectGet(cache.DefaultRedisPrefix + "en\x00a.b").SetVal(`{"kind":0,"text":"Hello"}`)

	s := newTestStore(t, greetingSource(), WithMemo(memo))

	if got := s.T("en", "a.b"); got != "Hello" {
		t.Fatalf("first T = %q", got)
	}
	if got := s.T("en", "a.b"); got != "Hello" {
		t.Fatalf("second T = %q", got)
	}
	if s.Statistics().MemoHits != 1 {
		t.Errorf("second lookup should be served by redis")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

// failingSource never loads.
type failingSource struct{}

func (failingSource) Languages(ctx context.Context) ([]string, error) {
	return nil, errors.New("offline")
}
func (failingSource) Load(ctx context.Context, lang string) (linguaswap.Tree, error) {
	return nil, errors.New("offline")
}

func TestStore_SupplementFallback(t *testing.T) {
	src := greetingSource()
	src["en"]["a11y"] = linguaswap.Tree{"loading": "Please wait"}

	s := newTestStore(t, src,
		WithSupplement(AccessibilityNamespace, failingSource{}, AccessibilityFallback()))

	if got := s.T("zh", "a11y.skipToContent"); got != "跳到主要内容" {
		t.Errorf("zh fallback = %q", got)
	}
	if got := s.T("en", "a11y.loading"); got != "Please wait" {
		t.Errorf("own strings must win over supplied ones, got %q", got)
	}
	if got := s.T("en", "a11y.languageChanged"); got != "Language changed to {language}. {count} elements updated." {
		t.Errorf("en fallback = %q", got)
	}
	if s.Status().Supplements[AccessibilityNamespace] != "fallback" {
		t.Errorf("Status should report the fallback: %+v", s.Status().Supplements)
	}
}

func TestStore_SupplementSource(t *testing.T) {
	supplied := MapSource{
		"en": {"languageChanged": "Now in {language}"},
		"zh": {"languageChanged": "现在是{language}"},
	}
	s := newTestStore(t, greetingSource(), WithSupplement("a11y", supplied, nil))

	if got := s.T("zh", "a11y.languageChanged"); got != "现在是{language}" {
		t.Errorf("T = %q", got)
	}
	if s.Status().Supplements["a11y"] != "source" {
		t.Errorf("Supplements = %v", s.Status().Supplements)
	}
}
