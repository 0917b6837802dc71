package render

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaguanLabs/linguaswap"
	"github.com/ZaguanLabs/linguaswap/cache"
)

var quiet = slog.New(slog.DiscardHandler)

// mapResolver resolves from flat per-language maps.
type mapResolver map[string]map[string]string

func (m mapResolver) Resolve(lang, path string) linguaswap.Value {
	if v, ok := m[lang][path]; ok {
		return linguaswap.TextValue(v)
	}
	return linguaswap.TextValue(path)
}

// countingFrames returns immediately and counts frame boundaries.
type countingFrames struct {
	n atomic.Int64
}

func (f *countingFrames) Next(ctx context.Context) error {
	f.n.Add(1)
	return ctx.Err()
}

var testTranslations = mapResolver{
	"zh": {
		"greeting":    "你好",
		"nav.home":    "首页",
		"brand":       "NFC 名片",
		"close.label": "关闭",
		"bad":         "正常",
	},
	"en": {
		"greeting":    "Hello",
		"nav.home":    "Home",
		"brand":       "NFC 名片",
		"close.label": "Close",
		"bad":         "javascript:alert(1)",
	},
}

func newTestRenderer(t *testing.T, page string, opts ...Option) (*Document, *Renderer, *countingFrames) {
	t.Helper()
	doc, err := ParseHTML(page)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	frames := &countingFrames{}
	opts = append([]Option{WithLogger(quiet), WithFrames(frames), WithGroupDelay(0)}, opts...)
	r := New(doc, testTranslations, opts...)
	t.Cleanup(r.Close)
	return doc, r, frames
}

func switchEvent(from, to string) linguaswap.SwitchEvent {
	return linguaswap.SwitchEvent{From: from, To: to, RequestedAt: time.Now()}
}

func TestRenderer_ReplacesChangedTextOnce(t *testing.T) {
	doc, r, _ := newTestRenderer(t, `<html><body>
		<h1 id="greet" data-i18n="greeting"> 你好 </h1>
		<span id="brand" data-i18n="brand">NFC 名片</span>
	</body></html>`)
	r.Prime("zh")

	report, err := r.Render(context.Background(), switchEvent("zh", "en"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if got := doc.Text("#greet"); got != " Hello " {
		t.Errorf("greeting = %q, want %q", got, " Hello ")
	}
	if !slices.Equal(report.ChangedKeys, []string{"greeting"}) {
		t.Errorf("ChangedKeys = %v", report.ChangedKeys)
	}
	if report.ElementsUpdated != 1 {
		t.Errorf("Expected 1 element updated, got %d", report.ElementsUpdated)
	}

	again, err := r.Render(context.Background(), switchEvent("en", "en"))
	if err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
	if again.ElementsUpdated != 0 || len(again.ChangedKeys) != 0 {
		t.Errorf("re-rendering the same language should touch nothing: %+v", again)
	}
}

func TestRenderer_FirstSwitchWithoutPrime(t *testing.T) {
	doc, r, _ := newTestRenderer(t, `<html><body><p id="home" data-i18n="nav.home">首页</p></body></html>`)

	if _, err := r.Render(context.Background(), switchEvent("", "en")); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := doc.Text("#home"); got != "Home" {
		t.Errorf("home = %q", got)
	}
	if r.Language() != "en" {
		t.Errorf("Language = %q", r.Language())
	}
}

func TestRenderer_KeepsNestedElements(t *testing.T) {
	doc, r, _ := newTestRenderer(t, `<html><body>
		<div id="outer" data-i18n="greeting">你好 <b id="inner" data-i18n="nav.home">首页</b></div>
	</body></html>`)
	r.Prime("zh")

	if _, err := r.Render(context.Background(), switchEvent("zh", "en")); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := doc.Text("#inner"); got != "Home" {
		t.Errorf("inner = %q", got)
	}
	if got := doc.Text("#outer"); got != "Hello Home" {
		t.Errorf("outer = %q", got)
	}
}

func TestRenderer_Attributes(t *testing.T) {
	doc, r, _ := newTestRenderer(t, `<html><body>
		<button id="close" data-i18n-attr='{"aria-label":"close.label","title":"close.label","onclick":"close.label"}'>x</button>
		<img id="bad" data-i18n-attr='{"alt":"bad"}' alt="正常">
	</body></html>`)
	r.Prime("zh")

	if got := r.Statistics().RejectedBindings; got != 1 {
		t.Errorf("Expected the onclick binding to be rejected, got %d", got)
	}

	report, err := r.Render(context.Background(), switchEvent("zh", "en"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if v, _ := doc.Attr("#close", "aria-label"); v != "Close" {
		t.Errorf("aria-label = %q", v)
	}
	if v, _ := doc.Attr("#close", "title"); v != "Close" {
		t.Errorf("title = %q", v)
	}
	if _, ok := doc.Attr("#close", "onclick"); ok {
		t.Error("onclick must never be written")
	}
	if v, _ := doc.Attr("#bad", "alt"); v != "正常" {
		t.Errorf("unsafe value must not replace alt, got %q", v)
	}
	if !slices.Equal(report.Rejected, []string{"bad@alt"}) {
		t.Errorf("Rejected = %v", report.Rejected)
	}
	if report.AttributesUpdated != 2 {
		t.Errorf("AttributesUpdated = %d", report.AttributesUpdated)
	}
}

func TestRenderer_InvalidAttributeMarker(t *testing.T) {
	_, r, _ := newTestRenderer(t, `<html><body><p data-i18n-attr="{not json">x</p></body></html>`)

	if r.Registry().Len() != 0 {
		t.Errorf("invalid marker should not bind, Len = %d", r.Registry().Len())
	}
	if r.Statistics().RejectedBindings != 1 {
		t.Errorf("RejectedBindings = %d", r.Statistics().RejectedBindings)
	}
}

func TestRenderer_InsertedElementsAreTranslated(t *testing.T) {
	doc, r, _ := newTestRenderer(t, `<html><body><ul id="menu"></ul></body></html>`)
	r.Prime("en")

	if _, err := doc.Append("#menu", `<li id="item" data-i18n="nav.home">首页</li>`); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if got := doc.Text("#item"); got != "Home" {
		t.Errorf("inserted element = %q, want Home", got)
	}
	if r.Registry().Len() != 1 {
		t.Errorf("Expected 1 binding, got %d", r.Registry().Len())
	}
	if r.Statistics().InsertUpdates != 1 {
		t.Errorf("InsertUpdates = %d", r.Statistics().InsertUpdates)
	}
}

func TestRenderer_InsertedDuringRenderFollowsTarget(t *testing.T) {
	var doc *Document
	inserted := false
	frames := FrameFunc(func(ctx context.Context) error {
		if inserted {
			return nil
		}
		inserted = true
		done := make(chan error, 1)
		go func() {
			_, err := doc.Append("#menu", `<p id="late" data-i18n="nav.home">首页</p>`)
			done <- err
		}()
		return <-done
	})

	doc, r, _ := newTestRenderer(t, `<html><body>
		<p id="a" data-i18n="greeting">你好</p><p id="b" data-i18n="close.label">关闭</p>
		<div id="menu"></div>
	</body></html>`, WithBatchSize(1), WithFrames(frames))
	r.Prime("zh")

	if _, err := r.Render(context.Background(), switchEvent("zh", "en")); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !inserted {
		t.Fatal("expected the element to be inserted between batches")
	}
	if got := doc.Text("#late"); got != "Home" {
		t.Errorf("element inserted during the render = %q, want Home", got)
	}

	if _, err := r.Render(context.Background(), switchEvent("en", "zh")); err != nil {
		t.Fatalf("Render back failed: %v", err)
	}
	if got := doc.Text("#late"); got != "首页" {
		t.Errorf("element inserted during the earlier render = %q after switching back, want 首页", got)
	}
}

func TestRenderer_RemovedElementsAreUnbound(t *testing.T) {
	doc, r, _ := newTestRenderer(t, `<html><body>
		<section id="panel"><p data-i18n="greeting">你好</p><p data-i18n="nav.home">首页</p></section>
		<p id="keep" data-i18n="greeting">你好</p>
	</body></html>`)

	if r.Registry().Len() != 3 {
		t.Fatalf("Expected 3 bindings, got %d", r.Registry().Len())
	}

	doc.Remove("#panel")

	if r.Registry().Len() != 1 {
		t.Errorf("Expected 1 binding after removal, got %d", r.Registry().Len())
	}
	if keys := r.Registry().Keys(); !slices.Equal(keys, []string{"greeting"}) {
		t.Errorf("Keys = %v", keys)
	}
}

func TestRenderer_Batches(t *testing.T) {
	var page strings.Builder
	page.WriteString("<html><body>")
	for range 5 {
		page.WriteString(`<p data-i18n="greeting">你好</p>`)
	}
	page.WriteString("</body></html>")

	_, r, frames := newTestRenderer(t, page.String(), WithBatchSize(2))
	r.Prime("zh")

	report, err := r.Render(context.Background(), switchEvent("zh", "en"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if report.Batches != 3 {
		t.Errorf("Expected 3 batches, got %d", report.Batches)
	}
	if got := frames.n.Load(); got != 2 {
		t.Errorf("Expected a frame between each pair of batches (2), got %d", got)
	}
	if report.ElementsUpdated != 5 {
		t.Errorf("ElementsUpdated = %d", report.ElementsUpdated)
	}
}

func TestRenderer_CanceledMidway(t *testing.T) {
	doc, r, _ := newTestRenderer(t, `<html><body>
		<p id="a" data-i18n="greeting">你好</p><p id="b" data-i18n="nav.home">首页</p>
	</body></html>`, WithBatchSize(1), WithFrames(FrameFunc(func(ctx context.Context) error {
		return context.Canceled
	})))
	r.Prime("zh")

	report, err := r.Render(context.Background(), switchEvent("zh", "en"))
	if err == nil {
		t.Fatal("Expected the frame error to be returned")
	}
	if report.Batches != 1 {
		t.Errorf("Expected 1 applied batch, got %d", report.Batches)
	}
	if doc.Text("#b") != "首页" {
		t.Error("second batch should not have been applied")
	}
	if r.Language() != "zh" {
		t.Errorf("an interrupted render must not change the language, got %q", r.Language())
	}
}

func TestRenderer_SnapshotCache(t *testing.T) {
	snapshots := cache.NewBounded[linguaswap.Snapshot](cache.WithCleanupInterval(0), cache.WithLogger(quiet))
	t.Cleanup(func() { snapshots.Close() })

	_, r, _ := newTestRenderer(t, `<html><body><p data-i18n="greeting">你好</p></body></html>`,
		WithSnapshotCache(snapshots))
	r.Prime("zh")

	first, err := r.Render(context.Background(), switchEvent("zh", "en"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if first.SnapshotCached {
		t.Error("first render cannot hit the snapshot cache")
	}

	if _, err := r.Render(context.Background(), switchEvent("en", "zh")); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	again, err := r.Render(context.Background(), switchEvent("zh", "en"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !again.SnapshotCached {
		t.Error("repeated switch should reuse the memoized snapshot")
	}
	if again.ElementsUpdated != 1 {
		t.Errorf("ElementsUpdated = %d", again.ElementsUpdated)
	}

	r.Invalidate()
	if snapshots.Len() != 0 {
		t.Errorf("Invalidate should clear snapshots, Len = %d", snapshots.Len())
	}
}

func TestRenderer_Unit(t *testing.T) {
	_, r, _ := newTestRenderer(t, `<html><body></body></html>`)
	reg := r.Unit()

	if reg.Priority != 5 {
		t.Errorf("Priority = %d", reg.Priority)
	}
	if !slices.Equal(reg.Dependencies, []string{DocumentAttributesUnitID}) {
		t.Errorf("Dependencies = %v", reg.Dependencies)
	}
	if reg.Update == nil {
		t.Error("Update must be set")
	}
}

func TestRenderer_Status(t *testing.T) {
	_, r, _ := newTestRenderer(t, `<html><body>
		<p data-i18n="greeting">你好</p><img data-i18n-attr='{"alt":"brand"}'>
	</body></html>`)
	r.Prime("zh")

	st := r.Status()
	if st.Language != "zh" || st.BoundElements != 2 || st.BoundKeys != 2 {
		t.Errorf("Status = %+v", st)
	}
}
