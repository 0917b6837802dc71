package render

import (
	"context"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/linguaswap"
	"github.com/ZaguanLabs/linguaswap/scheduler"
)

// UnitID is the id the renderer registers under.
const UnitID = "renderer"

// Renderer republishes bound elements when the language changes, touching
// only the elements whose keys resolve differently.
type Renderer struct {
	doc      *Document
	resolver linguaswap.Resolver
	registry *Registry
	cfg      config

	renderMu sync.Mutex // serializes renders

	mu      sync.Mutex
	lang    string
	pending string // target of the render in flight
	prev    linguaswap.Snapshot
	dirty   bool   // the document may not match prev
	epoch   uint64 // bumped by Invalidate
	stats   Stats
}

type job struct {
	node  *html.Node
	key   string
	value linguaswap.Value
}

// New binds every marked element of doc and watches it for insertions and
// removals.
func New(doc *Document, resolver linguaswap.Resolver, opts ...Option) *Renderer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Renderer{
		doc:      doc,
		resolver: resolver,
		registry: NewRegistry(),
		cfg:      cfg,
	}

	var roots []*html.Node
	doc.Read(func(d *goquery.Document) {
		roots = append(roots, d.Nodes...)
	})
	r.bind(roots)
	doc.Observe(r.observe)

	return r
}

// Registry exposes the binding registry.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// Unit returns the renderer's update unit. It depends on the document
// attributes unit so lang and dir are set first.
func (r *Renderer) Unit() scheduler.Registration {
	return scheduler.Registration{
		Priority:     5,
		Dependencies: []string{DocumentAttributesUnitID},
		Update:       r.Update,
	}
}

// Update implements linguaswap.UpdateFunc.
func (r *Renderer) Update(ctx context.Context, ev linguaswap.SwitchEvent) error {
	_, err := r.Render(ctx, ev)
	return err
}

// Prime records that the document currently displays lang, so the first
// switch only touches keys that differ from it.
func (r *Renderer) Prime(lang string) {
	snap, _ := r.snapshot(lang, r.registry.Keys())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lang = lang
	r.prev = snap
	r.dirty = false
}

// Invalidate drops memoized snapshots, e.g. after the translations were
// reloaded. The next render republishes every bound key. It is safe to
// register as a store.Store.OnReload callback.
func (r *Renderer) Invalidate() {
	if r.cfg.snapshots != nil {
		r.cfg.snapshots.Clear()
	}
	r.mu.Lock()
	r.dirty = true
	r.epoch++
	r.mu.Unlock()
}

// Render applies a language switch to the document.
func (r *Renderer) Render(ctx context.Context, ev linguaswap.SwitchEvent) (*RenderReport, error) {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	start := time.Now()
	report := &RenderReport{From: ev.From, To: ev.To}

	// Taken under the document lock so an insertion either sees the new
	// target or is bound early enough to be part of keys below.
	r.doc.Write(func(*goquery.Document) {
		r.mu.Lock()
		r.pending = ev.To
		r.mu.Unlock()
	})

	if pruned := r.registry.Prune(); pruned > 0 {
		r.cfg.logger.Debug("pruned collected bindings", "count", pruned)
		r.mu.Lock()
		r.stats.Pruned += int64(pruned)
		r.mu.Unlock()
	}
	keys := r.registry.Keys()

	r.mu.Lock()
	prev, prevLang, dirty, epoch := r.prev, r.lang, r.dirty, r.epoch
	r.mu.Unlock()

	switch {
	case dirty:
		prev = linguaswap.Snapshot{}
	case prev == nil || prevLang != ev.From:
		prev = linguaswap.Snapshot{}
		if ev.From != "" {
			prev, _ = r.snapshot(ev.From, keys)
		}
	}

	next, cached := r.snapshot(ev.To, keys)
	report.SnapshotCached = cached

	diff := linguaswap.DiffSnapshots(prev, next)
	report.ChangedKeys = diff.NeedsUpdate()

	var jobs []job
	for _, key := range report.ChangedKeys {
		for _, n := range r.registry.Elements(key) {
			jobs = append(jobs, job{node: n, key: key, value: next[key]})
		}
	}

	err := r.apply(ctx, ev.To, jobs, report)

	r.mu.Lock()
	r.stats.Renders++
	r.stats.ElementsUpdated += int64(report.ElementsUpdated)
	r.stats.AttributesUpdated += int64(report.AttributesUpdated)
	r.stats.RejectedValues += int64(len(report.Rejected))
	r.pending = ""
	if err == nil {
		r.lang = ev.To
		r.prev = next
		r.dirty = r.epoch != epoch
	} else {
		r.dirty = true
	}
	r.mu.Unlock()

	if err != nil {
		report.Duration = time.Since(start)
		r.recordDuration(report.Duration)
		return report, err
	}

	if r.cfg.announcer != nil {
		report.Announcement = r.cfg.announcer.Announce(ev.To, report.ElementsUpdated)
	}

	report.Duration = time.Since(start)
	r.recordDuration(report.Duration)

	r.cfg.logger.Debug("rendered language",
		"from", ev.From,
		"to", ev.To,
		"changed_keys", len(report.ChangedKeys),
		"elements", report.ElementsUpdated,
		"batches", report.Batches,
		"duration", report.Duration,
	)
	return report, nil
}

func (r *Renderer) recordDuration(d time.Duration) {
	r.mu.Lock()
	r.stats.LastDuration = d
	r.mu.Unlock()
}

// apply writes jobs in batches, waiting for a frame between batches and for
// the group delay after every full group.
func (r *Renderer) apply(ctx context.Context, lang string, jobs []job, report *RenderReport) error {
	touched := make(map[*html.Node]struct{})
	defer func() { report.ElementsUpdated = len(touched) }()

	for i := 0; i < len(jobs); i += r.cfg.batchSize {
		if i > 0 {
			if err := r.cfg.frames.Next(ctx); err != nil {
				return err
			}
			if report.Batches%r.cfg.groupSize == 0 {
				if err := sleep(ctx, r.cfg.groupDelay); err != nil {
					return err
				}
			}
		}

		end := min(i+r.cfg.batchSize, len(jobs))
		r.doc.Write(func(*goquery.Document) {
			for _, j := range jobs[i:end] {
				r.applyJob(j, report, touched)
			}
		})
		report.Batches++
	}
	return nil
}

func (r *Renderer) applyJob(j job, report *RenderReport, touched map[*html.Node]struct{}) {
	b, ok := r.registry.Lookup(j.node)
	if !ok {
		return
	}

	if b.Text == j.key && setElementText(j.node, j.value.String()) {
		touched[j.node] = struct{}{}
	}

	for attr, key := range b.Attrs {
		if key != j.key {
			continue
		}
		clean, ok := SanitizeAttribute(j.value.String())
		if !ok {
			report.Rejected = append(report.Rejected, key+"@"+attr)
			r.cfg.logger.Warn("translated attribute rejected", "key", key, "attribute", attr)
			continue
		}
		if setAttribute(j.node, attr, clean) {
			report.AttributesUpdated++
			touched[j.node] = struct{}{}
		}
	}
}

// snapshot resolves keys for lang, memoized by language and key set.
func (r *Renderer) snapshot(lang string, keys []string) (linguaswap.Snapshot, bool) {
	memoKey := "snapshot:" + lang + ":" + linguaswap.Fingerprint(keys)

	if r.cfg.snapshots != nil {
		if snap, ok := r.cfg.snapshots.Get(memoKey); ok {
			r.mu.Lock()
			r.stats.SnapshotHits++
			r.mu.Unlock()
			return snap, true
		}
	}

	snap := make(linguaswap.Snapshot, len(keys))
	for _, key := range keys {
		snap[key] = r.resolver.Resolve(lang, key)
	}

	if r.cfg.snapshots != nil {
		r.mu.Lock()
		r.stats.SnapshotMisses++
		r.mu.Unlock()
		if err := r.cfg.snapshots.Set(memoKey, snap); err != nil {
			r.cfg.logger.Warn("snapshot not memoized", "language", lang, "error", err)
		}
	}
	return snap, false
}

// bind registers the marked elements below roots and returns them.
func (r *Renderer) bind(roots []*html.Node) []*html.Node {
	type found struct {
		node    *html.Node
		binding Binding
		errs    []error
	}
	var marked []found

	r.doc.Read(func(*goquery.Document) {
		for _, root := range roots {
			walkElements(root, func(n *html.Node) {
				if !hasMarker(n) {
					return
				}
				b, errs := parseBinding(n)
				marked = append(marked, found{node: n, binding: b, errs: errs})
			})
		}
	})

	var bound []*html.Node
	rejected := 0
	for _, f := range marked {
		for _, err := range f.errs {
			r.cfg.logger.Warn("binding rejected", "error", err)
			rejected++
		}
		if f.binding.Empty() {
			continue
		}
		r.registry.Bind(f.node, f.binding)
		bound = append(bound, f.node)
	}

	if rejected > 0 {
		r.mu.Lock()
		r.stats.RejectedBindings += int64(rejected)
		r.mu.Unlock()
	}
	return bound
}

// observe keeps the registry in step with structural mutations. Inserted
// elements are translated right away into the language being rendered, or
// the current one when no render is running.
func (r *Renderer) observe(m Mutation) {
	if len(m.Removed) > 0 {
		var detached []*html.Node
		r.doc.Read(func(*goquery.Document) {
			for _, root := range m.Removed {
				walkElements(root, func(n *html.Node) {
					detached = append(detached, n)
				})
			}
		})
		for _, n := range detached {
			r.registry.Unbind(n)
		}
	}

	if len(m.Added) == 0 {
		return
	}
	bound := r.bind(m.Added)
	if len(bound) == 0 {
		return
	}

	report := &RenderReport{}
	touched := make(map[*html.Node]struct{})
	r.doc.Write(func(*goquery.Document) {
		lang := r.target()
		if lang == "" {
			return
		}
		for _, n := range bound {
			b, ok := r.registry.Lookup(n)
			if !ok {
				continue
			}
			for _, key := range b.Keys() {
				r.applyJob(job{node: n, key: key, value: r.resolver.Resolve(lang, key)}, report, touched)
			}
		}
	})

	r.mu.Lock()
	r.stats.InsertUpdates += int64(len(touched))
	r.stats.RejectedValues += int64(len(report.Rejected))
	r.mu.Unlock()
}

// target returns the language inserted elements should display.
func (r *Renderer) target() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != "" {
		return r.pending
	}
	return r.lang
}

// Language returns the language the document was last rendered in.
func (r *Renderer) Language() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lang
}

// Status returns the renderer's current state.
func (r *Renderer) Status() Status {
	return Status{
		Language:      r.Language(),
		BoundElements: r.registry.Len(),
		BoundKeys:     len(r.registry.Keys()),
	}
}

// Statistics returns cumulative counters.
func (r *Renderer) Statistics() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Close cancels any pending announcement clear.
func (r *Renderer) Close() {
	if r.cfg.announcer != nil {
		r.cfg.announcer.Stop()
	}
}
