package render

import (
	"cmp"
	"slices"
	"sync"
	"weak"

	"golang.org/x/net/html"
)

// Binding lists the translation keys an element displays.
type Binding struct {
	Text  string            // Key for the element's text, if any
	Attrs map[string]string // Attribute name -> key
}

// Keys returns every key the binding refers to.
func (b Binding) Keys() []string {
	var keys []string
	if b.Text != "" {
		keys = append(keys, b.Text)
	}
	for _, k := range b.Attrs {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Empty reports whether the binding refers to no key.
func (b Binding) Empty() bool {
	return b.Text == "" && len(b.Attrs) == 0
}

type elementRef = weak.Pointer[html.Node]

type boundElement struct {
	binding Binding
	seq     uint64
}

// Registry maps translation keys to the elements displaying them. Elements
// are held through weak pointers, so the registry never keeps a detached
// node alive.
type Registry struct {
	mu        sync.Mutex
	byKey     map[string]map[elementRef]struct{}
	byElement map[elementRef]boundElement
	seq       uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:     make(map[string]map[elementRef]struct{}),
		byElement: make(map[elementRef]boundElement),
	}
}

// Bind records b for n, replacing any previous binding of n.
func (r *Registry) Bind(n *html.Node, b Binding) {
	if n == nil || b.Empty() {
		return
	}
	ref := weak.Make(n)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unbindLocked(ref)
	r.seq++
	r.byElement[ref] = boundElement{binding: b, seq: r.seq}
	for _, key := range b.Keys() {
		set, ok := r.byKey[key]
		if !ok {
			set = make(map[elementRef]struct{})
			r.byKey[key] = set
		}
		set[ref] = struct{}{}
	}
}

// Unbind forgets n and reports whether it was bound.
func (r *Registry) Unbind(n *html.Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unbindLocked(weak.Make(n))
}

func (r *Registry) unbindLocked(ref elementRef) bool {
	bound, ok := r.byElement[ref]
	if !ok {
		return false
	}
	delete(r.byElement, ref)
	for _, key := range bound.binding.Keys() {
		if set := r.byKey[key]; set != nil {
			delete(set, ref)
			if len(set) == 0 {
				delete(r.byKey, key)
			}
		}
	}
	return true
}

// Lookup returns the binding of n.
func (r *Registry) Lookup(n *html.Node) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bound, ok := r.byElement[weak.Make(n)]
	return bound.binding, ok
}

// Elements returns the live elements bound to key, in binding order.
func (r *Registry) Elements(key string) []*html.Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	type ordered struct {
		node *html.Node
		seq  uint64
	}
	var live []ordered
	for ref := range r.byKey[key] {
		if n := ref.Value(); n != nil {
			live = append(live, ordered{node: n, seq: r.byElement[ref].seq})
		}
	}
	slices.SortFunc(live, func(a, b ordered) int {
		return cmp.Compare(a.seq, b.seq)
	})

	nodes := make([]*html.Node, len(live))
	for i, o := range live {
		nodes[i] = o.node
	}
	return nodes
}

// Keys returns every bound key, sorted.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of bound elements, including collected ones not yet pruned.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byElement)
}

// Prune drops entries whose element has been garbage collected and returns
// how many were dropped.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for ref := range r.byElement {
		if ref.Value() == nil {
			r.unbindLocked(ref)
			pruned++
		}
	}
	return pruned
}
