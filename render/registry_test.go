package render

import (
	"runtime"
	"slices"
	"testing"

	"golang.org/x/net/html"
)

func element(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag}
}

func TestRegistry_BindAndLookup(t *testing.T) {
	r := NewRegistry()
	a, b := element("p"), element("img")

	r.Bind(a, Binding{Text: "nav.home"})
	r.Bind(b, Binding{Attrs: map[string]string{"alt": "nav.home", "title": "nav.logo"}})

	if got := r.Elements("nav.home"); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Elements(nav.home) = %v", got)
	}
	if got := r.Keys(); !slices.Equal(got, []string{"nav.home", "nav.logo"}) {
		t.Errorf("Keys = %v", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d", r.Len())
	}

	if binding, ok := r.Lookup(b); !ok || binding.Attrs["title"] != "nav.logo" {
		t.Errorf("Lookup = %+v, %v", binding, ok)
	}
}

func TestRegistry_RebindReplaces(t *testing.T) {
	r := NewRegistry()
	n := element("span")

	r.Bind(n, Binding{Text: "old"})
	r.Bind(n, Binding{Text: "new"})

	if len(r.Elements("old")) != 0 {
		t.Error("old key should no longer reference the element")
	}
	if len(r.Elements("new")) != 1 {
		t.Error("new key should reference the element")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestRegistry_Unbind(t *testing.T) {
	r := NewRegistry()
	n := element("span")
	r.Bind(n, Binding{Text: "k"})

	if !r.Unbind(n) {
		t.Fatal("Unbind should report a bound element")
	}
	if r.Unbind(n) {
		t.Error("second Unbind should report false")
	}
	if len(r.Keys()) != 0 || r.Len() != 0 {
		t.Errorf("registry not empty: keys=%v len=%d", r.Keys(), r.Len())
	}
}

func TestRegistry_EmptyBindingIgnored(t *testing.T) {
	r := NewRegistry()
	r.Bind(element("p"), Binding{})
	r.Bind(nil, Binding{Text: "k"})

	if r.Len() != 0 {
		t.Errorf("Len = %d", r.Len())
	}
}

//go:noinline
func bindDetached(r *Registry) {
	r.Bind(element("p"), Binding{Text: "gone"})
}

func TestRegistry_DoesNotRetainElements(t *testing.T) {
	r := NewRegistry()
	kept := element("p")
	r.Bind(kept, Binding{Text: "kept"})
	bindDetached(r)

	runtime.GC()
	runtime.GC()

	if got := r.Elements("gone"); len(got) != 0 {
		t.Errorf("collected element still returned: %v", got)
	}
	if pruned := r.Prune(); pruned != 1 {
		t.Errorf("Expected 1 pruned entry, got %d", pruned)
	}
	if got := r.Elements("kept"); len(got) != 1 || got[0] != kept {
		t.Errorf("live element lost: %v", got)
	}
	runtime.KeepAlive(kept)
}
