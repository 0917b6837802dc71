package render

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Mutation records the nodes attached or detached by one structural change.
// Only the roots of inserted or removed subtrees are listed.
type Mutation struct {
	Added   []*html.Node
	Removed []*html.Node
}

// Document is a mutex-guarded HTML document. Structural changes made with
// Append and Remove are reported to observers after the lock is released.
type Document struct {
	mu  sync.Mutex
	doc *goquery.Document

	obsMu     sync.Mutex
	observers []func(Mutation)
}

// ParseDocument parses a complete HTML document.
func ParseDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseHTML parses a complete HTML document from a string.
func ParseHTML(content string) (*Document, error) {
	return ParseDocument(strings.NewReader(content))
}

// Observe registers fn to receive every structural mutation.
func (d *Document) Observe(fn func(Mutation)) {
	d.obsMu.Lock()
	d.observers = append(d.observers, fn)
	d.obsMu.Unlock()
}

func (d *Document) notify(m Mutation) {
	if len(m.Added) == 0 && len(m.Removed) == 0 {
		return
	}
	d.obsMu.Lock()
	observers := slices.Clone(d.observers)
	d.obsMu.Unlock()

	for _, fn := range observers {
		fn(m)
	}
}

// Append parses fragment in the context of every element matching selector
// and appends the result as its last children. It returns the number of
// top-level nodes inserted.
func (d *Document) Append(selector, fragment string) (int, error) {
	var m Mutation

	d.mu.Lock()
	targets := d.doc.Find(selector).Nodes
	for _, target := range targets {
		nodes, err := html.ParseFragment(strings.NewReader(fragment), target)
		if err != nil {
			d.mu.Unlock()
			d.notify(m)
			return len(m.Added), fmt.Errorf("failed to parse fragment: %w", err)
		}
		for _, n := range nodes {
			target.AppendChild(n)
			m.Added = append(m.Added, n)
		}
	}
	d.mu.Unlock()

	d.notify(m)
	return len(m.Added), nil
}

// Remove detaches every element matching selector and returns how many.
func (d *Document) Remove(selector string) int {
	d.mu.Lock()
	sel := d.doc.Find(selector)
	removed := append([]*html.Node(nil), sel.Nodes...)
	sel.Remove()
	d.mu.Unlock()

	d.notify(Mutation{Removed: removed})
	return len(removed)
}

// SetAttr sets an attribute on every element matching selector.
func (d *Document) SetAttr(selector, name, value string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel := d.doc.Find(selector)
	sel.SetAttr(name, value)
	return sel.Length()
}

// Text returns the combined text of the elements matching selector.
func (d *Document) Text(selector string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector).Text()
}

// Attr returns an attribute of the first element matching selector.
func (d *Document) Attr(selector, name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector).First().Attr(name)
}

// HTML serializes the document.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out, err := d.doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize HTML: %w", err)
	}
	return out, nil
}

// Read calls fn with the document locked. fn must not modify it.
func (d *Document) Read(fn func(doc *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc)
}

// Write calls fn with the document locked. Changes made by fn are not
// reported to observers, so fn should only touch text and attributes.
func (d *Document) Write(fn func(doc *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc)
}
