package render

import (
	"encoding/json"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/ZaguanLabs/linguaswap"
)

// Marker attributes read from the document.
const (
	TextMarker      = "data-i18n"
	AttributeMarker = "data-i18n-attr"
)

// attrValue returns the value of an attribute of n.
func attrValue(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// parseBinding reads the markers of an element. Attribute entries outside the
// whitelist are dropped and reported.
func parseBinding(n *html.Node) (Binding, []error) {
	var b Binding
	var errs []error

	if key, ok := attrValue(n, TextMarker); ok {
		b.Text = strings.TrimSpace(key)
	}

	raw, ok := attrValue(n, AttributeMarker)
	if !ok || strings.TrimSpace(raw) == "" {
		return b, errs
	}

	var attrs map[string]string
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		errs = append(errs, &linguaswap.BindingError{
			Attribute: AttributeMarker,
			Reason:    "invalid JSON: " + err.Error(),
		})
		return b, errs
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		key := strings.TrimSpace(attrs[name])
		attr := strings.ToLower(strings.TrimSpace(name))
		switch {
		case key == "":
			errs = append(errs, &linguaswap.BindingError{Attribute: attr, Reason: "empty key"})
		case !AllowedAttribute(attr):
			errs = append(errs, &linguaswap.BindingError{Key: key, Attribute: attr, Reason: "attribute not allowed"})
		default:
			if b.Attrs == nil {
				b.Attrs = make(map[string]string)
			}
			b.Attrs[attr] = key
		}
	}
	return b, errs
}

// hasMarker reports whether n carries any binding marker.
func hasMarker(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == TextMarker || a.Key == AttributeMarker {
			return true
		}
	}
	return false
}

// walkElements calls fn for n and every element below it.
func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}
