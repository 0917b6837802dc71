package render

import (
	"strings"

	"golang.org/x/net/html"
)

// setElementText replaces the text of n. Nested elements are kept so that
// bound descendants survive; only the element's own text nodes change.
func setElementText(n *html.Node, text string) bool {
	var texts []*html.Node
	nested := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			texts = append(texts, c)
		case html.ElementNode:
			nested = true
		}
	}

	if !nested {
		var original strings.Builder
		for _, t := range texts {
			original.WriteString(t.Data)
		}
		updated := preserveWhitespace(original.String(), text)
		if len(texts) == 1 && texts[0].Data == updated {
			return false
		}
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			c = next
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: updated})
		return true
	}

	for _, t := range texts {
		if strings.TrimSpace(t.Data) == "" {
			continue
		}
		updated := preserveWhitespace(t.Data, text)
		if t.Data == updated {
			return false
		}
		t.Data = updated
		return true
	}

	n.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n.FirstChild)
	return true
}

// preserveWhitespace keeps the original leading and trailing whitespace
// around the translated text.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	trailing := ""
	if trimmed := strings.TrimRight(original, " \t\n\r"); len(trimmed) > leadingLen {
		trailing = original[len(trimmed):]
	}

	return leading + strings.TrimSpace(translated) + trailing
}

// setAttribute sets an attribute on n and reports whether it changed.
func setAttribute(n *html.Node, name, value string) bool {
	for i, a := range n.Attr {
		if a.Key == name {
			if a.Val == value {
				return false
			}
			n.Attr[i].Val = value
			return true
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
	return true
}
