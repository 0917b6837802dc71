package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// MaxAttributeRunes caps the length of a translated attribute value.
const MaxAttributeRunes = 512

// allowedAttributes are the only attributes a translation may write.
var allowedAttributes = map[string]bool{
	"title":                true,
	"alt":                  true,
	"placeholder":          true,
	"aria-label":           true,
	"aria-description":     true,
	"aria-placeholder":     true,
	"aria-roledescription": true,
	"aria-valuetext":       true,
}

// blockedSchemes are rejected outright when a value starts with them.
var blockedSchemes = []string{"javascript:", "vbscript:"}

// AllowedAttribute reports whether name may be bound to a translation.
func AllowedAttribute(name string) bool {
	return allowedAttributes[strings.ToLower(name)]
}

// AllowedAttributes returns the attribute whitelist, sorted.
func AllowedAttributes() []string {
	return []string{
		"alt",
		"aria-description",
		"aria-label",
		"aria-placeholder",
		"aria-roledescription",
		"aria-valuetext",
		"placeholder",
		"title",
	}
}

// SanitizeAttribute turns a translated string into a safe attribute value:
// markup is stripped, control characters are dropped and the result is capped
// at MaxAttributeRunes. ok is false when the value must not be written.
func SanitizeAttribute(value string) (clean string, ok bool) {
	clean = stripMarkup(value)
	clean = stripControl(clean)
	clean = strings.TrimSpace(clean)

	if utf8.RuneCountInString(clean) > MaxAttributeRunes {
		clean = string([]rune(clean)[:MaxAttributeRunes])
	}

	probe := strings.ToLower(strings.Join(strings.Fields(clean), ""))
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(probe, scheme) {
			return "", false
		}
	}
	return clean, true
}

// stripMarkup keeps only the text tokens of value, dropping the contents of
// script and style elements.
func stripMarkup(value string) string {
	if !strings.ContainsAny(value, "<&") {
		return value
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(value))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTextTag(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTextTag(string(name)) && skip > 0 {
				skip--
			}
		}
	}
}

func isRawTextTag(name string) bool {
	return name == "script" || name == "style"
}

// stripControl drops control characters; line breaks and tabs become spaces.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}
