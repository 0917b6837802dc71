package linguaswap

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Tree is a per-language nested translation document. Leaves are string or
// []string; inner nodes are Tree.
type Tree = map[string]any

// ValueKind distinguishes the leaf shapes a Tree can hold.
type ValueKind int

const (
	// KindText is a single string leaf.
	KindText ValueKind = iota
	// KindList is an ordered list of strings.
	KindList
)

// Value is a resolved translation leaf.
type Value struct {
	Kind ValueKind `json:"kind"`
	Text string    `json:"text,omitempty"`
	List []string  `json:"list,omitempty"`
}

// TextValue wraps a string leaf.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// ListValue wraps a list leaf.
func ListValue(items []string) Value {
	return Value{Kind: KindList, List: slices.Clone(items)}
}

// String renders the value for display. Lists are joined with ", ".
func (v Value) String() string {
	if v.Kind == KindList {
		return strings.Join(v.List, ", ")
	}
	return v.Text
}

// Equal reports whether two values render identically and have the same shape.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == KindList {
		return slices.Equal(v.List, o.List)
	}
	return v.Text == o.Text
}

// Snapshot maps translation keys to their resolved values for one language.
type Snapshot map[string]Value

// SwitchEvent describes one language switch as seen by update units.
type SwitchEvent struct {
	From        string    // Language before the switch ("" on the first switch)
	To          string    // Target language
	Sequence    uint64    // Monotonic request number, in arrival order
	RequestedAt time.Time // When the request was accepted
}

// UpdateFunc is an update unit callback. It runs once per switch.
type UpdateFunc func(ctx context.Context, ev SwitchEvent) error

// Resolver resolves dotted paths for a language. Implementations never fail:
// unknown paths resolve to the path itself.
type Resolver interface {
	Resolve(lang, path string) Value
}

// Preparer readies a language before update units run.
type Preparer interface {
	Prepare(ctx context.Context, lang string) error
}

// LanguageCoverage lists the reference paths a language is missing.
type LanguageCoverage struct {
	Language string   `json:"language"`
	Missing  []string `json:"missing,omitempty"`
	Coverage float64  `json:"coverage"` // Percentage of reference paths present
}

// CompletenessReport is the result of auditing all languages against a
// reference language.
type CompletenessReport struct {
	Reference  string             `json:"reference"`
	TotalPaths int                `json:"total_paths"`
	Languages  []LanguageCoverage `json:"languages"`
}

// Complete returns true if no language is missing a reference path.
func (r CompletenessReport) Complete() bool {
	for _, l := range r.Languages {
		if len(l.Missing) > 0 {
			return false
		}
	}
	return true
}

// MissingCount returns the total number of missing paths across languages.
func (r CompletenessReport) MissingCount() int {
	n := 0
	for _, l := range r.Languages {
		n += len(l.Missing)
	}
	return n
}

// TranslationStyle controls the tone of suggested translations.
type TranslationStyle string

const (
	StyleFormal    TranslationStyle = "formal"
	StyleNeutral   TranslationStyle = "neutral"
	StyleCasual    TranslationStyle = "casual"
	StyleTechnical TranslationStyle = "technical"
)

// styleDescriptions are the register hints given to AI providers.
var styleDescriptions = map[TranslationStyle]string{
	StyleFormal:    "Use formal, professional language.",
	StyleNeutral:   "Use a neutral, professional tone suitable for user interface labels.",
	StyleCasual:    "Use casual, friendly language.",
	StyleTechnical: "Use precise technical terminology.",
}

// StyleDescription returns the register hint for a style, defaulting to neutral.
func StyleDescription(style TranslationStyle) string {
	if d, ok := styleDescriptions[style]; ok {
		return d
	}
	return styleDescriptions[StyleNeutral]
}
