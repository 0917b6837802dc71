package store

import (
	"context"
	_ "embed"
	"fmt"
	"io/fs"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/linguaswap"
)

// AccessibilityNamespace is where accessibility strings are mounted.
const AccessibilityNamespace = "a11y"

//go:embed a11y.yaml
var accessibilityYAML []byte

var (
	accessibilityOnce  sync.Once
	accessibilityTrees MapSource
	accessibilityErr   error
)

// AccessibilityFallback returns the built-in accessibility strings as a
// Source. Load falls back from the exact language to its base language and
// then to English, so it serves every language.
func AccessibilityFallback() Source {
	return accessibilitySource{}
}

type accessibilitySource struct{}

func (accessibilitySource) Languages(ctx context.Context) ([]string, error) {
	trees, err := builtinAccessibility()
	if err != nil {
		return nil, err
	}
	return trees.Languages(ctx)
}

func (accessibilitySource) Load(ctx context.Context, lang string) (linguaswap.Tree, error) {
	trees, err := builtinAccessibility()
	if err != nil {
		return nil, err
	}
	for _, candidate := range []string{lang, linguaswap.BaseLanguage(lang), "en"} {
		tree, err := trees.Load(ctx, candidate)
		if err == nil {
			return tree, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", lang, fs.ErrNotExist)
}

func builtinAccessibility() (MapSource, error) {
	accessibilityOnce.Do(func() {
		var raw map[string]map[string]any
		if err := yaml.Unmarshal(accessibilityYAML, &raw); err != nil {
			accessibilityErr = fmt.Errorf("a11y.yaml: %w", err)
			return
		}
		accessibilityTrees = make(MapSource, len(raw))
		for lang, tree := range raw {
			accessibilityTrees[lang] = tree
		}
	})
	return accessibilityTrees, accessibilityErr
}
