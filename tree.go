package linguaswap

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// NormalizeTree converts a decoded JSON, YAML or TOML document into a Tree.
// Scalars become strings, arrays of scalars become []string and nested
// mappings become Trees. Null leaves and nested arrays are rejected.
func NormalizeTree(raw map[string]any) (Tree, error) {
	return normalizeMap(raw, "")
}

func normalizeMap(raw map[string]any, prefix string) (Tree, error) {
	out := make(Tree, len(raw))
	for k, v := range raw {
		path := joinPath(prefix, k)
		if strings.Contains(k, ".") {
			return nil, fmt.Errorf("key %q contains a path separator", path)
		}
		n, err := normalizeValue(v, path)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, nil
}

func normalizeValue(v any, path string) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case map[string]any:
		return normalizeMap(val, path)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[fmt.Sprint(k)] = inner
		}
		return normalizeMap(m, path)
	case []string:
		return slices.Clone(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for i, item := range val {
			switch item.(type) {
			case nil, []any, map[string]any, map[any]any:
				return nil, fmt.Errorf("%s[%d]: list items must be scalars", path, i)
			}
			items = append(items, fmt.Sprint(item))
		}
		return items, nil
	case nil:
		return nil, fmt.Errorf("%s: null leaf", path)
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(val), nil
	default:
		return nil, fmt.Errorf("%s: unsupported leaf type %T", path, v)
	}
}

// Lookup walks a tree along a dotted path and returns the leaf it addresses.
func Lookup(tree Tree, path string) (Value, error) {
	if path == "" {
		return Value{}, fmt.Errorf("%w: empty path", ErrMissingPath)
	}

	segments := strings.Split(path, ".")
	current := tree

	for i, seg := range segments {
		node, ok := current[seg]
		if !ok {
			return Value{}, fmt.Errorf("%w: %q has no segment %q", ErrMissingPath, path, seg)
		}

		last := i == len(segments)-1
		switch leaf := node.(type) {
		case string:
			if !last {
				return Value{}, fmt.Errorf("%w: %q ends at leaf %q", ErrMissingPath, path, seg)
			}
			return TextValue(leaf), nil
		case []string:
			if !last {
				return Value{}, fmt.Errorf("%w: %q ends at leaf %q", ErrMissingPath, path, seg)
			}
			return ListValue(leaf), nil
		case Tree:
			if last {
				return Value{}, fmt.Errorf("%w: %q addresses an object, not a leaf", ErrMissingPath, path)
			}
			current = leaf
		default:
			return Value{}, fmt.Errorf("%w: %q has unsupported node %T", ErrMissingPath, path, node)
		}
	}

	return Value{}, fmt.Errorf("%w: %q", ErrMissingPath, path)
}

// Flatten returns every leaf path of a tree, sorted.
func Flatten(tree Tree) []string {
	var paths []string
	collectPaths(tree, "", &paths)
	slices.Sort(paths)
	return paths
}

func collectPaths(tree Tree, prefix string, out *[]string) {
	for k, v := range tree {
		path := joinPath(prefix, k)
		if sub, ok := v.(Tree); ok {
			collectPaths(sub, path, out)
			continue
		}
		*out = append(*out, path)
	}
}

// SetPath returns a copy of tree with the leaf at path set to v. Intermediate
// objects are created or copied as needed; tree itself is left untouched.
func SetPath(tree Tree, path string, v Value) (Tree, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrMissingPath)
	}
	segments := strings.Split(path, ".")

	root := maps.Clone(tree)
	if root == nil {
		root = Tree{}
	}

	current := root
	for _, seg := range segments[:len(segments)-1] {
		var next Tree
		switch existing := current[seg].(type) {
		case Tree:
			next = maps.Clone(existing)
		case nil:
			next = Tree{}
		default:
			return nil, fmt.Errorf("%q: segment %q is a leaf", path, seg)
		}
		current[seg] = next
		current = next
	}

	leaf := segments[len(segments)-1]
	if _, isTree := current[leaf].(Tree); isTree {
		return nil, fmt.Errorf("%q addresses an object", path)
	}
	if v.Kind == KindList {
		current[leaf] = slices.Clone(v.List)
	} else {
		current[leaf] = v.Text
	}
	return root, nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
