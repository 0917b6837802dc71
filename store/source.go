package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/linguaswap"
)

// Source supplies per-language translation trees.
type Source interface {
	// Languages lists the languages the source can load.
	Languages(ctx context.Context) ([]string, error)
	// Load returns the tree for one language.
	Load(ctx context.Context, lang string) (linguaswap.Tree, error)
}

// MapSource serves trees held in memory, keyed by language code.
type MapSource map[string]linguaswap.Tree

// Languages returns the canonical codes of every tree, sorted.
func (m MapSource) Languages(ctx context.Context) ([]string, error) {
	langs := make([]string, 0, len(m))
	for lang := range m {
		langs = append(langs, linguaswap.CanonicalLanguage(lang))
	}
	slices.Sort(langs)
	return langs, nil
}

// Load returns a normalized copy of the tree for lang.
func (m MapSource) Load(ctx context.Context, lang string) (linguaswap.Tree, error) {
	want := linguaswap.CanonicalLanguage(lang)
	for code, tree := range m {
		if linguaswap.CanonicalLanguage(code) == want {
			return linguaswap.NormalizeTree(tree)
		}
	}
	return nil, fmt.Errorf("%s: %w", lang, fs.ErrNotExist)
}

// Supported document extensions, in lookup order.
var extensions = []string{".json", ".yaml", ".yml", ".toml"}

// FSSource reads <Dir>/<lang>.{json,yaml,yml,toml} from a file system.
type FSSource struct {
	FS  fs.FS
	Dir string
}

// DirSource reads language documents from a directory on disk.
func DirSource(dir string) FSSource {
	return FSSource{FS: os.DirFS(dir), Dir: "."}
}

// Languages lists every document whose name is a language code. Files such
// as "en.suggested.json" are ignored.
func (s FSSource) Languages(ctx context.Context) ([]string, error) {
	files, err := s.documents()
	if err != nil {
		return nil, err
	}
	langs := make([]string, 0, len(files))
	for lang := range files {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs, nil
}

// Load decodes the document for lang.
func (s FSSource) Load(ctx context.Context, lang string) (linguaswap.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := s.documents()
	if err != nil {
		return nil, err
	}
	name, ok := files[linguaswap.CanonicalLanguage(lang)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", lang, fs.ErrNotExist)
	}

	data, err := fs.ReadFile(s.FS, path.Join(s.Dir, name))
	if err != nil {
		return nil, err
	}
	return Decode(name, data)
}

// documents maps canonical language codes to file names.
func (s FSSource) documents() (map[string]string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(s.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	files := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if !slices.Contains(extensions, ext) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ext)
		if strings.Contains(stem, ".") {
			continue
		}
		lang := linguaswap.CanonicalLanguage(stem)
		if prev, dup := files[lang]; dup && extRank(path.Ext(prev)) <= extRank(ext) {
			continue
		}
		files[lang] = e.Name()
	}
	return files, nil
}

func extRank(ext string) int {
	return slices.Index(extensions, ext)
}

// Decode parses a language document, choosing the format from the file name.
func Decode(name string, data []byte) (linguaswap.Tree, error) {
	raw := make(map[string]any)

	switch path.Ext(name) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported document format", name)
	}

	tree, err := linguaswap.NormalizeTree(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tree, nil
}
