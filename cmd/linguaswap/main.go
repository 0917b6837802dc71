// Command linguaswap applies language switches to HTML documents and audits
// locale files for missing translations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/linguaswap"
	"github.com/ZaguanLabs/linguaswap/cache"
	"github.com/ZaguanLabs/linguaswap/store"
)

const usage = `Usage: linguaswap <command> [flags]

Commands:
  switch   Apply one or more language switches to an HTML file
  audit    Report translation paths missing from each language
  version  Show version information

Run 'linguaswap <command> --help' for the flags of a command.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("a command is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch args[0] {
	case "switch":
		return runSwitch(args[1:], cfg, stdout, stderr)
	case "audit":
		return runAudit(args[1:], cfg, stdout, stderr)
	case "version", "--version", "-version":
		printVersion(stdout)
		return nil
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printVersion(w io.Writer) {
	info := linguaswap.ReadBuildInfo()
	fmt.Fprintf(w, "%s %s\n", linguaswap.Name, linguaswap.FullVersion())
	if info.Date != "" {
		fmt.Fprintf(w, "  built:   %s\n", info.Date)
	}
	if info.GoVersion != "" {
		fmt.Fprintf(w, "  go:      %s\n", info.GoVersion)
	}
}

// commonFlags are shared by every command that loads locale files.
type commonFlags struct {
	locales   *string
	reference *string
	redisURL  *string
	logLevel  *string
}

func addCommonFlags(fs *flag.FlagSet, cfg Config) commonFlags {
	return commonFlags{
		locales:   fs.String("locales", cfg.Locales, "Directory of <lang>.{json,yaml,toml} locale files"),
		reference: fs.String("reference", cfg.Reference, "Reference language (default: first language found)"),
		redisURL:  fs.String("redis", cfg.RedisURL, "Redis URL for the resolved-value memo (optional)"),
		logLevel:  fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error"),
	}
}

// openMemo returns the resolved-value memo backend and a function releasing it.
func openMemo(ctx context.Context, url string, logger *slog.Logger) (cache.TranslationCache, func(), error) {
	if url == "" {
		return cache.NewInMemoryCache(0), func() {}, nil
	}

	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: url, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	return rc, func() { _ = rc.Close() }, nil
}

// openStore loads the locale files. Accessibility strings are read from the
// a11y subdirectory, falling back to the built-in set.
func openStore(ctx context.Context, flags commonFlags, memo cache.TranslationCache, logger *slog.Logger) (*store.Store, error) {
	opts := []store.Option{
		store.WithMemo(memo),
		store.WithLogger(logger),
		store.WithSupplement(store.AccessibilityNamespace,
			store.DirSource(filepath.Join(*flags.locales, store.AccessibilityNamespace)),
			store.AccessibilityFallback()),
	}
	if *flags.reference != "" {
		opts = append(opts, store.WithReferenceLanguage(*flags.reference))
	}

	st := store.New(store.DirSource(*flags.locales), opts...)
	if err := st.Initialize(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
