package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/ZaguanLabs/linguaswap"
	"github.com/ZaguanLabs/linguaswap/provider"
	"github.com/ZaguanLabs/linguaswap/store"
)

// auditOutput is the --json form of an audit run.
type auditOutput struct {
	Report      linguaswap.CompletenessReport `json:"report"`
	Suggestions *linguaswap.SuggestResult     `json:"suggestions,omitempty"`
}

func runAudit(args []string, cfg Config, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	common := addCommonFlags(fs, cfg)
	jsonOutput := fs.Bool("json", false, "Output the report as JSON")
	strict := fs.Bool("strict", false, "Fail when any language is missing a path")
	suggest := fs.Bool("suggest", false, "Suggest translations for missing paths using OpenAI")
	mock := fs.Bool("mock", false, "Use a canned provider instead of OpenAI (with --suggest)")
	apiKey := fs.String("api-key", cfg.OpenAIKey, "OpenAI API key (default: OPENAI_API_KEY env)")
	model := fs.String("model", cfg.OpenAIModel, "OpenAI model to use")
	contextStr := fs.String("context", "", "Product description given to the model")
	style := fs.String("style", string(linguaswap.StyleNeutral), "Register: formal, neutral, casual, technical")
	exclude := fs.String("exclude", "", "Comma-separated terms to never translate")
	writeDir := fs.String("write", "", "Write each language with suggestions applied to <dir>/<lang>.json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.LogLevel = *common.logLevel
	logger, err := cfg.logger(stderr)
	if err != nil {
		return err
	}

	ctx := context.Background()

	memo, closeMemo, err := openMemo(ctx, *common.redisURL, logger)
	if err != nil {
		return err
	}
	defer closeMemo()

	st, err := openStore(ctx, common, memo, logger)
	if err != nil {
		return err
	}

	out := auditOutput{Report: st.ValidateCompleteness()}

	if *suggest && !out.Report.Complete() {
		var backend linguaswap.AIProvider
		switch {
		case *mock:
			backend = provider.NewMockProvider()
		case *apiKey == "":
			return errors.New("OpenAI API key required for --suggest (--api-key or OPENAI_API_KEY env)")
		default:
			backend = linguaswap.NewRateLimitedProvider(
				linguaswap.NewRetryableProvider(provider.NewOpenAIProvider(provider.OpenAIConfig{
					APIKey:  *apiKey,
					Model:   *model,
					BaseURL: cfg.OpenAIBaseURL,
				}), linguaswap.DefaultRetryConfig()),
				linguaswap.RateLimitConfig{RequestsPerMinute: cfg.RequestsPerMin},
			)
		}

		suggester := linguaswap.NewSuggester(backend,
			linguaswap.WithCache(memo),
			linguaswap.WithContext(*contextStr),
			linguaswap.WithStyle(linguaswap.TranslationStyle(*style)),
			linguaswap.WithExcludedTerms(splitList(*exclude)),
		)
		if out.Suggestions, err = suggester.Suggest(ctx, out.Report, st); err != nil {
			return err
		}

		if *writeDir != "" {
			if err := writeSuggestions(st, out.Suggestions, *writeDir); err != nil {
				return err
			}
		}
	}

	if *jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		printReport(stdout, out)
	}

	if *strict && !out.Report.Complete() {
		return fmt.Errorf("%d translation path(s) missing", out.Report.MissingCount())
	}
	return nil
}

func printReport(w io.Writer, out auditOutput) {
	fmt.Fprintf(w, "Reference: %s (%d paths)\n", out.Report.Reference, out.Report.TotalPaths)
	for _, lang := range out.Report.Languages {
		if len(lang.Missing) == 0 {
			fmt.Fprintf(w, "  %-8s %5.1f%%  complete\n", lang.Language, lang.Coverage)
			continue
		}
		fmt.Fprintf(w, "  %-8s %5.1f%%  %d missing\n", lang.Language, lang.Coverage, len(lang.Missing))
		for _, path := range lang.Missing {
			fmt.Fprintf(w, "      - %s\n", path)
		}
	}

	if out.Suggestions == nil {
		return
	}
	fmt.Fprintf(w, "\nSuggestions (%d translated, %d cached):\n",
		out.Suggestions.TranslatedCount, out.Suggestions.CachedCount)
	for _, sg := range out.Suggestions.Suggestions {
		fmt.Fprintf(w, "  %s:%s = %q\n", sg.Language, sg.Path, sg.Text)
	}
	for _, skipped := range out.Suggestions.Skipped {
		fmt.Fprintf(w, "  %s skipped (list value)\n", skipped)
	}
}

// writeSuggestions writes every language that received suggestions, without
// the mounted accessibility namespace.
func writeSuggestions(st *store.Store, result *linguaswap.SuggestResult, dir string) error {
	trees := make(map[string]linguaswap.Tree)
	for _, sg := range result.Suggestions {
		if _, ok := trees[sg.Language]; ok {
			continue
		}
		tree, _ := st.Tree(sg.Language)
		tree = maps.Clone(tree)
		delete(tree, store.AccessibilityNamespace)
		trees[sg.Language] = tree
	}

	merged, err := result.Apply(trees)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	langs := slices.Sorted(maps.Keys(merged))
	for _, lang := range langs {
		data, err := json.MarshalIndent(merged[lang], "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s: %w", lang, err)
		}
		path := filepath.Join(dir, lang+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
