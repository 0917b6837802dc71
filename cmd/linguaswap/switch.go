package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/linguaswap"
	"github.com/ZaguanLabs/linguaswap/cache"
	"github.com/ZaguanLabs/linguaswap/render"
	"github.com/ZaguanLabs/linguaswap/scheduler"
)

// switchOutput is the --json form of a switch run.
type switchOutput struct {
	InputFile string                    `json:"input_file"`
	Switches  []*scheduler.SwitchReport `json:"switches"`
	Renderer  render.Stats              `json:"renderer"`
	Cache     cache.Stats               `json:"cache"`
	Elapsed   string                    `json:"elapsed"`
}

func runSwitch(args []string, cfg Config, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("switch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	common := addCommonFlags(fs, cfg)
	to := fs.String("to", "", "Comma-separated target languages, applied in order")
	from := fs.String("from", "", "Language the document currently shows (default: its lang attribute)")
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	budget := fs.Duration("budget", cfg.Budget, "Soft time budget per switch")
	batchSize := fs.Int("batch-size", cfg.BatchSize, "Element updates per batch")
	snapshotFile := fs.String("snapshots", "", "Warm-start file for memoized snapshots (read, then rewritten)")
	jsonOutput := fs.Bool("json", false, "Print switch reports as JSON (requires --output)")
	quiet := fs.Bool("quiet", false, "Suppress progress output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	targets := splitList(*to)
	if len(targets) == 0 {
		fs.Usage()
		return errors.New("--to is required")
	}
	for i, lang := range targets {
		targets[i] = linguaswap.CanonicalLanguage(lang)
	}
	if *jsonOutput && *output == "" {
		return errors.New("--json writes reports to stdout; use --output for the document")
	}

	cfg.LogLevel = *common.logLevel
	logger, err := cfg.logger(stderr)
	if err != nil {
		return err
	}

	var input []byte
	inputName := "stdin"
	if fs.NArg() == 0 {
		if input, err = io.ReadAll(os.Stdin); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		inputPath := fs.Arg(0)
		if input, err = os.ReadFile(inputPath); err != nil { // #nosec G304 - CLI tool reads user-specified files
			return fmt.Errorf("reading file: %w", err)
		}
		inputName = filepath.Base(inputPath)
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

	doc, err := render.ParseDocument(strings.NewReader(string(input)))
	if err != nil {
		return err
	}

	snapshots := cache.NewBounded[linguaswap.Snapshot](
		cache.WithMaxEntries(cfg.CacheMaxEntries),
		cache.WithMaxBytes(cfg.CacheMaxBytes),
		cache.WithDefaultTTL(cfg.CacheTTL),
		cache.WithLogger(logger),
	)
	defer snapshots.Close()

	if *snapshotFile != "" {
		res, err := cache.NewImporter(snapshots).ImportFromFile(*snapshotFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			logger.Warn("ignoring snapshot file", "path", *snapshotFile, "error", err)
		default:
			logger.Debug("imported snapshots", "imported", res.Imported, "skipped", res.Skipped)
		}
	}

	announcer := render.NewAnnouncer(doc, st, render.WithAnnouncerLogger(logger))
	renderer := render.New(doc, st,
		render.WithBatchSize(*batchSize),
		render.WithFrames(render.IntervalFrames(0)),
		render.WithGroupDelay(0),
		render.WithSnapshotCache(snapshots),
		render.WithAnnouncer(announcer),
		render.WithLogger(logger),
	)
	defer renderer.Close()

	current := *from
	if current == "" {
		current, _ = doc.Attr("html", "lang")
	}
	if current != "" {
		current = linguaswap.CanonicalLanguage(current)
		renderer.Prime(current)
	}

	sched, err := scheduler.New(
		scheduler.WithPreparer(st),
		scheduler.WithBudget(*budget),
		scheduler.WithInitialLanguage(current),
		scheduler.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer sched.Close()

	if err := sched.Register(render.DocumentAttributesUnitID, render.DocumentAttributesUnit(doc)); err != nil {
		return err
	}
	if err := sched.Register(render.UnitID, renderer.Unit()); err != nil {
		return err
	}

	if !*quiet {
		fmt.Fprintf(stderr, "Switching %s: %s -> %s\n", inputName, displayLang(current), strings.Join(targets, " -> "))
	}

	start := time.Now()
	pending := make([]<-chan scheduler.Result, len(targets))
	for i, lang := range targets {
		pending[i] = sched.Request(lang)
	}

	reports := make([]*scheduler.SwitchReport, 0, len(targets))
	for i, ch := range pending {
		res := <-ch
		if res.Err != nil {
			return fmt.Errorf("switching to %s: %w", targets[i], res.Err)
		}
		reports = append(reports, res.Report)
	}
	elapsed := time.Since(start)

	if *snapshotFile != "" {
		meta := map[string]string{"source": inputName}
		if err := cache.NewExporter(snapshots).ExportToFile(*snapshotFile, meta); err != nil {
			logger.Warn("could not save snapshots", "path", *snapshotFile, "error", err)
		}
	}

	content, err := doc.HTML()
	if err != nil {
		return err
	}

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, content)

	if *jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(switchOutput{
			InputFile: inputName,
			Switches:  reports,
			Renderer:  renderer.Statistics(),
			Cache:     snapshots.Statistics(),
			Elapsed:   elapsed.Round(time.Microsecond).String(),
		})
	}

	if !*quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		for _, r := range reports {
			status := "ok"
			if failed := r.Failed(); len(failed) > 0 {
				status = fmt.Sprintf("%d unit(s) failed", len(failed))
			}
			if r.OverBudget {
				status += ", over budget"
			}
			fmt.Fprintf(stderr, "  %-8s %-10v %s\n", r.To, r.Duration.Round(time.Microsecond), status)
		}
		st := renderer.Statistics()
		fmt.Fprintf(stderr, "  Elements updated:   %d\n", st.ElementsUpdated)
		fmt.Fprintf(stderr, "  Attributes updated: %d\n", st.AttributesUpdated)
		fmt.Fprintf(stderr, "  Snapshot hit rate:  %.0f%%\n", snapshots.Statistics().HitRate()*100)
	}
	return nil
}

func displayLang(lang string) string {
	if lang == "" {
		return "(unknown)"
	}
	return lang
}
