package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/coursehound/coursehound/internal/api"
	"github.com/coursehound/coursehound/internal/browser"
	"github.com/coursehound/coursehound/internal/crawler"
	"github.com/coursehound/coursehound/internal/export"
	"github.com/coursehound/coursehound/internal/storage"
	"github.com/coursehound/coursehound/pkg/course"
	"github.com/coursehound/coursehound/pkg/logging"
)

func main() {
	var (
		courseURL   = flag.String("url", "", "course, learning-path or module URL to crawl")
		outputDir   = flag.String("output", "", "output directory (overrides config)")
		maxModules  = flag.Int("max-modules", -1, "cap on crawled modules, 0 = unlimited")
		noBrowser   = flag.Bool("no-browser", false, "use plain HTTP instead of headless Chrome")
		headless    = flag.Bool("headless", true, "run the browser headless")
		archiveMode = flag.String("archive", "none", "checkpoint archive: none, file or git")
		dev         = flag.Bool("dev", false, "development settings: visible browser, small cap, pretty logs")
		logLevel    = flag.String("log-level", "", "log level override")
		solverCeil  = flag.Int("solver-attempts", -1, "assessment attempt ceiling, 0 = unbounded")
	)
	flag.Parse()

	if *courseURL == "" {
		fmt.Fprintln(os.Stderr, "usage: coursehound -url <course-url> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := crawler.DefaultConfig()
	if *dev {
		cfg = crawler.DevelopmentConfig()
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
		cfg.Checkpoint.Dir = filepath.Join(*outputDir, "checkpoints")
	}
	if *maxModules >= 0 {
		cfg.MaxModules = *maxModules
	}
	if *noBrowser {
		cfg.UseBrowser = false
	}
	cfg.Browser.Headless = *headless && !*dev
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *solverCeil >= 0 {
		cfg.Solver.MaxAttempts = *solverCeil
	}

	if err := logging.SetupLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *courseURL, *archiveMode); err != nil {
		log.Fatal().Err(err).Msg("crawl failed")
	}
}

func run(ctx context.Context, cfg crawler.Config, courseURL, archiveMode string) error {
	page, err := newPage(ctx, cfg)
	if err != nil {
		return err
	}
	defer page.Close()

	checkpoints := crawler.NewCheckpointer(cfg.Checkpoint, nil)
	walker := crawler.NewWalker(cfg, page, checkpoints)

	archive, err := newArchive(archiveMode, cfg, walker.RunID())
	if err != nil {
		return err
	}
	if archive != nil {
		checkpoints.SetArchive(archive)
	}

	tree, err := walker.Crawl(ctx, courseURL)
	if tree == nil {
		return err
	}
	if err != nil {
		log.Warn().Err(err).Msg("crawl interrupted, writing partial output")
	}

	return writeOutputs(cfg, tree)
}

func newPage(ctx context.Context, cfg crawler.Config) (browser.Page, error) {
	if !cfg.UseBrowser {
		return browser.NewStaticPage(cfg.Browser.UserAgent), nil
	}
	return browser.NewChromePage(ctx, cfg.Browser)
}

func newArchive(mode string, cfg crawler.Config, runID string) (crawler.Archiver, error) {
	switch mode {
	case "none", "":
		return nil, nil
	case "file":
		return storage.NewFileArchive(filepath.Join(cfg.Output.Dir, "archive"))
	case "git":
		return storage.NewGitArchive(filepath.Join(cfg.Output.Dir, "archive"), runID)
	}
	return nil, fmt.Errorf("unknown archive mode %q", mode)
}

func writeOutputs(cfg crawler.Config, tree *course.Course) error {
	if err := export.WriteRecord(filepath.Join(cfg.Output.Dir, api.RecordFilename), tree); err != nil {
		return err
	}
	if err := export.WriteSummary(filepath.Join(cfg.Output.Dir, "summary.json"), tree); err != nil {
		return err
	}
	if cfg.Output.WriteMarkdown {
		if err := export.WriteMarkdownTree(filepath.Join(cfg.Output.Dir, "markdown"), tree); err != nil {
			return err
		}
	}
	if cfg.Output.WriteCSV {
		if err := export.WriteCSVs(filepath.Join(cfg.Output.Dir, "csv"), tree); err != nil {
			return err
		}
	}

	stats := course.CollectStats(tree)
	log.Info().
		Int("modules", stats.Modules).
		Int("units", stats.Units).
		Int("videos", stats.Videos).
		Int("questions", stats.QuestionsTotal).
		Int("answers_resolved", stats.AnswersResolved).
		Str("output", cfg.Output.Dir).
		Msg("outputs written")
	return nil
}
