package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/coursehound/coursehound/internal/export"
	"github.com/coursehound/coursehound/pkg/course"
	"github.com/coursehound/coursehound/pkg/logging"
)

func main() {
	var (
		recordPath = flag.String("record", "output/course.json", "path to a saved course record")
		outDir     = flag.String("out", "output/csv", "directory for the CSV files")
		markdown   = flag.String("markdown", "", "also write the markdown tree into this directory")
	)
	flag.Parse()

	logCfg := logging.DefaultLogConfig()
	logCfg.OutputFile = ""
	if err := logging.SetupLogger(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}

	tree, err := export.ReadRecord(*recordPath)
	if err != nil {
		log.Fatal().Err(err).Str("record", *recordPath).Msg("failed to load record")
	}

	if err := export.WriteCSVs(*outDir, tree); err != nil {
		log.Fatal().Err(err).Msg("csv export failed")
	}
	if *markdown != "" {
		if err := export.WriteMarkdownTree(*markdown, tree); err != nil {
			log.Fatal().Err(err).Msg("markdown export failed")
		}
	}

	stats := course.CollectStats(tree)
	log.Info().
		Int("modules", stats.Modules).
		Int("units", stats.Units).
		Int("questions", stats.QuestionsTotal).
		Str("out", *outDir).
		Msg("export complete")
}
