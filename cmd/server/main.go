package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/coursehound/coursehound/internal/api"
	"github.com/coursehound/coursehound/pkg/logging"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "listen address")
		outputDir = flag.String("output", "output", "crawl output directory to serve")
	)
	flag.Parse()

	logCfg := logging.DefaultLogConfig()
	if err := logging.SetupLogger(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}

	server := api.NewServer(*outputDir)
	if err := server.Listen(*addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
