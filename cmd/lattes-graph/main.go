// Command lattes-graph builds the co-authorship graph of a parsed record
// array and writes a DOT rendering, an owner's collaborator ranking and the
// unified publication list.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/lattes/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		fc          app.Config
		configPath  string
		envFile     string
		showVersion bool
	)
	d := app.Defaults()
	flag.StringVar(&fc.RecordsPath, "records", d.RecordsPath, "JSON array written by lattes-parse")
	flag.StringVar(&fc.Owner, "owner", "", "Display name of the professor at the center of the ranking")
	flag.IntVar(&fc.MinWeight, "min.weight", d.MinWeight, "Minimum shared publications for an edge to be kept")
	flag.StringVar(&fc.DOTPath, "dot", "", "Write the graph in Graphviz DOT format")
	flag.StringVar(&fc.RankingPath, "ranking", "", "Write the owner's collaborator ranking as JSON (requires -owner)")
	flag.StringVar(&fc.PublicationsPath, "publications", "", "Write the unified publication list as JSON")
	flag.StringVar(&fc.MetricsTextfile, "metrics.textfile", "", "Write Prometheus metrics to this file on exit")
	flag.BoolVar(&fc.Verbose, "v", false, "Verbose logging")
	flag.StringVar(&configPath, "config", os.Getenv("LATTES_CONFIG"), "YAML or JSON configuration file")
	flag.StringVar(&envFile, "env", ".env", "Dotenv file loaded before reading LATTES_* variables")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(app.VersionString("lattes-graph"))
		return
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if err := app.LoadEnvFiles(envFile); err != nil {
		log.Warn().Err(err).Str("file", envFile).Msg("dotenv not loaded")
	}
	cfg, err := app.Resolve(fc, explicit, configPath)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(app.ExitCode(err))
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(app.ExitCode(err))
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(cfg, app.CommandGraph)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
