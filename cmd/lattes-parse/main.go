// Command lattes-parse turns a directory of saved Lattes CV pages into one
// JSON array of structured profile records.
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
	flag.StringVar(&fc.StoreDir, "store", d.StoreDir, "Directory of saved profile pages")
	flag.BoolVar(&fc.StoreStrictPerms, "store.strictPerms", false, "Restrict store permissions (0700 dirs, 0600 files)")
	flag.StringVar(&fc.OutputPath, "output", d.OutputPath, "Path of the JSON array to write (must end in .json)")
	flag.StringVar(&fc.OutputPDFPath, "output.pdf", "", "Optional path of a PDF roster of the parsed profiles")
	flag.IntVar(&fc.Workers, "workers", 0, "Concurrent documents; 0 uses every CPU")
	flag.StringVar(&fc.MetricsTextfile, "metrics.textfile", "", "Write Prometheus metrics to this file on exit")
	flag.BoolVar(&fc.Verbose, "v", false, "Verbose logging")
	flag.StringVar(&configPath, "config", os.Getenv("LATTES_CONFIG"), "YAML or JSON configuration file")
	flag.StringVar(&envFile, "env", ".env", "Dotenv file loaded before reading LATTES_* variables")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(app.VersionString("lattes-parse"))
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

	a, err := app.New(cfg, app.CommandParse)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}()

	return a.Run(ctx)
}
