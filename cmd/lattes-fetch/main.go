// Command lattes-fetch downloads the Lattes CV page of every person in a CSV
// roster into the document store read by lattes-parse.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
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
	flag.StringVar(&fc.RosterPath, "roster", "", "CSV roster with \"Nome dos Professores\" and \"Código(Busca Textual)\" columns")
	flag.StringVar(&fc.StoreDir, "store", d.StoreDir, "Directory where retrieved pages are saved")
	flag.DurationVar(&fc.StoreMaxAge, "store.maxAge", 0, "Purge stored pages older than this before the run (e.g. 720h); 0 disables")
	flag.BoolVar(&fc.StoreClear, "store.clear", false, "Remove every stored page before the run")
	flag.BoolVar(&fc.StoreStrictPerms, "store.strictPerms", false, "Restrict store permissions (0700 dirs, 0600 files)")
	flag.StringVar(&fc.URLTemplate, "url", d.URLTemplate, "Profile URL template; {id} is replaced by the roster code")
	flag.StringVar(&fc.UserAgent, "ua", d.UserAgent, "User-Agent for page and robots.txt requests")
	flag.IntVar(&fc.Retries, "retries", d.Retries, "Retries for transient HTTP failures")
	flag.DurationVar(&fc.Timeout, "timeout", d.Timeout, "Per-request timeout")
	flag.DurationVar(&fc.Delay, "delay", 0, "Minimum delay between requests to one host")
	flag.IntVar(&fc.Workers, "workers", 0, "Concurrent downloads; 0 uses every CPU")
	flag.BoolVar(&fc.Robots, "robots", d.Robots, "Honor robots.txt rules and crawl delays")
	flag.BoolVar(&fc.AllowPrivateHosts, "robots.allowPrivate", false, "Allow robots.txt lookups on private and loopback hosts")
	flag.BoolVar(&fc.Force, "force", false, "Download pages that are already stored")
	flag.StringVar(&fc.MetricsTextfile, "metrics.textfile", "", "Write Prometheus metrics to this file on exit")
	flag.BoolVar(&fc.Verbose, "v", false, "Verbose logging")
	flag.StringVar(&configPath, "config", os.Getenv("LATTES_CONFIG"), "YAML or JSON configuration file")
	flag.StringVar(&envFile, "env", ".env", "Dotenv file loaded before reading LATTES_* variables")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(app.VersionString("lattes-fetch"))
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(app.ExitCode(err))
	}
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(cfg, app.CommandFetch)
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
