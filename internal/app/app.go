// Package app wires configuration, logging and metrics around the parse,
// fetch and graph pipelines.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/lattes/internal/aggregate"
	"github.com/hyperifyio/lattes/internal/batch"
	"github.com/hyperifyio/lattes/internal/export"
	"github.com/hyperifyio/lattes/internal/fetch"
	"github.com/hyperifyio/lattes/internal/robots"
	"github.com/hyperifyio/lattes/internal/store"
)

// ErrNoRecords is returned when a run produced nothing usable: no record
// was assembled, no document was retrieved or stored, or the graph input
// was empty.
var ErrNoRecords = errors.New("no records produced")

// ExitCode maps a run error to the process exit status: 0 on success, 2 when
// nothing usable was produced and 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNoRecords):
		return 2
	default:
		return 1
	}
}

// App runs one command.
type App struct {
	cfg   Config
	cmd   Command
	reg   *prometheus.Registry
	store *store.Store
}

// New validates cfg for cmd and prepares the document store.
func New(cfg Config, cmd Command) (*App, error) {
	if err := ValidateConfig(cfg, cmd); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, cmd: cmd, reg: prometheus.NewRegistry()}
	if cmd == CommandFetch || cmd == CommandParse {
		a.store = &store.Store{Dir: cfg.StoreDir, StrictPerms: cfg.StoreStrictPerms}
	}
	return a, nil
}

// Run executes the command.
func (a *App) Run(ctx context.Context) error {
	var err error
	switch a.cmd {
	case CommandParse:
		_, err = a.Parse(ctx)
	case CommandFetch:
		_, err = a.Fetch(ctx)
	case CommandGraph:
		_, err = a.Graph(ctx)
	default:
		err = invalid("unknown command %q", a.cmd)
	}
	return err
}

// Close writes the metrics text file when configured.
func (a *App) Close() error {
	if a.cfg.MetricsTextfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.cfg.MetricsTextfile, a.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// Parse assembles every stored document and writes the JSON array, its
// manifest and the optional PDF roster.
func (a *App) Parse(ctx context.Context) (batch.Report, error) {
	started := time.Now().UTC()
	sources, err := batch.FromStore(a.store)
	if err != nil {
		return batch.Report{}, err
	}
	log.Info().Str("store", a.cfg.StoreDir).Int("documents", len(sources)).Msg("parsing profiles")

	runner := &batch.Runner{
		Workers: a.cfg.Workers,
		Logger:  log.Logger,
		Metrics: batch.NewMetrics(a.reg),
	}
	rep, err := runner.Run(ctx, sources)
	if err != nil {
		return rep, err
	}

	if err := export.WriteJSON(a.cfg.OutputPath, rep.Records); err != nil {
		return rep, err
	}
	m := export.NewManifest(export.ManifestMeta{
		Version:   BuildVersion,
		Input:     a.cfg.StoreDir,
		Output:    a.cfg.OutputPath,
		StartedAt: started,
	}, rep)
	manifestPath, err := export.WriteManifest(a.cfg.OutputPath, m)
	if err != nil {
		return rep, fmt.Errorf("write manifest: %w", err)
	}
	if a.cfg.OutputPDFPath != "" {
		if err := export.WriteRosterPDF(a.cfg.OutputPDFPath, rep.Records); err != nil {
			return rep, err
		}
	}
	log.Info().
		Str("output", a.cfg.OutputPath).
		Str("manifest", manifestPath).
		Str("run_id", m.Meta.RunID).
		Int("records", len(rep.Records)).
		Int("skipped", len(rep.Skipped)).
		Msg("profiles written")

	if len(rep.Records) == 0 {
		return rep, ErrNoRecords
	}
	return rep, nil
}

// Fetch retrieves the roster into the store after applying store
// maintenance.
func (a *App) Fetch(ctx context.Context) (fetch.Summary, error) {
	f, err := os.Open(a.cfg.RosterPath)
	if err != nil {
		return fetch.Summary{}, fmt.Errorf("open roster: %w", err)
	}
	entries, err := fetch.ReadRoster(f)
	f.Close()
	if err != nil {
		return fetch.Summary{}, err
	}

	if a.cfg.StoreClear {
		if err := a.store.Clear(); err != nil {
			return fetch.Summary{}, fmt.Errorf("clear store: %w", err)
		}
	}
	if a.cfg.StoreMaxAge > 0 {
		n, err := a.store.PurgeByAge(a.cfg.StoreMaxAge)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fetch.Summary{}, fmt.Errorf("purge store: %w", err)
		}
		log.Info().Int("removed", n).Dur("max_age", a.cfg.StoreMaxAge).Msg("store purged")
	}

	hc := fetch.NewHTTPClient(a.cfg.Retries, a.cfg.Timeout)
	client := &fetch.Client{
		HTTP:        hc,
		UserAgent:   a.cfg.UserAgent,
		URLTemplate: a.cfg.URLTemplate,
		Store:       a.store,
		Workers:     a.cfg.Workers,
		Delay:       a.cfg.Delay,
		Force:       a.cfg.Force,
		Metrics:     fetch.NewMetrics(a.reg),
	}
	if a.cfg.Robots {
		client.Robots = &robots.Manager{
			HTTPClient:        hc.StandardClient(),
			UserAgent:         a.cfg.UserAgent,
			AllowPrivateHosts: a.cfg.AllowPrivateHosts,
		}
	}
	log.Info().Str("roster", a.cfg.RosterPath).Int("entries", len(entries)).Bool("robots", a.cfg.Robots).Msg("retrieving profiles")

	sum, err := client.Run(ctx, entries)
	if err != nil {
		return sum, err
	}
	if sum.Count(fetch.OutcomeFetched)+sum.Count(fetch.OutcomeStored) == 0 {
		return sum, ErrNoRecords
	}
	return sum, nil
}

// GraphResult is what the graph command computed.
type GraphResult struct {
	Publications []aggregate.Publication
	Ranking      *aggregate.Ranking
}

// Graph builds the co-authorship graph from a record array and writes the
// configured outputs. With an owner, the DOT output is the owner's star
// graph; without one, it is the whole graph.
func (a *App) Graph(ctx context.Context) (GraphResult, error) {
	recs, err := export.ReadJSON(a.cfg.RecordsPath)
	if err != nil {
		return GraphResult{}, fmt.Errorf("read records: %w", err)
	}
	if len(recs) == 0 {
		return GraphResult{}, ErrNoRecords
	}
	if err := ctx.Err(); err != nil {
		return GraphResult{}, err
	}

	res := GraphResult{Publications: aggregate.Unify(recs)}
	g := aggregate.Build(res.Publications)
	log.Info().Int("records", len(recs)).Int("publications", len(res.Publications)).Int("nodes", len(g.Names())).Msg("collaboration graph built")

	if a.cfg.PublicationsPath != "" {
		if err := export.WriteIndentedJSON(a.cfg.PublicationsPath, res.Publications); err != nil {
			return res, err
		}
	}

	rendered := g
	if a.cfg.Owner != "" {
		ego, err := g.Ego(a.cfg.Owner, a.cfg.MinWeight)
		if err != nil {
			return res, err
		}
		rendered = ego
		r, err := aggregate.Rank(g, a.cfg.Owner, a.cfg.MinWeight)
		if err != nil {
			return res, err
		}
		res.Ranking = &r
		if a.cfg.RankingPath != "" {
			if err := export.WriteIndentedJSON(a.cfg.RankingPath, r); err != nil {
				return res, err
			}
		}
	}
	if a.cfg.DOTPath != "" {
		b, err := rendered.DOT("colaboracoes")
		if err != nil {
			return res, err
		}
		if err := export.WriteText(a.cfg.DOTPath, b); err != nil {
			return res, err
		}
	}
	return res, nil
}
