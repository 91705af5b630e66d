package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Command names one of the executables.
type Command string

const (
	CommandParse Command = "parse"
	CommandFetch Command = "fetch"
	CommandGraph Command = "graph"
)

// Config holds runtime configuration for all commands. Each command reads
// only its own fields.
type Config struct {
	// Document store shared by fetch and parse
	StoreDir         string
	StoreMaxAge      time.Duration
	StoreClear       bool
	StoreStrictPerms bool

	// Parse
	OutputPath    string
	OutputPDFPath string
	Workers       int

	// Fetch
	RosterPath        string
	URLTemplate       string
	UserAgent         string
	Retries           int
	Timeout           time.Duration
	Delay             time.Duration
	Robots            bool
	AllowPrivateHosts bool
	Force             bool

	// Graph
	RecordsPath      string
	Owner            string
	MinWeight        int
	DOTPath          string
	RankingPath      string
	PublicationsPath string

	// Behavior
	MetricsTextfile string
	Verbose         bool
}

// Defaults returns the configuration used when no flag, variable or file
// sets a value.
func Defaults() Config {
	return Config{
		StoreDir:    "perfis",
		OutputPath:  "profiles.json",
		URLTemplate: "https://buscatextual.cnpq.br/buscatextual/visualizacv.do?id={id}",
		UserAgent:   "lattes-fetch/1.0 (+https://github.com/hyperifyio/lattes)",
		Retries:     3,
		Timeout:     30 * time.Second,
		Robots:      true,
		RecordsPath: "profiles.json",
		MinWeight:   1,
	}
}

// ErrConfig marks configuration errors.
var ErrConfig = errors.New("config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// ValidateConfig checks the settings cmd needs.
func ValidateConfig(cfg Config, cmd Command) error {
	if cfg.Workers < 0 || cfg.Retries < 0 || cfg.MinWeight < 0 {
		return invalid("negative limits are not allowed")
	}
	if cfg.StoreMaxAge < 0 || cfg.Delay < 0 {
		return invalid("negative durations are not allowed")
	}
	switch cmd {
	case CommandParse:
		if strings.TrimSpace(cfg.StoreDir) == "" {
			return invalid("store directory is required")
		}
		if !strings.HasSuffix(strings.ToLower(cfg.OutputPath), ".json") {
			return invalid("output must be a .json file, got %q", cfg.OutputPath)
		}
	case CommandFetch:
		if strings.TrimSpace(cfg.RosterPath) == "" {
			return invalid("roster path is required")
		}
		if strings.TrimSpace(cfg.StoreDir) == "" {
			return invalid("store directory is required")
		}
		if !strings.Contains(cfg.URLTemplate, "{id}") {
			return invalid("url template must contain {id}")
		}
		if cfg.Timeout <= 0 {
			return invalid("timeout must be positive")
		}
	case CommandGraph:
		if strings.TrimSpace(cfg.RecordsPath) == "" {
			return invalid("records path is required")
		}
		if cfg.DOTPath == "" && cfg.RankingPath == "" && cfg.PublicationsPath == "" {
			return invalid("at least one of dot, ranking or publications output is required")
		}
		if cfg.RankingPath != "" && strings.TrimSpace(cfg.Owner) == "" {
			return invalid("ranking requires an owner")
		}
	default:
		return invalid("unknown command %q", cmd)
	}
	return nil
}
