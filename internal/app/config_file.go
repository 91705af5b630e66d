package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the YAML or JSON configuration file schema. Durations are
// Go duration strings such as "24h". Pointer fields distinguish false or
// zero from unset.
type FileConfig struct {
	Store struct {
		Dir         string `yaml:"dir" json:"dir"`
		MaxAge      string `yaml:"maxAge" json:"maxAge"`
		Clear       bool   `yaml:"clear" json:"clear"`
		StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"store" json:"store"`

	Output struct {
		JSON string `yaml:"json" json:"json"`
		PDF  string `yaml:"pdf" json:"pdf"`
	} `yaml:"output" json:"output"`

	Workers int `yaml:"workers" json:"workers"`

	Fetch struct {
		Roster            string `yaml:"roster" json:"roster"`
		URL               string `yaml:"url" json:"url"`
		UserAgent         string `yaml:"userAgent" json:"userAgent"`
		Retries           *int   `yaml:"retries" json:"retries"`
		Timeout           string `yaml:"timeout" json:"timeout"`
		Delay             string `yaml:"delay" json:"delay"`
		Robots            *bool  `yaml:"robots" json:"robots"`
		AllowPrivateHosts bool   `yaml:"allowPrivateHosts" json:"allowPrivateHosts"`
		Force             bool   `yaml:"force" json:"force"`
	} `yaml:"fetch" json:"fetch"`

	Graph struct {
		Records      string `yaml:"records" json:"records"`
		Owner        string `yaml:"owner" json:"owner"`
		MinWeight    *int   `yaml:"minWeight" json:"minWeight"`
		DOT          string `yaml:"dot" json:"dot"`
		Ranking      string `yaml:"ranking" json:"ranking"`
		Publications string `yaml:"publications" json:"publications"`
	} `yaml:"graph" json:"graph"`

	MetricsTextfile string `yaml:"metricsTextfile" json:"metricsTextfile"`
	Verbose         bool   `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig. Files without a known
// extension are tried as YAML, then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	str := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	flag := func(dst *bool, v bool) {
		if v {
			*dst = true
		}
	}
	dur := func(dst *time.Duration, v, name string) error {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConfig, name, err)
		}
		*dst = d
		return nil
	}

	str(&cfg.StoreDir, fc.Store.Dir)
	if err := dur(&cfg.StoreMaxAge, fc.Store.MaxAge, "store.maxAge"); err != nil {
		return err
	}
	flag(&cfg.StoreClear, fc.Store.Clear)
	flag(&cfg.StoreStrictPerms, fc.Store.StrictPerms)

	str(&cfg.OutputPath, fc.Output.JSON)
	str(&cfg.OutputPDFPath, fc.Output.PDF)
	if fc.Workers > 0 {
		cfg.Workers = fc.Workers
	}

	str(&cfg.RosterPath, fc.Fetch.Roster)
	str(&cfg.URLTemplate, fc.Fetch.URL)
	str(&cfg.UserAgent, fc.Fetch.UserAgent)
	set(&cfg.Retries, fc.Fetch.Retries)
	if err := dur(&cfg.Timeout, fc.Fetch.Timeout, "fetch.timeout"); err != nil {
		return err
	}
	if err := dur(&cfg.Delay, fc.Fetch.Delay, "fetch.delay"); err != nil {
		return err
	}
	set(&cfg.Robots, fc.Fetch.Robots)
	flag(&cfg.AllowPrivateHosts, fc.Fetch.AllowPrivateHosts)
	flag(&cfg.Force, fc.Fetch.Force)

	str(&cfg.RecordsPath, fc.Graph.Records)
	str(&cfg.Owner, fc.Graph.Owner)
	set(&cfg.MinWeight, fc.Graph.MinWeight)
	str(&cfg.DOTPath, fc.Graph.DOT)
	str(&cfg.RankingPath, fc.Graph.Ranking)
	str(&cfg.PublicationsPath, fc.Graph.Publications)

	str(&cfg.MetricsTextfile, fc.MetricsTextfile)
	flag(&cfg.Verbose, fc.Verbose)
	return nil
}

// flagFields copies one flag's field from the parsed flag values. Keys are
// the flag names the commands register.
var flagFields = map[string]func(dst *Config, src Config){
	"store":               func(d *Config, s Config) { d.StoreDir = s.StoreDir },
	"store.maxAge":        func(d *Config, s Config) { d.StoreMaxAge = s.StoreMaxAge },
	"store.clear":         func(d *Config, s Config) { d.StoreClear = s.StoreClear },
	"store.strictPerms":   func(d *Config, s Config) { d.StoreStrictPerms = s.StoreStrictPerms },
	"output":              func(d *Config, s Config) { d.OutputPath = s.OutputPath },
	"output.pdf":          func(d *Config, s Config) { d.OutputPDFPath = s.OutputPDFPath },
	"workers":             func(d *Config, s Config) { d.Workers = s.Workers },
	"roster":              func(d *Config, s Config) { d.RosterPath = s.RosterPath },
	"url":                 func(d *Config, s Config) { d.URLTemplate = s.URLTemplate },
	"ua":                  func(d *Config, s Config) { d.UserAgent = s.UserAgent },
	"retries":             func(d *Config, s Config) { d.Retries = s.Retries },
	"timeout":             func(d *Config, s Config) { d.Timeout = s.Timeout },
	"delay":               func(d *Config, s Config) { d.Delay = s.Delay },
	"robots":              func(d *Config, s Config) { d.Robots = s.Robots },
	"robots.allowPrivate": func(d *Config, s Config) { d.AllowPrivateHosts = s.AllowPrivateHosts },
	"force":               func(d *Config, s Config) { d.Force = s.Force },
	"records":             func(d *Config, s Config) { d.RecordsPath = s.RecordsPath },
	"owner":               func(d *Config, s Config) { d.Owner = s.Owner },
	"min.weight":          func(d *Config, s Config) { d.MinWeight = s.MinWeight },
	"dot":                 func(d *Config, s Config) { d.DOTPath = s.DOTPath },
	"ranking":             func(d *Config, s Config) { d.RankingPath = s.RankingPath },
	"publications":        func(d *Config, s Config) { d.PublicationsPath = s.PublicationsPath },
	"metrics.textfile":    func(d *Config, s Config) { d.MetricsTextfile = s.MetricsTextfile },
	"v":                   func(d *Config, s Config) { d.Verbose = s.Verbose },
}

// Resolve layers configuration with precedence flags > env > file >
// defaults. flagCfg holds the parsed flag values and explicit names the
// flags given on the command line. An empty path skips the file layer.
func Resolve(flagCfg Config, explicit map[string]bool, path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		fc, err := LoadConfigFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		if err := ApplyFileConfig(&cfg, fc); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	for name := range explicit {
		if apply, ok := flagFields[name]; ok {
			apply(&cfg, flagCfg)
		}
	}
	return cfg, nil
}
