package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every recognized environment variable.
const EnvPrefix = "LATTES"

// envOverrides lists the variables that may override file values. Nil
// fields were not set.
type envOverrides struct {
	StoreDir          *string        `envconfig:"STORE_DIR"`
	StoreMaxAge       *time.Duration `envconfig:"STORE_MAX_AGE"`
	StoreClear        *bool          `envconfig:"STORE_CLEAR"`
	StoreStrictPerms  *bool          `envconfig:"STORE_STRICT_PERMS"`
	Output            *string        `envconfig:"OUTPUT"`
	OutputPDF         *string        `envconfig:"OUTPUT_PDF"`
	Workers           *int           `envconfig:"WORKERS"`
	Roster            *string        `envconfig:"ROSTER"`
	URLTemplate       *string        `envconfig:"URL_TEMPLATE"`
	UserAgent         *string        `envconfig:"USER_AGENT"`
	Retries           *int           `envconfig:"RETRIES"`
	Timeout           *time.Duration `envconfig:"TIMEOUT"`
	Delay             *time.Duration `envconfig:"DELAY"`
	Robots            *bool          `envconfig:"ROBOTS"`
	AllowPrivateHosts *bool          `envconfig:"ALLOW_PRIVATE_HOSTS"`
	Force             *bool          `envconfig:"FORCE"`
	Records           *string        `envconfig:"RECORDS"`
	Owner             *string        `envconfig:"OWNER"`
	MinWeight         *int           `envconfig:"MIN_WEIGHT"`
	DOT               *string        `envconfig:"DOT"`
	Ranking           *string        `envconfig:"RANKING"`
	Publications      *string        `envconfig:"PUBLICATIONS"`
	MetricsTextfile   *string        `envconfig:"METRICS_TEXTFILE"`
	Verbose           *bool          `envconfig:"VERBOSE"`
}

// ApplyEnvOverrides overwrites cfg with every LATTES_* variable that is set.
// A malformed value is a configuration error.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	var e envOverrides
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return fmt.Errorf("%w: environment: %v", ErrConfig, err)
	}
	set(&cfg.StoreDir, e.StoreDir)
	set(&cfg.StoreMaxAge, e.StoreMaxAge)
	set(&cfg.StoreClear, e.StoreClear)
	set(&cfg.StoreStrictPerms, e.StoreStrictPerms)
	set(&cfg.OutputPath, e.Output)
	set(&cfg.OutputPDFPath, e.OutputPDF)
	set(&cfg.Workers, e.Workers)
	set(&cfg.RosterPath, e.Roster)
	set(&cfg.URLTemplate, e.URLTemplate)
	set(&cfg.UserAgent, e.UserAgent)
	set(&cfg.Retries, e.Retries)
	set(&cfg.Timeout, e.Timeout)
	set(&cfg.Delay, e.Delay)
	set(&cfg.Robots, e.Robots)
	set(&cfg.AllowPrivateHosts, e.AllowPrivateHosts)
	set(&cfg.Force, e.Force)
	set(&cfg.RecordsPath, e.Records)
	set(&cfg.Owner, e.Owner)
	set(&cfg.MinWeight, e.MinWeight)
	set(&cfg.DOTPath, e.DOT)
	set(&cfg.RankingPath, e.Ranking)
	set(&cfg.PublicationsPath, e.Publications)
	set(&cfg.MetricsTextfile, e.MetricsTextfile)
	set(&cfg.Verbose, e.Verbose)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
