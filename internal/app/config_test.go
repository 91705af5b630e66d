package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestValidateConfig(t *testing.T) {
	ok := Defaults()
	ok.RosterPath = "roster.csv"
	ok.DOTPath = "g.dot"
	for _, cmd := range []Command{CommandParse, CommandFetch, CommandGraph} {
		if err := ValidateConfig(ok, cmd); err != nil {
			t.Fatalf("%s: unexpected error %v", cmd, err)
		}
	}

	cases := []struct {
		name string
		cmd  Command
		mut  func(*Config)
	}{
		{"parse csv output", CommandParse, func(c *Config) { c.OutputPath = "out.csv" }},
		{"parse no store", CommandParse, func(c *Config) { c.StoreDir = " " }},
		{"negative workers", CommandParse, func(c *Config) { c.Workers = -1 }},
		{"fetch no roster", CommandFetch, func(c *Config) { c.RosterPath = "" }},
		{"fetch template", CommandFetch, func(c *Config) { c.URLTemplate = "http://x/cv" }},
		{"fetch timeout", CommandFetch, func(c *Config) { c.Timeout = 0 }},
		{"negative delay", CommandFetch, func(c *Config) { c.Delay = -time.Second }},
		{"graph no outputs", CommandGraph, func(c *Config) { c.DOTPath = "" }},
		{"graph ranking without owner", CommandGraph, func(c *Config) { c.RankingPath = "r.json" }},
		{"unknown command", Command("serve"), func(*Config) {}},
	}
	for _, tc := range cases {
		cfg := ok
		tc.mut(&cfg)
		if err := ValidateConfig(cfg, tc.cmd); !errors.Is(err, ErrConfig) {
			t.Fatalf("%s: expected ErrConfig, got %v", tc.name, err)
		}
	}
}

func TestLoadConfigFile_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	y := writeFile(t, dir, "lattes.yaml", `
store:
  dir: data/perfis
  maxAge: 72h
fetch:
  roster: professores.csv
  retries: 0
  robots: false
  delay: 1500ms
graph:
  owner: Yuri Alves de Monteiro Barbosa
  minWeight: 2
  dot: out/yuri.dot
verbose: true
`)
	fc, err := LoadConfigFile(y)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	cfg := Defaults()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.StoreDir != "data/perfis" || cfg.StoreMaxAge != 72*time.Hour || cfg.RosterPath != "professores.csv" {
		t.Fatalf("unexpected cfg %#v", cfg)
	}
	if cfg.Retries != 0 || cfg.Robots || cfg.Delay != 1500*time.Millisecond {
		t.Fatalf("explicit zero values must apply: %#v", cfg)
	}
	if cfg.Owner != "Yuri Alves de Monteiro Barbosa" || cfg.MinWeight != 2 || cfg.DOTPath != "out/yuri.dot" || !cfg.Verbose {
		t.Fatalf("graph section not applied: %#v", cfg)
	}
	if cfg.OutputPath != "profiles.json" || cfg.Timeout != 30*time.Second {
		t.Fatalf("unset values must keep defaults: %#v", cfg)
	}

	j := writeFile(t, dir, "lattes.json", `{"output":{"json":"out/p.json","pdf":"out/p.pdf"},"workers":3}`)
	fc, err = LoadConfigFile(j)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	cfg = Defaults()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatal(err)
	}
	if cfg.OutputPath != "out/p.json" || cfg.OutputPDFPath != "out/p.pdf" || cfg.Workers != 3 {
		t.Fatalf("json not applied: %#v", cfg)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	var fc FileConfig
	fc.Fetch.Timeout = "soon"
	cfg := Defaults()
	if err := ApplyFileConfig(&cfg, fc); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LATTES_STORE_DIR", "/srv/perfis")
	t.Setenv("LATTES_WORKERS", "8")
	t.Setenv("LATTES_ROBOTS", "false")
	t.Setenv("LATTES_DELAY", "2s")
	t.Setenv("LATTES_OWNER", "Ana Costa")

	cfg := Defaults()
	if err := ApplyEnvOverrides(&cfg); err != nil {
		t.Fatalf("env: %v", err)
	}
	if cfg.StoreDir != "/srv/perfis" || cfg.Workers != 8 || cfg.Robots || cfg.Delay != 2*time.Second || cfg.Owner != "Ana Costa" {
		t.Fatalf("unexpected cfg %#v", cfg)
	}
	if cfg.OutputPath != "profiles.json" {
		t.Fatalf("unset variables must not change cfg")
	}

	t.Setenv("LATTES_WORKERS", "many")
	if err := ApplyEnvOverrides(&cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for malformed value, got %v", err)
	}
}

func TestResolve_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lattes.yml", "store:\n  dir: from-file\noutput:\n  json: file.json\nworkers: 2\n")
	t.Setenv("LATTES_OUTPUT", "env.json")
	t.Setenv("LATTES_WORKERS", "4")

	flags := Config{Workers: 6, OutputPath: "ignored.json"}
	cfg, err := Resolve(flags, map[string]bool{"workers": true}, path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.StoreDir != "from-file" {
		t.Fatalf("file should beat defaults: %q", cfg.StoreDir)
	}
	if cfg.OutputPath != "env.json" {
		t.Fatalf("env should beat file and unset flags: %q", cfg.OutputPath)
	}
	if cfg.Workers != 6 {
		t.Fatalf("explicit flag should win: %d", cfg.Workers)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("defaults should fill the rest")
	}

	if _, err := Resolve(Config{}, nil, filepath.Join(dir, "missing.yaml")); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for missing file, got %v", err)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	t.Setenv("LATTES_A", "")
	os.Unsetenv("LATTES_A")
	t.Setenv("LATTES_B", "")
	os.Unsetenv("LATTES_B")
	t.Setenv("LATTES_KEEP", "process")

	dir := t.TempDir()
	a := writeFile(t, dir, ".env", "# comment\nLATTES_A=first\nexport LATTES_B='quoted value'\nLATTES_KEEP=file\nmalformed\n")
	b := writeFile(t, dir, ".env.local", "LATTES_A=second\n")
	if err := LoadEnvFiles(a, b, filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("LATTES_A"); got != "second" {
		t.Fatalf("later file should override: %q", got)
	}
	if got := os.Getenv("LATTES_B"); got != "quoted value" {
		t.Fatalf("quotes not stripped: %q", got)
	}
	if got := os.Getenv("LATTES_KEEP"); got != "process" {
		t.Fatalf("process environment must win: %q", got)
	}
}

func TestVersionString(t *testing.T) {
	if got := VersionString("lattes-parse"); got != "lattes-parse 0.0.0-dev (commit unknown, built unknown)" {
		t.Fatalf("got %q", got)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{ErrNoRecords, 2},
		{fmt.Errorf("graph: %w", ErrNoRecords), 2},
		{invalid("bad"), 1},
		{errors.New("boom"), 1},
	}
	for _, tc := range cases {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
