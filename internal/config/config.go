// Package config assembles the checker configuration: built-in defaults,
// then an optional TOML file, then the environment. Command-line flags are
// applied last by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// DefaultFile is the repository-relative location of the optional config file.
const DefaultFile = ".ai/aigov.toml"

// Config is the full checker configuration. Paths are repository-relative
// unless absolute; Path resolves them against Root.
type Config struct {
	Root   string       `toml:"-"`
	Index  IndexConfig  `toml:"index"`
	Scope  ScopeConfig  `toml:"scope"`
	Forbid ForbidConfig `toml:"forbid"`
	Budget BudgetConfig `toml:"budget"`
	Env    Env          `toml:"-"`
}

type IndexConfig struct {
	Path        string `toml:"path"`
	Schema      string `toml:"schema"`
	StrictOrder bool   `toml:"strict_order"`

	// OrderDiffMaxBytes caps the key-order diff input; larger diffs are
	// replaced by a placeholder. 0 means no limit.
	OrderDiffMaxBytes int `toml:"order_diff_max_bytes"`
}

type ScopeConfig struct {
	// BaseRef is the diff base in CI. GITHUB_BASE_REF overrides it.
	BaseRef string `toml:"base_ref"`
}

type ForbidConfig struct {
	Paths []string `toml:"paths"`
}

type BudgetConfig struct {
	Packet    string `toml:"packet"`
	MaxChunks int    `toml:"max_chunks"`
	MaxTokens int    `toml:"max_tokens"`
}

// Env holds the environment inputs.
type Env struct {
	// CI marks a continuous-integration run when set to any non-empty value.
	CI         string `env:"CI"`
	BaseRef    string `env:"GITHUB_BASE_REF"`
	ConfigFile string `env:"AIGOV_CONFIG"`
}

// InCI reports whether the run is a CI run.
func (c Config) InCI() bool { return c.Env.CI != "" }

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Root: ".",
		Index: IndexConfig{
			Path:              ".ai/AI_INDEX.yml",
			Schema:            ".ai/schemas/ai_index.schema.json",
			OrderDiffMaxBytes: 64 << 10,
		},
		Scope: ScopeConfig{BaseRef: "origin/main"},
		Forbid: ForbidConfig{Paths: []string{
			".ai/working-state.json",
			".ai/out/packet.md",
		}},
		Budget: BudgetConfig{
			Packet:    ".ai/out/packet.md",
			MaxChunks: 15,
			MaxTokens: 8000,
		},
	}
}

// Load builds the configuration for the repository at root. file overrides
// the config file location; when empty, AIGOV_CONFIG and then DefaultFile are
// tried. A missing default file is not an error; a missing explicit one is.
func Load(root, file string) (Config, error) {
	cfg := Default()
	if root != "" {
		cfg.Root = root
	}
	if err := env.Parse(&cfg.Env); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	explicit := file != "" || cfg.Env.ConfigFile != ""
	if file == "" {
		file = cfg.Env.ConfigFile
	}
	if file == "" {
		file = DefaultFile
	}
	switch err := decodeFile(cfg.abs(file), &cfg); {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, err
	}

	if cfg.Env.BaseRef != "" {
		cfg.Scope.BaseRef = cfg.Env.BaseRef
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if und := meta.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate rejects configurations the checks cannot run with.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Index.Path) == "" {
		problems = append(problems, "index.path must be non-empty")
	}
	if strings.TrimSpace(c.Index.Schema) == "" {
		problems = append(problems, "index.schema must be non-empty")
	}
	if c.Index.OrderDiffMaxBytes < 0 {
		problems = append(problems, fmt.Sprintf("index.order_diff_max_bytes must be >= 0 (got %d)", c.Index.OrderDiffMaxBytes))
	}
	if strings.TrimSpace(c.Budget.Packet) == "" {
		problems = append(problems, "budget.packet must be non-empty")
	}
	if c.Budget.MaxChunks <= 0 {
		problems = append(problems, fmt.Sprintf("budget.max_chunks must be > 0 (got %d)", c.Budget.MaxChunks))
	}
	if c.Budget.MaxTokens <= 0 {
		problems = append(problems, fmt.Sprintf("budget.max_tokens must be > 0 (got %d)", c.Budget.MaxTokens))
	}
	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Path resolves a configured path against Root.
func (c Config) Path(p string) string { return c.abs(p) }

func (c Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}
