package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/money"
)

// FileName is the config file at the root of a ledger directory.
const FileName = "ledger.yaml"

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config represents the top-level ledger.yaml configuration.
type Config struct {
	Ledger     LedgerConfig  `yaml:"ledger"`
	Currencies []string      `yaml:"currencies"`
	Storage    StorageConfig `yaml:"storage"`
	Balance    BalanceConfig `yaml:"balance"`
	Log        LogConfig     `yaml:"log"`
	Git        GitConfig     `yaml:"git"`
}

// LedgerConfig identifies the books.
type LedgerConfig struct {
	Name string `yaml:"name"`
}

// StorageConfig selects where accounts and journal entries live.
type StorageConfig struct {
	Backend string `yaml:"backend"`       // "csv" or "sqlite"
	DSN     string `yaml:"dsn,omitempty"` // sqlite file, relative to the ledger root
}

// BalanceConfig tunes balance computation.
type BalanceConfig struct {
	Parallelism int `yaml:"parallelism"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "human" or "json"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a ledger.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(name string) *Config {
	codes := model.DefaultCurrencies.Codes()
	currencies := make([]string, len(codes))
	for i, c := range codes {
		currencies[i] = string(c)
	}
	return &Config{
		Ledger:     LedgerConfig{Name: name},
		Currencies: currencies,
		Storage: StorageConfig{
			Backend: BackendCSV,
		},
		Balance: BalanceConfig{
			Parallelism: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "human",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Ledger",
			AuthorEmail: "ledger@cleared.dev",
		},
	}
}

// Validate checks the currency list and storage settings.
func (c *Config) Validate() error {
	if len(c.Currencies) == 0 {
		return errors.New("at least one currency is required")
	}
	set, err := c.CurrencySet()
	if err != nil {
		return err
	}
	for _, code := range set.Codes() {
		if !money.IsISOCurrency(code) {
			return fmt.Errorf("currency %q is not an ISO 4217 code", code)
		}
	}

	switch c.Storage.Backend {
	case "", BackendCSV:
	case BackendSQLite:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// CurrencySet returns the configured currencies as a closed set.
func (c *Config) CurrencySet() (model.CurrencySet, error) {
	return model.ParseCurrencySet(c.Currencies)
}
