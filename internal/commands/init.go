package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/auditlog"
	"github.com/cleared-dev/ledger/internal/config"
	"github.com/cleared-dev/ledger/internal/gitops"
	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/store"
)

type initOptions struct {
	name       string
	backend    string
	currencies []string
	noGit      bool
}

func newInitCommand(global *globalOptions) *cobra.Command {
	opts := initOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := global.repo
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, opts)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger at %s (%s)\n", absDir, hash)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger at %s\n", absDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "ledger name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.backend, "backend", config.BackendCSV, "storage backend (csv or sqlite)")
	cmd.Flags().StringSliceVar(&opts.currencies, "currency", nil, "supported currency, repeatable (default USD,IQD)")
	cmd.Flags().BoolVar(&opts.noGit, "no-git", false, "do not create a git repository")

	return cmd
}

// runInit lays out a new ledger directory and returns the initial commit
// hash, or "" when git is disabled.
func runInit(dir string, opts initOptions) (string, error) {
	cfg := config.Default(opts.name)
	if len(opts.currencies) > 0 {
		cfg.Currencies = make([]string, len(opts.currencies))
		for i, c := range opts.currencies {
			cfg.Currencies[i] = strings.ToUpper(strings.TrimSpace(c))
		}
	}
	cfg.Storage.Backend = opts.backend
	if opts.backend == config.BackendSQLite {
		cfg.Storage.DSN = "ledger.db"
	}
	if opts.noGit {
		cfg.Git.AutoCommit = false
	}
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("invalid settings: %w", err)
	}
	currencies, err := cfg.CurrencySet()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	chart := accounts.DefaultChart()
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := store.Connect(filepath.Join(dir, cfg.Storage.DSN), currencies)
		if err != nil {
			return "", err
		}
		for _, a := range chart {
			if _, err := s.CreateAccount(a); err != nil {
				s.Close()
				return "", fmt.Errorf("writing chart of accounts: %w", err)
			}
		}
		if err := s.Close(); err != nil {
			return "", err
		}
	default:
		if err := accounts.NewFileStore(dir).Save(chart); err != nil {
			return "", fmt.Errorf("writing chart of accounts: %w", err)
		}
		if err := journal.NewService(dir, nil).Init(); err != nil {
			return "", fmt.Errorf("writing journal: %w", err)
		}
	}

	gitignore := "*.db-journal\n*.db-wal\n*.db-shm\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	if cfg.Git.AutoCommit {
		git := gitops.Repo{Dir: dir, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
		if !git.IsRepo() {
			if err := git.Init(); err != nil {
				return "", err
			}
		}
	}

	return recordChange(dir, cfg, auditlog.ActionInit, "Initialize "+opts.name, "")
}
