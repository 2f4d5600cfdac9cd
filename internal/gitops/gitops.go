// Package gitops commits ledger changes to the git repository holding the
// ledger directory.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Repo is a ledger directory under git.
type Repo struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// Init initializes a new git repository at r.Dir.
func (r Repo) Init() error {
	if _, err := r.git("init", "--quiet"); err != nil {
		return err
	}
	log.Debug().Str("dir", r.Dir).Msg("initialized git repository")
	return nil
}

// IsRepo reports whether r.Dir is the root of a git repository.
func (r Repo) IsRepo() bool {
	_, err := os.Stat(filepath.Join(r.Dir, ".git"))
	return err == nil
}

// CommitAll stages every change and commits it. Returns the short commit hash.
func (r Repo) CommitAll(message string) (string, error) {
	if _, err := r.git("add", "-A"); err != nil {
		return "", err
	}

	author := fmt.Sprintf("%s <%s>", r.AuthorName, r.AuthorEmail)
	if _, err := r.git("commit", "--quiet", "-m", message, "--author", author); err != nil {
		return "", err
	}

	out, err := r.git("rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	hash := strings.TrimSpace(out)
	log.Debug().Str("commit", hash).Str("message", message).Msg("committed ledger changes")
	return hash, nil
}

func (r Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	// The committer identity follows the author so commits work without a
	// global git config.
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+r.AuthorName,
		"GIT_COMMITTER_EMAIL="+r.AuthorEmail,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
