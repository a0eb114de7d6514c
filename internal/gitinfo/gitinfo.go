// Package gitinfo queries the project's git checkout for build metadata.
// Every lookup is best-effort: a missing git binary or remote never fails
// the build.
package gitinfo

import (
	"context"
	"strings"

	"github.com/kodedot/kodebuild/internal/logger"
	"github.com/kodedot/kodebuild/internal/runner"
)

// UnknownOwner is reported when the repository owner cannot be determined.
const UnknownOwner = "unknown"

// Repo answers questions about a git checkout
type Repo struct {
	run runner.Runner
	log *logger.Logger
}

// New creates a Repo backed by r
func New(r runner.Runner, log *logger.Logger) *Repo {
	return &Repo{run: r, log: log}
}

// RepoOwner returns "owner/repo" from the origin remote URL, or UnknownOwner.
func (g *Repo) RepoOwner(ctx context.Context) string {
	out, err := g.run.Run(ctx, "git", "config", "--get", "remote.origin.url")
	if err != nil {
		g.log.Debug("Repository owner lookup failed", "error", err)
		return UnknownOwner
	}
	owner, ok := ParseOwner(string(out))
	if !ok {
		g.log.Debug("Unrecognised remote URL", "url", strings.TrimSpace(string(out)))
		return UnknownOwner
	}
	return owner
}

// ShortSHA returns the abbreviated HEAD commit hash.
func (g *Repo) ShortSHA(ctx context.Context) (string, bool) {
	out, err := g.run.Run(ctx, "git", "rev-parse", "--short", "HEAD")
	if err != nil {
		g.log.Debug("HEAD lookup failed", "error", err)
		return "", false
	}
	sha := strings.TrimSpace(string(out))
	return sha, sha != ""
}

// ParseOwner extracts "owner/repo" from a remote URL. Both
// https://host/owner/repo.git and git@host:owner/repo.git are accepted.
func ParseOwner(url string) (string, bool) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		// scp-style with no path separator after the host, e.g. host:repo.git
		return "", false
	}

	owner := parts[len(parts)-2]
	if i := strings.LastIndex(owner, ":"); i >= 0 {
		owner = owner[i+1:]
	}
	repo := strings.TrimSuffix(parts[len(parts)-1], ".git")
	if owner == "" || repo == "" {
		return "", false
	}
	return owner + "/" + repo, true
}
