// Package gitops wraps the git CLI for every service that declares a
// repo: clone, checkout, pull, and status, following the same
// os/exec-wrapping idiom as internal/container and internal/supervisor.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"zapper/internal/zapconfig"
	"zapper/pkg/logging"
)

const gitSubsystem = "GitOps"

var execCommandContext = exec.CommandContext

// Port wraps the git CLI for a set of services that declare a repo.
type Port struct {
	Method zapconfig.GitMethod
}

// New returns a Port using method to rewrite repo URLs before every clone.
func New(method zapconfig.GitMethod) *Port {
	return &Port{Method: method}
}

// RewriteURL applies the port's git method to a repo URL: ssh rewrites an
// https://github.com/org/repo(.git) URL to git@github.com:org/repo.git;
// http is the identity transform for an already-https URL; cli leaves the
// URL untouched and relies on the user's own git credential helper.
func (p *Port) RewriteURL(repo string) string {
	switch p.Method {
	case zapconfig.GitMethodSSH:
		return toSSH(repo)
	default:
		return repo
	}
}

func toSSH(repo string) string {
	if strings.HasPrefix(repo, "git@") {
		return repo
	}
	trimmed := strings.TrimPrefix(repo, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return repo
	}
	host, path := parts[0], parts[1]
	if !strings.HasSuffix(path, ".git") {
		path += ".git"
	}
	return fmt.Sprintf("git@%s:%s", host, path)
}

// Clone clones repo into destDir if destDir doesn't already contain a
// checkout; cloning an already-cloned repo is a no-op, making CloneRepos
// idempotent across repeated `zapper clone` invocations.
func (p *Port) Clone(ctx context.Context, repo, destDir string) error {
	if _, err := os.Stat(filepath.Join(destDir, ".git")); err == nil {
		logging.Debug(gitSubsystem, "%s already checked out, skipping clone", destDir)
		return nil
	}

	url := p.RewriteURL(repo)
	logging.Info(gitSubsystem, "cloning %s into %s", url, destDir)

	cmd := execCommandContext(ctx, "git", "clone", url, destDir)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("cloning %s: %w\noutput: %s", url, err, string(output))
	}
	return nil
}

// Checkout switches dir's repo to branch.
func (p *Port) Checkout(ctx context.Context, dir, branch string) error {
	cmd := execCommandContext(ctx, "git", "-C", dir, "checkout", branch)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("checking out %s in %s: %w\noutput: %s", branch, dir, err, string(output))
	}
	return nil
}

// Pull fast-forwards dir's repo on its current branch.
func (p *Port) Pull(ctx context.Context, dir string) error {
	cmd := execCommandContext(ctx, "git", "-C", dir, "pull", "--ff-only")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pulling in %s: %w\noutput: %s", dir, err, string(output))
	}
	return nil
}

// Status is one repo's porcelain status summary.
type Status struct {
	Dir       string
	Branch    string
	Dirty     bool
	Ahead     int
	Behind    int
}

// Status reports dir's current branch and working-tree cleanliness via
// `git status --porcelain=v2 --branch`.
func (p *Port) Status(ctx context.Context, dir string) (Status, error) {
	cmd := execCommandContext(ctx, "git", "-C", dir, "status", "--porcelain=v2", "--branch")
	output, err := cmd.Output()
	if err != nil {
		return Status{}, fmt.Errorf("getting status in %s: %w", dir, err)
	}
	return parsePorcelainV2(dir, string(output)), nil
}

func parsePorcelainV2(dir, output string) Status {
	status := Status{Dir: dir}
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "# branch.head "):
			status.Branch = strings.TrimPrefix(line, "# branch.head ")
		case strings.HasPrefix(line, "# branch.ab "):
			fmt.Sscanf(strings.TrimPrefix(line, "# branch.ab "), "+%d -%d", &status.Ahead, &status.Behind)
		case line != "" && !strings.HasPrefix(line, "#"):
			status.Dirty = true
		}
	}
	return status
}
