// Package instance decides whether a project checkout runs in "normal" or
// "isolate" mode, letting multiple git worktrees of the same project
// coexist under distinct wire-names.
package instance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"zapper/pkg/logging"
)

const instanceSubsystem = "InstanceResolver"

// FileName is the instance document's path relative to .zap/.
const FileName = "instance.json"

// Mode is the two-valued isolation state of a project checkout.
type Mode string

const (
	ModeNormal  Mode = "normal"
	ModeIsolate Mode = "isolate"
)

// Config is the persisted shape of instance.json.
type Config struct {
	InstanceID string `json:"instanceId,omitempty"`
	Mode       Mode   `json:"mode"`
}

// Resolution is the outcome of Resolve: the effective mode/id, plus whether
// a worktree warning should be surfaced to the user.
type Resolution struct {
	Mode            Mode
	InstanceID      string
	WorktreeWarning bool
}

// Resolver loads and persists instance.json under a single project root.
type Resolver struct {
	root string
	path string
}

// New returns a Resolver for the instance document under projectRoot/.zap.
func New(projectRoot string) *Resolver {
	return &Resolver{root: projectRoot, path: filepath.Join(projectRoot, ".zap", FileName)}
}

func (r *Resolver) load() (Config, bool) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return Config{}, false
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		logging.Warn(instanceSubsystem, "could not parse %s: %v; treating as absent", r.path, err)
		return Config{}, false
	}
	return cfg, true
}

// Resolve picks the instance mode in priority order: an explicit saved
// instance id wins, then a git-worktree checkout gets a one-time warning,
// then normal mode. suppressWarning lets tests and non-interactive
// callers opt out of that warning without affecting the resolved mode.
func (r *Resolver) Resolve(suppressWarning bool) Resolution {
	if cfg, ok := r.load(); ok && cfg.InstanceID != "" {
		return Resolution{Mode: ModeIsolate, InstanceID: cfg.InstanceID}
	}

	if !suppressWarning && isGitWorktree(r.root) {
		logging.Warn(instanceSubsystem,
			"this checkout is a git worktree; consider running the isolate command so its services get a distinct instance id")
		return Resolution{Mode: ModeNormal, WorktreeWarning: true}
	}

	return Resolution{Mode: ModeNormal}
}

// isGitWorktree detects a git worktree checkout: root/.git is a regular
// file (not a directory) whose "gitdir:" line points into a worktrees/
// subtree of another repository.
func isGitWorktree(root string) bool {
	gitPath := filepath.Join(root, ".git")
	info, err := os.Stat(gitPath)
	if err != nil || info.IsDir() {
		return false
	}

	data, err := os.ReadFile(gitPath)
	if err != nil {
		return false
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "gitdir:"); ok {
			return strings.Contains(filepath.ToSlash(strings.TrimSpace(after)), "/worktrees/")
		}
	}
	return false
}

// IsolateProject persists explicit isolation: if requestedID is non-empty
// it is stored verbatim (overwriting any prior id); otherwise any existing
// id is reused; otherwise a fresh six-character id is minted.
func (r *Resolver) IsolateProject(requestedID string) (Config, error) {
	id := requestedID
	if id == "" {
		if existing, ok := r.load(); ok && existing.InstanceID != "" {
			id = existing.InstanceID
		} else {
			id = mintInstanceID()
		}
	}

	cfg := Config{InstanceID: id, Mode: ModeIsolate}
	if err := r.save(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (r *Resolver) save(cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// mintInstanceID draws six lowercase alphanumeric characters derived from a
// fresh uuid.New() value. google/uuid reads its randomness from
// crypto/rand by default, giving a ready source of cryptographically
// random bytes to fold into the shorter alphabet the wire-name format
// wants.
func mintInstanceID() string {
	id := uuid.New()
	raw := id[:]
	out := make([]byte, 6)
	for i := range out {
		out[i] = idAlphabet[int(raw[i])%len(idAlphabet)]
	}
	return string(out)
}
