// Package container implements the Container Port: the narrow interface
// the core uses to drive the local container runtime through its CLI,
// following an os/exec CLI-wrapping idiom for a run/rm/inspect/list/
// logs/volume-create contract against zapper's own wire-name and label
// scheme.
package container

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"zapper/internal/zerrors"
	"zapper/pkg/logging"
)

const containerSubsystem = "ContainerPort"

// execCommandContext is a package-level seam for test mocking.
var execCommandContext = exec.CommandContext

// Spec describes everything needed to run one container.
type Spec struct {
	Project  string
	Service  string
	Image    string
	Ports    []string
	Volumes  []string // "name:internalPath" form, already resolved
	Networks []string
	Env      map[string]string
	Command  string
}

// Info is the result of an inspect call.
type Info struct {
	ID        string
	Name      string
	Status    string
	Networks  []string
	Created   time.Time
	StartedAt time.Time
}

// Runtime wraps the docker CLI. All methods run the CLI via
// execCommandContext so tests can swap it for a fake.
type Runtime struct{}

// New returns a Runtime. It does not itself verify docker is reachable —
// callers that want a fail-fast check should run ListContainers once at startup.
func New() *Runtime {
	return &Runtime{}
}

func buildLabels(project, service string) []string {
	return []string{
		fmt.Sprintf("com.docker.compose.project=%s", project),
		fmt.Sprintf("com.docker.compose.service=%s", service),
		fmt.Sprintf("com.zapper.project=%s", project),
		fmt.Sprintf("com.zapper.service=%s", service),
	}
}

func buildRunArgs(wireName string, spec Spec, detach bool) []string {
	args := []string{"run"}
	if detach {
		args = append(args, "-d")
	}
	args = append(args, "--name", wireName)

	for _, label := range buildLabels(spec.Project, spec.Service) {
		args = append(args, "--label", label)
	}
	for _, port := range spec.Ports {
		args = append(args, "-p", port)
	}
	for _, vol := range spec.Volumes {
		args = append(args, "-v", vol)
	}
	for _, network := range spec.Networks {
		args = append(args, "--network", network)
	}
	for k, v := range spec.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	args = append(args, spec.Image)
	if spec.Command != "" {
		args = append(args, strings.Fields(spec.Command)...)
	}
	return args
}

// StartContainer runs wireName synchronously, blocking until the
// foreground run command returns. StartContainerAsync is the normal
// entry point for the Executor.
func (r *Runtime) StartContainer(ctx context.Context, wireName string, spec Spec) error {
	if err := r.removeIfExists(ctx, wireName); err != nil {
		return err
	}
	cmd := execCommandContext(ctx, "docker", buildRunArgs(wireName, spec, false)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// StartContainerAsync is the Executor's native start path: "rm -f" the
// wire-name to avoid collisions, then "run -d", returning the container's
// host pid (as reported by inspect) once it is up.
func (r *Runtime) StartContainerAsync(ctx context.Context, wireName string, spec Spec) (int, error) {
	if err := r.removeIfExists(ctx, wireName); err != nil {
		return 0, err
	}

	logging.Debug(containerSubsystem, "starting container %s", wireName)
	cmd := execCommandContext(ctx, "docker", buildRunArgs(wireName, spec, true)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, &zerrors.BackendFailure{
			Kind:   "container",
			Stderr: fmt.Sprintf("starting container %s: %v\noutput: %s", wireName, err, string(output)),
			Cause:  err,
		}
	}

	pid, err := r.inspectPid(ctx, wireName)
	if err != nil {
		logging.Warn(containerSubsystem, "container %s started but pid lookup failed: %v", wireName, err)
	}
	return pid, nil
}

func (r *Runtime) removeIfExists(ctx context.Context, wireName string) error {
	cmd := execCommandContext(ctx, "docker", "rm", "-f", wireName)
	_ = cmd.Run() // absent container is not an error
	return nil
}

// StopContainer removes wireName outright (rather than "docker stop"):
// removal is what prevents the next start from colliding on the same
// name.
func (r *Runtime) StopContainer(ctx context.Context, wireName string) error {
	logging.Info(containerSubsystem, "stopping container %s", wireName)
	cmd := execCommandContext(ctx, "docker", "rm", "-f", wireName)
	if output, err := cmd.CombinedOutput(); err != nil {
		return &zerrors.BackendFailure{
			Kind:   "container",
			Stderr: fmt.Sprintf("stopping container %s: %v\noutput: %s", wireName, err, string(output)),
			Cause:  err,
		}
	}
	return nil
}

type inspectEntry struct {
	ID    string `json:"Id"`
	Name  string `json:"Name"`
	State struct {
		Status    string `json:"Status"`
		Pid       int    `json:"Pid"`
		StartedAt string `json:"StartedAt"`
	} `json:"State"`
	Created         string `json:"Created"`
	NetworkSettings struct {
		Networks map[string]interface{} `json:"Networks"`
	} `json:"NetworkSettings"`
}

// GetContainerInfo inspects wireName, returning nil (no error) when the
// container does not exist.
func (r *Runtime) GetContainerInfo(ctx context.Context, wireName string) (*Info, error) {
	cmd := execCommandContext(ctx, "docker", "inspect", wireName)
	output, err := cmd.Output()
	if err != nil {
		return nil, nil
	}

	var entries []inspectEntry
	if err := json.Unmarshal(output, &entries); err != nil || len(entries) == 0 {
		return nil, fmt.Errorf("parsing inspect output for %s: %w", wireName, err)
	}

	e := entries[0]
	networks := make([]string, 0, len(e.NetworkSettings.Networks))
	for name := range e.NetworkSettings.Networks {
		networks = append(networks, name)
	}

	info := &Info{
		ID:       e.ID,
		Name:     strings.TrimPrefix(e.Name, "/"),
		Status:   e.State.Status,
		Networks: networks,
	}
	if created, err := time.Parse(time.RFC3339Nano, e.Created); err == nil {
		info.Created = created
	}
	if started, err := time.Parse(time.RFC3339Nano, e.State.StartedAt); err == nil {
		info.StartedAt = started
	}
	return info, nil
}

func (r *Runtime) inspectPid(ctx context.Context, wireName string) (int, error) {
	cmd := execCommandContext(ctx, "docker", "inspect", "-f", "{{.State.Pid}}", wireName)
	output, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(output)), "%d", &pid); err != nil {
		return 0, err
	}
	return pid, nil
}

// ListedContainer is one row of ListContainers.
type ListedContainer struct {
	Name   string
	Status string
}

// ListContainers runs "ps -a" filtered to zapper-managed containers via the
// com.zapper.project label, returning every container regardless of
// running state.
func (r *Runtime) ListContainers(ctx context.Context, project string) ([]ListedContainer, error) {
	cmd := execCommandContext(ctx, "docker", "ps", "-a",
		"--filter", fmt.Sprintf("label=com.zapper.project=%s", project),
		"--format", "{{.Names}}\t{{.Status}}")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	var out []ListedContainer
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		fields := strings.SplitN(scanner.Text(), "\t", 2)
		if len(fields) != 2 {
			continue
		}
		out = append(out, ListedContainer{Name: fields[0], Status: fields[1]})
	}
	return out, nil
}

// IsRunning reports whether status (as reported by ListContainers or
// GetContainerInfo) counts as "up": exactly "running", or any status
// string containing "up" (docker ps prints "Up 3 minutes").
func IsRunning(status string) bool {
	lower := strings.ToLower(status)
	return lower == "running" || strings.Contains(lower, "up")
}

// CreateVolume creates a named volume, idempotently: a failure (the volume
// already existing, or any other docker-side complaint) is swallowed.
func (r *Runtime) CreateVolume(ctx context.Context, name string) {
	cmd := execCommandContext(ctx, "docker", "volume", "create", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		logging.Debug(containerSubsystem, "create volume %s: %v (%s)", name, err, strings.TrimSpace(string(output)))
	}
}

// ShowLogs streams wireName's logs. When follow is false, docker logs exits
// once the backlog is drained.
func (r *Runtime) ShowLogs(ctx context.Context, wireName string, follow bool) (io.ReadCloser, error) {
	args := []string{"logs"}
	if follow {
		args = append(args, "-f")
	}
	args = append(args, wireName)

	cmd := execCommandContext(ctx, "docker", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("getting stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("getting stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return nil, fmt.Errorf("starting logs command: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		defer stdout.Close()
		defer stderr.Close()
		go io.Copy(pw, stdout)
		io.Copy(pw, stderr)
		cmd.Wait()
	}()
	return pr, nil
}
