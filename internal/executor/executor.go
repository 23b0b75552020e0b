// Package executor runs an ActionPlan's waves in parallel, fork/join at
// each wave boundary, and waits on health checks before the next wave
// starts.
package executor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"zapper/internal/container"
	"zapper/internal/naming"
	"zapper/internal/planner"
	"zapper/internal/state"
	"zapper/internal/supervisor"
	"zapper/internal/zapconfig"
	"zapper/pkg/logging"
)

const executorSubsystem = "Executor"

// healthProbeAttempts and healthProbeInterval bound a URL health check:
// 120 attempts at 1-second intervals.
const (
	healthProbeAttempts = 120
	healthProbeInterval = time.Second
	healthProbeTimeout  = 2 * time.Second
)

// SupervisorClient is the subset of the Supervisor Port the Executor
// needs; *supervisor.Port satisfies it. Declared as an interface here so
// tests can substitute a fake.
type SupervisorClient interface {
	List(ctx context.Context) ([]supervisor.ProcessInfo, error)
	Start(ctx context.Context, spec supervisor.StartSpec, projectRootFallback string) error
	Stop(ctx context.Context, wireName string, pid int) error
	Delete(ctx context.Context, wireName string) error
}

// ContainerClient is the subset of the Container Port the Executor needs;
// *container.Runtime satisfies it.
type ContainerClient interface {
	StartContainerAsync(ctx context.Context, wireName string, spec container.Spec) (int, error)
	StopContainer(ctx context.Context, wireName string) error
	CreateVolume(ctx context.Context, name string)
}

// Executor runs ActionPlans against the Supervisor and Container ports,
// recording per-service runtime metadata into the State Store.
type Executor struct {
	ProjectRoot string
	Project     string
	Instance    string // empty in "normal" mode

	Supervisor SupervisorClient
	Container  ContainerClient
	State      *state.Store

	httpClient *http.Client
}

// New returns an Executor wired to the given ports and store.
func New(projectRoot, project, instance string, sup SupervisorClient, cont ContainerClient, store *state.Store) *Executor {
	return &Executor{
		ProjectRoot: projectRoot,
		Project:     project,
		Instance:    instance,
		Supervisor:  sup,
		Container:   cont,
		State:       store,
		httpClient:  &http.Client{Timeout: healthProbeTimeout},
	}
}

// ServiceLookup is supplied by the caller (the Orchestrator facade, which
// holds the Context) so the Executor doesn't need its own copy.
type ServiceLookup func(name string) (zapconfig.Service, bool)

// Run executes every wave of plan in order, joining on each wave's actions
// and health waits before starting the next. It returns on the first
// wave-level error without rolling back prior waves.
func (e *Executor) Run(ctx context.Context, plan planner.ActionPlan, lookup ServiceLookup) error {
	for i, wave := range plan.Waves {
		logging.Info(executorSubsystem, "running wave %d/%d (%d actions)", i+1, len(plan.Waves), len(wave.Actions))

		if err := e.runWave(ctx, wave, lookup); err != nil {
			return fmt.Errorf("wave %d: %w", i+1, err)
		}
	}
	return nil
}

func (e *Executor) runWave(ctx context.Context, wave planner.ExecutionWave, lookup ServiceLookup) error {
	var wg sync.WaitGroup
	errs := make([]error, len(wave.Actions))

	for i, action := range wave.Actions {
		wg.Add(1)
		go func(i int, action planner.Action) {
			defer wg.Done()
			errs[i] = e.runAction(ctx, action, lookup)
		}(i, action)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	var healthWg sync.WaitGroup
	for _, action := range wave.Actions {
		if action.Type != planner.ActionStart {
			continue
		}
		healthWg.Add(1)
		go func(action planner.Action) {
			defer healthWg.Done()
			e.waitHealthy(ctx, action)
		}(action)
	}
	healthWg.Wait()

	return nil
}

func (e *Executor) runAction(ctx context.Context, action planner.Action, lookup ServiceLookup) error {
	svc, ok := lookup(action.Name)
	if !ok {
		return fmt.Errorf("executor: service %q vanished from context mid-plan", action.Name)
	}

	wireName := naming.BuildServiceName(e.Project, svc.Name, e.Instance)

	switch {
	case action.Type == planner.ActionStart && action.ServiceType == zapconfig.KindNative:
		return e.startNative(ctx, wireName, svc)
	case action.Type == planner.ActionStart && action.ServiceType == zapconfig.KindContainer:
		return e.startContainer(ctx, wireName, svc)
	case action.Type == planner.ActionStop && action.ServiceType == zapconfig.KindNative:
		return e.stopNative(ctx, wireName, svc)
	default:
		return e.stopContainer(ctx, wireName, svc)
	}
}

func (e *Executor) startNative(ctx context.Context, wireName string, svc zapconfig.Service) error {
	_ = e.Supervisor.Delete(ctx, wireName) // idempotent: clear any stale entry first

	logDir := filepath.Join(e.ProjectRoot, ".zap", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	logPath := filepath.Join(logDir, fmt.Sprintf("%s.%s.log", e.Project, svc.Name))

	scriptPath, err := supervisor.WriteWrapperScript(e.ProjectRoot, e.Project, svc.Name, svc.Source, svc.Cmd)
	if err != nil {
		return fmt.Errorf("writing wrapper script: %w", err)
	}

	cwd := svc.Cwd
	if cwd == "" {
		cwd = e.ProjectRoot
	} else if !filepath.IsAbs(cwd) {
		cwd = filepath.Join(e.ProjectRoot, cwd)
	}

	requestedAt := time.Now().UTC()
	if err := e.Supervisor.Start(ctx, supervisor.StartSpec{
		Project:    e.Project,
		Service:    svc.Name,
		WireName:   wireName,
		ScriptPath: scriptPath,
		Cwd:        cwd,
		Env:        svc.ResolvedEnv,
		LogPath:    logPath,
	}, e.ProjectRoot); err != nil {
		return fmt.Errorf("starting %s: %w", wireName, err)
	}

	pid := 0
	if procs, err := e.Supervisor.List(ctx); err == nil {
		for _, p := range procs {
			if p.Name == wireName {
				pid = p.Pid
				break
			}
		}
	}

	if e.State != nil {
		if err := e.State.RecordStart(wireName, pid, requestedAt); err != nil {
			logging.Warn(executorSubsystem, "recording start state for %s: %v", wireName, err)
		}
	}
	return nil
}

func (e *Executor) stopNative(ctx context.Context, wireName string, svc zapconfig.Service) error {
	pid := 0
	if procs, err := e.Supervisor.List(ctx); err == nil {
		for _, p := range procs {
			if p.Name == wireName {
				pid = p.Pid
				break
			}
		}
	}

	if err := e.Supervisor.Stop(ctx, wireName, pid); err != nil {
		return fmt.Errorf("stopping %s: %w", wireName, err)
	}
	_ = e.Supervisor.Delete(ctx, wireName)

	logPath := filepath.Join(e.ProjectRoot, ".zap", "logs", fmt.Sprintf("%s.%s.log", e.Project, svc.Name))
	_ = os.Remove(logPath)

	if e.State != nil {
		if err := e.State.ClearStart(wireName); err != nil {
			logging.Warn(executorSubsystem, "clearing start state for %s: %v", wireName, err)
		}
	}
	return nil
}

func (e *Executor) startContainer(ctx context.Context, wireName string, svc zapconfig.Service) error {
	for _, vol := range svc.Volumes {
		e.Container.CreateVolume(ctx, vol.Name)
	}

	spec := container.Spec{
		Project:  e.Project,
		Service:  svc.Name,
		Image:    svc.Image,
		Ports:    svc.Ports,
		Networks: svc.Networks,
		Env:      svc.ResolvedEnv,
		Command:  svc.Command,
	}
	for _, vol := range svc.Volumes {
		spec.Volumes = append(spec.Volumes, fmt.Sprintf("%s:%s", vol.Name, vol.InternalDir))
	}

	requestedAt := time.Now().UTC()
	pid, err := e.Container.StartContainerAsync(ctx, wireName, spec)
	if err != nil {
		return fmt.Errorf("starting container %s: %w", wireName, err)
	}

	if e.State != nil {
		if err := e.State.RecordStart(wireName, pid, requestedAt); err != nil {
			logging.Warn(executorSubsystem, "recording start state for %s: %v", wireName, err)
		}
	}
	return nil
}

func (e *Executor) stopContainer(ctx context.Context, wireName string, svc zapconfig.Service) error {
	_ = svc
	if err := e.Container.StopContainer(ctx, wireName); err != nil {
		return fmt.Errorf("stopping container %s: %w", wireName, err)
	}
	if e.State != nil {
		if err := e.State.ClearStart(wireName); err != nil {
			logging.Warn(executorSubsystem, "clearing start state for %s: %v", wireName, err)
		}
	}
	return nil
}

// waitHealthy waits for a service to become healthy: a fixed sleep for an
// integer healthCheck, or a bounded probe loop for a URL one. A URL
// timeout is logged as a warning, never returned as an error — the next
// wave proceeds regardless.
func (e *Executor) waitHealthy(ctx context.Context, action planner.Action) {
	hc := action.HealthCheck
	if !hc.IsURL {
		seconds := hc.Seconds
		if seconds < 0 {
			seconds = 0
		}
		time.Sleep(time.Duration(seconds) * time.Second)
		return
	}

	for attempt := 0; attempt < healthProbeAttempts; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, hc.URL, nil)
		if err == nil {
			resp, err := e.httpClient.Do(req)
			if err == nil {
				resp.Body.Close()
				cancel()
				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					return
				}
			}
		}
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-time.After(healthProbeInterval):
		}
	}

	logging.Warn(executorSubsystem, "health probe for %s timed out after %d attempts against %s", action.Name, healthProbeAttempts, hc.URL)
}
