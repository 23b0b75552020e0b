// Package orchestrator implements the top-level facade: it owns the
// Context lifecycle and wires every other package (zapconfig, env,
// state, instance, naming, supervisor, container, planner, executor,
// task, gitops) behind the verbs the CLI layer calls.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"zapper/internal/container"
	"zapper/internal/dependency"
	"zapper/internal/env"
	"zapper/internal/executor"
	"zapper/internal/gitops"
	"zapper/internal/instance"
	"zapper/internal/naming"
	"zapper/internal/planner"
	"zapper/internal/state"
	"zapper/internal/supervisor"
	"zapper/internal/task"
	"zapper/internal/zapconfig"
	"zapper/internal/zerrors"
	"zapper/pkg/logging"
)

const orchestratorSubsystem = "Orchestrator"

// CLIOverrides carries the flags that can override a loaded config.
type CLIOverrides struct {
	ConfigPath        string
	GitMethodHTTP     bool
	GitMethodSSH      bool
	ActiveEnvironment string
	InstanceID        string
	SuppressWarning   bool
}

// Orchestrator holds the loaded Context and the concrete ports it was
// wired against. All zero-valued until LoadConfig succeeds.
type Orchestrator struct {
	ctx       zapconfig.Context
	loaded    bool
	projectRoot string

	instanceRes *instance.Resolver
	instanceID  string

	state      *state.Store
	supervisor *supervisor.Port
	container  *container.Runtime
	exec       *executor.Executor
	git        *gitops.Port
}

// New returns an unloaded Orchestrator. Call LoadConfig before any other
// method.
func New() *Orchestrator {
	return &Orchestrator{
		supervisor: supervisor.New(),
		container:  container.New(),
	}
}

// LoadConfig resolves the config path (walking upward from cwd if
// overrides.ConfigPath is empty), normalizes it into a Context, resolves
// its environment variables, and wires the Executor and gitops Port
// against the resolved instance.
func (o *Orchestrator) LoadConfig(overrides CLIOverrides) error {
	if overrides.GitMethodHTTP && overrides.GitMethodSSH {
		return &zerrors.ConflictingGitMethod{}
	}

	path := overrides.ConfigPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		path, err = zapconfig.FindConfigPath(cwd)
		if err != nil {
			return err
		}
	}
	projectRoot := filepath.Dir(path)

	doc, err := zapconfig.Load(path)
	if err != nil {
		return err
	}

	var gitOverride zapconfig.GitMethod
	switch {
	case overrides.GitMethodHTTP:
		gitOverride = zapconfig.GitMethodHTTP
	case overrides.GitMethodSSH:
		gitOverride = zapconfig.GitMethodSSH
	}

	normalized, err := zapconfig.Normalize(doc, projectRoot, overrides.ActiveEnvironment, gitOverride)
	if err != nil {
		return err
	}
	if len(normalized.Services) == 0 {
		return &zerrors.NoServicesDefined{}
	}

	resolved, err := env.Resolve(normalized)
	if err != nil {
		return err
	}

	o.ctx = resolved
	o.projectRoot = projectRoot
	o.loaded = true

	o.instanceRes = instance.New(projectRoot)
	resolution := o.instanceRes.Resolve(overrides.SuppressWarning)
	o.instanceID = resolution.InstanceID
	if overrides.InstanceID != "" {
		cfg, err := o.instanceRes.IsolateProject(overrides.InstanceID)
		if err != nil {
			return fmt.Errorf("isolating project: %w", err)
		}
		o.instanceID = cfg.InstanceID
	}
	if resolution.WorktreeWarning {
		logging.Warn(orchestratorSubsystem, "this checkout looks like a git worktree; pass --instance to isolate its services from the primary checkout")
	}

	o.state = state.New(projectRoot)
	o.exec = executor.New(projectRoot, o.ctx.Project.Name, o.instanceID, o.supervisor, o.container, o.state)
	o.git = gitops.New(o.ctx.Project.GitMethod)

	return nil
}

func (o *Orchestrator) requireLoaded() error {
	if !o.loaded {
		return &zerrors.ContextNotLoaded{}
	}
	return nil
}

// ResolveServiceName maps an alias (or a canonical name) to its canonical
// service name. Canonical names always win over an alias that happens to
// collide with them, since normalization already rejects identifier
// collisions — this just builds the lookup map.
func (o *Orchestrator) ResolveServiceName(input string) (string, bool) {
	byAlias := map[string]string{}
	for _, svc := range o.ctx.Services {
		byAlias[svc.Name] = svc.Name
	}
	for _, svc := range o.ctx.Services {
		for _, alias := range svc.Aliases {
			if _, exists := byAlias[alias]; !exists {
				byAlias[alias] = svc.Name
			}
		}
	}
	canonical, ok := byAlias[input]
	return canonical, ok
}

func (o *Orchestrator) resolveTargets(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var missing []string
	canon := make([]string, 0, len(names))
	for _, n := range names {
		resolved, ok := o.ResolveServiceName(n)
		if !ok {
			missing = append(missing, n)
			continue
		}
		canon = append(canon, resolved)
	}
	if len(missing) > 0 {
		return nil, &zerrors.ServiceNotFound{Names: missing}
	}
	return canon, nil
}

// liveStatus implements planner.LiveStatus by querying the supervisor and
// container ports directly, never trusting the State Store's own record
// of "running" since the backend is the source of truth.
type liveStatus struct {
	ctx        context.Context
	o          *Orchestrator
	nativeSet  map[string]bool
	containerSet map[string]bool
	loaded     bool
}

func (o *Orchestrator) newLiveStatus(ctx context.Context) *liveStatus {
	return &liveStatus{ctx: ctx, o: o}
}

func (l *liveStatus) ensureLoaded() {
	if l.loaded {
		return
	}
	l.loaded = true
	l.nativeSet = map[string]bool{}
	l.containerSet = map[string]bool{}

	if procs, err := l.o.supervisor.List(l.ctx); err == nil {
		for _, p := range procs {
			if p.Status == supervisor.StatusOnline {
				l.nativeSet[p.Name] = true
			}
		}
	}
	if containers, err := l.o.container.ListContainers(l.ctx, l.o.ctx.Project.Name); err == nil {
		for _, c := range containers {
			if container.IsRunning(c.Status) {
				l.containerSet[c.Name] = true
			}
		}
	}
}

func (l *liveStatus) IsRunning(svc zapconfig.Service) bool {
	l.ensureLoaded()
	wireName := naming.BuildServiceName(l.o.ctx.Project.Name, svc.Name, l.o.instanceID)
	if svc.Kind == zapconfig.KindContainer {
		return l.containerSet[wireName]
	}
	return l.nativeSet[wireName]
}

func (o *Orchestrator) lookup(name string) (zapconfig.Service, bool) {
	return o.ctx.ServiceByName(name)
}

func (o *Orchestrator) reconcile(ctx context.Context, req planner.Request) error {
	live := o.newLiveStatus(ctx)
	plan, err := planner.Plan(o.ctx, req, live)
	if err != nil {
		return err
	}
	if len(req.Targets) > 0 && len(plan.Waves) == 0 {
		return &zerrors.ServiceNotFound{Names: req.Targets}
	}
	return o.exec.Run(ctx, plan, o.lookup)
}

// StartProcesses starts every service (or just names, if given) that
// isn't already running, honoring the active profile from State.
func (o *Orchestrator) StartProcesses(ctx context.Context, names []string, force bool) error {
	if err := o.requireLoaded(); err != nil {
		return err
	}
	targets, err := o.resolveTargets(names)
	if err != nil {
		return err
	}
	doc := o.state.Load()
	return o.reconcile(ctx, planner.Request{
		Op:            planner.OpStart,
		Targets:       targets,
		ForceStart:    force,
		ActiveProfile: doc.ActiveProfile,
	})
}

// StopProcesses stops every running service (or just names, if given).
func (o *Orchestrator) StopProcesses(ctx context.Context, names []string) error {
	if err := o.requireLoaded(); err != nil {
		return err
	}
	targets, err := o.resolveTargets(names)
	if err != nil {
		return err
	}
	return o.reconcile(ctx, planner.Request{Op: planner.OpStop, Targets: targets})
}

// RestartProcesses stops then starts the named services (or all), always
// forcing the start half regardless of prior running state.
func (o *Orchestrator) RestartProcesses(ctx context.Context, names []string) error {
	if err := o.requireLoaded(); err != nil {
		return err
	}
	targets, err := o.resolveTargets(names)
	if err != nil {
		return err
	}
	doc := o.state.Load()
	return o.reconcile(ctx, planner.Request{
		Op:            planner.OpRestart,
		Targets:       targets,
		ActiveProfile: doc.ActiveProfile,
	})
}

// ShowLogs streams name's service log, native or container, following
// (tail -f semantics) when follow is set.
func (o *Orchestrator) ShowLogs(ctx context.Context, name string, follow bool) (io.ReadCloser, error) {
	if err := o.requireLoaded(); err != nil {
		return nil, err
	}
	canonical, ok := o.ResolveServiceName(name)
	if !ok {
		return nil, &zerrors.ServiceNotFound{Names: []string{name}}
	}
	svc, _ := o.ctx.ServiceByName(canonical)
	wireName := naming.BuildServiceName(o.ctx.Project.Name, svc.Name, o.instanceID)

	if svc.Kind == zapconfig.KindContainer {
		return o.container.ShowLogs(ctx, wireName, follow)
	}
	return o.supervisor.Logs(ctx, wireName, follow)
}

// Reset stops every service for this project/instance and clears the
// State Store back to defaults. With force it also removes this project's
// wrapper scripts under .zap and the log files under .zap/logs; without
// force it leaves them for postmortem inspection.
func (o *Orchestrator) Reset(ctx context.Context, force bool) error {
	if err := o.requireLoaded(); err != nil {
		return err
	}
	if err := o.reconcile(ctx, planner.Request{Op: planner.OpStop}); err != nil {
		logging.Warn(orchestratorSubsystem, "reset: stopping services: %v", err)
	}

	if err := o.state.Mutate(func(doc *state.Document) {
		doc.Services = map[string]state.ServiceState{}
		doc.ActiveProfile = ""
		doc.ActiveEnvironment = ""
	}); err != nil {
		return fmt.Errorf("resetting state: %w", err)
	}

	if force {
		logDir := filepath.Join(o.projectRoot, ".zap", "logs")
		if err := os.RemoveAll(logDir); err != nil {
			logging.Warn(orchestratorSubsystem, "reset: removing log dir: %v", err)
		}
		scripts, _ := filepath.Glob(filepath.Join(o.projectRoot, ".zap", o.ctx.Project.Name+".*.sh"))
		for _, script := range scripts {
			if err := os.Remove(script); err != nil {
				logging.Warn(orchestratorSubsystem, "reset: removing wrapper script %s: %v", script, err)
			}
		}
	}
	return nil
}

// CloneRepos clones every service (or just names, if given) that
// declares a repo, skipping services that are already checked out.
func (o *Orchestrator) CloneRepos(ctx context.Context, names []string) error {
	if err := o.requireLoaded(); err != nil {
		return err
	}
	targets, err := o.resolveTargets(names)
	if err != nil {
		return err
	}
	selected := o.selectForGit(targets)

	for _, svc := range selected {
		if svc.Repo == "" {
			continue
		}
		dest := svc.Cwd
		if dest == "" {
			dest = filepath.Join(o.projectRoot, svc.Name)
		} else if !filepath.IsAbs(dest) {
			dest = filepath.Join(o.projectRoot, dest)
		}
		if err := o.git.Clone(ctx, svc.Repo, dest); err != nil {
			return err
		}
	}
	return nil
}

// RunTask runs the named one-off task with the given params.
func (o *Orchestrator) RunTask(ctx context.Context, name string, params map[string]string) error {
	if err := o.requireLoaded(); err != nil {
		return err
	}
	runner := task.NewRunner(o.ctx)
	return runner.Run(ctx, name, params)
}

// TaskNames returns every declared task's name, sorted, for `zapper task
// list`.
func (o *Orchestrator) TaskNames() []string {
	if !o.loaded {
		return nil
	}
	return task.NewRunner(o.ctx).ListNames()
}

// GitCheckoutAll checks every service with a repo out onto branch.
func (o *Orchestrator) GitCheckoutAll(ctx context.Context, branch string) error {
	if err := o.requireLoaded(); err != nil {
		return err
	}
	for _, svc := range o.selectForGit(nil) {
		if svc.Repo == "" {
			continue
		}
		if err := o.git.Checkout(ctx, o.repoDir(svc), branch); err != nil {
			return err
		}
	}
	return nil
}

// GitPullAll fast-forwards every service with a repo on its current
// branch.
func (o *Orchestrator) GitPullAll(ctx context.Context) error {
	if err := o.requireLoaded(); err != nil {
		return err
	}
	for _, svc := range o.selectForGit(nil) {
		if svc.Repo == "" {
			continue
		}
		if err := o.git.Pull(ctx, o.repoDir(svc)); err != nil {
			return err
		}
	}
	return nil
}

// GitStatusAll reports git status for every service with a repo.
func (o *Orchestrator) GitStatusAll(ctx context.Context) ([]gitops.Status, error) {
	if err := o.requireLoaded(); err != nil {
		return nil, err
	}
	var out []gitops.Status
	for _, svc := range o.selectForGit(nil) {
		if svc.Repo == "" {
			continue
		}
		status, err := o.git.Status(ctx, o.repoDir(svc))
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, nil
}

func (o *Orchestrator) repoDir(svc zapconfig.Service) string {
	if svc.Cwd == "" {
		return filepath.Join(o.projectRoot, svc.Name)
	}
	if filepath.IsAbs(svc.Cwd) {
		return svc.Cwd
	}
	return filepath.Join(o.projectRoot, svc.Cwd)
}

func (o *Orchestrator) selectForGit(targets []string) []zapconfig.Service {
	if len(targets) == 0 {
		return o.ctx.Services
	}
	want := map[string]bool{}
	for _, t := range targets {
		want[t] = true
	}
	var out []zapconfig.Service
	for _, svc := range o.ctx.Services {
		if want[svc.Name] {
			out = append(out, svc)
		}
	}
	return out
}

// ServiceStatus is one service's live status for display, combining the
// Context's declared service with the supervisor/container ports'
// observed state.
type ServiceStatus struct {
	Name    string
	Kind    zapconfig.ServiceKind
	Running bool
	Pid     int
}

// Status reports every declared service's current running state.
func (o *Orchestrator) Status(ctx context.Context) ([]ServiceStatus, error) {
	if err := o.requireLoaded(); err != nil {
		return nil, err
	}
	live := o.newLiveStatus(ctx)
	live.ensureLoaded()

	out := make([]ServiceStatus, 0, len(o.ctx.Services))
	for _, svc := range o.ctx.Services {
		wireName := naming.BuildServiceName(o.ctx.Project.Name, svc.Name, o.instanceID)
		running := live.IsRunning(svc)
		pid := 0
		if running {
			doc := o.state.Load()
			if st, ok := doc.Services[wireName]; ok {
				pid = st.StartPid
			}
		}
		out = append(out, ServiceStatus{Name: svc.Name, Kind: svc.Kind, Running: running, Pid: pid})
	}
	return out, nil
}

// SetActiveProfile persists profile as the active profile for subsequent
// reconciles.
func (o *Orchestrator) SetActiveProfile(profile string) error {
	if err := o.requireLoaded(); err != nil {
		return err
	}
	return o.state.SetActiveProfile(profile)
}

// Profiles returns the sorted, deduplicated set of profiles declared
// across the loaded Context's services.
func (o *Orchestrator) Profiles() []string {
	return o.ctx.Profiles
}

// DependencyEdge is one service's declared dependency list, for `zapper
// graph` style display.
type DependencyEdge struct {
	Name      string
	DependsOn []string
}

// DependencyEdges returns every service's declared dependencies in a
// stable (name-sorted) order; unused services (no deps, not depended on)
// still appear with an empty DependsOn.
func (o *Orchestrator) DependencyEdges() []DependencyEdge {
	g := dependency.New()
	for _, svc := range o.ctx.Services {
		t := dependency.TypeNative
		if svc.Kind == zapconfig.KindContainer {
			t = dependency.TypeContainer
		}
		deps := make([]dependency.NodeID, len(svc.DependsOn))
		for i, d := range svc.DependsOn {
			deps[i] = dependency.NodeID(d)
		}
		g.AddNode(dependency.Node{ID: dependency.NodeID(svc.Name), ServiceType: t, DependsOn: deps})
	}

	names := make([]string, 0, len(o.ctx.Services))
	for _, svc := range o.ctx.Services {
		names = append(names, svc.Name)
	}
	sort.Strings(names)

	out := make([]DependencyEdge, 0, len(names))
	for _, name := range names {
		svc, _ := o.lookup(name)
		deps := append([]string(nil), svc.DependsOn...)
		sort.Strings(deps)
		out = append(out, DependencyEdge{Name: name, DependsOn: deps})
	}
	return out
}

// ProjectName returns the loaded Context's project name, or "" if unloaded.
func (o *Orchestrator) ProjectName() string {
	return o.ctx.Project.Name
}

// InstanceID returns the resolved instance id, empty in normal mode.
func (o *Orchestrator) InstanceID() string {
	return o.instanceID
}
