// Package planner diffs desired state against observed live state,
// applies profile policy, and composes the resulting ActionPlan of
// dependency-ordered waves.
package planner

import (
	"zapper/internal/dependency"
	"zapper/internal/zapconfig"
)

// Op is the operation the caller asked for.
type Op int

const (
	OpStart Op = iota
	OpStop
	OpRestart
)

// Action is one start or stop of one service.
type Action struct {
	Type        ActionType
	ServiceType zapconfig.ServiceKind
	Name        string
	HealthCheck zapconfig.HealthCheck
}

// ActionType distinguishes a start action from a stop action.
type ActionType int

const (
	ActionStart ActionType = iota
	ActionStop
)

// ExecutionWave is a parallel-safe batch of Actions.
type ExecutionWave struct {
	Actions []Action
}

// ActionPlan is the ordered sequence of waves the Executor runs.
type ActionPlan struct {
	Waves []ExecutionWave
}

// LiveStatus answers whether a service is currently running, the only
// observation the Planner needs from the outside world.
type LiveStatus interface {
	IsRunning(service zapconfig.Service) bool
}

// Request carries everything a Plan call needs.
type Request struct {
	Op            Op
	Targets       []string // canonical names only; alias resolution happens above this layer
	ForceStart    bool
	ActiveProfile string
}

// Plan builds an ActionPlan for req against ctx, consulting live for each
// service's running state.
func Plan(ctx zapconfig.Context, req Request, live LiveStatus) (ActionPlan, error) {
	switch req.Op {
	case OpRestart:
		stopPlan, err := planStop(ctx, Request{Op: OpStop, Targets: req.Targets}, live)
		if err != nil {
			return ActionPlan{}, err
		}
		startPlan, err := planStart(ctx, Request{Op: OpStart, Targets: req.Targets, ForceStart: true, ActiveProfile: req.ActiveProfile}, live)
		if err != nil {
			return ActionPlan{}, err
		}
		return ActionPlan{Waves: append(stopPlan.Waves, startPlan.Waves...)}, nil
	case OpStop:
		return planStop(ctx, req, live)
	default:
		return planStart(ctx, req, live)
	}
}

func planStart(ctx zapconfig.Context, req Request, live LiveStatus) (ActionPlan, error) {
	selected := selectServices(ctx, req.Targets, req.ActiveProfile)

	allByName := map[string]zapconfig.Service{}
	for _, svc := range ctx.Services {
		allByName[svc.Name] = svc
	}

	toStart := map[dependency.NodeID]bool{}
	byName := map[string]zapconfig.Service{}
	for _, svc := range selected {
		byName[svc.Name] = svc
		if req.ForceStart || !live.IsRunning(svc) {
			toStart[dependency.NodeID(svc.Name)] = true
		}
	}

	graph := buildGraph(ctx)
	waves, err := graph.ComputeStartWaves(toStart)
	if err != nil {
		return ActionPlan{}, err
	}

	plan := ActionPlan{}

	if len(req.Targets) == 0 && req.ActiveProfile != "" {
		toStop := map[dependency.NodeID]bool{}
		for _, svc := range ctx.Services {
			if len(svc.Profiles) == 0 || svc.HasProfile(req.ActiveProfile) {
				continue
			}
			if live.IsRunning(svc) {
				toStop[dependency.NodeID(svc.Name)] = true
			}
		}
		if len(toStop) > 0 {
			stopWaves, err := graph.ComputeStopWaves(toStop)
			if err != nil {
				return ActionPlan{}, err
			}
			for _, wave := range stopWaves {
				var actions []Action
				for _, id := range wave {
					actions = append(actions, toAction(allByName[string(id)], ActionStop))
				}
				plan.Waves = append(plan.Waves, ExecutionWave{Actions: actions})
			}
		}
	}

	for _, wave := range waves {
		var actions []Action
		for _, id := range wave {
			actions = append(actions, toAction(byName[string(id)], ActionStart))
		}
		plan.Waves = append(plan.Waves, ExecutionWave{Actions: actions})
	}

	return elideEmptyWaves(plan), nil
}

func planStop(ctx zapconfig.Context, req Request, live LiveStatus) (ActionPlan, error) {
	var selected []zapconfig.Service
	if len(req.Targets) > 0 {
		names := toSet(req.Targets)
		for _, svc := range ctx.Services {
			if names[svc.Name] {
				selected = append(selected, svc)
			}
		}
	} else {
		selected = ctx.Services
	}

	toStop := map[dependency.NodeID]bool{}
	byName := map[string]zapconfig.Service{}
	for _, svc := range selected {
		byName[svc.Name] = svc
		if live.IsRunning(svc) {
			toStop[dependency.NodeID(svc.Name)] = true
		}
	}

	graph := buildGraph(ctx)
	waves, err := graph.ComputeStopWaves(toStop)
	if err != nil {
		return ActionPlan{}, err
	}

	plan := ActionPlan{}
	for _, wave := range waves {
		var actions []Action
		for _, id := range wave {
			actions = append(actions, toAction(byName[string(id)], ActionStop))
		}
		plan.Waves = append(plan.Waves, ExecutionWave{Actions: actions})
	}

	return elideEmptyWaves(plan), nil
}

func selectServices(ctx zapconfig.Context, targets []string, activeProfile string) []zapconfig.Service {
	if len(targets) > 0 {
		names := toSet(targets)
		var out []zapconfig.Service
		for _, svc := range ctx.Services {
			if names[svc.Name] {
				out = append(out, svc)
			}
		}
		return out
	}

	var out []zapconfig.Service
	for _, svc := range ctx.Services {
		if activeProfile == "" || svc.HasProfile(activeProfile) {
			out = append(out, svc)
		}
	}
	return out
}

func toSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

func buildGraph(ctx zapconfig.Context) *dependency.Graph {
	g := dependency.New()
	for _, svc := range ctx.Services {
		serviceType := dependency.TypeNative
		if svc.Kind == zapconfig.KindContainer {
			serviceType = dependency.TypeContainer
		}
		deps := make([]dependency.NodeID, len(svc.DependsOn))
		for i, d := range svc.DependsOn {
			deps[i] = dependency.NodeID(d)
		}
		g.AddNode(dependency.Node{
			ID:          dependency.NodeID(svc.Name),
			ServiceType: serviceType,
			DependsOn:   deps,
		})
	}
	return g
}

func toAction(svc zapconfig.Service, actionType ActionType) Action {
	return Action{
		Type:        actionType,
		ServiceType: svc.Kind,
		Name:        svc.Name,
		HealthCheck: svc.HealthCheck,
	}
}

func elideEmptyWaves(plan ActionPlan) ActionPlan {
	out := ActionPlan{}
	for _, wave := range plan.Waves {
		if len(wave.Actions) > 0 {
			out.Waves = append(out.Waves, wave)
		}
	}
	return out
}
