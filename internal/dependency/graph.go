// Package dependency does topological scheduling of services into
// parallel-safe waves, built fresh each call from a set of nodes and
// their dependsOn edges.
package dependency

import "zapper/internal/zerrors"

// ServiceType tags a node the way zapconfig.ServiceKind does, kept as its
// own small type here so this package has no import on zapconfig.
type ServiceType int

const (
	TypeNative ServiceType = iota
	TypeContainer
)

// NodeID is a service's canonical name.
type NodeID string

// Node is one service as the graph sees it: just enough to schedule.
type Node struct {
	ID          NodeID
	ServiceType ServiceType
	HealthCheck HealthCheck
	DependsOn   []NodeID
}

// HealthCheck mirrors zapconfig.HealthCheck's shape without importing it,
// so an Action can carry it straight through to the Executor.
type HealthCheck struct {
	Seconds int
	URL     string
	IsURL   bool
}

// Graph is rebuilt from scratch on every call: it is stateless across
// calls, existing only to give wave computation a place to keep the
// adjacency maps it derives from a node set.
type Graph struct {
	nodes map[NodeID]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[NodeID]*Node)}
}

// AddNode adds (or replaces) a node in the graph.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[NodeID]*Node)
	}
	copied := n
	g.nodes[n.ID] = &copied
}

// Get returns a pointer to the stored node, or nil if absent.
func (g *Graph) Get(id NodeID) *Node {
	return g.nodes[id]
}

// Dependencies returns a copy of id's immediate dependsOn list.
func (g *Graph) Dependencies(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]NodeID, len(n.DependsOn))
	copy(out, n.DependsOn)
	return out
}

// Dependents returns every node that directly depends on id.
func (g *Graph) Dependents(id NodeID) []NodeID {
	var out []NodeID
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if dep == id {
				out = append(out, n.ID)
				break
			}
		}
	}
	return out
}

// Wave is one parallel-safe batch of node IDs.
type Wave []NodeID

// validateAndDetectCycles checks every dependsOn edge resolves to a known
// node and that the graph is acyclic, via depth-first traversal with a
// recursion stack. On a back-edge it reports the cycle starting at the
// repeated node.
func (g *Graph) validateAndDetectCycles() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[NodeID]int, len(g.nodes))
	var path []NodeID

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		state[id] = visiting
		path = append(path, id)

		for _, dep := range g.Dependencies(id) {
			if _, ok := g.nodes[dep]; !ok {
				return &zerrors.UnknownDependency{Service: string(id), Dep: string(dep)}
			}
			switch state[dep] {
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			case visiting:
				cyclePath := cyclePathFrom(path, dep)
				return &zerrors.CircularDependency{Path: cyclePath}
			}
		}

		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for id := range g.nodes {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func cyclePathFrom(path []NodeID, repeat NodeID) []string {
	start := 0
	for i, id := range path {
		if id == repeat {
			start = i
			break
		}
	}
	cycle := path[start:]
	out := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		out = append(out, string(id))
	}
	out = append(out, string(repeat))
	return out
}

// ComputeStartWaves repeatedly emits a wave containing every remaining
// node in toStart whose dependencies are all either already started
// (outside toStart) or already scheduled in an earlier wave, validating
// the graph and detecting cycles first.
func (g *Graph) ComputeStartWaves(toStart map[NodeID]bool) ([]Wave, error) {
	if err := g.validateAndDetectCycles(); err != nil {
		return nil, err
	}

	remaining := map[NodeID]bool{}
	for id := range toStart {
		if toStart[id] {
			remaining[id] = true
		}
	}

	started := map[NodeID]bool{}
	var waves []Wave

	for len(remaining) > 0 {
		var wave Wave
		for id := range remaining {
			ready := true
			for _, dep := range g.Dependencies(id) {
				if remaining[dep] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, id)
			}
		}

		if len(wave) == 0 {
			return nil, &zerrors.UnresolvableDependencies{Remaining: nodeIDsToStrings(mapKeys(remaining))}
		}

		for _, id := range wave {
			delete(remaining, id)
			started[id] = true
		}
		waves = append(waves, sortWave(wave))
	}

	return waves, nil
}

// ComputeStopWaves is ComputeStartWaves's mirror: a node is ready to stop
// once every dependent is either already stopped or not in toStop.
func (g *Graph) ComputeStopWaves(toStop map[NodeID]bool) ([]Wave, error) {
	if err := g.validateAndDetectCycles(); err != nil {
		return nil, err
	}

	remaining := map[NodeID]bool{}
	for id := range toStop {
		if toStop[id] {
			remaining[id] = true
		}
	}

	var waves []Wave
	for len(remaining) > 0 {
		var wave Wave
		for id := range remaining {
			ready := true
			for _, dependent := range g.Dependents(id) {
				if remaining[dependent] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, id)
			}
		}

		if len(wave) == 0 {
			return nil, &zerrors.UnresolvableDependencies{Remaining: nodeIDsToStrings(mapKeys(remaining))}
		}

		for _, id := range wave {
			delete(remaining, id)
		}
		waves = append(waves, sortWave(wave))
	}

	return waves, nil
}

func mapKeys(m map[NodeID]bool) []NodeID {
	out := make([]NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

func nodeIDsToStrings(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// sortWave gives wave a deterministic order, purely so tests and output
// don't flap across runs of a concurrently-iterated map; it carries no
// scheduling meaning since a wave's actions are independent by construction.
func sortWave(wave Wave) Wave {
	out := make(Wave, len(wave))
	copy(out, wave)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
