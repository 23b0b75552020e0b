// Package dependency computes parallel-safe start/stop waves over a set of
// services and their dependsOn edges.
//
// # Core concepts
//
// Graph: adjacency built fresh on every call from a set of Nodes; it holds
// no state between calls, since the live "what's running" set changes
// between reconciles.
//
// Node: one service — its canonical name, its ServiceType (native or
// container, used by the Executor to pick start/stop semantics), its
// HealthCheck, and its DependsOn list.
//
// # Wave computation
//
// ComputeStartWaves repeatedly peels off every node in the target set
// whose dependencies are already satisfied (either started in an earlier
// wave, or simply not part of this start). ComputeStopWaves is the mirror,
// walking the reverse edges so a service's dependents are stopped before
// it is.
//
// Both validate the graph for missing references and cycles first, via a
// depth-first traversal with a recursion stack; a back-edge yields the
// exact cycle path starting at the repeated node.
package dependency
