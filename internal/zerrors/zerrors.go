// Package zerrors defines the typed error kinds produced by zapper's core
// (config normalization, dependency graph, planner, executor, orchestrator
// facade). Each kind carries the structured fields a caller needs to render
// a useful message or make a decision with errors.As, rather than matching
// on error strings.
package zerrors

import (
	"fmt"
	"strings"
)

// ContextNotLoaded is returned by any Orchestrator facade call made before
// loadConfig has succeeded.
type ContextNotLoaded struct{}

func (e *ContextNotLoaded) Error() string {
	return "no configuration has been loaded yet"
}

// NoServicesDefined is returned when the loaded Context has an empty
// service set.
type NoServicesDefined struct{}

func (e *NoServicesDefined) Error() string {
	return "no native or docker services are defined in this project"
}

// ServiceNotFound is returned when any explicitly named target does not
// resolve to a known service (Names lists those targets), or when the
// explicit targets yield an empty plan.
type ServiceNotFound struct {
	Names []string
}

func (e *ServiceNotFound) Error() string {
	return fmt.Sprintf("service(s) not found: %s", strings.Join(e.Names, ", "))
}

// UnknownDependency is returned when a service's dependsOn references a
// name that does not exist anywhere in the project.
type UnknownDependency struct {
	Service string
	Dep     string
}

func (e *UnknownDependency) Error() string {
	return fmt.Sprintf("service %q depends on unknown service %q", e.Service, e.Dep)
}

// CircularDependency is returned when the dependency graph contains a
// cycle. Path starts at the node where the cycle was detected and repeats
// that node at the end, e.g. [a, b, a].
type CircularDependency struct {
	Path []string
}

func (e *CircularDependency) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Path, " -> "))
}

// UnresolvableDependencies is returned when a wave-computation pass makes
// no progress while nodes remain — this can only happen if graph
// validation was skipped, since a validated acyclic graph always has at
// least one ready node each pass.
type UnresolvableDependencies struct {
	Remaining []string
}

func (e *UnresolvableDependencies) Error() string {
	return fmt.Sprintf("unable to schedule remaining services (unresolved dependencies): %s", strings.Join(e.Remaining, ", "))
}

// EnvironmentNotFound is returned when the active environment named in
// State does not exist among the environments declared by env_files.
type EnvironmentNotFound struct {
	Name      string
	Available []string
}

func (e *EnvironmentNotFound) Error() string {
	return fmt.Sprintf("environment %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// MissingServiceName is returned when a legacy processes-list entry omits
// its name field.
type MissingServiceName struct {
	Index int
}

func (e *MissingServiceName) Error() string {
	return fmt.Sprintf("processes[%d] has no name", e.Index)
}

// DuplicateIdentifier is returned when a name or alias collides with
// another service's canonical name or alias anywhere in the project.
type DuplicateIdentifier struct {
	Identifier string
}

func (e *DuplicateIdentifier) Error() string {
	return fmt.Sprintf("duplicate service identifier: %q", e.Identifier)
}

// ConflictingGitMethod is returned when both --http and --ssh are supplied
// as CLI overrides for gitMethod.
type ConflictingGitMethod struct{}

func (e *ConflictingGitMethod) Error() string {
	return "--http and --ssh are mutually exclusive"
}

// BackendFailure wraps a non-zero exit from the process supervisor or
// container runtime CLI after any applicable retry has been exhausted.
type BackendFailure struct {
	Kind   string // "supervisor" or "container"
	Stderr string
	Cause  error
}

func (e *BackendFailure) Error() string {
	return fmt.Sprintf("%s command failed: %s", e.Kind, strings.TrimSpace(e.Stderr))
}

func (e *BackendFailure) Unwrap() error {
	return e.Cause
}
