// Package naming is the sole place that knows the wire-name format used to
// address supervised processes and containers: zap.<project>[.<instance>].<service>.
// Every other component calls into this package rather than formatting
// names itself.
package naming

import "strings"

const prefix = "zap"

// BuildServiceName returns the fully-qualified wire name for a service. If
// instance is non-empty, the name carries an instance segment so that two
// working copies of the same project (e.g. git worktrees) do not collide.
func BuildServiceName(project, service, instance string) string {
	if instance != "" {
		return strings.Join([]string{prefix, project, instance, service}, ".")
	}
	return strings.Join([]string{prefix, project, service}, ".")
}

// BuildPrefix returns the wire-name prefix for a project (and optional
// instance) without a service segment, e.g. for glob-matching a project's
// services in a supervisor/container listing.
func BuildPrefix(project, instance string) string {
	if instance != "" {
		return strings.Join([]string{prefix, project, instance}, ".")
	}
	return strings.Join([]string{prefix, project}, ".")
}

// ParsedName is the decomposition of a wire name produced by ParseServiceName.
type ParsedName struct {
	Project  string
	Instance string // empty when the name carries no instance segment
	Service  string
}

// ParseServiceName decomposes a wire name back into its parts. It returns
// false when name does not have the "zap.<project>[.<instance>].<service>"
// shape: the first segment must be literally "zap" and there must be
// exactly three or four dot-separated segments in total.
func ParseServiceName(name string) (ParsedName, bool) {
	parts := strings.Split(name, ".")

	if len(parts) < 3 || len(parts) > 4 || parts[0] != prefix {
		return ParsedName{}, false
	}

	if len(parts) == 3 {
		return ParsedName{Project: parts[1], Service: parts[2]}, true
	}

	return ParsedName{Project: parts[1], Instance: parts[2], Service: parts[3]}, true
}
