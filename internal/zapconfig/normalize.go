package zapconfig

import (
	"path/filepath"
	"sort"

	"zapper/internal/zerrors"
)

// Normalize turns a decoded YAML document (see Load) into an immutable
// Context. projectRoot is the absolute directory containing the config
// file. activeEnvironment comes from the state store and selects which
// env_files branch applies; activeProfile selection belongs entirely to
// the Planner and plays no part in normalization.
func Normalize(doc map[string]interface{}, projectRoot, activeEnvironment string, gitMethodOverride GitMethod) (Context, error) {
	project := Project{
		Name:           getString(doc, "project"),
		Root:           projectRoot,
		GitMethod:      resolveGitMethod(doc, gitMethodOverride),
		TaskDelimiters: resolveTaskDelimiters(doc),
	}

	services, err := normalizeServices(doc)
	if err != nil {
		return Context{}, err
	}

	if err := validateIdentifiers(services); err != nil {
		return Context{}, err
	}

	if err := validateDependencies(services); err != nil {
		return Context{}, err
	}

	envFiles, environments, resolvedActiveEnv, err := resolveEnvFiles(doc, projectRoot, activeEnvironment)
	if err != nil {
		return Context{}, err
	}

	tasks, err := normalizeTasks(doc)
	if err != nil {
		return Context{}, err
	}

	return Context{
		Project:           project,
		EnvFiles:          envFiles,
		Environments:      environments,
		Services:          services,
		Tasks:             tasks,
		Profiles:          sortedProfileSet(services),
		Links:             normalizeLinks(doc),
		ActiveEnvironment: resolvedActiveEnv,
	}, nil
}

func resolveGitMethod(doc map[string]interface{}, override GitMethod) GitMethod {
	if override != "" {
		return override
	}
	switch GitMethod(getString(doc, "git_method")) {
	case GitMethodHTTP, GitMethodSSH, GitMethodCLI:
		return GitMethod(getString(doc, "git_method"))
	default:
		return GitMethodHTTP
	}
}

func resolveTaskDelimiters(doc map[string]interface{}) [2]string {
	delims := getStringSlice(doc, "task_delimiters")
	if len(delims) == 2 {
		return [2]string{delims[0], delims[1]}
	}
	return [2]string{"{{", "}}"}
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// normalizeServices merges native/bare_metal/processes (native services,
// possibly map- or sequence-shaped, plus the legacy sequence-only
// "processes" key) and docker/containers into a single []Service, tagging
// each with its ServiceKind.
func normalizeServices(doc map[string]interface{}) ([]Service, error) {
	var services []Service

	nativeSources := []string{"native", "bare_metal"}
	for _, key := range nativeSources {
		if raw, ok := doc[key]; ok {
			svcs, err := normalizeNativeShape(raw)
			if err != nil {
				return nil, err
			}
			services = append(services, svcs...)
		}
	}

	if raw, ok := doc["processes"]; ok {
		items, _ := asSlice(raw)
		svcs, err := normalizeNativeSequence(items)
		if err != nil {
			return nil, err
		}
		services = append(services, svcs...)
	}

	dockerRaw, hasDocker := doc["docker"]
	if !hasDocker {
		dockerRaw, hasDocker = doc["containers"]
	}
	if hasDocker {
		if m, ok := asMap(dockerRaw); ok {
			names := sortedMapKeys(m)
			for _, name := range names {
				svc, _ := asMap(m[name])
				services = append(services, normalizeContainerService(name, svc))
			}
		}
	}

	return services, nil
}

func normalizeNativeShape(raw interface{}) ([]Service, error) {
	if m, ok := asMap(raw); ok {
		names := sortedMapKeys(m)
		out := make([]Service, 0, len(names))
		for _, key := range names {
			entry, _ := asMap(m[key])
			name := getString(entry, "name")
			if name == "" {
				name = key
			}
			out = append(out, normalizeNativeService(name, entry))
		}
		return out, nil
	}

	if items, ok := asSlice(raw); ok {
		return normalizeNativeSequence(items)
	}

	return nil, nil
}

func normalizeNativeSequence(items []interface{}) ([]Service, error) {
	out := make([]Service, 0, len(items))
	for i, item := range items {
		entry, _ := asMap(item)
		name := getString(entry, "name")
		if name == "" {
			return nil, &zerrors.MissingServiceName{Index: i}
		}
		out = append(out, normalizeNativeService(name, entry))
	}
	return out, nil
}

func normalizeNativeService(name string, m map[string]interface{}) Service {
	return Service{
		Name:        name,
		Aliases:     getStringSlice(m, "aliases"),
		DependsOn:   getStringSlice(m, "depends_on"),
		Profiles:    getStringSlice(m, "profiles"),
		HealthCheck: normalizeHealthCheck(m["health_check"]),
		Kind:        KindNative,
		Cmd:         getString(m, "cmd"),
		Cwd:         getString(m, "cwd"),
		Source:      getString(m, "source"),
		Repo:        getString(m, "repo"),
	}
}

func normalizeContainerService(name string, m map[string]interface{}) Service {
	return Service{
		Name:        name,
		Aliases:     getStringSlice(m, "aliases"),
		DependsOn:   getStringSlice(m, "depends_on"),
		Profiles:    getStringSlice(m, "profiles"),
		HealthCheck: normalizeHealthCheck(m["health_check"]),
		Kind:        KindContainer,
		Image:       getString(m, "image"),
		Ports:       getStringSlice(m, "ports"),
		Volumes:     normalizeVolumes(m["volumes"]),
		Networks:    getStringSlice(m, "networks"),
		Command:     getString(m, "command"),
	}
}

func normalizeHealthCheck(v interface{}) HealthCheck {
	if v == nil {
		return HealthCheck{Seconds: DefaultHealthCheckSeconds}
	}
	if n, ok := asInt(v); ok && n >= 0 {
		return HealthCheck{Seconds: n}
	}
	if s, ok := v.(string); ok && s != "" {
		return HealthCheck{URL: s, IsURL: true}
	}
	return HealthCheck{Seconds: DefaultHealthCheckSeconds}
}

func normalizeVolumes(v interface{}) []Volume {
	items, ok := asSlice(v)
	if !ok {
		return nil
	}
	out := make([]Volume, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			name, internal := splitVolumeString(t)
			out = append(out, Volume{Name: name, InternalDir: internal})
		case map[string]interface{}:
			out = append(out, Volume{
				Name:        getString(t, "name"),
				InternalDir: getString(t, "internalDir"),
			})
		}
	}
	return out
}

func splitVolumeString(s string) (name, internalPath string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func normalizeTasks(doc map[string]interface{}) ([]Task, error) {
	raw, ok := doc["tasks"]
	if !ok {
		return nil, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, nil
	}

	names := sortedMapKeys(m)
	out := make([]Task, 0, len(names))
	for _, name := range names {
		entry, _ := asMap(m[name])
		out = append(out, Task{
			Name:    name,
			Aliases: getStringSlice(entry, "aliases"),
			Cwd:     getString(entry, "cwd"),
			Desc:    getString(entry, "desc"),
			Cmds:    normalizeTaskCmds(entry["cmds"]),
			Params:  normalizeTaskParams(entry["params"]),
		})
	}
	return out, nil
}

func normalizeTaskCmds(v interface{}) []TaskCmd {
	items, ok := asSlice(v)
	if !ok {
		return nil
	}
	out := make([]TaskCmd, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			out = append(out, TaskCmd{Shell: t})
		case map[string]interface{}:
			if ref := getString(t, "task"); ref != "" {
				out = append(out, TaskCmd{TaskRef: ref, IsTaskRef: true})
			}
		}
	}
	return out
}

func normalizeTaskParams(v interface{}) []TaskParam {
	items, ok := asSlice(v)
	if !ok {
		return nil
	}
	out := make([]TaskParam, 0, len(items))
	for _, item := range items {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		_, hasDefault := m["default"]
		out = append(out, TaskParam{
			Name:       getString(m, "name"),
			Default:    getString(m, "default"),
			HasDefault: hasDefault,
			Required:   getBool(m, "required"),
		})
	}
	return out
}

func normalizeLinks(doc map[string]interface{}) []Link {
	raw, ok := doc["links"]
	if !ok {
		return nil
	}
	items, ok := asSlice(raw)
	if !ok {
		return nil
	}
	out := make([]Link, 0, len(items))
	for _, item := range items {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		out = append(out, Link{Name: getString(m, "name"), URL: getString(m, "url")})
	}
	return out
}

// resolveEnvFiles handles both the sequence and mapping shapes of
// env_files, resolving relative paths against projectRoot.
func resolveEnvFiles(doc map[string]interface{}, projectRoot, activeEnvironment string) (files []string, environments []string, resolvedActive string, err error) {
	raw, ok := doc["env_files"]
	if !ok {
		return nil, nil, "", nil
	}

	if seq, ok := asSlice(raw); ok {
		if activeEnvironment != "" && activeEnvironment != "default" {
			return nil, nil, "", &zerrors.EnvironmentNotFound{Name: activeEnvironment, Available: []string{"default"}}
		}
		return resolvePaths(toStringSlice(seq), projectRoot), []string{"default"}, "default", nil
	}

	m, ok := asMap(raw)
	if !ok {
		return nil, nil, "", nil
	}

	environments = sortedMapKeys(m)

	active := activeEnvironment
	if active == "" {
		if containsString(environments, "default") {
			active = "default"
		} else {
			return nil, environments, "", nil
		}
	}

	filesRaw, ok := m[active]
	if !ok {
		return nil, nil, "", &zerrors.EnvironmentNotFound{Name: active, Available: environments}
	}

	return resolvePaths(toStringSlice(filesRaw), projectRoot), environments, active, nil
}

func resolvePaths(paths []string, projectRoot string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = p
		} else {
			out[i] = filepath.Join(projectRoot, p)
		}
	}
	return out
}

// validateIdentifiers enforces global uniqueness of every name and alias
// across all services, regardless of kind.
func validateIdentifiers(services []Service) error {
	seen := map[string]struct{}{}
	for _, s := range services {
		ids := append([]string{s.Name}, s.Aliases...)
		for _, id := range ids {
			if _, exists := seen[id]; exists {
				return &zerrors.DuplicateIdentifier{Identifier: id}
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

// validateDependencies enforces that every dependsOn reference resolves to
// a known service name.
func validateDependencies(services []Service) error {
	names := map[string]struct{}{}
	for _, s := range services {
		names[s.Name] = struct{}{}
	}
	for _, s := range services {
		for _, dep := range s.DependsOn {
			if _, ok := names[dep]; !ok {
				return &zerrors.UnknownDependency{Service: s.Name, Dep: dep}
			}
		}
	}
	return nil
}

func sortedMapKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
