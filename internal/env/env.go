// Package env resolves the environment variables of a project's services
// and tasks: it parses the dotenv-format files zapconfig.Context.EnvFiles
// names and merges them in order (later files win). A variable from the
// process's own environment overrides a key only when that key already
// appears in the files; inherited variables the files do not name are not
// added, and there is no per-service whitelist. Every service and task
// gets the same resulting map as its ResolvedEnv.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"zapper/internal/zapconfig"
)

// ParseFile reads one dotenv-format file: KEY=VALUE lines, blank lines and
// lines starting with "#" ignored, surrounding single or double quotes on
// the value stripped. A missing file yields an empty map rather than an
// error — env_files commonly name optional per-developer overrides.
func ParseFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer f.Close()

	out := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := splitAssignment(line)
		if !ok {
			continue
		}
		out[key] = unquote(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return out, nil
}

func splitAssignment(line string) (key, value string, ok bool) {
	line = strings.TrimPrefix(line, "export ")
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// MergeFiles parses each path in order and merges the results, later files
// overriding earlier ones — the same precedence docker-compose and similar
// tools give a list of env files.
func MergeFiles(paths []string) (map[string]string, error) {
	merged := map[string]string{}
	for _, path := range paths {
		vars, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range vars {
			merged[k] = v
		}
	}
	return merged, nil
}

// Resolve computes each service's ResolvedEnv: the merged env-file
// variables, overridden by any OS environment variable that shares a key
// (letting a developer's shell override a committed .env value), and
// returns a new Context with the services replaced. ctx is not mutated.
func Resolve(ctx zapconfig.Context) (zapconfig.Context, error) {
	fromFiles, err := MergeFiles(ctx.EnvFiles)
	if err != nil {
		return zapconfig.Context{}, err
	}

	base := map[string]string{}
	for k, v := range fromFiles {
		base[k] = v
	}
	for k := range base {
		if v, ok := os.LookupEnv(k); ok {
			base[k] = v
		}
	}

	services := make([]zapconfig.Service, len(ctx.Services))
	for i, svc := range ctx.Services {
		svc.ResolvedEnv = cloneMap(base)
		services[i] = svc
	}
	ctx.Services = services

	tasks := make([]zapconfig.Task, len(ctx.Tasks))
	for i, task := range ctx.Tasks {
		task.ResolvedEnv = cloneMap(base)
		tasks[i] = task
	}
	ctx.Tasks = tasks

	return ctx, nil
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
