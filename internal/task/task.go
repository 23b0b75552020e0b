// Package task runs a project's one-off named command sequences:
// resolving a Task's parameters, rendering its command templates with
// the project's configured delimiters, and running each command (or
// recursing into a referenced task) in order.
//
// Templating uses Go's text/template plus sprig's function map, with a
// configurable delimiter pair instead of a hardcoded "{{ }}" so a project
// can override task_delimiters.
package task

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"zapper/internal/zapconfig"
	"zapper/pkg/logging"
)

const taskSubsystem = "TaskRunner"

// ErrUnknownTask is returned when a {task: name} reference or a top-level
// run request names a task that doesn't exist.
type ErrUnknownTask struct{ Name string }

func (e *ErrUnknownTask) Error() string { return fmt.Sprintf("unknown task %q", e.Name) }

// ErrMissingRequiredParam is returned when a required parameter has
// neither a caller-supplied value nor a default.
type ErrMissingRequiredParam struct {
	Task  string
	Param string
}

func (e *ErrMissingRequiredParam) Error() string {
	return fmt.Sprintf("task %q: missing required parameter %q", e.Task, e.Param)
}

// Runner executes Tasks declared in a Context.
type Runner struct {
	ProjectRoot string
	Delimiters  [2]string
	Tasks       map[string]zapconfig.Task
	Stdout      *os.File
	Stderr      *os.File
}

// NewRunner indexes ctx.Tasks by name (and alias) for Run's lookups.
func NewRunner(ctx zapconfig.Context) *Runner {
	byName := make(map[string]zapconfig.Task, len(ctx.Tasks))
	for _, t := range ctx.Tasks {
		byName[t.Name] = t
		for _, alias := range t.Aliases {
			if _, exists := byName[alias]; !exists {
				byName[alias] = t
			}
		}
	}
	delims := ctx.Project.TaskDelimiters
	if delims[0] == "" || delims[1] == "" {
		delims = [2]string{"{{", "}}"}
	}
	return &Runner{
		ProjectRoot: ctx.Project.Root,
		Delimiters:  delims,
		Tasks:       byName,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
}

// Run resolves params for the named task and executes its cmds in order,
// recursing into any {task: ref} steps.
func (r *Runner) Run(ctx context.Context, name string, params map[string]string) error {
	return r.runNamed(ctx, name, params, map[string]bool{})
}

func (r *Runner) runNamed(ctx context.Context, name string, params map[string]string, seen map[string]bool) error {
	t, ok := r.Tasks[name]
	if !ok {
		return &ErrUnknownTask{Name: name}
	}
	if seen[t.Name] {
		return fmt.Errorf("task %q: cyclic task reference", t.Name)
	}
	seen[t.Name] = true
	defer delete(seen, t.Name)

	resolved, err := r.resolveParams(t, params)
	if err != nil {
		return err
	}

	cwd := r.ProjectRoot
	if t.Cwd != "" {
		if filepath.IsAbs(t.Cwd) {
			cwd = t.Cwd
		} else {
			cwd = filepath.Join(r.ProjectRoot, t.Cwd)
		}
	}

	for _, cmd := range t.Cmds {
		if cmd.IsTaskRef {
			if err := r.runNamed(ctx, cmd.TaskRef, params, seen); err != nil {
				return err
			}
			continue
		}

		rendered, err := r.render(cmd.Shell, resolved, t.ResolvedEnv)
		if err != nil {
			return fmt.Errorf("task %q: %w", t.Name, err)
		}

		logging.Info(taskSubsystem, "task %s: running %s", t.Name, rendered)
		execCmd := exec.CommandContext(ctx, "sh", "-c", rendered)
		execCmd.Dir = cwd
		execCmd.Env = mergeEnv(t.ResolvedEnv)
		execCmd.Stdout = r.Stdout
		execCmd.Stderr = r.Stderr
		if err := execCmd.Run(); err != nil {
			return fmt.Errorf("task %q: command %q: %w", t.Name, rendered, err)
		}
	}
	return nil
}

// resolveParams applies each param's default when the caller didn't
// supply a value, and fails if a required param still has none.
func (r *Runner) resolveParams(t zapconfig.Task, supplied map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(t.Params))
	for _, p := range t.Params {
		if v, ok := supplied[p.Name]; ok {
			out[p.Name] = v
			continue
		}
		if p.HasDefault {
			out[p.Name] = p.Default
			continue
		}
		if p.Required {
			return nil, &ErrMissingRequiredParam{Task: t.Name, Param: p.Name}
		}
		out[p.Name] = ""
	}
	return out, nil
}

// render executes cmd as a Go template using the runner's configured
// delimiters and sprig's function map, with each param available as a
// top-level key and resolvedEnv available as the map under "env".
func (r *Runner) render(cmd string, params map[string]string, env map[string]string) (string, error) {
	data := map[string]interface{}{"env": env}
	for k, v := range params {
		data[k] = v
	}

	tmpl, err := template.New("task").
		Delims(r.Delimiters[0], r.Delimiters[1]).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=zero").
		Parse(cmd)
	if err != nil {
		return "", fmt.Errorf("invalid command template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering command template: %w", err)
	}
	return buf.String(), nil
}

func mergeEnv(resolved map[string]string) []string {
	out := os.Environ()
	for k, v := range resolved {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

// ListNames returns every task name (not aliases) in a stable order for
// display/completion purposes.
func (r *Runner) ListNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, t := range r.Tasks {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		names = append(names, t.Name)
	}
	return sortedStrings(names)
}

func sortedStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && strings.Compare(out[j-1], out[j]) > 0; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
