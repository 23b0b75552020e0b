package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapper/internal/zapconfig"
)

func newTestContext(tasks ...zapconfig.Task) zapconfig.Context {
	return zapconfig.Context{
		Project: zapconfig.Project{Root: "/proj", TaskDelimiters: [2]string{"{{", "}}"}},
		Tasks:   tasks,
	}
}

func TestRun_RendersParamsIntoCommand(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	ctx := newTestContext(zapconfig.Task{
		Name: "greet",
		Cmds: []zapconfig.TaskCmd{{Shell: "echo {{ .name }} > " + outPath}},
		Params: []zapconfig.TaskParam{
			{Name: "name", Required: true},
		},
	})
	ctx.Project.Root = dir

	r := NewRunner(ctx)
	require.NoError(t, r.Run(context.Background(), "greet", map[string]string{"name": "world"}))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "world\n", string(data))
}

func TestRun_MissingRequiredParamFails(t *testing.T) {
	ctx := newTestContext(zapconfig.Task{
		Name:   "greet",
		Cmds:   []zapconfig.TaskCmd{{Shell: "echo {{ .name }}"}},
		Params: []zapconfig.TaskParam{{Name: "name", Required: true}},
	})

	r := NewRunner(ctx)
	err := r.Run(context.Background(), "greet", map[string]string{})
	require.Error(t, err)
	var missing *ErrMissingRequiredParam
	assert.ErrorAs(t, err, &missing)
}

func TestRun_DefaultUsedWhenParamNotSupplied(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	ctx := newTestContext(zapconfig.Task{
		Name:   "greet",
		Cmds:   []zapconfig.TaskCmd{{Shell: "echo {{ .name }} > " + outPath}},
		Params: []zapconfig.TaskParam{{Name: "name", Default: "default-name", HasDefault: true}},
	})
	ctx.Project.Root = dir

	r := NewRunner(ctx)
	require.NoError(t, r.Run(context.Background(), "greet", map[string]string{}))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "default-name\n", string(data))
}

func TestRun_TaskReferenceRunsOtherTask(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	ctx := newTestContext(
		zapconfig.Task{
			Name: "wrapper",
			Cmds: []zapconfig.TaskCmd{{TaskRef: "inner", IsTaskRef: true}},
		},
		zapconfig.Task{
			Name: "inner",
			Cmds: []zapconfig.TaskCmd{{Shell: "echo ran > " + outPath}},
		},
	)
	ctx.Project.Root = dir

	r := NewRunner(ctx)
	require.NoError(t, r.Run(context.Background(), "wrapper", nil))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "ran\n", string(data))
}

func TestRun_UnknownTaskFails(t *testing.T) {
	r := NewRunner(newTestContext())
	err := r.Run(context.Background(), "nope", nil)
	require.Error(t, err)
	var unknown *ErrUnknownTask
	assert.ErrorAs(t, err, &unknown)
}

func TestRun_CustomDelimiters(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	ctx := newTestContext(zapconfig.Task{
		Name:   "greet",
		Cmds:   []zapconfig.TaskCmd{{Shell: "echo <% .name %> > " + outPath}},
		Params: []zapconfig.TaskParam{{Name: "name", Required: true}},
	})
	ctx.Project.Root = dir
	ctx.Project.TaskDelimiters = [2]string{"<%", "%>"}

	r := NewRunner(ctx)
	require.NoError(t, r.Run(context.Background(), "greet", map[string]string{"name": "custom"}))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(data))
}

func TestListNames_SortedAndDeduplicated(t *testing.T) {
	ctx := newTestContext(
		zapconfig.Task{Name: "zeta"},
		zapconfig.Task{Name: "alpha", Aliases: []string{"a"}},
	)
	r := NewRunner(ctx)
	assert.Equal(t, []string{"alpha", "zeta"}, r.ListNames())
}
