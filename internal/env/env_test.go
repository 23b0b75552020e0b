package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapper/internal/zapconfig"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile_BasicAssignments(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "# comment\nFOO=bar\nexport BAZ=\"qux\"\n\nEMPTY=\nSINGLE='quoted'\n")

	vars, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"FOO":    "bar",
		"BAZ":    "qux",
		"EMPTY":  "",
		"SINGLE": "quoted",
	}, vars)
}

func TestParseFile_MissingFileYieldsEmptyMap(t *testing.T) {
	vars, err := ParseFile(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestMergeFiles_LaterFilesOverrideEarlier(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.env", "FOO=base\nSHARED=base\n")
	override := writeFile(t, dir, "override.env", "SHARED=override\n")

	merged, err := MergeFiles([]string{base, override})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"FOO": "base", "SHARED": "override"}, merged)
}

func TestResolve_AttachesResolvedEnvToServicesAndTasks(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "FOO=bar\n")

	ctx := zapconfig.Context{
		EnvFiles: []string{path},
		Services: []zapconfig.Service{{Name: "api"}, {Name: "db"}},
		Tasks:    []zapconfig.Task{{Name: "migrate"}},
	}

	resolved, err := Resolve(ctx)
	require.NoError(t, err)
	require.Len(t, resolved.Services, 2)
	assert.Equal(t, "bar", resolved.Services[0].ResolvedEnv["FOO"])
	assert.Equal(t, "bar", resolved.Services[1].ResolvedEnv["FOO"])
	require.Len(t, resolved.Tasks, 1)
	assert.Equal(t, "bar", resolved.Tasks[0].ResolvedEnv["FOO"])
}

func TestResolve_OSEnvironmentOverridesFileValue(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "FOO=file-value\n")
	t.Setenv("FOO", "shell-value")

	ctx := zapconfig.Context{
		EnvFiles: []string{path},
		Services: []zapconfig.Service{{Name: "api"}},
	}

	resolved, err := Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shell-value", resolved.Services[0].ResolvedEnv["FOO"])
}
