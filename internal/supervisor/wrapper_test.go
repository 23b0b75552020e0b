package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWrapperScript_ContainsCmdAndIsExecutable(t *testing.T) {
	root := t.TempDir()
	path, err := WriteWrapperScript(root, "demo", "api", "", "npm start")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "npm start")
	assert.Contains(t, string(data), "#!/bin/sh")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100)
}

func TestWriteWrapperScript_RemovesPriorScriptsForSameServiceOnly(t *testing.T) {
	root := t.TempDir()

	first, err := WriteWrapperScript(root, "demo", "api", "", "npm start")
	require.NoError(t, err)

	other, err := WriteWrapperScript(root, "demo", "worker", "", "npm run worker")
	require.NoError(t, err)

	second, err := WriteWrapperScript(root, "demo", "api", "", "npm start")
	require.NoError(t, err)

	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err), "prior api wrapper should have been removed")

	_, err = os.Stat(other)
	assert.NoError(t, err, "worker wrapper should be untouched")

	_, err = os.Stat(second)
	assert.NoError(t, err)
}

func TestWriteWrapperScript_IncludesSourceLineWhenProvided(t *testing.T) {
	root := t.TempDir()
	path, err := WriteWrapperScript(root, "demo", "api", filepath.Join(root, ".nvmrc.sh"), "npm start")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ".nvmrc.sh")
}
