package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s := New(t.TempDir())
	doc := s.Load()
	assert.Empty(t, doc.ActiveProfile)
	assert.Empty(t, doc.ActiveEnvironment)
	assert.Empty(t, doc.Services)
}

func TestLoad_UnparseableFileReturnsDefaults(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".zap"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".zap", FileName), []byte("not json"), 0o644))

	s := New(root)
	doc := s.Load()
	assert.Empty(t, doc.ActiveProfile)
}

func TestSetActiveProfile_PersistsAndReloads(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	require.NoError(t, s.SetActiveProfile("dev"))

	reloaded := New(root)
	doc := reloaded.Load()
	assert.Equal(t, "dev", doc.ActiveProfile)
	assert.False(t, doc.LastUpdated.IsZero())
}

func TestRecordStartAndClearStart(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.RecordStart("zap.demo.api", 4242, now))

	doc := s.Load()
	require.Contains(t, doc.Services, "zap.demo.api")
	assert.Equal(t, 4242, doc.Services["zap.demo.api"].StartPid)

	require.NoError(t, s.ClearStart("zap.demo.api"))
	doc = s.Load()
	assert.NotContains(t, doc.Services, "zap.demo.api")
}

func TestMutate_MergesRatherThanOverwriting(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	require.NoError(t, s.SetActiveProfile("dev"))
	require.NoError(t, s.SetActiveEnvironment("staging"))

	doc := s.Load()
	assert.Equal(t, "dev", doc.ActiveProfile)
	assert.Equal(t, "staging", doc.ActiveEnvironment)
}
