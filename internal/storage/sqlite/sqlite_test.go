package sqlitestorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/prowogene/toolkit/pkg/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imports.db")

	b, err := New(path, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())

	run := &core.ImportRun{ConfigPath: "/w/c.json", Mode: core.ImportModeChunk, StartTime: time.Now()}
	require.NoError(t, b.StartRun(run))
	require.NoError(t, b.LoadModel(&core.PlacedObject{ModelPath: "/w/m.obj", Format: core.ModelFormatOBJ}))
	require.NoError(t, b.EndRun(run))
	require.NoError(t, b.Close())

	reopened, err := New(path, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	require.NoError(t, reopened.Init())

	runs, err := reopened.Runs(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "/w/c.json", runs[0].ConfigPath)

	objects, err := reopened.Objects(runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}

func TestNewInvalidPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "imports.db"), nil, zerolog.Nop())
	assert.Error(t, err)
}
