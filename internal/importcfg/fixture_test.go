package importcfg

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// fixture lays out generator output under a temp dir.
type fixture struct {
	t   *testing.T
	dir string
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, dir: t.TempDir()}
}

func newTestWorker(deps Dependencies) *Worker {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return New(deps)
}

// touch creates an empty file and returns its absolute path.
func (f *fixture) touch(name string) string {
	p := filepath.Join(f.dir, name)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(f.t, os.WriteFile(p, nil, 0644))
	return p
}

func (f *fixture) writeJSON(name string, v any) string {
	raw, err := json.Marshal(v)
	require.NoError(f.t, err)
	return f.writeRaw(name, string(raw))
}

func (f *fixture) writeRaw(name, content string) string {
	p := filepath.Join(f.dir, name)
	require.NoError(f.t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func (f *fixture) item(file string, x, y, z, angle float64) map[string]any {
	return map[string]any{"id": 7, "file": file, "x": x, "y": y, "z": z, "angle": angle}
}

// chunkSection builds a 2x1 grid with one external object per chunk.
func (f *fixture) chunkSection() map[string]any {
	return map[string]any{
		"count_x": 2,
		"count_y": 1,
		"data": []any{
			map[string]any{
				"info": map[string]any{
					"model":   f.touch("chunk_0_0.obj"),
					"texture": f.touch("chunk_0_0.bmp"),
					"normal":  "",
					"x":       0,
					"y":       0,
				},
				"items": []any{f.item(f.touch("tree.fbx"), 1, 2, 3, 0.5)},
			},
			map[string]any{
				"info": map[string]any{
					"model":   f.touch("chunk_1_0.obj"),
					"texture": "",
					"normal":  f.touch("chunk_1_0_normal.bmp"),
					"x":       1,
					"y":       0,
				},
				"items": []any{f.item(f.touch("rock.obj"), 4, 5, 6, 1.5)},
			},
		},
	}
}

func (f *fixture) complexSection() map[string]any {
	return map[string]any{
		"model":   f.touch("landscape.obj"),
		"texture": f.touch("landscape.bmp"),
		"normal":  f.touch("landscape_normal.bmp"),
		"items": []any{
			f.item(f.touch("house.fbx"), 10, 20, 30, 3.14),
		},
	}
}

func (f *fixture) chunkConfig() map[string]any {
	return map[string]any{"water_level": 0.25, "chunks": f.chunkSection()}
}

func (f *fixture) complexConfig() map[string]any {
	return map[string]any{"water_level": 0.5, "complex": f.complexSection()}
}

// deleteAt removes the last element of path from doc. Path elements are map
// keys (string) or list indices (int).
func deleteAt(t *testing.T, doc map[string]any, path ...any) {
	t.Helper()
	var node any = doc
	for _, step := range path[:len(path)-1] {
		switch s := step.(type) {
		case string:
			node = node.(map[string]any)[s]
		case int:
			node = node.([]any)[s]
		}
	}
	last, ok := path[len(path)-1].(string)
	require.True(t, ok, "last path element must be a key")
	m := node.(map[string]any)
	_, found := m[last]
	require.True(t, found, "key %q not present", last)
	delete(m, last)
}

// countingFs counts filesystem accesses.
type countingFs struct {
	afero.Fs
	calls int
}

func (c *countingFs) Open(name string) (afero.File, error) {
	c.calls++
	return c.Fs.Open(name)
}

func (c *countingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	c.calls++
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *countingFs) Stat(name string) (os.FileInfo, error) {
	c.calls++
	return c.Fs.Stat(name)
}

func (c *countingFs) Chtimes(name string, atime, mtime time.Time) error {
	c.calls++
	return c.Fs.Chtimes(name, atime, mtime)
}
