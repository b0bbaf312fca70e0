package importcfg

import (
	"testing"

	"github.com/prowogene/toolkit/pkg/core"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateItem(t *testing.T) {
	f := newFixture(t)
	w := newTestWorker(Dependencies{})
	model := f.touch("bush.obj")

	tests := []struct {
		name  string
		input func() any
		want  bool
	}{
		{
			name:  "valid",
			input: func() any { return f.item(model, 1, 2, 3, 0) },
			want:  true,
		},
		{
			name: "missing id",
			input: func() any {
				it := f.item(model, 1, 2, 3, 0)
				delete(it, "id")
				return it
			},
		},
		{
			name: "missing angle",
			input: func() any {
				it := f.item(model, 1, 2, 3, 0)
				delete(it, "angle")
				return it
			},
		},
		{
			name: "missing file key",
			input: func() any {
				it := f.item(model, 1, 2, 3, 0)
				delete(it, "file")
				return it
			},
		},
		{
			name: "missing z",
			input: func() any {
				it := f.item(model, 1, 2, 3, 0)
				delete(it, "z")
				return it
			},
		},
		{
			name:  "file does not exist",
			input: func() any { return f.item(model+".missing", 1, 2, 3, 0) },
		},
		{
			name:  "empty file",
			input: func() any { return f.item("", 1, 2, 3, 0) },
		},
		{
			name:  "not an object",
			input: func() any { return []any{"file"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.ValidateItem(tt.input()))
		})
	}
}

func TestValidateChunkLayout_Valid(t *testing.T) {
	f := newFixture(t)
	w := newTestWorker(Dependencies{})

	assert.True(t, w.ValidateChunkLayout(f.chunkConfig()))
}

func TestValidateChunkLayout_CountMismatch(t *testing.T) {
	tests := []struct {
		name           string
		countX, countY int
	}{
		{"more declared than present", 3, 1},
		{"fewer declared than present", 1, 1},
		{"transposed but larger", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := newTestWorker(Dependencies{})
			doc := f.chunkConfig()
			chunks := doc["chunks"].(map[string]any)
			chunks["count_x"] = tt.countX
			chunks["count_y"] = tt.countY

			assert.False(t, w.ValidateChunkLayout(doc))
			assert.ErrorIs(t, w.checkChunkLayout(doc), ErrCountMismatch)
		})
	}
}

func TestValidateChunkLayout_EmptyGrid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(chunks map[string]any)
	}{
		{"count_x zero", func(c map[string]any) { c["count_x"] = 0 }},
		{"count_y zero", func(c map[string]any) { c["count_y"] = 0 }},
		{"no data", func(c map[string]any) { c["data"] = []any{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := newTestWorker(Dependencies{})
			doc := f.chunkConfig()
			tt.mutate(doc["chunks"].(map[string]any))

			assert.False(t, w.ValidateChunkLayout(doc))
			assert.ErrorIs(t, w.checkChunkLayout(doc), ErrNoChunkData)
		})
	}
}

func TestValidateChunkLayout_OptionalMaps(t *testing.T) {
	f := newFixture(t)
	w := newTestWorker(Dependencies{})

	doc := f.chunkConfig()
	info := doc["chunks"].(map[string]any)["data"].([]any)[0].(map[string]any)["info"].(map[string]any)
	info["texture"] = ""
	info["normal"] = ""
	assert.True(t, w.ValidateChunkLayout(doc), "empty texture and normal are allowed")

	info["normal"] = "missing_normal.bmp"
	assert.False(t, w.ValidateChunkLayout(doc))
	assert.ErrorIs(t, w.checkChunkLayout(doc), ErrReferential)
}

func TestValidateChunkLayout_ParsedDocument(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(chunks map[string]any)
		wantErr error
	}{
		{"valid", func(map[string]any) {}, nil},
		{"count mismatch", func(c map[string]any) { c["count_x"] = 3 }, ErrCountMismatch},
		{"zero count", func(c map[string]any) { c["count_y"] = 0 }, ErrNoChunkData},
		{"empty data", func(c map[string]any) { c["data"] = []any{} }, ErrNoChunkData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := newTestWorker(Dependencies{})
			doc := f.chunkConfig()
			tt.mutate(doc["chunks"].(map[string]any))

			parsed, err := w.LoadDocument(f.writeJSON("cfg.json", doc))
			require.NoError(t, err)

			if tt.wantErr == nil {
				assert.True(t, w.ValidateChunkLayout(parsed))
				assert.NoError(t, w.checkChunkLayout(parsed))
				return
			}
			assert.False(t, w.ValidateChunkLayout(parsed))
			assert.ErrorIs(t, w.checkChunkLayout(parsed), tt.wantErr)
		})
	}
}

func TestValidateComplexLayout(t *testing.T) {
	f := newFixture(t)
	w := newTestWorker(Dependencies{})

	doc := f.complexConfig()
	assert.True(t, w.ValidateComplexLayout(doc))
	assert.False(t, w.ValidateChunkLayout(doc))

	doc["complex"].(map[string]any)["texture"] = f.dir + "/nope.bmp"
	assert.False(t, w.ValidateComplexLayout(doc))

	assert.False(t, w.ValidateComplexLayout(map[string]any{}))
}

func TestChooseMode(t *testing.T) {
	tests := []struct {
		name   string
		config func(f *fixture) string
		want   core.ImportMode
	}{
		{
			name:   "chunk only",
			config: func(f *fixture) string { return f.writeJSON("cfg.json", f.chunkConfig()) },
			want:   core.ImportModeChunk,
		},
		{
			name:   "complex only",
			config: func(f *fixture) string { return f.writeJSON("cfg.json", f.complexConfig()) },
			want:   core.ImportModeComplex,
		},
		{
			name: "both valid prefers chunk",
			config: func(f *fixture) string {
				doc := f.chunkConfig()
				doc["complex"] = f.complexSection()
				return f.writeJSON("cfg.json", doc)
			},
			want: core.ImportModeChunk,
		},
		{
			name: "broken chunk falls back to complex",
			config: func(f *fixture) string {
				doc := f.chunkConfig()
				doc["chunks"].(map[string]any)["count_x"] = 5
				doc["complex"] = f.complexSection()
				return f.writeJSON("cfg.json", doc)
			},
			want: core.ImportModeComplex,
		},
		{
			name:   "empty object",
			config: func(f *fixture) string { return f.writeRaw("cfg.json", `{}`) },
			want:   core.ImportModeNone,
		},
		{
			name:   "malformed json",
			config: func(f *fixture) string { return f.writeRaw("cfg.json", `{"chunks": [`) },
			want:   core.ImportModeNone,
		},
		{
			name:   "top-level array",
			config: func(f *fixture) string { return f.writeRaw("cfg.json", `[1, 2]`) },
			want:   core.ImportModeNone,
		},
		{
			name:   "missing file",
			config: func(f *fixture) string { return f.dir + "/does_not_exist.json" },
			want:   core.ImportModeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := newTestWorker(Dependencies{})
			assert.Equal(t, tt.want, w.ChooseMode(tt.config(f)))
		})
	}
}

func TestChooseMode_MissingKeyAnywhere(t *testing.T) {
	chunkPaths := [][]any{
		{"chunks"},
		{"chunks", "count_x"},
		{"chunks", "count_y"},
		{"chunks", "data"},
		{"chunks", "data", 0, "info"},
		{"chunks", "data", 1, "items"},
		{"chunks", "data", 0, "info", "model"},
		{"chunks", "data", 0, "info", "x"},
		{"chunks", "data", 1, "info", "y"},
		{"chunks", "data", 0, "info", "texture"},
		{"chunks", "data", 1, "info", "normal"},
		{"chunks", "data", 0, "items", 0, "id"},
		{"chunks", "data", 1, "items", 0, "angle"},
		{"chunks", "data", 1, "items", 0, "file"},
	}
	for _, path := range chunkPaths {
		t.Run("chunk", func(t *testing.T) {
			f := newFixture(t)
			w := newTestWorker(Dependencies{})
			doc := f.chunkConfig()
			deleteAt(t, doc, path...)

			assert.Equal(t, core.ImportModeNone, w.ChooseMode(f.writeJSON("cfg.json", doc)), "path %v", path)
		})
	}

	complexPaths := [][]any{
		{"complex"},
		{"complex", "model"},
		{"complex", "texture"},
		{"complex", "normal"},
		{"complex", "items"},
		{"complex", "items", 0, "x"},
		{"complex", "items", 0, "id"},
	}
	for _, path := range complexPaths {
		t.Run("complex", func(t *testing.T) {
			f := newFixture(t)
			w := newTestWorker(Dependencies{})
			doc := f.complexConfig()
			deleteAt(t, doc, path...)

			assert.Equal(t, core.ImportModeNone, w.ChooseMode(f.writeJSON("cfg.json", doc)), "path %v", path)
		})
	}
}

func TestChooseMode_RelativePathsUseBaseDir(t *testing.T) {
	f := newFixture(t)
	f.touch("meshes/landscape.obj")
	f.touch("models/house.fbx")
	cfg := f.writeJSON("cfg.json", map[string]any{
		"water_level": 1,
		"complex": map[string]any{
			"model":   "meshes/landscape.obj",
			"texture": "",
			"normal":  "",
			"items":   []any{f.item("models/house.fbx", 0, 0, 0, 0)},
		},
	})

	w := newTestWorker(Dependencies{BaseDir: f.dir})
	assert.Equal(t, core.ImportModeComplex, w.ChooseMode("cfg.json"))
	assert.Equal(t, core.ImportModeComplex, w.ChooseMode(cfg))

	other := newTestWorker(Dependencies{BaseDir: t.TempDir()})
	assert.Equal(t, core.ImportModeNone, other.ChooseMode(cfg), "relative model paths must not resolve elsewhere")
}

func TestChooseMode_MemMapFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/gen/landscape.obj", nil, 0644))
	require.NoError(t, afero.WriteFile(fs, "/gen/cfg.json", []byte(`{
		"water_level": 2,
		"complex": {"model": "/gen/landscape.obj", "texture": "", "normal": "", "items": []}
	}`), 0644))

	w := newTestWorker(Dependencies{Fs: fs})
	assert.Equal(t, core.ImportModeComplex, w.ChooseMode("/gen/cfg.json"))
}

func TestInspect(t *testing.T) {
	f := newFixture(t)
	w := newTestWorker(Dependencies{})

	doc := f.chunkConfig()
	doc["chunks"].(map[string]any)["count_y"] = 4
	report := w.Inspect(f.writeJSON("cfg.json", doc))

	assert.Equal(t, core.ImportModeNone, report.Mode)
	assert.NoError(t, report.LoadErr)
	assert.ErrorIs(t, report.ChunkErr, ErrCountMismatch)
	assert.ErrorIs(t, report.ComplexErr, ErrSchema)

	report = w.Inspect(f.writeRaw("bad.json", "not json"))
	assert.ErrorIs(t, report.LoadErr, ErrParse)
	assert.Equal(t, core.ImportModeNone, report.Mode)

	both := f.chunkConfig()
	both["complex"] = f.complexSection()
	report = w.Inspect(f.writeJSON("both.json", both))
	assert.Equal(t, core.ImportModeChunk, report.Mode)
	assert.NoError(t, report.ComplexErr)
}
