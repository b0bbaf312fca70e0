// pkg/core/placement.go
package core

import (
	"path/filepath"
	"strings"
)

// ImportMode is the layout an import config was recognized as.
type ImportMode int

const (
	// ImportModeNone means no valid layout was found. It is never a successful result.
	ImportModeNone ImportMode = iota
	// ImportModeChunk imports the landscape as a grid of submeshes with objects.
	ImportModeChunk
	// ImportModeComplex imports the landscape as one mesh with objects.
	ImportModeComplex
)

func (m ImportMode) String() string {
	switch m {
	case ImportModeChunk:
		return "chunk"
	case ImportModeComplex:
		return "complex"
	default:
		return "none"
	}
}

// PlacementItem is one model to be placed into the scene.
// TexturePath and NormalMapPath are empty for external objects.
type PlacementItem struct {
	ModelPath     string  `json:"model"`
	TexturePath   string  `json:"texture"`
	NormalMapPath string  `json:"normal"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Z             float64 `json:"z"`
	Angle         float64 `json:"angle"` // radians
}

// Position returns the item's world position.
func (p PlacementItem) Position() Position3D {
	return Position3D{X: p.X, Y: p.Y, Z: p.Z}
}

// ImportResult is the flattened content of an import config.
// Items are in document order: chunk by chunk (mesh first, then its objects),
// or the complex mesh followed by its objects.
type ImportResult struct {
	Mode       ImportMode
	WaterLevel float64
	Items      []PlacementItem
}

// Position3D is a point in scene space.
type Position3D struct {
	X float64
	Y float64
	Z float64
}

// ModelFormat identifies the file formats the scene host can load.
type ModelFormat string

const (
	ModelFormatOBJ     ModelFormat = "obj"
	ModelFormatFBX     ModelFormat = "fbx"
	ModelFormatUnknown ModelFormat = ""
)

// FormatFromPath detects the model format from the file extension, case-insensitively.
func FormatFromPath(path string) ModelFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return ModelFormatOBJ
	case ".fbx":
		return ModelFormatFBX
	default:
		return ModelFormatUnknown
	}
}
