// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SceneExport is the root JSON structure of a scene manifest
type SceneExport struct {
	ConfigPath   string       `json:"configPath"`
	WorkingDir   string       `json:"workingDir"`
	Mode         string       `json:"mode"`
	WaterLevel   float64      `json:"waterLevel"`
	StartTime    time.Time    `json:"startTime"`
	EndTime      time.Time    `json:"endTime"`
	ItemCount    int          `json:"itemCount"`
	PlacedCount  int          `json:"placedCount"`
	SkippedCount int          `json:"skippedCount"`
	Objects      []ObjectJSON `json:"objects"`
}

// ObjectJSON represents one placed model
type ObjectJSON struct {
	ID              uint       `json:"id"`
	Index           int        `json:"index"`
	Model           string     `json:"model"`
	Format          string     `json:"format"`
	Texture         string     `json:"texture,omitempty"`
	Normal          string     `json:"normal,omitempty"`
	Position        [3]float64 `json:"position"`
	Angle           float64    `json:"angle"` // from the config, rotated or not
	RotationApplied bool       `json:"rotationApplied"`
}

// manifestName derives "<config>_<timestamp>" from the config path
func (b *Backend) manifestName() string {
	base := filepath.Base(b.run.ConfigPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "import"
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.ReplaceAll(base, ":", "_")
	return fmt.Sprintf("%s_%s", base, b.run.StartTime.Format("20060102_150405"))
}

// exportJSON writes the run to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	filename := b.manifestName() + ".json"
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() SceneExport {
	export := SceneExport{
		ConfigPath:   b.run.ConfigPath,
		WorkingDir:   b.run.WorkingDir,
		Mode:         b.run.Mode.String(),
		WaterLevel:   b.run.WaterLevel,
		StartTime:    b.run.StartTime,
		EndTime:      b.run.EndTime,
		ItemCount:    b.run.ItemCount,
		PlacedCount:  b.run.PlacedCount,
		SkippedCount: b.run.SkippedCount,
		Objects:      make([]ObjectJSON, 0, len(b.objects)),
	}

	for _, obj := range b.objects {
		export.Objects = append(export.Objects, ObjectJSON{
			ID:              obj.ID,
			Index:           obj.Index,
			Model:           obj.ModelPath,
			Format:          string(obj.Format),
			Texture:         obj.TexturePath,
			Normal:          obj.NormalMapPath,
			Position:        [3]float64{obj.Position.X, obj.Position.Y, obj.Position.Z},
			Angle:           obj.Source.Angle,
			RotationApplied: obj.RotationApplied,
		})
	}
	return export
}

func writeJSON(path string, data SceneExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data SceneExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	return json.NewEncoder(gzWriter).Encode(data)
}
