// Package convert maps between GORM models and core types
package convert

import (
	"database/sql"
	"encoding/json"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/prowogene/toolkit/internal/model"
	"github.com/prowogene/toolkit/pkg/core"
	"gorm.io/datatypes"
)

// PositionToPoint converts a core.Position3D to an XYZ geom.Point
func PositionToPoint(p core.Position3D) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Y},
		Z:    p.Z,
		Type: geom.DimXYZ,
	})
}

// PointToPosition converts a geom.Point back to a core.Position3D.
// An empty point yields the origin.
func PointToPosition(p geom.Point) core.Position3D {
	coord, ok := p.Coordinates()
	if !ok {
		return core.Position3D{}
	}
	return core.Position3D{X: coord.XY.X, Y: coord.XY.Y, Z: coord.Z}
}

// ParseImportMode is the inverse of core.ImportMode.String.
func ParseImportMode(s string) core.ImportMode {
	switch s {
	case core.ImportModeChunk.String():
		return core.ImportModeChunk
	case core.ImportModeComplex.String():
		return core.ImportModeComplex
	default:
		return core.ImportModeNone
	}
}

// CoreToImportRun converts a core.ImportRun to a GORM model.ImportRun.
func CoreToImportRun(r core.ImportRun) model.ImportRun {
	run := model.ImportRun{
		ConfigPath:   r.ConfigPath,
		WorkingDir:   r.WorkingDir,
		Mode:         r.Mode.String(),
		WaterLevel:   r.WaterLevel,
		StartTime:    r.StartTime,
		ItemCount:    r.ItemCount,
		PlacedCount:  r.PlacedCount,
		SkippedCount: r.SkippedCount,
		Aborted:      r.Aborted,
	}
	run.ID = r.ID
	if !r.EndTime.IsZero() {
		run.EndTime = sql.NullTime{Time: r.EndTime, Valid: true}
	}
	return run
}

// ImportRunToCore converts a GORM ImportRun to a core.ImportRun.
func ImportRunToCore(r model.ImportRun) core.ImportRun {
	run := core.ImportRun{
		ID:           r.ID,
		ConfigPath:   r.ConfigPath,
		WorkingDir:   r.WorkingDir,
		Mode:         ParseImportMode(r.Mode),
		WaterLevel:   r.WaterLevel,
		StartTime:    r.StartTime,
		ItemCount:    r.ItemCount,
		PlacedCount:  r.PlacedCount,
		SkippedCount: r.SkippedCount,
		Aborted:      r.Aborted,
	}
	if r.EndTime.Valid {
		run.EndTime = r.EndTime.Time
	}
	return run
}

// CoreToPlacedModel converts a core.PlacedObject to a GORM model.PlacedModel.
func CoreToPlacedModel(o core.PlacedObject) model.PlacedModel {
	source, err := json.Marshal(o.Source)
	if err != nil {
		source = []byte("{}")
	}

	pm := model.PlacedModel{
		ImportRunID:     o.RunID,
		ItemIndex:       o.Index,
		ModelPath:       o.ModelPath,
		Format:          string(o.Format),
		TexturePath:     o.TexturePath,
		NormalMapPath:   o.NormalMapPath,
		Position:        PositionToPoint(o.Position),
		Angle:           o.Angle,
		RotationApplied: o.RotationApplied,
		Source:          datatypes.JSON(source),
	}
	pm.ID = o.ID
	return pm
}

// PlacedModelToCore converts a GORM PlacedModel to a core.PlacedObject.
func PlacedModelToCore(pm model.PlacedModel) core.PlacedObject {
	var source core.PlacementItem
	if len(pm.Source) > 0 {
		_ = json.Unmarshal(pm.Source, &source)
	}

	return core.PlacedObject{
		ID:              pm.ID,
		RunID:           pm.ImportRunID,
		Index:           pm.ItemIndex,
		ModelPath:       pm.ModelPath,
		Format:          core.ModelFormat(pm.Format),
		TexturePath:     pm.TexturePath,
		NormalMapPath:   pm.NormalMapPath,
		Position:        PointToPosition(pm.Position),
		Angle:           pm.Angle,
		RotationApplied: pm.RotationApplied,
		Source:          source,
	}
}
