// pkg/core/run.go
package core

import "time"

// ImportRun describes one import session into the scene.
type ImportRun struct {
	ID           uint
	ConfigPath   string
	WorkingDir   string
	Mode         ImportMode
	WaterLevel   float64
	StartTime    time.Time
	EndTime      time.Time
	ItemCount    int
	PlacedCount  int
	SkippedCount int
	Aborted      bool // placement stopped on a scene host failure
}

// PlacedObject is a model loaded into the scene during a run.
// ID is assigned by the scene host on load.
type PlacedObject struct {
	ID              uint
	RunID           uint
	Index           int // position of the source item in the ImportResult
	ModelPath       string
	Format          ModelFormat
	TexturePath     string
	NormalMapPath   string
	Position        Position3D
	Angle           float64
	RotationApplied bool
	Source          PlacementItem
}
