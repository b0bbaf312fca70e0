package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&ImportRun{},
	&PlacedModel{},
}

// ImportRun is one import of a generator config into the scene
type ImportRun struct {
	gorm.Model
	ConfigPath   string       `json:"configPath" gorm:"size:1024"`
	WorkingDir   string       `json:"workingDir" gorm:"size:1024"`
	Mode         string       `json:"mode" gorm:"size:16"`
	WaterLevel   float64      `json:"waterLevel"`
	StartTime    time.Time    `json:"startTime" gorm:"index:idx_import_start"`
	EndTime      sql.NullTime `json:"endTime"`
	ItemCount    int          `json:"itemCount"`
	PlacedCount  int          `json:"placedCount"`
	SkippedCount int          `json:"skippedCount"`
	Aborted      bool         `json:"aborted"`
	PlacedModels []PlacedModel
}

func (*ImportRun) TableName() string {
	return "import_runs"
}

// PlacedModel is a model file loaded into the scene during an import run.
// Source keeps the placement item as extracted from the config.
type PlacedModel struct {
	gorm.Model
	ImportRunID     uint           `json:"importRunId" gorm:"index"`
	ItemIndex       int            `json:"itemIndex"`
	ModelPath       string         `json:"modelPath" gorm:"size:1024"`
	Format          string         `json:"format" gorm:"size:8"`
	TexturePath     string         `json:"texturePath" gorm:"size:1024"`
	NormalMapPath   string         `json:"normalMapPath" gorm:"size:1024"`
	Position        geom.Point     `json:"position"`
	Angle           float64        `json:"angle"`
	RotationApplied bool           `json:"rotationApplied"`
	Source          datatypes.JSON `json:"source"`
}

func (*PlacedModel) TableName() string {
	return "placed_models"
}
