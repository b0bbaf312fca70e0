// internal/storage/storage.go
package storage

import "github.com/prowogene/toolkit/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// It doubles as the scene host the placer drives.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management (StartRun assigns the run ID)
	StartRun(run *core.ImportRun) error
	EndRun(run *core.ImportRun) error

	// Scene operations (LoadModel assigns ID to the passed pointer)
	LoadModel(obj *core.PlacedObject) error
	SetPosition(id uint, pos core.Position3D) error
	SetRotation(id uint, angle float64) error
}

// Exportable is an optional interface for backends that write a scene
// manifest file when a run ends.
type Exportable interface {
	LastExportPath() string
}

// History is an optional interface for backends that keep past runs.
type History interface {
	Runs(limit int) ([]core.ImportRun, error)
	Objects(runID uint) ([]core.PlacedObject, error)
}
