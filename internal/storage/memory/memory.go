// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prowogene/toolkit/internal/config"
	"github.com/prowogene/toolkit/pkg/core"
)

var errNoRun = errors.New("no import run in progress")

// Backend keeps the current import run in memory and exports it as a
// scene manifest when the run ends.
type Backend struct {
	cfg config.MemoryConfig
	run *core.ImportRun

	objects []*core.PlacedObject // in load order
	byID    map[uint]*core.PlacedObject

	runCounter     uint
	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:  cfg,
		byID: make(map[uint]*core.PlacedObject),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRun begins recording a new import run and assigns its ID.
func (b *Backend) StartRun(run *core.ImportRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.runCounter++
	run.ID = b.runCounter

	stored := *run
	b.run = &stored
	b.objects = nil
	b.byID = make(map[uint]*core.PlacedObject)
	return nil
}

// EndRun stores the final counters and exports the manifest if an output
// directory is configured.
func (b *Backend) EndRun(run *core.ImportRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return errNoRun
	}
	stored := *run
	b.run = &stored

	// an aborted run leaves a partial scene, which is not written out
	if b.cfg.OutputDir == "" || run.Aborted {
		return nil
	}
	return b.exportJSON()
}

// LoadModel registers a model in the scene and assigns its ID.
func (b *Backend) LoadModel(obj *core.PlacedObject) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return errNoRun
	}

	b.idCounter++
	obj.ID = b.idCounter
	obj.RunID = b.run.ID

	stored := *obj
	b.objects = append(b.objects, &stored)
	b.byID[stored.ID] = &stored
	return nil
}

// SetPosition moves a loaded model.
func (b *Backend) SetPosition(id uint, pos core.Position3D) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	obj, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("unknown object id %d", id)
	}
	obj.Position = pos
	return nil
}

// SetRotation sets the Z rotation of a loaded model.
func (b *Backend) SetRotation(id uint, angle float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	obj, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("unknown object id %d", id)
	}
	obj.Angle = angle
	obj.RotationApplied = true
	return nil
}

// Run returns a copy of the current run, if any.
func (b *Backend) Run() (core.ImportRun, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.run == nil {
		return core.ImportRun{}, false
	}
	return *b.run, true
}

// Objects returns a snapshot of the loaded models in load order.
func (b *Backend) Objects() []core.PlacedObject {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.PlacedObject, 0, len(b.objects))
	for _, obj := range b.objects {
		out = append(out, *obj)
	}
	return out
}

// LastExportPath returns the path of the most recently written manifest.
func (b *Backend) LastExportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
