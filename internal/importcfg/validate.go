package importcfg

import (
	"errors"
	"fmt"

	"github.com/prowogene/toolkit/pkg/core"
)

var itemKeys = []string{"angle", "file", "id", "x", "y", "z"}

// ValidateItem reports whether node describes an external model whose file exists.
// The id key is required even though extraction never reads it.
func (w *Worker) ValidateItem(node any) bool {
	if err := w.checkItem(node); err != nil {
		w.log.Debug("Invalid item", "error", err)
		return false
	}
	return true
}

// ValidateChunkLayout reports whether doc holds a complete chunk grid.
func (w *Worker) ValidateChunkLayout(doc map[string]any) bool {
	if err := w.checkChunkLayout(doc); err != nil {
		if errors.Is(err, ErrNoChunkData) {
			w.log.Info("No chunk data available")
		}
		w.log.Debug("Chunk layout rejected", "error", err)
		return false
	}
	return true
}

// ValidateComplexLayout reports whether doc holds a valid single-mesh landscape.
func (w *Worker) ValidateComplexLayout(doc map[string]any) bool {
	if err := w.checkComplexLayout(doc); err != nil {
		w.log.Debug("Complex layout rejected", "error", err)
		return false
	}
	return true
}

// ChooseMode loads the config at path and returns the layout it satisfies.
// Chunk mode wins when both layouts are valid.
func (w *Worker) ChooseMode(path string) core.ImportMode {
	doc, err := w.LoadDocument(path)
	if err != nil {
		w.log.Debug("Import config not loaded", "path", path, "error", err)
		return core.ImportModeNone
	}

	if w.ValidateChunkLayout(doc) {
		return core.ImportModeChunk
	}
	if w.ValidateComplexLayout(doc) {
		return core.ImportModeComplex
	}
	return core.ImportModeNone
}

// Report explains the outcome of checking an import config.
type Report struct {
	Path       string
	Mode       core.ImportMode
	LoadErr    error
	ChunkErr   error
	ComplexErr error
}

// Inspect checks both layouts of the config at path and keeps the reason each
// was rejected. Mode follows the same priority as ChooseMode.
func (w *Worker) Inspect(path string) Report {
	report := Report{Path: path}

	doc, err := w.LoadDocument(path)
	if err != nil {
		report.LoadErr = err
		return report
	}

	report.ChunkErr = w.checkChunkLayout(doc)
	report.ComplexErr = w.checkComplexLayout(doc)

	switch {
	case report.ChunkErr == nil:
		report.Mode = core.ImportModeChunk
	case report.ComplexErr == nil:
		report.Mode = core.ImportModeComplex
	}
	return report
}

func (w *Worker) checkItem(node any) error {
	item, err := requireKeys(node, itemKeys...)
	if err != nil {
		return fmt.Errorf("item: %w", err)
	}
	file, err := stringAt(item, "file")
	if err != nil {
		return fmt.Errorf("item: %w", err)
	}
	if err := w.fileExists(file); err != nil {
		return fmt.Errorf("item: %w", err)
	}
	return nil
}

func (w *Worker) checkChunkLayout(doc map[string]any) error {
	chunks, err := objectAt(doc, "chunks")
	if err != nil {
		return err
	}
	if _, err := requireKeys(chunks, "count_x", "count_y", "data"); err != nil {
		return fmt.Errorf("chunks: %w", err)
	}

	countX, err := numberAt(chunks, "count_x")
	if err != nil {
		return fmt.Errorf("chunks: %w", err)
	}
	countY, err := numberAt(chunks, "count_y")
	if err != nil {
		return fmt.Errorf("chunks: %w", err)
	}
	data, err := listAt(chunks, "data")
	if err != nil {
		return fmt.Errorf("chunks: %w", err)
	}
	if countX == 0 || countY == 0 || len(data) == 0 {
		return ErrNoChunkData
	}

	for i, entry := range data {
		if err := w.checkChunk(entry); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	if want := countX * countY; float64(len(data)) != want {
		return fmt.Errorf("%w: %d entries for a %gx%g grid", ErrCountMismatch, len(data), countX, countY)
	}
	return nil
}

func (w *Worker) checkChunk(entry any) error {
	chunk, err := requireKeys(entry, "info", "items")
	if err != nil {
		return err
	}
	info, err := objectAt(chunk, "info")
	if err != nil {
		return err
	}
	if _, err := requireKeys(info, "model", "x", "y"); err != nil {
		return fmt.Errorf("info: %w", err)
	}
	if err := w.checkMesh(info); err != nil {
		return fmt.Errorf("info: %w", err)
	}
	return w.checkItems(chunk)
}

func (w *Worker) checkComplexLayout(doc map[string]any) error {
	complexInfo, err := objectAt(doc, "complex")
	if err != nil {
		return err
	}
	if err := w.checkMesh(complexInfo); err != nil {
		return fmt.Errorf("complex: %w", err)
	}
	if err := w.checkItems(complexInfo); err != nil {
		return fmt.Errorf("complex: %w", err)
	}
	return nil
}

// checkMesh checks the model, normal and texture of a generated mesh.
func (w *Worker) checkMesh(mesh map[string]any) error {
	model, err := stringAt(mesh, "model")
	if err != nil {
		return err
	}
	if err := w.fileExists(model); err != nil {
		return err
	}

	for _, key := range []string{"normal", "texture"} {
		p, err := stringAt(mesh, key)
		if err != nil {
			return err
		}
		if err := w.fileExistsOrEmpty(p); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (w *Worker) checkItems(parent map[string]any) error {
	items, err := listAt(parent, "items")
	if err != nil {
		return err
	}
	for i, item := range items {
		if err := w.checkItem(item); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return nil
}
