package importcfg

import (
	"fmt"

	"github.com/prowogene/toolkit/pkg/core"
)

// ExtractItem converts an item node into a PlacementItem with an absolute model path.
func (w *Worker) ExtractItem(node any) (core.PlacementItem, error) {
	var result core.PlacementItem

	item, ok := node.(map[string]any)
	if !ok {
		return result, fmt.Errorf("%w: item is not an object", ErrSchema)
	}

	file, err := stringAt(item, "file")
	if err != nil {
		return result, err
	}
	if result.ModelPath, err = w.absPath(file); err != nil {
		return result, fmt.Errorf("error resolving %q: %w", file, err)
	}

	if result.X, err = numberAt(item, "x"); err != nil {
		return result, err
	}
	if result.Y, err = numberAt(item, "y"); err != nil {
		return result, err
	}
	if result.Z, err = numberAt(item, "z"); err != nil {
		return result, err
	}
	if result.Angle, err = numberAt(item, "angle"); err != nil {
		return result, err
	}
	return result, nil
}

// ExtractChunkObjects flattens the "chunks" section: each chunk mesh followed
// by the objects placed on it.
func (w *Worker) ExtractChunkObjects(chunks map[string]any) ([]core.PlacementItem, error) {
	data, err := listAt(chunks, "data")
	if err != nil {
		return nil, err
	}

	var objects []core.PlacementItem
	for i, entry := range data {
		chunk, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("chunk %d: %w: not an object", i, ErrSchema)
		}
		info, err := objectAt(chunk, "info")
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}

		mesh, err := w.extractMesh(info)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		objects = append(objects, mesh)

		items, err := w.extractItems(chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		objects = append(objects, items...)
	}
	return objects, nil
}

// ExtractComplexObjects flattens the "complex" section: the landscape mesh
// followed by the objects placed on it.
func (w *Worker) ExtractComplexObjects(complexInfo map[string]any) ([]core.PlacementItem, error) {
	mesh, err := w.extractMesh(complexInfo)
	if err != nil {
		return nil, err
	}
	items, err := w.extractItems(complexInfo)
	if err != nil {
		return nil, err
	}
	return append([]core.PlacementItem{mesh}, items...), nil
}

// Extract re-reads the config at path and flattens it according to mode.
// mode may differ from what ChooseMode returns for the same file; nothing is
// re-validated. Any failure yields an empty ImportResult.
func (w *Worker) Extract(path string, mode core.ImportMode) core.ImportResult {
	if mode == core.ImportModeNone {
		return core.ImportResult{}
	}

	result, err := w.extract(path, mode)
	if err != nil {
		w.log.Debug("Import info not extracted", "path", path, "mode", mode.String(), "error", err)
		return core.ImportResult{}
	}
	return result
}

func (w *Worker) extract(path string, mode core.ImportMode) (core.ImportResult, error) {
	result := core.ImportResult{Mode: mode}

	doc, err := w.LoadDocument(path)
	if err != nil {
		return core.ImportResult{}, err
	}
	if result.WaterLevel, err = numberAt(doc, "water_level"); err != nil {
		return core.ImportResult{}, err
	}

	var section map[string]any
	switch mode {
	case core.ImportModeChunk:
		if section, err = objectAt(doc, "chunks"); err != nil {
			return core.ImportResult{}, err
		}
		result.Items, err = w.ExtractChunkObjects(section)
	case core.ImportModeComplex:
		if section, err = objectAt(doc, "complex"); err != nil {
			return core.ImportResult{}, err
		}
		result.Items, err = w.ExtractComplexObjects(section)
	default:
		return core.ImportResult{}, fmt.Errorf("unsupported import mode %d", mode)
	}
	if err != nil {
		return core.ImportResult{}, err
	}
	return result, nil
}

// GetWaterLevel returns the water level of the config at path, or 0 on error.
func (w *Worker) GetWaterLevel(path string) float64 {
	doc, err := w.LoadDocument(path)
	if err != nil {
		return 0
	}
	level, err := numberAt(doc, "water_level")
	if err != nil {
		return 0
	}
	return level
}

// extractMesh builds the item for a generated mesh. Only the model path is
// made absolute; texture and normal are copied as written.
func (w *Worker) extractMesh(mesh map[string]any) (core.PlacementItem, error) {
	var result core.PlacementItem

	model, err := stringAt(mesh, "model")
	if err != nil {
		return result, err
	}
	if result.ModelPath, err = w.absPath(model); err != nil {
		return result, fmt.Errorf("error resolving %q: %w", model, err)
	}
	if result.TexturePath, err = stringAt(mesh, "texture"); err != nil {
		return result, err
	}
	if result.NormalMapPath, err = stringAt(mesh, "normal"); err != nil {
		return result, err
	}
	return result, nil
}

func (w *Worker) extractItems(parent map[string]any) ([]core.PlacementItem, error) {
	nodes, err := listAt(parent, "items")
	if err != nil {
		return nil, err
	}
	items := make([]core.PlacementItem, 0, len(nodes))
	for i, node := range nodes {
		item, err := w.ExtractItem(node)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}
