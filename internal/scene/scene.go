// Package scene places extracted items into a host scene.
package scene

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prowogene/toolkit/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Host is the scene the models are loaded into.
type Host interface {
	// LoadModel imports the model file and assigns obj.ID.
	LoadModel(obj *core.PlacedObject) error
	SetPosition(id uint, pos core.Position3D) error
	SetRotation(id uint, angle float64) error
}

// Dependencies holds the collaborators of a Placer.
type Dependencies struct {
	Host          Host
	Logger        *slog.Logger
	Meter         metric.Meter
	ApplyRotation bool
}

// Placer loads placement items into a Host.
type Placer struct {
	host          Host
	logger        *slog.Logger
	applyRotation bool

	placed  metric.Int64Counter
	skipped metric.Int64Counter
}

// New creates a Placer. Logger and Meter are optional.
func New(deps Dependencies) (*Placer, error) {
	if deps.Host == nil {
		return nil, fmt.Errorf("scene host is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	meter := deps.Meter
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("scene")
	}

	placed, err := meter.Int64Counter("prowogene.scene.placed",
		metric.WithDescription("Models loaded into the scene"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create placed counter: %w", err)
	}
	skipped, err := meter.Int64Counter("prowogene.scene.skipped",
		metric.WithDescription("Items skipped because of an unsupported model format"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create skipped counter: %w", err)
	}

	return &Placer{
		host:          deps.Host,
		logger:        logger,
		applyRotation: deps.ApplyRotation,
		placed:        placed,
		skipped:       skipped,
	}, nil
}

// Place loads every item whose model is an .obj or .fbx file and moves it to
// its position. Other items are skipped. The counters of run are updated.
// A host failure stops the placement, marks run as aborted and is returned.
// Models loaded before the failure stay in the scene.
func (p *Placer) Place(ctx context.Context, run *core.ImportRun, items []core.PlacementItem) error {
	run.ItemCount = len(items)

	for i, item := range items {
		format := core.FormatFromPath(item.ModelPath)
		if format == core.ModelFormatUnknown {
			p.logger.Warn("Skipping model with unsupported format", "model", item.ModelPath)
			run.SkippedCount++
			p.skipped.Add(ctx, 1)
			continue
		}

		if err := p.placeOne(run.ID, i, format, item); err != nil {
			run.Aborted = true
			p.logger.Error("Placement aborted", "placed", run.PlacedCount, "remaining", len(items)-i)
			return err
		}
		run.PlacedCount++
		p.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("format", string(format))))
	}

	p.logger.Info("Placed models", "placed", run.PlacedCount, "skipped", run.SkippedCount)
	return nil
}

func (p *Placer) placeOne(runID uint, index int, format core.ModelFormat, item core.PlacementItem) error {
	obj := &core.PlacedObject{
		RunID:         runID,
		Index:         index,
		ModelPath:     item.ModelPath,
		Format:        format,
		TexturePath:   item.TexturePath,
		NormalMapPath: item.NormalMapPath,
		Source:        item,
	}
	if err := p.host.LoadModel(obj); err != nil {
		return fmt.Errorf("failed to load model %s: %w", item.ModelPath, err)
	}
	if err := p.host.SetPosition(obj.ID, item.Position()); err != nil {
		return fmt.Errorf("failed to position model %s: %w", item.ModelPath, err)
	}
	if p.applyRotation {
		if err := p.host.SetRotation(obj.ID, item.Angle); err != nil {
			return fmt.Errorf("failed to rotate model %s: %w", item.ModelPath, err)
		}
	}
	return nil
}
