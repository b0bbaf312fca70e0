package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/prowogene/toolkit/internal/config"
	"github.com/prowogene/toolkit/internal/storage/memory"
	"github.com/prowogene/toolkit/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost records the calls made by the placer.
type fakeHost struct {
	calls   []string
	nextID  uint
	failOn  string
	loaded  []core.PlacedObject
	moves   map[uint]core.Position3D
	rotates map[uint]float64
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		moves:   make(map[uint]core.Position3D),
		rotates: make(map[uint]float64),
	}
}

func (h *fakeHost) LoadModel(obj *core.PlacedObject) error {
	h.calls = append(h.calls, "load "+obj.ModelPath)
	if h.failOn == "load" {
		return errors.New("load failed")
	}
	h.nextID++
	obj.ID = h.nextID
	h.loaded = append(h.loaded, *obj)
	return nil
}

func (h *fakeHost) SetPosition(id uint, pos core.Position3D) error {
	h.calls = append(h.calls, "position")
	if h.failOn == "position" {
		return errors.New("position failed")
	}
	h.moves[id] = pos
	return nil
}

func (h *fakeHost) SetRotation(id uint, angle float64) error {
	h.calls = append(h.calls, "rotation")
	h.rotates[id] = angle
	return nil
}

func items() []core.PlacementItem {
	return []core.PlacementItem{
		{ModelPath: "/w/ground.obj", TexturePath: "/w/ground.png", X: 0, Y: 0, Z: 0},
		{ModelPath: "/w/tree.FBX", X: 1, Y: 2, Z: 3, Angle: 0.5},
		{ModelPath: "/w/rock.blend", X: 4, Y: 5, Z: 6},
	}
}

func TestNewRequiresHost(t *testing.T) {
	_, err := New(Dependencies{})
	assert.Error(t, err)
}

func TestPlace(t *testing.T) {
	host := newFakeHost()
	p, err := New(Dependencies{Host: host})
	require.NoError(t, err)

	run := &core.ImportRun{ID: 7}
	require.NoError(t, p.Place(context.Background(), run, items()))

	assert.Equal(t, 3, run.ItemCount)
	assert.Equal(t, 2, run.PlacedCount)
	assert.Equal(t, 1, run.SkippedCount)

	assert.Equal(t, []string{
		"load /w/ground.obj",
		"position",
		"load /w/tree.FBX",
		"position",
	}, host.calls)

	require.Len(t, host.loaded, 2)
	assert.Equal(t, core.ModelFormatOBJ, host.loaded[0].Format)
	assert.Equal(t, "/w/ground.png", host.loaded[0].TexturePath)
	assert.Equal(t, uint(7), host.loaded[0].RunID)
	assert.Equal(t, core.ModelFormatFBX, host.loaded[1].Format)
	assert.Equal(t, 1, host.loaded[1].Index)

	assert.Equal(t, core.Position3D{X: 1, Y: 2, Z: 3}, host.moves[2])
	assert.Empty(t, host.rotates)
}

func TestPlaceAppliesRotation(t *testing.T) {
	host := newFakeHost()
	p, err := New(Dependencies{Host: host, ApplyRotation: true})
	require.NoError(t, err)

	run := &core.ImportRun{}
	require.NoError(t, p.Place(context.Background(), run, items()[1:2]))

	assert.Equal(t, []string{"load /w/tree.FBX", "position", "rotation"}, host.calls)
	assert.Equal(t, 0.5, host.rotates[1])
}

func TestPlaceHostFailure(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
	}{
		{name: "load", failOn: "load"},
		{name: "position", failOn: "position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost()
			host.failOn = tt.failOn
			p, err := New(Dependencies{Host: host})
			require.NoError(t, err)

			run := &core.ImportRun{}
			err = p.Place(context.Background(), run, items())
			assert.Error(t, err)
			assert.Zero(t, run.PlacedCount)
			assert.True(t, run.Aborted)
		})
	}
}

func TestPlaceEmpty(t *testing.T) {
	host := newFakeHost()
	p, err := New(Dependencies{Host: host})
	require.NoError(t, err)

	run := &core.ImportRun{}
	require.NoError(t, p.Place(context.Background(), run, nil))
	assert.Zero(t, run.ItemCount)
	assert.Empty(t, host.calls)
}

func TestPlaceIntoMemoryBackend(t *testing.T) {
	backend := memory.New(config.MemoryConfig{})
	p, err := New(Dependencies{Host: backend, ApplyRotation: true})
	require.NoError(t, err)

	run := &core.ImportRun{}
	require.NoError(t, backend.StartRun(run))
	require.NoError(t, p.Place(context.Background(), run, items()))

	objects := backend.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, core.Position3D{X: 1, Y: 2, Z: 3}, objects[1].Position)
	assert.True(t, objects[1].RotationApplied)
}
