package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glscene/core"
	"glscene/materials"
)

func TestRaycastNearestFirst(t *testing.T) {
	sc := NewScene()
	near := NewMesh("near", CreateQuad(), materials.NewBasic(core.ColorWhite))
	far := NewMesh("far", CreateQuad(), materials.NewBasic(core.ColorWhite))
	far.SetPosition(mgl32.Vec3{0, 0, -3})
	aside := NewMesh("aside", CreateQuad(), materials.NewBasic(core.ColorWhite))
	aside.SetPosition(mgl32.Vec3{5, 0, 0})
	sc.Add(far, near, aside)
	sc.UpdateWorldMatrices()

	ray := Ray{Origin: mgl32.Vec3{0.1, 0.1, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	hits := Raycast(ray, sc.Root, DefaultLayers)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].Node.Name)
	assert.InDelta(t, 5.0, hits[0].Distance, 1e-4)
	assert.InDeltaSlice(t, []float32{0.1, 0.1, 0}, hits[0].Point[:], 1e-4)
	assert.Equal(t, "far", hits[1].Node.Name)

	far.Visible = false
	near.Layers = 1 << 2
	assert.Empty(t, Raycast(ray, sc.Root, DefaultLayers))
}

func TestRayFromScreenCenter(t *testing.T) {
	cam := NewCamera(math32.Pi/3, 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	cam.UpdateMatrices()

	ray := RayFromScreen(50, 50, 100, 100, cam)
	assert.InDeltaSlice(t, []float32{0, 0, -1}, ray.Direction[:], 1e-4)
	assert.InDelta(t, 4.9, ray.Origin.Z(), 1e-3)
}

func TestMollerTrumboreMisses(t *testing.T) {
	v0, v1, v2 := mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}
	_, ok := mollerTrumbore(Ray{Origin: mgl32.Vec3{2, 2, 1}, Direction: mgl32.Vec3{0, 0, -1}}, v0, v1, v2)
	assert.False(t, ok)
	_, ok = mollerTrumbore(Ray{Origin: mgl32.Vec3{0.2, 0.2, 1}, Direction: mgl32.Vec3{1, 0, 0}}, v0, v1, v2)
	assert.False(t, ok, "parallel")
	_, ok = mollerTrumbore(Ray{Origin: mgl32.Vec3{0.2, 0.2, 1}, Direction: mgl32.Vec3{0, 0, 1}}, v0, v1, v2)
	assert.False(t, ok, "behind the origin")
}
