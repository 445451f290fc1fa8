package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"glscene/core"
	"glscene/materials"
	"glscene/scene"
)

func depths(items []*RenderItem) []float32 {
	out := make([]float32, len(items))
	for i, it := range items {
		out[i] = it.Z
	}
	return out
}

func TestRenderListSortsByDepth(t *testing.T) {
	var l RenderList
	l.Init()

	opaque := materials.New(materials.KindBasic)
	glass := materials.New(materials.KindBasic)
	glass.Transparent = true
	g := scene.CreateQuad()

	for _, z := range []float32{5, 1, 3} {
		l.Push(scene.NewMesh("o", g, opaque), g, opaque, z, nil)
		l.Push(scene.NewMesh("t", g, glass), g, glass, z, nil)
	}
	l.Finish()
	l.Sort()

	assert.Equal(t, []float32{1, 3, 5}, depths(l.Opaque))
	assert.Equal(t, []float32{5, 3, 1}, depths(l.Transparent))
	assert.Equal(t, 6, l.Len())
}

func TestRenderListGroupsByProgramBeforeDepth(t *testing.T) {
	a := materials.New(materials.KindBasic)
	b := materials.New(materials.KindBasic)
	programs := map[*materials.Material]int{a: 2, b: 1}

	l := RenderList{ProgramID: func(m *materials.Material) int { return programs[m] }}
	l.Init()
	g := scene.CreateQuad()
	l.Push(scene.NewMesh("near", g, a), g, a, 1, nil)
	l.Push(scene.NewMesh("far", g, b), g, b, 9, nil)
	l.Sort()

	require.Len(t, l.Opaque, 2)
	assert.Equal(t, 1, l.Opaque[0].ProgramID)
	assert.Equal(t, float32(9), l.Opaque[0].Z)
}

func TestRenderListRenderOrderWins(t *testing.T) {
	var l RenderList
	l.Init()
	m := materials.New(materials.KindBasic)
	g := scene.CreateQuad()

	late := scene.NewMesh("late", g, m)
	late.RenderOrder = 1
	l.Push(late, g, m, 0, nil)
	l.Push(scene.NewMesh("early", g, m), g, m, 10, nil)
	l.Sort()

	assert.Equal(t, "early", l.Opaque[0].Object.Name)
}

func TestRenderListRecyclesItems(t *testing.T) {
	var l RenderList
	m := materials.New(materials.KindBasic)
	g := scene.CreateQuad()

	l.Init()
	l.Push(scene.NewMesh("a", g, m), g, m, 0, nil)
	l.Push(scene.NewMesh("b", g, m), g, m, 0, nil)
	first := l.Opaque[0]
	l.Finish()

	l.Init()
	l.Push(scene.NewMesh("c", g, m), g, m, 0, nil)
	l.Finish()

	assert.Same(t, first, l.Opaque[0])
	assert.Equal(t, 1, l.Len())
	assert.Nil(t, l.items[1].Object)
}

func TestProjectorCullsOutsideFrustum(t *testing.T) {
	cam := scene.NewCamera(mgl32.DegToRad(60), 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})

	m := materials.New(materials.KindBasic)
	mesh := scene.NewMesh("quad", scene.CreateQuad(), m)

	var l RenderList
	p := NewProjector(&l, zap.NewNop())

	mesh.SetPosition(mgl32.Vec3{1000, 0, 0})
	mesh.UpdateWorldMatrix()
	p.Begin(cam, nil)
	p.Project(mesh, cam)
	assert.Equal(t, 0, l.Len())

	mesh.SetPosition(mgl32.Vec3{})
	mesh.UpdateWorldMatrix()
	p.Begin(cam, nil)
	p.Project(mesh, cam)
	assert.Equal(t, 1, l.Len())
}

func TestProjectorCollectsLightsAndHonorsLayers(t *testing.T) {
	cam := scene.NewCamera(mgl32.DegToRad(60), 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})

	root := scene.NewNode("root")
	sun := scene.NewDirectionalLight(core.ColorWhite, 1)
	sun.CastShadow = true
	hidden := scene.NewMesh("hidden", scene.CreateQuad(), materials.New(materials.KindBasic))
	hidden.Layers.Set(3)
	root.AddChild(sun)
	root.AddChild(hidden)
	root.UpdateWorldMatrix()

	var l RenderList
	p := NewProjector(&l, zap.NewNop())
	p.Begin(cam, nil)
	p.Project(root, cam)

	assert.Len(t, p.Lights, 1)
	assert.Len(t, p.Shadows, 1)
	assert.Equal(t, 0, l.Len())
}

func TestProjectorOverrideMaterial(t *testing.T) {
	cam := scene.NewCamera(mgl32.DegToRad(60), 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	override := materials.New(materials.KindNormal)

	mesh := scene.NewMesh("quad", scene.CreateQuad(), materials.New(materials.KindBasic))
	mesh.UpdateWorldMatrix()

	var l RenderList
	p := NewProjector(&l, zap.NewNop())
	p.Begin(cam, override)
	p.Project(mesh, cam)

	require.Equal(t, 1, l.Len())
	assert.Same(t, override, l.Opaque[0].Material)
}
