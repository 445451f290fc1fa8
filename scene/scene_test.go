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

func TestWorldMatrixFollowsParent(t *testing.T) {
	sc := NewScene()
	parent := NewNode("parent")
	child := NewMesh("child", CreateQuad(), materials.NewBasic(core.ColorWhite))
	parent.AddChild(child)
	sc.Add(parent)

	parent.SetPosition(mgl32.Vec3{1, 0, 0})
	child.SetPosition(mgl32.Vec3{0, 2, 0})
	sc.UpdateWorldMatrices()
	p := child.WorldPosition()
	assert.InDeltaSlice(t, []float32{1, 2, 0}, p[:], 1e-5)

	parent.SetPosition(mgl32.Vec3{3, 0, 0})
	sc.UpdateWorldMatrices()
	p = child.WorldPosition()
	assert.InDeltaSlice(t, []float32{3, 2, 0}, p[:], 1e-5)

	assert.Same(t, child, sc.Root.Find("child"))
	parent.RemoveChild(child)
	assert.Nil(t, child.Parent)
	assert.Nil(t, sc.Root.Find("child"))
}

func TestLayers(t *testing.T) {
	var l Layers
	l.Enable(3)
	assert.True(t, l.Test(1<<3))
	assert.False(t, l.Test(DefaultLayers))
	l.Enable(0)
	assert.True(t, l.Test(DefaultLayers))
	l.Disable(0)
	assert.False(t, l.Test(DefaultLayers))
	l.Set(5)
	assert.Equal(t, Layers(1<<5), l)
}

func TestFrustumSphere(t *testing.T) {
	cam := NewCamera(math32.Pi/3, 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	cam.UpdateMatrices()
	f := FrustumFromVP(cam.GetViewProjectionMatrix())

	assert.True(t, f.IntersectsSphere(core.Sphere{Radius: 1}))
	assert.False(t, f.IntersectsSphere(core.Sphere{Center: mgl32.Vec3{0, 0, 20}, Radius: 1}))
	assert.False(t, f.IntersectsSphere(core.Sphere{Center: mgl32.Vec3{100, 0, 0}, Radius: 1}))
	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, 0}))
}

func TestGeometryAttributes(t *testing.T) {
	g := CreateQuad()
	require.NotNil(t, g.Index)
	assert.Len(t, g.Index.Data, 6)
	assert.Equal(t, 4, g.Attribute("position").Count())
	require.NotNil(t, g.BoundingSphere)
	assert.InDelta(t, math32.Sqrt(0.5), g.BoundingSphere.Radius, 1e-5)

	g.SetAttribute("position", NewAttribute([]float32{0, 0, 0, 2, 0, 0}, 3))
	assert.Nil(t, g.BoundingSphere, "new positions invalidate the bounds")
	g.ComputeBoundingSphere()
	assert.InDelta(t, 1.0, g.BoundingSphere.Radius, 1e-5)

	v := g.Index.Version
	g.SetIndex([]uint32{0, 1})
	assert.Greater(t, g.Index.Version, v)

	g.AddMorphTarget(make([]float32, 6), nil)
	assert.Len(t, g.MorphAttributes["position"], 1)
	assert.Empty(t, g.MorphAttributes["normal"])
}

func TestSkeletonBoneMatrices(t *testing.T) {
	bone := NewNode("bone")
	bone.SetPosition(mgl32.Vec3{0, 1, 0})
	bone.UpdateWorldMatrix()

	s := NewSkeleton([]*Node{bone}, nil)
	s.Update()
	require.Len(t, s.BoneMatrices, 16)
	assert.InDelta(t, 1.0, s.BoneMatrices[13], 1e-6)
}

func TestSceneLights(t *testing.T) {
	sc := NewScene()
	sun := NewDirectionalLight(core.ColorWhite, 1)
	group := NewNode("group")
	group.AddChild(NewPointLight(core.ColorWhite, 1, 10, 2))
	sc.Add(sun, group, NewMesh("m", CreateQuad(), materials.NewBasic(core.ColorWhite)))

	assert.Len(t, sc.Lights(), 2)
}

func TestComputeTangentsOnQuad(t *testing.T) {
	g := CreateQuad()
	ComputeTangents(g)
	tan := g.Attribute("tangent")
	require.NotNil(t, tan)
	assert.Equal(t, 4, tan.ItemSize)
	for i := range tan.Count() {
		assert.InDeltaSlice(t, []float32{1, 0, 0, 1}, tan.Data[4*i:4*i+4], 1e-5)
	}
}

func TestComputeTangentsNeedsUV(t *testing.T) {
	g := NewGeometry("no-uv")
	g.SetAttribute("position", NewAttribute([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, 3))
	g.SetAttribute("normal", NewAttribute([]float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, 3))
	ComputeTangents(g)
	assert.Nil(t, g.Attribute("tangent"))
}

func TestParticleEmitterStreams(t *testing.T) {
	e := NewParticleEmitter(10, 4)
	e.Update(0.1)
	assert.Equal(t, 8, e.Count())
	assert.Equal(t, e.Count(), e.Node.Geometry.DrawRange.Count)

	e.Active = false
	for range 40 {
		e.Update(0.1)
	}
	assert.Zero(t, e.Count())
}

func TestCreateGridLines(t *testing.T) {
	g := CreateGrid(10, 4)
	// 5 lines per axis, 2 vertices each
	assert.Equal(t, 20, g.Attribute("position").Count())
	assert.Equal(t, 20, g.Attribute("color").Count())
}
