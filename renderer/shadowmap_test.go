package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glscene/core"
	"glscene/gpu"
	"glscene/materials"
	"glscene/scene"
)

func TestShadowVariantFlipsSides(t *testing.T) {
	rig := newTestRig(t)
	s := rig.r.ShadowMap()
	s.RenderReverseSided = true
	s.RenderSingleSided = true

	front := materials.New(materials.KindBasic)
	double := materials.New(materials.KindBasic)
	double.Side = materials.DoubleSide
	n := scene.NewMesh("caster", scene.CreateQuad(), front)
	light := scene.NewDirectionalLight(core.ColorWhite, 1)
	cam := light.Light.Shadow.Camera

	assert.Equal(t, materials.BackSide, s.variant(n, front, light, cam, false).Side)
	// Double sided is first made single sided, then reversed.
	assert.Equal(t, materials.BackSide, s.variant(n, double, light, cam, false).Side)

	s.RenderReverseSided = false
	assert.Equal(t, materials.FrontSide, s.variant(n, front, light, cam, false).Side)
	s.RenderSingleSided = false
	assert.Equal(t, materials.DoubleSide, s.variant(n, double, light, cam, false).Side)
}

func TestShadowVariantsAreCachedPerFeature(t *testing.T) {
	rig := newTestRig(t)
	s := rig.r.ShadowMap()
	light := scene.NewPointLight(core.ColorWhite, 1, 0, 1)
	cam := light.Light.Shadow.Camera

	plain := materials.New(materials.KindBasic)
	n := scene.NewMesh("caster", scene.CreateQuad(), plain)
	a := s.variant(n, plain, light, cam, true)
	b := s.variant(n, plain, light, cam, true)
	assert.Same(t, a, b)
	assert.Equal(t, materials.KindDistance, a.Kind)
	assert.Equal(t, cam.FarPlane, a.Distance.Far)

	skinned := materials.New(materials.KindBasic)
	skinned.Skinning = true
	n.Skeleton = scene.NewSkeleton(nil, nil)
	c := s.variant(n, skinned, light, cam, true)
	assert.NotSame(t, a, c)
	assert.True(t, c.Skinning)
	assert.False(t, a.Skinning)
}

func TestPointShadowRendersSixFaces(t *testing.T) {
	rig := newTestRig(t)
	rig.r.ShadowMap().Enabled = true
	bulb := scene.NewPointLight(core.ColorWhite, 1, 0, 1)
	bulb.CastShadow = true
	bulb.SetPosition(mgl32.Vec3{0, 0, 2})
	rig.sc.Add(bulb)
	n := rig.add(materials.New(materials.KindBasic))
	n.CastShadow = true

	rig.render()

	tex, _, ok := rig.r.ShadowMap().ShadowFor(bulb.Light.Shadow)
	require.True(t, ok)
	assert.Equal(t, 512*4, tex.Width)
	assert.Equal(t, 512*2, tex.Height)

	var faces int
	for _, c := range rig.d.Named("Viewport") {
		if c.Args[2] == int32(512) && c.Args[3] == int32(512) {
			faces++
		}
	}
	assert.Equal(t, 6, faces)
}

func TestShadowPassIdleWithoutAutoUpdate(t *testing.T) {
	rig := newTestRig(t)
	s := rig.r.ShadowMap()
	s.Enabled = true
	s.AutoUpdate = false
	sun := scene.NewDirectionalLight(core.ColorWhite, 1)
	sun.CastShadow = true
	rig.sc.Add(sun)

	rig.render()
	assert.Zero(t, rig.d.Count("CreateFramebuffer"))

	s.NeedsUpdate = true
	rig.render()
	assert.Equal(t, 1, rig.d.Count("CreateFramebuffer"))
	assert.False(t, s.NeedsUpdate)
	culls := rig.d.Named("CullFace")
	require.NotEmpty(t, culls)
	assert.Equal(t, gpu.Back, culls[len(culls)-1].Args[0])
}
