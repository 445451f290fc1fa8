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
	"glscene/textures"
)

func TestSpritesDrawAfterScene(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	for _, z := range []float32{-1, 1} {
		s := scene.NewSprite("sprite", materials.New(materials.KindSprite))
		s.SetPosition(mgl32.Vec3{0, 0, z})
		rig.sc.Add(s)
	}
	rig.render()

	assert.Equal(t, 3, rig.d.Count("DrawElements"))
	assert.Equal(t, 2, len(rig.r.projector.Sprites))
	require.Len(t, rig.r.sprites.items, 2)
	// Farthest first.
	assert.Less(t, rig.r.sprites.items[0].z, rig.r.sprites.items[1].z)
}

func TestLensFlareSkipsOffscreenLights(t *testing.T) {
	rig := newTestRig(t)
	glow := textures.NewSolidTexture("glow", 255, 255, 255, 255)
	flare := scene.NewLensFlare("flare",
		scene.FlareElement{Texture: glow, Size: 32, Opacity: 1, Color: core.ColorWhite},
		scene.FlareElement{Texture: glow, Size: 16, Distance: 0.5, Opacity: 1, Color: core.ColorWhite},
		scene.FlareElement{Size: 16},
	)
	rig.sc.Add(flare)
	rig.render()
	assert.Equal(t, 2, rig.d.Count("DrawElements"))

	m := rig.r.flares.materials[flare.Flare]
	require.Len(t, m, 3)
	assert.Equal(t, materials.AdditiveBlending, m[0].Blending)

	rig.d.Reset()
	flare.SetPosition(mgl32.Vec3{0, 0, 50})
	rig.render()
	assert.Zero(t, rig.d.Count("DrawElements"))
}

func TestLensFlareCulledOnWorldPosition(t *testing.T) {
	rig := newTestRig(t)
	flare := scene.NewLensFlare("flare", scene.FlareElement{Size: 16, Opacity: 1})
	flare.SetPosition(mgl32.Vec3{100, 0, 0})
	rig.sc.Add(flare)

	rig.render()
	assert.Empty(t, rig.r.projector.Flares)

	flare.FrustumCulled = false
	rig.render()
	assert.Len(t, rig.r.projector.Flares, 1)
	assert.Zero(t, rig.d.Count("DrawElements"), "off screen flares still draw nothing")

	flare.FrustumCulled = true
	flare.SetPosition(mgl32.Vec3{})
	rig.render()
	assert.Len(t, rig.r.projector.Flares, 1)
}

func TestToneMapPassResolvesSource(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	hdr := NewRenderTarget(64, 64, textures.HalfFloat)
	pass := NewToneMapPass(hdr, ReinhardToneMapping)
	rig.r.AddPlugin(pass)

	rig.render()
	assert.Zero(t, rig.d.Count("DrawArrays"), "pass runs only for its source")

	rig.r.Render(rig.sc, rig.cam, hdr, false)
	draws := rig.d.Named("DrawArrays")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{gpu.Triangles, 0, 3}, draws[0].Args)
	assert.Equal(t, "ReinhardToneMapping", pass.material.Defines["TONE_MAPPING_OPERATOR"])

	passProgram := rig.r.materialProperties(pass.material).program
	require.NotNil(t, passProgram)
	assert.Contains(t, passProgram.FragmentSource, "#define TONE_MAPPING_OPERATOR ReinhardToneMapping")

	pass.Gamma = 2.2
	version := pass.material.Version
	rig.r.Render(rig.sc, rig.cam, hdr, false)
	assert.Greater(t, pass.material.Version, version)
	assert.Equal(t, "2.2000", pass.material.Defines["GAMMA_OUTPUT"])
}

func TestSkyDrawsBeforeScene(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	rig.sc.Sky = scene.NewSky()
	rig.render()

	assert.Equal(t, 2, rig.d.Count("DrawElements"))
	sky := rig.r.materialProperties(rig.r.sky.material).program
	require.NotNil(t, sky)
	assert.Contains(t, sky.VertexSource, "pos.xyww")
	uses := rig.d.Named("UseProgram")
	require.NotEmpty(t, uses)
	assert.Equal(t, sky.Handle, uses[0].Args[0])

	rig.d.Reset()
	rig.sc.Sky = nil
	rig.render()
	assert.Equal(t, 1, rig.d.Count("DrawElements"))
}

func TestSSAOPassDarkensSource(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	hdr := NewRenderTarget(64, 64, textures.HalfFloat)
	pass := NewSSAOPass(hdr)
	require.NotNil(t, hdr.DepthTexture)
	rig.r.AddPlugin(pass)

	rig.render()
	assert.Zero(t, rig.d.Count("DrawArrays"), "pass runs only for its source")

	rig.r.Render(rig.sc, rig.cam, hdr, false)
	assert.Equal(t, 2, rig.d.Count("DrawArrays"))

	var depthAttached bool
	for _, c := range rig.d.Named("FramebufferTexture2D") {
		if c.Args[0] == gpu.DepthAttachment {
			depthAttached = true
		}
	}
	assert.True(t, depthAttached)
	require.NotNil(t, pass.ao)
	assert.Equal(t, 64, pass.ao.Width)
	assert.Equal(t, materials.MultiplyBlending, pass.blurMaterial.Blending)

	pass.Strength = 0
	rig.d.Reset()
	rig.r.Render(rig.sc, rig.cam, hdr, false)
	assert.Zero(t, rig.d.Count("DrawArrays"))
}

func TestSSAOKernelIsHemisphere(t *testing.T) {
	pass := NewSSAOPass(NewRenderTarget(8, 8, textures.UnsignedByte))
	require.Len(t, pass.kernel, ssaoKernelSize)
	for _, v := range pass.kernel {
		assert.GreaterOrEqual(t, v.Z(), float32(0))
		assert.LessOrEqual(t, v.Len(), float32(1.0001))
	}
	assert.Equal(t, textures.Repeat, pass.noise.WrapS)
}
