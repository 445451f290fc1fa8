package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glscene/core"
	"glscene/scene"
	"glscene/textures"
)

type fixedShadows struct {
	tex *textures.Texture
	m   mgl32.Mat4
}

func (s fixedShadows) ShadowFor(*scene.LightShadow) (*textures.Texture, mgl32.Mat4, bool) {
	return s.tex, s.m, true
}

func setupLights(t *testing.T, s *LightState, shadowsOn bool, nodes ...*scene.Node) {
	t.Helper()
	root := scene.NewNode("root")
	for _, n := range nodes {
		root.AddChild(n)
	}
	root.UpdateWorldMatrix()
	cam := scene.NewCamera(mgl32.DegToRad(60), 1, 0.1, 100)

	var shadows []*scene.Node
	if shadowsOn {
		shadows = s.SetupShadows(nodes)
	}
	s.Setup(nodes, shadows, cam)
}

func TestLightSetupCountsAndAmbient(t *testing.T) {
	s := NewLightState(nil)
	setupLights(t, s, false,
		scene.NewAmbientLight(core.Color{R: 0.2, G: 0.2, B: 0.2, A: 1}, 1),
		scene.NewAmbientLight(core.Color{R: 0.1, A: 1}, 2),
		scene.NewDirectionalLight(core.ColorWhite, 1),
		scene.NewPointLight(core.ColorWhite, 1, 10, 2),
	)

	assert.Len(t, s.Directional, 1)
	assert.Len(t, s.Point, 1)
	assert.Empty(t, s.Spot)
	assert.InDelta(t, 0.4, s.Ambient.R, 1e-6)
	assert.InDelta(t, 0.2, s.Ambient.G, 1e-6)
	assert.Equal(t, "1,1,0,0,0", s.Hash)

	// The default directional light sits above the origin and aims at it.
	dir := s.Directional[0].Direction
	assert.InDelta(t, 1, dir.Y(), 1e-5)
}

func TestLightHashTracksShadows(t *testing.T) {
	sun := scene.NewDirectionalLight(core.ColorWhite, 1)
	sun.CastShadow = true

	s := NewLightState(fixedShadows{tex: textures.NewRenderTexture("shadow", 1, 1, textures.UnsignedByte), m: mgl32.Ident4()})
	setupLights(t, s, false, sun)
	off := s.Hash
	require.Len(t, s.DirectionalShadowMap, 1)
	assert.Nil(t, s.DirectionalShadowMap[0])

	setupLights(t, s, true, sun)
	assert.NotEqual(t, off, s.Hash)
	assert.NotNil(t, s.DirectionalShadowMap[0])
	assert.True(t, s.Directional[0].Shadow)
}

func TestSetupShadowsSkipsNonCasters(t *testing.T) {
	s := NewLightState(nil)
	quiet := scene.NewPointLight(core.ColorWhite, 1, 0, 1)
	ambient := scene.NewAmbientLight(core.ColorWhite, 1)
	ambient.CastShadow = true
	caster := scene.NewSpotLight(core.ColorWhite, 1, 0, 0.5, 0, 1)
	caster.CastShadow = true

	got := s.SetupShadows([]*scene.Node{quiet, ambient, caster})
	assert.Equal(t, []*scene.Node{caster}, got)
}

func TestLightValuesKeys(t *testing.T) {
	s := NewLightState(nil)
	setupLights(t, s, false, scene.NewHemisphereLight(core.ColorWhite, core.ColorBlack, 1))

	values := map[string]any{}
	s.Values(values)
	for _, key := range []string{"ambientLightColor", "directionalLights", "pointLights", "spotLights", "hemisphereLights"} {
		assert.Contains(t, values, key)
	}
	assert.Len(t, s.Hemi, 1)
}
