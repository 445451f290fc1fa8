package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"glscene/core"
	"glscene/materials"
	"glscene/scene"
	"glscene/textures"
)

func TestEveryKindHasRefresher(t *testing.T) {
	for k := materials.Kind(0); k < materials.KindCount; k++ {
		assert.NotNil(t, refreshers[k], k.String())
	}
}

func TestRefreshCommonValues(t *testing.T) {
	m := materials.New(materials.KindBasic)
	m.Opacity = 0.5
	m.Map = textures.NewRenderTexture("albedo", 2, 2, textures.UnsignedByte)
	m.Map.Repeat = mgl32.Vec2{2, 3}
	m.Map.Offset = mgl32.Vec2{0.25, 0.5}

	u := map[string]any{}
	refreshMaterial(u, m, &Renderer{})

	assert.Equal(t, float32(0.5), u["opacity"])
	assert.Same(t, m.Map, u["map"])
	assert.Equal(t, mgl32.Mat3{2, 0, 0, 0, 3, 0, 0.25, 0.5, 1}, u["uvTransform"])
}

func TestRefreshPointsScalesWithViewport(t *testing.T) {
	m := materials.New(materials.KindPoints)
	m.Points.Size = 4

	u := map[string]any{}
	refreshMaterial(u, m, &Renderer{pixelRatio: 2, height: 300})

	assert.Equal(t, float32(8), u["size"])
	assert.Equal(t, float32(150), u["scale"])
}

func TestRefreshDashedAddsTotalSize(t *testing.T) {
	m := materials.New(materials.KindLineDashed)
	u := map[string]any{}
	refreshMaterial(u, m, &Renderer{})

	assert.Equal(t, float32(3), u["dashSize"])
	assert.Equal(t, float32(4), u["totalSize"])
}

func TestRefreshCustomCopiesUniforms(t *testing.T) {
	m := materials.NewShader("", "", map[string]any{"time": float32(2)}, false)
	u := map[string]any{}
	refreshMaterial(u, m, &Renderer{})
	assert.Equal(t, float32(2), u["time"])
}

func TestRefreshFog(t *testing.T) {
	u := map[string]any{}
	refreshFog(u, scene.NewFog(core.ColorRed, 1, 10))
	assert.Equal(t, float32(10), u["fogFar"])
	assert.NotContains(t, u, "fogDensity")

	u = map[string]any{}
	refreshFog(u, scene.NewFogExp2(core.ColorRed, 0.1))
	assert.Equal(t, float32(0.1), u["fogDensity"])
}
