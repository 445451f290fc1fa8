package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"glscene/materials"
	"glscene/scene"
	"glscene/textures"
)

// refreshFunc copies the kind-specific values of m into its uniform map.
type refreshFunc func(u map[string]any, m *materials.Material, r *Renderer)

// refreshers has one entry per material kind.
var refreshers = [materials.KindCount]refreshFunc{
	materials.KindBasic:      refreshCommon,
	materials.KindLambert:    refreshLambert,
	materials.KindPhong:      refreshPhong,
	materials.KindStandard:   refreshStandard,
	materials.KindNormal:     refreshNormal,
	materials.KindDepth:      refreshDepth,
	materials.KindDistance:   refreshDistance,
	materials.KindPoints:     refreshPoints,
	materials.KindLineBasic:  refreshLineBasic,
	materials.KindLineDashed: refreshLineDashed,
	materials.KindSprite:     refreshSprite,
	materials.KindShader:     refreshCustom,
	materials.KindRawShader:  refreshCustom,
}

func refreshMaterial(u map[string]any, m *materials.Material, r *Renderer) {
	if m.Kind < 0 || m.Kind >= materials.KindCount {
		return
	}
	if fn := refreshers[m.Kind]; fn != nil {
		fn(u, m, r)
	}
}

// uvTransform is the texture matrix of t: repeat then offset.
func uvTransform(t *textures.Texture) mgl32.Mat3 {
	rx, ry := t.Repeat.X(), t.Repeat.Y()
	return mgl32.Mat3{
		rx, 0, 0,
		0, ry, 0,
		t.Offset.X(), t.Offset.Y(), 1,
	}
}

// uvSource picks the texture whose transform drives the shared uv varying.
func uvSource(m *materials.Material) *textures.Texture {
	for _, t := range []*textures.Texture{
		m.Map, m.SpecularMap, m.DisplacementMap, m.NormalMap, m.BumpMap,
		m.Standard.RoughnessMap, m.Standard.MetalnessMap, m.AlphaMap, m.EmissiveMap,
	} {
		if t != nil {
			return t
		}
	}
	return nil
}

func refreshCommon(u map[string]any, m *materials.Material, _ *Renderer) {
	u["opacity"] = m.Opacity
	u["diffuse"] = m.Color
	u["map"] = m.Map
	u["alphaMap"] = m.AlphaMap
	u["specularMap"] = m.SpecularMap

	u["envMap"] = m.EnvMap
	if m.EnvMap != nil {
		flip := float32(1)
		if m.EnvMap.Cube {
			flip = -1
		}
		u["flipEnvMap"] = flip
	}
	u["reflectivity"] = m.Reflectivity
	u["refractionRatio"] = m.RefractionRatio

	u["aoMap"] = m.AOMap
	u["aoMapIntensity"] = m.AOIntensity
	u["lightMap"] = m.LightMap
	u["lightMapIntensity"] = m.LightMapIntensity

	if t := uvSource(m); t != nil {
		u["uvTransform"] = uvTransform(t)
	}
}

func refreshEmissive(u map[string]any, m *materials.Material) {
	u["emissive"] = m.Emissive.Scale(m.EmissiveIntensity)
	u["emissiveMap"] = m.EmissiveMap
}

func refreshSurfaceMaps(u map[string]any, m *materials.Material) {
	u["bumpMap"] = m.BumpMap
	u["bumpScale"] = m.BumpScale
	u["normalMap"] = m.NormalMap
	u["normalScale"] = m.NormalScale
	refreshDisplacement(u, m)
}

func refreshDisplacement(u map[string]any, m *materials.Material) {
	u["displacementMap"] = m.DisplacementMap
	u["displacementScale"] = m.DisplacementScale
	u["displacementBias"] = m.DisplacementBias
}

func refreshLambert(u map[string]any, m *materials.Material, r *Renderer) {
	refreshCommon(u, m, r)
	refreshEmissive(u, m)
}

func refreshPhong(u map[string]any, m *materials.Material, r *Renderer) {
	refreshCommon(u, m, r)
	refreshEmissive(u, m)
	u["specular"] = m.Phong.Specular
	u["shininess"] = max(m.Phong.Shininess, 1e-4)
	u["gradientMap"] = m.GradientMap
	refreshSurfaceMaps(u, m)
}

func refreshStandard(u map[string]any, m *materials.Material, r *Renderer) {
	refreshCommon(u, m, r)
	refreshEmissive(u, m)
	s := &m.Standard
	u["roughness"] = s.Roughness
	u["metalness"] = s.Metalness
	u["roughnessMap"] = s.RoughnessMap
	u["metalnessMap"] = s.MetalnessMap
	u["envMapIntensity"] = s.EnvMapIntensity
	refreshSurfaceMaps(u, m)
	if s.Physical {
		u["clearCoat"] = s.ClearCoat
		u["clearCoatRoughness"] = s.ClearCoatRoughness
	}
}

func refreshNormal(u map[string]any, m *materials.Material, _ *Renderer) {
	u["opacity"] = m.Opacity
	refreshSurfaceMaps(u, m)
}

func refreshDepth(u map[string]any, m *materials.Material, r *Renderer) {
	refreshCommon(u, m, r)
	refreshDisplacement(u, m)
}

func refreshDistance(u map[string]any, m *materials.Material, r *Renderer) {
	refreshCommon(u, m, r)
	refreshDisplacement(u, m)
	u["referencePosition"] = m.Distance.ReferencePosition
	u["nearDistance"] = m.Distance.Near
	u["farDistance"] = m.Distance.Far
}

func refreshPoints(u map[string]any, m *materials.Material, r *Renderer) {
	u["diffuse"] = m.Color
	u["opacity"] = m.Opacity
	u["size"] = m.Points.Size * r.pixelRatio
	u["scale"] = float32(r.height) * 0.5
	u["map"] = m.Map
	if m.Map != nil {
		u["uvTransform"] = uvTransform(m.Map)
	}
}

func refreshLineBasic(u map[string]any, m *materials.Material, _ *Renderer) {
	u["diffuse"] = m.Color
	u["opacity"] = m.Opacity
}

func refreshLineDashed(u map[string]any, m *materials.Material, r *Renderer) {
	refreshLineBasic(u, m, r)
	u["dashSize"] = m.Line.DashSize
	u["totalSize"] = m.Line.DashSize + m.Line.GapSize
	u["scale"] = m.Line.Scale
}

func refreshSprite(u map[string]any, m *materials.Material, _ *Renderer) {
	u["diffuse"] = m.Color
	u["opacity"] = m.Opacity
	u["map"] = m.Map
	u["rotation"] = m.Sprite.Rotation
	if m.Map != nil {
		u["uvOffset"] = m.Map.Offset
		u["uvScale"] = m.Map.Repeat
	}
}

func refreshCustom(u map[string]any, m *materials.Material, _ *Renderer) {
	for k, v := range m.Shader.Uniforms {
		u[k] = v
	}
}

func refreshFog(u map[string]any, fog *scene.Fog) {
	u["fogColor"] = fog.Color
	switch fog.Kind {
	case scene.FogExp2:
		u["fogDensity"] = fog.Density
	default:
		u["fogNear"] = fog.Near
		u["fogFar"] = fog.Far
	}
}
