package renderer

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
	"glscene/scene"
	"glscene/textures"
)

// ShadowSource resolves the shadow map of a light after the shadow pass.
type ShadowSource interface {
	ShadowFor(s *scene.LightShadow) (tex *textures.Texture, matrix mgl32.Mat4, ok bool)
}

// lightShadow is the shadow part shared by the punctual light structs.
type lightShadow struct {
	Shadow        bool
	ShadowBias    float32
	ShadowRadius  float32
	ShadowMapSize mgl32.Vec2
}

func (s *lightShadow) field(name string) (any, bool) {
	switch name {
	case "shadow":
		return s.Shadow, true
	case "shadowBias":
		return s.ShadowBias, true
	case "shadowRadius":
		return s.ShadowRadius, true
	case "shadowMapSize":
		return s.ShadowMapSize, true
	}
	return nil, false
}

func (s *lightShadow) fill(cast bool, ls *scene.LightShadow) {
	*s = lightShadow{}
	if !cast || ls == nil {
		return
	}
	s.Shadow = true
	s.ShadowBias = ls.Bias
	s.ShadowRadius = ls.Radius
	s.ShadowMapSize = mgl32.Vec2{float32(ls.MapWidth), float32(ls.MapHeight)}
}

// DirectionalLightUniforms mirrors the DirectionalLight GLSL struct.
type DirectionalLightUniforms struct {
	Direction mgl32.Vec3
	Color     core.Color
	lightShadow
}

func (u *DirectionalLightUniforms) UniformField(name string) (any, bool) {
	switch name {
	case "direction":
		return u.Direction, true
	case "color":
		return u.Color, true
	}
	return u.field(name)
}

// PointLightUniforms mirrors the PointLight GLSL struct.
type PointLightUniforms struct {
	Position mgl32.Vec3
	Color    core.Color
	Distance float32
	Decay    float32
	lightShadow
	ShadowCameraNear float32
	ShadowCameraFar  float32
}

func (u *PointLightUniforms) UniformField(name string) (any, bool) {
	switch name {
	case "position":
		return u.Position, true
	case "color":
		return u.Color, true
	case "distance":
		return u.Distance, true
	case "decay":
		return u.Decay, true
	case "shadowCameraNear":
		return u.ShadowCameraNear, true
	case "shadowCameraFar":
		return u.ShadowCameraFar, true
	}
	return u.field(name)
}

// SpotLightUniforms mirrors the SpotLight GLSL struct.
type SpotLightUniforms struct {
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Color       core.Color
	Distance    float32
	Decay       float32
	ConeCos     float32
	PenumbraCos float32
	lightShadow
}

func (u *SpotLightUniforms) UniformField(name string) (any, bool) {
	switch name {
	case "position":
		return u.Position, true
	case "direction":
		return u.Direction, true
	case "color":
		return u.Color, true
	case "distance":
		return u.Distance, true
	case "decay":
		return u.Decay, true
	case "coneCos":
		return u.ConeCos, true
	case "penumbraCos":
		return u.PenumbraCos, true
	}
	return u.field(name)
}

// HemisphereLightUniforms mirrors the HemisphereLight GLSL struct.
type HemisphereLightUniforms struct {
	Direction   mgl32.Vec3
	SkyColor    core.Color
	GroundColor core.Color
}

func (u *HemisphereLightUniforms) UniformField(name string) (any, bool) {
	switch name {
	case "direction":
		return u.Direction, true
	case "skyColor":
		return u.SkyColor, true
	case "groundColor":
		return u.GroundColor, true
	}
	return nil, false
}

// LightState is the per-frame light uniform set. Entries are recycled
// between frames; only the first len(X) of each list are meaningful.
type LightState struct {
	Ambient     core.Color
	Directional []*DirectionalLightUniforms
	Point       []*PointLightUniforms
	Spot        []*SpotLightUniforms
	Hemi        []*HemisphereLightUniforms

	DirectionalShadowMap    []*textures.Texture
	DirectionalShadowMatrix []mgl32.Mat4
	PointShadowMap          []*textures.Texture
	PointShadowMatrix       []mgl32.Mat4
	SpotShadowMap           []*textures.Texture
	SpotShadowMatrix        []mgl32.Mat4

	// Hash summarizes the counts programs depend on; a change forces every
	// lit material to refresh its program.
	Hash string

	source ShadowSource

	dirPool   []DirectionalLightUniforms
	pointPool []PointLightUniforms
	spotPool  []SpotLightUniforms
	hemiPool  []HemisphereLightUniforms

	structs struct{ dir, point, spot, hemi []UniformStruct }
}

func NewLightState(source ShadowSource) *LightState {
	return &LightState{source: source}
}

// SetupShadows returns the casters of lights that can hold a shadow map.
func (s *LightState) SetupShadows(lights []*scene.Node) []*scene.Node {
	var out []*scene.Node
	for _, n := range lights {
		l := n.Light
		if l == nil || !n.CastShadow || l.Shadow == nil || l.Shadow.Camera == nil {
			continue
		}
		switch l.Kind {
		case scene.DirectionalLight, scene.PointLight, scene.SpotLight:
			out = append(out, n)
		}
	}
	return out
}

func grow[T any](pool []T, n int) []T {
	if n <= len(pool) {
		return pool
	}
	return append(pool, make([]T, n-len(pool))...)
}

// Setup transforms lights into the view space of camera and fills the
// uniform lists. shadows are the casters this frame, nil when shadow maps are
// off.
func (s *LightState) Setup(lights, shadows []*scene.Node, camera *scene.Camera) {
	view := camera.GetViewMatrix()
	rot := view.Mat3()

	var ambient mgl32.Vec3
	s.Directional = s.Directional[:0]
	s.Point = s.Point[:0]
	s.Spot = s.Spot[:0]
	s.Hemi = s.Hemi[:0]
	s.DirectionalShadowMap = s.DirectionalShadowMap[:0]
	s.DirectionalShadowMatrix = s.DirectionalShadowMatrix[:0]
	s.PointShadowMap = s.PointShadowMap[:0]
	s.PointShadowMatrix = s.PointShadowMatrix[:0]
	s.SpotShadowMap = s.SpotShadowMap[:0]
	s.SpotShadowMatrix = s.SpotShadowMatrix[:0]

	casting := make(map[*scene.Node]bool, len(shadows))
	for _, n := range shadows {
		casting[n] = true
	}

	var nDir, nPoint, nSpot, nHemi int
	for _, n := range lights {
		switch n.Light.Kind {
		case scene.DirectionalLight:
			nDir++
		case scene.PointLight:
			nPoint++
		case scene.SpotLight:
			nSpot++
		case scene.HemisphereLight:
			nHemi++
		}
	}
	s.dirPool = grow(s.dirPool, nDir)
	s.pointPool = grow(s.pointPool, nPoint)
	s.spotPool = grow(s.spotPool, nSpot)
	s.hemiPool = grow(s.hemiPool, nHemi)

	for _, n := range lights {
		l := n.Light
		color := l.Color.Scale(l.Intensity)
		pos := n.WorldPosition()

		switch l.Kind {
		case scene.AmbientLight:
			ambient = ambient.Add(color.RGB())

		case scene.DirectionalLight:
			u := &s.dirPool[len(s.Directional)]
			u.Color = color
			u.Direction = rot.Mul3x1(pos.Sub(l.TargetPosition())).Normalize()
			u.fill(casting[n], l.Shadow)
			tex, m := s.shadowOf(casting[n], l.Shadow)
			s.DirectionalShadowMap = append(s.DirectionalShadowMap, tex)
			s.DirectionalShadowMatrix = append(s.DirectionalShadowMatrix, m)
			s.Directional = append(s.Directional, u)

		case scene.SpotLight:
			u := &s.spotPool[len(s.Spot)]
			u.Color = color
			u.Position = view.Mul4x1(pos.Vec4(1)).Vec3()
			u.Direction = rot.Mul3x1(pos.Sub(l.TargetPosition())).Normalize()
			u.Distance = l.Distance
			u.Decay = l.Decay
			u.ConeCos = math32.Cos(l.Angle)
			u.PenumbraCos = math32.Cos(l.Angle * (1 - l.Penumbra))
			u.fill(casting[n], l.Shadow)
			tex, m := s.shadowOf(casting[n], l.Shadow)
			s.SpotShadowMap = append(s.SpotShadowMap, tex)
			s.SpotShadowMatrix = append(s.SpotShadowMatrix, m)
			s.Spot = append(s.Spot, u)

		case scene.PointLight:
			u := &s.pointPool[len(s.Point)]
			u.Color = color
			u.Position = view.Mul4x1(pos.Vec4(1)).Vec3()
			u.Distance = l.Distance
			u.Decay = l.Decay
			u.fill(casting[n], l.Shadow)
			u.ShadowCameraNear, u.ShadowCameraFar = 0, 0
			if u.Shadow && l.Shadow.Camera != nil {
				u.ShadowCameraNear = l.Shadow.Camera.NearPlane
				u.ShadowCameraFar = l.Shadow.Camera.FarPlane
			}
			tex, m := s.shadowOf(casting[n], l.Shadow)
			s.PointShadowMap = append(s.PointShadowMap, tex)
			s.PointShadowMatrix = append(s.PointShadowMatrix, m)
			s.Point = append(s.Point, u)

		case scene.HemisphereLight:
			u := &s.hemiPool[len(s.Hemi)]
			u.Direction = rot.Mul3x1(pos).Normalize()
			u.SkyColor = color
			u.GroundColor = l.GroundColor.Scale(l.Intensity)
			s.Hemi = append(s.Hemi, u)
		}
	}

	s.Ambient = core.Color{R: ambient[0], G: ambient[1], B: ambient[2], A: 1}
	s.Hash = fmt.Sprintf("%d,%d,%d,%d,%d", len(s.Directional), len(s.Point), len(s.Spot), len(s.Hemi), len(shadows))
	s.buildStructs()
}

func (s *LightState) shadowOf(cast bool, ls *scene.LightShadow) (*textures.Texture, mgl32.Mat4) {
	if !cast || s.source == nil {
		return nil, mgl32.Ident4()
	}
	tex, m, ok := s.source.ShadowFor(ls)
	if !ok {
		return nil, mgl32.Ident4()
	}
	return tex, m
}

func (s *LightState) buildStructs() {
	st := &s.structs
	st.dir = st.dir[:0]
	for _, u := range s.Directional {
		st.dir = append(st.dir, u)
	}
	st.point = st.point[:0]
	for _, u := range s.Point {
		st.point = append(st.point, u)
	}
	st.spot = st.spot[:0]
	for _, u := range s.Spot {
		st.spot = append(st.spot, u)
	}
	st.hemi = st.hemi[:0]
	for _, u := range s.Hemi {
		st.hemi = append(st.hemi, u)
	}
}

// Values writes the light uniforms into values under their GLSL names.
func (s *LightState) Values(values map[string]any) {
	values["ambientLightColor"] = s.Ambient
	values["directionalLights"] = s.structs.dir
	values["pointLights"] = s.structs.point
	values["spotLights"] = s.structs.spot
	values["hemisphereLights"] = s.structs.hemi
	values["directionalShadowMap"] = s.DirectionalShadowMap
	values["directionalShadowMatrix"] = s.DirectionalShadowMatrix
	values["pointShadowMap"] = s.PointShadowMap
	values["pointShadowMatrix"] = s.PointShadowMatrix
	values["spotShadowMap"] = s.SpotShadowMap
	values["spotShadowMatrix"] = s.SpotShadowMatrix
}
