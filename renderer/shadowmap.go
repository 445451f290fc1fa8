package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"glscene/core"
	"glscene/gpu"
	"glscene/materials"
	"glscene/scene"
	"glscene/textures"
)

// Point light faces in atlas order, with the up vector of each face camera.
var (
	cubeDirections = [6]mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}, {0, 1, 0}, {0, -1, 0}}
	cubeUps        = [6]mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 0, 1}, {0, 0, -1}}
	// cubeViewports are the cell coordinates of each face in the 4x2 atlas.
	cubeViewports = [6][2]int{{2, 1}, {0, 1}, {3, 1}, {1, 1}, {3, 0}, {1, 0}}
)

// shadowBias maps clip space [-1,1] to texture space [0,1].
var shadowBias = mgl32.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

const (
	variantMorph = 1 << iota
	variantSkin
	variantCount = 4 * 3 // morph x skin x side
)

type shadowProperties struct {
	target *RenderTarget
	matrix mgl32.Mat4
}

// ShadowMap renders the depth of shadow casters from each shadow-casting
// light into an RGBA-packed depth texture.
type ShadowMap struct {
	Enabled    bool
	AutoUpdate bool
	// NeedsUpdate requests one pass while AutoUpdate is off.
	NeedsUpdate bool
	Type        ShadowType

	CullFace           CullMode
	RenderReverseSided bool
	RenderSingleSided  bool

	r       *Renderer
	shadows arena[shadowProperties]

	depth    [variantCount]*materials.Material
	distance [variantCount]*materials.Material
	frustum  scene.Frustum
}

func newShadowMap(r *Renderer, cfg ShadowConfig) *ShadowMap {
	return &ShadowMap{
		Enabled:            cfg.Enabled,
		AutoUpdate:         cfg.AutoUpdate,
		NeedsUpdate:        false,
		Type:               cfg.Type,
		CullFace:           cfg.CullFace,
		RenderReverseSided: cfg.RenderReverseSided,
		RenderSingleSided:  cfg.RenderSingleSided,
		r:                  r,
	}
}

func (s *ShadowMap) properties(ls *scene.LightShadow) *shadowProperties {
	if p := s.shadows.get(ls.Handle); p != nil {
		return p
	}
	p := &shadowProperties{matrix: mgl32.Ident4()}
	ls.Handle = s.shadows.alloc(p)
	return p
}

// ShadowFor returns the map and matrix of ls from the last pass.
func (s *ShadowMap) ShadowFor(ls *scene.LightShadow) (*textures.Texture, mgl32.Mat4, bool) {
	if ls == nil {
		return nil, mgl32.Ident4(), false
	}
	p := s.shadows.get(ls.Handle)
	if p == nil || p.target == nil {
		return nil, mgl32.Ident4(), false
	}
	return p.target.Texture, p.matrix, true
}

func (s *ShadowMap) ensureTarget(p *shadowProperties, width, height int) {
	if p.target == nil {
		p.target = NewRenderTarget(width, height, textures.UnsignedByte)
		t := p.target.Texture
		t.Name = "shadow-map"
		t.MinFilter, t.MagFilter = textures.Nearest, textures.Nearest
		t.WrapS, t.WrapT = textures.ClampToEdge, textures.ClampToEdge
		return
	}
	p.target.SetSize(width, height)
}

// Render draws every caster of scene into the maps of lights. The last shadow
// target stays bound; the caller binds its own afterwards.
func (s *ShadowMap) Render(lights []*scene.Node, sc *scene.Scene, camera *scene.Camera) {
	if !s.Enabled || len(lights) == 0 || sc == nil || sc.Root == nil {
		return
	}
	if !s.AutoUpdate && !s.NeedsUpdate {
		return
	}
	r := s.r
	st := r.state

	st.Disable(gpu.Blend)
	st.Color.SetClear(core.ColorWhite, 1, false)
	st.Depth.SetTest(true)
	st.SetScissorTest(false)

	for _, n := range lights {
		l := n.Light
		ls := l.Shadow
		cam := ls.Camera
		if ls.MapWidth <= 0 || ls.MapHeight <= 0 {
			r.log.Warn("shadow map size must be positive", zap.String("light", n.Name),
				zap.Int("width", ls.MapWidth), zap.Int("height", ls.MapHeight))
			continue
		}
		p := s.properties(ls)
		pos := n.WorldPosition()
		point := l.Kind == scene.PointLight

		width, height := ls.MapWidth, ls.MapHeight
		if point {
			width, height = ls.MapWidth*4, ls.MapHeight*2
		}
		s.ensureTarget(p, width, height)

		if l.Kind == scene.SpotLight {
			fov := math32.Min(2*l.Angle, math32.Pi*0.95)
			if cam.FOV != fov || cam.AspectRatio != float32(ls.MapWidth)/float32(ls.MapHeight) {
				cam.FOV = fov
				cam.UpdateAspectRatio(float32(ls.MapWidth), float32(ls.MapHeight))
				cam.MarkDirty()
			}
		}
		cam.SetPosition(pos)

		r.setRenderTarget(p.target)
		r.Clear(true, true, true)

		if point {
			p.matrix = mgl32.Translate3D(-pos.X(), -pos.Y(), -pos.Z())
			for face := range 6 {
				cam.LookAt(pos.Add(cubeDirections[face]), cubeUps[face])
				cam.UpdateMatrices()
				vp := cubeViewports[face]
				st.Viewport(core.Rect{
					X: vp[0] * ls.MapWidth, Y: vp[1] * ls.MapHeight,
					Width: ls.MapWidth, Height: ls.MapHeight,
				})
				s.renderCasters(sc.Root, camera, cam, n, true)
			}
			continue
		}

		target := l.TargetPosition()
		dir := target.Sub(pos)
		up := mgl32.Vec3{0, 1, 0}
		if dir.LenSqr() > 0 && math32.Abs(dir.Normalize().Dot(up)) > 0.999 {
			up = mgl32.Vec3{0, 0, 1}
		}
		cam.LookAt(target, up)
		cam.UpdateMatrices()
		p.matrix = shadowBias.Mul4(cam.GetViewProjectionMatrix())
		s.renderCasters(sc.Root, camera, cam, n, false)
	}

	st.SetCullFace(gpu.Back)
	s.NeedsUpdate = false
}

func (s *ShadowMap) cullFace() gpu.Face {
	if s.CullFace == CullFront {
		return gpu.Front
	}
	return gpu.Back
}

// renderCasters draws the casters under root visible to the main camera's layers
// into the current shadow map.
func (s *ShadowMap) renderCasters(root *scene.Node, camera, shadowCam *scene.Camera, light *scene.Node, point bool) {
	s.frustum = scene.FrustumFromVP(shadowCam.GetViewProjectionMatrix())
	var walk func(n *scene.Node)
	walk = func(n *scene.Node) {
		if !n.Visible {
			return
		}
		if n.CastShadow && n.Kind.Drawable() && n.Layers.Test(camera.Layers) && n.Geometry != nil {
			g := n.Geometry
			if !n.FrustumCulled || s.casterVisible(n, g) {
				s.drawCaster(n, g, shadowCam, light, point)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
}

func (s *ShadowMap) casterVisible(n *scene.Node, g *scene.Geometry) bool {
	if g.BoundingSphere == nil {
		g.ComputeBoundingSphere()
	}
	return s.frustum.IntersectsSphere(g.BoundingSphere.Transform(n.WorldMatrix()))
}

func (s *ShadowMap) drawCaster(n *scene.Node, g *scene.Geometry, shadowCam *scene.Camera, light *scene.Node, point bool) {
	r := s.r
	if len(n.Materials) > 0 {
		for i := range g.Groups {
			group := &g.Groups[i]
			if group.MaterialIndex < 0 || group.MaterialIndex >= len(n.Materials) {
				continue
			}
			m := n.Materials[group.MaterialIndex]
			if m == nil || !m.Visible {
				continue
			}
			dm := s.variant(n, m, light, shadowCam, point)
			r.state.SetCullFace(s.cullFace())
			r.drawObject(n, shadowCam, nil, g, dm, group)
		}
		return
	}
	if n.Material == nil || !n.Material.Visible {
		return
	}
	dm := s.variant(n, n.Material, light, shadowCam, point)
	r.state.SetCullFace(s.cullFace())
	r.drawObject(n, shadowCam, nil, g, dm, nil)
}

// variant returns the depth or distance material standing in for m. The
// program-relevant state is fixed per slot; the rest is copied per draw.
func (s *ShadowMap) variant(n *scene.Node, m *materials.Material, light *scene.Node, shadowCam *scene.Camera, point bool) *materials.Material {
	idx := 0
	if m.MorphTargets && n.Geometry != nil && len(n.Geometry.MorphAttributes["position"]) > 0 && len(n.MorphTargetInfluences) > 0 {
		idx |= variantMorph
	}
	if m.Skinning && n.Skeleton != nil {
		idx |= variantSkin
	}

	side := m.Side
	if s.RenderSingleSided && side == materials.DoubleSide {
		side = materials.FrontSide
	}
	if s.RenderReverseSided {
		switch side {
		case materials.FrontSide:
			side = materials.BackSide
		case materials.BackSide:
			side = materials.FrontSide
		}
	}
	idx = idx*3 + int(side)

	list := &s.depth
	kind := materials.KindDepth
	if point {
		list = &s.distance
		kind = materials.KindDistance
	}
	dm := list[idx]
	if dm == nil {
		dm = materials.New(kind)
		dm.Name = "shadow-" + kind.String()
		dm.Depth.Packing = materials.RGBADepthPacking
		dm.MorphTargets = idx/3&variantMorph != 0
		dm.Skinning = idx/3&variantSkin != 0
		dm.Side = side
		dm.Blending = materials.NoBlending
		list[idx] = dm
	}

	dm.Visible = m.Visible
	dm.Wireframe = m.Wireframe
	dm.WireframeLinewidth = m.WireframeLinewidth
	dm.ClipShadows = m.ClipShadows
	dm.ClippingPlanes = m.ClippingPlanes
	if point {
		dm.Distance.ReferencePosition = light.WorldPosition()
		dm.Distance.Near = shadowCam.NearPlane
		dm.Distance.Far = shadowCam.FarPlane
	}
	return dm
}

// dispose releases the shadow render targets and variant materials.
func (s *ShadowMap) dispose() {
	s.shadows.each(func(_ int, p *shadowProperties) {
		if p.target != nil {
			s.r.textures.releaseRenderTarget(p.target)
		}
	})
	s.shadows = arena[shadowProperties]{}
	for _, list := range []*[variantCount]*materials.Material{&s.depth, &s.distance} {
		for i, m := range list {
			if m != nil {
				s.r.releaseMaterial(m)
				list[i] = nil
			}
		}
	}
}
