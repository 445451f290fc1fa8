package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"glscene/core"
	"glscene/materials"
	"glscene/scene"
)

// Projector walks a scene graph once per frame and sorts what it finds into
// the render list and the light, shadow, sprite and flare lists. It never
// mutates the graph; world matrices must already be resolved.
type Projector struct {
	List *RenderList

	Lights  []*scene.Node
	Shadows []*scene.Node
	Sprites []*scene.Node
	Flares  []*scene.Node

	frustum  scene.Frustum
	viewProj mgl32.Mat4
	override *materials.Material
	log      *zap.Logger
}

func NewProjector(list *RenderList, log *zap.Logger) *Projector {
	return &Projector{List: list, log: log}
}

// Begin resets the per-frame lists for camera.
func (p *Projector) Begin(camera *scene.Camera, override *materials.Material) {
	p.viewProj = camera.GetViewProjectionMatrix()
	p.frustum = scene.FrustumFromVP(p.viewProj)
	p.override = override
	p.Lights = p.Lights[:0]
	p.Shadows = p.Shadows[:0]
	p.Sprites = p.Sprites[:0]
	p.Flares = p.Flares[:0]
	p.List.Init()
}

// Frustum is the view frustum of the current frame.
func (p *Projector) Frustum() *scene.Frustum { return &p.frustum }

// Project visits n and its visible descendants.
func (p *Projector) Project(n *scene.Node, camera *scene.Camera) {
	if !n.Visible {
		return
	}
	if n.Layers.Test(camera.Layers) {
		p.classify(n)
	}
	for _, child := range n.Children {
		p.Project(child, camera)
	}
}

func (p *Projector) classify(n *scene.Node) {
	switch n.Kind {
	case scene.KindLight:
		if n.Light == nil {
			p.log.Warn("light node without light", zap.String("node", n.Name))
			return
		}
		p.Lights = append(p.Lights, n)
		if n.CastShadow && n.Light.Shadow != nil {
			p.Shadows = append(p.Shadows, n)
		}

	case scene.KindSprite:
		if n.FrustumCulled && !p.spriteVisible(n) {
			return
		}
		p.Sprites = append(p.Sprites, n)

	case scene.KindLensFlare:
		if n.FrustumCulled && !p.spriteVisible(n) {
			return
		}
		p.Flares = append(p.Flares, n)

	case scene.KindMesh, scene.KindLine, scene.KindLineSegments, scene.KindLineLoop, scene.KindPoints:
		g := n.Geometry
		if g == nil {
			p.log.Warn("drawable without geometry", zap.String("node", n.Name))
			return
		}
		if n.FrustumCulled && !p.visible(n, g) {
			return
		}
		p.push(n, g)
	}
}

func (p *Projector) visible(n *scene.Node, g *scene.Geometry) bool {
	if g.BoundingSphere == nil {
		g.ComputeBoundingSphere()
	}
	return p.frustum.IntersectsSphere(g.BoundingSphere.Transform(n.WorldMatrix()))
}

// spriteVisible tests a sphere at the node origin sized by its scale. Lens
// flares use it for their light position.
func (p *Projector) spriteVisible(n *scene.Node) bool {
	s := n.Transform.Scale
	radius := max(s.X(), s.Y()) * 0.5 * 1.4142135
	return p.frustum.IntersectsSphere(core.Sphere{Center: n.WorldPosition(), Radius: radius})
}

// depth is the clip-space z of the object origin.
func (p *Projector) depth(n *scene.Node) float32 {
	pos := n.WorldPosition()
	v := p.viewProj.Mul4x1(pos.Vec4(1))
	if v.W() == 0 {
		return 0
	}
	return v.Z() / v.W()
}

func (p *Projector) push(n *scene.Node, g *scene.Geometry) {
	z := p.depth(n)

	if p.override != nil {
		if p.override.Visible {
			p.List.Push(n, g, p.override, z, nil)
		}
		return
	}

	if len(n.Materials) > 0 {
		for i := range g.Groups {
			group := &g.Groups[i]
			if group.MaterialIndex < 0 || group.MaterialIndex >= len(n.Materials) {
				continue
			}
			if m := n.Materials[group.MaterialIndex]; m != nil && m.Visible {
				p.List.Push(n, g, m, z, group)
			}
		}
		return
	}

	if n.Material == nil {
		p.log.Warn("drawable without material", zap.String("node", n.Name))
		return
	}
	if n.Material.Visible {
		p.List.Push(n, g, n.Material, z, nil)
	}
}
