package renderer

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"

	"glscene/materials"
	"glscene/scene"
)

// Plugin draws after the scene passes of every Render call. target is the
// render target of that call, nil for the default framebuffer.
type Plugin interface {
	Render(r *Renderer, sc *scene.Scene, camera *scene.Camera, target *RenderTarget)
}

// ── Sprites ──

type spriteItem struct {
	node *scene.Node
	z    float32
}

// SpritePlugin draws the frame's sprites as camera-facing quads, back to
// front, after the transparent pass.
type SpritePlugin struct {
	geometry *scene.Geometry
	items    []spriteItem
}

func newSpritePlugin() *SpritePlugin {
	return &SpritePlugin{geometry: scene.CreateQuad()}
}

func (p *SpritePlugin) Render(r *Renderer, sc *scene.Scene, camera *scene.Camera, _ *RenderTarget) {
	sprites := r.projector.Sprites
	if len(sprites) == 0 {
		return
	}
	view := camera.GetViewMatrix()
	p.items = p.items[:0]
	for _, n := range sprites {
		if n.Material == nil || !n.Material.Visible {
			continue
		}
		z := view.Mul4x1(n.WorldPosition().Vec4(1)).Z()
		p.items = append(p.items, spriteItem{node: n, z: z})
	}
	slices.SortStableFunc(p.items, func(a, b spriteItem) int {
		return cmp.Or(
			cmp.Compare(a.node.RenderOrder, b.node.RenderOrder),
			cmp.Compare(a.z, b.z),
			cmp.Compare(b.node.ID, a.node.ID),
		)
	})

	var fog *scene.Fog
	if sc != nil {
		fog = sc.Fog
	}
	for _, it := range p.items {
		r.renderObject(it.node, camera, fog, p.geometry, it.node.Material, nil)
	}
}

// ── Lens flares ──

// LensFlarePlugin draws the elements of visible lens flares in screen space
// along the line from the light through the screen center.
type LensFlarePlugin struct {
	camera    *scene.Camera
	node      *scene.Node
	materials map[*scene.LensFlare][]*materials.Material
}

func newLensFlarePlugin() *LensFlarePlugin {
	cam := scene.NewOrthographicCamera(-1, 1, 1, -1, -1, 1)
	n := scene.NewSprite("lens-flare", nil)
	n.FrustumCulled = false
	return &LensFlarePlugin{camera: cam, node: n, materials: make(map[*scene.LensFlare][]*materials.Material)}
}

func (p *LensFlarePlugin) material(f *scene.LensFlare, i int) *materials.Material {
	list := p.materials[f]
	for len(list) < len(f.Elements) {
		m := materials.New(materials.KindSprite)
		m.Name = "lens-flare"
		m.Transparent = true
		m.DepthTest = false
		m.DepthWrite = false
		m.Side = materials.DoubleSide
		list = append(list, m)
	}
	p.materials[f] = list
	return list[i]
}

func (p *LensFlarePlugin) Render(r *Renderer, _ *scene.Scene, camera *scene.Camera, _ *RenderTarget) {
	flares := r.projector.Flares
	if len(flares) == 0 {
		return
	}
	vp := camera.GetViewProjectionMatrix()
	width, height := float32(r.currentViewport.Width), float32(r.currentViewport.Height)
	if width <= 0 || height <= 0 {
		return
	}

	for _, n := range flares {
		f := n.Flare
		if f == nil {
			continue
		}
		clip := vp.Mul4x1(n.WorldPosition().Vec4(1))
		if clip.W() <= 0 {
			continue
		}
		ndc := clip.Vec3().Mul(1 / clip.W())
		if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
			continue
		}

		for i := range f.Elements {
			el := &f.Elements[i]
			if el.Texture == nil {
				continue
			}
			m := p.material(f, i)
			m.Map = el.Texture
			m.Color = el.Color
			m.Opacity = el.Opacity
			m.Blending = el.Blending
			if m.Blending == materials.NoBlending {
				m.Blending = materials.AdditiveBlending
			}

			k := 1 - 2*el.Distance
			p.node.SetPosition(mgl32.Vec3{ndc.X() * k, ndc.Y() * k, 0})
			p.node.SetScale(mgl32.Vec3{el.Size * 2 / width, el.Size * 2 / height, 1})
			p.node.UpdateWorldMatrix()
			r.renderObject(p.node, p.camera, nil, r.sprites.geometry, m, nil)
		}
	}
}

func (p *LensFlarePlugin) release(r *Renderer) {
	for f, list := range p.materials {
		for _, m := range list {
			r.releaseMaterial(m)
		}
		delete(p.materials, f)
	}
}

// ── Tone mapping ──

// fullscreenVertex draws a triangle covering the viewport and passes uv.
const fullscreenVertex = `#version 410 core
in vec3 position;
out vec2 vUv;
void main() {
	vUv = position.xy * 0.5 + 0.5;
	gl_Position = vec4( position.xy, 0.0, 1.0 );
}
`

const toneMapFragment = `#version 410 core
precision highp float;
in vec2 vUv;
out vec4 fragColor;
uniform sampler2D tDiffuse;
#include <tonemapping_pars_fragment>
void main() {
	vec4 texel = texture( tDiffuse, vUv );
	vec3 color = TONE_MAPPING_OPERATOR( texel.rgb );
	#ifdef GAMMA_OUTPUT
	color = pow( color, vec3( 1.0 / GAMMA_OUTPUT ) );
	#endif
	fragColor = vec4( color, texel.a );
}
`

// ToneMapPass resolves an HDR render target onto Output (nil for the default
// framebuffer) with a tone mapping operator. It runs only for Render calls
// that drew into Source.
type ToneMapPass struct {
	Source   *RenderTarget
	Output   *RenderTarget
	Operator ToneMapping
	Exposure float32
	// WhitePoint is used by the Uncharted2 operator.
	WhitePoint float32
	// Gamma, when positive, applies pow(1/Gamma) after tone mapping.
	Gamma float32

	material *materials.Material
	geometry *scene.Geometry
	node     *scene.Node
	camera   *scene.Camera
	operator ToneMapping
	gamma    float32
}

// NewToneMapPass reads source through the given operator with unit exposure.
func NewToneMapPass(source *RenderTarget, op ToneMapping) *ToneMapPass {
	g := scene.NewGeometry("fullscreen-triangle")
	g.SetAttribute("position", scene.NewAttribute([]float32{-1, -1, 0, 3, -1, 0, -1, 3, 0}, 3))

	m := materials.NewShader(fullscreenVertex, toneMapFragment, nil, true)
	m.Name = "tone map pass"
	m.DepthTest = false
	m.DepthWrite = false
	m.Side = materials.DoubleSide

	n := scene.NewMesh("tone-map", g, m)
	n.FrustumCulled = false

	return &ToneMapPass{
		Source:     source,
		Operator:   op,
		Exposure:   1,
		WhitePoint: 1,
		material:   m,
		geometry:   g,
		node:       n,
		camera:     scene.NewOrthographicCamera(-1, 1, 1, -1, -1, 1),
		operator:   -1,
		gamma:      -1,
	}
}

func (p *ToneMapPass) defines() {
	if p.operator == p.Operator && p.gamma == p.Gamma {
		return
	}
	op := p.Operator
	if op == NoToneMapping {
		op = LinearToneMapping
	}
	if p.material.Defines == nil {
		p.material.Defines = make(map[string]string)
	}
	p.material.Defines["TONE_MAPPING_OPERATOR"] = toneMappingOperator(op) + "ToneMapping"
	delete(p.material.Defines, "GAMMA_OUTPUT")
	if p.Gamma > 0 {
		p.material.Defines["GAMMA_OUTPUT"] = strconv.FormatFloat(float64(p.Gamma), 'f', 4, 32)
	}
	p.operator, p.gamma = p.Operator, p.Gamma
	p.material.NeedsUpdate()
}

func (p *ToneMapPass) Render(r *Renderer, _ *scene.Scene, _ *scene.Camera, target *RenderTarget) {
	if p.Source == nil || target != p.Source || p.Output == p.Source {
		return
	}
	p.defines()
	u := p.material.Shader.Uniforms
	u["tDiffuse"] = p.Source.Texture
	u["toneMappingExposure"] = p.Exposure
	u["toneMappingWhitePoint"] = p.WhitePoint

	r.setRenderTarget(p.Output)
	r.renderObject(p.node, p.camera, nil, p.geometry, p.material, nil)
	r.setRenderTarget(target)
}
