package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
	"glscene/gpu"
	"glscene/materials"
)

// cached remembers the last value handed to the driver. A zero cached is
// unknown, so the first set always reports a change.
type cached[T comparable] struct {
	v  T
	ok bool
}

func (c *cached[T]) set(v T) bool {
	if c.ok && c.v == v {
		return false
	}
	c.v, c.ok = v, true
	return true
}

func (c *cached[T]) reset() { c.ok = false }

type blendEquation struct{ rgb, alpha gpu.BlendEquation }

type blendFunc struct{ srcRGB, dstRGB, srcAlpha, dstAlpha gpu.BlendFactor }

type stencilFunc struct {
	fn   gpu.CompareFunc
	ref  int32
	mask uint32
}

type stencilOp struct{ fail, zfail, zpass gpu.StencilOp }

type polygonOffset struct{ factor, units float32 }

type boundTexture struct {
	target gpu.TextureTarget
	tex    gpu.Handle
}

var (
	blendEquations = map[materials.BlendEquation]gpu.BlendEquation{
		materials.AddEquation:             gpu.FuncAdd,
		materials.SubtractEquation:        gpu.FuncSubtract,
		materials.ReverseSubtractEquation: gpu.FuncReverseSubtract,
		materials.MinEquation:             gpu.Min,
		materials.MaxEquation:             gpu.Max,
	}
	blendFactors = map[materials.BlendFactor]gpu.BlendFactor{
		materials.ZeroFactor:             gpu.Zero,
		materials.OneFactor:              gpu.One,
		materials.SrcColorFactor:         gpu.SrcColor,
		materials.OneMinusSrcColorFactor: gpu.OneMinusSrcColor,
		materials.SrcAlphaFactor:         gpu.SrcAlpha,
		materials.OneMinusSrcAlphaFactor: gpu.OneMinusSrcAlpha,
		materials.DstAlphaFactor:         gpu.DstAlpha,
		materials.OneMinusDstAlphaFactor: gpu.OneMinusDstAlpha,
		materials.DstColorFactor:         gpu.DstColor,
		materials.OneMinusDstColorFactor: gpu.OneMinusDstColor,
		materials.SrcAlphaSaturateFactor: gpu.SrcAlphaSaturate,
	}
	depthFuncs = map[materials.DepthFunc]gpu.CompareFunc{
		materials.LessEqualDepth:    gpu.Lequal,
		materials.NeverDepth:        gpu.Never,
		materials.AlwaysDepth:       gpu.Always,
		materials.LessDepth:         gpu.Less,
		materials.EqualDepth:        gpu.Equal,
		materials.GreaterEqualDepth: gpu.Gequal,
		materials.GreaterDepth:      gpu.Greater,
		materials.NotEqualDepth:     gpu.Notequal,
	}
)

// ── Buffers ──

// ColorBuffer caches the color write mask and clear color.
type ColorBuffer struct {
	s      *State
	locked bool
	mask   cached[bool]
	clear  cached[mgl32.Vec4]
}

func (b *ColorBuffer) SetMask(write bool) {
	if !b.locked && b.mask.set(write) {
		b.s.d.ColorMask(write, write, write, write)
	}
}

// SetLocked makes later setters no-ops until unlocked.
func (b *ColorBuffer) SetLocked(lock bool) { b.locked = lock }

// SetClear sets the clear color, premultiplying by alpha when asked.
func (b *ColorBuffer) SetClear(c core.Color, alpha float32, premultiplied bool) {
	v := mgl32.Vec4{c.R, c.G, c.B, alpha}
	if premultiplied {
		v = mgl32.Vec4{c.R * alpha, c.G * alpha, c.B * alpha, alpha}
	}
	if b.clear.set(v) {
		b.s.d.ClearColor(v[0], v[1], v[2], v[3])
	}
}

func (b *ColorBuffer) reset() {
	b.locked = false
	b.mask.reset()
	b.clear.reset()
}

// DepthBuffer caches the depth test, mask, function and clear value.
type DepthBuffer struct {
	s      *State
	locked bool
	mask   cached[bool]
	fn     cached[gpu.CompareFunc]
	clear  cached[float64]
}

func (b *DepthBuffer) SetTest(on bool) {
	if on {
		b.s.Enable(gpu.DepthTest)
	} else {
		b.s.Disable(gpu.DepthTest)
	}
}

func (b *DepthBuffer) SetMask(write bool) {
	if !b.locked && b.mask.set(write) {
		b.s.d.DepthMask(write)
	}
}

func (b *DepthBuffer) SetFunc(f materials.DepthFunc) {
	fn, ok := depthFuncs[f]
	if !ok {
		fn = gpu.Lequal
	}
	if b.fn.set(fn) {
		b.s.d.DepthFunc(fn)
	}
}

func (b *DepthBuffer) SetLocked(lock bool) { b.locked = lock }

func (b *DepthBuffer) SetClear(d float64) {
	if b.clear.set(d) {
		b.s.d.ClearDepth(d)
	}
}

func (b *DepthBuffer) reset() {
	b.locked = false
	b.mask.reset()
	b.fn.reset()
	b.clear.reset()
}

// StencilBuffer caches the stencil test and its parameters.
type StencilBuffer struct {
	s      *State
	locked bool
	mask   cached[uint32]
	fn     cached[stencilFunc]
	op     cached[stencilOp]
	clear  cached[int32]
}

func (b *StencilBuffer) SetTest(on bool) {
	if b.locked {
		return
	}
	if on {
		b.s.Enable(gpu.StencilTest)
	} else {
		b.s.Disable(gpu.StencilTest)
	}
}

func (b *StencilBuffer) SetMask(mask uint32) {
	if !b.locked && b.mask.set(mask) {
		b.s.d.StencilMask(mask)
	}
}

func (b *StencilBuffer) SetFunc(fn gpu.CompareFunc, ref int32, mask uint32) {
	if b.fn.set(stencilFunc{fn, ref, mask}) {
		b.s.d.StencilFunc(fn, ref, mask)
	}
}

func (b *StencilBuffer) SetOp(fail, zfail, zpass gpu.StencilOp) {
	if b.op.set(stencilOp{fail, zfail, zpass}) {
		b.s.d.StencilOp(fail, zfail, zpass)
	}
}

func (b *StencilBuffer) SetLocked(lock bool) { b.locked = lock }

func (b *StencilBuffer) SetClear(s int32) {
	if b.clear.set(s) {
		b.s.d.ClearStencil(s)
	}
}

func (b *StencilBuffer) reset() {
	b.locked = false
	b.mask.reset()
	b.fn.reset()
	b.op.reset()
	b.clear.reset()
}

// ── State ──

// State is the pipeline state cache. Every setter compares against the last
// value it issued and skips the driver call when nothing changed.
type State struct {
	d gpu.Driver

	Color   ColorBuffer
	Depth   DepthBuffer
	Stencil StencilBuffer

	caps map[gpu.Capability]bool

	blendEq   cached[blendEquation]
	blendFunc cached[blendFunc]

	flipSided     cached[bool]
	cullFace      cached[gpu.Face]
	lineWidth     cached[float32]
	polygonOffset cached[polygonOffset]
	scissor       cached[core.Rect]
	viewport      cached[core.Rect]
	program       cached[gpu.Handle]

	maxTextures   int
	activeTexture cached[int]
	bound         map[int]boundTexture

	newAttributes     []bool
	enabledAttributes []bool
	divisors          []uint32
	divisorKnown      []bool
}

// NewState returns a cache in the unknown state for driver d.
func NewState(d gpu.Driver, maxTextures, maxAttributes int) *State {
	s := &State{
		d:                 d,
		caps:              make(map[gpu.Capability]bool),
		maxTextures:       maxTextures,
		bound:             make(map[int]boundTexture),
		newAttributes:     make([]bool, maxAttributes),
		enabledAttributes: make([]bool, maxAttributes),
		divisors:          make([]uint32, maxAttributes),
		divisorKnown:      make([]bool, maxAttributes),
	}
	s.Color.s, s.Depth.s, s.Stencil.s = s, s, s
	return s
}

func (s *State) Enable(c gpu.Capability) {
	if on, ok := s.caps[c]; ok && on {
		return
	}
	s.caps[c] = true
	s.d.Enable(c)
}

func (s *State) Disable(c gpu.Capability) {
	if on, ok := s.caps[c]; ok && !on {
		return
	}
	s.caps[c] = false
	s.d.Disable(c)
}

// SetBlending applies a blend mode. Equations and factors are only used by
// materials.CustomBlending; a nil alpha part follows its color counterpart.
func (s *State) SetBlending(mode materials.Blending, eq materials.BlendEquation, src, dst materials.BlendFactor,
	eqAlpha *materials.BlendEquation, srcAlpha, dstAlpha *materials.BlendFactor, premultiplied bool) {
	if mode == materials.NoBlending {
		s.Disable(gpu.Blend)
		return
	}
	s.Enable(gpu.Blend)

	e := blendEquation{gpu.FuncAdd, gpu.FuncAdd}
	var f blendFunc
	switch mode {
	case materials.NormalBlending:
		if premultiplied {
			f = blendFunc{gpu.One, gpu.OneMinusSrcAlpha, gpu.One, gpu.OneMinusSrcAlpha}
		} else {
			f = blendFunc{gpu.SrcAlpha, gpu.OneMinusSrcAlpha, gpu.One, gpu.OneMinusSrcAlpha}
		}
	case materials.AdditiveBlending:
		if premultiplied {
			f = blendFunc{gpu.One, gpu.One, gpu.One, gpu.One}
		} else {
			f = blendFunc{gpu.SrcAlpha, gpu.One, gpu.SrcAlpha, gpu.One}
		}
	case materials.SubtractiveBlending:
		if premultiplied {
			f = blendFunc{gpu.Zero, gpu.Zero, gpu.OneMinusSrcColor, gpu.OneMinusSrcAlpha}
		} else {
			f = blendFunc{gpu.Zero, gpu.OneMinusSrcColor, gpu.Zero, gpu.OneMinusSrcColor}
		}
	case materials.MultiplyBlending:
		if premultiplied {
			f = blendFunc{gpu.Zero, gpu.SrcColor, gpu.Zero, gpu.SrcAlpha}
		} else {
			f = blendFunc{gpu.Zero, gpu.SrcColor, gpu.Zero, gpu.SrcColor}
		}
	default:
		ea, sa, da := eq, src, dst
		if eqAlpha != nil {
			ea = *eqAlpha
		}
		if srcAlpha != nil {
			sa = *srcAlpha
		}
		if dstAlpha != nil {
			da = *dstAlpha
		}
		e = blendEquation{blendEquations[eq], blendEquations[ea]}
		f = blendFunc{blendFactors[src], blendFactors[dst], blendFactors[sa], blendFactors[da]}
	}

	if s.blendEq.set(e) {
		s.d.BlendEquationSeparate(e.rgb, e.alpha)
	}
	if s.blendFunc.set(f) {
		s.d.BlendFuncSeparate(f.srcRGB, f.dstRGB, f.srcAlpha, f.dstAlpha)
	}
}

// SetMaterial applies the per-material pipeline state. frontFaceCW flips the
// winding for objects with a mirrored world transform.
func (s *State) SetMaterial(m *materials.Material, frontFaceCW bool) {
	if m.Side == materials.DoubleSide {
		s.Disable(gpu.CullFace)
	} else {
		s.Enable(gpu.CullFace)
	}

	flip := m.Side == materials.BackSide
	if frontFaceCW {
		flip = !flip
	}
	s.SetFlipSided(flip)

	if m.Blending == materials.NormalBlending && !m.Transparent {
		s.SetBlending(materials.NoBlending, 0, 0, 0, nil, nil, nil, false)
	} else {
		s.SetBlending(m.Blending, m.BlendEquation, m.BlendSrc, m.BlendDst,
			m.BlendEquationAlpha, m.BlendSrcAlpha, m.BlendDstAlpha, m.PremultipliedAlpha)
	}

	s.Depth.SetFunc(m.DepthFunc)
	s.Depth.SetTest(m.DepthTest)
	s.Depth.SetMask(m.DepthWrite)
	s.Color.SetMask(m.ColorWrite)

	s.SetPolygonOffset(m.PolygonOffset, m.PolygonOffsetFactor, m.PolygonOffsetUnits)
}

func (s *State) SetFlipSided(flip bool) {
	if !s.flipSided.set(flip) {
		return
	}
	if flip {
		s.d.FrontFace(gpu.CW)
	} else {
		s.d.FrontFace(gpu.CCW)
	}
}

// SetCullFace culls face; a zero face disables culling.
func (s *State) SetCullFace(face gpu.Face) {
	if face == 0 {
		s.Disable(gpu.CullFace)
		return
	}
	s.Enable(gpu.CullFace)
	if s.cullFace.set(face) {
		s.d.CullFace(face)
	}
}

func (s *State) SetLineWidth(w float32) {
	if s.lineWidth.set(w) {
		s.d.LineWidth(w)
	}
}

func (s *State) SetPolygonOffset(on bool, factor, units float32) {
	if !on {
		s.Disable(gpu.PolygonOffsetFill)
		return
	}
	s.Enable(gpu.PolygonOffsetFill)
	if s.polygonOffset.set(polygonOffset{factor, units}) {
		s.d.PolygonOffset(factor, units)
	}
}

func (s *State) SetScissorTest(on bool) {
	if on {
		s.Enable(gpu.ScissorTest)
	} else {
		s.Disable(gpu.ScissorTest)
	}
}

func (s *State) Scissor(r core.Rect) {
	if s.scissor.set(r) {
		s.d.Scissor(int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height))
	}
}

func (s *State) Viewport(r core.Rect) {
	if s.viewport.set(r) {
		s.d.Viewport(int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height))
	}
}

// UseProgram binds p and reports whether the binding changed.
func (s *State) UseProgram(p gpu.Handle) bool {
	if !s.program.set(p) {
		return false
	}
	s.d.UseProgram(p)
	return true
}

// ── Textures ──

func (s *State) ActiveTexture(unit int) {
	if s.activeTexture.set(unit) {
		s.d.ActiveTexture(unit)
	}
}

// BindTexture binds tex to target on the active unit, selecting the last
// unit first when none has been chosen yet.
func (s *State) BindTexture(target gpu.TextureTarget, tex gpu.Handle) {
	if !s.activeTexture.ok {
		s.ActiveTexture(s.maxTextures - 1)
	}
	unit := s.activeTexture.v
	b := boundTexture{target, tex}
	if cur, ok := s.bound[unit]; ok && cur == b {
		return
	}
	s.bound[unit] = b
	s.d.BindTexture(target, tex)
}

// ── Vertex attributes ──

// InitAttributes starts collecting the attributes used by the next draw.
func (s *State) InitAttributes() {
	for i := range s.newAttributes {
		s.newAttributes[i] = false
	}
}

func (s *State) EnableAttribute(index uint32) { s.EnableAttributeAndDivisor(index, 0) }

func (s *State) EnableAttributeAndDivisor(index, divisor uint32) {
	if int(index) >= len(s.newAttributes) {
		return
	}
	s.newAttributes[index] = true
	if !s.enabledAttributes[index] {
		s.d.EnableVertexAttribArray(index)
		s.enabledAttributes[index] = true
	}
	if !s.divisorKnown[index] || s.divisors[index] != divisor {
		s.d.VertexAttribDivisor(index, divisor)
		s.divisors[index], s.divisorKnown[index] = divisor, true
	}
}

// DisableUnusedAttributes disables every attribute enabled earlier but not
// since the last InitAttributes.
func (s *State) DisableUnusedAttributes() {
	for i := range s.enabledAttributes {
		if s.enabledAttributes[i] && !s.newAttributes[i] {
			s.d.DisableVertexAttribArray(uint32(i))
			s.enabledAttributes[i] = false
		}
	}
}

// Reset forgets every cached value so the next call of each setter reaches
// the driver.
func (s *State) Reset() {
	s.Color.reset()
	s.Depth.reset()
	s.Stencil.reset()
	clear(s.caps)
	s.blendEq.reset()
	s.blendFunc.reset()
	s.flipSided.reset()
	s.cullFace.reset()
	s.lineWidth.reset()
	s.polygonOffset.reset()
	s.scissor.reset()
	s.viewport.reset()
	s.program.reset()
	s.activeTexture.reset()
	clear(s.bound)
	for i := range s.enabledAttributes {
		s.newAttributes[i] = false
		s.enabledAttributes[i] = false
		s.divisorKnown[i] = false
	}
}
