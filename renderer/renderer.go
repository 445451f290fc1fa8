// Package renderer draws a scene graph through a gpu.Driver: it culls and
// sorts the graph into a render list, compiles and caches shader programs
// per material variant, uploads uniforms and buffers only when they change,
// and filters every pipeline state change through a cache.
package renderer

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"glscene/core"
	"glscene/gpu"
	"glscene/internal/logger"
	"glscene/materials"
	"glscene/scene"
	"glscene/textures"
)

var (
	// ErrUnsupportedCamera is logged when Render is given a camera that is
	// neither perspective nor orthographic.
	ErrUnsupportedCamera = errors.New("renderer: unsupported camera")
	// ErrOutOfBounds is returned for pixel reads outside a render target.
	ErrOutOfBounds = errors.New("renderer: read outside render target")
	// ErrIncompleteTarget is returned for reads from an incomplete framebuffer.
	ErrIncompleteTarget = errors.New("renderer: render target incomplete")
)

type geometryKey struct {
	geometry  *scene.Geometry
	program   *Program
	wireframe bool
}

// Renderer draws scenes. It is not safe for concurrent use; every call must
// come from the goroutine that owns the graphics context.
type Renderer struct {
	// ClippingPlanes are world-space planes clipping every material.
	ClippingPlanes []core.Plane
	// LocalClippingEnabled honors Material.ClippingPlanes.
	LocalClippingEnabled bool

	cfg Config
	log *zap.Logger
	d   gpu.Driver

	caps       Capabilities
	state      *State
	info       Info
	scratch    *ScratchPool
	programs   *Programs
	textures   *textureCache
	geometries *geometryCache
	materials  arena[materialProperties]
	lights     *LightState
	shadowMap  *ShadowMap
	clipping   Clipping
	list       RenderList
	projector  *Projector

	sprites *SpritePlugin
	flares  *LensFlarePlugin
	sky     *skyPass
	plugins []Plugin

	width, height int
	pixelRatio    float32
	viewport      core.Rect
	scissor       core.Rect
	scissorTest   bool
	clearColor    core.Color
	clearAlpha    float32

	currentTarget      *RenderTarget
	currentFramebuffer cached[gpu.Handle]
	currentViewport    core.Rect
	currentScissor     core.Rect
	currentScissorTest bool
	currentCamera      *scene.Camera
	currentMaterialID  uint32
	currentGeometry    geometryKey

	clippingEnabled bool
	shadows         []*scene.Node
	frame           int
	rendering       bool
	contextLost     bool

	modelView  mgl32.Mat4
	normal     mgl32.Mat3
	morphOrder []int
	morphIn    []float32
	morphPos   [8]*scene.Attribute
	morphNorm  [4]*scene.Attribute
}

// New creates a renderer on d. The driver's context must be current.
func New(d gpu.Driver, cfg Config) (*Renderer, error) {
	if d == nil {
		return nil, errors.New("renderer: nil driver")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Log
	}

	r := &Renderer{
		cfg:        cfg,
		log:        log,
		d:          d,
		scratch:    NewScratchPool(),
		pixelRatio: cfg.PixelRatio,
		clearColor: cfg.ClearColor,
		clearAlpha: cfg.ClearAlpha,
		info:       Info{AutoReset: true},
	}
	r.caps = newCapabilities(d, cfg, log)
	r.state = NewState(d, r.caps.MaxTextures, r.caps.MaxAttributes)
	r.programs = newPrograms(d, &r.caps, &r.cfg, log)
	r.textures = newTextureCache(d, r.state, &r.caps, &r.info, log)
	r.geometries = newGeometryCache(d, &r.info)
	r.shadowMap = newShadowMap(r, cfg.Shadows)
	r.lights = NewLightState(r.shadowMap)
	r.projector = NewProjector(&r.list, log)
	r.list.ProgramID = r.programID
	r.sprites = newSpritePlugin()
	r.flares = newLensFlarePlugin()
	r.sky = newSkyPass()
	r.programs.OutputEncoding = r.screenEncoding()

	r.resetGLState()
	log.Info("renderer initialized",
		zap.String("precision", r.caps.Precision),
		zap.Int("max_textures", r.caps.MaxTextures),
		zap.Int("max_attributes", r.caps.MaxAttributes),
		zap.Int("max_vertex_uniforms", r.caps.MaxVertexUniforms),
		zap.Bool("vertex_textures", r.caps.VertexTextures))
	return r, nil
}

func (r *Renderer) screenEncoding() textures.Encoding {
	if r.cfg.GammaOutput {
		return textures.GammaEncoding
	}
	return textures.LinearEncoding
}

func (r *Renderer) resetGLState() {
	st := r.state
	st.Color.SetClear(r.clearColor, r.clearAlpha, r.cfg.PremultipliedAlpha)
	st.Depth.SetClear(1)
	st.Stencil.SetClear(0)
	st.Depth.SetTest(true)
	st.Depth.SetFunc(materials.LessEqualDepth)
	st.SetFlipSided(false)
	st.SetCullFace(gpu.Back)
	st.SetBlending(materials.NoBlending, 0, 0, 0, nil, nil, nil, false)
	r.currentFramebuffer.reset()
	r.currentTarget = nil
}

func (r *Renderer) programID(m *materials.Material) int {
	if p := r.materials.get(m.Handle); p != nil && p.program != nil {
		return p.program.ID
	}
	return 0
}

// ── Binder ──

func (r *Renderer) TextureUnit(unit int) int { return r.textures.textureUnit(unit) }

func (r *Renderer) SetTexture2D(t *textures.Texture, unit int) { r.textures.setTexture2D(t, unit) }

func (r *Renderer) SetTextureCube(t *textures.Texture, unit int) { r.textures.setTextureCube(t, unit) }

func (r *Renderer) Scratch() *ScratchPool { return r.scratch }

// ── Accessors ──

// Info returns a copy of the running statistics.
func (r *Renderer) Info() Info { return r.info }

// ResetInfo clears the per-frame counters. Callers that turn AutoReset off
// call it once per frame themselves.
func (r *Renderer) ResetInfo() { r.info.Reset() }

func (r *Renderer) SetInfoAutoReset(on bool) { r.info.AutoReset = on }

// Programs lists the live programs in creation order.
func (r *Renderer) Programs() []*Program { return r.programs.List() }

func (r *Renderer) Capabilities() Capabilities { return r.caps }

func (r *Renderer) State() *State { return r.state }

// ShadowMap exposes the shadow pass settings.
func (r *Renderer) ShadowMap() *ShadowMap { return r.shadowMap }

// Lights is the light uniform set of the last frame.
func (r *Renderer) Lights() *LightState { return r.lights }

// AddPlugin registers p to run after the built-in passes of every frame.
func (r *Renderer) AddPlugin(p Plugin) { r.plugins = append(r.plugins, p) }

// ── Size, viewport and clearing ──

// SetSize sets the drawing buffer size in logical pixels and resets the
// viewport to cover it.
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = width, height
	r.SetViewport(0, 0, width, height)
	r.SetScissor(0, 0, width, height)
}

func (r *Renderer) Size() (int, int) { return r.width, r.height }

func (r *Renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		r.log.Warn("pixel ratio must be positive", zap.Float32("ratio", ratio))
		return
	}
	r.pixelRatio = ratio
	r.SetSize(r.width, r.height)
}

func (r *Renderer) SetViewport(x, y, width, height int) {
	r.viewport = core.Rect{X: x, Y: y, Width: width, Height: height}
	if r.currentTarget == nil {
		r.currentViewport = r.viewport.Scaled(r.pixelRatio)
		r.state.Viewport(r.currentViewport)
	}
}

func (r *Renderer) SetScissor(x, y, width, height int) {
	r.scissor = core.Rect{X: x, Y: y, Width: width, Height: height}
	if r.currentTarget == nil {
		r.currentScissor = r.scissor.Scaled(r.pixelRatio)
		r.state.Scissor(r.currentScissor)
	}
}

func (r *Renderer) SetScissorTest(on bool) {
	r.scissorTest = on
	if r.currentTarget == nil {
		r.currentScissorTest = on
		r.state.SetScissorTest(on)
	}
}

func (r *Renderer) SetClearColor(c core.Color, alpha float32) {
	r.clearColor, r.clearAlpha = c, alpha
	r.state.Color.SetClear(c, alpha, r.cfg.PremultipliedAlpha)
}

func (r *Renderer) ClearColor() (core.Color, float32) { return r.clearColor, r.clearAlpha }

// Clear clears the selected buffers of the current target.
func (r *Renderer) Clear(color, depth, stencil bool) {
	var mask gpu.ClearMask
	if color {
		mask |= gpu.ColorBufferBit
	}
	if depth {
		mask |= gpu.DepthBufferBit
	}
	if stencil {
		mask |= gpu.StencilBufferBit
	}
	if mask != 0 {
		r.d.Clear(mask)
	}
}

func (r *Renderer) bindFramebuffer(fb gpu.Handle) {
	if r.currentFramebuffer.set(fb) {
		r.d.BindFramebuffer(fb)
	}
}

// setRenderTarget binds target, or the default framebuffer for nil, and
// applies its viewport and scissor.
func (r *Renderer) setRenderTarget(target *RenderTarget) {
	r.currentTarget = target
	if target != nil {
		fb := r.textures.setupRenderTarget(target)
		r.currentFramebuffer.reset()
		r.bindFramebuffer(fb)
		r.currentViewport = target.Viewport
		r.currentScissor = target.Scissor
		r.currentScissorTest = target.ScissorTest
		r.programs.OutputEncoding = target.Texture.Encoding
	} else {
		r.bindFramebuffer(0)
		r.currentViewport = r.viewport.Scaled(r.pixelRatio)
		r.currentScissor = r.scissor.Scaled(r.pixelRatio)
		r.currentScissorTest = r.scissorTest
		r.programs.OutputEncoding = r.screenEncoding()
	}
	r.state.Viewport(r.currentViewport)
	r.state.Scissor(r.currentScissor)
	r.state.SetScissorTest(r.currentScissorTest)
}

// ReadRenderTargetPixels copies an RGBA8 rectangle of rt into dst.
func (r *Renderer) ReadRenderTargetPixels(rt *RenderTarget, x, y, width, height int, dst []byte) error {
	if rt == nil {
		return errors.New("renderer: nil render target")
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > rt.Width || y+height > rt.Height {
		r.log.Warn("pixel read outside render target",
			zap.Int("x", x), zap.Int("y", y), zap.Int("width", width), zap.Int("height", height),
			zap.Int("target_width", rt.Width), zap.Int("target_height", rt.Height))
		return fmt.Errorf("%w: (%d,%d %dx%d) in %dx%d", ErrOutOfBounds, x, y, width, height, rt.Width, rt.Height)
	}
	if need := width * height * 4; len(dst) < need {
		return fmt.Errorf("renderer: destination holds %d bytes, need %d", len(dst), need)
	}

	fb := r.textures.setupRenderTarget(rt)
	r.currentFramebuffer.reset()
	r.bindFramebuffer(fb)
	defer r.restoreFramebuffer()

	if p := r.textures.targets.get(rt.handle); p == nil || !p.complete {
		r.log.Warn("pixel read from incomplete render target")
		return ErrIncompleteTarget
	}
	r.d.ReadPixels(x, y, width, height, gpu.RGBA, gpu.UnsignedByte, dst)
	return nil
}

func (r *Renderer) restoreFramebuffer() {
	if r.currentTarget == nil {
		r.bindFramebuffer(0)
		return
	}
	if p := r.textures.targets.get(r.currentTarget.handle); p != nil {
		r.bindFramebuffer(p.fb)
	}
}

// ── Explicit release ──

func (r *Renderer) ReleaseTexture(t *textures.Texture) { r.textures.release(t) }

func (r *Renderer) ReleaseGeometry(g *scene.Geometry) {
	r.geometries.release(g)
	if r.currentGeometry.geometry == g {
		r.currentGeometry = geometryKey{}
	}
}

func (r *Renderer) ReleaseMaterial(m *materials.Material) {
	if m != nil {
		r.releaseMaterial(m)
	}
}

func (r *Renderer) ReleaseRenderTarget(rt *RenderTarget) {
	if rt == nil {
		return
	}
	if r.currentTarget == rt {
		r.setRenderTarget(nil)
	}
	r.textures.releaseRenderTarget(rt)
}

// ── Context loss ──

// ContextLost drops every driver handle. Rendering is suspended until
// ContextRestored.
func (r *Renderer) ContextLost() {
	r.contextLost = true
	r.programs.Invalidate()
	r.textures.invalidate()
	r.geometries.invalidate()
	r.materials.each(func(_ int, p *materialProperties) { p.tree, p.seq = nil, nil })
	r.state.Reset()
	r.currentFramebuffer.reset()
	r.currentGeometry = geometryKey{}
	r.currentMaterialID = 0
	r.currentCamera = nil
	r.log.Warn("graphics context lost")
}

// ContextRestored resumes rendering; resources are rebuilt on next use.
func (r *Renderer) ContextRestored() {
	if !r.contextLost {
		return
	}
	r.contextLost = false
	r.resetGLState()
	r.SetViewport(r.viewport.X, r.viewport.Y, r.viewport.Width, r.viewport.Height)
	r.log.Info("graphics context restored")
}

// Dispose deletes every driver resource the renderer owns.
func (r *Renderer) Dispose() {
	r.shadowMap.dispose()
	r.flares.release(r)
	r.sky.release(r)
	r.programs.dispose()
	r.textures.dispose()
	r.geometries.dispose()
	r.materials.each(func(_ int, p *materialProperties) { p.program = nil })
	r.materials = arena[materialProperties]{}
	r.info.Programs = 0
	r.log.Info("renderer disposed")
}

// ── Frame ──

// Render draws sc from camera into target, or the default framebuffer when
// target is nil. forceClear clears even with AutoClear off. Render must not
// be called from inside a draw hook; such calls are logged and ignored.
func (r *Renderer) Render(sc *scene.Scene, camera *scene.Camera, target *RenderTarget, forceClear bool) {
	if r.rendering {
		r.log.Warn("render called while rendering, ignored")
		return
	}
	if r.contextLost {
		r.log.Debug("render skipped, context lost")
		return
	}
	if camera == nil || (camera.Kind != scene.Perspective && camera.Kind != scene.Orthographic) {
		kind := "nil"
		if camera != nil {
			kind = camera.Kind.String()
		}
		r.log.Warn("render skipped", zap.Error(ErrUnsupportedCamera), zap.String("camera", kind))
		return
	}
	if sc == nil || sc.Root == nil {
		r.log.Warn("render skipped, empty scene")
		return
	}

	r.rendering = true
	defer func() { r.rendering = false }()

	r.frame++
	if r.info.AutoReset {
		r.info.Reset()
	}
	r.currentGeometry = geometryKey{}
	r.currentMaterialID = 0
	r.currentCamera = nil
	r.textures.warnedUnits = false
	r.cfg.Shadows.Enabled = r.shadowMap.Enabled
	r.cfg.Shadows.Type = r.shadowMap.Type

	if sc.AutoUpdate {
		sc.UpdateWorldMatrices()
	}
	camera.UpdateMatrices()

	r.clippingEnabled = r.clipping.Init(r.ClippingPlanes, r.LocalClippingEnabled)

	r.projector.Begin(camera, sc.OverrideMaterial)
	r.projector.Project(sc.Root, camera)
	r.list.Finish()
	if r.cfg.SortObjects {
		r.list.Sort()
	}

	r.shadows = nil
	if r.shadowMap.Enabled {
		r.shadows = r.lights.SetupShadows(r.projector.Shadows)
	}
	if r.clippingEnabled {
		r.clipping.BeginShadows()
	}
	r.shadowMap.Render(r.shadows, sc, camera)
	if r.clippingEnabled {
		r.clipping.EndShadows()
	}
	r.lights.Setup(r.projector.Lights, r.shadows, camera)

	r.setRenderTarget(target)
	if sc.Background != nil {
		r.state.Color.SetClear(*sc.Background, 1, r.cfg.PremultipliedAlpha)
	} else {
		r.state.Color.SetClear(r.clearColor, r.clearAlpha, r.cfg.PremultipliedAlpha)
	}
	if r.cfg.AutoClear || forceClear {
		r.state.Color.SetMask(true)
		r.state.Depth.SetMask(true)
		r.Clear(r.cfg.AutoClearColor || forceClear, r.cfg.AutoClearDepth || forceClear, r.cfg.AutoClearStencil || forceClear)
	}

	r.sky.render(r, sc.Sky, camera)
	r.renderItems(r.list.Opaque, camera, sc.Fog)
	r.renderItems(r.list.Transparent, camera, sc.Fog)

	r.sprites.Render(r, sc, camera, target)
	r.flares.Render(r, sc, camera, target)
	for _, p := range r.plugins {
		p.Render(r, sc, camera, target)
	}

	if target != nil {
		r.textures.updateMipmap(target)
	}
	r.state.Depth.SetTest(true)
	r.state.Depth.SetMask(true)
	r.state.Color.SetMask(true)
	r.info.Programs = r.programs.Len()

	r.log.Debug("frame rendered",
		zap.Int("frame", r.frame),
		zap.Int("opaque", len(r.list.Opaque)),
		zap.Int("transparent", len(r.list.Transparent)),
		zap.Int("calls", r.info.Render.Calls))
}

func (r *Renderer) renderItems(items []*RenderItem, camera *scene.Camera, fog *scene.Fog) {
	for _, it := range items {
		r.renderObject(it.Object, camera, fog, it.Geometry, it.Material, it.Group)
	}
}

// renderObject runs the object's draw hook and draws it.
func (r *Renderer) renderObject(object *scene.Node, camera *scene.Camera, fog *scene.Fog, g *scene.Geometry, m *materials.Material, group *scene.Group) {
	if object.OnBeforeRender != nil {
		object.OnBeforeRender(object, camera, g, m, group)
	}
	r.drawObject(object, camera, fog, g, m, group)
}

// drawObject computes the object matrices for camera and issues the draw.
func (r *Renderer) drawObject(object *scene.Node, camera *scene.Camera, fog *scene.Fog, g *scene.Geometry, m *materials.Material, group *scene.Group) {
	world := object.WorldMatrix()
	r.modelView = camera.GetViewMatrix().Mul4(world)
	r.normal = r.modelView.Mat3().Inv().Transpose()
	r.renderBufferDirect(camera, fog, g, m, object, group)
}

func (r *Renderer) renderBufferDirect(camera *scene.Camera, fog *scene.Fog, g *scene.Geometry, m *materials.Material, object *scene.Node, group *scene.Group) {
	if g == nil || m == nil {
		return
	}
	if r.clippingEnabled {
		r.clipping.SetState(m, camera.GetViewMatrix())
	}

	frontFaceCW := object.WorldMatrix().Det() < 0
	r.state.SetMaterial(m, frontFaceCW)

	program := r.setProgram(camera, fog, m, object)
	if program == nil {
		return
	}

	r.geometries.update(g, r.frame)

	key := geometryKey{geometry: g, program: program, wireframe: m.Wireframe}
	updateBuffers := key != r.currentGeometry
	if m.MorphTargets && len(object.MorphTargetInfluences) > 0 {
		updateBuffers = true
	}
	r.currentGeometry = key

	var indexCount int
	indexed := g.Index != nil
	rangeFactor := 1
	if m.Wireframe {
		_, indexCount = r.geometries.wireframeIndex(g)
		indexed = true
		rangeFactor = 2
		updateBuffers = true
	} else if indexed {
		indexCount = len(g.Index.Data)
	}

	if updateBuffers {
		r.setupVertexAttributes(program, g)
		if indexed && !m.Wireframe {
			if p := r.geometries.geometries.get(g.Handle); p != nil && p.index != nil {
				r.d.BindBuffer(gpu.ElementArrayBuffer, p.index.buf)
			}
		}
	}

	dataCount := indexCount
	if !indexed {
		pos := g.Attributes["position"]
		if pos == nil {
			r.log.Warn("geometry without position attribute", zap.String("geometry", g.Name))
			return
		}
		dataCount = pos.Count()
	}

	rangeStart := g.DrawRange.Start * rangeFactor
	rangeCount := dataCount
	if g.DrawRange.Count >= 0 {
		rangeCount = g.DrawRange.Count * rangeFactor
	}
	groupStart, groupCount := 0, dataCount
	if group != nil {
		groupStart = group.Start * rangeFactor
		groupCount = group.Count * rangeFactor
	}
	drawStart := max(rangeStart, groupStart)
	drawEnd := min(dataCount, rangeStart+rangeCount, groupStart+groupCount) - 1
	drawCount := max(0, drawEnd-drawStart+1)
	if drawCount == 0 {
		return
	}

	mode := r.drawMode(object, m)
	instances := g.MaxInstancedCount
	switch {
	case indexed && instances > 0:
		r.d.DrawElementsInstanced(mode, drawCount, gpu.UnsignedInt, drawStart*4, instances)
	case indexed:
		r.d.DrawElements(mode, drawCount, gpu.UnsignedInt, drawStart*4)
	case instances > 0:
		r.d.DrawArraysInstanced(mode, drawStart, drawCount, instances)
	default:
		r.d.DrawArrays(mode, drawStart, drawCount)
	}
	r.info.update(drawCount, mode, instances)
}

func (r *Renderer) drawMode(object *scene.Node, m *materials.Material) gpu.DrawMode {
	switch object.Kind {
	case scene.KindLine:
		r.state.SetLineWidth(m.Line.Width * r.pixelRatio)
		return gpu.LineStrip
	case scene.KindLineSegments:
		r.state.SetLineWidth(m.Line.Width * r.pixelRatio)
		return gpu.Lines
	case scene.KindLineLoop:
		r.state.SetLineWidth(m.Line.Width * r.pixelRatio)
		return gpu.LineLoop
	case scene.KindPoints:
		return gpu.Points
	}
	if m.Wireframe {
		r.state.SetLineWidth(m.WireframeLinewidth * r.pixelRatio)
		return gpu.Lines
	}
	switch object.DrawMode {
	case scene.DrawTriangleStrip:
		return gpu.TriangleStrip
	case scene.DrawTriangleFan:
		return gpu.TriangleFan
	}
	return gpu.Triangles
}

// morphSlot parses "morphTarget3" style attribute names.
func morphSlot(name, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	return i, err == nil
}

func (r *Renderer) attributeFor(name string, g *scene.Geometry) *scene.Attribute {
	if a := g.Attributes[name]; a != nil {
		return a
	}
	if i, ok := morphSlot(name, "morphTarget"); ok && i < len(r.morphPos) {
		return r.morphPos[i]
	}
	if i, ok := morphSlot(name, "morphNormal"); ok && i < len(r.morphNorm) {
		return r.morphNorm[i]
	}
	return nil
}

func (r *Renderer) setupVertexAttributes(program *Program, g *scene.Geometry) {
	attrs := program.Attributes()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	r.state.InitAttributes()
	for _, name := range names {
		loc := attrs[name]
		if loc < 0 {
			continue
		}
		a := r.attributeFor(name, g)
		if a == nil {
			continue
		}
		buf := r.geometries.buffer(g, a)
		if buf == 0 {
			continue
		}
		r.state.EnableAttributeAndDivisor(uint32(loc), a.Divisor)
		r.d.BindBuffer(gpu.ArrayBuffer, buf)
		r.d.VertexAttribPointer(uint32(loc), a.ItemSize, gpu.Float, a.Normalized, 0, 0)
	}
	r.state.DisableUnusedAttributes()
}

// updateMorphTargets picks the strongest influences of object and records
// the attributes bound to the morph slots.
func (r *Renderer) updateMorphTargets(object *scene.Node, m *materials.Material) []float32 {
	g := object.Geometry
	influences := object.MorphTargetInfluences
	targets := g.MorphAttributes["position"]
	normals := g.MorphAttributes["normal"]

	slots := min(r.cfg.MaxMorphTargets, len(r.morphPos))
	if m.MorphNormals && len(normals) > 0 {
		slots = min(r.cfg.MaxMorphNormals, len(r.morphNorm))
	}

	r.morphOrder = r.morphOrder[:0]
	for i := range influences {
		if i < len(targets) {
			r.morphOrder = append(r.morphOrder, i)
		}
	}
	slices.SortStableFunc(r.morphOrder, func(a, b int) int {
		return cmp.Compare(math32.Abs(influences[b]), math32.Abs(influences[a]))
	})

	r.morphIn = r.morphIn[:0]
	r.morphPos = [8]*scene.Attribute{}
	r.morphNorm = [4]*scene.Attribute{}
	for slot := range slots {
		if slot >= len(r.morphOrder) || influences[r.morphOrder[slot]] == 0 {
			r.morphIn = append(r.morphIn, 0)
			continue
		}
		idx := r.morphOrder[slot]
		r.morphIn = append(r.morphIn, influences[idx])
		r.morphPos[slot] = targets[idx]
		if slot < len(r.morphNorm) && idx < len(normals) && m.MorphNormals {
			r.morphNorm[slot] = normals[idx]
		}
	}
	return r.morphIn
}

// setProgram makes the program of m current and uploads what changed since
// the last draw. It returns nil when m cannot be drawn.
func (r *Renderer) setProgram(camera *scene.Camera, fog *scene.Fog, m *materials.Material, object *scene.Node) *Program {
	p := r.materialProperties(m)
	if r.needsProgram(p, m, fog) {
		r.initMaterial(m, fog, object)
	}
	program := p.program
	if program == nil || !program.Runnable() {
		return nil
	}

	uniforms := program.Uniforms()
	refreshProgram := r.state.UseProgram(program.Handle)
	refreshValues := refreshProgram
	if m.ID != r.currentMaterialID {
		r.currentMaterialID = m.ID
		refreshValues = true
	}

	if refreshProgram || camera != r.currentCamera {
		r.currentCamera = camera
		uniforms.SetValue("projectionMatrix", camera.GetProjectionMatrix(), r)
		if r.caps.LogarithmicDepthBuffer {
			uniforms.SetValue("logDepthBufFC", 2/math32.Log2(camera.FarPlane+1), r)
		}
		uniforms.SetValue("viewMatrix", camera.GetViewMatrix(), r)
		uniforms.SetValue("cameraPosition", camera.WorldMatrix().Col(3).Vec3(), r)
	}

	if m.Skinning && object.Skeleton != nil {
		sk := object.Skeleton
		sk.Update()
		uniforms.SetValue("bindMatrix", sk.BindMatrix, r)
		uniforms.SetValue("bindMatrixInverse", sk.BindMatrixInverse, r)
		uniforms.SetValue("boneMatrices", sk.BoneMatrices, r)
	}

	if m.MorphTargets && object.Geometry != nil && len(object.MorphTargetInfluences) > 0 {
		uniforms.SetValue("morphTargetInfluences", r.updateMorphTargets(object, m), r)
	}

	if refreshValues {
		u := p.uniforms
		if m.Lights {
			r.lights.Values(u)
		}
		if fog != nil && m.Fog {
			refreshFog(u, fog)
		}
		refreshMaterial(u, m, r)
		uniforms.Upload(p.uniformSeq(uniforms), u, r)
	}

	if r.clipping.NumPlanes > 0 {
		uniforms.SetValue("clippingPlanes", r.clipping.Planes, r)
	}
	if object.Kind == scene.KindSprite {
		s := object.Transform.Scale
		uniforms.SetValue("scale", mgl32.Vec2{s.X(), s.Y()}, r)
	}

	uniforms.SetValue("modelViewMatrix", r.modelView, r)
	uniforms.SetValue("normalMatrix", r.normal, r)
	uniforms.SetValue("modelMatrix", object.WorldMatrix(), r)
	return program
}
