package renderer

import (
	"go.uber.org/zap"

	"glscene/gpu"
	"glscene/textures"
)

type textureProperties struct {
	tex     gpu.Handle
	version uint64
	// width and height of the allocated level 0.
	width, height int
}

type renderTargetProperties struct {
	fb, rb        gpu.Handle
	width, height int
	complete      bool
}

var (
	wrapModes = map[textures.Wrap]int32{
		textures.ClampToEdge:    gpu.ClampToEdge,
		textures.Repeat:         gpu.Repeat,
		textures.MirroredRepeat: gpu.MirroredRepeat,
	}
	filterModes = map[textures.Filter]int32{
		textures.Linear:               gpu.Linear,
		textures.Nearest:              gpu.Nearest,
		textures.NearestMipmapNearest: gpu.NearestMipmapNearest,
		textures.NearestMipmapLinear:  gpu.NearestMipmapLinear,
		textures.LinearMipmapNearest:  gpu.LinearMipmapNearest,
		textures.LinearMipmapLinear:   gpu.LinearMipmapLinear,
	}
)

// textureCache owns the driver textures and framebuffers behind
// Texture.Handle and RenderTarget handles, and allocates texture units.
type textureCache struct {
	d     gpu.Driver
	state *State
	caps  *Capabilities
	info  *Info
	log   *zap.Logger

	textures arena[textureProperties]
	targets  arena[renderTargetProperties]

	warnedUnits bool
}

func newTextureCache(d gpu.Driver, state *State, caps *Capabilities, info *Info, log *zap.Logger) *textureCache {
	return &textureCache{d: d, state: state, caps: caps, info: info, log: log}
}

// textureUnit clamps a program's texture unit to the device. Past the limit
// the last unit is reused and a warning is logged once per frame.
func (c *textureCache) textureUnit(unit int) int {
	if unit >= c.caps.MaxTextures {
		if !c.warnedUnits {
			c.log.Warn("texture units exhausted, reusing last unit",
				zap.Int("requested", unit+1), zap.Int("max", c.caps.MaxTextures))
			c.warnedUnits = true
		}
		unit = c.caps.MaxTextures - 1
	}
	return unit
}

func (c *textureCache) properties(t *textures.Texture) *textureProperties {
	if p := c.textures.get(t.Handle); p != nil {
		return p
	}
	p := &textureProperties{}
	t.Handle = c.textures.alloc(p)
	return p
}

func (c *textureCache) create(p *textureProperties) {
	if p.tex == 0 {
		p.tex = c.d.CreateTexture()
		c.info.Memory.Textures++
	}
}

// setTexture2D binds t to unit, uploading first when its data changed. A nil
// or empty texture binds nothing.
func (c *textureCache) setTexture2D(t *textures.Texture, unit int) {
	c.state.ActiveTexture(unit)
	if t == nil {
		c.state.BindTexture(gpu.Texture2D, 0)
		return
	}
	p := c.properties(t)
	if !t.RenderTarget && t.Version > 0 && p.version != t.Version {
		c.upload2D(t, p)
		return
	}
	c.state.BindTexture(gpu.Texture2D, p.tex)
}

func (c *textureCache) setTextureCube(t *textures.Texture, unit int) {
	c.state.ActiveTexture(unit)
	if t == nil {
		c.state.BindTexture(gpu.TextureCubeMap, 0)
		return
	}
	p := c.properties(t)
	if t.Version > 0 && p.version != t.Version {
		c.uploadCube(t, p)
		return
	}
	c.state.BindTexture(gpu.TextureCubeMap, p.tex)
}

func (c *textureCache) parameters(target gpu.TextureTarget, t *textures.Texture, mipmaps bool) {
	c.d.TexParameter(target, gpu.TextureWrapS, wrapModes[t.WrapS])
	c.d.TexParameter(target, gpu.TextureWrapT, wrapModes[t.WrapT])
	c.d.TexParameter(target, gpu.TextureMagFilter, filterModes[t.MagFilter])
	minFilter := t.MinFilter
	if !mipmaps && minFilter.Mipmapped() {
		minFilter = textures.Linear
	}
	c.d.TexParameter(target, gpu.TextureMinFilter, filterModes[minFilter])
}

func uploadFormats(t *textures.Texture) (internal, format gpu.PixelFormat, typ gpu.DataType) {
	if t.Format == textures.FormatDepth {
		return gpu.DepthComponent24, gpu.DepthComponent, gpu.UnsignedInt
	}
	switch t.Type {
	case textures.HalfFloat:
		return gpu.RGBA16F, gpu.RGBA, gpu.HalfFloat
	case textures.Float:
		return gpu.RGBA16F, gpu.RGBA, gpu.Float
	}
	if t.Format == textures.FormatRGB {
		return gpu.RGB, gpu.RGBA, gpu.UnsignedByte
	}
	return gpu.RGBA, gpu.RGBA, gpu.UnsignedByte
}

// clampSize scales an image that exceeds limit down to fit, keeping the
// aspect ratio.
func (c *textureCache) clampSize(t *textures.Texture, pixels []byte, w, h, limit int) ([]byte, int, int) {
	if limit <= 0 || (w <= limit && h <= limit) || pixels == nil {
		return pixels, w, h
	}
	scale := float32(limit) / float32(max(w, h))
	nw, nh := max(int(float32(w)*scale), 1), max(int(float32(h)*scale), 1)
	c.log.Warn("texture larger than device limit, resizing",
		zap.String("texture", t.Name), zap.Int("width", w), zap.Int("height", h),
		zap.Int("newWidth", nw), zap.Int("newHeight", nh))
	return textures.Resize(pixels, w, h, nw, nh), nw, nh
}

func (c *textureCache) upload2D(t *textures.Texture, p *textureProperties) {
	c.create(p)
	c.state.BindTexture(gpu.Texture2D, p.tex)

	pixels, w, h := c.clampSize(t, t.Pixels, t.Width, t.Height, c.caps.MaxTextureSize)
	if t.FlipY && len(pixels) > 0 {
		if len(t.Pixels) > 0 && &pixels[0] == &t.Pixels[0] {
			pixels = append([]byte(nil), pixels...)
		}
		textures.FlipRows(pixels, w, h)
	}

	mipmaps := t.GenerateMipmaps && t.MinFilter.Mipmapped()
	if !t.IsPowerOfTwo() && (t.WrapS != textures.ClampToEdge || t.WrapT != textures.ClampToEdge || mipmaps) {
		c.log.Warn("texture is not power of two with repeat wrapping or mipmap filtering",
			zap.String("texture", t.Name), zap.Int("width", w), zap.Int("height", h))
	}

	c.parameters(gpu.Texture2D, t, mipmaps)
	internal, format, typ := uploadFormats(t)
	c.d.TexImage2D(gpu.Texture2D, 0, internal, w, h, format, typ, pixels)
	if mipmaps {
		c.d.GenerateMipmap(gpu.Texture2D)
	}
	p.width, p.height = w, h
	p.version = t.Version
}

func (c *textureCache) uploadCube(t *textures.Texture, p *textureProperties) {
	c.create(p)
	c.state.BindTexture(gpu.TextureCubeMap, p.tex)

	mipmaps := t.GenerateMipmaps && t.MinFilter.Mipmapped()
	c.parameters(gpu.TextureCubeMap, t, mipmaps)
	internal, format, typ := uploadFormats(t)
	for i, face := range t.Faces {
		pixels, w, h := c.clampSize(t, face, t.Width, t.Height, c.caps.MaxCubemapSize)
		c.d.TexImage2D(gpu.CubeFace(i), 0, internal, w, h, format, typ, pixels)
		p.width, p.height = w, h
	}
	if mipmaps {
		c.d.GenerateMipmap(gpu.TextureCubeMap)
	}
	p.version = t.Version
}

// setupRenderTarget allocates or resizes rt's framebuffer and returns its
// handle. The framebuffer is left bound only when storage was (re)allocated;
// callers bind it themselves.
func (c *textureCache) setupRenderTarget(rt *RenderTarget) gpu.Handle {
	p := c.targets.get(rt.handle)
	if p == nil {
		p = &renderTargetProperties{}
		rt.handle = c.targets.alloc(p)
	}
	tp := c.properties(rt.Texture)
	var dp *textureProperties
	if rt.DepthTexture != nil {
		dp = c.properties(rt.DepthTexture)
	}
	if p.fb != 0 && p.width == rt.Width && p.height == rt.Height && tp.version == rt.Texture.Version && tp.tex != 0 &&
		(dp == nil || (dp.tex != 0 && dp.version == rt.DepthTexture.Version)) {
		return p.fb
	}

	if p.fb == 0 {
		p.fb = c.d.CreateFramebuffer()
	}
	c.d.BindFramebuffer(p.fb)

	t := rt.Texture
	c.create(tp)
	c.state.BindTexture(gpu.Texture2D, tp.tex)
	mipmaps := t.GenerateMipmaps && t.MinFilter.Mipmapped()
	c.parameters(gpu.Texture2D, t, mipmaps)
	internal, format, typ := uploadFormats(t)
	c.d.TexImage2D(gpu.Texture2D, 0, internal, rt.Width, rt.Height, format, typ, nil)
	if mipmaps {
		c.d.GenerateMipmap(gpu.Texture2D)
	}
	c.d.FramebufferTexture2D(gpu.ColorAttachment0, gpu.Texture2D, tp.tex, 0)
	tp.width, tp.height, tp.version = rt.Width, rt.Height, t.Version

	depthBuffer := rt.DepthBuffer
	if dt := rt.DepthTexture; dt != nil {
		c.create(dp)
		c.state.BindTexture(gpu.Texture2D, dp.tex)
		c.parameters(gpu.Texture2D, dt, false)
		internal, format, typ := uploadFormats(dt)
		c.d.TexImage2D(gpu.Texture2D, 0, internal, rt.Width, rt.Height, format, typ, nil)
		c.d.FramebufferTexture2D(gpu.DepthAttachment, gpu.Texture2D, dp.tex, 0)
		dp.width, dp.height, dp.version = rt.Width, rt.Height, dt.Version
		depthBuffer = false
	}

	if depthBuffer || rt.StencilBuffer {
		if p.rb == 0 {
			p.rb = c.d.CreateRenderbuffer()
		}
		switch {
		case depthBuffer && rt.StencilBuffer:
			c.d.RenderbufferStorage(p.rb, gpu.Depth24Stencil8, rt.Width, rt.Height)
			c.d.FramebufferRenderbuffer(gpu.DepthStencilAttachment, p.rb)
		case depthBuffer:
			c.d.RenderbufferStorage(p.rb, gpu.DepthComponent16, rt.Width, rt.Height)
			c.d.FramebufferRenderbuffer(gpu.DepthAttachment, p.rb)
		default:
			c.d.RenderbufferStorage(p.rb, gpu.StencilIndex8, rt.Width, rt.Height)
			c.d.FramebufferRenderbuffer(gpu.StencilAttachment, p.rb)
		}
	}

	p.width, p.height = rt.Width, rt.Height
	p.complete = c.d.FramebufferComplete()
	if !p.complete {
		c.log.Warn("render target framebuffer incomplete",
			zap.Int("width", rt.Width), zap.Int("height", rt.Height))
	}
	return p.fb
}

// updateMipmap regenerates the mip chain of a target after drawing into it.
func (c *textureCache) updateMipmap(rt *RenderTarget) {
	t := rt.Texture
	if !t.GenerateMipmaps || !t.MinFilter.Mipmapped() {
		return
	}
	p := c.textures.get(t.Handle)
	if p == nil || p.tex == 0 {
		return
	}
	c.state.BindTexture(gpu.Texture2D, p.tex)
	c.d.GenerateMipmap(gpu.Texture2D)
}

// release deletes the driver texture of t and frees its handle.
func (c *textureCache) release(t *textures.Texture) {
	if t == nil {
		return
	}
	p := c.textures.release(t.Handle)
	t.Handle = 0
	if p == nil {
		return
	}
	if p.tex != 0 {
		c.d.DeleteTexture(p.tex)
		c.info.Memory.Textures--
	}
}

func (c *textureCache) releaseRenderTarget(rt *RenderTarget) {
	if p := c.targets.release(rt.handle); p != nil {
		if p.fb != 0 {
			c.d.DeleteFramebuffer(p.fb)
		}
		if p.rb != 0 {
			c.d.DeleteRenderbuffer(p.rb)
		}
	}
	rt.handle = 0
	c.release(rt.Texture)
	c.release(rt.DepthTexture)
}

// invalidate forgets every driver handle after a context loss; textures are
// uploaded again on their next use.
func (c *textureCache) invalidate() {
	c.textures.each(func(_ int, p *textureProperties) { *p = textureProperties{} })
	c.targets.each(func(_ int, p *renderTargetProperties) { *p = renderTargetProperties{} })
	c.info.Memory.Textures = 0
}

func (c *textureCache) dispose() {
	c.targets.each(func(_ int, p *renderTargetProperties) {
		if p.fb != 0 {
			c.d.DeleteFramebuffer(p.fb)
		}
		if p.rb != 0 {
			c.d.DeleteRenderbuffer(p.rb)
		}
	})
	c.textures.each(func(_ int, p *textureProperties) {
		if p.tex != 0 {
			c.d.DeleteTexture(p.tex)
		}
	})
	c.textures, c.targets = arena[textureProperties]{}, arena[renderTargetProperties]{}
	c.info.Memory.Textures = 0
}
