package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glscene/gpu"
	"glscene/scene"
	"glscene/textures"
)

func TestTextureUploadsOnlyOnVersionChange(t *testing.T) {
	rig := newTestRig(t)
	c := rig.r.textures
	tex := textures.New("checker", 2, 2, make([]byte, 16))

	c.setTexture2D(tex, 0)
	c.setTexture2D(tex, 0)
	assert.Equal(t, 1, rig.d.Count("TexImage2D"))
	assert.Equal(t, 1, rig.d.Count("GenerateMipmap"))
	assert.Equal(t, 1, rig.r.Info().Memory.Textures)

	tex.NeedsUpdate()
	c.setTexture2D(tex, 1)
	assert.Equal(t, 2, rig.d.Count("TexImage2D"))
	assert.Equal(t, 1, rig.d.Count("CreateTexture"))

	rig.r.ReleaseTexture(tex)
	assert.Equal(t, 1, rig.d.Count("DeleteTexture"))
	assert.Zero(t, tex.Handle)
	assert.Zero(t, rig.r.Info().Memory.Textures)
}

func TestTextureWithoutDataBindsNothing(t *testing.T) {
	rig := newTestRig(t)
	tex := textures.New("pending", 4, 4, nil)
	rig.r.textures.setTexture2D(tex, 0)

	assert.Zero(t, rig.d.Count("TexImage2D"))
}

func TestTextureUnitsClampAndWarnOnce(t *testing.T) {
	rig := newTestRig(t)
	c := rig.r.textures
	limit := rig.r.Capabilities().MaxTextures

	assert.Equal(t, 1, c.textureUnit(1))
	var last int
	for unit := range limit + 3 {
		last = c.textureUnit(unit)
	}
	assert.Equal(t, limit-1, last)
	assert.Equal(t, 1, rig.logs.FilterMessage("texture units exhausted, reusing last unit").Len())
}

func TestOversizedTextureIsResized(t *testing.T) {
	rig := newTestRig(t)
	rig.r.caps.MaxTextureSize = 2
	tex := textures.New("big", 4, 2, make([]byte, 4*2*4))
	rig.r.textures.setTexture2D(tex, 0)

	uploads := rig.d.Named("TexImage2D")
	require.Len(t, uploads, 1)
	assert.Equal(t, 2, uploads[0].Args[3])
	assert.Equal(t, 1, uploads[0].Args[4])
}

func TestGeometryUploadsOncePerFrame(t *testing.T) {
	rig := newTestRig(t)
	c := rig.r.geometries
	g := scene.CreateQuad()

	c.update(g, 1)
	c.update(g, 1)
	// Three attribute streams and one index.
	assert.Equal(t, 4, rig.d.Count("CreateBuffer"))
	assert.Equal(t, 4, rig.d.Count("BufferData"))
	assert.Equal(t, 1, rig.r.Info().Memory.Geometries)

	g.Attribute("position").NeedsUpdate()
	c.update(g, 1)
	assert.Equal(t, 4, rig.d.Count("BufferData"))
	c.update(g, 2)
	assert.Equal(t, 5, rig.d.Count("BufferData"))

	rig.r.ReleaseGeometry(g)
	assert.Equal(t, 4, rig.d.Count("DeleteBuffer"))
	assert.Zero(t, rig.r.Info().Memory.Geometries)
}

func TestDynamicAttributeUsesSubData(t *testing.T) {
	rig := newTestRig(t)
	c := rig.r.geometries
	g := scene.NewGeometry("stream")
	a := scene.NewAttribute(make([]float32, 9), 3)
	a.Dynamic = true
	g.SetAttribute("position", a)

	c.update(g, 1)
	a.NeedsUpdate()
	c.update(g, 2)

	assert.Equal(t, 1, rig.d.Count("BufferData"))
	assert.Equal(t, 1, rig.d.Count("BufferSubData"))
	data := rig.d.Named("BufferData")
	assert.Equal(t, gpu.DynamicDraw, data[0].Args[2])
}

func TestWireframeIndexForNonIndexedGeometry(t *testing.T) {
	rig := newTestRig(t)
	g := scene.NewGeometry("tri")
	g.SetAttribute("position", scene.NewAttribute(make([]float32, 9), 3))

	buf, count := rig.r.geometries.wireframeIndex(g)
	assert.NotZero(t, buf)
	assert.Equal(t, 6, count)

	again, _ := rig.r.geometries.wireframeIndex(g)
	assert.Equal(t, buf, again)
	assert.Equal(t, 1, rig.d.Count("BufferData"))
}

func TestRenderTargetReallocatesOnResize(t *testing.T) {
	rig := newTestRig(t)
	rt := NewRenderTarget(8, 8, textures.UnsignedByte)
	c := rig.r.textures

	fb := c.setupRenderTarget(rt)
	assert.Equal(t, fb, c.setupRenderTarget(rt))
	assert.Equal(t, 1, rig.d.Count("RenderbufferStorage"))

	rt.SetSize(16, 16)
	assert.Equal(t, fb, c.setupRenderTarget(rt))
	assert.Equal(t, 2, rig.d.Count("RenderbufferStorage"))
	assert.Equal(t, 1, rig.d.Count("CreateFramebuffer"))

	rig.r.ReleaseRenderTarget(rt)
	assert.Equal(t, 1, rig.d.Count("DeleteFramebuffer"))
	assert.Equal(t, 1, rig.d.Count("DeleteRenderbuffer"))
}
