package renderer

import (
	"glscene/core"
	"glscene/textures"
)

// RenderTarget is an off-screen framebuffer with a color texture and
// optional depth and stencil storage.
type RenderTarget struct {
	Width, Height int
	Texture       *textures.Texture

	DepthBuffer   bool
	StencilBuffer bool
	// DepthTexture, when set, receives depth instead of a renderbuffer so
	// later passes can sample it.
	DepthTexture *textures.Texture

	// Viewport and Scissor are in target pixels and replace the renderer's
	// rectangles while the target is bound.
	Viewport    core.Rect
	Scissor     core.Rect
	ScissorTest bool

	handle int
}

// NewRenderTarget creates a target with an RGBA color texture of type typ
// and a depth buffer.
func NewRenderTarget(width, height int, typ textures.DataType) *RenderTarget {
	return &RenderTarget{
		Width:       width,
		Height:      height,
		Texture:     textures.NewRenderTexture("render-target", width, height, typ),
		DepthBuffer: true,
		Viewport:    core.Rect{Width: width, Height: height},
		Scissor:     core.Rect{Width: width, Height: height},
	}
}

// SetSize resizes the target; storage is reallocated on next bind.
func (t *RenderTarget) SetSize(width, height int) {
	if t.Width == width && t.Height == height {
		return
	}
	t.Width, t.Height = width, height
	t.Texture.Width, t.Texture.Height = width, height
	t.Texture.NeedsUpdate()
	if t.DepthTexture != nil {
		t.DepthTexture.Width, t.DepthTexture.Height = width, height
		t.DepthTexture.NeedsUpdate()
	}
	t.Viewport = core.Rect{Width: width, Height: height}
	t.Scissor = core.Rect{Width: width, Height: height}
}
