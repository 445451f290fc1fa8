package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
	"glscene/materials"
)

// Clipping resolves the clip planes in effect for a material and keeps them
// in view space for the clippingPlanes uniform.
type Clipping struct {
	// Planes is the uniform value; only the first NumPlanes entries are used.
	Planes          []mgl32.Vec4
	NumPlanes       int
	NumIntersection int

	global           []core.Plane
	localEnabled     bool
	renderingShadows bool
}

// Init records the frame's global planes and reports whether any clipping
// can happen this frame.
func (c *Clipping) Init(global []core.Plane, localEnabled bool) bool {
	c.global = global
	c.localEnabled = localEnabled
	c.NumPlanes, c.NumIntersection = 0, 0
	return len(global) > 0 || localEnabled
}

func (c *Clipping) BeginShadows() { c.renderingShadows = true }
func (c *Clipping) EndShadows()   { c.renderingShadows = false }

// SetState picks the planes for m and transforms them by view.
func (c *Clipping) SetState(m *materials.Material, view mgl32.Mat4) {
	local := m.ClippingPlanes
	useLocal := c.localEnabled && len(local) > 0 && (!c.renderingShadows || m.ClipShadows)

	c.Planes = c.Planes[:0]
	c.NumIntersection = 0
	if c.renderingShadows && !useLocal {
		c.NumPlanes = 0
		return
	}
	for _, p := range c.global {
		c.Planes = append(c.Planes, p.Transform(view).Vec4())
	}
	if useLocal {
		for _, p := range local {
			c.Planes = append(c.Planes, p.Transform(view).Vec4())
		}
		if m.ClipIntersection {
			c.NumIntersection = len(local)
		}
	}
	c.NumPlanes = len(c.Planes)
}
