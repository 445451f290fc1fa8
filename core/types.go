package core

import (
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
)

// Hex builds an opaque color from 0xRRGGBB.
func Hex(rgb uint32) Color {
	return Color{
		R: float32(rgb>>16&0xff) / 255,
		G: float32(rgb>>8&0xff) / 255,
		B: float32(rgb&0xff) / 255,
		A: 1,
	}
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("parse color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Hex(uint32(v)), nil
}

// UnmarshalText lets colors be written as hex strings in config files.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Color) RGB() mgl32.Vec3  { return mgl32.Vec3{c.R, c.G, c.B} }
func (c Color) RGBA() mgl32.Vec4 { return mgl32.Vec4{c.R, c.G, c.B, c.A} }

// Scale multiplies the color channels (not alpha) by s.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}

// Linear converts a gamma-encoded color to linear space using factor.
func (c Color) Linear(gamma float32) Color {
	return Color{math32.Pow(c.R, gamma), math32.Pow(c.G, gamma), math32.Pow(c.B, gamma), c.A}
}

// Transform is a translation, rotation and scale applied in S-R-T order.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) GetMatrix() mgl32.Mat4 {
	translation := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotation := t.Rotation.Normalize().Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translation.Mul4(rotation).Mul4(scale)
}

func (t Transform) GetForward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (t Transform) GetUp() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

// Rect is an integer pixel rectangle with its origin at the bottom left.
type Rect struct {
	X, Y, Width, Height int
}

// Scaled multiplies every component by s, rounding down.
func (r Rect) Scaled(s float32) Rect {
	return Rect{
		X:      int(float32(r.X) * s),
		Y:      int(float32(r.Y) * s),
		Width:  int(float32(r.Width) * s),
		Height: int(float32(r.Height) * s),
	}
}
