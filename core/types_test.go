package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	c := Hex(0xff8000)
	assert.InDelta(t, 1.0, c.R, 1e-6)
	assert.InDelta(t, 128.0/255, c.G, 1e-6)
	assert.InDelta(t, 0.0, c.B, 1e-6)
	assert.Equal(t, float32(1), c.A)

	p, err := ParseHex("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, c, p)

	_, err = ParseHex("nothex")
	assert.Error(t, err)
}

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{1, 2, 3}
	tr.Scale = mgl32.Vec3{2, 2, 2}

	m := tr.GetMatrix()
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 3.0, p.X(), 1e-5)
	assert.InDelta(t, 2.0, p.Y(), 1e-5)
	assert.InDelta(t, 3.0, p.Z(), 1e-5)
}

func TestRectScaled(t *testing.T) {
	r := Rect{X: 1, Y: 2, Width: 100, Height: 50}.Scaled(2)
	assert.Equal(t, Rect{X: 2, Y: 4, Width: 200, Height: 100}, r)
}
