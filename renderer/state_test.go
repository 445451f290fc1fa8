package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"glscene/core"
	"glscene/gpu"
	"glscene/gpu/gputest"
	"glscene/materials"
)

func newTestState() (*State, *gputest.Driver) {
	d := gputest.NewDriver()
	return NewState(d, 16, 16), d
}

func TestStateEnableDiffs(t *testing.T) {
	s, d := newTestState()

	s.Enable(gpu.DepthTest)
	s.Enable(gpu.DepthTest)
	s.Disable(gpu.DepthTest)
	s.Disable(gpu.DepthTest)
	s.Enable(gpu.DepthTest)

	assert.Equal(t, 2, d.Count("Enable"))
	assert.Equal(t, 1, d.Count("Disable"))
}

func TestStateSettersIssueOncePerChange(t *testing.T) {
	s, d := newTestState()

	for _, w := range []float32{1, 1, 2, 2, 2, 1} {
		s.SetLineWidth(w)
	}
	assert.Equal(t, 3, d.Count("LineWidth"))

	r := core.Rect{Width: 640, Height: 480}
	s.Viewport(r)
	s.Viewport(r)
	s.Viewport(core.Rect{Width: 320, Height: 240})
	assert.Equal(t, 2, d.Count("Viewport"))

	s.Depth.SetMask(true)
	s.Depth.SetMask(true)
	s.Depth.SetFunc(materials.LessDepth)
	s.Depth.SetFunc(materials.LessDepth)
	assert.Equal(t, 1, d.Count("DepthMask"))
	assert.Equal(t, 1, d.Count("DepthFunc"))

	assert.True(t, s.UseProgram(3))
	assert.False(t, s.UseProgram(3))
	assert.Equal(t, 1, d.Count("UseProgram"))
}

func TestStateResetReissues(t *testing.T) {
	s, d := newTestState()

	s.Enable(gpu.Blend)
	s.SetLineWidth(2)
	s.Color.SetMask(true)
	s.Depth.SetClear(1)
	s.Viewport(core.Rect{Width: 10, Height: 10})
	s.UseProgram(7)
	s.ActiveTexture(1)
	s.BindTexture(gpu.Texture2D, 4)
	s.SetBlending(materials.AdditiveBlending, 0, 0, 0, nil, nil, nil, false)
	d.Reset()

	s.Reset()
	s.Enable(gpu.Blend)
	s.SetLineWidth(2)
	s.Color.SetMask(true)
	s.Depth.SetClear(1)
	s.Viewport(core.Rect{Width: 10, Height: 10})
	s.UseProgram(7)
	s.ActiveTexture(1)
	s.BindTexture(gpu.Texture2D, 4)
	s.SetBlending(materials.AdditiveBlending, 0, 0, 0, nil, nil, nil, false)

	for _, name := range []string{"Enable", "LineWidth", "ColorMask", "ClearDepth", "Viewport",
		"UseProgram", "ActiveTexture", "BindTexture", "BlendEquationSeparate", "BlendFuncSeparate"} {
		assert.Equal(t, 1, d.Count(name), name)
	}
}

func TestStateLockedBuffers(t *testing.T) {
	s, d := newTestState()

	s.Depth.SetMask(true)
	s.Depth.SetLocked(true)
	s.Depth.SetMask(false)
	assert.Equal(t, 1, d.Count("DepthMask"))

	s.Depth.SetLocked(false)
	s.Depth.SetMask(false)
	assert.Equal(t, 2, d.Count("DepthMask"))
}

func TestStateBlendingModes(t *testing.T) {
	s, d := newTestState()

	s.SetBlending(materials.NormalBlending, 0, 0, 0, nil, nil, nil, false)
	s.SetBlending(materials.NormalBlending, 0, 0, 0, nil, nil, nil, false)
	assert.Equal(t, 1, d.Count("BlendFuncSeparate"))
	assert.Equal(t, []any{gpu.SrcAlpha, gpu.OneMinusSrcAlpha, gpu.One, gpu.OneMinusSrcAlpha},
		d.Named("BlendFuncSeparate")[0].Args)

	s.SetBlending(materials.NoBlending, 0, 0, 0, nil, nil, nil, false)
	assert.Equal(t, 1, d.Count("Disable"))

	dstAlpha := materials.ZeroFactor
	s.SetBlending(materials.CustomBlending, materials.SubtractEquation,
		materials.OneFactor, materials.DstColorFactor, nil, nil, &dstAlpha, false)
	calls := d.Named("BlendFuncSeparate")
	assert.Equal(t, []any{gpu.One, gpu.DstColor, gpu.One, gpu.Zero}, calls[len(calls)-1].Args)
	eqs := d.Named("BlendEquationSeparate")
	assert.Equal(t, []any{gpu.FuncSubtract, gpu.FuncSubtract}, eqs[len(eqs)-1].Args)
}

func TestStateSetMaterial(t *testing.T) {
	s, d := newTestState()

	m := materials.NewBasic(core.ColorWhite)
	s.SetMaterial(m, false)
	first := len(d.Calls)
	assert.NotZero(t, first)

	s.SetMaterial(m, false)
	assert.Equal(t, first, len(d.Calls), "same material twice issues nothing")

	m.Side = materials.DoubleSide
	s.SetMaterial(m, false)
	assert.Equal(t, 1, d.Count("Disable")-countCap(d, "Disable", gpu.Blend)-countCap(d, "Disable", gpu.PolygonOffsetFill))

	s.SetMaterial(m, true)
	fronts := d.Named("FrontFace")
	assert.Equal(t, gpu.CW, fronts[len(fronts)-1].Args[0])
}

func countCap(d *gputest.Driver, name string, c gpu.Capability) int {
	n := 0
	for _, call := range d.Named(name) {
		if call.Args[0] == c {
			n++
		}
	}
	return n
}

func TestStateAttributes(t *testing.T) {
	s, d := newTestState()

	s.InitAttributes()
	s.EnableAttribute(0)
	s.EnableAttribute(1)
	s.DisableUnusedAttributes()

	s.InitAttributes()
	s.EnableAttribute(0)
	s.EnableAttributeAndDivisor(2, 1)
	s.DisableUnusedAttributes()

	assert.Equal(t, 3, d.Count("EnableVertexAttribArray"))
	assert.Equal(t, []any{uint32(1)}, d.Named("DisableVertexAttribArray")[0].Args)
	assert.Equal(t, 3, d.Count("VertexAttribDivisor"))
}

func TestStateBindTextureSelectsUnit(t *testing.T) {
	s, d := newTestState()

	s.BindTexture(gpu.Texture2D, 5)
	assert.Equal(t, []any{15}, d.Named("ActiveTexture")[0].Args)

	s.ActiveTexture(0)
	s.BindTexture(gpu.Texture2D, 5)
	s.BindTexture(gpu.Texture2D, 5)
	assert.Equal(t, 2, d.Count("BindTexture"))
}
