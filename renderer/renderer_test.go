package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"glscene/core"
	"glscene/gpu"
	"glscene/gpu/gputest"
	"glscene/materials"
	"glscene/scene"
	"glscene/textures"
)

type testRig struct {
	r    *Renderer
	d    *gputest.Driver
	logs *observer.ObservedLogs
	sc   *scene.Scene
	cam  *scene.Camera
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	obs, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultConfig()
	cfg.Logger = zap.New(obs)

	d := gputest.NewDriver()
	r, err := New(d, cfg)
	require.NoError(t, err)
	r.SetSize(64, 64)

	cam := scene.NewCamera(mgl32.DegToRad(60), 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	return &testRig{r: r, d: d, logs: logs, sc: scene.NewScene(), cam: cam}
}

func (rig *testRig) add(m *materials.Material) *scene.Node {
	n := scene.NewMesh("quad", scene.CreateQuad(), m)
	rig.sc.Add(n)
	return n
}

func (rig *testRig) render() { rig.r.Render(rig.sc, rig.cam, nil, false) }

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil, DefaultConfig())
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Precision = "ultra"
	_, err = New(gputest.NewDriver(), cfg)
	assert.ErrorContains(t, err, "precision")
}

func TestRenderDrawsVisibleMesh(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	rig.render()

	draws := rig.d.Named("DrawElements")
	require.Len(t, draws, 1)
	assert.Equal(t, gpu.Triangles, draws[0].Args[0])
	assert.Equal(t, 6, draws[0].Args[1])
	assert.Equal(t, 1, rig.r.Info().Render.Calls)
	assert.Equal(t, 2, rig.r.Info().Render.Faces)
	assert.Len(t, rig.r.Programs(), 1)

	clears := rig.d.Named("Clear")
	require.NotEmpty(t, clears)
	assert.Equal(t, gpu.ColorBufferBit|gpu.DepthBufferBit|gpu.StencilBufferBit, clears[0].Args[0])
}

func TestInfoIsACopy(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	rig.r.SetInfoAutoReset(false)
	rig.render()
	rig.render()

	info := rig.r.Info()
	assert.Equal(t, 2, info.Render.Calls)
	info.Render.Calls = 99
	info.Reset()
	assert.Equal(t, 2, rig.r.Info().Render.Calls)

	frame := rig.r.Info().Render.Frame
	rig.r.ResetInfo()
	assert.Zero(t, rig.r.Info().Render.Calls)
	assert.Zero(t, rig.r.Info().Render.Faces)
	assert.Equal(t, frame+1, rig.r.Info().Render.Frame)
	assert.Equal(t, 1, rig.r.Info().Memory.Geometries)
}

func TestRenderReusesProgramAcrossFrames(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))

	rig.render()
	rig.render()

	assert.Equal(t, 1, rig.d.Count("CreateProgram"))
	assert.Equal(t, 1, rig.d.Count("LinkProgram"))
	assert.Equal(t, 2, rig.d.Count("DrawElements"))
}

func TestRenderSharesProgramBetweenMaterials(t *testing.T) {
	rig := newTestRig(t)
	a := materials.New(materials.KindBasic)
	b := materials.New(materials.KindBasic)
	b.Color = core.ColorRed
	rig.add(a)
	rig.add(b)
	rig.render()

	progs := rig.r.Programs()
	require.Len(t, progs, 1)
	assert.Equal(t, 2, progs[0].UsedTimes)
	assert.Equal(t, rig.r.programID(a), rig.r.programID(b))

	rig.r.ReleaseMaterial(a)
	assert.Equal(t, 1, progs[0].UsedTimes)
	rig.r.ReleaseMaterial(b)
	assert.Empty(t, rig.r.Programs())
	assert.Equal(t, 1, rig.d.Count("DeleteProgram"))
}

func TestRenderRebuildsProgramOnMaterialChange(t *testing.T) {
	rig := newTestRig(t)
	m := materials.New(materials.KindBasic)
	rig.add(m)
	rig.render()
	first := rig.r.programID(m)

	m.FlatShading = true
	m.Wireframe = true
	m.NeedsUpdate()
	rig.render()

	assert.NotEqual(t, first, rig.r.programID(m))
	assert.Len(t, rig.r.Programs(), 1)

	draws := rig.d.Named("DrawElements")
	require.Len(t, draws, 2)
	assert.Equal(t, gpu.Lines, draws[1].Args[0])
	assert.Equal(t, 12, draws[1].Args[1])
}

func TestRenderHonorsDrawRange(t *testing.T) {
	rig := newTestRig(t)
	n := rig.add(materials.New(materials.KindBasic))
	n.Geometry.DrawRange = scene.DrawRange{Start: 3, Count: 3}
	rig.render()

	draws := rig.d.Named("DrawElements")
	require.Len(t, draws, 1)
	assert.Equal(t, 3, draws[0].Args[1])
	assert.Equal(t, 12, draws[0].Args[3])
}

func TestRenderSkipsInvisibleAndCulled(t *testing.T) {
	rig := newTestRig(t)
	hidden := rig.add(materials.New(materials.KindBasic))
	hidden.Visible = false
	far := rig.add(materials.New(materials.KindBasic))
	far.SetPosition(mgl32.Vec3{500, 0, 0})
	rig.render()

	assert.Zero(t, rig.d.Count("DrawElements"))
}

func TestRenderRejectsUnsupportedCamera(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	rig.r.Render(rig.sc, &scene.Camera{}, nil, false)

	assert.Zero(t, rig.d.Count("DrawElements"))
	entries := rig.logs.FilterMessage("render skipped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestRenderIgnoresReentrantCalls(t *testing.T) {
	rig := newTestRig(t)
	n := rig.add(materials.New(materials.KindBasic))
	calls := 0
	n.OnBeforeRender = func(*scene.Node, *scene.Camera, *scene.Geometry, *materials.Material, *scene.Group) {
		calls++
		rig.render()
	}
	rig.render()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rig.d.Count("DrawElements"))
	assert.Equal(t, 1, rig.logs.FilterMessage("render called while rendering, ignored").Len())
}

func TestShadowToggleRebuildsLitPrograms(t *testing.T) {
	rig := newTestRig(t)
	sun := scene.NewDirectionalLight(core.ColorWhite, 1)
	sun.CastShadow = true
	rig.sc.Add(sun)
	m := materials.New(materials.KindLambert)
	n := rig.add(m)
	n.CastShadow = true
	n.ReceiveShadow = true

	rig.render()
	unshadowed := rig.r.programID(m)
	hash := rig.r.Lights().Hash

	rig.r.ShadowMap().Enabled = true
	rig.render()

	assert.NotEqual(t, hash, rig.r.Lights().Hash)
	assert.NotEqual(t, unshadowed, rig.r.programID(m))
	assert.GreaterOrEqual(t, rig.d.Count("DeleteProgram"), 1)

	tex, _, ok := rig.r.ShadowMap().ShadowFor(sun.Light.Shadow)
	require.True(t, ok)
	assert.NotNil(t, tex)
	// One draw for the caster in the shadow pass and one in the main pass.
	assert.Equal(t, 3, rig.d.Count("DrawElements"))
}

func TestLightCastShadowToggleRefreshesPrograms(t *testing.T) {
	rig := newTestRig(t)
	rig.r.ShadowMap().Enabled = true
	sun := scene.NewDirectionalLight(core.ColorWhite, 1)
	rig.sc.Add(sun)
	m := materials.New(materials.KindLambert)
	n := rig.add(m)
	n.CastShadow = true
	n.ReceiveShadow = true

	rig.render()
	assert.Equal(t, "1,0,0,0,0", rig.r.Lights().Hash)
	before := rig.r.programID(m)

	sun.CastShadow = true
	rig.render()
	assert.Equal(t, "1,0,0,0,1", rig.r.Lights().Hash)
	assert.NotEqual(t, before, rig.r.programID(m))

	sun.CastShadow = false
	rig.render()
	assert.Equal(t, "1,0,0,0,0", rig.r.Lights().Hash)
	assert.Len(t, rig.r.Programs(), 1, "the shadowed variant is released")
}

func TestReadRenderTargetPixels(t *testing.T) {
	rig := newTestRig(t)
	rt := NewRenderTarget(4, 4, textures.UnsignedByte)
	rig.d.Pixels = []byte{1, 2, 3, 4, 5, 6, 7, 8}

	dst := make([]byte, 2*2*4)
	require.NoError(t, rig.r.ReadRenderTargetPixels(rt, 0, 0, 2, 2, dst))
	assert.Equal(t, []byte{1, 2, 3, 4}, dst[:4])

	err := rig.r.ReadRenderTargetPixels(rt, 3, 3, 2, 2, dst)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 1, rig.logs.FilterMessage("pixel read outside render target").Len())

	assert.Error(t, rig.r.ReadRenderTargetPixels(rt, 0, 0, 2, 2, make([]byte, 3)))

	rig.d.Incomplete = true
	broken := NewRenderTarget(4, 4, textures.UnsignedByte)
	assert.ErrorIs(t, rig.r.ReadRenderTargetPixels(broken, 0, 0, 1, 1, dst), ErrIncompleteTarget)

	binds := rig.d.Named("BindFramebuffer")
	require.NotEmpty(t, binds)
	assert.Equal(t, gpu.Handle(0), binds[len(binds)-1].Args[0])
}

func TestRenderIntoTargetUsesItsViewport(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	rt := NewRenderTarget(32, 16, textures.UnsignedByte)
	rig.r.Render(rig.sc, rig.cam, rt, false)

	vps := rig.d.Named("Viewport")
	require.NotEmpty(t, vps)
	assert.Equal(t, []any{int32(0), int32(0), int32(32), int32(16)}, vps[len(vps)-1].Args)
	assert.Equal(t, 1, rig.d.Count("CreateFramebuffer"))
}

func TestContextLossSuspendsRendering(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	rig.render()

	rig.r.ContextLost()
	rig.render()
	assert.Equal(t, 1, rig.d.Count("DrawElements"))

	rig.r.ContextRestored()
	rig.render()
	assert.Equal(t, 2, rig.d.Count("DrawElements"))
	assert.Equal(t, 2, rig.d.Count("LinkProgram"))
	assert.Equal(t, 1, rig.logs.FilterMessage("graphics context lost").Len())
}

func TestPluginsRunAfterScene(t *testing.T) {
	rig := newTestRig(t)
	rig.add(materials.New(materials.KindBasic))
	p := &recordingPlugin{}
	rig.r.AddPlugin(p)
	rig.render()

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 1, p.drawsBefore)
}

type recordingPlugin struct {
	calls       int
	drawsBefore int
}

func (p *recordingPlugin) Render(r *Renderer, _ *scene.Scene, _ *scene.Camera, _ *RenderTarget) {
	p.calls++
	p.drawsBefore = r.Info().Render.Calls
}
