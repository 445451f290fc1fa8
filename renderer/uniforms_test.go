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
	"glscene/textures"
)

type fakeBinder struct {
	bound   map[int]*textures.Texture
	cube    map[int]*textures.Texture
	scratch *ScratchPool
}

func newFakeBinder() *fakeBinder {
	return &fakeBinder{
		bound:   make(map[int]*textures.Texture),
		cube:    make(map[int]*textures.Texture),
		scratch: NewScratchPool(),
	}
}

func (b *fakeBinder) TextureUnit(unit int) int { return unit }
func (b *fakeBinder) SetTexture2D(t *textures.Texture, unit int)   { b.bound[unit] = t }
func (b *fakeBinder) SetTextureCube(t *textures.Texture, unit int) { b.cube[unit] = t }
func (b *fakeBinder) Scratch() *ScratchPool                       { return b.scratch }

func linkTestProgram(t *testing.T, d *gputest.Driver, vs, fs string) gpu.Handle {
	t.Helper()
	p := d.CreateProgram()
	for stage, src := range map[gpu.ShaderStage]string{gpu.VertexShader: vs, gpu.FragmentShader: fs} {
		s := d.CreateShader(stage)
		d.ShaderSource(s, src)
		d.CompileShader(s)
		d.AttachShader(p, s)
	}
	d.LinkProgram(p)
	require.True(t, d.ProgramLinked(p))
	return p
}

const testUniformFS = `
struct PointLight {
	vec3 color;
	float distance;
};
uniform PointLight pointLights[2];
uniform mat4 boneMatrices[4];
uniform float opacity;
uniform vec3 diffuse;
uniform sampler2D map;
uniform sampler2D shadowMaps[2];
`

type testPointLight struct {
	color    core.Color
	distance float32
}

func (l *testPointLight) UniformField(name string) (any, bool) {
	switch name {
	case "color":
		return l.color, true
	case "distance":
		return l.distance, true
	}
	return nil, false
}

func TestUniformsParseNames(t *testing.T) {
	d := gputest.NewDriver()
	u := NewUniforms(d, linkTestProgram(t, d, "void main() {}", testUniformFS), nil)

	lights, ok := u.Map["pointLights"].(*StructuredUniform)
	require.True(t, ok)
	require.Len(t, lights.Seq, 2)
	first, ok := lights.Map["0"].(*StructuredUniform)
	require.True(t, ok)
	assert.Contains(t, first.Map, "color")
	assert.Contains(t, first.Map, "distance")

	bones, ok := u.Map["boneMatrices"].(*PureArrayUniform)
	require.True(t, ok)
	assert.Equal(t, 4, bones.size)

	_, ok = u.Map["opacity"].(*SingleUniform)
	assert.True(t, ok)
	assert.True(t, u.Has("map"))
	assert.False(t, u.Has("missing"))
}

func TestUniformsIdempotent(t *testing.T) {
	d := gputest.NewDriver()
	u := NewUniforms(d, linkTestProgram(t, d, "void main() {}", testUniformFS), nil)
	b := newFakeBinder()
	d.Reset()

	u.SetValue("opacity", float32(0.5), b)
	u.SetValue("opacity", float32(0.5), b)
	assert.Equal(t, 1, d.Count("Uniform1f"))

	u.SetValue("opacity", float32(0.25), b)
	assert.Equal(t, 2, d.Count("Uniform1f"))

	u.SetValue("diffuse", core.ColorRed, b)
	u.SetValue("diffuse", mgl32.Vec3{1, 0, 0}, b)
	require.Equal(t, 1, d.Count("Uniform3fv"))
	assert.Equal(t, []float32{1, 0, 0}, d.Named("Uniform3fv")[0].Args[1])
}

func TestUniformsStructArray(t *testing.T) {
	d := gputest.NewDriver()
	u := NewUniforms(d, linkTestProgram(t, d, "void main() {}", testUniformFS), nil)
	b := newFakeBinder()
	d.Reset()

	values := map[string]any{
		"pointLights": []UniformStruct{
			&testPointLight{color: core.ColorRed, distance: 10},
			&testPointLight{color: core.ColorBlue, distance: 20},
		},
		"boneMatrices": []mgl32.Mat4{mgl32.Ident4(), mgl32.Ident4()},
	}
	u.Upload(u.SeqWithValue(values), values, b)

	assert.Equal(t, 2, d.Count("Uniform3fv"))
	assert.Equal(t, 2, d.Count("Uniform1f"))
	mats := d.Named("UniformMatrix4fv")
	require.Len(t, mats, 1)
	assert.Len(t, mats[0].Args[1], 64)

	u.Upload(u.SeqWithValue(values), values, b)
	assert.Equal(t, 2, d.Count("Uniform3fv"), "unchanged struct members are not re-sent")
}

func TestUniformsSamplers(t *testing.T) {
	d := gputest.NewDriver()
	u := NewUniforms(d, linkTestProgram(t, d, "void main() {}", testUniformFS), nil)
	b := newFakeBinder()
	d.Reset()

	tex := textures.NewSolidTexture("white", 255, 255, 255, 255)
	u.SetValue("map", tex, b)
	assert.Same(t, tex, b.bound[0])
	assert.Equal(t, []any{int32(0)}, d.Named("Uniform1i")[0].Args[1:])

	shadow := textures.NewRenderTexture("shadow", 64, 64, textures.UnsignedByte)
	u.SetValue("shadowMaps", []*textures.Texture{shadow}, b)
	assert.Same(t, shadow, b.bound[1])
	assert.Nil(t, b.bound[2])
	assert.Equal(t, []int32{1, 2}, d.Named("Uniform1iv")[0].Args[1])
	assert.Equal(t, 3, u.TextureUnits())
}

func TestUniformsSamplerRepeatIsNoop(t *testing.T) {
	d := gputest.NewDriver()
	u := NewUniforms(d, linkTestProgram(t, d, "void main() {}", testUniformFS), nil)
	b := newFakeBinder()
	d.Reset()

	tex := textures.NewSolidTexture("white", 255, 255, 255, 255)
	u.SetValue("map", tex, b)
	u.SetValue("map", tex, b)
	assert.Equal(t, 1, d.Count("Uniform1i"))
	assert.Len(t, b.bound, 1)
	assert.Same(t, tex, b.bound[0])

	shadows := []*textures.Texture{textures.NewRenderTexture("shadow", 64, 64, textures.UnsignedByte)}
	u.SetValue("shadowMaps", shadows, b)
	u.SetValue("shadowMaps", shadows, b)
	assert.Equal(t, 1, d.Count("Uniform1iv"))
	assert.Len(t, b.bound, 3)
}

func TestRendererSamplerRebindSkipsDriver(t *testing.T) {
	rig := newTestRig(t)
	d := rig.d
	u := NewUniforms(d, linkTestProgram(t, d, "void main() {}", testUniformFS), nil)
	tex := textures.NewSolidTexture("white", 255, 255, 255, 255)
	u.SetValue("map", tex, rig.r)
	d.Reset()

	u.SetValue("map", tex, rig.r)
	assert.Zero(t, d.Count("Uniform1i"))
	assert.Zero(t, d.Count("BindTexture"))
	assert.Zero(t, d.Count("TexImage2D"))
}

func TestUniformsWrongTypeLogs(t *testing.T) {
	obs, logs := observer.New(zapcore.WarnLevel)
	d := gputest.NewDriver()
	u := NewUniforms(d, linkTestProgram(t, d, "void main() {}", testUniformFS), zap.New(obs))

	u.SetValue("opacity", "not a number", newFakeBinder())
	assert.Equal(t, 0, d.Count("Uniform1f"))
	assert.Equal(t, 1, logs.FilterMessage("uniform value has wrong type").Len())
}

func TestScratchPoolReuses(t *testing.T) {
	p := NewScratchPool()
	a := p.Floats(4)
	a[0] = 3
	b := p.Floats(4)
	assert.Equal(t, float32(0), b[0])
	assert.Same(t, &a[0], &b[0])
	p.Ints(4)
	assert.Equal(t, 2, p.Len())
}
