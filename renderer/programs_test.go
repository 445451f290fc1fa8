package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glscene/gpu"
	"glscene/materials"
	"glscene/renderer/shaderlib"
)

func TestResolveIncludes(t *testing.T) {
	chunks := map[string]string{
		"outer": "a\n#include <inner>\nb",
		"inner": "x",
		"loopA": "#include <loopB>",
		"loopB": "#include <loopA>",
	}
	lookup := func(name string) (string, bool) {
		s, ok := chunks[name]
		return s, ok
	}

	out, err := resolveIncludes("#include <outer>\nmain", lookup)
	require.NoError(t, err)
	assert.Equal(t, "a\nx\nb\nmain", out)

	_, err = resolveIncludes("#include <loopA>", lookup)
	assert.ErrorContains(t, err, "include cycle")

	_, err = resolveIncludes("#include <nope>", lookup)
	assert.ErrorContains(t, err, "unknown include <nope>")
}

func TestShaderLibraryIncludesResolve(t *testing.T) {
	for _, id := range shaderlib.IDs() {
		s, ok := shaderlib.Get(id)
		require.True(t, ok, id)
		_, err := resolveIncludes(s.Vertex, shaderlib.Chunk)
		assert.NoError(t, err, "%s vertex", id)
		_, err = resolveIncludes(s.Fragment, shaderlib.Chunk)
		assert.NoError(t, err, "%s fragment", id)
	}
}

func TestBuiltinKindsHaveShaders(t *testing.T) {
	for k := materials.Kind(0); k < materials.KindCount; k++ {
		if k.Custom() {
			continue
		}
		_, ok := ShaderFor(materials.New(k))
		assert.True(t, ok, k.String())
	}
}

func TestProgramCodeIsDeterministic(t *testing.T) {
	rig := newTestRig(t)
	c := rig.r.programs

	m := materials.New(materials.KindPhong)
	m.Defines = map[string]string{"B": "2", "A": "1", "C": ""}
	p := c.Parameters(m, rig.r.lights, nil, nil, &rig.r.clipping, nil)

	code := c.ProgramCode(m, p)
	for range 10 {
		assert.Equal(t, code, c.ProgramCode(m, p))
	}
	assert.Contains(t, code, "A=1;B=2;C=;")

	m.Defines["A"] = "3"
	assert.NotEqual(t, code, c.ProgramCode(m, p))
}

func TestAcquireReleaseRefcounts(t *testing.T) {
	rig := newTestRig(t)
	c := rig.r.programs
	m := materials.New(materials.KindBasic)
	shader, ok := ShaderFor(m)
	require.True(t, ok)
	p := c.Parameters(m, rig.r.lights, nil, nil, &rig.r.clipping, nil)
	code := c.ProgramCode(m, p)

	a := c.Acquire(m, shader, p, code)
	b := c.Acquire(m, shader, p, code)
	require.Same(t, a, b)
	assert.Equal(t, 2, a.UsedTimes)
	assert.Equal(t, 1, c.Len())

	c.Release(a)
	assert.Equal(t, 1, c.Len())
	c.Release(b)
	assert.Zero(t, c.Len())
	assert.Equal(t, 1, rig.d.Count("DeleteProgram"))

	fresh := c.Acquire(m, shader, p, code)
	assert.NotSame(t, a, fresh)
	assert.Greater(t, fresh.ID, a.ID)
}

func TestCompileFailureIsNotDrawn(t *testing.T) {
	rig := newTestRig(t)
	rig.d.CompileError = func(stage gpu.ShaderStage, _ string) string {
		if stage == gpu.FragmentShader {
			return "0:12: syntax error"
		}
		return ""
	}
	rig.add(materials.New(materials.KindBasic))
	rig.render()

	assert.Zero(t, rig.d.Count("DrawElements"))
	progs := rig.r.Programs()
	require.Len(t, progs, 1)
	assert.False(t, progs[0].Runnable())
	assert.Equal(t, "0:12: syntax error", progs[0].Diagnostics.Fragment)
	assert.Empty(t, progs[0].Diagnostics.Vertex)
	assert.Equal(t, 1, rig.logs.FilterMessage("shader program failed to build").Len())
}

func TestUnknownIncludeNeverReachesDriver(t *testing.T) {
	rig := newTestRig(t)
	m := materials.NewShader("#include <missing>\nvoid main() {}", "void main() {}", nil, false)
	rig.add(m)
	rig.render()

	progs := rig.r.Programs()
	require.Len(t, progs, 1)
	assert.Contains(t, progs[0].Diagnostics.Source, "missing")
	assert.Zero(t, rig.d.Count("CreateShader"))
	assert.Zero(t, rig.d.Count("DrawElements"))
}

func TestRawShaderGetsOnlyDefines(t *testing.T) {
	rig := newTestRig(t)
	m := materials.NewShader("#version 410 core\nin vec3 position;\nvoid main() {}\n",
		"#version 410 core\nout vec4 c;\nvoid main() { c = vec4(1.0); }\n", nil, true)
	m.Defines = map[string]string{"STRENGTH": "2"}
	rig.add(m)
	rig.render()

	progs := rig.r.Programs()
	require.Len(t, progs, 1)
	vs := progs[0].VertexSource
	assert.True(t, strings.HasPrefix(vs, "#version 410 core\n#define STRENGTH 2\n"), vs)
	assert.NotContains(t, vs, "uniform mat4 modelMatrix")
	assert.Equal(t, 1, rig.d.Count("DrawElements"))
}

func TestShaderNameStaysOutOfProgramCode(t *testing.T) {
	rig := newTestRig(t)
	vs, fs := "void main() { gl_Position = vec4(position, 1.0); }", "void main() {}"
	a := materials.NewShader(vs, fs, nil, false)
	a.Name = "Water Surface"
	b := materials.NewShader(vs, fs, nil, false)
	b.Name = "Lake"
	rig.add(a)
	rig.add(b)
	rig.render()

	require.Len(t, rig.r.Programs(), 1)
	assert.Equal(t, rig.r.programID(a), rig.r.programID(b))
	assert.Contains(t, []string{"water_surface", "lake"}, rig.r.Programs()[0].Name)
	assert.Equal(t, 1, rig.d.Count("CreateProgram"))
}
