package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glscene/core"
)

func TestKindTables(t *testing.T) {
	for k := range KindCount {
		assert.NotEqual(t, "Unknown", k.String())
		if k.Custom() {
			assert.Empty(t, k.ShaderID(), k.String())
		} else {
			assert.NotEmpty(t, k.ShaderID(), k.String())
		}
	}
	assert.Equal(t, "Unknown", KindCount.String())
	assert.Empty(t, Kind(-1).ShaderID())
}

func TestNewDefaults(t *testing.T) {
	m := New(KindPhong)
	assert.True(t, m.Lights)
	assert.True(t, m.Fog)
	assert.Equal(t, float32(30), m.Phong.Shininess)
	assert.Equal(t, NormalBlending, m.Blending)
	assert.True(t, m.DepthTest && m.DepthWrite && m.ColorWrite)

	d := New(KindDepth)
	assert.False(t, d.Lights)
	assert.False(t, d.Fog)

	s := NewShader("void main(){}", "void main(){}", nil, true)
	assert.Equal(t, KindRawShader, s.Kind)
	require.NotNil(t, s.Shader.Uniforms)
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewStandard(core.ColorWhite, 0.2, 0.7)
	m.Defines = map[string]string{"A": "1"}
	m.Handle = 7
	m.NeedsUpdate()

	c := m.Clone()
	assert.NotEqual(t, m.ID, c.ID)
	assert.Zero(t, c.Handle)
	assert.Equal(t, uint64(1), c.Version)
	assert.Equal(t, m.Standard, c.Standard)

	c.Defines["A"] = "2"
	assert.Equal(t, "1", m.Defines["A"])
}

func TestCloneCopiesShaderUniforms(t *testing.T) {
	m := NewShader("void main() {}", "void main() {}", map[string]any{"time": float32(1)}, false)
	c := m.Clone()
	assert.Nil(t, c.Defines)

	c.Shader.Uniforms["time"] = float32(2)
	c.Shader.Uniforms["extra"] = 1
	assert.Equal(t, float32(1), m.Shader.Uniforms["time"])
	assert.NotContains(t, m.Shader.Uniforms, "extra")
	assert.Equal(t, m.Shader.VertexShader, c.Shader.VertexShader)
}
