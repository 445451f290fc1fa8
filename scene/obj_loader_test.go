package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glscene/materials"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
o quad
f 1 2 3 4
`

func TestParseOBJTriangulatesAndComputesNormals(t *testing.T) {
	nodes, err := ParseOBJ(strings.NewReader(quadOBJ), t.TempDir(), nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	n := nodes[0]
	assert.Equal(t, "quad", n.Name)
	assert.Equal(t, KindMesh, n.Kind)
	assert.Equal(t, materials.KindPhong, n.Material.Kind)

	g := n.Geometry
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, g.Index.Data)
	assert.Equal(t, 4, g.Attribute("position").Count())
	assert.Nil(t, g.Attribute("uv"))
	nrm := g.Attribute("normal").Data
	for i := range 4 {
		assert.InDeltaSlice(t, []float32{0, 0, 1}, nrm[3*i:3*i+3], 1e-5)
	}
}

func TestParseOBJObjectsAndNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
o a
f 1/1/1 2/2/1 3/3/1
o b
f -3/-3/1 -2/-2/1 -1/-1/1
`
	nodes, err := ParseOBJ(strings.NewReader(src), t.TempDir(), nil)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0].Name)
	assert.Equal(t, "b", nodes[1].Name)
	assert.Equal(t, nodes[0].Geometry.Attribute("position").Data, nodes[1].Geometry.Attribute("position").Data)
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 1}, nodes[1].Geometry.Attribute("uv").Data)
}

func TestParseOBJWithMaterialLibrary(t *testing.T) {
	dir := t.TempDir()
	mtl := `newmtl red
Kd 1 0 0
Ks 0.5 0.5 0.5
Ns 64
d 0.5
map_Kd missing.png
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.mtl"), []byte(mtl), 0o644))

	src := "mtllib scene.mtl\nusemtl red\n" + quadOBJ
	nodes, err := ParseOBJ(strings.NewReader(src), dir, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	m := nodes[0].Material
	assert.Equal(t, "red", m.Name)
	assert.InDelta(t, 1.0, m.Color.R, 1e-6)
	assert.InDelta(t, 0.0, m.Color.G, 1e-6)
	assert.InDelta(t, 0.5, m.Phong.Specular.R, 1e-6)
	assert.InDelta(t, 64.0, m.Phong.Shininess, 1e-6)
	assert.True(t, m.Transparent)
	assert.Nil(t, m.Map, "unreadable textures are skipped")
}

func TestParseOBJEmpty(t *testing.T) {
	_, err := ParseOBJ(strings.NewReader("# nothing\nv 0 0 0\n"), t.TempDir(), nil)
	assert.Error(t, err)

	_, err = LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"), nil)
	assert.Error(t, err)
}

func TestParseFaceVertex(t *testing.T) {
	assert.Equal(t, [3]int{0, -1, -1}, parseFaceVertex("1", 3, 0, 0))
	assert.Equal(t, [3]int{1, 2, -1}, parseFaceVertex("2/3", 3, 3, 0))
	assert.Equal(t, [3]int{2, -1, 0}, parseFaceVertex("3//1", 3, 0, 1))
	assert.Equal(t, [3]int{2, 1, 0}, parseFaceVertex("-1/-2/-3", 3, 3, 3))
}
