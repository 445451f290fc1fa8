package textures

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestNewVersions(t *testing.T) {
	assert.Zero(t, New("empty", 4, 4, nil).Version)

	tex := New("data", 1, 1, []byte{1, 2, 3, 4})
	assert.Equal(t, uint64(1), tex.Version)
	tex.NeedsUpdate()
	assert.Equal(t, uint64(2), tex.Version)

	rt := NewRenderTexture("rt", 8, 8, HalfFloat)
	assert.True(t, rt.RenderTarget)
	assert.False(t, rt.GenerateMipmaps)
	assert.False(t, rt.MinFilter.Mipmapped())
}

func TestPowerOfTwo(t *testing.T) {
	assert.True(t, New("a", 256, 64, nil).IsPowerOfTwo())
	assert.False(t, New("b", 100, 64, nil).IsPowerOfTwo())
	assert.False(t, New("c", 0, 0, nil).IsPowerOfTwo())
}

func TestFlipRows(t *testing.T) {
	px := []byte{
		1, 1, 1, 1,
		2, 2, 2, 2,
		3, 3, 3, 3,
	}
	FlipRows(px, 1, 3)
	assert.Equal(t, []byte{3, 3, 3, 3, 2, 2, 2, 2, 1, 1, 1, 1}, px)
}

func TestResize(t *testing.T) {
	src := make([]byte, 3*3*4)
	for i := range src {
		src[i] = 200
	}
	out := Resize(src, 3, 3, 2, 2)
	require.Len(t, out, 2*2*4)
	assert.Equal(t, byte(200), out[0])
}

func TestLoadAndCube(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	writePNG(t, path, 2, 2, color.RGBA{R: 255, A: 255})

	tex, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tex.Width)
	assert.Equal(t, path, tex.Path)
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Pixels[:4])

	_, err = Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	cube, err := LoadCube("sky", [6]string{path, path, path, path, path, path})
	require.NoError(t, err)
	assert.True(t, cube.Cube)
	assert.Equal(t, 2, cube.Width)

	wide := filepath.Join(dir, "wide.png")
	writePNG(t, wide, 4, 2, color.RGBA{A: 255})
	_, err = LoadCube("bad", [6]string{path, path, wide, path, path, path})
	assert.Error(t, err)
}

func TestManagerSharesTextures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	writePNG(t, path, 1, 1, color.RGBA{G: 255, A: 255})

	m := NewManager()
	a, err := m.Load(path)
	require.NoError(t, err)
	b, err := m.Load(path)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, m.Len())

	solid := NewSolidTexture("white", 255, 255, 255, 255)
	m.Add("white", solid)
	got, ok := m.Get("white")
	assert.True(t, ok)
	assert.Same(t, solid, got)

	assert.Same(t, a, m.Remove(path))
	assert.Equal(t, 1, m.Len())
}
