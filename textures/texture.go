// Package textures holds CPU-side texture data and the loaders that fill it.
// GPU residency is managed by the renderer, which tracks each texture through
// Handle and re-uploads whenever Version moves.
package textures

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type Wrap int

const (
	ClampToEdge Wrap = iota
	Repeat
	MirroredRepeat
)

type Filter int

const (
	Linear Filter = iota
	Nearest
	NearestMipmapNearest
	NearestMipmapLinear
	LinearMipmapNearest
	LinearMipmapLinear
)

// Mipmapped reports whether the filter samples mip levels.
func (f Filter) Mipmapped() bool { return f >= NearestMipmapNearest }

type Format int

const (
	FormatRGBA Format = iota
	FormatRGB
	FormatDepth
)

type DataType int

const (
	UnsignedByte DataType = iota
	HalfFloat
	Float
)

// Encoding is the color space texels are stored in.
type Encoding int

const (
	LinearEncoding Encoding = iota
	SRGBEncoding
	GammaEncoding
)

func (e Encoding) String() string {
	switch e {
	case SRGBEncoding:
		return "sRGB"
	case GammaEncoding:
		return "Gamma"
	default:
		return "Linear"
	}
}

// Mapping selects how environment textures are sampled.
type Mapping int

const (
	UVMapping Mapping = iota
	CubeReflectionMapping
	CubeRefractionMapping
)

var idCounter atomic.Uint32

// Texture is a 2D or cube texture.
type Texture struct {
	ID   uint32
	Name string
	Path string

	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	// Faces holds the six RGBA8 faces of a cube texture (+X -X +Y -Y +Z -Z).
	Faces [6][]byte
	Cube  bool

	Format   Format
	Type     DataType
	Encoding Encoding
	Mapping  Mapping

	WrapS, WrapT         Wrap
	MinFilter, MagFilter Filter
	GenerateMipmaps      bool
	FlipY                bool

	Offset mgl32.Vec2
	Repeat mgl32.Vec2

	// RenderTarget marks storage that is allocated and written by a render
	// target rather than uploaded from Pixels.
	RenderTarget bool

	// Version increments whenever the data or sampling parameters change.
	// Zero means "no data yet" and the texture is bound empty.
	Version uint64
	// Handle is the renderer's slot for this texture; zero until first use.
	Handle int
}

func newTexture(name string) *Texture {
	return &Texture{
		ID:              idCounter.Add(1),
		Name:            name,
		MinFilter:       LinearMipmapLinear,
		MagFilter:       Linear,
		GenerateMipmaps: true,
		Repeat:          mgl32.Vec2{1, 1},
	}
}

// New creates an RGBA8 2D texture from pixels. A nil pixels slice leaves the
// texture at Version 0 until data arrives.
func New(name string, width, height int, pixels []byte) *Texture {
	t := newTexture(name)
	t.Width, t.Height, t.Pixels = width, height, pixels
	if pixels != nil {
		t.Version = 1
	}
	return t
}

// NewCube creates a cube texture from six square RGBA8 faces of size×size.
func NewCube(name string, size int, faces [6][]byte) *Texture {
	t := newTexture(name)
	t.Cube = true
	t.Width, t.Height, t.Faces = size, size, faces
	t.Mapping = CubeReflectionMapping
	t.Version = 1
	return t
}

// NewRenderTexture creates storage-only texture for a render target.
func NewRenderTexture(name string, width, height int, typ DataType) *Texture {
	t := newTexture(name)
	t.Width, t.Height = width, height
	t.Type = typ
	t.RenderTarget = true
	t.MinFilter = Linear
	t.GenerateMipmaps = false
	t.Version = 1
	return t
}

// NewDepthTexture creates depth storage a render target can attach and
// later passes can sample.
func NewDepthTexture(name string, width, height int) *Texture {
	t := NewRenderTexture(name, width, height, UnsignedByte)
	t.Format = FormatDepth
	t.MinFilter, t.MagFilter = Nearest, Nearest
	return t
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	t := New(name, 1, 1, []byte{r, g, b, a})
	t.MinFilter = Nearest
	t.MagFilter = Nearest
	t.GenerateMipmaps = false
	return t
}

// NeedsUpdate flags the texture for re-upload on the next frame.
func (t *Texture) NeedsUpdate() { t.Version++ }

// IsPowerOfTwo reports whether both dimensions are powers of two.
func (t *Texture) IsPowerOfTwo() bool {
	return isPow2(t.Width) && isPow2(t.Height)
}

func isPow2(v int) bool { return v > 0 && v&(v-1) == 0 }

// Resize returns a copy of an RGBA8 image scaled to width×height.
func Resize(pixels []byte, srcW, srcH, width, height int) []byte {
	src := &image.RGBA{Pix: pixels, Stride: srcW * 4, Rect: image.Rect(0, 0, srcW, srcH)}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst.Pix
}

// FlipRows flips an RGBA8 image vertically in place.
func FlipRows(pixels []byte, width, height int) {
	stride := width * 4
	tmp := make([]byte, stride)
	for y := 0; y < height/2; y++ {
		a := pixels[y*stride : (y+1)*stride]
		b := pixels[(height-1-y)*stride : (height-y)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// Decode reads an image in any registered format (PNG, JPEG, GIF, BMP, TIFF,
// WebP) and converts it to RGBA8.
func Decode(img image.Image) (pixels []byte, width, height int) {
	bounds := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == bounds.Dx()*4 && bounds.Min == (image.Point{}) {
		return rgba.Pix, bounds.Dx(), bounds.Dy()
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba.Pix, bounds.Dx(), bounds.Dy()
}

// Load reads an image file from disk and returns a CPU-side Texture.
func Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	pixels, w, h := Decode(img)
	t := New(path, w, h, pixels)
	t.Path = path
	return t, nil
}

// LoadCube reads six face images of equal square size.
func LoadCube(name string, paths [6]string) (*Texture, error) {
	var faces [6][]byte
	size := 0
	for i, p := range paths {
		face, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("cube %q face %d: %w", name, i, err)
		}
		if face.Width != face.Height || (size != 0 && face.Width != size) {
			return nil, fmt.Errorf("cube %q face %d: %dx%d is not a matching square", name, i, face.Width, face.Height)
		}
		size = face.Width
		faces[i] = face.Pixels
	}
	return NewCube(name, size, faces), nil
}
