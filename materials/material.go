// Package materials describes surface appearance. A Material is a tagged
// variant: Kind selects the shading model and which parameter group is read,
// the rest of the struct is shared state every kind understands.
package materials

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/maps"

	"glscene/core"
	"glscene/textures"
)

// Kind is the closed set of supported material variants.
type Kind int

const (
	KindBasic Kind = iota
	KindLambert
	KindPhong
	KindStandard
	KindNormal
	KindDepth
	KindDistance
	KindPoints
	KindLineBasic
	KindLineDashed
	KindSprite
	KindShader
	KindRawShader

	// KindCount is the number of kinds; tables indexed by Kind use it.
	KindCount
)

var kindNames = [KindCount]string{
	"Basic", "Lambert", "Phong", "Standard", "Normal", "Depth", "Distance",
	"Points", "LineBasic", "LineDashed", "Sprite", "Shader", "RawShader",
}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return "Unknown"
	}
	return kindNames[k]
}

// shaderIDs names the built-in shader program each kind compiles to. Custom
// shader kinds have none.
var shaderIDs = [KindCount]string{
	KindBasic:      "basic",
	KindLambert:    "lambert",
	KindPhong:      "phong",
	KindStandard:   "physical",
	KindNormal:     "normal",
	KindDepth:      "depth",
	KindDistance:   "distanceRGBA",
	KindPoints:     "points",
	KindLineBasic:  "basic",
	KindLineDashed: "dashed",
	KindSprite:     "sprite",
}

// ShaderID returns the built-in shader id, or "" for custom shaders.
func (k Kind) ShaderID() string {
	if k < 0 || k >= KindCount {
		return ""
	}
	return shaderIDs[k]
}

// Custom reports whether the kind carries its own shader sources.
func (k Kind) Custom() bool { return k == KindShader || k == KindRawShader }

// Lit reports whether the kind reads the scene lights by default.
func (k Kind) Lit() bool {
	return k == KindLambert || k == KindPhong || k == KindStandard
}

var idCounter atomic.Uint32

// Material is shared by any number of nodes.
type Material struct {
	ID   uint32
	Name string
	Kind Kind

	// ── Surface ──

	Color       core.Color
	Opacity     float32
	Transparent bool
	AlphaTest   float32
	Visible     bool

	Map               *textures.Texture
	AlphaMap          *textures.Texture
	AOMap             *textures.Texture
	AOIntensity       float32
	LightMap          *textures.Texture
	LightMapIntensity float32
	SpecularMap       *textures.Texture
	GradientMap       *textures.Texture

	EnvMap          *textures.Texture
	Combine         Combine
	Reflectivity    float32
	RefractionRatio float32

	Emissive          core.Color
	EmissiveIntensity float32
	EmissiveMap       *textures.Texture

	BumpMap           *textures.Texture
	BumpScale         float32
	NormalMap         *textures.Texture
	NormalScale       mgl32.Vec2
	DisplacementMap   *textures.Texture
	DisplacementScale float32
	DisplacementBias  float32

	VertexColors       VertexColors
	FlatShading        bool
	Skinning           bool
	MorphTargets       bool
	MorphNormals       bool
	Fog                bool
	Lights             bool
	Dithering          bool
	Wireframe          bool
	WireframeLinewidth float32

	// ── Pipeline state ──

	Side               Side
	Blending           Blending
	BlendEquation      BlendEquation
	BlendSrc           BlendFactor
	BlendDst           BlendFactor
	BlendEquationAlpha *BlendEquation
	BlendSrcAlpha      *BlendFactor
	BlendDstAlpha      *BlendFactor
	PremultipliedAlpha bool

	DepthFunc  DepthFunc
	DepthTest  bool
	DepthWrite bool
	ColorWrite bool

	PolygonOffset       bool
	PolygonOffsetFactor float32
	PolygonOffsetUnits  float32

	ClippingPlanes   []core.Plane
	ClipIntersection bool
	ClipShadows      bool

	// Precision overrides the renderer precision ("highp", "mediump", "lowp").
	Precision string
	// Defines are emitted as #define NAME VALUE into both shader stages.
	Defines map[string]string

	// ── Per-kind parameters ──

	Phong    PhongParams
	Standard StandardParams
	Depth    DepthParams
	Distance DistanceParams
	Points   PointsParams
	Line     LineParams
	Sprite   SpriteParams
	Shader   ShaderParams

	// Version increments whenever a change requires a program rebuild.
	Version uint64
	// Handle is the renderer's slot for this material; zero until first use.
	Handle int
}

type PhongParams struct {
	Specular  core.Color
	Shininess float32
	Toon      bool
}

type StandardParams struct {
	Roughness          float32
	Metalness          float32
	RoughnessMap       *textures.Texture
	MetalnessMap       *textures.Texture
	EnvMapIntensity    float32
	ClearCoat          float32
	ClearCoatRoughness float32
	// Physical selects the clearcoat-capable variant.
	Physical bool
}

type DepthParams struct {
	Packing DepthPacking
}

type DistanceParams struct {
	ReferencePosition mgl32.Vec3
	Near, Far         float32
}

type PointsParams struct {
	Size            float32
	SizeAttenuation bool
}

type LineParams struct {
	Width    float32
	DashSize float32
	GapSize  float32
	Scale    float32
}

type SpriteParams struct {
	Rotation float32
}

// ShaderParams carries the sources and uniforms of KindShader and
// KindRawShader materials. Uniform values use the same Go types the built-in
// materials do (float32, mgl32 vectors and matrices, core.Color,
// *textures.Texture and slices of them).
type ShaderParams struct {
	VertexShader   string
	FragmentShader string
	Uniforms       map[string]any
	// Extensions selects derivative and fragment-depth support.
	Derivatives bool
	FragDepth   bool
}

// New returns a material of the given kind with the shared defaults.
func New(kind Kind) *Material {
	m := &Material{
		ID:                 idCounter.Add(1),
		Kind:               kind,
		Color:              core.ColorWhite,
		Opacity:            1,
		Visible:            true,
		AOIntensity:        1,
		LightMapIntensity:  1,
		Reflectivity:       1,
		RefractionRatio:    0.98,
		Emissive:           core.ColorBlack,
		EmissiveIntensity:  1,
		BumpScale:          1,
		NormalScale:        mgl32.Vec2{1, 1},
		DisplacementScale:  1,
		Fog:                true,
		Lights:             kind.Lit(),
		WireframeLinewidth: 1,
		Blending:           NormalBlending,
		BlendSrc:           SrcAlphaFactor,
		BlendDst:           OneMinusSrcAlphaFactor,
		DepthTest:          true,
		DepthWrite:         true,
		ColorWrite:         true,
		Version:            1,
	}
	switch kind {
	case KindPhong:
		m.Phong = PhongParams{Specular: core.Hex(0x111111), Shininess: 30}
	case KindStandard:
		m.Standard = StandardParams{Roughness: 0.5, Metalness: 0.5, EnvMapIntensity: 1}
	case KindDepth, KindNormal:
		m.Fog = false
	case KindDistance:
		m.Fog = false
		m.Distance = DistanceParams{Near: 1, Far: 1000}
	case KindPoints:
		m.Points = PointsParams{Size: 1, SizeAttenuation: true}
	case KindLineBasic, KindLineDashed:
		m.Line = LineParams{Width: 1, DashSize: 3, GapSize: 1, Scale: 1}
	case KindSprite:
		m.Fog = false
	case KindShader, KindRawShader:
		m.Fog = false
		m.Shader.Uniforms = make(map[string]any)
	}
	return m
}

// NewBasic returns an unlit material.
func NewBasic(color core.Color) *Material {
	m := New(KindBasic)
	m.Color = color
	return m
}

// NewPhong returns a Blinn-Phong material.
func NewPhong(color core.Color, shininess float32) *Material {
	m := New(KindPhong)
	m.Color = color
	m.Phong.Shininess = shininess
	return m
}

// NewStandard returns a metalness/roughness material.
func NewStandard(color core.Color, metalness, roughness float32) *Material {
	m := New(KindStandard)
	m.Color = color
	m.Standard.Metalness = metalness
	m.Standard.Roughness = roughness
	return m
}

// NewShader returns a custom-shader material. Raw materials get no built-in
// prefix and must declare everything themselves.
func NewShader(vertex, fragment string, uniforms map[string]any, raw bool) *Material {
	kind := KindShader
	if raw {
		kind = KindRawShader
	}
	m := New(kind)
	m.Shader.VertexShader = vertex
	m.Shader.FragmentShader = fragment
	if uniforms != nil {
		m.Shader.Uniforms = uniforms
	}
	return m
}

// NeedsUpdate flags the material for a program rebuild on its next draw.
// Plain uniform-valued fields (colors, scalars, texture contents) do not need
// it; feature changes (a map appearing, a define, a flag) do.
func (m *Material) NeedsUpdate() { m.Version++ }

// Clone copies the material into a new identity. The renderer handle and
// version are not carried over.
func (m *Material) Clone() *Material {
	c := *m
	c.ID = idCounter.Add(1)
	c.Handle = 0
	c.Version = 1
	c.Defines = maps.Clone(m.Defines)
	c.Shader.Uniforms = maps.Clone(m.Shader.Uniforms)
	c.ClippingPlanes = append([]core.Plane(nil), m.ClippingPlanes...)
	return &c
}
