// Package gpu defines the graphics device the renderer issues commands to.
//
// Enumerations carry the numeric values of their OpenGL counterparts so a GL
// backend can pass them through unchanged. Other backends translate.
package gpu

// Handle names a driver-side object (buffer, texture, shader, program,
// framebuffer, renderbuffer). Zero is "no object".
type Handle uint32

// Capability is a toggleable pipeline feature.
type Capability uint32

const (
	Blend                 Capability = 0x0BE2
	CullFace              Capability = 0x0B44
	DepthTest             Capability = 0x0B71
	StencilTest           Capability = 0x0B90
	ScissorTest           Capability = 0x0C11
	PolygonOffsetFill     Capability = 0x8037
	SampleAlphaToCoverage Capability = 0x809E
)

type BlendEquation uint32

const (
	FuncAdd             BlendEquation = 0x8006
	FuncSubtract        BlendEquation = 0x800A
	FuncReverseSubtract BlendEquation = 0x800B
	Min                 BlendEquation = 0x8007
	Max                 BlendEquation = 0x8008
)

type BlendFactor uint32

const (
	Zero             BlendFactor = 0
	One              BlendFactor = 1
	SrcColor         BlendFactor = 0x0300
	OneMinusSrcColor BlendFactor = 0x0301
	SrcAlpha         BlendFactor = 0x0302
	OneMinusSrcAlpha BlendFactor = 0x0303
	DstAlpha         BlendFactor = 0x0304
	OneMinusDstAlpha BlendFactor = 0x0305
	DstColor         BlendFactor = 0x0306
	OneMinusDstColor BlendFactor = 0x0307
	SrcAlphaSaturate BlendFactor = 0x0308
)

// CompareFunc is used by depth and stencil tests.
type CompareFunc uint32

const (
	Never    CompareFunc = 0x0200
	Less     CompareFunc = 0x0201
	Equal    CompareFunc = 0x0202
	Lequal   CompareFunc = 0x0203
	Greater  CompareFunc = 0x0204
	Notequal CompareFunc = 0x0205
	Gequal   CompareFunc = 0x0206
	Always   CompareFunc = 0x0207
)

type StencilOp uint32

const (
	Keep     StencilOp = 0x1E00
	Replace  StencilOp = 0x1E01
	Incr     StencilOp = 0x1E02
	Decr     StencilOp = 0x1E03
	Invert   StencilOp = 0x150A
	IncrWrap StencilOp = 0x8507
	DecrWrap StencilOp = 0x8508
	ZeroOp   StencilOp = 0
)

type Face uint32

const (
	Front        Face = 0x0404
	Back         Face = 0x0405
	FrontAndBack Face = 0x0408
)

type Winding uint32

const (
	CW  Winding = 0x0900
	CCW Winding = 0x0901
)

// ClearMask selects the buffers cleared by Driver.Clear.
type ClearMask uint32

const (
	ColorBufferBit   ClearMask = 0x4000
	DepthBufferBit   ClearMask = 0x0100
	StencilBufferBit ClearMask = 0x0400
)

type TextureTarget uint32

const (
	Texture2D          TextureTarget = 0x0DE1
	TextureCubeMap     TextureTarget = 0x8513
	TextureCubeMapPosX TextureTarget = 0x8515
)

// CubeFace returns the target of cube map face i (0..5, +X -X +Y -Y +Z -Z).
func CubeFace(i int) TextureTarget { return TextureCubeMapPosX + TextureTarget(i) }

type TextureParam uint32

const (
	TextureMagFilter   TextureParam = 0x2800
	TextureMinFilter   TextureParam = 0x2801
	TextureWrapS       TextureParam = 0x2802
	TextureWrapT       TextureParam = 0x2803
	TextureCompareMode TextureParam = 0x884C
	TextureCompareFunc TextureParam = 0x884D
)

// Values for TextureParam.
const (
	Nearest              int32 = 0x2600
	Linear               int32 = 0x2601
	NearestMipmapNearest int32 = 0x2700
	LinearMipmapNearest  int32 = 0x2701
	NearestMipmapLinear  int32 = 0x2702
	LinearMipmapLinear   int32 = 0x2703
	Repeat               int32 = 0x2901
	ClampToEdge          int32 = 0x812F
	MirroredRepeat       int32 = 0x8370
	CompareRefToTexture  int32 = 0x884E
)

type PixelFormat uint32

const (
	Alpha          PixelFormat = 0x1906
	RGB            PixelFormat = 0x1907
	RGBA           PixelFormat = 0x1908
	Luminance      PixelFormat = 0x1909
	DepthComponent PixelFormat = 0x1902
	// DepthComponent24 is an internal format only.
	DepthComponent24 PixelFormat = 0x81A6
	DepthStencil   PixelFormat = 0x84F9
	RGBA16F        PixelFormat = 0x881A
)

type DataType uint32

const (
	Byte          DataType = 0x1400
	UnsignedByte  DataType = 0x1401
	Short         DataType = 0x1402
	UnsignedShort DataType = 0x1403
	Int           DataType = 0x1404
	UnsignedInt   DataType = 0x1405
	Float         DataType = 0x1406
	HalfFloat     DataType = 0x140B
)

// Size returns the byte size of one component.
func (t DataType) Size() int {
	switch t {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort, HalfFloat:
		return 2
	default:
		return 4
	}
}

type BufferTarget uint32

const (
	ArrayBuffer        BufferTarget = 0x8892
	ElementArrayBuffer BufferTarget = 0x8893
)

type BufferUsage uint32

const (
	StaticDraw  BufferUsage = 0x88E4
	DynamicDraw BufferUsage = 0x88E8
)

type ShaderStage uint32

const (
	VertexShader   ShaderStage = 0x8B31
	FragmentShader ShaderStage = 0x8B30
)

func (s ShaderStage) String() string {
	if s == VertexShader {
		return "vertex"
	}
	return "fragment"
}

// Precision names a shader float precision qualifier.
type Precision uint32

const (
	LowFloat    Precision = 0x8DF0
	MediumFloat Precision = 0x8DF1
	HighFloat   Precision = 0x8DF2
)

type Attachment uint32

const (
	ColorAttachment0       Attachment = 0x8CE0
	DepthAttachment        Attachment = 0x8D00
	StencilAttachment      Attachment = 0x8D20
	DepthStencilAttachment Attachment = 0x821A
)

type RenderbufferFormat uint32

const (
	DepthComponent16 RenderbufferFormat = 0x81A5
	StencilIndex8    RenderbufferFormat = 0x8D48
	Depth24Stencil8  RenderbufferFormat = 0x88F0
)

type DrawMode uint32

const (
	Points        DrawMode = 0x0000
	Lines         DrawMode = 0x0001
	LineLoop      DrawMode = 0x0002
	LineStrip     DrawMode = 0x0003
	Triangles     DrawMode = 0x0004
	TriangleStrip DrawMode = 0x0005
	TriangleFan   DrawMode = 0x0006
)

// UniformType is the reflected type code of an active uniform or attribute.
type UniformType uint32

const (
	TypeFloat           UniformType = 0x1406
	TypeVec2            UniformType = 0x8B50
	TypeVec3            UniformType = 0x8B51
	TypeVec4            UniformType = 0x8B52
	TypeInt             UniformType = 0x1404
	TypeIVec2           UniformType = 0x8B53
	TypeIVec3           UniformType = 0x8B54
	TypeIVec4           UniformType = 0x8B55
	TypeBool            UniformType = 0x8B56
	TypeBVec2           UniformType = 0x8B57
	TypeBVec3           UniformType = 0x8B58
	TypeBVec4           UniformType = 0x8B59
	TypeMat2            UniformType = 0x8B5A
	TypeMat3            UniformType = 0x8B5B
	TypeMat4            UniformType = 0x8B5C
	TypeSampler2D       UniformType = 0x8B5E
	TypeSamplerCube     UniformType = 0x8B60
	TypeSampler2DShadow UniformType = 0x8B62
)

// ActiveInfo describes one reflected uniform or attribute. Arrays come back
// with a "[0]" suffixed Name and Size > 1.
type ActiveInfo struct {
	Name     string
	Type     UniformType
	Size     int
	Location int32
}

// Limit names a device limit queried with Driver.Limit.
type Limit uint32

const (
	MaxTextureImageUnits       Limit = 0x8872
	MaxVertexTextureImageUnits Limit = 0x8B4C
	MaxTextureSize             Limit = 0x0D33
	MaxCubeMapTextureSize      Limit = 0x851C
	MaxVertexAttribs           Limit = 0x8869
	MaxVertexUniformVectors    Limit = 0x8DFB
	MaxVaryingVectors          Limit = 0x8DFC
	MaxFragmentUniformVectors  Limit = 0x8DFD
)
