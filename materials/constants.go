package materials

// Side selects which triangle faces are drawn.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Blending selects a predefined blend mode or CustomBlending.
type Blending int

const (
	NoBlending Blending = iota
	NormalBlending
	AdditiveBlending
	SubtractiveBlending
	MultiplyBlending
	CustomBlending
)

type BlendEquation int

const (
	AddEquation BlendEquation = iota
	SubtractEquation
	ReverseSubtractEquation
	MinEquation
	MaxEquation
)

type BlendFactor int

const (
	ZeroFactor BlendFactor = iota
	OneFactor
	SrcColorFactor
	OneMinusSrcColorFactor
	SrcAlphaFactor
	OneMinusSrcAlphaFactor
	DstAlphaFactor
	OneMinusDstAlphaFactor
	DstColorFactor
	OneMinusDstColorFactor
	SrcAlphaSaturateFactor
)

type DepthFunc int

const (
	LessEqualDepth DepthFunc = iota
	NeverDepth
	AlwaysDepth
	LessDepth
	EqualDepth
	GreaterEqualDepth
	GreaterDepth
	NotEqualDepth
)

// VertexColors selects per-vertex color sourcing.
type VertexColors int

const (
	NoColors VertexColors = iota
	FaceColors
	VertexColorsOn
)

// DepthPacking selects how the depth material writes depth.
type DepthPacking int

const (
	BasicDepthPacking DepthPacking = iota
	RGBADepthPacking
)

// Combine selects how an environment map mixes with the surface color.
type Combine int

const (
	MultiplyOperation Combine = iota
	MixOperation
	AddOperation
)
