package renderer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chewxy/math32"
	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"glscene/gpu"
	"glscene/materials"
	"glscene/renderer/shaderlib"
	"glscene/scene"
	"glscene/textures"
)

// ProgramParameters is everything that selects a program variant. Two
// materials with equal parameters, defines and shader share a program.
type ProgramParameters struct {
	ShaderID   string
	ShaderName string
	Raw        bool
	Standard   bool
	Precision  string

	VertexTextures bool

	Map                 bool
	MapEncoding         textures.Encoding
	EnvMap              bool
	EnvMapMode          textures.Mapping
	EnvMapEncoding      textures.Encoding
	Combine             materials.Combine
	LightMap            bool
	AOMap               bool
	EmissiveMap         bool
	EmissiveMapEncoding textures.Encoding
	BumpMap             bool
	NormalMap           bool
	DisplacementMap     bool
	SpecularMap         bool
	RoughnessMap        bool
	MetalnessMap        bool
	AlphaMap            bool
	GradientMap         bool
	Toon                bool
	OutputEncoding      textures.Encoding

	VertexColors           bool
	UseFog                 bool
	FogExp2                bool
	FlatShading            bool
	SizeAttenuation        bool
	LogarithmicDepthBuffer bool

	Skinning        bool
	MaxBones        int
	MorphTargets    bool
	MorphNormals    bool
	MaxMorphTargets int
	MaxMorphNormals int

	NumDirLights   int
	NumPointLights int
	NumSpotLights  int
	NumHemiLights  int

	NumClippingPlanes   int
	NumClipIntersection int

	ShadowMapEnabled bool
	ShadowMapType    ShadowType

	ToneMapping             ToneMapping
	PhysicallyCorrectLights bool
	PremultipliedAlpha      bool
	AlphaTest               float32
	DoubleSided             bool
	FlipSided               bool
	DepthPacking            int
	Dithering               bool
	GammaFactor             float32
}

// Depth packing values as seen by the depth shader.
const (
	basicDepthPackingDefine = 3200
	rgbaDepthPackingDefine  = 3201
)

// Programs is the program cache.
type Programs struct {
	// OutputEncoding is the encoding of the current render target, set by the
	// renderer whenever the target changes.
	OutputEncoding textures.Encoding

	d      gpu.Driver
	caps   *Capabilities
	cfg    *Config
	log    *zap.Logger
	list   []*Program
	byCode map[string]*Program
	nextID int
}

func newPrograms(d gpu.Driver, caps *Capabilities, cfg *Config, log *zap.Logger) *Programs {
	return &Programs{d: d, caps: caps, cfg: cfg, log: log, byCode: make(map[string]*Program)}
}

// maxBones is the bone budget for a skeleton given the uniform limits.
func (c *Programs) maxBones(object *scene.Node) int {
	if object == nil || object.Skeleton == nil {
		return 0
	}
	bones := len(object.Skeleton.Bones)
	// Four vec4 per matrix; leave room for the other vertex uniforms.
	budget := int(math32.Floor(float32(c.caps.MaxVertexUniforms-20) / 4))
	if budget < bones {
		c.log.Warn("skeleton exceeds bone budget, clamping",
			zap.String("object", object.Name), zap.Int("bones", bones), zap.Int("max", budget))
		return max(budget, 0)
	}
	return bones
}

func textureEncoding(t *textures.Texture, gammaOverrideLinear bool) textures.Encoding {
	if t == nil {
		return textures.LinearEncoding
	}
	if t.Encoding == textures.LinearEncoding && gammaOverrideLinear {
		return textures.GammaEncoding
	}
	return t.Encoding
}

// Parameters derives the variant parameters of m drawn on object with the
// frame's lights, shadows, fog and clipping state.
func (c *Programs) Parameters(m *materials.Material, lights *LightState, shadows []*scene.Node, fog *scene.Fog, clipping *Clipping, object *scene.Node) ProgramParameters {
	precision := c.caps.Precision
	if m.Precision != "" {
		precision = c.caps.MaxPrecision(c.d, m.Precision)
		if precision != m.Precision {
			c.log.Warn("material precision not supported, using lower",
				zap.String("material", m.Name), zap.String("requested", m.Precision), zap.String("using", precision))
		}
	}

	p := ProgramParameters{
		ShaderID:  m.Kind.ShaderID(),
		Raw:       m.Kind == materials.KindRawShader,
		Standard:  m.Kind == materials.KindStandard && !m.Standard.Physical,
		Precision: precision,

		VertexTextures: c.caps.VertexTextures,

		Map:                 m.Map != nil,
		MapEncoding:         textureEncoding(m.Map, c.cfg.GammaInput),
		EnvMap:              m.EnvMap != nil,
		EnvMapEncoding:      textureEncoding(m.EnvMap, c.cfg.GammaInput),
		Combine:             m.Combine,
		LightMap:            m.LightMap != nil,
		AOMap:               m.AOMap != nil,
		EmissiveMap:         m.EmissiveMap != nil,
		EmissiveMapEncoding: textureEncoding(m.EmissiveMap, c.cfg.GammaInput),
		BumpMap:             m.BumpMap != nil,
		NormalMap:           m.NormalMap != nil,
		DisplacementMap:     m.DisplacementMap != nil,
		SpecularMap:         m.SpecularMap != nil,
		RoughnessMap:        m.Standard.RoughnessMap != nil,
		MetalnessMap:        m.Standard.MetalnessMap != nil,
		AlphaMap:            m.AlphaMap != nil,
		GradientMap:         m.GradientMap != nil,
		Toon:                m.Kind == materials.KindPhong && m.Phong.Toon,
		OutputEncoding:      c.OutputEncoding,

		VertexColors:           m.VertexColors != materials.NoColors,
		UseFog:                 m.Fog && fog != nil,
		FogExp2:                m.Fog && fog != nil && fog.Kind == scene.FogExp2,
		FlatShading:            m.FlatShading,
		SizeAttenuation:        m.Kind == materials.KindPoints && m.Points.SizeAttenuation,
		LogarithmicDepthBuffer: c.caps.LogarithmicDepthBuffer,

		MaxMorphTargets: c.cfg.MaxMorphTargets,
		MaxMorphNormals: c.cfg.MaxMorphNormals,

		ToneMapping:             c.cfg.ToneMapping,
		PhysicallyCorrectLights: c.cfg.PhysicallyCorrectLights,
		PremultipliedAlpha:      m.PremultipliedAlpha,
		AlphaTest:               m.AlphaTest,
		DoubleSided:             m.Side == materials.DoubleSide,
		FlipSided:               m.Side == materials.BackSide,
		Dithering:               m.Dithering,
		GammaFactor:             c.cfg.GammaFactor,
	}
	if m.EnvMap != nil {
		p.EnvMapMode = m.EnvMap.Mapping
	}

	switch {
	case p.ShaderID != "":
		p.ShaderName = p.ShaderID
	case m.Name != "":
		p.ShaderName = strcase.ToSnake(m.Name)
	case p.Raw:
		p.ShaderName = "raw_shader_material"
	default:
		p.ShaderName = "shader_material"
	}

	if m.Skinning && object != nil && object.Skeleton != nil {
		p.MaxBones = c.maxBones(object)
		p.Skinning = p.MaxBones > 0
	}
	if object != nil && object.Geometry != nil {
		p.MorphTargets = m.MorphTargets && len(object.Geometry.MorphAttributes["position"]) > 0
		p.MorphNormals = m.MorphNormals && len(object.Geometry.MorphAttributes["normal"]) > 0
	}

	if m.Lights && lights != nil {
		p.NumDirLights = len(lights.Directional)
		p.NumPointLights = len(lights.Point)
		p.NumSpotLights = len(lights.Spot)
		p.NumHemiLights = len(lights.Hemi)
	}
	if clipping != nil {
		p.NumClippingPlanes = clipping.NumPlanes
		p.NumClipIntersection = clipping.NumIntersection
	}

	p.ShadowMapEnabled = c.cfg.Shadows.Enabled && len(shadows) > 0
	p.ShadowMapType = c.cfg.Shadows.Type

	if m.Kind == materials.KindDepth {
		p.DepthPacking = basicDepthPackingDefine
		if m.Depth.Packing == materials.RGBADepthPacking {
			p.DepthPacking = rgbaDepthPackingDefine
		}
	}
	return p
}

func sortedKeys(m map[string]string) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// ProgramCode is the cache key of a variant: the shader id (or the custom
// sources), the material defines in name order, then every parameter but the
// shader name. Custom shaders that differ only in name share a program, which
// keeps the name of the first material compiled.
func (c *Programs) ProgramCode(m *materials.Material, p ProgramParameters) string {
	p.ShaderName = ""
	var b strings.Builder
	if p.ShaderID != "" {
		b.WriteString(p.ShaderID)
	} else {
		b.WriteString(m.Shader.VertexShader)
		b.WriteString(m.Shader.FragmentShader)
	}
	b.WriteByte('|')
	for _, name := range sortedKeys(m.Defines) {
		fmt.Fprintf(&b, "%s=%s;", name, m.Defines[name])
	}
	fmt.Fprintf(&b, "|%+v", p)
	return b.String()
}

// ShaderFor returns the template compiled for m: the built-in shader of its
// kind, or the material's own sources.
func ShaderFor(m *materials.Material) (shaderlib.Shader, bool) {
	if id := m.Kind.ShaderID(); id != "" {
		return shaderlib.Get(id)
	}
	if !m.Kind.Custom() {
		return shaderlib.Shader{}, false
	}
	return shaderlib.Shader{
		Vertex:   m.Shader.VertexShader,
		Fragment: m.Shader.FragmentShader,
		Uniforms: func() map[string]any { return maps.Clone(m.Shader.Uniforms) },
	}, true
}

// Acquire returns the program for code, building it on a miss.
func (c *Programs) Acquire(m *materials.Material, shader shaderlib.Shader, p ProgramParameters, code string) *Program {
	if prog, ok := c.byCode[code]; ok {
		prog.UsedTimes++
		return prog
	}
	c.nextID++
	prog := newProgram(c.d, c.nextID, code, &p, m.Defines, shader.Vertex, shader.Fragment, c.log)
	prog.UsedTimes = 1
	c.list = append(c.list, prog)
	c.byCode[code] = prog
	c.log.Debug("program built", zap.Int("id", prog.ID), zap.String("name", prog.Name),
		zap.Bool("runnable", prog.Runnable()))
	return prog
}

// Release drops one user of prog and destroys it when none remain.
func (c *Programs) Release(prog *Program) {
	if prog == nil {
		return
	}
	prog.UsedTimes--
	if prog.UsedTimes > 0 {
		return
	}
	if i := slices.Index(c.list, prog); i >= 0 {
		c.list = slices.Delete(c.list, i, i+1)
	}
	if c.byCode[prog.Code] == prog {
		delete(c.byCode, prog.Code)
	}
	prog.destroy()
}

// Invalidate forgets every driver handle after a context loss. Programs are
// relinked on their next use.
func (c *Programs) Invalidate() {
	for _, prog := range c.list {
		prog.invalidate()
	}
}

// List returns the live programs in creation order.
func (c *Programs) List() []*Program { return c.list }

func (c *Programs) Len() int { return len(c.list) }

// dispose deletes every program regardless of users.
func (c *Programs) dispose() {
	for _, prog := range c.list {
		prog.destroy()
	}
	c.list = nil
	clear(c.byCode)
}
