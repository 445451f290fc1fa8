package renderer

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"

	"glscene/gpu"
	"glscene/materials"
	"glscene/renderer/shaderlib"
	"glscene/textures"
)

// Diagnostics holds what went wrong while building a program.
type Diagnostics struct {
	Runnable bool
	// Source is set when the sources could not be assembled (an unknown or
	// cyclic include); nothing reached the driver in that case.
	Source   string
	Vertex   string
	Fragment string
	Program  string
}

// Program is a linked shader program shared by every material whose code key
// matches. Uniform and attribute reflection is done on first use.
type Program struct {
	ID        int
	Name      string
	Code      string
	Handle    gpu.Handle
	UsedTimes int

	Diagnostics    Diagnostics
	VertexSource   string
	FragmentSource string

	d          gpu.Driver
	log        *zap.Logger
	uniforms   *Uniforms
	attributes map[string]int32
}

// Runnable reports whether draw calls may use the program.
func (p *Program) Runnable() bool { return p.Diagnostics.Runnable }

// Uniforms returns the program's binding tree.
func (p *Program) Uniforms() *Uniforms {
	p.ensureLinked()
	if p.uniforms == nil {
		p.uniforms = NewUniforms(p.d, p.Handle, p.log)
	}
	return p.uniforms
}

// Attributes maps active attribute names to locations.
func (p *Program) Attributes() map[string]int32 {
	p.ensureLinked()
	if p.attributes == nil {
		p.attributes = make(map[string]int32)
		for _, a := range p.d.ActiveAttributes(p.Handle) {
			p.attributes[a.Name] = a.Location
		}
	}
	return p.attributes
}

// ensureLinked rebuilds the driver program after a context loss.
func (p *Program) ensureLinked() {
	if p.Handle == 0 && p.Diagnostics.Source == "" {
		p.link()
	}
}

func (p *Program) link() {
	d := p.d
	diag := Diagnostics{}

	vs := d.CreateShader(gpu.VertexShader)
	d.ShaderSource(vs, p.VertexSource)
	d.CompileShader(vs)
	if !d.ShaderCompiled(vs) {
		diag.Vertex = d.ShaderInfoLog(vs)
	}

	fs := d.CreateShader(gpu.FragmentShader)
	d.ShaderSource(fs, p.FragmentSource)
	d.CompileShader(fs)
	if !d.ShaderCompiled(fs) {
		diag.Fragment = d.ShaderInfoLog(fs)
	}

	prog := d.CreateProgram()
	d.AttachShader(prog, vs)
	d.AttachShader(prog, fs)
	// Location 0 must be an attribute every draw enables.
	d.BindAttribLocation(prog, 0, "position")
	d.LinkProgram(prog)
	if !d.ProgramLinked(prog) {
		diag.Program = d.ProgramInfoLog(prog)
		if diag.Program == "" {
			diag.Program = "link failed"
		}
	}

	d.DeleteShader(vs)
	d.DeleteShader(fs)

	diag.Runnable = diag.Vertex == "" && diag.Fragment == "" && diag.Program == ""
	p.Diagnostics = diag
	p.Handle = prog
	p.uniforms, p.attributes = nil, nil

	if !diag.Runnable {
		p.log.Error("shader program failed to build",
			zap.String("program", p.Name),
			zap.String("vertex", diag.Vertex),
			zap.String("fragment", diag.Fragment),
			zap.String("link", diag.Program))
	}
}

// invalidate forgets the driver handle; the next use relinks.
func (p *Program) invalidate() {
	p.Handle = 0
	p.uniforms, p.attributes = nil, nil
}

func (p *Program) destroy() {
	if p.Handle != 0 {
		p.d.DeleteProgram(p.Handle)
	}
	p.Handle = 0
	p.uniforms, p.attributes = nil, nil
}

// ── Source synthesis ──

var includePattern = regexp.MustCompile(`(?m)^[ \t]*#include +<([\w./]+)>`)

// resolveIncludes expands #include <name> lines recursively through lookup.
func resolveIncludes(src string, lookup func(string) (string, bool)) (string, error) {
	return expandIncludes(src, lookup, nil)
}

func expandIncludes(src string, lookup func(string) (string, bool), stack []string) (string, error) {
	var err error
	out := includePattern.ReplaceAllStringFunc(src, func(line string) string {
		if err != nil {
			return ""
		}
		name := includePattern.FindStringSubmatch(line)[1]
		if slices.Contains(stack, name) {
			err = fmt.Errorf("include cycle: %s -> %s", strings.Join(stack, " -> "), name)
			return ""
		}
		chunk, ok := lookup(name)
		if !ok {
			err = fmt.Errorf("unknown include <%s>", name)
			return ""
		}
		expanded, e := expandIncludes(chunk, lookup, append(stack, name))
		if e != nil {
			err = e
			return ""
		}
		return expanded
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func replaceLightNums(src string, p *ProgramParameters) string {
	return strings.NewReplacer(
		"NUM_DIR_LIGHTS", strconv.Itoa(p.NumDirLights),
		"NUM_SPOT_LIGHTS", strconv.Itoa(p.NumSpotLights),
		"NUM_POINT_LIGHTS", strconv.Itoa(p.NumPointLights),
		"NUM_HEMI_LIGHTS", strconv.Itoa(p.NumHemiLights),
	).Replace(src)
}

func replaceClippingPlaneNums(src string, p *ProgramParameters) string {
	return strings.NewReplacer(
		"NUM_CLIPPING_PLANES", strconv.Itoa(p.NumClippingPlanes),
		"UNION_CLIPPING_PLANES", strconv.Itoa(p.NumClippingPlanes-p.NumClipIntersection),
	).Replace(src)
}

func encodingComponents(e textures.Encoding) (string, string) {
	switch e {
	case textures.SRGBEncoding:
		return "sRGB", "( value )"
	case textures.GammaEncoding:
		return "Gamma", "( value, float( GAMMA_FACTOR ) )"
	default:
		return "Linear", "( value )"
	}
}

func texelDecodingFunction(name string, e textures.Encoding) string {
	fn, args := encodingComponents(e)
	return "vec4 " + name + "( vec4 value ) { return " + fn + "ToLinear" + args + "; }"
}

func texelEncodingFunction(name string, e textures.Encoding) string {
	fn, args := encodingComponents(e)
	return "vec4 " + name + "( vec4 value ) { return LinearTo" + fn + args + "; }"
}

// toneMappingOperator is the GLSL function prefix for t, e.g. "Reinhard".
func toneMappingOperator(t ToneMapping) string {
	if t == CineonToneMapping {
		return "OptimizedCineon"
	}
	return strcase.ToCamel(t.String())
}

func toneMappingFunction(name string, t ToneMapping) string {
	return "vec3 " + name + "( vec3 color ) { return " + toneMappingOperator(t) + "ToneMapping( color ); }"
}

func flag(on bool, name string) string {
	if on {
		return "#define " + name
	}
	return ""
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		if l != "" {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func customDefines(defines map[string]string) string {
	var b strings.Builder
	for _, name := range sortedKeys(defines) {
		b.WriteString("#define " + name)
		if v := defines[name]; v != "" {
			b.WriteString(" " + v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func shadowTypeDefine(p *ProgramParameters) string {
	if !p.ShadowMapEnabled {
		return ""
	}
	switch p.ShadowMapType {
	case PCFShadowMap:
		return "#define SHADOWMAP_TYPE_PCF"
	case PCFSoftShadowMap:
		return "#define SHADOWMAP_TYPE_PCF_SOFT"
	}
	return "#define SHADOWMAP_TYPE_BASIC"
}

func envMapModeDefine(p *ProgramParameters) string {
	if !p.EnvMap {
		return ""
	}
	if p.EnvMapMode == textures.CubeRefractionMapping {
		return "#define ENVMAP_MODE_REFRACTION"
	}
	return "#define ENVMAP_MODE_REFLECTION"
}

func envMapBlendingDefine(p *ProgramParameters) string {
	if !p.EnvMap {
		return ""
	}
	switch p.Combine {
	case materials.MixOperation:
		return "#define ENVMAP_BLENDING_MIX"
	case materials.AddOperation:
		return "#define ENVMAP_BLENDING_ADD"
	}
	return "#define ENVMAP_BLENDING_MULTIPLY"
}

const glslVersion = "#version 410 core"

func vertexPrefix(p *ProgramParameters, defines string) string {
	return joinLines([]string{
		glslVersion,
		"#define attribute in",
		"#define varying out",
		"#define texture2D texture",
		"precision " + p.Precision + " float;",
		"precision " + p.Precision + " int;",
		"#define SHADER_NAME " + p.ShaderName,
		defines,
		flag(p.Standard, "STANDARD"),
		flag(p.VertexTextures, "VERTEX_TEXTURES"),
		"#define GAMMA_FACTOR " + strconv.FormatFloat(float64(p.GammaFactor), 'f', -1, 32),
		"#define MAX_BONES " + strconv.Itoa(p.MaxBones),
		flag(p.UseFog, "USE_FOG"),
		flag(p.UseFog && p.FogExp2, "FOG_EXP2"),
		flag(p.Map, "USE_MAP"),
		flag(p.EnvMap, "USE_ENVMAP"),
		envMapModeDefine(p),
		flag(p.LightMap, "USE_LIGHTMAP"),
		flag(p.AOMap, "USE_AOMAP"),
		flag(p.EmissiveMap, "USE_EMISSIVEMAP"),
		flag(p.BumpMap, "USE_BUMPMAP"),
		flag(p.NormalMap, "USE_NORMALMAP"),
		flag(p.DisplacementMap && p.VertexTextures, "USE_DISPLACEMENTMAP"),
		flag(p.SpecularMap, "USE_SPECULARMAP"),
		flag(p.RoughnessMap, "USE_ROUGHNESSMAP"),
		flag(p.MetalnessMap, "USE_METALNESSMAP"),
		flag(p.AlphaMap, "USE_ALPHAMAP"),
		flag(p.VertexColors, "USE_COLOR"),
		flag(p.FlatShading, "FLAT_SHADED"),
		flag(p.Skinning, "USE_SKINNING"),
		flag(p.MorphTargets, "USE_MORPHTARGETS"),
		flag(p.MorphNormals && !p.FlatShading, "USE_MORPHNORMALS"),
		flag(p.DoubleSided, "DOUBLE_SIDED"),
		flag(p.FlipSided, "FLIP_SIDED"),
		flag(p.ShadowMapEnabled, "USE_SHADOWMAP"),
		shadowTypeDefine(p),
		flag(p.SizeAttenuation, "USE_SIZEATTENUATION"),
		flag(p.LogarithmicDepthBuffer, "USE_LOGDEPTHBUF"),
		"uniform mat4 modelMatrix;",
		"uniform mat4 modelViewMatrix;",
		"uniform mat4 projectionMatrix;",
		"uniform mat4 viewMatrix;",
		"uniform mat3 normalMatrix;",
		"uniform vec3 cameraPosition;",
		"attribute vec3 position;",
		"attribute vec3 normal;",
		"attribute vec2 uv;",
		"#ifdef USE_COLOR",
		"	attribute vec3 color;",
		"#endif",
		"#ifdef USE_MORPHTARGETS",
		"	attribute vec3 morphTarget0;",
		"	attribute vec3 morphTarget1;",
		"	attribute vec3 morphTarget2;",
		"	attribute vec3 morphTarget3;",
		"	#ifdef USE_MORPHNORMALS",
		"		attribute vec3 morphNormal0;",
		"		attribute vec3 morphNormal1;",
		"		attribute vec3 morphNormal2;",
		"		attribute vec3 morphNormal3;",
		"	#else",
		"		attribute vec3 morphTarget4;",
		"		attribute vec3 morphTarget5;",
		"		attribute vec3 morphTarget6;",
		"		attribute vec3 morphTarget7;",
		"	#endif",
		"#endif",
		"#ifdef USE_SKINNING",
		"	attribute vec4 skinIndex;",
		"	attribute vec4 skinWeight;",
		"#endif",
	})
}

func fragmentPrefix(p *ProgramParameters, defines string) string {
	lines := []string{
		glslVersion,
		"#define varying in",
		"out highp vec4 pc_fragColor;",
		"#define gl_FragColor pc_fragColor",
		"#define texture2D texture",
		"#define textureCube texture",
		"precision " + p.Precision + " float;",
		"precision " + p.Precision + " int;",
		"#define SHADER_NAME " + p.ShaderName,
		defines,
		flag(p.Standard, "STANDARD"),
		flag(p.Toon, "TOON"),
		"#define GAMMA_FACTOR " + strconv.FormatFloat(float64(p.GammaFactor), 'f', -1, 32),
		flag(p.UseFog, "USE_FOG"),
		flag(p.UseFog && p.FogExp2, "FOG_EXP2"),
		flag(p.Map, "USE_MAP"),
		flag(p.EnvMap, "USE_ENVMAP"),
		envMapModeDefine(p),
		envMapBlendingDefine(p),
		flag(p.LightMap, "USE_LIGHTMAP"),
		flag(p.AOMap, "USE_AOMAP"),
		flag(p.EmissiveMap, "USE_EMISSIVEMAP"),
		flag(p.BumpMap, "USE_BUMPMAP"),
		flag(p.NormalMap, "USE_NORMALMAP"),
		flag(p.SpecularMap, "USE_SPECULARMAP"),
		flag(p.RoughnessMap, "USE_ROUGHNESSMAP"),
		flag(p.MetalnessMap, "USE_METALNESSMAP"),
		flag(p.AlphaMap, "USE_ALPHAMAP"),
		flag(p.VertexColors, "USE_COLOR"),
		flag(p.GradientMap, "USE_GRADIENTMAP"),
		flag(p.FlatShading, "FLAT_SHADED"),
		flag(p.DoubleSided, "DOUBLE_SIDED"),
		flag(p.FlipSided, "FLIP_SIDED"),
		flag(p.ShadowMapEnabled, "USE_SHADOWMAP"),
		shadowTypeDefine(p),
		flag(p.PremultipliedAlpha, "PREMULTIPLIED_ALPHA"),
		flag(p.PhysicallyCorrectLights, "PHYSICALLY_CORRECT_LIGHTS"),
		flag(p.LogarithmicDepthBuffer, "USE_LOGDEPTHBUF"),
		flag(p.Dithering, "DITHERING"),
		"uniform mat4 viewMatrix;",
		"uniform vec3 cameraPosition;",
	}
	if p.AlphaTest > 0 {
		lines = append(lines, "#define ALPHATEST "+strconv.FormatFloat(float64(p.AlphaTest), 'f', -1, 32))
	}
	if p.DepthPacking != 0 {
		lines = append(lines, "#define DEPTH_PACKING "+strconv.Itoa(p.DepthPacking))
	}
	if p.ToneMapping != NoToneMapping {
		tm, _ := shaderlib.Chunk("tonemapping_pars_fragment")
		lines = append(lines, "#define TONE_MAPPING", tm, toneMappingFunction("toneMapping", p.ToneMapping))
	}
	enc, _ := shaderlib.Chunk("encodings_pars_fragment")
	lines = append(lines,
		enc,
		texelDecodingFunction("mapTexelToLinear", p.MapEncoding),
		texelDecodingFunction("envMapTexelToLinear", p.EnvMapEncoding),
		texelDecodingFunction("emissiveMapTexelToLinear", p.EmissiveMapEncoding),
		texelEncodingFunction("linearToOutputTexel", p.OutputEncoding),
	)
	return joinLines(lines)
}

// insertAfterVersion places block after a leading #version line, or at the
// top when there is none.
func insertAfterVersion(src, block string) string {
	trimmed := strings.TrimLeft(src, " \t\r\n")
	if !strings.HasPrefix(trimmed, "#version") {
		return block + src
	}
	nl := strings.IndexByte(trimmed, '\n')
	if nl < 0 {
		return trimmed + "\n" + block
	}
	return trimmed[:nl+1] + block + trimmed[nl+1:]
}

// buildSources assembles the final vertex and fragment sources of a program.
func buildSources(p *ProgramParameters, defines map[string]string, vertex, fragment string) (string, string, error) {
	custom := customDefines(defines)

	var vs, fs string
	if p.Raw {
		vs = insertAfterVersion(vertex, custom)
		fs = insertAfterVersion(fragment, custom)
	} else {
		vs = vertexPrefix(p, custom) + vertex
		fs = fragmentPrefix(p, custom) + fragment
	}

	var err error
	if vs, err = resolveIncludes(vs, shaderlib.Chunk); err != nil {
		return "", "", fmt.Errorf("vertex: %w", err)
	}
	if fs, err = resolveIncludes(fs, shaderlib.Chunk); err != nil {
		return "", "", fmt.Errorf("fragment: %w", err)
	}
	vs = replaceClippingPlaneNums(replaceLightNums(vs, p), p)
	fs = replaceClippingPlaneNums(replaceLightNums(fs, p), p)
	return vs, fs, nil
}

// newProgram assembles and links a program. Failures are recorded in the
// program's Diagnostics; the returned program is never nil.
func newProgram(d gpu.Driver, id int, code string, p *ProgramParameters, defines map[string]string, vertex, fragment string, log *zap.Logger) *Program {
	prog := &Program{ID: id, Name: p.ShaderName, Code: code, d: d, log: log}
	vs, fs, err := buildSources(p, defines, vertex, fragment)
	if err != nil {
		prog.Diagnostics = Diagnostics{Source: err.Error()}
		log.Error("shader program sources invalid", zap.String("program", prog.Name), zap.Error(err))
		return prog
	}
	prog.VertexSource, prog.FragmentSource = vs, fs
	prog.link()
	return prog
}
