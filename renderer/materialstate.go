package renderer

import (
	"go.uber.org/zap"

	"glscene/materials"
	"glscene/renderer/shaderlib"
	"glscene/scene"
	"glscene/textures"
)

// materialProperties is the renderer side of a material: the program it
// currently compiles to and the uniform values fed to it.
type materialProperties struct {
	program *Program
	code    string
	shader  string

	uniforms map[string]any
	// seq lists the uniforms of tree that have a value; rebuilt whenever the
	// program's binding tree changes.
	seq  []Uniform
	tree *Uniforms

	version           uint64
	lightsHash        string
	numClippingPlanes int
	numIntersection   int
	fog               *scene.Fog
	outputEncoding    textures.Encoding
}

func (r *Renderer) materialProperties(m *materials.Material) *materialProperties {
	if p := r.materials.get(m.Handle); p != nil {
		return p
	}
	p := &materialProperties{}
	m.Handle = r.materials.alloc(p)
	return p
}

// needsProgram reports whether p no longer describes how m must be drawn
// this frame.
func (r *Renderer) needsProgram(p *materialProperties, m *materials.Material, fog *scene.Fog) bool {
	switch {
	case p.program == nil:
		return true
	case m.Version != p.version:
		return true
	case m.Lights && p.lightsHash != r.lights.Hash:
		return true
	case p.numClippingPlanes != r.clipping.NumPlanes || p.numIntersection != r.clipping.NumIntersection:
		return true
	case m.Fog && p.fog != fog:
		return true
	case p.outputEncoding != r.programs.OutputEncoding:
		return true
	}
	return false
}

// initMaterial derives the program parameters of m and re-acquires its
// program when the code key changed.
func (r *Renderer) initMaterial(m *materials.Material, fog *scene.Fog, object *scene.Node) {
	p := r.materialProperties(m)

	params := r.programs.Parameters(m, r.lights, r.shadows, fog, &r.clipping, object)
	code := r.programs.ProgramCode(m, params)

	if p.program == nil || p.code != code {
		shader, ok := ShaderFor(m)
		if !ok {
			r.log.Warn("material kind has no shader", zap.Stringer("kind", m.Kind), zap.String("material", m.Name))
			return
		}
		if p.program != nil {
			r.programs.Release(p.program)
		}
		if p.uniforms == nil || p.shader != shader.ID || m.Kind.Custom() {
			p.uniforms = defaultUniforms(shader)
			p.shader = shader.ID
		}
		p.program = r.programs.Acquire(m, shader, params, code)
		p.code = code
		p.tree, p.seq = nil, nil
		r.info.Programs = r.programs.Len()
	}

	p.version = m.Version
	p.lightsHash = r.lights.Hash
	p.numClippingPlanes = r.clipping.NumPlanes
	p.numIntersection = r.clipping.NumIntersection
	p.fog = fog
	p.outputEncoding = r.programs.OutputEncoding

	// Keys must exist before seq is built.
	if m.Lights {
		r.lights.Values(p.uniforms)
	}
	p.uniforms["toneMappingExposure"] = r.cfg.ToneMappingExposure
	p.uniforms["toneMappingWhitePoint"] = r.cfg.ToneMappingWhite
}

func defaultUniforms(shader shaderlib.Shader) map[string]any {
	if shader.Uniforms == nil {
		return make(map[string]any)
	}
	u := shader.Uniforms()
	if u == nil {
		u = make(map[string]any)
	}
	return u
}

// uniformSeq returns the uploadable uniforms of p for tree.
func (p *materialProperties) uniformSeq(tree *Uniforms) []Uniform {
	if p.tree != tree {
		p.tree = tree
		p.seq = tree.SeqWithValue(p.uniforms)
	}
	return p.seq
}

// releaseMaterial drops the program reference of m and frees its handle.
func (r *Renderer) releaseMaterial(m *materials.Material) {
	p := r.materials.release(m.Handle)
	m.Handle = 0
	if p == nil {
		return
	}
	r.programs.Release(p.program)
	r.info.Programs = r.programs.Len()
	if r.currentMaterialID == m.ID {
		r.currentMaterialID = 0
	}
}
