// Package gputest provides a recording gpu.Driver for tests.
//
// The fake keeps enough state to look like a real device from the renderer's
// point of view: handles are unique, shader sources are kept, and reflection
// is answered by scanning the linked sources for uniform and attribute
// declarations.
package gputest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"glscene/gpu"
)

// Call is one recorded driver call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

type shader struct {
	stage    gpu.ShaderStage
	source   string
	compiled bool
	log      string
}

type program struct {
	shaders  []gpu.Handle
	bound    map[string]uint32
	linked   bool
	log      string
	uniforms []gpu.ActiveInfo
	attribs  []gpu.ActiveInfo
}

// Driver records every call it receives.
type Driver struct {
	Calls []Call

	// Limits answers Limit; NewDriver fills in desktop-like defaults.
	Limits map[gpu.Limit]int
	// PrecisionBits answers ShaderPrecision for every stage and qualifier.
	PrecisionBits int
	// CompileError, when set, returns a non-empty log to fail a compile.
	CompileError func(stage gpu.ShaderStage, src string) string
	// LinkError, when set, returns a non-empty log to fail a link.
	LinkError func(vertex, fragment string) string
	// Pixels is copied into ReadPixels destinations.
	Pixels []byte
	// Incomplete makes FramebufferComplete report false.
	Incomplete bool

	next     gpu.Handle
	shaders  map[gpu.Handle]*shader
	programs map[gpu.Handle]*program
}

// NewDriver returns a recorder with default limits.
func NewDriver() *Driver {
	return &Driver{
		Limits: map[gpu.Limit]int{
			gpu.MaxTextureImageUnits:       16,
			gpu.MaxVertexTextureImageUnits: 16,
			gpu.MaxTextureSize:             4096,
			gpu.MaxCubeMapTextureSize:      4096,
			gpu.MaxVertexAttribs:           16,
			gpu.MaxVertexUniformVectors:    1024,
			gpu.MaxVaryingVectors:          15,
			gpu.MaxFragmentUniformVectors:  1024,
		},
		PrecisionBits: 23,
		shaders:       make(map[gpu.Handle]*shader),
		programs:      make(map[gpu.Handle]*program),
	}
}

// Count returns how many calls named name were recorded.
func (d *Driver) Count(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Named returns the recorded calls named name, in order.
func (d *Driver) Named(name string) []Call {
	var out []Call
	for _, c := range d.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets the recorded calls but keeps object state.
func (d *Driver) Reset() { d.Calls = d.Calls[:0] }

// Source returns the source handed to a shader.
func (d *Driver) Source(s gpu.Handle) string {
	if sh, ok := d.shaders[s]; ok {
		return sh.source
	}
	return ""
}

// Programs returns the handles of programs that have not been deleted.
func (d *Driver) Programs() []gpu.Handle {
	out := make([]gpu.Handle, 0, len(d.programs))
	for h := range d.programs {
		out = append(out, h)
	}
	return out
}

func (d *Driver) record(name string, args ...any) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

func (d *Driver) alloc() gpu.Handle {
	d.next++
	return d.next
}

// ── Pipeline state ──

func (d *Driver) Enable(c gpu.Capability)  { d.record("Enable", c) }
func (d *Driver) Disable(c gpu.Capability) { d.record("Disable", c) }
func (d *Driver) BlendEquationSeparate(rgb, alpha gpu.BlendEquation) {
	d.record("BlendEquationSeparate", rgb, alpha)
}
func (d *Driver) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.BlendFactor) {
	d.record("BlendFuncSeparate", srcRGB, dstRGB, srcAlpha, dstAlpha)
}
func (d *Driver) DepthFunc(f gpu.CompareFunc) { d.record("DepthFunc", f) }
func (d *Driver) DepthMask(write bool)       { d.record("DepthMask", write) }
func (d *Driver) ClearDepth(v float64)       { d.record("ClearDepth", v) }
func (d *Driver) StencilMask(mask uint32)    { d.record("StencilMask", mask) }
func (d *Driver) StencilFunc(f gpu.CompareFunc, ref int32, mask uint32) {
	d.record("StencilFunc", f, ref, mask)
}
func (d *Driver) StencilOp(fail, zfail, zpass gpu.StencilOp) {
	d.record("StencilOp", fail, zfail, zpass)
}
func (d *Driver) ClearStencil(s int32)         { d.record("ClearStencil", s) }
func (d *Driver) ColorMask(r, g, b, a bool)    { d.record("ColorMask", r, g, b, a) }
func (d *Driver) ClearColor(r, g, b, a float32) { d.record("ClearColor", r, g, b, a) }
func (d *Driver) CullFace(f gpu.Face)          { d.record("CullFace", f) }
func (d *Driver) FrontFace(w gpu.Winding)      { d.record("FrontFace", w) }
func (d *Driver) PolygonOffset(factor, units float32) {
	d.record("PolygonOffset", factor, units)
}
func (d *Driver) LineWidth(w float32) { d.record("LineWidth", w) }
func (d *Driver) Scissor(x, y, w, h int32) {
	d.record("Scissor", x, y, w, h)
}
func (d *Driver) Viewport(x, y, w, h int32) {
	d.record("Viewport", x, y, w, h)
}
func (d *Driver) Clear(mask gpu.ClearMask) { d.record("Clear", mask) }

// ── Textures ──

func (d *Driver) ActiveTexture(unit int) { d.record("ActiveTexture", unit) }
func (d *Driver) BindTexture(target gpu.TextureTarget, tex gpu.Handle) {
	d.record("BindTexture", target, tex)
}
func (d *Driver) CreateTexture() gpu.Handle {
	h := d.alloc()
	d.record("CreateTexture", h)
	return h
}
func (d *Driver) DeleteTexture(tex gpu.Handle) { d.record("DeleteTexture", tex) }
func (d *Driver) TexParameter(target gpu.TextureTarget, param gpu.TextureParam, value int32) {
	d.record("TexParameter", target, param, value)
}
func (d *Driver) TexImage2D(target gpu.TextureTarget, level int, internal gpu.PixelFormat, width, height int, format gpu.PixelFormat, typ gpu.DataType, pixels []byte) {
	d.record("TexImage2D", target, level, internal, width, height, format, typ, len(pixels))
}
func (d *Driver) GenerateMipmap(target gpu.TextureTarget) { d.record("GenerateMipmap", target) }

// ── Buffers ──

func (d *Driver) CreateBuffer() gpu.Handle {
	h := d.alloc()
	d.record("CreateBuffer", h)
	return h
}
func (d *Driver) DeleteBuffer(buf gpu.Handle) { d.record("DeleteBuffer", buf) }
func (d *Driver) BindBuffer(target gpu.BufferTarget, buf gpu.Handle) {
	d.record("BindBuffer", target, buf)
}
func (d *Driver) BufferData(target gpu.BufferTarget, data []byte, usage gpu.BufferUsage) {
	d.record("BufferData", target, len(data), usage)
}
func (d *Driver) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	d.record("BufferSubData", target, offset, len(data))
}
func (d *Driver) EnableVertexAttribArray(index uint32) {
	d.record("EnableVertexAttribArray", index)
}
func (d *Driver) DisableVertexAttribArray(index uint32) {
	d.record("DisableVertexAttribArray", index)
}
func (d *Driver) VertexAttribDivisor(index, divisor uint32) {
	d.record("VertexAttribDivisor", index, divisor)
}
func (d *Driver) VertexAttribPointer(index uint32, size int, typ gpu.DataType, normalized bool, stride, offset int) {
	d.record("VertexAttribPointer", index, size, typ, normalized, stride, offset)
}

// ── Shaders and programs ──

func (d *Driver) CreateShader(stage gpu.ShaderStage) gpu.Handle {
	h := d.alloc()
	d.shaders[h] = &shader{stage: stage}
	d.record("CreateShader", stage, h)
	return h
}

func (d *Driver) ShaderSource(s gpu.Handle, src string) {
	if sh, ok := d.shaders[s]; ok {
		sh.source = src
	}
	d.record("ShaderSource", s)
}

func (d *Driver) CompileShader(s gpu.Handle) {
	d.record("CompileShader", s)
	sh, ok := d.shaders[s]
	if !ok {
		return
	}
	sh.compiled, sh.log = true, ""
	if d.CompileError != nil {
		if msg := d.CompileError(sh.stage, sh.source); msg != "" {
			sh.compiled, sh.log = false, msg
		}
	}
}

func (d *Driver) ShaderCompiled(s gpu.Handle) bool {
	sh, ok := d.shaders[s]
	return ok && sh.compiled
}

func (d *Driver) ShaderInfoLog(s gpu.Handle) string {
	if sh, ok := d.shaders[s]; ok {
		return sh.log
	}
	return ""
}

func (d *Driver) DeleteShader(s gpu.Handle) {
	d.record("DeleteShader", s)
}

func (d *Driver) ShaderPrecision(stage gpu.ShaderStage, p gpu.Precision) int {
	return d.PrecisionBits
}

func (d *Driver) CreateProgram() gpu.Handle {
	h := d.alloc()
	d.programs[h] = &program{bound: make(map[string]uint32)}
	d.record("CreateProgram", h)
	return h
}

func (d *Driver) AttachShader(p, s gpu.Handle) {
	if pr, ok := d.programs[p]; ok {
		pr.shaders = append(pr.shaders, s)
	}
	d.record("AttachShader", p, s)
}

func (d *Driver) BindAttribLocation(p gpu.Handle, index uint32, name string) {
	if pr, ok := d.programs[p]; ok {
		pr.bound[name] = index
	}
	d.record("BindAttribLocation", p, index, name)
}

func (d *Driver) LinkProgram(p gpu.Handle) {
	d.record("LinkProgram", p)
	pr, ok := d.programs[p]
	if !ok {
		return
	}
	var vs, fs string
	allCompiled := true
	for _, s := range pr.shaders {
		sh := d.shaders[s]
		if sh == nil {
			continue
		}
		allCompiled = allCompiled && sh.compiled
		if sh.stage == gpu.VertexShader {
			vs = sh.source
		} else {
			fs = sh.source
		}
	}
	pr.linked, pr.log = allCompiled, ""
	if !allCompiled {
		pr.log = "attached shader failed to compile"
	} else if d.LinkError != nil {
		if msg := d.LinkError(vs, fs); msg != "" {
			pr.linked, pr.log = false, msg
		}
	}
	if pr.linked {
		pr.uniforms = reflectUniforms(vs + "\n" + fs)
		pr.attribs = reflectAttributes(vs, pr.bound)
	}
}

func (d *Driver) ProgramLinked(p gpu.Handle) bool {
	pr, ok := d.programs[p]
	return ok && pr.linked
}

func (d *Driver) ProgramInfoLog(p gpu.Handle) string {
	if pr, ok := d.programs[p]; ok {
		return pr.log
	}
	return ""
}

func (d *Driver) DeleteProgram(p gpu.Handle) {
	delete(d.programs, p)
	d.record("DeleteProgram", p)
}

func (d *Driver) UseProgram(p gpu.Handle) { d.record("UseProgram", p) }

func (d *Driver) ActiveUniforms(p gpu.Handle) []gpu.ActiveInfo {
	if pr, ok := d.programs[p]; ok {
		return pr.uniforms
	}
	return nil
}

func (d *Driver) ActiveAttributes(p gpu.Handle) []gpu.ActiveInfo {
	if pr, ok := d.programs[p]; ok {
		return pr.attribs
	}
	return nil
}

// ── Uniforms ──

func (d *Driver) Uniform1f(loc int32, v float32) { d.record("Uniform1f", loc, v) }
func (d *Driver) Uniform1fv(loc int32, v []float32) {
	d.record("Uniform1fv", loc, append([]float32(nil), v...))
}
func (d *Driver) Uniform2fv(loc int32, v []float32) {
	d.record("Uniform2fv", loc, append([]float32(nil), v...))
}
func (d *Driver) Uniform3fv(loc int32, v []float32) {
	d.record("Uniform3fv", loc, append([]float32(nil), v...))
}
func (d *Driver) Uniform4fv(loc int32, v []float32) {
	d.record("Uniform4fv", loc, append([]float32(nil), v...))
}
func (d *Driver) Uniform1i(loc int32, v int32) { d.record("Uniform1i", loc, v) }
func (d *Driver) Uniform1iv(loc int32, v []int32) {
	d.record("Uniform1iv", loc, append([]int32(nil), v...))
}
func (d *Driver) Uniform2iv(loc int32, v []int32) {
	d.record("Uniform2iv", loc, append([]int32(nil), v...))
}
func (d *Driver) Uniform3iv(loc int32, v []int32) {
	d.record("Uniform3iv", loc, append([]int32(nil), v...))
}
func (d *Driver) Uniform4iv(loc int32, v []int32) {
	d.record("Uniform4iv", loc, append([]int32(nil), v...))
}
func (d *Driver) UniformMatrix2fv(loc int32, v []float32) {
	d.record("UniformMatrix2fv", loc, append([]float32(nil), v...))
}
func (d *Driver) UniformMatrix3fv(loc int32, v []float32) {
	d.record("UniformMatrix3fv", loc, append([]float32(nil), v...))
}
func (d *Driver) UniformMatrix4fv(loc int32, v []float32) {
	d.record("UniformMatrix4fv", loc, append([]float32(nil), v...))
}

// ── Framebuffers ──

func (d *Driver) CreateFramebuffer() gpu.Handle {
	h := d.alloc()
	d.record("CreateFramebuffer", h)
	return h
}
func (d *Driver) DeleteFramebuffer(fb gpu.Handle) { d.record("DeleteFramebuffer", fb) }
func (d *Driver) BindFramebuffer(fb gpu.Handle)   { d.record("BindFramebuffer", fb) }
func (d *Driver) FramebufferTexture2D(att gpu.Attachment, target gpu.TextureTarget, tex gpu.Handle, level int) {
	d.record("FramebufferTexture2D", att, target, tex, level)
}
func (d *Driver) CreateRenderbuffer() gpu.Handle {
	h := d.alloc()
	d.record("CreateRenderbuffer", h)
	return h
}
func (d *Driver) DeleteRenderbuffer(rb gpu.Handle) { d.record("DeleteRenderbuffer", rb) }
func (d *Driver) RenderbufferStorage(rb gpu.Handle, format gpu.RenderbufferFormat, width, height int) {
	d.record("RenderbufferStorage", rb, format, width, height)
}
func (d *Driver) FramebufferRenderbuffer(att gpu.Attachment, rb gpu.Handle) {
	d.record("FramebufferRenderbuffer", att, rb)
}
func (d *Driver) FramebufferComplete() bool { return !d.Incomplete }
func (d *Driver) ReadPixels(x, y, width, height int, format gpu.PixelFormat, typ gpu.DataType, dst []byte) {
	d.record("ReadPixels", x, y, width, height)
	copy(dst, d.Pixels)
}

// ── Draw calls ──

func (d *Driver) DrawArrays(mode gpu.DrawMode, first, count int) {
	d.record("DrawArrays", mode, first, count)
}
func (d *Driver) DrawElements(mode gpu.DrawMode, count int, typ gpu.DataType, offset int) {
	d.record("DrawElements", mode, count, typ, offset)
}
func (d *Driver) DrawArraysInstanced(mode gpu.DrawMode, first, count, instances int) {
	d.record("DrawArraysInstanced", mode, first, count, instances)
}
func (d *Driver) DrawElementsInstanced(mode gpu.DrawMode, count int, typ gpu.DataType, offset, instances int) {
	d.record("DrawElementsInstanced", mode, count, typ, offset, instances)
}

func (d *Driver) Limit(l gpu.Limit) int { return d.Limits[l] }

// ── Reflection ──

var (
	glslTypes = map[string]gpu.UniformType{
		"float": gpu.TypeFloat, "vec2": gpu.TypeVec2, "vec3": gpu.TypeVec3, "vec4": gpu.TypeVec4,
		"int": gpu.TypeInt, "ivec2": gpu.TypeIVec2, "ivec3": gpu.TypeIVec3, "ivec4": gpu.TypeIVec4,
		"bool": gpu.TypeBool, "bvec2": gpu.TypeBVec2, "bvec3": gpu.TypeBVec3, "bvec4": gpu.TypeBVec4,
		"mat2": gpu.TypeMat2, "mat3": gpu.TypeMat3, "mat4": gpu.TypeMat4,
		"sampler2D": gpu.TypeSampler2D, "samplerCube": gpu.TypeSamplerCube,
		"sampler2DShadow": gpu.TypeSampler2DShadow,
	}

	structDecl  = regexp.MustCompile(`(?s)struct\s+(\w+)\s*\{([^}]*)\}`)
	memberDecl  = regexp.MustCompile(`(\w+)\s+(\w+)\s*;`)
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	attribDecl  = regexp.MustCompile(`(?m)^\s*(?:attribute|in)\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*;`)
)

type member struct {
	name string
	typ  gpu.UniformType
}

// reflectUniforms answers the way a GL driver does: struct members are
// flattened to "name[i].member" and arrays of basic types report "name[0]"
// with the array size. Preprocessor conditionals are not evaluated, so
// every declaration counts as active.
func reflectUniforms(src string) []gpu.ActiveInfo {
	structs := make(map[string][]member)
	for _, m := range structDecl.FindAllStringSubmatch(src, -1) {
		var members []member
		for _, f := range memberDecl.FindAllStringSubmatch(m[2], -1) {
			if t, ok := glslTypes[f[1]]; ok {
				members = append(members, member{name: f[2], typ: t})
			}
		}
		structs[m[1]] = members
	}

	var out []gpu.ActiveInfo
	seen := make(map[string]bool)
	loc := int32(0)
	add := func(name string, t gpu.UniformType, size int) {
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, gpu.ActiveInfo{Name: name, Type: t, Size: size, Location: loc})
		loc += int32(size)
	}

	for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
		typeName, name := m[1], m[2]
		size, isArray := 1, m[3] != ""
		if isArray {
			size, _ = strconv.Atoi(m[3])
			if size == 0 {
				continue
			}
		}
		if t, ok := glslTypes[typeName]; ok {
			if isArray {
				add(name+"[0]", t, size)
			} else {
				add(name, t, 1)
			}
			continue
		}
		members, ok := structs[typeName]
		if !ok {
			continue
		}
		for i := 0; i < size; i++ {
			prefix := name
			if isArray {
				prefix = name + "[" + strconv.Itoa(i) + "]"
			}
			for _, mb := range members {
				add(prefix+"."+mb.name, mb.typ, 1)
			}
		}
	}
	return out
}

func reflectAttributes(vs string, bound map[string]uint32) []gpu.ActiveInfo {
	var out []gpu.ActiveInfo
	used := make(map[int32]bool)
	for _, idx := range bound {
		used[int32(idx)] = true
	}
	next := int32(0)
	seen := make(map[string]bool)
	for _, m := range attribDecl.FindAllStringSubmatch(vs, -1) {
		t, ok := glslTypes[m[1]]
		if !ok || seen[m[2]] || strings.HasPrefix(m[2], "gl_") {
			continue
		}
		seen[m[2]] = true
		loc := int32(-1)
		if idx, ok := bound[m[2]]; ok {
			loc = int32(idx)
		} else {
			for used[next] {
				next++
			}
			loc = next
			used[loc] = true
		}
		out = append(out, gpu.ActiveInfo{Name: m[2], Type: t, Size: 1, Location: loc})
	}
	return out
}
