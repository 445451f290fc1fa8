// Package opengl implements gpu.Driver on an OpenGL 4.1 core context.
package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"glscene/gpu"
)

// Driver issues gpu.Driver calls on the context current on the calling
// goroutine.
type Driver struct {
	log *zap.Logger
	vao uint32
}

var _ gpu.Driver = (*Driver)(nil)

// New loads the GL entry points of the current context. A core profile needs
// a bound vertex array, so one is created and kept bound for the driver's
// lifetime.
func New(log *zap.Logger) (*Driver, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &Driver{log: log}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	log.Info("OpenGL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))))
	return d, nil
}

// Destroy deletes the vertex array.
func (d *Driver) Destroy() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func ptr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func cstr(s string) *uint8 { return gl.Str(s + "\x00") }

// ── Pipeline state ──

func (d *Driver) Enable(c gpu.Capability)  { gl.Enable(uint32(c)) }
func (d *Driver) Disable(c gpu.Capability) { gl.Disable(uint32(c)) }

func (d *Driver) BlendEquationSeparate(rgb, alpha gpu.BlendEquation) {
	gl.BlendEquationSeparate(uint32(rgb), uint32(alpha))
}

func (d *Driver) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.BlendFactor) {
	gl.BlendFuncSeparate(uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

func (d *Driver) DepthFunc(f gpu.CompareFunc) { gl.DepthFunc(uint32(f)) }
func (d *Driver) DepthMask(write bool)        { gl.DepthMask(write) }
func (d *Driver) ClearDepth(v float64)        { gl.ClearDepth(v) }
func (d *Driver) StencilMask(mask uint32)     { gl.StencilMask(mask) }

func (d *Driver) StencilFunc(f gpu.CompareFunc, ref int32, mask uint32) {
	gl.StencilFunc(uint32(f), ref, mask)
}

func (d *Driver) StencilOp(fail, zfail, zpass gpu.StencilOp) {
	gl.StencilOp(uint32(fail), uint32(zfail), uint32(zpass))
}

func (d *Driver) ClearStencil(s int32)            { gl.ClearStencil(s) }
func (d *Driver) ColorMask(r, g, b, a bool)       { gl.ColorMask(r, g, b, a) }
func (d *Driver) ClearColor(r, g, b, a float32)   { gl.ClearColor(r, g, b, a) }
func (d *Driver) CullFace(f gpu.Face)             { gl.CullFace(uint32(f)) }
func (d *Driver) FrontFace(w gpu.Winding)         { gl.FrontFace(uint32(w)) }
func (d *Driver) PolygonOffset(factor, u float32) { gl.PolygonOffset(factor, u) }

// LineWidth is clamped by core profiles to 1 on most drivers.
func (d *Driver) LineWidth(w float32)        { gl.LineWidth(w) }
func (d *Driver) Scissor(x, y, w, h int32)   { gl.Scissor(x, y, w, h) }
func (d *Driver) Viewport(x, y, w, h int32)  { gl.Viewport(x, y, w, h) }
func (d *Driver) Clear(mask gpu.ClearMask)   { gl.Clear(uint32(mask)) }

// ── Textures ──

func (d *Driver) ActiveTexture(unit int) { gl.ActiveTexture(gl.TEXTURE0 + uint32(unit)) }

func (d *Driver) BindTexture(target gpu.TextureTarget, tex gpu.Handle) {
	gl.BindTexture(uint32(target), uint32(tex))
}

func (d *Driver) CreateTexture() gpu.Handle {
	var id uint32
	gl.GenTextures(1, &id)
	return gpu.Handle(id)
}

func (d *Driver) DeleteTexture(tex gpu.Handle) {
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
}

func (d *Driver) TexParameter(target gpu.TextureTarget, param gpu.TextureParam, value int32) {
	gl.TexParameteri(uint32(target), uint32(param), value)
}

func (d *Driver) TexImage2D(target gpu.TextureTarget, level int, internal gpu.PixelFormat, width, height int, format gpu.PixelFormat, typ gpu.DataType, pixels []byte) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(uint32(target), int32(level), int32(internal), int32(width), int32(height), 0,
		uint32(format), uint32(typ), ptr(pixels))
}

func (d *Driver) GenerateMipmap(target gpu.TextureTarget) { gl.GenerateMipmap(uint32(target)) }

// ── Buffers and vertex input ──

func (d *Driver) CreateBuffer() gpu.Handle {
	var id uint32
	gl.GenBuffers(1, &id)
	return gpu.Handle(id)
}

func (d *Driver) DeleteBuffer(buf gpu.Handle) {
	id := uint32(buf)
	gl.DeleteBuffers(1, &id)
}

func (d *Driver) BindBuffer(target gpu.BufferTarget, buf gpu.Handle) {
	gl.BindBuffer(uint32(target), uint32(buf))
}

func (d *Driver) BufferData(target gpu.BufferTarget, data []byte, usage gpu.BufferUsage) {
	gl.BufferData(uint32(target), len(data), ptr(data), uint32(usage))
}

func (d *Driver) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	gl.BufferSubData(uint32(target), offset, len(data), ptr(data))
}

func (d *Driver) EnableVertexAttribArray(index uint32)  { gl.EnableVertexAttribArray(index) }
func (d *Driver) DisableVertexAttribArray(index uint32) { gl.DisableVertexAttribArray(index) }
func (d *Driver) VertexAttribDivisor(index, divisor uint32) {
	gl.VertexAttribDivisor(index, divisor)
}

func (d *Driver) VertexAttribPointer(index uint32, size int, typ gpu.DataType, normalized bool, stride, offset int) {
	gl.VertexAttribPointerWithOffset(index, int32(size), uint32(typ), normalized, int32(stride), uintptr(offset))
}

// ── Shaders and programs ──

func (d *Driver) CreateShader(stage gpu.ShaderStage) gpu.Handle {
	return gpu.Handle(gl.CreateShader(uint32(stage)))
}

func (d *Driver) ShaderSource(s gpu.Handle, src string) {
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(uint32(s), 1, csrc, nil)
	free()
}

func (d *Driver) CompileShader(s gpu.Handle) { gl.CompileShader(uint32(s)) }

func (d *Driver) ShaderCompiled(s gpu.Handle) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (d *Driver) ShaderInfoLog(s gpu.Handle) string {
	var n int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return ""
	}
	log := strings.Repeat("\x00", int(n+1))
	gl.GetShaderInfoLog(uint32(s), n, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00\n")
}

func (d *Driver) DeleteShader(s gpu.Handle) { gl.DeleteShader(uint32(s)) }

func (d *Driver) ShaderPrecision(stage gpu.ShaderStage, p gpu.Precision) int {
	var rng [2]int32
	var precision int32
	gl.GetShaderPrecisionFormat(uint32(stage), uint32(p), &rng[0], &precision)
	return int(precision)
}

func (d *Driver) CreateProgram() gpu.Handle { return gpu.Handle(gl.CreateProgram()) }

func (d *Driver) AttachShader(p, s gpu.Handle) { gl.AttachShader(uint32(p), uint32(s)) }

func (d *Driver) BindAttribLocation(p gpu.Handle, index uint32, name string) {
	gl.BindAttribLocation(uint32(p), index, cstr(name))
}

func (d *Driver) LinkProgram(p gpu.Handle) { gl.LinkProgram(uint32(p)) }

func (d *Driver) ProgramLinked(p gpu.Handle) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (d *Driver) ProgramInfoLog(p gpu.Handle) string {
	var n int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return ""
	}
	log := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(uint32(p), n, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00\n")
}

func (d *Driver) DeleteProgram(p gpu.Handle) { gl.DeleteProgram(uint32(p)) }
func (d *Driver) UseProgram(p gpu.Handle)    { gl.UseProgram(uint32(p)) }

type activeQuery func(program, index uint32, bufSize int32, length, size *int32, typ *uint32, name *uint8)

func (d *Driver) active(p gpu.Handle, countParam, lenParam uint32, query activeQuery, locate func(uint32, *uint8) int32) []gpu.ActiveInfo {
	prog := uint32(p)
	var count, maxLen int32
	gl.GetProgramiv(prog, countParam, &count)
	gl.GetProgramiv(prog, lenParam, &maxLen)
	if count == 0 {
		return nil
	}
	buf := make([]uint8, maxLen+1)
	out := make([]gpu.ActiveInfo, 0, count)
	for i := range uint32(count) {
		var length, size int32
		var typ uint32
		query(prog, i, int32(len(buf)), &length, &size, &typ, &buf[0])
		name := string(buf[:length])
		out = append(out, gpu.ActiveInfo{
			Name:     name,
			Type:     gpu.UniformType(typ),
			Size:     int(size),
			Location: locate(prog, cstr(name)),
		})
	}
	return out
}

func (d *Driver) ActiveUniforms(p gpu.Handle) []gpu.ActiveInfo {
	return d.active(p, gl.ACTIVE_UNIFORMS, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform, gl.GetUniformLocation)
}

func (d *Driver) ActiveAttributes(p gpu.Handle) []gpu.ActiveInfo {
	return d.active(p, gl.ACTIVE_ATTRIBUTES, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib, gl.GetAttribLocation)
}

// ── Uniforms ──

func fptr(v []float32) *float32 {
	if len(v) == 0 {
		return nil
	}
	return &v[0]
}

func iptr(v []int32) *int32 {
	if len(v) == 0 {
		return nil
	}
	return &v[0]
}

func (d *Driver) Uniform1f(loc int32, v float32)     { gl.Uniform1f(loc, v) }
func (d *Driver) Uniform1fv(loc int32, v []float32)  { gl.Uniform1fv(loc, int32(len(v)), fptr(v)) }
func (d *Driver) Uniform2fv(loc int32, v []float32)  { gl.Uniform2fv(loc, int32(len(v)/2), fptr(v)) }
func (d *Driver) Uniform3fv(loc int32, v []float32)  { gl.Uniform3fv(loc, int32(len(v)/3), fptr(v)) }
func (d *Driver) Uniform4fv(loc int32, v []float32)  { gl.Uniform4fv(loc, int32(len(v)/4), fptr(v)) }
func (d *Driver) Uniform1i(loc int32, v int32)       { gl.Uniform1i(loc, v) }
func (d *Driver) Uniform1iv(loc int32, v []int32)    { gl.Uniform1iv(loc, int32(len(v)), iptr(v)) }
func (d *Driver) Uniform2iv(loc int32, v []int32)    { gl.Uniform2iv(loc, int32(len(v)/2), iptr(v)) }
func (d *Driver) Uniform3iv(loc int32, v []int32)    { gl.Uniform3iv(loc, int32(len(v)/3), iptr(v)) }
func (d *Driver) Uniform4iv(loc int32, v []int32)    { gl.Uniform4iv(loc, int32(len(v)/4), iptr(v)) }

func (d *Driver) UniformMatrix2fv(loc int32, v []float32) {
	gl.UniformMatrix2fv(loc, int32(len(v)/4), false, fptr(v))
}

func (d *Driver) UniformMatrix3fv(loc int32, v []float32) {
	gl.UniformMatrix3fv(loc, int32(len(v)/9), false, fptr(v))
}

func (d *Driver) UniformMatrix4fv(loc int32, v []float32) {
	gl.UniformMatrix4fv(loc, int32(len(v)/16), false, fptr(v))
}

// ── Framebuffers ──

func (d *Driver) CreateFramebuffer() gpu.Handle {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return gpu.Handle(id)
}

func (d *Driver) DeleteFramebuffer(fb gpu.Handle) {
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
}

func (d *Driver) BindFramebuffer(fb gpu.Handle) { gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb)) }

func (d *Driver) FramebufferTexture2D(att gpu.Attachment, target gpu.TextureTarget, tex gpu.Handle, level int) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, uint32(att), uint32(target), uint32(tex), int32(level))
}

func (d *Driver) CreateRenderbuffer() gpu.Handle {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return gpu.Handle(id)
}

func (d *Driver) DeleteRenderbuffer(rb gpu.Handle) {
	id := uint32(rb)
	gl.DeleteRenderbuffers(1, &id)
}

func (d *Driver) RenderbufferStorage(rb gpu.Handle, format gpu.RenderbufferFormat, width, height int) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, uint32(rb))
	gl.RenderbufferStorage(gl.RENDERBUFFER, uint32(format), int32(width), int32(height))
}

func (d *Driver) FramebufferRenderbuffer(att gpu.Attachment, rb gpu.Handle) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, uint32(att), gl.RENDERBUFFER, uint32(rb))
}

func (d *Driver) FramebufferComplete() bool {
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.log.Debug("framebuffer status", zap.Uint32("status", status))
		return false
	}
	return true
}

func (d *Driver) ReadPixels(x, y, width, height int, format gpu.PixelFormat, typ gpu.DataType, dst []byte) {
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), uint32(format), uint32(typ), ptr(dst))
}

// ── Draw calls ──

func (d *Driver) DrawArrays(mode gpu.DrawMode, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (d *Driver) DrawElements(mode gpu.DrawMode, count int, typ gpu.DataType, offset int) {
	gl.DrawElementsWithOffset(uint32(mode), int32(count), uint32(typ), uintptr(offset))
}

func (d *Driver) DrawArraysInstanced(mode gpu.DrawMode, first, count, instances int) {
	gl.DrawArraysInstanced(uint32(mode), int32(first), int32(count), int32(instances))
}

func (d *Driver) DrawElementsInstanced(mode gpu.DrawMode, count int, typ gpu.DataType, offset, instances int) {
	gl.DrawElementsInstanced(uint32(mode), int32(count), uint32(typ), gl.PtrOffset(offset), int32(instances))
}

func (d *Driver) Limit(l gpu.Limit) int {
	var v int32
	gl.GetIntegerv(uint32(l), &v)
	return int(v)
}
