package gpu

// Driver is a synchronous, stateful graphics device. Every call is issued in
// order on the calling goroutine; implementations are not safe for concurrent
// use. The renderer never calls the pipeline-state setters directly, only
// through its state cache, so a Driver may assume nothing about redundancy.
type Driver interface {
	// ── Pipeline state ──

	Enable(c Capability)
	Disable(c Capability)
	BlendEquationSeparate(rgb, alpha BlendEquation)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor)
	DepthFunc(f CompareFunc)
	DepthMask(write bool)
	ClearDepth(d float64)
	StencilMask(mask uint32)
	StencilFunc(f CompareFunc, ref int32, mask uint32)
	StencilOp(fail, zfail, zpass StencilOp)
	ClearStencil(s int32)
	ColorMask(r, g, b, a bool)
	ClearColor(r, g, b, a float32)
	CullFace(f Face)
	FrontFace(w Winding)
	PolygonOffset(factor, units float32)
	LineWidth(w float32)
	Scissor(x, y, width, height int32)
	Viewport(x, y, width, height int32)
	Clear(mask ClearMask)

	// ── Textures ──

	ActiveTexture(unit int)
	BindTexture(target TextureTarget, tex Handle)
	CreateTexture() Handle
	DeleteTexture(tex Handle)
	TexParameter(target TextureTarget, param TextureParam, value int32)
	// TexImage2D allocates level storage for the bound texture. A nil pixels
	// slice allocates without uploading.
	TexImage2D(target TextureTarget, level int, internal PixelFormat, width, height int, format PixelFormat, typ DataType, pixels []byte)
	GenerateMipmap(target TextureTarget)

	// ── Buffers and vertex input ──

	CreateBuffer() Handle
	DeleteBuffer(buf Handle)
	BindBuffer(target BufferTarget, buf Handle)
	BufferData(target BufferTarget, data []byte, usage BufferUsage)
	BufferSubData(target BufferTarget, offset int, data []byte)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	VertexAttribDivisor(index, divisor uint32)
	VertexAttribPointer(index uint32, size int, typ DataType, normalized bool, stride, offset int)

	// ── Shaders and programs ──

	CreateShader(stage ShaderStage) Handle
	ShaderSource(shader Handle, src string)
	CompileShader(shader Handle)
	ShaderCompiled(shader Handle) bool
	ShaderInfoLog(shader Handle) string
	DeleteShader(shader Handle)
	// ShaderPrecision reports the precision bits of a float qualifier in a
	// stage, 0 when unsupported.
	ShaderPrecision(stage ShaderStage, p Precision) int

	CreateProgram() Handle
	AttachShader(program, shader Handle)
	BindAttribLocation(program Handle, index uint32, name string)
	LinkProgram(program Handle)
	ProgramLinked(program Handle) bool
	ProgramInfoLog(program Handle) string
	DeleteProgram(program Handle)
	UseProgram(program Handle)
	// ActiveUniforms and ActiveAttributes reflect a linked program, locations
	// included.
	ActiveUniforms(program Handle) []ActiveInfo
	ActiveAttributes(program Handle) []ActiveInfo

	// ── Uniform upload (current program) ──

	Uniform1f(loc int32, v float32)
	Uniform1fv(loc int32, v []float32)
	Uniform2fv(loc int32, v []float32)
	Uniform3fv(loc int32, v []float32)
	Uniform4fv(loc int32, v []float32)
	Uniform1i(loc int32, v int32)
	Uniform1iv(loc int32, v []int32)
	Uniform2iv(loc int32, v []int32)
	Uniform3iv(loc int32, v []int32)
	Uniform4iv(loc int32, v []int32)
	UniformMatrix2fv(loc int32, v []float32)
	UniformMatrix3fv(loc int32, v []float32)
	UniformMatrix4fv(loc int32, v []float32)

	// ── Framebuffers ──

	CreateFramebuffer() Handle
	DeleteFramebuffer(fb Handle)
	// BindFramebuffer binds fb for drawing and reading; 0 is the default
	// framebuffer.
	BindFramebuffer(fb Handle)
	FramebufferTexture2D(attachment Attachment, target TextureTarget, tex Handle, level int)
	CreateRenderbuffer() Handle
	DeleteRenderbuffer(rb Handle)
	RenderbufferStorage(rb Handle, format RenderbufferFormat, width, height int)
	FramebufferRenderbuffer(attachment Attachment, rb Handle)
	FramebufferComplete() bool
	ReadPixels(x, y, width, height int, format PixelFormat, typ DataType, dst []byte)

	// ── Draw calls ──

	DrawArrays(mode DrawMode, first, count int)
	DrawElements(mode DrawMode, count int, typ DataType, offset int)
	DrawArraysInstanced(mode DrawMode, first, count, instances int)
	DrawElementsInstanced(mode DrawMode, count int, typ DataType, offset, instances int)

	// Limit returns a device limit, 0 if unknown.
	Limit(l Limit) int
}
