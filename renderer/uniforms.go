package renderer

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"glscene/core"
	"glscene/gpu"
	"glscene/textures"
)

// Binder is what uniform leaves need from the renderer: texture units,
// texture binding, and scratch buffers for flattening.
type Binder interface {
	// TextureUnit maps a program-local unit onto one the device has.
	TextureUnit(unit int) int
	SetTexture2D(t *textures.Texture, unit int)
	SetTextureCube(t *textures.Texture, unit int)
	Scratch() *ScratchPool
}

// UniformStruct supplies the members of a struct uniform. Arrays of structs
// are passed as []UniformStruct.
type UniformStruct interface {
	UniformField(name string) (any, bool)
}

// Uniform is a node of the binding tree.
type Uniform interface {
	ID() string
	set(d gpu.Driver, v any, b Binder) bool
}

// ── Leaves ──

// SingleUniform is a non-array uniform of a basic or sampler type.
type SingleUniform struct {
	id   string
	addr int32
	typ  gpu.UniformType
	unit int // first texture unit of a sampler, fixed when the tree is built

	floats []float32
	ints   []int32
}

func (u *SingleUniform) ID() string { return u.id }

func (u *SingleUniform) set(d gpu.Driver, v any, b Binder) bool {
	switch {
	case isSampler(u.typ):
		tex, ok := v.(*textures.Texture)
		if !ok && v != nil {
			return false
		}
		unit := b.TextureUnit(u.unit)
		if u.changedInts([]int32{int32(unit)}) {
			d.Uniform1i(u.addr, int32(unit))
		}
		if u.typ == gpu.TypeSamplerCube {
			b.SetTextureCube(tex, unit)
		} else {
			b.SetTexture2D(tex, unit)
		}
		return true
	case isIntType(u.typ):
		buf := b.Scratch().Ints(components(u.typ))
		if !flattenInts(buf, v) {
			return false
		}
		if u.changedInts(buf) {
			uploadInts(d, u.typ, u.addr, buf)
		}
		return true
	default:
		n := components(u.typ)
		buf := b.Scratch().Floats(n)
		if !flattenFloats(buf, v, n) {
			return false
		}
		if u.changedFloats(buf) {
			uploadFloats(d, u.typ, u.addr, buf)
		}
		return true
	}
}

func (u *SingleUniform) changedFloats(v []float32) bool {
	if slices.Equal(u.floats, v) {
		return false
	}
	u.floats = append(u.floats[:0], v...)
	return true
}

func (u *SingleUniform) changedInts(v []int32) bool {
	if slices.Equal(u.ints, v) {
		return false
	}
	u.ints = append(u.ints[:0], v...)
	return true
}

// PureArrayUniform is an array of a basic or sampler type, uploaded with one
// driver call.
type PureArrayUniform struct {
	SingleUniform
	size int
}

func (u *PureArrayUniform) set(d gpu.Driver, v any, b Binder) bool {
	item := components(u.typ)
	switch {
	case isSampler(u.typ):
		texs, ok := v.([]*textures.Texture)
		if !ok {
			return false
		}
		units := b.Scratch().Ints(u.size)
		for i := range units {
			units[i] = int32(b.TextureUnit(u.unit + i))
		}
		if u.changedInts(units) {
			d.Uniform1iv(u.addr, units)
		}
		for i, unit := range units {
			var t *textures.Texture
			if i < len(texs) {
				t = texs[i]
			}
			if u.typ == gpu.TypeSamplerCube {
				b.SetTextureCube(t, int(unit))
			} else {
				b.SetTexture2D(t, int(unit))
			}
		}
		return true
	case isIntType(u.typ):
		buf := b.Scratch().Ints(u.size * item)
		if !flattenInts(buf, v) {
			return false
		}
		if u.changedInts(buf) {
			uploadInts(d, u.typ, u.addr, buf)
		}
		return true
	default:
		buf := b.Scratch().Floats(u.size * item)
		if !flattenFloats(buf, v, item) {
			return false
		}
		if u.changedFloats(buf) {
			uploadFloats(d, u.typ, u.addr, buf)
		}
		return true
	}
}

// ── Interior ──

// StructuredUniform groups the members or elements sharing a name prefix.
type StructuredUniform struct {
	id  string
	Seq []Uniform
	Map map[string]Uniform
}

func newStructuredUniform(id string) *StructuredUniform {
	return &StructuredUniform{id: id, Map: make(map[string]Uniform)}
}

func (u *StructuredUniform) ID() string { return u.id }

func (u *StructuredUniform) set(d gpu.Driver, v any, b Binder) bool {
	ok := true
	switch val := v.(type) {
	case UniformStruct:
		for _, child := range u.Seq {
			if fv, found := val.UniformField(child.ID()); found {
				ok = child.set(d, fv, b) && ok
			}
		}
	case []UniformStruct:
		for _, child := range u.Seq {
			i := arrayIndex(child.ID())
			if i >= 0 && i < len(val) && val[i] != nil {
				ok = child.set(d, val[i], b) && ok
			}
		}
	default:
		return false
	}
	return ok
}

func (u *StructuredUniform) add(child Uniform) {
	u.Seq = append(u.Seq, child)
	u.Map[child.ID()] = child
}

func arrayIndex(id string) int {
	n := 0
	if id == "" {
		return -1
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// ── Tree ──

// Uniforms is the root of a program's binding tree.
type Uniforms struct {
	d     gpu.Driver
	log   *zap.Logger
	units int
	StructuredUniform
}

var rePathPart = regexp.MustCompile(`([\w\d_]+)(\])?(\[|\.)?`)

// NewUniforms builds the tree from the program's reflected active uniforms.
func NewUniforms(d gpu.Driver, program gpu.Handle, log *zap.Logger) *Uniforms {
	u := &Uniforms{d: d, log: log, StructuredUniform: *newStructuredUniform("")}
	for _, info := range d.ActiveUniforms(program) {
		u.parse(info)
	}
	return u
}

// parse walks a reflected name such as "pointLights[0].color" or
// "boneMatrices[0]" and inserts its leaf under shared containers.
func (u *Uniforms) parse(info gpu.ActiveInfo) {
	container := &u.StructuredUniform
	path := info.Name
	pos := 0
	for pos < len(path) {
		m := rePathPart.FindStringSubmatchIndex(path[pos:])
		if m == nil || m[0] != 0 {
			return
		}
		id := path[pos+m[2] : pos+m[3]]
		subscript := ""
		if m[6] >= 0 {
			subscript = path[pos+m[6] : pos+m[7]]
		}
		end := pos + m[1]

		if subscript == "" || (subscript == "[" && end+2 == len(path)) {
			leaf := SingleUniform{id: id, addr: info.Location, typ: info.Type}
			if isSampler(info.Type) {
				leaf.unit = u.units
				u.units += max(info.Size, 1)
			}
			if subscript == "" {
				container.add(&leaf)
			} else {
				container.add(&PureArrayUniform{SingleUniform: leaf, size: info.Size})
			}
			return
		}

		next, ok := container.Map[id].(*StructuredUniform)
		if !ok {
			next = newStructuredUniform(id)
			container.add(next)
		}
		container = next
		pos = end
	}
}

// TextureUnits is the number of texture units the program's samplers use.
func (u *Uniforms) TextureUnits() int { return u.units }

// SetValue uploads v to the uniform named name if the program has it.
func (u *Uniforms) SetValue(name string, v any, b Binder) {
	if child, ok := u.Map[name]; ok {
		u.setChild(child, v, b)
	}
}

// Has reports whether the program declares name at its top level.
func (u *Uniforms) Has(name string) bool {
	_, ok := u.Map[name]
	return ok
}

// Upload sets every uniform of seq from values.
func (u *Uniforms) Upload(seq []Uniform, values map[string]any, b Binder) {
	for _, child := range seq {
		if v, ok := values[child.ID()]; ok {
			u.setChild(child, v, b)
		}
	}
}

// SeqWithValue returns the top-level uniforms that have an entry in values.
func (u *Uniforms) SeqWithValue(values map[string]any) []Uniform {
	var out []Uniform
	for _, child := range u.Seq {
		if _, ok := values[child.ID()]; ok {
			out = append(out, child)
		}
	}
	return out
}

func (u *Uniforms) setChild(child Uniform, v any, b Binder) {
	if !child.set(u.d, v, b) && u.log != nil {
		u.log.Warn("uniform value has wrong type",
			zap.String("uniform", child.ID()), zap.String("type", fmt.Sprintf("%T", v)))
	}
}

// ── Value conversion ──

func isSampler(t gpu.UniformType) bool {
	return t == gpu.TypeSampler2D || t == gpu.TypeSamplerCube || t == gpu.TypeSampler2DShadow
}

func isIntType(t gpu.UniformType) bool {
	switch t {
	case gpu.TypeInt, gpu.TypeIVec2, gpu.TypeIVec3, gpu.TypeIVec4,
		gpu.TypeBool, gpu.TypeBVec2, gpu.TypeBVec3, gpu.TypeBVec4:
		return true
	}
	return false
}

func components(t gpu.UniformType) int {
	switch t {
	case gpu.TypeVec2, gpu.TypeIVec2, gpu.TypeBVec2:
		return 2
	case gpu.TypeVec3, gpu.TypeIVec3, gpu.TypeBVec3:
		return 3
	case gpu.TypeVec4, gpu.TypeIVec4, gpu.TypeBVec4, gpu.TypeMat2:
		return 4
	case gpu.TypeMat3:
		return 9
	case gpu.TypeMat4:
		return 16
	}
	return 1
}

// flattenFloats writes v into dst. item is the component count of one
// element, used to pick RGB or RGBA for colors.
func flattenFloats(dst []float32, v any, item int) bool {
	switch x := v.(type) {
	case float32:
		dst[0] = x
	case float64:
		dst[0] = float32(x)
	case int:
		dst[0] = float32(x)
	case mgl32.Vec2:
		copy(dst, x[:])
	case mgl32.Vec3:
		copy(dst, x[:])
	case mgl32.Vec4:
		copy(dst, x[:])
	case mgl32.Mat2:
		copy(dst, x[:])
	case mgl32.Mat3:
		copy(dst, x[:])
	case mgl32.Mat4:
		copy(dst, x[:])
	case core.Color:
		putColor(dst, x, item)
	case []float32:
		copy(dst, x)
	case []mgl32.Vec2:
		for i := range x {
			if i*2 >= len(dst) {
				break
			}
			copy(dst[i*2:], x[i][:])
		}
	case []mgl32.Vec3:
		for i := range x {
			if i*3 >= len(dst) {
				break
			}
			copy(dst[i*3:], x[i][:])
		}
	case []mgl32.Vec4:
		for i := range x {
			if i*4 >= len(dst) {
				break
			}
			copy(dst[i*4:], x[i][:])
		}
	case []mgl32.Mat3:
		for i := range x {
			if i*9 >= len(dst) {
				break
			}
			copy(dst[i*9:], x[i][:])
		}
	case []mgl32.Mat4:
		for i := range x {
			if i*16 >= len(dst) {
				break
			}
			copy(dst[i*16:], x[i][:])
		}
	case []core.Color:
		for i := range x {
			if i*item >= len(dst) {
				break
			}
			putColor(dst[i*item:], x[i], item)
		}
	default:
		return false
	}
	return true
}

func putColor(dst []float32, c core.Color, item int) {
	if item >= 4 {
		copy(dst, []float32{c.R, c.G, c.B, c.A})
		return
	}
	copy(dst, []float32{c.R, c.G, c.B})
}

func flattenInts(dst []int32, v any) bool {
	switch x := v.(type) {
	case int32:
		dst[0] = x
	case int:
		dst[0] = int32(x)
	case bool:
		if x {
			dst[0] = 1
		}
	case []int32:
		copy(dst, x)
	case []int:
		for i := range x {
			if i >= len(dst) {
				break
			}
			dst[i] = int32(x[i])
		}
	case []bool:
		for i := range x {
			if i >= len(dst) {
				break
			}
			if x[i] {
				dst[i] = 1
			}
		}
	default:
		return false
	}
	return true
}

func uploadFloats(d gpu.Driver, t gpu.UniformType, loc int32, v []float32) {
	switch t {
	case gpu.TypeFloat:
		if len(v) == 1 {
			d.Uniform1f(loc, v[0])
		} else {
			d.Uniform1fv(loc, v)
		}
	case gpu.TypeVec2:
		d.Uniform2fv(loc, v)
	case gpu.TypeVec3:
		d.Uniform3fv(loc, v)
	case gpu.TypeVec4:
		d.Uniform4fv(loc, v)
	case gpu.TypeMat2:
		d.UniformMatrix2fv(loc, v)
	case gpu.TypeMat3:
		d.UniformMatrix3fv(loc, v)
	case gpu.TypeMat4:
		d.UniformMatrix4fv(loc, v)
	}
}

func uploadInts(d gpu.Driver, t gpu.UniformType, loc int32, v []int32) {
	switch components(t) {
	case 1:
		if len(v) == 1 {
			d.Uniform1i(loc, v[0])
		} else {
			d.Uniform1iv(loc, v)
		}
	case 2:
		d.Uniform2iv(loc, v)
	case 3:
		d.Uniform3iv(loc, v)
	case 4:
		d.Uniform4iv(loc, v)
	}
}

