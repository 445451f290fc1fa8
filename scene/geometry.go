package scene

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
)

// Attribute is one per-vertex (or per-instance) float stream.
type Attribute struct {
	Data       []float32
	ItemSize   int
	Normalized bool
	// Dynamic hints that the stream is rewritten often.
	Dynamic bool
	// Divisor > 0 makes the attribute advance per instance.
	Divisor uint32
	// Version increments when Data changes; the renderer re-uploads on a
	// mismatch.
	Version uint64
}

func NewAttribute(data []float32, itemSize int) *Attribute {
	return &Attribute{Data: data, ItemSize: itemSize, Version: 1}
}

// Count is the number of items (vertices or instances).
func (a *Attribute) Count() int {
	if a.ItemSize == 0 {
		return 0
	}
	return len(a.Data) / a.ItemSize
}

func (a *Attribute) NeedsUpdate() { a.Version++ }

// Index is a triangle or line index stream.
type Index struct {
	Data    []uint32
	Version uint64
}

func (i *Index) NeedsUpdate() { i.Version++ }

// Group is a sub-range of the geometry drawn with one material slot.
type Group struct {
	Start, Count  int
	MaterialIndex int
}

// DrawRange limits the drawn range; a negative Count means "to the end".
type DrawRange struct {
	Start, Count int
}

var geometryIDCounter atomic.Uint32

// Geometry is a set of named attribute streams with an optional index.
type Geometry struct {
	ID   uint32
	Name string

	Attributes map[string]*Attribute
	// MorphAttributes maps "position"/"normal" to per-target streams.
	MorphAttributes map[string][]*Attribute
	Index           *Index
	Groups          []Group
	DrawRange       DrawRange

	BoundingSphere *core.Sphere

	// MaxInstancedCount > 0 draws that many instances.
	MaxInstancedCount int

	// Handle is the renderer's slot for this geometry; zero until first use.
	Handle int
}

func NewGeometry(name string) *Geometry {
	return &Geometry{
		ID:              geometryIDCounter.Add(1),
		Name:            name,
		Attributes:      make(map[string]*Attribute),
		MorphAttributes: make(map[string][]*Attribute),
		DrawRange:       DrawRange{Count: -1},
	}
}

func (g *Geometry) SetAttribute(name string, a *Attribute) *Geometry {
	g.Attributes[name] = a
	if name == "position" {
		g.BoundingSphere = nil
	}
	return g
}

func (g *Geometry) Attribute(name string) *Attribute {
	return g.Attributes[name]
}

func (g *Geometry) SetIndex(indices []uint32) *Geometry {
	if g.Index == nil {
		g.Index = &Index{}
	}
	g.Index.Data = indices
	g.Index.Version++
	return g
}

func (g *Geometry) AddGroup(start, count, materialIndex int) {
	g.Groups = append(g.Groups, Group{Start: start, Count: count, MaterialIndex: materialIndex})
}

// AddMorphTarget appends a morph position (and optional normal) stream.
func (g *Geometry) AddMorphTarget(position, normal []float32) {
	g.MorphAttributes["position"] = append(g.MorphAttributes["position"], NewAttribute(position, 3))
	if normal != nil {
		g.MorphAttributes["normal"] = append(g.MorphAttributes["normal"], NewAttribute(normal, 3))
	}
}

// ComputeBoundingSphere derives the sphere from the position stream.
func (g *Geometry) ComputeBoundingSphere() {
	pos := g.Attributes["position"]
	if pos == nil || pos.ItemSize != 3 {
		g.BoundingSphere = &core.Sphere{}
		return
	}
	s := core.SphereFromPoints(pos.Data)
	g.BoundingSphere = &s
}

// Skeleton binds a skinned mesh to bone nodes.
type Skeleton struct {
	Bones        []*Node
	BoneInverses []mgl32.Mat4
	// BoneMatrices holds 16 floats per bone, refreshed by Update.
	BoneMatrices []float32

	BindMatrix        mgl32.Mat4
	BindMatrixInverse mgl32.Mat4
}

// NewSkeleton creates a skeleton. Missing inverses default to identity.
func NewSkeleton(bones []*Node, inverses []mgl32.Mat4) *Skeleton {
	inv := make([]mgl32.Mat4, len(bones))
	for i := range bones {
		if i < len(inverses) {
			inv[i] = inverses[i]
		} else {
			inv[i] = mgl32.Ident4()
		}
	}
	return &Skeleton{
		Bones:             bones,
		BoneInverses:      inv,
		BoneMatrices:      make([]float32, 16*len(bones)),
		BindMatrix:        mgl32.Ident4(),
		BindMatrixInverse: mgl32.Ident4(),
	}
}

// Update refreshes BoneMatrices from the bones' cached world matrices.
func (s *Skeleton) Update() {
	for i, b := range s.Bones {
		m := b.WorldMatrix().Mul4(s.BoneInverses[i])
		copy(s.BoneMatrices[i*16:], m[:])
	}
}
