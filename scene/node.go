package scene

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
	"glscene/materials"
)

// Kind is the closed set of node variants the renderer knows how to draw.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindLine
	KindLineSegments
	KindLineLoop
	KindPoints
	KindSprite
	KindLensFlare
	KindLight

	KindCount
)

var kindNames = [KindCount]string{
	"Group", "Mesh", "Line", "LineSegments", "LineLoop", "Points", "Sprite", "LensFlare", "Light",
}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return "Unknown"
	}
	return kindNames[k]
}

// Drawable reports whether nodes of this kind produce geometry draw calls.
func (k Kind) Drawable() bool {
	switch k {
	case KindMesh, KindLine, KindLineSegments, KindLineLoop, KindPoints:
		return true
	}
	return false
}

// DrawMode is the triangle topology of a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota
	DrawTriangleStrip
	DrawTriangleFan
)

// Layers is a 32-bit visibility mask. Nodes are seen by cameras sharing at
// least one bit.
type Layers uint32

// DefaultLayers enables layer 0 only.
const DefaultLayers Layers = 1

func (l Layers) Test(other Layers) bool { return l&other != 0 }
func (l *Layers) Enable(channel int)    { *l |= 1 << uint(channel) }
func (l *Layers) Disable(channel int)   { *l &^= 1 << uint(channel) }
func (l *Layers) Set(channel int)       { *l = 1 << uint(channel) }

// BeforeRenderFunc runs right before a node is drawn, once per draw item.
type BeforeRenderFunc func(n *Node, camera *Camera, geometry *Geometry, material *materials.Material, group *Group)

// Node represents an object in the scene graph
type Node struct {
	ID        uint32
	Name      string
	Kind      Kind
	Transform core.Transform
	Parent    *Node
	Children  []*Node

	Visible       bool
	Layers        Layers
	FrustumCulled bool
	RenderOrder   int
	CastShadow    bool
	ReceiveShadow bool

	Geometry *Geometry
	Material *materials.Material
	// Materials, when set, maps geometry groups (by MaterialIndex) to
	// materials and takes precedence over Material.
	Materials []*materials.Material
	DrawMode  DrawMode

	Light    *Light
	Flare    *LensFlare
	Skeleton *Skeleton
	// MorphTargetInfluences weights Geometry.MorphAttributes entries.
	MorphTargetInfluences []float32

	OnBeforeRender BeforeRenderFunc

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      mgl32.Mat4
}

var nodeIDCounter atomic.Uint32

func newNode(name string, kind Kind) *Node {
	return &Node{
		ID:               nodeIDCounter.Add(1),
		Name:             name,
		Kind:             kind,
		Transform:        core.NewTransform(),
		Visible:          true,
		Layers:           DefaultLayers,
		FrustumCulled:    true,
		worldMatrixDirty: true,
		worldMatrix:      mgl32.Ident4(),
	}
}

// NewNode creates an empty group node.
func NewNode(name string) *Node {
	return newNode(name, KindGroup)
}

// NewMesh creates a triangle mesh node.
func NewMesh(name string, geometry *Geometry, material *materials.Material) *Node {
	n := newNode(name, KindMesh)
	n.Geometry, n.Material = geometry, material
	return n
}

// NewMultiMaterialMesh creates a mesh whose geometry groups select materials.
func NewMultiMaterialMesh(name string, geometry *Geometry, mats []*materials.Material) *Node {
	n := newNode(name, KindMesh)
	n.Geometry, n.Materials = geometry, mats
	return n
}

// NewLine creates a line strip (KindLine), separate segments
// (KindLineSegments) or a closed loop (KindLineLoop).
func NewLine(name string, kind Kind, geometry *Geometry, material *materials.Material) *Node {
	switch kind {
	case KindLine, KindLineSegments, KindLineLoop:
	default:
		kind = KindLine
	}
	n := newNode(name, kind)
	n.Geometry, n.Material = geometry, material
	return n
}

// NewPoints creates a point cloud node.
func NewPoints(name string, geometry *Geometry, material *materials.Material) *Node {
	n := newNode(name, KindPoints)
	n.Geometry, n.Material = geometry, material
	return n
}

// NewSprite creates a camera-facing quad drawn after the main passes.
func NewSprite(name string, material *materials.Material) *Node {
	n := newNode(name, KindSprite)
	n.Material = material
	return n
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

// GetWorldMatrix resolves the world transform, recomputing dirty ancestors.
func (n *Node) GetWorldMatrix() mgl32.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = n.Parent.GetWorldMatrix().Mul4(localMatrix)
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

// WorldMatrix returns the cached world transform without resolving it.
// UpdateWorldMatrix (or Scene.UpdateWorldMatrices) must have run since the
// last transform change.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	return n.worldMatrix
}

// WorldPosition is the translation column of the cached world matrix.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.worldMatrix.Col(3).Vec3()
}

// UpdateWorldMatrix resolves the world matrices of n and its subtree.
func (n *Node) UpdateWorldMatrix() {
	n.GetWorldMatrix()
	for _, child := range n.Children {
		child.UpdateWorldMatrix()
	}
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos mgl32.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot mgl32.Quat) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale mgl32.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta mgl32.Vec3) {
	n.Transform.Position = n.Transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

func (n *Node) Rotate(axis mgl32.Vec3, angle float32) {
	rotation := mgl32.QuatRotate(angle, axis.Normalize())
	n.Transform.Rotation = n.Transform.Rotation.Mul(rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
