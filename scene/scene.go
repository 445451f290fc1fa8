package scene

import (
	"glscene/core"
	"glscene/materials"
)

// FogKind selects the fog falloff.
type FogKind int

const (
	FogLinear FogKind = iota
	FogExp2
)

// Fog attenuates materials with Fog enabled.
type Fog struct {
	Kind    FogKind
	Color   core.Color
	Near    float32
	Far     float32
	Density float32
}

func NewFog(color core.Color, near, far float32) *Fog {
	return &Fog{Kind: FogLinear, Color: color, Near: near, Far: far}
}

func NewFogExp2(color core.Color, density float32) *Fog {
	return &Fog{Kind: FogExp2, Color: color, Density: density}
}

// Sky is a procedural gradient: Horizon at eye level blending to Zenith
// overhead and to Ground below.
type Sky struct {
	Zenith  core.Color
	Horizon core.Color
	Ground  core.Color
}

// NewSky returns a blue sky over a brown ground.
func NewSky() *Sky {
	return &Sky{
		Zenith:  core.Color{R: 0.10, G: 0.30, B: 0.70, A: 1},
		Horizon: core.Color{R: 0.60, G: 0.80, B: 1.00, A: 1},
		Ground:  core.Color{R: 0.30, G: 0.25, B: 0.20, A: 1},
	}
}

// Scene is the root of a renderable graph.
type Scene struct {
	Root *Node
	Fog  *Fog
	// Background, when set, replaces the renderer clear color.
	Background *core.Color
	// Sky, when set, is drawn behind all geometry after the clear.
	Sky *Sky
	// OverrideMaterial, when set, is used for every drawable.
	OverrideMaterial *materials.Material
	// AutoUpdate makes the renderer resolve world matrices each frame.
	AutoUpdate bool
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		AutoUpdate: true,
	}
}

func (s *Scene) Add(nodes ...*Node) {
	for _, n := range nodes {
		s.Root.AddChild(n)
	}
}

func (s *Scene) Remove(node *Node) {
	s.Root.RemoveChild(node)
}

// UpdateWorldMatrices resolves every world matrix in the graph.
func (s *Scene) UpdateWorldMatrices() {
	s.Root.UpdateWorldMatrix()
}

func (s *Scene) Traverse(fn func(*Node)) {
	s.Root.Traverse(fn)
}

// Lights returns every light node in traversal order.
func (s *Scene) Lights() []*Node {
	var out []*Node
	s.Root.Traverse(func(n *Node) {
		if n.Kind == KindLight {
			out = append(out, n)
		}
	})
	return out
}
