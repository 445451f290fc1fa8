package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
	"glscene/materials"
	"glscene/textures"
)

// LightKind is the closed set of light variants.
type LightKind int

const (
	AmbientLight LightKind = iota
	DirectionalLight
	PointLight
	SpotLight
	HemisphereLight

	LightKindCount
)

func (k LightKind) String() string {
	switch k {
	case AmbientLight:
		return "Ambient"
	case DirectionalLight:
		return "Directional"
	case PointLight:
		return "Point"
	case SpotLight:
		return "Spot"
	case HemisphereLight:
		return "Hemisphere"
	}
	return "Unknown"
}

// Light is the payload of a KindLight node. Position and orientation come from
// the node's world matrix.
type Light struct {
	Kind      LightKind
	Color     core.Color
	Intensity float32

	// GroundColor is the lower hemisphere color of a HemisphereLight; Color
	// is the sky.
	GroundColor core.Color

	// Distance is the cutoff range of point and spot lights (0 = infinite).
	Distance float32
	Decay    float32

	// Angle is the spot cone half-angle in radians; Penumbra in [0,1].
	Angle    float32
	Penumbra float32

	// Target aims directional and spot lights. Nil aims at the world origin.
	Target *Node

	Shadow *LightShadow
}

// LightShadow configures a light's shadow map.
type LightShadow struct {
	Bias      float32
	Radius    float32
	MapWidth  int
	MapHeight int
	Camera    *Camera
	// Handle is the renderer's shadow slot; zero until first shadow pass.
	Handle int
}

// TargetPosition is the world position the light points at.
func (l *Light) TargetPosition() mgl32.Vec3 {
	if l.Target == nil {
		return mgl32.Vec3{}
	}
	return l.Target.WorldPosition()
}

func newLightNode(name string, l *Light) *Node {
	n := newNode(name, KindLight)
	n.Light = l
	return n
}

func NewAmbientLight(color core.Color, intensity float32) *Node {
	return newLightNode("AmbientLight", &Light{Kind: AmbientLight, Color: color, Intensity: intensity})
}

// NewDirectionalLight shines from the node position toward its target.
func NewDirectionalLight(color core.Color, intensity float32) *Node {
	l := &Light{Kind: DirectionalLight, Color: color, Intensity: intensity}
	l.Shadow = &LightShadow{
		MapWidth: 512, MapHeight: 512,
		Camera: NewOrthographicCamera(-5, 5, 5, -5, 0.5, 500),
	}
	n := newLightNode("DirectionalLight", l)
	n.Transform.Position = mgl32.Vec3{0, 1, 0}
	return n
}

func NewPointLight(color core.Color, intensity, distance, decay float32) *Node {
	l := &Light{Kind: PointLight, Color: color, Intensity: intensity, Distance: distance, Decay: decay}
	l.Shadow = &LightShadow{
		MapWidth: 512, MapHeight: 512,
		Camera: NewCamera(mgl32.DegToRad(90), 1, 0.5, 500),
	}
	return newLightNode("PointLight", l)
}

func NewSpotLight(color core.Color, intensity, distance, angle, penumbra, decay float32) *Node {
	l := &Light{
		Kind: SpotLight, Color: color, Intensity: intensity, Distance: distance,
		Angle: angle, Penumbra: penumbra, Decay: decay,
	}
	l.Shadow = &LightShadow{
		MapWidth: 512, MapHeight: 512,
		Camera: NewCamera(math32.Min(2*angle, math32.Pi*0.95), 1, 0.5, 500),
	}
	n := newLightNode("SpotLight", l)
	n.Transform.Position = mgl32.Vec3{0, 1, 0}
	return n
}

func NewHemisphereLight(sky, ground core.Color, intensity float32) *Node {
	l := &Light{Kind: HemisphereLight, Color: sky, GroundColor: ground, Intensity: intensity}
	n := newLightNode("HemisphereLight", l)
	n.Transform.Position = mgl32.Vec3{0, 1, 0}
	return n
}

// FlareElement is one ghost of a lens flare, placed along the line from the
// light's screen position through the screen center.
type FlareElement struct {
	Texture  *textures.Texture
	Size     float32 // pixels
	Distance float32 // 0 at the light, 1 at the opposite side
	Opacity  float32
	Color    core.Color
	// Blending of the element; the zero value draws additively.
	Blending materials.Blending
}

// LensFlare is the payload of a KindLensFlare node.
type LensFlare struct {
	Elements []FlareElement
}

// NewLensFlare creates a flare node at the node position.
func NewLensFlare(name string, elements ...FlareElement) *Node {
	n := newNode(name, KindLensFlare)
	n.Flare = &LensFlare{Elements: elements}
	return n
}
