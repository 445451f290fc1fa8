package scene

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
	"glscene/materials"
)

// Particle is a single live particle instance.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Life     float32 // remaining lifetime in seconds
	MaxLife  float32 // total initial lifetime in seconds
	Color    core.Color
}

// ParticleEmitter simulates CPU particles and mirrors them into a Points
// node whose position and color streams are rewritten every Update.
type ParticleEmitter struct {
	// Spawn position + direction
	Position  mgl32.Vec3
	Direction mgl32.Vec3 // mean emission direction (must be normalised)
	Spread    float32    // half-angle cone spread in radians

	Rate int // particles per second

	MinLife, MaxLife   float32
	MinSpeed, MaxSpeed float32

	// Colour over lifetime: linearly interpolated from birth to death
	StartColor core.Color
	EndColor   core.Color

	Gravity mgl32.Vec3

	// Active stops spawning when false; live particles finish out.
	Active bool

	Particles []Particle
	// Node draws the particles; add it to a scene.
	Node *Node

	positions  *Attribute
	colors     *Attribute
	pool       int
	spawnAccum float32
	rng        *rand.Rand
}

// NewParticleEmitter returns a fire-like emitter drawn with additive points.
func NewParticleEmitter(maxParticles int, size float32) *ParticleEmitter {
	e := &ParticleEmitter{
		Direction:  mgl32.Vec3{0, 1, 0},
		Spread:     0.4,
		Rate:       80,
		MinLife:    0.6,
		MaxLife:    1.8,
		MinSpeed:   2.0,
		MaxSpeed:   5.0,
		StartColor: core.Color{R: 1.0, G: 0.7, B: 0.15, A: 1.0},
		EndColor:   core.Color{R: 0.8, G: 0.05, B: 0.0, A: 0.0},
		Gravity:    mgl32.Vec3{0, 0.3, 0},
		Active:     true,
		Particles:  make([]Particle, 0, maxParticles),
		pool:       maxParticles,
		rng:        rand.New(rand.NewSource(42)),
	}

	e.positions = NewAttribute(make([]float32, 3*maxParticles), 3)
	e.positions.Dynamic = true
	e.colors = NewAttribute(make([]float32, 3*maxParticles), 3)
	e.colors.Dynamic = true

	g := NewGeometry("Particles")
	g.SetAttribute("position", e.positions)
	g.SetAttribute("color", e.colors)
	g.DrawRange.Count = 0

	m := materials.New(materials.KindPoints)
	m.Points.Size = size
	m.VertexColors = materials.VertexColorsOn
	m.Blending = materials.AdditiveBlending
	m.Transparent = true
	m.DepthWrite = false

	e.Node = NewPoints("ParticleEmitter", g, m)
	e.Node.FrustumCulled = false
	return e
}

// Update advances the simulation by dt seconds and refreshes the streams.
func (e *ParticleEmitter) Update(dt float32) {
	if e.Active {
		e.spawnAccum += float32(e.Rate) * dt
		for e.spawnAccum >= 1.0 && len(e.Particles) < e.pool {
			e.spawnParticle()
			e.spawnAccum -= 1.0
		}
	}

	// Integrate and cull dead particles (compact in-place)
	write := 0
	for i := range e.Particles {
		p := &e.Particles[i]
		p.Life -= dt
		if p.Life <= 0 {
			continue
		}
		p.Velocity = p.Velocity.Add(e.Gravity.Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))

		t := 1.0 - p.Life/p.MaxLife
		p.Color = lerpColor(e.StartColor, e.EndColor, t)

		e.Particles[write] = *p
		write++
	}
	e.Particles = e.Particles[:write]

	for i, p := range e.Particles {
		copy(e.positions.Data[3*i:], p.Position[:])
		// additive blending: fade by scaling toward black
		c := p.Color.Scale(p.Color.A)
		e.colors.Data[3*i], e.colors.Data[3*i+1], e.colors.Data[3*i+2] = c.R, c.G, c.B
	}
	e.positions.NeedsUpdate()
	e.colors.NeedsUpdate()
	e.Node.Geometry.DrawRange.Count = len(e.Particles)
}

// Count returns the number of live particles.
func (e *ParticleEmitter) Count() int { return len(e.Particles) }

func (e *ParticleEmitter) spawnParticle() {
	life := e.MinLife + e.rng.Float32()*(e.MaxLife-e.MinLife)
	speed := e.MinSpeed + e.rng.Float32()*(e.MaxSpeed-e.MinSpeed)
	dir := randomInCone(e.Direction, e.Spread, e.rng)
	e.Particles = append(e.Particles, Particle{
		Position: e.Position,
		Velocity: dir.Mul(speed),
		Life:     life,
		MaxLife:  life,
		Color:    e.StartColor,
	})
}

// randomInCone returns a uniformly-distributed unit vector within a cone of
// half-angle spread around axis.
func randomInCone(axis mgl32.Vec3, spread float32, rng *rand.Rand) mgl32.Vec3 {
	phi := rng.Float32() * 2.0 * math32.Pi
	cosMin := math32.Cos(spread)
	cosTheta := cosMin + rng.Float32()*(1.0-cosMin)
	sinTheta := math32.Sqrt(1.0 - cosTheta*cosTheta)

	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(axis.Dot(up)) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}
	right := axis.Cross(up).Normalize()
	up = right.Cross(axis).Normalize()

	return axis.Mul(cosTheta).
		Add(right.Mul(sinTheta * math32.Cos(phi))).
		Add(up.Mul(sinTheta * math32.Sin(phi))).
		Normalize()
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
