package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// builder accumulates packed vertex streams for the primitive generators.
type builder struct {
	pos, norm, uv []float32
	idx           []uint32
}

func (b *builder) vertex(p, n mgl32.Vec3, u, v float32) uint32 {
	i := uint32(len(b.pos) / 3)
	b.pos = append(b.pos, p[0], p[1], p[2])
	b.norm = append(b.norm, n[0], n[1], n[2])
	b.uv = append(b.uv, u, v)
	return i
}

func (b *builder) geometry(name string) *Geometry {
	g := NewGeometry(name)
	g.SetAttribute("position", NewAttribute(b.pos, 3))
	g.SetAttribute("normal", NewAttribute(b.norm, 3))
	g.SetAttribute("uv", NewAttribute(b.uv, 2))
	g.SetIndex(b.idx)
	g.ComputeBoundingSphere()
	return g
}

// grid emits a (cols+1)×(rows+1) vertex lattice and its two triangles per
// cell; at maps lattice coordinates in [0,1]² to position and normal.
func (b *builder) grid(cols, rows int, at func(u, v float32) (mgl32.Vec3, mgl32.Vec3)) {
	base := uint32(len(b.pos) / 3)
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			u, v := float32(c)/float32(cols), float32(r)/float32(rows)
			p, n := at(u, v)
			b.vertex(p, n, u, 1-v)
		}
	}
	stride := uint32(cols + 1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a := base + uint32(r)*stride + uint32(c)
			d := a + stride
			b.idx = append(b.idx, a, d, a+1, a+1, d, d+1)
		}
	}
}

// CreateSphere generates a UV-sphere geometry
func CreateSphere(radius float32, segments, rings int) *Geometry {
	segments, rings = max(segments, 3), max(rings, 2)
	var b builder
	b.grid(segments, rings, func(u, v float32) (mgl32.Vec3, mgl32.Vec3) {
		phi, theta := v*math32.Pi, u*2*math32.Pi
		n := mgl32.Vec3{
			-math32.Cos(theta) * math32.Sin(phi),
			math32.Cos(phi),
			math32.Sin(theta) * math32.Sin(phi),
		}
		return n.Mul(radius), n
	})
	return b.geometry("Sphere")
}

// CreatePlane generates a flat plane in XZ facing +Y
func CreatePlane(width, depth float32, subdivisions int) *Geometry {
	subdivisions = max(subdivisions, 1)
	var b builder
	b.grid(subdivisions, subdivisions, func(u, v float32) (mgl32.Vec3, mgl32.Vec3) {
		return mgl32.Vec3{(u - 0.5) * width, 0, (v - 0.5) * depth}, mgl32.Vec3{0, 1, 0}
	})
	return b.geometry("Plane")
}

// CreateQuad generates a unit quad in XY facing +Z, centered on the origin.
func CreateQuad() *Geometry {
	var b builder
	b.grid(1, 1, func(u, v float32) (mgl32.Vec3, mgl32.Vec3) {
		return mgl32.Vec3{u - 0.5, 0.5 - v, 0}, mgl32.Vec3{0, 0, 1}
	})
	return b.geometry("Quad")
}

// CreateBox generates an axis-aligned box with one group per face, so a
// six-material list can be applied.
func CreateBox(width, height, depth float32) *Geometry {
	var b builder
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	faces := []struct{ n, u, v mgl32.Vec3 }{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	}
	var groups []Group
	for i, f := range faces {
		start := len(b.idx)
		b.grid(1, 1, func(u, v float32) (mgl32.Vec3, mgl32.Vec3) {
			p := f.n.Add(f.u.Mul(2*u - 1)).Add(f.v.Mul(2*v - 1))
			return mgl32.Vec3{p[0] * half[0], p[1] * half[1], p[2] * half[2]}, f.n
		})
		groups = append(groups, Group{Start: start, Count: len(b.idx) - start, MaterialIndex: i})
	}
	g := b.geometry("Box")
	g.Groups = groups
	return g
}

// CreateTorus generates a torus around the Y axis
func CreateTorus(majorRadius, minorRadius float32, majorSegments, minorSegments int) *Geometry {
	majorSegments, minorSegments = max(majorSegments, 3), max(minorSegments, 3)
	var b builder
	b.grid(majorSegments, minorSegments, func(u, v float32) (mgl32.Vec3, mgl32.Vec3) {
		theta, phi := u*2*math32.Pi, v*2*math32.Pi
		ct, st := math32.Cos(theta), math32.Sin(theta)
		cp, sp := math32.Cos(phi), math32.Sin(phi)
		p := mgl32.Vec3{(majorRadius + minorRadius*cp) * ct, minorRadius * sp, (majorRadius + minorRadius*cp) * st}
		n := mgl32.Vec3{cp * ct, sp, cp * st}
		return p, n
	})
	return b.geometry("Torus")
}
