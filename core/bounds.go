package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is the set of points p with Normal·p + Constant = 0.
type Plane struct {
	Normal   mgl32.Vec3
	Constant float32
}

// PlaneFromNormalAndPoint builds a plane through point facing normal.
func PlaneFromNormalAndPoint(normal, point mgl32.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Constant: -point.Dot(n)}
}

// Normalized rescales the plane so Normal has unit length.
func (p Plane) Normalized() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / l), Constant: p.Constant / l}
}

// Distance is the signed distance from the plane to pt.
func (p Plane) Distance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.Constant
}

// Transform applies an affine matrix to the plane.
func (p Plane) Transform(m mgl32.Mat4) Plane {
	normalMatrix := m.Mat3().Inv().Transpose()
	ref := p.Normal.Mul(-p.Constant).Vec4(1)
	point := m.Mul4x1(ref).Vec3()
	n := normalMatrix.Mul3x1(p.Normal).Normalize()
	return Plane{Normal: n, Constant: -point.Dot(n)}
}

// Vec4 packs the plane as (nx, ny, nz, constant).
func (p Plane) Vec4() mgl32.Vec4 {
	return p.Normal.Vec4(p.Constant)
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Transform moves the sphere by m; the radius grows by the largest axis scale.
func (s Sphere) Transform(m mgl32.Mat4) Sphere {
	c := m.Mul4x1(s.Center.Vec4(1)).Vec3()
	sx := m.Col(0).Vec3().LenSqr()
	sy := m.Col(1).Vec3().LenSqr()
	sz := m.Col(2).Vec3().LenSqr()
	scale := math32.Sqrt(math32.Max(sx, math32.Max(sy, sz)))
	return Sphere{Center: c, Radius: s.Radius * scale}
}

// SphereFromPoints returns a sphere centered on the bounding box of a packed
// xyz slice with the radius of the farthest point.
func SphereFromPoints(xyz []float32) Sphere {
	if len(xyz) < 3 {
		return Sphere{}
	}
	lo := mgl32.Vec3{xyz[0], xyz[1], xyz[2]}
	hi := lo
	for i := 3; i+2 < len(xyz); i += 3 {
		for k := 0; k < 3; k++ {
			lo[k] = math32.Min(lo[k], xyz[i+k])
			hi[k] = math32.Max(hi[k], xyz[i+k])
		}
	}
	center := lo.Add(hi).Mul(0.5)
	var r2 float32
	for i := 0; i+2 < len(xyz); i += 3 {
		d := mgl32.Vec3{xyz[i], xyz[i+1], xyz[i+2]}.Sub(center)
		r2 = math32.Max(r2, d.LenSqr())
	}
	return Sphere{Center: center, Radius: math32.Sqrt(r2)}
}
