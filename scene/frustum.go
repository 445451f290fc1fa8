package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
)

// Frustum holds the six clip planes of a view frustum, normals pointing
// inward.
type Frustum struct {
	Planes [6]core.Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six frustum planes from a view-projection matrix
// (Gribb/Hartmann). The planes are normalized so Distance returns a true
// distance in world units.
func FrustumFromVP(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	var f Frustum
	f.Planes[0] = plane(r3.Add(r0))
	f.Planes[1] = plane(r3.Sub(r0))
	f.Planes[2] = plane(r3.Add(r1))
	f.Planes[3] = plane(r3.Sub(r1))
	f.Planes[4] = plane(r3.Add(r2))
	f.Planes[5] = plane(r3.Sub(r2))
	return f
}

func plane(v mgl32.Vec4) core.Plane {
	return core.Plane{Normal: v.Vec3(), Constant: v.W()}.Normalized()
}

// IntersectsSphere returns false if the sphere is completely outside.
func (f *Frustum) IntersectsSphere(s core.Sphere) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether pt is inside all six planes.
func (f *Frustum) ContainsPoint(pt mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(pt) < 0 {
			return false
		}
	}
	return true
}
