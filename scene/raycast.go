package scene

import (
	"cmp"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
)

// Ray is a half-line in world space. Direction is unit length.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) mgl32.Vec3 { return r.Origin.Add(r.Direction.Mul(t)) }

// Hit is one ray/triangle intersection.
type Hit struct {
	Distance float32
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Node     *Node
	Face     int // triangle index in draw order
}

// RayFromScreen converts a pixel position (origin top-left) to a world-space
// ray through the camera. World matrices must be current.
func RayFromScreen(x, y, width, height float32, camera *Camera) Ray {
	ndcX := 2*x/width - 1
	ndcY := 1 - 2*y/height
	inv := camera.GetViewProjectionMatrix().Inv()

	unproject := func(z float32) mgl32.Vec3 {
		p := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, z, 1})
		return p.Vec3().Mul(1 / p.W())
	}
	near, far := unproject(-1), unproject(1)
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// Raycast returns the triangle hits of visible meshes under root, nearest
// first. Only nodes sharing a layer with layers are tested.
func Raycast(ray Ray, root *Node, layers Layers) []Hit {
	var hits []Hit
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Kind == KindMesh && n.Geometry != nil && n.Layers.Test(layers) {
			if h, ok := raycastMesh(ray, n); ok {
				hits = append(hits, h)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	slices.SortFunc(hits, func(a, b Hit) int { return cmp.Compare(a.Distance, b.Distance) })
	return hits
}

// raySphere reports whether the ray passes within s.
func raySphere(ray Ray, s core.Sphere) bool {
	oc := s.Center.Sub(ray.Origin)
	t := oc.Dot(ray.Direction)
	d2 := oc.LenSqr() - t*t
	if d2 > s.Radius*s.Radius {
		return false
	}
	return t+math32.Sqrt(s.Radius*s.Radius-d2) >= 0
}

// raycastMesh tests every triangle of n's geometry and returns the nearest.
func raycastMesh(ray Ray, n *Node) (Hit, bool) {
	g := n.Geometry
	pos := g.Attributes["position"]
	if pos == nil || pos.ItemSize != 3 {
		return Hit{}, false
	}
	if g.BoundingSphere == nil {
		g.ComputeBoundingSphere()
	}
	world := n.WorldMatrix()
	if !raySphere(ray, g.BoundingSphere.Transform(world)) {
		return Hit{}, false
	}

	vertex := func(i uint32) mgl32.Vec3 {
		p := mgl32.Vec3{pos.Data[3*i], pos.Data[3*i+1], pos.Data[3*i+2]}
		return world.Mul4x1(p.Vec4(1)).Vec3()
	}
	var best Hit
	test := func(face int, i0, i1, i2 uint32) {
		v0, v1, v2 := vertex(i0), vertex(i1), vertex(i2)
		if t, ok := mollerTrumbore(ray, v0, v1, v2); ok && (best.Node == nil || t < best.Distance) {
			best = Hit{
				Distance: t,
				Point:    ray.At(t),
				Normal:   v1.Sub(v0).Cross(v2.Sub(v0)).Normalize(),
				Node:     n,
				Face:     face,
			}
		}
	}

	count := pos.Count()
	if g.Index != nil && len(g.Index.Data) > 0 {
		idx := g.Index.Data
		for i := 0; i+2 < len(idx); i += 3 {
			if int(max(idx[i], idx[i+1], idx[i+2])) < count {
				test(i/3, idx[i], idx[i+1], idx[i+2])
			}
		}
	} else {
		for i := 0; i+2 < count; i += 3 {
			test(i/3, uint32(i), uint32(i+1), uint32(i+2))
		}
	}
	return best, best.Node != nil
}

// mollerTrumbore returns the ray parameter of the triangle hit, if any.
func mollerTrumbore(ray Ray, v0, v1, v2 mgl32.Vec3) (float32, bool) {
	const epsilon = 1e-7

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := f * edge2.Dot(q)
	return t, t > epsilon
}
