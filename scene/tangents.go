package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ComputeTangents adds a 4-component "tangent" attribute for tangent-space
// normal mapping; w is the bitangent handedness (+1 or -1). The geometry
// needs position, normal and uv streams, otherwise it is left unchanged.
// Triangles with a degenerate UV area are skipped.
func ComputeTangents(g *Geometry) {
	pos, nrm, uv := g.Attributes["position"], g.Attributes["normal"], g.Attributes["uv"]
	if pos == nil || nrm == nil || uv == nil || pos.ItemSize != 3 || nrm.ItemSize != 3 || uv.ItemSize != 2 {
		return
	}
	count := pos.Count()
	if nrm.Count() < count || uv.Count() < count {
		return
	}

	p := func(i uint32) mgl32.Vec3 { return mgl32.Vec3{pos.Data[3*i], pos.Data[3*i+1], pos.Data[3*i+2]} }
	t := func(i uint32) mgl32.Vec2 { return mgl32.Vec2{uv.Data[2*i], uv.Data[2*i+1]} }

	tan := make([]mgl32.Vec3, count)
	bit := make([]mgl32.Vec3, count)
	accum := func(i0, i1, i2 uint32) {
		e1, e2 := p(i1).Sub(p(i0)), p(i2).Sub(p(i0))
		d1, d2 := t(i1).Sub(t(i0)), t(i2).Sub(t(i0))
		denom := d1.X()*d2.Y() - d2.X()*d1.Y()
		if denom == 0 {
			return
		}
		r := 1 / denom
		sdir := e1.Mul(d2.Y() * r).Sub(e2.Mul(d1.Y() * r))
		tdir := e2.Mul(d1.X() * r).Sub(e1.Mul(d2.X() * r))
		for _, i := range [3]uint32{i0, i1, i2} {
			tan[i] = tan[i].Add(sdir)
			bit[i] = bit[i].Add(tdir)
		}
	}

	if g.Index != nil && len(g.Index.Data) > 0 {
		idx := g.Index.Data
		for i := 0; i+2 < len(idx); i += 3 {
			accum(idx[i], idx[i+1], idx[i+2])
		}
	} else {
		for i := 0; i+2 < count; i += 3 {
			accum(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	out := make([]float32, 4*count)
	for i := range count {
		n := mgl32.Vec3{nrm.Data[3*i], nrm.Data[3*i+1], nrm.Data[3*i+2]}
		// Gram-Schmidt against the normal
		v := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if v.LenSqr() < 1e-8 {
			if math32.Abs(n.X()) < 0.9 {
				v = mgl32.Vec3{1, 0, 0}.Sub(n.Mul(n.X()))
			} else {
				v = mgl32.Vec3{0, 1, 0}.Sub(n.Mul(n.Y()))
			}
		}
		v = v.Normalize()
		w := float32(1)
		if n.Cross(v).Dot(bit[i]) < 0 {
			w = -1
		}
		out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = v.X(), v.Y(), v.Z(), w
	}
	g.SetAttribute("tangent", NewAttribute(out, 4))
}
