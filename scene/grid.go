package scene

import "glscene/core"

// CreateGrid builds a flat line-segment grid in XZ with a per-vertex "color"
// stream; draw it with NewLine(..., KindLineSegments, ...) and a line
// material using vertex colors.
//
// The X-axis centre line is red, the Z-axis centre line is blue,
// and all other lines are dark gray.
func CreateGrid(size float32, divisions int) *Geometry {
	divisions = max(divisions, 1)

	half := size / 2.0
	step := size / float32(divisions)

	gray := core.Color{R: 0.35, G: 0.35, B: 0.35, A: 1}
	red := core.Color{R: 0.8, G: 0.15, B: 0.15, A: 1}
	blue := core.Color{R: 0.15, G: 0.35, B: 0.9, A: 1}

	var pos, col []float32
	addLine := func(x0, z0, x1, z1 float32, c core.Color) {
		pos = append(pos, x0, 0, z0, x1, 0, z1)
		col = append(col, c.R, c.G, c.B, c.R, c.G, c.B)
	}

	for i := 0; i <= divisions; i++ {
		t := -half + float32(i)*step
		cz, cx := gray, gray
		if i == divisions/2 {
			cz, cx = blue, red
		}
		addLine(t, -half, t, half, cz)
		addLine(-half, t, half, t, cx)
	}

	g := NewGeometry("Grid")
	g.SetAttribute("position", NewAttribute(pos, 3))
	g.SetAttribute("color", NewAttribute(col, 3))
	g.ComputeBoundingSphere()
	return g
}
