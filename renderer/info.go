package renderer

import "glscene/gpu"

// MemoryInfo counts live GPU resources.
type MemoryInfo struct {
	Geometries int
	Textures   int
}

// RenderInfo counts the work of the last frame.
type RenderInfo struct {
	Frame    int
	Calls    int
	Vertices int
	Faces    int
	Points   int
}

// Info is the renderer's running statistics.
type Info struct {
	Memory   MemoryInfo
	Render   RenderInfo
	Programs int
	// AutoReset clears Render at the start of every Render call.
	AutoReset bool
}

func (i *Info) update(count int, mode gpu.DrawMode, instances int) {
	if instances < 1 {
		instances = 1
	}
	i.Render.Calls++
	switch mode {
	case gpu.Triangles:
		i.Render.Faces += instances * (count / 3)
	case gpu.TriangleStrip, gpu.TriangleFan:
		i.Render.Faces += instances * max(count-2, 0)
	case gpu.Points:
		i.Render.Points += instances * count
	}
	i.Render.Vertices += instances * count
}

// Reset clears the per-frame counters.
func (i *Info) Reset() {
	i.Render.Frame++
	i.Render.Calls = 0
	i.Render.Vertices = 0
	i.Render.Faces = 0
	i.Render.Points = 0
}
