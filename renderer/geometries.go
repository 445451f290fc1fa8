package renderer

import (
	"unsafe"

	"glscene/gpu"
	"glscene/scene"
)

type bufferProperties struct {
	buf     gpu.Handle
	version uint64
	size    int
}

type geometryProperties struct {
	attributes map[*scene.Attribute]*bufferProperties
	index      *bufferProperties
	// wireframe is the line index derived from the triangle index or the
	// vertex count.
	wireframe      *bufferProperties
	wireframeCount int
	wireframeKey   uint64
	frame          int
}

// geometryCache owns the vertex and index buffers behind Geometry.Handle.
type geometryCache struct {
	d    gpu.Driver
	info *Info

	geometries arena[geometryProperties]
}

func newGeometryCache(d gpu.Driver, info *Info) *geometryCache {
	return &geometryCache{d: d, info: info}
}

func floatBytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}

func uintBytes(data []uint32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}

func (c *geometryCache) properties(g *scene.Geometry) *geometryProperties {
	if p := c.geometries.get(g.Handle); p != nil {
		return p
	}
	p := &geometryProperties{attributes: make(map[*scene.Attribute]*bufferProperties), frame: -1}
	g.Handle = c.geometries.alloc(p)
	c.info.Memory.Geometries++
	return p
}

func (c *geometryCache) upload(b *bufferProperties, target gpu.BufferTarget, data []byte, version uint64, dynamic bool) {
	if b.buf == 0 {
		b.buf = c.d.CreateBuffer()
	}
	c.d.BindBuffer(target, b.buf)
	usage := gpu.StaticDraw
	if dynamic {
		usage = gpu.DynamicDraw
	}
	if b.size == len(data) && dynamic {
		c.d.BufferSubData(target, 0, data)
	} else {
		c.d.BufferData(target, data, usage)
	}
	b.size = len(data)
	b.version = version
}

func (c *geometryCache) updateAttribute(p *geometryProperties, a *scene.Attribute) {
	b := p.attributes[a]
	if b == nil {
		b = &bufferProperties{}
		p.attributes[a] = b
	}
	if b.buf != 0 && b.version == a.Version {
		return
	}
	c.upload(b, gpu.ArrayBuffer, floatBytes(a.Data), a.Version, a.Dynamic)
}

// update uploads changed streams of g. It does the work at most once per
// frame however many objects share g.
func (c *geometryCache) update(g *scene.Geometry, frame int) *geometryProperties {
	p := c.properties(g)
	if p.frame == frame {
		return p
	}
	p.frame = frame

	for _, a := range g.Attributes {
		c.updateAttribute(p, a)
	}
	for _, list := range g.MorphAttributes {
		for _, a := range list {
			c.updateAttribute(p, a)
		}
	}
	if g.Index != nil {
		if p.index == nil {
			p.index = &bufferProperties{}
		}
		if p.index.buf == 0 || p.index.version != g.Index.Version {
			c.upload(p.index, gpu.ElementArrayBuffer, uintBytes(g.Index.Data), g.Index.Version, false)
		}
	}
	return p
}

// buffer returns the driver buffer holding a.
func (c *geometryCache) buffer(g *scene.Geometry, a *scene.Attribute) gpu.Handle {
	p := c.geometries.get(g.Handle)
	if p == nil {
		return 0
	}
	if b := p.attributes[a]; b != nil {
		return b.buf
	}
	return 0
}

// wireframeIndex builds and uploads the edge list of g's triangles. It
// returns the bound buffer and the index count.
func (c *geometryCache) wireframeIndex(g *scene.Geometry) (gpu.Handle, int) {
	p := c.properties(g)
	var key uint64
	var tris []uint32
	if g.Index != nil {
		key = g.Index.Version
		tris = g.Index.Data
	} else if pos := g.Attributes["position"]; pos != nil {
		key = pos.Version
		n := pos.Count()
		tris = make([]uint32, n)
		for i := range tris {
			tris[i] = uint32(i)
		}
	}
	if p.wireframe == nil {
		p.wireframe = &bufferProperties{}
	}
	if p.wireframe.buf != 0 && p.wireframeKey == key {
		c.d.BindBuffer(gpu.ElementArrayBuffer, p.wireframe.buf)
		return p.wireframe.buf, p.wireframeCount
	}

	lines := make([]uint32, 0, len(tris)*2)
	for i := 0; i+2 < len(tris); i += 3 {
		a, b, cc := tris[i], tris[i+1], tris[i+2]
		lines = append(lines, a, b, b, cc, cc, a)
	}
	c.upload(p.wireframe, gpu.ElementArrayBuffer, uintBytes(lines), key, false)
	p.wireframeKey = key
	p.wireframeCount = len(lines)
	return p.wireframe.buf, p.wireframeCount
}

func (c *geometryCache) deleteBuffers(p *geometryProperties) {
	for _, b := range p.attributes {
		if b.buf != 0 {
			c.d.DeleteBuffer(b.buf)
		}
	}
	for _, b := range []*bufferProperties{p.index, p.wireframe} {
		if b != nil && b.buf != 0 {
			c.d.DeleteBuffer(b.buf)
		}
	}
}

// release deletes the buffers of g and frees its handle.
func (c *geometryCache) release(g *scene.Geometry) {
	if g == nil {
		return
	}
	p := c.geometries.release(g.Handle)
	g.Handle = 0
	if p == nil {
		return
	}
	c.deleteBuffers(p)
	c.info.Memory.Geometries--
}

// invalidate forgets every driver buffer after a context loss.
func (c *geometryCache) invalidate() {
	c.geometries.each(func(_ int, p *geometryProperties) {
		clear(p.attributes)
		p.index, p.wireframe = nil, nil
		p.frame = -1
	})
}

func (c *geometryCache) dispose() {
	c.geometries.each(func(_ int, p *geometryProperties) { c.deleteBuffers(p) })
	c.geometries = arena[geometryProperties]{}
	c.info.Memory.Geometries = 0
}
