package renderer

// ScratchPool hands out flat buffers keyed by length. A buffer is only valid
// until the next request of the same length; uniform uploads are synchronous
// so one buffer per size is enough.
type ScratchPool struct {
	floats map[int][]float32
	ints   map[int][]int32
}

func NewScratchPool() *ScratchPool {
	return &ScratchPool{
		floats: make(map[int][]float32),
		ints:   make(map[int][]int32),
	}
}

// Floats returns a zeroed buffer of n float32s.
func (p *ScratchPool) Floats(n int) []float32 {
	s, ok := p.floats[n]
	if !ok {
		s = make([]float32, n)
		p.floats[n] = s
		return s
	}
	clear(s)
	return s
}

// Ints returns a zeroed buffer of n int32s.
func (p *ScratchPool) Ints(n int) []int32 {
	s, ok := p.ints[n]
	if !ok {
		s = make([]int32, n)
		p.ints[n] = s
		return s
	}
	clear(s)
	return s
}

// Len reports how many distinct buffers the pool holds.
func (p *ScratchPool) Len() int { return len(p.floats) + len(p.ints) }
