package renderer

// arena stores renderer-side state behind the integer handles kept on
// textures, geometries, materials and render targets. Handle 0 is never
// issued; released slots are reused.
type arena[T any] struct {
	slots []*T
	free  []int
	live  int
}

func (a *arena[T]) get(h int) *T {
	if h <= 0 || h > len(a.slots) {
		return nil
	}
	return a.slots[h-1]
}

func (a *arena[T]) alloc(v *T) int {
	a.live++
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h-1] = v
		return h
	}
	a.slots = append(a.slots, v)
	return len(a.slots)
}

func (a *arena[T]) release(h int) *T {
	v := a.get(h)
	if v == nil {
		return nil
	}
	a.slots[h-1] = nil
	a.free = append(a.free, h)
	a.live--
	return v
}

func (a *arena[T]) each(fn func(h int, v *T)) {
	for i, v := range a.slots {
		if v != nil {
			fn(i+1, v)
		}
	}
}

func (a *arena[T]) len() int { return a.live }
