package textures

import "sync"

// Manager caches loaded textures by path so assets that share an image share
// one Texture and thus one GPU upload. Loading may happen off the render
// goroutine; the renderer only ever sees the returned *Texture.
type Manager struct {
	textures map[string]*Texture
	mu       sync.RWMutex
	load     func(path string) (*Texture, error)
}

// NewManager creates a texture cache backed by Load.
func NewManager() *Manager {
	return &Manager{
		textures: make(map[string]*Texture),
		load:     Load,
	}
}

// Load returns the cached texture for path, reading it on first use.
func (m *Manager) Load(path string) (*Texture, error) {
	m.mu.RLock()
	if t, ok := m.textures[path]; ok {
		m.mu.RUnlock()
		return t, nil
	}
	m.mu.RUnlock()

	t, err := m.load(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.textures[path]; ok {
		return existing, nil
	}
	m.textures[path] = t
	return t, nil
}

// Add registers a texture under a key, replacing any previous entry.
func (m *Manager) Add(key string, t *Texture) {
	m.mu.Lock()
	m.textures[key] = t
	m.mu.Unlock()
}

// Get returns a cached texture without loading.
func (m *Manager) Get(key string) (*Texture, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.textures[key]
	return t, ok
}

// Remove drops a texture from the cache and returns it so the caller can
// release its GPU storage.
func (m *Manager) Remove(key string) *Texture {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.textures[key]
	delete(m.textures, key)
	return t
}

// Len returns the number of cached textures.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.textures)
}
