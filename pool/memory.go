package pool

import (
	"sync"
)

type memoryPool struct {
	readonly bool
	features map[string]bool // false: available but disabled
}

// Memory is an in process Catalog. Pools are registered up front and can be
// flipped read-only later, which is how an exported or degraded pool shows up.
type Memory struct {
	mu    sync.RWMutex
	pools map[string]*memoryPool
}

func NewMemory() *Memory {
	return &Memory{
		pools: map[string]*memoryPool{},
	}
}

func (m *Memory) AddPool(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pools[name] = &memoryPool{
		features: map[string]bool{},
	}
}

func (m *Memory) RemovePool(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pools, name)
}

func (m *Memory) SetReadonly(name string, readonly bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pools[name]; ok {
		p.readonly = readonly
	}
}

// AddFeature registers a feature on a pool without enabling it.
func (m *Memory) AddFeature(name, feature string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pools[name]; ok {
		if _, exists := p.features[feature]; !exists {
			p.features[feature] = false
		}
	}
}

func (m *Memory) EnableFeature(name, feature string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pools[name]; ok {
		p.features[feature] = true
	}
}

func (m *Memory) Exists(pool string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.pools[pool]
	return ok
}

func (m *Memory) Readonly(pool string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pools[pool]
	return ok && p.readonly
}

func (m *Memory) FeatureAvailable(pool, feature string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pools[pool]
	if !ok {
		return false
	}
	_, available := p.features[feature]
	return available
}

func (m *Memory) FeatureEnabled(pool, feature string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pools[pool]
	return ok && p.features[feature]
}
