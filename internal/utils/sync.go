package utils

import (
	"sync"
)

// OptionalMutex is a mutex that only locks when Enabled is set. Objects that are owned by the
// single recording thread leave it disabled.
type OptionalMutex struct {
	mutex   sync.Mutex
	Enabled bool
}

func (m *OptionalMutex) Lock() {
	if m.Enabled {
		m.mutex.Lock()
	}
}

func (m *OptionalMutex) Unlock() {
	if m.Enabled {
		m.mutex.Unlock()
	}
}

// OptionalRWMutex is the reader/writer counterpart of OptionalMutex
type OptionalRWMutex struct {
	mutex   sync.RWMutex
	Enabled bool
}

func (m *OptionalRWMutex) Lock() {
	if m.Enabled {
		m.mutex.Lock()
	}
}

func (m *OptionalRWMutex) Unlock() {
	if m.Enabled {
		m.mutex.Unlock()
	}
}

func (m *OptionalRWMutex) RLock() {
	if m.Enabled {
		m.mutex.RLock()
	}
}

func (m *OptionalRWMutex) RUnlock() {
	if m.Enabled {
		m.mutex.RUnlock()
	}
}
