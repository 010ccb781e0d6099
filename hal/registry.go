package hal

import (
	"sync"

	"github.com/gogpu/ighalo/types"
)

var (
	// backendsMu protects the backends map.
	backendsMu sync.RWMutex

	// backends stores registered backend implementations, keyed by the
	// compute-runtime they implement rather than a graphics API.
	backends = make(map[types.DeviceKind]Backend)
)

// RegisterBackend registers a backend implementation.
// This is typically called from init() functions in backend packages.
// Registering the same backend type multiple times will replace the previous registration.
func RegisterBackend(backend Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[backend.Variant()] = backend
	Logger().Info("hal: backend registered", "kind", backend.Variant())
}

// GetBackend returns a registered backend by type.
// Returns (nil, false) if the backend is not registered.
func GetBackend(kind types.DeviceKind) (Backend, bool) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[kind]
	return b, ok
}

// AvailableBackends returns all registered backend kinds.
// The order is non-deterministic.
func AvailableBackends() []types.DeviceKind {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	result := make([]types.DeviceKind, 0, len(backends))
	for v := range backends {
		result = append(result, v)
	}
	return result
}
