// Package cache provides the generic keyed store used to own GPU resources.
//
// # Store[K, V]
//
// A create-or-reuse store without eviction. The first GetOrCreate for a key
// runs the factory and keeps the result; later calls return the same value
// without running the factory again.
//
//	meshes := cache.New[string, *Mesh]()
//	m, created, err := meshes.GetOrCreate("cube", func() (*Mesh, error) {
//	    return buildCube(dev)
//	})
//
// Entries are removed only by Delete or Clear, so values stay valid for as
// long as the owner keeps the store alive.
//
// # Thread Safety
//
// Store is safe for concurrent use and must not be copied after creation.
package cache
