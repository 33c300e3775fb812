package gpucore

import "fmt"

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.
// IDs are uint64 to accommodate various backend handle sizes.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// PipelineID is an opaque handle to a render pipeline together with the
// bind group layouts it was created with.
type PipelineID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// Valid reports whether the ID refers to a resource.
func (id BufferID) Valid() bool { return id != InvalidID }

// Valid reports whether the ID refers to a resource.
func (id TextureID) Valid() bool { return id != InvalidID }

// Valid reports whether the ID refers to a resource.
func (id PipelineID) Valid() bool { return id != InvalidID }

// Valid reports whether the ID refers to a resource.
func (id BindGroupID) Valid() bool { return id != InvalidID }

func (id BufferID) String() string    { return fmt.Sprintf("buffer#%d", uint64(id)) }
func (id TextureID) String() string   { return fmt.Sprintf("texture#%d", uint64(id)) }
func (id PipelineID) String() string  { return fmt.Sprintf("pipeline#%d", uint64(id)) }
func (id BindGroupID) String() string { return fmt.Sprintf("bindgroup#%d", uint64(id)) }

// IDAllocator hands out monotonically increasing non-zero IDs.
// The zero value is ready to use. Not safe for concurrent use.
type IDAllocator struct {
	next uint64
}

// Next returns a fresh ID. The first call returns 1.
func (a *IDAllocator) Next() uint64 {
	a.next++
	return a.next
}
