// Package gpucore defines the opaque resource handles shared by the device
// abstraction and the command recorder.
//
// Device implementations map these IDs onto backend objects (wgpu buffers,
// pipelines, bind groups). Higher layers never see backend types; they pass
// IDs around and let the device resolve them at submit time.
//
//	vb, _ := dev.CreateBuffer(&device.BufferDescriptor{...})
//	rec.SetVertexBuffer(0, vb, 0)
//
// The zero value of every ID is [InvalidID].
package gpucore
