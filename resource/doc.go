// Package resource owns the GPU objects the renderer draws with.
//
// A Cache creates each pipeline once per Technique and each mesh once per
// key, and hands out pointers that stay valid until Release. The scene and
// the render pass only ever hold those pointers; they never create or free
// device objects themselves.
//
// Pipelines can be rebuilt from edited shader source with ReloadPipeline. A
// Watcher turns file changes in a shader directory into reload requests.
package resource
