// Package recording provides types for recording render pass commands.
//
// A frame is recorded as a list of typed command structs instead of being
// encoded straight into a native command encoder. The Recording is then
// handed to the device, which replays it in one submission. Keeping the
// commands as plain data makes frames inspectable: tests count draw calls
// and check their arguments without a GPU.
//
// # Architecture
//
// Commands capture the render pass encoder calls:
//   - Pass commands (BeginPass, EndPass)
//   - State commands (SetPipeline, SetBindGroup, SetVertexBuffer, SetIndexBuffer)
//   - Draw commands (Draw, DrawIndexed)
//
// Resources are referenced by the opaque IDs from package gpucore.
//
// # Example
//
//	rec := recording.NewRecorder()
//	rec.BeginPass("frame", clear)
//	rec.SetPipeline(pipeline)
//	rec.DrawIndexed(36, 1, 0, 0, 0)
//	rec.EndPass()
//	r, err := rec.Finish()
//
//	// Replay to a device encoder
//	err = r.Playback(enc)
package recording
