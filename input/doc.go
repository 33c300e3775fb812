// Package input folds raw window events into the command bitmask and
// pointer delta that drive the camera.
//
// A State is fed key, mouse button and pointer events, either directly or by
// attaching it to a gpucontext.EventSource, and is drained once per tick:
//
//	cmds := st.Commands()
//	delta := st.TakePointerDelta()
//	cam.Tick(dt, cmds, delta)
//
// State is not safe for concurrent use. Event sources deliver callbacks on
// the thread that owns the render loop.
package input
