package recording

import (
	"errors"
	"fmt"

	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/gputypes"
)

// Recorder errors.
var (
	// ErrNoPass is returned when a command is recorded outside a render pass.
	ErrNoPass = errors.New("recording: command outside render pass")

	// ErrPassOpen is returned by BeginPass when a pass is already open and
	// by Finish when the last pass was not ended.
	ErrPassOpen = errors.New("recording: render pass still open")

	// ErrInvalidID is returned when a zero resource ID is recorded.
	ErrInvalidID = errors.New("recording: invalid resource id")

	// ErrNoPipeline is returned when a draw is recorded before SetPipeline.
	ErrNoPipeline = errors.New("recording: draw without pipeline")

	// ErrNoIndexBuffer is returned when DrawIndexed is recorded before
	// SetIndexBuffer.
	ErrNoIndexBuffer = errors.New("recording: indexed draw without index buffer")
)

// Recorder records render pass commands into a Recording.
//
// The Recorder validates call order as it goes. The first invalid call puts
// the Recorder into an error state: later calls are ignored and Finish
// returns that error.
//
// Example:
//
//	rec := recording.NewRecorder()
//	rec.BeginPass("frame", gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1})
//	rec.SetPipeline(pipeline)
//	rec.SetBindGroup(0, group)
//	rec.SetVertexBuffer(0, vb, 0)
//	rec.SetIndexBuffer(ib, gputypes.IndexFormatUint16, 0)
//	rec.DrawIndexed(36, 1, 0, 0, 0)
//	rec.EndPass()
//	r, err := rec.Finish()
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	commands []Command
	err      error

	inPass      bool
	hasPipeline bool
	hasIndex    bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		commands: make([]Command, 0, 64),
	}
}

// Err returns the first recording error, if any.
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) fail(err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w (after %d commands)", err, len(r.commands))
	}
}

// record appends cmd when the recorder is healthy and inside a pass.
func (r *Recorder) record(cmd Command) bool {
	if r.err != nil {
		return false
	}
	if !r.inPass {
		r.fail(ErrNoPass)
		return false
	}
	r.commands = append(r.commands, cmd)
	return true
}

// BeginPass begins a render pass that clears the frame target to clear.
func (r *Recorder) BeginPass(label string, clear gputypes.Color) {
	if r.err != nil {
		return
	}
	if r.inPass {
		r.fail(ErrPassOpen)
		return
	}
	r.inPass = true
	r.hasPipeline = false
	r.hasIndex = false
	r.commands = append(r.commands, BeginPassCommand{Label: label, Clear: clear})
}

// EndPass ends the current render pass.
func (r *Recorder) EndPass() {
	if r.record(EndPassCommand{}) {
		r.inPass = false
	}
}

// SetPipeline binds a render pipeline.
func (r *Recorder) SetPipeline(id gpucore.PipelineID) {
	if !id.Valid() {
		r.fail(ErrInvalidID)
		return
	}
	if r.record(SetPipelineCommand{Pipeline: id}) {
		r.hasPipeline = true
	}
}

// SetBindGroup binds a bind group at index.
func (r *Recorder) SetBindGroup(index uint32, id gpucore.BindGroupID) {
	if !id.Valid() {
		r.fail(ErrInvalidID)
		return
	}
	r.record(SetBindGroupCommand{Index: index, Group: id})
}

// SetVertexBuffer binds a vertex buffer to slot.
func (r *Recorder) SetVertexBuffer(slot uint32, id gpucore.BufferID, offset uint64) {
	if !id.Valid() {
		r.fail(ErrInvalidID)
		return
	}
	r.record(SetVertexBufferCommand{Slot: slot, Buffer: id, Offset: offset})
}

// SetIndexBuffer binds the index buffer.
func (r *Recorder) SetIndexBuffer(id gpucore.BufferID, format gputypes.IndexFormat, offset uint64) {
	if !id.Valid() {
		r.fail(ErrInvalidID)
		return
	}
	if r.record(SetIndexBufferCommand{Buffer: id, Format: format, Offset: offset}) {
		r.hasIndex = true
	}
}

// Draw records a non-indexed draw.
func (r *Recorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if r.err == nil && r.inPass && !r.hasPipeline {
		r.fail(ErrNoPipeline)
		return
	}
	r.record(DrawCommand{
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
	})
}

// DrawIndexed records an indexed draw.
func (r *Recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if r.err == nil && r.inPass {
		switch {
		case !r.hasPipeline:
			r.fail(ErrNoPipeline)
			return
		case !r.hasIndex:
			r.fail(ErrNoIndexBuffer)
			return
		}
	}
	r.record(DrawIndexedCommand{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	})
}

// Finish returns an immutable Recording containing all recorded commands.
// After calling Finish, the Recorder should not be used again.
func (r *Recorder) Finish() (*Recording, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.inPass {
		return nil, ErrPassOpen
	}
	return &Recording{commands: r.commands}, nil
}
