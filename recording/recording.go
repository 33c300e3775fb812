package recording

import (
	"fmt"

	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/gputypes"
)

// Encoder is the interface device implementations provide to replay a
// Recording onto a native command encoder.
//
// The pass methods bracket the state and draw calls. Draw calls have no
// error return; devices report draw validation failures from EndPass, which
// matches how wgpu defers encoder errors.
type Encoder interface {
	// BeginPass opens the render pass on the frame target.
	BeginPass(label string, clear gputypes.Color) error

	// EndPass closes the render pass.
	EndPass() error

	// SetPipeline binds a pipeline. Unknown IDs are an error.
	SetPipeline(id gpucore.PipelineID) error

	// SetBindGroup binds a bind group. Unknown IDs are an error.
	SetBindGroup(index uint32, id gpucore.BindGroupID) error

	// SetVertexBuffer binds a vertex buffer. Unknown IDs are an error.
	SetVertexBuffer(slot uint32, id gpucore.BufferID, offset uint64) error

	// SetIndexBuffer binds the index buffer. Unknown IDs are an error.
	SetIndexBuffer(id gpucore.BufferID, format gputypes.IndexFormat, offset uint64) error

	// Draw issues a non-indexed draw.
	Draw(cmd DrawCommand)

	// DrawIndexed issues an indexed draw.
	DrawIndexed(cmd DrawIndexedCommand)
}

// Recording is an immutable container for recorded render commands.
// It can be replayed to any Encoder implementation.
type Recording struct {
	commands []Command
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Len returns the number of recorded commands.
func (r *Recording) Len() int {
	return len(r.commands)
}

// Count returns how many commands of type t were recorded.
func (r *Recording) Count(t CommandType) int {
	n := 0
	for _, cmd := range r.commands {
		if cmd.Type() == t {
			n++
		}
	}
	return n
}

// DrawCalls returns the indexed draw commands in recording order.
func (r *Recording) DrawCalls() []DrawIndexedCommand {
	var draws []DrawIndexedCommand
	for _, cmd := range r.commands {
		if d, ok := cmd.(DrawIndexedCommand); ok {
			draws = append(draws, d)
		}
	}
	return draws
}

// Playback replays the recording to the given encoder. Playback stops at
// the first failing command.
func (r *Recording) Playback(enc Encoder) error {
	for i, cmd := range r.commands {
		var err error
		switch c := cmd.(type) {
		case BeginPassCommand:
			err = enc.BeginPass(c.Label, c.Clear)
		case EndPassCommand:
			err = enc.EndPass()
		case SetPipelineCommand:
			err = enc.SetPipeline(c.Pipeline)
		case SetBindGroupCommand:
			err = enc.SetBindGroup(c.Index, c.Group)
		case SetVertexBufferCommand:
			err = enc.SetVertexBuffer(c.Slot, c.Buffer, c.Offset)
		case SetIndexBufferCommand:
			err = enc.SetIndexBuffer(c.Buffer, c.Format, c.Offset)
		case DrawCommand:
			enc.Draw(c)
		case DrawIndexedCommand:
			enc.DrawIndexed(c)
		default:
			err = fmt.Errorf("unsupported command %s", cmd.Type())
		}
		if err != nil {
			return fmt.Errorf("recording: command %d (%s): %w", i, cmd.Type(), err)
		}
	}
	return nil
}
