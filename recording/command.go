package recording

import (
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/gputypes"
)

// CommandType identifies the type of a command.
// Each command type corresponds to one render pass encoder call.
type CommandType uint8

const (
	// Pass commands
	CmdBeginPass CommandType = iota // Begin the frame's render pass
	CmdEndPass                      // End the render pass

	// State commands
	CmdSetPipeline     // Bind a render pipeline
	CmdSetBindGroup    // Bind a bind group
	CmdSetVertexBuffer // Bind a vertex buffer to a slot
	CmdSetIndexBuffer  // Bind the index buffer

	// Draw commands
	CmdDraw        // Non-indexed draw
	CmdDrawIndexed // Indexed draw
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdBeginPass:       "BeginPass",
	CmdEndPass:         "EndPass",
	CmdSetPipeline:     "SetPipeline",
	CmdSetBindGroup:    "SetBindGroup",
	CmdSetVertexBuffer: "SetVertexBuffer",
	CmdSetIndexBuffer:  "SetIndexBuffer",
	CmdDraw:            "Draw",
	CmdDrawIndexed:     "DrawIndexed",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Pass Commands
// --------------------------------------------------------------------------

// BeginPassCommand begins the single render pass of a frame. The color
// attachment is the acquired frame target; the device supplies it at
// playback time.
type BeginPassCommand struct {
	// Label is a debug label for the pass.
	Label string
	// Clear is the color the target is cleared to.
	Clear gputypes.Color
}

// Type implements Command.
func (BeginPassCommand) Type() CommandType { return CmdBeginPass }

// EndPassCommand ends the render pass.
type EndPassCommand struct{}

// Type implements Command.
func (EndPassCommand) Type() CommandType { return CmdEndPass }

// --------------------------------------------------------------------------
// State Commands
// --------------------------------------------------------------------------

// SetPipelineCommand binds a render pipeline.
type SetPipelineCommand struct {
	Pipeline gpucore.PipelineID
}

// Type implements Command.
func (SetPipelineCommand) Type() CommandType { return CmdSetPipeline }

// SetBindGroupCommand binds a bind group at the given group index.
type SetBindGroupCommand struct {
	Index uint32
	Group gpucore.BindGroupID
}

// Type implements Command.
func (SetBindGroupCommand) Type() CommandType { return CmdSetBindGroup }

// SetVertexBufferCommand binds a vertex buffer to a slot.
type SetVertexBufferCommand struct {
	Slot   uint32
	Buffer gpucore.BufferID
	Offset uint64
}

// Type implements Command.
func (SetVertexBufferCommand) Type() CommandType { return CmdSetVertexBuffer }

// SetIndexBufferCommand binds the index buffer.
type SetIndexBufferCommand struct {
	Buffer gpucore.BufferID
	Format gputypes.IndexFormat
	Offset uint64
}

// Type implements Command.
func (SetIndexBufferCommand) Type() CommandType { return CmdSetIndexBuffer }

// --------------------------------------------------------------------------
// Draw Commands
// --------------------------------------------------------------------------

// DrawCommand issues a non-indexed draw.
type DrawCommand struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

// DrawIndexedCommand issues an indexed draw.
type DrawIndexedCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Type implements Command.
func (DrawIndexedCommand) Type() CommandType { return CmdDrawIndexed }
