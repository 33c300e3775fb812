package recording

import (
	"errors"
	"testing"

	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clearColor = gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}

// mockEncoder records the calls Playback makes.
type mockEncoder struct {
	calls   []string
	draws   []DrawIndexedCommand
	failOn  string
	failErr error
}

func (e *mockEncoder) call(name string) error {
	e.calls = append(e.calls, name)
	if name == e.failOn {
		return e.failErr
	}
	return nil
}

func (e *mockEncoder) BeginPass(string, gputypes.Color) error { return e.call("BeginPass") }
func (e *mockEncoder) EndPass() error                         { return e.call("EndPass") }
func (e *mockEncoder) SetPipeline(gpucore.PipelineID) error   { return e.call("SetPipeline") }
func (e *mockEncoder) SetBindGroup(uint32, gpucore.BindGroupID) error {
	return e.call("SetBindGroup")
}
func (e *mockEncoder) SetVertexBuffer(uint32, gpucore.BufferID, uint64) error {
	return e.call("SetVertexBuffer")
}
func (e *mockEncoder) SetIndexBuffer(gpucore.BufferID, gputypes.IndexFormat, uint64) error {
	return e.call("SetIndexBuffer")
}
func (e *mockEncoder) Draw(DrawCommand) { _ = e.call("Draw") }
func (e *mockEncoder) DrawIndexed(cmd DrawIndexedCommand) {
	_ = e.call("DrawIndexed")
	e.draws = append(e.draws, cmd)
}

func recordCube(rec *Recorder) {
	rec.SetPipeline(1)
	rec.SetBindGroup(0, 2)
	rec.SetVertexBuffer(0, 3, 0)
	rec.SetIndexBuffer(4, gputypes.IndexFormatUint16, 0)
	rec.DrawIndexed(36, 1, 0, 0, 0)
}

func TestCommandTypeString(t *testing.T) {
	tests := []struct {
		typ  CommandType
		want string
	}{
		{CmdBeginPass, "BeginPass"},
		{CmdEndPass, "EndPass"},
		{CmdSetPipeline, "SetPipeline"},
		{CmdSetBindGroup, "SetBindGroup"},
		{CmdSetVertexBuffer, "SetVertexBuffer"},
		{CmdSetIndexBuffer, "SetIndexBuffer"},
		{CmdDraw, "Draw"},
		{CmdDrawIndexed, "DrawIndexed"},
		{CommandType(200), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}

func TestRecorderFinish(t *testing.T) {
	rec := NewRecorder()
	rec.BeginPass("frame", clearColor)
	recordCube(rec)
	rec.EndPass()

	r, err := rec.Finish()
	require.NoError(t, err)
	assert.Equal(t, 7, r.Len())
	assert.Equal(t, 1, r.Count(CmdDrawIndexed))
	assert.Equal(t, 1, r.Count(CmdBeginPass))

	begin, ok := r.Commands()[0].(BeginPassCommand)
	require.True(t, ok)
	assert.Equal(t, "frame", begin.Label)
	assert.Equal(t, clearColor, begin.Clear)

	draws := r.DrawCalls()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(36), draws[0].IndexCount)
	assert.Equal(t, uint32(1), draws[0].InstanceCount)
}

func TestRecorderErrors(t *testing.T) {
	tests := []struct {
		name   string
		record func(*Recorder)
		want   error
	}{
		{
			name:   "outside pass",
			record: func(r *Recorder) { r.SetPipeline(1) },
			want:   ErrNoPass,
		},
		{
			name: "nested pass",
			record: func(r *Recorder) {
				r.BeginPass("a", clearColor)
				r.BeginPass("b", clearColor)
			},
			want: ErrPassOpen,
		},
		{
			name:   "open pass at finish",
			record: func(r *Recorder) { r.BeginPass("a", clearColor) },
			want:   ErrPassOpen,
		},
		{
			name: "invalid id",
			record: func(r *Recorder) {
				r.BeginPass("a", clearColor)
				r.SetVertexBuffer(0, gpucore.InvalidID, 0)
			},
			want: ErrInvalidID,
		},
		{
			name: "draw without pipeline",
			record: func(r *Recorder) {
				r.BeginPass("a", clearColor)
				r.Draw(3, 1, 0, 0)
			},
			want: ErrNoPipeline,
		},
		{
			name: "indexed draw without index buffer",
			record: func(r *Recorder) {
				r.BeginPass("a", clearColor)
				r.SetPipeline(1)
				r.DrawIndexed(3, 1, 0, 0, 0)
			},
			want: ErrNoIndexBuffer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			tt.record(rec)
			r, err := rec.Finish()
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRecorderFirstErrorWins(t *testing.T) {
	rec := NewRecorder()
	rec.SetPipeline(1) // outside pass
	rec.BeginPass("frame", clearColor)
	rec.SetPipeline(gpucore.InvalidID)

	require.ErrorIs(t, rec.Err(), ErrNoPass)
	assert.NotErrorIs(t, rec.Err(), ErrInvalidID)
}

func TestRecorderPipelineStateResetsPerPass(t *testing.T) {
	rec := NewRecorder()
	rec.BeginPass("one", clearColor)
	recordCube(rec)
	rec.EndPass()
	rec.BeginPass("two", clearColor)
	rec.Draw(3, 1, 0, 0)

	assert.ErrorIs(t, rec.Err(), ErrNoPipeline)
}

func TestRecordingPlayback(t *testing.T) {
	rec := NewRecorder()
	rec.BeginPass("frame", clearColor)
	recordCube(rec)
	rec.Draw(3, 1, 0, 0)
	rec.EndPass()
	r, err := rec.Finish()
	require.NoError(t, err)

	enc := &mockEncoder{}
	require.NoError(t, r.Playback(enc))
	assert.Equal(t, []string{
		"BeginPass", "SetPipeline", "SetBindGroup", "SetVertexBuffer",
		"SetIndexBuffer", "DrawIndexed", "Draw", "EndPass",
	}, enc.calls)
	require.Len(t, enc.draws, 1)
	assert.Equal(t, uint32(36), enc.draws[0].IndexCount)
}

func TestRecordingPlaybackStopsOnError(t *testing.T) {
	rec := NewRecorder()
	rec.BeginPass("frame", clearColor)
	recordCube(rec)
	rec.EndPass()
	r, err := rec.Finish()
	require.NoError(t, err)

	unknown := errors.New("unknown bind group")
	enc := &mockEncoder{failOn: "SetBindGroup", failErr: unknown}
	err = r.Playback(enc)
	require.ErrorIs(t, err, unknown)
	assert.Contains(t, err.Error(), "SetBindGroup")
	assert.Equal(t, []string{"BeginPass", "SetPipeline", "SetBindGroup"}, enc.calls)
}
