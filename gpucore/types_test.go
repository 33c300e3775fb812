package gpucore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDValid(t *testing.T) {
	assert.False(t, BufferID(InvalidID).Valid())
	assert.False(t, TextureID(InvalidID).Valid())
	assert.False(t, PipelineID(InvalidID).Valid())
	assert.False(t, BindGroupID(InvalidID).Valid())

	assert.True(t, BufferID(1).Valid())
	assert.True(t, PipelineID(7).Valid())
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "buffer#3", BufferID(3).String())
	assert.Equal(t, "pipeline#1", PipelineID(1).String())
	assert.Equal(t, "bindgroup#9", BindGroupID(9).String())
	assert.Equal(t, "texture#2", TextureID(2).String())
}

func TestIDAllocator(t *testing.T) {
	var a IDAllocator
	assert.Equal(t, uint64(1), a.Next())
	assert.Equal(t, uint64(2), a.Next())
	assert.Equal(t, uint64(3), a.Next())
}
