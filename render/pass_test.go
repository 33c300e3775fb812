// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/device/headless"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/recording"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/scene"
)

type fixture struct {
	dev   *headless.Device
	cache *resource.Cache
	scene *scene.Scene
	cam   *camera.Camera
	pass  *Pass
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev, err := headless.New(device.Config{Width: 800, Height: 600})
	require.NoError(t, err)
	c := resource.New(dev)
	t.Cleanup(func() {
		c.Release()
		_ = dev.Close()
	})

	cube := geometry.Cube()
	_, err = c.Mesh("cube", cube.VertexBytes(), cube.Indices)
	require.NoError(t, err)
	_, err = c.Pipeline(resource.TechniqueTexturedMesh)
	require.NoError(t, err)

	return &fixture{
		dev:   dev,
		cache: c,
		scene: scene.New(c),
		cam:   camera.New(mgl32.Vec3{-3, 0, -3}, mgl32.DegToRad(45), 800.0/600.0, 0.1, 100),
		pass:  NewPass(dev, c),
	}
}

func (f *fixture) addCubes(t *testing.T, n int) {
	t.Helper()
	for i := range n {
		_, err := f.scene.Add("cube", mgl32.Vec3{float32(i), 0, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
		require.NoError(t, err)
	}
}

func TestDrawThreeCubes(t *testing.T) {
	f := newFixture(t)
	f.addCubes(t, 3)

	stats, err := f.pass.Draw(f.cam, f.scene)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Drawn)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, uint64(1), stats.Frame.Seq)

	sub := f.dev.LastSubmission()
	require.NotNil(t, sub)
	assert.True(t, sub.Presented)
	assert.Len(t, f.dev.Submissions(), 1)
	assert.Equal(t, stats.Commands, sub.Recording.Len())

	draws := sub.Recording.DrawCalls()
	require.Len(t, draws, 3)
	for i, d := range draws {
		assert.Equal(t, uint32(36), d.IndexCount)
		assert.Equal(t, uint32(1), d.InstanceCount)
		assert.Equal(t, uint32(i), d.FirstInstance)
	}

	begin, ok := sub.Recording.Commands()[0].(recording.BeginPassCommand)
	require.True(t, ok)
	assert.Equal(t, resource.ClearColor, begin.Clear)
}

func TestDrawWritesCameraAndInstances(t *testing.T) {
	f := newFixture(t)
	f.addCubes(t, 2)

	_, err := f.pass.Draw(f.cam, f.scene)
	require.NoError(t, err)

	p, _ := f.cache.LookupPipeline(resource.TechniqueTexturedMesh)
	ub, _ := f.dev.Buffer(p.Uniform)
	assert.Equal(t, resource.PackMatrices(f.cam.ViewProjection()), ub.Data)

	ib, _ := f.dev.Buffer(p.Instances)
	assert.Equal(t, resource.PackMatrices(f.scene.Models()...), ib.Data[:2*resource.MatrixSize])
	assert.True(t, p.InstancesCurrent(f.scene.ID(), f.scene.Revision()))
}

func TestDrawSkipsMissingPipeline(t *testing.T) {
	f := newFixture(t)
	f.addCubes(t, 1)
	_, err := f.cache.Mesh("tri", nil, nil, resource.WithTechnique(resource.TechniqueTriangle))
	require.NoError(t, err)
	_, err = f.scene.Add("tri", mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)

	stats, err := f.pass.Draw(f.cam, f.scene)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Drawn)
	assert.Equal(t, 1, stats.Skipped)

	_, err = f.cache.Pipeline(resource.TechniqueTriangle)
	require.NoError(t, err)
	stats, err = f.pass.Draw(f.cam, f.scene)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Drawn)
	assert.Equal(t, 1, f.dev.LastSubmission().Recording.Count(recording.CmdDraw))
}

// An instance whose mesh disappears from the resolver after Add is skipped
// rather than drawn from a stale handle.
func TestDrawSkipsUnresolvedMesh(t *testing.T) {
	f := newFixture(t)
	f.addCubes(t, 2)
	f.pass = NewPass(f.dev, hideMesh{Resources: f.cache, key: "cube"})

	stats, err := f.pass.Draw(f.cam, f.scene)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Drawn)
	assert.Equal(t, 2, stats.Skipped)
	assert.Empty(t, f.dev.LastSubmission().Recording.DrawCalls())
}

type hideMesh struct {
	Resources
	key string
}

func (h hideMesh) LookupMesh(key string) (*resource.Mesh, bool) {
	if key == h.key {
		return nil, false
	}
	return h.Resources.LookupMesh(key)
}

func TestDrawRecoverableAcquireError(t *testing.T) {
	f := newFixture(t)
	f.addCubes(t, 1)
	f.dev.FailAcquire(device.ErrSurfaceOutdated)

	_, err := f.pass.Draw(f.cam, f.scene)
	require.Error(t, err)
	assert.True(t, device.IsRecoverable(err))
	assert.Empty(t, f.dev.Submissions())

	_, err = f.pass.Draw(f.cam, f.scene)
	assert.NoError(t, err)
}

func TestDrawFatalAcquireError(t *testing.T) {
	f := newFixture(t)
	f.dev.FailAcquire(device.ErrDeviceLost)

	_, err := f.pass.Draw(f.cam, f.scene)
	require.ErrorIs(t, err, device.ErrDeviceLost)
	assert.False(t, device.IsRecoverable(err))
}

func TestInstancesUploadedOncePerRevision(t *testing.T) {
	f := newFixture(t)
	f.addCubes(t, 1)
	_, err := f.pass.Draw(f.cam, f.scene)
	require.NoError(t, err)

	p, _ := f.cache.LookupPipeline(resource.TechniqueTexturedMesh)
	ib, _ := f.dev.Buffer(p.Instances)
	ib.Data[0] = 0xAB // a re-upload would overwrite this

	_, err = f.pass.Draw(f.cam, f.scene)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), ib.Data[0])

	f.addCubes(t, 1)
	_, err = f.pass.Draw(f.cam, f.scene)
	require.NoError(t, err)
	ib, _ = f.dev.Buffer(p.Instances)
	assert.NotEqual(t, byte(0xAB), ib.Data[0])
}

// Two scenes on one cache can sit at the same revision; each draw must
// still upload the matrices of the scene being drawn.
func TestDrawAlternatingScenes(t *testing.T) {
	f := newFixture(t)
	a, b := scene.New(f.cache), scene.New(f.cache)
	_, err := a.Add("cube", mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)
	_, err = b.Add("cube", mgl32.Vec3{9, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, a.Revision(), b.Revision())
	require.NotEqual(t, a.ID(), b.ID())

	p, _ := f.cache.LookupPipeline(resource.TechniqueTexturedMesh)
	for _, sc := range []*scene.Scene{a, b, a} {
		_, err := f.pass.Draw(f.cam, sc)
		require.NoError(t, err)
		ib, _ := f.dev.Buffer(p.Instances)
		assert.Equal(t, resource.PackMatrices(sc.Models()...), ib.Data[:resource.MatrixSize])
	}
}

func TestEmptyScene(t *testing.T) {
	f := newFixture(t)
	stats, err := f.pass.Draw(f.cam, f.scene)
	require.NoError(t, err)
	assert.Equal(t, Stats{Frame: stats.Frame, Commands: 2}, stats)
}

func TestWithClearColor(t *testing.T) {
	f := newFixture(t)
	c := gputypes.Color{R: 1, A: 1}
	p := NewPass(f.dev, f.cache, WithClearColor(c))
	assert.Equal(t, c, p.ClearColor())

	_, err := p.Draw(f.cam, f.scene)
	require.NoError(t, err)
	begin := f.dev.LastSubmission().Recording.Commands()[0].(recording.BeginPassCommand)
	assert.Equal(t, c, begin.Clear)
}
