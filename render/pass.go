// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/recording"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/scene"
)

// triangleVertexCount is the number of vertices the triangle technique
// generates in its vertex shader.
const triangleVertexCount = 3

// Resources looks up cached GPU resources. *resource.Cache implements it.
type Resources interface {
	LookupMesh(key string) (*resource.Mesh, bool)
	LookupPipeline(t resource.Technique) (*resource.Pipeline, bool)
}

// Viewer supplies the view-projection matrix. *camera.Camera implements it.
type Viewer interface {
	ViewProjection() mgl32.Mat4
}

// Stats describes one drawn frame.
type Stats struct {
	// Frame is the target the frame was drawn into.
	Frame device.Frame
	// Drawn counts instances that produced a draw call.
	Drawn int
	// Skipped counts instances whose mesh or pipeline was missing.
	Skipped int
	// Commands is the length of the submitted recording.
	Commands int
}

// Option configures a Pass.
type Option func(*Pass)

// WithClearColor sets the color the frame target is cleared to.
func WithClearColor(c gputypes.Color) Option {
	return func(p *Pass) { p.clear = c }
}

// Pass draws scenes onto a device.
type Pass struct {
	dev   device.Device
	res   Resources
	clear gputypes.Color
}

// NewPass returns a pass drawing with resources from res onto dev.
func NewPass(dev device.Device, res Resources, opts ...Option) *Pass {
	p := &Pass{dev: dev, res: res, clear: resource.ClearColor}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ClearColor returns the clear color.
func (p *Pass) ClearColor() gputypes.Color { return p.clear }

// Draw renders sc as seen by cam and presents the frame.
func (p *Pass) Draw(cam Viewer, sc *scene.Scene) (Stats, error) {
	if err := p.upload(cam.ViewProjection(), sc); err != nil {
		return Stats{}, err
	}

	frame, err := p.dev.AcquireFrame()
	if err != nil {
		return Stats{}, fmt.Errorf("render: acquire frame: %w", err)
	}
	stats := Stats{Frame: frame}

	rec := recording.NewRecorder()
	rec.BeginPass("frame", p.clear)
	for i, inst := range sc.Instances() {
		if p.record(rec, i, inst) {
			stats.Drawn++
		} else {
			stats.Skipped++
		}
	}
	rec.EndPass()

	r, err := rec.Finish()
	if err != nil {
		return stats, fmt.Errorf("render: record: %w", err)
	}
	stats.Commands = r.Len()

	if err := p.dev.Submit(frame, r); err != nil {
		return stats, fmt.Errorf("render: submit: %w", err)
	}
	if err := p.dev.Present(frame); err != nil {
		return stats, fmt.Errorf("render: present: %w", err)
	}
	return stats, nil
}

// upload writes per-frame and per-revision data into every live pipeline.
// Instance data is keyed by scene identity and revision, so passes may
// alternate between scenes sharing one cache.
func (p *Pass) upload(vp mgl32.Mat4, sc *scene.Scene) error {
	var models []mgl32.Mat4
	for _, t := range resource.Techniques {
		pl, ok := p.res.LookupPipeline(t)
		if !ok {
			continue
		}
		if err := pl.WriteViewProjection(p.dev, vp); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		if pl.InstancesCurrent(sc.ID(), sc.Revision()) {
			continue
		}
		if models == nil {
			models = sc.Models()
		}
		if err := pl.UploadInstances(p.dev, sc.ID(), sc.Revision(), models); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	return nil
}

// record records the draw of instance i and reports whether it was drawn.
func (p *Pass) record(rec *recording.Recorder, i int, inst *scene.Instance) bool {
	mesh, ok := p.res.LookupMesh(inst.MeshKey())
	if !ok {
		g3d.Logger().Debug("render: skipping instance with unknown mesh",
			slog.Int("instance", i),
			slog.String("mesh", inst.MeshKey()))
		return false
	}
	pl, ok := p.res.LookupPipeline(mesh.Technique)
	if !ok {
		g3d.Logger().Debug("render: skipping instance without pipeline",
			slog.Int("instance", i),
			slog.String("technique", mesh.Technique.String()))
		return false
	}

	rec.SetPipeline(pl.ID)
	if pl.HasBindGroup() {
		rec.SetBindGroup(0, pl.BindGroup)
	}
	if !mesh.Indexed() {
		rec.Draw(triangleVertexCount, 1, 0, 0)
		return true
	}
	rec.SetVertexBuffer(resource.VertexSlot, mesh.VertexBuffer, 0)
	rec.SetVertexBuffer(resource.InstanceSlot, pl.Instances, 0)
	rec.SetIndexBuffer(mesh.IndexBuffer, mesh.IndexFormat, 0)
	rec.DrawIndexed(mesh.IndexCount, 1, 0, 0, uint32(i))
	return true
}
