package main

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/g3d/input"
)

// phase is one segment of the input script: keys held and a mouse drag
// applied every frame of the segment.
type phase struct {
	keys   []gpucontext.Key
	dragDX float64
	dragDY float64
}

var phases = []phase{
	{keys: []gpucontext.Key{gpucontext.KeyW}},
	{dragDX: 2, dragDY: 0.5},
	{keys: []gpucontext.Key{gpucontext.KeyD, gpucontext.KeySpace}},
	{keys: []gpucontext.Key{gpucontext.KeyS}, dragDX: -2},
}

// script feeds the phases to an input state, splitting the frames evenly.
type script struct {
	in       *input.State
	perPhase int
	current  int
	x, y     float64
}

func newScript(in *input.State, frames int) *script {
	return &script{in: in, perPhase: max(frames/len(phases), 1), current: -1}
}

// step applies the input of frame i.
func (s *script) step(i int) {
	p := min(i/s.perPhase, len(phases)-1)
	if p != s.current {
		if s.current >= 0 {
			s.leave(phases[s.current])
		}
		s.current = p
		s.enter(phases[p])
	}
	ph := phases[p]
	if ph.dragDX != 0 || ph.dragDY != 0 {
		s.x += ph.dragDX
		s.y += ph.dragDY
		s.in.OnPointerMove(s.x, s.y)
	}
}

func (s *script) enter(p phase) {
	for _, k := range p.keys {
		s.in.OnKey(k, true)
	}
	if p.dragDX != 0 || p.dragDY != 0 {
		s.in.OnPointerMove(s.x, s.y)
		s.in.OnMouseButton(gpucontext.MouseButtonRight, true)
	}
}

func (s *script) leave(p phase) {
	for _, k := range p.keys {
		s.in.OnKey(k, false)
	}
	if p.dragDX != 0 || p.dragDY != 0 {
		s.in.OnMouseButton(gpucontext.MouseButtonRight, false)
	}
}
