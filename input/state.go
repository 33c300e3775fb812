package input

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gpucontext"
)

// Option configures a State.
type Option func(*State)

// WithKeymap replaces the default key bindings.
func WithKeymap(m Keymap) Option {
	return func(s *State) {
		s.keymap = m.Clone()
	}
}

// State accumulates held commands and the pointer delta between ticks.
type State struct {
	keymap   Keymap
	commands Command
	delta    mgl32.Vec2
	last     mgl32.Vec2
}

// NewState returns an empty state using DefaultKeymap unless overridden.
func NewState(opts ...Option) *State {
	s := &State{keymap: DefaultKeymap()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnKey sets or clears the command bound to key. Unbound keys are ignored.
func (s *State) OnKey(key gpucontext.Key, pressed bool) {
	cmd, ok := s.keymap[key]
	if !ok || cmd == Other {
		return
	}
	s.set(cmd, pressed)
}

// OnMouseButton sets or clears MouseLeft or MouseRight. Other buttons are
// ignored.
func (s *State) OnMouseButton(button gpucontext.MouseButton, pressed bool) {
	switch button {
	case gpucontext.MouseButtonLeft:
		s.set(MouseLeft, pressed)
	case gpucontext.MouseButtonRight:
		s.set(MouseRight, pressed)
	}
}

// OnPointerMove records a pointer position. The movement since the previous
// position is added to the pending delta only while MouseRight is held.
// The last position is always updated so a later press starts from zero.
func (s *State) OnPointerMove(x, y float64) {
	pos := mgl32.Vec2{float32(x), float32(y)}
	if s.commands&MouseRight != 0 {
		s.delta = s.delta.Add(pos.Sub(s.last))
	}
	s.last = pos
}

// Commands returns the held command bits.
func (s *State) Commands() Command { return s.commands }

// PointerDelta returns the pending delta without consuming it.
func (s *State) PointerDelta() mgl32.Vec2 { return s.delta }

// TakePointerDelta returns the pending delta and resets it to zero.
func (s *State) TakePointerDelta() mgl32.Vec2 {
	d := s.delta
	s.delta = mgl32.Vec2{}
	return d
}

// Reset releases every command and drops the pending delta, for example
// when the window loses focus.
func (s *State) Reset() {
	s.commands = 0
	s.delta = mgl32.Vec2{}
}

// Attach registers the state's handlers on src.
func (s *State) Attach(src gpucontext.EventSource) {
	src.OnKeyPress(func(k gpucontext.Key, _ gpucontext.Modifiers) { s.OnKey(k, true) })
	src.OnKeyRelease(func(k gpucontext.Key, _ gpucontext.Modifiers) { s.OnKey(k, false) })
	src.OnMousePress(func(b gpucontext.MouseButton, x, y float64) {
		s.OnPointerMove(x, y)
		s.OnMouseButton(b, true)
	})
	src.OnMouseRelease(func(b gpucontext.MouseButton, x, y float64) {
		s.OnPointerMove(x, y)
		s.OnMouseButton(b, false)
	})
	src.OnMouseMove(s.OnPointerMove)
	src.OnFocus(func(focused bool) {
		if !focused {
			s.Reset()
		}
	})
}

func (s *State) set(cmd Command, pressed bool) {
	if pressed {
		s.commands |= cmd
	} else {
		s.commands &^= cmd
	}
}
