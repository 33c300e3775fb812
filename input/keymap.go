package input

import (
	"fmt"
	"strings"

	"github.com/gogpu/gpucontext"
)

// Keymap binds keys to commands. Keys absent from the map are ignored.
type Keymap map[gpucontext.Key]Command

// DefaultKeymap returns the WASD bindings: W/S forward and back, A/D left
// and right, Space up, left Shift down.
func DefaultKeymap() Keymap {
	return Keymap{
		gpucontext.KeyW:         Forward,
		gpucontext.KeyS:         Backward,
		gpucontext.KeyA:         Left,
		gpucontext.KeyD:         Right,
		gpucontext.KeySpace:     Up,
		gpucontext.KeyLeftShift: Down,
	}
}

// Clone returns a copy of m.
func (m Keymap) Clone() Keymap {
	out := make(Keymap, len(m))
	for k, c := range m {
		out[k] = c
	}
	return out
}

// Rebind returns a copy of m in which every command bound in over loses
// its old keys and takes the keys of over. Commands over does not mention
// keep their bindings.
func (m Keymap) Rebind(over Keymap) Keymap {
	out := make(Keymap, len(m)+len(over))
	for k, c := range m {
		if !rebound(over, c) {
			out[k] = c
		}
	}
	for k, c := range over {
		out[k] = c
	}
	return out
}

func rebound(over Keymap, c Command) bool {
	for _, oc := range over {
		if oc == c {
			return true
		}
	}
	return false
}

var namedKeys = map[string]gpucontext.Key{
	"escape":       gpucontext.KeyEscape,
	"tab":          gpucontext.KeyTab,
	"backspace":    gpucontext.KeyBackspace,
	"enter":        gpucontext.KeyEnter,
	"space":        gpucontext.KeySpace,
	"insert":       gpucontext.KeyInsert,
	"delete":       gpucontext.KeyDelete,
	"home":         gpucontext.KeyHome,
	"end":          gpucontext.KeyEnd,
	"pageup":       gpucontext.KeyPageUp,
	"pagedown":     gpucontext.KeyPageDown,
	"left":         gpucontext.KeyLeft,
	"right":        gpucontext.KeyRight,
	"up":           gpucontext.KeyUp,
	"down":         gpucontext.KeyDown,
	"leftshift":    gpucontext.KeyLeftShift,
	"rightshift":   gpucontext.KeyRightShift,
	"leftcontrol":  gpucontext.KeyLeftControl,
	"rightcontrol": gpucontext.KeyRightControl,
	"leftalt":      gpucontext.KeyLeftAlt,
	"rightalt":     gpucontext.KeyRightAlt,
	"leftsuper":    gpucontext.KeyLeftSuper,
	"rightsuper":   gpucontext.KeyRightSuper,
}

// ParseKey parses a key name such as "W", "7", "F5", "Space" or
// "LeftShift". Matching ignores case, spaces, dashes and underscores.
func ParseKey(name string) (gpucontext.Key, error) {
	n := strings.ToLower(name)
	n = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(n)

	if len(n) == 1 {
		switch c := n[0]; {
		case c >= 'a' && c <= 'z':
			return gpucontext.KeyA + gpucontext.Key(c-'a'), nil
		case c >= '0' && c <= '9':
			return gpucontext.Key0 + gpucontext.Key(c-'0'), nil
		}
	}
	var f int
	if _, err := fmt.Sscanf(n, "f%d", &f); err == nil && f >= 1 && f <= 12 && n == fmt.Sprintf("f%d", f) {
		return gpucontext.KeyF1 + gpucontext.Key(f-1), nil
	}
	if k, ok := namedKeys[n]; ok {
		return k, nil
	}
	return gpucontext.KeyUnknown, fmt.Errorf("input: unknown key %q", name)
}

// ParseKeymap builds a keymap from command names to key names, as found in
// configuration files.
func ParseKeymap(bindings map[string][]string) (Keymap, error) {
	m := make(Keymap)
	for cmdName, keys := range bindings {
		cmd, err := ParseCommand(cmdName)
		if err != nil {
			return nil, err
		}
		for _, keyName := range keys {
			k, err := ParseKey(keyName)
			if err != nil {
				return nil, err
			}
			m[k] = cmd
		}
	}
	return m, nil
}
