package input

import (
	"fmt"
	"strings"
)

// Command is a bitmask of held discrete commands.
type Command uint32

// Command bits.
const (
	Forward Command = 1 << iota
	Backward
	Left
	Right
	Up
	Down
	MouseLeft
	MouseRight
	Other
)

// Movement is the set of bits that translate the camera.
const Movement = Forward | Backward | Left | Right | Up | Down

var commandNames = [...]string{
	"forward", "backward", "left", "right", "up", "down",
	"mouse_left", "mouse_right", "other",
}

// Has reports whether every bit of c2 is set in c.
func (c Command) Has(c2 Command) bool { return c&c2 == c2 && c2 != 0 }

// String returns the names of the set bits joined by "|".
func (c Command) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for i, name := range commandNames {
		if c&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if rest := c &^ (1<<len(commandNames) - 1); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseCommand returns the single command named name, as produced by String.
func ParseCommand(name string) (Command, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, cn := range commandNames {
		if n == cn {
			return 1 << i, nil
		}
	}
	return 0, fmt.Errorf("input: unknown command %q", name)
}
