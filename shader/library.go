package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Library resolves shader source by name. Files in the override directory
// named <name>.wgsl take precedence over the embedded sources.
type Library struct {
	dir string
}

// NewLibrary returns a library that overlays dir on the built-in shaders.
// An empty dir serves only the embedded sources.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the override directory, or "" when there is none.
func (l *Library) Dir() string { return l.dir }

// Path returns the override file path for name.
func (l *Library) Path(name string) string {
	if l.dir == "" {
		return ""
	}
	return filepath.Join(l.dir, name+".wgsl")
}

// Source returns the current source of the named shader.
func (l *Library) Source(name string) (string, error) {
	if path := l.Path(name); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			return string(data), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("shader: read %s: %w", path, err)
		}
	}
	if src, ok := builtin[name]; ok {
		return src, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknown, name)
}

// NameForPath maps an override file path back to a shader name.
func (l *Library) NameForPath(path string) (string, bool) {
	if l.dir == "" || filepath.Ext(path) != ".wgsl" {
		return "", false
	}
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(l.dir) {
		return "", false
	}
	base := filepath.Base(path)
	return base[:len(base)-len(".wgsl")], true
}
