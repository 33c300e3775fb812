package shader

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// Built-in shader names.
const (
	TexturedMesh = "textured_mesh"
	Triangle     = "triangle"
)

// Entry points shared by the built-in shaders.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

//go:embed shaders/textured_mesh.wgsl
var texturedMeshSource string

//go:embed shaders/triangle.wgsl
var triangleSource string

var builtin = map[string]string{
	TexturedMesh: texturedMeshSource,
	Triangle:     triangleSource,
}

// ErrCompile is returned when WGSL source fails to parse, lower or validate.
var ErrCompile = errors.New("shader: compile failed")

// ErrUnknown is returned for a shader name with no source.
var ErrUnknown = errors.New("shader: unknown shader")

// Builtin returns the embedded source of a built-in shader.
func Builtin(name string) (string, bool) {
	src, ok := builtin[name]
	return src, ok
}

// Validate checks WGSL source and, when entry points are given, that each
// of them is declared.
func Validate(code string, entryPoints ...string) error {
	module, err := lower(code)
	if err != nil {
		return err
	}
	for _, name := range entryPoints {
		if !hasEntryPoint(module, name) {
			return fmt.Errorf("%w: missing entry point %q", ErrCompile, name)
		}
	}
	return nil
}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(code string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V length %d is not a multiple of 4", ErrCompile, len(spirvBytes))
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

func lower(code string) (*ir.Module, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: empty source", ErrCompile)
	}
	ast, err := naga.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	module, err := naga.LowerWithSource(ast, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrCompile, strings.Join(msgs, "; "))
	}
	return module, nil
}

func hasEntryPoint(m *ir.Module, name string) bool {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Name == name {
			return true
		}
	}
	return false
}
