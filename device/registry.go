package device

import (
	"fmt"
	"sort"

	"github.com/gogpu/gpucontext"
)

// Driver names registered by the bundled implementations.
const (
	DriverWGPU     = "wgpu"
	DriverHeadless = "headless"
)

// Driver opens devices of one kind.
type Driver interface {
	Open(cfg Config) (Device, error)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(cfg Config) (Device, error)

// Open implements Driver.
func (f DriverFunc) Open(cfg Config) (Device, error) { return f(cfg) }

// drivers holds registered drivers. Priority order for Open(""):
// wgpu > headless (headless is the fallback).
var drivers = gpucontext.NewRegistry[Driver](
	gpucontext.WithPriority(DriverWGPU, DriverHeadless),
)

// Register registers a driver under name. This is typically called from
// init() in driver packages. A driver registered under an existing name
// replaces it.
func Register(name string, d Driver) {
	if d == nil {
		panic("device: Register driver is nil")
	}
	drivers.Register(name, func() Driver { return d })
}

// Unregister removes a driver. This is useful for testing.
func Unregister(name string) {
	drivers.Unregister(name)
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	names := drivers.Available()
	sort.Strings(names)
	return names
}

// Open opens a device with the named driver. An empty name selects the
// highest-priority registered driver.
//
// Returns ErrUnknownDriver if the driver is not registered. The error
// message includes a hint about forgotten imports.
func Open(name string, cfg Config) (Device, error) {
	if name == "" {
		name = drivers.BestName()
	}
	if name == "" || !drivers.Has(name) {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownDriver, name)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: zero size %dx%d", ErrInvalidDescriptor, cfg.Width, cfg.Height)
	}
	dev, err := drivers.Get(name).Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("device: open %s: %w", name, err)
	}
	return dev, nil
}
