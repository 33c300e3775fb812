package resource

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/cache"
	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/shader"
	"github.com/gogpu/g3d/texture"
)

var (
	// ErrInvalidTechnique is returned for a Technique outside the enum.
	ErrInvalidTechnique = errors.New("resource: invalid technique")

	// ErrInvalidMesh is returned for mesh data the technique cannot draw.
	ErrInvalidMesh = errors.New("resource: invalid mesh")

	// ErrReleased is returned after Release.
	ErrReleased = errors.New("resource: cache released")
)

// Option configures a Cache.
type Option func(*options)

type options struct {
	shaders *shader.Library
	texels  *texture.Texels
}

// WithShaderLibrary sets where shader source is read from. The default
// serves the embedded shaders only.
func WithShaderLibrary(lib *shader.Library) Option {
	return func(o *options) { o.shaders = lib }
}

// WithTexture replaces the generated Mandelbrot texture of the textured
// mesh technique.
func WithTexture(t texture.Texels) Option {
	return func(o *options) { o.texels = &t }
}

// Stats reports lookup statistics of both resource kinds.
type Stats struct {
	Pipelines cache.Stats
	Meshes    cache.Stats
}

// Cache owns pipelines and meshes. Every device object it creates lives
// until Release. A Cache is not safe for concurrent use.
type Cache struct {
	dev      device.Device
	shaders  *shader.Library
	texels   texture.Texels
	released bool

	pipelines *cache.Store[Technique, *Pipeline]
	meshes    *cache.Store[string, *Mesh]
}

// New returns an empty cache creating objects on dev.
func New(dev device.Device, opts ...Option) *Cache {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.shaders == nil {
		o.shaders = shader.NewLibrary("")
	}
	c := &Cache{
		dev:       dev,
		shaders:   o.shaders,
		pipelines: cache.New[Technique, *Pipeline](),
		meshes:    cache.New[string, *Mesh](),
	}
	if o.texels != nil {
		c.texels = *o.texels
	} else {
		c.texels = texture.Mandelbrot(texture.Size)
	}
	return c
}

// Device returns the device the cache creates objects on.
func (c *Cache) Device() device.Device { return c.dev }

// Shaders returns the shader library pipelines are compiled from.
func (c *Cache) Shaders() *shader.Library { return c.shaders }

// Pipeline returns the pipeline for t, building it on first use.
func (c *Cache) Pipeline(t Technique) (*Pipeline, error) {
	if c.released {
		return nil, ErrReleased
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTechnique, uint8(t))
	}
	p, created, err := c.pipelines.GetOrCreate(t, func() (*Pipeline, error) {
		return c.build(t)
	})
	if err != nil {
		return nil, err
	}
	if created {
		g3d.Logger().Info("resource: pipeline created",
			slog.String("technique", t.String()),
			slog.Uint64("pipeline", uint64(p.ID)))
	}
	return p, nil
}

// LookupPipeline returns the pipeline for t without creating it.
func (c *Cache) LookupPipeline(t Technique) (*Pipeline, bool) {
	return c.pipelines.Get(t)
}

// ReloadPipeline rebuilds the pipeline for t from the current shader
// source. On success the new pipeline replaces the old one and the old
// device objects are released. On failure the old pipeline stays in place.
// Pointers obtained before the reload must not be used afterwards.
func (c *Cache) ReloadPipeline(t Technique) error {
	if c.released {
		return ErrReleased
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTechnique, uint8(t))
	}
	p, err := c.build(t)
	if err != nil {
		return err
	}
	if old, ok := c.pipelines.Replace(t, p); ok {
		old.release(c.dev)
	}
	g3d.Logger().Info("resource: pipeline reloaded",
		slog.String("technique", t.String()),
		slog.Uint64("pipeline", uint64(p.ID)))
	return nil
}

func (c *Cache) build(t Technique) (*Pipeline, error) {
	src, err := c.shaders.Source(t.Shader())
	if err != nil {
		return nil, fmt.Errorf("resource: %s: %w", t, err)
	}
	return buildPipeline(c.dev, t, src, c.texels)
}

// Mesh returns the mesh stored under key, creating it from vertices and
// indices on first use. When key already exists the payload is ignored and
// the stored mesh is returned.
//
// Vertices are packed geometry.Vertex data. Meshes drawn with
// TechniqueTriangle carry no buffers and take nil payloads.
func (c *Cache) Mesh(key string, vertices []byte, indices []uint16, opts ...MeshOption) (*Mesh, error) {
	if c.released {
		return nil, ErrReleased
	}
	o := meshOptions{technique: TechniqueTexturedMesh}
	for _, opt := range opts {
		opt(&o)
	}

	m, created, err := c.meshes.GetOrCreate(key, func() (*Mesh, error) {
		return c.createMesh(key, o.technique, vertices, indices)
	})
	if err != nil {
		return nil, err
	}
	if created {
		g3d.Logger().Debug("resource: mesh created",
			slog.String("key", key),
			slog.Int("indices", int(m.IndexCount)))
	} else {
		g3d.Logger().Debug("resource: mesh exists, payload ignored", slog.String("key", key))
	}
	return m, nil
}

// LookupMesh returns the mesh stored under key without creating it.
func (c *Cache) LookupMesh(key string) (*Mesh, bool) {
	return c.meshes.Get(key)
}

func (c *Cache) createMesh(key string, t Technique, vertices []byte, indices []uint16) (*Mesh, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTechnique, uint8(t))
	}
	m := &Mesh{Key: key, Technique: t}
	if !t.Indexed() {
		return m, nil
	}
	switch {
	case len(vertices) == 0 || len(indices) == 0:
		return nil, fmt.Errorf("%w %q: empty vertex or index data", ErrInvalidMesh, key)
	case len(vertices)%geometry.VertexStride != 0:
		return nil, fmt.Errorf("%w %q: %d vertex bytes is not a multiple of %d",
			ErrInvalidMesh, key, len(vertices), geometry.VertexStride)
	}
	vertexCount := len(vertices) / geometry.VertexStride
	for _, i := range indices {
		if int(i) >= vertexCount {
			return nil, fmt.Errorf("%w %q: index %d out of range (%d vertices)", ErrInvalidMesh, key, i, vertexCount)
		}
	}

	vb, err := c.dev.CreateBuffer(&device.BufferDescriptor{
		Label:    key + " vertices",
		Usage:    gputypes.BufferUsageVertex,
		Contents: vertices,
	})
	if err != nil {
		return nil, fmt.Errorf("resource: mesh %q: create vertex buffer: %w", key, err)
	}
	ib, err := c.dev.CreateBuffer(&device.BufferDescriptor{
		Label:    key + " indices",
		Usage:    gputypes.BufferUsageIndex,
		Contents: geometry.Mesh{Indices: indices}.IndexBytes(),
	})
	if err != nil {
		c.dev.ReleaseBuffer(vb)
		return nil, fmt.Errorf("resource: mesh %q: create index buffer: %w", key, err)
	}

	m.VertexBuffer = vb
	m.IndexBuffer = ib
	m.IndexCount = uint32(len(indices))
	m.IndexFormat = gputypes.IndexFormatUint16
	return m, nil
}

// Stats returns lookup statistics.
func (c *Cache) Stats() Stats {
	return Stats{Pipelines: c.pipelines.Stats(), Meshes: c.meshes.Stats()}
}

// Release frees every device object the cache created. The cache cannot be
// used afterwards.
func (c *Cache) Release() {
	if c.released {
		return
	}
	c.released = true
	for _, m := range c.meshes.All() {
		if m.VertexBuffer.Valid() {
			c.dev.ReleaseBuffer(m.VertexBuffer)
		}
		if m.IndexBuffer.Valid() {
			c.dev.ReleaseBuffer(m.IndexBuffer)
		}
	}
	for _, p := range c.pipelines.All() {
		p.release(c.dev)
	}
	c.meshes.Clear()
	c.pipelines.Clear()
}
