package scene

import (
	"fmt"
	"image/color"
	"sync"

	"layer-manager/core/resolver"

	"github.com/paulmach/orb"
)

// ImageryProvider describes where imagery tiles come from. Providers cannot be
// reconfigured once created.
type ImageryProvider struct {
	URL          string
	Format       string
	MaximumLevel int
	Credit       string
	Time         string
	Band         int
	Colormap     string
	Headers      map[string]string
	Rectangle    orb.Bound
}

// ImageryLayer is one entry of the imagery stack.
type ImageryLayer struct {
	Provider *ImageryProvider
	Alpha    float64
	Show     bool
	Pickable bool
}

// UniformType is the GLSL type of a uniform.
type UniformType string

const (
	UniformInt        UniformType = "int"
	UniformBool       UniformType = "bool"
	UniformFloat      UniformType = "float"
	UniformVec2       UniformType = "vec2"
	UniformIVec4      UniformType = "ivec4"
	UniformFloatArray UniformType = "float[]"
	UniformVec4Array  UniformType = "vec4[]"
)

// Uniform is a typed uniform value.
type Uniform struct {
	Type  UniformType `json:"type"`
	Value any         `json:"value"`
}

// Uniforms maps uniform names to values.
type Uniforms map[string]Uniform

// Set replaces the value of an existing uniform. Uniforms cannot be added after a
// shader is built, since that would change the compiled program.
func (u Uniforms) Set(name string, value any) error {
	current, ok := u[name]
	if !ok {
		return fmt.Errorf("unknown uniform %q", name)
	}
	current.Value = value
	u[name] = current
	return nil
}

// ShaderProgram is compiled shader source. Programs are shared between custom shaders
// with identical source.
type ShaderProgram struct {
	ID     string
	Source string
}

// Translucency selects the render pass of a custom shader.
type Translucency string

const (
	Opaque      Translucency = "opaque"
	Translucent Translucency = "translucent"
)

// CustomShader binds a program to per-resource uniform values.
type CustomShader struct {
	Program      *ShaderProgram
	Translucency Translucency
	Uniforms     Uniforms
}

// Tileset is a 3D tileset primitive.
type Tileset struct {
	Resource     resolver.Resource
	Show         bool
	Shader       *CustomShader
	Exaggeration float64
	Region       orb.Bound

	mu        sync.Mutex
	listeners []func(pending int)
	destroyed bool
}

// OnLoadProgress registers fn to be called with the number of pending tile requests
// whenever the load queue changes.
func (t *Tileset) OnLoadProgress(fn func(pending int)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// ReportLoadProgress is called by the renderer when the load queue changes.
func (t *Tileset) ReportLoadProgress(pending int) {
	t.mu.Lock()
	listeners := make([]func(int), len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(pending)
	}
}

// Destroy releases the tileset and drops its progress listeners.
func (t *Tileset) Destroy() {
	t.mu.Lock()
	t.destroyed = true
	t.listeners = nil
	t.mu.Unlock()
}

func (t *Tileset) IsDestroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}

// VoxelProvider is a loaded voxel volume.
type VoxelProvider struct {
	Resource resolver.Resource
	// Properties lists the metadata properties stored per cell.
	Properties []string
	Region     orb.Bound
}

// VoxelPrimitive renders a voxel provider with a custom shader.
type VoxelPrimitive struct {
	Provider     *VoxelProvider
	Shader       *CustomShader
	Show         bool
	Exaggeration float64

	destroyed bool
}

func (v *VoxelPrimitive) Destroy()          { v.destroyed = true }
func (v *VoxelPrimitive) IsDestroyed() bool { return v.destroyed }

// ColorMaterial is an entity material. Materials are immutable once assigned; a new
// one is built for every color change.
type ColorMaterial struct {
	Color color.NRGBA
}

// Entity is one vector feature of a data source.
type Entity struct {
	ID         string
	Geometry   orb.Geometry
	BaseColor  color.NRGBA
	Material   *ColorMaterial
	Properties map[string]any
}

// DataSource is a named set of entities.
type DataSource struct {
	Name     string
	Show     bool
	Entities []*Entity
}

// ApplyAlpha rebuilds every entity material from its base color with alpha scaled by
// the given opacity.
func (d *DataSource) ApplyAlpha(opacity float64) {
	for _, e := range d.Entities {
		c := e.BaseColor
		c.A = uint8(float64(c.A)*clamp01(opacity) + 0.5)
		e.Material = &ColorMaterial{Color: c}
	}
}

// Bound returns the bounding box of every entity geometry.
func (d *DataSource) Bound() orb.Bound {
	var bound orb.Bound
	first := true
	for _, e := range d.Entities {
		if e.Geometry == nil {
			continue
		}
		b := e.Geometry.Bound()
		if first {
			bound = b
			first = false
			continue
		}
		bound = bound.Union(b)
	}
	return bound
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
