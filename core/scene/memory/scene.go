package memory

import (
	"sync/atomic"

	"layer-manager/core/scene"

	"github.com/paulmach/orb"
)

// Camera records the last fly-to target.
type Camera struct {
	Target  orb.Bound
	Flights int
}

// FlyTo records the target and counts the flight.
func (c *Camera) FlyTo(bound orb.Bound) {
	c.Target = bound
	c.Flights++
}

// Scene is a headless scene.Scene.
type Scene struct {
	primitives  *Primitives
	imagery     *ImageryLayers
	dataSources *DataSources
	camera      *Camera
	picking     *scene.PickService

	mutations atomic.Int64
	renders   atomic.Int64
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	s := &Scene{
		primitives:  &Primitives{},
		imagery:     &ImageryLayers{},
		dataSources: &DataSources{},
		camera:      &Camera{},
		picking:     &scene.PickService{},
	}
	count := func() { s.mutations.Add(1) }
	s.primitives.onChange = count
	s.imagery.onChange = count
	s.dataSources.onChange = count
	return s
}

func (s *Scene) Primitives() scene.PrimitiveCollection      { return s.primitives }
func (s *Scene) ImageryLayers() scene.ImageryLayerCollection { return s.imagery }
func (s *Scene) DataSources() scene.DataSourceCollection    { return s.dataSources }
func (s *Scene) Camera() scene.Camera                       { return s.camera }
func (s *Scene) Picking() *scene.PickService                { return s.picking }
func (s *Scene) RequestRender()                             { s.renders.Add(1) }

// PrimitiveList returns the concrete primitive collection.
func (s *Scene) PrimitiveList() *Primitives { return s.primitives }

// ImageryList returns the concrete imagery stack.
func (s *Scene) ImageryList() *ImageryLayers { return s.imagery }

// DataSourceList returns the concrete data source collection.
func (s *Scene) DataSourceList() *DataSources { return s.dataSources }

// CameraState returns the concrete camera.
func (s *Scene) CameraState() *Camera { return s.camera }

// Mutations returns the number of collection changes so far.
func (s *Scene) Mutations() int64 { return s.mutations.Load() }

// Renders returns the number of render requests so far.
func (s *Scene) Renders() int64 { return s.renders.Load() }

// Snapshot is a serializable view of the scene.
type Snapshot struct {
	Primitives  []PrimitiveInfo  `json:"primitives"`
	Imagery     []ImageryInfo    `json:"imagery"`
	DataSources []DataSourceInfo `json:"dataSources"`
	PickLocked  bool             `json:"pickLocked"`
	Mutations   int64            `json:"mutations"`
	Renders     int64            `json:"renders"`
}

// PrimitiveInfo summarizes a primitive.
type PrimitiveInfo struct {
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Show     bool   `json:"show"`
	Shader   string `json:"shader,omitempty"`
	Uniforms int    `json:"uniforms,omitempty"`
}

// ImageryInfo summarizes an imagery layer.
type ImageryInfo struct {
	URL      string  `json:"url"`
	Alpha    float64 `json:"alpha"`
	Pickable bool    `json:"pickable"`
}

// DataSourceInfo summarizes a data source.
type DataSourceInfo struct {
	Name     string `json:"name"`
	Show     bool   `json:"show"`
	Entities int    `json:"entities"`
}

// Snapshot captures the current scene content.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Primitives:  []PrimitiveInfo{},
		Imagery:     []ImageryInfo{},
		DataSources: []DataSourceInfo{},
		PickLocked:  s.picking.Locked(),
		Mutations:   s.Mutations(),
		Renders:     s.Renders(),
	}
	for _, p := range s.primitives.Items() {
		switch v := p.(type) {
		case *scene.Tileset:
			snap.Primitives = append(snap.Primitives, PrimitiveInfo{
				Kind:     "tileset",
				URL:      v.Resource.URL,
				Show:     v.Show,
				Shader:   shaderID(v.Shader),
				Uniforms: uniformCount(v.Shader),
			})
		case *scene.VoxelPrimitive:
			snap.Primitives = append(snap.Primitives, PrimitiveInfo{
				Kind:     "voxel",
				URL:      v.Provider.Resource.URL,
				Show:     v.Show,
				Shader:   shaderID(v.Shader),
				Uniforms: uniformCount(v.Shader),
			})
		default:
			snap.Primitives = append(snap.Primitives, PrimitiveInfo{Kind: "unknown"})
		}
	}
	for _, l := range s.imagery.Items() {
		snap.Imagery = append(snap.Imagery, ImageryInfo{URL: l.Provider.URL, Alpha: l.Alpha, Pickable: l.Pickable})
	}
	for _, ds := range s.dataSources.Items() {
		snap.DataSources = append(snap.DataSources, DataSourceInfo{Name: ds.Name, Show: ds.Show, Entities: len(ds.Entities)})
	}
	return snap
}

func shaderID(s *scene.CustomShader) string {
	if s == nil || s.Program == nil {
		return ""
	}
	return s.Program.ID
}

func uniformCount(s *scene.CustomShader) int {
	if s == nil {
		return 0
	}
	return len(s.Uniforms)
}
