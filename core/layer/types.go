package layer

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks malformed layer data. These errors are fatal for the layer
// they belong to and are never retried.
var ErrConfiguration = errors.New("invalid layer configuration")

// Type identifies the kind of a layer.
type Type string

const (
	TypeWmts        Type = "wmts"
	TypeTiles3d     Type = "tiles3d"
	TypeVoxel       Type = "voxel"
	TypeTiff        Type = "tiff"
	TypeGeoJSON     Type = "geojson"
	TypeKml         Type = "kml"
	TypeEarthquakes Type = "earthquakes"
	TypeBackground  Type = "background"
)

// Types lists every supported layer type.
var Types = []Type{
	TypeWmts, TypeTiles3d, TypeVoxel, TypeTiff,
	TypeGeoJSON, TypeKml, TypeEarthquakes, TypeBackground,
}

// Layer is a snapshot of one displayable dataset.
type Layer interface {
	// Common returns the fields shared by every layer type.
	Common() Base
	// Type returns the discriminator of the concrete layer.
	Type() Type
}

// Base holds the fields every layer carries.
type Base struct {
	// ID is the stable identifier of the layer. It never changes across updates.
	ID string `json:"id" yaml:"id"`
	// Label is the display name.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Opacity is the layer opacity in [0, 1].
	Opacity float64 `json:"opacity" yaml:"opacity"`
	// IsVisible reports whether the layer is shown.
	IsVisible bool `json:"isVisible" yaml:"isVisible"`
	// CanUpdateOpacity reports whether the UI may change the opacity.
	CanUpdateOpacity bool `json:"canUpdateOpacity" yaml:"canUpdateOpacity"`
	// Legend is an optional legend image or document reference.
	Legend string `json:"legend,omitempty" yaml:"legend,omitempty"`
	// DownloadURL is an optional link to the raw data.
	DownloadURL string `json:"downloadUrl,omitempty" yaml:"downloadUrl,omitempty"`
	// GeocatID is an optional metadata catalog identifier.
	GeocatID string `json:"geocatId,omitempty" yaml:"geocatId,omitempty"`
}

// Common implements Layer for every struct embedding Base.
func (b Base) Common() Base { return b }

// ImagerySettings are the tiled imagery provider parameters shared by WMTS and
// background layers.
type ImagerySettings struct {
	// URL is the tile URL template.
	URL string `json:"url" yaml:"url"`
	// Format is the tile image format (png, jpeg).
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	// MaxLevel is the maximum tile level the provider requests.
	MaxLevel int `json:"maxLevel,omitempty" yaml:"maxLevel,omitempty"`
	// Credit is the attribution shown for the imagery.
	Credit string `json:"credit,omitempty" yaml:"credit,omitempty"`
	// Times lists the available timestamps of a time-enabled layer.
	Times []string `json:"times,omitempty" yaml:"times,omitempty"`
	// CurrentTime is the active timestamp.
	CurrentTime string `json:"currentTime,omitempty" yaml:"currentTime,omitempty"`
}

// Imagery returns the imagery settings of the layer.
func (s ImagerySettings) Imagery() ImagerySettings { return s }

// WmtsLayer is a WMTS imagery layer.
type WmtsLayer struct {
	Base            `json:",inline" yaml:",inline"`
	ImagerySettings `json:",inline" yaml:",inline"`
}

func (WmtsLayer) Type() Type { return TypeWmts }

// BackgroundLayer is the base map imagery drawn below every other layer.
type BackgroundLayer struct {
	Base            `json:",inline" yaml:",inline"`
	ImagerySettings `json:",inline" yaml:",inline"`
}

func (BackgroundLayer) Type() Type { return TypeBackground }

// Tiles3dLayer is a 3D tileset layer.
type Tiles3dLayer struct {
	Base   `json:",inline" yaml:",inline"`
	Source Source `json:"source" yaml:"source"`
}

func (Tiles3dLayer) Type() Type { return TypeTiles3d }

// TiffBand describes one band of a raster layer.
type TiffBand struct {
	Index    int    `json:"index" yaml:"index"`
	Name     string `json:"name" yaml:"name"`
	Colormap string `json:"colormap,omitempty" yaml:"colormap,omitempty"`
}

// TiffLayer is a cloud-optimized GeoTIFF layer.
type TiffLayer struct {
	Base   `json:",inline" yaml:",inline"`
	Source Source `json:"source" yaml:"source"`
	// Bands lists the bands available in the raster.
	Bands []TiffBand `json:"bands" yaml:"bands"`
	// ActiveBand is the name of the displayed band.
	ActiveBand string `json:"activeBand" yaml:"activeBand"`
}

func (TiffLayer) Type() Type { return TypeTiff }

// Band returns the active band.
func (l TiffLayer) Band() (TiffBand, bool) {
	for _, b := range l.Bands {
		if b.Name == l.ActiveBand {
			return b, true
		}
	}
	return TiffBand{}, false
}

// VoxelLayer is a voxel volume filtered and colored by its mappings.
type VoxelLayer struct {
	Base   `json:",inline" yaml:",inline"`
	Source Source `json:"source" yaml:"source"`
	// Mappings are the per-property filters. Keys are unique within a layer.
	Mappings []VoxelMapping `json:"mappings" yaml:"mappings"`
	// FilterOperator combines the per-mapping match results.
	FilterOperator FilterOperator `json:"filterOperator" yaml:"filterOperator"`
	// DisplayKey selects the mapping whose colors are drawn.
	DisplayKey string `json:"displayKey" yaml:"displayKey"`
	// NoData is the sentinel value of undefined cells.
	NoData float64 `json:"noData" yaml:"noData"`
}

func (VoxelLayer) Type() Type { return TypeVoxel }

// Mapping returns the mapping with the given key.
func (l VoxelLayer) Mapping(key string) (VoxelMapping, bool) {
	for _, m := range l.Mappings {
		if m.Key == key {
			return m, true
		}
	}
	return VoxelMapping{}, false
}

// GeoJSONLayer is a vector layer loaded from a GeoJSON document.
type GeoJSONLayer struct {
	Base   `json:",inline" yaml:",inline"`
	Source Source `json:"source" yaml:"source"`
	// FillColor is the default polygon color.
	FillColor string `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	// MarkerColor is the default point color.
	MarkerColor string `json:"markerColor,omitempty" yaml:"markerColor,omitempty"`
}

func (GeoJSONLayer) Type() Type { return TypeGeoJSON }

// KmlLayer is a KML (or point cloud placemark) data source.
type KmlLayer struct {
	Base          `json:",inline" yaml:",inline"`
	Source        Source `json:"source" yaml:"source"`
	ClampToGround bool   `json:"clampToGround" yaml:"clampToGround"`
}

func (KmlLayer) Type() Type { return TypeKml }

// EarthquakesLayer draws seismic events from a CSV feed.
type EarthquakesLayer struct {
	Base   `json:",inline" yaml:",inline"`
	Source Source `json:"source" yaml:"source"`
	// MinMagnitude drops events below this magnitude.
	MinMagnitude float64 `json:"minMagnitude" yaml:"minMagnitude"`
}

func (EarthquakesLayer) Type() Type { return TypeEarthquakes }

// FilterOperator is the set operator combining voxel mapping matches.
type FilterOperator string

const (
	FilterAnd FilterOperator = "and"
	FilterOr  FilterOperator = "or"
	FilterXor FilterOperator = "xor"
)

// Code returns the integer passed to the shader for the operator.
// Unknown operators behave like FilterAnd.
func (o FilterOperator) Code() int {
	switch o {
	case FilterOr:
		return 1
	case FilterXor:
		return 2
	default:
		return 0
	}
}

// New returns an empty layer value for the given type.
func New(t Type) (Layer, error) {
	switch t {
	case TypeWmts:
		return WmtsLayer{}, nil
	case TypeTiles3d:
		return Tiles3dLayer{}, nil
	case TypeVoxel:
		return VoxelLayer{}, nil
	case TypeTiff:
		return TiffLayer{}, nil
	case TypeGeoJSON:
		return GeoJSONLayer{}, nil
	case TypeKml:
		return KmlLayer{}, nil
	case TypeEarthquakes:
		return EarthquakesLayer{}, nil
	case TypeBackground:
		return BackgroundLayer{}, nil
	}
	return nil, fmt.Errorf("%w: unsupported layer type %q", ErrConfiguration, t)
}
