// Package layer defines the declarative description of a displayable dataset.
//
// A Layer is an immutable value snapshot: the Layer Service produces a new snapshot
// for every change and the reconciliation engine never mutates what it receives.
// This is what makes field-by-field diffing between two snapshots sound.
//
// # Layer Types
//
// Layer is a sealed interface implemented by one value struct per layer type:
//
//   - WmtsLayer, BackgroundLayer: tiled imagery
//   - TiffLayer: band-aware raster imagery
//   - Tiles3dLayer: 3D tilesets
//   - VoxelLayer: voxel volumes with item/range filter mappings
//   - GeoJSONLayer, EarthquakesLayer, KmlLayer: vector data sources
//
// # Sources
//
// Source is a tagged union (Kind plus per-kind fields) describing where the data of a
// layer lives: a Cesium ion asset, a plain URL, an object-storage key or an OGC API
// collection. Sources are resolved into fetchable resources by core/resolver.
//
// # Decoding
//
// Layers are decoded from JSON (catalog, HTTP) or YAML (CLI files) using the "type"
// discriminator:
//
//	l, err := layer.UnmarshalJSON(data)
//	layers, err := layer.DecodeYAML(reader)
package layer
