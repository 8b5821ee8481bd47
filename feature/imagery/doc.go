// Package imagery reconciles imagery layers: WMTS and background tile layers, and
// single-band rendering of cloud-optimized GeoTIFFs.
//
// Imagery providers cannot be reconfigured, so any change to the provider parameters
// rebuilds the layer. The replacement takes the position of the old layer in the
// imagery stack. Opacity and visibility are patched in place; a hidden layer keeps
// its slot with zero alpha and picking disabled, because removing and re-adding a
// layer while tiles are in flight upsets the renderer.
package imagery
