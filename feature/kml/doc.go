// Package kml reconciles KML layers. Parsing is left to the scene loader; the
// strategy owns the resulting data source.
package kml
