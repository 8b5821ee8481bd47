// Package utils provides small conversion helpers for loosely typed feature
// properties, such as GeoJSON property maps and CSV fields.
package utils
