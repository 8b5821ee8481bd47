package layer

import (
	"fmt"
	"regexp"
	"sort"
)

// MaxMappingItems is the number of discrete items one item mapping can hold.
// It matches the 128-bit flag vector passed to the voxel shader.
const MaxMappingItems = 128

// MappingKind tells item mappings from range mappings.
type MappingKind string

const (
	MappingItem  MappingKind = "item"
	MappingRange MappingKind = "range"
)

// VoxelItem is one enumerated value of an item mapping.
type VoxelItem struct {
	Value     float64 `json:"value" yaml:"value"`
	Label     string  `json:"label,omitempty" yaml:"label,omitempty"`
	Color     string  `json:"color" yaml:"color"`
	IsEnabled bool    `json:"isEnabled" yaml:"isEnabled"`
}

// ItemMapping filters voxel cells by a finite set of values.
type ItemMapping struct {
	Items []VoxelItem `json:"items" yaml:"items"`
}

// EnabledFlags returns the enabled state of every item, in item order.
func (m ItemMapping) EnabledFlags() []bool {
	flags := make([]bool, len(m.Items))
	for i, item := range m.Items {
		flags[i] = item.IsEnabled
	}
	return flags
}

// RangeMapping filters voxel cells by a continuous interval.
type RangeMapping struct {
	// Min and Max bound the values of the property.
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
	// EnabledRange is the sub-interval of [Min, Max] that passes the filter.
	EnabledRange [2]float64 `json:"enabledRange" yaml:"enabledRange"`
	// Colors is the color ramp spread evenly across [Min, Max].
	Colors []string `json:"colors" yaml:"colors"`
	// IsUndefinedAlwaysEnabled makes cells holding the no-data value always match.
	IsUndefinedAlwaysEnabled bool `json:"isUndefinedAlwaysEnabled" yaml:"isUndefinedAlwaysEnabled"`
}

// ToggleUndefinedAlwaysEnabled returns a copy of the mapping with the undefined flag negated.
func (m RangeMapping) ToggleUndefinedAlwaysEnabled() RangeMapping {
	m.IsUndefinedAlwaysEnabled = !m.IsUndefinedAlwaysEnabled
	return m
}

// VoxelMapping is either an item mapping or a range mapping for the voxel property Key.
// Exactly one of Item and Range is set.
type VoxelMapping struct {
	Key   string        `json:"key" yaml:"key"`
	Item  *ItemMapping  `json:"item,omitempty" yaml:"item,omitempty"`
	Range *RangeMapping `json:"range,omitempty" yaml:"range,omitempty"`
}

// Kind returns the mapping kind.
func (m VoxelMapping) Kind() MappingKind {
	if m.Item != nil {
		return MappingItem
	}
	return MappingRange
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the mapping in isolation.
func (m VoxelMapping) Validate() error {
	if !identifierPattern.MatchString(m.Key) {
		return fmt.Errorf("%w: mapping key %q is not a valid shader identifier", ErrConfiguration, m.Key)
	}
	switch {
	case m.Item != nil && m.Range != nil:
		return fmt.Errorf("%w: mapping %q is both an item and a range mapping", ErrConfiguration, m.Key)
	case m.Item != nil:
		n := len(m.Item.Items)
		if n == 0 {
			return fmt.Errorf("%w: item mapping %q has no items", ErrConfiguration, m.Key)
		}
		if n > MaxMappingItems {
			return fmt.Errorf("%w: item mapping %q has %d items, at most %d are supported", ErrConfiguration, m.Key, n, MaxMappingItems)
		}
		for _, item := range m.Item.Items {
			if _, err := ParseColor(item.Color); err != nil {
				return fmt.Errorf("mapping %q: %w", m.Key, err)
			}
		}
	case m.Range != nil:
		r := m.Range
		if r.Min > r.Max {
			return fmt.Errorf("%w: range mapping %q has min %v above max %v", ErrConfiguration, m.Key, r.Min, r.Max)
		}
		if r.EnabledRange[0] > r.EnabledRange[1] {
			return fmt.Errorf("%w: range mapping %q has an inverted enabled range", ErrConfiguration, m.Key)
		}
		if len(r.Colors) == 0 {
			return fmt.Errorf("%w: range mapping %q has an empty color ramp", ErrConfiguration, m.Key)
		}
		for _, c := range r.Colors {
			if _, err := ParseColor(c); err != nil {
				return fmt.Errorf("mapping %q: %w", m.Key, err)
			}
		}
	default:
		return fmt.Errorf("%w: mapping %q is neither an item nor a range mapping", ErrConfiguration, m.Key)
	}
	return nil
}

// SortedMappings returns the mappings ordered by key. The position of a key in this
// order is the index used by the generated voxel shader.
func SortedMappings(mappings []VoxelMapping) []VoxelMapping {
	sorted := make([]VoxelMapping, len(mappings))
	copy(sorted, mappings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}
