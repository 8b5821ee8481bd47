package voxel

import (
	"fmt"

	"layer-manager/core/layer"
)

// FlagWords is the number of 32-bit words in a packed flag vector.
const FlagWords = 4

// Flags is a packed 128-bit flag vector, passed to the shader as an ivec4.
type Flags [FlagWords]int32

// Set sets or clears bit k.
func (f *Flags) Set(k int, enabled bool) error {
	if k < 0 || k >= layer.MaxMappingItems {
		return fmt.Errorf("%w: item index %d is outside [0, %d)", layer.ErrConfiguration, k, layer.MaxMappingItems)
	}
	word := uint32(f[k/32])
	if enabled {
		word |= 1 << uint(k%32)
	} else {
		word &^= 1 << uint(k%32)
	}
	f[k/32] = int32(word)
	return nil
}

// Get reports whether bit k is set. Indexes outside the vector are never set.
func (f Flags) Get(k int) bool {
	if k < 0 || k >= layer.MaxMappingItems {
		return false
	}
	return uint32(f[k/32])>>uint(k%32)&1 == 1
}

// PackFlags packs enabled states, item k into bit k.
func PackFlags(enabled []bool) (Flags, error) {
	var f Flags
	if len(enabled) > layer.MaxMappingItems {
		return f, fmt.Errorf("%w: %d items, at most %d can be packed", layer.ErrConfiguration, len(enabled), layer.MaxMappingItems)
	}
	for k, on := range enabled {
		if err := f.Set(k, on); err != nil {
			return f, err
		}
	}
	return f, nil
}

// UnpackFlags returns the first n flags.
func UnpackFlags(f Flags, n int) []bool {
	out := make([]bool, n)
	for k := range out {
		out[k] = f.Get(k)
	}
	return out
}
