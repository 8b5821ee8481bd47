package voxel

import (
	"errors"
	"strings"
	"testing"

	"layer-manager/core/layer"
	"layer-manager/core/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(n int, enabled func(k int) bool) *layer.ItemMapping {
	m := &layer.ItemMapping{Items: make([]layer.VoxelItem, n)}
	for k := range m.Items {
		m.Items[k] = layer.VoxelItem{Value: float64(k + 1), Color: "#336699", IsEnabled: enabled(k)}
	}
	return m
}

func geology() layer.VoxelLayer {
	return layer.VoxelLayer{
		Base:   layer.Base{ID: "geology", Opacity: 1, IsVisible: true},
		Source: layer.URL("https://voxels/geology/tileset.json"),
		Mappings: []layer.VoxelMapping{
			{Key: "lithology", Item: items(40, func(int) bool { return true })},
			{Key: "conductivity", Range: &layer.RangeMapping{
				Min: 0, Max: 400, EnabledRange: [2]float64{0, 400},
				Colors: []string{"#000000", "#ff0000", "#ffff00", "#ffffff"},
			}},
		},
		FilterOperator: layer.FilterAnd,
		DisplayKey:     "lithology",
		NoData:         -99999,
	}
}

func TestGenerate_ShapeDeterminism(t *testing.T) {
	a := geology()

	b := geology()
	b.Mappings = []layer.VoxelMapping{
		{Key: "conductivity", Range: &layer.RangeMapping{
			Min: 0, Max: 400, EnabledRange: [2]float64{120, 180}, IsUndefinedAlwaysEnabled: true,
			Colors: []string{"#000000", "#ff0000", "#ffff00", "#ffffff"},
		}},
		{Key: "lithology", Item: items(40, func(k int) bool { return k%3 == 0 })},
	}
	b.FilterOperator = layer.FilterXor
	b.DisplayKey = "conductivity"
	b.Opacity = 0.4

	sa, err := Generate(a)
	require.NoError(t, err)
	sb, err := Generate(b)
	require.NoError(t, err)

	assert.Equal(t, sa.Source, sb.Source)
	assert.Equal(t, Shape(a.Mappings), Shape(b.Mappings))
	assert.NotEqual(t, sa.Uniforms["u_mapping1_flags"], sb.Uniforms["u_mapping1_flags"])
}

func TestGenerate_ShapeChangesSource(t *testing.T) {
	a := geology()
	b := geology()
	b.Mappings[0].Item = items(41, func(int) bool { return true })

	sa, err := Generate(a)
	require.NoError(t, err)
	sb, err := Generate(b)
	require.NoError(t, err)
	assert.NotEqual(t, sa.Source, sb.Source)
}

func TestGenerate_SortedIndexSpace(t *testing.T) {
	s, err := Generate(geology())
	require.NoError(t, err)

	assert.Equal(t, []string{"conductivity", "lithology"}, s.Keys)
	assert.Contains(t, s.Source, "uniform vec2 u_mapping0_bounds;")
	assert.Contains(t, s.Source, "uniform vec4 u_mapping0_ramp[4];")
	assert.Contains(t, s.Source, "uniform ivec4 u_mapping1_flags;")
	assert.Contains(t, s.Source, "uniform float u_mapping1_values[40];")
	assert.Contains(t, s.Source, "float value0 = fsInput.metadata.conductivity;")
	assert.Contains(t, s.Source, "float value1 = fsInput.metadata.lithology;")
	assert.Contains(t, s.Source, "vec4 getColorForValue0(float value)")
	assert.Contains(t, s.Source, "bool isMatching1(float value)")
	assert.Contains(t, s.Source, "((u_mapping1_flags[word] >> bit) & 1) == 1")
	assert.Contains(t, s.Source, "float scaled = t * 3.0;")
	assert.Contains(t, s.Source, "const float EPSILON = 0.000001;")

	assert.Equal(t, scene.Uniform{Type: scene.UniformInt, Value: 1}, s.Uniforms["u_displayMapping"])
	assert.Equal(t, scene.Uniform{Type: scene.UniformInt, Value: 0}, s.Uniforms["u_filterOperator"])
	assert.Equal(t, [2]float64{0, 400}, s.Uniforms["u_mapping0_bounds"].Value)
	assert.Equal(t, Flags{-1, 255, 0, 0}, s.Uniforms["u_mapping1_flags"].Value)
}

func TestGenerate_FilterChain(t *testing.T) {
	s, err := Generate(geology())
	require.NoError(t, err)

	assert.Contains(t, s.Source, "if (u_filterOperator == 0) {\n        visible = matching0 && matching1;")
	assert.Contains(t, s.Source, "} else if (u_filterOperator == 1) {\n        visible = matching0 || matching1;")
	assert.Contains(t, s.Source, "visible = int(matching0) + int(matching1) == 1;")
}

func TestGenerate_NoMappings(t *testing.T) {
	l := geology()
	l.Mappings = nil
	l.DisplayKey = ""

	s, err := Generate(l)
	require.NoError(t, err)
	assert.Contains(t, s.Source, "bool visible = true;")
	assert.NotContains(t, s.Source, "u_mapping")
	assert.Equal(t, -1, s.Uniforms["u_displayMapping"].Value)
}

func TestGenerate_ConfigurationErrors(t *testing.T) {
	dup := geology()
	dup.Mappings = append(dup.Mappings, layer.VoxelMapping{Key: "lithology", Item: items(2, func(int) bool { return true })})
	_, err := Generate(dup)
	assert.True(t, errors.Is(err, layer.ErrConfiguration))

	big := geology()
	big.Mappings[0].Item = items(129, func(int) bool { return true })
	_, err = Generate(big)
	assert.True(t, errors.Is(err, layer.ErrConfiguration))
}

func TestGenerate_FloatLiteralsHaveDecimalPoint(t *testing.T) {
	l := geology()
	l.Mappings[1].Range.Colors = []string{"#000000"}

	s, err := Generate(l)
	require.NoError(t, err)
	assert.Contains(t, s.Source, "float scaled = t * 0.0;")
	for _, line := range strings.Split(s.Source, "\n") {
		assert.NotContains(t, line, "t * 0;")
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3.0"},
		{0, "0.0"},
		{-2.5, "-2.5"},
		{0.1234567, "0.123457"},
		{0.000001, "0.000001"},
		{0.0000001, "0.0"},
		{-0.0000001, "0.0"},
		{1e6, "1000000.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in), "formatFloat(%v)", tt.in)
	}
}

func TestProgramCache_SharesIdenticalSources(t *testing.T) {
	cache := NewProgramCache()

	a := cache.Get("void main() {}")
	b := cache.Get("void main() {}")
	c := cache.Get("void main() { discard; }")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, int64(2), cache.Compiles())
	assert.Equal(t, 2, cache.Len())
}
