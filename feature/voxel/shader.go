package voxel

import (
	"fmt"
	"strconv"
	"strings"

	"layer-manager/core/layer"
	"layer-manager/core/scene"
)

// Shader is the generated shader of a voxel layer.
type Shader struct {
	// Source is the GLSL source. It is identical for layers with the same mapping shape.
	Source string
	// Uniforms holds the initial uniform values.
	Uniforms scene.Uniforms
	// Keys are the sorted mapping keys. Key i is mapping i of the shader.
	Keys []string
}

// Generate builds the shader and uniforms of l.
func Generate(l layer.VoxelLayer) (*Shader, error) {
	if err := layer.Validate(l); err != nil {
		return nil, err
	}
	mappings := layer.SortedMappings(l.Mappings)
	keys := make([]string, len(mappings))
	for i, m := range mappings {
		keys[i] = m.Key
	}
	uniforms, err := buildUniforms(l, mappings, keys)
	if err != nil {
		return nil, err
	}
	return &Shader{Source: GenerateSource(mappings), Uniforms: uniforms, Keys: keys}, nil
}

// Shape describes what the shader source depends on. Two layers with the same shape
// generate the same source.
func Shape(mappings []layer.VoxelMapping) string {
	var b strings.Builder
	for i, m := range layer.SortedMappings(mappings) {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(m.Key)
		b.WriteByte(':')
		b.WriteString(string(m.Kind()))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(length(m)))
	}
	return b.String()
}

// length is the item count of an item mapping or the ramp length of a range mapping.
func length(m layer.VoxelMapping) int {
	if m.Item != nil {
		return len(m.Item.Items)
	}
	if m.Range != nil {
		return len(m.Range.Colors)
	}
	return 0
}

func mappingUniform(i int, name string) string {
	return "u_mapping" + strconv.Itoa(i) + "_" + name
}

// GenerateSource returns the GLSL of sorted mappings.
func GenerateSource(sorted []layer.VoxelMapping) string {
	var b strings.Builder

	b.WriteString("uniform int u_filterOperator;\n")
	b.WriteString("uniform int u_displayMapping;\n")
	b.WriteString("uniform float u_opacity;\n")
	b.WriteString("uniform float u_noData;\n")
	for i, m := range sorted {
		n := length(m)
		if m.Kind() == layer.MappingItem {
			fmt.Fprintf(&b, "uniform ivec4 %s;\n", mappingUniform(i, "flags"))
			fmt.Fprintf(&b, "uniform float %s[%d];\n", mappingUniform(i, "values"), n)
			fmt.Fprintf(&b, "uniform vec4 %s[%d];\n", mappingUniform(i, "colors"), n)
			continue
		}
		fmt.Fprintf(&b, "uniform vec2 %s;\n", mappingUniform(i, "bounds"))
		fmt.Fprintf(&b, "uniform vec2 %s;\n", mappingUniform(i, "range"))
		fmt.Fprintf(&b, "uniform bool %s;\n", mappingUniform(i, "includeUndefined"))
		fmt.Fprintf(&b, "uniform vec4 %s[%d];\n", mappingUniform(i, "ramp"), n)
	}
	b.WriteString("\nconst float EPSILON = " + formatFloat(0.000001) + ";\n")

	for i, m := range sorted {
		b.WriteString("\n")
		if m.Kind() == layer.MappingItem {
			writeItemFunctions(&b, i, length(m))
		} else {
			writeRangeFunctions(&b, i, length(m))
		}
	}

	b.WriteString("\nvoid fragmentMain(FragmentInput fsInput, inout czm_modelMaterial material) {\n")
	for i, m := range sorted {
		fmt.Fprintf(&b, "    float value%d = fsInput.metadata.%s;\n", i, m.Key)
	}
	for i := range sorted {
		fmt.Fprintf(&b, "    bool matching%d = isMatching%d(value%d);\n", i, i, i)
	}
	writeFilter(&b, len(sorted))

	b.WriteString("    vec4 color = vec4(1.0);\n")
	for i := range sorted {
		keyword := "if"
		if i > 0 {
			keyword = "} else if"
		}
		fmt.Fprintf(&b, "    %s (u_displayMapping == %d) {\n", keyword, i)
		fmt.Fprintf(&b, "        color = getColorForValue%d(value%d);\n", i, i)
	}
	if len(sorted) > 0 {
		b.WriteString("    }\n")
	}
	b.WriteString("    if (!visible || color.a == 0.0) {\n")
	b.WriteString("        discard;\n")
	b.WriteString("    }\n")
	b.WriteString("    material.diffuse = color.rgb;\n")
	b.WriteString("    material.alpha = color.a * u_opacity;\n")
	b.WriteString("}\n")
	return b.String()
}

func writeItemFunctions(b *strings.Builder, i, n int) {
	values, colors, flags := mappingUniform(i, "values"), mappingUniform(i, "colors"), mappingUniform(i, "flags")

	fmt.Fprintf(b, "int findItem%d(float value) {\n", i)
	b.WriteString("    int best = -1;\n")
	b.WriteString("    float bestDistance = " + formatFloat(0.5) + ";\n")
	fmt.Fprintf(b, "    for (int k = 0; k < %d; k++) {\n", n)
	fmt.Fprintf(b, "        float distance = abs(%s[k] - value);\n", values)
	b.WriteString("        if (distance < bestDistance) {\n")
	b.WriteString("            best = k;\n")
	b.WriteString("            bestDistance = distance;\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("    return best;\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(b, "vec4 getColorForValue%d(float value) {\n", i)
	fmt.Fprintf(b, "    int k = findItem%d(value);\n", i)
	b.WriteString("    if (k < 0) {\n")
	b.WriteString("        return vec4(0.0);\n")
	b.WriteString("    }\n")
	fmt.Fprintf(b, "    return %s[k];\n", colors)
	b.WriteString("}\n\n")

	fmt.Fprintf(b, "bool isMatching%d(float value) {\n", i)
	fmt.Fprintf(b, "    int k = findItem%d(value);\n", i)
	b.WriteString("    if (k < 0) {\n")
	b.WriteString("        return false;\n")
	b.WriteString("    }\n")
	b.WriteString("    int word = k / 32;\n")
	b.WriteString("    int bit = k - word * 32;\n")
	fmt.Fprintf(b, "    return ((%s[word] >> bit) & 1) == 1;\n", flags)
	b.WriteString("}\n")
}

func writeRangeFunctions(b *strings.Builder, i, n int) {
	bounds, rng, undef, ramp := mappingUniform(i, "bounds"), mappingUniform(i, "range"),
		mappingUniform(i, "includeUndefined"), mappingUniform(i, "ramp")
	last := n - 1

	fmt.Fprintf(b, "vec4 getColorForValue%d(float value) {\n", i)
	fmt.Fprintf(b, "    float span = max(%s.y - %s.x, EPSILON);\n", bounds, bounds)
	fmt.Fprintf(b, "    float t = clamp((value - %s.x) / span, 0.0, 1.0);\n", bounds)
	fmt.Fprintf(b, "    float scaled = t * %s;\n", formatFloat(float64(last)))
	b.WriteString("    int lower = int(floor(scaled));\n")
	fmt.Fprintf(b, "    int upper = min(lower + 1, %d);\n", last)
	fmt.Fprintf(b, "    return mix(%s[lower], %s[upper], scaled - float(lower));\n", ramp, ramp)
	b.WriteString("}\n\n")

	fmt.Fprintf(b, "bool isMatching%d(float value) {\n", i)
	b.WriteString("    if (abs(value - u_noData) < EPSILON) {\n")
	fmt.Fprintf(b, "        return %s;\n", undef)
	b.WriteString("    }\n")
	fmt.Fprintf(b, "    return value >= %s.x && value <= %s.y;\n", rng, rng)
	b.WriteString("}\n")
}

// writeFilter combines the matches into "visible". The operator is a uniform so
// switching it is a patch.
func writeFilter(b *strings.Builder, n int) {
	if n == 0 {
		b.WriteString("    bool visible = true;\n")
		return
	}
	all := make([]string, n)
	ints := make([]string, n)
	for i := range all {
		all[i] = "matching" + strconv.Itoa(i)
		ints[i] = "int(matching" + strconv.Itoa(i) + ")"
	}
	b.WriteString("    bool visible;\n")
	b.WriteString("    if (u_filterOperator == 0) {\n")
	fmt.Fprintf(b, "        visible = %s;\n", strings.Join(all, " && "))
	b.WriteString("    } else if (u_filterOperator == 1) {\n")
	fmt.Fprintf(b, "        visible = %s;\n", strings.Join(all, " || "))
	b.WriteString("    } else {\n")
	fmt.Fprintf(b, "        visible = %s == 1;\n", strings.Join(ints, " + "))
	b.WriteString("    }\n")
}

// formatFloat renders v as a GLSL float literal: always a decimal point, at most six
// decimals.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if s == "-0.0" {
		s = "0.0"
	}
	return s
}
