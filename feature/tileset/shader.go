package tileset

import (
	"crypto/sha256"
	"encoding/hex"

	"layer-manager/core/scene"
)

const shaderSource = `uniform float u_opacity;

void fragmentMain(FragmentInput fsInput, inout czm_modelMaterial material) {
    material.alpha = material.alpha * u_opacity;
}
`

var program = &scene.ShaderProgram{ID: programID(shaderSource), Source: shaderSource}

func programID(src string) string {
	sum := sha256.Sum256([]byte(src))
	return "tileset-" + hex.EncodeToString(sum[:8])
}

// newShader returns the shader for the given opacity. Fully opaque tilesets use the
// opaque pass.
func newShader(opacity float64) *scene.CustomShader {
	translucency := scene.Translucent
	if opacity >= 1 {
		translucency = scene.Opaque
	}
	return &scene.CustomShader{
		Program:      program,
		Translucency: translucency,
		Uniforms: scene.Uniforms{
			"u_opacity": {Type: scene.UniformFloat, Value: opacity},
		},
	}
}
