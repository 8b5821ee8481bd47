// Package voxel reconciles voxel layers and generates their shaders.
//
// # Shader generation
//
// Mapping keys are sorted; the position of a key is the index i used in uniform
// names (u_mapping<i>_...) and generated function names. Each mapping gets a
// getColorForValue<i> and an isMatching<i> function. The per-mapping matches are
// combined by the operator selected with u_filterOperator.
//
// The shader source depends only on the shape of the mappings: keys, kinds, item
// counts and ramp lengths. Which items are enabled, which range is active, the filter
// operator and the displayed mapping all live in uniforms, so layers with the same
// shape share one program and those changes never recompile.
//
// # Flag packing
//
// The enabled state of the items of an item mapping is packed into an ivec4: item k
// is bit k%32 of word k/32. An item mapping holds at most 128 items.
//
// # Removal
//
// Destroying a voxel primitive crashes the renderer in some paths. Removal therefore
// hides the primitive and detaches it from the scene without destroying it.
package voxel
