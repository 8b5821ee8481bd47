// Package tileset reconciles 3D tileset layers.
//
// The tileset is drawn with a small custom shader that scales alpha by the layer
// opacity. Opaque and translucent tilesets take different render passes, so crossing
// full opacity swaps the shader; any other opacity change only sets the u_opacity
// uniform. While the tileset streams tiles the strategy holds the scene picking lock.
package tileset
