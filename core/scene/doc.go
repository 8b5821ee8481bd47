// Package scene describes the narrow capability surface the layer engine needs from
// the 3D renderer, and the scene resources controllers own.
//
// The renderer itself (camera, picking, terrain, tiling) is an external collaborator.
// The engine only adds, removes and reorders resources in three collections
// (primitives, imagery layers, data sources), moves the camera and requests renders.
//
// # Resources
//
//   - ImageryLayer: a tiled imagery provider with alpha and picking state
//   - Tileset: a 3D tileset primitive with a custom shader and load progress events
//   - VoxelPrimitive: a voxel volume primitive with a generated custom shader
//   - DataSource: a set of vector entities (GeoJSON, KML, CSV feeds)
//
// # Loader
//
// Loader builds renderer resources from resolved resources. Loads are asynchronous
// in the renderer; here they block until the resource is ready or ctx is done.
//
// # Picking Lock
//
// PickService is a scene-wide counter. While any holder has it acquired, picking
// is disabled so it cannot race against partially loaded tilesets.
package scene
