// Package viewer keeps the set of active layers in sync with a scene.
//
// A Session holds one reconcile.Controller per active layer, built by
// NewController from the strategy registered for the layer type. Sync reconciles
// the active set against a full layer list: layers missing from the list are
// removed, new ones are added, known ones are updated in place, and a layer whose
// type changed gets a fresh controller. The list order is the stacking order, top
// first, and the scene is only restacked when that order changes.
//
// A layer that fails to build is rolled back and reported; it never prevents the
// remaining layers from being applied.
//
// The Handler exposes the session over HTTP:
//
//	GET    /layers           active layers, top first
//	PUT    /layers           replace the active set
//	GET    /layers/:id       one active layer
//	PUT    /layers/:id       add or update one layer
//	DELETE /layers/:id       remove one layer
//	POST   /layers/:id/zoom  fly the camera to a layer
//	POST   /layers/:id/top   raise a layer
//	PUT    /exaggeration     set the vertical exaggeration
//	GET    /scene            inspect the headless scene
package viewer
