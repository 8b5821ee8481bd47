// Package memory is a headless scene: ordered in-memory collections that record every
// mutation, plus a loader that builds resources without a renderer.
//
// It backs the CLI dry runs and the HTTP viewer feature, and is the scene used by
// the controller tests to observe scene mutations and render requests.
package memory
