// Package loader mounts optional features on the fiber app.
//
// A feature reports whether its configuration enables it and registers its
// routes when loaded. The start command registers the viewer feature, which
// serves the reconciliation session, and the catalog feature, which is only
// enabled when a database is configured. LoadAll skips disabled features and
// stops at the first one whose Load fails.
package loader
