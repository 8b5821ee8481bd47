// Package logger builds the zap logger shared by the HTTP features, the
// reconciliation session and the CLI commands.
//
// The level selects the preset: debug uses zap's development config, every
// other level the production one. Format switches between json lines and a
// colored console encoder, which the CLI uses for its own error output.
//
// Two helpers attach the fields every layer log line is filtered on:
//
//	l := logger.WithRayID(base, c)               // ray_id from the rayid middleware
//	l = logger.WithLayer(l, "geology", "voxel")  // layer_id, layer_type
//	l.Warn("layer add failed", zap.Error(err))
package logger
