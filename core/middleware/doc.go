// Package middleware groups the fiber middleware mounted in front of the
// layer API.
//
// The rayid subpackage tags each request with an id that handlers pass to
// logger.WithRayID, so a sync that touches many layers can be traced as one
// request. The auth subpackage guards the mutating routes with the
// configured API key.
package middleware
