// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure and its validation: the HTTP port, the API key protecting
// every route, and the request body limit.
//
// # Usage
//
// This package is embedded by core/config and read by the start command.
package server
