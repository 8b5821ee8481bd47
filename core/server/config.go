package server

import (
	"fmt"
	"strconv"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitKB bounds request bodies, which carry layer snapshots.
	BodyLimitKB int `mapstructure:"body_limit_kb" default:"4096"`
}

// Validate checks that the port is a usable TCP port.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port %q", c.Port)
	}
	if c.BodyLimitKB < 0 {
		return fmt.Errorf("invalid body limit %d", c.BodyLimitKB)
	}
	return nil
}

// BodyLimit returns the body limit in bytes, falling back to 4 MiB.
func (c Config) BodyLimit() int {
	if c.BodyLimitKB <= 0 {
		return 4096 * 1024
	}
	return c.BodyLimitKB * 1024
}
