package storage

// Config points the resolver at the bucket holding tilesets, rasters and feeds.
type Config struct {
	// Endpoint is host:port, optionally prefixed with a scheme.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket is probed at startup; layer sources name their own bucket.
	Bucket string `mapstructure:"bucket" default:"layers"`
	// Region is required for presigning without a network round trip.
	Region         string `mapstructure:"region" default:""`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
}
