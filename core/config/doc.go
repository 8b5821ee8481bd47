// Package config loads the layer manager configuration with viper.
//
// Values come from the environment, after an optional .env file in the
// working directory has been applied. Every key is registered with the
// default from its "default" struct tag, so any key can be overridden as
// SECTION_KEY, for example SERVER_PORT or RESOLVER_ION_TOKEN.
//
// Sections map to the packages that consume them:
//
//	server    port, API key, request body limit
//	storage   S3/MinIO endpoint, credentials, bucket probed at startup
//	log       level and json/console format
//	database  catalog connection, sqlite or MySQL
//	resolver  Cesium ion and OGC endpoints, resolution cache
//	viewer    startup layer file, exaggeration, catalog persistence
//
// LoadConfig fails when a value has no usable fallback, such as a
// non-positive exaggeration.
package config
