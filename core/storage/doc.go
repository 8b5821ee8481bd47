// Package storage reads layer data from S3 compatible object storage through
// minio-go.
//
// Tilesets and rasters are never proxied: the resolver presigns a URL and the
// renderer downloads from the bucket itself. Only small payloads that the
// service must parse, such as GeoJSON and earthquake CSV feeds, are streamed
// with GetObject. The mocks subpackage provides a testify mock of Client.
package storage
