// Package resolver maps layer sources onto fetchable resources.
//
// A layer.Source only says where data lives. Before a tileset, voxel volume or
// GeoJSON document can be loaded, the source has to become a Resource: a URL plus
// the request headers the renderer must send.
//
// # Source Kinds
//
//   - ion: the Cesium ion endpoint API is asked for the asset URL and a short-lived
//     access token. Asset types the viewer cannot display are configuration errors.
//   - url: used as is.
//   - storage: a presigned GET URL is generated with the object-storage client, and
//     the bucket/key pair is kept so payloads can be streamed with GetObject.
//   - ogc: the display source is resolved when set; otherwise the collection is
//     requested in the 3D tiles download format from the configured OGC API base.
//
// # Caching
//
// Ion and storage resolutions are cached for the configured TTL. Concurrent
// resolutions of the same source are collapsed with singleflight. Resolution has no
// side effects beyond network I/O and failures are never retried here.
//
// # Usage
//
//	r := resolver.New(cfg.Resolver, storageClient, logger)
//	res, err := r.Resolve(ctx, layer.IonAsset(42, ""))
//	body, err := r.Fetch(ctx, res)
package resolver
