package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"layer-manager/core/layer"
	"layer-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Resource is a fetchable handle usable by the renderer's loaders.
type Resource struct {
	// URL is the address the renderer requests.
	URL string `json:"url"`
	// Headers must be sent with every request for URL (e.g. ion bearer tokens).
	Headers map[string]string `json:"headers,omitempty"`
	// AssetType is the ion asset type, empty for other sources.
	AssetType string `json:"assetType,omitempty"`
	// Bucket and Key are set when the resource lives in object storage.
	Bucket string `json:"bucket,omitempty"`
	Key    string `json:"key,omitempty"`
}

// Resolver turns sources into resources and streams resource payloads.
type Resolver interface {
	Resolve(ctx context.Context, src layer.Source) (Resource, error)
	Fetch(ctx context.Context, res Resource) (io.ReadCloser, error)
}

// Client is the default Resolver.
type Client struct {
	cfg     Config
	http    *http.Client
	storage storage.Client
	cache   *cache
	logger  *zap.Logger
}

// New creates a resolver. storageClient may be nil when no storage sources are used.
func New(cfg Config, storageClient storage.Client, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: time.Duration(timeout) * time.Second},
		storage: storageClient,
		cache:   newCache(time.Duration(cfg.CacheTTLSeconds) * time.Second),
		logger:  logger,
	}
}

// supportedIonTypes are the ion asset types the engine has a loader for.
var supportedIonTypes = map[string]struct{}{
	"3DTILES": {},
	"IMAGERY": {},
	"GEOJSON": {},
	"KML":     {},
	"CZML":    {},
	"VOXEL":   {},
}

// Resolve maps a source onto a resource.
func (c *Client) Resolve(ctx context.Context, src layer.Source) (Resource, error) {
	if err := src.Validate(); err != nil {
		return Resource{}, err
	}

	switch src.Kind {
	case layer.SourceURL:
		return Resource{URL: src.URL}, nil
	case layer.SourceOGC:
		return c.resolveOGC(ctx, src)
	case layer.SourceIon:
		return c.cache.getOrResolve(ctx, src.CacheKey(), func(ctx context.Context) (Resource, error) {
			return c.resolveIon(ctx, src)
		})
	case layer.SourceStorage:
		return c.cache.getOrResolve(ctx, src.CacheKey(), func(ctx context.Context) (Resource, error) {
			return c.resolveStorage(ctx, src)
		})
	}
	return Resource{}, fmt.Errorf("%w: unknown source kind %q", layer.ErrConfiguration, src.Kind)
}

// Invalidate drops any cached resolution of src.
func (c *Client) Invalidate(src layer.Source) {
	c.cache.invalidate(src.CacheKey())
}

type ionEndpoint struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	AccessToken string `json:"accessToken"`
}

func (c *Client) resolveIon(ctx context.Context, src layer.Source) (Resource, error) {
	token := src.AccessToken
	if token == "" {
		token = c.cfg.IonToken
	}

	endpoint := strings.TrimSuffix(c.cfg.IonEndpoint, "/") + "/v1/assets/" + strconv.Itoa(src.AssetID) + "/endpoint"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Resource{}, fmt.Errorf("failed to build ion request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Resource{}, fmt.Errorf("failed to resolve ion asset %d: %w", src.AssetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Resource{}, fmt.Errorf("failed to resolve ion asset %d: unexpected status %d", src.AssetID, resp.StatusCode)
	}

	var ep ionEndpoint
	if err := json.NewDecoder(resp.Body).Decode(&ep); err != nil {
		return Resource{}, fmt.Errorf("failed to decode ion endpoint for asset %d: %w", src.AssetID, err)
	}
	if _, ok := supportedIonTypes[ep.Type]; !ok {
		return Resource{}, fmt.Errorf("%w: ion asset %d has unsupported type %q", layer.ErrConfiguration, src.AssetID, ep.Type)
	}

	res := Resource{URL: ep.URL, AssetType: ep.Type}
	if ep.AccessToken != "" {
		res.Headers = map[string]string{"Authorization": "Bearer " + ep.AccessToken}
	}
	c.logger.Debug("Resolved ion asset",
		zap.Int("asset_id", src.AssetID),
		zap.String("asset_type", ep.Type),
	)
	return res, nil
}

func (c *Client) resolveStorage(ctx context.Context, src layer.Source) (Resource, error) {
	if c.storage == nil {
		return Resource{}, fmt.Errorf("cannot resolve %s: no storage client configured", src)
	}

	expiry := time.Duration(c.cfg.PresignExpirySeconds) * time.Second
	if expiry <= 0 {
		expiry = time.Hour
	}
	u, err := c.storage.PresignedGetObject(ctx, src.Bucket, src.Key, expiry, nil)
	if err != nil {
		return Resource{}, fmt.Errorf("failed to presign %s: %w", src, err)
	}
	return Resource{URL: u.String(), Bucket: src.Bucket, Key: src.Key}, nil
}

func (c *Client) resolveOGC(ctx context.Context, src layer.Source) (Resource, error) {
	if src.Display != nil {
		return c.Resolve(ctx, *src.Display)
	}

	query := url.Values{}
	query.Set("f", "3dtiles")
	if src.StyleID != 0 {
		query.Set("style", strconv.Itoa(src.StyleID))
	}
	u := strings.TrimSuffix(c.cfg.OGCBaseURL, "/") + "/collections/" + strconv.Itoa(src.CollectionID) + "/items?" + query.Encode()
	return Resource{URL: u}, nil
}

// Fetch streams the payload of a resource. Storage resources are read through the
// storage client; everything else is fetched over HTTP with the resource headers.
func (c *Client) Fetch(ctx context.Context, res Resource) (io.ReadCloser, error) {
	if res.Bucket != "" && c.storage != nil {
		obj, err := c.storage.GetObject(ctx, res.Bucket, res.Key, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to get object %s/%s: %w", res.Bucket, res.Key, err)
		}
		return obj, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", res.URL, err)
	}
	for k, v := range res.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", res.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", res.URL, resp.StatusCode)
	}
	return resp.Body, nil
}
