package resolver

// Config holds configuration for source resolution.
type Config struct {
	// IonEndpoint is the base URL of the Cesium ion REST API.
	IonEndpoint string `mapstructure:"ion_endpoint" default:"https://api.cesium.com"`
	// IonToken is the default ion access token used when a source carries none.
	IonToken string `mapstructure:"ion_token" default:""`
	// OGCBaseURL is the base URL of the OGC API serving layer collections.
	OGCBaseURL string `mapstructure:"ogc_base_url" default:"http://localhost:8480/ogc"`
	// CacheTTLSeconds is how long ion and storage resolutions are reused. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"300"`
	// TimeoutSeconds bounds each HTTP request made while resolving or fetching.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// PresignExpirySeconds is the lifetime of presigned storage URLs.
	PresignExpirySeconds int `mapstructure:"presign_expiry_seconds" default:"3600"`
}
