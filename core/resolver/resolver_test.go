package resolver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"layer-manager/core/layer"
	"layer-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIonServer(t *testing.T, assetType string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/v1/assets/42/endpoint" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "Bearer default-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"type":"`+assetType+`","url":"https://assets.example/42/tileset.json","accessToken":"short-lived"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve_Ion(t *testing.T) {
	var calls int32
	srv := newIonServer(t, "3DTILES", &calls)

	r := New(Config{IonEndpoint: srv.URL, IonToken: "default-token", CacheTTLSeconds: 60}, nil, zap.NewNop())

	res, err := r.Resolve(context.Background(), layer.IonAsset(42, ""))
	require.NoError(t, err)
	assert.Equal(t, "https://assets.example/42/tileset.json", res.URL)
	assert.Equal(t, "3DTILES", res.AssetType)
	assert.Equal(t, "Bearer short-lived", res.Headers["Authorization"])

	// Cached: no second request.
	_, err = r.Resolve(context.Background(), layer.IonAsset(42, ""))
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	r.Invalidate(layer.IonAsset(42, ""))
	_, err = r.Resolve(context.Background(), layer.IonAsset(42, ""))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResolve_IonUnsupportedType(t *testing.T) {
	var calls int32
	srv := newIonServer(t, "GLTF", &calls)

	r := New(Config{IonEndpoint: srv.URL, IonToken: "default-token"}, nil, zap.NewNop())
	_, err := r.Resolve(context.Background(), layer.IonAsset(42, ""))
	assert.True(t, errors.Is(err, layer.ErrConfiguration))
}

func TestResolve_IonHTTPFailure(t *testing.T) {
	var calls int32
	srv := newIonServer(t, "3DTILES", &calls)

	r := New(Config{IonEndpoint: srv.URL, IonToken: "default-token"}, nil, zap.NewNop())
	_, err := r.Resolve(context.Background(), layer.IonAsset(7, ""))
	require.Error(t, err)
	assert.False(t, errors.Is(err, layer.ErrConfiguration))
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestResolve_Storage(t *testing.T) {
	presigned, _ := url.Parse("https://s3.example/layers/buildings/tileset.json?X-Amz-Signature=abc")

	client := new(mocks.Client)
	client.On("PresignedGetObject", mock.Anything, "layers", "buildings/tileset.json", 10*time.Minute, url.Values(nil)).
		Return(presigned, nil).Once()

	r := New(Config{PresignExpirySeconds: 600, CacheTTLSeconds: 60}, client, zap.NewNop())

	res, err := r.Resolve(context.Background(), layer.Object("layers", "buildings/tileset.json"))
	require.NoError(t, err)
	assert.Equal(t, presigned.String(), res.URL)
	assert.Equal(t, "layers", res.Bucket)
	assert.Equal(t, "buildings/tileset.json", res.Key)

	_, err = r.Resolve(context.Background(), layer.Object("layers", "buildings/tileset.json"))
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestResolve_StorageWithoutClient(t *testing.T) {
	r := New(Config{}, nil, zap.NewNop())
	_, err := r.Resolve(context.Background(), layer.Object("layers", "x.json"))
	assert.Error(t, err)
}

func TestResolve_OGC(t *testing.T) {
	r := New(Config{OGCBaseURL: "https://ogc.example/api/"}, nil, zap.NewNop())

	t.Run("DefaultsTo3DTiles", func(t *testing.T) {
		res, err := r.Resolve(context.Background(), layer.OGC(12, 0, nil))
		require.NoError(t, err)
		assert.Equal(t, "https://ogc.example/api/collections/12/items?f=3dtiles", res.URL)
	})

	t.Run("WithStyle", func(t *testing.T) {
		res, err := r.Resolve(context.Background(), layer.OGC(12, 3, nil))
		require.NoError(t, err)
		assert.Equal(t, "https://ogc.example/api/collections/12/items?f=3dtiles&style=3", res.URL)
	})

	t.Run("DisplaySource", func(t *testing.T) {
		display := layer.URL("https://cdn.example/12/tileset.json")
		res, err := r.Resolve(context.Background(), layer.OGC(12, 0, &display))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/12/tileset.json", res.URL)
	})
}

func TestResolve_InvalidSource(t *testing.T) {
	r := New(Config{}, nil, zap.NewNop())
	_, err := r.Resolve(context.Background(), layer.Source{Kind: "ftp"})
	assert.True(t, errors.Is(err, layer.ErrConfiguration))
}

func TestFetch(t *testing.T) {
	t.Run("HTTPWithHeaders", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, "payload")
		}))
		defer srv.Close()

		r := New(Config{}, nil, zap.NewNop())
		body, err := r.Fetch(context.Background(), Resource{URL: srv.URL, Headers: map[string]string{"Authorization": "Bearer t"}})
		require.NoError(t, err)
		defer body.Close()
		data, _ := io.ReadAll(body)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("Storage", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "layers", "quakes.csv", minio.GetObjectOptions{}).
			Return(io.NopCloser(strings.NewReader("a,b")), nil)

		r := New(Config{}, client, zap.NewNop())
		body, err := r.Fetch(context.Background(), Resource{URL: "https://ignored", Bucket: "layers", Key: "quakes.csv"})
		require.NoError(t, err)
		data, _ := io.ReadAll(body)
		assert.Equal(t, "a,b", string(data))
	})

	t.Run("HTTPError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		r := New(Config{}, nil, zap.NewNop())
		_, err := r.Fetch(context.Background(), Resource{URL: srv.URL})
		assert.Error(t, err)
	})
}

func TestCache_Expiry(t *testing.T) {
	c := newCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	var calls int
	resolve := func(context.Context) (Resource, error) {
		calls++
		return Resource{URL: "u"}, nil
	}

	_, _ = c.getOrResolve(context.Background(), "k", resolve)
	_, _ = c.getOrResolve(context.Background(), "k", resolve)
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Minute)
	_, _ = c.getOrResolve(context.Background(), "k", resolve)
	assert.Equal(t, 2, calls)
}
