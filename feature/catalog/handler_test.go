package catalog

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"layer-manager/core/database"
	"layer-manager/core/layer"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFeature_DisabledWithoutDatabase(t *testing.T) {
	feature := NewFeature(nil, zap.NewNop())
	assert.Equal(t, "catalog", feature.Name())
	assert.False(t, feature.IsEnabled())
	assert.Nil(t, feature.Store())
}

func TestFeature_Routes(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	feature := NewFeature(db, zap.NewNop())
	require.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	require.NoError(t, feature.Store().Replace(context.Background(), []layer.Layer{wmts("a", 1), wmts("b", 1)}))

	resp, err := app.Test(httptest.NewRequest("GET", "/catalog", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2.0, body["count"])
	assert.Equal(t, []any{"a", "b"}, body["layers"])

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/verify", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
