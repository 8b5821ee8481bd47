package viewer

import (
	"layer-manager/core/scene/memory"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the viewer feature serving session. scene and catalog may be nil.
func NewFeature(session *Session, scene *memory.Scene, catalog Catalog, logger *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(session, scene, catalog, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "viewer"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
