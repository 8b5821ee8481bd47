package catalog

import (
	"errors"

	"layer-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the stored catalog over HTTP.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/", h.HandleList)
	group.Get("/verify", h.HandleVerify)
}

// HandleList returns the stored layers, top first.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	layers, err := h.store.List(c.Context())
	if err != nil {
		l.Error("Catalog listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	ids := make([]string, 0, len(layers))
	for _, layer := range layers {
		ids = append(ids, layer.Common().ID)
	}
	return c.JSON(fiber.Map{"count": len(layers), "layers": ids})
}

// HandleVerify checks the catalog table schema.
func (h *Handler) HandleVerify(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	missing, err := h.store.Verify()
	if errors.Is(err, ErrSchemaMismatch) {
		l.Warn("Catalog schema mismatch", zap.Strings("missing", missing))
		return c.JSON(fiber.Map{"status": "mismatch", "missing": missing})
	}
	if err != nil {
		l.Error("Catalog verification failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok", "missing": []string{}})
}
