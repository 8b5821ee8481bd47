package viewer

import (
	"context"
	"encoding/json"
	"errors"

	"layer-manager/core/layer"
	"layer-manager/core/logger"
	"layer-manager/core/scene/memory"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Catalog persists the active layer set, top first.
type Catalog interface {
	Replace(ctx context.Context, layers []layer.Layer) error
}

// Handler serves the layer session over HTTP.
type Handler struct {
	session *Session
	scene   *memory.Scene
	catalog Catalog
	logger  *zap.Logger
}

// NewHandler creates a handler. scene and catalog may be nil.
func NewHandler(session *Session, scene *memory.Scene, catalog Catalog, logger *zap.Logger) *Handler {
	return &Handler{session: session, scene: scene, catalog: catalog, logger: logger}
}

// RegisterRoutes registers the layer routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/layers")
	group.Get("/", h.HandleList)
	group.Put("/", h.HandleSync)
	group.Get("/:id", h.HandleGet)
	group.Put("/:id", h.HandleUpsert)
	group.Delete("/:id", h.HandleRemove)
	group.Post("/:id/zoom", h.HandleZoom)
	group.Post("/:id/top", h.HandleTop)

	app.Put("/exaggeration", h.HandleExaggeration)
	app.Get("/scene", h.HandleScene)
}

// HandleList returns the active layers, top first.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	layers, err := encodeLayers(h.session.Layers())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"layers":       layers,
		"exaggeration": h.session.Exaggeration(),
	})
}

// HandleGet returns one active layer.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l, ok := h.session.Layer(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "layer not found"})
	}
	data, err := layer.MarshalJSON(l)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

// HandleSync replaces the whole active set with the request body, a JSON array of
// layers listed top first.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	layers, err := layer.UnmarshalJSONList(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.session.Sync(c.Context(), layers)
	if err != nil {
		l.Warn("Layer sync finished with failures", zap.Error(err), zap.Int("failed", len(report.Failed)))
	}
	l.Info("Layer sync completed",
		zap.Int("added", len(report.Added)),
		zap.Int("updated", len(report.Updated)),
		zap.Int("removed", len(report.Removed)))
	h.persist(c.Context(), l)

	status := fiber.StatusOK
	if len(report.Failed) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(report)
}

// HandleUpsert adds or updates one layer.
func (h *Handler) HandleUpsert(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	next, err := layer.UnmarshalJSON(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if next.Common().ID != c.Params("id") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "layer id does not match path"})
	}

	added, err := h.session.Upsert(c.Context(), next)
	if err != nil {
		l.Error("Layer upsert failed", zap.String("layer_id", next.Common().ID), zap.Error(err))
		return h.fail(c, err)
	}
	h.persist(c.Context(), l)

	if added {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "added", "id": next.Common().ID})
	}
	return c.JSON(fiber.Map{"status": "updated", "id": next.Common().ID})
}

// HandleRemove deactivates one layer.
func (h *Handler) HandleRemove(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	id := c.Params("id")

	if err := h.session.Remove(c.Context(), id); err != nil {
		l.Error("Layer removal failed", zap.String("layer_id", id), zap.Error(err))
		return h.fail(c, err)
	}
	h.persist(c.Context(), l)
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleZoom flies the camera to a layer.
func (h *Handler) HandleZoom(c *fiber.Ctx) error {
	if err := h.session.ZoomIntoView(c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleTop raises a layer above every other one.
func (h *Handler) HandleTop(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	if err := h.session.MoveToTop(c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	h.persist(c.Context(), l)
	return c.SendStatus(fiber.StatusNoContent)
}

type exaggerationRequest struct {
	Factor float64 `json:"factor"`
}

// HandleExaggeration sets the vertical exaggeration.
func (h *Handler) HandleExaggeration(c *fiber.Ctx) error {
	var req exaggerationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.session.SetExaggeration(req.Factor); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"exaggeration": h.session.Exaggeration()})
}

// HandleScene returns the state of the headless scene.
func (h *Handler) HandleScene(c *fiber.Ctx) error {
	if h.scene == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no inspectable scene"})
	}
	return c.JSON(h.scene.Snapshot())
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownLayer):
		status = fiber.StatusNotFound
	case errors.Is(err, layer.ErrConfiguration):
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (h *Handler) persist(ctx context.Context, l *zap.Logger) {
	if h.catalog == nil {
		return
	}
	if err := h.catalog.Replace(ctx, h.session.Layers()); err != nil {
		l.Error("Failed to persist layer catalog", zap.Error(err))
	}
}

// encodeLayers renders layers with their type discriminator.
func encodeLayers(layers []layer.Layer) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(layers))
	for _, l := range layers {
		data, err := layer.MarshalJSON(l)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}
