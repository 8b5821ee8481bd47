package logger

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared by every log line the service writes.
const (
	FieldRayID     = "ray_id"
	FieldLayerID   = "layer_id"
	FieldLayerType = "layer_type"
)

// New builds a zap logger for the configured level and format.
// The debug level selects zap's development preset.
func New(cfg *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	switch cfg.Format {
	case "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	default:
		zc.Encoding = "json"
	}
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.MessageKey = "message"

	return zc.Build()
}

// WithRayID tags l with the ray id the rayid middleware stored on c.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if rid, ok := c.Locals(FieldRayID).(string); ok && rid != "" {
		return l.With(zap.String(FieldRayID, rid))
	}
	return l
}

// WithLayer tags l with the layer a controller or handler is working on.
func WithLayer(l *zap.Logger, id string, layerType string) *zap.Logger {
	return l.With(zap.String(FieldLayerID, id), zap.String(FieldLayerType, layerType))
}
