package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"layer-manager/core/config"
	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/resolver"
	"layer-manager/core/scene/memory"
	"layer-manager/core/storage"

	"go.uber.org/zap"
)

// headless is a scene environment without a renderer.
type headless struct {
	env   reconcile.Env
	scene *memory.Scene
	store storage.Client
}

func newHeadless(cfg *config.Config, logg *zap.Logger) (*headless, error) {
	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	sc := memory.NewScene()
	return &headless{
		scene: sc,
		store: store,
		env: reconcile.Env{
			Scene:    sc,
			Loader:   memory.NewLoader(),
			Resolver: resolver.New(cfg.Resolver, store, logg),
			Logger:   logg,
		},
	}, nil
}

// probeBucket logs whether the storage bucket is reachable. Layers that do not
// read from storage keep working either way.
func (h *headless) probeBucket(ctx context.Context, bucket string, logg *zap.Logger) {
	if bucket == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ok, err := h.store.BucketExists(ctx, bucket)
	switch {
	case err != nil:
		logg.Warn("Storage bucket unreachable", zap.String("bucket", bucket), zap.Error(err))
	case !ok:
		logg.Warn("Storage bucket does not exist", zap.String("bucket", bucket))
	default:
		logg.Info("Storage bucket available", zap.String("bucket", bucket))
	}
}

// readLayerFile decodes a YAML layer file. A missing exaggeration means 1.
func readLayerFile(path string) ([]layer.Layer, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	layers, exaggeration, err := layer.DecodeYAML(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	if exaggeration == 0 {
		exaggeration = 1
	}
	return layers, exaggeration, nil
}
