package viewer

import (
	"fmt"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/feature/imagery"
	"layer-manager/feature/kml"
	"layer-manager/feature/tileset"
	"layer-manager/feature/vector"
	"layer-manager/feature/voxel"
)

// NewController returns the controller for l with the strategy of its type.
func NewController(l layer.Layer, env reconcile.Env, programs *voxel.ProgramCache) (reconcile.LayerController, error) {
	switch v := l.(type) {
	case layer.WmtsLayer:
		c, err := reconcile.NewController(v, env, imagery.NewStrategy[layer.WmtsLayer](env))
		return erase(c, err)
	case layer.BackgroundLayer:
		c, err := reconcile.NewController(v, env, imagery.NewBackgroundStrategy(env))
		return erase(c, err)
	case layer.TiffLayer:
		c, err := reconcile.NewController(v, env, imagery.NewTiffStrategy(env))
		return erase(c, err)
	case layer.Tiles3dLayer:
		c, err := reconcile.NewController(v, env, tileset.NewStrategy(env))
		return erase(c, err)
	case layer.VoxelLayer:
		c, err := reconcile.NewController(v, env, voxel.NewStrategy(env, programs))
		return erase(c, err)
	case layer.GeoJSONLayer:
		c, err := reconcile.NewController(v, env, vector.NewGeoJSONStrategy(env))
		return erase(c, err)
	case layer.EarthquakesLayer:
		c, err := reconcile.NewController(v, env, vector.NewEarthquakesStrategy(env))
		return erase(c, err)
	case layer.KmlLayer:
		c, err := reconcile.NewController(v, env, kml.NewStrategy(env))
		return erase(c, err)
	}
	return nil, fmt.Errorf("%w: no controller for layer type %q", layer.ErrConfiguration, l.Type())
}

func erase[L layer.Layer](c *reconcile.Controller[L], err error) (reconcile.LayerController, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
