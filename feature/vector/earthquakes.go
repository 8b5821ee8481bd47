package vector

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/scene"
	"layer-manager/core/utils"

	"github.com/paulmach/orb"
)

// Columns every earthquake feed must provide.
var earthquakeColumns = []string{"time", "latitude", "longitude", "depth", "magnitude"}

// EarthquakesStrategy reconciles the earthquake layer.
type EarthquakesStrategy struct {
	env  reconcile.Env
	slot Slot
}

// NewEarthquakesStrategy returns a strategy that turns a CSV feed into point entities.
func NewEarthquakesStrategy(env reconcile.Env) *EarthquakesStrategy {
	return &EarthquakesStrategy{env: env, slot: NewSlot(env)}
}

func (s *EarthquakesStrategy) ReactToChanges(l layer.EarthquakesLayer, w *reconcile.Watcher) {
	w.Watch("source", l.Source.CacheKey())
	w.Watch("minMagnitude", l.MinMagnitude)
	w.Watch("opacity", l.Opacity, reconcile.Opacity(l.Opacity))
	w.Watch("visible", l.IsVisible, reconcile.Visibility(l.IsVisible))
}

func (s *EarthquakesStrategy) AddToViewer(ctx context.Context, l layer.EarthquakesLayer) error {
	data, err := fetch(ctx, s.env, l.Source)
	if err != nil {
		return err
	}
	entities, err := ParseEarthquakes(bytes.NewReader(data), l.MinMagnitude)
	if err != nil {
		return fmt.Errorf("layer %q: %w", l.ID, err)
	}
	return s.slot.Replace(&scene.DataSource{Name: l.ID, Entities: entities}, l.Base)
}

// ParseEarthquakes reads a CSV feed with a header row and returns one point entity
// per event at or above minMagnitude.
func ParseEarthquakes(r io.Reader, minMagnitude float64) ([]*scene.Entity, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: earthquake feed has no header: %v", layer.ErrConfiguration, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range earthquakeColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: earthquake feed lacks column %q", layer.ErrConfiguration, col)
		}
	}

	var entities []*scene.Entity
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: earthquake feed line %d: %v", layer.ErrConfiguration, line, err)
		}

		values := make(map[string]float64, 4)
		for _, col := range earthquakeColumns[1:] {
			v, ok := utils.ToFloat(record[index[col]])
			if !ok {
				return nil, fmt.Errorf("%w: earthquake feed line %d: invalid %s %q", layer.ErrConfiguration, line, col, record[index[col]])
			}
			values[col] = v
		}
		if values["magnitude"] < minMagnitude {
			continue
		}

		entities = append(entities, &scene.Entity{
			ID:        fmt.Sprintf("earthquake-%d", line),
			Geometry:  orb.Point{values["longitude"], values["latitude"]},
			BaseColor: magnitudeColor(values["magnitude"]),
			Properties: map[string]any{
				"time":      record[index["time"]],
				"depth":     values["depth"],
				"magnitude": values["magnitude"],
			},
		})
	}
	return entities, nil
}

// magnitudeColor grades events from yellow to red.
func magnitudeColor(m float64) color.NRGBA {
	switch {
	case m < 3:
		return color.NRGBA{R: 0xff, G: 0xe0, B: 0x00, A: 0xff}
	case m < 5:
		return color.NRGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}
	default:
		return color.NRGBA{R: 0xe0, G: 0x00, B: 0x00, A: 0xff}
	}
}

func (s *EarthquakesStrategy) RemoveFromViewer(context.Context) error {
	return s.slot.Remove()
}

func (s *EarthquakesStrategy) ApplyPatch(_ context.Context, l layer.EarthquakesLayer, p reconcile.Patch) error {
	return s.slot.Patch(l.Base, p)
}

func (s *EarthquakesStrategy) ZoomIntoView(layer.EarthquakesLayer) error { return s.slot.Zoom() }
func (s *EarthquakesStrategy) MoveToTop() error                          { return s.slot.Raise() }

// Current returns the data source in the scene, or nil.
func (s *EarthquakesStrategy) Current() *scene.DataSource { return s.slot.Current() }
