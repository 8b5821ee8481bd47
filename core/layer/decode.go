package layer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type envelope struct {
	Type Type `json:"type" yaml:"type"`
}

// UnmarshalJSON decodes a single layer using its "type" field.
func UnmarshalJSON(data []byte) (Layer, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode layer: %w", err)
	}

	switch env.Type {
	case TypeWmts:
		return decodeJSON[WmtsLayer](data)
	case TypeTiles3d:
		return decodeJSON[Tiles3dLayer](data)
	case TypeVoxel:
		return decodeJSON[VoxelLayer](data)
	case TypeTiff:
		return decodeJSON[TiffLayer](data)
	case TypeGeoJSON:
		return decodeJSON[GeoJSONLayer](data)
	case TypeKml:
		return decodeJSON[KmlLayer](data)
	case TypeEarthquakes:
		return decodeJSON[EarthquakesLayer](data)
	case TypeBackground:
		return decodeJSON[BackgroundLayer](data)
	}
	return nil, fmt.Errorf("%w: unsupported layer type %q", ErrConfiguration, env.Type)
}

func decodeJSON[L Layer](data []byte) (Layer, error) {
	var l L
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode %s layer: %w", l.Type(), err)
	}
	return l, nil
}

// MarshalJSON encodes a layer including its "type" discriminator.
func MarshalJSON(l Layer) ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	typ, err := json.Marshal(l.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}

// File is the YAML document listing layers, top first.
type File struct {
	Exaggeration float64     `yaml:"exaggeration"`
	Layers       []yaml.Node `yaml:"layers"`
}

// DecodeYAML reads a layer file and decodes every entry by its "type" field.
// Every decoded layer is validated.
func DecodeYAML(r io.Reader) ([]Layer, float64, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to parse layer file: %w", err)
	}

	layers := make([]Layer, 0, len(file.Layers))
	for i := range file.Layers {
		node := &file.Layers[i]
		var env envelope
		if err := node.Decode(&env); err != nil {
			return nil, 0, fmt.Errorf("layer %d: %w", i, err)
		}
		l, err := decodeNode(env.Type, node)
		if err != nil {
			return nil, 0, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := Validate(l); err != nil {
			return nil, 0, err
		}
		layers = append(layers, l)
	}
	return layers, file.Exaggeration, nil
}

func decodeNode(t Type, node *yaml.Node) (Layer, error) {
	switch t {
	case TypeWmts:
		return decodeYAMLNode[WmtsLayer](node)
	case TypeTiles3d:
		return decodeYAMLNode[Tiles3dLayer](node)
	case TypeVoxel:
		return decodeYAMLNode[VoxelLayer](node)
	case TypeTiff:
		return decodeYAMLNode[TiffLayer](node)
	case TypeGeoJSON:
		return decodeYAMLNode[GeoJSONLayer](node)
	case TypeKml:
		return decodeYAMLNode[KmlLayer](node)
	case TypeEarthquakes:
		return decodeYAMLNode[EarthquakesLayer](node)
	case TypeBackground:
		return decodeYAMLNode[BackgroundLayer](node)
	}
	return nil, fmt.Errorf("%w: unsupported layer type %q", ErrConfiguration, t)
}

func decodeYAMLNode[L Layer](node *yaml.Node) (Layer, error) {
	var l L
	if err := node.Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode %s layer: %w", l.Type(), err)
	}
	return l, nil
}

// UnmarshalJSONList decodes a JSON array of layers. Every decoded layer is validated.
func UnmarshalJSONList(data []byte) ([]Layer, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode layer list: %w", err)
	}
	layers := make([]Layer, 0, len(raw))
	for i, item := range raw {
		l, err := UnmarshalJSON(item)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := Validate(l); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers = append(layers, l)
	}
	return layers, nil
}
