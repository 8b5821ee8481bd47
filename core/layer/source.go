package layer

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceKind identifies where the data of a layer lives.
type SourceKind string

const (
	SourceIon     SourceKind = "ion"
	SourceURL     SourceKind = "url"
	SourceStorage SourceKind = "storage"
	SourceOGC     SourceKind = "ogc"
)

// Source is a tagged union of data locations. Only the fields of Kind are meaningful.
type Source struct {
	Kind SourceKind `json:"kind" yaml:"kind"`

	// AssetID and AccessToken address a Cesium ion asset.
	AssetID     int    `json:"assetId,omitempty" yaml:"assetId,omitempty"`
	AccessToken string `json:"accessToken,omitempty" yaml:"accessToken,omitempty"`

	// URL is a plain fetchable URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Bucket and Key address an object in object storage.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty"`

	// CollectionID and StyleID address an OGC API collection.
	CollectionID int `json:"collectionId,omitempty" yaml:"collectionId,omitempty"`
	StyleID      int `json:"styleId,omitempty" yaml:"styleId,omitempty"`
	// Display optionally overrides the resource an OGC collection is displayed from.
	Display *Source `json:"display,omitempty" yaml:"display,omitempty"`
}

// IonAsset returns a Cesium ion source.
func IonAsset(assetID int, accessToken string) Source {
	return Source{Kind: SourceIon, AssetID: assetID, AccessToken: accessToken}
}

// URL returns a plain URL source.
func URL(u string) Source {
	return Source{Kind: SourceURL, URL: u}
}

// Object returns an object-storage source.
func Object(bucket, key string) Source {
	return Source{Kind: SourceStorage, Bucket: bucket, Key: key}
}

// OGC returns an OGC API collection source. display may be nil.
func OGC(collectionID, styleID int, display *Source) Source {
	return Source{Kind: SourceOGC, CollectionID: collectionID, StyleID: styleID, Display: display}
}

// CacheKey returns a canonical string identifying the source. Two sources with the
// same key resolve to the same resource. It includes credentials and must not be
// logged.
func (s Source) CacheKey() string { return s.key(false) }

// String describes the source for logs and errors. Access tokens are left out.
func (s Source) String() string { return s.key(true) }

func (s Source) key(redact bool) string {
	switch s.Kind {
	case SourceIon:
		k := "ion:" + strconv.Itoa(s.AssetID)
		if redact {
			return k
		}
		return k + ":" + s.AccessToken
	case SourceURL:
		return "url:" + s.URL
	case SourceStorage:
		return "storage:" + s.Bucket + "/" + s.Key
	case SourceOGC:
		var b strings.Builder
		b.WriteString("ogc:")
		b.WriteString(strconv.Itoa(s.CollectionID))
		if s.StyleID != 0 {
			b.WriteString(":style=" + strconv.Itoa(s.StyleID))
		}
		if s.Display != nil {
			b.WriteString(":display=" + s.Display.key(redact))
		}
		return b.String()
	}
	return "unknown:" + string(s.Kind)
}

// Validate checks that the fields required by Kind are set.
func (s Source) Validate() error {
	switch s.Kind {
	case SourceIon:
		if s.AssetID <= 0 {
			return fmt.Errorf("%w: ion source requires a positive asset id", ErrConfiguration)
		}
	case SourceURL:
		if s.URL == "" {
			return fmt.Errorf("%w: url source requires a url", ErrConfiguration)
		}
	case SourceStorage:
		if s.Bucket == "" || s.Key == "" {
			return fmt.Errorf("%w: storage source requires bucket and key", ErrConfiguration)
		}
	case SourceOGC:
		if s.CollectionID <= 0 {
			return fmt.Errorf("%w: ogc source requires a positive collection id", ErrConfiguration)
		}
		if s.Display != nil {
			if s.Display.Kind == SourceOGC {
				return fmt.Errorf("%w: ogc display source cannot be another ogc source", ErrConfiguration)
			}
			return s.Display.Validate()
		}
	default:
		return fmt.Errorf("%w: unknown source kind %q", ErrConfiguration, s.Kind)
	}
	return nil
}
