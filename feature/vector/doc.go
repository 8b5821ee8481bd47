// Package vector reconciles data-source layers: GeoJSON documents and the
// earthquake CSV feed.
//
// Every entity keeps the base color it was styled with. Opacity changes rebuild each
// entity material from that base color, since materials cannot be modified once
// assigned. Visibility toggles the data source.
package vector
