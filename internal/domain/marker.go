package domain

import (
	"net/url"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Marker is a map pin for a gem with known coordinates.
type Marker struct {
	Title       string  `json:"title"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description,omitempty"`
	Location    string  `json:"location"`
}

// Markers returns pins for the gems that have both coordinates, in order.
func Markers(gems []Gem) []Marker {
	out := make([]Marker, 0, len(gems))
	for _, g := range gems {
		if !g.HasCoords() {
			continue
		}
		out = append(out, Marker{
			Title:       g.Name,
			Lat:         *g.Lat,
			Lng:         *g.Lng,
			Description: g.Description,
			Location:    g.Address,
		})
	}
	return out
}

// MarkersGeoJSON renders markers as a FeatureCollection of points.
func MarkersGeoJSON(markers []Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewFeature(orb.Point{m.Lng, m.Lat})
		f.Properties["title"] = m.Title
		f.Properties["description"] = m.Description
		f.Properties["location"] = m.Location
		if link := MapsSearchURL(m.Location); link != "" {
			f.Properties["maps_url"] = link
		}
		fc.Append(f)
	}
	return fc
}

// MapsSearchURL links an address to a Google Maps search. Empty for no address.
func MapsSearchURL(address string) string {
	if address == "" {
		return ""
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(address)
}
