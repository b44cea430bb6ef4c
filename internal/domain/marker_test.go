package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestMarkers_SkipsGemsWithoutCoords(t *testing.T) {
	gems := []Gem{
		{ID: "1", Name: "Lodi Garden", Lat: ptr(28.59), Lng: ptr(77.22), Address: "Lodi Road, New Delhi"},
		{ID: "2", Name: "No coords"},
		{ID: "3", Name: "Half", Lat: ptr(28.1)},
		{ID: "4", Name: "Hauz Khas", Lat: ptr(28.55), Lng: ptr(77.19), Description: "Lake"},
	}

	markers := Markers(gems)

	require.Len(t, markers, 2)
	assert.Equal(t, Marker{Title: "Lodi Garden", Lat: 28.59, Lng: 77.22, Location: "Lodi Road, New Delhi"}, markers[0])
	assert.Equal(t, "Hauz Khas", markers[1].Title)
	assert.Equal(t, "Lake", markers[1].Description)
}

func TestMarkersGeoJSON(t *testing.T) {
	fc := MarkersGeoJSON([]Marker{{Title: "Lodi Garden", Lat: 28.59, Lng: 77.22, Location: "Lodi Road, New Delhi"}})

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 1)
	assert.Equal(t, []float64{77.22, 28.59}, decoded.Features[0].Geometry.Coordinates)
	assert.Equal(t, "Lodi Garden", decoded.Features[0].Properties["title"])
	assert.Contains(t, decoded.Features[0].Properties["maps_url"], "https://www.google.com/maps/search/")
}

func TestMapsSearchURL(t *testing.T) {
	assert.Empty(t, MapsSearchURL(""))
	assert.Equal(t,
		"https://www.google.com/maps/search/?api=1&query=Lodi+Rd%2C+Delhi",
		MapsSearchURL("Lodi Rd, Delhi"))
}
