package domain

import "context"

// GeocodeResult is a resolved address.
type GeocodeResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

// IsZero reports whether the provider returned nothing usable.
func (r GeocodeResult) IsZero() bool {
	return r.FormattedAddress == "" && r.Lat == 0 && r.Lng == 0
}

// EnrichmentRequest names the gem a photo reply belongs to. Replies are
// applied by TargetID, never by position.
type EnrichmentRequest struct {
	TargetID string
	Name     string
	Lat      *float64
	Lng      *float64
}

// NewEnrichmentRequest builds the photo request for a stored gem.
func NewEnrichmentRequest(g Gem) EnrichmentRequest {
	return EnrichmentRequest{TargetID: g.ID, Name: g.Name, Lat: g.Lat, Lng: g.Lng}
}

// PhotoResolver finds a representative photo URL for a place. It never fails.
type PhotoResolver interface {
	ResolvePhoto(ctx context.Context, name string, lat, lng *float64) *Task[string]
}

// GeocodeResolver resolves an address to coordinates. It never fails.
type GeocodeResolver interface {
	ResolveAddress(ctx context.Context, address string) *Task[GeocodeResult]
}

// PhotoProvider is a fallible photo lookup backend. An empty URL with a nil
// error means nothing matched.
type PhotoProvider interface {
	FindPhoto(ctx context.Context, name string, lat, lng *float64) (string, error)
}

// GeocodeProvider is a fallible forward geocoding backend. A zero result with
// a nil error means nothing matched.
type GeocodeProvider interface {
	Geocode(ctx context.Context, address string) (GeocodeResult, error)
}
