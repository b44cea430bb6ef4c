package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Anonymous is the submittedBy label for gems without an attached user.
const Anonymous = "Anonymous"

// Gem is the normalized point of interest held by the store.
type Gem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address,omitempty"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Image       string   `json:"image,omitempty"`
	SubmittedBy string   `json:"submittedBy"`
}

// HasImage reports whether the gem already carries an image URL.
func (g Gem) HasImage() bool {
	return g.Image != ""
}

// HasCoords reports whether both coordinates are known.
func (g Gem) HasCoords() bool {
	return g.Lat != nil && g.Lng != nil
}

// GemID accepts both string and numeric JSON identifiers from the backend.
type GemID string

func (id *GemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = GemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = GemID(n.String())
	return nil
}

// RawUser is the user association embedded in list and create payloads.
type RawUser struct {
	Email string `json:"email"`
}

// RawGem is a list item (or create reply) as the backend returns it.
type RawGem struct {
	ID          GemID           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Address     string          `json:"address"`
	Lat         json.RawMessage `json:"lat"`
	Lng         json.RawMessage `json:"lng"`
	Image       *string         `json:"image"`
	User        *RawUser        `json:"user"`
}

// NewGem is the create payload sent to the backend.
type NewGem struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Image       *string  `json:"image"`
}

// NormalizeGem converts a raw backend record into a Gem. List loads and
// submissions share this so both produce identical records.
func NormalizeGem(raw RawGem) Gem {
	g := Gem{
		ID:          string(raw.ID),
		Name:        raw.Name,
		Description: raw.Description,
		Address:     raw.Address,
		SubmittedBy: SubmittedBy(raw.User),
	}
	if raw.Image != nil {
		g.Image = *raw.Image
	}

	lat, latOK := jsonNumber(raw.Lat)
	lng, lngOK := jsonNumber(raw.Lng)
	if latOK && lngOK {
		g.Lat = &lat
		g.Lng = &lng
	}
	return g
}

// SubmittedBy derives the display label from the user's email local part.
func SubmittedBy(u *RawUser) string {
	if u == nil {
		return Anonymous
	}
	local, _, _ := strings.Cut(strings.TrimSpace(u.Email), "@")
	if local == "" {
		return Anonymous
	}
	return local
}

// jsonNumber accepts only finite JSON numbers; strings, null and missing
// values are rejected.
func jsonNumber(b json.RawMessage) (float64, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == '"' || bytes.Equal(b, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseCoords parses form-supplied coordinates. Both values must be present
// and finite; anything else means "no explicit coordinates".
func ParseCoords(lat, lng string) (float64, float64, bool) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || math.IsNaN(la) || math.IsInf(la, 0) {
		return 0, 0, false
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil || math.IsNaN(ln) || math.IsInf(ln, 0) {
		return 0, 0, false
	}
	return la, ln, true
}
