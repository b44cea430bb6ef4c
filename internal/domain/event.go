package domain

import "time"

// Event types published to the gem event stream.
const (
	EventGemCreated   = "gem.created"
	EventPhotoApplied = "gem.photo_applied"
)

// GemEvent is a notification about a change to a stored gem.
type GemEvent struct {
	Type        string    `json:"type"`
	GemID       string    `json:"gem_id"`
	Name        string    `json:"name"`
	Image       string    `json:"image,omitempty"`
	SubmittedBy string    `json:"submitted_by,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewGemEvent stamps an event for g with the package clock.
func NewGemEvent(eventType string, g Gem) GemEvent {
	return GemEvent{
		Type:        eventType,
		GemID:       g.ID,
		Name:        g.Name,
		Image:       g.Image,
		SubmittedBy: g.SubmittedBy,
		OccurredAt:  now(),
	}
}
