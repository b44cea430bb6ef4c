package domain

import (
	"path"
	"strings"
)

// ImageFile is an image attached to a submission.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Ext returns the lower-cased file extension without the dot, or "jpg" when
// the filename carries none.
func (f ImageFile) Ext() string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(f.Filename)), ".")
	if ext == "" || strings.ContainsAny(ext, " /\\?#%") {
		return "jpg"
	}
	return ext
}

// Submission is the form payload for a new gem. Lat and Lng hold the raw
// form text; they are used only when both parse as numbers.
type Submission struct {
	Name        string
	Description string
	Address     string
	Lat         string
	Lng         string
	Image       *ImageFile
}
