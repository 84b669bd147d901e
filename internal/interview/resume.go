package interview

import "time"

// Resume is an uploaded résumé. Profile is nil until extraction succeeds.
type Resume struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	Text       string    `json:"text"`
	Profile    *Profile  `json:"profile,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}
