// Package metadata provides a time-bounded cache of per-file remote
// metadata (name, size, mime type) keyed by provider-specific file ids.
//
// Metadata is advisory: a miss, a timeout, or a fetch failure only costs a
// nicer title, never a playback attempt.
package metadata

import "time"

// TTL bounds the validity of a cached record, measured from FetchedAt.
const TTL = 7 * 24 * time.Hour

// Record holds the remote metadata for a single hosted file.
type Record struct {
	Name         string    `json:"name,omitempty"`
	Size         int64     `json:"size,omitempty"`
	MimeType     string    `json:"mimeType,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// Fresh reports whether the record is still within its TTL.
func (r *Record) Fresh(now time.Time) bool {
	return now.Sub(r.FetchedAt) <= TTL
}
