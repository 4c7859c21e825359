package resolver

import "strings"

// Result is a normalized successful resolution.
type Result struct {
	URL      string            `json:"url"`
	Referer  string            `json:"referer,omitempty"`
	Origin   string            `json:"origin,omitempty"`
	Cookie   string            `json:"cookie,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Note     string            `json:"note,omitempty"`
	Filename string            `json:"filename,omitempty"`
	Filesize int64             `json:"filesize,omitempty"`
	Mode     string            `json:"mode,omitempty"`
}

// BlockedReason classifies why a resolved source cannot be played at all.
type BlockedReason string

const (
	// BlockedEncrypted marks client-side encrypted content (e.g. MEGA)
	// that a passive player cannot decode.
	BlockedEncrypted BlockedReason = "encrypted"
)

// Blocked reports whether the resolution flags the content as unplayable.
// TODO: switch to a structured blocked_reason field once the resolve
// endpoint exposes one; matching on the free-text note is fragile.
func (r *Result) Blocked() (BlockedReason, bool) {
	if strings.Contains(strings.ToLower(r.Note), "encrypted") {
		return BlockedEncrypted, true
	}
	return "", false
}

// PlaybackHeaders assembles the HTTP headers playback must carry.
func (r *Result) PlaybackHeaders() map[string]string {
	headers := make(map[string]string, len(r.Headers)+3)
	for k, v := range r.Headers {
		headers[k] = v
	}
	if r.Referer != "" {
		headers["Referer"] = r.Referer
	}
	if r.Origin != "" {
		headers["Origin"] = r.Origin
	}
	if r.Cookie != "" {
		headers["Cookie"] = r.Cookie
	}
	return headers
}
