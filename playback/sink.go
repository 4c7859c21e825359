// Package playback turns a classified media locator into a playing source.
//
// It owns the resolve cycle (metadata, resolution, codec advice, play-URL
// strategy), the fallback chain engine that tries candidate URLs against a
// playback sink until one loads, and the seek-safety logic gated on the
// chosen source's byte-range support.
package playback

import (
	"fmt"

	"github.com/samber/mo"
)

// SinkError is a load failure reported by the playback sink.
type SinkError struct {
	Code    string
	Message string
}

func (e SinkError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Interval is a buffered time span, in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Contains reports whether t falls inside the interval.
func (iv Interval) Contains(t float64) bool {
	return t >= iv.Start && t <= iv.End
}

// Sink is the injected playback surface the chain engine drives.
//
// Assign resets the sink's readiness and error state for a fresh load;
// BeginLoad starts loading the assigned URL. Exactly one of Ready or Errors
// settles per load attempt. Duration may be absent until the sink has
// parsed enough of the stream to know it.
type Sink interface {
	Assign(url string)
	BeginLoad()
	Ready() <-chan struct{}
	Errors() <-chan SinkError

	CanPlay(mimeType string) bool

	Position() float64
	Duration() mo.Option[float64]
	Buffered() []Interval
	Seek(seconds float64) error
}
