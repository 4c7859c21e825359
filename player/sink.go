package player

import (
	"fmt"
	"strings"
	"sync"

	"github.com/samber/mo"
	"github.com/vidsan-cli/vidsan/playback"
)

// MPVSink adapts a running idle mpv instance into the playback.Sink the
// fallback chain engine drives. Readiness comes from the file-loaded and
// playback-restart events, load failures from end-file, and the buffered
// horizon from the demuxer-cache-time property.
type MPVSink struct {
	mpv      *MPV
	listener *EventListener

	mu       sync.Mutex
	assigned string
	ready    chan struct{}
	errs     chan playback.SinkError
	position float64
	duration mo.Option[float64]
	cacheEnd float64
}

// NewMPVSink attaches to an already-started mpv instance and begins
// observing its events.
func NewMPVSink(mpv *MPV) (*MPVSink, error) {
	sink := &MPVSink{
		mpv:      mpv,
		ready:    make(chan struct{}, 1),
		errs:     make(chan playback.SinkError, 1),
		duration: mo.None[float64](),
	}

	sink.listener = NewEventListener(mpv.Socket(), sink.onEvent)
	if err := sink.listener.Start(); err != nil {
		return nil, fmt.Errorf("attach sink: %w", err)
	}
	return sink, nil
}

// Detach stops the event listener. The mpv instance keeps running.
func (s *MPVSink) Detach() {
	s.listener.Stop()
}

// Assign stages a URL for the next load attempt and resets the sink's
// readiness and error state.
func (s *MPVSink) Assign(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assigned = url
	s.duration = mo.None[float64]()
	s.position = 0
	s.cacheEnd = 0

	// Fresh channels so a stale signal from a previous attempt can never
	// settle this one.
	s.ready = make(chan struct{}, 1)
	s.errs = make(chan playback.SinkError, 1)
}

// BeginLoad asks mpv to load the assigned URL. A rejected loadfile command
// surfaces through the error channel like any other load failure.
func (s *MPVSink) BeginLoad() {
	s.mu.Lock()
	url := s.assigned
	errs := s.errs
	s.mu.Unlock()

	if err := s.mpv.LoadFile(url); err != nil {
		select {
		case errs <- playback.SinkError{Code: "loadfile", Message: err.Error()}:
		default:
		}
	}
}

func (s *MPVSink) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *MPVSink) Errors() <-chan playback.SinkError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs
}

// CanPlay answers codec capability probes.
func (s *MPVSink) CanPlay(mimeType string) bool {
	return canPlayMime(mimeType)
}

// Capabilities answers codec capability probes for mpv without requiring a
// running instance. mpv's support surface is a property of the build, not
// of the process.
type Capabilities struct{}

func (Capabilities) CanPlay(mimeType string) bool {
	return canPlayMime(mimeType)
}

// canPlayMime reports whether mpv decodes the given mime type. mpv builds
// ship ffmpeg and decode essentially every container and codec the advisor
// asks about; only non-media mime classes are refused.
func canPlayMime(mimeType string) bool {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	if mime == "" {
		return false
	}
	for _, prefix := range []string{"video/", "audio/", "application/x-mpegurl", "application/vnd.apple.mpegurl", "application/dash+xml"} {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}
	return false
}

// Position returns the last observed playback position.
func (s *MPVSink) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Duration returns the media duration once mpv has parsed it.
func (s *MPVSink) Duration() mo.Option[float64] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Buffered reports the contiguous interval mpv's demuxer cache covers
// ahead of the current position.
func (s *MPVSink) Buffered() []playback.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cacheEnd <= s.position {
		return nil
	}
	return []playback.Interval{{Start: s.position, End: s.cacheEnd}}
}

// Seek moves playback to the given absolute position.
func (s *MPVSink) Seek(seconds float64) error {
	return s.mpv.Seek(seconds)
}

// onEvent folds mpv's event stream into the sink's state.
func (s *MPVSink) onEvent(name string, data interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case "time-pos":
		if v, ok := data.(float64); ok {
			s.position = v
		}
	case "duration":
		if v, ok := data.(float64); ok && v > 0 {
			s.duration = mo.Some(v)
		}
	case "demuxer-cache-time":
		if v, ok := data.(float64); ok {
			s.cacheEnd = v
		}
	case "file-loaded", "playback-restart":
		select {
		case s.ready <- struct{}{}:
		default:
		}
	case "end-file":
		s.dispatchEndFile(data)
	}
}

// dispatchEndFile turns an error-reason end-file event into a SinkError.
// Natural end-of-file and user stops are not load failures.
func (s *MPVSink) dispatchEndFile(data interface{}) {
	payload, ok := data.(map[string]interface{})
	if !ok {
		return
	}

	reason, _ := payload["reason"].(string)
	if reason != "error" {
		return
	}

	message, _ := payload["file_error"].(string)
	if message == "" {
		message = "mpv failed to open the stream"
	}

	select {
	case s.errs <- playback.SinkError{Code: "end-file", Message: message}:
	default:
	}
}
