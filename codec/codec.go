// Package codec infers container and codec information from URLs, mime
// types, and filename hints, and renders a best-effort playability verdict.
//
// The verdict is optimistic by default: actual playability is only known
// after a load attempt succeeds or fails, so a clean bill of health here is
// a heuristic, not a guarantee.
package codec

import (
	"path"
	"strings"
)

// Capabilities is the playback sink's codec-support query.
type Capabilities interface {
	CanPlay(mimeType string) bool
}

// Probe mime strings handed to the capability query.
const (
	probeHEVC    = `video/mp4; codecs="hvc1"`
	probeMKVH264 = `video/x-matroska; codecs="avc1.42E01E"`
	probeWebMVP9 = `video/webm; codecs="vp9"`
)

// Advice is the advisor's verdict for a single source.
type Advice struct {
	Container            string `json:"container"`
	Codec                string `json:"codec"`
	CanPlay              bool   `json:"canPlay"`
	Warning              string `json:"warning,omitempty"`
	NeedsSpecialHandling bool   `json:"needsSpecialHandling"`
}

const (
	warnHEVC          = "This looks like HEVC/x265 video, which your player reports as unsupported. Consider an external player such as VLC."
	warnMKV           = "MKV container with no supported codec combination reported. Playback may fail."
	warnLegacy        = "AVI/FLV/WMV containers are not supported. Use an external player or download the file."
	warnTenBitNonHEVC = "10-bit video outside HEVC is rarely supported. Playback may show artifacts or fail."
)

// Advise applies the rule chain to (url, mimeType) and produces an Advice.
// Rules are additive: later rules may upgrade container/codec but never
// silently clear an existing warning.
func Advise(rawURL, mimeType string, caps Capabilities) Advice {
	ext := urlExt(rawURL)
	name := strings.ToLower(path.Base(urlPath(rawURL)))
	mime := strings.ToLower(mimeType)

	advice := Advice{
		Container: defaultContainer(ext),
		Codec:     "unknown",
		CanPlay:   true,
	}

	// Rule 1: HEVC markers in the mime type.
	if containsAny(mime, "hevc", "x265", "h265") {
		advice.Codec = "HEVC"
		advice.CanPlay = caps.CanPlay(probeHEVC)
		if !advice.CanPlay {
			setWarning(&advice, warnHEVC)
		}
	}

	// Rule 2: Matroska markers in the mime type.
	if strings.Contains(mime, "matroska") {
		advice.Container = "MKV"
		advice.NeedsSpecialHandling = true
	}

	// Rule 3: extension overrides.
	switch ext {
	case "mkv":
		advice.Container = "MKV"
		advice.NeedsSpecialHandling = true
		if !caps.CanPlay(probeMKVH264) && !caps.CanPlay(probeWebMVP9) {
			setWarning(&advice, warnMKV)
		}
	case "avi", "flv", "wmv":
		advice.Container = strings.ToUpper(ext)
		advice.CanPlay = false
		setWarning(&advice, warnLegacy)
	}

	// Rule 4: HEVC markers in the filename.
	if containsAny(name, "x265", "h265", "hevc") {
		advice.Codec = "HEVC"
		if !caps.CanPlay(probeHEVC) {
			advice.CanPlay = false
			setWarning(&advice, warnHEVC)
		}
	}

	// Rule 5: 10-bit markers in the filename.
	if containsAny(name, "10bit", "10-bit") {
		if advice.Codec == "HEVC" {
			advice.Codec = "HEVC 10-bit"
		} else {
			advice.Codec = appendCodec(advice.Codec, "10-bit")
			setWarning(&advice, warnTenBitNonHEVC)
		}
	}

	return advice
}

// setWarning records a warning unless a higher-priority one is already set.
func setWarning(a *Advice, msg string) {
	if a.Warning == "" {
		a.Warning = msg
	}
}

func defaultContainer(ext string) string {
	if ext == "" {
		return "unknown"
	}
	return strings.ToUpper(ext)
}

func appendCodec(codec, suffix string) string {
	if codec == "" || codec == "unknown" {
		return suffix
	}
	return codec + " " + suffix
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// urlPath returns the path component, ignoring query and fragment even for
// unparseable URLs.
func urlPath(rawURL string) string {
	trimmed := rawURL
	for _, sep := range []string{"?", "#"} {
		if i := strings.Index(trimmed, sep); i >= 0 {
			trimmed = trimmed[:i]
		}
	}
	return trimmed
}

func urlExt(rawURL string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(urlPath(rawURL)), "."))
}
