// Package locator parses raw user input into a typed media locator descriptor.
//
// Classification is a pure function of the input: torrent identifiers are
// recognized by scheme or extension, everything else is normalized into an
// https URL and attributed to a hosting provider.
package locator

import (
	"errors"
	"net/url"
	"strings"

	"github.com/samber/mo"
	"github.com/vidsan-cli/vidsan/provider"
)

// Kind discriminates the two locator families.
type Kind uint8

const (
	KindURL Kind = iota
	KindTorrent
)

func (k Kind) String() string {
	if k == KindTorrent {
		return "torrent"
	}
	return "url"
}

// Descriptor is the typed form of a raw media locator.
// Immutable once produced; one per classify call.
type Descriptor struct {
	Kind          Kind
	RawInput      string
	NormalizedURL string
	TorrentID     string
	Provider      provider.Tag
	CacheID       mo.Option[string]
}

// ErrEmptyInput signals empty or whitespace-only input. No network activity
// is ever attempted for it.
var ErrEmptyInput = errors.New("empty or blank media locator")

// Classify parses raw text into a Descriptor.
func Classify(raw string) (*Descriptor, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}

	if isTorrent(trimmed) {
		// The raw trimmed text doubles as the torrent identifier and the
		// direct-URL placeholder.
		return &Descriptor{
			Kind:          KindTorrent,
			RawInput:      trimmed,
			NormalizedURL: trimmed,
			TorrentID:     trimmed,
			Provider:      provider.Torrent,
			CacheID:       mo.None[string](),
		}, nil
	}

	normalized := normalizeScheme(trimmed)

	return &Descriptor{
		Kind:          KindURL,
		RawInput:      trimmed,
		NormalizedURL: normalized,
		Provider:      provider.Detect(normalized),
		CacheID:       provider.FileID(normalized),
	}, nil
}

// isTorrent recognizes magnet links and torrent-file URLs. A trailing query
// or fragment after the .torrent extension is tolerated.
func isTorrent(input string) bool {
	if strings.HasPrefix(strings.ToLower(input), "magnet:") {
		return true
	}

	trimmed := input
	for _, sep := range []string{"?", "#"} {
		if i := strings.Index(trimmed, sep); i >= 0 {
			trimmed = trimmed[:i]
		}
	}
	return strings.HasSuffix(strings.ToLower(trimmed), ".torrent")
}

// normalizeScheme prefixes https:// when the input lacks an explicit
// http(s) scheme and is not a local-blob handle.
func normalizeScheme(input string) string {
	lower := strings.ToLower(input)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return input
	case strings.HasPrefix(lower, "blob:"):
		return input
	default:
		return "https://" + input
	}
}

// TorrentDisplayName extracts the display-name parameter from a magnet
// link, falling back to the raw identifier.
func TorrentDisplayName(torrentID string) string {
	if strings.HasPrefix(strings.ToLower(torrentID), "magnet:") {
		if u, err := url.Parse(torrentID); err == nil {
			if dn := u.Query().Get("dn"); dn != "" {
				return dn
			}
		}
	}
	return torrentID
}
