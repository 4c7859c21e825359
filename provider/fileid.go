package provider

import (
	"regexp"

	"github.com/samber/mo"
)

// File-id extraction covers hosts that embed a stable file identifier in
// known URL shapes. The id doubles as the metadata cache key.
// PixelDrain exposes it in both the viewer and the API shape.
var pixelDrainIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pixeldrain\.(?:com|net)/u/([a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?i)pixeldrain\.(?:com|net)/api/file/([a-zA-Z0-9]+)`),
}

// FileID extracts the provider-specific stable file identifier from a URL,
// when the host exposes one.
func FileID(rawURL string) mo.Option[string] {
	for _, pattern := range pixelDrainIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return mo.Some(m[1])
		}
	}
	return mo.None[string]()
}
