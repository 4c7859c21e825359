package playback

import (
	"net/url"
	"path"
	"strings"

	"github.com/samber/mo"
	"github.com/vidsan-cli/vidsan/metadata"
	"github.com/vidsan-cli/vidsan/provider"
	"github.com/vidsan-cli/vidsan/resolver"
	"github.com/vidsan-cli/vidsan/util"
)

// playURL decides whether playback must be routed through the rewriting
// proxy or may be attempted directly. Evaluated in order, first match wins.
func playURL(tag provider.Tag, needsResolve bool, cacheID mo.Option[string], directURL string, proxy Proxy) string {
	// Resolved hosts and provider-hosted files keep cookies and CORS
	// quirks that only the proxy can paper over.
	if needsResolve || cacheID.IsPresent() {
		return proxy.Wrap(directURL)
	}

	// HLS manifests need URL rewriting for relative segment references.
	if tag == provider.HLS || isManifest(directURL) {
		return proxy.Wrap(directURL)
	}

	return directURL
}

func isManifest(rawURL string) bool {
	trimmed := rawURL
	for _, sep := range []string{"?", "#"} {
		if i := strings.Index(trimmed, sep); i >= 0 {
			trimmed = trimmed[:i]
		}
	}
	return strings.HasSuffix(strings.ToLower(trimmed), ".m3u8")
}

// title picks the display title by precedence: resolution filename, then
// cached metadata name, then a URL-path-derived guess, then provider name.
func title(tag provider.Tag, directURL string, res mo.Option[*resolver.Result], meta mo.Option[*metadata.Record]) string {
	if r, ok := res.Get(); ok && r.Filename != "" {
		return r.Filename
	}
	if m, ok := meta.Get(); ok && m.Name != "" {
		return m.Name
	}
	if guess := titleFromURL(directURL); guess != "" {
		return guess
	}
	return string(tag)
}

// titleFromURL guesses a title from the URL's last path segment, stripping
// the extension and percent-encoding.
func titleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	if decoded, err := url.PathUnescape(base); err == nil {
		base = decoded
	}
	return util.FileStem(base)
}
