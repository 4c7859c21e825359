package playback

import (
	"net/url"
	"strings"
)

// Proxy is the rewriting proxy endpoint used to bypass CORS and cookie
// restrictions. Wrapping is a pure string transform; the proxy itself is
// never called by this package.
type Proxy struct {
	base string
}

// NewProxy creates a proxy wrapper for the given endpoint base URL.
// An empty base disables wrapping; Wrap becomes the identity.
func NewProxy(base string) Proxy {
	return Proxy{base: strings.TrimSuffix(base, "/")}
}

// Enabled reports whether a proxy base is configured.
func (p Proxy) Enabled() bool {
	return p.base != ""
}

// Wrap routes a URL through the proxy. Blank input and a disabled proxy
// pass through unchanged.
func (p Proxy) Wrap(rawURL string) string {
	if p.base == "" || rawURL == "" {
		return rawURL
	}
	return p.base + "/?url=" + url.QueryEscape(rawURL)
}
