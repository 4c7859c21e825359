package playback

import (
	"github.com/samber/mo"
	"github.com/vidsan-cli/vidsan/codec"
	"github.com/vidsan-cli/vidsan/locator"
	"github.com/vidsan-cli/vidsan/metadata"
	"github.com/vidsan-cli/vidsan/provider"
	"github.com/vidsan-cli/vidsan/resolver"
)

// MediaDescriptor is the output of a resolve cycle. It is created fresh on
// every cycle and never mutated afterwards; the playback driver owns it as
// the current media until the next load.
type MediaDescriptor struct {
	Kind          locator.Kind                `json:"kind"`
	Provider      provider.Tag                `json:"provider"`
	OriginalInput string                      `json:"originalInput"`
	DirectURL     string                      `json:"directUrl"`
	PlayURL       string                      `json:"playUrl"`
	ID            string                      `json:"id"`
	Title         string                      `json:"title"`
	NeedsResolve  bool                        `json:"needsResolve"`
	Resolution    mo.Option[*resolver.Result] `json:"resolution,omitempty"`
	Advice        mo.Option[codec.Advice]     `json:"codecAdvice,omitempty"`
	Metadata      mo.Option[*metadata.Record] `json:"cachedMetadata,omitempty"`
	CacheID       mo.Option[string]           `json:"cacheId,omitempty"`
	Warning       string                      `json:"warning,omitempty"`
}

// contentID derives the stable content key used by history and bookmark
// stores. It must be deterministic for the same effective source.
func contentID(kind locator.Kind, rawInput, directURL string) string {
	if kind == locator.KindTorrent {
		return "tor:" + rawInput
	}
	return "url:" + directURL
}
