package playback

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samber/mo"
	"github.com/vidsan-cli/vidsan/codec"
	"github.com/vidsan-cli/vidsan/locator"
	"github.com/vidsan-cli/vidsan/log"
	"github.com/vidsan-cli/vidsan/metadata"
	"github.com/vidsan-cli/vidsan/provider"
	"github.com/vidsan-cli/vidsan/resolver"
)

// ResolverClient is the resolve-endpoint surface the pipeline consumes.
type ResolverClient interface {
	Enabled() bool
	Resolve(ctx context.Context, rawURL string) mo.Option[*resolver.Result]
}

// MetadataService is the metadata-lookup surface the pipeline consumes.
type MetadataService interface {
	Lookup(ctx context.Context, host, id string) mo.Option[*metadata.Record]
}

// BlockedError marks a source the resolve endpoint flags as unplayable.
// It is fatal for the cycle: no fallback chain is attempted.
type BlockedError struct {
	Provider provider.Tag
	Reason   resolver.BlockedReason
}

func (e *BlockedError) Error() string {
	if e.Reason == resolver.BlockedEncrypted {
		return fmt.Sprintf("%s serves client-side encrypted content that cannot be streamed; download it with an external tool instead", e.Provider)
	}
	return fmt.Sprintf("%s source is blocked from playback (%s)", e.Provider, e.Reason)
}

// Pipeline runs the resolve cycle: classify the locator, gather metadata
// and resolution, advise on codecs, and pick the play URL.
type Pipeline struct {
	resolver ResolverClient
	metadata MetadataService
	caps     codec.Capabilities
	proxy    Proxy
}

// NewPipeline assembles a resolve pipeline from its collaborators.
func NewPipeline(res ResolverClient, meta MetadataService, caps codec.Capabilities, proxy Proxy) *Pipeline {
	return &Pipeline{
		resolver: res,
		metadata: meta,
		caps:     caps,
		proxy:    proxy,
	}
}

// Describe turns raw locator text into a MediaDescriptor.
//
// Only three failures are terminal: invalid input, a hard-blocked source,
// and (downstream) an exhausted fallback chain. Everything else degrades
// into trying the next strategy.
func (p *Pipeline) Describe(ctx context.Context, raw string) (*MediaDescriptor, error) {
	loc, err := locator.Classify(raw)
	if err != nil {
		return nil, err
	}

	if loc.Kind == locator.KindTorrent {
		return p.describeTorrent(loc), nil
	}

	directURL := loc.NormalizedURL
	needsResolve := provider.NeedsResolve(directURL)

	meta := p.lookupMetadata(ctx, loc)

	resolution := mo.None[*resolver.Result]()
	if needsResolve && p.resolver.Enabled() {
		resolution = p.resolver.Resolve(ctx, directURL)
	}

	if result, ok := resolution.Get(); ok {
		if reason, blocked := result.Blocked(); blocked {
			return nil, &BlockedError{Provider: loc.Provider, Reason: reason}
		}
		directURL = result.URL
		log.Debugf("resolve: %s resolved through %s", loc.RawInput, loc.Provider)
	}

	mimeType := ""
	if m, ok := meta.Get(); ok {
		mimeType = m.MimeType
	}
	advice := codec.Advise(directURL, mimeType, p.caps)

	descriptor := &MediaDescriptor{
		Kind:          loc.Kind,
		Provider:      loc.Provider,
		OriginalInput: loc.RawInput,
		DirectURL:     directURL,
		PlayURL:       playURL(loc.Provider, needsResolve, loc.CacheID, directURL, p.proxy),
		ID:            contentID(loc.Kind, loc.RawInput, directURL),
		Title:         title(loc.Provider, directURL, resolution, meta),
		NeedsResolve:  needsResolve,
		Resolution:    resolution,
		Advice:        mo.Some(advice),
		Metadata:      meta,
		CacheID:       loc.CacheID,
	}

	if advice.Warning != "" {
		descriptor.Warning = advice.Warning
	}
	return descriptor, nil
}

// describeTorrent builds a descriptor for torrent locators. Torrents skip
// resolution and codec advice entirely; swarm mechanics live in an
// external engine.
func (p *Pipeline) describeTorrent(loc *locator.Descriptor) *MediaDescriptor {
	return &MediaDescriptor{
		Kind:          loc.Kind,
		Provider:      loc.Provider,
		OriginalInput: loc.RawInput,
		DirectURL:     loc.RawInput,
		PlayURL:       loc.RawInput,
		ID:            contentID(loc.Kind, loc.RawInput, loc.RawInput),
		Title:         locator.TorrentDisplayName(loc.TorrentID),
		Resolution:    mo.None[*resolver.Result](),
		Advice:        mo.None[codec.Advice](),
		Metadata:      mo.None[*metadata.Record](),
		CacheID:       loc.CacheID,
	}
}

func (p *Pipeline) lookupMetadata(ctx context.Context, loc *locator.Descriptor) mo.Option[*metadata.Record] {
	id, ok := loc.CacheID.Get()
	if !ok || p.metadata == nil {
		return mo.None[*metadata.Record]()
	}

	u, err := url.Parse(loc.NormalizedURL)
	if err != nil || u.Hostname() == "" {
		return mo.None[*metadata.Record]()
	}
	return p.metadata.Lookup(ctx, u.Hostname(), id)
}
