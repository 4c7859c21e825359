package playback

import (
	"context"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidsan-cli/vidsan/locator"
	"github.com/vidsan-cli/vidsan/metadata"
	"github.com/vidsan-cli/vidsan/provider"
	"github.com/vidsan-cli/vidsan/resolver"
)

type fakeResolver struct {
	enabled bool
	result  mo.Option[*resolver.Result]
	calls   int
}

func (f *fakeResolver) Enabled() bool { return f.enabled }

func (f *fakeResolver) Resolve(context.Context, string) mo.Option[*resolver.Result] {
	f.calls++
	return f.result
}

type fakeMetadata struct {
	record mo.Option[*metadata.Record]
	calls  int
	host   string
	id     string
}

func (f *fakeMetadata) Lookup(_ context.Context, host, id string) mo.Option[*metadata.Record] {
	f.calls++
	f.host = host
	f.id = id
	return f.record
}

type stubCaps struct{ ok bool }

func (c stubCaps) CanPlay(string) bool { return c.ok }

func newTestPipeline(res *fakeResolver, meta *fakeMetadata) *Pipeline {
	return NewPipeline(res, meta, stubCaps{ok: true}, NewProxy("https://proxy.example.com"))
}

func TestDescribe(t *testing.T) {
	Convey("Resolve cycle", t, func() {
		res := &fakeResolver{enabled: true, result: mo.None[*resolver.Result]()}
		meta := &fakeMetadata{record: mo.None[*metadata.Record]()}
		pipeline := newTestPipeline(res, meta)
		ctx := context.Background()

		Convey("Rejects blank input before any network activity", func() {
			_, err := pipeline.Describe(ctx, "   ")
			So(err, ShouldEqual, locator.ErrEmptyInput)
			So(res.calls, ShouldEqual, 0)
			So(meta.calls, ShouldEqual, 0)
		})

		Convey("Describes a magnet link without resolving", func() {
			input := "magnet:?xt=urn:btih:abc&dn=Some+Movie"
			media, err := pipeline.Describe(ctx, input)

			So(err, ShouldBeNil)
			So(media.Kind, ShouldEqual, locator.KindTorrent)
			So(media.ID, ShouldEqual, "tor:"+input)
			So(media.Title, ShouldEqual, "Some Movie")
			So(media.PlayURL, ShouldEqual, input)
			So(res.calls, ShouldEqual, 0)
		})

		Convey("Plays a direct URL un-proxied", func() {
			media, err := pipeline.Describe(ctx, "https://cdn.example.com/show/episode-1.mp4")

			So(err, ShouldBeNil)
			So(media.Provider, ShouldEqual, provider.Direct)
			So(media.NeedsResolve, ShouldBeFalse)
			So(media.PlayURL, ShouldEqual, media.DirectURL)
			So(media.ID, ShouldEqual, "url:https://cdn.example.com/show/episode-1.mp4")
			So(media.Title, ShouldEqual, "episode-1")
			So(res.calls, ShouldEqual, 0)
		})

		Convey("Routes HLS manifests through the proxy", func() {
			media, err := pipeline.Describe(ctx, "https://cdn.example.com/live/stream.m3u8")

			So(err, ShouldBeNil)
			So(media.Provider, ShouldEqual, provider.HLS)
			So(media.PlayURL, ShouldNotEqual, media.DirectURL)
			So(media.PlayURL, ShouldContainSubstring, "proxy.example.com")
		})

		Convey("Resolves captive hosts and proxies the resolved URL", func() {
			res.result = mo.Some(&resolver.Result{
				URL:      "https://edge.pixeldrain.com/api/file/a1b2c3",
				Filename: "Movie.2024.1080p.mkv",
			})

			media, err := pipeline.Describe(ctx, "https://pixeldrain.com/u/a1b2c3")

			So(err, ShouldBeNil)
			So(media.Provider, ShouldEqual, provider.PixelDrain)
			So(media.NeedsResolve, ShouldBeTrue)
			So(media.DirectURL, ShouldEqual, "https://edge.pixeldrain.com/api/file/a1b2c3")
			So(media.PlayURL, ShouldContainSubstring, "proxy.example.com")
			So(media.Title, ShouldEqual, "Movie.2024.1080p.mkv")
			So(media.ID, ShouldEqual, "url:https://edge.pixeldrain.com/api/file/a1b2c3")
			So(res.calls, ShouldEqual, 1)
			So(meta.host, ShouldEqual, "pixeldrain.com")
			So(meta.id, ShouldEqual, "a1b2c3")
		})

		Convey("Falls back to proxy streaming when resolution yields nothing", func() {
			media, err := pipeline.Describe(ctx, "https://gofile.io/d/abc")

			So(err, ShouldBeNil)
			So(media.Resolution.IsAbsent(), ShouldBeTrue)
			So(media.DirectURL, ShouldEqual, "https://gofile.io/d/abc")
			So(media.PlayURL, ShouldContainSubstring, "proxy.example.com")
		})

		Convey("Hard-blocks encrypted sources before any chain attempt", func() {
			res.result = mo.Some(&resolver.Result{
				URL:  "https://cdn/x",
				Note: "AES encrypted",
			})

			media, err := pipeline.Describe(ctx, "https://mega.nz/file/abc")

			So(media, ShouldBeNil)
			var blocked *BlockedError
			So(err, ShouldHaveSameTypeAs, blocked)
			So(err.Error(), ShouldContainSubstring, "encrypted")
		})

		Convey("Prefers cached metadata names over URL guesses", func() {
			meta.record = mo.Some(&metadata.Record{Name: "Nice Title.mp4", MimeType: "video/mp4"})
			res.enabled = false

			media, err := pipeline.Describe(ctx, "https://pixeldrain.com/u/a1b2c3")

			So(err, ShouldBeNil)
			So(media.Title, ShouldEqual, "Nice Title.mp4")
		})

		Convey("Surfaces the codec advisor's warning", func() {
			media, err := pipeline.Describe(ctx, "https://cdn.example.com/old/video.avi")

			So(err, ShouldBeNil)
			So(media.Warning, ShouldContainSubstring, "external player")

			advice, ok := media.Advice.Get()
			So(ok, ShouldBeTrue)
			So(advice.CanPlay, ShouldBeFalse)
		})

		Convey("Prefixes a scheme for bare hostnames", func() {
			media, err := pipeline.Describe(ctx, "cdn.example.com/clip.mp4")

			So(err, ShouldBeNil)
			So(media.DirectURL, ShouldStartWith, "https://")
		})
	})
}

func TestPlayURLStrategy(t *testing.T) {
	Convey("Play-URL strategy", t, func() {
		proxy := NewProxy("https://proxy.example.com")
		none := mo.None[string]()

		Convey("Resolved hosts go through the proxy", func() {
			got := playURL(provider.GoFile, true, none, "https://cdn/x.mp4", proxy)
			So(got, ShouldContainSubstring, "proxy.example.com")
		})

		Convey("Provider-hosted files go through the proxy even without resolution", func() {
			got := playURL(provider.PixelDrain, false, mo.Some("a1b2c3"), "https://pixeldrain.com/u/a1b2c3", proxy)
			So(got, ShouldContainSubstring, "proxy.example.com")
		})

		Convey("HLS manifests go through the proxy", func() {
			got := playURL(provider.HLS, false, none, "https://cdn/live.m3u8?token=t", proxy)
			So(got, ShouldContainSubstring, "proxy.example.com")
		})

		Convey("Everything else is attempted directly", func() {
			got := playURL(provider.Direct, false, none, "https://cdn/x.mp4", proxy)
			So(got, ShouldEqual, "https://cdn/x.mp4")
		})

		Convey("A disabled proxy leaves URLs untouched", func() {
			got := playURL(provider.GoFile, true, none, "https://cdn/x.mp4", NewProxy(""))
			So(got, ShouldEqual, "https://cdn/x.mp4")
		})
	})
}
