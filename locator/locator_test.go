package locator

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidsan-cli/vidsan/provider"
)

func TestClassify(t *testing.T) {
	Convey("Classify", t, func() {
		Convey("Rejects empty and whitespace-only input", func() {
			for _, input := range []string{"", "   ", "\t\n"} {
				_, err := Classify(input)
				So(err, ShouldEqual, ErrEmptyInput)
			}
		})

		Convey("Recognizes torrent locators", func() {
			Convey("magnet links", func() {
				d, err := Classify("magnet:?xt=urn:btih:deadbeef&dn=Some+Movie")
				So(err, ShouldBeNil)
				So(d.Kind, ShouldEqual, KindTorrent)
				So(d.TorrentID, ShouldEqual, "magnet:?xt=urn:btih:deadbeef&dn=Some+Movie")
				So(d.Provider, ShouldEqual, provider.Torrent)
			})

			Convey("torrent file URLs, with or without query", func() {
				d, err := Classify("https://x.com/a.torrent")
				So(err, ShouldBeNil)
				So(d.Kind, ShouldEqual, KindTorrent)

				d, err = Classify("https://x.com/a.torrent?key=1#frag")
				So(err, ShouldBeNil)
				So(d.Kind, ShouldEqual, KindTorrent)
			})
		})

		Convey("Prefixes https:// when the scheme is missing", func() {
			d, err := Classify("example.com/video.mp4")
			So(err, ShouldBeNil)
			So(d.NormalizedURL, ShouldEqual, "https://example.com/video.mp4")
		})

		Convey("Leaves explicit schemes and blob handles untouched", func() {
			d, err := Classify("http://example.com/v.mp4")
			So(err, ShouldBeNil)
			So(d.NormalizedURL, ShouldEqual, "http://example.com/v.mp4")

			d, err = Classify("blob:local-handle")
			So(err, ShouldBeNil)
			So(d.NormalizedURL, ShouldEqual, "blob:local-handle")
		})

		Convey("Attributes the provider and extracts the cache id", func() {
			d, err := Classify("pixeldrain.com/u/abc123")
			So(err, ShouldBeNil)
			So(d.Provider, ShouldEqual, provider.PixelDrain)
			So(d.CacheID.IsPresent(), ShouldBeTrue)
			So(d.CacheID.MustGet(), ShouldEqual, "abc123")
		})

		Convey("Classification is pure", func() {
			a, _ := Classify("mega.nz/file/abc")
			b, _ := Classify("mega.nz/file/abc")
			So(a, ShouldResemble, b)
		})
	})
}

func TestTorrentDisplayName(t *testing.T) {
	Convey("TorrentDisplayName", t, func() {
		So(TorrentDisplayName("magnet:?xt=urn:btih:x&dn=Some+Movie"), ShouldEqual, "Some Movie")
		So(TorrentDisplayName("magnet:?xt=urn:btih:x"), ShouldEqual, "magnet:?xt=urn:btih:x")
		So(TorrentDisplayName("https://x.com/a.torrent"), ShouldEqual, "https://x.com/a.torrent")
	})
}
