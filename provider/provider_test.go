package provider

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDetect(t *testing.T) {
	Convey("Detect", t, func() {
		Convey("Known hosts map to their service tag", func() {
			cases := map[string]Tag{
				"https://gofile.io/d/AbCdEf":              GoFile,
				"https://drive.google.com/file/d/xyz":     GoogleDrive,
				"https://mega.nz/file/abc":                Mega,
				"https://pixeldrain.com/u/abc123":         PixelDrain,
				"https://www.mediafire.com/file/f/v.mkv":  MediaFire,
				"https://1fichier.com/?xyz":               OneFichier,
				"https://streamtape.com/v/abc":            StreamTape,
				"https://strtape.cloud/v/abc":             StreamTape,
				"https://dood.watch/e/abc":                DoodStream,
				"https://filemoon.sx/e/abc":               FileMoon,
				"https://streamwish.to/e/abc":             StreamWish,
				"https://www.mp4upload.com/embed-abc":     Mp4Upload,
				"https://mixdrop.co/e/abc":                MixDrop,
				"https://vidoza.net/embed-abc.html":       Vidoza,
				"https://voe.sx/e/abc":                    Voe,
				"https://upstream.to/embed-abc.html":      Upstream,
				"https://filelions.to/v/abc":              FileLions,
				"https://vtube.to/embed-abc.html":         VTube,
				"https://hexload.com/abc":                 HexUpload,
				"https://racaty.io/abc":                   Racaty,
				"https://usersdrive.com/abc":              UsersDrive,
				"https://buzzheavier.com/f/abc":           Buzzheavier,
				"https://krakenfiles.com/view/abc/file":   KrakenFiles,
				"https://send.cm/d/abc":                   SendCM,
				"https://megaup.net/abc/file.mkv":         MegaUp,
				"https://drive.usercontent.google.com/dl": GoogleDrive,
			}

			for input, want := range cases {
				So(Detect(input), ShouldEqual, want)
			}
		})

		Convey("Unknown hosts classify by URL shape", func() {
			So(Detect("https://cdn.example.com/live/master.m3u8"), ShouldEqual, HLS)
			So(Detect("https://cdn.example.com/live/master.m3u8?token=1"), ShouldEqual, HLS)
			So(Detect("https://cdn.example.com/vod/manifest.mpd"), ShouldEqual, DASH)
			So(Detect("https://cdn.example.com/files/movie.mp4"), ShouldEqual, Direct)
		})

		Convey("Malformed URLs fall through to the shape check", func() {
			So(Detect("://not a url.m3u8"), ShouldEqual, HLS)
			So(Detect("://not a url"), ShouldEqual, Direct)
		})

		Convey("Detection is deterministic and total", func() {
			for _, rule := range Rules() {
				for _, host := range rule.Hosts {
					url := "https://" + host + "/x"
					So(Detect(url), ShouldEqual, Detect(url))
					So(Detect(url), ShouldNotBeEmpty)
				}
			}
		})
	})
}

func TestNeedsResolve(t *testing.T) {
	Convey("NeedsResolve", t, func() {
		So(NeedsResolve("https://mega.nz/file/abc"), ShouldBeTrue)
		So(NeedsResolve("https://pixeldrain.com/u/abc123"), ShouldBeTrue)
		So(NeedsResolve("https://cdn.example.com/movie.mp4"), ShouldBeFalse)
		So(NeedsResolve("https://example.com/stream.m3u8"), ShouldBeFalse)
	})
}

func TestFileID(t *testing.T) {
	Convey("FileID", t, func() {
		Convey("Extracts the id from both known PixelDrain shapes", func() {
			id := FileID("https://pixeldrain.com/u/abc123")
			So(id.IsPresent(), ShouldBeTrue)
			So(id.MustGet(), ShouldEqual, "abc123")

			id = FileID("https://pixeldrain.com/api/file/xYz789")
			So(id.IsPresent(), ShouldBeTrue)
			So(id.MustGet(), ShouldEqual, "xYz789")
		})

		Convey("Absent for hosts without a stable id shape", func() {
			So(FileID("https://mega.nz/file/abc").IsAbsent(), ShouldBeTrue)
			So(FileID("https://cdn.example.com/movie.mp4").IsAbsent(), ShouldBeTrue)
		})
	})
}
