package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidsan-cli/vidsan/playback"
)

func TestSanitizers(t *testing.T) {
	Convey("Media target sanitization", t, func() {
		Convey("Accepts http and https URLs", func() {
			got, err := sanitizeMediaTarget("https://cdn.example.com/v.mp4")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "https://cdn.example.com/v.mp4")
		})

		Convey("Rejects flag-shaped input", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects control characters", func() {
			_, err := sanitizeMediaTarget("https://a.com/v.mp4\n--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects non-http schemes", func() {
			_, err := sanitizeMediaTarget("ftp://a.com/v.mp4")
			So(err, ShouldNotBeNil)
		})

		Convey("Cleans bare paths as local files", func() {
			got, err := sanitizeMediaTarget("./videos//movie.mkv")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "videos/movie.mkv")
		})
	})

	Convey("Title sanitization", t, func() {
		So(sanitizeTitle("A\nB\tC\x00"), ShouldEqual, "A B C")
	})
}

func TestHeaderFields(t *testing.T) {
	Convey("Header field rendering", t, func() {
		Convey("Is empty for no headers", func() {
			So(headerFields(nil), ShouldEqual, "")
		})

		Convey("Joins headers deterministically and escapes commas", func() {
			got := headerFields(map[string]string{
				"Referer": "https://example.com",
				"Cookie":  "a=1,b=2",
			})
			So(got, ShouldEqual, "Cookie: a=1%2Cb=2,Referer: https://example.com")
		})
	})
}

func TestMPVSinkState(t *testing.T) {
	Convey("MPV sink", t, func() {
		sink := &MPVSink{
			mpv:   NewMPV(),
			ready: make(chan struct{}, 1),
			errs:  make(chan playback.SinkError, 1),
		}

		Convey("Capability probes accept media mime classes only", func() {
			So(sink.CanPlay(`video/mp4; codecs="hvc1"`), ShouldBeTrue)
			So(sink.CanPlay(`video/x-matroska; codecs="avc1.42E01E"`), ShouldBeTrue)
			So(sink.CanPlay(`video/webm; codecs="vp9"`), ShouldBeTrue)
			So(sink.CanPlay("application/x-mpegurl"), ShouldBeTrue)
			So(sink.CanPlay("text/html"), ShouldBeFalse)
			So(sink.CanPlay(""), ShouldBeFalse)
		})

		Convey("Events fold into position, duration, and buffer state", func() {
			sink.onEvent("time-pos", 12.5)
			sink.onEvent("duration", 3600.0)
			sink.onEvent("demuxer-cache-time", 42.0)

			So(sink.Position(), ShouldEqual, 12.5)
			d, ok := sink.Duration().Get()
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, 3600)
			So(sink.Buffered(), ShouldResemble, []playback.Interval{{Start: 12.5, End: 42}})
		})

		Convey("Readiness events settle the ready channel exactly once", func() {
			sink.onEvent("file-loaded", map[string]interface{}{"event": "file-loaded"})
			sink.onEvent("playback-restart", map[string]interface{}{"event": "playback-restart"})

			So(len(sink.ready), ShouldEqual, 1)
		})

		Convey("Only error-reason end-file events become sink errors", func() {
			sink.onEvent("end-file", map[string]interface{}{"reason": "eof"})
			So(len(sink.errs), ShouldEqual, 0)

			sink.onEvent("end-file", map[string]interface{}{"reason": "error", "file_error": "unrecognized format"})
			So(len(sink.errs), ShouldEqual, 1)

			sinkErr := <-sink.errs
			So(sinkErr.Message, ShouldEqual, "unrecognized format")
		})

		Convey("Assign resets state and channels between attempts", func() {
			sink.onEvent("time-pos", 12.5)
			sink.onEvent("file-loaded", nil)

			sink.Assign("https://cdn/v2.mp4")

			So(sink.Position(), ShouldEqual, 0)
			So(sink.Duration().IsAbsent(), ShouldBeTrue)
			So(len(sink.Ready()), ShouldEqual, 0)
		})
	})
}
