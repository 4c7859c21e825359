package playback

import (
	"context"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidsan-cli/vidsan/codec"
)

// scriptedSink is a playback sink that settles each load attempt according
// to a per-URL script. URLs absent from the failure script load fine.
type scriptedSink struct {
	assigned []string
	failures map[string]SinkError
	silent   bool

	ready chan struct{}
	errs  chan SinkError

	position float64
	duration mo.Option[float64]
	buffered []Interval
	seeks    []float64
	onSeek   func(target float64) float64
}

func newScriptedSink() *scriptedSink {
	return &scriptedSink{
		failures: make(map[string]SinkError),
		duration: mo.None[float64](),
	}
}

func (s *scriptedSink) Assign(url string) {
	s.assigned = append(s.assigned, url)
	s.ready = make(chan struct{}, 1)
	s.errs = make(chan SinkError, 1)
}

func (s *scriptedSink) BeginLoad() {
	if s.silent {
		return
	}
	current := s.assigned[len(s.assigned)-1]
	if sinkErr, fails := s.failures[current]; fails {
		s.errs <- sinkErr
		return
	}
	s.ready <- struct{}{}
}

func (s *scriptedSink) Ready() <-chan struct{}       { return s.ready }
func (s *scriptedSink) Errors() <-chan SinkError     { return s.errs }
func (s *scriptedSink) CanPlay(string) bool          { return true }
func (s *scriptedSink) Position() float64            { return s.position }
func (s *scriptedSink) Duration() mo.Option[float64] { return s.duration }
func (s *scriptedSink) Buffered() []Interval         { return s.buffered }

func (s *scriptedSink) Seek(target float64) error {
	s.seeks = append(s.seeks, target)
	if s.onSeek != nil {
		s.position = s.onSeek(target)
	} else {
		s.position = target
	}
	return nil
}

func testDescriptor(proxy Proxy) *MediaDescriptor {
	direct := "https://cdn.example.com/video.mp4"
	return &MediaDescriptor{
		OriginalInput: "https://gofile.io/d/abc",
		DirectURL:     direct,
		PlayURL:       proxy.Wrap(direct),
		NeedsResolve:  true,
	}
}

func TestCandidates(t *testing.T) {
	Convey("Candidate chain construction", t, func() {
		proxy := NewProxy("https://proxy.example.com")

		Convey("Orders candidates from primary to proxied original", func() {
			chain := Candidates(testDescriptor(proxy), proxy)

			So(chain, ShouldHaveLength, 3)
			So(chain[0].Label, ShouldEqual, LabelPrimary)
			So(chain[1].Label, ShouldEqual, LabelDirect)
			So(chain[1].URL, ShouldEqual, "https://cdn.example.com/video.mp4")
			So(chain[2].Label, ShouldEqual, LabelProxyOriginal)
		})

		Convey("Never contains a duplicate URL", func() {
			descriptors := []*MediaDescriptor{
				testDescriptor(proxy),
				{OriginalInput: "https://a.com/v.mp4", DirectURL: "https://a.com/v.mp4", PlayURL: "https://a.com/v.mp4"},
				{OriginalInput: "https://a.com/v", DirectURL: "https://b.com/v.mp4", PlayURL: proxy.Wrap("https://b.com/v.mp4")},
			}

			for _, media := range descriptors {
				seen := make(map[string]bool)
				for _, candidate := range Candidates(media, proxy) {
					So(seen[candidate.URL], ShouldBeFalse)
					seen[candidate.URL] = true
				}
			}
		})

		Convey("Collapses to a single candidate when the proxy is disabled", func() {
			disabled := NewProxy("")
			media := &MediaDescriptor{
				OriginalInput: "https://a.com/v.mp4",
				DirectURL:     "https://a.com/v.mp4",
				PlayURL:       "https://a.com/v.mp4",
			}

			chain := Candidates(media, disabled)
			So(chain, ShouldHaveLength, 1)
			So(chain[0].Label, ShouldEqual, LabelPrimary)
		})
	})
}

func TestEngineRun(t *testing.T) {
	Convey("Fallback chain engine", t, func() {
		proxy := NewProxy("https://proxy.example.com")
		media := testDescriptor(proxy)

		Convey("Halts at the first successful candidate", func() {
			sink := newScriptedSink()
			engine := NewEngine(sink, proxy, time.Second)

			outcome := engine.Run(context.Background(), media)

			So(outcome.Success, ShouldBeTrue)
			So(outcome.TriedIndex, ShouldEqual, 0)
			So(outcome.Label, ShouldEqual, LabelPrimary)
			So(outcome.UsedURL, ShouldEqual, media.PlayURL)
			So(sink.assigned, ShouldHaveLength, 1)
		})

		Convey("Advances past failing candidates and stops on success", func() {
			sink := newScriptedSink()
			sink.failures[media.PlayURL] = SinkError{Code: "MEDIA_ERR_NETWORK", Message: "load failed"}
			engine := NewEngine(sink, proxy, time.Second)

			outcome := engine.Run(context.Background(), media)

			So(outcome.Success, ShouldBeTrue)
			So(outcome.TriedIndex, ShouldEqual, 1)
			So(outcome.Label, ShouldEqual, LabelDirect)
			So(sink.assigned, ShouldHaveLength, 2)
		})

		Convey("Exhaustion aggregates every failure into one diagnostic", func() {
			sink := newScriptedSink()
			sink.silent = true
			engine := NewEngine(sink, proxy, 10*time.Millisecond)

			media.Advice = mo.Some(codec.Advice{
				CanPlay: false,
				Warning: "AVI/FLV/WMV containers are not supported. Use an external player or download the file.",
			})

			outcome := engine.Run(context.Background(), media)

			So(outcome.Success, ShouldBeFalse)
			So(outcome.TriedIndex, ShouldEqual, 2)
			So(outcome.Error, ShouldContainSubstring, "AVI/FLV/WMV")
			So(outcome.Error, ShouldContainSubstring, string(LabelPrimary))
			So(outcome.Error, ShouldContainSubstring, string(LabelDirect))
			So(outcome.Error, ShouldContainSubstring, string(LabelProxyOriginal))
			So(outcome.Error, ShouldContainSubstring, "external player")
			So(sink.assigned, ShouldHaveLength, 3)
		})

		Convey("A timed-out attempt reports the missing readiness signal", func() {
			sink := newScriptedSink()
			sink.silent = true
			engine := NewEngine(sink, proxy, 10*time.Millisecond)

			outcome := engine.Run(context.Background(), &MediaDescriptor{
				OriginalInput: "https://a.com/v.mp4",
				DirectURL:     "https://a.com/v.mp4",
				PlayURL:       "https://a.com/v.mp4",
			})

			So(outcome.Success, ShouldBeFalse)
			So(outcome.Error, ShouldContainSubstring, "no readiness signal")
		})

		Convey("Cancellation stops the chain early", func() {
			sink := newScriptedSink()
			sink.silent = true
			engine := NewEngine(sink, proxy, time.Minute)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			outcome := engine.Run(ctx, media)

			So(outcome.Success, ShouldBeFalse)
			So(sink.assigned, ShouldHaveLength, 1)
		})
	})
}
