package playback

import (
	"context"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeekGuard(t *testing.T) {
	Convey("Safe-seek guard", t, func() {
		sink := newScriptedSink()
		sink.duration = mo.Some(100.0)

		guard := &SeekGuard{sink: sink, rng: RangeUnknown, grace: time.Millisecond}

		Convey("Clamps the target to the known duration", func() {
			guard.rng = RangeSupported

			So(guard.Seek(context.Background(), 500), ShouldBeNil)
			So(sink.seeks, ShouldResemble, []float64{100})

			So(guard.Seek(context.Background(), -5), ShouldBeNil)
			So(sink.seeks[1], ShouldEqual, 0)
		})

		Convey("Seeks unconditionally on confirmed range support", func() {
			guard.rng = RangeSupported

			So(guard.Seek(context.Background(), 42), ShouldBeNil)
			So(sink.seeks, ShouldResemble, []float64{42})
		})

		Convey("Seeks unconditionally into a buffered interval", func() {
			sink.buffered = []Interval{{Start: 30, End: 60}}

			So(guard.Seek(context.Background(), 45), ShouldBeNil)
			So(sink.seeks, ShouldResemble, []float64{45})
		})

		Convey("Keeps a speculative seek that lands near the target", func() {
			// Sink follows the seek but settles a little short, within
			// tolerance.
			sink.onSeek = func(target float64) float64 { return target - 1.5 }

			So(guard.Seek(context.Background(), 50), ShouldBeNil)
			So(sink.seeks, ShouldResemble, []float64{50})
		})

		Convey("Reverts a speculative seek the server ignored", func() {
			sink.position = 12
			// A server without range support resets the stream to its
			// start regardless of the requested offset.
			sink.onSeek = func(target float64) float64 {
				if target == 12 {
					return 12
				}
				return 0
			}

			err := guard.Seek(context.Background(), 80)

			So(err, ShouldEqual, ErrSeekUnsupported)
			So(sink.seeks, ShouldResemble, []float64{80, 12})
			So(sink.position, ShouldEqual, 12)
		})

		Convey("Cancellation interrupts the grace wait", func() {
			guard.grace = time.Minute
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			So(guard.Seek(ctx, 80), ShouldEqual, context.Canceled)
		})
	})
}
