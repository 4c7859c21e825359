package timeout

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	Convey("Run", t, func() {
		Convey("Returns the operation result before the deadline", func() {
			v, err := Run(context.Background(), time.Second, func(ctx context.Context) (int, error) {
				return 42, nil
			})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 42)
		})

		Convey("Cancels the operation context on expiry", func() {
			_, err := Run(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
				<-ctx.Done()
				return 0, ctx.Err()
			})
			So(Expired(err), ShouldBeTrue)
		})
	})
}

func TestRace(t *testing.T) {
	Convey("Race", t, func() {
		Convey("Discards the loser and returns deadline expiry", func() {
			started := time.Now()
			_, err := Race(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
				time.Sleep(5 * time.Second)
				return "late", nil
			})
			So(Expired(err), ShouldBeTrue)
			So(time.Since(started), ShouldBeLessThan, time.Second)
		})

		Convey("Returns the winner when it settles first", func() {
			v, err := Race(context.Background(), time.Second, func(ctx context.Context) (string, error) {
				return "fast", nil
			})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "fast")
		})
	})
}
