package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Given pairs of semantic versions", t, func() {
		Convey("Ordering is decided major first, then minor, then patch", func() {
			cases := []struct {
				a, b string
				want int
			}{
				{"1.0.0", "1.0.0", 0},
				{"v1.0.0", "1.0.0", 0},
				{"2.0.0", "1.9.9", 1},
				{"1.3.0", "1.2.9", 1},
				{"1.2.3", "1.2.4", -1},
				{"0.1.0", "0.2.0", -1},
			}

			for _, c := range cases {
				got, err := Compare(c.a, c.b)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, c.want)
			}
		})

		Convey("Malformed versions yield an error", func() {
			_, err := Compare("not-a-version", "1.0.0")
			So(err, ShouldNotBeNil)

			_, err = Compare("1.0.0", "1.x")
			So(err, ShouldNotBeNil)
		})
	})
}
