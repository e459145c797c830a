package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		Convey("Equal versions", func() {
			c, err := Compare("1.2.3", "1.2.3")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, 0)
		})

		Convey("Greater version", func() {
			c, err := Compare("1.3.0", "1.2.9")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, 1)
		})

		Convey("Lesser version", func() {
			c, err := Compare("0.9.0", "1.0.0")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, -1)
		})

		Convey("Handles v prefix", func() {
			c, err := Compare("v1.0.0", "1.0.0")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, 0)
		})

		Convey("Rejects malformed input", func() {
			_, err := Compare("not-a-version", "1.0.0")
			So(err, ShouldNotBeNil)
		})
	})
}
