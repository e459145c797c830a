package inline

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vidra-cli/vidra/jellyfin"
)

func items(names ...string) []jellyfin.Item {
	out := make([]jellyfin.Item, len(names))
	for i, name := range names {
		out[i] = jellyfin.Item{ID: name, Name: name}
	}
	return out
}

func TestParseItemPicker(t *testing.T) {
	Convey("ParseItemPicker", t, func() {
		results := items("alpha", "beta", "gamma")

		Convey("first", func() {
			picker, err := ParseItemPicker("first", "")
			So(err, ShouldBeNil)
			So(picker(results).Name, ShouldEqual, "alpha")
			So(picker(nil), ShouldBeNil)
		})

		Convey("last", func() {
			picker, err := ParseItemPicker("last", "")
			So(err, ShouldBeNil)
			So(picker(results).Name, ShouldEqual, "gamma")
		})

		Convey("exact matches the given value", func() {
			picker, err := ParseItemPicker("exact", "beta")
			So(err, ShouldBeNil)
			So(picker(results).Name, ShouldEqual, "beta")

			picker, err = ParseItemPicker("exact", "missing")
			So(err, ShouldBeNil)
			So(picker(results), ShouldBeNil)
		})

		Convey("numeric index clamps to the result bounds", func() {
			picker, err := ParseItemPicker("1", "")
			So(err, ShouldBeNil)
			So(picker(results).Name, ShouldEqual, "beta")

			picker, err = ParseItemPicker("99", "")
			So(err, ShouldBeNil)
			So(picker(results).Name, ShouldEqual, "gamma")
		})

		Convey("unknown kinds are rejected", func() {
			_, err := ParseItemPicker("middle", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseEpisodesFilter(t *testing.T) {
	Convey("ParseEpisodesFilter", t, func() {
		episodes := items("Pilot", "The Middle", "Finale")

		apply := func(description string) []jellyfin.Item {
			filter, err := ParseEpisodesFilter(description)
			So(err, ShouldBeNil)
			filtered, err := filter(episodes)
			So(err, ShouldBeNil)
			return filtered
		}

		Convey("first, last, all", func() {
			So(apply("first"), ShouldHaveLength, 1)
			So(apply("first")[0].Name, ShouldEqual, "Pilot")
			So(apply("last")[0].Name, ShouldEqual, "Finale")
			So(apply("all"), ShouldHaveLength, 3)
		})

		Convey("range clamps to the episode count", func() {
			So(apply("0-1"), ShouldHaveLength, 2)
			So(apply("1-99"), ShouldHaveLength, 2)
			So(apply("1-99")[0].Name, ShouldEqual, "The Middle")
		})

		Convey("substring matches case-insensitively", func() {
			filtered := apply("@middle@")
			So(filtered, ShouldHaveLength, 1)
			So(filtered[0].Name, ShouldEqual, "The Middle")
		})

		Convey("single index", func() {
			So(apply("2")[0].Name, ShouldEqual, "Finale")
			So(apply("5"), ShouldHaveLength, 0)
		})

		Convey("garbage descriptions are rejected", func() {
			_, err := ParseEpisodesFilter("every other one")
			So(err, ShouldNotBeNil)
		})
	})
}
