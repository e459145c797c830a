package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vidra-cli/vidra/filesystem"
	"github.com/vidra-cli/vidra/jellyfin"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given an episode", t, func() {
		episode := jellyfin.Item{
			ID:                "ep1",
			Name:              "Dulcinea",
			Type:              jellyfin.ItemEpisode,
			SeriesName:        "The Expanse",
			SeriesID:          "series1",
			ParentIndexNumber: 1,
			IndexNumber:       1,
		}

		Convey("Saving records its progress", func() {
			So(Save(episode, 600, 20), ShouldBeNil)

			saved, err := Get()
			So(err, ShouldBeNil)
			So(saved, ShouldContainKey, "ep1")
			So(saved["ep1"].WatchedPercentage, ShouldEqual, 20)
			So(saved["ep1"].PositionSeconds, ShouldEqual, 600)
			So(saved["ep1"].SeriesName, ShouldEqual, "The Expanse")

			Convey("Progress moves forward on further watching", func() {
				So(Save(episode, 1800, 60), ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved["ep1"].WatchedPercentage, ShouldEqual, 60)
			})

			Convey("A re-watch from the start does not regress the percentage", func() {
				So(Save(episode, 2700, 90), ShouldBeNil)
				So(Save(episode, 60, 2), ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved["ep1"].WatchedPercentage, ShouldEqual, 90)
				// The live resume position still follows the latest watch.
				So(saved["ep1"].PositionSeconds, ShouldEqual, 60)
			})

			Convey("Removing deletes the record", func() {
				saved, err := Get()
				So(err, ShouldBeNil)

				So(Remove(saved["ep1"]), ShouldBeNil)

				saved, err = Get()
				So(err, ShouldBeNil)
				So(saved, ShouldNotContainKey, "ep1")
			})
		})
	})
}
