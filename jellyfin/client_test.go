package jellyfin

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewClient(t *testing.T) {
	Convey("NewClient", t, func() {
		Convey("Accepts an absolute URL", func() {
			c, err := NewClient("https://server:8096")
			So(err, ShouldBeNil)
			So(c.BaseURL().String(), ShouldEqual, "https://server:8096")
		})

		Convey("Normalizes trailing slashes", func() {
			c, err := NewClient("https://server:8096/")
			So(err, ShouldBeNil)
			So(c.BaseURL().String(), ShouldEqual, "https://server:8096")
		})

		Convey("Rejects an empty URL", func() {
			_, err := NewClient("  ")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects a relative URL", func() {
			_, err := NewClient("server:8096/media")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFullURL(t *testing.T) {
	Convey("FullURL", t, func() {
		c, err := NewClient("https://server:8096")
		So(err, ShouldBeNil)

		Convey("Resolves a server-relative path", func() {
			u, err := c.FullURL("/Videos/abc/master.m3u8")
			So(err, ShouldBeNil)
			So(u.String(), ShouldEqual, "https://server:8096/Videos/abc/master.m3u8")
		})

		Convey("Preserves the query string", func() {
			u, err := c.FullURL("/Videos/abc/master.m3u8?deviceId=x")
			So(err, ShouldBeNil)
			So(u.Query().Get("deviceId"), ShouldEqual, "x")
		})

		Convey("Rejects an empty reference", func() {
			_, err := c.FullURL("")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestVideoStreamURL(t *testing.T) {
	Convey("VideoStreamURL", t, func() {
		c, err := NewClient("https://server:8096")
		So(err, ShouldBeNil)
		c.Token = "token123"

		Convey("Builds a static stream URL with session correlation", func() {
			u, err := c.VideoStreamURL("item1", "source1", "session1", "etag1")
			So(err, ShouldBeNil)
			So(u.Path, ShouldEqual, "/Videos/item1/stream")

			q := u.Query()
			So(q.Get("static"), ShouldEqual, "true")
			So(q.Get("mediaSourceId"), ShouldEqual, "source1")
			So(q.Get("playSessionId"), ShouldEqual, "session1")
			So(q.Get("tag"), ShouldEqual, "etag1")
			So(q.Get("api_key"), ShouldEqual, "token123")
		})

		Convey("Omits the tag when no etag is known", func() {
			u, err := c.VideoStreamURL("item1", "source1", "session1", "")
			So(err, ShouldBeNil)
			So(u.Query().Has("tag"), ShouldBeFalse)
		})

		Convey("Fails without an item id", func() {
			_, err := c.VideoStreamURL("", "source1", "session1", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestItemHelpers(t *testing.T) {
	Convey("Item helpers", t, func() {
		Convey("DisplayTitle qualifies episodes", func() {
			episode := Item{
				Type:              ItemEpisode,
				Name:              "Dulcinea",
				SeriesName:        "The Expanse",
				ParentIndexNumber: 1,
				IndexNumber:       1,
			}
			So(episode.DisplayTitle(), ShouldEqual, "The Expanse — S01E01 — Dulcinea")
		})

		Convey("DisplayTitle leaves movies untouched", func() {
			So(Item{Type: ItemMovie, Name: "Dune"}.DisplayTitle(), ShouldEqual, "Dune")
		})

		Convey("Tick conversions round-trip", func() {
			So(TicksToSeconds(SecondsToTicks(93.5)), ShouldAlmostEqual, 93.5, 0.0001)
			So(TicksToSeconds(10_000_000), ShouldEqual, 1.0)
		})

		Convey("StreamsOfKind filters by type", func() {
			source := MediaSource{MediaStreams: []MediaStream{
				{Index: 0, Type: StreamVideo},
				{Index: 1, Type: StreamAudio},
				{Index: 2, Type: StreamAudio},
				{Index: 3, Type: StreamSubtitle},
			}}
			So(len(source.StreamsOfKind(StreamAudio)), ShouldEqual, 2)
			So(len(source.StreamsOfKind(StreamVideo)), ShouldEqual, 1)
			So(len(source.StreamsOfKind(StreamSubtitle)), ShouldEqual, 1)
		})
	})
}
