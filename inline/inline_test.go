package inline

import (
	"bytes"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vidra-cli/vidra/jellyfin"
)

func TestWriteJsonResponse(t *testing.T) {
	Convey("writeJson", t, func() {
		Convey("Should produce valid JSON for an empty result", func() {
			var buf bytes.Buffer
			opts := &Options{Query: "test", Json: true}
			err := writeJson(&buf, nil, opts)
			So(err, ShouldBeNil)

			var output Output
			err = json.Unmarshal(buf.Bytes(), &output)
			So(err, ShouldBeNil)
			So(output.Query, ShouldEqual, "test")
			So(output.Result, ShouldHaveLength, 0)
		})

		Convey("Should keep episodes nested under their series", func() {
			var buf bytes.Buffer
			opts := &Options{Query: "show", Json: true}
			entries := []*Entry{
				{
					Playable: Playable{Item: jellyfin.Item{ID: "s1", Name: "Show", Type: jellyfin.ItemSeries}},
					Episodes: []*Playable{
						{Item: jellyfin.Item{ID: "e1", Name: "Pilot", Type: jellyfin.ItemEpisode}},
					},
				},
			}

			So(writeJson(&buf, entries, opts), ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Result, ShouldHaveLength, 1)
			So(output.Result[0].Item.ID, ShouldEqual, "s1")
			So(output.Result[0].Episodes, ShouldHaveLength, 1)
			So(output.Result[0].Episodes[0].Item.Name, ShouldEqual, "Pilot")
		})
	})
}

func TestPlayables(t *testing.T) {
	Convey("Entry playables", t, func() {
		Convey("A movie is its own playable", func() {
			entry := &Entry{Playable: Playable{Item: jellyfin.Item{ID: "m1", Type: jellyfin.ItemMovie}}}

			playables := entry.playables()
			So(playables, ShouldHaveLength, 1)
			So(playables[0].Item.ID, ShouldEqual, "m1")

			// Mutations through the playable land on the entry.
			playables[0].StreamURL = "http://example.invalid/stream"
			So(entry.StreamURL, ShouldEqual, "http://example.invalid/stream")
		})

		Convey("A series exposes its episodes", func() {
			entry := &Entry{
				Playable: Playable{Item: jellyfin.Item{ID: "s1", Type: jellyfin.ItemSeries}},
				Episodes: []*Playable{
					{Item: jellyfin.Item{ID: "e1"}},
					{Item: jellyfin.Item{ID: "e2"}},
				},
			}

			playables := entry.playables()
			So(playables, ShouldHaveLength, 2)
			So(playables[1].Item.ID, ShouldEqual, "e2")
		})
	})
}
