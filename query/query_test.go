package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vidra-cli/vidra/filesystem"
	"github.com/vidra-cli/vidra/key"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.SearchShowQuerySuggestions, true)
}

func TestQuery(t *testing.T) {
	Convey("Query history", t, func() {
		Convey("Remember and suggest", func() {
			So(Remember("the expanse", 1), ShouldBeNil)

			// Invalidate the in-process suggestion cache before lookup
			suggestionCache = make(map[string][]*queryRecord)

			suggestion := Suggest("the exp")
			So(suggestion.IsPresent(), ShouldBeTrue)
			So(suggestion.MustGet(), ShouldEqual, "the expanse")
		})

		Convey("No suggestion for unknown prefix", func() {
			suggestionCache = make(map[string][]*queryRecord)
			So(Suggest("zzzzz").IsPresent(), ShouldBeFalse)
		})
	})
}
