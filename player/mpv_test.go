package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Accepts http and https URLs", func() {
			for _, u := range []string{
				"http://server:8096/Videos/abc/stream?static=true",
				"https://server/Videos/abc/master.m3u8",
			} {
				got, err := sanitizeMediaTarget(u)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, u)
			}
		})

		Convey("Cleans local file paths", func() {
			got, err := sanitizeMediaTarget("/media/shows/./episode.mkv")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "/media/shows/episode.mkv")
		})

		Convey("Rejects empty targets", func() {
			_, err := sanitizeMediaTarget("   ")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects flag-shaped targets", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects control characters", func() {
			_, err := sanitizeMediaTarget("http://server/a\nb")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects unsupported schemes", func() {
			_, err := sanitizeMediaTarget("ftp://server/video.mp4")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSanitizeTitle(t *testing.T) {
	Convey("sanitizeTitle", t, func() {
		So(sanitizeTitle("The Expanse — S01E01\n"), ShouldEqual, "The Expanse — S01E01")
		So(sanitizeTitle("a\tb\x00c"), ShouldEqual, "a bc")
	})
}

func TestForName(t *testing.T) {
	Convey("ForName", t, func() {
		Convey("Defaults to mpv", func() {
			p, err := ForName("")
			So(err, ShouldBeNil)
			So(p, ShouldHaveSameTypeAs, &MPV{})
		})

		Convey("Resolves iina", func() {
			p, err := ForName("iina")
			So(err, ShouldBeNil)
			So(p, ShouldHaveSameTypeAs, &IINA{})
		})

		Convey("Rejects unknown backends", func() {
			_, err := ForName("realplayer")
			So(err, ShouldNotBeNil)
		})
	})
}
