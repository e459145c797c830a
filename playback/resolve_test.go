package playback

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vidra-cli/vidra/jellyfin"
)

func mustClient(rawURL string) *jellyfin.Client {
	client, err := jellyfin.NewClient(rawURL)
	if err != nil {
		panic(err)
	}
	return client
}

func TestResolve(t *testing.T) {
	Convey("Resolve", t, func() {
		server := mustClient("https://server:8096")
		item := jellyfin.Item{ID: "abc", Name: "Dune", Type: jellyfin.ItemMovie, Etag: "etag1"}

		Convey("A transcoding URL wins over direct-play capability", func() {
			source := jellyfin.MediaSource{
				ID:                 "src1",
				TranscodingURL:     "/Videos/abc/master.m3u8",
				SupportsDirectPlay: true,
				Path:               "https://host/video.mp4",
			}

			session, err := Resolve(server, item, source, "ps1")
			So(err, ShouldBeNil)
			So(session.StreamType, ShouldEqual, StreamTranscode)
			So(session.URL.String(), ShouldEqual, "https://server:8096/Videos/abc/master.m3u8")
		})

		Convey("Direct play uses the source path when it is streamable", func() {
			source := jellyfin.MediaSource{
				ID:                 "src1",
				SupportsDirectPlay: true,
				Path:               "https://host/video.mp4",
			}

			session, err := Resolve(server, item, source, "ps1")
			So(err, ShouldBeNil)
			So(session.StreamType, ShouldEqual, StreamDirect)
			So(session.URL.String(), ShouldEqual, "https://host/video.mp4")
		})

		Convey("A server-local path falls back to a constructed stream URL", func() {
			source := jellyfin.MediaSource{
				ID:                 "src1",
				SupportsDirectPlay: true,
				Path:               "/mnt/media/video.mkv",
			}

			session, err := Resolve(server, item, source, "ps1")
			So(err, ShouldBeNil)
			So(session.StreamType, ShouldEqual, StreamDirect)
			So(session.URL.Path, ShouldEqual, "/Videos/abc/stream")

			q := session.URL.Query()
			So(q.Get("static"), ShouldEqual, "true")
			So(q.Get("mediaSourceId"), ShouldEqual, "src1")
			So(q.Get("playSessionId"), ShouldEqual, "ps1")
			So(q.Get("tag"), ShouldEqual, "etag1")
		})

		Convey("Without any usable branch the session cannot be built", func() {
			_, err := Resolve(server, jellyfin.Item{}, jellyfin.MediaSource{}, "ps1")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrCannotConstructURL), ShouldBeTrue)
		})

		Convey("Stream lists are filtered by kind", func() {
			source := jellyfin.MediaSource{
				ID:                 "src1",
				SupportsDirectPlay: true,
				Path:               "https://host/video.mp4",
				MediaStreams: []jellyfin.MediaStream{
					{Index: 0, Type: jellyfin.StreamVideo},
					{Index: 1, Type: jellyfin.StreamAudio},
					{Index: 2, Type: jellyfin.StreamSubtitle},
					{Index: 3, Type: jellyfin.StreamSubtitle},
				},
			}

			session, err := Resolve(server, item, source, "ps1")
			So(err, ShouldBeNil)
			So(session.VideoStreams, ShouldHaveLength, 1)
			So(session.AudioStreams, ShouldHaveLength, 1)
			So(session.SubtitleStreams, ShouldHaveLength, 2)
		})

		Convey("Selected stream indices default to the server's declared defaults", func() {
			audio, subtitle := 1, 3
			source := jellyfin.MediaSource{
				ID:                         "src1",
				SupportsDirectPlay:         true,
				Path:                       "https://host/video.mp4",
				DefaultAudioStreamIndex:    &audio,
				DefaultSubtitleStreamIndex: &subtitle,
			}

			session, err := Resolve(server, item, source, "ps1")
			So(err, ShouldBeNil)
			So(session.AudioStreamIndex, ShouldEqual, 1)
			So(session.SubtitleStreamIndex, ShouldEqual, 3)
		})

		Convey("Absent defaults resolve to no selection", func() {
			source := jellyfin.MediaSource{
				ID:                 "src1",
				SupportsDirectPlay: true,
				Path:               "https://host/video.mp4",
			}

			session, err := Resolve(server, item, source, "ps1")
			So(err, ShouldBeNil)
			So(session.AudioStreamIndex, ShouldEqual, -1)
			So(session.SubtitleStreamIndex, ShouldEqual, -1)
		})

		Convey("Resume position carries into the session", func() {
			resumed := item
			resumed.UserData = &jellyfin.UserData{
				PlaybackPositionTicks: 90 * jellyfin.TicksPerSecond,
			}
			source := jellyfin.MediaSource{
				ID:                 "src1",
				SupportsDirectPlay: true,
				Path:               "https://host/video.mp4",
			}

			session, err := Resolve(server, resumed, source, "ps1")
			So(err, ShouldBeNil)
			So(session.StartSeconds, ShouldEqual, 90)
		})
	})
}
