package playback

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestProgress(t *testing.T) {
	Convey("Progress", t, func() {
		var seeks []float64
		progress := NewProgress(func(seconds float64) {
			seeks = append(seeks, seconds)
		})

		Convey("Backend ticks flow through while not scrubbing", func() {
			progress.Update(10, 100)
			So(progress.Displayed(), ShouldEqual, 10)

			progress.Update(11, 100)
			So(progress.Displayed(), ShouldEqual, 11)
			So(progress.Duration(), ShouldEqual, 100)
		})

		Convey("Reset abandons an active scrub and clears all positions", func() {
			progress.Update(10, 100)
			progress.BeginScrub()
			progress.ScrubTo(50)

			progress.Reset()
			So(progress.IsScrubbing(), ShouldBeFalse)
			So(progress.Displayed(), ShouldEqual, 0)
			So(progress.Raw(), ShouldEqual, 0)
			So(progress.Duration(), ShouldEqual, 0)
			So(seeks, ShouldBeEmpty)

			progress.Update(5, 100)
			So(progress.Displayed(), ShouldEqual, 5)
		})

		Convey("Scrubbing isolates the displayed position from ticks", func() {
			progress.Update(10, 100)
			progress.BeginScrub()
			progress.ScrubTo(50)

			for _, tick := range []float64{11, 12, 13, 14} {
				progress.Update(tick, 100)
			}

			So(progress.Displayed(), ShouldEqual, 50)
			So(progress.Raw(), ShouldEqual, 14)
			So(progress.IsScrubbing(), ShouldBeTrue)
		})

		Convey("Ending a scrub issues exactly one seek with the final value", func() {
			progress.Update(10, 100)
			progress.BeginScrub()
			progress.ScrubTo(30)
			progress.ScrubTo(60)
			progress.ScrubTo(45)
			progress.EndScrub()

			So(seeks, ShouldResemble, []float64{45})
			So(progress.Displayed(), ShouldEqual, 45)
			So(progress.IsScrubbing(), ShouldBeFalse)

			Convey("And live ticks resume afterwards", func() {
				progress.Update(46, 100)
				So(progress.Displayed(), ShouldEqual, 46)
			})
		})

		Convey("Ending a scrub twice does not seek twice", func() {
			progress.Update(10, 100)
			progress.BeginScrub()
			progress.ScrubTo(45)
			progress.EndScrub()
			progress.EndScrub()

			So(seeks, ShouldHaveLength, 1)
		})

		Convey("Cancelling a scrub snaps back without seeking", func() {
			progress.Update(10, 100)
			progress.BeginScrub()
			progress.ScrubTo(80)
			progress.Update(12, 100)
			progress.CancelScrub()

			So(seeks, ShouldBeEmpty)
			So(progress.Displayed(), ShouldEqual, 12)
		})

		Convey("Non-finite ticks never change the displayed position", func() {
			progress.Update(10, 100)

			progress.Update(math.NaN(), 100)
			So(progress.Displayed(), ShouldEqual, 10)

			progress.Update(math.Inf(1), 100)
			So(progress.Displayed(), ShouldEqual, 10)

			progress.Update(11, math.NaN())
			So(progress.Displayed(), ShouldEqual, 10)
			So(progress.Duration(), ShouldEqual, 100)
		})

		Convey("Non-finite scrub targets are discarded", func() {
			progress.Update(10, 100)
			progress.BeginScrub()
			progress.ScrubTo(math.NaN())
			So(progress.Displayed(), ShouldEqual, 10)
		})

		Convey("Scrub positions clamp to the known duration", func() {
			progress.Update(10, 100)
			progress.BeginScrub()

			progress.ScrubTo(500)
			So(progress.Displayed(), ShouldEqual, 100)

			progress.ScrubTo(-5)
			So(progress.Displayed(), ShouldEqual, 0)
		})

		Convey("Fraction normalizes against duration", func() {
			So(progress.Fraction(), ShouldEqual, 0)

			progress.Update(25, 100)
			So(progress.Fraction(), ShouldEqual, 0.25)

			progress.BeginScrub()
			progress.ScrubToFraction(0.5)
			So(progress.Displayed(), ShouldEqual, 50)
		})

		Convey("Relative scrubbing shifts from the frozen position", func() {
			progress.Update(40, 100)
			progress.BeginScrub()
			progress.ScrubBy(10)
			progress.ScrubBy(10)
			So(progress.Displayed(), ShouldEqual, 60)

			progress.ScrubBy(-30)
			So(progress.Displayed(), ShouldEqual, 30)
		})
	})
}
