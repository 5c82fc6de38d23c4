package types_test

import (
	"errors"
	"math"
	"testing"

	"github.com/oplozada/estadistica/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAdjustedRow(t *testing.T) {
	Convey("Given an adjusted row with three ranks and a tie term", t, func() {
		row := types.AdjustedRow{1, 2.5, 2.5, 6}

		Convey("Then it splits ranks from the tie correction", func() {
			So(row.Objects(), ShouldEqual, 3)
			So(row.Ranks(), ShouldResemble, []float64{1, 2.5, 2.5})
			So(row.TieCorrection(), ShouldEqual, 6)
		})
	})

	Convey("Given an empty adjusted row", t, func() {
		var row types.AdjustedRow

		Convey("Then the accessors return zero values", func() {
			So(row.Objects(), ShouldEqual, 0)
			So(row.Ranks(), ShouldBeNil)
			So(row.TieCorrection(), ShouldEqual, 0)
		})
	})
}

func TestInputError(t *testing.T) {
	Convey("Given an input error with a location", t, func() {
		err := error(&types.InputError{Op: "ranking.adjust", Row: 2, Position: 4, Reason: "value is not a finite number"})

		Convey("Then it unwraps to ErrInvalidInput", func() {
			So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("And its message names the row and position", func() {
			So(err.Error(), ShouldEqual, "ranking.adjust: invalid input: row 2: position 4: value is not a finite number")
		})
	})

	Convey("Given an input error without a row", t, func() {
		err := types.CheckFinite("ranking.adjust", 0, []float64{1, math.NaN()})

		Convey("When it is located at a row", func() {
			located := types.AtRow(err, 3)

			Convey("Then the row is recorded and the original is untouched", func() {
				var ie *types.InputError
				So(errors.As(located, &ie), ShouldBeTrue)
				So(ie.Row, ShouldEqual, 3)
				So(ie.Position, ShouldEqual, 2)
				So(err.Error(), ShouldNotContainSubstring, "row")
			})
		})
	})

	Convey("Given a non input error", t, func() {
		err := errors.New("boom")

		Convey("Then AtRow leaves it alone", func() {
			So(types.AtRow(err, 1), ShouldEqual, err)
		})
	})
}
