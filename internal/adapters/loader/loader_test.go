package loader_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/oplozada/estadistica/internal/adapters/loader"
	"github.com/oplozada/estadistica/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCSV(t *testing.T) {
	Convey("Given comma separated scores without a header", t, func() {
		input := "7,9,8\n6, 9 ,8\n\n5,9,8.5\n"

		Convey("Then each line becomes a rater row", func() {
			rows, err := loader.ParseCSV(strings.NewReader(input))
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, []types.ScoreRow{{7, 9, 8}, {6, 9, 8}, {5, 9, 8.5}})
		})
	})

	Convey("Given semicolon separated scores with a header and comments", t, func() {
		input := "a;b;c\n# pilot rater\n1;2;3\n3;2;1\n"

		Convey("Then the header and comments are skipped", func() {
			rows, err := loader.ParseCSV(strings.NewReader(input),
				loader.WithComma(';'), loader.WithHeader(true), loader.WithComment('#'))
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, []types.ScoreRow{{1, 2, 3}, {3, 2, 1}})
		})
	})

	Convey("Given ragged rows", t, func() {
		rows, err := loader.ParseCSV(strings.NewReader("1,2,3\n1,2\n"))

		Convey("Then they are returned as read", func() {
			So(err, ShouldBeNil)
			So(rows[1], ShouldHaveLength, 2)
		})
	})

	Convey("Given a non-numeric cell", t, func() {
		_, err := loader.ParseCSV(strings.NewReader("1,2,3\n4,five,6\n"))

		Convey("Then the row and column are reported", func() {
			So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
			var ie *types.InputError
			So(errors.As(err, &ie), ShouldBeTrue)
			So(ie.Row, ShouldEqual, 2)
			So(ie.Position, ShouldEqual, 2)
			So(ie.Reason, ShouldContainSubstring, "five")
		})
	})

	Convey("Given a blank or non-finite cell", t, func() {
		for _, input := range []string{"1,,3\n", "1,NaN,3\n", "1,+Inf,3\n"} {
			_, err := loader.ParseCSV(strings.NewReader(input))
			So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
		}
	})

	Convey("Given malformed quoting", t, func() {
		_, err := loader.ParseCSV(strings.NewReader("1,\"2,3\n"))
		So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
	})

	Convey("Given empty input", t, func() {
		_, err := loader.ParseCSV(strings.NewReader(""))
		So(errors.Is(err, loader.ErrEmpty), ShouldBeTrue)
		So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
	})
}

func TestFromValues(t *testing.T) {
	Convey("Given decoded JSON numbers", t, func() {
		var values [][]any
		So(json.Unmarshal([]byte(`[[1, 2.5, 3], [3, 2, 1]]`), &values), ShouldBeNil)

		Convey("Then they convert to score rows", func() {
			rows, err := loader.FromValues(values)
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, []types.ScoreRow{{1, 2.5, 3}, {3, 2, 1}})
		})
	})

	Convey("Given json.Number and integer cells", t, func() {
		rows, err := loader.FromValues([][]any{{json.Number("4"), 5, int64(6)}})
		So(err, ShouldBeNil)
		So(rows[0], ShouldResemble, types.ScoreRow{4, 5, 6})
	})

	Convey("Given a string cell", t, func() {
		var values [][]any
		So(json.Unmarshal([]byte(`[[1, 2, 3], [1, "x", 3]]`), &values), ShouldBeNil)
		_, err := loader.FromValues(values)

		Convey("Then the error locates the cell", func() {
			var ie *types.InputError
			So(errors.As(err, &ie), ShouldBeTrue)
			So(ie.Row, ShouldEqual, 2)
			So(ie.Position, ShouldEqual, 2)
		})
	})

	Convey("Given null and boolean cells", t, func() {
		_, err := loader.FromValues([][]any{{1, nil}})
		So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
		_, err = loader.FromValues([][]any{{true, 1}})
		So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
	})

	Convey("Given a single row", t, func() {
		row, err := loader.FromRow([]any{3.0, 1.0})
		So(err, ShouldBeNil)
		So(row, ShouldResemble, types.ScoreRow{3, 1})

		_, err = loader.FromRow([]any{3.0, "a"})
		var ie *types.InputError
		So(errors.As(err, &ie), ShouldBeTrue)
		So(ie.Row, ShouldEqual, 0)
		So(ie.Position, ShouldEqual, 2)
	})

	Convey("Given no rows", t, func() {
		_, err := loader.FromValues(nil)
		So(errors.Is(err, loader.ErrEmpty), ShouldBeTrue)
	})
}
