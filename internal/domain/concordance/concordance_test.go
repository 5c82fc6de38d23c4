package concordance_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/oplozada/estadistica/internal/domain/concordance"
	"github.com/oplozada/estadistica/internal/domain/ranking"
	"github.com/oplozada/estadistica/internal/domain/sample"
	"github.com/oplozada/estadistica/internal/domain/types"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-6

func adjustAll(rows []types.ScoreRow) []types.AdjustedRow {
	m, err := ranking.AdjustAll(rows)
	if err != nil {
		panic(err)
	}
	return m
}

func TestEvaluate_ReferenceMatrix(t *testing.T) {
	Convey("Given the 15 × 9 reference matrix", t, func() {
		matrix := adjustAll(sample.Judges())

		Convey("When evaluating at alpha 0.01", func() {
			res, err := concordance.Evaluate(matrix, 0.01)

			Convey("Then the statistics match the reference values", func() {
				So(err, ShouldBeNil)
				So(res.N, ShouldEqual, 9)
				So(res.Raters, ShouldEqual, 15)
				So(res.DegreesOfFreedom, ShouldEqual, 8)
				So(res.W, ShouldAlmostEqual, 0.501644418649642, tolerance)
				So(res.K, ShouldAlmostEqual, 60.19733023795705, tolerance)
				So(res.Critical, ShouldAlmostEqual, 20.090235029663212, tolerance)
				So(math.Abs(res.PValue-4.2634747185753145e-10)/4.2634747185753145e-10, ShouldBeLessThan, tolerance)
				So(res.SDR, ShouldAlmostEqual, 6482.5, tolerance)
				So(res.TieCorrection, ShouldEqual, 462)
				So(res.Alpha, ShouldEqual, 0.01)
				So(res.Concordant, ShouldBeTrue)
			})

			Convey("And the rank sums follow the object order", func() {
				want := []float64{93.5, 58.5, 52.5, 94.5, 122, 42, 56.5, 52, 103.5}
				So(cmp.Diff(want, res.RankSums, cmpopts.EquateApprox(0, 1e-9)), ShouldBeEmpty)
			})
		})

		Convey("When evaluating at alpha 0.05", func() {
			res, err := concordance.Evaluate(matrix, 0.05)

			Convey("Then only the critical value changes", func() {
				So(err, ShouldBeNil)
				So(res.W, ShouldAlmostEqual, 0.501644418649642, tolerance)
				So(res.Critical, ShouldAlmostEqual, 15.507313055865447, tolerance)
			})
		})

		Convey("When the raters are reordered", func() {
			base, err := concordance.Evaluate(matrix, 0.01)
			So(err, ShouldBeNil)

			shuffled := append([]types.AdjustedRow(nil), matrix...)
			rand.New(rand.NewSource(3)).Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			res, err := concordance.Evaluate(shuffled, 0.01)

			Convey("Then W, K and the verdict are unchanged", func() {
				So(err, ShouldBeNil)
				So(res.W, ShouldAlmostEqual, base.W, 1e-12)
				So(res.K, ShouldAlmostEqual, base.K, 1e-9)
				So(res.Concordant, ShouldEqual, base.Concordant)
			})
		})
	})
}

func TestEvaluate_Agreement(t *testing.T) {
	Convey("Given raters in perfect agreement without ties", t, func() {
		rows := []types.ScoreRow{{1, 2, 3, 4, 5}, {1, 2, 3, 4, 5}, {1, 2, 3, 4, 5}, {1, 2, 3, 4, 5}}
		res, err := concordance.Evaluate(adjustAll(rows), 0.05)

		Convey("Then W is exactly 1", func() {
			So(err, ShouldBeNil)
			So(res.W, ShouldEqual, 1.0)
			So(res.K, ShouldAlmostEqual, 16, tolerance)
			So(res.Critical, ShouldAlmostEqual, 9.48772903678115, tolerance)
			So(res.PValue, ShouldAlmostEqual, 0.003019163651122607, tolerance)
			So(res.Concordant, ShouldBeTrue)
		})
	})

	Convey("Given raters in perfect agreement with ties", t, func() {
		rows := []types.ScoreRow{{1, 1, 2, 3}, {1, 1, 2, 3}, {1, 1, 2, 3}}
		res, err := concordance.Evaluate(adjustAll(rows), 0.05)

		Convey("Then the tie correction keeps W at 1", func() {
			So(err, ShouldBeNil)
			So(res.W, ShouldAlmostEqual, 1.0, 1e-12)
			So(res.K, ShouldAlmostEqual, 9, tolerance)
			So(res.TieCorrection, ShouldEqual, 18)
		})
	})

	Convey("Given two raters in exactly opposite order", t, func() {
		rows := []types.ScoreRow{{1, 2, 3, 4, 5}, {5, 4, 3, 2, 1}}
		res, err := concordance.Evaluate(adjustAll(rows), 0.05)

		Convey("Then W is 0 and the null hypothesis stands", func() {
			So(err, ShouldBeNil)
			So(res.W, ShouldAlmostEqual, 0, 1e-12)
			So(res.PValue, ShouldAlmostEqual, 1, 1e-12)
			So(res.Concordant, ShouldBeFalse)
		})
	})

	Convey("Given three raters with partial agreement", t, func() {
		rows := []types.ScoreRow{{1, 2, 3, 4}, {2, 1, 3, 4}, {1, 3, 2, 4}}
		res, err := concordance.Evaluate(adjustAll(rows), 0.05)

		Convey("Then K falls just short of the critical value", func() {
			So(err, ShouldBeNil)
			So(res.W, ShouldAlmostEqual, 7.0/9.0, 1e-12)
			So(res.K, ShouldAlmostEqual, 7, tolerance)
			So(res.Critical, ShouldAlmostEqual, 7.814727903251178, tolerance)
			So(res.PValue, ShouldAlmostEqual, 0.07189777249646513, tolerance)
			So(res.Concordant, ShouldBeFalse)
		})
	})

	Convey("Given many independent random raters", t, func() {
		rows := sample.Random(rand.New(rand.NewSource(11)), 300, 8)
		res, err := concordance.Evaluate(adjustAll(rows), 0.05)

		Convey("Then W is close to 0", func() {
			So(err, ShouldBeNil)
			So(res.W, ShouldBeLessThan, 0.05)
			So(res.W, ShouldBeGreaterThanOrEqualTo, 0)
		})
	})
}

func TestEvaluate_InvalidInput(t *testing.T) {
	valid := adjustAll([]types.ScoreRow{{1, 2, 3}, {3, 2, 1}})

	Convey("Given malformed matrices", t, func() {
		Convey("When there are no rows", func() {
			_, err := concordance.Evaluate(nil, 0.05)
			So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When there is a single object column", func() {
			_, err := concordance.Evaluate([]types.AdjustedRow{{1, 0}, {1, 0}}, 0.05)
			So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When rows have different lengths", func() {
			matrix := []types.AdjustedRow{valid[0], {1, 2, 0}}
			_, err := concordance.Evaluate(matrix, 0.05)

			Convey("Then the offending row is named", func() {
				var ie *types.InputError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Row, ShouldEqual, 2)
			})
		})

		Convey("When a rank is NaN", func() {
			matrix := []types.AdjustedRow{valid[0], {1, math.NaN(), 3, 0}}
			_, err := concordance.Evaluate(matrix, 0.05)

			var ie *types.InputError
			So(errors.As(err, &ie), ShouldBeTrue)
			So(ie.Row, ShouldEqual, 2)
			So(ie.Position, ShouldEqual, 2)
		})

		Convey("When alpha is outside (0,1)", func() {
			for _, alpha := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
				_, err := concordance.Evaluate(valid, alpha)
				So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
			}
		})

		Convey("When every rater ties every object", func() {
			matrix := adjustAll([]types.ScoreRow{{4, 4, 4}, {2, 2, 2}})
			_, err := concordance.Evaluate(matrix, 0.05)

			Convey("Then the zero denominator is reported instead of NaN", func() {
				So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "degenerate")
			})
		})
	})
}

func TestEvaluateScores(t *testing.T) {
	Convey("Given raw scores", t, func() {
		rows := sample.Judges()

		Convey("Then the ranking direction does not change the statistics", func() {
			desc, err := concordance.EvaluateScores(rows, 0.01)
			So(err, ShouldBeNil)
			asc, err := concordance.EvaluateScores(rows, 0.01, ranking.WithOrder(ranking.Ascending))
			So(err, ShouldBeNil)
			So(asc.W, ShouldAlmostEqual, desc.W, 1e-12)
			So(asc.K, ShouldAlmostEqual, desc.K, 1e-9)
			So(asc.RankSums[0], ShouldAlmostEqual, 56.5, 1e-9)
		})

		Convey("When a row has an invalid score", func() {
			rows[4][2] = math.Inf(1)
			_, err := concordance.EvaluateScores(rows, 0.01)

			var ie *types.InputError
			So(errors.As(err, &ie), ShouldBeTrue)
			So(ie.Row, ShouldEqual, 5)
			So(ie.Position, ShouldEqual, 3)
		})

		Convey("When there are no rows", func() {
			_, err := concordance.EvaluateScores(nil, 0.01)
			So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
		})
	})
}
