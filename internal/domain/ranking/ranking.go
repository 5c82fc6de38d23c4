// Package ranking converts raw scores into tie-adjusted ranks.
//
// Tied values share the mean of the rank numbers they occupy (midranks) and
// each row carries the tie-correction term T = Σ(t³ − t) used by Kendall's W.
package ranking

import (
	"cmp"
	"slices"

	"github.com/oplozada/estadistica/internal/domain/types"
)

const opAdjust = "ranking.adjust"

// Adjust ranks one rater's scores. The result holds the N midranks in the
// original object order followed by the tie-correction term.
// The input row is not modified.
func Adjust(row types.ScoreRow, opts ...Option) (types.AdjustedRow, error) {
	s := settings{order: Descending}
	for _, opt := range opts {
		opt(&s)
	}

	if len(row) == 0 {
		return nil, types.Invalid(opAdjust, "empty score row")
	}
	if err := types.CheckFinite(opAdjust, 0, row); err != nil {
		return nil, err
	}

	// Original positions grouped by value.
	groups := make(map[float64][]int, len(row))
	for i, v := range row {
		groups[v] = append(groups[v], i)
	}

	distinct := make([]float64, 0, len(groups))
	for v := range groups {
		distinct = append(distinct, v)
	}
	if s.order == Ascending {
		slices.Sort(distinct)
	} else {
		slices.SortFunc(distinct, func(a, b float64) int { return cmp.Compare(b, a) })
	}

	out := make(types.AdjustedRow, len(row)+1)
	var tie float64
	next := 1 // first rank number not yet taken
	for _, v := range distinct {
		positions := groups[v]
		t := len(positions)
		mid := float64(next+next+t-1) / 2
		for _, p := range positions {
			out[p] = mid
		}
		tf := float64(t)
		tie += tf*tf*tf - tf
		next += t
	}
	out[len(row)] = tie

	return out, nil
}

// AdjustAll adjusts every row in order. Errors name the 1-based row.
func AdjustAll(rows []types.ScoreRow, opts ...Option) ([]types.AdjustedRow, error) {
	out := make([]types.AdjustedRow, len(rows))
	for i, row := range rows {
		adjusted, err := Adjust(row, opts...)
		if err != nil {
			return nil, types.AtRow(err, i+1)
		}
		out[i] = adjusted
	}
	return out, nil
}
