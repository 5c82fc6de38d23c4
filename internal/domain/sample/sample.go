// Package sample provides reference and synthetic score matrices for demos,
// simulations and tests.
package sample

import (
	"math/rand"

	"github.com/oplozada/estadistica/internal/domain/types"
)

// judges holds 15 raters scoring 9 objects on an integer scale.
var judges = [][]float64{
	{7, 9, 8, 8, 6, 9, 7, 8, 5},
	{6, 9, 8, 7, 5, 9, 8, 7, 4},
	{5, 9, 8, 7, 6, 8, 9, 7, 4},
	{9, 8, 7, 6, 5, 9, 7, 8, 6},
	{6, 9, 8, 7, 6, 8, 8, 9, 5},
	{7, 8, 9, 6, 5, 8, 8, 8, 6},
	{6, 5, 8, 6, 4, 8, 9, 9, 7},
	{4, 5, 9, 6, 6, 8, 9, 8, 7},
	{7, 5, 8, 5, 6, 8, 8, 9, 6},
	{8, 9, 7, 6, 5, 9, 7, 8, 6},
	{9, 8, 7, 6, 5, 8, 9, 7, 5},
	{7, 8, 9, 6, 5, 9, 8, 7, 6},
	{5, 7, 8, 9, 6, 8, 7, 9, 8},
	{4, 9, 8, 7, 5, 9, 8, 8, 9},
	{6, 8, 9, 7, 5, 8, 8, 9, 7},
}

// DemoAlpha is the significance level the reference example is reported at.
const DemoAlpha = 0.01

// Judges returns a fresh copy of the 15 × 9 reference matrix.
func Judges() []types.ScoreRow {
	rows := make([]types.ScoreRow, len(judges))
	for i, r := range judges {
		rows[i] = append(types.ScoreRow(nil), r...)
	}
	return rows
}

// Random returns raters independent score rows, each a random permutation
// of 1..objects drawn from rng.
func Random(rng *rand.Rand, raters, objects int) []types.ScoreRow {
	rows := make([]types.ScoreRow, raters)
	for i := range rows {
		row := make(types.ScoreRow, objects)
		for j, p := range rng.Perm(objects) {
			row[j] = float64(p + 1)
		}
		rows[i] = row
	}
	return rows
}
