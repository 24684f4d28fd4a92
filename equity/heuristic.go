// Package equity evaluates boards. Two per-row tables are built from the
// evaluation weights: a heuristic table the search maximizes, and a score
// table reproducing the points the game awards. A row's heuristic rewards
// empty cells and adjacent merge candidates, and penalizes non-monotone
// tile arrangements and large tile sums.
//
// Callers build the tables through Init (the engine facade does this with
// its configured weights) before evaluating boards; the evaluation
// functions themselves stay lock-free for the search hot path.
package equity

import (
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nqmartin/sedici/tiles"
)

// Weights parameterizes the heuristic. The zero value is not useful; use
// DefaultWeights as a base.
type Weights struct {
	LostPenalty        float64
	EmptyWeight        float64
	MergesWeight       float64
	MonotonicityPower  float64
	MonotonicityWeight float64
	SumPower           float64
	SumWeight          float64
}

// DefaultWeights returns the reference evaluation constants.
func DefaultWeights() Weights {
	return Weights{
		LostPenalty:        200000.0,
		EmptyWeight:        270.0,
		MergesWeight:       700.0,
		MonotonicityPower:  4.0,
		MonotonicityWeight: 47.0,
		SumPower:           3.5,
		SumWeight:          11.0,
	}
}

var (
	heurTable  [65536]float64
	scoreTable [65536]float64

	tablesMu sync.Mutex
	built    bool
	current  Weights
)

// Init builds the evaluation tables for the given weights. Idempotent for
// unchanged weights; calling it again with different weights rebuilds.
// Not safe to call concurrently with evaluation.
func Init(w Weights) {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	if built && w == current {
		return
	}
	buildTables(w)
	built = true
	current = w
	log.Debug().Float64("lost-penalty", w.LostPenalty).
		Float64("empty-weight", w.EmptyWeight).
		Float64("merges-weight", w.MergesWeight).
		Float64("monotonicity-weight", w.MonotonicityWeight).
		Float64("sum-weight", w.SumWeight).
		Msg("built-evaluation-tables")
}

// EnsureInit builds the tables with DefaultWeights if nothing has built
// them yet. Tables already built with other weights are left alone.
func EnsureInit() {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	if built {
		return
	}
	buildTables(DefaultWeights())
	built = true
	current = DefaultWeights()
}

func buildTables(w Weights) {
	for row := 0; row < 65536; row++ {
		line := [4]int{
			row & 0xF,
			(row >> 4) & 0xF,
			(row >> 8) & 0xF,
			(row >> 12) & 0xF,
		}

		var score float64
		for i := 0; i < 4; i++ {
			rank := line[i]
			if rank >= 2 {
				// (rank-1) merges went into building this tile, each
				// awarding its resulting face value.
				score += float64(rank-1) * float64(int(1)<<uint(rank))
			}
		}
		scoreTable[row] = score

		var sum float64
		empty := 0
		merges := 0

		prev := 0
		counter := 0
		for i := 0; i < 4; i++ {
			rank := line[i]
			sum += math.Pow(float64(rank), w.SumPower)
			if rank == 0 {
				empty++
			} else {
				if prev == rank {
					counter++
				} else if counter > 0 {
					merges += 1 + counter
					counter = 0
				}
				prev = rank
			}
		}
		if counter > 0 {
			merges += 1 + counter
		}

		var monoLeft, monoRight float64
		for i := 1; i < 4; i++ {
			if line[i-1] > line[i] {
				monoLeft += math.Pow(float64(line[i-1]), w.MonotonicityPower) -
					math.Pow(float64(line[i]), w.MonotonicityPower)
			} else {
				monoRight += math.Pow(float64(line[i]), w.MonotonicityPower) -
					math.Pow(float64(line[i-1]), w.MonotonicityPower)
			}
		}

		heurTable[row] = w.LostPenalty +
			w.EmptyWeight*float64(empty) +
			w.MergesWeight*float64(merges) -
			w.MonotonicityWeight*math.Min(monoLeft, monoRight) -
			w.SumWeight*sum
	}
}

func rowSum(b tiles.Board, table *[65536]float64) float64 {
	return table[b.Row(0)] + table[b.Row(1)] + table[b.Row(2)] + table[b.Row(3)]
}

// HeuristicValue scores a board for the search: the row table summed over
// the four rows and the four columns. Each of the eight lines carries the
// LostPenalty baseline, which keeps reachable positions far above the
// search's dead-position sentinel of 0.
func HeuristicValue(b tiles.Board) float64 {
	return rowSum(b, &heurTable) + rowSum(b.Transpose(), &heurTable)
}

// GameScore returns the cumulative points the game would display for this
// board, assuming every spawned tile was a 2. Callers tracking 4-spawns
// subtract 4 per spawned 4.
func GameScore(b tiles.Board) float64 {
	return rowSum(b, &scoreTable)
}
