package expectimax

import (
	"math"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/nqmartin/sedici/movegen"
	"github.com/nqmartin/sedici/tiles"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func newSolver(t *testing.T) *Solver {
	t.Helper()
	s := &Solver{}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBestMoveIsAlwaysLegal(t *testing.T) {
	is := is.New(t)
	s := newSolver(t)

	boards := []tiles.Grid{
		{{2, 2, 0, 0}},
		{{2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 2}},
		{{2, 4, 8, 16}, {0, 2, 4, 8}, {0, 0, 2, 4}, {0, 0, 0, 2}},
		{{4, 2, 0, 0}, {16, 8, 0, 0}, {64, 32, 0, 0}, {256, 128, 0, 0}},
		{{1024, 1024, 0, 0}, {2, 4, 0, 0}},
		{{2, 4, 2, 4}, {4, 2, 4, 2}, {2, 4, 2, 4}, {4, 2, 4, 0}},
	}
	for _, g := range boards {
		b := tiles.Pack(g)
		best := s.BestMove(b)
		is.True(best != movegen.DirectionNone)
		is.True(movegen.Apply(best, b).Moved)
	}
}

func TestBestMoveDeadBoard(t *testing.T) {
	is := is.New(t)
	s := newSolver(t)

	b := tiles.Pack(tiles.Grid{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	})
	best, stats := s.BestMoveWithStats(b)
	is.Equal(best, movegen.DirectionNone)
	is.Equal(stats.MovesEvaluated, 0)
	is.Equal(stats.CacheSize, 0)
	is.Equal(stats.MaxDepthReached, 0)
	is.Equal(stats.BestValue, 0.0)
}

func TestBestMoveFullBoardSingleMergePair(t *testing.T) {
	is := is.New(t)
	s := newSolver(t)

	// Full board; the only adjacent equal pair is vertical, so only up
	// and down are legal.
	b := tiles.Pack(tiles.Grid{
		{2, 4, 8, 16},
		{16, 8, 4, 2},
		{4, 2, 16, 8},
		{4, 16, 32, 64},
	})
	best := s.BestMove(b)
	is.True(best == movegen.Up || best == movegen.Down)
}

func TestBestMoveWhenEveryMoveLoses(t *testing.T) {
	is := is.New(t)
	s := newSolver(t)

	// Down and left are the only legal moves, and each leaves a single
	// empty cell whose neighbors are neither 2 nor 4: whatever spawns
	// there, the position is dead. Both subtrees are worth exactly 0,
	// yet the search must still pick a legal move rather than resign.
	b := tiles.Pack(tiles.Grid{
		{8, 16, 8, 16},
		{32, 64, 32, 64},
		{8, 16, 8, 16},
		{0, 32, 64, 32},
	})
	best, stats := s.BestMoveWithStats(b)
	is.Equal(best, movegen.Down)
	is.Equal(stats.BestValue, 0.0)

	// Two chance nodes, one empty cell each, two spawns per cell, four
	// direction probes per spawn.
	is.Equal(stats.MovesEvaluated, 16)
	is.Equal(stats.CacheSize, 2)
	is.Equal(stats.MaxDepthReached, 0)
	is.Equal(stats.DepthLimit, 3)
}

func TestDepthLimitPolicy(t *testing.T) {
	is := is.New(t)
	s := newSolver(t)

	is.Equal(s.DepthLimit(tiles.Pack(tiles.Grid{{2}})), 3)
	is.Equal(s.DepthLimit(tiles.Pack(tiles.Grid{{2, 4, 8, 16}})), 3)
	is.Equal(s.DepthLimit(tiles.Pack(tiles.Grid{
		{2, 4, 8, 16},
		{32, 64, 128, 256},
	})), 6)
	is.Equal(s.DepthLimit(tiles.Pack(tiles.Grid{
		{2, 4, 8, 16},
		{32, 64, 128, 256},
		{512, 1024, 2048, 4096},
		{8192, 16384, 32768, 2},
	})), 13)

	s.SetDepthPolicy(5, 2)
	is.Equal(s.DepthLimit(tiles.Pack(tiles.Grid{{2}})), 5)
}

func TestSearchReachesDepthLimit(t *testing.T) {
	is := is.New(t)
	s := newSolver(t)

	// Four distinct ranks, so the controller assigns the floor of 3.
	// The 90% spawn branches stay far above the probability threshold
	// at that depth, so some leaf sits exactly on the limit.
	b := tiles.Pack(tiles.Grid{
		{2, 4, 8, 16},
		{0, 2, 4, 8},
		{0, 0, 2, 4},
		{0, 0, 0, 2},
	})
	_, stats := s.BestMoveWithStats(b)
	is.Equal(stats.DepthLimit, 3)
	is.Equal(stats.MaxDepthReached, 3)
	is.True(stats.MovesEvaluated > 0)
	is.True(stats.CacheSize > 0)
}

func TestProbThresholdPrunes(t *testing.T) {
	is := is.New(t)
	s := newSolver(t)

	b := tiles.Pack(tiles.Grid{
		{2, 4, 8, 16},
		{0, 2, 4, 8},
		{0, 0, 2, 4},
		{0, 0, 0, 2},
	})
	_, full := s.BestMoveWithStats(b)

	// A threshold of 1 cuts every branch below the top chance nodes.
	s.SetProbThreshold(1.0)
	_, pruned := s.BestMoveWithStats(b)
	is.Equal(pruned.MaxDepthReached, 1)
	is.True(pruned.MovesEvaluated < full.MovesEvaluated)
}

func TestRepeatedSearchesAreIndependent(t *testing.T) {
	is := is.New(t)
	s := newSolver(t)

	b := tiles.Pack(tiles.Grid{
		{4, 2, 0, 0},
		{16, 8, 0, 0},
		{64, 32, 0, 0},
		{256, 128, 0, 0},
	})
	best1, stats1 := s.BestMoveWithStats(b)
	best2, stats2 := s.BestMoveWithStats(b)
	is.Equal(best1, best2)
	is.Equal(stats1.DepthLimit, stats2.DepthLimit)
	is.Equal(stats1.MovesEvaluated, stats2.MovesEvaluated)
	is.Equal(stats1.CacheHits, stats2.CacheHits)
	is.Equal(stats1.CacheSize, stats2.CacheSize)
	is.Equal(stats1.MaxDepthReached, stats2.MaxDepthReached)
}

func TestCacheAgreesWithColdSearch(t *testing.T) {
	is := is.New(t)
	cached := newSolver(t)
	cold := newSolver(t)
	cold.SetCacheDepthLimit(0)

	boards := []tiles.Grid{
		{{2, 4, 8, 16}, {0, 2, 4, 8}, {0, 0, 2, 4}, {0, 0, 0, 2}},
		{{4, 2, 0, 0}, {16, 8, 0, 0}, {64, 32, 0, 0}, {256, 128, 0, 0}},
		{{1024, 512, 16, 4}, {8, 32, 8, 2}, {2, 4, 0, 0}, {0, 0, 0, 0}},
	}
	for _, g := range boards {
		b := tiles.Pack(g)
		bestCached, statsCached := cached.BestMoveWithStats(b)
		bestCold, statsCold := cold.BestMoveWithStats(b)
		is.Equal(bestCached, bestCold)
		is.Equal(statsCold.CacheSize, 0)
		is.Equal(statsCold.CacheHits, 0)

		// Cached values round-trip through float32 storage, and a hit may
		// substitute an entry computed with a deeper remaining budget, so
		// agreement is approximate rather than exact.
		diff := math.Abs(statsCached.BestValue - statsCold.BestValue)
		is.True(diff < 1e-3*statsCold.BestValue)
	}
}
