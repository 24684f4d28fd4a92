// Package expectimax finds the best move for a position by searching the
// alternating game tree: move nodes where the player picks the best of
// the four directions, and chance nodes where the game spawns a 2 (90%)
// or a 4 (10%) on a uniformly chosen empty cell.
//
// The search is depth-limited, prunes chance branches whose cumulative
// probability falls below a threshold, and memoizes chance-node values in
// a per-request transposition table. One request runs on one goroutine;
// callers wanting parallelism run one Solver per goroutine.
package expectimax

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nqmartin/sedici/equity"
	"github.com/nqmartin/sedici/movegen"
	"github.com/nqmartin/sedici/tiles"
)

// Search defaults. The probability threshold and cache depth limit match
// the values the evaluation weights were tuned with.
const (
	DefaultProbThreshold   = 0.0001
	DefaultCacheDepthLimit = 15
	DefaultMinDepth        = 3
	DefaultDistinctOffset  = 2
)

// SearchStats describes one completed request. BestValue is the
// expectimax value of the returned direction's subtree; it is 0 when
// the position has no legal move.
type SearchStats struct {
	DepthLimit      int
	MovesEvaluated  int
	CacheHits       int
	CacheSize       int
	MaxDepthReached int
	BestValue       float64
	TimeElapsed     time.Duration
}

// Solver is the expectimax engine. Configure it with Init and the
// setters, then call BestMove/BestMoveWithStats once per position. A
// Solver is not safe for concurrent use.
type Solver struct {
	probThreshold   float64
	cacheDepthLimit int
	minDepth        int
	distinctOffset  int

	ttable *TranspositionTable
}

// evalState carries the mutable bookkeeping of a single request through
// the mutual recursion. It is never shared across requests; the four
// top-level move subtrees of one request share it, and with it the
// transposition table.
type evalState struct {
	tt          *TranspositionTable
	curDepth    int
	maxDepth    int
	cacheHits   int
	movesEvaled int
	depthLimit  int
}

// Init initializes the solver and its transposition table, building the
// move and evaluation tables if nothing has built them yet.
func (s *Solver) Init() error {
	movegen.Init()
	equity.EnsureInit()
	s.probThreshold = DefaultProbThreshold
	s.cacheDepthLimit = DefaultCacheDepthLimit
	s.minDepth = DefaultMinDepth
	s.distinctOffset = DefaultDistinctOffset
	s.ttable = &TranspositionTable{}
	s.ttable.Reset(DefaultTableFraction)
	return nil
}

// SetProbThreshold sets the cumulative-probability cutoff below which
// chance branches are not expanded.
func (s *Solver) SetProbThreshold(threshold float64) {
	s.probThreshold = threshold
}

// SetCacheDepthLimit sets the depth at and beyond which chance nodes are
// no longer memoized.
func (s *Solver) SetCacheDepthLimit(limit int) {
	if limit > 255 {
		limit = 255
	}
	s.cacheDepthLimit = limit
}

// SetDepthPolicy sets the depth-limit controller: the limit is
// max(minDepth, distinct tile ranks - distinctOffset).
func (s *Solver) SetDepthPolicy(minDepth, distinctOffset int) {
	s.minDepth = minDepth
	s.distinctOffset = distinctOffset
}

// SetTableFraction resizes the transposition table to a fraction of
// physical memory.
func (s *Solver) SetTableFraction(fraction float64) {
	s.ttable.Reset(fraction)
}

// DepthLimit returns the lookahead budget the controller assigns to a
// board. Boards with more distinct tile ranks warrant deeper searches.
func (s *Solver) DepthLimit(b tiles.Board) int {
	limit := b.DistinctRanks() - s.distinctOffset
	if limit < s.minDepth {
		limit = s.minDepth
	}
	return limit
}

// BestMove returns the best direction for the board, or DirectionNone if
// no direction changes it.
func (s *Solver) BestMove(b tiles.Board) movegen.Direction {
	best, _ := s.BestMoveWithStats(b)
	return best
}

// BestMoveWithStats runs one full search request. All four top-level
// subtrees share one evalState and one freshly cleared transposition
// table. A direction wins only by a strictly greater subtree value, so
// ties go to the earlier direction in enumeration order; the found flag,
// not a score offset, distinguishes "no legal move" from low values.
func (s *Solver) BestMoveWithStats(b tiles.Board) (movegen.Direction, SearchStats) {
	tstart := time.Now()
	movegen.Init()
	equity.EnsureInit()
	s.ttable.Clear()

	state := &evalState{
		tt:         s.ttable,
		depthLimit: s.DepthLimit(b),
	}

	best := movegen.DirectionNone
	bestValue := 0.0
	found := false
	for _, d := range movegen.Directions {
		res := movegen.Apply(d, b)
		if !res.Moved {
			continue
		}
		value := s.chanceNode(state, res.Board, 1.0)
		if !found || value > bestValue {
			found = true
			bestValue = value
			best = d
		}
	}

	stats := SearchStats{
		DepthLimit:      state.depthLimit,
		MovesEvaluated:  state.movesEvaled,
		CacheHits:       state.cacheHits,
		CacheSize:       s.ttable.Entries(),
		MaxDepthReached: state.maxDepth,
		BestValue:       bestValue,
		TimeElapsed:     time.Since(tstart),
	}
	log.Debug().
		Str("best-move", best.String()).
		Float64("best-value", stats.BestValue).
		Int("depth-limit", stats.DepthLimit).
		Int("moves-evaled", stats.MovesEvaluated).
		Int("cache-hits", stats.CacheHits).
		Int("cache-size", stats.CacheSize).
		Int("max-depth", stats.MaxDepthReached).
		Uint64("ttable-created", s.ttable.created).
		Uint64("ttable-lookups", s.ttable.lookups).
		Uint64("ttable-hits", s.ttable.hits).
		Uint64("ttable-t2collisions", s.ttable.t2collisions).
		Float64("time-elapsed-sec", stats.TimeElapsed.Seconds()).
		Msg("search-returning")
	return best, stats
}

// chanceNode scores the expectation over all spawns of the board. cprob
// is the cumulative probability of reaching this node; once it drops
// below the threshold, or the depth budget is spent, the node collapses
// to its static evaluation.
func (s *Solver) chanceNode(state *evalState, b tiles.Board, cprob float64) float64 {
	if cprob < s.probThreshold || state.curDepth >= state.depthLimit {
		if state.curDepth > state.maxDepth {
			state.maxDepth = state.curDepth
		}
		return equity.HeuristicValue(b)
	}

	if state.curDepth < s.cacheDepthLimit {
		if entry, ok := state.tt.lookup(b); ok {
			// Usable only if the entry was computed with at least as
			// much remaining lookahead as we have here.
			if int(entry.depth) <= state.curDepth {
				state.cacheHits++
				return float64(entry.value)
			}
		}
	}

	numOpen := b.CountEmpty()
	cprob /= float64(numOpen)

	res := 0.0
	tmp := uint64(b)
	tile2 := tiles.Board(1)
	for tile2 != 0 {
		if tmp&0xF == 0 {
			res += s.moveNode(state, b|tile2, cprob*0.9) * 0.9
			res += s.moveNode(state, b|(tile2<<1), cprob*0.1) * 0.1
		}
		tmp >>= 4
		tile2 <<= 4
	}
	res /= float64(numOpen)

	if state.curDepth < s.cacheDepthLimit {
		state.tt.store(b, float32(res), uint8(state.curDepth))
	}
	return res
}

// moveNode scores the player's turn: the max over the directions that
// change the board. 0 doubles as the dead-position value; any position
// with a legal continuation evaluates far above it.
func (s *Solver) moveNode(state *evalState, b tiles.Board, cprob float64) float64 {
	best := 0.0
	state.curDepth++
	for _, d := range movegen.Directions {
		res := movegen.Apply(d, b)
		state.movesEvaled++
		if res.Moved {
			if value := s.chanceNode(state, res.Board, cprob); value > best {
				best = value
			}
		}
	}
	state.curDepth--
	return best
}
