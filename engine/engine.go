// Package engine bundles the move tables, the evaluator, and the
// expectimax search behind one handle configured from a Config. The
// shell, the autoplayer, and the command-line tools all go through it.
package engine

import (
	"github.com/nqmartin/sedici/config"
	"github.com/nqmartin/sedici/equity"
	"github.com/nqmartin/sedici/expectimax"
	"github.com/nqmartin/sedici/movegen"
	"github.com/nqmartin/sedici/tiles"
)

// Engine owns one solver. Like the solver, it serves one request at a
// time; analysis across goroutines wants one Engine per goroutine.
type Engine struct {
	cfg        *config.Config
	solver     *expectimax.Solver
	ttFraction float64
}

// New builds an engine from cfg and applies its settings. A nil cfg
// loads all defaults.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = &config.Config{}
		if err := cfg.Load(nil); err != nil {
			return nil, err
		}
	}
	s := &expectimax.Solver{}
	if err := s.Init(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, solver: s, ttFraction: expectimax.DefaultTableFraction}
	e.Reload()
	return e, nil
}

// Reload re-reads the settings that can change mid-session: the solver
// knobs and the evaluation weights. The transposition table is resized
// only when its memory fraction actually changed.
func (e *Engine) Reload() {
	equity.Init(e.cfg.Weights())
	e.solver.SetProbThreshold(e.cfg.GetFloat64(config.KeyProbThreshold))
	e.solver.SetCacheDepthLimit(e.cfg.GetInt(config.KeyCacheDepthLimit))
	e.solver.SetDepthPolicy(
		e.cfg.GetInt(config.KeyMinDepth),
		e.cfg.GetInt(config.KeyDistinctOffset))
	if f := e.cfg.GetFloat64(config.KeyTTableMemFraction); f != e.ttFraction {
		e.solver.SetTableFraction(f)
		e.ttFraction = f
	}
}

// Config returns the settings the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// BestMove returns the best direction for the board, or DirectionNone
// if nothing moves.
func (e *Engine) BestMove(b tiles.Board) movegen.Direction {
	return e.solver.BestMove(b)
}

// BestMoveWithStats runs one search request and reports its statistics.
func (e *Engine) BestMoveWithStats(b tiles.Board) (movegen.Direction, expectimax.SearchStats) {
	return e.solver.BestMoveWithStats(b)
}

// ApplyMove slides and merges the board in the given direction, without
// spawning a tile.
func (e *Engine) ApplyMove(d movegen.Direction, b tiles.Board) movegen.MoveResult {
	return movegen.Apply(d, b)
}

// ScoreBoard returns the score the board would show had every spawn
// been a 2.
func (e *Engine) ScoreBoard(b tiles.Board) int {
	return int(equity.GameScore(b))
}

// HeuristicScore returns the evaluator's static value of the board.
func (e *Engine) HeuristicScore(b tiles.Board) float64 {
	return equity.HeuristicValue(b)
}

// MaxTile returns the largest tile face on the board, or 0 when empty.
func (e *Engine) MaxTile(b tiles.Board) int {
	r := b.MaxRank()
	if r == 0 {
		return 0
	}
	return 1 << uint(r)
}

// CountEmpty returns the number of empty cells.
func (e *Engine) CountEmpty(b tiles.Board) int {
	return b.CountEmpty()
}
