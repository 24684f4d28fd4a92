// Package game runs complete playthroughs: the board, the score, the
// tile spawns, and the game-over state live here. The board mechanics
// come from movegen; game asks an engine when it wants a good move.
package game

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/nqmartin/sedici/engine"
	"github.com/nqmartin/sedici/equity"
	"github.com/nqmartin/sedici/movegen"
	"github.com/nqmartin/sedici/tiles"
)

// PlayState is the game lifecycle state.
type PlayState int

const (
	StatePlaying PlayState = iota
	StateGameOver
)

var (
	errGameOver    = errors.New("the game is over")
	errIllegalMove = errors.New("that direction does not change the board")
)

// Game is one playthrough. Not safe for concurrent use.
type Game struct {
	board   tiles.Board
	score   int
	turn    int
	fours   int
	playing PlayState
	rng     *frand.RNG
}

// NewGame starts a game with two spawned tiles and a random seed.
func NewGame() *Game {
	return newGame(frand.New())
}

// NewGameWithSeed starts a reproducible game. Two games with the same
// seed see identical spawns for identical move sequences.
func NewGameWithSeed(seed int64) *Game {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(seed))
	return newGame(frand.NewCustom(key[:], 1024, 12))
}

func newGame(rng *frand.RNG) *Game {
	g := &Game{rng: rng}
	g.spawnTile()
	g.spawnTile()
	return g
}

// NewFromPosition starts play from an arbitrary board, scoring it as if
// every spawn had been a 2.
func NewFromPosition(b tiles.Board) *Game {
	g := &Game{
		board: b,
		score: int(equity.GameScore(b)),
		rng:   frand.New(),
	}
	if !movegen.HasLegalMove(b) {
		g.playing = StateGameOver
	}
	return g
}

// spawnTile places a 2 (90%) or a 4 (10%) on a uniformly chosen empty
// cell. The caller guarantees at least one empty cell.
func (g *Game) spawnTile() {
	index := g.rng.Intn(g.board.CountEmpty())
	tile := tiles.Board(1)
	if g.rng.Intn(10) >= 9 {
		tile = 2
		g.fours++
	}
	tmp := uint64(g.board)
	for {
		for tmp&0xF != 0 {
			tmp >>= 4
			tile <<= 4
		}
		if index == 0 {
			break
		}
		index--
		tmp >>= 4
		tile <<= 4
	}
	g.board |= tile
}

// PlayMove applies the direction, accrues its merge score, spawns the
// next tile, and checks for the end of the game. Directions that do not
// change the board are an error.
func (g *Game) PlayMove(d movegen.Direction) error {
	if g.playing != StatePlaying {
		return errGameOver
	}
	res := movegen.Apply(d, g.board)
	if !res.Moved {
		return errIllegalMove
	}
	g.board = res.Board
	g.score += res.ScoreDelta
	g.turn++
	g.spawnTile()
	if !movegen.HasLegalMove(g.board) {
		g.playing = StateGameOver
		log.Debug().Int("turn", g.turn).Int("score", g.score).Msg("game-over")
	}
	return nil
}

// PlayBestMove asks the engine for the best direction and plays it,
// returning the direction it chose.
func (g *Game) PlayBestMove(e *engine.Engine) (movegen.Direction, error) {
	if g.playing != StatePlaying {
		return movegen.DirectionNone, errGameOver
	}
	best := e.BestMove(g.board)
	if best == movegen.DirectionNone {
		g.playing = StateGameOver
		return movegen.DirectionNone, errGameOver
	}
	return best, g.PlayMove(best)
}

// Board returns the current position.
func (g *Game) Board() tiles.Board {
	return g.board
}

// Score returns the points accrued so far. Spawned 4s award nothing,
// so this stays 4 per spawned 4 below the board's all-2s score.
func (g *Game) Score() int {
	return g.score
}

// Turn returns the number of moves played.
func (g *Game) Turn() int {
	return g.turn
}

// SpawnedFours returns how many of the spawns were 4s.
func (g *Game) SpawnedFours() int {
	return g.fours
}

// MaxTile returns the largest tile face on the board.
func (g *Game) MaxTile() int {
	r := g.board.MaxRank()
	if r == 0 {
		return 0
	}
	return 1 << uint(r)
}

// Playing returns the lifecycle state.
func (g *Game) Playing() PlayState {
	return g.playing
}

// SetBoard replaces the position mid-game and rechecks for the end of
// the game. Score and turn count are left alone.
func (g *Game) SetBoard(b tiles.Board) {
	g.board = b
	if movegen.HasLegalMove(b) {
		g.playing = StatePlaying
	} else {
		g.playing = StateGameOver
	}
}

// SetScore overrides the accrued score, for loaded positions that
// carry one.
func (g *Game) SetScore(score int) {
	g.score = score
}

// SetTurn overrides the move count.
func (g *Game) SetTurn(turn int) {
	g.turn = turn
}

func (g *Game) String() string {
	return fmt.Sprintf("turn %d score %d\n%s", g.turn, g.score, g.board)
}
