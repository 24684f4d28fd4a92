// Package automatic runs unattended games, one engine move after
// another until the board dies, and aggregates what happened.
package automatic

import (
	"fmt"
	"time"

	"github.com/nqmartin/sedici/config"
	"github.com/nqmartin/sedici/engine"
	"github.com/nqmartin/sedici/game"
	"github.com/nqmartin/sedici/movegen"
)

const csvHeader = "game,score,maxtile,turns,seconds,nodes\n"

// GameResult is one finished game's line in the log.
type GameResult struct {
	Index    int
	Score    int
	MaxTile  int
	Turns    int
	Nodes    int
	Duration time.Duration
}

func (res GameResult) csvLine() string {
	return fmt.Sprintf("%d,%d,%d,%d,%.3f,%d\n",
		res.Index, res.Score, res.MaxTile, res.Turns,
		res.Duration.Seconds(), res.Nodes)
}

// GameRunner drives full games on one engine. Each worker goroutine of
// an autoplay batch owns one runner.
type GameRunner struct {
	engine  *engine.Engine
	game    *game.Game
	cfg     *config.Config
	logchan chan string
}

// NewGameRunner instantiates and initializes a game runner.
func NewGameRunner(logchan chan string, cfg *config.Config) (*GameRunner, error) {
	e, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	return &GameRunner{engine: e, cfg: cfg, logchan: logchan}, nil
}

// PlayGame plays one game from the start to the end and returns its
// result. A zero seed draws a random one.
func (r *GameRunner) PlayGame(idx int, seed int64) GameResult {
	tstart := time.Now()
	if seed != 0 {
		r.game = game.NewGameWithSeed(seed)
	} else {
		r.game = game.NewGame()
	}

	nodes := 0
	for r.game.Playing() == game.StatePlaying {
		best, stats := r.engine.BestMoveWithStats(r.game.Board())
		nodes += stats.MovesEvaluated
		if best == movegen.DirectionNone {
			break
		}
		if err := r.game.PlayMove(best); err != nil {
			break
		}
	}

	res := GameResult{
		Index:    idx,
		Score:    r.game.Score(),
		MaxTile:  r.game.MaxTile(),
		Turns:    r.game.Turn(),
		Nodes:    nodes,
		Duration: time.Since(tstart),
	}
	if r.logchan != nil {
		r.logchan <- res.csvLine()
	}
	return res
}
