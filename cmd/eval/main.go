// eval prints what the engine thinks of one or more positions. Each
// argument is a position in board notation; with no arguments it reads
// one position per line from stdin. Opcodes (sc, t) are accepted and
// ignored.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nqmartin/sedici/config"
	"github.com/nqmartin/sedici/engine"
	"github.com/nqmartin/sedici/movegen"
	"github.com/nqmartin/sedici/notation"
	"github.com/nqmartin/sedici/tiles"
)

type moveReport struct {
	Move       string  `json:"move"`
	Arrow      string  `json:"arrow"`
	ScoreDelta int     `json:"score_delta"`
	Heuristic  float64 `json:"heuristic"`
	Best       bool    `json:"best"`
}

type positionReport struct {
	Position    string       `json:"position"`
	BoardScore  int          `json:"board_score"`
	Heuristic   float64      `json:"heuristic"`
	BestMove    string       `json:"best_move,omitempty"`
	BestArrow   string       `json:"best_arrow,omitempty"`
	Depth       int          `json:"depth"`
	MovesEvaled int          `json:"moves_evaled"`
	Cachehits   int          `json:"cachehits"`
	TimeMs      float64      `json:"time_ms"`
	Moves       []moveReport `json:"moves,omitempty"`
}

func main() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	jsonPtr := flag.Bool("json", false, "emit one JSON object per position")
	movesPtr := flag.Bool("moves", false, "also report every legal move's afterstate")
	flag.Parse()

	cfg := &config.Config{}
	if err := cfg.Load(nil); err != nil {
		panic(err)
	}
	e, err := engine.New(cfg)
	if err != nil {
		panic(err)
	}

	positions := flag.Args()
	if len(positions) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				positions = append(positions, line)
			}
		}
		if err := scanner.Err(); err != nil {
			panic(err)
		}
	}

	for _, pos := range positions {
		rep, err := evalPosition(e, pos, *movesPtr)
		if err != nil {
			panic(fmt.Sprintf("%s: %v", pos, err))
		}
		if *jsonPtr {
			enc, err := json.Marshal(rep)
			if err != nil {
				panic(err)
			}
			fmt.Println(string(enc))
		} else {
			printReport(rep)
		}
	}
}

func evalPosition(e *engine.Engine, pos string, withMoves bool) (*positionReport, error) {
	g, _, err := notation.Parse(pos)
	if err != nil {
		return nil, err
	}
	b := tiles.Pack(g)

	best, stats := e.BestMoveWithStats(b)
	rep := &positionReport{
		Position:    notation.String(b.Grid()),
		BoardScore:  e.ScoreBoard(b),
		Heuristic:   e.HeuristicScore(b),
		Depth:       stats.DepthLimit,
		MovesEvaled: stats.MovesEvaluated,
		Cachehits:   stats.CacheHits,
		TimeMs:      float64(stats.TimeElapsed.Microseconds()) / 1000.0,
	}
	if best != movegen.DirectionNone {
		rep.BestMove = best.String()
		rep.BestArrow = best.Arrow()
	}
	if withMoves {
		for _, d := range movegen.Directions {
			res := e.ApplyMove(d, b)
			if !res.Moved {
				continue
			}
			rep.Moves = append(rep.Moves, moveReport{
				Move:       d.String(),
				Arrow:      d.Arrow(),
				ScoreDelta: res.ScoreDelta,
				Heuristic:  e.HeuristicScore(res.Board),
				Best:       d == best,
			})
		}
	}
	return rep, nil
}

func printReport(rep *positionReport) {
	fmt.Printf("position: %s\n", rep.Position)
	fmt.Printf("board score: %d  heuristic: %.1f\n", rep.BoardScore, rep.Heuristic)
	if rep.BestMove == "" {
		fmt.Printf("no move changes this board\n\n")
		return
	}
	fmt.Printf("best move: %s %s  (depth %d, %d evals, %d cache hits, %.1f ms)\n",
		rep.BestMove, rep.BestArrow, rep.Depth, rep.MovesEvaled,
		rep.Cachehits, rep.TimeMs)
	for _, m := range rep.Moves {
		marker := " "
		if m.Best {
			marker = "*"
		}
		fmt.Printf("%s %-5s %s  +%d  heuristic %.1f\n",
			marker, m.Move, m.Arrow, m.ScoreDelta, m.Heuristic)
	}
	fmt.Println()
}
