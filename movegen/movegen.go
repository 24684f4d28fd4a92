// Package movegen generates moves on the packed board. All sixteen-bit
// row patterns are collapsed once, up front, into lookup tables; applying
// a move is then four table probes XORed into the board. Tables are
// process-wide and immutable after Init.
package movegen

import (
	"errors"
	"sync"

	"github.com/nqmartin/sedici/tiles"
)

// Direction is one of the four moves. The numeric order is also the
// tie-break order used by the search.
type Direction int8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// DirectionNone marks "no legal move" results.
const DirectionNone Direction = -1

// Directions enumerates the moves in tie-break order.
var Directions = [4]Direction{Up, Down, Left, Right}

var directionNames = [4]string{"up", "down", "left", "right"}
var directionArrows = [4]string{"↑", "↓", "←", "→"}

var errBadDirection = errors.New("direction must be one of up/down/left/right")

func (d Direction) String() string {
	if d < Up || d > Right {
		return "none"
	}
	return directionNames[d]
}

// Arrow returns the display arrow for the direction.
func (d Direction) Arrow() string {
	if d < Up || d > Right {
		return ""
	}
	return directionArrows[d]
}

// ParseDirection accepts a direction name, its first letter, or an arrow.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up", "u", "↑":
		return Up, nil
	case "down", "d", "↓":
		return Down, nil
	case "left", "l", "←":
		return Left, nil
	case "right", "r", "→":
		return Right, nil
	}
	return DirectionNone, errBadDirection
}

// MoveResult is the outcome of applying one move. Moved is true exactly
// when the board changed; ScoreDelta is the sum of this move's merge
// scores (the points the game awards for it).
type MoveResult struct {
	Board      tiles.Board
	ScoreDelta int
	Moved      bool
}

var (
	rowLeftTable    [65536]tiles.Row
	rowRightTable   [65536]tiles.Row
	colUpTable      [65536]tiles.Board
	colDownTable    [65536]tiles.Board
	scoreLeftTable  [65536]uint32
	scoreRightTable [65536]uint32

	tablesOnce sync.Once
)

// Init builds the move tables. Idempotent; every entry point that needs
// the tables calls it, so explicit initialization is optional.
func Init() {
	tablesOnce.Do(buildTables)
}

func buildTables() {
	for row := 0; row < 65536; row++ {
		line := [4]int{
			row & 0xF,
			(row >> 4) & 0xF,
			(row >> 8) & 0xF,
			(row >> 12) & 0xF,
		}

		// Collapse the line toward index 0. Each tile merges at most
		// once per move.
		var merged uint32
		for i := 0; i < 3; i++ {
			j := i + 1
			for ; j < 4; j++ {
				if line[j] != 0 {
					break
				}
			}
			if j == 4 {
				break // no more tiles to the right
			}
			if line[i] == 0 {
				line[i] = line[j]
				line[j] = 0
				i-- // retry this entry
			} else if line[i] == line[j] {
				if line[i] != 0xF {
					line[i]++
					merged += 1 << uint(line[i])
				} else {
					// Two capped tiles collapse into one and score the
					// cap's face value.
					merged += 1 << tiles.MaxRank
				}
				line[j] = 0
			}
		}

		result := tiles.Row(line[0] | line[1]<<4 | line[2]<<8 | line[3]<<12)
		r := tiles.Row(row)
		revRow := r.Reverse()
		revResult := result.Reverse()

		rowLeftTable[r] = r ^ result
		rowRightTable[revRow] = revRow ^ revResult
		colUpTable[r] = r.AsColumn() ^ result.AsColumn()
		colDownTable[revRow] = revRow.AsColumn() ^ revResult.AsColumn()
		scoreLeftTable[r] = merged
		scoreRightTable[revRow] = merged
	}
}

// Apply executes one move. Apply(DirectionNone, b) is a no-op result.
func Apply(d Direction, b tiles.Board) MoveResult {
	Init()
	var nb tiles.Board
	var score uint32
	switch d {
	case Up:
		t := b.Transpose()
		nb = b ^
			colUpTable[t.Row(0)]<<0 ^
			colUpTable[t.Row(1)]<<4 ^
			colUpTable[t.Row(2)]<<8 ^
			colUpTable[t.Row(3)]<<12
		score = scoreLeftTable[t.Row(0)] + scoreLeftTable[t.Row(1)] +
			scoreLeftTable[t.Row(2)] + scoreLeftTable[t.Row(3)]
	case Down:
		t := b.Transpose()
		nb = b ^
			colDownTable[t.Row(0)]<<0 ^
			colDownTable[t.Row(1)]<<4 ^
			colDownTable[t.Row(2)]<<8 ^
			colDownTable[t.Row(3)]<<12
		score = scoreRightTable[t.Row(0)] + scoreRightTable[t.Row(1)] +
			scoreRightTable[t.Row(2)] + scoreRightTable[t.Row(3)]
	case Left:
		nb = b ^
			tiles.Board(rowLeftTable[b.Row(0)])<<0 ^
			tiles.Board(rowLeftTable[b.Row(1)])<<16 ^
			tiles.Board(rowLeftTable[b.Row(2)])<<32 ^
			tiles.Board(rowLeftTable[b.Row(3)])<<48
		score = scoreLeftTable[b.Row(0)] + scoreLeftTable[b.Row(1)] +
			scoreLeftTable[b.Row(2)] + scoreLeftTable[b.Row(3)]
	case Right:
		nb = b ^
			tiles.Board(rowRightTable[b.Row(0)])<<0 ^
			tiles.Board(rowRightTable[b.Row(1)])<<16 ^
			tiles.Board(rowRightTable[b.Row(2)])<<32 ^
			tiles.Board(rowRightTable[b.Row(3)])<<48
		score = scoreRightTable[b.Row(0)] + scoreRightTable[b.Row(1)] +
			scoreRightTable[b.Row(2)] + scoreRightTable[b.Row(3)]
	default:
		return MoveResult{Board: b}
	}
	return MoveResult{Board: nb, ScoreDelta: int(score), Moved: nb != b}
}

// HasLegalMove reports whether any direction changes the board.
func HasLegalMove(b tiles.Board) bool {
	for _, d := range Directions {
		if Apply(d, b).Moved {
			return true
		}
	}
	return false
}
