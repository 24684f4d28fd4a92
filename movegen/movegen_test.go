package movegen

import (
	"testing"

	"github.com/matryer/is"

	"github.com/nqmartin/sedici/tiles"
)

func mustGrid(g tiles.Grid) tiles.Board {
	return tiles.Pack(g)
}

func TestApplyLeftRight(t *testing.T) {
	is := is.New(t)
	b := mustGrid(tiles.Grid{{0, 0, 2, 2}})

	left := Apply(Left, b)
	is.True(left.Moved)
	is.Equal(left.Board, mustGrid(tiles.Grid{{4, 0, 0, 0}}))
	is.Equal(left.ScoreDelta, 4)

	right := Apply(Right, b)
	is.True(right.Moved)
	is.Equal(right.Board, mustGrid(tiles.Grid{{0, 0, 0, 4}}))
	is.Equal(right.ScoreDelta, 4)
}

func TestApplyUpDown(t *testing.T) {
	is := is.New(t)
	b := mustGrid(tiles.Grid{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{2, 0, 0, 4},
		{0, 0, 0, 4},
	})

	up := Apply(Up, b)
	is.True(up.Moved)
	is.Equal(up.Board, mustGrid(tiles.Grid{
		{4, 0, 0, 8},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))
	is.Equal(up.ScoreDelta, 12)

	down := Apply(Down, b)
	is.True(down.Moved)
	is.Equal(down.Board, mustGrid(tiles.Grid{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{4, 0, 0, 8},
	}))
	is.Equal(down.ScoreDelta, 12)
}

func TestMergeOncePerMove(t *testing.T) {
	is := is.New(t)

	// A merged tile does not merge again within the same move.
	res := Apply(Left, mustGrid(tiles.Grid{{2, 2, 4, 0}}))
	is.Equal(res.Board, mustGrid(tiles.Grid{{4, 4, 0, 0}}))
	is.Equal(res.ScoreDelta, 4)

	// Three equal tiles merge the pair nearest the move edge.
	res = Apply(Left, mustGrid(tiles.Grid{{2, 2, 2, 0}}))
	is.Equal(res.Board, mustGrid(tiles.Grid{{4, 2, 0, 0}}))
	is.Equal(res.ScoreDelta, 4)

	res = Apply(Right, mustGrid(tiles.Grid{{2, 2, 2, 0}}))
	is.Equal(res.Board, mustGrid(tiles.Grid{{0, 0, 2, 4}}))
	is.Equal(res.ScoreDelta, 4)

	// Two pairs merge in one move.
	res = Apply(Left, mustGrid(tiles.Grid{{2, 2, 4, 4}}))
	is.Equal(res.Board, mustGrid(tiles.Grid{{4, 8, 0, 0}}))
	is.Equal(res.ScoreDelta, 12)
}

func TestRankSaturation(t *testing.T) {
	is := is.New(t)
	b := mustGrid(tiles.Grid{{32768, 32768, 0, 0}})
	res := Apply(Left, b)
	is.True(res.Moved)
	is.Equal(res.Board, mustGrid(tiles.Grid{{32768, 0, 0, 0}}))
	is.Equal(res.ScoreDelta, 32768)
}

func TestMovedMatchesBoardChange(t *testing.T) {
	is := is.New(t)
	boards := []tiles.Board{
		0,
		mustGrid(tiles.Grid{{2, 4, 8, 16}, {16, 8, 4, 2}, {2, 4, 8, 16}, {16, 8, 4, 2}}),
		mustGrid(tiles.Grid{{2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}),
		mustGrid(tiles.Grid{{2, 4, 2, 4}, {4, 2, 4, 2}, {2, 4, 2, 4}, {4, 2, 4, 2}}),
		mustGrid(tiles.Grid{{2, 2, 4, 8}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}),
	}
	for _, b := range boards {
		for _, d := range Directions {
			res := Apply(d, b)
			is.Equal(res.Moved, res.Board != b)
		}
	}
}

func TestDeadBoardHasNoLegalMove(t *testing.T) {
	is := is.New(t)
	// Checkerboard with no equal neighbors.
	dead := mustGrid(tiles.Grid{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	})
	is.True(!HasLegalMove(dead))
	for _, d := range Directions {
		res := Apply(d, dead)
		is.True(!res.Moved)
		is.Equal(res.Board, dead)
		is.Equal(res.ScoreDelta, 0)
	}

	// One merge available vertically.
	alive := mustGrid(tiles.Grid{
		{2, 4, 2, 4},
		{2, 8, 4, 2},
		{4, 2, 8, 4},
		{8, 4, 2, 8},
	})
	is.True(HasLegalMove(alive))
	is.True(Apply(Up, alive).Moved)
	is.True(!Apply(Left, alive).Moved)
}

func TestApplyNone(t *testing.T) {
	is := is.New(t)
	b := mustGrid(tiles.Grid{{2, 4, 8, 16}})
	res := Apply(DirectionNone, b)
	is.Equal(res, MoveResult{Board: b})
}

func TestParseDirection(t *testing.T) {
	is := is.New(t)
	for _, tc := range []struct {
		in   string
		want Direction
	}{
		{"up", Up}, {"u", Up}, {"↑", Up},
		{"down", Down}, {"d", Down},
		{"left", Left}, {"l", Left},
		{"right", Right}, {"r", Right}, {"→", Right},
	} {
		d, err := ParseDirection(tc.in)
		is.NoErr(err)
		is.Equal(d, tc.want)
	}
	_, err := ParseDirection("sideways")
	is.True(err != nil)
}

func TestDirectionStrings(t *testing.T) {
	is := is.New(t)
	is.Equal(Up.String(), "up")
	is.Equal(Right.String(), "right")
	is.Equal(DirectionNone.String(), "none")
	is.Equal(Down.Arrow(), "↓")
	is.Equal(DirectionNone.Arrow(), "")
}
