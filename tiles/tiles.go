// Package tiles implements the packed board representation used by the
// move generator and the search. A full 4x4 position fits in a single
// uint64: one nibble per cell, holding the log2 of the tile's face value
// (so 2 -> 1, 4 -> 2, 2048 -> 11), with 0 meaning an empty cell.
//
// Layout, from the low bits up:
//
//	bits  0-15: row 0  (nibble 0 = cell (0,0), nibble 3 = cell (0,3))
//	bits 16-31: row 1
//	bits 32-47: row 2
//	bits 48-63: row 3
//
// A nibble can hold at most 15, which corresponds to the 32768 tile.
// Ranks saturate there; see movegen for how merges behave at the cap.
package tiles

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxRank is the largest rank a nibble can represent (the 32768 tile).
const MaxRank = 15

const (
	// ColumnMask selects nibble 0 of every row; AsColumn spreads a row
	// onto it.
	ColumnMask = Board(0x000F000F000F000F)
	rowMask    = 0xFFFF
)

// Board is a packed 4x4 position.
type Board uint64

// Row is one packed row: 4 nibbles in a uint16.
type Row uint16

// Grid is the unpacked face-value view used at the API boundary. Cell
// values are 0 for empty or a power of two between 2 and 32768.
type Grid [4][4]int

// Pack converts a face-value grid to the packed representation. Values
// round down to the nearest representable rank, and anything above
// 1<<MaxRank clamps to MaxRank.
func Pack(g Grid) Board {
	var b Board
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v := g[i][j]
			if v <= 0 {
				continue
			}
			rank := 0
			for rank < MaxRank && (1<<(rank+1)) <= v {
				rank++
			}
			b |= Board(rank) << (4 * uint(4*i+j))
		}
	}
	return b
}

// Grid unpacks the board back to face values.
func (b Board) Grid() Grid {
	var g Grid
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			rank := int(b>>(4*uint(4*i+j))) & 0xF
			if rank > 0 {
				g[i][j] = 1 << uint(rank)
			}
		}
	}
	return g
}

// Row returns row i (0 is the top row).
func (b Board) Row(i int) Row {
	return Row(b >> (16 * uint(i)) & rowMask)
}

// Rank returns the rank of cell (i, j).
func (b Board) Rank(i, j int) int {
	return int(b>>(4*uint(4*i+j))) & 0xF
}

// Transpose mirrors the board across the main diagonal, turning columns
// into rows. Two rounds of masked shifts: the first swaps nibbles within
// each 2x2 block, the second swaps the off-diagonal blocks.
func (b Board) Transpose() Board {
	a1 := b & 0xF0F00F0FF0F00F0F
	a2 := b & 0x0000F0F00000F0F0
	a3 := b & 0x0F0F00000F0F0000
	a := a1 | (a2 << 12) | (a3 >> 12)
	b1 := a & 0xFF00FF0000FF00FF
	b2 := a & 0x00FF00FF00000000
	b3 := a & 0x00000000FF00FF00
	return b1 | (b2 >> 24) | (b3 << 24)
}

// Reverse flips the nibble order of a row.
func (r Row) Reverse() Row {
	return (r >> 12) | ((r >> 4) & 0x00F0) | ((r << 4) & 0x0F00) | (r << 12)
}

// AsColumn spreads the row's 4 nibbles onto the first column of a board.
// Combined with Transpose this is how the vertical move tables are built.
func (r Row) AsColumn() Board {
	tmp := Board(r)
	return (tmp | (tmp << 12) | (tmp << 24) | (tmp << 36)) & ColumnMask
}

// CountEmpty returns the number of empty cells. SWAR: collapse each
// nibble to a 1 if it was zero, then add the nibbles up.
func (b Board) CountEmpty() int {
	if b == 0 {
		// The nibble sum below overflows at 16.
		return 16
	}
	x := uint64(b)
	x |= (x >> 2) & 0x3333333333333333
	x |= x >> 1
	x = ^x & 0x1111111111111111
	x += x >> 32
	x += x >> 16
	x += x >> 8
	x += x >> 4
	return int(x & 0xF)
}

// MaxRank returns the highest rank on the board, 0 if it is empty.
func (b Board) MaxRank() int {
	maxrank := 0
	for x := uint64(b); x != 0; x >>= 4 {
		if r := int(x & 0xF); r > maxrank {
			maxrank = r
		}
	}
	return maxrank
}

// DistinctRanks counts the distinct nonzero ranks present. The search
// uses it to budget lookahead depth.
func (b Board) DistinctRanks() int {
	var bitset uint16
	for x := uint64(b); x != 0; x >>= 4 {
		bitset |= 1 << (x & 0xF)
	}
	return bits.OnesCount16(bitset >> 1)
}

// String renders the face values in four lines, for logs and the shell.
func (b Board) String() string {
	var sb strings.Builder
	g := b.Grid()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if g[i][j] == 0 {
				sb.WriteString(fmt.Sprintf("%6s", "."))
			} else {
				sb.WriteString(fmt.Sprintf("%6d", g[i][j]))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
