// Package notation reads and writes the single-line position text the
// shell and tools exchange. A position looks like
//
//	16/8,2/4,,2/2 sc 1024 t 37
//
// with one group per row, cells separated by commas, empty cells as
// empty strings, and trailing empty cells elided. Opcodes follow the
// board: sc is the score and t the turn count. Unknown opcodes survive
// a round trip untouched.
package notation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nqmartin/sedici/tiles"
)

// Well-known opcodes.
const (
	OpScore = "sc"
	OpTurn  = "t"
)

var errRowCount = errors.New("a position must have exactly 4 row groups")

// Parse decodes a position line. The returned map holds every opcode,
// known or not.
func Parse(s string) (tiles.Grid, map[string]string, error) {
	var g tiles.Grid

	fields := strings.SplitN(strings.TrimSpace(s), " ", 2)
	if fields[0] == "" {
		return g, nil, errors.New("empty position")
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != 4 {
		return g, nil, errRowCount
	}
	for i, row := range rows {
		if row == "" {
			continue
		}
		cells := strings.Split(row, ",")
		if len(cells) > 4 {
			return g, nil, fmt.Errorf("row %d has %d cells", i+1, len(cells))
		}
		for j, cell := range cells {
			if cell == "" {
				continue
			}
			v, err := strconv.Atoi(cell)
			if err != nil {
				return g, nil, fmt.Errorf("row %d cell %d: %w", i+1, j+1, err)
			}
			if v < 2 || v > 1<<tiles.MaxRank || v&(v-1) != 0 {
				return g, nil, fmt.Errorf("row %d cell %d: %d is not a playable tile", i+1, j+1, v)
			}
			g[i][j] = v
		}
	}

	opcodes := map[string]string{}
	if len(fields) == 2 {
		toks := strings.Fields(fields[1])
		if len(toks)%2 != 0 {
			return g, nil, fmt.Errorf("opcode %s has no value", toks[len(toks)-1])
		}
		for k := 0; k < len(toks); k += 2 {
			opcodes[toks[k]] = toks[k+1]
		}
		for _, op := range []string{OpScore, OpTurn} {
			if v, ok := opcodes[op]; ok {
				if _, err := strconv.Atoi(v); err != nil {
					return g, nil, fmt.Errorf("opcode %s: %w", op, err)
				}
			}
		}
	}
	return g, opcodes, nil
}

// IntOp returns an integer opcode from a Parse result, or def if the
// opcode is absent.
func IntOp(ops map[string]string, key string, def int) (int, error) {
	v, ok := ops[key]
	if !ok {
		return def, nil
	}
	return strconv.Atoi(v)
}

// String encodes the board alone.
func String(g tiles.Grid) string {
	rows := make([]string, 4)
	for i := 0; i < 4; i++ {
		last := -1
		for j := 0; j < 4; j++ {
			if g[i][j] != 0 {
				last = j
			}
		}
		cells := make([]string, 0, 4)
		for j := 0; j <= last; j++ {
			if g[i][j] == 0 {
				cells = append(cells, "")
			} else {
				cells = append(cells, strconv.Itoa(g[i][j]))
			}
		}
		rows[i] = strings.Join(cells, ",")
	}
	return strings.Join(rows, "/")
}

// StringWithOps encodes the board followed by its opcodes, well-known
// ones first and the rest in sorted order.
func StringWithOps(g tiles.Grid, ops map[string]string) string {
	var sb strings.Builder
	sb.WriteString(String(g))
	emit := func(k string) {
		if v, ok := ops[k]; ok {
			sb.WriteString(" ")
			sb.WriteString(k)
			sb.WriteString(" ")
			sb.WriteString(v)
		}
	}
	emit(OpScore)
	emit(OpTurn)
	rest := make([]string, 0, len(ops))
	for k := range ops {
		if k != OpScore && k != OpTurn {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		emit(k)
	}
	return sb.String()
}
