package expectimax

import (
	"testing"

	"github.com/matryer/is"

	"github.com/nqmartin/sedici/tiles"
)

func TestTableStoreLookup(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	// A tiny fraction still allocates the floor size.
	tt.Reset(0.000001)
	is.True(tt.power >= MinTablePower)

	b := tiles.Pack(tiles.Grid{{2, 4, 8, 16}, {0, 2, 4, 8}})
	tt.store(b, 1620000.5, 2)

	entry, ok := tt.lookup(b)
	is.True(ok)
	is.Equal(entry.value, float32(1620000.5))
	is.Equal(entry.depth, uint8(2))
	is.Equal(tt.Entries(), 1)

	_, ok = tt.lookup(b + 1)
	is.True(!ok)
	is.Equal(tt.lookups, uint64(2))
	is.Equal(tt.hits, uint64(1))

	// Storing the same board again overwrites in place.
	tt.store(b, 99.0, 1)
	entry, ok = tt.lookup(b)
	is.True(ok)
	is.Equal(entry.value, float32(99.0))
	is.Equal(entry.depth, uint8(1))
	is.Equal(tt.Entries(), 1)
}

func TestTableClear(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(0.000001)

	b := tiles.Pack(tiles.Grid{{2, 2, 0, 0}})
	tt.store(b, 42.0, 0)
	is.Equal(tt.Entries(), 1)

	tt.Clear()
	is.Equal(tt.Entries(), 0)
	_, ok := tt.lookup(b)
	is.True(!ok)
	is.Equal(tt.created, uint64(0))
}

func TestTableCollisionDetection(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(0.000001)

	// Overfill a floor-sized table, then probe boards that were never
	// stored. Occupied buckets holding other positions must read as
	// misses and be counted as collisions.
	const n = 100000
	for i := 1; i <= n; i++ {
		tt.store(tiles.Board(i), float32(i), 0)
	}
	falseHits := 0
	for i := n + 1; i <= 2*n; i++ {
		if _, ok := tt.lookup(tiles.Board(i)); ok {
			falseHits++
		}
	}
	is.Equal(falseHits, 0)
	is.True(tt.t2collisions > 0)
}
