package expectimax

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/nqmartin/sedici/tiles"
)

const entrySize = 16

// MinTablePower is the smallest table we will allocate (2^16 entries).
const MinTablePower = 16

// DefaultTableFraction is the share of physical memory Reset(0) sizes
// the table to.
const DefaultTableFraction = 0.01

// 16 bytes (entrySize). The full packed board is the key; a chance node's
// board always holds at least one tile, so the zero entry marks an empty
// bucket.
type tableEntry struct {
	board tiles.Board
	value float32
	depth uint8
}

// TranspositionTable memoizes chance-node values within one search
// request. It is a plain power-of-two bucket array; the solver clears it
// between requests and never shares it across goroutines, so there is no
// locking.
type TranspositionTable struct {
	table []tableEntry
	power int
	mask  uint64

	created  uint64
	occupied uint64
	lookups  uint64
	hits     uint64
	// "type 2" collisions: a different position hashed into an occupied
	// bucket. Full-key verification turns these into misses rather than
	// wrong values.
	t2collisions uint64
}

func (t *TranspositionTable) bucket(b tiles.Board) uint64 {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(b))
	return xxhash.Sum64(key[:]) & t.mask
}

func (t *TranspositionTable) lookup(b tiles.Board) (tableEntry, bool) {
	t.lookups++
	entry := t.table[t.bucket(b)]
	if entry.board != b {
		if entry.board != 0 {
			// Some other position lives in this bucket.
			t.t2collisions++
		}
		return tableEntry{}, false
	}
	t.hits++
	return entry, true
}

func (t *TranspositionTable) store(b tiles.Board, value float32, depth uint8) {
	idx := t.bucket(b)
	if t.table[idx].board == 0 {
		t.occupied++
	}
	// Replacement policy: last write wins.
	t.table[idx] = tableEntry{board: b, value: value, depth: depth}
	t.created++
}

// Reset sizes the table to the given fraction of physical memory
// (DefaultTableFraction if zero), reusing the allocation when the size is
// unchanged.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	if fractionOfMemory <= 0 {
		fractionOfMemory = DefaultTableFraction
	}
	sysMem := memory.TotalMemory()
	want := fractionOfMemory * float64(sysMem) / entrySize
	// Round down to a power of two, with a floor so small fractions
	// still get a usable table.
	t.power = MinTablePower
	if p := int(math.Log2(want)); p > MinTablePower {
		t.power = p
	}
	n := 1 << t.power
	t.mask = uint64(n - 1)

	reused := t.table != nil && len(t.table) == n
	if reused {
		clear(t.table)
	} else {
		t.table = make([]tableEntry, n)
	}

	log.Info().Int("entries", n).
		Float64("want-entries", want).
		Int("table-bytes", n*entrySize).
		Uint64("system-memory-bytes", sysMem).
		Bool("reused", reused).
		Msg("sized-transposition-table")

	t.resetCounters()
}

// Clear wipes the stored entries between requests, reusing the
// allocation.
func (t *TranspositionTable) Clear() {
	clear(t.table)
	t.resetCounters()
}

func (t *TranspositionTable) resetCounters() {
	t.created = 0
	t.occupied = 0
	t.lookups = 0
	t.hits = 0
	t.t2collisions = 0
}

// Entries returns the number of distinct positions currently stored.
func (t *TranspositionTable) Entries() int {
	return int(t.occupied)
}
