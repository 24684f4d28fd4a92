package tiles

import (
	"testing"

	"github.com/matryer/is"
)

func TestPackRoundTrip(t *testing.T) {
	is := is.New(t)
	grids := []Grid{
		{},
		{{2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 2}},
		{{2, 4, 8, 16}, {0, 2, 4, 8}, {0, 0, 2, 4}, {0, 0, 0, 2}},
		{{2048, 1024, 512, 256}, {128, 64, 32, 16}, {8, 4, 2, 4}, {2, 0, 0, 0}},
		{{32768, 32768, 32768, 32768}, {2, 2, 2, 2}, {4, 4, 4, 4}, {8, 8, 8, 8}},
	}
	for _, g := range grids {
		is.Equal(Pack(g).Grid(), g)
	}
}

func TestPackClampsAtMaxRank(t *testing.T) {
	is := is.New(t)
	g := Grid{{65536, 131072, 0, 0}}
	b := Pack(g)
	is.Equal(b.Rank(0, 0), MaxRank)
	is.Equal(b.Rank(0, 1), MaxRank)
	// Values that aren't powers of two round down.
	is.Equal(Pack(Grid{{3, 0, 0, 0}}).Rank(0, 0), 1)
	is.Equal(Pack(Grid{{100, 0, 0, 0}}).Rank(0, 0), 6)
}

func TestRowAndRank(t *testing.T) {
	is := is.New(t)
	b := Pack(Grid{{2, 4, 8, 16}, {0, 0, 0, 0}, {0, 0, 0, 32}, {4, 0, 0, 0}})
	is.Equal(b.Row(0), Row(0x4321))
	is.Equal(b.Row(1), Row(0))
	is.Equal(b.Row(2), Row(0x5000))
	is.Equal(b.Row(3), Row(0x0002))
	is.Equal(b.Rank(0, 3), 4)
	is.Equal(b.Rank(2, 3), 5)
	is.Equal(b.Rank(3, 0), 2)
}

func TestTranspose(t *testing.T) {
	is := is.New(t)
	g := Grid{{2, 4, 8, 16}, {32, 64, 128, 256}, {512, 1024, 2048, 4096}, {8192, 16384, 32768, 2}}
	want := Grid{{2, 32, 512, 8192}, {4, 64, 1024, 16384}, {8, 128, 2048, 32768}, {16, 256, 4096, 2}}
	is.Equal(Pack(g).Transpose(), Pack(want))
	is.Equal(Pack(g).Transpose().Transpose(), Pack(g))
}

func TestReverse(t *testing.T) {
	is := is.New(t)
	is.Equal(Row(0x1234).Reverse(), Row(0x4321))
	is.Equal(Row(0x00F1).Reverse(), Row(0x1F00))
	is.Equal(Row(0).Reverse(), Row(0))
}

func TestAsColumn(t *testing.T) {
	is := is.New(t)
	col := Row(0x4321).AsColumn()
	// Nibble i of the row lands in rows 0..3 of column 0.
	is.Equal(col.Rank(0, 0), 1)
	is.Equal(col.Rank(1, 0), 2)
	is.Equal(col.Rank(2, 0), 3)
	is.Equal(col.Rank(3, 0), 4)
	is.Equal(col&^ColumnMask, Board(0))
}

func TestCountEmpty(t *testing.T) {
	is := is.New(t)
	is.Equal(Board(0).CountEmpty(), 16)
	is.Equal(Pack(Grid{{2, 0, 0, 0}}).CountEmpty(), 15)
	full := Grid{{2, 4, 2, 4}, {4, 2, 4, 2}, {2, 4, 2, 4}, {4, 2, 4, 2}}
	is.Equal(Pack(full).CountEmpty(), 0)
	half := Grid{{2, 0, 2, 0}, {0, 4, 0, 4}, {8, 0, 8, 0}, {0, 16, 0, 16}}
	is.Equal(Pack(half).CountEmpty(), 8)
}

func TestMaxAndDistinctRanks(t *testing.T) {
	is := is.New(t)
	is.Equal(Board(0).MaxRank(), 0)
	is.Equal(Board(0).DistinctRanks(), 0)

	b := Pack(Grid{{2048, 1024, 512, 256}, {128, 64, 32, 16}, {8, 4, 2, 4}, {2, 0, 0, 0}})
	is.Equal(b.MaxRank(), 11)
	is.Equal(b.DistinctRanks(), 11)

	b = Pack(Grid{{2, 2, 2, 2}, {2, 2, 2, 2}, {0, 0, 0, 0}, {0, 0, 0, 0}})
	is.Equal(b.MaxRank(), 1)
	is.Equal(b.DistinctRanks(), 1)
}
