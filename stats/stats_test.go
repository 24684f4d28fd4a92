package stats

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestStatistic(t *testing.T) {
	is := is.New(t)
	var s Statistic
	for _, v := range []float64{4, 7, 13, 16} {
		s.Push(v)
	}
	is.Equal(s.Iterations(), 4)
	is.True(FuzzyEqual(s.Mean(), 10))
	is.True(FuzzyEqual(s.Variance(), 30))
	is.True(FuzzyEqual(s.Stdev(), math.Sqrt(30)))
	is.True(FuzzyEqual(s.StandardError(), math.Sqrt(30.0/4.0)))
	is.Equal(s.Min(), 4.0)
	is.Equal(s.Max(), 16.0)
	is.Equal(s.Last(), 16.0)
}

func TestStatisticZeroAndSingle(t *testing.T) {
	is := is.New(t)
	var s Statistic
	is.Equal(s.Mean(), 0.0)
	is.Equal(s.Variance(), 0.0)
	is.Equal(s.Iterations(), 0)

	s.Push(5)
	is.Equal(s.Mean(), 5.0)
	is.Equal(s.Variance(), 0.0)
	is.Equal(s.Min(), 5.0)
	is.Equal(s.Max(), 5.0)
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.96) < 0.005)
	is.True(math.Abs(ZVal(99)-2.576) < 0.005)
}
