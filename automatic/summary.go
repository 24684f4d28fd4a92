package automatic

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/nqmartin/sedici/stats"
)

// attainmentFaces are the tile faces the summary reports reach rates
// for.
var attainmentFaces = []int{256, 512, 1024, 2048, 4096, 8192, 16384, 32768}

// Summary aggregates a batch of finished games. CompVCompGames fills it
// from a single goroutine; it is not safe for concurrent use.
type Summary struct {
	Score        stats.Statistic
	Turns        stats.Statistic
	NodesPerMove stats.Statistic

	scores   []float64
	maxTiles []int
}

func (s *Summary) add(res GameResult) {
	s.Score.Push(float64(res.Score))
	s.Turns.Push(float64(res.Turns))
	turns := res.Turns
	if turns < 1 {
		turns = 1
	}
	s.NodesPerMove.Push(float64(res.Nodes) / float64(turns))
	s.scores = append(s.scores, float64(res.Score))
	s.maxTiles = append(s.maxTiles, res.MaxTile)
}

// Games returns how many games went into the summary.
func (s *Summary) Games() int {
	return s.Score.Iterations()
}

// AttainmentRates returns, per tile face, the fraction of games whose
// best tile reached at least that face.
func (s *Summary) AttainmentRates() map[int]float64 {
	if len(s.maxTiles) == 0 {
		return map[int]float64{}
	}
	return lo.SliceToMap(attainmentFaces, func(face int) (int, float64) {
		n := lo.CountBy(s.maxTiles, func(mt int) bool { return mt >= face })
		return face, float64(n) / float64(len(s.maxTiles))
	})
}

// ScoreQuantile returns the q-quantile of final scores, 0 <= q <= 1.
func (s *Summary) ScoreQuantile(q float64) float64 {
	if len(s.scores) == 0 {
		return 0
	}
	sorted := append([]float64(nil), s.scores...)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// ScoreHistogram prints a text histogram of final scores to w.
func (s *Summary) ScoreHistogram(w io.Writer) error {
	if len(s.scores) == 0 {
		return nil
	}
	hist := histogram.Hist(10, s.scores)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}

func (s *Summary) String() string {
	if s.Games() == 0 {
		return "no games played\n"
	}
	z := stats.ZVal(95)
	var sb strings.Builder
	fmt.Fprintf(&sb, "games played: %d\n", s.Games())
	fmt.Fprintf(&sb, "score: mean %.1f +/- %.1f (95%%), min %.0f, max %.0f\n",
		s.Score.Mean(), z*s.Score.StandardError(), s.Score.Min(), s.Score.Max())
	fmt.Fprintf(&sb, "score quantiles: p25 %.0f, p50 %.0f, p75 %.0f, p90 %.0f\n",
		s.ScoreQuantile(0.25), s.ScoreQuantile(0.5),
		s.ScoreQuantile(0.75), s.ScoreQuantile(0.9))
	fmt.Fprintf(&sb, "turns: mean %.1f, max %.0f\n", s.Turns.Mean(), s.Turns.Max())
	fmt.Fprintf(&sb, "nodes per move: mean %.0f\n", s.NodesPerMove.Mean())

	rates := s.AttainmentRates()
	faces := lo.Keys(rates)
	sort.Ints(faces)
	for _, face := range faces {
		fmt.Fprintf(&sb, "reached %5d: %5.1f%%\n", face, 100*rates[face])
	}
	return sb.String()
}

// SummarySnapshot is the serializable face of a Summary.
type SummarySnapshot struct {
	Games        int             `yaml:"games"`
	MeanScore    float64         `yaml:"mean-score"`
	StdevScore   float64         `yaml:"stdev-score"`
	MedianScore  float64         `yaml:"median-score"`
	MaxScore     float64         `yaml:"max-score"`
	MeanTurns    float64         `yaml:"mean-turns"`
	NodesPerMove float64         `yaml:"nodes-per-move"`
	Rates        map[int]float64 `yaml:"attainment-rates"`
}

// Snapshot flattens the summary for serialization.
func (s *Summary) Snapshot() SummarySnapshot {
	return SummarySnapshot{
		Games:        s.Games(),
		MeanScore:    s.Score.Mean(),
		StdevScore:   s.Score.Stdev(),
		MedianScore:  s.ScoreQuantile(0.5),
		MaxScore:     s.Score.Max(),
		MeanTurns:    s.Turns.Mean(),
		NodesPerMove: s.NodesPerMove.Mean(),
		Rates:        s.AttainmentRates(),
	}
}

// WriteYAML writes the summary snapshot as YAML.
func (s *Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(s.Snapshot()); err != nil {
		return err
	}
	return enc.Close()
}
