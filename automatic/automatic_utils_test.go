package automatic

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/nqmartin/sedici/config"
	"github.com/nqmartin/sedici/game"
	"github.com/nqmartin/sedici/stats"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

// fastConfig keeps autoplay tests quick: depth-1 searches and a tiny
// transposition table.
func fastConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Load(nil); err != nil {
		t.Fatal(err)
	}
	cfg.Set(config.KeyMinDepth, 1)
	cfg.Set(config.KeyDistinctOffset, 20)
	cfg.Set(config.KeyTTableMemFraction, 0.00001)
	return cfg
}

func TestPlayFullGame(t *testing.T) {
	is := is.New(t)
	logchan := make(chan string, 4)
	r, err := NewGameRunner(logchan, fastConfig(t))
	is.NoErr(err)

	res := r.PlayGame(1, 99)
	is.Equal(r.game.Playing(), game.StateGameOver)
	is.True(res.Turns > 0)
	is.True(res.Score > 0)
	is.True(res.MaxTile >= 4)
	is.True(res.Nodes > 0)

	line := <-logchan
	is.True(strings.HasPrefix(line, "1,"))
	is.True(strings.HasSuffix(line, "\n"))
}

func TestCompVCompGames(t *testing.T) {
	is := is.New(t)
	cfg := fastConfig(t)
	cfg.Set(config.KeySeed, int64(1000))
	logfile := filepath.Join(t.TempDir(), "games.csv")

	summary, err := CompVCompGames(context.Background(), cfg, 4, 2, logfile)
	is.NoErr(err)
	is.Equal(summary.Games(), 4)
	is.Equal(GamesPlayed.Value(), int64(4))
	is.Equal(IsPlaying.Value(), int64(0))
	is.True(summary.Score.Mean() > 0)

	// Header plus one line per game.
	data, err := os.ReadFile(logfile)
	is.NoErr(err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	is.Equal(len(lines), 5)
	is.Equal(lines[0], strings.TrimSpace(csvHeader))

	report, err := AnalyzeLogFile(logfile)
	is.NoErr(err)
	is.True(strings.HasPrefix(report, "games played: 4\n"))
	is.True(strings.Contains(report, "reached"))
}

func TestBatchReproducible(t *testing.T) {
	is := is.New(t)
	cfg := fastConfig(t)
	cfg.Set(config.KeySeed, int64(500))
	dir := t.TempDir()

	s1, err := CompVCompGames(context.Background(), cfg, 3, 2, filepath.Join(dir, "a.csv"))
	is.NoErr(err)
	s2, err := CompVCompGames(context.Background(), cfg, 3, 2, filepath.Join(dir, "b.csv"))
	is.NoErr(err)

	// Games arrive in whatever order the workers finish, so the running
	// means can differ in the last float bits; everything else is exact.
	is.True(stats.FuzzyEqual(s1.Score.Mean(), s2.Score.Mean()))
	is.Equal(s1.Score.Max(), s2.Score.Max())
	is.Equal(s1.AttainmentRates(), s2.AttainmentRates())
}

func TestSummary(t *testing.T) {
	is := is.New(t)
	s := &Summary{}
	s.add(GameResult{Index: 1, Score: 1000, MaxTile: 512, Turns: 100, Nodes: 5000})
	s.add(GameResult{Index: 2, Score: 3000, MaxTile: 2048, Turns: 200, Nodes: 20000})
	s.add(GameResult{Index: 3, Score: 2000, MaxTile: 1024, Turns: 150, Nodes: 9000})

	is.Equal(s.Games(), 3)
	is.True(stats.FuzzyEqual(s.Score.Mean(), 2000))
	is.Equal(s.ScoreQuantile(0.5), 2000.0)

	rates := s.AttainmentRates()
	is.Equal(rates[256], 1.0)
	is.Equal(rates[512], 1.0)
	is.Equal(rates[1024], 2.0/3.0)
	is.Equal(rates[2048], 1.0/3.0)
	is.Equal(rates[4096], 0.0)

	var hist bytes.Buffer
	is.NoErr(s.ScoreHistogram(&hist))
	is.True(hist.Len() > 0)

	var buf bytes.Buffer
	is.NoErr(s.WriteYAML(&buf))
	is.True(strings.Contains(buf.String(), "games: 3"))
	is.True(strings.Contains(buf.String(), "attainment-rates:"))
}
