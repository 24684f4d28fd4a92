// Package config holds the runtime settings shared by the shell and the
// command-line tools. Settings come from flags first, then SEDICI_
// environment variables, then built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nqmartin/sedici/equity"
	"github.com/nqmartin/sedici/expectimax"
)

const envPrefix = "sedici"

// Setting keys. Flags use these names directly; environment variables
// upcase them and replace dashes with underscores, so prob-threshold
// becomes SEDICI_PROB_THRESHOLD.
const (
	KeyDebug      = "debug"
	KeyCPUProfile = "cpu-profile"
	KeyMemProfile = "mem-profile"
	KeySeed       = "seed"

	KeyTTableMemFraction = "ttable-mem-fraction"
	KeyProbThreshold     = "prob-threshold"
	KeyCacheDepthLimit   = "cache-depth-limit"
	KeyMinDepth          = "min-depth"
	KeyDistinctOffset    = "distinct-offset"

	KeyHeurLostPenalty  = "heur-lost-penalty"
	KeyHeurEmptyWeight  = "heur-empty-weight"
	KeyHeurMergesWeight = "heur-merges-weight"
	KeyHeurMonoPower    = "heur-mono-power"
	KeyHeurMonoWeight   = "heur-mono-weight"
	KeyHeurSumPower     = "heur-sum-power"
	KeyHeurSumWeight    = "heur-sum-weight"

	KeyAutoplayThreads     = "autoplay-threads"
	KeyAutoplayGames       = "autoplay-games"
	KeyAutoplayLogfile     = "autoplay-logfile"
	KeyAutoplayHistogram   = "autoplay-histogram"
	KeyAutoplaySummaryFile = "autoplay-summary-file"
)

// Config wraps a viper instance. The zero value is not usable; call Load
// first.
type Config struct {
	v    *viper.Viper
	args []string
}

// Load parses args and binds the environment. Unknown flags are an
// error; an empty args slice leaves everything at defaults.
func (c *Config) Load(args []string) error {
	c.v = viper.New()

	w := equity.DefaultWeights()

	fs := pflag.NewFlagSet("sedici", pflag.ContinueOnError)
	fs.Bool(KeyDebug, false, "log at debug level")
	fs.String(KeyCPUProfile, "", "write a CPU profile to this file")
	fs.String(KeyMemProfile, "", "write a memory profile to this file on exit")
	fs.Int64(KeySeed, 0, "seed for tile spawns; 0 draws a random seed")

	fs.Float64(KeyTTableMemFraction, expectimax.DefaultTableFraction,
		"fraction of physical memory for the transposition table")
	fs.Float64(KeyProbThreshold, expectimax.DefaultProbThreshold,
		"cumulative probability below which chance branches are not searched")
	fs.Int(KeyCacheDepthLimit, expectimax.DefaultCacheDepthLimit,
		"depth at which positions stop being memoized")
	fs.Int(KeyMinDepth, expectimax.DefaultMinDepth,
		"minimum search depth")
	fs.Int(KeyDistinctOffset, expectimax.DefaultDistinctOffset,
		"subtracted from the distinct tile count to pick the search depth")

	fs.Float64(KeyHeurLostPenalty, w.LostPenalty, "evaluation: per-line baseline lost on death")
	fs.Float64(KeyHeurEmptyWeight, w.EmptyWeight, "evaluation: bonus per empty cell")
	fs.Float64(KeyHeurMergesWeight, w.MergesWeight, "evaluation: bonus per available merge")
	fs.Float64(KeyHeurMonoPower, w.MonotonicityPower, "evaluation: exponent of the monotonicity penalty")
	fs.Float64(KeyHeurMonoWeight, w.MonotonicityWeight, "evaluation: weight of the monotonicity penalty")
	fs.Float64(KeyHeurSumPower, w.SumPower, "evaluation: exponent of the tile-sum penalty")
	fs.Float64(KeyHeurSumWeight, w.SumWeight, "evaluation: weight of the tile-sum penalty")

	fs.Int(KeyAutoplayThreads, 0, "autoplay worker count; 0 means one per CPU")
	fs.Int(KeyAutoplayGames, 0, "stop autoplay after this many games; 0 means run until stopped")
	fs.String(KeyAutoplayLogfile, "/tmp/sedici-games.csv", "autoplay writes one CSV line per game here")
	fs.Bool(KeyAutoplayHistogram, false, "print a score histogram after an autoplay batch")
	fs.String(KeyAutoplaySummaryFile, "", "write the autoplay summary as YAML to this file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.v.BindPFlags(fs); err != nil {
		return err
	}
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	// An optional sedici.yml may sit next to the binary or under
	// ~/.sedici. Missing files are fine; unreadable ones are not.
	c.v.SetConfigName("sedici")
	c.v.SetConfigType("yaml")
	c.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		c.v.AddConfigPath(filepath.Join(home, ".sedici"))
	}
	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// Args returns the positional arguments left over after flag parsing.
// The shell runs them as a single command and exits.
func (c *Config) Args() []string {
	return c.args
}

func (c *Config) GetBool(key string) bool       { return c.v.GetBool(key) }
func (c *Config) GetString(key string) string   { return c.v.GetString(key) }
func (c *Config) GetInt(key string) int         { return c.v.GetInt(key) }
func (c *Config) GetInt64(key string) int64     { return c.v.GetInt64(key) }
func (c *Config) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }

// Set overrides a setting for the rest of the process. The shell's set
// command goes through here.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Weights assembles the evaluation weights from the heur- settings.
func (c *Config) Weights() equity.Weights {
	return equity.Weights{
		LostPenalty:        c.v.GetFloat64(KeyHeurLostPenalty),
		EmptyWeight:        c.v.GetFloat64(KeyHeurEmptyWeight),
		MergesWeight:       c.v.GetFloat64(KeyHeurMergesWeight),
		MonotonicityPower:  c.v.GetFloat64(KeyHeurMonoPower),
		MonotonicityWeight: c.v.GetFloat64(KeyHeurMonoWeight),
		SumPower:           c.v.GetFloat64(KeyHeurSumPower),
		SumWeight:          c.v.GetFloat64(KeyHeurSumWeight),
	}
}

// SanitizedSettings returns everything for logging. Nothing here is
// secret; the name leaves room for keys that would be.
func (c *Config) SanitizedSettings() map[string]interface{} {
	return c.v.AllSettings()
}
