// autoplay plays batches of unattended games and reports on them. The
// batch size, worker count, and log file come from the usual settings
// (autoplay-games, autoplay-threads, autoplay-logfile); SIGINT ends
// the batch early and still prints the summary of what finished.
package main

import (
	"context"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nqmartin/sedici/automatic"
	"github.com/nqmartin/sedici/config"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	level := zerolog.InfoLevel
	if cfg.GetBool(config.KeyDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	games := cfg.GetInt(config.KeyAutoplayGames)
	if games == 0 {
		// Run until interrupted.
		games = math.MaxInt32
	}
	threads := cfg.GetInt(config.KeyAutoplayThreads)
	logfile := cfg.GetString(config.KeyAutoplayLogfile)

	// SIGINT ends the batch early; games in flight still finish and are
	// counted in the summary.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := automatic.CompVCompGames(ctx, cfg, games, threads, logfile)
	if err != nil {
		log.Fatal().Err(err).Msg("autoplay failed")
	}

	os.Stdout.WriteString(summary.String())
	if cfg.GetBool(config.KeyAutoplayHistogram) {
		if err := summary.ScoreHistogram(os.Stdout); err != nil {
			log.Err(err).Msg("printing histogram")
		}
	}
	if path := cfg.GetString(config.KeyAutoplaySummaryFile); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatal().Err(err).Msg("creating summary file")
		}
		if err := summary.WriteYAML(f); err != nil {
			f.Close()
			log.Fatal().Err(err).Msg("writing summary file")
		}
		if err := f.Close(); err != nil {
			log.Fatal().Err(err).Msg("closing summary file")
		}
		log.Info().Str("file", path).Msg("wrote-summary")
	}
}
