// Batch driving for automatic games: job feeding, worker supervision,
// and the CSV log.

package automatic

import (
	"context"
	"errors"
	"expvar"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nqmartin/sedici/config"
)

var (
	GamesPlayed *expvar.Int
	IsPlaying   *expvar.Int
)

func init() {
	GamesPlayed = expvar.NewInt("autoplayGamesPlayed")
	IsPlaying = expvar.NewInt("autoplayIsPlaying")
}

// CompVCompGames plays numGames to the end across threads workers,
// writing one CSV line per game to outputFilename. It blocks until the
// batch drains; canceling ctx stops feeding new games but lets running
// ones finish. The returned summary covers the games actually played.
//
// With a nonzero seed setting, game i plays with seed+i, so a batch is
// reproducible regardless of thread count.
func CompVCompGames(ctx context.Context, cfg *config.Config, numGames, threads int, outputFilename string) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, errors.New("a batch is already running; wait for it to finish")
	}
	if numGames < 1 {
		return nil, errors.New("need at least one game")
	}
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	logfile, err := os.Create(outputFilename)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("games", numGames).Int("threads", threads).Msg("starting-batch")

	GamesPlayed.Set(0)
	baseSeed := cfg.GetInt64(config.KeySeed)

	jobs := make(chan int, 100)
	logChan := make(chan string, 100)
	resultChan := make(chan GameResult, 100)

	workers, wctx := errgroup.WithContext(ctx)
	for t := 0; t < threads; t++ {
		workers.Go(func() error {
			r, err := NewGameRunner(logChan, cfg)
			if err != nil {
				return err
			}
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for idx := range jobs {
				if wctx.Err() != nil {
					// Drain queued jobs unplayed so the feeder never
					// blocks; games already started run to the end.
					continue
				}
				seed := int64(0)
				if baseSeed != 0 {
					seed = baseSeed + int64(idx)
				}
				resultChan <- r.PlayGame(idx, seed)
				GamesPlayed.Add(1)
			}
			return nil
		})
	}

	feeder := errgroup.Group{}
	feeder.Go(func() error {
		defer close(jobs)
		for i := 1; i <= numGames; i++ {
			select {
			case jobs <- i:
			case <-wctx.Done():
				log.Info().Msg("stopping-batch-feed")
				return nil
			}
		}
		return nil
	})

	summary := &Summary{}
	drainers := errgroup.Group{}
	drainers.Go(func() error {
		// Keep draining even after a write error so the workers never
		// block on the log channel.
		var werr error
		if _, err := logfile.WriteString(csvHeader); err != nil {
			werr = err
		}
		for msg := range logChan {
			if werr != nil {
				continue
			}
			if _, err := logfile.WriteString(msg); err != nil {
				werr = err
			}
		}
		if cerr := logfile.Close(); werr == nil {
			werr = cerr
		}
		return werr
	})
	drainers.Go(func() error {
		for res := range resultChan {
			summary.add(res)
		}
		return nil
	})

	ticker := time.NewTicker(10 * time.Second)
	tickerDone := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				log.Info().Int64("games-played", GamesPlayed.Value()).
					Int("num-games", numGames).Msg("autoplay-progress")
			case <-tickerDone:
				return
			}
		}
	}()

	werr := workers.Wait()
	close(logChan)
	close(resultChan)
	ticker.Stop()
	close(tickerDone)

	ferr := feeder.Wait()
	derr := drainers.Wait()
	if werr != nil {
		return nil, werr
	}
	if ferr != nil {
		return nil, ferr
	}
	if derr != nil {
		return nil, derr
	}
	log.Info().Int64("games-played", GamesPlayed.Value()).Msg("autoplay-done")
	return summary, nil
}
