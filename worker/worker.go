// Package worker serves move requests to a parent process over
// stdin/stdout. The parent launches us, waits for the READY line, then
// writes one JSON request per line and reads one JSON reply per line.
// Everything else (init chatter, logs) goes to stderr so stdout stays
// machine-clean.
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nqmartin/sedici/config"
	"github.com/nqmartin/sedici/engine"
	"github.com/nqmartin/sedici/movegen"
	"github.com/nqmartin/sedici/tiles"
)

// moveRequest is one line from the parent: a 4x4 grid of tile face
// values, row by row.
type moveRequest struct {
	Board *[4][4]int `json:"board"`
}

// moveResponse is the served move. The three move fields are null when
// no move changes the board.
type moveResponse struct {
	Move        *int    `json:"move"`
	MoveName    *string `json:"move_name"`
	MoveArrow   *string `json:"move_arrow"`
	Depth       int     `json:"depth"`
	TimeMs      float64 `json:"time_ms"`
	MovesEvaled int     `json:"moves_evaled"`
	Cachehits   int     `json:"cachehits"`
}

type errorResponse struct {
	Error string `json:"error"`
	Move  *int   `json:"move"`
}

// Worker owns one engine and one request stream.
type Worker struct {
	engine *engine.Engine
	in     io.Reader
	out    io.Writer
}

// New builds a worker around cfg, reading requests from in and writing
// replies to out.
func New(cfg *config.Config, in io.Reader, out io.Writer) (*Worker, error) {
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Worker{engine: eng, in: in, out: out}, nil
}

// Run announces READY and serves requests until the stream closes or
// ctx is canceled. A closed stream is the normal shutdown path and
// returns nil.
func (w *Worker) Run(ctx context.Context) error {
	if _, err := fmt.Fprintln(w.out, "READY"); err != nil {
		return err
	}
	log.Info().Msg("worker-ready")

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(w.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	served := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("served", served).Msg("worker-shutting-down")
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				log.Info().Int("served", served).Msg("request-stream-closed")
				return <-scanErr
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			w.serve(line)
			served++
		}
	}
}

func (w *Worker) serve(line string) {
	var req moveRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		w.reply(errorResponse{Error: err.Error()})
		return
	}
	if req.Board == nil {
		w.reply(errorResponse{Error: "request has no board"})
		return
	}

	best, stats := w.engine.BestMoveWithStats(tiles.Pack(*req.Board))
	resp := moveResponse{
		Depth:       stats.DepthLimit,
		TimeMs:      float64(stats.TimeElapsed.Microseconds()) / 1000.0,
		MovesEvaled: stats.MovesEvaluated,
		Cachehits:   stats.CacheHits,
	}
	if best != movegen.DirectionNone {
		mv := int(best)
		name := best.String()
		arrow := best.Arrow()
		resp.Move = &mv
		resp.MoveName = &name
		resp.MoveArrow = &arrow
	}
	w.reply(resp)
}

func (w *Worker) reply(v interface{}) {
	enc, err := json.Marshal(v)
	if err != nil {
		log.Err(err).Msg("marshal-response")
		return
	}
	fmt.Fprintln(w.out, string(enc))
}
