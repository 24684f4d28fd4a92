package shell

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nqmartin/sedici/automatic"
	"github.com/nqmartin/sedici/config"
	"github.com/nqmartin/sedici/game"
	"github.com/nqmartin/sedici/movegen"
	"github.com/nqmartin/sedici/notation"
	"github.com/nqmartin/sedici/tiles"
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

// CmdOptions holds `-key value` style options; a repeated key appends.
type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	if v, ok := c[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) StringArray(key string) []string {
	return c[key]
}

func (c CmdOptions) Int(key string) (int, error) {
	v, ok := c[key]
	if !ok || len(v) == 0 {
		return 0, errors.New("option -" + key + " is required")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, fallback int) (int, error) {
	if v, ok := c[key]; ok && len(v) > 0 {
		return strconv.Atoi(v[0])
	}
	return fallback, nil
}

func (c CmdOptions) Bool(key string) bool {
	return strings.EqualFold(c.String(key), "true")
}

// boardArg resolves the board a command operates on: an explicit
// position argument if one was given, the current game's board
// otherwise.
func (sc *ShellController) boardArg(args []string) (tiles.Board, error) {
	if len(args) > 0 {
		g, _, err := notation.Parse(strings.Join(args, " "))
		if err != nil {
			return 0, err
		}
		return tiles.Pack(g), nil
	}
	if sc.game == nil {
		return 0, errNoGame
	}
	return sc.game.Board(), nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	if seed := sc.config.GetInt64(config.KeySeed); seed != 0 {
		sc.game = game.NewGameWithSeed(seed)
	} else {
		sc.game = game.NewGame()
	}
	return msg(sc.game.String()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(sc.game.String()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <up|down|left|right>")
	}
	d, err := movegen.ParseDirection(strings.ToLower(cmd.args[0]))
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayMove(d); err != nil {
		return nil, err
	}
	return msg(sc.game.String()), nil
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	b, err := sc.boardArg(cmd.args)
	if err != nil {
		return nil, err
	}
	best, stats := sc.engine.BestMoveWithStats(b)
	if best == movegen.DirectionNone {
		return msg("no move changes this board"), nil
	}
	return msg(fmt.Sprintf(
		"best move: %s %s\ndepth %d, moves evaluated %d, cache hits %d, cache size %d, max depth %d, %.1f ms",
		best, best.Arrow(), stats.DepthLimit, stats.MovesEvaluated,
		stats.CacheHits, stats.CacheSize, stats.MaxDepthReached,
		float64(stats.TimeElapsed.Microseconds())/1000.0)), nil
}

func (sc *ShellController) auto(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	moves := -1
	if len(cmd.args) > 0 {
		var err error
		moves, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		if moves < 1 {
			return nil, errors.New("need at least one move")
		}
	}
	played := 0
	for sc.game.Playing() == game.StatePlaying && (moves < 0 || played < moves) {
		if _, err := sc.game.PlayBestMove(sc.engine); err != nil {
			break
		}
		played++
	}
	status := "still playing"
	if sc.game.Playing() == game.StateGameOver {
		status = "game over"
	}
	return msg(fmt.Sprintf("%splayed %d moves, %s", sc.game, played, status)), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: load <position>, e.g. load 16/8,2/4,,2/2 sc 1024 t 37")
	}
	g, ops, err := notation.Parse(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	sc.game = game.NewFromPosition(tiles.Pack(g))
	// Parse already validated the well-known opcodes as integers.
	score, _ := notation.IntOp(ops, notation.OpScore, sc.game.Score())
	sc.game.SetScore(score)
	turn, _ := notation.IntOp(ops, notation.OpTurn, 0)
	sc.game.SetTurn(turn)
	return msg(sc.game.String()), nil
}

func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	ops := map[string]string{
		notation.OpScore: strconv.Itoa(sc.game.Score()),
		notation.OpTurn:  strconv.Itoa(sc.game.Turn()),
	}
	return msg(notation.StringWithOps(sc.game.Board().Grid(), ops)), nil
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(fmt.Sprintf("score %d (board score %d, fours spawned %d)",
		sc.game.Score(), sc.engine.ScoreBoard(sc.game.Board()),
		sc.game.SpawnedFours())), nil
}

func (sc *ShellController) heur(cmd *shellcmd) (*Response, error) {
	b, err := sc.boardArg(cmd.args)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("heuristic value %.1f", sc.engine.HeuristicScore(b))), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 && cmd.args[0] == "stop" {
		sc.batchMu.Lock()
		defer sc.batchMu.Unlock()
		if sc.batchCancel == nil {
			return nil, errors.New("no autoplay batch is running")
		}
		sc.batchCancel()
		return msg("stopping autoplay; games in flight will finish"), nil
	}

	games, err := cmd.options.IntDefault("games", sc.config.GetInt(config.KeyAutoplayGames))
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.config.GetInt(config.KeyAutoplayThreads))
	if err != nil {
		return nil, err
	}
	logfile := cmd.options.String("file")
	if logfile == "" {
		logfile = sc.config.GetString(config.KeyAutoplayLogfile)
	}
	if games == 0 {
		// Run until `autoplay stop`.
		games = math.MaxInt32
	}

	sc.batchMu.Lock()
	defer sc.batchMu.Unlock()
	if sc.batchCancel != nil {
		return nil, errAutoplaying
	}
	ctx, cancel := context.WithCancel(context.Background())
	sc.batchCancel = cancel

	go func() {
		summary, err := automatic.CompVCompGames(ctx, sc.config, games, threads, logfile)
		sc.batchMu.Lock()
		sc.batchCancel = nil
		sc.batchMu.Unlock()
		if err != nil {
			sc.showError(err)
			return
		}
		sc.showMessage(summary.String())
	}()
	return msg("autoplay started; logging games to " + logfile), nil
}

func (sc *ShellController) autoAnalyze(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: autoanalyze <csvfile>")
	}
	report, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(report), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	settings := sc.config.SanitizedSettings()
	if len(cmd.args) == 0 {
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%s: %v\n", k, settings[k])
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, settings[key])), nil
	}
	value := strings.Join(cmd.args[1:], " ")
	sc.config.Set(key, value)
	// Pick up whatever changed: weights, depth policy, thresholds.
	sc.engine.Reload()
	return msg("set " + key + " to " + value), nil
}

func (sc *ShellController) seed(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: seed <n>")
	}
	n, err := strconv.ParseInt(cmd.args[0], 10, 64)
	if err != nil {
		return nil, err
	}
	sc.config.Set(config.KeySeed, n)
	return msg(fmt.Sprintf("new games will use spawn seed %d", n)), nil
}
