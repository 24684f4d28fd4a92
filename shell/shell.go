// Package shell is the interactive front end: a readline loop that
// parses commands, drives games and analyses through the engine, and
// hosts the Lua scripting hooks.
package shell

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/nqmartin/sedici/config"
	"github.com/nqmartin/sedici/engine"
	"github.com/nqmartin/sedici/game"
)

var (
	errNoData            = errors.New("no command entered")
	errWrongOptionSyntax = errors.New("commands are of the format 'cmd args...' and options of the format '-option value'")
	errNoGame            = errors.New("no game is in progress; start one with `new` or `load`")
	errAutoplaying       = errors.New("an autoplay batch is already running; `autoplay stop` cancels it")
)

type ShellController struct {
	l       *readline.Instance
	config  *config.Config
	version string

	engine *engine.Engine
	game   *game.Game

	batchMu     sync.Mutex
	batchCancel func()
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// extractFields tokenizes a command line. The first field is the
// command; every following field is a positional argument unless it
// starts with a dash, in which case it names an option whose value is
// the next field. A dash followed by digits is a negative number, not
// an option.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := strings.ToLower(fields[0])
	var args []string
	options := CmdOptions{}

	idx := 1
	for idx < len(fields) {
		field := fields[idx]
		if strings.HasPrefix(field, "-") && len(field) > 1 {
			if _, err := strconv.Atoi(field[1:]); err == nil {
				args = append(args, field)
				idx++
				continue
			}
			if idx+1 >= len(fields) {
				return nil, errWrongOptionSyntax
			}
			opt := strings.TrimPrefix(field, "-")
			options[opt] = append(options[opt], fields[idx+1])
			idx += 2
			continue
		}
		args = append(args, field)
		idx++
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// filterInput swallows ctrl-Z; readline's suspend handling leaves the
// terminal in a bad state.
func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

func NewShellController(cfg *config.Config, version string) *ShellController {
	eng, err := engine.New(cfg)
	if err != nil {
		panic(err)
	}
	sc := &ShellController{
		config:  cfg,
		version: version,
		engine:  eng,
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:              "\033[31msedici>\033[0m ",
		HistoryFile:         filepath.Join(os.TempDir(), "sedici_history"),
		HistorySearchFold:   true,
		EOFPrompt:           "exit",
		InterruptPrompt:     "^C",
		FuncFilterInputRune: filterInput,
		AutoComplete:        NewShellCompleter(sc),
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	io.WriteString(sc.l.Stderr(), msg+"\n")
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// showResponse prints whatever a command produced. Quit is not an
// error the user needs to see.
func (sc *ShellController) showResponse(resp *Response, err error) {
	if err != nil && err != errQuitSignal {
		sc.showError(err)
	} else if resp != nil {
		sc.showMessage(resp.message)
	}
}

var errQuitSignal = errors.New("sending quit signal")

func (sc *ShellController) dispatch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye", "quit":
		sig <- syscall.SIGINT
		return nil, errQuitSignal
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "play":
		return sc.play(cmd)
	case "best", "gen":
		return sc.best(cmd)
	case "auto":
		return sc.auto(cmd)
	case "load":
		return sc.load(cmd)
	case "export":
		return sc.export(cmd)
	case "score":
		return sc.score(cmd)
	case "heur":
		return sc.heur(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "autoanalyze":
		return sc.autoAnalyze(cmd)
	case "set":
		return sc.set(cmd)
	case "seed":
		return sc.seed(cmd)
	case "script":
		return sc.script(cmd)
	case "version":
		return msg("sedici " + sc.version), nil
	default:
		return nil, errors.New("command " + strconv.Quote(cmd.cmd) + " not found; try `help`")
	}
}

// Execute runs a single command line, printing its output or error.
// The shell binary uses it for one-shot invocations.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.dispatch(line, sig)
	sc.showResponse(resp, err)
}

// Loop reads and runs commands until EOF, an interrupt, or a quit
// command, then tells main to shut down through sig.
func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			// ctrl-C clears a partial line; on an empty prompt it
			// quits the shell.
			if len(line) > 0 {
				continue
			}
			break
		}
		if err != nil { // io.EOF, or the terminal went away
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.dispatch(line, sig)
		if err == errQuitSignal {
			// dispatch already signalled main; don't signal twice.
			return
		}
		sc.showResponse(resp, err)
	}
	log.Debug().Msg("readline-loop-done")
	sig <- syscall.SIGINT
}

// Cleanup stops whatever is still running in the background.
func (sc *ShellController) Cleanup() {
	sc.batchMu.Lock()
	defer sc.batchMu.Unlock()
	if sc.batchCancel != nil {
		sc.batchCancel()
	}
}
