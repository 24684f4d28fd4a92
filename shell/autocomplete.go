package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/nqmartin/sedici/config"
)

// ShellCompleter implements readline.AutoComplete: command names at the
// start of the line, then per-command arguments, options and setting
// names.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

var commandNames = []string{
	"help", "new", "show", "s", "play", "best", "gen", "auto", "load",
	"export", "score", "heur", "autoplay", "autoanalyze", "set", "seed",
	"script", "version", "exit",
}

// settingNames are the config keys that `set` accepts; they double as
// its completion table.
var settingNames = []string{
	config.KeyDebug,
	config.KeySeed,
	config.KeyTTableMemFraction,
	config.KeyProbThreshold,
	config.KeyCacheDepthLimit,
	config.KeyMinDepth,
	config.KeyDistinctOffset,
	config.KeyHeurLostPenalty,
	config.KeyHeurEmptyWeight,
	config.KeyHeurMergesWeight,
	config.KeyHeurMonoPower,
	config.KeyHeurMonoWeight,
	config.KeyHeurSumPower,
	config.KeyHeurSumWeight,
	config.KeyAutoplayThreads,
	config.KeyAutoplayGames,
	config.KeyAutoplayLogfile,
	config.KeyAutoplayHistogram,
	config.KeyAutoplaySummaryFile,
}

var boolValues = []string{"true", "false"}

var commandArgs = map[string][]string{
	"play":     {"up", "down", "left", "right"},
	"set":      settingNames,
	"autoplay": {"stop"},
	"help": {
		"new", "play", "best", "auto", "load", "export", "set",
		"autoplay", "script",
	},
}

var commandOptions = map[string][]string{
	"autoplay": {"-games", "-threads", "-file"},
}

// boolSettings are the `set` keys whose value is true/false.
var boolSettings = map[string]bool{
	config.KeyDebug:             true,
	config.KeyAutoplayHistogram: true,
}

func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		// Unbalanced quotes mid-line; degrade to whitespace splitting.
		fields = strings.Fields(text)
	}
	// With a trailing space the last field is complete and we are
	// starting a fresh word; otherwise we are extending the last field.
	typing := len(text) > 0 && text[len(text)-1] != ' '

	prefix := ""
	if typing {
		prefix = fields[len(fields)-1]
	}
	return matches(c.candidates(fields, typing, prefix), prefix)
}

// candidates picks the completion table for the cursor position.
func (c *ShellCompleter) candidates(fields []string, typing bool, prefix string) []string {
	if len(fields) == 0 || (len(fields) == 1 && typing) {
		return commandNames
	}
	cmd := fields[0]

	// The word before the cursor decides value completions.
	prev := fields[len(fields)-1]
	if typing {
		prev = fields[len(fields)-2]
	}
	if cmd == "set" && boolSettings[prev] {
		return boolValues
	}

	if strings.HasPrefix(prefix, "-") {
		return commandOptions[cmd]
	}
	if args, ok := commandArgs[cmd]; ok {
		return args
	}
	return commandOptions[cmd]
}

// matches filters candidates by prefix, returning only the suffix still
// to be typed, the way readline wants them.
func matches(candidates []string, prefix string) ([][]rune, int) {
	var out [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			out = append(out, []rune(cand[len(prefix):]))
		}
	}
	return out, len(prefix)
}
