package shell

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

// luaCommands maps the sedici_* globals scripts can call to their shell
// commands. Every global takes one optional string holding the
// command's arguments and returns the text the command would print.
var luaCommands = map[string]func(*ShellController, *shellcmd) (*Response, error){
	"sedici_new":    (*ShellController).newGame,
	"sedici_load":   (*ShellController).load,
	"sedici_best":   (*ShellController).best,
	"sedici_play":   (*ShellController).play,
	"sedici_auto":   (*ShellController).auto,
	"sedici_show":   (*ShellController).show,
	"sedici_score":  (*ShellController).score,
	"sedici_export": (*ShellController).export,
	"sedici_set":    (*ShellController).set,
}

// scriptArgs splits a Lua argument string into command args; an empty
// string means no args at all, not a single empty arg.
func scriptArgs(lv string) []string {
	lv = strings.TrimSpace(lv)
	if lv == "" {
		return nil
	}
	return strings.Split(lv, " ")
}

// luaFunc adapts one shell command to a Lua global. Command errors do
// not abort the script; they come back as an ERROR: string so the
// script can decide.
func (sc *ShellController) luaFunc(name string, handler func(*ShellController, *shellcmd) (*Response, error)) lua.LGFunction {
	cmdName := strings.TrimPrefix(name, "sedici_")
	return func(L *lua.LState) int {
		r, err := handler(sc, &shellcmd{
			cmd:  cmdName,
			args: scriptArgs(L.ToString(1)),
		})
		if err != nil {
			log.Err(err).Str("cmd", cmdName).Msg("error-executing-lua-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		L.Push(lua.LString(r.message))
		return 1
	}
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	L := lua.NewState()
	defer L.Close()

	// Scripts can `local json = require("json")` to shape output.
	luajson.Preload(L)
	for name, handler := range luaCommands {
		L.SetGlobal(name, L.NewFunction(sc.luaFunc(name, handler)))
	}

	if err := L.DoFile(cmd.args[0]); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
