package main

import (
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nqmartin/sedici/config"
	"github.com/nqmartin/sedici/shell"
)

var GitVersion string

//go:embed sedici.txt
var banner string

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("[%-5s]", i))
		},
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	log.Debug().Msg("debug-logging-enabled")
}

func startCPUProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func writeMemProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Msg("create-mem-profile")
		return
	}
	defer f.Close()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	log.Info().Uint64("heap-alloc", ms.HeapAlloc).Uint64("total-alloc", ms.TotalAlloc).
		Msg("memstats")
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Error().Err(err).Msg("write-mem-profile")
		return
	}
	log.Info().Str("file", path).Msg("wrote-memory-profile")
}

func main() {
	fmt.Println(banner)
	fmt.Println(GitVersion)

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	setupLogging(cfg.GetBool(config.KeyDebug))
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")

	if path := cfg.GetString(config.KeyCPUProfile); path != "" {
		stop, err := startCPUProfile(path)
		if err != nil {
			log.Fatal().Err(err).Msg("cpu-profile")
		}
		defer stop()
	}

	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("quitting...")
		close(done)
	}()

	sc := shell.NewShellController(cfg, GitVersion)
	// A command given on the command line runs once and exits;
	// otherwise start an interactive session.
	if cmdline := strings.TrimSpace(strings.Join(cfg.Args(), " ")); cmdline != "" {
		sc.Execute(sig, cmdline)
		sig <- syscall.SIGINT
	} else {
		go sc.Loop(sig)
	}
	<-done

	if path := cfg.GetString(config.KeyMemProfile); path != "" {
		writeMemProfile(path)
	}
	sc.Cleanup()
	log.Info().Msg("shell-exiting")
}
