package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	camstream "github.com/lancam/camstream"
	"github.com/lancam/camstream/configuration"
	"github.com/lancam/camstream/internal/testsource"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile = flag.String("memprofile", "", "write memory profile to `file`")
	conf       = flag.String("conf", "conf.toml", "Path to configuration JSON/TOML-file")

	EVENT_CPU           = "cpu_profile"
	EVENT_MEMORY        = "memory_profile"
	EVENT_APP_START     = "app_start"
	EVENT_APP_STOP      = "app_stop"
	EVENT_APP_SIGNAL_OS = "app_signal_os"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Second
}

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Error().Err(err).Str("event", EVENT_CPU).Msg("Could not create file for CPU profiling")
			return
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Error().Err(err).Str("event", EVENT_CPU).Msg("Could not start CPU profiling")
			return
		}
		defer pprof.StopCPUProfile()
	}

	appCfg, err := configuration.PrepareConfiguration(*conf)
	if err != nil {
		log.Error().Err(err).Str("event", EVENT_APP_START).Msg("Could not prepare application configuration")
		return
	}
	applyLoggerSettings(appCfg.LoggerCfg)
	gin.SetMode(gin.ReleaseMode)

	var capture camstream.CaptureSource
	if appCfg.TuningCfg.TestSourceFPS > 0 {
		capture = testsource.New(appCfg.StreamCfg.Quality.Width, appCfg.StreamCfg.Quality.Height, appCfg.TuningCfg.TestSourceFPS)
	}

	app, err := camstream.NewApplication(appCfg, capture)
	if err != nil {
		log.Error().Err(err).Str("event", EVENT_APP_START).Msg("Could not prepare application")
		return
	}

	ctx := context.Background()
	streamURL, err := app.Boot(ctx)
	if err != nil {
		log.Error().Err(err).Str("event", EVENT_APP_START).Str("code", camstream.CodeOf(err).String()).Msg("Could not start streaming session")
		return
	}

	sigOUT := make(chan os.Signal, 1)
	exit := make(chan bool, 1)
	signal.Notify(sigOUT, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigOUT
		log.Info().Str("event", EVENT_APP_SIGNAL_OS).Any("signal", sig).Msg("Server has captured signal")
		exit <- true
	}()
	log.Info().Str("event", EVENT_APP_START).Str("stream_url", streamURL).Msg("Server has been started (awaiting signal to exit)")
	<-exit
	log.Info().Str("event", EVENT_APP_STOP).Msg("Stopping streaming session")
	if err := app.Shutdown(ctx); err != nil {
		log.Error().Err(err).Str("event", EVENT_APP_STOP).Msg("Could not stop streaming session")
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Error().Err(err).Str("event", EVENT_MEMORY).Msg("Could not create file for memory profiling")
			return
		}
		defer f.Close()
		// Explicit for garbage collection
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Error().Err(err).Str("event", EVENT_MEMORY).Msg("Could not write to file for memory profiling")
			return
		}
	}
}

func applyLoggerSettings(settings configuration.LoggerSettings) {
	switch settings.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if settings.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
