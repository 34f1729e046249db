package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/c4timer/extension/internal/config"
	"github.com/c4timer/extension/internal/dispatcher"
	"github.com/c4timer/extension/internal/logging"
	intOtel "github.com/c4timer/extension/internal/otel"
	"github.com/c4timer/extension/internal/plugin"
	"github.com/c4timer/extension/internal/sim"

	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const ExtensionName = "c4timer"

var (
	// BuildDate is set at build time with -ldflags
	BuildDate string = "unknown"

	SessionStartTime time.Time = time.Now()

	configLoaded bool

	SlogManager *logging.SlogManager
	Logger      *slog.Logger

	LogFile      *os.File
	OTelProvider *intOtel.Provider
	graylogSink  io.WriteCloser

	eventDispatcher *dispatcher.Dispatcher
	server          *sim.Server
	bombTimer       *plugin.Plugin
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch strings.ToLower(args[0]) {
	case "version":
		fmt.Printf("%s %s (built %s)\n", plugin.Info.Name, plugin.Info.Version, BuildDate)
	case "simulate":
		configDir := "."
		if len(args) > 1 {
			configDir = args[1]
		}
		if err := simulate(configDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s simulate [configDir] | version\n", ExtensionName)
}

func simulate(configDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	setupLogging(configDir)
	defer shutdown()

	if err := setupServices(); err != nil {
		return err
	}

	// started last: the watcher logs from its own goroutine
	if configLoaded {
		config.Watch(func() {
			Logger.Info("Config reloaded", "timer", config.TimerEnabled())
		})
	}

	if err := bombTimer.Load(false); err != nil {
		return fmt.Errorf("loading plugin: %w", err)
	}
	defer bombTimer.Unload()

	simCfg := config.GetSimConfig()
	loop := sim.NewLoop(server, simCfg.TickRate)
	res, err := loop.RunRound(ctx, sim.RoundScript{
		PlantAt:     simCfg.PlantAt,
		FuseLength:  simCfg.FuseLength,
		RoundLength: simCfg.RoundLength,
		Realtime:    true,
	})
	if err != nil {
		Logger.Warn("Round interrupted", "error", err, "round", res.Number)
		return nil
	}

	Logger.Info("Round finished",
		"round", res.Number,
		"winner", res.Winner,
		"message", server.Rounds.LastEndMessage(),
		"ticks", res.Ticks,
		"detonated", res.Detonated,
	)
	return nil
}

// setupLogging loads the config and points the log sinks at the session log
// file. Failures fall back to stdout and defaults.
func setupLogging(configDir string) {
	var err error

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err = config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
		configLoaded = true
	}

	logPath := logging.LogFilePath(config.GetString("logsDir"), ExtensionName, SessionStartTime)
	LogFile, err = logging.OpenLogFile(logPath)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", logPath)
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled && LogFile != nil {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    LogFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
			OTelProvider = nil
		}
	}

	var extra []io.Writer
	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		w, err := logging.NewGraylogWriter(graylogCfg.Address, ExtensionName)
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			graylogSink = w
			extra = append(extra, w)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	var file io.Writer
	if LogFile != nil {
		file = LogFile
		extra = append(extra, os.Stdout)
	}
	SlogManager.Setup(file, config.GetString("logLevel"), otelLogProvider, extra...)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", logPath)
}

func setupServices() (err error) {
	var dispatcherOut io.Writer = os.Stdout
	if LogFile != nil {
		dispatcherOut = LogFile
	}
	zl := logging.NewConsoleZerolog(dispatcherOut, config.GetString("logLevel"), LogFile != nil)

	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(zl))
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	server = sim.NewServer(eventDispatcher, config.GetSimConfig().TickRate, Logger)
	server.Menus.OnTextChange = func(menu, text string) {
		Logger.Debug("Menu text changed", "menu", menu, "text", text)
	}

	bombTimer = plugin.New(plugin.Core{
		Entities: server.World,
		Globals:  server.Clock,
		Menus:    server.Menus,
		Sounds:   server.Sounds,
		Events:   eventDispatcher,
	}, plugin.Dependencies{
		Logger:  Logger,
		Enabled: config.TimerEnabled,
	})

	SlogManager.GetRoundNumber = server.Rounds.Number
	SlogManager.IsBombArmed = func() bool {
		if c := bombTimer.Controller(); c != nil {
			return c.IsArmed()
		}
		return false
	}
	return nil
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shut down OTel: %v\n", err)
		}
	}
	if graylogSink != nil {
		graylogSink.Close()
	}
	if LogFile != nil {
		LogFile.Close()
	}
}
