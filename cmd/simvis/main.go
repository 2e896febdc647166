package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/OCAP2/simvis/internal/config"
	"github.com/OCAP2/simvis/internal/datastore"
	"github.com/OCAP2/simvis/internal/influx"
	"github.com/OCAP2/simvis/internal/logging"
	intOtel "github.com/OCAP2/simvis/internal/otel"
	"github.com/OCAP2/simvis/internal/recorder"
	"github.com/OCAP2/simvis/internal/resource"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/internal/syncer"
	"github.com/OCAP2/simvis/pkg/core"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "0.0.1"
	BuildDate               string = "unknown"

	ExtensionName string = "simvis"
)

var (
	configDir   = pflag.StringP("config", "c", ".", "directory containing "+config.FileName)
	storageType = pflag.StringP("storage", "s", "", "storage backend: memory, sqlite, postgres, database or websocket")
	logLevel    = pflag.String("log-level", "", "debug, info, warn or error")
	realtime    = pflag.Bool("realtime", false, "pace ticks against the wall clock")
)

func main() {
	pflag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	sessionStart := time.Now()

	configErr := config.Load(*configDir)
	bindFlags()

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	logFile, err := os.OpenFile(
		logging.LogFilePath(logsDir, ExtensionName, sessionStart),
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666,
	)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	ds := datastore.NewMemory()

	otelProvider, closeOtel, err := setupOTel(logsDir, sessionStart)
	if err != nil {
		return err
	}
	defer closeOtel()

	slogManager := logging.NewSlogManager()
	opts := logging.Options{
		File:     io.MultiWriter(os.Stdout, logFile),
		Level:    viper.GetString("logLevel"),
		Provider: otelProvider.LoggerProvider(),
		Clock:    ds,
	}
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGELFWriter(gl.Address)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog disabled: %v\n", err)
		} else {
			defer w.Close()
			opts.GELF = w
			opts.GELFLevel = gl.Level
		}
	}
	slogManager.SetupWith(opts)
	logger := slogManager.Logger()
	defer slogManager.Flush(context.Background())
	if otelProvider.Enabled() {
		intOtel.RouteErrors(logger)
	}

	if configErr != nil {
		logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		logger.Info("Loaded config", "dir", *configDir)
	}
	logger.Info("Starting up...", "version", CurrentExtensionVersion, "build", BuildDate)

	// zerolog for the connection managers
	zlog := zerolog.New(logFile).With().Timestamp().Logger()

	rc := config.GetResourceConfig()
	res := resource.NewCache(resource.NewFileLoader(rc.FontDirs, rc.HTTPTimeout), rc.DefaultFont, logger)

	orch, err := syncer.New(scene.NewRegistry(), res, logger)
	if err != nil {
		return fmt.Errorf("creating orchestrator: %w", err)
	}
	defer orch.Close()
	ds.AddListener(orch)

	backend, err := createStorageBackend(config.GetStorageConfig(), zlog, logger)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := influx.NewManager(config.GetInfluxConfig(), zlog,
		logging.SessionFile(logsDir, "influx_backup", ".log.gz", sessionStart))
	if err := stats.Connect(ctx); err != nil {
		logger.Debug("Tick statistics not exported", "reason", err)
		stats = nil
	} else {
		defer stats.Close()
	}

	scfg := config.GetScenarioConfig()
	sc, err := newScenario(ds, scfg)
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	session := &core.Session{
		Name:             scfg.Name,
		StartTime:        sessionStart,
		ExtensionVersion: CurrentExtensionVersion,
	}
	if err := backend.StartSession(session); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	slogManager.SetSession(session.Name)

	loop := &tickLoop{
		scenario: sc,
		ds:       ds,
		orch:     orch,
		rec:      recorder.New(orch.Context(), backend, logger),
		backend:  backend,
		stats:    stats,
		session:  session,
		log:      logger.With("component", "loop"),
	}
	result, runErr := loop.Run(ctx)

	if err := backend.EndSession(); err != nil {
		logger.Error("Failed to end session", "error", err)
	}
	if exp, ok := backend.(interface{ ExportedFilePath() string }); ok && exp.ExportedFilePath() != "" {
		logger.Info("Session exported", "path", exp.ExportedFilePath())
	}
	logger.Info("Run finished",
		"ticks", result.Ticks,
		"frames", result.Frames,
		"applied", result.Applied,
		"elapsed", time.Since(sessionStart).String())
	return runErr
}

// bindFlags lets command line flags override config values.
func bindFlags() {
	_ = viper.BindPFlag("storage.type", pflag.Lookup("storage"))
	_ = viper.BindPFlag("logLevel", pflag.Lookup("log-level"))
	_ = viper.BindPFlag("scenario.realtime", pflag.Lookup("realtime"))
}

func setupOTel(logsDir string, start time.Time) (*intOtel.Provider, func(), error) {
	oc := config.GetOTelConfig()
	cfg := intOtel.Config{
		Enabled:      oc.Enabled,
		ServiceName:  oc.ServiceName,
		BatchTimeout: oc.BatchTimeout,
		Endpoint:     oc.Endpoint,
		Insecure:     oc.Insecure,
	}

	var otelFile *os.File
	if oc.Enabled {
		var err error
		otelFile, err = os.Create(logging.SessionFile(logsDir, ExtensionName, ".otel.jsonl", start))
		if err != nil {
			return nil, nil, fmt.Errorf("creating otel log file: %w", err)
		}
		cfg.LogWriter = otelFile
	}

	p, err := intOtel.New(cfg)
	if err != nil {
		if otelFile != nil {
			otelFile.Close()
		}
		return nil, nil, fmt.Errorf("setting up otel: %w", err)
	}
	return p, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
		if otelFile != nil {
			otelFile.Close()
		}
	}, nil
}
