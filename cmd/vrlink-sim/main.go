package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/vrlink/extension/internal/config"
	"github.com/vrlink/extension/internal/events"
	"github.com/vrlink/extension/internal/gateway"
	"github.com/vrlink/extension/internal/influx"
	"github.com/vrlink/extension/internal/lifecycle"
	"github.com/vrlink/extension/internal/logging"
	"github.com/vrlink/extension/internal/monitor"
	intOtel "github.com/vrlink/extension/internal/otel"
	"github.com/vrlink/extension/internal/pipeline"
	"github.com/vrlink/extension/internal/pose"
	"github.com/vrlink/extension/internal/recorder"
	"github.com/vrlink/extension/internal/sampler"
	"github.com/vrlink/extension/internal/scene"
)

var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	ExtensionName string = "vrlink"
)

var (
	SessionStartTime time.Time = time.Now()

	// logOpts keeps the output wiring so logging can be re-setup with frame
	// context once the pipeline exists.
	logOpts logging.Options

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider
)

func setupLogging(configDir string) *os.File {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(logging.Options{Level: viper.GetString("logLevel")})
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		os.Mkdir(logsDir, 0755)
	}

	logFilePath := logging.LogFilePath(logsDir, ExtensionName, SessionStartTime)
	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", logFilePath)
	}

	// OTel provider reuses the session log file for exported records
	var otelLogProvider *sdklog.LoggerProvider
	if viper.GetBool("otel.enabled") {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:        true,
			ServiceName:    ExtensionName,
			ServiceVersion: CurrentVersion,
			BatchTimeout:   5 * time.Second,
			LogWriter:      logFile,
			Endpoint:       viper.GetString("otel.endpoint"),
			Insecure:       true,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			otelLogProvider = OTelProvider.LoggerProvider()
			Logger.Info("OTel provider initialized", "file", logFilePath)
		}
	}

	var remote *gelf.Writer
	if viper.GetBool("graylog.enabled") {
		remote, err = gelf.NewWriter(viper.GetString("graylog.address"))
		if err != nil {
			Logger.Error("Failed to connect GELF writer", "error", err,
				"address", viper.GetString("graylog.address"))
			remote = nil
		}
	}

	logOpts = logging.Options{
		File:     logFile,
		Level:    viper.GetString("logLevel"),
		Provider: otelLogProvider,
	}
	if remote != nil {
		logOpts.Remote = remote
	}
	SlogManager.Setup(logOpts)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", logFilePath)

	return logFile
}

func sceneKind(name string) (scene.Kind, error) {
	switch strings.ToLower(name) {
	case "menu":
		return scene.KindMenu, nil
	case "vehicle":
		return scene.KindVehicleInterior, nil
	case "eva":
		return scene.KindExtravehicular, nil
	case "editor":
		return scene.KindEditor, nil
	default:
		return scene.KindUnsupported, fmt.Errorf("unknown scene %q", name)
	}
}

func main() {
	frames := flag.Int("frames", 900, "number of simulated frames to run")
	configDir := flag.String("config", ".", "directory containing vrlink.cfg.json")
	sceneName := flag.String("scene", "editor", "scene to enter: menu, vehicle, eva, editor")
	flag.Parse()

	logFile := setupLogging(*configDir)
	if logFile != nil {
		defer logFile.Close()
	}
	Logger.Info("Starting up...", "version", CurrentVersion, "build", BuildDate)

	kind, err := sceneKind(*sceneName)
	if err != nil {
		Logger.Error("Bad scene flag", "error", err)
		os.Exit(1)
	}

	// simulated host and runtime
	rt := newSimRuntime()
	backend := &simBackend{}
	cameras := newSimCameras("MAIN_CAMERA", "GUI_CAMERA", "OVERLAY_CAMERA")
	input := &simInput{}

	gw := gateway.New(rt, Logger)
	machine := lifecycle.NewMachine(lifecycle.Dependencies{
		Gateway: gw,
		Backend: backend,
		Logger:  Logger,
	}, time.Duration(viper.GetInt("cooldownSeconds"))*time.Second)

	busLogger := logging.NewBusLogger(zerolog.New(os.Stdout).With().Timestamp().Logger())
	bus, err := events.NewBus(busLogger)
	if err != nil {
		Logger.Error("Failed to create event bus", "error", err)
		os.Exit(1)
	}

	smp, err := sampler.New(sampler.Dependencies{
		Poses:   gw,
		Machine: machine,
		Backend: backend,
		Logger:  Logger,
	})
	if err != nil {
		Logger.Error("Failed to create sampler", "error", err)
		os.Exit(1)
	}

	scenes := scene.NewManager(scene.Dependencies{
		Cameras: cameras,
		Device:  gw,
		Logger:  Logger,
	})
	loco := &scene.Locomotion{
		Input:         input,
		Recenter:      gw.ResetSeatedOrigin,
		VerticalSpeed: scene.DefaultVerticalSpeed,
		PlanarSpeed:   scene.DefaultPlanarSpeed,
	}
	scenes.Register(&scene.Menu{
		Cameras: []string{"MAIN_CAMERA", "GUI_CAMERA"},
		Scale:   float32(viper.GetFloat64("worldScale.menu")),
		MaxStep: scene.DefaultMenuGlideStep,
	})
	scenes.Register(&scene.VehicleInterior{
		Cameras: []string{"MAIN_CAMERA"},
		Scale:   float32(viper.GetFloat64("worldScale.vehicleInterior")),
	})
	scenes.Register(&scene.Extravehicular{
		Cameras: []string{"MAIN_CAMERA", "OVERLAY_CAMERA"},
		Scale:   float32(viper.GetFloat64("worldScale.extravehicular")),
	})
	scenes.Register(&scene.Editor{
		Cameras:    []string{"MAIN_CAMERA"},
		Scale:      float32(viper.GetFloat64("worldScale.editor")),
		Locomotion: loco,
	})

	pipe, err := pipeline.New(pipeline.Dependencies{
		Gateway: gw,
		Machine: machine,
		Bus:     bus,
		Sampler: smp,
		Scenes:  scenes,
		Logger:  Logger,
	})
	if err != nil {
		Logger.Error("Failed to create pipeline", "error", err)
		os.Exit(1)
	}

	// session recorder
	var rec *recorder.Service
	recCfg := config.Recorder()
	if recCfg.Enabled {
		recBackend, err := recorder.NewBackend(recCfg)
		if err != nil {
			Logger.Error("Failed to create recorder backend", "error", err)
			os.Exit(1)
		}
		rec = recorder.NewService(recBackend, Logger)
		if err := rec.Start(CurrentVersion); err != nil {
			Logger.Error("Failed to start recorder", "error", err)
			rec = nil
		} else {
			defer rec.Stop()
		}
	}

	// frame telemetry
	var flux *influx.Manager
	if viper.GetBool("influx.enabled") {
		zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
		flux = influx.NewManager(zl, viper.GetString("logsDir")+"/influx_backup.gz")
		if err := flux.Connect(); err != nil {
			Logger.Warn("InfluxDB unavailable", "error", err)
			flux = nil
		} else {
			defer flux.Close()
		}
	}

	machine.SetTransitionHook(func(from, to lifecycle.State, at time.Time) {
		if rec != nil {
			rec.StateTransition(from.String(), to.String(), at)
		}
		if flux != nil {
			flux.WriteStateTransition(context.Background(), from.String(), to.String(), at)
		}
	})
	scenes.SetTransitionHook(func(k scene.Kind, entered bool, at time.Time) {
		if rec != nil {
			rec.SceneEvent(k.String(), entered, at)
		}
		if flux != nil {
			flux.WriteSceneEvent(context.Background(), k.String(), entered, at)
		}
	})

	var lastDuration time.Duration
	pipe.SetFrameHook(func(frame uint64, duration time.Duration) {
		lastDuration = duration
		if rec != nil {
			rec.FrameCompleted(frame, duration)
		}
		if flux != nil && frame%90 == 0 {
			flux.WriteFrameTiming(context.Background(), frame, duration, time.Now())
		}
	})

	for _, k := range []events.Kind{events.KindDeviceConnected, events.KindDeviceDisconnected} {
		kind := k
		bus.Subscribe(kind, func(e events.Event) {
			Logger.Info("Device event", "kind", kind.String(), "device", e.DeviceIndex)
			if rec != nil {
				rec.RuntimeEvent(kind.String(), e.Code, e.DeviceIndex, e.Timestamp)
			}
		}, events.Buffered(16), events.Logged())
	}

	// enrich every record with the current frame number
	logOpts.Context = pipe.ContextAttrs
	SlogManager.Setup(logOpts)
	Logger = SlogManager.Logger()

	// consume published game snapshots like game logic would
	gameSnapshots := smp.Subscribe(8)
	go func() {
		for snap := range gameSnapshots.Receive() {
			if head, valid := snap.Head(); valid && pipe.Frame()%300 == 0 {
				Logger.Debug("Game snapshot head",
					"x", head.Position.X(), "y", head.Position.Y(), "z", head.Position.Z())
			}
		}
	}()

	mon := monitor.NewService(monitor.Dependencies{
		LogManager: SlogManager,
		State:      func() string { return machine.State().String() },
		Enabled:    machine.Enabled,
		Frame:      pipe.Frame,
		LastFrame:  func() time.Duration { return lastDuration },
		ActiveScene: func() string {
			if k, ok := scenes.Active(); ok {
				return k.String()
			}
			return "none"
		},
		QueuedTimings: func() int {
			if rec != nil {
				return rec.QueuedTimings()
			}
			return 0
		},
		StatusDir: viper.GetString("logsDir"),
	})
	mon.Start()
	defer mon.Stop()

	if viper.GetBool("autoStart") {
		machine.SetEnabled(true)
	}

	entered := false
	tick := time.NewTicker(time.Second / 90)
	defer tick.Stop()
	for i := 0; i < *frames; i++ {
		now := <-tick.C
		if i == 30 && !machine.Enabled() {
			// simulated in-game toggle when auto start is off
			machine.SetEnabled(true)
		}
		pipe.Tick(now)

		if !entered && machine.State() == lifecycle.StateRunning {
			res := machine.InitResult()
			Logger.Info("Session running",
				"width", res.TargetWidth, "height", res.TargetHeight)
			if err := scenes.Enter(kind, scene.Anchor{Rotation: mgl32.QuatIdent()}); err != nil {
				Logger.Error("Scene setup failed", "error", err)
				os.Exit(1)
			}
			entered = true
		}
	}

	scenes.Exit()
	pipe.Close()

	Logger.Info("Simulation complete",
		"frames", pipe.Frame(),
		"submits", backend.Submits(),
		"devices", len(smp.RenderSnapshot().Controllers())+1,
		"hmdIndex", pose.HMDIndex,
	)

	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Flush(ctx); err != nil {
			Logger.Warn("Failed to flush OTel data", "error", err)
		}
		OTelProvider.Shutdown(ctx)
	}
}
