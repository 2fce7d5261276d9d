package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/lmoreno/waypoint-agent/internal/backlog"
	"github.com/lmoreno/waypoint-agent/internal/config"
	"github.com/lmoreno/waypoint-agent/internal/engine"
	"github.com/lmoreno/waypoint-agent/internal/health"
	"github.com/lmoreno/waypoint-agent/internal/logger"
	"github.com/lmoreno/waypoint-agent/internal/probe"
	"github.com/lmoreno/waypoint-agent/internal/remote"
	"github.com/lmoreno/waypoint-agent/internal/sensors"
	sig "github.com/lmoreno/waypoint-agent/internal/signal"
)

func main() {

	// Token env vars may live in a local .env
	_ = godotenv.Load()

	// Load config
	cfgPath := os.Getenv("WAYPOINT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Init logger
	logger.Init(cfg.Logging)
	log.Info().Str("device", cfg.Agent.DeviceID).Msg("starting waypoint agent")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OS Signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	//------------------------------------------
	// BACKLOG STORE
	//------------------------------------------
	var store backlog.ListStore
	switch cfg.Backlog.Store {
	case "sqlite":
		s, err := backlog.OpenSQLite(cfg.Backlog.Path)
		if err != nil {
			panic("failed to open backlog store: " + err.Error())
		}
		defer s.Close()
		store = s
	default:
		s, err := backlog.NewFileStore(cfg.Backlog.Path)
		if err != nil {
			panic("failed to open backlog store: " + err.Error())
		}
		store = s
	}
	bl := backlog.New(store)

	//------------------------------------------
	// REMOTE STORE
	//------------------------------------------
	var rs remote.Store
	switch cfg.Remote.Kind {
	case "kafka":
		ks, err := remote.NewKafkaStore(cfg.Remote.KafkaBrokers, cfg.Remote.KafkaTopic)
		if err != nil {
			panic("failed to init kafka store: " + err.Error())
		}
		defer ks.Close()
		rs = ks
	default:
		rs = remote.NewHTTPStore(cfg.Remote.URL, cfg.Remote.AuthTokenEnv, cfg.Remote.InsecureSkipVerify)
	}

	//------------------------------------------
	// PROBE + RESOLVER + SENSORS
	//------------------------------------------
	pr := probe.NewNetlinkProbe(cfg.Probe.PingHost, time.Duration(cfg.Probe.PingTimeoutSeconds)*time.Second)

	resolver := sig.NewResolver(
		&sig.ProcSource{Iface: cfg.Signal.Interface},
		&sig.IWSource{Iface: cfg.Signal.Interface},
		func() bool { return pr.Check().Has(probe.Wifi) },
		time.Duration(cfg.Signal.FallbackTimeoutSeconds)*time.Second,
	)

	//------------------------------------------
	// DELIVERY ENGINE
	//------------------------------------------
	registry := prometheus.NewRegistry()
	eng := engine.New(engine.Options{
		DeviceID:        cfg.Agent.DeviceID,
		Position:        &sensors.GpsdSource{Addr: cfg.Sensors.GpsdAddr},
		Battery:         &sensors.SysfsBattery{Path: cfg.Sensors.BatteryPath},
		Resolver:        resolver,
		Probe:           pr,
		Store:           rs,
		Backlog:         bl,
		PositionTimeout: time.Duration(cfg.Sensors.PositionTimeoutSeconds) * time.Second,
		RemoteTimeout:   time.Duration(cfg.Remote.TimeoutSeconds) * time.Second,
		Logger:          log.Logger,
		Metrics:         engine.NewMetrics(registry),
	})

	//------------------------------------------
	// START HEALTH SERVER
	//------------------------------------------
	healthSrv := health.New(cfg.Health.Port, eng.BacklogSize, registry)
	healthSrv.SetRunning(true)

	go func() {
		if err := healthSrv.Serve(); err != nil {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()
	log.Info().Msg("health endpoint running on 127.0.0.1:" + cfg.Health.Port + "/health")

	//------------------------------------------
	// CYCLE SCHEDULER
	//------------------------------------------
	inFlight := make(chan struct{}, 1)
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Agent.IntervalSeconds) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case inFlight <- struct{}{}:
					go func() {
						defer func() { <-inFlight }()
						out := eng.RunCycle(ctx, nil)
						healthSrv.SetCycleHealthy(out.Err == nil)
						log.Info().
							Str("state", string(out.State)).
							Str("correlation", out.Correlation).
							Int("backlog", eng.BacklogSize()).
							Msg("cycle finished")
					}()
				default:
					// previous cycle still running; coalesce this tick
					log.Debug().Msg("cycle in flight, tick skipped")
				}
			}
		}
	}()

	//------------------------------------------
	// WAIT FOR SHUTDOWN SIGNAL
	//------------------------------------------
	s := <-sigChan
	log.Warn().Str("signal", s.String()).Msg("shutdown signal received")
	cancel()

	//------------------------------------------
	// SHUTDOWN SEQUENCE
	//------------------------------------------
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	log.Info().Msg("flushing backlog...")
	rep := eng.Flush(shutdownCtx)
	log.Info().
		Int("attempted", rep.Attempted).
		Int("delivered", rep.Delivered).
		Int("retained", rep.Retained).
		Int("invalid", rep.Invalid).
		Msg("final flush done")

	healthSrv.SetRunning(false)

	log.Info().Msg("agent stopped cleanly")
}
