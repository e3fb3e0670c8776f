package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Mansoor88-6/activity-agent/internal/client"
	"Mansoor88-6/activity-agent/internal/collector"
	"Mansoor88-6/activity-agent/internal/database"
	"Mansoor88-6/activity-agent/internal/device"
	"Mansoor88-6/activity-agent/internal/health"
	"Mansoor88-6/activity-agent/internal/ipc"
	"Mansoor88-6/activity-agent/internal/models"
	"Mansoor88-6/activity-agent/internal/queue"
	"Mansoor88-6/activity-agent/internal/scheduler"
	"Mansoor88-6/activity-agent/internal/server"
	"Mansoor88-6/activity-agent/internal/service"
	"Mansoor88-6/activity-agent/internal/tray"

	"go.uber.org/zap"
)

const (
	busBuffer       = 16
	shutdownTimeout = 3 * time.Second
)

// Execute implements the go-flags Commander interface for RunCommand.
func (c *RunCommand) Execute(args []string) error {
	cfg, log, err := loadRuntime(c.globals.Config)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting activity agent",
		zap.String("env", cfg.Env),
		zap.String("version", c.version),
		zap.String("config_path", c.globals.Config),
	)

	deviceManager := device.NewDeviceManager()
	hostname, err := deviceManager.Hostname()
	if err != nil {
		return err
	}
	deviceID := deviceManager.GetOrGenerateDeviceID(cfg.Device.ID)
	log.Info("Device identified",
		zap.String("device_id", deviceID),
		zap.String("hostname", hostname),
	)

	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	daemonClient := client.NewDaemonClient(cfg.Daemon.BaseURL, cfg.Daemon.TimeoutDuration(), log.Logger)
	apiClient := client.NewAPIClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.Backend.TimeoutDuration(), log.Logger)

	bus := ipc.NewBus(busBuffer, log.Logger)

	collectors := collector.NewSourceCollectors(daemonClient, cfg.BucketNames(hostname), log.Logger)
	correlator := service.NewActivityCorrelator(bus, collectors, log.Logger)
	correlator.Setup()

	monitor := health.NewMonitor(daemonClient, log.Logger)
	monitor.Subscribe(func(connected bool) {
		log.Debug("Daemon connection broadcast", zap.Bool("connected", connected))
	})
	if cfg.Daemon.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.TimeoutDuration())
		monitor.SetEnabled(ctx, true)
		cancel()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.TimeoutDuration())
		defer cancel()
		if err := apiClient.HealthCheck(ctx); err != nil {
			log.Warn("Backend not reachable, results will be queued", zap.Error(err))
		}
	}()

	uploader := service.NewUploadService(
		bus,
		collector.NewBatcher(
			cfg.Collection.BatchSize,
			time.Duration(cfg.Collection.BatchFlushInterval)*time.Second,
			log.Logger,
		),
		apiClient,
		queue.NewResultQueue(db.DB, log.Logger),
		deviceID,
		time.Duration(cfg.Collection.RetryInterval)*time.Second,
		log.Logger,
	)
	uploader.Start()

	timer := scheduler.NewTimer(
		bus,
		scheduler.HealthCheckFunc(func(ctx context.Context) bool {
			return monitor.Check(ctx) == health.StateConnected
		}),
		models.AllKinds,
		time.Duration(cfg.Collection.Interval)*time.Second,
		log.Logger,
	)
	timerID := timer.Start()

	var httpServer *http.Server
	if cfg.Server.Enabled && !c.NoServer {
		addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
		httpServer = &http.Server{
			Addr:         addr,
			Handler:      server.NewControlServer(bus, monitor, log.Logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Info("Starting control server", zap.String("address", addr))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Control server error", zap.Error(err))
			}
		}()
	} else {
		log.Info("Control server disabled")
	}

	log.Info("Activity agent started",
		zap.String("timer_id", timerID),
		zap.String("daemon_url", cfg.Daemon.BaseURL),
		zap.String("backend_url", cfg.Backend.BaseURL),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	if cfg.Tray.Enabled && !c.NoTray {
		t := tray.New(monitor, log.Logger)
		go func() {
			sig := <-quit
			log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			t.Quit()
		}()
		t.Run(nil)
	} else {
		sig := <-quit
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	log.Info("Shutting down activity agent...")

	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Warn("Control server shutdown error", zap.Error(err))
		}
		cancel()
	}

	done := make(chan struct{})
	go func() {
		timer.Stop()
		correlator.Stop()
		uploader.Stop()
		bus.Close()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Activity agent stopped")
	case <-time.After(shutdownTimeout):
		log.Warn("Shutdown timeout reached")
	}
	return nil
}
