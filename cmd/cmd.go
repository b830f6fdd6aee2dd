package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rrotella/groundlink/internal/pkg/config"
	"github.com/rrotella/groundlink/internal/pkg/devlink"
	"github.com/rrotella/groundlink/internal/pkg/gateway"
	"github.com/rrotella/groundlink/internal/pkg/mqtt"
	"github.com/rrotella/groundlink/internal/pkg/power"
	"github.com/rrotella/groundlink/internal/pkg/status"
)

// GatewayCommand is the main entry point for the groundlink CLI command.
// Environment variables provide the base config, flags override.
func GatewayCommand(ctx *cli.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	applyFlags(ctx, cfg)
	return run(ctx.Context, cfg)
}

func applyFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("mqtt-host") {
		cfg.Mqtt.Host = ctx.String("mqtt-host")
	}
	if ctx.IsSet("mqtt-user") {
		cfg.Mqtt.Username = ctx.String("mqtt-user")
	}
	if ctx.IsSet("mqtt-pass") {
		cfg.Mqtt.Password = ctx.String("mqtt-pass")
	}
	if ctx.IsSet("mqtt-client-id") {
		cfg.Mqtt.ClientID = ctx.String("mqtt-client-id")
	}
	if ctx.IsSet("command-topic") {
		cfg.Mqtt.CommandTopic = ctx.String("command-topic")
	}
	if ctx.IsSet("status-topic") {
		cfg.Mqtt.StatusTopic = ctx.String("status-topic")
	}
	if ctx.IsSet("serial-port") {
		cfg.Serial.Port = ctx.String("serial-port")
	}
	if ctx.IsSet("baud-rate") {
		cfg.Serial.BaudRate = ctx.Int("baud-rate")
	}
	if ctx.IsSet("power-pin") {
		cfg.PowerPin = ctx.String("power-pin")
	}
	if ctx.IsSet("heartbeat-interval") {
		cfg.HeartbeatInterval = ctx.Duration("heartbeat-interval")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	errorChan := make(chan error, 1000)
	var err error

	eg, ctx := errgroup.WithContext(ctx)
	logCfg := zap.NewProductionConfig()

	logCfg.Level, err = zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	relay, err := power.NewRelay(cfg.PowerPin)
	if err != nil {
		return err
	}

	link, err := devlink.Open(cfg.Serial.Port, cfg.Serial.BaudRate)
	if err != nil {
		return err
	}
	defer link.Close()

	var bus BusSession = mqtt.New(mqtt.NewClient(cfg.Mqtt), cfg.Mqtt.StatusTopic, errorChan)
	if err := bus.Connect(); err != nil {
		return err
	}
	defer bus.Disconnect()

	reporter := status.New(bus)
	var gw GatewayService = gateway.New(clockwork.NewRealClock(), link, relay, reporter)

	busMsgs := make(chan string, 64)
	deviceBytes := make(chan []byte, 64)

	eg.Go(func() error {
		return bus.Subscribe(ctx, []string{cfg.Mqtt.CommandTopic, cfg.Mqtt.StatusTopic}, busMsgs)
	})

	eg.Go(func() error {
		return link.ReadPump(ctx, deviceBytes)
	})

	eg.Go(func() error {
		return gw.Run(ctx, busMsgs, deviceBytes)
	})

	eg.Go(func() error {
		return heartbeat(ctx, cfg.HeartbeatInterval, reporter)
	})

	eg.Go(func() error {
		// handle any async errors from services
		for {
			select {
			case err := <-errorChan:
				logger.Warn("gateway error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

// heartbeat publishes a liveness line on the status topic so the tracker can
// tell the gateway is up between command exchanges.
func heartbeat(ctx context.Context, interval time.Duration, reporter *status.Reporter) error {
	start := time.Now()
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		reporter.Report(fmt.Sprintf("groundlink alive, up %s", time.Since(start).Round(time.Second)))
	}); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	c.Run()
	return ctx.Err()
}
