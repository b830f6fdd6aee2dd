package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/rrotella/groundlink/cmd"
)

func main() {
	app := &cli.App{
		Name:   "groundlink",
		Usage:  "gateway between the satellite command bus and the field pi",
		Action: cmd.GatewayCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mqtt-host",
				Usage: "broker host:port",
			},
			&cli.StringFlag{
				Name: "mqtt-user",
			},
			&cli.StringFlag{
				Name: "mqtt-pass",
			},
			&cli.StringFlag{
				Name: "mqtt-client-id",
			},
			&cli.StringFlag{
				Name:  "command-topic",
				Usage: "inbound command topic",
			},
			&cli.StringFlag{
				Name:  "status-topic",
				Usage: "outbound status topic, also watched inbound",
			},
			&cli.StringFlag{
				Name:  "serial-port",
				Usage: "device link port, e.g. /dev/ttyS0",
			},
			&cli.IntFlag{
				Name:  "baud-rate",
				Value: 9600,
			},
			&cli.StringFlag{
				Name:  "power-pin",
				Usage: "gpio pin driving the relay, e.g. GPIO17",
			},
			&cli.DurationFlag{
				Name: "heartbeat-interval",
			},
			&cli.StringFlag{
				Name: "log-level",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
