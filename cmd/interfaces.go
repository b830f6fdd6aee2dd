package cmd

import (
	"context"
)

// GatewayService defines the interface that cmd.run expects from the
// command-routing core.
type GatewayService interface {
	Run(ctx context.Context, busMsgs <-chan string, deviceBytes <-chan []byte) error
}

// BusSession defines the bus-side plumbing cmd.run wires up.
type BusSession interface {
	Connect() error
	Subscribe(ctx context.Context, topics []string, out chan<- string) error
	Publish(text string) error
	Disconnect()
}
