// Package devlink owns the serial connection to the field computer.
package devlink

import (
	"context"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

type Link struct {
	port   serial.Port
	logger *zap.Logger
}

// Open opens the serial port at the given baud rate, 8N1, and flushes any
// stale bytes left in the driver buffers.
func Open(portName string, baudRate int) (*Link, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}
	_ = port.ResetInputBuffer()
	_ = port.ResetOutputBuffer()

	logger := zap.L()
	logger.Info("serial link open", zap.String("port", portName), zap.Int("baud", baudRate))
	return &Link{port: port, logger: logger}, nil
}

// WriteCommand sends one command line to the device, newline terminated.
func (l *Link) WriteCommand(wire string) error {
	l.logger.Debug("serial write", zap.String("command", wire))
	_, err := l.port.Write([]byte(wire + "\n"))
	return err
}

// ReadPump copies raw bytes from the port onto out until the context is
// cancelled or the port fails. Chunks preserve arrival order.
func (l *Link) ReadPump(ctx context.Context, out chan<- []byte) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := l.port.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		select {
		case out <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Link) Close() error {
	return l.port.Close()
}
