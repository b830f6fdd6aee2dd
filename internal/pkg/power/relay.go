package power

import (
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// relay is wired inverted: driving the pin low closes the contact and
// powers the device, high opens it.
type relay struct {
	pin    gpio.PinIO
	logger *zap.Logger
}

// NewRelay initializes the GPIO host, claims pinName and leaves it high so
// the device starts unpowered.
func NewRelay(pinName string) (Switch, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio host init: %w", err)
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("no gpio pin named %q", pinName)
	}
	if err := pin.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("initializing %s high: %w", pinName, err)
	}
	return &relay{pin: pin, logger: zap.L()}, nil
}

func (r *relay) On() error {
	r.logger.Info("asserting device power", zap.String("pin", r.pin.Name()))
	return r.pin.Out(gpio.Low)
}

func (r *relay) Off() error {
	r.logger.Info("removing device power", zap.String("pin", r.pin.Name()))
	return r.pin.Out(gpio.High)
}
