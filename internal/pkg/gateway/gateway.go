// Package gateway routes bus commands to the field computer and tracks its
// power and readiness state.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/rrotella/groundlink/internal/pkg/command"
	"github.com/rrotella/groundlink/internal/pkg/framer"
	"github.com/rrotella/groundlink/internal/pkg/power"
	"github.com/rrotella/groundlink/internal/pkg/response"
)

// ErrNotReady means a device-link write was attempted before the field
// computer reported readiness. The command is not retried; callers re-queue.
var ErrNotReady = errors.New("device not ready")

const (
	codeStatusProbe = 101
	codePowerOn     = 102
	codeStatusQuery = 103
	codeShutdown    = 104

	// shutdownSettle is how long a commanded shutdown takes before power
	// can be safely removed.
	shutdownSettle = 25 * time.Second
	// selfShutdownSettle is the settle window after the Pi reports
	// SHUTDOWN_INITIATED on its own (post-upload shutdown).
	selfShutdownSettle = 95 * time.Second

	probeAck = "101_ACK: gateway online"

	tickInterval = 100 * time.Millisecond
)

type deviceLink interface {
	WriteCommand(wire string) error
}

type reporter interface {
	Report(text string)
	Event(ev response.Event)
}

// State is the derived device state: OFF=(unpowered), BOOTING=(powered, not
// ready), READY=(powered and ready).
type State int

const (
	StateOff State = iota
	StateBooting
	StateReady
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "BOOTING"
	case StateReady:
		return "READY"
	default:
		return "OFF"
	}
}

// deviceState holds the two readiness flags. ready implies powered at every
// observable point.
type deviceState struct {
	powered bool
	ready   bool
}

func (d deviceState) state() State {
	switch {
	case d.powered && d.ready:
		return StateReady
	case d.powered:
		return StateBooting
	default:
		return StateOff
	}
}

// Service is the command-routing state machine. All fields are owned by the
// single goroutine running Run; handlers must not be called concurrently.
type Service struct {
	clock  clockwork.Clock
	link   deviceLink
	power  power.Switch
	rep    reporter
	logger *zap.Logger
	framer *framer.Framer

	state       deviceState
	pending     *command.Canonical
	offDeadline time.Time
}

func New(clock clockwork.Clock, link deviceLink, sw power.Switch, rep reporter) *Service {
	return &Service{
		clock:  clock,
		link:   link,
		power:  sw,
		rep:    rep,
		logger: zap.L(),
		framer: framer.New(),
	}
}

// Run services inbound bus messages and device-link bytes until the context
// is done. Settle deadlines are applied cooperatively once per iteration, so
// the loop never truly blocks during the 25s/95s power-off windows.
func (s *Service) Run(ctx context.Context, busMsgs <-chan string, deviceBytes <-chan []byte) error {
	ticker := s.clock.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-busMsgs:
			if !ok {
				return errors.New("bus channel closed")
			}
			s.HandleBusMessage(msg)
		case chunk, ok := <-deviceBytes:
			if !ok {
				return errors.New("device link closed")
			}
			s.HandleDeviceBytes(chunk)
		case <-ticker.Chan():
		}
		s.Tick()
	}
}

// HandleBusMessage decodes one inbound bus message and dispatches it.
// Non-commands are ignored; malformed structured commands are reported.
func (s *Service) HandleBusMessage(msg string) {
	cmd, err := command.Decode(msg)
	if err != nil {
		if errors.Is(err, command.ErrInvalidStructured) {
			s.logger.Warn("invalid structured command", zap.String("message", msg))
			s.rep.Report("Rejected malformed command: " + msg)
			return
		}
		s.logger.Debug("ignoring bus message", zap.String("message", msg))
		return
	}
	s.Dispatch(cmd)
}

// Dispatch applies the routing policy for one canonical command.
func (s *Service) Dispatch(cmd command.Canonical) {
	switch cmd.Code {
	case codeStatusProbe:
		s.rep.Report(probeAck)
		return
	case codePowerOn:
		s.powerOn()
		return
	}

	if s.state.state() != StateReady {
		s.queue(cmd)
		return
	}

	if cmd.Code == codeShutdown {
		s.shutdown(cmd)
		return
	}
	s.forward(cmd)
}

// HandleDeviceBytes drains one chunk of serial bytes through the line
// framer, classifying and applying every completed line.
func (s *Service) HandleDeviceBytes(chunk []byte) {
	for _, b := range chunk {
		line, ok, err := s.framer.Feed(b)
		if err != nil {
			s.logger.Warn("device line overflow, buffer dropped")
			s.rep.Report("Serial line overflow, buffer dropped")
			continue
		}
		if ok {
			s.applyEvent(response.Classify(line))
		}
	}
}

// Tick applies an elapsed settle deadline, forcing power off. Called once
// per loop iteration.
func (s *Service) Tick() {
	if s.offDeadline.IsZero() || s.clock.Now().Before(s.offDeadline) {
		return
	}
	s.offDeadline = time.Time{}
	s.powerOff()
}

func (s *Service) powerOn() {
	if s.state.powered {
		s.rep.Report("Pi already powered")
		return
	}
	if err := s.power.On(); err != nil {
		s.logger.Error("power relay on failed", zap.Error(err))
		s.rep.Report("Power relay fault: " + err.Error())
		return
	}
	s.state.powered = true
	s.state.ready = false
	s.logger.Info("device powering on")
	s.rep.Report("Pi Booting")
}

func (s *Service) powerOff() {
	if err := s.power.Off(); err != nil {
		s.logger.Error("power relay off failed", zap.Error(err))
		s.rep.Report("Power relay fault: " + err.Error())
		return
	}
	s.state.powered = false
	s.state.ready = false
	s.logger.Info("device powered off")
	s.rep.Report("Pi powered off")
}

func (s *Service) scheduleOff(settle time.Duration) {
	s.offDeadline = s.clock.Now().Add(settle)
}

// setPowered drives the relay and the powered flag together so the flag never
// asserts power the pin does not carry. A relay fault is reported but the
// flag still follows the evidence: a device that just spoke to us has power.
func (s *Service) setPowered(on bool) {
	var err error
	if on {
		err = s.power.On()
	} else {
		err = s.power.Off()
	}
	if err != nil {
		s.logger.Error("power relay failed", zap.Bool("on", on), zap.Error(err))
		s.rep.Report("Power relay fault: " + err.Error())
	}
	s.state.powered = on
}

// queue stores cmd in the single pending slot, replacing whatever was there.
// If the device is off this also kicks off the power-on sequence.
func (s *Service) queue(cmd command.Canonical) {
	wasOff := s.state.state() == StateOff
	if s.pending != nil {
		s.logger.Warn("replacing pending command",
			zap.Int("old_code", s.pending.Code),
			zap.Int("new_code", cmd.Code))
	}
	c := cmd
	s.pending = &c
	s.rep.Report(fmt.Sprintf("Queued command %s until Pi is ready", cmd.Label))
	if wasOff {
		s.powerOn()
	}
}

func (s *Service) forward(cmd command.Canonical) {
	if err := s.writeToDevice(cmd.WireText); err != nil {
		s.logger.Error("device write failed", zap.Int("code", cmd.Code), zap.Error(err))
		s.rep.Report(fmt.Sprintf("Command %d failed: %v", cmd.Code, err))
		return
	}
	s.rep.Report(fmt.Sprintf("Sent command %d to Pi", cmd.Code))
}

func (s *Service) shutdown(cmd command.Canonical) {
	if err := s.writeToDevice(cmd.WireText); err != nil {
		s.logger.Error("shutdown write failed", zap.Error(err))
		s.rep.Report(fmt.Sprintf("Command %d failed: %v", cmd.Code, err))
		return
	}
	s.state.ready = false
	s.scheduleOff(shutdownSettle)
	s.rep.Report(fmt.Sprintf("Pi shutdown requested, powering off in %s", shutdownSettle))
}

func (s *Service) writeToDevice(wire string) error {
	if !s.state.ready {
		return ErrNotReady
	}
	return s.link.WriteCommand(wire)
}
