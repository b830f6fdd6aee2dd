package gateway

import (
	"time"

	"github.com/samber/lo"

	"github.com/rrotella/groundlink/internal/pkg/response"
)

// transition is one row of the device-event transition table: the readiness
// flags the event forces, an optional power-off settle window, and the
// follow-up action run after the flags are applied.
type transition struct {
	forcePowered *bool
	forceReady   *bool
	settleAfter  time.Duration
	followUp     func(s *Service, ev response.Event)
}

// eventTransitions is the full readiness surface. Events absent from the
// table leave state untouched and only produce a status report.
var eventTransitions = map[response.Kind]transition{
	response.KindReady: {
		forcePowered: lo.ToPtr(true),
		forceReady:   lo.ToPtr(true),
		followUp:     (*Service).dispatchPending,
	},
	response.KindAck: {
		followUp: (*Service).handleAck,
	},
	response.KindShutdownInitiated: {
		forceReady:  lo.ToPtr(false),
		settleAfter: selfShutdownSettle,
		followUp:    (*Service).reportEvent,
	},
}

// applyEvent runs one classified device line through the transition table.
func (s *Service) applyEvent(ev response.Event) {
	tr, ok := eventTransitions[ev.Kind]
	if !ok {
		tr = transition{followUp: (*Service).reportEvent}
	}
	if tr.forcePowered != nil && *tr.forcePowered != s.state.powered {
		s.setPowered(*tr.forcePowered)
	}
	if tr.forceReady != nil {
		s.state.ready = *tr.forceReady
	}
	if tr.settleAfter > 0 {
		s.scheduleOff(tr.settleAfter)
	}
	if tr.followUp != nil {
		tr.followUp(s, ev)
	}
}

func (s *Service) reportEvent(ev response.Event) {
	s.rep.Event(ev)
}

// handleAck reports the acknowledgment; the shutdown ack additionally clears
// readiness since the Pi is going down.
func (s *Service) handleAck(ev response.Event) {
	if ev.Code == codeShutdown {
		s.state.ready = false
	}
	s.rep.Event(ev)
}

// dispatchPending reports readiness and flushes the pending slot, if any.
// The dequeued command goes back through the full dispatch policy so a
// queued shutdown still clears readiness and schedules the settle window.
// Codes 101 and 102 never occupy the slot, they are handled before queuing.
func (s *Service) dispatchPending(ev response.Event) {
	s.rep.Event(ev)
	if s.pending == nil {
		return
	}
	cmd := *s.pending
	s.pending = nil
	s.Dispatch(cmd)
}
