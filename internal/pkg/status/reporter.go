// Package status formats and publishes human-readable gateway status lines.
package status

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rrotella/groundlink/internal/pkg/response"
)

type publisher interface {
	Publish(text string) error
}

// Reporter publishes status text on the outbound bus channel. Reports are
// best effort: when the bus session is down they are dropped, not buffered.
type Reporter struct {
	pub    publisher
	logger *zap.Logger
}

func New(pub publisher) *Reporter {
	return &Reporter{
		pub:    pub,
		logger: zap.L(),
	}
}

func (r *Reporter) Report(text string) {
	if err := r.pub.Publish(text); err != nil {
		r.logger.Debug("status report dropped", zap.String("text", text), zap.Error(err))
	}
}

// Event publishes the derived status text for a classified device line.
func (r *Reporter) Event(ev response.Event) {
	r.Report(Describe(ev))
}

// Describe maps a classified device line to its bus status text.
func Describe(ev response.Event) string {
	switch ev.Kind {
	case response.KindReady:
		return "Pi ready"
	case response.KindAck:
		return fmt.Sprintf("Pi acknowledged command %d: %s", ev.Code, ev.Text)
	case response.KindRecordingAck:
		return "Recording started: " + ev.SatelliteID
	case response.KindUploadResult:
		if ev.Success {
			return "Upload complete: " + ev.Text
		}
		return "Upload failed: " + ev.Text
	case response.KindShutdownInitiated:
		return "Pi shutting down, powering off in 95s"
	case response.KindUnknownCode:
		return "Pi reported unknown command: " + ev.Text
	default:
		return "Pi: " + ev.Text
	}
}
