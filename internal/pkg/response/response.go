package response

import (
	"strings"

	"github.com/samber/lo"
)

// Kind tags a classified line from the device link.
type Kind int

const (
	KindUnclassified Kind = iota
	KindReady
	KindAck
	KindRecordingAck
	KindUploadResult
	KindShutdownInitiated
	KindUnknownCode
)

func (k Kind) String() string {
	switch k {
	case KindReady:
		return "ready"
	case KindAck:
		return "ack"
	case KindRecordingAck:
		return "recording_ack"
	case KindUploadResult:
		return "upload_result"
	case KindShutdownInitiated:
		return "shutdown_initiated"
	case KindUnknownCode:
		return "unknown_code"
	default:
		return "unclassified"
	}
}

// Event is one classified status line from the field computer. It is consumed
// once by the gateway and then discarded.
type Event struct {
	Kind        Kind
	Code        int    // set for KindAck
	SatelliteID string // set for KindRecordingAck
	Success     bool   // set for KindUploadResult
	Text        string // the raw line
}

// recordingPrefixes are the satellite-pass acknowledgments the Pi command
// handler emits when a recording starts.
var recordingPrefixes = []string{"105_NOAA15", "106_NOAA18", "107_NOAA19", "108_ISS"}

// Classify maps one framed line to an Event. Rules are ordered, first match
// wins, matching is case-sensitive.
func Classify(line string) Event {
	if strings.Contains(line, "Pi ready") || strings.Contains(line, "READY") {
		return Event{Kind: KindReady, Text: line}
	}
	switch {
	case strings.HasPrefix(line, "103_ACK"):
		return Event{Kind: KindAck, Code: 103, Text: line}
	case strings.HasPrefix(line, "104_ACK"):
		return Event{Kind: KindAck, Code: 104, Text: line}
	}
	if id, ok := lo.Find(recordingPrefixes, func(p string) bool {
		return strings.HasPrefix(line, p)
	}); ok {
		return Event{Kind: KindRecordingAck, SatelliteID: id, Text: line}
	}
	switch {
	case strings.HasPrefix(line, "UPLOAD_SUCCESS"):
		return Event{Kind: KindUploadResult, Success: true, Text: line}
	case strings.HasPrefix(line, "SHUTDOWN_INITIATED"):
		return Event{Kind: KindShutdownInitiated, Text: line}
	case strings.HasPrefix(line, "UNKNOWN_CODE"):
		return Event{Kind: KindUnknownCode, Text: line}
	}
	return Event{Kind: KindUnclassified, Text: line}
}
