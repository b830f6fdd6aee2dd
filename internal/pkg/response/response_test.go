package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Event
	}{
		{
			name: "pi ready",
			line: "Pi ready",
			want: Event{Kind: KindReady, Text: "Pi ready"},
		},
		{
			name: "ready substring anywhere",
			line: "field unit READY for commands",
			want: Event{Kind: KindReady, Text: "field unit READY for commands"},
		},
		{
			name: "lowercase ready is not readiness",
			line: "almost ready",
			want: Event{Kind: KindUnclassified, Text: "almost ready"},
		},
		{
			name: "uptime ack",
			line: "103_ACK:up 2 days",
			want: Event{Kind: KindAck, Code: 103, Text: "103_ACK:up 2 days"},
		},
		{
			name: "shutdown ack",
			line: "104_ACK:Shutdown initiated",
			want: Event{Kind: KindAck, Code: 104, Text: "104_ACK:Shutdown initiated"},
		},
		{
			name: "noaa15 recording",
			line: "105_NOAA15 started",
			want: Event{Kind: KindRecordingAck, SatelliteID: "105_NOAA15", Text: "105_NOAA15 started"},
		},
		{
			name: "noaa18 recording",
			line: "106_NOAA18:Process started with PID 812",
			want: Event{Kind: KindRecordingAck, SatelliteID: "106_NOAA18", Text: "106_NOAA18:Process started with PID 812"},
		},
		{
			name: "noaa19 recording",
			line: "107_NOAA19",
			want: Event{Kind: KindRecordingAck, SatelliteID: "107_NOAA19", Text: "107_NOAA19"},
		},
		{
			name: "iss recording",
			line: "108_ISS:Process started with PID 813",
			want: Event{Kind: KindRecordingAck, SatelliteID: "108_ISS", Text: "108_ISS:Process started with PID 813"},
		},
		{
			name: "upload success",
			line: "UPLOAD_SUCCESS:105:noaa15_20250101.wav",
			want: Event{Kind: KindUploadResult, Success: true, Text: "UPLOAD_SUCCESS:105:noaa15_20250101.wav"},
		},
		{
			name: "shutdown initiated",
			line: "SHUTDOWN_INITIATED:Upload complete",
			want: Event{Kind: KindShutdownInitiated, Text: "SHUTDOWN_INITIATED:Upload complete"},
		},
		{
			name: "unknown code report",
			line: "UNKNOWN_CODE:999",
			want: Event{Kind: KindUnknownCode, Text: "UNKNOWN_CODE:999"},
		},
		{
			name: "free text",
			line: "some debug output",
			want: Event{Kind: KindUnclassified, Text: "some debug output"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestClassify_ReadinessWinsOverPrefixes(t *testing.T) {
	// Rules are ordered: a line that both starts with an ack prefix and
	// mentions READY is classified as readiness.
	got := Classify("103_ACK but READY")
	assert.Equal(t, KindReady, got.Kind)
}
