package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotACommand means a legacy message did not parse to a positive
	// integer. Callers ignore it, chatter on the bus is expected.
	ErrNotACommand = errors.New("not a command")
	// ErrInvalidStructured means a braced message was malformed or carried
	// a non-positive code.
	ErrInvalidStructured = errors.New("invalid structured command")
)

// Canonical is the normalized form of an inbound bus command. WireText is
// exactly what goes onto the serial link: "<code>" for legacy messages,
// "<code>:<duration>" for structured ones.
type Canonical struct {
	Code            int
	DurationSeconds int
	Label           string
	WireText        string
}

type structuredCommand struct {
	Command          string `json:"command"`
	Code             *int   `json:"code"`
	DurationEstimate int    `json:"duration_estimate"`
}

// Decode parses an inbound bus message as either a bare legacy numeric code
// or a structured JSON command. A message containing both an opening and a
// closing brace is treated as structured, everything else as legacy.
func Decode(msg string) (Canonical, error) {
	if strings.Contains(msg, "{") && strings.Contains(msg, "}") {
		return decodeStructured(msg)
	}
	code, err := strconv.Atoi(strings.TrimSpace(msg))
	if err != nil || code <= 0 {
		return Canonical{}, ErrNotACommand
	}
	return Canonical{
		Code:     code,
		Label:    strconv.Itoa(code),
		WireText: strconv.Itoa(code),
	}, nil
}

func decodeStructured(msg string) (Canonical, error) {
	var sc structuredCommand
	if err := json.Unmarshal([]byte(msg), &sc); err != nil {
		return Canonical{}, ErrInvalidStructured
	}
	if sc.Code == nil || *sc.Code <= 0 || sc.DurationEstimate < 0 {
		return Canonical{}, ErrInvalidStructured
	}
	label := sc.Command
	if label == "" {
		label = strconv.Itoa(*sc.Code)
	}
	return Canonical{
		Code:            *sc.Code,
		DurationSeconds: sc.DurationEstimate,
		Label:           label,
		WireText:        fmt.Sprintf("%d:%d", *sc.Code, sc.DurationEstimate),
	}, nil
}
