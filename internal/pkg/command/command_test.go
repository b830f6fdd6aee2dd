package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Legacy(t *testing.T) {
	cmd, err := Decode("105")
	require.NoError(t, err)
	assert.Equal(t, 105, cmd.Code)
	assert.Equal(t, 0, cmd.DurationSeconds)
	assert.Equal(t, "105", cmd.WireText)
}

func TestDecode_LegacyTrimsWhitespace(t *testing.T) {
	cmd, err := Decode(" 102 ")
	require.NoError(t, err)
	assert.Equal(t, 102, cmd.Code)
	assert.Equal(t, "102", cmd.WireText)
}

func TestDecode_LegacyRejected(t *testing.T) {
	for _, msg := range []string{
		"",
		"hello",
		"Pi Booting",
		"12.5",
		"0",
		"-104",
		"105 106",
	} {
		t.Run(msg, func(t *testing.T) {
			_, err := Decode(msg)
			assert.ErrorIs(t, err, ErrNotACommand)
		})
	}
}

func TestDecode_Structured(t *testing.T) {
	cmd, err := Decode(`{"command":"record_noaa15","code":105,"duration_estimate":600}`)
	require.NoError(t, err)
	assert.Equal(t, 105, cmd.Code)
	assert.Equal(t, 600, cmd.DurationSeconds)
	assert.Equal(t, "record_noaa15", cmd.Label)
	assert.Equal(t, "105:600", cmd.WireText)
}

func TestDecode_StructuredDurationDefaultsToZero(t *testing.T) {
	cmd, err := Decode(`{"command":"uptime","code":103}`)
	require.NoError(t, err)
	assert.Equal(t, 103, cmd.Code)
	assert.Equal(t, 0, cmd.DurationSeconds)
	assert.Equal(t, "103:0", cmd.WireText)
}

func TestDecode_StructuredRejected(t *testing.T) {
	for name, msg := range map[string]string{
		"missing code":      `{"command":"power_on"}`,
		"zero code":         `{"code":0}`,
		"negative code":     `{"code":-3}`,
		"negative duration": `{"code":105,"duration_estimate":-1}`,
		"malformed":         `{"code":}`,
		"braces only":       `{}`,
		"not json":          `power{on}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(msg)
			assert.ErrorIs(t, err, ErrInvalidStructured)
		})
	}
}

func TestDecode_BraceDetectionNeedsBoth(t *testing.T) {
	// A lone brace does not switch to the structured path.
	_, err := Decode(`{105`)
	assert.ErrorIs(t, err, ErrNotACommand)
}
