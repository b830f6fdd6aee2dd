package framer

import (
	"errors"
	"strings"
)

// MaxLineLength is the capacity of the accumulation buffer. Lines from the
// field computer are short status strings; anything longer means the link is
// spewing garbage.
const MaxLineLength = 128

// ErrOverflow is returned by Feed when the buffer fills before a terminator
// arrives. The buffered bytes are discarded.
var ErrOverflow = errors.New("line buffer overflow")

// Framer accumulates raw serial bytes into complete text lines.
type Framer struct {
	buf []byte
}

func New() *Framer {
	return &Framer{buf: make([]byte, 0, MaxLineLength)}
}

// Feed consumes one byte from the device link. When a newline or carriage
// return completes a non-empty line, Feed returns it trimmed with ok set.
// Printable ASCII is buffered, everything else is dropped.
func (f *Framer) Feed(b byte) (line string, ok bool, err error) {
	switch {
	case b == '\n' || b == '\r':
		if len(f.buf) == 0 {
			return "", false, nil
		}
		line = strings.TrimSpace(string(f.buf))
		f.buf = f.buf[:0]
		if line == "" {
			return "", false, nil
		}
		return line, true, nil
	case b >= 0x20 && b <= 0x7e:
		if len(f.buf) >= MaxLineLength {
			f.buf = f.buf[:0]
			return "", false, ErrOverflow
		}
		f.buf = append(f.buf, b)
		return "", false, nil
	default:
		return "", false, nil
	}
}
