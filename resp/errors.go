package resp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotComplete is returned by a decoder when the buffer does not yet hold
// a full frame. It is a normal backpressure signal, never surfaced to a
// client: the Framer absorbs it and waits for more bytes.
var ErrNotComplete = errors.New("resp: not complete")

var errInvalidUTF8 = errors.New("resp: invalid utf-8 text")

// InvalidFrameError reports structurally malformed bytes: a missing or
// wrong trailer, a bad literal, a bad length.
type InvalidFrameError struct {
	Msg string
}

func (e *InvalidFrameError) Error() string {
	return fmt.Sprintf("resp: invalid frame: %s", e.Msg)
}

// InvalidFrameTypeError reports an unrecognized leading prefix byte.
type InvalidFrameTypeError struct {
	Msg string
}

func (e *InvalidFrameTypeError) Error() string {
	return fmt.Sprintf("resp: invalid frame type: %s", e.Msg)
}

// InvalidFrameLengthError reports a negative or out-of-range length, other
// than the documented -1 null sentinels.
type InvalidFrameLengthError struct {
	N int64
}

func (e *InvalidFrameLengthError) Error() string {
	return fmt.Sprintf("resp: invalid frame length: %d", e.N)
}
