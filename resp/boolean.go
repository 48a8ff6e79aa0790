package resp

// Boolean is a true/false value.
type Boolean bool

var (
	trueBytes  = []byte("#t\r\n")
	falseBytes = []byte("#f\r\n")
)

// Encode implements Frame.
func (b Boolean) Encode() []byte {
	if b {
		return trueBytes
	}
	return falseBytes
}

// EncodedSize implements Frame.
func (b Boolean) EncodedSize() int {
	return 4
}

func decodeBoolean(buf []byte) (Frame, error) {
	if len(buf) < 4 {
		return nil, ErrNotComplete
	}
	if buf[2] != '\r' || buf[3] != '\n' {
		return nil, &InvalidFrameError{Msg: "malformed boolean"}
	}
	switch buf[1] {
	case 't':
		return Boolean(true), nil
	case 'f':
		return Boolean(false), nil
	default:
		return nil, &InvalidFrameError{Msg: "malformed boolean"}
	}
}
