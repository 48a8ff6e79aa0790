package resp

import (
	"strconv"

	"github.com/pkg/errors"
)

// Integer is a 64-bit signed integer value.
type Integer int64

// Encode implements Frame. Non-negative values always carry a leading '+'.
func (i Integer) Encode() []byte {
	digits := i.digits()
	buf := make([]byte, 0, len(digits)+3)
	buf = append(buf, ':')
	buf = append(buf, digits...)
	buf = append(buf, '\r', '\n')
	return buf
}

// EncodedSize implements Frame.
func (i Integer) EncodedSize() int {
	return len(i.digits()) + 3
}

func (i Integer) digits() string {
	if i >= 0 {
		return "+" + strconv.FormatInt(int64(i), 10)
	}
	return strconv.FormatInt(int64(i), 10)
}

func decodeInteger(buf []byte) (Frame, error) {
	idx := findCRLF(buf)
	if idx == -1 {
		return nil, ErrNotComplete
	}
	n, err := strconv.ParseInt(string(buf[1:idx]), 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "resp: invalid integer")
	}
	return Integer(n), nil
}
