package resp

import (
	"strconv"

	"github.com/pkg/errors"
)

// findCRLF returns the index of the first '\r' immediately followed by
// '\n' in buf, or -1 if none is present yet.
func findCRLF(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == '\r' && buf[i+1] == '\n' {
			return i
		}
	}
	return -1
}

// readHeader parses the length/count header shared by every length-prefixed
// frame: buf[0] is the already-identified prefix byte (this helper does not
// validate it), buf[1:crlf] is a signed decimal integer. It returns that
// integer and the offset of the first byte past the header line.
func readHeader(buf []byte) (value int64, past int, err error) {
	idx := findCRLF(buf)
	if idx == -1 {
		return 0, 0, ErrNotComplete
	}
	n, err := strconv.ParseInt(string(buf[1:idx]), 10, 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "resp: invalid header integer")
	}
	return n, idx + 2, nil
}

// cloneBytes copies b out of its source buffer so a decoded Frame never
// aliases memory the Framer may later overwrite or discard.
func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
