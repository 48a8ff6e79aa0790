package resp

import "strconv"

// Set is an ordered sequence of Frame values, same wire structure as Array
// but with no null form. Duplicates are neither rejected nor deduplicated;
// the codec treats it as a plain sequence.
type Set []Frame

// Encode implements Frame.
func (s Set) Encode() []byte {
	n := strconv.Itoa(len(s))
	buf := make([]byte, 0, 1+len(n)+2)
	buf = append(buf, '~')
	buf = append(buf, n...)
	buf = append(buf, '\r', '\n')
	for _, el := range s {
		buf = append(buf, el.Encode()...)
	}
	return buf
}

// EncodedSize implements Frame.
func (s Set) EncodedSize() int {
	size := 1 + len(strconv.Itoa(len(s))) + 2
	for _, el := range s {
		size += el.EncodedSize()
	}
	return size
}

func decodeSet(buf []byte) (Frame, error) {
	n, past, err := readHeader(buf)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &InvalidFrameLengthError{N: n}
	}

	els := make([]Frame, 0, n)
	off := past
	for i := int64(0); i < n; i++ {
		if off > len(buf) {
			return nil, ErrNotComplete
		}
		f, err := Decode(buf[off:])
		if err != nil {
			return nil, err
		}
		els = append(els, f)
		off += f.EncodedSize()
	}
	return Set(els), nil
}
