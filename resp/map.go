package resp

import (
	"sort"
	"strconv"
)

// Map is an ordered mapping of UTF-8 string keys to Frame values. Encoding
// always iterates entries in ascending key order so that two Maps with
// equal content produce byte-identical output.
type Map map[string]Frame

// Encode implements Frame.
func (m Map) Encode() []byte {
	keys := sortedKeys(m)
	n := strconv.Itoa(len(m))
	buf := make([]byte, 0, 1+len(n)+2)
	buf = append(buf, '%')
	buf = append(buf, n...)
	buf = append(buf, '\r', '\n')
	for _, k := range keys {
		buf = append(buf, SimpleString(k).Encode()...)
		buf = append(buf, m[k].Encode()...)
	}
	return buf
}

// EncodedSize implements Frame.
func (m Map) EncodedSize() int {
	size := 1 + len(strconv.Itoa(len(m))) + 2
	for k, v := range m {
		size += SimpleString(k).EncodedSize() + v.EncodedSize()
	}
	return size
}

func sortedKeys(m Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func decodeMap(buf []byte) (Frame, error) {
	n, past, err := readHeader(buf)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &InvalidFrameLengthError{N: n}
	}

	m := make(Map, n)
	off := past
	for i := int64(0); i < n; i++ {
		if off > len(buf) {
			return nil, ErrNotComplete
		}
		kf, err := Decode(buf[off:])
		if err != nil {
			return nil, err
		}
		off += kf.EncodedSize()

		key, ok := kf.(SimpleString)
		if !ok {
			return nil, &InvalidFrameError{Msg: "map key must be a simple string"}
		}

		if off > len(buf) {
			return nil, ErrNotComplete
		}
		vf, err := Decode(buf[off:])
		if err != nil {
			return nil, err
		}
		off += vf.EncodedSize()

		m[string(key)] = vf
	}
	return m, nil
}
