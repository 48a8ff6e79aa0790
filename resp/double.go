package resp

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Double is a 64-bit IEEE float value.
type Double float64

// Encode implements Frame. Values with |x| > 1e8 or 0 < |x| < 1e-8 are
// emitted in exponential form (e.g. "+1.23456e8", "-1.23456e-9"); all
// others are emitted as plain decimal (e.g. "+123.456"). A leading sign is
// always written.
func (d Double) Encode() []byte {
	repr := formatDouble(float64(d))
	buf := make([]byte, 0, len(repr)+3)
	buf = append(buf, ',')
	buf = append(buf, repr...)
	buf = append(buf, '\r', '\n')
	return buf
}

// EncodedSize implements Frame.
func (d Double) EncodedSize() int {
	return len(formatDouble(float64(d))) + 3
}

func formatDouble(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic("resp: double does not support NaN or Inf")
	}

	sign := "+"
	x := f
	if math.Signbit(f) {
		sign = "-"
		x = -f
	}

	if x > 1e8 || (x > 0 && x < 1e-8) {
		return sign + formatExponential(x)
	}
	return sign + strconv.FormatFloat(x, 'f', -1, 64)
}

// formatExponential renders x (always >= 0) the way Redis expects: a
// trimmed mantissa, no '+' on the exponent, no leading zeros on the
// exponent digits.
func formatExponential(x float64) string {
	s := strconv.FormatFloat(x, 'e', -1, 64) // e.g. "1.23456e+08"
	i := strings.IndexByte(s, 'e')
	mantissa, expPart := s[:i], s[i+1:]

	expSign := expPart[0]
	expDigits := strings.TrimLeft(expPart[1:], "0")
	if expDigits == "" {
		expDigits = "0"
	}

	exp := expDigits
	if expSign == '-' {
		exp = "-" + expDigits
	}
	return mantissa + "e" + exp
}

func decodeDouble(buf []byte) (Frame, error) {
	idx := findCRLF(buf)
	if idx == -1 {
		return nil, ErrNotComplete
	}
	f, err := strconv.ParseFloat(string(buf[1:idx]), 64)
	if err != nil {
		return nil, errors.Wrap(err, "resp: invalid double")
	}
	return Double(f), nil
}
