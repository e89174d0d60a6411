package host

import "strings"

// EncodeASCII turns a line of text into input values, one per byte, ending
// with a newline.
func EncodeASCII(line string) []int64 {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	out := make([]int64, len(line))
	for i := 0; i < len(line); i++ {
		out[i] = int64(line[i])
	}
	return out
}

// DecodeASCII renders the values in 0..127 as text. Anything else is not a
// character and is returned separately in order.
func DecodeASCII(values []int64) (string, []int64) {
	var sb strings.Builder
	var rest []int64
	for _, v := range values {
		if v >= 0 && v < 128 {
			sb.WriteByte(byte(v))
		} else {
			rest = append(rest, v)
		}
	}
	return sb.String(), rest
}
