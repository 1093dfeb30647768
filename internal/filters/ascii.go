package filters

import "bytes"

// lineLength bounds encoded output lines; DSC recommends at most 255.
const lineLength = 72

type lineWriter struct {
	buf bytes.Buffer
	col int
}

func (lw *lineWriter) write(p ...byte) {
	for _, c := range p {
		if lw.col == lineLength {
			lw.buf.WriteByte('\n')
			lw.col = 0
		}
		lw.buf.WriteByte(c)
		lw.col++
	}
}

// ASCII85Encode encodes data in base-85 followed by the "~>" marker.
// Four zero bytes become 'z'.
func ASCII85Encode(data []byte) []byte {
	var lw lineWriter
	lw.buf.Grow(len(data)*5/4 + len(data)/58 + 4)

	for i := 0; i < len(data); i += 4 {
		n := len(data) - i
		if n > 4 {
			n = 4
		}
		var group [4]byte
		copy(group[:], data[i:i+n])
		value := uint32(group[0])<<24 | uint32(group[1])<<16 | uint32(group[2])<<8 | uint32(group[3])

		if n == 4 && value == 0 {
			lw.write('z')
			continue
		}

		var out [5]byte
		for j := 4; j >= 0; j-- {
			out[j] = byte(value%85) + '!'
			value /= 85
		}
		lw.write(out[:n+1]...)
	}

	if lw.col+2 > lineLength {
		lw.buf.WriteByte('\n')
	}
	lw.buf.WriteString("~>")
	return lw.buf.Bytes()
}
