package wire

import (
	"fmt"
	"io"
)

// ReadVarInt reads a variable-length integer, at most 5 bytes, adapted
// from the teacher's pkg/protocol VarInt codec (same 7-bits-per-byte,
// continuation-bit encoding, generalized off the Minecraft protocol
// naming to this engine's own wire format).
func ReadVarInt(r io.Reader) (int32, int, error) {
	var result int32
	var numRead int
	buf := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, numRead, err
		}
		b := buf[0]
		result |= int32(b&0x7F) << (7 * numRead)
		numRead++
		if numRead > 5 {
			return 0, numRead, fmt.Errorf("wire: varint too long")
		}
		if b&0x80 == 0 {
			break
		}
	}
	return result, numRead, nil
}

// WriteVarInt writes value to w.
func WriteVarInt(w io.Writer, value int32) (int, error) {
	var buf [5]byte
	n := PutVarInt(buf[:], value)
	return w.Write(buf[:n])
}

// PutVarInt encodes value into buf, returning the number of bytes used.
func PutVarInt(buf []byte, value int32) int {
	uval := uint32(value)
	n := 0
	for {
		if uval&^uint32(0x7F) == 0 {
			buf[n] = byte(uval)
			n++
			return n
		}
		buf[n] = byte(uval&0x7F) | 0x80
		n++
		uval >>= 7
	}
}
