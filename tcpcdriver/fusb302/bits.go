package fusb302

import "errors"

var errBitRange = errors.New("fusb302: bit range out of bounds")

// Bit ranges are numbered lsb0 across the buffer, with the last byte holding
// bits 0 to 7 (big endian byte order). Single-byte registers are unaffected
// by the byte order.

func bitRangeOK(b []byte, pos, width uint) bool {
	return width > 0 && width <= 32 && pos+width <= uint(len(b))*8
}

// loadBits returns width bits of b starting at bit pos.
func loadBits(b []byte, pos, width uint) (uint32, error) {
	if !bitRangeOK(b, pos, width) {
		return 0, errBitRange
	}
	var v uint32
	for i := uint(0); i < width; i++ {
		p := pos + i
		if b[len(b)-1-int(p/8)]&(1<<(p%8)) != 0 {
			v |= 1 << i
		}
	}
	return v, nil
}

// storeBits stores the low width bits of v into b starting at bit pos. Bits
// of v above width are ignored.
func storeBits(b []byte, pos, width uint, v uint32) error {
	if !bitRangeOK(b, pos, width) {
		return errBitRange
	}
	for i := uint(0); i < width; i++ {
		p := pos + i
		m := byte(1) << (p % 8)
		if v&(1<<i) != 0 {
			b[len(b)-1-int(p/8)] |= m
		} else {
			b[len(b)-1-int(p/8)] &^= m
		}
	}
	return nil
}
