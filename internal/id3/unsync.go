package id3

// decodeSynchsafe decodes a 4-byte synchsafe integer: each byte carries
// seven bits, most significant group first.
func decodeSynchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}

// isSynchsafe reports whether no byte of b has its high bit set.
func isSynchsafe(b []byte) bool {
	for _, c := range b {
		if c&0x80 != 0 {
			return false
		}
	}
	return true
}

// RemoveUnsync reverses unsynchronisation by collapsing every 0xFF 0x00
// pair to 0xFF. It returns a new slice and leaves b untouched.
func RemoveUnsync(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}
