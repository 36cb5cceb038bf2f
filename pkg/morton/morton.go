// Package morton maps 2D grid coordinates to Z-order (Morton) positions.
//
// Interleaving x into the even bits and y into the odd bits keeps every
// aligned 2x2 block of cells at four consecutive indices, so the parent of
// index i one level up is i>>2 and the children of parent p are 4p..4p+3.
package morton

// MaxCoord is the largest coordinate that encodes without aliasing.
const MaxCoord = 1<<16 - 1

// Encode interleaves the low 16 bits of x and y.
func Encode(x, y uint32) uint64 {
	return part1By1(x) | part1By1(y)<<1
}

// Decode is the inverse of Encode.
func Decode(index uint64) (x, y uint32) {
	return compact1By1(index), compact1By1(index >> 1)
}

// Parent returns the index of the node one level up that covers index.
func Parent(index uint64) uint64 {
	return index >> 2
}

// FirstSibling returns the first index of the 2x2 group index belongs to.
func FirstSibling(index uint64) uint64 {
	return index &^ 3
}

// part1By1 spreads the low 16 bits of v onto the even bit positions.
func part1By1(v uint32) uint64 {
	x := uint64(v & 0x0000FFFF)
	x = (x ^ (x << 8)) & 0x00FF00FF
	x = (x ^ (x << 4)) & 0x0F0F0F0F
	x = (x ^ (x << 2)) & 0x33333333
	x = (x ^ (x << 1)) & 0x55555555
	return x
}

// compact1By1 gathers the even bits of v back into a 16-bit value.
func compact1By1(v uint64) uint32 {
	x := v & 0x55555555
	x = (x ^ (x >> 1)) & 0x33333333
	x = (x ^ (x >> 2)) & 0x0F0F0F0F
	x = (x ^ (x >> 4)) & 0x00FF00FF
	x = (x ^ (x >> 8)) & 0x0000FFFF
	return uint32(x)
}
